package ledger

import (
	"log"
	"receipts/internal/db"
)

// OpenStore returns a postgres-backed store when databaseURL is set and the
// JSON file at path otherwise.
func OpenStore(databaseURL, path string) (Store, error) {
	if databaseURL == "" {
		log.Printf("Using ledger file %s", path)
		return NewFileStore(path), nil
	}

	conn, err := db.InitDB(databaseURL)
	if err != nil {
		return nil, err
	}
	log.Println("Using database ledger.")

	return NewDBStore(conn)
}
