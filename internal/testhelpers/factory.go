package testhelpers

import (
	"fmt"

	g "github.com/onsi/gomega"
	"gorm.io/gorm"
)

var ledgerTables = []string{"processed_records"}

// CleanupDB empties every table the ledger writes to.
func CleanupDB(db *gorm.DB) {
	for _, table := range ledgerTables {
		if !db.Migrator().HasTable(table) {
			continue
		}

		query := fmt.Sprintf("TRUNCATE TABLE \"%s\" RESTART IDENTITY CASCADE", table)
		err := db.Exec(query).Error
		g.Expect(err).NotTo(g.HaveOccurred(), "Failed to truncate table: "+table)
	}
}
