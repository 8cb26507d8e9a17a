package ledger

import (
	"context"
	"receipts/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 200

// DBStore keeps the ledger in the processed_records table.
type DBStore struct {
	DB *gorm.DB
}

func NewDBStore(db *gorm.DB) (*DBStore, error) {
	if err := db.AutoMigrate(&models.ProcessedRecord{}); err != nil {
		return nil, err
	}
	return &DBStore{DB: db}, nil
}

func (s *DBStore) Load(ctx context.Context) (Snapshot, error) {
	rows, err := gorm.G[models.ProcessedRecord](s.DB).Order("id").Find(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := Snapshot{}
	for _, row := range rows {
		ns := Namespace{BaseID: row.BaseID, TableID: row.TableID}
		if snapshot[ns] == nil {
			snapshot[ns] = map[string]bool{}
		}
		snapshot[ns][row.RecordID] = true
	}
	return snapshot, nil
}

// Save inserts every pair of the snapshot. Rows already present are left alone.
func (s *DBStore) Save(ctx context.Context, snapshot Snapshot) error {
	return s.insert(ctx, snapshot)
}

// Append inserts only the newly marked pairs.
func (s *DBStore) Append(ctx context.Context, added Snapshot) error {
	return s.insert(ctx, added)
}

func (s *DBStore) insert(ctx context.Context, snapshot Snapshot) error {
	var rows []models.ProcessedRecord
	for ns, ids := range snapshot {
		for _, id := range sortedIDs(ids) {
			rows = append(rows, models.ProcessedRecord{
				BaseID:   ns.BaseID,
				TableID:  ns.TableID,
				RecordID: id,
			})
		}
	}

	if len(rows) == 0 {
		return nil
	}

	return gorm.G[models.ProcessedRecord](s.DB, clause.OnConflict{DoNothing: true}).CreateInBatches(ctx, &rows, insertBatchSize)
}
