package models

import "time"

// ProcessedRecord marks one Airtable record as handed off for printing.
type ProcessedRecord struct {
	ID        uint   `gorm:"primaryKey"`
	BaseID    string `gorm:"uniqueIndex:idx_processed_records_key"`
	TableID   string `gorm:"uniqueIndex:idx_processed_records_key"`
	RecordID  string `gorm:"uniqueIndex:idx_processed_records_key"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
