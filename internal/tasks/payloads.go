package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeTaskPollRecords = "task:poll_records"
)

// PollRecordsPayload selects the table to reconcile. Empty fields fall back
// to SPRIG_BASE_ID / SPRIG_TABLE_NAME.
type PollRecordsPayload struct {
	BaseID  *string `json:"base_id"`
	TableID *string `json:"table_id"`
}

// NewPollRecordsTask creates a new task for asynq
func NewPollRecordsTask(baseID, tableID *string) (*asynq.Task, error) {
	payload := PollRecordsPayload{
		BaseID:  baseID,
		TableID: tableID,
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeTaskPollRecords, payloadBytes, asynq.MaxRetry(0)), nil
}

// PollRecordsScheduleOptions are the options the scheduler enqueues poll tasks
// with. The uniqueness lock keeps at most one poll waiting while a slow pass
// is still running; asynq rejects locks shorter than a second.
func PollRecordsScheduleOptions(interval time.Duration) []asynq.Option {
	ttl := interval
	if ttl < time.Second {
		ttl = time.Second
	}

	return []asynq.Option{
		asynq.Queue("default"),
		asynq.Unique(ttl),
	}
}
