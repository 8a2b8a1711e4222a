package model

import (
	"database/sql"
	"time"
)

// SyncRun records one discover or refresh batch
type SyncRun struct {
	ID         int          `json:"id"`
	Kind       string       `json:"kind"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt sql.NullTime `json:"finished_at"`
	Total      int          `json:"total"`
	Written    int          `json:"written"`
	Unchanged  int          `json:"unchanged"`
	Skipped    int          `json:"skipped"`
	Failed     int          `json:"failed"`
}

// FieldChange records one field-level update applied to a rule during a run
type FieldChange struct {
	ID               int       `json:"id"`
	RunID            int       `json:"run_id"`
	FRDocumentNumber string    `json:"fr_document_number"`
	FieldName        string    `json:"field_name"`
	OldValue         string    `json:"old_value"`
	NewValue         string    `json:"new_value"`
	ChangedAt        time.Time `json:"changed_at"`
}
