package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jjenkins/rulescout/internal/model"
)

// AuditStore persists the per-run, per-record change trail to PostgreSQL.
// It is optional: the sync jobs run without it when no DATABASE_URL is
// configured.
type AuditStore struct {
	db *sql.DB
}

// NewAuditStore creates a new AuditStore
func NewAuditStore(db *sql.DB) *AuditStore {
	return &AuditStore{db: db}
}

// EnsureSchema creates the audit tables if they do not exist
func (s *AuditStore) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS sync_runs (
			id          SERIAL PRIMARY KEY,
			kind        TEXT NOT NULL,
			started_at  TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ,
			total       INT NOT NULL DEFAULT 0,
			written     INT NOT NULL DEFAULT 0,
			unchanged   INT NOT NULL DEFAULT 0,
			skipped     INT NOT NULL DEFAULT 0,
			failed      INT NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS field_changes (
			id                 SERIAL PRIMARY KEY,
			run_id             INT NOT NULL REFERENCES sync_runs(id),
			fr_document_number TEXT NOT NULL,
			field_name         TEXT NOT NULL,
			old_value          TEXT NOT NULL DEFAULT '',
			new_value          TEXT NOT NULL DEFAULT '',
			changed_at         TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_field_changes_document
			ON field_changes (fr_document_number);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create audit schema: %w", err)
	}

	return nil
}

// BeginRun records the start of a batch and returns its id
func (s *AuditStore) BeginRun(ctx context.Context, kind string) (int, error) {
	query := `
		INSERT INTO sync_runs (kind, started_at)
		VALUES ($1, $2)
		RETURNING id
	`

	var id int
	if err := s.db.QueryRowContext(ctx, query, kind, time.Now().UTC()).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to begin run: %w", err)
	}

	return id, nil
}

// FinishRun records a batch's final counters
func (s *AuditStore) FinishRun(ctx context.Context, runID, total, written, unchanged, skipped, failed int) error {
	query := `
		UPDATE sync_runs
		SET finished_at = $2, total = $3, written = $4, unchanged = $5, skipped = $6, failed = $7
		WHERE id = $1
	`

	_, err := s.db.ExecContext(ctx, query, runID, time.Now().UTC(), total, written, unchanged, skipped, failed)
	if err != nil {
		return fmt.Errorf("failed to finish run %d: %w", runID, err)
	}

	return nil
}

// RecordChange appends one field-level change to the trail
func (s *AuditStore) RecordChange(ctx context.Context, runID int, documentNumber, field, oldValue, newValue string) error {
	query := `
		INSERT INTO field_changes (run_id, fr_document_number, field_name, old_value, new_value, changed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.db.ExecContext(ctx, query, runID, documentNumber, field, oldValue, newValue, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record change for %s: %w", documentNumber, err)
	}

	return nil
}

// ListRuns retrieves the most recent runs, newest first
func (s *AuditStore) ListRuns(ctx context.Context, limit int) ([]model.SyncRun, error) {
	query := `
		SELECT id, kind, started_at, finished_at, total, written, unchanged, skipped, failed
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []model.SyncRun
	for rows.Next() {
		var run model.SyncRun
		err := rows.Scan(
			&run.ID,
			&run.Kind,
			&run.StartedAt,
			&run.FinishedAt,
			&run.Total,
			&run.Written,
			&run.Unchanged,
			&run.Skipped,
			&run.Failed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// RunChanges retrieves all field changes recorded during one run
func (s *AuditStore) RunChanges(ctx context.Context, runID int) ([]model.FieldChange, error) {
	query := `
		SELECT id, run_id, fr_document_number, field_name, old_value, new_value, changed_at
		FROM field_changes
		WHERE run_id = $1
		ORDER BY id
	`

	return s.queryChanges(ctx, query, runID)
}

// RuleChanges retrieves the change history for one rule across all runs
func (s *AuditStore) RuleChanges(ctx context.Context, documentNumber string) ([]model.FieldChange, error) {
	query := `
		SELECT id, run_id, fr_document_number, field_name, old_value, new_value, changed_at
		FROM field_changes
		WHERE fr_document_number = $1
		ORDER BY changed_at, id
	`

	return s.queryChanges(ctx, query, documentNumber)
}

func (s *AuditStore) queryChanges(ctx context.Context, query string, arg any) ([]model.FieldChange, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	defer rows.Close()

	var changes []model.FieldChange
	for rows.Next() {
		var change model.FieldChange
		err := rows.Scan(
			&change.ID,
			&change.RunID,
			&change.FRDocumentNumber,
			&change.FieldName,
			&change.OldValue,
			&change.NewValue,
			&change.ChangedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		changes = append(changes, change)
	}

	return changes, rows.Err()
}
