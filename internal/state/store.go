// Package state keeps the history of generation runs in SQLite.
// Each run stores its seed, so a past run can be replayed exactly.
package state

import (
	"context"
	"time"
)

// Run is one recorded pipeline run.
type Run struct {
	ID        string        `json:"id"`
	SourceDir string        `json:"source_dir"`
	Seed      uint64        `json:"seed"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	TotalRows int           `json:"total_rows"`
	KeptRows  int           `json:"kept_rows"`
	DryRun    bool          `json:"dry_run"`
}

// RunTable is the outcome of one source within a run.
type RunTable struct {
	RunID       string `json:"run_id"`
	Position    int    `json:"position"`
	Source      string `json:"source"`
	Status      string `json:"status"`
	Code        string `json:"code,omitempty"`
	Message     string `json:"message,omitempty"`
	RowsRead    int    `json:"rows_read"`
	RowsKept    int    `json:"rows_kept"`
	DisplayName string `json:"display_name,omitempty"`
}

// Store persists run history.
type Store interface {
	Open(path string) error
	Close() error
	Migrate() error

	// RecordRun stores run and its tables atomically. Table RunIDs are
	// overwritten with run.ID.
	RecordRun(ctx context.Context, run *Run, tables []RunTable) error
	// ListRuns returns the most recent runs first.
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	// GetRun returns one run; ErrRunNotFound if it is unknown.
	GetRun(ctx context.Context, id string) (*Run, error)
	// GetRunTables returns the tables of a run in position order.
	GetRunTables(ctx context.Context, runID string) ([]RunTable, error)
}

var _ Store = (*SQLiteStore)(nil)
