package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrRunNotFound is returned by GetRun for unknown ids.
var ErrRunNotFound = errors.New("run not found")

const runColumns = `id, source_dir, seed, started_at, duration_ms, succeeded, failed, total_rows, kept_rows, dry_run`

// RecordRun stores run and its tables in one transaction.
func (s *SQLiteStore) RecordRun(ctx context.Context, run *Run, tables []RunTable) (err error) {
	if s.db == nil {
		return errNotOpened
	}

	s.logger.Debug("recording run", slog.String("id", run.ID), slog.Int("tables", len(tables)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.SourceDir, int64(run.Seed), run.StartedAt.UTC().UnixNano(),
		run.Duration.Milliseconds(), run.Succeeded, run.Failed, run.TotalRows, run.KeptRows, run.DryRun,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i := range tables {
		t := &tables[i]
		t.RunID = run.ID
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_tables (run_id, position, source, status, code, message, rows_read, rows_kept, display_name)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.RunID, t.Position, t.Source, t.Status, t.Code, t.Message, t.RowsRead, t.RowsKept, t.DisplayName,
		)
		if err != nil {
			return fmt.Errorf("failed to insert run table %s: %w", t.Source, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// ListRuns retrieves the most recent runs up to the given limit.
// A limit of zero or less returns every run.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// GetRun retrieves a run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// GetRunTables retrieves the tables of a run in position order.
func (s *SQLiteStore) GetRunTables(ctx context.Context, runID string) ([]RunTable, error) {
	if s.db == nil {
		return nil, errNotOpened
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, position, source, status, code, message, rows_read, rows_kept, display_name
		FROM run_tables WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run tables: %w", err)
	}
	defer rows.Close()

	var tables []RunTable
	for rows.Next() {
		var t RunTable
		if err := rows.Scan(&t.RunID, &t.Position, &t.Source, &t.Status, &t.Code, &t.Message,
			&t.RowsRead, &t.RowsKept, &t.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to scan run table: %w", err)
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get run tables: %w", err)
	}
	return tables, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*Run, error) {
	var (
		run        Run
		seed       int64
		startedAt  int64
		durationMS int64
	)
	if err := row.Scan(&run.ID, &run.SourceDir, &seed, &startedAt, &durationMS,
		&run.Succeeded, &run.Failed, &run.TotalRows, &run.KeptRows, &run.DryRun); err != nil {
		return nil, err
	}
	run.Seed = uint64(seed)
	run.StartedAt = time.Unix(0, startedAt).UTC()
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}
