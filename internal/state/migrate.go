package state

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// provider builds a goose provider over the embedded run history schema.
// It holds no global goose state, so several stores can migrate at once.
func (s *SQLiteStore) provider() (*goose.Provider, error) {
	if s.db == nil {
		return nil, errNotOpened
	}
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, err
	}
	p, err := goose.NewProvider(goose.DialectSQLite3, s.db, fsys, goose.WithSlog(s.logger))
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	return p, nil
}

// Migrate brings the runs and run_tables schema up to date. Applying it to
// an up-to-date database is a no-op.
func (s *SQLiteStore) Migrate() error {
	p, err := s.provider()
	if err != nil {
		return err
	}
	results, err := p.Up(context.Background())
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	if len(results) > 0 {
		s.logger.Debug("applied state migrations", "path", s.path, "count", len(results))
	}
	return nil
}

// MigrationVersion reports the schema version of the history database.
func (s *SQLiteStore) MigrationVersion() (int64, error) {
	p, err := s.provider()
	if err != nil {
		return 0, err
	}
	return p.GetDBVersion(context.Background())
}
