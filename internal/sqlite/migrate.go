package sqlite

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// migrate applies all pending migrations embedded in the binary to the read-write database.
//
// The migrator is never closed since closing its database driver closes db.ReadWrite.
func (db *Database) migrate(ctx context.Context) error {
	start := time.Now()

	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("open migration source: %w", err)
	}
	defer func() {
		if closeErr := source.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close migration source", slog.Any("error", closeErr))
		}
	}()

	driver, err := migratesqlite.WithInstance(db.ReadWrite, &migratesqlite.Config{}) //nolint:exhaustruct // defaults.
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("query migration version: %w", err)
	}
	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
		slog.Duration("duration", time.Since(start)))

	return nil
}
