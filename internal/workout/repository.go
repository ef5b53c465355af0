package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/setplan/internal/sqlite"
)

// repository contains the repositories for the planner aggregates.
type repository struct {
	history   historyRepository
	profile   profileRepository
	exercises customExerciseRepository
}

// historyRepository handles the append-only workout history.
type historyRepository interface {
	// Append stores w and returns the whole history, oldest first, as seen by the same transaction.
	Append(ctx context.Context, w LoggedWorkout) ([]LoggedWorkout, error)
	Get(ctx context.Context, id string) (LoggedWorkout, error)
	// List returns the history oldest first.
	List(ctx context.Context) ([]LoggedWorkout, error)
	// Update applies updateFn to the workout and saves it when updateFn reports a change.
	Update(ctx context.Context, id string, updateFn func(w *LoggedWorkout) (bool, error)) error
}

// profileRepository persists the single user profile.
type profileRepository interface {
	// Get returns ErrNotFound when no profile has been saved yet.
	Get(ctx context.Context) (Profile, error)
	Set(ctx context.Context, p Profile) error
}

// customExerciseRepository persists exercises added on top of the catalog.
type customExerciseRepository interface {
	Add(ctx context.Context, e Exercise) error
	List(ctx context.Context) ([]Exercise, error)
}

// repositoryFactory creates repository instances.
type repositoryFactory struct {
	db     *sqlite.Database
	logger *slog.Logger
}

// newRepositoryFactory creates a new repository factory.
func newRepositoryFactory(db *sqlite.Database, logger *slog.Logger) *repositoryFactory {
	return &repositoryFactory{
		db:     db,
		logger: logger,
	}
}

// newRepository creates a new repository aggregate.
func (f *repositoryFactory) newRepository() *repository {
	return &repository{
		history:   newSQLiteHistoryRepository(f.db, f.logger),
		profile:   newSQLiteProfileRepository(f.db, f.logger),
		exercises: newSQLiteCustomExerciseRepository(f.db, f.logger),
	}
}

// baseRepository holds what every sqlite repository needs.
type baseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newBaseRepository(db *sqlite.Database, logger *slog.Logger) baseRepository {
	return baseRepository{
		db:     db,
		logger: logger,
	}
}

// timestampFormat sorts lexicographically in chronological order.
const timestampFormat = "2006-01-02T15:04:05.000Z"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// notFound translates sql.ErrNoRows to ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
