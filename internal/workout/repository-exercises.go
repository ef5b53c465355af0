package workout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/myrjola/setplan/internal/sqlite"
)

// sqliteCustomExerciseRepository implements customExerciseRepository.
type sqliteCustomExerciseRepository struct {
	baseRepository
}

func newSQLiteCustomExerciseRepository(db *sqlite.Database, logger *slog.Logger) *sqliteCustomExerciseRepository {
	return &sqliteCustomExerciseRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Add stores e, replacing an earlier exercise with the same ID.
func (r *sqliteCustomExerciseRepository) Add(ctx context.Context, e Exercise) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal exercise: %w", err)
	}
	_, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO custom_exercises (id, data) VALUES (?, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data`, e.ID, string(data))
	if err != nil {
		return fmt.Errorf("insert custom exercise: %w", err)
	}
	return nil
}

// List returns the custom exercises in the order they were added. Entries that no longer validate are skipped.
func (r *sqliteCustomExerciseRepository) List(ctx context.Context) (_ []Exercise, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `SELECT id, data FROM custom_exercises ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query custom exercises: %w", err)
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	exercises := make([]Exercise, 0)
	for rows.Next() {
		var id, data string
		if err = rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("scan custom exercise: %w", err)
		}
		var e Exercise
		if err = json.Unmarshal([]byte(data), &e); err == nil {
			err = e.validate()
		}
		if err != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "skipping invalid custom exercise",
				slog.String("exercise_id", id), slog.Any("error", err))
			err = nil
			continue
		}
		exercises = append(exercises, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate custom exercises: %w", err)
	}
	return exercises, nil
}
