package workout

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/myrjola/setplan/internal/observability"
	"github.com/myrjola/setplan/internal/sqlite"
)

// sqliteHistoryRepository implements historyRepository.
type sqliteHistoryRepository struct {
	baseRepository
}

func newSQLiteHistoryRepository(db *sqlite.Database, logger *slog.Logger) *sqliteHistoryRepository {
	return &sqliteHistoryRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const selectWorkouts = `
	SELECT id, date, duration_minutes, muscles_targeted, exercises, recovery_feedback
	FROM workouts`

// workoutRow is the raw representation of one workouts row.
type workoutRow struct {
	id               string
	date             string
	duration         int
	musclesTargeted  string
	exercises        string
	recoveryFeedback sql.NullString
}

func (row workoutRow) decode() (LoggedWorkout, error) {
	date, err := parseTimestamp(row.date)
	if err != nil {
		return LoggedWorkout{}, err
	}
	w := LoggedWorkout{
		ID:               row.id,
		Date:             date,
		Duration:         row.duration,
		MusclesTargeted:  nil,
		Exercises:        nil,
		RecoveryFeedback: nil,
	}
	if err = json.Unmarshal([]byte(row.musclesTargeted), &w.MusclesTargeted); err != nil {
		return LoggedWorkout{}, fmt.Errorf("unmarshal muscles targeted: %w", err)
	}
	if err = json.Unmarshal([]byte(row.exercises), &w.Exercises); err != nil {
		return LoggedWorkout{}, fmt.Errorf("unmarshal exercises: %w", err)
	}
	if row.recoveryFeedback.Valid {
		if err = json.Unmarshal([]byte(row.recoveryFeedback.String), &w.RecoveryFeedback); err != nil {
			return LoggedWorkout{}, fmt.Errorf("unmarshal recovery feedback: %w", err)
		}
	}
	return w, nil
}

// encodeWorkout returns the JSON columns of w.
func encodeWorkout(w LoggedWorkout) (string, string, sql.NullString, error) {
	targeted, err := json.Marshal(w.MusclesTargeted)
	if err != nil {
		return "", "", sql.NullString{}, fmt.Errorf("marshal muscles targeted: %w", err)
	}
	exercises, err := json.Marshal(w.Exercises)
	if err != nil {
		return "", "", sql.NullString{}, fmt.Errorf("marshal exercises: %w", err)
	}
	var feedback sql.NullString
	if w.RecoveryFeedback != nil {
		var data []byte
		if data, err = json.Marshal(w.RecoveryFeedback); err != nil {
			return "", "", sql.NullString{}, fmt.Errorf("marshal recovery feedback: %w", err)
		}
		feedback = sql.NullString{String: string(data), Valid: true}
	}
	return string(targeted), string(exercises), feedback, nil
}

func (r *sqliteHistoryRepository) Append(ctx context.Context, w LoggedWorkout) ([]LoggedWorkout, error) {
	targeted, exercises, feedback, err := encodeWorkout(w)
	if err != nil {
		return nil, err
	}

	var history []LoggedWorkout
	err = r.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO workouts (id, date, duration_minutes, muscles_targeted, exercises, recovery_feedback)
			VALUES (?, ?, ?, ?, ?, ?)`,
			w.ID, formatTimestamp(w.Date), w.Duration, targeted, exercises, feedback); err != nil {
			return fmt.Errorf("insert workout: %w", err)
		}
		if history, err = r.list(ctx, tx); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("append workout: %w", err)
	}
	return history, nil
}

func (r *sqliteHistoryRepository) Get(ctx context.Context, id string) (LoggedWorkout, error) {
	return r.get(ctx, r.db.ReadOnly, id)
}

func (r *sqliteHistoryRepository) get(ctx context.Context, q queryer, id string) (LoggedWorkout, error) {
	var row workoutRow
	err := q.QueryRowContext(ctx, selectWorkouts+` WHERE id = ?`, id).Scan(
		&row.id, &row.date, &row.duration, &row.musclesTargeted, &row.exercises, &row.recoveryFeedback)
	if err != nil {
		return LoggedWorkout{}, fmt.Errorf("query workout %s: %w", id, notFound(err))
	}
	w, err := row.decode()
	if err != nil {
		return LoggedWorkout{}, fmt.Errorf("decode workout %s: %w", id, err)
	}
	return w, nil
}

func (r *sqliteHistoryRepository) List(ctx context.Context) ([]LoggedWorkout, error) {
	return r.list(ctx, r.db.ReadOnly)
}

// list reads the history oldest first. Rows that fail to decode are logged and skipped.
func (r *sqliteHistoryRepository) list(ctx context.Context, q queryer) (_ []LoggedWorkout, err error) {
	rows, err := q.QueryContext(ctx, selectWorkouts+` ORDER BY date, created_at`)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}
	defer func() {
		err = errors.Join(err, rows.Close())
	}()

	history := make([]LoggedWorkout, 0)
	for rows.Next() {
		var row workoutRow
		if err = rows.Scan(
			&row.id, &row.date, &row.duration, &row.musclesTargeted, &row.exercises, &row.recoveryFeedback,
		); err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		w, decodeErr := row.decode()
		if decodeErr != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "skipping malformed workout record",
				slog.String("workout_id", row.id), slog.Any("error", decodeErr))
			observability.RecordHistorySkipped()
			continue
		}
		history = append(history, w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workouts: %w", err)
	}
	return history, nil
}

func (r *sqliteHistoryRepository) Update(
	ctx context.Context,
	id string,
	updateFn func(w *LoggedWorkout) (bool, error),
) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		w, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		updated, err := updateFn(&w)
		if err != nil {
			return fmt.Errorf("update workout: %w", err)
		}
		if !updated {
			return nil
		}
		targeted, exercises, feedback, err := encodeWorkout(w)
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `
			UPDATE workouts
			SET date = ?, duration_minutes = ?, muscles_targeted = ?, exercises = ?, recovery_feedback = ?
			WHERE id = ?`,
			formatTimestamp(w.Date), w.Duration, targeted, exercises, feedback, id); err != nil {
			return fmt.Errorf("save workout: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update workout %s: %w", id, err)
	}
	return nil
}
