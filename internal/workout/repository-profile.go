package workout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/myrjola/setplan/internal/sqlite"
)

// sqliteProfileRepository implements profileRepository.
type sqliteProfileRepository struct {
	baseRepository
}

func newSQLiteProfileRepository(db *sqlite.Database, logger *slog.Logger) *sqliteProfileRepository {
	return &sqliteProfileRepository{
		baseRepository: newBaseRepository(db, logger),
	}
}

// Get retrieves the saved profile.
func (r *sqliteProfileRepository) Get(ctx context.Context) (Profile, error) {
	var data string
	if err := r.db.ReadOnly.QueryRowContext(ctx, `SELECT data FROM profile WHERE id = 1`).Scan(&data); err != nil {
		return Profile{}, fmt.Errorf("query profile: %w", notFound(err))
	}
	var p Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return Profile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	return p, nil
}

// Set saves the profile, replacing any earlier one.
func (r *sqliteProfileRepository) Set(ctx context.Context, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	_, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO profile (id, data) VALUES (1, ?)
		ON CONFLICT (id) DO UPDATE SET
			data = excluded.data,
			updated_at = STRFTIME('%Y-%m-%dT%H:%M:%fZ')`, string(data))
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
