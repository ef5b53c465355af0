package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/myrjola/setplan/internal/sqlite"
	"github.com/myrjola/setplan/internal/workout"
)

// Catalog returns the exercise source described by cfg. A remote catalog falls back to the bundled one.
func (cfg Config) Catalog(logger *slog.Logger) (workout.CatalogSource, error) {
	static, err := workout.NewStaticCatalog(logger)
	if err != nil {
		return nil, fmt.Errorf("load bundled catalog: %w", err)
	}
	if cfg.CatalogURL == "" {
		return static, nil
	}
	remote := workout.NewRemoteCatalog(cfg.CatalogURL, cfg.CatalogTimeout, logger)
	return workout.NewFallbackCatalog(remote, static, logger), nil
}

// OpenService connects to the database and assembles the workout service. The caller closes the database.
func OpenService(
	ctx context.Context,
	cfg Config,
	logger *slog.Logger,
	lookupEnv func(string) (string, bool),
) (*workout.Service, *sqlite.Database, error) {
	profile, err := LoadProfile(cfg.ProfilePath, lookupEnv)
	if err != nil {
		return nil, nil, fmt.Errorf("load profile: %w", err)
	}
	catalog, err := cfg.Catalog(logger)
	if err != nil {
		return nil, nil, err
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open db %s: %w", cfg.SqliteURL, err)
	}
	logger.LogAttrs(ctx, slog.LevelDebug, "connected to db", slog.String("url", cfg.SqliteURL))

	var opts []workout.ServiceOption
	if cfg.OpenAIAPIKey != "" {
		opts = append(opts, workout.WithDrafter(workout.NewExerciseDrafter(cfg.OpenAIAPIKey)))
	}
	return workout.NewService(db, logger, catalog, profile, opts...), db, nil
}

// CloseDB closes db and joins the failure with err.
func CloseDB(db *sqlite.Database, err error) error {
	if db == nil {
		return err
	}
	if closeErr := db.Close(); closeErr != nil {
		return errors.Join(err, fmt.Errorf("close db: %w", closeErr))
	}
	return err
}
