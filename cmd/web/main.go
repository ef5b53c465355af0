package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/myrjola/setplan/internal/config"
	"github.com/myrjola/setplan/internal/errors"
	"github.com/myrjola/setplan/internal/flightrecorder"
	"github.com/myrjola/setplan/internal/logging"
	"github.com/myrjola/setplan/internal/workout"
)

type application struct {
	logger         *slog.Logger
	workoutService *workout.Service
	// flightRecorder is nil unless a traces directory is configured.
	flightRecorder *flightrecorder.Recorder
	// defaultMinutes is the time budget of generation requests that leave it out.
	defaultMinutes int
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) (err error) {
	var cancel context.CancelFunc
	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.FromEnv(lookupEnv)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	service, db, err := config.OpenService(ctx, cfg, logger, lookupEnv)
	if err != nil {
		return errors.Wrap(err, "open service", slog.String("sqlite_url", cfg.SqliteURL))
	}
	defer func() {
		err = config.CloseDB(db, err)
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	app := application{
		logger:         logger,
		workoutService: service,
		flightRecorder: nil,
		defaultMinutes: cfg.DefaultAvailableMinutes,
	}

	if cfg.TracesDirectory != "" {
		if app.flightRecorder, err = flightrecorder.New(logger, cfg.TracesDirectory, flightrecorder.Options{
			MinAge:        0,
			MaxBytes:      0,
			Cooldown:      0,
			SlowThreshold: cfg.SlowRequestThreshold,
		}); err != nil {
			return errors.Wrap(err, "new flight recorder")
		}
		if err = app.flightRecorder.Start(ctx); err != nil {
			return errors.Wrap(err, "start flight recorder")
		}
		defer app.flightRecorder.Stop(context.WithoutCancel(ctx))
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr, app.routes()); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	level, _ := os.LookupEnv("SETPLAN_LOG_LEVEL")
	logger := logging.NewLogger(os.Stdout, logging.ParseLevel(level))
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
