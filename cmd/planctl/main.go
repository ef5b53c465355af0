// Command planctl plans and logs workouts against the local database.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/myrjola/setplan/internal/config"
	"github.com/myrjola/setplan/internal/logging"
	"github.com/myrjola/setplan/internal/sqlite"
	"github.com/myrjola/setplan/internal/workout"
	"github.com/spf13/cobra"
)

type cli struct {
	lookupEnv func(string) (string, bool)
	stderr    io.Writer
	cfg       config.Config
	logger    *slog.Logger
	service   *workout.Service
	db        *sqlite.Database
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.LookupEnv, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes the command line in args and closes the database afterwards.
func run(ctx context.Context, args []string, lookupEnv func(string) (string, bool), stdout, stderr io.Writer) error {
	c := &cli{lookupEnv: lookupEnv, stderr: stderr}
	rootCmd := c.newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.ExecuteContext(ctx)
	return config.CloseDB(c.db, err)
}

func (c *cli) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "planctl",
		Short:             "Plan workouts from your training history",
		SilenceUsage:      true,
		PersistentPreRunE: c.open,
	}

	rootCmd.AddCommand(c.newProfileCmd())
	rootCmd.AddCommand(c.newGenerateCmd())
	rootCmd.AddCommand(c.newRecommendCmd())
	rootCmd.AddCommand(c.newLogCmd())
	rootCmd.AddCommand(c.newHistoryCmd())
	rootCmd.AddCommand(c.newMetricsCmd())
	rootCmd.AddCommand(c.newFeedbackCmd())
	rootCmd.AddCommand(c.newExercisesCmd())
	rootCmd.AddCommand(c.newDraftExerciseCmd())

	return rootCmd
}

func (c *cli) open(cmd *cobra.Command, _ []string) error {
	var err error
	if c.cfg, err = config.FromEnv(c.lookupEnv); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.logger = logging.NewLogger(c.stderr, logging.ParseLevel(c.cfg.LogLevel))
	if c.service, c.db, err = config.OpenService(cmd.Context(), c.cfg, c.logger, c.lookupEnv); err != nil {
		return fmt.Errorf("open service: %w", err)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// parseFeedback reads muscle=feedback pairs such as chest=very_sore.
func parseFeedback(pairs []string) (workout.RecoveryInput, error) {
	if len(pairs) == 0 {
		return nil, nil //nolint:nilnil // no feedback means the latest recorded one applies
	}
	out := make(workout.RecoveryInput, len(pairs))
	for _, pair := range pairs {
		muscle, feedback, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("feedback %q is not muscle=value", pair)
		}
		m, err := workout.ParseMuscleGroup(muscle)
		if err != nil {
			return nil, fmt.Errorf("feedback %q: %w", pair, err)
		}
		f := workout.RecoveryFeedback(strings.TrimSpace(feedback))
		if !f.Valid() {
			return nil, fmt.Errorf("feedback %q: unknown value %q", pair, f)
		}
		out[m] = f
	}
	return out, nil
}

func parseMuscles(names []string) ([]workout.MuscleGroup, error) {
	out := make([]workout.MuscleGroup, 0, len(names))
	for _, name := range names {
		m, err := workout.ParseMuscleGroup(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}
