package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/myrjola/setplan/internal/workout"
	"github.com/spf13/cobra"
)

func (c *cli) newProfileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Print the effective profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			profile, err := c.service.Profile(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), profile)
		},
	}
}

func (c *cli) newGenerateCmd() *cobra.Command {
	var (
		minutes  int
		muscles  []string
		feedback []string
		logIt    bool
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a workout for the time available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			forced, err := parseMuscles(muscles)
			if err != nil {
				return err
			}
			input, err := parseFeedback(feedback)
			if err != nil {
				return err
			}
			if minutes == 0 {
				minutes = c.cfg.DefaultAvailableMinutes
			}
			plan, err := c.service.GenerateWorkout(cmd.Context(), workout.GenerateRequest{
				AvailableTime:    minutes,
				RecoveryFeedback: input,
				ForcedMuscles:    forced,
				ForcedAllocation: nil,
			})
			if err != nil {
				return err
			}
			if !logIt {
				return printJSON(cmd.OutOrStdout(), plan)
			}
			logged, _, err := c.service.LogWorkout(cmd.Context(), plan)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), logged)
		},
	}
	cmd.Flags().IntVar(&minutes, "minutes", 0, "available time in minutes (default from SETPLAN_DEFAULT_MINUTES)")
	cmd.Flags().StringSliceVar(&muscles, "muscle", nil, "train these muscle groups instead of the selected ones")
	cmd.Flags().StringSliceVar(&feedback, "feedback", nil, "recovery feedback as muscle=value, e.g. chest=very_sore")
	cmd.Flags().BoolVar(&logIt, "log", false, "log the generated workout as completed")
	return cmd
}

func (c *cli) newRecommendCmd() *cobra.Command {
	var (
		generate bool
		minutes  int
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Show what to train next",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if generate {
				if minutes == 0 {
					minutes = c.cfg.DefaultAvailableMinutes
				}
				plan, err := c.service.GenerateRecommendedWorkout(cmd.Context(), minutes)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), plan)
			}
			dashboard, err := c.service.Recommend(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), dashboard)
		},
	}
	cmd.Flags().BoolVar(&generate, "generate", false, "generate the recommended workout")
	cmd.Flags().IntVar(&minutes, "minutes", 0, "available time in minutes when generating")
	return cmd
}

func (c *cli) newLogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "log [plan.json]",
		Short: "Log a completed plan read from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("open plan: %w", err)
				}
				defer func() {
					_ = f.Close()
				}()
				r = f
			}
			var plan workout.Plan
			if err := json.NewDecoder(r).Decode(&plan); err != nil {
				return fmt.Errorf("decode plan: %w", err)
			}
			logged, _, err := c.service.LogWorkout(cmd.Context(), plan)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), logged)
		},
	}
}

func (c *cli) newHistoryCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List logged workouts, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			history, err := c.service.History(cmd.Context())
			if err != nil {
				return err
			}
			if limit > 0 && len(history) > limit {
				history = history[len(history)-limit:]
			}
			if history == nil {
				history = []workout.LoggedWorkout{}
			}
			return printJSON(cmd.OutOrStdout(), history)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "only show the most recent workouts")
	return cmd
}

func (c *cli) newMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Print the per-muscle training metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			metrics, err := c.service.Metrics(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), metrics)
		},
	}
}

func (c *cli) newFeedbackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feedback <workout-id> <muscle=value>...",
		Short: "Record how the muscles recovered after a workout",
		Args:  cobra.MinimumNArgs(2), //nolint:mnd // id and at least one pair
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := parseFeedback(args[1:])
			if err != nil {
				return err
			}
			return c.service.SaveRecoveryFeedback(cmd.Context(), args[0], input)
		},
	}
}

func (c *cli) newExercisesCmd() *cobra.Command {
	var muscle, equipment string
	cmd := &cobra.Command{
		Use:   "exercises",
		Short: "List the exercise catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exercises, err := c.service.Catalog(cmd.Context(),
				workout.MuscleGroup(muscle), workout.Equipment(equipment))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), exercises)
		},
	}
	cmd.Flags().StringVar(&muscle, "muscle", "", "only exercises training this muscle group")
	cmd.Flags().StringVar(&equipment, "equipment", "", "only exercises using this equipment")
	return cmd
}

func (c *cli) newDraftExerciseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draft-exercise <name>",
		Short: "Draft a custom exercise with a language model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.service.DraftExercise(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), e)
		},
	}
}
