// Package workout plans resistance training workouts from per-muscle training load.
//
// The planner folds the workout history into per-muscle metrics, scores the muscle groups, selects and allocates
// sets to them within a time budget, picks catalog exercises and finally arranges them as straight sets or
// supersets. Everything in this file and its generator-*.go siblings is pure; persistence and catalog access live
// in the Service.
package workout

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// GenerateOptions carries the per-request inputs of workout generation.
type GenerateOptions struct {
	// AvailableTime is the time budget of the workout in minutes.
	AvailableTime int
	// RecoveryFeedback is the subjective soreness of the user. Missing muscles are unspecified.
	RecoveryFeedback RecoveryInput
	// ForcedMuscles bypasses muscle selection when not empty.
	ForcedMuscles []MuscleGroup
	// ForcedAllocation bypasses muscle selection and volume allocation when not empty.
	ForcedAllocation Allocation
	// Now is the reference time for recency calculations.
	Now time.Time
}

// generator generates workout plans for one profile and catalog.
type generator struct {
	// profile of the user the plans are for.
	profile Profile
	// catalog of exercises to choose from.
	catalog []Exercise
	logger  *slog.Logger
}

// newGenerator constructs a workout generator. The profile must be valid. An empty catalog is allowed and yields
// empty plans.
func newGenerator(profile Profile, catalog []Exercise, logger *slog.Logger) (*generator, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &generator{
		profile: profile,
		catalog: catalog,
		logger:  loggerOrDiscard(logger),
	}, nil
}

// GenerateWorkout builds a workout plan from the metrics of the user.
//
// Only an invalid profile is an error. Missing exercises, unknown muscles and invalid forced allocation entries are
// logged and skipped, so the worst outcome is a plan with fewer muscles or no exercises at all.
func GenerateWorkout(
	profile Profile,
	metrics Metrics,
	catalog []Exercise,
	opts GenerateOptions,
	logger *slog.Logger,
) (Plan, error) {
	g, err := newGenerator(profile, catalog, logger)
	if err != nil {
		return Plan{}, fmt.Errorf("new generator: %w", err)
	}
	return g.Generate(metrics, opts), nil
}

// Generate runs the planning pipeline.
func (g *generator) Generate(metrics Metrics, opts GenerateOptions) Plan {
	allocation := g.allocate(metrics, opts)
	exercises := SelectExercises(
		allocation,
		g.catalog,
		g.profile.AvailableEquipment,
		g.profile.ExperienceLevel,
		g.logger,
	)
	structure, duration := StructureWorkout(exercises, g.profile.TrainingGoal, opts.AvailableTime)

	return Plan{
		MusclesTargeted:   musclesWithExercises(allocation, exercises),
		EstimatedDuration: duration,
		Workout:           structure,
	}
}

// allocate decides how many sets each muscle receives, honouring forced muscles and forced allocations.
func (g *generator) allocate(metrics Metrics, opts GenerateOptions) Allocation {
	if len(opts.ForcedAllocation) > 0 {
		return g.validForcedAllocation(opts.ForcedAllocation)
	}

	var selected []MuscleGroup
	if len(opts.ForcedMuscles) > 0 {
		selected = g.validForcedMuscles(opts.ForcedMuscles)
	} else {
		scores := ScorePriorities(metrics, opts.RecoveryFeedback, opts.Now)
		selected = SelectMuscles(scores, opts.AvailableTime)
	}
	return AllocateVolume(selected, metrics, opts.AvailableTime)
}

// validForcedAllocation drops entries for unknown muscles, muscles without settings and non-positive set counts.
func (g *generator) validForcedAllocation(forced Allocation) Allocation {
	ctx := context.Background()
	valid := make(Allocation, 0, len(forced))
	for _, entry := range forced {
		_, hasSetting := g.profile.MuscleGroupSettings[entry.Muscle]
		if !entry.Muscle.Valid() || !hasSetting || entry.Sets <= 0 {
			g.logger.LogAttrs(ctx, slog.LevelWarn, "skipping invalid forced allocation entry",
				slog.String("muscle_group", string(entry.Muscle)), slog.Int("sets", entry.Sets))
			continue
		}
		valid = append(valid, entry)
	}
	return valid
}

// validForcedMuscles drops unknown muscle groups.
func (g *generator) validForcedMuscles(forced []MuscleGroup) []MuscleGroup {
	valid := make([]MuscleGroup, 0, len(forced))
	for _, m := range forced {
		if !m.Valid() {
			g.logger.LogAttrs(context.Background(), slog.LevelWarn, "skipping unknown forced muscle group",
				slog.String("muscle_group", string(m)))
			continue
		}
		valid = append(valid, m)
	}
	return valid
}

// musclesWithExercises lists the allocated muscles, in allocation order, that received at least one exercise.
func musclesWithExercises(allocation Allocation, exercises []ExerciseWithSets) []MuscleGroup {
	covered := make(map[MuscleGroup]struct{}, len(exercises))
	for _, e := range exercises {
		covered[e.PrimaryMuscleGroup] = struct{}{}
	}
	targeted := make([]MuscleGroup, 0, len(allocation))
	for _, m := range allocation.Muscles() {
		if _, ok := covered[m]; ok {
			targeted = append(targeted, m)
			delete(covered, m)
		}
	}
	return targeted
}
