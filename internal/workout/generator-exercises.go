package workout

import (
	"context"
	"log/slog"
	"slices"
)

// Exercise selection constants.
const (
	CompoundSets  = 3
	IsolationSets = 2
)

// hasAnyEquipment reports whether the exercise can be performed with at least one of the available tools.
func hasAnyEquipment(e Exercise, available []Equipment) bool {
	for _, eq := range e.Equipment {
		if slices.Contains(available, eq) {
			return true
		}
	}
	return false
}

// candidatesFor filters the catalog for exercises training m as primary muscle.
//
// Exercises matching both the available equipment and the experience level are preferred. Without any, equipment
// matches of any level are used, and as a last resort every exercise for the muscle.
func candidatesFor(m MuscleGroup, catalog []Exercise, equipment []Equipment, level DifficultyLevel) []Exercise {
	var forMuscle, withEquipment, withLevel []Exercise
	for _, e := range catalog {
		if e.PrimaryMuscleGroup != m {
			continue
		}
		forMuscle = append(forMuscle, e)
		if !hasAnyEquipment(e, equipment) {
			continue
		}
		withEquipment = append(withEquipment, e)
		if e.DifficultyLevel == level {
			withLevel = append(withLevel, e)
		}
	}
	switch {
	case len(withLevel) > 0:
		return withLevel
	case len(withEquipment) > 0:
		return withEquipment
	default:
		return forMuscle
	}
}

// distributeSets splits sets over candidate exercises: one compound, then isolations, then a second compound.
func distributeSets(candidates []Exercise, sets int) []ExerciseWithSets {
	var compounds, isolations []Exercise
	for _, e := range candidates {
		if e.ExerciseType == ExerciseTypeCompound {
			compounds = append(compounds, e)
		} else {
			isolations = append(isolations, e)
		}
	}

	var picked []ExerciseWithSets
	remaining := sets

	if len(compounds) > 0 {
		n := min(CompoundSets, remaining)
		picked = append(picked, ExerciseWithSets{Exercise: compounds[0], Sets: n})
		remaining -= n
	}
	for _, e := range isolations {
		if remaining <= 0 {
			break
		}
		n := min(IsolationSets, remaining)
		picked = append(picked, ExerciseWithSets{Exercise: e, Sets: n})
		remaining -= n
	}

	if remaining > 0 {
		switch {
		case len(compounds) > 1:
			picked = append(picked, ExerciseWithSets{Exercise: compounds[1], Sets: remaining})
		case len(picked) > 0:
			// The first emitted exercise is the single compound, or the first candidate when there is none.
			picked[0].Sets += remaining
		default:
			picked = append(picked, ExerciseWithSets{Exercise: candidates[0], Sets: remaining})
		}
	}

	return picked
}

// SelectExercises maps each allocation entry to concrete catalog exercises.
//
// A muscle without any matching exercise is skipped, so the plan may contain fewer sets than allocated.
func SelectExercises(
	allocation Allocation,
	catalog []Exercise,
	equipment []Equipment,
	level DifficultyLevel,
	logger *slog.Logger,
) []ExerciseWithSets {
	logger = loggerOrDiscard(logger)
	ctx := context.Background()
	var selected []ExerciseWithSets
	seen := make(map[MuscleGroup]struct{}, len(allocation))

	for _, entry := range allocation {
		if !entry.Muscle.Valid() || entry.Sets <= 0 {
			logger.LogAttrs(ctx, slog.LevelWarn, "skipping invalid allocation entry",
				slog.String("muscle_group", string(entry.Muscle)), slog.Int("sets", entry.Sets))
			continue
		}
		if _, dup := seen[entry.Muscle]; dup {
			logger.LogAttrs(ctx, slog.LevelWarn, "skipping duplicate allocation entry",
				slog.String("muscle_group", string(entry.Muscle)))
			continue
		}
		seen[entry.Muscle] = struct{}{}

		candidates := candidatesFor(entry.Muscle, catalog, equipment, level)
		if len(candidates) == 0 {
			logger.LogAttrs(ctx, slog.LevelWarn, "no matching exercise",
				slog.String("muscle_group", string(entry.Muscle)), slog.Int("sets", entry.Sets))
			continue
		}
		selected = append(selected, distributeSets(candidates, entry.Sets)...)
	}

	return selected
}
