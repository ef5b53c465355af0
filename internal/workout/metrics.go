package workout

import (
	"context"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/myrjola/setplan/internal/ptr"
)

// Metrics window and recovery heuristics.
const (
	// VolumeWindowDays is the trailing window, inclusive, in which logged sets count towards weekly volume.
	VolumeWindowDays = 7
	// SecondaryVolumeFactor discounts sets for muscles only secondarily involved in an exercise.
	SecondaryVolumeFactor = 0.5

	RecoveryFresh       = 100
	RecoveryPartial     = 85
	RecoveryJustTrained = 70
)

// discardLogger is used when callers pass a nil logger to the pure planning functions.
//
//nolint:gochecknoglobals // stateless.
var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func loggerOrDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return discardLogger
	}
	return logger
}

// elapsedDays returns the number of whole days between date and now, rounded down.
func elapsedDays(now, date time.Time) int {
	return int(math.Floor(now.Sub(date).Hours() / 24)) //nolint:mnd // hours in a day
}

// recoveryAfter estimates the recovery status of a muscle that was last trained days ago.
// A muscle that was only secondarily involved recovers faster on the same and following day.
func recoveryAfter(days int, primary bool) int {
	switch {
	case days <= 1 && primary:
		return RecoveryJustTrained
	case days <= 1, days == 2: //nolint:mnd // two days
		return RecoveryPartial
	default:
		return RecoveryFresh
	}
}

// newMetrics initialises every muscle group to its untrained state.
func newMetrics(focusAreas []MuscleGroup) Metrics {
	metrics := make(Metrics, len(muscleGroups))
	for _, m := range muscleGroups {
		metrics[m] = MuscleMetric{
			WeeklyVolume:           0,
			LastTrainedDate:        nil,
			RecoveryStatus:         RecoveryFresh,
			VolumeNeededForMinimum: 0,
			VolumeNeededForFocus:   0,
			IsFocused:              isFocusArea(focusAreas, m),
		}
	}
	return metrics
}

func isFocusArea(focusAreas []MuscleGroup, m MuscleGroup) bool {
	for _, f := range focusAreas {
		if f == m {
			return true
		}
	}
	return false
}

// muscleHit records whether a workout touched a muscle as primary.
type muscleHit map[MuscleGroup]bool

// RebuildMetrics derives the state of every muscle group from the workout history.
//
// The result depends only on its arguments. Malformed history records are skipped with a warning: workouts
// missing their exercise or target lists are ignored entirely, unknown muscle names and negative set counts are
// ignored individually.
func RebuildMetrics(
	history []LoggedWorkout,
	settings Settings,
	focusAreas []MuscleGroup,
	now time.Time,
	logger *slog.Logger,
) Metrics {
	logger = loggerOrDiscard(logger)
	ctx := context.Background()
	metrics := newMetrics(focusAreas)
	lastHitPrimary := make(map[MuscleGroup]bool, len(muscleGroups))

	for _, w := range history {
		if w.Exercises == nil || w.MusclesTargeted == nil {
			logger.LogAttrs(ctx, slog.LevelWarn, "skipping malformed workout: missing exercises or target muscles",
				slog.String("workout_id", w.ID))
			continue
		}
		for _, m := range w.MusclesTargeted {
			if !m.Valid() {
				logger.LogAttrs(ctx, slog.LevelWarn, "skipping unknown target muscle group",
					slog.String("workout_id", w.ID), slog.String("muscle_group", string(m)))
			}
		}

		days := elapsedDays(now, w.Date)
		inWindow := days <= VolumeWindowDays
		hits := make(muscleHit)

		for _, ex := range w.Exercises {
			if ex.Sets <= 0 {
				logger.LogAttrs(ctx, slog.LevelWarn, "skipping exercise with invalid set count",
					slog.String("workout_id", w.ID), slog.String("exercise", ex.Name), slog.Int("sets", ex.Sets))
				continue
			}
			if ex.PrimaryMuscleGroup.Valid() {
				hits[ex.PrimaryMuscleGroup] = true
				if inWindow {
					addVolume(metrics, ex.PrimaryMuscleGroup, float64(ex.Sets))
				}
			} else {
				logger.LogAttrs(ctx, slog.LevelWarn, "skipping unknown primary muscle group",
					slog.String("workout_id", w.ID), slog.String("muscle_group", string(ex.PrimaryMuscleGroup)))
			}
			for _, m := range ex.SecondaryMuscleGroups {
				if !m.Valid() {
					logger.LogAttrs(ctx, slog.LevelWarn, "skipping unknown secondary muscle group",
						slog.String("workout_id", w.ID), slog.String("muscle_group", string(m)))
					continue
				}
				if _, ok := hits[m]; !ok {
					hits[m] = false
				}
				if inWindow {
					addVolume(metrics, m, float64(ex.Sets)*SecondaryVolumeFactor)
				}
			}
		}

		for m, primary := range hits {
			metric := metrics[m]
			last := metric.LastTrainedDate
			newer := last == nil || w.Date.After(*last)
			// A primary hit on the same instant wins over a secondary one.
			sameButStronger := last != nil && w.Date.Equal(*last) && primary && !lastHitPrimary[m]
			if !newer && !sameButStronger {
				continue
			}
			metric.LastTrainedDate = ptr.Ref(w.Date)
			metric.RecoveryStatus = recoveryAfter(days, primary)
			lastHitPrimary[m] = primary
			metrics[m] = metric
		}
	}

	for _, m := range muscleGroups {
		if _, ok := settings[m]; !ok {
			logger.LogAttrs(ctx, slog.LevelWarn, "missing muscle group settings",
				slog.String("muscle_group", string(m)))
		}
		metrics[m] = withVolumeNeeds(metrics[m], settings[m])
	}

	return metrics
}

func addVolume(metrics Metrics, m MuscleGroup, volume float64) {
	metric := metrics[m]
	metric.WeeklyVolume += volume
	metrics[m] = metric
}

// withVolumeNeeds recomputes the deficit fields of a metric from its weekly volume.
func withVolumeNeeds(metric MuscleMetric, setting MuscleGroupSetting) MuscleMetric {
	metric.VolumeNeededForMinimum = math.Max(0, float64(setting.MinimumDose)-metric.WeeklyVolume)
	metric.VolumeNeededForFocus = 0
	if metric.IsFocused {
		metric.VolumeNeededForFocus = math.Max(0, float64(setting.FocusTarget)-metric.WeeklyVolume)
	}
	return metric
}

// ApplyLoggedWorkout folds a freshly logged workout into existing metrics without replaying the history.
//
// The metrics must have been built for the instant the workout was logged at. The result equals a full rebuild
// over the history including the workout. The input metrics are not modified.
func ApplyLoggedWorkout(metrics Metrics, w LoggedWorkout, settings Settings, logger *slog.Logger) Metrics {
	logger = loggerOrDiscard(logger)
	ctx := context.Background()
	out := metrics.clone()
	touched := make(map[MuscleGroup]struct{})

	if w.Exercises == nil || w.MusclesTargeted == nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "skipping malformed workout: missing exercises or target muscles",
			slog.String("workout_id", w.ID))
		return out
	}

	for _, ex := range w.Exercises {
		if ex.Sets <= 0 {
			logger.LogAttrs(ctx, slog.LevelWarn, "skipping exercise with invalid set count",
				slog.String("workout_id", w.ID), slog.String("exercise", ex.Name), slog.Int("sets", ex.Sets))
			continue
		}
		if m := ex.PrimaryMuscleGroup; m.Valid() {
			metric := out[m]
			metric.WeeklyVolume += float64(ex.Sets)
			metric.LastTrainedDate = ptr.Ref(w.Date)
			metric.RecoveryStatus = RecoveryJustTrained
			out[m] = metric
			touched[m] = struct{}{}
		}
		for _, m := range ex.SecondaryMuscleGroups {
			if !m.Valid() {
				continue
			}
			metric := out[m]
			metric.WeeklyVolume += float64(ex.Sets) * SecondaryVolumeFactor
			if metric.LastTrainedDate == nil || metric.LastTrainedDate.Before(w.Date) {
				metric.LastTrainedDate = ptr.Ref(w.Date)
				metric.RecoveryStatus = RecoveryPartial
			}
			out[m] = metric
			touched[m] = struct{}{}
		}
	}

	for m := range touched {
		out[m] = withVolumeNeeds(out[m], settings[m])
	}
	return out
}
