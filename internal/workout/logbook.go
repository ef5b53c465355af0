package workout

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// LogWorkout turns a plan into an append-ready history record dated now. It does not persist anything.
func LogWorkout(plan Plan, now time.Time) LoggedWorkout {
	flat := Flatten(plan.Workout)
	exercises := make([]LoggedExercise, 0, len(flat))
	for _, e := range flat {
		id := e.ID
		if id == "" {
			id = "ex-" + uuid.NewString()
		}
		secondary := slices.Clone(e.SecondaryMuscleGroups)
		if secondary == nil {
			secondary = []MuscleGroup{}
		}
		exerciseType := e.ExerciseType
		if exerciseType == "" {
			exerciseType = ExerciseTypeCompound
		}
		exercises = append(exercises, LoggedExercise{
			ID:                    id,
			Name:                  e.Name,
			Sets:                  e.Sets,
			PrimaryMuscleGroup:    e.PrimaryMuscleGroup,
			SecondaryMuscleGroups: secondary,
			ExerciseType:          exerciseType,
		})
	}

	targeted := slices.Clone(plan.MusclesTargeted)
	if targeted == nil {
		targeted = []MuscleGroup{}
	}

	return LoggedWorkout{
		ID:               uuid.NewString(),
		Date:             now,
		Duration:         plan.EstimatedDuration,
		MusclesTargeted:  targeted,
		Exercises:        exercises,
		RecoveryFeedback: nil,
	}
}

// validate reports every reason the plan cannot be logged. Records that pass it never trip the
// malformed-record guards in RebuildMetrics or the duration constraint of the workouts table.
func (p Plan) validate() error {
	var errs []error
	if p.EstimatedDuration < 0 {
		errs = append(errs, fmt.Errorf("negative estimated duration %d", p.EstimatedDuration))
	}
	for _, m := range p.MusclesTargeted {
		if !m.Valid() {
			errs = append(errs, fmt.Errorf("targeted muscle group: %w: %q", ErrUnknownMuscleGroup, m))
		}
	}
	for _, e := range Flatten(p.Workout) {
		if e.Sets < 1 {
			errs = append(errs, fmt.Errorf("exercise %q: invalid set count %d", e.Name, e.Sets))
		}
		if !e.PrimaryMuscleGroup.Valid() {
			errs = append(errs, fmt.Errorf("exercise %q: primary muscle group: %w: %q",
				e.Name, ErrUnknownMuscleGroup, e.PrimaryMuscleGroup))
		}
		for _, m := range e.SecondaryMuscleGroups {
			if !m.Valid() {
				errs = append(errs, fmt.Errorf("exercise %q: secondary muscle group: %w: %q",
					e.Name, ErrUnknownMuscleGroup, m))
			}
		}
	}
	return errors.Join(errs...)
}
