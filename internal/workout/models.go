package workout

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"
)

// MuscleGroup is one entry of the fixed anatomical enumeration the planner reasons about.
type MuscleGroup string

// Muscle group constants. The set is closed and not user-extensible.
const (
	MuscleGroupChest      MuscleGroup = "chest"
	MuscleGroupBack       MuscleGroup = "back"
	MuscleGroupShoulders  MuscleGroup = "shoulders"
	MuscleGroupBiceps     MuscleGroup = "biceps"
	MuscleGroupTriceps    MuscleGroup = "triceps"
	MuscleGroupQuads      MuscleGroup = "quads"
	MuscleGroupHamstrings MuscleGroup = "hamstrings"
	MuscleGroupGlutes     MuscleGroup = "glutes"
	MuscleGroupCore       MuscleGroup = "core"
)

// muscleGroups lists every muscle group in canonical order. Iteration over metrics, scores and settings always
// follows this order so that ties are broken deterministically.
//
//nolint:gochecknoglobals // closed enumeration.
var muscleGroups = []MuscleGroup{
	MuscleGroupChest,
	MuscleGroupBack,
	MuscleGroupShoulders,
	MuscleGroupBiceps,
	MuscleGroupTriceps,
	MuscleGroupQuads,
	MuscleGroupHamstrings,
	MuscleGroupGlutes,
	MuscleGroupCore,
}

// MuscleGroups returns all muscle groups in canonical order.
func MuscleGroups() []MuscleGroup {
	return slices.Clone(muscleGroups)
}

// Valid reports whether m belongs to the closed muscle group enumeration.
func (m MuscleGroup) Valid() bool {
	return slices.Contains(muscleGroups, m)
}

// ParseMuscleGroup converts a string into a MuscleGroup, rejecting anything outside the enumeration.
func ParseMuscleGroup(s string) (MuscleGroup, error) {
	m := MuscleGroup(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMuscleGroup, s)
	}
	return m, nil
}

// ExerciseType classifies an exercise as multi-joint or single-joint.
type ExerciseType string

const (
	ExerciseTypeCompound  ExerciseType = "compound"
	ExerciseTypeIsolation ExerciseType = "isolation"
)

// DifficultyLevel is used both for exercises and for the experience level of the user.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// Valid reports whether d is a known difficulty level.
func (d DifficultyLevel) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	default:
		return false
	}
}

// Equipment is a tag describing what an exercise needs.
type Equipment string

const (
	EquipmentBarbell    Equipment = "barbell"
	EquipmentDumbbell   Equipment = "dumbbell"
	EquipmentCable      Equipment = "cable"
	EquipmentMachine    Equipment = "machine"
	EquipmentBodyweight Equipment = "bodyweight"
	EquipmentKettlebell Equipment = "kettlebell"
	EquipmentBands      Equipment = "bands"
	EquipmentBench      Equipment = "bench"
	EquipmentAbWheel    Equipment = "ab wheel"
	EquipmentOther      Equipment = "other"
)

//nolint:gochecknoglobals // closed enumeration.
var equipmentTags = []Equipment{
	EquipmentBarbell, EquipmentDumbbell, EquipmentCable, EquipmentMachine, EquipmentBodyweight,
	EquipmentKettlebell, EquipmentBands, EquipmentBench, EquipmentAbWheel, EquipmentOther,
}

// Valid reports whether e is a known equipment tag.
func (e Equipment) Valid() bool {
	return slices.Contains(equipmentTags, e)
}

// TrainingGoal drives rest periods and therefore workout duration.
type TrainingGoal string

const (
	TrainingGoalStrength    TrainingGoal = "strength"
	TrainingGoalHypertrophy TrainingGoal = "hypertrophy"
	TrainingGoalEndurance   TrainingGoal = "endurance"
	TrainingGoalBlend       TrainingGoal = "blend"
)

// Valid reports whether g is a known training goal.
func (g TrainingGoal) Valid() bool {
	switch g {
	case TrainingGoalStrength, TrainingGoalHypertrophy, TrainingGoalEndurance, TrainingGoalBlend:
		return true
	default:
		return false
	}
}

// RecoveryFeedback is the subjective soreness reported for a muscle group before a workout.
type RecoveryFeedback string

const (
	RecoveryFullyRecovered RecoveryFeedback = "fully_recovered"
	RecoverySomewhatSore   RecoveryFeedback = "somewhat_sore"
	RecoveryVerySore       RecoveryFeedback = "very_sore"
)

// Valid reports whether f is a known feedback value. The empty value means unspecified and is not valid.
func (f RecoveryFeedback) Valid() bool {
	switch f {
	case RecoveryFullyRecovered, RecoverySomewhatSore, RecoveryVerySore:
		return true
	default:
		return false
	}
}

// RecoveryInput maps muscle groups to their reported feedback. Missing entries are unspecified.
type RecoveryInput map[MuscleGroup]RecoveryFeedback

// MuscleGroupSetting holds the weekly dose targets of one muscle group.
type MuscleGroupSetting struct {
	// MinimumDose is the number of weekly sets below which the muscle is under-trained.
	MinimumDose int `json:"minimumDose" yaml:"minimum_dose"`
	// FocusTarget is the weekly set goal when the muscle is a focus area.
	FocusTarget int `json:"focusTarget" yaml:"focus_target"`
	// RecoveryRate is reserved and not consumed by the planner.
	RecoveryRate int `json:"recoveryRate" yaml:"recovery_rate"`
}

// Settings maps every muscle group to its dose settings.
type Settings map[MuscleGroup]MuscleGroupSetting

// MuscleMetric is the derived training state of one muscle group.
type MuscleMetric struct {
	WeeklyVolume           float64    `json:"weeklyVolume"`
	LastTrainedDate        *time.Time `json:"lastTrainedDate"`
	RecoveryStatus         int        `json:"recoveryStatus"`
	VolumeNeededForMinimum float64    `json:"volumeNeededForMinimum"`
	VolumeNeededForFocus   float64    `json:"volumeNeededForFocus"`
	IsFocused              bool       `json:"isFocused"`
}

// Metrics maps muscle groups to their derived state.
type Metrics map[MuscleGroup]MuscleMetric

// clone returns a deep copy so that callers can derive new metrics without mutating their input.
func (m Metrics) clone() Metrics {
	out := make(Metrics, len(m))
	for muscle, metric := range m {
		if metric.LastTrainedDate != nil {
			last := *metric.LastTrainedDate
			metric.LastTrainedDate = &last
		}
		out[muscle] = metric
	}
	return out
}

// Exercise is a read-only catalog entry.
type Exercise struct {
	ID                    string          `json:"id"`
	Name                  string          `json:"name"`
	PrimaryMuscleGroup    MuscleGroup     `json:"primaryMuscleGroup"`
	SecondaryMuscleGroups []MuscleGroup   `json:"secondaryMuscleGroups"`
	ExerciseType          ExerciseType    `json:"exerciseType"`
	Equipment             []Equipment     `json:"equipment"`
	DifficultyLevel       DifficultyLevel `json:"difficultyLevel"`
	Instructions          string          `json:"instructions,omitempty"`
}

// validate checks an exercise against the closed enumerations.
func (e Exercise) validate() error {
	if e.Name == "" {
		return errors.New("exercise name is empty")
	}
	if !e.PrimaryMuscleGroup.Valid() {
		return fmt.Errorf("primary muscle group: %w: %q", ErrUnknownMuscleGroup, e.PrimaryMuscleGroup)
	}
	for _, m := range e.SecondaryMuscleGroups {
		if !m.Valid() {
			return fmt.Errorf("secondary muscle group: %w: %q", ErrUnknownMuscleGroup, m)
		}
		if m == e.PrimaryMuscleGroup {
			return fmt.Errorf("secondary muscle group %q repeats the primary", m)
		}
	}
	if e.ExerciseType != ExerciseTypeCompound && e.ExerciseType != ExerciseTypeIsolation {
		return fmt.Errorf("invalid exercise type %q", e.ExerciseType)
	}
	if len(e.Equipment) == 0 {
		return errors.New("exercise has no equipment")
	}
	for _, eq := range e.Equipment {
		if !eq.Valid() {
			return fmt.Errorf("invalid equipment %q", eq)
		}
	}
	if !e.DifficultyLevel.Valid() {
		return fmt.Errorf("invalid difficulty level %q", e.DifficultyLevel)
	}
	return nil
}

// ExerciseWithSets is a catalog exercise with the number of sets planned for it.
type ExerciseWithSets struct {
	Exercise
	Sets int `json:"sets"`
}

// SupersetType describes how the exercises of a superset entry relate to each other.
type SupersetType string

const (
	SupersetAntagonist     SupersetType = "antagonist"
	SupersetNonOverlapping SupersetType = "non_overlapping"
	SupersetStraightSet    SupersetType = "straight_set"
)

// Superset is one entry of a superset workout. Straight set entries hold exactly one exercise.
type Superset struct {
	Type      SupersetType       `json:"type"`
	Exercises []ExerciseWithSets `json:"exercises"`
}

// Structure is the arrangement of a workout. It is either StraightSets or Supersets.
type Structure interface {
	structureType() string
}

// StraightSets performs every exercise on its own, one after another.
type StraightSets struct {
	Exercises []ExerciseWithSets
}

// Supersets groups exercises into pairs where possible to save time.
type Supersets struct {
	Sets []Superset
}

func (StraightSets) structureType() string { return "straight_sets" }
func (Supersets) structureType() string    { return "supersets" }

// Flatten lists every exercise of the structure in the order it is performed.
func Flatten(s Structure) []ExerciseWithSets {
	switch v := s.(type) {
	case StraightSets:
		return slices.Clone(v.Exercises)
	case Supersets:
		var out []ExerciseWithSets
		for _, set := range v.Sets {
			out = append(out, set.Exercises...)
		}
		return out
	case nil:
		return nil
	default:
		panic(fmt.Sprintf("unhandled workout structure %T", s))
	}
}

// Plan is a generated workout.
type Plan struct {
	MusclesTargeted   []MuscleGroup
	EstimatedDuration int
	Workout           Structure
}

type structureJSON struct {
	Type      string             `json:"type"`
	Exercises []ExerciseWithSets `json:"exercises,omitempty"`
	Sets      []Superset         `json:"sets,omitempty"`
}

type planJSON struct {
	MusclesTargeted   []MuscleGroup `json:"musclesTargeted"`
	EstimatedDuration int           `json:"estimatedDuration"`
	Workout           structureJSON `json:"workout"`
}

// MarshalJSON encodes the workout structure as a tagged variant.
func (p Plan) MarshalJSON() ([]byte, error) {
	out := planJSON{
		MusclesTargeted:   p.MusclesTargeted,
		EstimatedDuration: p.EstimatedDuration,
		Workout:           structureJSON{Type: "", Exercises: nil, Sets: nil},
	}
	switch v := p.Workout.(type) {
	case StraightSets:
		out.Workout.Type = v.structureType()
		out.Workout.Exercises = v.Exercises
	case Supersets:
		out.Workout.Type = v.structureType()
		out.Workout.Sets = v.Sets
	case nil:
		out.Workout.Type = StraightSets{}.structureType()
	default:
		return nil, fmt.Errorf("unhandled workout structure %T", p.Workout)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	return data, nil
}

// UnmarshalJSON decodes a tagged workout variant.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var in planJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("unmarshal plan: %w", err)
	}
	p.MusclesTargeted = in.MusclesTargeted
	p.EstimatedDuration = in.EstimatedDuration
	switch in.Workout.Type {
	case StraightSets{}.structureType(), "":
		p.Workout = StraightSets{Exercises: in.Workout.Exercises}
	case Supersets{}.structureType():
		p.Workout = Supersets{Sets: in.Workout.Sets}
	default:
		return fmt.Errorf("unknown workout type %q", in.Workout.Type)
	}
	return nil
}

// LoggedExercise is an exercise as recorded in the workout history.
type LoggedExercise struct {
	ID                    string        `json:"id"`
	Name                  string        `json:"name"`
	Sets                  int           `json:"sets"`
	PrimaryMuscleGroup    MuscleGroup   `json:"primaryMuscleGroup"`
	SecondaryMuscleGroups []MuscleGroup `json:"secondaryMuscleGroups"`
	ExerciseType          ExerciseType  `json:"exerciseType"`
}

// LoggedWorkout is an append-only history record.
type LoggedWorkout struct {
	ID               string           `json:"id"`
	Date             time.Time        `json:"date"`
	Duration         int              `json:"duration"`
	MusclesTargeted  []MuscleGroup    `json:"musclesTargeted"`
	Exercises        []LoggedExercise `json:"exercises"`
	RecoveryFeedback RecoveryInput    `json:"recoveryFeedback,omitempty"`
}

// Profile carries everything the planner needs to know about the user.
type Profile struct {
	ExperienceLevel     DifficultyLevel `json:"experienceLevel" yaml:"experience_level"`
	AvailableEquipment  []Equipment     `json:"availableEquipment" yaml:"available_equipment"`
	TrainingGoal        TrainingGoal    `json:"trainingGoal" yaml:"training_goal"`
	FocusAreas          []MuscleGroup   `json:"focusAreas" yaml:"focus_areas"`
	MuscleGroupSettings Settings        `json:"muscleGroupSettings" yaml:"muscle_group_settings"`
}

// Validate checks the profile against the closed enumerations.
func (p Profile) Validate() error {
	var errs []error
	if !p.ExperienceLevel.Valid() {
		errs = append(errs, fmt.Errorf("experience level %q", p.ExperienceLevel))
	}
	if !p.TrainingGoal.Valid() {
		errs = append(errs, fmt.Errorf("training goal %q", p.TrainingGoal))
	}
	for _, eq := range p.AvailableEquipment {
		if !eq.Valid() {
			errs = append(errs, fmt.Errorf("equipment %q", eq))
		}
	}
	for _, m := range p.FocusAreas {
		if !m.Valid() {
			errs = append(errs, fmt.Errorf("focus area: %w: %q", ErrUnknownMuscleGroup, m))
		}
	}
	for m, setting := range p.MuscleGroupSettings {
		if !m.Valid() {
			errs = append(errs, fmt.Errorf("settings: %w: %q", ErrUnknownMuscleGroup, m))
			continue
		}
		if setting.MinimumDose < 0 {
			errs = append(errs, fmt.Errorf("%s: negative minimum dose %d", m, setting.MinimumDose))
		}
		if setting.FocusTarget < setting.MinimumDose {
			errs = append(errs, fmt.Errorf("%s: focus target %d below minimum dose %d",
				m, setting.FocusTarget, setting.MinimumDose))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, errors.Join(errs...))
	}
	return nil
}

// DefaultProfile returns the profile new users start with.
func DefaultProfile() Profile {
	return Profile{
		ExperienceLevel:    DifficultyIntermediate,
		AvailableEquipment: []Equipment{EquipmentBarbell, EquipmentDumbbell, EquipmentBench, EquipmentBodyweight},
		TrainingGoal:       TrainingGoalHypertrophy,
		FocusAreas:         []MuscleGroup{},
		MuscleGroupSettings: Settings{
			MuscleGroupChest:      {MinimumDose: 10, FocusTarget: 16, RecoveryRate: 8},
			MuscleGroupBack:       {MinimumDose: 10, FocusTarget: 16, RecoveryRate: 8},
			MuscleGroupShoulders:  {MinimumDose: 10, FocusTarget: 15, RecoveryRate: 7},
			MuscleGroupBiceps:     {MinimumDose: 8, FocusTarget: 14, RecoveryRate: 8},
			MuscleGroupTriceps:    {MinimumDose: 8, FocusTarget: 12, RecoveryRate: 8},
			MuscleGroupQuads:      {MinimumDose: 8, FocusTarget: 12, RecoveryRate: 6},
			MuscleGroupHamstrings: {MinimumDose: 8, FocusTarget: 12, RecoveryRate: 6},
			MuscleGroupGlutes:     {MinimumDose: 8, FocusTarget: 12, RecoveryRate: 6},
			MuscleGroupCore:       {MinimumDose: 8, FocusTarget: 12, RecoveryRate: 9},
		},
	}
}
