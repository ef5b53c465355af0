package workout

import "math"

// Timing constants for duration estimates.
const (
	WorkSecondsPerSet        = 45
	SetupSecondsPerExercise  = 60
	StrengthRestSeconds      = 180
	HypertrophyRestSeconds   = 90
	DefaultRestSeconds       = 60
	secondsPerMinute         = 60
	exercisesPerSupersetPair = 2
)

// musclePair is an ordered pair of muscle groups that can be trained back to back.
type musclePair struct {
	first, second MuscleGroup
}

// Pairing tables are walked in order, pairing at most one exercise couple per entry.
//
//nolint:gochecknoglobals // lookup tables.
var (
	antagonistPairs = []musclePair{
		{MuscleGroupChest, MuscleGroupBack},
		{MuscleGroupBiceps, MuscleGroupTriceps},
		{MuscleGroupQuads, MuscleGroupHamstrings},
		{MuscleGroupShoulders, MuscleGroupCore},
		{MuscleGroupGlutes, MuscleGroupCore},
	}
	nonOverlappingPairs = []musclePair{
		{MuscleGroupShoulders, MuscleGroupQuads},
		{MuscleGroupChest, MuscleGroupCore},
		{MuscleGroupBack, MuscleGroupGlutes},
		{MuscleGroupBiceps, MuscleGroupHamstrings},
		{MuscleGroupTriceps, MuscleGroupQuads},
	}
)

// RestSeconds returns the rest between sets for a training goal.
func RestSeconds(goal TrainingGoal) int {
	switch goal {
	case TrainingGoalStrength:
		return StrengthRestSeconds
	case TrainingGoalHypertrophy:
		return HypertrophyRestSeconds
	case TrainingGoalEndurance, TrainingGoalBlend:
		return DefaultRestSeconds
	default:
		return DefaultRestSeconds
	}
}

func totalSets(exercises []ExerciseWithSets) int {
	total := 0
	for _, e := range exercises {
		total += e.Sets
	}
	return total
}

// EstimateDuration estimates the minutes needed to perform the exercises, including rest and setup.
func EstimateDuration(exercises []ExerciseWithSets, goal TrainingGoal) int {
	sets := totalSets(exercises)
	seconds := sets*WorkSecondsPerSet + sets*RestSeconds(goal) + len(exercises)*SetupSecondsPerExercise
	return int(math.Ceil(float64(seconds) / secondsPerMinute))
}

// StructureWorkout arranges exercises as straight sets when they fit in availableTime, and as supersets otherwise.
// It returns the structure and its estimated duration in minutes.
func StructureWorkout(exercises []ExerciseWithSets, goal TrainingGoal, availableTime int) (Structure, int) {
	duration := EstimateDuration(exercises, goal)
	standardMinutes := float64(totalSets(exercises)*(WorkSecondsPerSet+RestSeconds(goal))) / secondsPerMinute
	if standardMinutes <= float64(availableTime) {
		return StraightSets{Exercises: exercises}, duration
	}
	return buildSupersets(exercises), duration
}

// buildSupersets pairs exercises greedily by the antagonist table and then the non-overlapping table. Unpaired
// exercises become straight set entries in their original order.
func buildSupersets(exercises []ExerciseWithSets) Supersets {
	byMuscle := make(map[MuscleGroup][]int)
	for i, e := range exercises {
		byMuscle[e.PrimaryMuscleGroup] = append(byMuscle[e.PrimaryMuscleGroup], i)
	}
	used := make([]bool, len(exercises))
	firstUnused := func(m MuscleGroup) int {
		for _, i := range byMuscle[m] {
			if !used[i] {
				return i
			}
		}
		return -1
	}

	var sets []Superset
	pairUp := func(pairs []musclePair, kind SupersetType) {
		for _, p := range pairs {
			a, b := firstUnused(p.first), firstUnused(p.second)
			if a < 0 || b < 0 {
				continue
			}
			used[a], used[b] = true, true
			pair := make([]ExerciseWithSets, 0, exercisesPerSupersetPair)
			sets = append(sets, Superset{Type: kind, Exercises: append(pair, exercises[a], exercises[b])})
		}
	}
	pairUp(antagonistPairs, SupersetAntagonist)
	pairUp(nonOverlappingPairs, SupersetNonOverlapping)

	for i, e := range exercises {
		if !used[i] {
			sets = append(sets, Superset{Type: SupersetStraightSet, Exercises: []ExerciseWithSets{e}})
		}
	}
	return Supersets{Sets: sets}
}
