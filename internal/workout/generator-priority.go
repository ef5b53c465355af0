package workout

import (
	"math"
	"slices"
	"time"
)

// Priority scoring constants.
const (
	// UntrainedDays is assumed for muscles that have never been trained.
	UntrainedDays = 7

	daysWeight         = 10
	belowMinimumBonus  = 200
	focusBonus         = 150
	unspecifiedRecover = 0.5

	// MinutesPerSet is the planning cost of one set, used to turn a time budget into a set budget.
	MinutesPerSet = 3
	// MaxSetsFirstMuscle is the set credit of the highest priority muscle. Each following muscle is credited one
	// set less.
	MaxSetsFirstMuscle = 5
)

// Scores maps muscle groups to their training priority. Scores only have meaning relative to each other.
type Scores map[MuscleGroup]int

// recoveryMultiplier weights the recovery status by the subjective feedback of the user.
func recoveryMultiplier(f RecoveryFeedback) float64 {
	switch f {
	case RecoveryFullyRecovered:
		return 1.0
	case RecoverySomewhatSore:
		return 0.7 //nolint:mnd // somewhat sore
	case RecoveryVerySore:
		return 0.3 //nolint:mnd // very sore
	default:
		return unspecifiedRecover
	}
}

// daysSinceTrained rounds the time since last training up to whole days.
func daysSinceTrained(now time.Time, last *time.Time) int {
	if last == nil {
		return UntrainedDays
	}
	elapsed := now.Sub(*last)
	if elapsed < 0 {
		elapsed = -elapsed
	}
	return int(math.Ceil(elapsed.Hours() / 24)) //nolint:mnd // hours in a day
}

// ScorePriorities computes the training priority of every muscle group. A higher score means the muscle should be
// trained sooner.
func ScorePriorities(metrics Metrics, feedback RecoveryInput, now time.Time) Scores {
	scores := make(Scores, len(muscleGroups))
	for _, m := range muscleGroups {
		metric, ok := metrics[m]
		if !ok {
			continue
		}
		score := float64(metric.RecoveryStatus) * recoveryMultiplier(feedback[m])
		score += float64(daysSinceTrained(now, metric.LastTrainedDate) * daysWeight)
		if metric.VolumeNeededForMinimum > 0 {
			score += belowMinimumBonus
		}
		if metric.IsFocused {
			score += focusBonus
		}
		scores[m] = int(math.Floor(score + 0.5)) //nolint:mnd // round half up
	}
	return scores
}

// rankByScore orders muscle groups by descending score. Ties keep the canonical muscle group order.
func rankByScore(scores Scores) []MuscleGroup {
	ranked := make([]MuscleGroup, 0, len(scores))
	for _, m := range muscleGroups {
		if _, ok := scores[m]; ok {
			ranked = append(ranked, m)
		}
	}
	slices.SortStableFunc(ranked, func(a, b MuscleGroup) int {
		return scores[b] - scores[a]
	})
	return ranked
}

// SelectMuscles chooses the muscle groups for a workout of availableTime minutes.
//
// Muscles are taken greedily in score order. The first muscle is credited up to five sets, the next one up to four
// and so on, never exceeding the set budget derived from the available time.
func SelectMuscles(scores Scores, availableTime int) []MuscleGroup {
	maxSets := availableTime / MinutesPerSet
	if availableTime < 0 {
		maxSets = 0
	}
	var (
		selected  []MuscleGroup
		estimated int
	)
	for _, m := range rankByScore(scores) {
		if estimated >= maxSets {
			break
		}
		setsToAdd := min(MaxSetsFirstMuscle-len(selected), maxSets-estimated)
		if setsToAdd <= 0 {
			break
		}
		selected = append(selected, m)
		estimated += setsToAdd
	}
	return selected
}
