package workout

import (
	"slices"
	"time"

	"github.com/myrjola/setplan/internal/ptr"
)

// Dashboard recommendation constants.
const (
	PrimaryFocusLimit   = 3
	SecondaryFocusLimit = 2
	MaintenanceLimit    = 1

	ZeroVolumeSets       = 5
	FarBelowMinimumSets  = 4
	BelowMinimumSets     = 3
	SecondaryFocusSets   = 3
	MaintenanceSets      = 2
	farBelowPercent      = 30
	fallbackMinimumDose  = 10
	wellRecoveredAbove   = 90
	approachingThreshold = 60
)

// Recommendation is the preview of the next workout shown on the dashboard.
type Recommendation struct {
	PrimaryFocus   []SetAllocation `json:"primaryFocus"`
	SecondaryFocus []SetAllocation `json:"secondaryFocus"`
	Maintenance    []SetAllocation `json:"maintenance"`
}

// Allocation flattens the recommendation into a forced allocation, primary focus first.
func (r Recommendation) Allocation() Allocation {
	out := make(Allocation, 0, len(r.PrimaryFocus)+len(r.SecondaryFocus)+len(r.Maintenance))
	out = append(out, r.PrimaryFocus...)
	out = append(out, r.SecondaryFocus...)
	out = append(out, r.Maintenance...)
	return out
}

// Muscles lists the recommended muscle groups in allocation order.
func (r Recommendation) Muscles() []MuscleGroup {
	return r.Allocation().Muscles()
}

// Empty reports whether nothing is recommended.
func (r Recommendation) Empty() bool {
	return len(r.PrimaryFocus) == 0 && len(r.SecondaryFocus) == 0 && len(r.Maintenance) == 0
}

type muscleNeed struct {
	muscle          MuscleGroup
	focused         bool
	zeroVolume      bool
	recovery        int
	percentComplete float64
}

// percentOfMinimum returns the weekly volume as a percentage of the minimum dose. A missing or zero minimum dose
// counts as ten sets.
func percentOfMinimum(weekly float64, setting MuscleGroupSetting, ok bool) float64 {
	minimum := setting.MinimumDose
	if !ok || minimum == 0 {
		minimum = fallbackMinimumDose
	}
	return weekly / float64(minimum) * 100 //nolint:mnd // percent
}

// focusFirst orders focused muscles before others and returns 0 when both are equal.
func focusFirst(a, b muscleNeed) int {
	switch {
	case a.focused && !b.focused:
		return -1
	case !a.focused && b.focused:
		return 1
	default:
		return 0
	}
}

// RecommendNext suggests the next workout from metrics alone, without subjective recovery input.
//
// Muscles below their minimum dose are ranked with untrained muscles first. The top three become the primary focus,
// the next two the secondary focus, and one well recovered muscle that meets its minimum is added for maintenance.
func RecommendNext(metrics Metrics, settings Settings) Recommendation {
	var zeroVolume, belowMinimum []muscleNeed
	for _, m := range muscleGroups {
		metric, ok := metrics[m]
		if !ok || metric.VolumeNeededForMinimum <= 0 {
			continue
		}
		setting, hasSetting := settings[m]
		need := muscleNeed{
			muscle:          m,
			focused:         metric.IsFocused,
			zeroVolume:      metric.WeeklyVolume == 0,
			recovery:        metric.RecoveryStatus,
			percentComplete: percentOfMinimum(metric.WeeklyVolume, setting, hasSetting),
		}
		if need.zeroVolume {
			zeroVolume = append(zeroVolume, need)
		} else {
			belowMinimum = append(belowMinimum, need)
		}
	}

	slices.SortStableFunc(zeroVolume, func(a, b muscleNeed) int {
		if c := focusFirst(a, b); c != 0 {
			return c
		}
		return b.recovery - a.recovery
	})
	slices.SortStableFunc(belowMinimum, func(a, b muscleNeed) int {
		if c := focusFirst(a, b); c != 0 {
			return c
		}
		switch {
		case a.percentComplete < b.percentComplete:
			return -1
		case a.percentComplete > b.percentComplete:
			return 1
		default:
			return 0
		}
	})
	needs := slices.Concat(zeroVolume, belowMinimum)

	rec := Recommendation{
		PrimaryFocus:   []SetAllocation{},
		SecondaryFocus: []SetAllocation{},
		Maintenance:    []SetAllocation{},
	}
	chosen := make(map[MuscleGroup]struct{})
	for i, need := range needs {
		switch {
		case i < PrimaryFocusLimit:
			sets := BelowMinimumSets
			switch {
			case need.zeroVolume:
				sets = ZeroVolumeSets
			case need.percentComplete < farBelowPercent:
				sets = FarBelowMinimumSets
			}
			rec.PrimaryFocus = append(rec.PrimaryFocus, SetAllocation{Muscle: need.muscle, Sets: sets})
		case i < PrimaryFocusLimit+SecondaryFocusLimit:
			rec.SecondaryFocus = append(rec.SecondaryFocus, SetAllocation{Muscle: need.muscle, Sets: SecondaryFocusSets})
		default:
			continue
		}
		chosen[need.muscle] = struct{}{}
	}

	var maintenance []MuscleGroup
	for _, m := range muscleGroups {
		metric, ok := metrics[m]
		if !ok {
			continue
		}
		if _, taken := chosen[m]; taken {
			continue
		}
		if metric.RecoveryStatus > wellRecoveredAbove && metric.VolumeNeededForMinimum == 0 {
			maintenance = append(maintenance, m)
		}
	}
	slices.SortStableFunc(maintenance, func(a, b MuscleGroup) int {
		return metrics[b].RecoveryStatus - metrics[a].RecoveryStatus
	})
	for _, m := range maintenance[:min(MaintenanceLimit, len(maintenance))] {
		rec.Maintenance = append(rec.Maintenance, SetAllocation{Muscle: m, Sets: MaintenanceSets})
	}

	return rec
}

// DoseStatus classifies the weekly volume of a muscle group against its minimum dose.
type DoseStatus string

const (
	DoseBelowMinimum       DoseStatus = "below_minimum"
	DoseApproachingMinimum DoseStatus = "approaching_minimum"
	DoseMeetingMinimum     DoseStatus = "meeting_minimum"
	DoseNotTrained         DoseStatus = "not_trained"
)

// MuscleSummary is one dashboard row.
type MuscleSummary struct {
	Muscle           MuscleGroup `json:"muscle"`
	Status           DoseStatus  `json:"status"`
	WeeklyVolume     float64     `json:"weeklyVolume"`
	MinimumDose      int         `json:"minimumDose"`
	RecoveryStatus   int         `json:"recoveryStatus"`
	IsFocused        bool        `json:"isFocused"`
	DaysSinceTrained *int        `json:"daysSinceTrained"`
}

// Summarize classifies every muscle group for the dashboard. Muscles under their minimum dose are approaching it
// once they reach 60 percent of it.
func Summarize(metrics Metrics, settings Settings, now time.Time) []MuscleSummary {
	summary := make([]MuscleSummary, 0, len(muscleGroups))
	for _, m := range muscleGroups {
		metric, ok := metrics[m]
		if !ok {
			continue
		}
		minimum := settings[m].MinimumDose
		row := MuscleSummary{
			Muscle:           m,
			Status:           DoseNotTrained,
			WeeklyVolume:     metric.WeeklyVolume,
			MinimumDose:      minimum,
			RecoveryStatus:   metric.RecoveryStatus,
			IsFocused:        metric.IsFocused,
			DaysSinceTrained: nil,
		}
		if metric.LastTrainedDate != nil {
			row.DaysSinceTrained = ptr.Ref(max(0, elapsedDays(now, *metric.LastTrainedDate)))
		}
		switch {
		case metric.VolumeNeededForMinimum > 0 &&
			metric.WeeklyVolume >= float64(minimum)*approachingThreshold/100:
			row.Status = DoseApproachingMinimum
		case metric.VolumeNeededForMinimum > 0:
			row.Status = DoseBelowMinimum
		case metric.WeeklyVolume > 0:
			row.Status = DoseMeetingMinimum
		}
		summary = append(summary, row)
	}
	return summary
}
