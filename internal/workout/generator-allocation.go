package workout

// Volume allocation constants.
const (
	FocusedFloorSets      = 4
	BelowMinimumFloorSets = 3
	DefaultFloorSets      = 2
	FocusedCapSets        = 6
	DefaultCapSets        = 5
)

// SetAllocation assigns a number of sets to a muscle group.
type SetAllocation struct {
	Muscle MuscleGroup `json:"muscle"`
	Sets   int         `json:"sets"`
}

// Allocation is an ordered list of set assignments. The order is the order exercises are picked in.
type Allocation []SetAllocation

// Total sums the sets of all entries.
func (a Allocation) Total() int {
	total := 0
	for _, e := range a {
		total += e.Sets
	}
	return total
}

// Sets returns the sets allocated to m, or zero.
func (a Allocation) Sets(m MuscleGroup) int {
	for _, e := range a {
		if e.Muscle == m {
			return e.Sets
		}
	}
	return 0
}

// Muscles lists the muscle groups of the allocation in order.
func (a Allocation) Muscles() []MuscleGroup {
	muscles := make([]MuscleGroup, 0, len(a))
	for _, e := range a {
		muscles = append(muscles, e.Muscle)
	}
	return muscles
}

// floorSets is the guaranteed number of sets for a muscle in the first allocation pass.
func floorSets(metric MuscleMetric) int {
	switch {
	case metric.IsFocused:
		return FocusedFloorSets
	case metric.VolumeNeededForMinimum > 0:
		return BelowMinimumFloorSets
	default:
		return DefaultFloorSets
	}
}

// AllocateVolume assigns sets to the selected muscles within availableTime minutes.
//
// Every muscle first gets its floor. Leftover time is then spent one set at a time, preferring focused muscles up to
// six sets and then other muscles up to five sets, in selection order.
func AllocateVolume(selected []MuscleGroup, metrics Metrics, availableTime int) Allocation {
	allocation := make(Allocation, 0, len(selected))
	seen := make(map[MuscleGroup]struct{}, len(selected))
	remaining := availableTime

	for _, m := range selected {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		sets := floorSets(metrics[m])
		allocation = append(allocation, SetAllocation{Muscle: m, Sets: sets})
		remaining -= sets * MinutesPerSet
	}

	for remaining >= MinutesPerSet {
		i := allocation.nextIncrement(metrics)
		if i < 0 {
			break
		}
		allocation[i].Sets++
		remaining -= MinutesPerSet
	}

	return allocation
}

// nextIncrement finds the entry that receives the next set, or -1 when every muscle is at its cap.
func (a Allocation) nextIncrement(metrics Metrics) int {
	for i, e := range a {
		if metrics[e.Muscle].IsFocused && e.Sets < FocusedCapSets {
			return i
		}
	}
	for i, e := range a {
		if !metrics[e.Muscle].IsFocused && e.Sets < DefaultCapSets {
			return i
		}
	}
	return -1
}
