package workout

import (
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/setplan/internal/testhelpers"
)

func testExercise(id string, primary MuscleGroup, kind ExerciseType, level DifficultyLevel, eq ...Equipment) Exercise {
	return Exercise{
		ID:                    id,
		Name:                  id,
		PrimaryMuscleGroup:    primary,
		SecondaryMuscleGroups: []MuscleGroup{},
		ExerciseType:          kind,
		Equipment:             eq,
		DifficultyLevel:       level,
		Instructions:          "",
	}
}

func withSets(e Exercise, sets int) ExerciseWithSets {
	return ExerciseWithSets{Exercise: e, Sets: sets}
}

func freshMetrics(t *testing.T, focus ...MuscleGroup) Metrics {
	t.Helper()
	return RebuildMetrics(nil, DefaultProfile().MuscleGroupSettings, focus, testNow, nil)
}

func Test_ScorePriorities(t *testing.T) {
	metrics := freshMetrics(t, MuscleGroupCore)
	trained := testNow.Add(-36 * time.Hour)
	chest := metrics[MuscleGroupChest]
	chest.LastTrainedDate = &trained
	chest.RecoveryStatus = RecoveryJustTrained
	chest.VolumeNeededForMinimum = 0
	metrics[MuscleGroupChest] = chest

	scores := ScorePriorities(metrics, RecoveryInput{
		MuscleGroupBack:    RecoveryFullyRecovered,
		MuscleGroupQuads:   RecoverySomewhatSore,
		MuscleGroupBiceps:  RecoveryVerySore,
		MuscleGroupTriceps: "unknown",
	}, testNow)

	want := Scores{
		MuscleGroupChest:      55,  // 70*0.5 + 2*10
		MuscleGroupBack:       370, // 100 + 70 + 200
		MuscleGroupShoulders:  320,
		MuscleGroupBiceps:     300, // 30 + 70 + 200
		MuscleGroupTriceps:    320,
		MuscleGroupQuads:      340,
		MuscleGroupHamstrings: 320,
		MuscleGroupGlutes:     320,
		MuscleGroupCore:       470,
	}
	if diff := cmp.Diff(want, scores); diff != "" {
		t.Errorf("scores mismatch (-want +got):\n%s", diff)
	}
}

func Test_SelectMuscles(t *testing.T) {
	scores := ScorePriorities(freshMetrics(t), nil, testNow)

	tests := []struct {
		name          string
		availableTime int
		want          []MuscleGroup
	}{
		{
			name:          "an hour",
			availableTime: 60,
			want: []MuscleGroup{
				MuscleGroupChest, MuscleGroupBack, MuscleGroupShoulders, MuscleGroupBiceps, MuscleGroupTriceps,
			},
		},
		{name: "quarter of an hour", availableTime: 15, want: []MuscleGroup{MuscleGroupChest}},
		{name: "twenty minutes", availableTime: 20, want: []MuscleGroup{MuscleGroupChest, MuscleGroupBack}},
		{name: "no time", availableTime: 2, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, SelectMuscles(scores, tt.availableTime)); diff != "" {
				t.Errorf("selection mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_SelectMuscles_PrefersFocusAreas(t *testing.T) {
	scores := ScorePriorities(freshMetrics(t, MuscleGroupGlutes), nil, testNow)

	got := SelectMuscles(scores, 30)

	if len(got) == 0 || got[0] != MuscleGroupGlutes {
		t.Errorf("expected focused glutes first, got %v", got)
	}
}

func Test_SelectMuscles_RespectsBudget(t *testing.T) {
	scores := ScorePriorities(freshMetrics(t, MuscleGroupBack), nil, testNow)
	for availableTime := 0; availableTime <= 180; availableTime++ {
		selected := SelectMuscles(scores, availableTime)
		budget := availableTime / MinutesPerSet
		credited := 0
		for i := range selected {
			credited += min(MaxSetsFirstMuscle-i, budget-credited)
		}
		if credited > budget {
			t.Fatalf("%d minutes: credited %d sets over a budget of %d", availableTime, credited, budget)
		}
		if len(selected) > MaxSetsFirstMuscle {
			t.Fatalf("%d minutes: selected %d muscles", availableTime, len(selected))
		}
	}
}

func Test_AllocateVolume(t *testing.T) {
	metrics := freshMetrics(t, MuscleGroupBack)
	chest := metrics[MuscleGroupChest]
	chest.VolumeNeededForMinimum = 0
	metrics[MuscleGroupChest] = chest

	tests := []struct {
		name          string
		selected      []MuscleGroup
		availableTime int
		want          Allocation
	}{
		{
			name: "fresh user hour",
			selected: []MuscleGroup{
				MuscleGroupShoulders, MuscleGroupBiceps, MuscleGroupTriceps, MuscleGroupQuads, MuscleGroupCore,
			},
			availableTime: 60,
			want: Allocation{
				{Muscle: MuscleGroupShoulders, Sets: 5},
				{Muscle: MuscleGroupBiceps, Sets: 5},
				{Muscle: MuscleGroupTriceps, Sets: 4},
				{Muscle: MuscleGroupQuads, Sets: 3},
				{Muscle: MuscleGroupCore, Sets: 3},
			},
		},
		{
			name:          "floors by need",
			selected:      []MuscleGroup{MuscleGroupChest, MuscleGroupBack, MuscleGroupCore},
			availableTime: 9,
			want: Allocation{
				{Muscle: MuscleGroupChest, Sets: 2},
				{Muscle: MuscleGroupBack, Sets: 4},
				{Muscle: MuscleGroupCore, Sets: 3},
			},
		},
		{
			name:          "focused muscles fill up first",
			selected:      []MuscleGroup{MuscleGroupChest, MuscleGroupBack},
			availableTime: 30,
			want: Allocation{
				{Muscle: MuscleGroupChest, Sets: 4},
				{Muscle: MuscleGroupBack, Sets: 6},
			},
		},
		{
			name:          "everything capped",
			selected:      []MuscleGroup{MuscleGroupChest, MuscleGroupBack},
			availableTime: 120,
			want: Allocation{
				{Muscle: MuscleGroupChest, Sets: 5},
				{Muscle: MuscleGroupBack, Sets: 6},
			},
		},
		{
			name:          "duplicates ignored",
			selected:      []MuscleGroup{MuscleGroupCore, MuscleGroupCore},
			availableTime: 0,
			want:          Allocation{{Muscle: MuscleGroupCore, Sets: 3}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, AllocateVolume(tt.selected, metrics, tt.availableTime)); diff != "" {
				t.Errorf("allocation mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_AllocateVolume_Caps(t *testing.T) {
	focus := []MuscleGroup{MuscleGroupBack, MuscleGroupGlutes}
	metrics := freshMetrics(t, focus...)
	for availableTime := 0; availableTime <= 240; availableTime += 7 {
		allocation := AllocateVolume(MuscleGroups(), metrics, availableTime)
		for _, e := range allocation {
			limit := DefaultCapSets
			if slices.Contains(focus, e.Muscle) {
				limit = FocusedCapSets
			}
			if e.Sets < DefaultFloorSets || e.Sets > limit {
				t.Fatalf("%d minutes: %s has %d sets, want between %d and %d",
					availableTime, e.Muscle, e.Sets, DefaultFloorSets, limit)
			}
		}
	}
}

func Test_SelectExercises(t *testing.T) {
	var (
		barbellPress = testExercise("press", MuscleGroupChest, ExerciseTypeCompound, DifficultyIntermediate,
			EquipmentBarbell, EquipmentBench)
		dumbbellPress = testExercise("db-press", MuscleGroupChest, ExerciseTypeCompound, DifficultyIntermediate,
			EquipmentDumbbell)
		fly = testExercise("fly", MuscleGroupChest, ExerciseTypeIsolation, DifficultyIntermediate,
			EquipmentDumbbell)
		cableFly = testExercise("cable-fly", MuscleGroupChest, ExerciseTypeIsolation, DifficultyBeginner,
			EquipmentCable)
		curl = testExercise("curl", MuscleGroupBiceps, ExerciseTypeIsolation, DifficultyBeginner,
			EquipmentDumbbell)
		hammer = testExercise("hammer", MuscleGroupBiceps, ExerciseTypeIsolation, DifficultyBeginner,
			EquipmentDumbbell)
		pullUp = testExercise("pull-up", MuscleGroupBack, ExerciseTypeCompound, DifficultyAdvanced,
			EquipmentBodyweight)
		row = testExercise("row", MuscleGroupBack, ExerciseTypeCompound, DifficultyBeginner, EquipmentMachine)
	)
	catalog := []Exercise{barbellPress, dumbbellPress, fly, cableFly, curl, hammer, pullUp, row}
	equipment := []Equipment{EquipmentBarbell, EquipmentDumbbell, EquipmentBodyweight}

	tests := []struct {
		name       string
		allocation Allocation
		want       []ExerciseWithSets
	}{
		{
			name:       "compound then isolation",
			allocation: Allocation{{Muscle: MuscleGroupChest, Sets: 5}},
			want:       []ExerciseWithSets{withSets(barbellPress, 3), withSets(fly, 2)},
		},
		{
			name:       "second compound takes the rest",
			allocation: Allocation{{Muscle: MuscleGroupChest, Sets: 6}},
			want:       []ExerciseWithSets{withSets(barbellPress, 3), withSets(fly, 2), withSets(dumbbellPress, 1)},
		},
		{
			name:       "few sets",
			allocation: Allocation{{Muscle: MuscleGroupChest, Sets: 2}},
			want:       []ExerciseWithSets{withSets(barbellPress, 2)},
		},
		{
			name:       "isolations only",
			allocation: Allocation{{Muscle: MuscleGroupBiceps, Sets: 5}},
			want:       []ExerciseWithSets{withSets(curl, 3), withSets(hammer, 2)},
		},
		{
			name:       "equipment match of another level",
			allocation: Allocation{{Muscle: MuscleGroupBack, Sets: 4}},
			want:       []ExerciseWithSets{withSets(pullUp, 4)},
		},
		{
			name:       "no matching muscle is skipped",
			allocation: Allocation{{Muscle: MuscleGroupCore, Sets: 3}, {Muscle: MuscleGroupBiceps, Sets: 2}},
			want:       []ExerciseWithSets{withSets(curl, 2)},
		},
		{
			name: "invalid entries are skipped",
			allocation: Allocation{
				{Muscle: "legs", Sets: 3},
				{Muscle: MuscleGroupBiceps, Sets: 0},
				{Muscle: MuscleGroupBiceps, Sets: 2},
				{Muscle: MuscleGroupBiceps, Sets: 4},
			},
			want: []ExerciseWithSets{withSets(curl, 2)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectExercises(tt.allocation, catalog, equipment, DifficultyIntermediate, nil)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("exercises mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_SelectExercises_FallsBackToAnyEquipment(t *testing.T) {
	row := testExercise("row", MuscleGroupBack, ExerciseTypeCompound, DifficultyBeginner, EquipmentMachine)

	got := SelectExercises(Allocation{{Muscle: MuscleGroupBack, Sets: 3}}, []Exercise{row},
		[]Equipment{EquipmentBodyweight}, DifficultyIntermediate, nil)

	if diff := cmp.Diff([]ExerciseWithSets{withSets(row, 3)}, got); diff != "" {
		t.Errorf("exercises mismatch (-want +got):\n%s", diff)
	}
}

func Test_EstimateDuration(t *testing.T) {
	exercises := []ExerciseWithSets{
		withSets(testExercise("a", MuscleGroupChest, ExerciseTypeCompound, DifficultyBeginner, EquipmentBarbell), 3),
		withSets(testExercise("b", MuscleGroupBack, ExerciseTypeCompound, DifficultyBeginner, EquipmentBarbell), 2),
	}

	tests := []struct {
		goal TrainingGoal
		want int
	}{
		{goal: TrainingGoalHypertrophy, want: 14},
		{goal: TrainingGoalStrength, want: 21},
		{goal: TrainingGoalEndurance, want: 11},
		{goal: TrainingGoalBlend, want: 11},
	}
	for _, tt := range tests {
		t.Run(string(tt.goal), func(t *testing.T) {
			if got := EstimateDuration(exercises, tt.goal); got != tt.want {
				t.Errorf("want %d minutes, got %d", tt.want, got)
			}
		})
	}
}

func Test_StructureWorkout(t *testing.T) {
	var (
		chest = withSets(testExercise("chest", MuscleGroupChest, ExerciseTypeCompound, DifficultyBeginner,
			EquipmentBarbell), 3)
		back = withSets(testExercise("back", MuscleGroupBack, ExerciseTypeCompound, DifficultyBeginner,
			EquipmentBarbell), 3)
		biceps = withSets(testExercise("biceps", MuscleGroupBiceps, ExerciseTypeIsolation, DifficultyBeginner,
			EquipmentDumbbell), 2)
		hamstrings = withSets(testExercise("hamstrings", MuscleGroupHamstrings, ExerciseTypeIsolation,
			DifficultyBeginner, EquipmentMachine), 2)
		core = withSets(testExercise("core", MuscleGroupCore, ExerciseTypeIsolation, DifficultyBeginner,
			EquipmentBodyweight), 2)
		chest2 = withSets(testExercise("chest2", MuscleGroupChest, ExerciseTypeIsolation, DifficultyBeginner,
			EquipmentCable), 2)
	)
	exercises := []ExerciseWithSets{chest, chest2, biceps, core, back, hamstrings}

	t.Run("fits as straight sets", func(t *testing.T) {
		// 14 sets at 135 seconds each take 31.5 minutes.
		structure, duration := StructureWorkout(exercises, TrainingGoalHypertrophy, 32)
		if diff := cmp.Diff(StraightSets{Exercises: exercises}, structure); diff != "" {
			t.Errorf("structure mismatch (-want +got):\n%s", diff)
		}
		if duration != 38 {
			t.Errorf("want 38 minutes, got %d", duration)
		}
	})

	t.Run("pairs into supersets", func(t *testing.T) {
		structure, _ := StructureWorkout(exercises, TrainingGoalHypertrophy, 31)
		want := Supersets{Sets: []Superset{
			{Type: SupersetAntagonist, Exercises: []ExerciseWithSets{chest, back}},
			{Type: SupersetNonOverlapping, Exercises: []ExerciseWithSets{chest2, core}},
			{Type: SupersetNonOverlapping, Exercises: []ExerciseWithSets{biceps, hamstrings}},
		}}
		if diff := cmp.Diff(want, structure); diff != "" {
			t.Errorf("structure mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("every exercise appears once", func(t *testing.T) {
		for _, available := range []int{0, 5, 10, 20, 31} {
			structure, _ := StructureWorkout(exercises, TrainingGoalHypertrophy, available)
			got := Flatten(structure)
			sortByID := func(a, b ExerciseWithSets) int {
				switch {
				case a.ID < b.ID:
					return -1
				case a.ID > b.ID:
					return 1
				default:
					return 0
				}
			}
			want := slices.Clone(exercises)
			slices.SortFunc(want, sortByID)
			slices.SortFunc(got, sortByID)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("%d minutes: exercises mismatch (-want +got):\n%s", available, diff)
			}
		}
	})

	t.Run("unpaired exercises stay straight sets", func(t *testing.T) {
		structure, _ := StructureWorkout([]ExerciseWithSets{chest, chest2}, TrainingGoalStrength, 1)
		want := Supersets{Sets: []Superset{
			{Type: SupersetStraightSet, Exercises: []ExerciseWithSets{chest}},
			{Type: SupersetStraightSet, Exercises: []ExerciseWithSets{chest2}},
		}}
		if diff := cmp.Diff(want, structure); diff != "" {
			t.Errorf("structure mismatch (-want +got):\n%s", diff)
		}
	})
}

func Test_GenerateWorkout(t *testing.T) {
	catalog, err := NewStaticCatalog(nil)
	if err != nil {
		t.Fatalf("NewStaticCatalog: %v", err)
	}
	exercises, err := catalog.Exercises(t.Context())
	if err != nil {
		t.Fatalf("Exercises: %v", err)
	}
	profile := DefaultProfile()
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

	t.Run("fresh user", func(t *testing.T) {
		plan, err := GenerateWorkout(profile, freshMetrics(t), exercises, GenerateOptions{
			AvailableTime:    60,
			RecoveryFeedback: nil,
			ForcedMuscles:    nil,
			ForcedAllocation: nil,
			Now:              testNow,
		}, logger)
		if err != nil {
			t.Fatalf("GenerateWorkout: %v", err)
		}

		wantMuscles := []MuscleGroup{
			MuscleGroupChest, MuscleGroupBack, MuscleGroupShoulders, MuscleGroupBiceps, MuscleGroupTriceps,
		}
		if diff := cmp.Diff(wantMuscles, plan.MusclesTargeted); diff != "" {
			t.Errorf("targeted muscles mismatch (-want +got):\n%s", diff)
		}
		flat := Flatten(plan.Workout)
		if len(flat) == 0 {
			t.Fatal("expected exercises")
		}
		total := 0
		for _, e := range flat {
			if !slices.Contains(plan.MusclesTargeted, e.PrimaryMuscleGroup) {
				t.Errorf("exercise %s trains untargeted %s", e.ID, e.PrimaryMuscleGroup)
			}
			if !hasAnyEquipment(e.Exercise, profile.AvailableEquipment) {
				t.Errorf("exercise %s needs unavailable equipment %v", e.ID, e.Equipment)
			}
			total += e.Sets
		}
		if total != 20 {
			t.Errorf("want 20 sets, got %d", total)
		}
		if want := EstimateDuration(flat, profile.TrainingGoal); plan.EstimatedDuration != want {
			t.Errorf("duration: want %d, got %d", want, plan.EstimatedDuration)
		}
		// 20 sets at 135 seconds each fit an hour.
		if _, ok := plan.Workout.(StraightSets); !ok {
			t.Errorf("want straight sets, got %T", plan.Workout)
		}
	})

	t.Run("forced allocation", func(t *testing.T) {
		plan, err := GenerateWorkout(profile, freshMetrics(t), exercises, GenerateOptions{
			AvailableTime:    60,
			RecoveryFeedback: nil,
			ForcedMuscles:    []MuscleGroup{MuscleGroupCore},
			ForcedAllocation: Allocation{
				{Muscle: MuscleGroupQuads, Sets: 4},
				{Muscle: "legs", Sets: 3},
				{Muscle: MuscleGroupBack, Sets: 0},
			},
			Now: testNow,
		}, logger)
		if err != nil {
			t.Fatalf("GenerateWorkout: %v", err)
		}
		if diff := cmp.Diff([]MuscleGroup{MuscleGroupQuads}, plan.MusclesTargeted); diff != "" {
			t.Errorf("targeted muscles mismatch (-want +got):\n%s", diff)
		}
		if got := totalSets(Flatten(plan.Workout)); got != 4 {
			t.Errorf("want 4 sets, got %d", got)
		}
	})

	t.Run("forced muscles", func(t *testing.T) {
		plan, err := GenerateWorkout(profile, freshMetrics(t), exercises, GenerateOptions{
			AvailableTime:    30,
			RecoveryFeedback: nil,
			ForcedMuscles:    []MuscleGroup{MuscleGroupGlutes, "calves", MuscleGroupHamstrings},
			ForcedAllocation: nil,
			Now:              testNow,
		}, logger)
		if err != nil {
			t.Fatalf("GenerateWorkout: %v", err)
		}
		want := []MuscleGroup{MuscleGroupGlutes, MuscleGroupHamstrings}
		if diff := cmp.Diff(want, plan.MusclesTargeted); diff != "" {
			t.Errorf("targeted muscles mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty catalog", func(t *testing.T) {
		plan, err := GenerateWorkout(profile, freshMetrics(t), nil, GenerateOptions{
			AvailableTime:    60,
			RecoveryFeedback: nil,
			ForcedMuscles:    nil,
			ForcedAllocation: nil,
			Now:              testNow,
		}, logger)
		if err != nil {
			t.Fatalf("GenerateWorkout: %v", err)
		}
		want := Plan{MusclesTargeted: []MuscleGroup{}, EstimatedDuration: 0, Workout: StraightSets{Exercises: nil}}
		if diff := cmp.Diff(want, plan); diff != "" {
			t.Errorf("plan mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("invalid profile", func(t *testing.T) {
		invalid := DefaultProfile()
		invalid.TrainingGoal = "powerlifting"
		_, err := GenerateWorkout(invalid, freshMetrics(t), exercises, GenerateOptions{
			AvailableTime:    60,
			RecoveryFeedback: nil,
			ForcedMuscles:    nil,
			ForcedAllocation: nil,
			Now:              testNow,
		}, logger)
		if !errors.Is(err, ErrInvalidProfile) {
			t.Errorf("want ErrInvalidProfile, got %v", err)
		}
	})
}
