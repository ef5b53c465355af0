package workout

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func Test_LogWorkout(t *testing.T) {
	squat := testExercise("squat", MuscleGroupQuads, ExerciseTypeCompound, DifficultyBeginner, EquipmentBarbell)
	squat.SecondaryMuscleGroups = []MuscleGroup{MuscleGroupGlutes}
	curl := testExercise("", MuscleGroupHamstrings, "", DifficultyBeginner, EquipmentMachine)
	curl.Name = "Leg Curl"
	curl.SecondaryMuscleGroups = nil
	plan := Plan{
		MusclesTargeted:   []MuscleGroup{MuscleGroupQuads, MuscleGroupHamstrings},
		EstimatedDuration: 25,
		Workout: Supersets{Sets: []Superset{
			{Type: SupersetAntagonist, Exercises: []ExerciseWithSets{withSets(squat, 4), withSets(curl, 3)}},
		}},
	}

	got := LogWorkout(plan, testNow)

	want := LoggedWorkout{
		ID:              "",
		Date:            testNow,
		Duration:        25,
		MusclesTargeted: []MuscleGroup{MuscleGroupQuads, MuscleGroupHamstrings},
		Exercises: []LoggedExercise{
			{
				ID: "squat", Name: "squat", Sets: 4, PrimaryMuscleGroup: MuscleGroupQuads,
				SecondaryMuscleGroups: []MuscleGroup{MuscleGroupGlutes}, ExerciseType: ExerciseTypeCompound,
			},
			{
				ID: "", Name: "Leg Curl", Sets: 3, PrimaryMuscleGroup: MuscleGroupHamstrings,
				SecondaryMuscleGroups: []MuscleGroup{}, ExerciseType: ExerciseTypeCompound,
			},
		},
		RecoveryFeedback: nil,
	}
	ignoreIDs := cmp.Options{
		cmpopts.IgnoreFields(LoggedWorkout{}, "ID"),
		cmpopts.IgnoreFields(LoggedExercise{}, "ID"),
	}
	if diff := cmp.Diff(want, got, ignoreIDs); diff != "" {
		t.Errorf("logged workout mismatch (-want +got):\n%s", diff)
	}
	if got.ID == "" {
		t.Error("logged workout has no id")
	}
	if got.Exercises[0].ID != "squat" {
		t.Errorf("catalog id should be kept, got %q", got.Exercises[0].ID)
	}
	if !strings.HasPrefix(got.Exercises[1].ID, "ex-") {
		t.Errorf("generated exercise id should start with ex-, got %q", got.Exercises[1].ID)
	}

	metrics := ApplyLoggedWorkout(freshMetrics(t), got, DefaultProfile().MuscleGroupSettings, nil)
	if v := metrics[MuscleGroupGlutes].WeeklyVolume; v != 2 {
		t.Errorf("glutes volume after logging: want 2, got %v", v)
	}
}

func Test_Plan_JSON(t *testing.T) {
	chest := withSets(testExercise("chest", MuscleGroupChest, ExerciseTypeCompound, DifficultyBeginner,
		EquipmentBarbell), 3)
	back := withSets(testExercise("back", MuscleGroupBack, ExerciseTypeCompound, DifficultyBeginner,
		EquipmentBarbell), 3)

	tests := []struct {
		name     string
		plan     Plan
		wantType string
	}{
		{
			name: "straight sets",
			plan: Plan{
				MusclesTargeted:   []MuscleGroup{MuscleGroupChest},
				EstimatedDuration: 9,
				Workout:           StraightSets{Exercises: []ExerciseWithSets{chest}},
			},
			wantType: `"type":"straight_sets"`,
		},
		{
			name: "supersets",
			plan: Plan{
				MusclesTargeted:   []MuscleGroup{MuscleGroupChest, MuscleGroupBack},
				EstimatedDuration: 16,
				Workout: Supersets{Sets: []Superset{
					{Type: SupersetAntagonist, Exercises: []ExerciseWithSets{chest, back}},
				}},
			},
			wantType: `"type":"supersets"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.plan)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if !strings.Contains(string(data), tt.wantType) {
				t.Errorf("want %s in %s", tt.wantType, data)
			}
			var decoded Plan
			if err = json.Unmarshal(data, &decoded); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if diff := cmp.Diff(tt.plan, decoded); diff != "" {
				t.Errorf("plan mismatch (-want +got):\n%s", diff)
			}
		})
	}

	var unknown Plan
	if err := json.Unmarshal([]byte(`{"workout":{"type":"circuit"}}`), &unknown); err == nil {
		t.Error("expected an error for an unknown workout type")
	}
}
