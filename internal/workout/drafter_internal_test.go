package workout

import (
	"errors"
	"os"
	"testing"
)

func TestParseDraft(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantID  string
		wantErr error
	}{
		{
			name: "valid exercise",
			content: `{"name":"Goblet Squat","primaryMuscleGroup":"quads","secondaryMuscleGroups":["glutes","core"],
				"exerciseType":"compound","equipment":["dumbbell","kettlebell"],"difficultyLevel":"beginner",
				"instructions":"Hold a weight at the chest and squat."}`,
			wantID:  "quads-custom-goblet-squat",
			wantErr: nil,
		},
		{
			name: "muscle outside enumeration",
			content: `{"name":"Calf Raise","primaryMuscleGroup":"calves","secondaryMuscleGroups":[],
				"exerciseType":"isolation","equipment":["machine"],"difficultyLevel":"beginner","instructions":"Rise."}`,
			wantID:  "",
			wantErr: ErrUnknownMuscleGroup,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDraft(tt.content, "fallback")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("parseDraft() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseDraft() error = %v", err)
			}
			if got.ID != tt.wantID {
				t.Errorf("ID = %q, want %q", got.ID, tt.wantID)
			}
		})
	}
}

func TestParseDraft_InvalidJSON(t *testing.T) {
	if _, err := parseDraft("not json", "Squat"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestExerciseDrafter_Draft(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test in short mode.")
	}
	openaiAPIKey := os.Getenv("OPENAI_API_KEY")
	if openaiAPIKey == "" {
		t.Skip("OPENAI_API_KEY not set")
	}

	d := NewExerciseDrafter(openaiAPIKey)
	exercise, err := d.Draft(t.Context(), "Barbell Back Squat")
	if err != nil {
		t.Fatalf("Failed to draft exercise: %v", err)
	}
	if got, want := exercise.PrimaryMuscleGroup, MuscleGroupQuads; got != want {
		t.Errorf("Got primary muscle group %q, want %q", got, want)
	}
	if got, want := exercise.ExerciseType, ExerciseTypeCompound; got != want {
		t.Errorf("Got exercise type %q, want %q", got, want)
	}
}
