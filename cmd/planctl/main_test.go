package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/setplan/internal/testhelpers"
	"github.com/myrjola/setplan/internal/workout"
)

func newLookupEnv(t *testing.T) func(string) (string, bool) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "planctl.sqlite3")
	return func(key string) (string, bool) {
		switch key {
		case "SETPLAN_SQLITE_URL":
			return dbPath, true
		case "SETPLAN_LOG_LEVEL":
			return "debug", true
		default:
			return "", false
		}
	}
}

func runCLI(t *testing.T, lookupEnv func(string) (string, bool), args ...string) ([]byte, error) {
	t.Helper()
	var stdout bytes.Buffer
	err := run(t.Context(), args, lookupEnv, &stdout, testhelpers.NewWriter(t))
	return stdout.Bytes(), err
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return v
}

func Test_planctl(t *testing.T) {
	lookupEnv := newLookupEnv(t)

	out, err := runCLI(t, lookupEnv, "generate", "--minutes", "30", "--muscle", "chest", "--muscle", "back")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	plan := decode[workout.Plan](t, out)
	for _, m := range plan.MusclesTargeted {
		if m != workout.MuscleGroupChest && m != workout.MuscleGroupBack {
			t.Errorf("unexpected muscle %s in a forced plan", m)
		}
	}

	out, err = runCLI(t, lookupEnv, "generate", "--minutes", "30", "--log")
	if err != nil {
		t.Fatalf("generate --log: %v", err)
	}
	logged := decode[workout.LoggedWorkout](t, out)
	if logged.ID == "" {
		t.Fatal("logged workout has no id")
	}

	out, err = runCLI(t, lookupEnv, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	history := decode[[]workout.LoggedWorkout](t, out)
	if len(history) != 1 || history[0].ID != logged.ID {
		t.Fatalf("unexpected history %+v", history)
	}

	first := string(logged.MusclesTargeted[0])
	if _, err = runCLI(t, lookupEnv, "feedback", logged.ID, first+"=very_sore"); err != nil {
		t.Fatalf("feedback: %v", err)
	}
	out, err = runCLI(t, lookupEnv, "history", "--limit", "1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	history = decode[[]workout.LoggedWorkout](t, out)
	if got := history[0].RecoveryFeedback[workout.MuscleGroup(first)]; got != workout.RecoveryVerySore {
		t.Errorf("want very_sore for %s, got %q", first, got)
	}

	out, err = runCLI(t, lookupEnv, "metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	metrics := decode[workout.Metrics](t, out)
	if metrics[workout.MuscleGroup(first)].WeeklyVolume <= 0 {
		t.Errorf("expected volume for %s", first)
	}

	out, err = runCLI(t, lookupEnv, "recommend")
	if err != nil {
		t.Fatalf("recommend: %v", err)
	}
	dashboard := decode[workout.Dashboard](t, out)
	if len(dashboard.Muscles) != len(workout.MuscleGroups()) {
		t.Errorf("want a row per muscle group, got %d", len(dashboard.Muscles))
	}

	out, err = runCLI(t, lookupEnv, "exercises", "--muscle", "core")
	if err != nil {
		t.Fatalf("exercises: %v", err)
	}
	if exercises := decode[[]workout.Exercise](t, out); len(exercises) == 0 {
		t.Error("expected core exercises")
	}
}

func Test_planctl_Errors(t *testing.T) {
	lookupEnv := newLookupEnv(t)

	tests := []struct {
		name string
		args []string
		want error
	}{
		{name: "unknown muscle", args: []string{"generate", "--muscle", "legs"}, want: workout.ErrUnknownMuscleGroup},
		{name: "negative minutes", args: []string{"generate", "--minutes", "-1"}, want: workout.ErrInvalidRequest},
		{name: "missing workout", args: []string{"feedback", "nope", "chest=very_sore"}, want: workout.ErrNotFound},
		{name: "drafting disabled", args: []string{"draft-exercise", "Zercher Squat"}, want: workout.ErrDraftingDisabled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, lookupEnv, tt.args...)
			if !errors.Is(err, tt.want) {
				t.Errorf("want %v, got %v", tt.want, err)
			}
		})
	}

	if _, err := runCLI(t, lookupEnv, "feedback", "nope", "chest"); err == nil {
		t.Error("expected an error for a malformed feedback pair")
	}
}

func Test_parseFeedback(t *testing.T) {
	got, err := parseFeedback([]string{"chest=very_sore", "back=fully_recovered"})
	if err != nil {
		t.Fatalf("parseFeedback: %v", err)
	}
	want := workout.RecoveryInput{
		workout.MuscleGroupChest: workout.RecoveryVerySore,
		workout.MuscleGroupBack:  workout.RecoveryFullyRecovered,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("feedback mismatch (-want +got):\n%s", diff)
	}
	if _, err = parseFeedback([]string{"chest=tired"}); err == nil {
		t.Error("expected an error for unknown feedback")
	}
}
