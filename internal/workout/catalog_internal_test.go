package workout

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/setplan/internal/testhelpers"
)

func Test_NewStaticCatalog(t *testing.T) {
	catalog, err := NewStaticCatalog(testhelpers.NewLogger(testhelpers.NewWriter(t)))
	if err != nil {
		t.Fatalf("NewStaticCatalog: %v", err)
	}
	exercises, err := catalog.Exercises(t.Context())
	if err != nil {
		t.Fatalf("Exercises: %v", err)
	}
	if len(exercises) != 39 {
		t.Errorf("want 39 bundled exercises, got %d", len(exercises))
	}

	covered := make(map[MuscleGroup]bool)
	ids := make(map[string]bool)
	for _, e := range exercises {
		if err = e.validate(); err != nil {
			t.Errorf("exercise %s: %v", e.ID, err)
		}
		if ids[e.ID] {
			t.Errorf("duplicate exercise id %s", e.ID)
		}
		ids[e.ID] = true
		covered[e.PrimaryMuscleGroup] = true
	}
	for _, m := range MuscleGroups() {
		if !covered[m] {
			t.Errorf("no bundled exercise for %s", m)
		}
	}

	exercises[0].Name = "mutated"
	again, _ := catalog.Exercises(t.Context())
	if again[0].Name == "mutated" {
		t.Error("Exercises returned shared state")
	}
}

const remoteCatalogJSON = `[
	{"id": "r1", "name": "Remote Squat", "primaryMuscleGroup": "quads", "secondaryMuscleGroups": ["glutes"],
	 "exerciseType": "compound", "equipment": ["barbell"], "difficultyLevel": "intermediate"},
	{"id": "r2", "name": "Remote Shrug", "primaryMuscleGroup": "traps", "secondaryMuscleGroups": [],
	 "exerciseType": "isolation", "equipment": ["dumbbell"], "difficultyLevel": "beginner"},
	{"id": "r3", "name": "Remote Crunch", "primaryMuscleGroup": "core",
	 "exerciseType": "isolation", "equipment": ["bodyweight"], "difficultyLevel": "beginner"}
]`

func newCatalogServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func Test_RemoteCatalog(t *testing.T) {
	server := newCatalogServer(t, http.StatusOK, remoteCatalogJSON)
	catalog := NewRemoteCatalog(server.URL, time.Second, testhelpers.NewLogger(testhelpers.NewWriter(t)))

	exercises, err := catalog.Exercises(t.Context())
	if err != nil {
		t.Fatalf("Exercises: %v", err)
	}

	var ids []string
	for _, e := range exercises {
		ids = append(ids, e.ID)
	}
	if diff := cmp.Diff([]string{"r1", "r3"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
	if exercises[1].SecondaryMuscleGroups == nil {
		t.Error("missing secondary muscle groups should decode as an empty list")
	}
}

func Test_RemoteCatalog_Errors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		server := newCatalogServer(t, http.StatusServiceUnavailable, "")
		_, err := NewRemoteCatalog(server.URL, time.Second, nil).Exercises(t.Context())

		var statusErr *CatalogStatusError
		if !errors.As(err, &statusErr) || statusErr.Status != http.StatusServiceUnavailable {
			t.Fatalf("want CatalogStatusError 503, got %v", err)
		}
		if !errors.Is(err, ErrCatalogUnavailable) {
			t.Errorf("want ErrCatalogUnavailable, got %v", err)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		server := newCatalogServer(t, http.StatusOK, "<html>")
		_, err := NewRemoteCatalog(server.URL, time.Second, nil).Exercises(t.Context())
		if !errors.Is(err, ErrCatalogUnavailable) {
			t.Errorf("want ErrCatalogUnavailable, got %v", err)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		server := newCatalogServer(t, http.StatusOK, remoteCatalogJSON)
		server.Close()
		_, err := NewRemoteCatalog(server.URL, time.Second, nil).Exercises(t.Context())
		if !errors.Is(err, ErrCatalogUnavailable) {
			t.Errorf("want ErrCatalogUnavailable, got %v", err)
		}
	})
}

type stubCatalog struct {
	exercises []Exercise
	err       error
}

func (s stubCatalog) Exercises(context.Context) ([]Exercise, error) {
	return s.exercises, s.err
}

func Test_FallbackCatalog(t *testing.T) {
	local := []Exercise{
		testExercise("local", MuscleGroupCore, ExerciseTypeIsolation, DifficultyBeginner, EquipmentBodyweight),
	}
	remote := []Exercise{
		testExercise("remote", MuscleGroupChest, ExerciseTypeCompound, DifficultyBeginner, EquipmentBarbell),
	}

	tests := []struct {
		name         string
		primary      stubCatalog
		want         []Exercise
		wantFallback bool
	}{
		{name: "primary", primary: stubCatalog{exercises: remote, err: nil}, want: remote, wantFallback: false},
		{
			name:         "primary fails",
			primary:      stubCatalog{exercises: nil, err: ErrCatalogUnavailable},
			want:         local,
			wantFallback: true,
		},
		{
			name:         "primary empty",
			primary:      stubCatalog{exercises: []Exercise{}, err: nil},
			want:         local,
			wantFallback: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := testhelpers.NewRecorder(testhelpers.NewWriter(t))
			catalog := NewFallbackCatalog(tt.primary, stubCatalog{exercises: local, err: nil},
				testhelpers.NewLogger(recorder))

			got, err := catalog.Exercises(t.Context())
			if err != nil {
				t.Fatalf("Exercises: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("exercises mismatch (-want +got):\n%s", diff)
			}
			if fellBack := recorder.Contains("falling back to local exercise list"); fellBack != tt.wantFallback {
				t.Errorf("fallback logged: want %v, got %v", tt.wantFallback, fellBack)
			}
		})
	}
}

func Test_FallbackCatalog_FallbackFails(t *testing.T) {
	catalog := NewFallbackCatalog(
		stubCatalog{exercises: nil, err: ErrCatalogUnavailable},
		stubCatalog{exercises: nil, err: errors.New("disk on fire")},
		nil,
	)
	if _, err := catalog.Exercises(t.Context()); err == nil {
		t.Error("expected an error when both catalogs fail")
	}
}

func Test_FilterExercises(t *testing.T) {
	bench := testExercise("bench", MuscleGroupChest, ExerciseTypeCompound, DifficultyBeginner,
		EquipmentBarbell, EquipmentBench)
	bench.SecondaryMuscleGroups = []MuscleGroup{MuscleGroupTriceps}
	dips := testExercise("dips", MuscleGroupTriceps, ExerciseTypeCompound, DifficultyBeginner, EquipmentBodyweight)
	curl := testExercise("curl", MuscleGroupBiceps, ExerciseTypeIsolation, DifficultyBeginner, EquipmentDumbbell)
	all := []Exercise{bench, dips, curl}

	tests := []struct {
		name      string
		muscle    MuscleGroup
		equipment Equipment
		want      []Exercise
	}{
		{name: "no filter", muscle: "", equipment: "", want: all},
		{name: "secondary muscle matches", muscle: MuscleGroupTriceps, equipment: "", want: []Exercise{bench, dips}},
		{name: "equipment", muscle: "", equipment: EquipmentDumbbell, want: []Exercise{curl}},
		{name: "both", muscle: MuscleGroupTriceps, equipment: EquipmentBodyweight, want: []Exercise{dips}},
		{name: "nothing", muscle: MuscleGroupCore, equipment: "", want: []Exercise{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, FilterExercises(all, tt.muscle, tt.equipment)); diff != "" {
				t.Errorf("filter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
