package workout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/myrjola/setplan/internal/observability"
	"github.com/myrjola/setplan/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

// Service handles persistence and catalog access around the pure planner.
type Service struct {
	repo           *repository
	catalog        CatalogSource
	drafter        *ExerciseDrafter
	defaultProfile Profile
	now            func() time.Time
	logger         *slog.Logger
}

// ServiceOption configures optional Service collaborators.
type ServiceOption func(*Service)

// WithClock replaces time.Now as the reference time of the Service.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

// WithDrafter enables DraftExercise.
func WithDrafter(d *ExerciseDrafter) ServiceOption {
	return func(s *Service) {
		s.drafter = d
	}
}

// NewService creates a new workout service. defaultProfile is used until a profile has been saved.
func NewService(
	db *sqlite.Database,
	logger *slog.Logger,
	catalog CatalogSource,
	defaultProfile Profile,
	opts ...ServiceOption,
) *Service {
	factory := newRepositoryFactory(db, logger)
	s := &Service{
		repo:           factory.newRepository(),
		catalog:        catalog,
		drafter:        nil,
		defaultProfile: defaultProfile,
		now:            time.Now,
		logger:         logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profile returns the saved profile or the default one.
func (s *Service) Profile(ctx context.Context) (Profile, error) {
	p, err := s.repo.profile.Get(ctx)
	if errors.Is(err, ErrNotFound) {
		return s.defaultProfile, nil
	}
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

// SaveProfile validates and stores the profile.
func (s *Service) SaveProfile(ctx context.Context, p Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := s.repo.profile.Set(ctx, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// snapshot is everything one planning run reads from storage.
type snapshot struct {
	profile  Profile
	history  []LoggedWorkout
	catalog  []Exercise
	metrics  Metrics
	loadedAt time.Time
}

// load reads the profile and history, and the catalog when withCatalog is set, concurrently.
func (s *Service) load(ctx context.Context, withCatalog bool) (snapshot, error) {
	var snap snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snap.profile, err = s.Profile(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		if snap.history, err = s.repo.history.List(gctx); err != nil {
			return fmt.Errorf("list history: %w", err)
		}
		return nil
	})
	if withCatalog {
		g.Go(func() error {
			var err error
			snap.catalog, err = s.exercises(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return snapshot{}, err
	}

	snap.loadedAt = s.now()
	snap.metrics = RebuildMetrics(
		snap.history,
		snap.profile.MuscleGroupSettings,
		snap.profile.FocusAreas,
		snap.loadedAt,
		s.logger,
	)
	return snap, nil
}

// exercises returns the catalog followed by the custom exercises that do not shadow a catalog ID.
func (s *Service) exercises(ctx context.Context) ([]Exercise, error) {
	catalog, err := s.catalog.Exercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	custom, err := s.repo.exercises.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list custom exercises: %w", err)
	}
	ids := make(map[string]struct{}, len(catalog))
	for _, e := range catalog {
		ids[e.ID] = struct{}{}
	}
	for _, e := range custom {
		if _, ok := ids[e.ID]; !ok {
			catalog = append(catalog, e)
		}
	}
	return catalog, nil
}

// Metrics rebuilds the metrics of every muscle group from the stored history.
func (s *Service) Metrics(ctx context.Context) (Metrics, error) {
	snap, err := s.load(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	return snap.metrics, nil
}

// GenerateRequest carries the user input of a generation.
type GenerateRequest struct {
	// AvailableTime is the time budget in minutes and must be positive.
	AvailableTime int `json:"availableTime"`
	// RecoveryFeedback defaults to the latest feedback recorded on the history when nil.
	RecoveryFeedback RecoveryInput `json:"recoveryFeedback,omitempty"`
	ForcedMuscles    []MuscleGroup `json:"forcedMuscles,omitempty"`
	ForcedAllocation Allocation    `json:"forcedAllocation,omitempty"`
}

// GenerateWorkout plans a workout from the stored history and profile.
func (s *Service) GenerateWorkout(ctx context.Context, req GenerateRequest) (Plan, error) {
	if req.AvailableTime <= 0 {
		return Plan{}, fmt.Errorf("%w: available time must be positive, got %d", ErrInvalidRequest, req.AvailableTime)
	}
	snap, err := s.load(ctx, true)
	if err != nil {
		return Plan{}, fmt.Errorf("load state: %w", err)
	}
	return s.generate(ctx, snap, req)
}

func (s *Service) generate(ctx context.Context, snap snapshot, req GenerateRequest) (Plan, error) {
	feedback := req.RecoveryFeedback
	if feedback == nil {
		feedback = latestRecoveryFeedback(snap.history)
	}
	plan, err := GenerateWorkout(snap.profile, snap.metrics, snap.catalog, GenerateOptions{
		AvailableTime:    req.AvailableTime,
		RecoveryFeedback: feedback,
		ForcedMuscles:    req.ForcedMuscles,
		ForcedAllocation: req.ForcedAllocation,
		Now:              snap.loadedAt,
	}, s.logger)
	if err != nil {
		return Plan{}, fmt.Errorf("generate workout: %w", err)
	}

	exerciseCount := len(Flatten(plan.Workout))
	observability.RecordPlanGenerated(plan.Workout.structureType(), exerciseCount)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "generated workout",
		slog.Any("muscles", plan.MusclesTargeted),
		slog.Int("exercises", exerciseCount),
		slog.Int("estimated_minutes", plan.EstimatedDuration))
	return plan, nil
}

// latestRecoveryFeedback returns the feedback recorded on the most recent workout that has any.
func latestRecoveryFeedback(history []LoggedWorkout) RecoveryInput {
	for _, w := range slices.Backward(history) {
		if len(w.RecoveryFeedback) > 0 {
			return maps.Clone(w.RecoveryFeedback)
		}
	}
	return nil
}

// GenerateRecommendedWorkout plans the workout suggested by the dashboard recommendation. Without a recommendation
// it falls back to the regular muscle selection.
func (s *Service) GenerateRecommendedWorkout(ctx context.Context, availableTime int) (Plan, error) {
	if availableTime <= 0 {
		return Plan{}, fmt.Errorf("%w: available time must be positive, got %d", ErrInvalidRequest, availableTime)
	}
	snap, err := s.load(ctx, true)
	if err != nil {
		return Plan{}, fmt.Errorf("load state: %w", err)
	}
	rec := RecommendNext(snap.metrics, snap.profile.MuscleGroupSettings)
	return s.generate(ctx, snap, GenerateRequest{
		AvailableTime:    availableTime,
		RecoveryFeedback: nil,
		ForcedMuscles:    rec.Muscles(),
		ForcedAllocation: rec.Allocation(),
	})
}

// Dashboard is the recommendation shown next to the per-muscle summary.
type Dashboard struct {
	Recommendation Recommendation  `json:"recommendation"`
	Muscles        []MuscleSummary `json:"muscles"`
}

// Recommend builds the dashboard from the stored history.
func (s *Service) Recommend(ctx context.Context) (Dashboard, error) {
	snap, err := s.load(ctx, false)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load state: %w", err)
	}
	settings := snap.profile.MuscleGroupSettings
	return Dashboard{
		Recommendation: RecommendNext(snap.metrics, settings),
		Muscles:        Summarize(snap.metrics, settings, snap.loadedAt),
	}, nil
}

// LogWorkout appends the plan to the history and returns the stored record with the rebuilt metrics.
func (s *Service) LogWorkout(ctx context.Context, plan Plan) (LoggedWorkout, Metrics, error) {
	if err := plan.validate(); err != nil {
		return LoggedWorkout{}, nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	profile, err := s.Profile(ctx)
	if err != nil {
		return LoggedWorkout{}, nil, err
	}
	now := s.now()
	record := LogWorkout(plan, now)
	history, err := s.repo.history.Append(ctx, record)
	if err != nil {
		return LoggedWorkout{}, nil, fmt.Errorf("log workout: %w", err)
	}
	observability.RecordWorkoutLogged(record.Date)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "logged workout",
		slog.String("workout_id", record.ID), slog.Int("exercises", len(record.Exercises)))

	metrics := RebuildMetrics(history, profile.MuscleGroupSettings, profile.FocusAreas, now, s.logger)
	return record, metrics, nil
}

// History returns the logged workouts, oldest first.
func (s *Service) History(ctx context.Context) ([]LoggedWorkout, error) {
	history, err := s.repo.history.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return history, nil
}

// Workout returns one logged workout.
func (s *Service) Workout(ctx context.Context, id string) (LoggedWorkout, error) {
	w, err := s.repo.history.Get(ctx, id)
	if err != nil {
		return LoggedWorkout{}, fmt.Errorf("get workout: %w", err)
	}
	return w, nil
}

// SaveRecoveryFeedback annotates a logged workout with how the muscles felt afterwards. The annotation replaces any
// earlier one.
func (s *Service) SaveRecoveryFeedback(ctx context.Context, id string, feedback RecoveryInput) error {
	for m, f := range feedback {
		if !m.Valid() {
			return fmt.Errorf("%w: %w: %q", ErrInvalidRequest, ErrUnknownMuscleGroup, m)
		}
		if !f.Valid() {
			return fmt.Errorf("%w: recovery feedback %q for %s", ErrInvalidRequest, f, m)
		}
	}
	err := s.repo.history.Update(ctx, id, func(w *LoggedWorkout) (bool, error) {
		if maps.Equal(w.RecoveryFeedback, feedback) {
			return false, nil
		}
		w.RecoveryFeedback = maps.Clone(feedback)
		return true, nil
	})
	if err != nil {
		return fmt.Errorf("save recovery feedback: %w", err)
	}
	return nil
}

// Catalog lists the exercises available for planning. Empty filters match everything.
func (s *Service) Catalog(ctx context.Context, muscle MuscleGroup, equipment Equipment) ([]Exercise, error) {
	if muscle != "" && !muscle.Valid() {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidRequest, ErrUnknownMuscleGroup, muscle)
	}
	if equipment != "" && !equipment.Valid() {
		return nil, fmt.Errorf("%w: equipment %q", ErrInvalidRequest, equipment)
	}
	exercises, err := s.exercises(ctx)
	if err != nil {
		return nil, err
	}
	return FilterExercises(exercises, muscle, equipment), nil
}

// DraftExercise asks the language model for a new exercise and adds it to the custom exercises.
func (s *Service) DraftExercise(ctx context.Context, name string) (Exercise, error) {
	if s.drafter == nil {
		return Exercise{}, ErrDraftingDisabled
	}
	if name == "" {
		return Exercise{}, fmt.Errorf("%w: exercise name is empty", ErrInvalidRequest)
	}
	e, err := s.drafter.Draft(ctx, name)
	if err != nil {
		return Exercise{}, fmt.Errorf("draft exercise: %w", err)
	}
	if err = s.repo.exercises.Add(ctx, e); err != nil {
		return Exercise{}, fmt.Errorf("add custom exercise: %w", err)
	}
	return e, nil
}

// AddExercise validates and stores a custom exercise. An empty id is derived from the name.
func (s *Service) AddExercise(ctx context.Context, e Exercise) (Exercise, error) {
	if err := e.validate(); err != nil {
		return Exercise{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if e.ID == "" {
		e.ID = draftID(e)
	}
	if e.SecondaryMuscleGroups == nil {
		e.SecondaryMuscleGroups = []MuscleGroup{}
	}
	if err := s.repo.exercises.Add(ctx, e); err != nil {
		return Exercise{}, fmt.Errorf("add custom exercise: %w", err)
	}
	return e, nil
}
