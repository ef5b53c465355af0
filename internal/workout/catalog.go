package workout

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/myrjola/setplan/internal/observability"
)

// CatalogSource supplies the exercises the planner chooses from.
type CatalogSource interface {
	Exercises(ctx context.Context) ([]Exercise, error)
}

//go:embed exercises.json
var bundledExercises []byte

// decodeExercises parses a JSON list of exercises, skipping invalid entries.
func decodeExercises(ctx context.Context, r io.Reader, logger *slog.Logger) ([]Exercise, error) {
	var raw []Exercise
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode exercises: %w", err)
	}
	exercises := make([]Exercise, 0, len(raw))
	for _, e := range raw {
		if err := e.validate(); err != nil {
			logger.LogAttrs(ctx, slog.LevelWarn, "skipping invalid exercise",
				slog.String("exercise_id", e.ID), slog.Any("error", err))
			continue
		}
		if e.SecondaryMuscleGroups == nil {
			e.SecondaryMuscleGroups = []MuscleGroup{}
		}
		exercises = append(exercises, e)
	}
	return exercises, nil
}

// StaticCatalog serves the exercise list bundled with the binary.
type StaticCatalog struct {
	exercises []Exercise
}

// NewStaticCatalog parses the bundled exercise list.
func NewStaticCatalog(logger *slog.Logger) (*StaticCatalog, error) {
	exercises, err := decodeExercises(context.Background(), bytes.NewReader(bundledExercises), loggerOrDiscard(logger))
	if err != nil {
		return nil, fmt.Errorf("bundled catalog: %w", err)
	}
	return &StaticCatalog{exercises: exercises}, nil
}

// Exercises returns a copy of the bundled exercises.
func (c *StaticCatalog) Exercises(context.Context) ([]Exercise, error) {
	return slices.Clone(c.exercises), nil
}

// RemoteCatalog fetches exercises from an HTTP endpoint returning a JSON array.
type RemoteCatalog struct {
	client *http.Client
	url    string
	logger *slog.Logger
}

// NewRemoteCatalog constructs a RemoteCatalog.
func NewRemoteCatalog(endpoint string, timeout time.Duration, logger *slog.Logger) *RemoteCatalog {
	return &RemoteCatalog{
		client: &http.Client{Timeout: timeout},
		url:    strings.TrimRight(endpoint, "/"),
		logger: loggerOrDiscard(logger),
	}
}

// CatalogStatusError represents a non-successful catalog response.
type CatalogStatusError struct {
	Status int
}

func (e *CatalogStatusError) Error() string {
	return "exercise catalog request failed with status " + http.StatusText(e.Status)
}

// Unwrap makes the error match ErrCatalogUnavailable.
func (e *CatalogStatusError) Unwrap() error {
	return ErrCatalogUnavailable
}

// Exercises fetches and validates the remote catalog.
func (c *RemoteCatalog) Exercises(ctx context.Context) ([]Exercise, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &CatalogStatusError{Status: resp.StatusCode}
	}
	exercises, err := decodeExercises(ctx, resp.Body, c.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	return exercises, nil
}

// FallbackCatalog tries a primary source and falls back to another one when it fails or returns nothing.
type FallbackCatalog struct {
	primary  CatalogSource
	fallback CatalogSource
	logger   *slog.Logger
}

// NewFallbackCatalog constructs a FallbackCatalog.
func NewFallbackCatalog(primary, fallback CatalogSource, logger *slog.Logger) *FallbackCatalog {
	return &FallbackCatalog{
		primary:  primary,
		fallback: fallback,
		logger:   loggerOrDiscard(logger),
	}
}

// Exercises returns the primary catalog, or the fallback one when the primary is unusable.
func (c *FallbackCatalog) Exercises(ctx context.Context) ([]Exercise, error) {
	exercises, err := c.primary.Exercises(ctx)
	switch {
	case err != nil:
		c.logger.LogAttrs(ctx, slog.LevelWarn, "falling back to local exercise list", slog.Any("error", err))
		observability.RecordCatalogFallback("error")
	case len(exercises) == 0:
		c.logger.LogAttrs(ctx, slog.LevelWarn, "falling back to local exercise list",
			slog.Any("error", ErrEmptyCatalog))
		observability.RecordCatalogFallback("empty")
	default:
		return exercises, nil
	}

	exercises, err = c.fallback.Exercises(ctx)
	if err != nil {
		return nil, fmt.Errorf("fallback catalog: %w", err)
	}
	return exercises, nil
}

// FilterExercises narrows a catalog to exercises that involve muscle, as primary or secondary muscle group, and need
// equipment. Empty filters match everything.
func FilterExercises(exercises []Exercise, muscle MuscleGroup, equipment Equipment) []Exercise {
	filtered := make([]Exercise, 0, len(exercises))
	for _, e := range exercises {
		if muscle != "" && e.PrimaryMuscleGroup != muscle && !slices.Contains(e.SecondaryMuscleGroups, muscle) {
			continue
		}
		if equipment != "" && !slices.Contains(e.Equipment, equipment) {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered
}
