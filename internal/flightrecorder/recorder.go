// Package flightrecorder keeps a rolling execution trace and writes it to disk when a request is slow or times out.
package flightrecorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime/trace"
	"strings"
	"sync/atomic"
	"time"
)

const (
	defaultMinAge        = 5 * time.Minute
	defaultMaxBytes      = 64 * 1024 * 1024 // 64MB
	defaultCooldown      = 30 * time.Minute
	defaultSlowThreshold = 5 * time.Second
)

// Options tunes the recorder. Zero values select the defaults.
type Options struct {
	// MinAge is the minimum age of trace events to keep.
	MinAge time.Duration
	// MaxBytes caps the trace buffer.
	MaxBytes uint64
	// Cooldown is the minimum time between two captures.
	Cooldown time.Duration
	// SlowThreshold is the request duration that triggers a capture.
	SlowThreshold time.Duration
}

// Recorder captures traces of slow requests.
type Recorder struct {
	logger         *slog.Logger
	flightRecorder *trace.FlightRecorder
	directory      string
	cooldown       time.Duration
	slowThreshold  time.Duration
	now            func() time.Time
	// lastCapture is the Unix nanosecond timestamp of the last capture.
	lastCapture atomic.Int64
}

// New creates a Recorder writing trace files into directory, creating it when missing.
func New(logger *slog.Logger, directory string, opts Options) (*Recorder, error) {
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if directory == "" {
		return nil, errors.New("traces directory is required")
	}

	if stat, err := os.Stat(directory); err != nil {
		if err = os.MkdirAll(directory, 0o700); err != nil {
			return nil, fmt.Errorf("create traces directory: %w", err)
		}
	} else if !stat.IsDir() {
		return nil, fmt.Errorf("traces path is not a directory: %s", directory)
	}

	opts = withDefaults(opts)
	return &Recorder{
		logger: logger,
		flightRecorder: trace.NewFlightRecorder(trace.FlightRecorderConfig{
			MinAge:   opts.MinAge,
			MaxBytes: opts.MaxBytes,
		}),
		directory:     directory,
		cooldown:      opts.Cooldown,
		slowThreshold: opts.SlowThreshold,
		now:           time.Now,
		lastCapture:   atomic.Int64{},
	}, nil
}

func withDefaults(opts Options) Options {
	if opts.MinAge == 0 {
		opts.MinAge = defaultMinAge
	}
	if opts.MaxBytes == 0 {
		opts.MaxBytes = defaultMaxBytes
	}
	if opts.Cooldown == 0 {
		opts.Cooldown = defaultCooldown
	}
	if opts.SlowThreshold == 0 {
		opts.SlowThreshold = defaultSlowThreshold
	}
	return opts
}

// Start begins recording.
func (r *Recorder) Start(ctx context.Context) error {
	if err := r.flightRecorder.Start(); err != nil {
		return fmt.Errorf("start flight recorder: %w", err)
	}
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started",
		slog.String("directory", r.directory),
		slog.Duration("slow_threshold", r.slowThreshold),
		slog.Duration("cooldown", r.cooldown))
	return nil
}

// Stop ends recording.
func (r *Recorder) Stop(ctx context.Context) {
	r.flightRecorder.Stop()
	r.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder stopped")
}

// ObserveRequest captures a trace when the request timed out or took longer than the slow threshold.
// It returns the path of the written trace file, or an empty string when nothing was captured.
func (r *Recorder) ObserveRequest(ctx context.Context, route string, status int, duration time.Duration) string {
	var reason string
	switch {
	case status == http.StatusServiceUnavailable:
		reason = "timeout"
	case duration >= r.slowThreshold:
		reason = "slow"
	default:
		return ""
	}
	return r.capture(ctx, reason, route)
}

func (r *Recorder) capture(ctx context.Context, reason, route string) string {
	now := r.now()
	last := r.lastCapture.Load()
	if last > 0 && now.Sub(time.Unix(0, last)) < r.cooldown {
		r.logger.LogAttrs(ctx, slog.LevelDebug, "skipping trace capture due to cooldown",
			slog.Time("last_capture", time.Unix(0, last)))
		return ""
	}
	if !r.lastCapture.CompareAndSwap(last, now.UnixNano()) {
		return ""
	}

	name := fmt.Sprintf("%s-%s-%s.trace", reason, routeSlug(route), now.UTC().Format("20060102-150405"))
	path := filepath.Join(r.directory, name)
	file, err := os.Create(path)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to create trace file",
			slog.String("file", path), slog.Any("error", err))
		return ""
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			r.logger.LogAttrs(ctx, slog.LevelError, "failed to close trace file",
				slog.String("file", path), slog.Any("error", closeErr))
		}
	}()

	written, err := r.flightRecorder.WriteTo(file)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to write trace",
			slog.String("file", path), slog.Any("error", err))
		return ""
	}
	r.logger.LogAttrs(ctx, slog.LevelWarn, "captured request trace",
		slog.String("file", path), slog.String("reason", reason), slog.Int64("bytes", written))
	return path
}

// routeSlug turns a route pattern such as /api/workouts/{id} into api-workouts-id.
func routeSlug(route string) string {
	slug := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			return c
		case c >= 'A' && c <= 'Z':
			return c + ('a' - 'A')
		case c == '{' || c == '}':
			return -1
		default:
			return '-'
		}
	}, route)
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return "unmatched"
	}
	return slug
}
