// Package observability exposes prometheus instruments for the planner.
package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

//nolint:gochecknoglobals // registered collectors.
var (
	plansGeneratedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "setplan",
		Subsystem: "planner",
		Name:      "plans_generated_total",
		Help:      "Number of generated workout plans grouped by structure type.",
	}, []string{"structure"})

	planExercisesHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "setplan",
		Subsystem: "planner",
		Name:      "plan_exercises",
		Help:      "Number of exercises in generated workout plans.",
		Buckets:   prometheus.LinearBuckets(0, 2, 10), //nolint:mnd // 0..18 exercises
	})

	catalogFallbackCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "setplan",
		Subsystem: "catalog",
		Name:      "fallbacks_total",
		Help:      "Number of times the remote exercise catalog was replaced by the bundled one.",
	}, []string{"reason"})

	workoutsLoggedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "setplan",
		Subsystem: "history",
		Name:      "workouts_logged_total",
		Help:      "Number of workouts appended to the history.",
	})

	lastWorkoutGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "setplan",
		Subsystem: "history",
		Name:      "last_workout_timestamp_seconds",
		Help:      "Unix timestamp of the most recently logged workout.",
	})

	historySkippedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "setplan",
		Subsystem: "history",
		Name:      "records_skipped_total",
		Help:      "Number of stored history records that could not be decoded.",
	})

	requestDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "setplan",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests grouped by route, method and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)

func init() {
	prometheus.MustRegister(
		plansGeneratedCounter,
		planExercisesHistogram,
		catalogFallbackCounter,
		workoutsLoggedCounter,
		lastWorkoutGauge,
		historySkippedCounter,
		requestDurationHistogram,
	)
}

// RecordPlanGenerated counts a generated plan.
func RecordPlanGenerated(structure string, exercises int) {
	plansGeneratedCounter.WithLabelValues(structure).Inc()
	planExercisesHistogram.Observe(float64(exercises))
}

// RecordCatalogFallback counts a switch to the bundled exercise catalog.
func RecordCatalogFallback(reason string) {
	catalogFallbackCounter.WithLabelValues(reason).Inc()
}

// RecordWorkoutLogged counts a logged workout and updates the last workout watermark.
func RecordWorkoutLogged(ts time.Time) {
	workoutsLoggedCounter.Inc()
	if ts.IsZero() {
		return
	}
	lastWorkoutGauge.Set(float64(ts.Unix()))
}

// RecordHistorySkipped counts an undecodable history record.
func RecordHistorySkipped() {
	historySkippedCounter.Inc()
}

// RecordRequest observes one served HTTP request. route is the matched pattern so that ids do not explode the label
// cardinality.
func RecordRequest(route, method string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	requestDurationHistogram.WithLabelValues(route, method, strconv.Itoa(status)).Observe(duration.Seconds())
}
