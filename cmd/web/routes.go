package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// draftTimeout leaves room for a language model round trip.
const draftTimeout = 30 * time.Second

func (app *application) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(app.logAndTraceRequest, app.recoverPanic, secureHeaders)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		app.writeError(w, r, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		app.writeError(w, r, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
	})

	r.Get("/api/healthy", app.healthy)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(timeout(defaultTimeout - 200*time.Millisecond)) //nolint:mnd // writing the response takes time.

		r.Get("/api/profile", app.profileGET)
		r.Put("/api/profile", app.profilePUT)

		r.Get("/api/metrics/muscles", app.muscleMetricsGET)
		r.Get("/api/recommendation", app.recommendationGET)

		r.Post("/api/workouts/generate", app.generatePOST)
		r.Post("/api/workouts/recommended", app.generateRecommendedPOST)
		r.Post("/api/workouts", app.workoutPOST)
		r.Get("/api/workouts", app.workoutsGET)
		r.Get("/api/workouts/{id}", app.workoutGET)
		r.Patch("/api/workouts/{id}/recovery", app.recoveryPATCH)

		r.Get("/api/exercises", app.exercisesGET)
		r.Post("/api/exercises", app.exercisePOST)
	})

	r.Group(func(r chi.Router) {
		r.Use(app.extendWriteDeadline(draftTimeout), timeout(draftTimeout-time.Second))
		r.Post("/api/exercises/draft", app.exerciseDraftPOST)
	})

	return r
}
