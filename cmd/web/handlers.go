package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/myrjola/setplan/internal/workout"
)

// healthy responds with a JSON object indicating that the server is healthy.
func (app *application) healthy(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (app *application) profileGET(w http.ResponseWriter, r *http.Request) {
	profile, err := app.workoutService.Profile(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, profile)
}

func (app *application) profilePUT(w http.ResponseWriter, r *http.Request) {
	var profile workout.Profile
	if !app.decodeJSON(w, r, &profile) {
		return
	}
	if err := app.workoutService.SaveProfile(r.Context(), profile); err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, profile)
}

func (app *application) muscleMetricsGET(w http.ResponseWriter, r *http.Request) {
	metrics, err := app.workoutService.Metrics(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, metrics)
}

func (app *application) recommendationGET(w http.ResponseWriter, r *http.Request) {
	dashboard, err := app.workoutService.Recommend(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, dashboard)
}

// generatePOST plans a workout. The body is optional and a missing time budget uses the configured default.
func (app *application) generatePOST(w http.ResponseWriter, r *http.Request) {
	var req workout.GenerateRequest
	if r.ContentLength != 0 && !app.decodeJSON(w, r, &req) {
		return
	}
	if req.AvailableTime == 0 {
		req.AvailableTime = app.defaultMinutes
	}
	plan, err := app.workoutService.GenerateWorkout(r.Context(), req)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, plan)
}

type recommendedRequest struct {
	AvailableTime int `json:"availableTime"`
}

func (app *application) generateRecommendedPOST(w http.ResponseWriter, r *http.Request) {
	var req recommendedRequest
	if r.ContentLength != 0 && !app.decodeJSON(w, r, &req) {
		return
	}
	if req.AvailableTime == 0 {
		req.AvailableTime = app.defaultMinutes
	}
	plan, err := app.workoutService.GenerateRecommendedWorkout(r.Context(), req.AvailableTime)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, plan)
}

type loggedResponse struct {
	Workout workout.LoggedWorkout `json:"workout"`
	Metrics workout.Metrics       `json:"metrics"`
}

// workoutPOST logs a completed plan and returns the updated metrics.
func (app *application) workoutPOST(w http.ResponseWriter, r *http.Request) {
	var plan workout.Plan
	if !app.decodeJSON(w, r, &plan) {
		return
	}
	logged, metrics, err := app.workoutService.LogWorkout(r.Context(), plan)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/workouts/"+logged.ID)
	app.writeJSON(w, r, http.StatusCreated, loggedResponse{Workout: logged, Metrics: metrics})
}

// workoutsGET lists the history oldest first. The optional limit keeps the most recent workouts.
func (app *application) workoutsGET(w http.ResponseWriter, r *http.Request) {
	limit, ok := app.queryInt(w, r, "limit", 0)
	if !ok {
		return
	}
	if limit < 0 {
		app.writeError(w, r, http.StatusBadRequest, "limit must not be negative")
		return
	}
	history, err := app.workoutService.History(r.Context())
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	if history == nil {
		history = []workout.LoggedWorkout{}
	}
	app.writeJSON(w, r, http.StatusOK, history)
}

func (app *application) workoutGET(w http.ResponseWriter, r *http.Request) {
	logged, err := app.workoutService.Workout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, logged)
}

// recoveryPATCH replaces the recovery annotation of a logged workout.
func (app *application) recoveryPATCH(w http.ResponseWriter, r *http.Request) {
	var feedback workout.RecoveryInput
	if !app.decodeJSON(w, r, &feedback) {
		return
	}
	id := chi.URLParam(r, "id")
	if err := app.workoutService.SaveRecoveryFeedback(r.Context(), id, feedback); err != nil {
		app.handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) exercisesGET(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	exercises, err := app.workoutService.Catalog(r.Context(),
		workout.MuscleGroup(query.Get("muscle")), workout.Equipment(query.Get("equipment")))
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, exercises)
}

func (app *application) exercisePOST(w http.ResponseWriter, r *http.Request) {
	var e workout.Exercise
	if !app.decodeJSON(w, r, &e) {
		return
	}
	stored, err := app.workoutService.AddExercise(r.Context(), e)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, stored)
}

type draftRequest struct {
	Name string `json:"name"`
}

func (app *application) exerciseDraftPOST(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if !app.decodeJSON(w, r, &req) {
		return
	}
	e, err := app.workoutService.DraftExercise(r.Context(), req.Name)
	if err != nil {
		app.handleError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, e)
}
