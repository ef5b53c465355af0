package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/myrjola/setplan/internal/contexthelpers"
	"github.com/myrjola/setplan/internal/workout"
)

// maxBodyBytes limits request bodies. Profiles and plans are a few kilobytes.
const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "failed to encode response", slog.Any("error", err))
	}
}

func (app *application) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	app.writeJSON(w, r, status, errorResponse{Error: msg, TraceID: contexthelpers.TraceID(r.Context())})
}

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error", slog.Any("error", err))
	app.writeError(w, r, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}

// handleError maps service errors to responses. Client errors carry the error message.
func (app *application) handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, workout.ErrNotFound):
		app.writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, workout.ErrInvalidRequest),
		errors.Is(err, workout.ErrInvalidProfile),
		errors.Is(err, workout.ErrUnknownMuscleGroup):
		app.writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, workout.ErrDraftingDisabled):
		app.writeError(w, r, http.StatusNotImplemented, err.Error())
	case errors.Is(err, workout.ErrCatalogUnavailable), errors.Is(err, workout.ErrEmptyCatalog):
		app.logger.LogAttrs(r.Context(), slog.LevelError, "catalog error", slog.Any("error", err))
		app.writeError(w, r, http.StatusServiceUnavailable, err.Error())
	default:
		app.serverError(w, r, err)
	}
}

// decodeJSON reads the request body into dst. It responds with 400 and returns false on malformed input.
func (app *application) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		app.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("malformed request body: %v", err))
		return false
	}
	return true
}

// queryInt parses an optional integer query parameter. It responds with 400 and returns false when malformed.
func (app *application) queryInt(w http.ResponseWriter, r *http.Request, name string, fallback int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		app.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("%s must be an integer", name))
		return 0, false
	}
	return v, true
}
