// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/model"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/repository"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/service"
)

// EventHandler holds the HTTP handlers for events and their assignments.
type EventHandler struct {
	events  *service.EventService
	assign  *service.AssignmentService
	queries *service.QueryService
}

// NewEventHandler constructs an EventHandler.
func NewEventHandler(events *service.EventService, assign *service.AssignmentService, queries *service.QueryService) *EventHandler {
	return &EventHandler{events: events, assign: assign, queries: queries}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps a service or repository error to a response.
// notFound is the message used for repository.ErrNotFound.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var (
		verr         *service.ValidationError
		already      *service.AlreadyAssignedError
		insufficient *service.InsufficientPhotographersError
	)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": verr.Message, "field": verr.Field})
	case errors.Is(err, repository.ErrDuplicateEmail):
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": repository.ErrDuplicateEmail.Error(), "field": "email"})
	case errors.As(err, &already):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":          service.ErrAlreadyAssigned.Error(),
			"assigned_count": already.AssignedCount,
		})
	case errors.As(err, &insufficient):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":     service.ErrInsufficientPhotographers.Error(),
			"required":  insufficient.Required,
			"available": insufficient.Available,
		})
	case errors.Is(err, service.ErrInvalidRequirement), errors.Is(err, service.ErrPastEvent):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConcurrencyConflict):
		writeJSON(w, http.StatusConflict, map[string]any{"error": err.Error(), "retryable": true})
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// ─── Events ───────────────────────────────────────────────────────────────────

// CreateEvent handles POST /events
func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.events.CreateEvent(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, "event not found")
		return
	}

	writeJSON(w, http.StatusCreated, model.EventDetail{Event: *event, AssignedPhotographers: []model.Photographer{}})
}

// ListEvents handles GET /events
// Returns a JSON array of all events, newest first.
func (h *EventHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEvents(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "event not found")
		return
	}

	// Return an empty array rather than null for better client compatibility.
	if events == nil {
		events = []model.Event{}
	}

	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{id}
// Returns the event with its assigned photographers.
func (h *EventHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	h.writeEventDetail(w, r, chi.URLParam(r, "id"))
}

// ReplaceEvent handles PUT /events/{id}
func (h *EventHandler) ReplaceEvent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.events.ReplaceEvent(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err, "event not found")
		return
	}
	h.writeEventDetail(w, r, event.ID)
}

// UpdateEvent handles PATCH /events/{id}
func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateEventRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	event, err := h.events.UpdateEvent(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err, "event not found")
		return
	}
	h.writeEventDetail(w, r, event.ID)
}

// writeEventDetail responds with the event and its current assignments.
func (h *EventHandler) writeEventDetail(w http.ResponseWriter, r *http.Request, id string) {
	detail, err := h.queries.EventDetail(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// DeleteEvent handles DELETE /events/{id}
func (h *EventHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.events.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err, "event not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AssignPhotographers handles POST /events/{id}/assign-photographers
// Books the required number of free, active photographers onto the event.
func (h *EventHandler) AssignPhotographers(w http.ResponseWriter, r *http.Request) {
	result, err := h.assign.AssignPhotographers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "event not found")
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// ListAssignments handles GET /events/{id}/assignments
func (h *EventHandler) ListAssignments(w http.ResponseWriter, r *http.Request) {
	views, err := h.queries.EventAssignments(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, "event not found")
		return
	}
	writeJSON(w, http.StatusOK, views)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
