package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shivanand-hulikatti/photographer-assignment/internal/model"
	"github.com/Shivanand-hulikatti/photographer-assignment/internal/service"
)

const photographerNotFound = "photographer not found"

// PhotographerHandler holds the HTTP handlers for photographers.
type PhotographerHandler struct {
	photographers *service.PhotographerService
	queries       *service.QueryService
}

// NewPhotographerHandler constructs a PhotographerHandler.
func NewPhotographerHandler(photographers *service.PhotographerService, queries *service.QueryService) *PhotographerHandler {
	return &PhotographerHandler{photographers: photographers, queries: queries}
}

// CreatePhotographer handles POST /photographers
func (h *PhotographerHandler) CreatePhotographer(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePhotographerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	p, err := h.photographers.CreatePhotographer(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err, photographerNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// ListPhotographers handles GET /photographers
func (h *PhotographerHandler) ListPhotographers(w http.ResponseWriter, r *http.Request) {
	ps, err := h.photographers.ListPhotographers(r.Context())
	if err != nil {
		writeServiceError(w, r, err, photographerNotFound)
		return
	}
	if ps == nil {
		ps = []model.Photographer{}
	}
	writeJSON(w, http.StatusOK, ps)
}

// GetPhotographer handles GET /photographers/{id}
func (h *PhotographerHandler) GetPhotographer(w http.ResponseWriter, r *http.Request) {
	p, err := h.photographers.GetPhotographer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, photographerNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ReplacePhotographer handles PUT /photographers/{id}
func (h *PhotographerHandler) ReplacePhotographer(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePhotographerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	p, err := h.photographers.ReplacePhotographer(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err, photographerNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdatePhotographer handles PATCH /photographers/{id}
func (h *PhotographerHandler) UpdatePhotographer(w http.ResponseWriter, r *http.Request) {
	var req model.UpdatePhotographerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	p, err := h.photographers.UpdatePhotographer(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, r, err, photographerNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePhotographer handles DELETE /photographers/{id}
func (h *PhotographerHandler) DeletePhotographer(w http.ResponseWriter, r *http.Request) {
	if err := h.photographers.DeletePhotographer(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err, photographerNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Schedule handles GET /photographers/{id}/schedule
// Returns the photographer with the events they are assigned to.
func (h *PhotographerHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.queries.PhotographerSchedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err, photographerNotFound)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}
