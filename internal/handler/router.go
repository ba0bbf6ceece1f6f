package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the HTTP API.
func NewRouter(events *EventHandler, photographers *PhotographerHandler) http.Handler {
	r := chi.NewRouter()

	// Global middleware stack
	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger)                  // structured access log
	r.Use(CORS)

	r.Get("/health", HealthCheck)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", events.ListEvents)
		r.Post("/", events.CreateEvent)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", events.GetEvent)
			r.Put("/", events.ReplaceEvent)
			r.Patch("/", events.UpdateEvent)
			r.Delete("/", events.DeleteEvent)
			r.Post("/assign-photographers", events.AssignPhotographers)
			r.Get("/assignments", events.ListAssignments)
		})
	})

	r.Route("/photographers", func(r chi.Router) {
		r.Get("/", photographers.ListPhotographers)
		r.Post("/", photographers.CreatePhotographer)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", photographers.GetPhotographer)
			r.Put("/", photographers.ReplacePhotographer)
			r.Patch("/", photographers.UpdatePhotographer)
			r.Delete("/", photographers.DeletePhotographer)
			r.Get("/schedule", photographers.Schedule)
		})
	})

	return r
}
