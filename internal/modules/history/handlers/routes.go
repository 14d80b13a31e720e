package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all history routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/history/sessions", func(r chi.Router) {
		r.Get("/", h.HandleGetSessions)
		r.Get("/{session}", h.HandleGetSession)
	})
}
