package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the world size routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/worldSize", h.HandleGetWorldSize)
	r.Post("/worldSize", h.HandleSetWorldSize)
}
