package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all robot routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/landRobot", h.HandleLandRobot)
	r.Post("/moveRobot", h.HandleMoveRobot)
	r.Post("/landAndMove", h.HandleLandAndMove)
	r.Get("/robotPosition", h.HandleGetPosition)
	r.Get("/robotPosition/{robotId}", h.HandleGetPosition)
	r.Get("/robots", h.HandleListRobots)
}
