// Package handlers provides HTTP handlers for the world size.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aristath/mars-command/internal/events"
	"github.com/aristath/mars-command/internal/modules/world"
	"github.com/rs/zerolog"
)

// Handler handles world size HTTP requests
type Handler struct {
	world        *world.Manager
	eventManager *events.Manager
	log          zerolog.Logger
}

// NewHandler creates a new world handler. eventManager may be nil.
func NewHandler(manager *world.Manager, eventManager *events.Manager, log zerolog.Logger) *Handler {
	return &Handler{
		world:        manager,
		eventManager: eventManager,
		log:          log.With().Str("handler", "world").Logger(),
	}
}

// resizeRequest accepts xMax/yMax as numbers or strings, or the "xMax yMax" command form
type resizeRequest struct {
	XMax    json.RawMessage `json:"xMax"`
	YMax    json.RawMessage `json:"yMax"`
	Command string          `json:"command"`
}

// HandleGetWorldSize handles GET /worldSize
func (h *Handler) HandleGetWorldSize(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.world.Bounds())
}

// HandleSetWorldSize handles POST /worldSize
func (h *Handler) HandleSetWorldSize(w http.ResponseWriter, r *http.Request) {
	var req resizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	xMax, yMax, err := req.size()
	if err != nil {
		h.writeMessage(w, http.StatusBadRequest, "error processing world size: "+err.Error())
		return
	}

	bounds, err := h.world.SetMax(xMax, yMax)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, world.ErrInvalidSize) {
			status = http.StatusBadRequest
		}
		h.log.Debug().Err(err).Str("x_max", xMax).Str("y_max", yMax).Msg("Rejected world resize")
		h.writeMessage(w, status, "error processing world size: "+err.Error())
		return
	}

	h.log.Info().
		Int("x_max", bounds.XMax).
		Int("y_max", bounds.YMax).
		Msg("World resized")

	if h.eventManager != nil {
		h.eventManager.EmitTyped("world", &events.WorldResizedData{
			XMin: bounds.XMin,
			XMax: bounds.XMax,
			YMin: bounds.YMin,
			YMax: bounds.YMax,
		})
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "new size set for world",
		"cmdResponse": fmt.Sprintf("%d %d", bounds.XMax, bounds.YMax),
		"worldSize":   bounds,
	})
}

// size resolves the requested maxima. The command form wins when present.
func (req resizeRequest) size() (string, string, error) {
	if req.Command != "" {
		return world.ParseSize(req.Command)
	}

	xMax, okX := scalar(req.XMax)
	yMax, okY := scalar(req.YMax)
	if !okX || !okY {
		return "", "", &world.InvalidSizeError{Reason: "no command or coordinates (xMax, yMax) found"}
	}
	return xMax, yMax, nil
}

// scalar returns the text of a JSON string or number
func scalar(raw json.RawMessage) (string, bool) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

func (h *Handler) writeMessage(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"message": message})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
