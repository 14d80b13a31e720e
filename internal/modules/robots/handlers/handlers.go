// Package handlers provides HTTP handlers for landing, moving and locating robots.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aristath/mars-command/internal/domain"
	"github.com/aristath/mars-command/internal/events"
	"github.com/aristath/mars-command/internal/modules/robots"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

const (
	// HeaderUser names the caller recorded in history
	HeaderUser = "X-User"
	// HeaderSession groups history records; defaults to the UTC date
	HeaderSession = "X-Session"
)

// RobotLister lists every stored robot
type RobotLister interface {
	List(ctx context.Context) ([]robots.RobotState, error)
}

// Handler handles robot HTTP requests
type Handler struct {
	service      *robots.Service
	lister       RobotLister
	eventManager *events.Manager
	defaultUser  string
	now          func() time.Time
	log          zerolog.Logger
}

// NewHandler creates a new robots handler. lister and eventManager may be nil.
func NewHandler(
	service *robots.Service,
	lister RobotLister,
	eventManager *events.Manager,
	defaultUser string,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		service:      service,
		lister:       lister,
		eventManager: eventManager,
		defaultUser:  defaultUser,
		now:          time.Now,
		log:          log.With().Str("handler", "robots").Logger(),
	}
}

// HandleLandRobot handles POST /landRobot
func (h *Handler) HandleLandRobot(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	robotID, err := req.robotID()
	if err != nil {
		h.writeError(w, "", "", err)
		return
	}

	pos, err := req.position()
	if err != nil {
		h.writeError(w, robotID, "", err)
		return
	}

	caller := h.caller(r)
	landed, err := h.service.Land(r.Context(), robotID, pos, caller)
	if err != nil {
		h.writeError(w, robotID, robots.LandCommand, err)
		return
	}

	h.emitLanded(robotID, landed, caller)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "robot landed",
		"robotId":         robotID,
		"currentPosition": landed,
		"cmdResponse":     landed.String(),
	})
}

// HandleMoveRobot handles POST /moveRobot
func (h *Handler) HandleMoveRobot(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	robotID, err := req.robotID()
	if err != nil {
		h.writeError(w, "", "", err)
		return
	}

	command, err := req.command()
	if err != nil {
		h.writeError(w, robotID, "", err)
		return
	}

	caller := h.caller(r)
	final, err := h.service.Move(r.Context(), robotID, command, caller)
	if err != nil {
		h.writeError(w, robotID, command, err)
		h.emitLost(robotID, command, caller, err)
		return
	}

	h.emitMoved(robotID, command, final, caller)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "robot moved",
		"robotId":         robotID,
		"currentPosition": final,
		"cmdResponse":     final.String(),
	})
}

// HandleLandAndMove handles POST /landAndMove
func (h *Handler) HandleLandAndMove(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	robotID, err := req.robotID()
	if err != nil {
		h.writeError(w, "", "", err)
		return
	}

	pos, err := req.position()
	if err != nil {
		h.writeError(w, robotID, "", err)
		return
	}

	command, err := req.command()
	if err != nil {
		h.writeError(w, robotID, "", err)
		return
	}

	caller := h.caller(r)
	final, err := h.service.LandAndMove(r.Context(), robotID, pos, command, caller)
	if err != nil {
		var lost *robots.OutOfWorldError
		if errors.As(err, &lost) && !lost.Landing {
			h.emitLanded(robotID, pos, caller)
		}
		h.writeError(w, robotID, command, err)
		h.emitLost(robotID, command, caller, err)
		return
	}

	h.emitLanded(robotID, pos, caller)
	h.emitMoved(robotID, command, final, caller)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "robot landed and moved",
		"robotId":         robotID,
		"currentPosition": final,
		"cmdResponse":     final.String(),
	})
}

// HandleGetPosition handles GET /robotPosition and GET /robotPosition/{robotId}
func (h *Handler) HandleGetPosition(w http.ResponseWriter, r *http.Request) {
	robotID := chi.URLParam(r, "robotId")
	if robotID == "" {
		robotID = r.URL.Query().Get("robotId")
	}
	if robotID == "" {
		robotID = domain.DefaultRobotID
	}

	pos, err := h.service.Position(r.Context(), robotID)
	if err != nil {
		h.writeError(w, robotID, "", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "robot found!",
		"robotId":         robotID,
		"currentPosition": pos,
		"cmdResponse":     pos.String(),
	})
}

// HandleListRobots handles GET /robots
func (h *Handler) HandleListRobots(w http.ResponseWriter, r *http.Request) {
	if h.lister == nil {
		h.writeMessage(w, http.StatusNotImplemented, "robot listing is not available")
		return
	}

	states, err := h.lister.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list robots")
		h.writeMessage(w, http.StatusInternalServerError, "error listing robots: "+err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"robots": states,
		"count":  len(states),
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (robotRequest, bool) {
	var req robotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeMessage(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return req, false
	}
	return req, true
}

// caller builds the identity recorded with every accepted command
func (h *Handler) caller(r *http.Request) domain.Caller {
	now := h.now().UTC()

	user := strings.TrimSpace(r.Header.Get(HeaderUser))
	if user == "" {
		user = h.defaultUser
	}

	session := strings.TrimSpace(r.Header.Get(HeaderSession))
	if session == "" {
		session = domain.SessionForDate(now)
	}

	return domain.Caller{User: user, Session: session, At: now}
}

// statusFor maps movement engine errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, robots.ErrFormat),
		errors.Is(err, robots.ErrInvalidCoordinate),
		errors.Is(err, robots.ErrInvalidOrientation),
		errors.Is(err, robots.ErrInvalidMovement):
		return http.StatusBadRequest
	case errors.Is(err, robots.ErrRobotNotFound):
		return http.StatusNotFound
	case errors.Is(err, robots.ErrOutOfWorld):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, robotID, command string, err error) {
	status := statusFor(err)

	event := h.log.Debug()
	if status >= http.StatusInternalServerError {
		event = h.log.Error()
	}
	event.Err(err).
		Str("robot_id", robotID).
		Str("command", command).
		Int("status", status).
		Msg("Robot request failed")

	body := map[string]interface{}{
		"message": "error processing movement: " + err.Error(),
	}
	if robotID != "" {
		body["robotId"] = robotID
	}

	var lost *robots.OutOfWorldError
	if errors.As(err, &lost) {
		body["lost"] = true
		body["axis"] = string(lost.Axis)
		if !lost.Landing {
			body["currentPosition"] = lost.Last
			body["cmdResponse"] = lost.Last.String() + " LOST"
		}
	}

	h.writeJSON(w, status, body)
}

func (h *Handler) emitLanded(robotID string, pos domain.Position, caller domain.Caller) {
	if h.eventManager == nil {
		return
	}
	h.eventManager.EmitTyped("robots", &events.RobotLandedData{
		RobotID:  robotID,
		Position: pos,
		User:     caller.User,
		Session:  caller.Session,
	})
}

func (h *Handler) emitMoved(robotID, command string, pos domain.Position, caller domain.Caller) {
	if h.eventManager == nil {
		return
	}
	h.eventManager.EmitTyped("robots", &events.RobotMovedData{
		RobotID:  robotID,
		Command:  command,
		Position: pos,
		User:     caller.User,
		Session:  caller.Session,
	})
}

// emitLost publishes RobotLost when err reports a robot leaving the grid during a move
func (h *Handler) emitLost(robotID, command string, caller domain.Caller, err error) {
	if h.eventManager == nil {
		return
	}
	var lost *robots.OutOfWorldError
	if !errors.As(err, &lost) || lost.Landing {
		return
	}
	h.eventManager.EmitTyped("robots", &events.RobotLostData{
		RobotID:      robotID,
		Command:      command,
		LastPosition: lost.Last,
		Axis:         string(lost.Axis),
		User:         caller.User,
		Session:      caller.Session,
	})
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
