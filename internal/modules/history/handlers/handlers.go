// Package handlers provides HTTP handlers for reading the command history.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aristath/mars-command/internal/modules/history"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// ContentTypeMsgpack is served when the client asks for it in Accept
const ContentTypeMsgpack = "application/x-msgpack"

// Reader is the read side of the history service
type Reader interface {
	Session(ctx context.Context, session string) ([]history.Record, error)
	Sessions(ctx context.Context) ([]history.SessionSummary, error)
}

// Handler handles history HTTP requests
type Handler struct {
	history Reader
	log     zerolog.Logger
}

// NewHandler creates a new history handler
func NewHandler(reader Reader, log zerolog.Logger) *Handler {
	return &Handler{
		history: reader,
		log:     log.With().Str("handler", "history").Logger(),
	}
}

// HandleGetSessions handles GET /api/history/sessions
func (h *Handler) HandleGetSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.history.Sessions(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list sessions")
		http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}

	h.write(w, r, map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	})
}

// HandleGetSession handles GET /api/history/sessions/{session}
func (h *Handler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	session := chi.URLParam(r, "session")
	if session == "" {
		http.Error(w, "Session is required", http.StatusBadRequest)
		return
	}

	records, err := h.history.Session(r.Context(), session)
	if err != nil {
		h.log.Error().Err(err).Str("session", session).Msg("Failed to read session")
		http.Error(w, "Failed to read session", http.StatusInternalServerError)
		return
	}

	h.write(w, r, map[string]interface{}{
		"session": session,
		"records": records,
		"count":   len(records),
	})
}

// write encodes data as msgpack or JSON depending on the Accept header
func (h *Handler) write(w http.ResponseWriter, r *http.Request, data interface{}) {
	if strings.Contains(r.Header.Get("Accept"), ContentTypeMsgpack) {
		payload, err := msgpack.Marshal(data)
		if err != nil {
			h.log.Error().Err(err).Msg("Failed to encode msgpack response")
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", ContentTypeMsgpack)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(payload)
		return
	}

	h.writeJSON(w, http.StatusOK, data)
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
