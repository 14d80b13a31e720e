package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/aristath/mars-command/internal/events"
	"github.com/aristath/mars-command/internal/utils"
)

const (
	defaultHeartbeat = 30 * time.Second
	writeTimeout     = 5 * time.Second
)

// EventsStreamHandler streams bus events to websocket clients
type EventsStreamHandler struct {
	eventBus  *events.Bus
	heartbeat time.Duration
	log       zerolog.Logger
}

// NewEventsStreamHandler creates a new events stream handler
func NewEventsStreamHandler(eventBus *events.Bus, log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		eventBus:  eventBus,
		heartbeat: defaultHeartbeat,
		log:       log.With().Str("component", "events_stream").Logger(),
	}
}

// streamMessage is the envelope written to clients
type streamMessage struct {
	Type      string                 `json:"type"`
	Module    string                 `json:"module,omitempty"`
	Timestamp string                 `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// ServeHTTP handles GET /api/events/ws.
// Query parameter types filters the stream to a comma separated list of event types.
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	allowed := parseTypes(r.URL.Query().Get("types"))

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	// Clients never send data; CloseRead handles control frames and
	// cancels ctx once the peer goes away.
	ctx := conn.CloseRead(r.Context())

	eventChan := make(chan *events.Event, 100)
	handler := func(event *events.Event) {
		select {
		case eventChan <- event:
		default:
			h.log.Warn().
				Str("event_type", string(event.Type)).
				Msg("Event channel full, dropping event")
		}
	}

	ids := make([]string, 0, len(allowed))
	for _, eventType := range allowed {
		ids = append(ids, h.eventBus.Subscribe(eventType, handler))
	}
	defer func() {
		for _, id := range ids {
			h.eventBus.Unsubscribe(id)
		}
	}()

	h.log.Info().Int("types", len(allowed)).Msg("Client connected to event stream")

	if err := h.write(ctx, conn, streamMessage{
		Type:      "connected",
		Timestamp: time.Now().Format(time.RFC3339),
	}); err != nil {
		h.log.Debug().Err(err).Msg("Failed to send connected message")
		return
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info().Msg("Client disconnected from event stream")
			conn.Close(websocket.StatusNormalClosure, "")
			return

		case event := <-eventChan:
			err := h.write(ctx, conn, streamMessage{
				Type:      string(event.Type),
				Module:    event.Module,
				Timestamp: event.Timestamp.Format(time.RFC3339),
				Data:      event.Data,
			})
			if err != nil {
				h.logWriteError(err)
				return
			}

		case <-heartbeat.C:
			err := h.write(ctx, conn, streamMessage{
				Type:      "heartbeat",
				Timestamp: time.Now().Format(time.RFC3339),
			})
			if err != nil {
				h.logWriteError(err)
				return
			}
		}
	}
}

func (h *EventsStreamHandler) write(ctx context.Context, conn *websocket.Conn, msg streamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal %s message: %w", msg.Type, err)
	}

	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()

	return conn.Write(writeCtx, websocket.MessageText, data)
}

func (h *EventsStreamHandler) logWriteError(err error) {
	status := websocket.CloseStatus(err)
	if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
		h.log.Debug().Err(err).Msg("Event stream closed by client")
		return
	}
	h.log.Warn().Err(err).Msg("Failed to write to event stream")
}

// parseTypes returns the requested event types, or every type when filter is empty
func parseTypes(filter string) []events.EventType {
	names := utils.ParseCSV(filter)
	if len(names) == 0 {
		return events.AllTypes
	}

	types := make([]events.EventType, 0, len(names))
	for _, name := range names {
		types = append(types, events.EventType(name))
	}
	return types
}
