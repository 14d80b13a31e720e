package events

import (
	"time"

	"github.com/rs/zerolog"
)

// Manager stamps and publishes events on a Bus
type Manager struct {
	bus *Bus
	now func() time.Time
	log zerolog.Logger
}

// NewManager creates a manager publishing on bus
func NewManager(bus *Bus, log zerolog.Logger) *Manager {
	return &Manager{
		bus: bus,
		now: time.Now,
		log: log.With().Str("component", "events").Logger(),
	}
}

// Emit publishes an event with a free-form payload
func (m *Manager) Emit(eventType EventType, module string, data map[string]interface{}) {
	event := &Event{
		Type:      eventType,
		Module:    module,
		Timestamp: m.now().UTC(),
		Data:      data,
	}

	m.log.Debug().
		Str("event_type", string(eventType)).
		Str("module", module).
		Msg("Emitting event")

	m.bus.Emit(event)
}

// EmitTyped publishes typed event data
func (m *Manager) EmitTyped(module string, data EventData) {
	payload, err := toMap(data)
	if err != nil {
		m.log.Error().Err(err).Str("module", module).Msg("Failed to encode event data")
		return
	}
	m.Emit(data.EventType(), module, payload)
}

// Bus returns the underlying bus
func (m *Manager) Bus() *Bus {
	return m.bus
}
