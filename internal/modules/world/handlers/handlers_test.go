package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aristath/mars-command/internal/events"
	"github.com/aristath/mars-command/internal/modules/world"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestHandler(t *testing.T) (*world.Manager, *events.Bus, http.Handler) {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)

	manager := world.NewManager()
	bus := events.NewBus(logger)
	handler := NewHandler(manager, events.NewManager(bus, logger), logger)

	router := chi.NewRouter()
	handler.RegisterRoutes(router)
	return manager, bus, router
}

func post(router http.Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/worldSize", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleGetWorldSize(t *testing.T) {
	_, _, router := setupTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/worldSize", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var bounds world.Bounds
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bounds))
	assert.Equal(t, world.Bounds{}, bounds)
	assert.JSONEq(t, `{"xMin":0,"xMax":0,"yMin":0,"yMax":0}`, w.Body.String())
}

func TestHandleSetWorldSize(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantX    int
		wantY    int
	}{
		{"numbers", `{"xMax":5,"yMax":3}`, http.StatusOK, 5, 3},
		{"strings", `{"xMax":"5","yMax":"3"}`, http.StatusOK, 5, 3},
		{"command form", `{"command":"5 3"}`, http.StatusOK, 5, 3},
		{"command wins", `{"command":"7 8","xMax":1,"yMax":1}`, http.StatusOK, 7, 8},
		{"zero size", `{"xMax":0,"yMax":0}`, http.StatusOK, 0, 0},
		{"missing yMax", `{"xMax":5}`, http.StatusBadRequest, 0, 0},
		{"empty body object", `{}`, http.StatusBadRequest, 0, 0},
		{"null values", `{"xMax":null,"yMax":null}`, http.StatusBadRequest, 0, 0},
		{"fractional", `{"xMax":5.5,"yMax":3}`, http.StatusBadRequest, 0, 0},
		{"not a number", `{"xMax":"five","yMax":"3"}`, http.StatusBadRequest, 0, 0},
		{"negative", `{"xMax":-1,"yMax":3}`, http.StatusBadRequest, 0, 0},
		{"command with one token", `{"command":"5"}`, http.StatusBadRequest, 0, 0},
		{"command with three tokens", `{"command":"5 3 1"}`, http.StatusBadRequest, 0, 0},
		{"boolean", `{"xMax":true,"yMax":3}`, http.StatusBadRequest, 0, 0},
		{"malformed json", `{"xMax":`, http.StatusBadRequest, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, _, router := setupTestHandler(t)

			w := post(router, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())

			var response map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			assert.NotEmpty(t, response["message"])

			bounds := manager.Bounds()
			assert.Equal(t, tt.wantX, bounds.XMax)
			assert.Equal(t, tt.wantY, bounds.YMax)
		})
	}
}

func TestHandleSetWorldSize_ResponseBody(t *testing.T) {
	_, _, router := setupTestHandler(t)

	w := post(router, `{"xMax":5,"yMax":3}`)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Message     string       `json:"message"`
		CmdResponse string       `json:"cmdResponse"`
		WorldSize   world.Bounds `json:"worldSize"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "new size set for world", response.Message)
	assert.Equal(t, "5 3", response.CmdResponse)
	assert.Equal(t, world.Bounds{XMax: 5, YMax: 3}, response.WorldSize)
}

func TestHandleSetWorldSize_RejectionKeepsBounds(t *testing.T) {
	manager, _, router := setupTestHandler(t)

	require.Equal(t, http.StatusOK, post(router, `{"xMax":5,"yMax":5}`).Code)
	require.Equal(t, http.StatusBadRequest, post(router, `{"xMax":"x","yMax":"2"}`).Code)

	assert.Equal(t, world.Bounds{XMax: 5, YMax: 5}, manager.Bounds())
}

func TestHandleSetWorldSize_EmitsEvent(t *testing.T) {
	_, bus, router := setupTestHandler(t)

	var received []*events.Event
	bus.Subscribe(events.WorldResized, func(e *events.Event) {
		received = append(received, e)
	})

	post(router, `{"xMax":4,"yMax":2}`)
	post(router, `{"xMax":"bad","yMax":2}`)

	require.Len(t, received, 1)
	assert.Equal(t, "world", received[0].Module)
	assert.Equal(t, float64(4), received[0].Data["xMax"])
	assert.Equal(t, float64(2), received[0].Data["yMax"])
}

func TestNewHandler_WithoutEvents(t *testing.T) {
	handler := NewHandler(world.NewManager(), nil, zerolog.New(nil).Level(zerolog.Disabled))
	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	w := post(router, `{"xMax":1,"yMax":1}`)
	assert.Equal(t, http.StatusOK, w.Code)
}
