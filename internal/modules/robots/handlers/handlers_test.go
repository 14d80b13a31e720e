package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aristath/mars-command/internal/domain"
	"github.com/aristath/mars-command/internal/events"
	"github.com/aristath/mars-command/internal/modules/robots"
	testhelpers "github.com/aristath/mars-command/internal/testing"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router   http.Handler
	handler  *Handler
	store    *testhelpers.MockStateStore
	recorder *testhelpers.MockRecorder
	bus      *events.Bus
}

type mockLister struct {
	states []robots.RobotState
	err    error
}

func (m *mockLister) List(ctx context.Context) ([]robots.RobotState, error) {
	return m.states, m.err
}

var clock = time.Date(2024, 5, 17, 23, 45, 0, 0, time.UTC)

func setupTestEnv(t *testing.T, xMax, yMax string) *testEnv {
	t.Helper()
	logger := zerolog.New(nil).Level(zerolog.Disabled)

	store := testhelpers.NewMockStateStore()
	recorder := testhelpers.NewMockRecorder()
	service := robots.NewService(store, testhelpers.NewWorldFixture(xMax, yMax), recorder)
	bus := events.NewBus(logger)

	handler := NewHandler(service, &mockLister{}, events.NewManager(bus, logger), "default_user", logger)
	handler.now = func() time.Time { return clock }

	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	return &testEnv{
		router:   router,
		handler:  handler,
		store:    store,
		recorder: recorder,
		bus:      bus,
	}
}

func (e *testEnv) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func TestHandleLandRobot(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
		wantID   string
		want     domain.Position
	}{
		{"string form", `{"position":"1 1 E","robotId":"r1"}`, http.StatusOK, "r1", domain.Position{X: 1, Y: 1, Orientation: domain.East}},
		{"object form numbers", `{"xPos":2,"yPos":3,"orientation":"S","robotId":"r1"}`, http.StatusOK, "r1", domain.Position{X: 2, Y: 3, Orientation: domain.South}},
		{"object form strings", `{"xPos":"2","yPos":"3","orientation":"W"}`, http.StatusOK, "default", domain.Position{X: 2, Y: 3, Orientation: domain.West}},
		{"numeric robot id", `{"position":"0 0 N","robotId":7}`, http.StatusOK, "7", domain.Position{Orientation: domain.North}},
		{"empty robot id", `{"position":"0 0 N","robotId":""}`, http.StatusOK, "default", domain.Position{Orientation: domain.North}},
		{"position not a string", `{"position":5}`, http.StatusBadRequest, "", domain.Position{}},
		{"too few tokens", `{"position":"1 1"}`, http.StatusBadRequest, "", domain.Position{}},
		{"bad coordinate", `{"position":"a 1 N"}`, http.StatusBadRequest, "", domain.Position{}},
		{"fractional coordinate", `{"xPos":1.5,"yPos":1,"orientation":"N"}`, http.StatusBadRequest, "", domain.Position{}},
		{"bad orientation", `{"position":"1 1 Q"}`, http.StatusBadRequest, "", domain.Position{}},
		{"lowercase orientation", `{"position":"1 1 n"}`, http.StatusBadRequest, "", domain.Position{}},
		{"orientation not a string", `{"xPos":1,"yPos":1,"orientation":1}`, http.StatusBadRequest, "", domain.Position{}},
		{"missing fields", `{"xPos":1}`, http.StatusBadRequest, "", domain.Position{}},
		{"robot id object", `{"position":"1 1 N","robotId":{}}`, http.StatusBadRequest, "", domain.Position{}},
		{"outside grid", `{"position":"6 1 N","robotId":"r1"}`, http.StatusUnprocessableEntity, "", domain.Position{}},
		{"malformed json", `{"position":`, http.StatusBadRequest, "", domain.Position{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t, "5", "5")

			w := env.do(http.MethodPost, "/landRobot", tt.body, nil)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			body := decodeBody(t, w)
			assert.NotEmpty(t, body["message"])

			if tt.wantCode != http.StatusOK {
				assert.Empty(t, env.store.Writes(), "rejected landings store nothing")
				return
			}

			assert.Equal(t, "robot landed", body["message"])
			assert.Equal(t, tt.wantID, body["robotId"])
			assert.Equal(t, tt.want.String(), body["cmdResponse"])

			pos, err := env.store.Get(context.Background(), tt.wantID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pos)
		})
	}
}

func TestHandleLandRobot_OutsideGridBody(t *testing.T) {
	env := setupTestEnv(t, "5", "5")

	w := env.do(http.MethodPost, "/landRobot", `{"position":"1 9 N","robotId":"r1"}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["lost"])
	assert.Equal(t, "y", body["axis"])
	assert.NotContains(t, body, "currentPosition")
}

func TestHandleMoveRobot(t *testing.T) {
	env := setupTestEnv(t, "5", "3")
	env.store.Put("r1", domain.Position{X: 1, Y: 1, Orientation: domain.East})

	w := env.do(http.MethodPost, "/moveRobot", `{"command":"RFRFRFRF","robotId":"r1"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "robot moved", body["message"])
	assert.Equal(t, "r1", body["robotId"])
	assert.Equal(t, "1 1 E", body["cmdResponse"])

	current := body["currentPosition"].(map[string]interface{})
	assert.Equal(t, float64(1), current["xPos"])
	assert.Equal(t, float64(1), current["yPos"])
	assert.Equal(t, "E", current["orientation"])
}

func TestHandleMoveRobot_Lost(t *testing.T) {
	env := setupTestEnv(t, "5", "3")
	env.store.Put("r1", domain.Position{X: 3, Y: 2, Orientation: domain.North})

	var lostEvents []*events.Event
	env.bus.Subscribe(events.RobotLost, func(e *events.Event) {
		lostEvents = append(lostEvents, e)
	})

	w := env.do(http.MethodPost, "/moveRobot", `{"command":"FRRFLLFFRRFLL","robotId":"r1"}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "3 3 N LOST", body["cmdResponse"])
	assert.Equal(t, true, body["lost"])
	assert.Contains(t, body["message"], "robot out of world in y-axis")

	require.Len(t, lostEvents, 1)
	assert.Equal(t, "r1", lostEvents[0].Data["robotId"])
	assert.Equal(t, "y", lostEvents[0].Data["axis"])
}

func TestHandleMoveRobot_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode int
	}{
		{"unknown robot", `{"command":"F","robotId":"ghost"}`, http.StatusNotFound},
		{"missing command", `{"robotId":"r1"}`, http.StatusBadRequest},
		{"empty command", `{"command":"","robotId":"r1"}`, http.StatusBadRequest},
		{"command not a string", `{"command":42,"robotId":"r1"}`, http.StatusBadRequest},
		{"invalid movement", `{"command":"FFX","robotId":"r1"}`, http.StatusBadRequest},
		{"lowercase movement", `{"command":"f","robotId":"r1"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t, "5", "5")
			env.store.Put("r1", domain.Position{X: 0, Y: 0, Orientation: domain.North})

			w := env.do(http.MethodPost, "/moveRobot", tt.body, nil)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Empty(t, env.store.Writes())
			assert.Empty(t, env.recorder.Records())
		})
	}
}

func TestHandleMoveRobot_StoreFailure(t *testing.T) {
	env := setupTestEnv(t, "5", "5")
	env.store.Put("r1", domain.Position{X: 0, Y: 0, Orientation: domain.North})
	env.store.FailSetAfter(0, errors.New("disk full"))

	w := env.do(http.MethodPost, "/moveRobot", `{"command":"F","robotId":"r1"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleLandAndMove(t *testing.T) {
	env := setupTestEnv(t, "5", "3")

	var types []events.EventType
	for _, eventType := range events.AllTypes {
		env.bus.Subscribe(eventType, func(e *events.Event) {
			types = append(types, e.Type)
		})
	}

	w := env.do(http.MethodPost, "/landAndMove", `{"position":"1 1 E","command":"RFRFRFRF","robotId":"r1"}`, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decodeBody(t, w)
	assert.Equal(t, "robot landed and moved", body["message"])
	assert.Equal(t, "1 1 E", body["cmdResponse"])

	assert.Equal(t, []events.EventType{events.RobotLanded, events.RobotMoved}, types)

	records := env.recorder.Records()
	require.Len(t, records, 2)
	assert.Equal(t, robots.LandCommand, records[0].Command)
	assert.Equal(t, "RFRFRFRF", records[1].Command)
}

func TestHandleLandAndMove_Lost(t *testing.T) {
	env := setupTestEnv(t, "5", "3")

	var types []events.EventType
	for _, eventType := range events.AllTypes {
		env.bus.Subscribe(eventType, func(e *events.Event) {
			types = append(types, e.Type)
		})
	}

	w := env.do(http.MethodPost, "/landAndMove", `{"position":"3 2 N","command":"FRRFLLFFRRFLL","robotId":"r2"}`, nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "3 3 N LOST", body["cmdResponse"])
	assert.Equal(t, []events.EventType{events.RobotLanded, events.RobotLost}, types)
}

func TestHandleLandAndMove_RequiresBoth(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no command", `{"position":"1 1 E"}`},
		{"no position", `{"command":"F"}`},
		{"bad command", `{"position":"1 1 E","command":"FZ"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t, "5", "3")

			w := env.do(http.MethodPost, "/landAndMove", tt.body, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, env.store.Writes())
		})
	}
}

func TestHandleGetPosition(t *testing.T) {
	env := setupTestEnv(t, "5", "5")
	env.store.Put("r1", domain.Position{X: 2, Y: 4, Orientation: domain.South})
	env.store.Put(domain.DefaultRobotID, domain.Position{X: 0, Y: 1, Orientation: domain.West})

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantID   string
		wantX    float64
		wantCmd  string
	}{
		{"path param", "/robotPosition/r1", http.StatusOK, "r1", 2, "2 4 S"},
		{"query param", "/robotPosition?robotId=r1", http.StatusOK, "r1", 2, "2 4 S"},
		{"default robot", "/robotPosition", http.StatusOK, "default", 0, "0 1 W"},
		{"unknown robot", "/robotPosition/ghost", http.StatusNotFound, "ghost", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodGet, tt.path, "", nil)
			assert.Equal(t, tt.wantCode, w.Code)

			body := decodeBody(t, w)
			assert.Equal(t, tt.wantID, body["robotId"])
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, "robot found!", body["message"])
				current := body["currentPosition"].(map[string]interface{})
				assert.Equal(t, tt.wantX, current["xPos"])
				assert.Equal(t, tt.wantCmd, body["cmdResponse"])
			}
		})
	}
}

func TestHandleListRobots(t *testing.T) {
	env := setupTestEnv(t, "5", "5")
	env.handler.lister = &mockLister{states: []robots.RobotState{
		{RobotID: "a", Position: domain.Position{X: 1, Y: 1, Orientation: domain.North}},
		{RobotID: "b", Position: domain.Position{X: 2, Y: 2, Orientation: domain.East}},
	}}

	w := env.do(http.MethodGet, "/robots", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Robots []robots.RobotState `json:"robots"`
		Count  int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, 2, response.Count)
	assert.Equal(t, "b", response.Robots[1].RobotID)
}

func TestHandleListRobots_Errors(t *testing.T) {
	env := setupTestEnv(t, "5", "5")

	env.handler.lister = &mockLister{err: errors.New("closed")}
	assert.Equal(t, http.StatusInternalServerError, env.do(http.MethodGet, "/robots", "", nil).Code)

	env.handler.lister = nil
	assert.Equal(t, http.StatusNotImplemented, env.do(http.MethodGet, "/robots", "", nil).Code)
}

func TestCallerIdentity(t *testing.T) {
	tests := []struct {
		name        string
		headers     map[string]string
		wantUser    string
		wantSession string
	}{
		{"defaults", nil, "default_user", "2024-05-17"},
		{"explicit user", map[string]string{HeaderUser: "alice"}, "alice", "2024-05-17"},
		{"explicit session", map[string]string{HeaderSession: "mission-7"}, "default_user", "mission-7"},
		{"blank headers", map[string]string{HeaderUser: "  ", HeaderSession: ""}, "default_user", "2024-05-17"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnv(t, "5", "5")

			w := env.do(http.MethodPost, "/landRobot", `{"position":"1 1 N"}`, tt.headers)
			require.Equal(t, http.StatusOK, w.Code)

			records := env.recorder.Records()
			require.Len(t, records, 1)
			assert.Equal(t, tt.wantUser, records[0].Caller.User)
			assert.Equal(t, tt.wantSession, records[0].Caller.Session)
			assert.Equal(t, clock, records[0].Caller.At)
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"format", &robots.FormatError{}, http.StatusBadRequest},
		{"coordinate", &robots.InvalidCoordinateError{}, http.StatusBadRequest},
		{"orientation", &robots.InvalidOrientationError{}, http.StatusBadRequest},
		{"movement", &robots.InvalidMovementError{}, http.StatusBadRequest},
		{"not found", &robots.RobotNotFoundError{}, http.StatusNotFound},
		{"lost", &robots.OutOfWorldError{}, http.StatusUnprocessableEntity},
		{"lost with history failure", errors.Join(&robots.OutOfWorldError{}, errors.New("history")), http.StatusUnprocessableEntity},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestRegisterRoutes(t *testing.T) {
	env := setupTestEnv(t, "1", "1")
	router := chi.NewRouter()

	assert.NotPanics(t, func() {
		env.handler.RegisterRoutes(router)
	}, "RegisterRoutes should not panic")
}
