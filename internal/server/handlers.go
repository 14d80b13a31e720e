package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// handleWelcome handles GET /
func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "Welcome to the Mars-Command API.",
	})
}

// handleHealth pings and integrity-checks every database
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := http.StatusOK
	databases := make(map[string]string)
	for name, db := range s.container.Databases() {
		if err := db.HealthCheck(ctx); err != nil {
			s.log.Error().Err(err).Str("database", name).Msg("Health check failed")
			databases[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		databases[name] = "ok"
	}

	response := map[string]interface{}{
		"status":    "healthy",
		"service":   "mars-command",
		"databases": databases,
	}
	if status != http.StatusOK {
		response["status"] = "unhealthy"
	}

	s.writeJSON(w, status, response)
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
