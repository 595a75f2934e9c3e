package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is a backing service that can report its reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports the state of the API and its backing services
type HealthHandler struct {
	checks map[string]Pinger
}

// NewHealthHandler creates a health handler over the named dependencies
func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health handles GET /api/v1/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			deps[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "up"
	}

	respondWithJSON(w, status, map[string]interface{}{
		"success":      status == http.StatusOK,
		"dependencies": deps,
	})
}
