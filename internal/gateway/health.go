package gateway

import (
	"encoding/json"
	"net/http"
	"time"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Snapshots  int    `json:"snapshots"`
	LastIngest string `json:"last_ingest,omitempty"`
}

// handleHealth reports the store's row count and last write time. An empty
// store is still "ok" — a purge may legitimately have just run.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "ok",
		Snapshots: g.store.Len(),
	}

	if last, err := g.store.LastUpdated(r.Context()); err != nil {
		g.logger.Error("health: last updated lookup failed", "error", err)
		resp.Status = "degraded"
	} else if !last.IsZero() {
		resp.LastIngest = last.UTC().Format(time.RFC3339)
	}

	w.Header().Set("Content-Type", "application/json")
	if resp.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(resp)
}
