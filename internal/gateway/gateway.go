// Package gateway exposes covbot's HTTP surface: the inbound query webhook,
// a health endpoint, and Prometheus metrics.
package gateway

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flemzord/covbot/internal/messaging"
	"github.com/flemzord/covbot/internal/query"
	"github.com/flemzord/covbot/internal/snapshot"
	"github.com/flemzord/covbot/internal/telemetry"
)

// Gateway holds the dependencies of the HTTP handlers. Handler invocations
// are independent, stateless requests; the snapshot store and data source
// are read-only on this path.
type Gateway struct {
	calculator *query.Calculator
	sender     messaging.Sender
	store      snapshot.Store
	metrics    *telemetry.Metrics
	logger     *slog.Logger
}

// New creates a Gateway.
func New(calculator *query.Calculator, sender messaging.Sender, store snapshot.Store, metrics *telemetry.Metrics, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		calculator: calculator,
		sender:     sender,
		store:      store,
		metrics:    metrics,
		logger:     logger,
	}
}

// Router constructs the chi mux with all routes wired.
func (g *Gateway) Router() http.Handler {
	r := chi.NewRouter()

	r.Post("/webhooks/query", g.handleQuery)
	r.Get("/health", g.handleHealth)
	r.Handle("/metrics", g.metrics.Handler())

	return r
}
