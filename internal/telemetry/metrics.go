// Package telemetry owns covbot's Prometheus metrics and optional OTLP
// trace export.
package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds covbot's counters on a private registry so tests can create
// isolated instances without duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry

	IngestRuns        *prometheus.CounterVec
	CountriesUpserted prometheus.Counter
	CountriesFailed   prometheus.Counter
	PurgeRuns         *prometheus.CounterVec
	Queries           *prometheus.CounterVec
	RepliesFailed     prometheus.Counter
}

// NewMetrics creates a Metrics with all collectors registered.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry: reg,
		IngestRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "covbot_ingest_runs_total",
			Help: "Ingest job runs by outcome.",
		}, []string{"status"}),
		CountriesUpserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "covbot_countries_upserted_total",
			Help: "Country snapshots written by the ingest job.",
		}),
		CountriesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "covbot_countries_failed_total",
			Help: "Countries skipped during ingest because of fetch or write failures.",
		}),
		PurgeRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "covbot_purge_runs_total",
			Help: "Purge job runs by outcome.",
		}, []string{"status"}),
		Queries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "covbot_queries_total",
			Help: "Inbound webhook queries by parsed command.",
		}, []string{"command"}),
		RepliesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "covbot_replies_failed_total",
			Help: "Reply deliveries that the messaging provider rejected.",
		}),
	}
}

// Handler returns the HTTP handler serving this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
