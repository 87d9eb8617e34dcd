package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	CardsIssued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cards_issued_total",
			Help: "Total card issuance attempts by type and outcome.",
		},
		[]string{"type", "status"},
	)
	CardsActivated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cards_activated_total",
			Help: "Total cards transitioned from PENDING to ACTIVATED.",
		},
	)
)

// NewRegistry builds a registry with the process collectors and the
// application metrics registered.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		RequestCount,
		CardsIssued,
		CardsActivated,
	)
	return registry
}

// Handler exposes the registry for scraping
func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
