// Package metrics exposes prometheus counters for the token workflows and
// serves them on a dedicated listener.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service counters. Label values come from the delivery
// and verification result types.
type Metrics struct {
	registry *prometheus.Registry

	MintsTotal         *prometheus.CounterVec
	VerificationsTotal *prometheus.CounterVec
	RegistryCallsTotal *prometheus.CounterVec
	NotificationsTotal *prometheus.CounterVec
}

// New creates the metric set under the given namespace.
func New(namespace string) *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		MintsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mints_total",
			Help:      "Mint outcomes by delivery status.",
		}, []string{"status"}),
		VerificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Verification outcomes.",
		}, []string{"outcome"}),
		RegistryCallsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registry_calls_total",
			Help:      "Certificate registry operations by result.",
		}, []string{"operation", "result"}),
		NotificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Mint notification emails by result.",
		}, []string{"result"}),
	}
}

// Handler returns the scrape handler for this metric set.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server serves the scrape endpoint on its own listener so metrics stay up
// while the API listener drains.
type Server struct {
	srv *http.Server
}

// NewServer creates a metrics listener on addr.
func NewServer(addr string, m *Metrics) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// ListenAndServe blocks serving scrapes until Shutdown.
func (s *Server) ListenAndServe() error {
	return s.srv.ListenAndServe()
}

// Shutdown gracefully stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
