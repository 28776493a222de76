// Package metrics exposes the console API's Prometheus collectors.
package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "yuime"

// Metrics holds the collectors on a private registry so tests can build as
// many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	InvitationResults *prometheus.CounterVec
	DispatchDuration  prometheus.Histogram
	FilterCommits     *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		InvitationResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "invitations",
			Name:      "results_total",
			Help:      "Invitation recipients processed, by outcome.",
		}, []string{"status"}),
		DispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "invitations",
			Name:      "dispatch_seconds",
			Help:      "Wall time of one bulk invitation dispatch.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		}),
		FilterCommits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "filter",
			Name:      "search_commits_total",
			Help:      "Debounced search terms committed, by list.",
		}, []string{"scope"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		m.InvitationResults,
		m.DispatchDuration,
		m.FilterCommits,
	)
	return m
}

func (m *Metrics) ObserveInvitation(status string) {
	m.InvitationResults.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveDispatch(d time.Duration) {
	m.DispatchDuration.Observe(d.Seconds())
}

func (m *Metrics) ObserveCommit(scope string) {
	m.FilterCommits.WithLabelValues(scope).Inc()
}

// TrackSessions exports the live filter session count of one list, read on scrape.
func (m *Metrics) TrackSessions(scope string, count func() int) {
	m.Registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace:   namespace,
		Subsystem:   "filter",
		Name:        "sessions",
		Help:        "Live filter sessions held in memory, by list.",
		ConstLabels: prometheus.Labels{"scope": scope},
	}, func() float64 { return float64(count()) }))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry}))
}
