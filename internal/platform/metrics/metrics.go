package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the playback gateway.
type Metrics struct {
	registry            *prometheus.Registry
	requestsTotal       prometheus.Counter
	snapshotsTotal      prometheus.Counter
	commandsPostedTotal prometheus.Counter
	opTimeoutsTotal     prometheus.Counter
	sessionsCreated     prometheus.Counter
	activeSessions      prometheus.Gauge
	errorsTotal         prometheus.Counter
}

// New creates and registers Prometheus metrics for the gateway.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytbridge_requests_total",
		Help: "Total number of HTTP requests received",
	})
	snapshotsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytbridge_snapshots_total",
		Help: "Total number of widget status snapshots ingested",
	})
	commandsPostedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytbridge_commands_posted_total",
		Help: "Total number of outbound widget commands drained",
	})
	opTimeoutsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytbridge_op_timeouts_total",
		Help: "Total number of play/pause intents that timed out",
	})
	sessionsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytbridge_sessions_created_total",
		Help: "Total number of playback sessions created",
	})
	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ytbridge_active_sessions",
		Help: "Number of live playback sessions",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ytbridge_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})

	registry.MustRegister(
		requestsTotal,
		snapshotsTotal,
		commandsPostedTotal,
		opTimeoutsTotal,
		sessionsCreated,
		activeSessions,
		errorsTotal,
	)

	return &Metrics{
		registry:            registry,
		requestsTotal:       requestsTotal,
		snapshotsTotal:      snapshotsTotal,
		commandsPostedTotal: commandsPostedTotal,
		opTimeoutsTotal:     opTimeoutsTotal,
		sessionsCreated:     sessionsCreated,
		activeSessions:      activeSessions,
		errorsTotal:         errorsTotal,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncSnapshots increments the ingested snapshot counter.
func (m *Metrics) IncSnapshots() {
	m.snapshotsTotal.Inc()
}

// AddCommandsPosted adds n drained commands to the counter.
func (m *Metrics) AddCommandsPosted(n int) {
	m.commandsPostedTotal.Add(float64(n))
}

// IncOpTimeouts increments the play/pause timeout counter.
func (m *Metrics) IncOpTimeouts() {
	m.opTimeoutsTotal.Inc()
}

// IncSessionsCreated increments the session creation counter.
func (m *Metrics) IncSessionsCreated() {
	m.sessionsCreated.Inc()
}

// SetActiveSessions sets the live session gauge.
func (m *Metrics) SetActiveSessions(n int) {
	m.activeSessions.Set(float64(n))
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values (e.g. active sessions).
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
