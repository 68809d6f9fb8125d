package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds all Prometheus metric collectors for the roombook server.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics.
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Booking metrics.
	ReservationsCreatedTotal    prometheus.Counter
	ReservationConflictsTotal   prometheus.Counter
	ReservationsDeletedTotal    prometheus.Counter

	// Auth metrics.
	AuthFailuresTotal  *prometheus.CounterVec
	AuthSuccessesTotal prometheus.Counter

	// Rate limiting.
	RateLimitRejectionsTotal prometheus.Counter

	// Server lifecycle.
	ServerStartTime prometheus.Gauge
}

// New creates and registers all Prometheus metrics on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,

		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roombook_http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path_pattern", "status_code"}),

		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "roombook_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path_pattern"}),

		ReservationsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roombook_reservations_created_total",
			Help: "Total number of reservations created.",
		}),

		ReservationConflictsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roombook_reservation_conflicts_total",
			Help: "Total number of bookings rejected because the slot was taken.",
		}),

		ReservationsDeletedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roombook_reservations_deleted_total",
			Help: "Total number of reservations deleted.",
		}),

		AuthFailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "roombook_auth_failures_total",
			Help: "Total number of authentication failures.",
		}, []string{"reason"}),

		AuthSuccessesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roombook_auth_successes_total",
			Help: "Total number of successful logins.",
		}),

		RateLimitRejectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "roombook_ratelimit_rejections_total",
			Help: "Total number of rate limit rejections.",
		}),

		ServerStartTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "roombook_server_start_time_seconds",
			Help: "Unix timestamp when the server started.",
		}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.ReservationsCreatedTotal,
		m.ReservationConflictsTotal,
		m.ReservationsDeletedTotal,
		m.AuthFailuresTotal,
		m.AuthSuccessesTotal,
		m.RateLimitRejectionsTotal,
		m.ServerStartTime,
	)

	m.ServerStartTime.Set(float64(time.Now().Unix()))

	// Register Go runtime and process collectors.
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return m
}

// Registry returns the private Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RegisterDBPoolCollector registers a custom DB pool stats collector.
func (m *Metrics) RegisterDBPoolCollector(statFunc DBPoolStatFunc) {
	m.registry.MustRegister(NewDBPoolCollector(statFunc))
}

// IncAuthFailure increments the auth failure counter for the given reason.
func (m *Metrics) IncAuthFailure(reason string) {
	m.AuthFailuresTotal.WithLabelValues(reason).Inc()
}

// IncAuthSuccess increments the successful login counter.
func (m *Metrics) IncAuthSuccess() {
	m.AuthSuccessesTotal.Inc()
}

// IncRateLimitRejection increments the rate limit rejection counter.
func (m *Metrics) IncRateLimitRejection() {
	m.RateLimitRejectionsTotal.Inc()
}

// IncReservationCreated increments the created reservation counter.
func (m *Metrics) IncReservationCreated() {
	m.ReservationsCreatedTotal.Inc()
}

// IncReservationConflict increments the conflict rejection counter.
func (m *Metrics) IncReservationConflict() {
	m.ReservationConflictsTotal.Inc()
}

// IncReservationDeleted increments the deleted reservation counter.
func (m *Metrics) IncReservationDeleted() {
	m.ReservationsDeletedTotal.Inc()
}
