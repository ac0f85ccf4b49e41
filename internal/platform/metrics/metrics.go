package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides observability for the enrollment API.
// Tracks HTTP traffic by route pattern plus student lifecycle counters.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	StudentsCreated  prometheus.Counter
	StudentsDeleted  prometheus.Counter
	CPFRejected      prometheus.Counter
	IdempotentReplay prometheus.Counter
}

// New creates a Metrics instance registered on its own registry, so tests can build
// as many as they like.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "enrollment_http_requests_total",
			Help: "Total HTTP requests by method, route pattern and status code",
		}, []string{"method", "route", "code"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "enrollment_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"method", "route"}),
		StudentsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "enrollment_students_created_total",
			Help: "Total number of students created",
		}),
		StudentsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "enrollment_students_deleted_total",
			Help: "Total number of students deleted",
		}),
		CPFRejected: f.NewCounter(prometheus.CounterOpts{
			Name: "enrollment_cpf_rejected_total",
			Help: "Create requests rejected because the CPF failed validation",
		}),
		IdempotentReplay: f.NewCounter(prometheus.CounterOpts{
			Name: "enrollment_idempotent_replays_total",
			Help: "Create requests answered from a stored idempotent response",
		}),
	}
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one finished HTTP request.
// Call with time.Now() taken at the start of the request.
func (m *Metrics) ObserveRequest(method, route string, status int, start time.Time) {
	m.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
}

// The following helpers are nil-safe so services can run without metrics.

func (m *Metrics) IncStudentCreated() {
	if m != nil {
		m.StudentsCreated.Inc()
	}
}

func (m *Metrics) IncStudentDeleted() {
	if m != nil {
		m.StudentsDeleted.Inc()
	}
}

func (m *Metrics) IncCPFRejected() {
	if m != nil {
		m.CPFRejected.Inc()
	}
}

func (m *Metrics) IncIdempotentReplay() {
	if m != nil {
		m.IdempotentReplay.Inc()
	}
}
