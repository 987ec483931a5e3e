package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sojus/helpdesk/internal/events"
)

// Metrics holds the Prometheus collectors exported by the service.
type Metrics struct {
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	errors          *prometheus.CounterVec
	lifecycle       *prometheus.CounterVec
	rejections      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "HTTP requests that ended in an error response, by error code",
		}, []string{"method", "route", "code"}),
		lifecycle: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_ticket_events_total",
			Help: "Committed ticket lifecycle events",
		}, []string{"event", "status"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_ticket_rejections_total",
			Help: "Ticket commands rejected by lifecycle rules",
		}, []string{"operation", "code"}),
	}
	reg.MustRegister(m.requests, m.requestDuration, m.errors, m.lifecycle, m.rejections)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(method, route, code).Inc()
}

// RecordRejection counts a command refused with the given error code.
func (m *Metrics) RecordRejection(operation, code string) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(operation, code).Inc()
}

// RegisterLifecycleHandlers subscribes lifecycle counters to ticket events.
func (m *Metrics) RegisterLifecycleHandlers(dispatcher events.Dispatcher) {
	if m == nil || dispatcher == nil {
		return
	}
	handler := func(_ context.Context, event events.Event) error {
		m.lifecycle.WithLabelValues(string(event.Type), string(event.Status)).Inc()
		return nil
	}
	dispatcher.Subscribe(events.EventTicketCreated, handler)
	dispatcher.Subscribe(events.EventTicketStatusChanged, handler)
	dispatcher.Subscribe(events.EventTicketRetired, handler)
}
