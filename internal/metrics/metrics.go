package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module provides fleet metrics registered on the default Prometheus registry.
var Module = fx.Provide(func() (*Metrics, error) {
	return New(prometheus.DefaultRegisterer)
})

// Metrics holds the domain and HTTP collectors. A nil *Metrics is a no-op.
type Metrics struct {
	orderTransitions    *prometheus.CounterVec
	runsheetAccepts     prometheus.Counter
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		orderTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fleet_order_transitions_total",
				Help: "Order status transitions applied, by resulting status.",
			},
			[]string{"status"},
		),
		runsheetAccepts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fleet_runsheet_accepts_total",
			Help: "Runsheets accepted by riders.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}

	var err error
	if m.orderTransitions, err = register(reg, m.orderTransitions); err != nil {
		return nil, err
	}
	if m.runsheetAccepts, err = register(reg, m.runsheetAccepts); err != nil {
		return nil, err
	}
	if m.httpRequestsTotal, err = register(reg, m.httpRequestsTotal); err != nil {
		return nil, err
	}
	if m.httpRequestDuration, err = register(reg, m.httpRequestDuration); err != nil {
		return nil, err
	}
	return m, nil
}

// register returns the already-registered collector when one with the same
// descriptor exists, so building the app twice in a process is safe.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// OrderTransition counts an order reaching status.
func (m *Metrics) OrderTransition(status string) {
	if m == nil {
		return
	}
	m.orderTransitions.WithLabelValues(status).Inc()
}

// RunsheetAccepted counts an accepted runsheet.
func (m *Metrics) RunsheetAccepted() {
	if m == nil {
		return
	}
	m.runsheetAccepts.Inc()
}

// ObserveHTTP records one served request.
func (m *Metrics) ObserveHTTP(method, path, status string, took time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, status).Observe(took.Seconds())
}
