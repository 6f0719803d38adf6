// Package metrics exposes Prometheus instrumentation for the storage
// template and the alert pipeline.
package metrics

import (
	"context"
	"errors"
	"time"

	"fitosanitario/internal/alert"
	"fitosanitario/internal/dao"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fitosanitario"

// Outcome label values
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Storage implements dao.Observer
type Storage struct {
	statements *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	failures   *prometheus.CounterVec
}

var _ dao.Observer = (*Storage)(nil)

// NewStorage registers the storage collectors on reg
func NewStorage(reg prometheus.Registerer) (*Storage, error) {
	s := &Storage{
		statements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "statements_total",
			Help:      "Template calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "statement_duration_seconds",
			Help:      "Template call latency by operation",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "storage",
			Name:      "failures_total",
			Help:      "Failed template calls by operation and stage",
		}, []string{"operation", "stage"}),
	}
	for _, c := range []prometheus.Collector{s.statements, s.duration, s.failures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Storage) ObserveStatement(op string, elapsed time.Duration, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
		stage := "unknown"
		var se *dao.StorageError
		if errors.As(err, &se) {
			stage = se.Stage
		}
		s.failures.WithLabelValues(op, stage).Inc()
	}
	s.statements.WithLabelValues(op, outcome).Inc()
	s.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Alerts counts raised alerts; registered as an alert.Notifier
type Alerts struct {
	raised *prometheus.CounterVec
}

var _ alert.Notifier = (*Alerts)(nil)

func NewAlerts(reg prometheus.Registerer) (*Alerts, error) {
	a := &Alerts{
		raised: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "alerts",
			Name:      "raised_total",
			Help:      "Raised alerts by type and severity",
		}, []string{"type", "severity"}),
	}
	if err := reg.Register(a.raised); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Alerts) Name() string { return "metrics" }

func (a *Alerts) Notify(_ context.Context, ev alert.Event) error {
	a.raised.WithLabelValues(ev.Alert.Type, ev.Alert.Severity).Inc()
	return nil
}
