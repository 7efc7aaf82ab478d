// Package metrics exposes prometheus collectors for refreshes, read warnings and workflows.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vaultscope"

// Refresh outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeDegraded = "degraded"
	OutcomeStale    = "stale"
	OutcomeFailed   = "failed"
)

// Collectors are the vault client's prometheus collectors. A nil *Collectors records nothing.
type Collectors struct {
	refreshes       *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	readWarnings    *prometheus.CounterVec
	workflows       *prometheus.CounterVec
	workflowSteps   *prometheus.CounterVec
	connected       prometheus.Gauge
}

var (
	metricsOnce sync.Once
	registry    *Collectors
)

// Vault returns the lazily-initialised collectors registered on the default registry.
func Vault() *Collectors {
	metricsOnce.Do(func() {
		registry = &Collectors{
			refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "snapshot",
				Name:      "refreshes_total",
				Help:      "Snapshot refreshes segmented by outcome.",
			}, []string{"outcome"}),
			refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "snapshot",
				Name:      "refresh_duration_seconds",
				Help:      "Wall time of a full snapshot refresh.",
				Buckets:   prometheus.DefBuckets,
			}),
			readWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "snapshot",
				Name:      "read_warnings_total",
				Help:      "Secondary contract reads that failed after existence was confirmed.",
			}, []string{"call"}),
			workflows: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "workflow",
				Name:      "runs_total",
				Help:      "Write workflows segmented by kind and outcome.",
			}, []string{"kind", "outcome"}),
			workflowSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "workflow",
				Name:      "transactions_total",
				Help:      "Transactions sent by workflows segmented by method and status.",
			}, []string{"method", "status"}),
			connected: prometheus.NewGauge(prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "connected",
				Help:      "1 while a wallet account is connected.",
			}),
		}
		prometheus.MustRegister(
			registry.refreshes,
			registry.refreshDuration,
			registry.readWarnings,
			registry.workflows,
			registry.workflowSteps,
			registry.connected,
		)
	})
	return registry
}

// ObserveRefresh records one refresh outcome and its duration.
func (m *Collectors) ObserveRefresh(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(outcome).Inc()
	m.refreshDuration.Observe(elapsed.Seconds())
}

// ObserveReadWarning counts a degraded field.
func (m *Collectors) ObserveReadWarning(call string) {
	if m == nil {
		return
	}
	m.readWarnings.WithLabelValues(call).Inc()
}

// ObserveWorkflow records a finished workflow.
func (m *Collectors) ObserveWorkflow(kind, outcome string) {
	if m == nil {
		return
	}
	m.workflows.WithLabelValues(kind, outcome).Inc()
}

// ObserveTransaction records one sent transaction.
func (m *Collectors) ObserveTransaction(method string, ok bool) {
	if m == nil {
		return
	}
	status := "success"
	if !ok {
		status = "failure"
	}
	m.workflowSteps.WithLabelValues(method, status).Inc()
}

// SetConnected tracks the session state.
func (m *Collectors) SetConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.connected.Set(1)
		return
	}
	m.connected.Set(0)
}

// Handler serves the default registry.
func Handler() http.Handler {
	Vault()
	return promhttp.Handler()
}
