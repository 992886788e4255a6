package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's Prometheus instruments. A nil *Metrics is valid
// and disables recording, which keeps tests free of registry setup.
type Metrics struct {
	RunsTotal                *prometheus.CounterVec
	RunDurationSeconds       prometheus.Histogram
	EventsDispatchedTotal    *prometheus.CounterVec
	DuplicateAdmissionsTotal prometheus.Counter
	CardFailuresTotal        prometheus.Counter
	LedgerPrunedTotal        prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fintrack_notifier_runs_total",
			Help: "Total engine runs, labeled by result",
		}, []string{"result"}),
		RunDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fintrack_notifier_run_duration_seconds",
			Help:    "Duration of engine runs",
			Buckets: prometheus.DefBuckets,
		}),
		EventsDispatchedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fintrack_notifier_events_dispatched_total",
			Help: "Total deadline events dispatched, labeled by kind",
		}, []string{"kind"}),
		DuplicateAdmissionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_notifier_duplicate_admissions_total",
			Help: "Candidate events rejected because their ledger key already exists",
		}),
		CardFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_notifier_card_failures_total",
			Help: "Cards whose evaluation or dispatch failed within a run",
		}),
		LedgerPrunedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fintrack_notifier_ledger_pruned_total",
			Help: "Dispatch-ledger entries removed by retention pruning",
		}),
	}
}

func (m *Metrics) ObserveRun(result string, seconds float64) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(result).Inc()
	m.RunDurationSeconds.Observe(seconds)
}

func (m *Metrics) IncDispatched(kind string) {
	if m == nil {
		return
	}
	m.EventsDispatchedTotal.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncDuplicate() {
	if m == nil {
		return
	}
	m.DuplicateAdmissionsTotal.Inc()
}

func (m *Metrics) IncCardFailure() {
	if m == nil {
		return
	}
	m.CardFailuresTotal.Inc()
}

func (m *Metrics) AddPruned(n int64) {
	if m == nil {
		return
	}
	m.LedgerPrunedTotal.Add(float64(n))
}
