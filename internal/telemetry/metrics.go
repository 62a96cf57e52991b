package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics — Prometheus-метрики оркестрационного ядра.
type Metrics struct {
	// taskInvocations — количество вызовов задач по задаче и статусу.
	taskInvocations *prometheus.CounterVec

	// taskDuration — продолжительность вызовов задач.
	taskDuration *prometheus.HistogramVec

	// trackRuns — количество track-запусков по имени и статусу.
	trackRuns *prometheus.CounterVec

	// orchestratorRuns — количество orchestrator-запусков по имени и статусу.
	orchestratorRuns *prometheus.CounterVec
}

// NewMetrics создаёт и регистрирует метрики.
//
// reg — nil допустим: тогда используется prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		taskInvocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sequence",
			Name:      "task_invocations_total",
			Help:      "Количество вызовов задач.",
		}, []string{"task", "status"}),

		taskDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sequence",
			Name:      "task_duration_seconds",
			Help:      "Продолжительность вызовов задач.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}, []string{"task"}),

		trackRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sequence",
			Name:      "track_runs_total",
			Help:      "Количество track-запусков.",
		}, []string{"track", "status"}),

		orchestratorRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sequence",
			Name:      "orchestrator_runs_total",
			Help:      "Количество orchestrator-запусков.",
		}, []string{"orchestrator", "status"}),
	}
}

// ObserveTask фиксирует один вызов задачи.
func (m *Metrics) ObserveTask(taskID, status string, duration time.Duration) {
	m.taskInvocations.WithLabelValues(taskID, status).Inc()
	m.taskDuration.WithLabelValues(taskID).Observe(duration.Seconds())
}

// ObserveTrackRun фиксирует один track-запуск.
func (m *Metrics) ObserveTrackRun(track, status string) {
	m.trackRuns.WithLabelValues(track, status).Inc()
}

// ObserveOrchestratorRun фиксирует один orchestrator-запуск.
func (m *Metrics) ObserveOrchestratorRun(orchestrator, status string) {
	m.orchestratorRuns.WithLabelValues(orchestrator, status).Inc()
}
