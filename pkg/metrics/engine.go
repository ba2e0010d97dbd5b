package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pkgerrors "github.com/usf-territorio/territorio-backend/pkg/errors"
)

const outcomeOK = "ok"

// EngineMetrics counts coverage engine operations by outcome and tracks their latency.
type EngineMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	coverage   *prometheus.GaugeVec
}

// NewEngineMetrics registers the engine metrics on the provided registerer.
func NewEngineMetrics(reg prometheus.Registerer) *EngineMetrics {
	if reg == nil {
		return &EngineMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "engine_operations_total",
		Help:      "Coverage engine operations by operation and outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "engine_operation_duration_seconds",
		Help:      "Duration of coverage engine operations in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
	coverage := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "team_mean_coverage_percent",
		Help:      "Mean condominium coverage percent per team, as of the last summary or reconcile.",
	}, []string{"team"})
	reg.MustRegister(operations, duration, coverage)
	return &EngineMetrics{
		operations: operations,
		duration:   duration,
		coverage:   coverage,
	}
}

// Observe records one finished operation; err decides the outcome label.
func (m *EngineMetrics) Observe(operation string, err error, elapsed time.Duration) {
	if m == nil || m.operations == nil {
		return
	}
	op := normalizeLabel(operation)
	m.operations.WithLabelValues(op, Outcome(err)).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// SetTeamCoverage publishes the mean coverage percent for a team.
func (m *EngineMetrics) SetTeamCoverage(teamID string, percent float64) {
	if m == nil || m.coverage == nil {
		return
	}
	m.coverage.WithLabelValues(normalizeLabel(teamID)).Set(percent)
}

// Outcome maps an error onto a low-cardinality label.
func Outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	if typed := pkgerrors.As(err); typed != nil {
		return strings.ToLower(string(typed.Code()))
	}
	return strings.ToLower(string(pkgerrors.CodeInternal))
}
