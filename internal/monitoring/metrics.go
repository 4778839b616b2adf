package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Evaluation metrics
	evaluationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "volguard_evaluations_total",
			Help: "Total number of core evaluation calls",
		},
		[]string{"component", "outcome"},
	)

	ruleActivationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "volguard_rule_activations_total",
			Help: "Total number of rule activations by action",
		},
		[]string{"rule", "action"},
	)

	stopFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "volguard_stop_fallbacks_total",
			Help: "Stops placed by source, including the fallback chain",
		},
		[]string{"source"},
	)

	// Portfolio metrics
	aggregateRisk = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "volguard_aggregate_risk",
			Help: "Aggregate capital-at-risk across open positions",
		},
	)

	openPositions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "volguard_open_positions",
			Help: "Number of open positions under management",
		},
	)
)

func init() {
	prometheus.MustRegister(evaluationsTotal)
	prometheus.MustRegister(ruleActivationsTotal)
	prometheus.MustRegister(stopFallbacksTotal)
	prometheus.MustRegister(aggregateRisk)
	prometheus.MustRegister(openPositions)
}

// Handler returns the Prometheus metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordEvaluation records one core evaluation call and its outcome
// ("ok" or the error kind).
func RecordEvaluation(component, outcome string) {
	evaluationsTotal.WithLabelValues(component, outcome).Inc()
}

// RecordRuleActivation records a rule activation.
func RecordRuleActivation(rule, action string) {
	ruleActivationsTotal.WithLabelValues(rule, action).Inc()
}

// RecordStopSource records which source produced an accepted stop.
func RecordStopSource(source string) {
	stopFallbacksTotal.WithLabelValues(source).Inc()
}

// UpdatePortfolio updates the aggregate portfolio gauges.
func UpdatePortfolio(risk float64, positions int) {
	aggregateRisk.Set(risk)
	openPositions.Set(float64(positions))
}
