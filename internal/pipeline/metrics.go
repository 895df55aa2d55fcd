package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	runsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "koney_pipeline_runs_total",
			Help: "Debounced pipeline executions.",
		},
	)
	alertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "koney_alerts_total",
			Help: "Produced alerts by outcome (forwarded or self_test).",
		},
		[]string{"outcome"},
	)
)
