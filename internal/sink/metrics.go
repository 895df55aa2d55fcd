package sink

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	deliverTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "koney_sink_deliveries_total",
			Help: "Alert delivery attempts by sink and outcome.",
		},
		[]string{"sink", "outcome"},
	)
	deliverDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "koney_sink_delivery_duration_seconds",
			Help:    "Duration of sink delivery HTTP requests.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"status"},
	)
)
