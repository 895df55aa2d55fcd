package tetragon

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var linesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "koney_export_lines_total",
		Help: "Pre-filtered Tetragon export lines by processing outcome.",
	},
	[]string{"outcome"},
)
