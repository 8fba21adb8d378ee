package report

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reportsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finreports_reports_generated_total",
			Help: "Total number of reports generated",
		},
		[]string{"kind", "outcome"},
	)

	reportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finreports_report_duration_seconds",
			Help:    "Duration of report generation",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2},
		},
		[]string{"kind"},
	)

	reportCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finreports_report_cache_total",
			Help: "Report cache lookups by result",
		},
		[]string{"result"},
	)
)
