package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trickplay",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method, path and status code.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "trickplay",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 30},
	}, []string{"method", "path"})

	ActiveGenerations = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "trickplay",
		Name:      "active_generations",
		Help:      "Number of tile generation jobs currently running.",
	})

	GenerationStartsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trickplay",
		Name:      "generation_starts_total",
		Help:      "Total number of tile generation jobs started.",
	})

	GenerationFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "trickplay",
		Name:      "generation_failures_total",
		Help:      "Total number of tile generation failures by stage.",
	}, []string{"stage"})

	GenerationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "trickplay",
		Name:      "generation_duration_seconds",
		Help:      "Duration of tile generation jobs in seconds.",
		Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
	})

	FramesExtractedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trickplay",
		Name:      "frames_extracted_total",
		Help:      "Total number of preview frames extracted by FFmpeg.",
	})

	SheetsWrittenTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trickplay",
		Name:      "sheets_written_total",
		Help:      "Total number of sprite sheets published.",
	})

	ScanRunsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "trickplay",
		Name:      "scan_runs_total",
		Help:      "Total number of library scan passes.",
	})
)

func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		ActiveGenerations,
		GenerationStartsTotal,
		GenerationFailuresTotal,
		GenerationDuration,
		FramesExtractedTotal,
		SheetsWrittenTotal,
		ScanRunsTotal,
	)
}
