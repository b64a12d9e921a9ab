package pool

import "github.com/prometheus/client_golang/prometheus"

var (
	loadedModels = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "inferd",
			Subsystem: "pool",
			Name:      "loaded_models",
			Help:      "Number of models currently loaded",
		},
	)

	loadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "pool",
			Name:      "loads_total",
			Help:      "Model load attempts by outcome",
		},
		[]string{"outcome"},
	)

	generationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "pool",
			Name:      "generations_total",
			Help:      "Generations by model and outcome",
		},
		[]string{"model", "outcome"},
	)

	generationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inferd",
			Subsystem: "pool",
			Name:      "generation_seconds",
			Help:      "Wall-clock generation latency",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"model"},
	)

	tokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "pool",
			Name:      "tokens_generated_total",
			Help:      "Completion tokens generated per model",
		},
		[]string{"model"},
	)

	busyTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "pool",
			Name:      "busy_rejections_total",
			Help:      "Admissions rejected for backpressure, by stage",
		},
		[]string{"model", "stage"},
	)
)

func init() {
	prometheus.MustRegister(loadedModels, loadsTotal, generationsTotal,
		generationSeconds, tokensTotal, busyTotal)
}
