package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	resourceUsagePercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "inferd",
			Subsystem: "resources",
			Name:      "usage_percent",
			Help:      "Latest sampled usage per resource",
		},
		[]string{"resource"},
	)

	resourceTier = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "inferd",
			Subsystem: "resources",
			Name:      "pressure_tier",
			Help:      "Pressure tier per resource (0=normal 1=warning 2=critical 3=exhausted)",
		},
		[]string{"resource"},
	)

	alertsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "resources",
			Name:      "alerts_total",
			Help:      "Alert dispatches by resource and tier",
		},
		[]string{"resource", "tier"},
	)
)

func init() {
	prometheus.MustRegister(resourceUsagePercent, resourceTier, alertsTotal)
}
