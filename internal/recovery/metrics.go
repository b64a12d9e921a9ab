package recovery

import "github.com/prometheus/client_golang/prometheus"

var attemptsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "inferd",
		Subsystem: "recovery",
		Name:      "attempts_total",
		Help:      "Mitigation attempts by resource and outcome",
	},
	[]string{"resource", "outcome"},
)

func init() {
	prometheus.MustRegister(attemptsTotal)
}
