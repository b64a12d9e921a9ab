package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "inferd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Diagnostics requests served, by route and response code",
		},
		[]string{"path", "method", "code"},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "inferd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Diagnostics request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"path", "method", "code"},
	)

	inflightRequests = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "inferd",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Diagnostics requests currently being served",
		},
		[]string{"path"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal, requestDuration, inflightRequests)
}

// codeRecorder wraps http.ResponseWriter to capture the response code.
type codeRecorder struct {
	http.ResponseWriter
	code int
}

func (cr *codeRecorder) WriteHeader(code int) {
	cr.code = code
	cr.ResponseWriter.WriteHeader(code)
}

// MetricsMiddleware instruments requests for Prometheus.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inflightRequests.WithLabelValues(r.URL.Path).Inc()
		defer inflightRequests.WithLabelValues(r.URL.Path).Dec()

		rec := &codeRecorder{ResponseWriter: w, code: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		// The route pattern is only resolved once routing has run, so the
		// counters are labeled after the handler returns.
		path := routePatternOrPath(r)
		code := strconv.Itoa(rec.code)
		requestsTotal.WithLabelValues(path, r.Method, code).Inc()
		requestDuration.WithLabelValues(path, r.Method, code).Observe(time.Since(start).Seconds())
	})
}

// routePatternOrPath prefers the chi route pattern over the raw URL path
// to keep label cardinality bounded.
func routePatternOrPath(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
