package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fallback kinds.
const (
	FallbackFlatBelt       = "flat_belt"
	FallbackDegenerateArea = "degenerate_area"
	FallbackDefaultAngle   = "default_angle"
)

var (
	calculationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beltcalc_calculations_total",
			Help: "Total number of engine calculations by operation.",
		},
		[]string{"op"},
	)

	fallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beltcalc_fallbacks_total",
			Help: "Total number of calculations that took a documented fallback path.",
		},
		[]string{"kind"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "beltcalc_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "beltcalc_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)
)

func init() {
	prometheus.MustRegister(calculationsTotal)
	prometheus.MustRegister(fallbacksTotal)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCalculation counts one engine operation.
func ObserveCalculation(op string) {
	calculationsTotal.WithLabelValues(op).Inc()
}

// ObserveFallback counts one fallback of the given kind.
func ObserveFallback(kind string) {
	fallbacksTotal.WithLabelValues(kind).Inc()
}

// Middleware records request count and duration for each request.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := normalizeRoute(c.FullPath())
		code := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(path, c.Request.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(path, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

// normalizeRoute keeps label cardinality bounded: unmatched requests have
// no route template and collapse to "other".
func normalizeRoute(fullPath string) string {
	if fullPath == "" {
		return "other"
	}
	return fullPath
}
