package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	gateDecisionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gate_decisions_total",
		Help: "Authentication gate decisions by outcome.",
	}, []string{"decision"})

	loginAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "login_attempts_total",
		Help: "Login form submissions by result.",
	}, []string{"result"})
)

// PrometheusMiddleware records request count and latency.
// Unmatched routes (the proxied UI) share one route label to bound cardinality.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordGateDecision counts one gate outcome.
func RecordGateDecision(decision string) {
	gateDecisionsTotal.WithLabelValues(decision).Inc()
}

// RecordLoginAttempt counts one login submission; result is success, invalid_input,
// auth_failed or error.
func RecordLoginAttempt(result string) {
	loginAttemptsTotal.WithLabelValues(result).Inc()
}

// RegisterSessionGauge exposes the size of the session table.
// It must be called once per process.
func RegisterSessionGauge(size func() int) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "sessions_stored",
		Help: "Sessions currently held in memory, including expired entries not yet reclaimed.",
	}, func() float64 { return float64(size()) })
}
