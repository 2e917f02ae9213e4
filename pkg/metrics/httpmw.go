package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var HistogramBuckets = []float64{
	// --- Fast responses (0 - 500ms) ---
	25, 50, 75, 100, 150, 200, 300, 400, 500,

	// --- Medium responses (500ms - 2s) ---
	750, 1000, 1250, 1500, 1750, 2000,

	// --- Slow responses (2s - 15s) ---
	2500, 3000, 4000, 5000, 7500, 10000, 15000,

	// --- Long polls and provider waits (15s+) ---
	20000, 30000, 45000, 60000, 90000, 120000,
}

type httpCollectors struct {
	reqCount    *prometheus.CounterVec
	reqDuration *prometheus.HistogramVec
}

// GinMiddleware instruments request count and duration per route. Routes are
// labeled by gin's template path so path parameters do not explode the label
// cardinality.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	c := &httpCollectors{
		reqCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Subsystem: subsystem,
			Name:      "http_requests_total",
			Help:      "HTTP requests handled, by status code, method and route.",
		}, []string{"code", "method", "route"}),
		reqDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Subsystem: subsystem,
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   HistogramBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(c.reqCount, c.reqDuration)

	return func(gc *gin.Context) {
		start := time.Now()
		gc.Next()

		route := gc.FullPath()
		if route == "" {
			route = "unmatched"
		}
		code := strconv.Itoa(gc.Writer.Status())
		c.reqCount.WithLabelValues(code, gc.Request.Method, route).Inc()
		c.reqDuration.WithLabelValues(gc.Request.Method, route).
			Observe(float64(time.Since(start).Milliseconds()))
	}
}
