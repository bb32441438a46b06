// Package metrics exposes Prometheus instrumentation for the HTTP
// surface.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector tracks request counts and latency.
type Collector struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	latency  prometheus.Histogram
}

func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "astrochat_http_requests_total",
			Help: "HTTP requests by path and status code.",
		}, []string{"path", "status"}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "astrochat_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}

	registry.MustRegister(c.requests, c.latency)
	return c
}

// Middleware records one observation per request.
func (c *Collector) Middleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		ctx.Next()

		path := ctx.FullPath()
		if path == "" {
			path = "unmatched"
		}
		c.requests.WithLabelValues(path, strconv.Itoa(ctx.Writer.Status())).Inc()
		c.latency.Observe(time.Since(start).Seconds())
	}
}

// Handler serves the metrics endpoint.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
