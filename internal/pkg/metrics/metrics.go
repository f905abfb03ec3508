package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics (admin/export server)
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "railbot",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "railbot",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Bot metrics
	SubmissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "railbot",
		Subsystem: "bot",
		Name:      "submissions_total",
		Help:      "Total itinerary submissions by outcome",
	}, []string{"outcome"})

	CommandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "railbot",
		Subsystem: "bot",
		Name:      "commands_total",
		Help:      "Total bot commands processed",
	}, []string{"command", "outcome"})

	SubmissionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "railbot",
		Subsystem: "bot",
		Name:      "submission_duration_seconds",
		Help:      "End-to-end duration of one itinerary submission",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	// Journey provider metrics
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "railbot",
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Total journey provider requests",
	}, []string{"operation", "status"})

	ProviderRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "railbot",
		Subsystem: "provider",
		Name:      "request_duration_seconds",
		Help:      "Duration of journey provider requests",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"operation"})

	// Entity store metrics
	GetOrCreateConflicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "railbot",
		Subsystem: "store",
		Name:      "getorcreate_conflicts_total",
		Help:      "Total uniqueness conflicts taken on the get-or-create retry path",
	}, []string{"entity"})

	// Cache metrics
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "railbot",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "railbot",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics on the Fiber admin server.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
