// Package middleware provides the echo middleware stack: CORS and request
// instrumentation (prometheus counters/histograms). Adapted from
// middleware.go, with its OpenTelemetry tracing and flight recorder
// dropped. This service carries structured logging as its observability
// surface rather than a tracing backend, and the flight recorder has no
// equivalent requirement in this domain.
package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/voinetwork/swaprouter/domain"
	"github.com/voinetwork/swaprouter/log"
)

// GoMiddleware holds the middleware stack's dependencies.
type GoMiddleware struct {
	corsConfig domain.CORSConfig
	logger     log.Logger
}

var (
	requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swaprouter_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "endpoint"},
	)

	requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "swaprouter_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

func init() {
	prometheus.MustRegister(requestsTotal)
	prometheus.MustRegister(requestLatency)
}

// InitMiddleware builds a GoMiddleware.
func InitMiddleware(corsConfig domain.CORSConfig, logger log.Logger) *GoMiddleware {
	return &GoMiddleware{corsConfig: corsConfig, logger: logger}
}

// CORS sets the configured CORS headers on every response.
func (m *GoMiddleware) CORS(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("Access-Control-Allow-Origin", m.corsConfig.AllowedOrigin)
		c.Response().Header().Set("Access-Control-Allow-Headers", m.corsConfig.AllowedHeaders)
		c.Response().Header().Set("Access-Control-Allow-Methods", m.corsConfig.AllowedMethods)
		return next(c)
	}
}

// InstrumentMiddleware counts requests and observes their latency, labeled
// by method and matched route (not the raw path, to keep label cardinality
// bounded).
func (m *GoMiddleware) InstrumentMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)

		endpoint := c.Path()
		method := c.Request().Method
		requestsTotal.WithLabelValues(method, endpoint).Inc()
		requestLatency.WithLabelValues(method, endpoint).Observe(time.Since(start).Seconds())

		return err
	}
}
