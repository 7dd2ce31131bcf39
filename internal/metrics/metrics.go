// Package metrics provides Prometheus metrics for the dashboard API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Registry is the Prometheus registry for this metrics instance
	Registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Dashboard intents
	LoginsTotal        *prometheus.CounterVec
	LogoutsTotal       prometheus.Counter
	AvailabilityTotal  *prometheus.CounterVec
	PickupsTotal       *prometheus.CounterVec
	AnnouncementsTotal *prometheus.CounterVec
}

// New creates and registers all application metrics with a new registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusride_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campusride_http_request_duration_seconds",
				Help:    "HTTP request latency distribution",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusride_logins_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		LogoutsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "campusride_logouts_total",
			Help: "Completed logouts",
		}),
		AvailabilityTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusride_availability_changes_total",
				Help: "Student availability changes by action",
			},
			[]string{"action"},
		),
		PickupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusride_pickups_total",
				Help: "Driver pickup marks by value",
			},
			[]string{"picked_up"},
		),
		AnnouncementsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campusride_announcements_total",
				Help: "Announcement sends by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.LoginsTotal,
		m.LogoutsTotal,
		m.AvailabilityTotal,
		m.PickupsTotal,
		m.AnnouncementsTotal,
	)
	return m
}

// GinMiddleware records request counts and latency. The route pattern is used
// as the path label to bound cardinality.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
