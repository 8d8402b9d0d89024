package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Business metrics
	EmailsSent         *prometheus.CounterVec
	EmailsFailed       *prometheus.CounterVec
	CampaignsCompleted prometheus.Counter
	LeadsEnriched      *prometheus.CounterVec
	ExportsCreated     prometheus.Counter
	LoginAttempts      *prometheus.CounterVec

	// Generation metrics
	GenerationDuration *prometheus.HistogramVec

	// Cache metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	m := &Metrics{
		// HTTP metrics
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 5000, 10000, 50000, 100000, 500000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Business metrics
		EmailsSent: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emails_sent_total",
				Help: "Total number of outreach emails delivered",
			},
			[]string{"provider", "intent"}, // sendgrid/smtp/console, pitch/follow_up/campaign
		),
		EmailsFailed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "emails_failed_total",
				Help: "Total number of outreach emails that failed to deliver",
			},
			[]string{"intent"},
		),
		CampaignsCompleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "campaigns_completed_total",
			Help: "Total number of campaigns that reached completed status",
		}),
		LeadsEnriched: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leads_enriched_total",
				Help: "Total number of lead enrichment runs",
			},
			[]string{"status"}, // success, failed
		),
		ExportsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "exports_created_total",
			Help: "Total number of lead exports generated",
		}),
		LoginAttempts: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "login_attempts_total",
				Help: "Total number of login attempts",
			},
			[]string{"status"}, // success, failed
		),

		// Generation metrics
		GenerationDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "generation_duration_seconds",
				Help:    "LLM generation duration in seconds",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"kind"}, // email, facts
		),

		// Cache metrics
		CacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of cache hits",
			},
			[]string{"cache_type"},
		),
		CacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of cache misses",
			},
			[]string{"cache_type"},
		),
	}

	return m
}

// Middleware creates an Echo middleware for Prometheus metrics
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			path := c.Path() // Use route pattern, not actual path (e.g., /api/v1/leads/:id)

			if req.ContentLength > 0 {
				m.HTTPRequestSize.WithLabelValues(req.Method, path).Observe(float64(req.ContentLength))
			}

			err := next(c)

			status := c.Response().Status
			duration := time.Since(start).Seconds()

			m.HTTPRequestsTotal.WithLabelValues(req.Method, path, strconv.Itoa(status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(req.Method, path, strconv.Itoa(status)).Observe(duration)
			m.HTTPResponseSize.WithLabelValues(req.Method, path).Observe(float64(c.Response().Size))

			return err
		}
	}
}

// RecordEmailSent increments the delivered email counter
func (m *Metrics) RecordEmailSent(provider, intent string) {
	m.EmailsSent.WithLabelValues(provider, intent).Inc()
}

// RecordEmailFailed increments the failed email counter
func (m *Metrics) RecordEmailFailed(intent string) {
	m.EmailsFailed.WithLabelValues(intent).Inc()
}

// RecordCampaignCompleted increments the completed campaign counter
func (m *Metrics) RecordCampaignCompleted() {
	m.CampaignsCompleted.Inc()
}

// RecordLeadEnriched increments the enrichment counter
func (m *Metrics) RecordLeadEnriched(success bool) {
	status := "failed"
	if success {
		status = "success"
	}
	m.LeadsEnriched.WithLabelValues(status).Inc()
}

// RecordExportCreated increments exports created counter
func (m *Metrics) RecordExportCreated() {
	m.ExportsCreated.Inc()
}

// RecordLoginAttempt increments login attempts counter
func (m *Metrics) RecordLoginAttempt(success bool) {
	status := "failed"
	if success {
		status = "success"
	}
	m.LoginAttempts.WithLabelValues(status).Inc()
}

// RecordGeneration records LLM generation duration
func (m *Metrics) RecordGeneration(kind string, duration time.Duration) {
	m.GenerationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordCacheHit increments cache hits counter
func (m *Metrics) RecordCacheHit(cacheType string) {
	m.CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss increments cache misses counter
func (m *Metrics) RecordCacheMiss(cacheType string) {
	m.CacheMisses.WithLabelValues(cacheType).Inc()
}
