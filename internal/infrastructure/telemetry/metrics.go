package telemetry

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erp/invoicelock/internal/application/customerlock"
	domain "github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/infrastructure/cache"
)

const namespace = "invoicelock"

// Metrics holds the Prometheus collectors of the service. It implements
// customerlock.Recorder.
type Metrics struct {
	registry *prometheus.Registry

	checks         *prometheus.CounterVec
	failOpen       *prometheus.CounterVec
	staleResponses *prometheus.CounterVec
	saveBlocked    *prometheus.CounterVec

	scanRuns     prometheus.Counter
	scanDuration prometheus.Histogram
	scanResults  *prometheus.CounterVec
	lastScan     prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a private registry, together with
// the Go runtime and process collectors
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "checks_total",
			Help: "Customer lock checks by document type and resulting severity.",
		}, []string{"doctype", "severity"}),
		failOpen: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "fail_open_total",
			Help: "Checks treated as unlocked because the status query failed.",
		}, []string{"doctype"}),
		staleResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "stale_responses_total",
			Help: "Status responses discarded because a newer query was issued.",
		}, []string{"doctype"}),
		saveBlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "save_blocked_total",
			Help: "Document saves refused because the customer is locked.",
		}, []string{"doctype"}),
		scanRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "scan", Name: "runs_total",
			Help: "Completed overdue scans.",
		}),
		scanDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "scan", Name: "duration_seconds",
			Help:    "Duration of overdue scans.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300},
		}),
		scanResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "scan", Name: "customers_total",
			Help: "Customers handled by overdue scans by outcome.",
		}, []string{"outcome"}),
		lastScan: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "scan", Name: "last_run_timestamp_seconds",
			Help: "Unix time of the last completed overdue scan.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http", Name: "requests_total",
			Help: "HTTP requests by route, method and status code.",
		}, []string{"route", "method", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.checks, m.failOpen, m.staleResponses, m.saveBlocked,
		m.scanRuns, m.scanDuration, m.scanResults, m.lastScan,
		m.httpRequests, m.httpDuration,
	)
	return m
}

// Registry returns the registry the collectors are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// StatusCacheStats is implemented by the status caches
type StatusCacheStats interface {
	Stats() cache.Stats
}

// RegisterStatusCache exposes the lookup counters and local size of c.
// The values are read from c at scrape time.
func (m *Metrics) RegisterStatusCache(c StatusCacheStats) error {
	lookups := func(result string, value func(cache.Stats) int64) prometheus.Collector {
		return prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "status_cache", Name: "lookups_total",
			Help:        "Status cache lookups by result.",
			ConstLabels: prometheus.Labels{"result": result},
		}, func() float64 { return float64(value(c.Stats())) })
	}

	cs := []prometheus.Collector{
		lookups("l1_hit", func(s cache.Stats) int64 { return s.L1Hits }),
		lookups("l2_hit", func(s cache.Stats) int64 { return s.L2Hits }),
		lookups("miss", func(s cache.Stats) int64 { return s.Misses }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "status_cache", Name: "entries",
			Help: "Entries held in the local status cache.",
		}, func() float64 { return float64(c.Stats().L1Entries) }),
	}
	for _, col := range cs {
		if err := m.registry.Register(col); err != nil {
			return fmt.Errorf("failed to register status cache metrics: %w", err)
		}
	}
	return nil
}

func (m *Metrics) ObserveCheck(doc domain.DocumentType, sev domain.Severity) {
	m.checks.WithLabelValues(string(doc), sev.String()).Inc()
}

func (m *Metrics) ObserveFailOpen(doc domain.DocumentType) {
	m.failOpen.WithLabelValues(string(doc)).Inc()
}

func (m *Metrics) ObserveStaleResponse(doc domain.DocumentType) {
	m.staleResponses.WithLabelValues(string(doc)).Inc()
}

func (m *Metrics) ObserveSaveBlocked(doc domain.DocumentType) {
	m.saveBlocked.WithLabelValues(string(doc)).Inc()
}

func (m *Metrics) ObserveScan(report customerlock.ScanReport, elapsed time.Duration) {
	m.scanRuns.Inc()
	m.scanDuration.Observe(elapsed.Seconds())
	m.lastScan.Set(float64(report.RunAt.Unix()))
	m.scanResults.WithLabelValues("locked").Add(float64(report.Locked))
	m.scanResults.WithLabelValues("escalated").Add(float64(report.Escalated))
	m.scanResults.WithLabelValues("notified").Add(float64(report.Notified))
	m.scanResults.WithLabelValues("skipped").Add(float64(report.Skipped))
}

// GinMiddleware records request counts and latency per route template
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}

var _ customerlock.Recorder = (*Metrics)(nil)
