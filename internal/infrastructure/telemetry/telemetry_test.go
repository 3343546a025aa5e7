package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/erp/invoicelock/internal/application/customerlock"
	domain "github.com/erp/invoicelock/internal/domain/customerlock"
	"github.com/erp/invoicelock/internal/infrastructure/cache"
	"github.com/erp/invoicelock/internal/infrastructure/config"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), config.TelemetryConfig{ServiceName: "invoicelock"}, "test", nil)
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestTracerProvider_ExportsSpans(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	exporter := tracetest.NewInMemoryExporter()
	tp, err := NewTracerProviderWithExporter(config.TelemetryConfig{
		Enabled:       true,
		ServiceName:   "invoicelock",
		SamplingRatio: 1,
	}, "test", exporter, nil)
	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())

	_, span := otel.Tracer("scan").Start(context.Background(), "overdue-scan")
	span.End()

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "overdue-scan", spans[0].Name)
	require.NoError(t, tp.Shutdown(context.Background()))
}

func TestTracerProvider_NeverSample(t *testing.T) {
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	exporter := tracetest.NewInMemoryExporter()
	tp, err := NewTracerProviderWithExporter(config.TelemetryConfig{ServiceName: "invoicelock"}, "test", exporter, nil)
	require.NoError(t, err)

	_, span := tp.Tracer("scan").Start(context.Background(), "dropped")
	span.End()

	assert.Empty(t, exporter.GetSpans())
	require.NoError(t, tp.Shutdown(context.Background()))
}

func TestMetrics_Recorder(t *testing.T) {
	m := NewMetrics()

	m.ObserveCheck(domain.DocumentSalesOrder, domain.SeverityHard)
	m.ObserveCheck(domain.DocumentSalesOrder, domain.SeverityHard)
	m.ObserveCheck(domain.DocumentQuotation, domain.SeverityNone)
	m.ObserveFailOpen(domain.DocumentQuotation)
	m.ObserveStaleResponse(domain.DocumentSalesOrder)
	m.ObserveSaveBlocked(domain.DocumentSalesOrder)
	m.ObserveScan(customerlock.ScanReport{
		RunAt:     time.Unix(1719705600, 0),
		Locked:    3,
		Escalated: 1,
		Notified:  2,
	}, 2*time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.checks.WithLabelValues("Sales Order", "hard")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.checks.WithLabelValues("Quotation", "none")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failOpen.WithLabelValues("Quotation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.staleResponses.WithLabelValues("Sales Order")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.saveBlocked.WithLabelValues("Sales Order")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scanRuns))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.scanResults.WithLabelValues("locked")))
	assert.Equal(t, 1719705600.0, testutil.ToFloat64(m.lastScan))
}

func TestMetrics_HandlerAndMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewMetrics()

	router := gin.New()
	router.Use(m.GinMiddleware())
	router.GET("/api/v1/customer-lock/status/:customer", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(m.Handler()))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/customer-lock/status/ACME-001", nil))
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, 1.0, testutil.ToFloat64(
		m.httpRequests.WithLabelValues("/api/v1/customer-lock/status/:customer", "GET", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("unmatched", "GET", "404")))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "invoicelock_http_requests_total"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}

func TestMetrics_Registry(t *testing.T) {
	m := NewMetrics()
	m.ObserveSaveBlocked(domain.DocumentQuotation)

	n, err := testutil.GatherAndCount(m.Registry(), "invoicelock_save_blocked_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_RegisterStatusCache(t *testing.T) {
	ctx := context.Background()
	l1 := cache.NewMemoryStatusCache(time.Minute)
	l2 := cache.NewMemoryStatusCache(time.Minute)
	c := cache.NewTieredStatusCache(l1, l2, nil)

	m := NewMetrics()
	require.NoError(t, m.RegisterStatusCache(c))

	require.NoError(t, l2.Set(ctx, "ACME-001", &customerlock.StatusResult{Customer: "ACME-001"}))
	_, _, _ = c.Get(ctx, "ACME-001") // L2 hit, promoted
	_, _, _ = c.Get(ctx, "ACME-001") // L1 hit
	_, _, _ = c.Get(ctx, "ACME-002") // miss

	expected := `
# HELP invoicelock_status_cache_entries Entries held in the local status cache.
# TYPE invoicelock_status_cache_entries gauge
invoicelock_status_cache_entries 1
# HELP invoicelock_status_cache_lookups_total Status cache lookups by result.
# TYPE invoicelock_status_cache_lookups_total counter
invoicelock_status_cache_lookups_total{result="l1_hit"} 1
invoicelock_status_cache_lookups_total{result="l2_hit"} 1
invoicelock_status_cache_lookups_total{result="miss"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected),
		"invoicelock_status_cache_entries", "invoicelock_status_cache_lookups_total"))

	assert.Error(t, m.RegisterStatusCache(c), "registering twice collides")
}
