package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Quote save outcomes.
const (
	SaveCreated = "created"
	SaveUpdated = "updated"
	SaveInvalid = "invalid"
	SaveFailed  = "failed"
)

// Metrics owns the quote builder's collectors. Each instance has its own
// registry so tests and multiple apps in one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPDuration    *prometheus.HistogramVec
	QuoteSaves      *prometheus.CounterVec
	ItemsPriced     prometheus.Counter
	QuoteExports    *prometheus.CounterVec
	DBOperationTime *prometheus.HistogramVec
}

// New registers all collectors under the given namespace.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		QuoteSaves: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_saves_total",
			Help:      "Quote saves by outcome",
		}, []string{"result"}),
		ItemsPriced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_priced_total",
			Help:      "Quote items priced by the pricing engine",
		}),
		QuoteExports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_exports_total",
			Help:      "Quote exports by format",
		}, []string{"format"}),
		DBOperationTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of database operations in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method, path string, status int, elapsed time.Duration) {
	code := strconv.Itoa(status)
	m.HTTPRequests.WithLabelValues(method, path, code).Inc()
	m.HTTPDuration.WithLabelValues(method, path, code).Observe(elapsed.Seconds())
}

// RecordSave counts a quote save with one of the Save* outcomes.
func (m *Metrics) RecordSave(result string) {
	m.QuoteSaves.WithLabelValues(result).Inc()
}

// RecordItemsPriced adds n priced items.
func (m *Metrics) RecordItemsPriced(n int) {
	m.ItemsPriced.Add(float64(n))
}

// RecordExport counts an export in the given format (pdf, excel, print).
func (m *Metrics) RecordExport(format string) {
	m.QuoteExports.WithLabelValues(format).Inc()
}

// TrackDBOperation returns a func that records the time since start, for use
// with defer.
func (m *Metrics) TrackDBOperation(operation string) func(start time.Time) {
	return func(start time.Time) {
		m.DBOperationTime.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
