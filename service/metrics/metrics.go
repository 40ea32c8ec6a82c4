package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the Shyft client.
// Following the explicit dependency injection pattern, this struct
// is passed to the components that need to record metrics.
type Metrics struct {
	// Per-attempt API call metrics
	apiCallsTotal   *prometheus.CounterVec
	apiCallDuration *prometheus.HistogramVec

	// Retry metrics
	apiRetries       *prometheus.CounterVec
	apiRateLimitHits *prometheus.CounterVec

	// Operation metrics (one per facade call, retries included)
	operationsTotal      *prometheus.CounterVec
	operationDuration    *prometheus.HistogramVec
	transactionsReturned *prometheus.HistogramVec
}

// NewMetrics creates a new Metrics instance and registers all collectors.
// If registry is nil, prometheus.DefaultRegisterer is used.
func NewMetrics(registry prometheus.Registerer) *Metrics {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}

	factory := promauto.With(registry)

	return &Metrics{
		apiCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shyft_api_calls_total",
				Help: "Total number of Shyft API HTTP attempts by endpoint, method and status class",
			},
			[]string{"endpoint", "method", "status"},
		),
		apiCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shyft_api_call_duration_seconds",
				Help:    "Duration of individual Shyft API HTTP attempts in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"endpoint", "method"},
		),
		apiRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shyft_api_retries_total",
				Help: "Total number of Shyft API retry attempts",
			},
			[]string{"endpoint", "reason"},
		),
		apiRateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shyft_api_rate_limit_hits_total",
				Help: "Total number of Shyft API rate limit responses (429)",
			},
			[]string{"endpoint"},
		),
		operationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shyft_operations_total",
				Help: "Total number of client operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shyft_operation_duration_seconds",
				Help:    "Duration of client operations including retries in seconds",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		transactionsReturned: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shyft_transactions_returned",
				Help:    "Number of transaction records returned per operation",
				Buckets: []float64{0, 1, 10, 50, 100, 250, 500, 1000},
			},
			[]string{"operation"},
		),
	}
}

// RecordAPICall records a single HTTP attempt against the API.
func (m *Metrics) RecordAPICall(endpoint, method string, statusCode int, duration float64) {
	m.apiCallsTotal.WithLabelValues(endpoint, method, statusCodeToString(statusCode)).Inc()
	m.apiCallDuration.WithLabelValues(endpoint, method).Observe(duration)
}

// RecordRetry records a scheduled retry.
func (m *Metrics) RecordRetry(endpoint, reason string) {
	m.apiRetries.WithLabelValues(endpoint, reason).Inc()
}

// RecordRateLimitHit records a 429 response.
func (m *Metrics) RecordRateLimitHit(endpoint string) {
	m.apiRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordOperation records a completed facade operation.
func (m *Metrics) RecordOperation(operation string, err error, duration float64) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.operationsTotal.WithLabelValues(operation, outcome).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration)
}

// RecordTransactionsReturned records how many records an operation produced.
func (m *Metrics) RecordTransactionsReturned(operation string, count int) {
	m.transactionsReturned.WithLabelValues(operation).Observe(float64(count))
}

// Helper functions

func statusCodeToString(code int) string {
	// Group status codes by class
	switch {
	case code == 0:
		return "error"
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500 && code < 600:
		return "5xx"
	default:
		return "unknown"
	}
}
