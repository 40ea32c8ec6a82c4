package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodeToString(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "error"},
		{200, "2xx"},
		{204, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{429, "4xx"},
		{503, "5xx"},
		{999, "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusCodeToString(tt.code), "code %d", tt.code)
	}
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "transaction/history", EndpointLabel("/sol/v1/transaction/history"))
	assert.Equal(t, "transaction/parsed", EndpointLabel("/transaction/parsed"))
	assert.Equal(t, "health", EndpointLabel("/health"))
}

func TestRecordOperation(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordOperation("get_parsed_transaction", nil, 0.2)
	m.RecordOperation("get_parsed_transaction", errors.New("boom"), 0.3)
	m.RecordOperation("get_parsed_transaction", nil, 0.1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("get_parsed_transaction", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("get_parsed_transaction", "error")))
}

func TestRecordRetry(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordRetry("transaction/history", "status_503")
	m.RecordRetry("transaction/history", "status_503")
	m.RecordRetry("transaction/history", "transport")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.apiRetries.WithLabelValues("transaction/history", "status_503")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRetries.WithLabelValues("transaction/history", "transport")))
}

func TestInstrumentRoundTripper(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := NewMetrics(prometheus.NewRegistry())
	httpClient := &http.Client{
		Timeout:   5 * time.Second,
		Transport: InstrumentRoundTripper(m, http.DefaultTransport),
	}

	for i := 0; i < 2; i++ {
		resp, err := httpClient.Get(server.URL + "/sol/v1/transaction/parsed")
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiCallsTotal.WithLabelValues("transaction/parsed", "GET", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiCallsTotal.WithLabelValues("transaction/parsed", "GET", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.apiRateLimitHits.WithLabelValues("transaction/parsed")))
}

func TestInstrumentRoundTripper_NilMetrics(t *testing.T) {
	rt := InstrumentRoundTripper(nil, http.DefaultTransport)
	assert.Equal(t, http.DefaultTransport, rt)
}

func TestTimer(t *testing.T) {
	var recorded float64
	done := Timer(time.Now().Add(-time.Second), func(d float64) { recorded = d })
	done()
	assert.GreaterOrEqual(t, recorded, 1.0)
}
