package metrics

import (
	"net/http"
	"strings"
	"time"
)

// InstrumentRoundTripper wraps an http.RoundTripper so that every attempt is
// recorded, including attempts later discarded by the retry policy.
// A nil Metrics returns next unchanged.
func InstrumentRoundTripper(m *Metrics, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if m == nil {
		return next
	}
	return &roundTripper{metrics: m, next: next}
}

type roundTripper struct {
	metrics *Metrics
	next    http.RoundTripper
}

// RoundTrip times the underlying round trip and records its status class.
func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := rt.next.RoundTrip(req)

	statusCode := 0
	if err == nil {
		statusCode = resp.StatusCode
	}
	endpoint := EndpointLabel(req.URL.Path)
	rt.metrics.RecordAPICall(endpoint, req.Method, statusCode, time.Since(start).Seconds())
	if statusCode == http.StatusTooManyRequests {
		rt.metrics.RecordRateLimitHit(endpoint)
	}
	return resp, err
}

// EndpointLabel reduces a request path to a low-cardinality label made of its
// last two segments, e.g. "/sol/v1/transaction/history" -> "transaction/history".
func EndpointLabel(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) > 2 {
		segments = segments[len(segments)-2:]
	}
	return strings.Join(segments, "/")
}

// Timer is a helper for timing operations.
// Usage:
//
//	defer Timer(time.Now(), func(duration float64) {
//	    metrics.RecordSomething(duration)
//	})()
func Timer(start time.Time, recordFunc func(float64)) func() {
	return func() {
		recordFunc(time.Since(start).Seconds())
	}
}
