package client

import (
	"fmt"
	"log/slog"
	"net/http"
)

// APIKeyHeader carries the credential on every request.
const APIKeyHeader = "x-api-key"

const redacted = "[REDACTED]"

// secret is a credential that never prints its value.
type secret string

func (s secret) String() string   { return redacted }
func (s secret) GoString() string { return redacted }

// LogValue implements slog.LogValuer.
func (s secret) LogValue() slog.Value { return slog.StringValue(redacted) }

// validHeaderValue reports whether v may be sent as an HTTP header value
// (no control characters other than horizontal tab).
func validHeaderValue(v string) error {
	for i := 0; i < len(v); i++ {
		b := v[i]
		if (b < ' ' && b != '\t') || b == 0x7f {
			return fmt.Errorf("contains forbidden character at position %d", i)
		}
	}
	return nil
}

// authTransport attaches the API key to every outgoing request.
type authTransport struct {
	apiKey secret
	next   http.RoundTripper
}

// RoundTrip clones req, since a RoundTripper must not modify the caller's request.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set(APIKeyHeader, string(t.apiKey))
	return t.next.RoundTrip(clone)
}

// newHTTPClient builds the transport client: base round tripper, then metrics
// instrumentation, then authentication.
func newHTTPClient(cfg *config, instrument func(http.RoundTripper) http.RoundTripper) *http.Client {
	base := http.DefaultTransport
	hc := &http.Client{}
	if cfg.httpClient != nil {
		*hc = *cfg.httpClient
		if cfg.httpClient.Transport != nil {
			base = cfg.httpClient.Transport
		}
	}
	if hc.Timeout == 0 {
		hc.Timeout = cfg.timeout
	}
	hc.Transport = &authTransport{
		apiKey: cfg.apiKey,
		next:   instrument(base),
	}
	return hc
}
