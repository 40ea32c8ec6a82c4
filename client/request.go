package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// params is an insertion-ordered set of query parameters. The first value
// recorded for a key wins; later layers may only add new keys.
type params struct {
	keys   []string
	values map[string]string
}

func newParams() *params {
	return &params{values: make(map[string]string)}
}

// set records key=value unless key is already present.
func (p *params) set(key, value string) {
	if _, ok := p.values[key]; ok {
		return
	}
	p.keys = append(p.keys, key)
	p.values[key] = value
}

func (p *params) setString(key string, v *string) {
	if v != nil {
		p.set(key, *v)
	}
}

func (p *params) setInt(key string, v *int) {
	if v != nil {
		p.set(key, strconv.Itoa(*v))
	}
}

func (p *params) setBool(key string, v *bool) {
	if v != nil {
		p.set(key, strconv.FormatBool(*v))
	}
}

// encode renders the parameters in insertion order.
func (p *params) encode() string {
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.values[k]))
	}
	return b.String()
}

// apiCall describes one API call before it becomes an *http.Request.
type apiCall struct {
	method string
	path   string
	query  *params
	body   any
}

// defaultParams is the client-wide first layer: network and commitment.
func (c *Client) defaultParams() *params {
	p := newParams()
	p.set("network", string(c.cfg.network))
	p.set("commitment", string(c.cfg.commitment))
	return p
}

// newRequest turns a call into an HTTP request. Bodies are JSON and replayable.
func (c *Client) newRequest(ctx context.Context, call apiCall) (*http.Request, error) {
	u := c.baseURL.JoinPath(call.path)
	if call.query != nil {
		u.RawQuery = call.query.encode()
	}

	var body *bytes.Reader
	if call.body != nil {
		data, err := json.Marshal(call.body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	var (
		req *http.Request
		err error
	)
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, call.method, u.String(), body)
	} else {
		req, err = http.NewRequestWithContext(ctx, call.method, u.String(), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
