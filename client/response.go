package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/brojonat/shyft/service/metrics"
	"github.com/brojonat/shyft/service/retry"
)

// maxBodySize bounds how much of a response body is buffered.
const maxBodySize = 32 << 20

var errMissingResult = errors.New("envelope has no result field")

// bufferBody reads each response body within the attempt that produced it,
// so a connection dropped mid-body surfaces as a transport error the retry
// policy can act on.
func bufferBody(next retry.Doer) retry.Doer {
	return retry.DoerFunc(func(req *http.Request) (*http.Response, error) {
		resp, err := next.Do(req)
		if err != nil {
			return nil, err
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}
		resp.Body = io.NopCloser(bytes.NewReader(body))
		resp.ContentLength = int64(len(body))
		return resp, nil
	})
}

// decodeResponse maps a final response to its envelope result or a typed
// error. Non-2xx bodies are attached verbatim without any parse attempt.
func decodeResponse[T any](resp *http.Response, attempts int) (T, error) {
	var zero T
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		terr := &TransportError{
			Attempts: attempts,
			Err:      fmt.Errorf("failed to read response body: %w", err),
		}
		if resp.Request != nil {
			terr.Method = resp.Request.Method
			terr.Endpoint = metrics.EndpointLabel(resp.Request.URL.Path)
		}
		return zero, terr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return zero, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Attempts:   attempts,
		}
	}

	var envelope Envelope[json.RawMessage]
	if err := json.Unmarshal(body, &envelope); err != nil {
		return zero, &DecodeError{Body: string(body), Err: err}
	}

	if !envelope.Success {
		return zero, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Message:    envelope.Message,
			Attempts:   attempts,
		}
	}

	if envelope.Result == nil {
		return zero, &DecodeError{Body: string(body), Err: errMissingResult}
	}

	var result T
	if err := json.Unmarshal(envelope.Result, &result); err != nil {
		return zero, &DecodeError{Body: string(body), Err: err}
	}
	return result, nil
}
