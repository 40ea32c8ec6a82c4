package client

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/brojonat/shyft/service/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeResponse_ReadErrorUsesEndpointLabel(t *testing.T) {
	errBroken := errors.New("connection reset")
	req, err := http.NewRequest(http.MethodGet, "https://api.shyft.to/sol/v1/transaction/parsed?txn_signature=x", nil)
	require.NoError(t, err)

	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(iotest.ErrReader(errBroken)),
		Request:    req,
	}

	_, err = decodeResponse[*ParsedTransaction](resp, 2)
	require.Error(t, err)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.MethodGet, transportErr.Method)
	assert.Equal(t, "transaction/parsed", transportErr.Endpoint)
	assert.Equal(t, 2, transportErr.Attempts)
	assert.ErrorIs(t, err, errBroken)
}

func TestBufferBody_ReplacesBodyWithBufferedCopy(t *testing.T) {
	var closed bool
	next := retry.DoerFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       &trackingBody{Reader: strings.NewReader(`{"success":true}`), closed: &closed},
		}, nil
	})

	resp, err := bufferBody(next).Do(&http.Request{})
	require.NoError(t, err)
	assert.True(t, closed, "original body is closed once buffered")
	assert.Equal(t, int64(len(`{"success":true}`)), resp.ContentLength)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"success":true}`, string(body))
}

func TestBufferBody_ReadErrorFailsAttempt(t *testing.T) {
	errBroken := errors.New("unexpected EOF")
	next := retry.DoerFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(iotest.ErrReader(errBroken)),
		}, nil
	})

	resp, err := bufferBody(next).Do(&http.Request{})
	assert.Nil(t, resp)
	require.ErrorIs(t, err, errBroken)
	assert.Contains(t, err.Error(), "failed to read response body")
}

type trackingBody struct {
	io.Reader
	closed *bool
}

func (b *trackingBody) Close() error {
	*b.closed = true
	return nil
}
