package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
)

// ErrNoRawPayload is returned by DecodeRaw when the record was fetched without enable_raw.
var ErrNoRawPayload = errors.New("transaction has no raw payload")

// Envelope is the wrapper common to every API response.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Result  T      `json:"result"`
}

// ParsedTransaction is a transaction as parsed by the API. Records are only
// produced by decoding responses.
type ParsedTransaction struct {
	Timestamp  string            `json:"timestamp"`
	Fee        float64           `json:"fee"`
	FeePayer   string            `json:"fee_payer"`
	Signers    []string          `json:"signers"`
	Signatures []string          `json:"signatures"`
	Protocol   Protocol          `json:"protocol"`
	Type       string            `json:"type"`
	Status     string            `json:"status"`
	Actions    []Action          `json:"actions"`
	Raw        json.RawMessage   `json:"raw,omitempty"`    // only with enable_raw
	Events     []json.RawMessage `json:"events,omitempty"` // only with enable_events
}

// Protocol identifies the on-chain program a transaction or action belongs to.
type Protocol struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// Time parses the record timestamp.
func (t *ParsedTransaction) Time() (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, t.Timestamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", t.Timestamp, err)
	}
	return ts, nil
}

// Signature returns the first transaction signature, or "" if none.
func (t *ParsedTransaction) Signature() string {
	if len(t.Signatures) == 0 {
		return ""
	}
	return t.Signatures[0]
}

// Succeeded reports whether the API marked the transaction as successful.
func (t *ParsedTransaction) Succeeded() bool {
	return t.Status == "Success"
}

// HasRaw reports whether the record carries a raw payload.
func (t *ParsedTransaction) HasRaw() bool {
	trimmed := bytes.TrimSpace(t.Raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// DecodeRaw decodes the raw payload, which has the shape of a getTransaction
// RPC result.
func (t *ParsedTransaction) DecodeRaw() (*rpc.GetTransactionResult, error) {
	if !t.HasRaw() {
		return nil, ErrNoRawPayload
	}
	var result rpc.GetTransactionResult
	if err := json.Unmarshal(t.Raw, &result); err != nil {
		return nil, fmt.Errorf("failed to decode raw transaction: %w", err)
	}
	return &result, nil
}
