package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/brojonat/shyft/service/metrics"
)

const (
	pathTransactionHistory = "transaction/history"
	pathTransactionParsed  = "transaction/parsed"
	pathParseSelected      = "transaction/parse_selected"
)

// HistoryOptions holds the optional parameters of GetTransactionHistory.
// Nil fields are omitted from the request.
type HistoryOptions struct {
	// TxNum limits the number of transactions returned.
	TxNum *int
	// BeforeTxSignature returns transactions older than this signature.
	BeforeTxSignature *string
	// UntilTxSignature stops at this signature.
	UntilTxSignature *string
	EnableRaw        *bool
	EnableEvents     *bool
}

// SelectedOptions holds the optional parameters of ParseSelectedTransactions.
type SelectedOptions struct {
	EnableRaw    bool
	EnableEvents bool
}

// parseSelectedRequest is the JSON body of POST transaction/parse_selected.
type parseSelectedRequest struct {
	Network               Network    `json:"network"`
	Commitment            Commitment `json:"commitment"`
	TransactionSignatures []string   `json:"transaction_signatures"`
	EnableRaw             bool       `json:"enable_raw"`
	EnableEvents          bool       `json:"enable_events"`
}

// GetTransactionHistory fetches the parsed transaction history of an account,
// newest first. An account without transactions yields an empty slice.
func (c *Client) GetTransactionHistory(ctx context.Context, account string, opts *HistoryOptions) (txns []ParsedTransaction, err error) {
	defer metrics.Timer(time.Now(), func(seconds float64) {
		c.observe("get_transaction_history", seconds, len(txns), err)
	})()

	query := c.defaultParams()
	query.set("account", account)
	if opts != nil {
		query.setInt("tx_num", opts.TxNum)
		query.setString("before_tx_signature", opts.BeforeTxSignature)
		query.setString("until_tx_signature", opts.UntilTxSignature)
		query.setBool("enable_raw", opts.EnableRaw)
		query.setBool("enable_events", opts.EnableEvents)
	}

	txns, err = do[[]ParsedTransaction](ctx, c, apiCall{
		method: http.MethodGet,
		path:   pathTransactionHistory,
		query:  query,
	})
	if err != nil {
		return nil, err
	}
	if txns == nil {
		txns = []ParsedTransaction{}
	}

	c.logger.DebugContext(ctx, "fetched transaction history",
		"account", account,
		"count", len(txns),
	)
	return txns, nil
}

// GetParsedTransaction fetches one parsed transaction by signature. An unknown
// signature yields a *StatusError matching ErrNotFound or ErrUnsuccessful.
func (c *Client) GetParsedTransaction(ctx context.Context, signature string) (txn *ParsedTransaction, err error) {
	defer metrics.Timer(time.Now(), func(seconds float64) {
		count := 0
		if txn != nil {
			count = 1
		}
		c.observe("get_parsed_transaction", seconds, count, err)
	})()

	query := c.defaultParams()
	query.set("txn_signature", signature)

	txn, err = do[*ParsedTransaction](ctx, c, apiCall{
		method: http.MethodGet,
		path:   pathTransactionParsed,
		query:  query,
	})
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, &DecodeError{Body: "null", Err: errors.New("result is null")}
	}
	return txn, nil
}

// ParseSelectedTransactions fetches several parsed transactions in one call.
// The API may omit signatures it cannot resolve, so the result is not
// positionally aligned with signatures. An empty signature list returns
// ErrNoSignatures without contacting the API.
func (c *Client) ParseSelectedTransactions(ctx context.Context, signatures []string, opts *SelectedOptions) (txns []ParsedTransaction, err error) {
	defer metrics.Timer(time.Now(), func(seconds float64) {
		c.observe("parse_selected_transactions", seconds, len(txns), err)
	})()

	if len(signatures) == 0 {
		return nil, ErrNoSignatures
	}
	if opts == nil {
		opts = &SelectedOptions{}
	}

	txns, err = do[[]ParsedTransaction](ctx, c, apiCall{
		method: http.MethodPost,
		path:   pathParseSelected,
		body: parseSelectedRequest{
			Network:               c.cfg.network,
			Commitment:            c.cfg.commitment,
			TransactionSignatures: signatures,
			EnableRaw:             opts.EnableRaw,
			EnableEvents:          opts.EnableEvents,
		},
	})
	if err != nil {
		return nil, err
	}
	if txns == nil {
		txns = []ParsedTransaction{}
	}

	c.logger.DebugContext(ctx, "parsed selected transactions",
		"requested", len(signatures),
		"returned", len(txns),
	)
	return txns, nil
}
