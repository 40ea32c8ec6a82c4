package main

import (
	"encoding/json"
	"fmt"

	"github.com/brojonat/shyft/client"
	"github.com/itchyny/gojq"
)

// compileFilters parses and compiles jq filter expressions.
func compileFilters(filters []string) ([]*gojq.Code, error) {
	compiled := make([]*gojq.Code, len(filters))
	for i, filter := range filters {
		query, err := gojq.Parse(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to parse jq filter %q: %w", filter, err)
		}
		compiled[i], err = gojq.Compile(query)
		if err != nil {
			return nil, fmt.Errorf("failed to compile jq filter %q: %w", filter, err)
		}
	}
	return compiled, nil
}

// filterTransactions keeps the transactions for which every filter is truthy.
// Filters see the transaction in its API JSON form.
func filterTransactions(filters []*gojq.Code, txns []client.ParsedTransaction) ([]client.ParsedTransaction, error) {
	if len(filters) == 0 {
		return txns, nil
	}

	kept := make([]client.ParsedTransaction, 0, len(txns))
	for _, txn := range txns {
		doc, err := toJQInput(txn)
		if err != nil {
			return nil, err
		}
		if matchesAll(filters, doc) {
			kept = append(kept, txn)
		}
	}
	return kept, nil
}

// toJQInput converts v into the generic map/slice form gojq operates on.
func toJQInput(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return doc, nil
}

func matchesAll(filters []*gojq.Code, doc any) bool {
	for _, code := range filters {
		iter := code.Run(doc)
		v, ok := iter.Next()
		if !ok {
			// No result means filter failed
			return false
		}
		if _, isErr := v.(error); isErr {
			return false
		}
		if !isTruthy(v) {
			return false
		}
	}
	return true
}

// isTruthy checks if a jq result value is truthy.
// In jq, false and null are falsy, everything else is truthy.
func isTruthy(v interface{}) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}
