package http

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// transactionRequest is the wire form of a create or update body. Amount
// is kept raw so clients may send it as a JSON number or a string; either
// way it is parsed exactly, never through a float.
type transactionRequest struct {
	Title    string          `json:"title"`
	Amount   json.RawMessage `json:"amount"`
	Category string          `json:"category"`
	Date     string          `json:"date"`
	Type     string          `json:"type"`
}

func parseTransactionRequest(body io.Reader) (core.TransactionFields, error) {
	var req transactionRequest
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		return core.TransactionFields{}, &core.ValidationError{Field: "body", Reason: "malformed JSON"}
	}

	amount, err := parseAmount(req.Amount)
	if err != nil {
		return core.TransactionFields{}, err
	}

	return core.TransactionFields{
		Title:    sanitizeInput(req.Title),
		Amount:   amount,
		Category: sanitizeInput(req.Category),
		Date:     strings.TrimSpace(req.Date),
		Type:     core.TxType(strings.TrimSpace(req.Type)),
	}, nil
}

func parseAmount(raw json.RawMessage) (decimal.Decimal, error) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return decimal.Decimal{}, &core.ValidationError{Field: "amount", Reason: "is required"}
	}
	// Accept both "12.50" and 12.50 on the wire.
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, &core.ValidationError{Field: "amount", Reason: "must be a decimal number"}
	}
	return amount, nil
}
