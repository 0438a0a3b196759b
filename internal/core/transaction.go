package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TxType = "income"
	Expense TxType = "expense"
)

// DateLayout is the wire format for transaction dates. The fixed width and
// zero padding make lexicographic order equal to chronological order.
const DateLayout = "2006-01-02"

// Uncategorized is the bucket label applied at aggregation time to records
// without a category. It is never written to the store.
const Uncategorized = "Uncategorized"

type (
	// TxType is the direction tag of a transaction. The stored amount is
	// always positive; the sign is implied solely by this tag.
	TxType string

	// TransactionFields is the user-editable subset of a transaction.
	// It is the input to create and update operations.
	TransactionFields struct {
		Title    string          `json:"title"`
		Amount   decimal.Decimal `json:"amount"`
		Category string          `json:"category,omitempty"`
		Date     string          `json:"date"`
		Type     TxType          `json:"type"`
	}

	// Transaction is a single ledger record. ID is assigned by the remote
	// store on insert; OwnerID is set from the authenticated identity at
	// creation. Both are immutable afterwards.
	Transaction struct {
		ID      string `json:"id"`
		OwnerID string `json:"ownerId"`
		TransactionFields
	}
)

// IsValid reports whether t is one of the two known transaction types.
func (t TxType) IsValid() bool {
	return t == Income || t == Expense
}

// Validate checks the user-editable fields. It returns a *ValidationError
// naming the first offending field, or nil.
func (f TransactionFields) Validate() error {
	if strings.TrimSpace(f.Title) == "" {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if !f.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if _, err := time.Parse(DateLayout, f.Date); err != nil {
		return &ValidationError{Field: "date", Reason: "must be a calendar date in YYYY-MM-DD format"}
	}
	if !f.Type.IsValid() {
		return &ValidationError{Field: "type", Reason: `must be "income" or "expense"`}
	}
	return nil
}

// CategoryOrDefault returns the category label used for aggregation:
// the stored category, or Uncategorized when absent.
func (f TransactionFields) CategoryOrDefault() string {
	if f.Category == "" {
		return Uncategorized
	}
	return f.Category
}

// MonthKey returns the YYYY-MM bucket of the transaction date and whether
// the date is usable for month bucketing.
func (f TransactionFields) MonthKey() (string, bool) {
	if len(f.Date) < 7 {
		return "", false
	}
	if _, err := time.Parse(DateLayout, f.Date); err != nil {
		return "", false
	}
	return f.Date[:7], true
}
