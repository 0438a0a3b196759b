// Package export encodes a filtered record set to interchange formats.
// Both encoders are deterministic for a given input and preserve the order
// of the records they are given.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// CSVHeader is the first row of every CSV export.
const CSVHeader = "Title,Type,Amount,Category,Date"

// record is the portable shape of an exported transaction: the identity
// fields are stripped so the export cannot be re-imported as someone
// else's data.
type record struct {
	Title    string          `json:"title"`
	Type     core.TxType     `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category,omitempty"`
	Date     string          `json:"date"`
}

// ToCSV encodes the record set as CSV. Title and Category are always
// double-quoted so embedded commas survive; embedded quotes are doubled.
// An empty set returns core.ErrNothingToExport instead of a header-only file.
func ToCSV(txs []core.Transaction) ([]byte, error) {
	if len(txs) == 0 {
		return nil, core.ErrNothingToExport
	}
	var buf bytes.Buffer
	buf.WriteString(CSVHeader)
	buf.WriteByte('\n')
	for _, tx := range txs {
		fmt.Fprintf(&buf, "%s,%s,%s,%s,%s\n",
			quote(tx.Title), tx.Type, tx.Amount.String(), quote(tx.Category), tx.Date)
	}
	return buf.Bytes(), nil
}

// ToJSON encodes the record set as a pretty-printed JSON array with ID and
// OwnerID stripped. An empty set returns core.ErrNothingToExport.
func ToJSON(txs []core.Transaction) ([]byte, error) {
	if len(txs) == 0 {
		return nil, core.ErrNothingToExport
	}
	records := make([]record, len(txs))
	for i, tx := range txs {
		records[i] = record{
			Title:    tx.Title,
			Type:     tx.Type,
			Amount:   tx.Amount,
			Category: tx.Category,
			Date:     tx.Date,
		}
	}
	return json.MarshalIndent(records, "", "  ")
}

// Filename suggests a download name of the form
// <app>-transactions-<YYYY-MM-DD>.<ext>. The clock is passed in so the
// encoders themselves stay free of time dependencies.
func Filename(app, ext string, now time.Time) string {
	return fmt.Sprintf("%s-transactions-%s.%s", app, now.Format(core.DateLayout), ext)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
