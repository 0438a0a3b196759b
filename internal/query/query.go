// Package query applies user-selected filter and sort criteria to a ledger
// snapshot. Filtering and sorting are independent, composable and never
// mutate the input slice.
package query

import (
	"sort"
	"strings"

	"fintrack/internal/core"
)

// Sort keys accepted by Criteria. An unknown key keeps the delivery order.
const (
	SortDateDesc   = "date-desc"
	SortDateAsc    = "date-asc"
	SortAmountDesc = "amount-desc"
	SortAmountAsc  = "amount-asc"
)

// FilterAll is the pass-through value for the type and category filters.
const FilterAll = "all"

// Criteria describes what subset of the snapshot to show and in what order.
// Zero values mean "match everything, newest first".
type Criteria struct {
	Search   string // case-insensitive substring match on title or category
	Type     string // "all", "income" or "expense"
	Category string // "all" or an exact category name
	Sort     string // one of the Sort* keys
}

// Apply filters and sorts the snapshot according to c, returning a new
// slice. The sort is stable, so records with equal keys keep the order in
// which they were delivered.
func Apply(txs []core.Transaction, c Criteria) []core.Transaction {
	search := strings.ToLower(c.Search)

	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if !matches(tx, search, c) {
			continue
		}
		out = append(out, tx)
	}

	if less := comparator(c.Sort); less != nil {
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	}
	return out
}

// Categories returns the distinct categories of the snapshot in the order
// of first encounter. Records without a category are skipped.
func Categories(txs []core.Transaction) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tx := range txs {
		if tx.Category == "" {
			continue
		}
		if _, ok := seen[tx.Category]; ok {
			continue
		}
		seen[tx.Category] = struct{}{}
		out = append(out, tx.Category)
	}
	return out
}

func matches(tx core.Transaction, search string, c Criteria) bool {
	if search != "" &&
		!strings.Contains(strings.ToLower(tx.Title), search) &&
		!strings.Contains(strings.ToLower(tx.Category), search) {
		return false
	}
	if c.Type != "" && c.Type != FilterAll && string(tx.Type) != c.Type {
		return false
	}
	if c.Category != "" && c.Category != FilterAll && tx.Category != c.Category {
		return false
	}
	return true
}

// comparator returns the less function for the given sort key. Dates are
// compared lexicographically on the fixed-width YYYY-MM-DD string; a missing
// date compares as the empty string, so it sorts first ascending and last
// descending. The empty key defaults to newest first.
func comparator(key string) func(a, b core.Transaction) bool {
	switch key {
	case SortDateDesc, "":
		return func(a, b core.Transaction) bool { return a.Date > b.Date }
	case SortDateAsc:
		return func(a, b core.Transaction) bool { return a.Date < b.Date }
	case SortAmountDesc:
		return func(a, b core.Transaction) bool { return a.Amount.GreaterThan(b.Amount) }
	case SortAmountAsc:
		return func(a, b core.Transaction) bool { return a.Amount.LessThan(b.Amount) }
	default:
		return nil
	}
}
