// Package analytics derives read-only views from a ledger snapshot.
//
// Every function here is a pure function of the slice it is given: no state
// is carried between calls, so each view can be recomputed from scratch on
// every snapshot delivery.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

var hundred = decimal.NewFromInt(100)

type (
	// Summary holds the headline totals of a snapshot.
	Summary struct {
		Income      decimal.Decimal `json:"income"`
		Expense     decimal.Decimal `json:"expense"`
		Balance     decimal.Decimal `json:"balance"`
		SavingsRate int64           `json:"savingsRate"`
	}

	// CategoryTotal is the per-category income/expense aggregate.
	CategoryTotal struct {
		Category string          `json:"category"`
		Income   decimal.Decimal `json:"income"`
		Expense  decimal.Decimal `json:"expense"`
	}

	// CategoryExpense is the expense-only per-category aggregate.
	CategoryExpense struct {
		Category string          `json:"category"`
		Total    decimal.Decimal `json:"total"`
	}

	// MonthTotal is one YYYY-MM bucket of the monthly series.
	MonthTotal struct {
		Month   string          `json:"month"`
		Income  decimal.Decimal `json:"income"`
		Expense decimal.Decimal `json:"expense"`
		Balance decimal.Decimal `json:"balance"`
	}
)

// Summarize computes total income, total expense, balance and savings rate.
//
// The savings rate is round(100 * balance / income) as an integer percent
// when income is positive, otherwise 0. Rounding is half away from zero,
// so 55.5% becomes 56 and -10.5% becomes -11.
func Summarize(txs []core.Transaction) Summary {
	s := Summary{Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range txs {
		switch tx.Type {
		case core.Income:
			s.Income = s.Income.Add(tx.Amount)
		case core.Expense:
			s.Expense = s.Expense.Add(tx.Amount)
		}
	}
	s.Balance = s.Income.Sub(s.Expense)
	if s.Income.IsPositive() {
		s.SavingsRate = s.Balance.Div(s.Income).Mul(hundred).Round(0).IntPart()
	}
	return s
}

// ByCategory groups the snapshot by category, summing income and expense
// separately. Records without a category land in the Uncategorized bucket.
// Result order is the order in which each category is first encountered.
func ByCategory(txs []core.Transaction) []CategoryTotal {
	index := make(map[string]int)
	var out []CategoryTotal
	for _, tx := range txs {
		cat := tx.CategoryOrDefault()
		i, ok := index[cat]
		if !ok {
			i = len(out)
			index[cat] = i
			out = append(out, CategoryTotal{Category: cat, Income: decimal.Zero, Expense: decimal.Zero})
		}
		switch tx.Type {
		case core.Income:
			out[i].Income = out[i].Income.Add(tx.Amount)
		case core.Expense:
			out[i].Expense = out[i].Expense.Add(tx.Amount)
		}
	}
	return out
}

// ExpenseBreakdown groups expense records by category. Result order is the
// order in which each category is first encountered among expenses.
func ExpenseBreakdown(txs []core.Transaction) []CategoryExpense {
	index := make(map[string]int)
	var out []CategoryExpense
	for _, tx := range txs {
		if tx.Type != core.Expense {
			continue
		}
		cat := tx.CategoryOrDefault()
		i, ok := index[cat]
		if !ok {
			i = len(out)
			index[cat] = i
			out = append(out, CategoryExpense{Category: cat, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(tx.Amount)
	}
	return out
}

// MonthlySeries buckets the snapshot by the YYYY-MM prefix of the date and
// sums income, expense and balance per bucket, sorted ascending by month.
// Records without a usable date are excluded from this view only; they
// still count in Summarize and ByCategory.
func MonthlySeries(txs []core.Transaction) []MonthTotal {
	buckets := make(map[string]*MonthTotal)
	for _, tx := range txs {
		key, ok := tx.MonthKey()
		if !ok {
			continue
		}
		b, ok := buckets[key]
		if !ok {
			b = &MonthTotal{Month: key, Income: decimal.Zero, Expense: decimal.Zero}
			buckets[key] = b
		}
		switch tx.Type {
		case core.Income:
			b.Income = b.Income.Add(tx.Amount)
		case core.Expense:
			b.Expense = b.Expense.Add(tx.Amount)
		}
	}

	out := make([]MonthTotal, 0, len(buckets))
	for _, b := range buckets {
		b.Balance = b.Income.Sub(b.Expense)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}
