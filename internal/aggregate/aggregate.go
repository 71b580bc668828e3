// Package aggregate derives display statistics from a ledger snapshot.
//
// Every function is pure and recomputes from its input; nothing is cached.
// Sums are accumulated in decimal so that adding many float amounts does not
// drift (0.1 + 0.2 sums to 0.3).
package aggregate

import (
	"strings"

	"github.com/shopspring/decimal"

	"orbit/internal/ledger"
)

// Totals holds the expense and income sums of a set of entries.
type Totals struct {
	ExpenseSum float64 `json:"totalExpense"`
	IncomeSum  float64 `json:"totalIncome"`
	Net        float64 `json:"netBalance"`
}

// Frequency is the most often logged expense name and how often it was seen.
type Frequency struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// MonthPoint is one bar of the monthly chart.
type MonthPoint struct {
	Month   ledger.MonthKey `json:"month"`
	Label   string          `json:"label"`
	Expense float64         `json:"expense"`
	Income  float64         `json:"income"`
}

func sum(items []ledger.Entry, t ledger.Type) decimal.Decimal {
	total := decimal.Zero
	for _, e := range items {
		if e.Type == t {
			total = total.Add(decimal.NewFromFloat(e.Amount))
		}
	}
	return total
}

// ComputeTotals sums expenses and incomes. Net is income minus expense.
func ComputeTotals(items []ledger.Entry) Totals {
	expense := sum(items, ledger.TypeExpense)
	income := sum(items, ledger.TypeIncome)
	return Totals{
		ExpenseSum: expense.InexactFloat64(),
		IncomeSum:  income.InexactFloat64(),
		Net:        income.Sub(expense).InexactFloat64(),
	}
}

// TopExpense returns the expense with the largest amount. On ties the first
// one encountered wins.
func TopExpense(items []ledger.Entry) (ledger.Entry, bool) {
	var top ledger.Entry
	found := false
	for _, e := range items {
		if e.Type != ledger.TypeExpense {
			continue
		}
		if !found || e.Amount > top.Amount {
			top, found = e, true
		}
	}
	return top, found
}

// AverageMonthlyBurn is the mean monthly expense sum over the months that
// have any expense. Months whose expense sum is zero are left out rather than
// counted as zero.
func AverageMonthlyBurn(l ledger.Ledger) float64 {
	total := decimal.Zero
	months := 0
	for _, key := range l.Months() {
		s := sum(l[key], ledger.TypeExpense)
		if s.IsZero() {
			continue
		}
		total = total.Add(s)
		months++
	}
	if months == 0 {
		return 0
	}
	return total.Div(decimal.NewFromInt(int64(months))).InexactFloat64()
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// MostFrequent finds the expense name logged most often across the whole
// ledger. Names are compared trimmed and lower-cased; each entry contributes
// its multiplicity. Months are walked in calendar order and entries in
// bucket order, and only a strictly greater count replaces the leader, so a
// tie goes to the name seen first.
func MostFrequent(l ledger.Ledger) (Frequency, bool) {
	counts := make(map[string]int)
	var order []string
	for _, key := range l.Months() {
		for _, e := range l[key] {
			if e.Type != ledger.TypeExpense {
				continue
			}
			name := normalizeName(e.Name)
			if _, seen := counts[name]; !seen {
				order = append(order, name)
			}
			counts[name] += e.Multiplicity()
		}
	}

	var best Frequency
	for _, name := range order {
		if counts[name] > best.Count {
			best = Frequency{Name: name, Count: counts[name]}
		}
	}
	return best, best.Count > 0
}

type mergeKey struct {
	name string
	t    ledger.Type
}

// MergeForVisualization collapses entries sharing a lower-cased name and
// type into one, summing amounts and counting how many were merged. The
// first entry of each group supplies the remaining fields. The result is for
// display only and must not be written back to a ledger.
func MergeForVisualization(items []ledger.Entry) []ledger.Entry {
	index := make(map[mergeKey]int)
	amounts := make([]decimal.Decimal, 0, len(items))
	merged := make([]ledger.Entry, 0, len(items))
	for _, e := range items {
		k := mergeKey{name: strings.ToLower(e.Name), t: e.Type}
		if i, ok := index[k]; ok {
			amounts[i] = amounts[i].Add(decimal.NewFromFloat(e.Amount))
			merged[i].Count++
			continue
		}
		index[k] = len(merged)
		e.Count = 1
		merged = append(merged, e)
		amounts = append(amounts, decimal.NewFromFloat(e.Amount))
	}
	for i := range merged {
		merged[i].Amount = amounts[i].InexactFloat64()
	}
	return merged
}

// Filter returns the entries whose name or description contains term,
// ignoring case. A blank term returns items unchanged.
func Filter(items []ledger.Entry, term string) []ledger.Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items
	}
	out := make([]ledger.Entry, 0, len(items))
	for _, e := range items {
		if strings.Contains(strings.ToLower(e.Name), term) || strings.Contains(strings.ToLower(e.Description), term) {
			out = append(out, e)
		}
	}
	return out
}

// CategoryOf returns the category an entry is grouped under: its category,
// or its name when no category is set, or "Other".
func CategoryOf(e ledger.Entry) string {
	switch {
	case e.Category != "":
		return e.Category
	case e.Name != "":
		return e.Name
	default:
		return "Other"
	}
}

// CategoryBreakdown sums expenses per category.
func CategoryBreakdown(items []ledger.Entry) map[string]float64 {
	sums := make(map[string]decimal.Decimal)
	for _, e := range items {
		if e.Type != ledger.TypeExpense {
			continue
		}
		cat := CategoryOf(e)
		sums[cat] = sums[cat].Add(decimal.NewFromFloat(e.Amount))
	}
	out := make(map[string]float64, len(sums))
	for cat, s := range sums {
		out[cat] = s.InexactFloat64()
	}
	return out
}

// MonthlySeries returns expense and income sums per month in calendar order.
func MonthlySeries(l ledger.Ledger) []MonthPoint {
	keys := l.Months()
	points := make([]MonthPoint, 0, len(keys))
	for _, key := range keys {
		points = append(points, MonthPoint{
			Month:   key,
			Label:   key.Label(),
			Expense: sum(l[key], ledger.TypeExpense).InexactFloat64(),
			Income:  sum(l[key], ledger.TypeIncome).InexactFloat64(),
		})
	}
	return points
}
