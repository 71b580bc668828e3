package aggregate

import (
	"strings"

	"orbit/internal/ledger"
)

// Summary bundles every statistic shown for one viewed month.
type Summary struct {
	Month             ledger.MonthKey    `json:"month"`
	Label             string             `json:"label"`
	Query             string             `json:"query,omitempty"`
	Items             []ledger.Entry     `json:"items"`
	Merged            []ledger.Entry     `json:"merged"`
	Totals                               // flattened into the object
	TopExpense        *ledger.Entry      `json:"topExpense"`
	AverageBurn       float64            `json:"averageBurn"`
	MostFrequent      *Frequency         `json:"mostFrequent"`
	CategoryBreakdown map[string]float64 `json:"categoryBreakdown"`
	Monthly           []MonthPoint       `json:"monthly"`
}

// Summarize computes the Summary of month key. Month-level figures use that
// bucket. Average burn, most frequent and the monthly series use the whole
// ledger.
func Summarize(l ledger.Ledger, key ledger.MonthKey) Summary {
	items := l.Items(key)
	if items == nil {
		items = []ledger.Entry{}
	}
	s := Summary{
		Month:             key,
		Label:             key.Label(),
		Items:             items,
		Merged:            MergeForVisualization(items),
		Totals:            ComputeTotals(items),
		AverageBurn:       AverageMonthlyBurn(l),
		CategoryBreakdown: CategoryBreakdown(items),
		Monthly:           MonthlySeries(l),
	}
	if top, ok := TopExpense(items); ok {
		s.TopExpense = &top
	}
	if freq, ok := MostFrequent(l); ok {
		s.MostFrequent = &freq
	}
	return s
}

// Search narrows Items and Merged to the entries matching term. Totals and
// the other figures keep describing the whole month.
func (s Summary) Search(term string) Summary {
	term = strings.TrimSpace(term)
	if term == "" {
		return s
	}
	s.Query = term
	s.Items = Filter(s.Items, term)
	s.Merged = MergeForVisualization(s.Items)
	return s
}
