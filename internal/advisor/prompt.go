package advisor

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"orbit/internal/aggregate"
	"orbit/internal/ledger"
)

// Snapshot is the month data a checkup is based on.
type Snapshot struct {
	Items  []ledger.Entry
	Totals aggregate.Totals
}

// Currency prefixes every amount in prompts.
const Currency = "₹"

func money(v float64) string {
	return Currency + strconv.FormatFloat(v, 'f', -1, 64)
}

var meanings = []struct {
	keywords []string
	meaning  string
}{
	{[]string{"rent"}, "a fixed cost for having a place to live"},
	{[]string{"food", "grocery"}, "basic daily survival spending"},
	{[]string{"takeout", "zomato", "swiggy"}, "convenience food that adds up quickly"},
	{[]string{"shopping", "amazon", "flipkart"}, "non-essential lifestyle spending"},
	{[]string{"ott", "netflix", "spotify"}, "monthly entertainment subscriptions"},
	{[]string{"travel", "uber", "ola"}, "transport and movement costs"},
	{[]string{"gift", "gf", "date"}, "emotional or relationship spending"},
}

// ExplainExpense guesses what kind of spending an entry name describes.
// Rules are checked in order and the first keyword hit wins.
func ExplainExpense(name string) string {
	n := strings.ToLower(name)
	for _, m := range meanings {
		for _, kw := range m.keywords {
			if strings.Contains(n, kw) {
				return m.meaning
			}
		}
	}
	return "general personal spending"
}

func expenses(items []ledger.Entry) []ledger.Entry {
	out := make([]ledger.Entry, 0, len(items))
	for _, e := range items {
		if e.Type == ledger.TypeExpense {
			out = append(out, e)
		}
	}
	return out
}

// TopSpends returns up to n expenses, largest first.
func TopSpends(items []ledger.Entry, n int) []ledger.Entry {
	out := expenses(items)
	slices.SortStableFunc(out, func(a, b ledger.Entry) int { return cmp.Compare(b.Amount, a.Amount) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// CheckupPrompt renders the opening message of a checkup.
func CheckupPrompt(s Snapshot) string {
	burn := s.Totals.ExpenseSum
	net := s.Totals.Net

	var breakdown strings.Builder
	for _, e := range expenses(s.Items) {
		fmt.Fprintf(&breakdown, "- %s: %s (%s)\n", e.Name, money(e.Amount), ExplainExpense(e.Name))
	}

	top := TopSpends(s.Items, 3)
	topNames := make([]string, len(top))
	for i, e := range top {
		topNames[i] = fmt.Sprintf("%s (%s)", e.Name, money(e.Amount))
	}

	return fmt.Sprintf(`You are a friendly but honest Money Coach.
You speak like a real human, not a finance app.

This is ONE person's real monthly situation.

INCOME: %s
TOTAL SPENT: %s
MONEY LEFT: %s

WHAT THE MONEY WENT INTO:
%s
Biggest spends: %s

IMPORTANT RULES:
- Some spending is necessary
- Some spending is emotional or convenience
- Never shame
- Be practical, not preachy

YOUR JOB:
Give a short money checkup in 3 parts.

FORMAT EXACTLY LIKE THIS:

Observation:
(What is happening overall, in simple words)

The Leak:
(Which spending is hurting the most and why it matters in real life)

Action:
(1 or 2 realistic things the user can do THIS WEEK)

STYLE RULES:
- No finance jargon
- No lectures
- No emojis
- No corporate tone
- Sound like a smart friend who actually cares
`, money(net+burn), money(burn), money(net), breakdown.String(), strings.Join(topNames, ", "))
}

// FallbackPrompt is the short opener sent to the fallback model.
func FallbackPrompt(s Snapshot) string {
	return fmt.Sprintf("I spent %s and have %s left. Give me honest advice in simple words.",
		money(s.Totals.ExpenseSum), money(s.Totals.Net))
}
