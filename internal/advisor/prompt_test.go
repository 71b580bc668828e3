package advisor

import (
	"strings"
	"testing"

	"orbit/internal/ledger"
)

func TestExplainExpense(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"House Rent", "a fixed cost for having a place to live"},
		{"Grocery run", "basic daily survival spending"},
		{"Zomato", "convenience food that adds up quickly"},
		{"Amazon order", "non-essential lifestyle spending"},
		{"Netflix", "monthly entertainment subscriptions"},
		{"Uber", "transport and movement costs"},
		{"Birthday gift", "emotional or relationship spending"},
		{"Electricity", "general personal spending"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExplainExpense(tt.name); got != tt.want {
				t.Errorf("ExplainExpense(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestTopSpends(t *testing.T) {
	items := []ledger.Entry{
		{Name: "A", Amount: 10, Type: ledger.TypeExpense},
		{Name: "Pay", Amount: 999, Type: ledger.TypeIncome},
		{Name: "B", Amount: 50, Type: ledger.TypeExpense},
		{Name: "C", Amount: 30, Type: ledger.TypeExpense},
		{Name: "D", Amount: 50, Type: ledger.TypeExpense},
	}
	top := TopSpends(items, 3)
	var names []string
	for _, e := range top {
		names = append(names, e.Name)
	}
	if got := strings.Join(names, ""); got != "BDC" {
		t.Errorf("expected BDC, got %s", got)
	}
	if items[0].Name != "A" {
		t.Error("expected input order untouched")
	}
}

func TestCheckupPrompt(t *testing.T) {
	prompt := CheckupPrompt(testSnapshot())
	for _, want := range []string{
		"INCOME: ₹3000",
		"TOTAL SPENT: ₹1500",
		"MONEY LEFT: ₹1500",
		"- Rent: ₹1200 (a fixed cost for having a place to live)",
		"- Swiggy: ₹300 (convenience food that adds up quickly)",
		"Observation:",
		"The Leak:",
		"Action:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "Salary") {
		t.Error("expected income entries left out of the breakdown")
	}
}
