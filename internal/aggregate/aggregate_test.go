package aggregate

import (
	"testing"
	"time"

	"orbit/internal/ledger"
)

func expense(id, name string, amount float64) ledger.Entry {
	return ledger.Entry{ID: id, Name: name, Amount: amount, Type: ledger.TypeExpense, Count: 1}
}

func income(id, name string, amount float64) ledger.Entry {
	return ledger.Entry{ID: id, Name: name, Amount: amount, Type: ledger.TypeIncome, Count: 1}
}

var (
	jan = ledger.MonthKey{Year: 2026, Month: time.January}
	feb = ledger.MonthKey{Year: 2026, Month: time.February}
	mar = ledger.MonthKey{Year: 2026, Month: time.March}
)

func TestComputeTotals(t *testing.T) {
	items := []ledger.Entry{
		income("1", "Salary", 3000),
		expense("2", "Rent", 1200),
		expense("3", "Food", 0.1),
		expense("4", "Food", 0.2),
	}
	got := ComputeTotals(items)
	if got.IncomeSum != 3000 {
		t.Errorf("IncomeSum = %v, want 3000", got.IncomeSum)
	}
	if got.ExpenseSum != 1200.3 {
		t.Errorf("ExpenseSum = %v, want 1200.3", got.ExpenseSum)
	}
	if got.Net != 1799.7 {
		t.Errorf("Net = %v, want 1799.7", got.Net)
	}

	empty := ComputeTotals(nil)
	if empty != (Totals{}) {
		t.Errorf("expected zero totals, got %+v", empty)
	}
}

func TestTopExpense(t *testing.T) {
	t.Run("largest expense", func(t *testing.T) {
		items := []ledger.Entry{
			income("i", "Salary", 9000),
			expense("a", "Rent", 900),
			expense("b", "Car", 1500),
		}
		top, ok := TopExpense(items)
		if !ok || top.ID != "b" {
			t.Errorf("expected Car, got %+v (ok=%v)", top, ok)
		}
	})

	t.Run("ties go to the first", func(t *testing.T) {
		items := []ledger.Entry{expense("a", "First", 50), expense("b", "Second", 50)}
		top, _ := TopExpense(items)
		if top.ID != "a" {
			t.Errorf("expected first entry, got %s", top.ID)
		}
	})

	t.Run("no expenses", func(t *testing.T) {
		if _, ok := TopExpense([]ledger.Entry{income("i", "Salary", 1)}); ok {
			t.Error("expected no top expense")
		}
	})
}

func TestAverageMonthlyBurn(t *testing.T) {
	t.Run("zero expense months are excluded", func(t *testing.T) {
		l := ledger.Ledger{
			jan: {expense("a", "Rent", 1000)},
			feb: {income("b", "Salary", 2000)},
			mar: {expense("c", "Rent", 500)},
		}
		if got := AverageMonthlyBurn(l); got != 750 {
			t.Errorf("AverageMonthlyBurn() = %v, want 750", got)
		}
	})

	t.Run("empty ledger", func(t *testing.T) {
		if got := AverageMonthlyBurn(ledger.Ledger{}); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})

	t.Run("empty buckets", func(t *testing.T) {
		l := ledger.Ledger{jan: {}, feb: nil}
		if got := AverageMonthlyBurn(l); got != 0 {
			t.Errorf("expected 0, got %v", got)
		}
	})
}

func TestMostFrequent(t *testing.T) {
	t.Run("groups by trimmed lower-case name", func(t *testing.T) {
		l := ledger.Ledger{
			jan: {expense("a", "Coffee", 3), expense("b", "Rent", 900)},
			feb: {expense("c", " coffee ", 3), expense("d", "COFFEE", 3), income("e", "coffee", 1)},
		}
		got, ok := MostFrequent(l)
		if !ok {
			t.Fatal("expected a result")
		}
		if got.Name != "coffee" || got.Count != 3 {
			t.Errorf("got %+v, want coffee x3", got)
		}
	})

	t.Run("count field contributes multiplicity", func(t *testing.T) {
		merged := expense("a", "Netflix", 30)
		merged.Count = 4
		l := ledger.Ledger{jan: {merged, expense("b", "Rent", 900), expense("c", "Rent", 900)}}
		got, _ := MostFrequent(l)
		if got.Name != "netflix" || got.Count != 4 {
			t.Errorf("got %+v, want netflix x4", got)
		}
	})

	t.Run("missing count counts once", func(t *testing.T) {
		legacy := expense("a", "Gym", 20)
		legacy.Count = 0
		got, _ := MostFrequent(ledger.Ledger{jan: {legacy}})
		if got.Count != 1 {
			t.Errorf("expected count 1, got %d", got.Count)
		}
	})

	t.Run("ties resolve to the earliest month", func(t *testing.T) {
		l := ledger.Ledger{
			feb: {expense("b", "Books", 10)},
			jan: {expense("a", "Taxi", 10)},
		}
		got, _ := MostFrequent(l)
		if got.Name != "taxi" {
			t.Errorf("expected taxi, got %s", got.Name)
		}
	})

	t.Run("no expenses", func(t *testing.T) {
		if _, ok := MostFrequent(ledger.Ledger{jan: {income("a", "Salary", 1)}}); ok {
			t.Error("expected no result")
		}
	})
}

func TestMergeForVisualization(t *testing.T) {
	t.Run("merges case-insensitive names", func(t *testing.T) {
		items := []ledger.Entry{expense("a", "Netflix", 15), expense("b", "netflix", 15)}
		merged := MergeForVisualization(items)
		if len(merged) != 1 {
			t.Fatalf("expected 1 merged entry, got %d", len(merged))
		}
		if merged[0].Amount != 30 || merged[0].Count != 2 {
			t.Errorf("got amount=%v count=%d, want 30 and 2", merged[0].Amount, merged[0].Count)
		}
		if items[0].Amount != 15 || items[0].Count != 1 {
			t.Error("input must not be modified")
		}
	})

	t.Run("type is part of the key", func(t *testing.T) {
		items := []ledger.Entry{expense("a", "Refund", 10), income("b", "refund", 10)}
		if got := MergeForVisualization(items); len(got) != 2 {
			t.Errorf("expected 2 entries, got %d", len(got))
		}
	})

	t.Run("keeps first-seen order", func(t *testing.T) {
		items := []ledger.Entry{expense("a", "B", 1), expense("b", "A", 1), expense("c", "b", 1)}
		got := MergeForVisualization(items)
		if len(got) != 2 || got[0].Name != "B" || got[1].Name != "A" {
			t.Errorf("unexpected order: %+v", got)
		}
	})
}

func TestFilter(t *testing.T) {
	described := expense("c", "Groceries", 30)
	described.Description = "weekly NETFLIX snacks"
	items := []ledger.Entry{expense("a", "Netflix", 15), expense("b", "Rent", 900), described}

	tests := []struct {
		name string
		term string
		want []string
	}{
		{"blank keeps all", "  ", []string{"a", "b", "c"}},
		{"name match ignores case", "NETflix", []string{"a", "c"}},
		{"description match", "snacks", []string{"c"}},
		{"no match", "fuel", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filter(items, tt.term)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(got), len(tt.want))
			}
			for i, id := range tt.want {
				if got[i].ID != id {
					t.Errorf("entry %d = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestCategoryBreakdown(t *testing.T) {
	withCategory := expense("a", "Pizza", 12)
	withCategory.Category = "Food"
	unnamed := expense("b", "", 5)

	items := []ledger.Entry{
		withCategory,
		expense("c", "Sushi", 20),
		expense("d", "Sushi", 10),
		unnamed,
		income("e", "Salary", 1000),
	}
	got := CategoryBreakdown(items)
	want := map[string]float64{"Food": 12, "Sushi": 30, "Other": 5}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for cat, amount := range want {
		if got[cat] != amount {
			t.Errorf("%s = %v, want %v", cat, got[cat], amount)
		}
	}
}

func TestMonthlySeries(t *testing.T) {
	l := ledger.Ledger{
		mar: {expense("a", "Rent", 100)},
		jan: {expense("b", "Rent", 50), income("c", "Pay", 300)},
	}
	series := MonthlySeries(l)
	if len(series) != 2 {
		t.Fatalf("expected 2 points, got %d", len(series))
	}
	if series[0].Month != jan || series[0].Expense != 50 || series[0].Income != 300 {
		t.Errorf("unexpected first point: %+v", series[0])
	}
	if series[1].Label != "March 2026" {
		t.Errorf("unexpected label %q", series[1].Label)
	}
}

func TestSummarize(t *testing.T) {
	l := ledger.Ledger{
		jan: {expense("a", "Rent", 1000), income("b", "Pay", 2500)},
		feb: {expense("c", "Rent", 800)},
	}
	s := Summarize(l, jan)
	if s.Net != 1500 || s.AverageBurn != 900 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.TopExpense == nil || s.TopExpense.ID != "a" {
		t.Errorf("unexpected top expense: %+v", s.TopExpense)
	}
	if s.MostFrequent == nil || s.MostFrequent.Name != "rent" || s.MostFrequent.Count != 2 {
		t.Errorf("unexpected most frequent: %+v", s.MostFrequent)
	}

	searched := Summarize(l, jan).Search("rent")
	if len(searched.Items) != 1 || len(searched.Merged) != 1 || searched.Query != "rent" {
		t.Errorf("expected only Rent after search, got %+v", searched.Items)
	}
	if searched.Net != 1500 {
		t.Errorf("expected totals to cover the whole month, got %v", searched.Net)
	}

	empty := Summarize(l, mar)
	if empty.Items == nil || len(empty.Items) != 0 || empty.TopExpense != nil {
		t.Errorf("unexpected empty month summary: %+v", empty)
	}
}
