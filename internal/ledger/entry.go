package ledger

import "time"

// Type partitions entries into money in and money out.
type Type string

const (
	TypeExpense Type = "expense"
	TypeIncome  Type = "income"
)

// Valid reports whether t is a known entry type.
func (t Type) Valid() bool {
	return t == TypeExpense || t == TypeIncome
}

// Entry is one income or expense stream in a month bucket.
type Entry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Amount      float64   `json:"amount"`
	Type        Type      `json:"type"`
	Color       string    `json:"color,omitempty"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	IsRecurring bool      `json:"isRecurring"`
	Date        time.Time `json:"date"`
	// Count is the aggregation multiplicity. The store always writes 1;
	// only merged display views carry larger values.
	Count int `json:"count"`
}

// Draft holds the caller-supplied fields of a new entry. ID, Date and Count
// are assigned by AddEntry.
type Draft struct {
	Name        string  `json:"name"`
	Amount      float64 `json:"amount"`
	Type        Type    `json:"type"`
	Color       string  `json:"color"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	IsRecurring bool    `json:"isRecurring"`
}

// Patch lists the fields to overwrite in EditEntry. Nil fields are left as
// they are.
type Patch struct {
	Name        *string  `json:"name,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Type        *Type    `json:"type,omitempty"`
	Color       *string  `json:"color,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	IsRecurring *bool    `json:"isRecurring,omitempty"`
}

func (p Patch) apply(e Entry) Entry {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Amount != nil {
		e.Amount = *p.Amount
	}
	if p.Type != nil {
		e.Type = *p.Type
	}
	if p.Color != nil {
		e.Color = *p.Color
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Category != nil {
		e.Category = *p.Category
	}
	if p.IsRecurring != nil {
		e.IsRecurring = *p.IsRecurring
	}
	return e
}

// Multiplicity returns Count, treating unset counts from older snapshots as 1.
func (e Entry) Multiplicity() int {
	if e.Count <= 0 {
		return 1
	}
	return e.Count
}
