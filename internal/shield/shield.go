// Package shield implements per-category spending limits ("shields") and
// their health classification against current spend.
package shield

import (
	"errors"
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"orbit/internal/ledger"
)

// CriticalRatio is the spent/limit fraction from which a shield is CRITICAL.
const CriticalRatio = 0.85

// Status is the health of one shield.
type Status string

const (
	StatusUnshielded Status = "UNSHIELDED"
	StatusActive     Status = "ACTIVE"
	StatusCritical   Status = "CRITICAL"
	StatusBreached   Status = "BREACHED"
)

var (
	ErrEmptyCategory = errors.New("category is required")
	ErrInvalidLimit  = errors.New("limit must be a positive number")
)

// Map maps a category, case-sensitive as entered, to its limit. A category
// without an entry has an implicit limit of 0.
type Map map[string]float64

// Limit returns the limit for category, or 0 when none is set.
func (m Map) Limit(category string) float64 {
	return m[category]
}

func (m Map) clone() Map {
	out := make(Map, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SetLimit inserts or replaces the limit for category.
func SetLimit(m Map, category string, limit float64) (Map, error) {
	if strings.TrimSpace(category) == "" {
		return m, ErrEmptyCategory
	}
	if math.IsNaN(limit) || math.IsInf(limit, 0) || limit <= 0 {
		return m, ErrInvalidLimit
	}
	out := m.clone()
	out[category] = limit
	return out, nil
}

// RemoveLimit drops the limit for category. Removing an absent category is
// not an error.
func RemoveLimit(m Map, category string) Map {
	if _, ok := m[category]; !ok {
		return m
	}
	out := m.clone()
	delete(out, category)
	return out
}

// Classify derives a status from spend and limit. It keeps no state, so a
// spend hovering around the critical ratio flips between ACTIVE and CRITICAL
// on each call.
func Classify(spent, limit float64) Status {
	switch {
	case limit <= 0:
		return StatusUnshielded
	case spent > limit:
		return StatusBreached
	case spent/limit >= CriticalRatio:
		return StatusCritical
	default:
		return StatusActive
	}
}

// Shield is one row of the budget report.
type Shield struct {
	Category string  `json:"name"`
	Spent    float64 `json:"spent"`
	Limit    float64 `json:"limit"`
	Percent  float64 `json:"percent"`
	Status   Status  `json:"status"`
}

// Report combines the month's expense spend per category with the limits.
// Spend is keyed by the trimmed entry name. Every category that has spend or
// a limit gets a row; rows are ordered by spend, highest first, then by
// category name.
func Report(items []ledger.Entry, limits Map) []Shield {
	spent := make(map[string]decimal.Decimal)
	for _, e := range items {
		if e.Type != ledger.TypeExpense {
			continue
		}
		cat := strings.TrimSpace(e.Name)
		spent[cat] = spent[cat].Add(decimal.NewFromFloat(e.Amount))
	}
	for cat := range limits {
		if _, ok := spent[cat]; !ok {
			spent[cat] = decimal.Zero
		}
	}

	rows := make([]Shield, 0, len(spent))
	for cat, s := range spent {
		amount := s.InexactFloat64()
		limit := limits.Limit(cat)
		var percent float64
		if limit > 0 {
			percent = amount / limit * 100
		}
		rows = append(rows, Shield{
			Category: cat,
			Spent:    amount,
			Limit:    limit,
			Percent:  percent,
			Status:   Classify(amount, limit),
		})
	}
	slices.SortFunc(rows, func(a, b Shield) int {
		switch {
		case a.Spent > b.Spent:
			return -1
		case a.Spent < b.Spent:
			return 1
		default:
			return strings.Compare(a.Category, b.Category)
		}
	})
	return rows
}
