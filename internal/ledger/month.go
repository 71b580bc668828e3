package ledger

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// canonicalLayout is the storage form of a MonthKey. It sorts lexically in
// calendar order.
const canonicalLayout = "2006-01"

// labelLayout is the display form, also accepted when reading snapshots
// written by older clients that keyed buckets by label.
const labelLayout = "January 2006"

// MonthKey identifies a calendar month. It is the partition key of a Ledger.
type MonthKey struct {
	Year  int
	Month time.Month
}

// KeyFor returns the key of the month containing t, in t's location.
func KeyFor(t time.Time) MonthKey {
	return MonthKey{Year: t.Year(), Month: t.Month()}
}

// ParseMonthKey accepts "2026-10" and the legacy "October 2026" form.
func ParseMonthKey(s string) (MonthKey, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(canonicalLayout, s); err == nil {
		return KeyFor(t), nil
	}
	if t, err := time.Parse(labelLayout, s); err == nil {
		return KeyFor(t), nil
	}
	return MonthKey{}, fmt.Errorf("invalid month key %q", s)
}

// Time returns midnight UTC on the first day of the month.
func (k MonthKey) Time() time.Time {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Add returns the key n months away. n may be negative.
func (k MonthKey) Add(n int) MonthKey {
	return KeyFor(k.Time().AddDate(0, n, 0))
}

// Next returns the following month.
func (k MonthKey) Next() MonthKey { return k.Add(1) }

// Prev returns the preceding month.
func (k MonthKey) Prev() MonthKey { return k.Add(-1) }

// Before reports whether k is earlier than other.
func (k MonthKey) Before(other MonthKey) bool {
	return k.Compare(other) < 0
}

// Compare orders keys chronologically.
func (k MonthKey) Compare(other MonthKey) int {
	switch {
	case k.Year != other.Year:
		return k.Year - other.Year
	default:
		return int(k.Month) - int(other.Month)
	}
}

// String returns the canonical form, e.g. "2026-10".
func (k MonthKey) String() string {
	return fmt.Sprintf("%04d-%02d", k.Year, int(k.Month))
}

// Label returns the display form, e.g. "October 2026".
func (k MonthKey) Label() string {
	return k.Month.String() + " " + strconv.Itoa(k.Year)
}

// MarshalText implements encoding.TextMarshaler so a MonthKey can be used as
// a JSON object key.
func (k MonthKey) MarshalText() ([]byte, error) {
	if k.Month < time.January || k.Month > time.December {
		return nil, fmt.Errorf("invalid month %d", k.Month)
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *MonthKey) UnmarshalText(b []byte) error {
	parsed, err := ParseMonthKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
