// Package ledger implements the month-bucketed income and expense ledger.
//
// A Ledger maps a MonthKey to the ordered entries logged in that month.
// Every operation returns a new Ledger and leaves its input untouched, so a
// snapshot handed to a sync push can never change underneath it.
package ledger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

// Ledger is the per-user document of month buckets. Insertion order within a
// bucket is display order.
type Ledger map[MonthKey][]Entry

// UnmarshalJSON reads a ledger object. A canonical key and a legacy label key
// can name the same month; their buckets are joined in the order they appear.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*l = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("ledger: expected an object, got %v", tok)
	}
	out := Ledger{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		raw, _ := tok.(string)
		key, err := ParseMonthKey(raw)
		if err != nil {
			return fmt.Errorf("ledger: %w", err)
		}
		var items []Entry
		if err := dec.Decode(&items); err != nil {
			return fmt.Errorf("ledger: month %q: %w", raw, err)
		}
		out[key] = append(out[key], items...)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*l = out
	return nil
}

// Months returns the bucket keys in calendar order.
func (l Ledger) Months() []MonthKey {
	keys := make([]MonthKey, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, MonthKey.Compare)
	return keys
}

// Items returns the entries of one month. The slice must not be modified.
func (l Ledger) Items(key MonthKey) []Entry {
	return l[key]
}

// Clone returns a deep copy.
func (l Ledger) Clone() Ledger {
	out := make(Ledger, len(l))
	for k, items := range l {
		out[k] = slices.Clone(items)
	}
	return out
}

// withBucket copies the map header and swaps in a new bucket. Buckets other
// than key are shared with l, which is safe because no operation mutates a
// bucket slice in place.
func (l Ledger) withBucket(key MonthKey, items []Entry) Ledger {
	out := make(Ledger, len(l)+1)
	for k, v := range l {
		out[k] = v
	}
	out[key] = items
	return out
}

// AddEntry appends a new entry built from d to the bucket for key, creating
// the bucket if needed.
func AddEntry(l Ledger, key MonthKey, d Draft, id string, now time.Time) (Ledger, Entry) {
	e := Entry{
		ID:          id,
		Name:        d.Name,
		Amount:      d.Amount,
		Type:        d.Type,
		Color:       d.Color,
		Description: d.Description,
		Category:    d.Category,
		IsRecurring: d.IsRecurring,
		Date:        now,
		Count:       1,
	}
	bucket := make([]Entry, 0, len(l[key])+1)
	bucket = append(bucket, l[key]...)
	bucket = append(bucket, e)
	return l.withBucket(key, bucket), e
}

// EditEntry applies p to the entry with the given id in the bucket for key.
// The second result is false, and l is returned as is, when no entry matches.
func EditEntry(l Ledger, key MonthKey, id string, p Patch) (Ledger, bool) {
	idx := slices.IndexFunc(l[key], func(e Entry) bool { return e.ID == id })
	if idx < 0 {
		return l, false
	}
	bucket := slices.Clone(l[key])
	bucket[idx] = p.apply(bucket[idx])
	return l.withBucket(key, bucket), true
}

// RemoveEntry deletes the entry with the given id from the bucket for key,
// keeping the order of the rest.
func RemoveEntry(l Ledger, key MonthKey, id string) (Ledger, bool) {
	idx := slices.IndexFunc(l[key], func(e Entry) bool { return e.ID == id })
	if idx < 0 {
		return l, false
	}
	bucket := slices.Delete(slices.Clone(l[key]), idx, idx+1)
	return l.withBucket(key, bucket), true
}

// AdvanceMonth seeds the bucket for to with fresh copies of the recurring
// entries of from. It only runs while to is absent or empty, so repeated
// calls for the same destination are no-ops. The second result reports
// whether anything was copied.
func AdvanceMonth(l Ledger, from, to MonthKey, newID func() string, now time.Time) (Ledger, bool) {
	if len(l[to]) > 0 {
		return l, false
	}
	var seeded []Entry
	for _, e := range l[from] {
		if !e.IsRecurring {
			continue
		}
		e.ID = newID()
		e.Date = now
		e.Count = 1
		seeded = append(seeded, e)
	}
	if len(seeded) == 0 {
		return l, false
	}
	return l.withBucket(to, seeded), true
}

// ValidationError describes the first invariant violation found by Validate.
type ValidationError struct {
	Month  MonthKey
	Index  int
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s entry %d: %s", e.Month, e.Index, e.Reason)
}

// Validate checks the entry invariants: a non-empty name, a finite
// non-negative amount, a known type and ids unique within each bucket.
func Validate(l Ledger) error {
	for _, key := range l.Months() {
		seen := make(map[string]struct{}, len(l[key]))
		for i, e := range l[key] {
			fail := func(reason string) error {
				return &ValidationError{Month: key, Index: i, Reason: reason}
			}
			switch {
			case e.ID == "":
				return fail("id is required")
			case strings.TrimSpace(e.Name) == "":
				return fail("name is required")
			case math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0):
				return fail("amount must be a finite number")
			case e.Amount < 0:
				return fail("amount must not be negative")
			case !e.Type.Valid():
				return fail(fmt.Sprintf("unknown type %q", e.Type))
			}
			if _, dup := seen[e.ID]; dup {
				return fail(fmt.Sprintf("duplicate id %q", e.ID))
			}
			seen[e.ID] = struct{}{}
		}
	}
	return nil
}
