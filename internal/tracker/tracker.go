// Package tracker is the client-side view of one user's ledger: the month
// being looked at, the edits made to it and the pushes those edits trigger.
package tracker

import (
	"errors"
	"slices"
	"sync"
	"time"

	"orbit/internal/aggregate"
	"orbit/internal/ledger"
	"orbit/internal/shield"
	"orbit/internal/syncq"
	"orbit/internal/uuid"
)

// ErrReadOnly is returned when editing a month before the real present.
var ErrReadOnly = errors.New("tracker: past months are read-only")

// Enqueuer accepts snapshots for pushing. *syncq.Queue satisfies it.
type Enqueuer interface {
	Enqueue(snapshot ledger.Ledger) (uint64, error)
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithIDs replaces the entry id generator.
func WithIDs(gen uuid.Generator) Option {
	return func(t *Tracker) { t.newID = gen }
}

// WithQueue sets where snapshots are pushed after each change.
func WithQueue(q Enqueuer) Option {
	return func(t *Tracker) { t.queue = q }
}

// WithReporter sets where failures to enqueue a push are reported.
func WithReporter(r syncq.ErrorReporter) Option {
	return func(t *Tracker) { t.reporter = r }
}

// Tracker holds a ledger snapshot and a viewed month. It is safe for
// concurrent use.
type Tracker struct {
	now      func() time.Time
	newID    uuid.Generator
	queue    Enqueuer
	reporter syncq.ErrorReporter

	mu     sync.Mutex
	ledger ledger.Ledger
	real   ledger.MonthKey
	view   ledger.MonthKey
}

// New creates a Tracker over initial, viewing the current month.
func New(initial ledger.Ledger, opts ...Option) *Tracker {
	t := &Tracker{now: time.Now, newID: uuid.New}
	for _, opt := range opts {
		opt(t)
	}
	if initial == nil {
		initial = ledger.Ledger{}
	}
	t.ledger = initial
	t.real = ledger.KeyFor(t.now())
	t.view = t.real
	return t
}

// Snapshot returns the current ledger. It must not be modified.
func (t *Tracker) Snapshot() ledger.Ledger {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ledger
}

// CurrentKey returns the viewed month.
func (t *Tracker) CurrentKey() ledger.MonthKey {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

// Items returns a copy of the viewed month's entries.
func (t *Tracker) Items() []ledger.Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.ledger.Items(t.view))
}

// IsRealPresent reports whether the viewed month is the current calendar month.
func (t *Tracker) IsRealPresent() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view == t.real
}

// IsFuture reports whether the viewed month is after the current calendar month.
func (t *Tracker) IsFuture() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.real.Before(t.view)
}

// CanEdit reports whether the viewed month accepts edits.
func (t *Tracker) CanEdit() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.editable()
}

func (t *Tracker) editable() bool {
	return !t.view.Before(t.real)
}

// Add appends an entry to the viewed month and pushes the new snapshot.
func (t *Tracker) Add(d ledger.Draft) (ledger.Entry, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.editable() {
		return ledger.Entry{}, ErrReadOnly
	}
	next, e := ledger.AddEntry(t.ledger, t.view, d, t.newID(), t.now())
	t.commit(next)
	return e, nil
}

// Edit patches an entry of the viewed month. It reports false, and pushes
// nothing, when id is not in that month.
func (t *Tracker) Edit(id string, p ledger.Patch) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.editable() {
		return false, ErrReadOnly
	}
	next, ok := ledger.EditEntry(t.ledger, t.view, id, p)
	if ok {
		t.commit(next)
	}
	return ok, nil
}

// Remove deletes an entry of the viewed month. It reports false, and pushes
// nothing, when id is not in that month.
func (t *Tracker) Remove(id string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.editable() {
		return false, ErrReadOnly
	}
	next, ok := ledger.RemoveEntry(t.ledger, t.view, id)
	if ok {
		t.commit(next)
	}
	return ok, nil
}

// Navigate moves the view by direction months. Moving forward first seeds
// the next month with the viewed month's recurring entries. Positions more
// than one month past the real present are refused: Navigate returns false
// and the view stays put, although seeding may already have happened.
func (t *Tracker) Navigate(direction int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	target := t.view.Add(direction)
	if direction > 0 {
		next, seeded := ledger.AdvanceMonth(t.ledger, t.view, target, t.newID, t.now())
		if seeded {
			t.commit(next)
		}
		if t.real.Next().Before(target) {
			return false
		}
	}
	t.view = target
	return true
}

// JumpToPresent moves the view back to the current calendar month.
func (t *Tracker) JumpToPresent() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.real = ledger.KeyFor(t.now())
	t.view = t.real
}

// Stats summarises the viewed month.
func (t *Tracker) Stats() aggregate.Summary {
	t.mu.Lock()
	l, key := t.ledger, t.view
	t.mu.Unlock()
	return aggregate.Summarize(l, key)
}

// Shields reports the viewed month's spend against limits.
func (t *Tracker) Shields(limits shield.Map) []shield.Shield {
	t.mu.Lock()
	items := t.ledger.Items(t.view)
	t.mu.Unlock()
	return shield.Report(items, limits)
}

// commit swaps in next and hands it to the queue. Callers hold t.mu, which
// keeps enqueue order equal to commit order.
func (t *Tracker) commit(next ledger.Ledger) {
	t.ledger = next
	if t.queue == nil {
		return
	}
	if seq, err := t.queue.Enqueue(next); err != nil && t.reporter != nil {
		t.reporter.Report(seq, err)
	}
}
