// Package syncq pushes ledger snapshots to the server in order.
//
// Every Enqueue gets a sequence number. One worker goroutine sends snapshots
// in sequence order and only ever sends the newest one waiting, so snapshots
// queued while a push is in flight collapse into a single push. The server
// therefore never sees an older snapshot after a newer one.
package syncq

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"orbit/internal/ledger"
	"orbit/internal/logger"
)

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("syncq: queue is closed")

// DefaultTimeout bounds a single push.
const DefaultTimeout = 10 * time.Second

// Pusher sends one full snapshot to the server.
type Pusher interface {
	Push(ctx context.Context, snapshot ledger.Ledger) error
}

// ErrorReporter receives every failed push. Failed pushes are not retried.
type ErrorReporter interface {
	Report(seq uint64, err error)
}

// ReporterFunc adapts a function to ErrorReporter.
type ReporterFunc func(seq uint64, err error)

// Report calls f.
func (f ReporterFunc) Report(seq uint64, err error) { f(seq, err) }

// LogReporter logs failed pushes.
type LogReporter struct {
	log *zap.SugaredLogger
}

// NewLogReporter creates a reporter that writes to log.
func NewLogReporter(log *zap.SugaredLogger) *LogReporter {
	return &LogReporter{log: log}
}

// Report implements ErrorReporter.
func (r *LogReporter) Report(seq uint64, err error) {
	r.log.Warnw("Ledger sync failed", "seq", seq, "error", err)
}

// Status is the user-visible sync state.
type Status struct {
	Enqueued  uint64 // last sequence handed to Enqueue
	Attempted uint64 // every sequence up to here has been sent or superseded
	Sent      uint64 // last sequence the server accepted
	Failed    uint64 // last sequence that failed, 0 if none
	LastError error
}

// Pending reports whether some enqueued snapshot has not been attempted yet.
func (s Status) Pending() bool { return s.Attempted < s.Enqueued }

type item struct {
	seq      uint64
	snapshot ledger.Ledger
}

// Option configures a Queue.
type Option func(*Queue)

// WithTimeout sets the per-push timeout.
func WithTimeout(d time.Duration) Option {
	return func(q *Queue) { q.timeout = d }
}

// WithReporter sets where failed pushes are reported. The default logs them
// to the "sync" logger.
func WithReporter(r ErrorReporter) Option {
	return func(q *Queue) { q.reporter = r }
}

// Queue is an ordered, coalescing push queue. It is safe for concurrent use.
type Queue struct {
	pusher   Pusher
	reporter ErrorReporter
	timeout  time.Duration

	mu      sync.Mutex
	pending *item
	status  Status
	closed  bool
	changed chan struct{} // closed and replaced after each attempt

	wake chan struct{}
	done chan struct{}
}

// New starts a queue that sends through pusher.
func New(pusher Pusher, opts ...Option) *Queue {
	q := &Queue{
		pusher:   pusher,
		reporter: NewLogReporter(logger.Named("sync")),
		timeout:  DefaultTimeout,
		changed: make(chan struct{}),
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	go q.run()
	return q
}

// Enqueue schedules snapshot for pushing and returns its sequence number.
// It never waits on the network. The snapshot must not be mutated afterwards.
func (q *Queue) Enqueue(snapshot ledger.Ledger) (uint64, error) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return 0, ErrClosed
	}
	q.status.Enqueued++
	seq := q.status.Enqueued
	q.pending = &item{seq: seq, snapshot: snapshot}
	q.mu.Unlock()

	q.signal()
	return seq, nil
}

// Status returns the current sync state.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.status
}

// Flush waits until every snapshot enqueued before the call has been attempted.
func (q *Queue) Flush(ctx context.Context) error {
	q.mu.Lock()
	target := q.status.Enqueued
	for q.status.Attempted < target {
		ch := q.changed
		q.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
		q.mu.Lock()
	}
	q.mu.Unlock()
	return nil
}

// Close sends the last waiting snapshot, then stops the worker. Calling it
// again is a no-op.
func (q *Queue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
	<-q.done
	return nil
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		next := q.pending
		q.pending = nil
		closed := q.closed
		q.mu.Unlock()

		if next == nil {
			if closed {
				return
			}
			<-q.wake
			continue
		}
		q.push(next)
	}
}

func (q *Queue) push(it *item) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	err := q.pusher.Push(ctx, it.snapshot)
	cancel()

	// Report before waking Flush so a flushed failure has been seen.
	if err != nil && q.reporter != nil {
		q.reporter.Report(it.seq, err)
	}

	q.mu.Lock()
	q.status.Attempted = it.seq
	if err != nil {
		q.status.Failed = it.seq
		q.status.LastError = err
	} else {
		q.status.Sent = it.seq
	}
	close(q.changed)
	q.changed = make(chan struct{})
	q.mu.Unlock()
}
