package syncq

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"orbit/internal/ledger"
)

var oct = ledger.MonthKey{Year: 2026, Month: time.October}

func snapshot(n int) ledger.Ledger {
	return ledger.Ledger{oct: {{ID: strconv.Itoa(n), Name: "x", Type: ledger.TypeExpense}}}
}

func label(l ledger.Ledger) string {
	return l[oct][0].ID
}

// recordingPusher records pushed snapshot labels. When gate is set, each push
// announces itself on started and waits for a value on gate.
type recordingPusher struct {
	mu      sync.Mutex
	pushed  []string
	started chan string
	gate    chan struct{}
	fail    map[string]error
}

func (p *recordingPusher) Push(ctx context.Context, l ledger.Ledger) error {
	id := label(l)
	if p.started != nil {
		p.started <- id
	}
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.fail[id]; err != nil {
		return err
	}
	p.pushed = append(p.pushed, id)
	return nil
}

func (p *recordingPusher) labels() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.pushed...)
}

func TestQueue_CoalescesWhileInFlight(t *testing.T) {
	p := &recordingPusher{started: make(chan string, 10), gate: make(chan struct{})}
	q := New(p)
	defer q.Close()

	if _, err := q.Enqueue(snapshot(1)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := <-p.started; got != "1" {
		t.Fatalf("expected first push of 1, got %s", got)
	}

	// Queued behind the in-flight push; only the newest survives.
	for i := 2; i <= 4; i++ {
		if _, err := q.Enqueue(snapshot(i)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	p.gate <- struct{}{}
	if got := <-p.started; got != "4" {
		t.Fatalf("expected coalesced push of 4, got %s", got)
	}
	p.gate <- struct{}{}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := q.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}

	got := p.labels()
	if len(got) != 2 || got[0] != "1" || got[1] != "4" {
		t.Errorf("expected pushes [1 4], got %v", got)
	}
	st := q.Status()
	if st.Enqueued != 4 || st.Attempted != 4 || st.Sent != 4 || st.Pending() {
		t.Errorf("unexpected status %+v", st)
	}
}

func TestQueue_NeverSendsOlderAfterNewer(t *testing.T) {
	p := &recordingPusher{}
	q := New(p)

	for i := 1; i <= 200; i++ {
		if _, err := q.Enqueue(snapshot(i)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got := p.labels()
	if len(got) == 0 || got[len(got)-1] != "200" {
		t.Fatalf("expected the newest snapshot to be sent last, got %v", got)
	}
	prev := 0
	for _, l := range got {
		n, _ := strconv.Atoi(l)
		if n <= prev {
			t.Fatalf("snapshot %d sent after %d", n, prev)
		}
		prev = n
	}
}

func TestQueue_ReportsFailures(t *testing.T) {
	boom := errors.New("server down")
	p := &recordingPusher{fail: map[string]error{"1": boom}}

	var mu sync.Mutex
	var reported []uint64
	q := New(p, WithReporter(ReporterFunc(func(seq uint64, err error) {
		mu.Lock()
		defer mu.Unlock()
		if !errors.Is(err, boom) {
			t.Errorf("unexpected error %v", err)
		}
		reported = append(reported, seq)
	})))
	defer q.Close()

	_, _ = q.Enqueue(snapshot(1))
	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	st := q.Status()
	if st.Failed != 1 || !errors.Is(st.LastError, boom) || st.Sent != 0 {
		t.Errorf("unexpected status %+v", st)
	}

	// No retry: the next push is a new snapshot.
	_, _ = q.Enqueue(snapshot(2))
	_ = q.Flush(context.Background())
	if got := p.labels(); len(got) != 1 || got[0] != "2" {
		t.Errorf("expected only snapshot 2 accepted, got %v", got)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(reported) != 1 || reported[0] != 1 {
		t.Errorf("expected seq 1 reported once, got %v", reported)
	}
}

func TestQueue_LogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	p := &recordingPusher{fail: map[string]error{"1": errors.New("server down")}}
	q := New(p, WithReporter(NewLogReporter(zap.New(core).Sugar())))
	defer q.Close()

	_, _ = q.Enqueue(snapshot(1))
	if err := q.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	entries := logs.FilterMessage("Ledger sync failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected one logged failure, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["seq"] != uint64(1) || fields["error"] != "server down" {
		t.Errorf("unexpected fields %v", fields)
	}
}

func TestNew_LogsByDefault(t *testing.T) {
	q := New(&recordingPusher{})
	defer q.Close()

	if _, ok := q.reporter.(*LogReporter); !ok {
		t.Errorf("expected a *LogReporter by default, got %T", q.reporter)
	}
}

func TestQueue_PushTimeout(t *testing.T) {
	p := &recordingPusher{gate: make(chan struct{})}
	errs := make(chan error, 1)
	q := New(p, WithTimeout(20*time.Millisecond), WithReporter(ReporterFunc(func(_ uint64, err error) {
		errs <- err
	})))
	defer q.Close()

	_, _ = q.Enqueue(snapshot(1))
	select {
	case err := <-errs:
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected deadline exceeded, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("push was not bounded by the timeout")
	}
}

func TestQueue_FlushHonoursContext(t *testing.T) {
	p := &recordingPusher{started: make(chan string, 1), gate: make(chan struct{})}
	q := New(p)

	_, _ = q.Enqueue(snapshot(1))
	<-p.started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := q.Flush(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if !q.Status().Pending() {
		t.Error("expected the push to still be pending")
	}

	p.gate <- struct{}{}
	_ = q.Close()
}

func TestQueue_Close(t *testing.T) {
	p := &recordingPusher{}
	q := New(p)

	_, _ = q.Enqueue(snapshot(1))
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if got := p.labels(); len(got) != 1 {
		t.Errorf("expected pending snapshot drained on close, got %v", got)
	}
	if _, err := q.Enqueue(snapshot(2)); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}
