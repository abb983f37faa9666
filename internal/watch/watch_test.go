package watch

import (
	"context"
	"sync"
	"testing"
	"time"
)

// source is a minimal notification fan-out for the tests
type source struct {
	mu   sync.Mutex
	subs map[int]chan<- int
	seq  int
}

func newSource() *source {
	return &source{subs: make(map[int]chan<- int)}
}

func (s *source) subscribe(ch chan<- int) (cancel func()) {
	s.mu.Lock()
	id := s.seq
	s.seq++
	s.subs[id] = ch
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *source) notify(v int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

func (s *source) subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func TestAwaitMatched(t *testing.T) {
	src := newSource()
	go func() {
		time.Sleep(10 * time.Millisecond)
		src.notify(1)
		src.notify(42)
	}()

	v, outcome := Await(context.Background(), time.Second, src.subscribe,
		func(v int) bool { return v == 42 })
	if outcome != Matched {
		t.Fatalf("outcome = %s, want matched", outcome)
	}
	if v != 42 {
		t.Errorf("value = %d, want 42", v)
	}
	if got := src.subscribers(); got != 0 {
		t.Errorf("subscribers after return = %d, want 0", got)
	}
}

func TestAwaitDiscardsNonMatching(t *testing.T) {
	src := newSource()
	go func() {
		time.Sleep(5 * time.Millisecond)
		for i := 0; i < 5; i++ {
			src.notify(i)
		}
	}()

	_, outcome := Await(context.Background(), 100*time.Millisecond, src.subscribe,
		func(v int) bool { return v == 99 })
	if outcome != TimedOut {
		t.Errorf("outcome = %s, want timed_out when nothing matches", outcome)
	}
}

func TestAwaitTimedOut(t *testing.T) {
	src := newSource()
	start := time.Now()
	_, outcome := Await(context.Background(), 50*time.Millisecond, src.subscribe,
		func(int) bool { return true })
	if outcome != TimedOut {
		t.Fatalf("outcome = %s, want timed_out", outcome)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("waited %v, want a bounded wait", elapsed)
	}
	if got := src.subscribers(); got != 0 {
		t.Errorf("subscribers after timeout = %d, want 0", got)
	}
}

func TestAwaitCancelled(t *testing.T) {
	src := newSource()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, outcome := Await(ctx, time.Second, src.subscribe,
		func(int) bool { return true })
	if outcome != Cancelled {
		t.Fatalf("outcome = %s, want cancelled", outcome)
	}
	if got := src.subscribers(); got != 0 {
		t.Errorf("subscribers after cancel = %d, want 0", got)
	}
}

func TestOutcomeString(t *testing.T) {
	tests := []struct {
		o    Outcome
		want string
	}{
		{Matched, "matched"},
		{TimedOut, "timed_out"},
		{Cancelled, "cancelled"},
		{Outcome(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.o.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %q, want %q", int(tt.o), got, tt.want)
		}
	}
}
