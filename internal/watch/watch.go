// Package watch provides a cancellable, timeout-bound change subscription
// that resolves to exactly one of matched, timed-out, or cancelled, and
// always deregisters itself on any outcome.
package watch

import (
	"context"
	"time"
)

// Outcome is how an Await call resolved
type Outcome int

const (
	// Matched means a notification satisfied the predicate before the deadline
	Matched Outcome = iota
	// TimedOut means the wall-clock timeout elapsed first
	TimedOut
	// Cancelled means the context was cancelled first
	Cancelled
)

// String returns the string representation of the outcome
func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case TimedOut:
		return "timed_out"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Await subscribes to a change source and blocks until a notification
// matches, the timeout elapses, or ctx is cancelled. The subscription is
// released before returning regardless of outcome, so a watcher can never
// leak its registration.
//
// subscribe must register ch with the source and return the deregister
// function. Notifications that fail the predicate are discarded.
func Await[T any](ctx context.Context, timeout time.Duration, subscribe func(ch chan<- T) (cancel func()), match func(T) bool) (T, Outcome) {
	ch := make(chan T, 16)
	unsubscribe := subscribe(ch)
	defer unsubscribe()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var zero T
	for {
		select {
		case v := <-ch:
			if match(v) {
				return v, Matched
			}
		case <-timer.C:
			return zero, TimedOut
		case <-ctx.Done():
			return zero, Cancelled
		}
	}
}
