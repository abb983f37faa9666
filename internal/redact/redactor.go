// Package redact removes work-call traces from the shared system call
// history so work call metadata never shows up device-wide.
package redact

import (
	"context"
	"log/slog"
	"time"

	"github.com/sebas/callview/internal/directory"
	"github.com/sebas/callview/internal/history"
	"github.com/sebas/callview/internal/watch"
)

// RoleManagement is exempt from redaction
const RoleManagement = "Management"

// Config tunes the redaction timing
type Config struct {
	// WatchTimeout bounds how long to wait for a late-written history row
	WatchTimeout time.Duration

	// MissedRewritePause is the delay between rewriting a missed row and
	// deleting it, giving the OS badge state time to settle
	MissedRewritePause time.Duration
}

// DefaultConfig returns production timing
func DefaultConfig() Config {
	return Config{
		WatchTimeout:       8 * time.Second,
		MissedRewritePause: 500 * time.Millisecond,
	}
}

// Redactor deletes a work call's row from the system history. Best-effort
// throughout: failures and timeouts are swallowed, never retried beyond the
// single bounded watch.
type Redactor struct {
	store history.Store
	role  string
	cfg   Config
}

// NewRedactor creates a redactor acting as the given user role
func NewRedactor(store history.Store, role string, cfg Config) *Redactor {
	if cfg.WatchTimeout <= 0 {
		cfg.WatchTimeout = DefaultConfig().WatchTimeout
	}
	return &Redactor{store: store, role: role, cfg: cfg}
}

// Redact removes the most recent history row for number, then installs a
// timeout-bound watch that deletes a late-written row once it appears; the
// watch deregisters on first deletion or on timeout, whichever comes first.
// The watch runs even after a synchronous match, since an older row for the
// same number may have matched while the OS had not yet written the row for
// the call that just ended. Skipped entirely for Management users.
func (r *Redactor) Redact(ctx context.Context, number string) {
	if r.role == RoleManagement {
		slog.Debug("[Redact] Skipped for management role", "number", number)
		return
	}

	r.deleteMostRecent(ctx, number)

	// The OS may write its row slightly after termination.
	row, outcome := watch.Await(ctx, r.cfg.WatchTimeout,
		r.store.Subscribe,
		func(row history.Row) bool {
			return directory.SuffixesEqual(row.Number, number)
		},
	)
	switch outcome {
	case watch.Matched:
		r.deleteRow(ctx, row)
	case watch.TimedOut:
		slog.Debug("[Redact] Watch timed out", "number", number)
	case watch.Cancelled:
	}
}

// deleteMostRecent finds and deletes the newest matching row, if any
func (r *Redactor) deleteMostRecent(ctx context.Context, number string) {
	row, ok, err := r.store.MostRecentByNumber(ctx, number)
	if err != nil {
		slog.Warn("[Redact] History query failed", "number", number, "error", err)
		return
	}
	if !ok {
		return
	}
	r.deleteRow(ctx, row)
}

func (r *Redactor) deleteRow(ctx context.Context, row history.Row) {
	// A missed row feeds the stale missed-call badge; rewrite it to a read
	// incoming call before deleting so the badge clears.
	if row.Type == history.TypeMissed {
		row.Type = history.TypeIncoming
		row.Read = true
		if err := r.store.Update(ctx, row); err != nil {
			slog.Warn("[Redact] Rewrite failed", "row_id", row.ID, "error", err)
		}
		if r.cfg.MissedRewritePause > 0 {
			select {
			case <-time.After(r.cfg.MissedRewritePause):
			case <-ctx.Done():
				return
			}
		}
	}

	if err := r.store.Delete(ctx, row.ID); err != nil {
		slog.Warn("[Redact] Delete failed", "row_id", row.ID, "error", err)
		return
	}
	slog.Info("[Redact] History row removed", "row_id", row.ID)
}
