package calllog

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sebas/callview/internal/directory"
	"github.com/sebas/callview/internal/telecom"
)

// Scheduler accepts upload jobs for persisted entries. Implemented by the
// uploader package; the jobs are network-constrained and retried there.
type Scheduler interface {
	ScheduleEntry(entryID string)
}

// Policy configures classification behavior
type Policy struct {
	// LogOnLookupFailure writes an entry with the raw number when the work
	// directory lookup itself fails, instead of treating the call as
	// non-work. Off by default.
	LogOnLookupFailure bool

	// LookupTimeout bounds the work directory query
	LookupTimeout time.Duration
}

// DefaultPolicy returns the default classification policy
func DefaultPolicy() Policy {
	return Policy{LookupTimeout: 3 * time.Second}
}

// TerminatedCall carries the facts the logger needs about an ended call
type TerminatedCall struct {
	Number            string
	Direction         telecom.Direction
	ConnectTimeMillis int64
}

// Logger classifies terminated calls and persists work-call entries
type Logger struct {
	work      directory.Work
	store     Store
	scheduler Scheduler
	policy    Policy
	now       func() time.Time
}

// NewLogger creates a call logger with its collaborators injected
func NewLogger(work directory.Work, store Store, scheduler Scheduler, policy Policy) *Logger {
	if policy.LookupTimeout <= 0 {
		policy.LookupTimeout = 3 * time.Second
	}
	return &Logger{
		work:      work,
		store:     store,
		scheduler: scheduler,
		policy:    policy,
		now:       time.Now,
	}
}

// LogIfWork classifies the call and persists an entry when it matches the
// work directory. Returns whether the call was treated as a work call.
// All persistence failures are logged and swallowed.
func (l *Logger) LogIfWork(ctx context.Context, call TerminatedCall) bool {
	suffix := directory.NormalizeSuffix(call.Number)
	if suffix == "" {
		return false
	}

	lctx, cancel := context.WithTimeout(ctx, l.policy.LookupTimeout)
	defer cancel()

	contact, err := l.work.Lookup(lctx, suffix)
	name := contact.Name
	switch {
	case err == nil:
	case errors.Is(err, directory.ErrNotFound):
		return false
	default:
		if !l.policy.LogOnLookupFailure {
			slog.Warn("[CallLog] Work lookup failed, treating as non-work", "number", call.Number, "error", err)
			return false
		}
		slog.Warn("[CallLog] Work lookup failed, logging with raw number", "number", call.Number, "error", err)
		name = call.Number
	}

	entry := Entry{
		ID:              uuid.NewString(),
		Name:            name,
		Number:          call.Number,
		DurationSeconds: l.duration(call),
		Timestamp:       l.now(),
		Direction:       deriveDirection(call),
		Synced:          false,
	}

	if err := l.store.Insert(ctx, entry); err != nil {
		slog.Error("[CallLog] Failed to persist entry", "number", call.Number, "error", err)
		return true
	}
	slog.Info("[CallLog] Work call logged",
		"entry_id", entry.ID,
		"direction", entry.Direction,
		"duration_s", entry.DurationSeconds,
	)

	if l.scheduler != nil {
		l.scheduler.ScheduleEntry(entry.ID)
	}
	return true
}

func (l *Logger) duration(call TerminatedCall) int64 {
	if call.ConnectTimeMillis == 0 {
		return 0
	}
	d := (l.now().UnixMilli() - call.ConnectTimeMillis) / 1000
	if d < 0 {
		return 0
	}
	return d
}

// deriveDirection maps termination facts to the logged direction: an
// incoming call that never connected is a missed call.
func deriveDirection(call TerminatedCall) CallDirection {
	if call.Direction == telecom.DirectionIncoming {
		if call.ConnectTimeMillis > 0 {
			return DirectionIncoming
		}
		return DirectionMissed
	}
	return DirectionOutgoing
}
