package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sebas/callview/internal/directory"
)

// Identity is a resolved display identity for a number
type Identity struct {
	Name                string
	FamilyHead          string
	RelationshipManager string
	Work                bool
}

type resolveJob struct {
	slot   Slot
	number string
	stamp  uint64
}

// IdentityResolver resolves caller identity asynchronously against the
// two-tier directory: personal first, then work by normalized suffix. A
// monotonic per-slot stamp makes "is this result still relevant" explicit:
// a result whose stamp is no longer the newest for its slot is discarded,
// so a slow lookup can never corrupt a view that moved on to another call.
type IdentityResolver struct {
	personal directory.Personal
	work     directory.Work

	mu     sync.Mutex
	jobs   chan resolveJob
	closed bool
	stamp  [2]atomic.Uint64

	apply func(slot Slot, number string, id Identity)

	lookupTimeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewIdentityResolver starts the resolver's worker pool. apply is invoked
// from worker goroutines with results that passed the staleness check.
func NewIdentityResolver(personal directory.Personal, work directory.Work, workers int, apply func(slot Slot, number string, id Identity)) *IdentityResolver {
	if workers <= 0 {
		workers = 2
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &IdentityResolver{
		personal:      personal,
		work:          work,
		jobs:          make(chan resolveJob, 64),
		apply:         apply,
		lookupTimeout: 3 * time.Second,
		ctx:           ctx,
		cancel:        cancel,
	}
	for i := 0; i < workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	return r
}

// Resolve requests an asynchronous resolution for the slot. Never blocks
// the event path; under sustained overload the oldest requests are simply
// superseded.
func (r *IdentityResolver) Resolve(slot Slot, number string) {
	if number == "" {
		return
	}
	job := resolveJob{slot: slot, number: number, stamp: r.stamp[slot].Add(1)}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	select {
	case r.jobs <- job:
	default:
		slog.Warn("[Identity] Resolution queue full, dropping", "slot", slot, "number", number)
	}
}

// Close stops the workers. In-flight lookups are abandoned, not awaited;
// requests arriving after Close are discarded.
func (r *IdentityResolver) Close() {
	r.cancel()
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.jobs)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

func (r *IdentityResolver) worker() {
	defer r.wg.Done()
	for job := range r.jobs {
		if r.ctx.Err() != nil {
			return
		}
		id, ok := r.lookup(job.number)
		if !ok {
			continue
		}
		// Superseded requests are discarded, not applied.
		if r.stamp[job.slot].Load() != job.stamp {
			slog.Debug("[Identity] Stale result discarded", "slot", job.slot, "number", job.number)
			continue
		}
		r.apply(job.slot, job.number, id)
	}
}

// lookup runs the two-tier query. All failures degrade to "no identity";
// the raw number stays on the view.
func (r *IdentityResolver) lookup(number string) (Identity, bool) {
	ctx, cancel := context.WithTimeout(r.ctx, r.lookupTimeout)
	defer cancel()

	if r.personal != nil {
		contact, err := r.personal.Lookup(ctx, number)
		switch {
		case err == nil:
			return Identity{Name: contact.Name}, true
		case errors.Is(err, directory.ErrNotFound):
		default:
			slog.Debug("[Identity] Personal lookup failed", "number", number, "error", err)
		}
	}

	if r.work != nil {
		suffix := directory.NormalizeSuffix(number)
		if suffix == "" {
			return Identity{}, false
		}
		contact, err := r.work.Lookup(ctx, suffix)
		switch {
		case err == nil:
			return Identity{
				Name:                contact.Name,
				FamilyHead:          contact.FamilyHead,
				RelationshipManager: contact.RelationshipManager,
				Work:                true,
			}, true
		case errors.Is(err, directory.ErrNotFound):
		default:
			slog.Debug("[Identity] Work lookup failed", "number", number, "error", err)
		}
	}
	return Identity{}, false
}
