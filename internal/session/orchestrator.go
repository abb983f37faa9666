package session

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sebas/callview/internal/calllog"
	"github.com/sebas/callview/internal/directory"
	"github.com/sebas/callview/internal/events"
	"github.com/sebas/callview/internal/redact"
	"github.com/sebas/callview/internal/telecom"
)

// Orchestrator owns the live multi-call session state. It consumes the
// platform's serialized event sequence, maintains the registered-call set,
// and publishes the single CallView snapshot through an atomic reference:
// observers always read latest-wins, with no buffering.
//
// Collaborators are injected at construction; the orchestrator holds no
// ambient global state.
type Orchestrator struct {
	// mu serializes the event-handling path. The platform already delivers
	// events on one logical sequence; the lock covers the narrow patch
	// paths (identity apply, audio sync) that arrive from elsewhere.
	mu sync.Mutex

	registry *Registry
	view     atomic.Pointer[CallView]
	version  atomic.Uint64
	audio    telecom.AudioState

	resolver  *IdentityResolver
	logger    *calllog.Logger
	redactor  *redact.Redactor
	publisher events.Publisher

	ctx    context.Context
	cancel context.CancelFunc
	bg     sync.WaitGroup
}

// Options configures an Orchestrator
type Options struct {
	// Personal and Work are the identity lookup tiers; both nil disables
	// identity resolution entirely
	Personal directory.Personal
	Work     directory.Work

	// IdentityWorkers sizes the resolution worker pool
	IdentityWorkers int

	// Logger classifies and persists terminated work calls; nil disables
	Logger *calllog.Logger

	// Redactor removes work-call traces from the system history; nil disables
	Redactor *redact.Redactor

	// Publisher receives lifecycle events; nil means events are discarded
	Publisher events.Publisher
}

// NewOrchestrator creates an orchestrator with its collaborators injected
func NewOrchestrator(opts Options) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		registry:  NewRegistry(),
		logger:    opts.Logger,
		redactor:  opts.Redactor,
		publisher: opts.Publisher,
		ctx:       ctx,
		cancel:    cancel,
	}
	if o.publisher == nil {
		o.publisher = events.NoopPublisher{}
	}
	if opts.Personal != nil || opts.Work != nil {
		o.resolver = NewIdentityResolver(opts.Personal, opts.Work, opts.IdentityWorkers, o.ApplyIdentity)
	}
	return o
}

var _ telecom.Listener = (*Orchestrator)(nil)

// View returns the current published snapshot, nil when no calls exist
func (o *Orchestrator) View() *CallView {
	return o.view.Load()
}

// Registry exposes the registered-call set for read-side consumers
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// Close stops background work. In-flight classification finishes first.
func (o *Orchestrator) Close() {
	o.cancel()
	if o.resolver != nil {
		o.resolver.Close()
	}
	o.bg.Wait()
}

// --- telecom.Listener ---

// OnCallAdded registers the handle and recomputes the view
func (o *Orchestrator) OnCallAdded(call *telecom.Call) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.registry.Add(call)
	slog.Info("[Session] Call added",
		"call_id", call.ID,
		"number", call.Number(),
		"state", call.State(),
		"registered", o.registry.Count(),
	)
	o.publisher.Publish(events.NewCallAdded(call.ID, call.Number(), call.Direction().String(), call.State().String()))
	o.recompute()
}

// OnCallRemoved fires the terminal pipeline: log, redact, deregister, then
// recompute or clear. Classification and redaction run on a background
// goroutine and never block the event path.
func (o *Orchestrator) OnCallRemoved(call *telecom.Call) {
	o.mu.Lock()
	if !o.registry.Remove(call.ID) {
		o.mu.Unlock()
		return
	}
	slog.Info("[Session] Call removed",
		"call_id", call.ID,
		"number", call.Number(),
		"registered", o.registry.Count(),
	)

	terminated := calllog.TerminatedCall{
		Number:            call.Number(),
		Direction:         call.Direction(),
		ConnectTimeMillis: call.ConnectTimeMillis(),
	}
	callID := call.ID

	if o.registry.Count() == 0 {
		o.clearView()
	} else {
		o.recompute()
	}
	o.mu.Unlock()

	o.bg.Add(1)
	go func() {
		defer o.bg.Done()
		work := false
		if o.logger != nil {
			// Classification runs on its own context: the log write is the
			// billable record and a shutdown must not abort it. The lookup
			// is already bounded by the logger's timeout.
			work = o.logger.LogIfWork(context.Background(), terminated)
		}
		if work && o.redactor != nil {
			o.redactor.Redact(o.ctx, terminated.Number)
		}
		o.publisher.Publish(events.NewCallEnded(
			callID,
			terminated.Number,
			terminated.Direction.String(),
			terminatedDuration(terminated),
			work,
		))
	}()
}

// OnCallStateChanged recomputes on any per-call transition
func (o *Orchestrator) OnCallStateChanged(call *telecom.Call, previous telecom.CallState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.registry.Get(call.ID); !ok {
		return
	}
	slog.Debug("[Session] State changed",
		"call_id", call.ID,
		"from", previous,
		"to", call.State(),
	)
	o.recompute()
}

// OnCallDetailsChanged recomputes when number or capabilities change
func (o *Orchestrator) OnCallDetailsChanged(call *telecom.Call) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.registry.Get(call.ID); !ok {
		return
	}
	o.recompute()
}

// OnChildrenChanged recomputes when a conference's legs change
func (o *Orchestrator) OnChildrenChanged(call *telecom.Call) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.registry.Get(call.ID); !ok {
		return
	}
	o.recompute()
}

// OnAudioStateChanged merges the audio snapshot into the view without
// touching primary selection. Discarded when no view is published.
func (o *Orchestrator) OnAudioStateChanged(state telecom.AudioState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.audio = state
	cur := o.view.Load()
	if cur == nil {
		return
	}
	next := cur.clone()
	next.IsMuted = state.Muted
	next.IsSpeakerOn = state.SpeakerOn
	next.IsBluetoothOn = state.BluetoothOn
	next.AvailableRoutes = int(state.AvailableRoutes)
	next.Version = o.version.Add(1)
	o.view.Store(next)
	o.publisher.Publish(events.NewViewUpdated(next.Version, next.PrimaryCallID, next.Status, next.Number, next.SecondIncomingCall))
}

// --- internal ---

// recompute derives and publishes a fresh view. Callers hold o.mu.
func (o *Orchestrator) recompute() {
	calls := o.registry.List()
	if len(calls) == 0 {
		return
	}
	prev := o.view.Load()
	res := compute(calls, o.registry.ByID(), prev, o.audio, o.version.Add(1))
	o.view.Store(res.view)
	o.publisher.Publish(events.NewViewUpdated(res.view.Version, res.view.PrimaryCallID, res.view.Status, res.view.Number, res.view.SecondIncomingCall))

	if o.resolver != nil {
		if res.resolvePrimary {
			o.resolver.Resolve(SlotPrimary, res.view.Number)
		}
		if res.resolveSecondary {
			o.resolver.Resolve(SlotSecondary, res.view.SecondCallerNumber)
		}
	}
}

// clearView drops the snapshot when the registered set empties. Callers
// hold o.mu.
func (o *Orchestrator) clearView() {
	o.view.Store(nil)
	v := o.version.Add(1)
	o.publisher.Publish(events.NewViewCleared(v))
	slog.Info("[Session] View cleared")
}

// ApplyIdentity is the resolver's apply callback: the result lands only if
// the slot still shows the number that was resolved.
func (o *Orchestrator) ApplyIdentity(slot Slot, number string, id Identity) {
	o.mu.Lock()
	defer o.mu.Unlock()
	cur := o.view.Load()
	if cur == nil || cur.SlotNumber(slot) != number {
		slog.Debug("[Session] Identity result no longer relevant", "slot", slot, "number", number)
		return
	}
	next := cur.clone()
	if slot == SlotPrimary {
		if !next.IsConference && id.Name != "" {
			next.Name = id.Name
		}
		next.FamilyHead = id.FamilyHead
		next.RelationshipManager = id.RelationshipManager
	} else if id.Name != "" {
		next.SecondCallerName = id.Name
	}
	next.Version = o.version.Add(1)
	o.view.Store(next)
	o.publisher.Publish(events.NewViewUpdated(next.Version, next.PrimaryCallID, next.Status, next.Number, next.SecondIncomingCall))
}

func terminatedDuration(t calllog.TerminatedCall) int64 {
	if t.ConnectTimeMillis == 0 {
		return 0
	}
	d := (time.Now().UnixMilli() - t.ConnectTimeMillis) / 1000
	if d < 0 {
		return 0
	}
	return d
}
