package telecom

import (
	"fmt"
	"log/slog"
	"sync"
)

// FakePlatform is a scripted telephony platform for tests and the demo mode.
// Commands mutate its own call table and are echoed back through the
// Listener, the same shape a real platform integration produces.
type FakePlatform struct {
	mu       sync.Mutex
	listener Listener

	calls map[string]*Call
	order []string

	muted     bool
	speaker   bool
	bluetooth bool
	routes    AudioRoute
}

// NewFakePlatform creates a fake platform with earpiece and speaker available
func NewFakePlatform() *FakePlatform {
	return &FakePlatform{
		calls:  make(map[string]*Call),
		routes: RouteEarpiece | RouteSpeaker,
	}
}

var _ Platform = (*FakePlatform)(nil)

// SetListener attaches the event consumer. Must be set before scripting calls.
func (p *FakePlatform) SetListener(l Listener) {
	p.mu.Lock()
	p.listener = l
	p.mu.Unlock()
}

// SetAvailableRoutes overrides the audio route bitmask
func (p *FakePlatform) SetAvailableRoutes(routes AudioRoute) {
	p.mu.Lock()
	p.routes = routes
	l := p.listener
	state := p.audioStateLocked()
	p.mu.Unlock()
	if l != nil {
		l.OnAudioStateChanged(state)
	}
}

// AddCall registers a new call handle and announces it
func (p *FakePlatform) AddCall(number string, direction Direction) *Call {
	call := NewCall(number, direction)
	if direction == DirectionIncoming {
		call.SetState(StateRinging)
	} else {
		call.SetState(StateDialing)
	}

	p.mu.Lock()
	p.calls[call.ID] = call
	p.order = append(p.order, call.ID)
	l := p.listener
	p.mu.Unlock()

	if l != nil {
		l.OnCallAdded(call)
	}
	return call
}

// RemoveCall disconnects a call and drops it from the table
func (p *FakePlatform) RemoveCall(callID string) {
	p.mu.Lock()
	call, ok := p.calls[callID]
	if ok {
		delete(p.calls, callID)
		for i, id := range p.order {
			if id == callID {
				p.order = append(p.order[:i], p.order[i+1:]...)
				break
			}
		}
	}
	l := p.listener
	p.mu.Unlock()

	if !ok {
		return
	}
	prev := call.State()
	if call.SetState(StateDisconnected) && l != nil {
		l.OnCallStateChanged(call, prev)
	}
	if l != nil {
		l.OnCallRemoved(call)
	}
}

// SetCallState drives a scripted state transition
func (p *FakePlatform) SetCallState(callID string, state CallState) {
	p.mu.Lock()
	call, ok := p.calls[callID]
	l := p.listener
	p.mu.Unlock()
	if !ok {
		return
	}
	prev := call.State()
	if !call.SetState(state) {
		slog.Warn("[FakePlatform] Invalid transition", "call_id", callID, "from", prev, "to", state)
		return
	}
	if l != nil {
		l.OnCallStateChanged(call, prev)
	}
}

// Call returns a registered handle by id
func (p *FakePlatform) Call(callID string) (*Call, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.calls[callID]
	return c, ok
}

// --- Platform commands ---

func (p *FakePlatform) Answer(callID string) error {
	p.mu.Lock()
	call, ok := p.calls[callID]
	var active *Call
	for _, id := range p.order {
		if id != callID && p.calls[id].State() == StateActive {
			active = p.calls[id]
			break
		}
	}
	l := p.listener
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("answer: unknown call %s", callID)
	}
	prev := call.State()
	if prev != StateRinging {
		return fmt.Errorf("answer: call %s not ringing", callID)
	}
	// Answering while another call is up parks that call, as real
	// platforms do for call waiting.
	if active != nil {
		active.SetState(StateHolding)
		if l != nil {
			l.OnCallStateChanged(active, StateActive)
		}
	}
	call.SetState(StateActive)
	if l != nil {
		l.OnCallStateChanged(call, prev)
	}
	return nil
}

func (p *FakePlatform) Reject(callID string) error {
	p.RemoveCall(callID)
	return nil
}

func (p *FakePlatform) Disconnect(callID string) error {
	p.RemoveCall(callID)
	return nil
}

func (p *FakePlatform) Hold(callID string) error {
	return p.transition(callID, StateActive, StateHolding)
}

func (p *FakePlatform) Unhold(callID string) error {
	return p.transition(callID, StateHolding, StateActive)
}

func (p *FakePlatform) transition(callID string, from, to CallState) error {
	p.mu.Lock()
	call, ok := p.calls[callID]
	l := p.listener
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("unknown call %s", callID)
	}
	prev := call.State()
	if prev != from {
		return fmt.Errorf("call %s in state %s, want %s", callID, prev, from)
	}
	call.SetState(to)
	if l != nil {
		l.OnCallStateChanged(call, prev)
	}
	return nil
}

func (p *FakePlatform) SetMuted(muted bool) error {
	p.mu.Lock()
	p.muted = muted
	l := p.listener
	state := p.audioStateLocked()
	p.mu.Unlock()
	if l != nil {
		l.OnAudioStateChanged(state)
	}
	return nil
}

func (p *FakePlatform) SetAudioRoute(route AudioRoute) error {
	p.mu.Lock()
	if !p.routes.Has(route) {
		p.mu.Unlock()
		return fmt.Errorf("route %s unavailable", route)
	}
	p.speaker = route == RouteSpeaker
	p.bluetooth = route == RouteBluetooth
	l := p.listener
	state := p.audioStateLocked()
	p.mu.Unlock()
	if l != nil {
		l.OnAudioStateChanged(state)
	}
	return nil
}

// MergeConference merges the call with the other established call, as a
// platform honoring the merge capability bit would
func (p *FakePlatform) MergeConference(callID string) error {
	p.mu.Lock()
	var other string
	for _, id := range p.order {
		if id == callID {
			continue
		}
		if s := p.calls[id].State(); s == StateActive || s == StateHolding {
			other = id
			break
		}
	}
	p.mu.Unlock()
	if other == "" {
		return fmt.Errorf("merge: no call to merge %s with", callID)
	}
	return p.Conference(callID, other)
}

// Conference creates a conference parent over the two calls
func (p *FakePlatform) Conference(callID, otherID string) error {
	p.mu.Lock()
	a, okA := p.calls[callID]
	b, okB := p.calls[otherID]
	l := p.listener
	p.mu.Unlock()
	if !okA || !okB {
		return fmt.Errorf("conference: unknown call")
	}

	parent := NewCall("", DirectionOutgoing)
	parent.SetConferenceParent(true)
	parent.SetState(StateActive)
	parent.SetChildren([]string{a.ID, b.ID})

	p.mu.Lock()
	p.calls[parent.ID] = parent
	p.order = append(p.order, parent.ID)
	p.mu.Unlock()

	if prev := b.State(); prev == StateHolding {
		b.SetState(StateActive)
		if l != nil {
			l.OnCallStateChanged(b, prev)
		}
	}
	if l != nil {
		l.OnCallAdded(parent)
		l.OnChildrenChanged(parent)
	}
	return nil
}

// Swap exchanges the active and held calls
func (p *FakePlatform) Swap(callID string) error {
	p.mu.Lock()
	var active, holding *Call
	for _, id := range p.order {
		c := p.calls[id]
		switch c.State() {
		case StateActive:
			active = c
		case StateHolding:
			holding = c
		}
	}
	l := p.listener
	p.mu.Unlock()

	if active == nil || holding == nil {
		return fmt.Errorf("swap: need one active and one holding call")
	}
	active.SetState(StateHolding)
	holding.SetState(StateActive)
	if l != nil {
		l.OnCallStateChanged(active, StateActive)
		l.OnCallStateChanged(holding, StateHolding)
	}
	return nil
}

// SplitChild detaches one leg from a conference parent
func (p *FakePlatform) SplitChild(parentID, childID string) error {
	p.mu.Lock()
	parent, ok := p.calls[parentID]
	l := p.listener
	p.mu.Unlock()
	if !ok || !parent.IsConferenceParent() {
		return fmt.Errorf("split: %s is not a conference parent", parentID)
	}
	children := parent.Children()
	kept := children[:0]
	found := false
	for _, id := range children {
		if id == childID {
			found = true
			continue
		}
		kept = append(kept, id)
	}
	if !found {
		return fmt.Errorf("split: %s not a child of %s", childID, parentID)
	}
	parent.SetChildren(kept)
	if l != nil {
		l.OnChildrenChanged(parent)
	}
	return nil
}

func (p *FakePlatform) PlayDTMF(callID string, digit rune) error {
	p.mu.Lock()
	_, ok := p.calls[callID]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("dtmf: unknown call %s", callID)
	}
	slog.Debug("[FakePlatform] DTMF", "call_id", callID, "digit", string(digit))
	return nil
}

func (p *FakePlatform) AvailableRoutes() AudioRoute {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.routes
}

func (p *FakePlatform) audioStateLocked() AudioState {
	return AudioState{
		Muted:           p.muted,
		SpeakerOn:       p.speaker,
		BluetoothOn:     p.bluetooth,
		AvailableRoutes: p.routes,
	}
}
