package session

import (
	"log/slog"

	"github.com/sebas/callview/internal/telecom"
)

// Dispatcher is the caller-facing action surface. Every action enqueues a
// platform command and returns immediately; effects come back through the
// event-ingress path. An action whose precondition is unmet (no primary,
// no waiting call, feature unavailable) is a silent no-op, tolerating
// UI-timing races instead of propagating failure.
type Dispatcher struct {
	platform telecom.Platform
	o        *Orchestrator
}

// NewDispatcher creates the action dispatcher over the orchestrator's view
func NewDispatcher(platform telecom.Platform, o *Orchestrator) *Dispatcher {
	return &Dispatcher{platform: platform, o: o}
}

// primary resolves the current primary call handle, nil when absent
func (d *Dispatcher) primary() (*telecom.Call, *CallView) {
	view := d.o.View()
	if view == nil {
		return nil, nil
	}
	call, ok := d.o.Registry().Get(view.PrimaryCallID)
	if !ok {
		return nil, view
	}
	return call, view
}

// secondary resolves the current secondary/waiting call handle
func (d *Dispatcher) secondary(view *CallView) *telecom.Call {
	if view == nil || view.SecondaryCallID == "" {
		return nil
	}
	call, ok := d.o.Registry().Get(view.SecondaryCallID)
	if !ok {
		return nil
	}
	return call
}

// command runs a platform command, demoting any error to a transient no-op
func (d *Dispatcher) command(name string, err error) {
	if err != nil {
		slog.Debug("[Actions] Command ignored", "action", name, "error", err)
	}
}

// Answer accepts the ringing primary call
func (d *Dispatcher) Answer() {
	call, _ := d.primary()
	if call == nil || call.State() != telecom.StateRinging {
		return
	}
	d.command("answer", d.platform.Answer(call.ID))
}

// Reject declines the primary: reject while ringing, disconnect otherwise
func (d *Dispatcher) Reject() {
	call, _ := d.primary()
	if call == nil {
		return
	}
	if call.State() == telecom.StateRinging {
		d.command("reject", d.platform.Reject(call.ID))
		return
	}
	d.command("disconnect", d.platform.Disconnect(call.ID))
}

// ToggleMute flips the microphone mute state
func (d *Dispatcher) ToggleMute() {
	view := d.o.View()
	if view == nil {
		return
	}
	d.command("toggle_mute", d.platform.SetMuted(!view.IsMuted))
}

// ToggleSpeaker switches between earpiece and speaker
func (d *Dispatcher) ToggleSpeaker() {
	view := d.o.View()
	if view == nil {
		return
	}
	route := telecom.RouteSpeaker
	if view.IsSpeakerOn {
		route = telecom.RouteEarpiece
	}
	d.command("toggle_speaker", d.platform.SetAudioRoute(route))
}

// ToggleBluetooth switches bluetooth on or off; no-op when the routes
// bitmask says bluetooth is unavailable
func (d *Dispatcher) ToggleBluetooth() {
	view := d.o.View()
	if view == nil {
		return
	}
	routes := telecom.AudioRoute(view.AvailableRoutes)
	if !routes.Has(telecom.RouteBluetooth) {
		return
	}
	route := telecom.RouteBluetooth
	if view.IsBluetoothOn {
		route = telecom.RouteEarpiece
	}
	d.command("toggle_bluetooth", d.platform.SetAudioRoute(route))
}

// ToggleHold holds or unholds the primary call
func (d *Dispatcher) ToggleHold() {
	call, _ := d.primary()
	if call == nil {
		return
	}
	switch call.State() {
	case telecom.StateActive:
		d.command("hold", d.platform.Hold(call.ID))
	case telecom.StateHolding:
		d.command("unhold", d.platform.Unhold(call.ID))
	}
}

// CycleAudioRoute steps earpiece, speaker, bluetooth, earpiece, skipping
// routes the platform reports unavailable
func (d *Dispatcher) CycleAudioRoute() {
	view := d.o.View()
	if view == nil {
		return
	}
	available := telecom.AudioRoute(view.AvailableRoutes)

	current := telecom.RouteEarpiece
	switch {
	case view.IsBluetoothOn:
		current = telecom.RouteBluetooth
	case view.IsSpeakerOn:
		current = telecom.RouteSpeaker
	}

	cycle := []telecom.AudioRoute{telecom.RouteEarpiece, telecom.RouteSpeaker, telecom.RouteBluetooth}
	start := 0
	for i, r := range cycle {
		if r == current {
			start = i
			break
		}
	}
	for i := 1; i <= len(cycle); i++ {
		next := cycle[(start+i)%len(cycle)]
		if next == current {
			return
		}
		if available.Has(next) {
			d.command("cycle_route", d.platform.SetAudioRoute(next))
			return
		}
	}
}

// PlayDtmfTone plays a DTMF digit on the primary call
func (d *Dispatcher) PlayDtmfTone(digit rune) {
	call, _ := d.primary()
	if call == nil {
		return
	}
	d.command("dtmf", d.platform.PlayDTMF(call.ID, digit))
}

// MergeCalls merges primary and secondary: the platform's merge capability
// when reported, an explicit two-call conference otherwise
func (d *Dispatcher) MergeCalls() {
	call, view := d.primary()
	if call == nil {
		return
	}
	other := d.secondary(view)
	if other == nil {
		return
	}
	if call.Capabilities().Has(telecom.CapabilityMerge) {
		d.command("merge", d.platform.MergeConference(call.ID))
		return
	}
	d.command("conference", d.platform.Conference(call.ID, other.ID))
}

// SwapCalls exchanges active and held calls: the platform's swap capability
// when reported, a manual hold/unhold exchange otherwise
func (d *Dispatcher) SwapCalls() {
	call, view := d.primary()
	if call == nil {
		return
	}
	other := d.secondary(view)
	if other == nil {
		return
	}
	if call.Capabilities().Has(telecom.CapabilitySwap) {
		d.command("swap", d.platform.Swap(call.ID))
		return
	}

	// Manual exchange: hold whichever side is active, resume the other.
	var active, holding *telecom.Call
	switch {
	case call.State() == telecom.StateActive && other.State() == telecom.StateHolding:
		active, holding = call, other
	case call.State() == telecom.StateHolding && other.State() == telecom.StateActive:
		active, holding = other, call
	default:
		return
	}
	d.command("swap_hold", d.platform.Hold(active.ID))
	d.command("swap_unhold", d.platform.Unhold(holding.ID))
}

// AcceptCallWaiting answers the waiting call, not the primary
func (d *Dispatcher) AcceptCallWaiting() {
	view := d.o.View()
	if view == nil || !view.SecondIncomingCall {
		return
	}
	waiting := d.secondary(view)
	if waiting == nil || waiting.State() != telecom.StateRinging {
		return
	}
	d.command("accept_waiting", d.platform.Answer(waiting.ID))
}

// RejectCallWaiting declines the waiting call, not the primary
func (d *Dispatcher) RejectCallWaiting() {
	view := d.o.View()
	if view == nil || !view.SecondIncomingCall {
		return
	}
	waiting := d.secondary(view)
	if waiting == nil {
		return
	}
	d.command("reject_waiting", d.platform.Reject(waiting.ID))
}

// SplitFromConference detaches one leg of the conference by child index
func (d *Dispatcher) SplitFromConference(index int) {
	call, _ := d.primary()
	if call == nil || !call.IsConferenceParent() {
		return
	}
	children := call.Children()
	if index < 0 || index >= len(children) {
		return
	}
	d.command("split", d.platform.SplitChild(call.ID, children[index]))
}
