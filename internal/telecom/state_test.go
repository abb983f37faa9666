package telecom

import "testing"

func TestStateTransitions(t *testing.T) {
	tests := []struct {
		from, to CallState
		want     bool
	}{
		{StateConnecting, StateRinging, true},
		{StateConnecting, StateDialing, true},
		{StateRinging, StateActive, true},
		{StateRinging, StateHolding, false},
		{StateActive, StateHolding, true},
		{StateHolding, StateActive, true},
		{StateActive, StateDisconnected, true},
		{StateDisconnected, StateActive, false},
		{StateDisconnected, StateRinging, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
			t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminalState(t *testing.T) {
	if !StateDisconnected.IsTerminal() {
		t.Error("Disconnected should be terminal")
	}
	for _, s := range []CallState{StateConnecting, StateDialing, StateRinging, StateActive, StateHolding} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestCallConnectTimeSetOnActive(t *testing.T) {
	c := NewCall("555-0100", DirectionIncoming)
	c.SetState(StateRinging)
	if got := c.ConnectTimeMillis(); got != 0 {
		t.Fatalf("ConnectTimeMillis before answer = %d, want 0", got)
	}
	c.SetState(StateActive)
	if got := c.ConnectTimeMillis(); got == 0 {
		t.Error("ConnectTimeMillis after answer should be set")
	}
}

func TestCallInvalidTransitionRejected(t *testing.T) {
	c := NewCall("555-0100", DirectionIncoming)
	c.SetState(StateRinging)
	c.SetState(StateActive)
	c.SetState(StateDisconnected)
	if c.SetState(StateActive) {
		t.Error("transition out of Disconnected should be rejected")
	}
	if got := c.State(); got != StateDisconnected {
		t.Errorf("state = %s, want Disconnected", got)
	}
}

func TestAudioRouteMask(t *testing.T) {
	mask := RouteEarpiece | RouteSpeaker
	if !mask.Has(RouteSpeaker) {
		t.Error("mask should contain speaker")
	}
	if mask.Has(RouteBluetooth) {
		t.Error("mask should not contain bluetooth")
	}
}
