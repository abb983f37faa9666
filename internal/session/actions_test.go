package session

import (
	"strings"
	"testing"

	"github.com/sebas/callview/internal/telecom"
)

func newDispatcherSession(t *testing.T) (*telecom.FakePlatform, *Orchestrator, *Dispatcher) {
	t.Helper()
	platform, orch := newTestSession(t, Options{})
	return platform, orch, NewDispatcher(platform, orch)
}

func TestActionsAreNoOpsWithoutView(t *testing.T) {
	_, orch, d := newDispatcherSession(t)

	d.Answer()
	d.Reject()
	d.ToggleMute()
	d.ToggleHold()
	d.SwapCalls()
	d.MergeCalls()
	d.AcceptCallWaiting()

	if orch.View() != nil {
		t.Error("no action should conjure a view")
	}
}

func TestAnswerOnlyWhenRinging(t *testing.T) {
	platform, orch, d := newDispatcherSession(t)

	a := platform.AddCall("555-0100", telecom.DirectionIncoming)
	d.Answer()
	if got := a.State(); got != telecom.StateActive {
		t.Fatalf("state after answer = %s, want Active", got)
	}

	// Answering an already-active call changes nothing.
	d.Answer()
	if got := orch.View().Status; got != "Active" {
		t.Errorf("status = %q, want Active", got)
	}
}

func TestRejectRingingRemovesCall(t *testing.T) {
	platform, orch, d := newDispatcherSession(t)

	platform.AddCall("555-0100", telecom.DirectionIncoming)
	d.Reject()
	if got := orch.Registry().Count(); got != 0 {
		t.Errorf("registered after reject = %d, want 0", got)
	}
}

func TestRejectEstablishedDisconnects(t *testing.T) {
	platform, orch, d := newDispatcherSession(t)

	a := platform.AddCall("555-0100", telecom.DirectionOutgoing)
	platform.SetCallState(a.ID, telecom.StateActive)
	d.Reject()
	if got := orch.Registry().Count(); got != 0 {
		t.Errorf("registered after disconnect = %d, want 0", got)
	}
}

func TestToggleHoldRoundTrip(t *testing.T) {
	platform, orch, d := newDispatcherSession(t)

	a := platform.AddCall("555-0100", telecom.DirectionIncoming)
	platform.SetCallState(a.ID, telecom.StateActive)

	d.ToggleHold()
	if got := orch.View().Status; got != "Holding" {
		t.Fatalf("status after hold = %q, want Holding", got)
	}
	d.ToggleHold()
	if got := orch.View().Status; got != "Active" {
		t.Fatalf("status after unhold = %q, want Active", got)
	}
}

func TestToggleBluetoothUnavailableIsNoOp(t *testing.T) {
	platform, orch, d := newDispatcherSession(t)

	platform.AddCall("555-0100", telecom.DirectionIncoming)
	d.ToggleBluetooth()
	if orch.View().IsBluetoothOn {
		t.Error("bluetooth toggled on with no bluetooth route available")
	}
}

func TestCycleAudioRouteSkipsUnavailable(t *testing.T) {
	platform, orch, d := newDispatcherSession(t)

	// Default fake routes: earpiece and speaker only.
	platform.AddCall("555-0100", telecom.DirectionIncoming)

	d.CycleAudioRoute()
	if v := orch.View(); !v.IsSpeakerOn || v.IsBluetoothOn {
		t.Fatalf("after first cycle speaker=%v bluetooth=%v, want speaker only", v.IsSpeakerOn, v.IsBluetoothOn)
	}

	// Bluetooth is unavailable, so the cycle wraps back to earpiece.
	d.CycleAudioRoute()
	if v := orch.View(); v.IsSpeakerOn || v.IsBluetoothOn {
		t.Fatalf("after second cycle speaker=%v bluetooth=%v, want earpiece", v.IsSpeakerOn, v.IsBluetoothOn)
	}
}

func TestSwapCallsManualExchange(t *testing.T) {
	platform, orch, d := newDispatcherSession(t)

	a := platform.AddCall("555-0100", telecom.DirectionIncoming)
	platform.SetCallState(a.ID, telecom.StateActive)
	b := platform.AddCall("555-0200", telecom.DirectionOutgoing)
	platform.SetCallState(b.ID, telecom.StateActive)
	// Answering the second call parked the first; reproduce that here
	// by holding a explicitly since b dialed out.
	platform.SetCallState(a.ID, telecom.StateHolding)

	view := orch.View()
	if !view.CanSwap {
		t.Fatal("expected canSwap with one active and one held call")
	}

	// Neither call reports the swap capability bit, so the dispatcher
	// falls back to an explicit hold and unhold exchange.
	d.SwapCalls()
	if got := a.State(); got != telecom.StateActive {
		t.Errorf("held call state after swap = %s, want Active", got)
	}
	if got := b.State(); got != telecom.StateHolding {
		t.Errorf("active call state after swap = %s, want Holding", got)
	}
}

func TestSwapCallsCapabilityPath(t *testing.T) {
	platform, orch, d := newDispatcherSession(t)

	a := platform.AddCall("555-0100", telecom.DirectionIncoming)
	platform.SetCallState(a.ID, telecom.StateActive)
	b := platform.AddCall("555-0200", telecom.DirectionOutgoing)
	platform.SetCallState(b.ID, telecom.StateActive)
	platform.SetCallState(a.ID, telecom.StateHolding)

	view := orch.View()
	primary, _ := orch.Registry().Get(view.PrimaryCallID)
	primary.SetCapabilities(telecom.CapabilitySwap)

	d.SwapCalls()
	if got := a.State(); got != telecom.StateActive {
		t.Errorf("held call state after swap = %s, want Active", got)
	}
	if got := b.State(); got != telecom.StateHolding {
		t.Errorf("active call state after swap = %s, want Holding", got)
	}
}

func TestMergeCallsBuildsConference(t *testing.T) {
	platform, orch, d := newDispatcherSession(t)

	a := platform.AddCall("555-0100", telecom.DirectionIncoming)
	platform.SetCallState(a.ID, telecom.StateActive)
	b := platform.AddCall("555-0200", telecom.DirectionOutgoing)
	platform.SetCallState(b.ID, telecom.StateActive)
	platform.SetCallState(a.ID, telecom.StateHolding)

	d.MergeCalls()

	view := orch.View()
	if !strings.HasPrefix(view.Name, "Conference") {
		t.Fatalf("name after merge = %q, want a conference title", view.Name)
	}
	if got := len(view.Participants); got != 2 {
		t.Errorf("participants = %d, want 2", got)
	}
	if a.State() != telecom.StateActive || b.State() != telecom.StateActive {
		t.Errorf("leg states after merge = %s/%s, want both Active", a.State(), b.State())
	}
}

func TestRejectCallWaitingKeepsPrimary(t *testing.T) {
	platform, orch, d := newDispatcherSession(t)

	a := platform.AddCall("555-0100", telecom.DirectionIncoming)
	platform.SetCallState(a.ID, telecom.StateActive)
	platform.AddCall("555-0200", telecom.DirectionIncoming)

	if view := orch.View(); !view.SecondIncomingCall {
		t.Fatal("expected a call waiting popup")
	}

	d.RejectCallWaiting()
	view := orch.View()
	if view.PrimaryCallID != a.ID {
		t.Errorf("primary = %s, want untouched call %s", view.PrimaryCallID, a.ID)
	}
	if view.SecondIncomingCall {
		t.Error("popup should clear once the waiting call is rejected")
	}
	if a.State() != telecom.StateActive {
		t.Errorf("primary state = %s, want Active", a.State())
	}
}

func TestAcceptCallWaitingNoOpWithoutPopup(t *testing.T) {
	platform, orch, d := newDispatcherSession(t)

	a := platform.AddCall("555-0100", telecom.DirectionIncoming)
	platform.SetCallState(a.ID, telecom.StateActive)

	d.AcceptCallWaiting()
	if got := orch.View().PrimaryCallID; got != a.ID {
		t.Errorf("primary = %s, want %s", got, a.ID)
	}
}

func TestSplitFromConference(t *testing.T) {
	platform, orch, d := newDispatcherSession(t)

	a := platform.AddCall("555-0100", telecom.DirectionIncoming)
	platform.SetCallState(a.ID, telecom.StateActive)
	b := platform.AddCall("555-0200", telecom.DirectionOutgoing)
	platform.SetCallState(b.ID, telecom.StateActive)
	platform.SetCallState(a.ID, telecom.StateHolding)
	d.MergeCalls()

	// Out-of-range index is ignored.
	d.SplitFromConference(5)
	if got := len(orch.View().Participants); got != 2 {
		t.Fatalf("participants after bad split = %d, want 2", got)
	}

	d.SplitFromConference(0)
	if got := len(orch.View().Participants); got != 1 {
		t.Errorf("participants after split = %d, want 1", got)
	}
}
