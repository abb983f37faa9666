package session

import (
	"fmt"

	"github.com/sebas/callview/internal/telecom"
)

// primaryRank orders candidates for primary selection. Lower is better;
// ties fall to registration order. A conference parent stays foregrounded
// over everything, an established call over a newly ringing one.
func primaryRank(c *telecom.Call) int {
	if c.IsConferenceParent() {
		return 0
	}
	switch c.State() {
	case telecom.StateActive:
		return 1
	case telecom.StateDialing:
		return 2
	case telecom.StateRinging:
		return 3
	default:
		return 4
	}
}

// computeResult is a freshly derived view plus the identity resolutions the
// caller must trigger for numbers that changed
type computeResult struct {
	view             *CallView
	resolvePrimary   bool
	resolveSecondary bool
}

// compute derives a CallView from the registered set. Pure over its inputs:
// no locking, no blocking, no side effects. calls must be non-empty and in
// registration order.
func compute(calls []*telecom.Call, byID map[string]*telecom.Call, prev *CallView, audio telecom.AudioState, version uint64) computeResult {
	primary := calls[0]
	for _, c := range calls[1:] {
		if primaryRank(c) < primaryRank(primary) {
			primary = c
		}
	}

	var secondary *telecom.Call
	for _, c := range calls {
		if c.ID != primary.ID {
			secondary = c
			break
		}
	}

	// A waiting call only exists while an established call is foregrounded.
	var waiting *telecom.Call
	if state := primary.State(); state == telecom.StateActive || state == telecom.StateHolding {
		for _, c := range calls {
			if c.ID != primary.ID && c.State() == telecom.StateRinging {
				waiting = c
				break
			}
		}
	}

	state := primary.State()
	children := primary.Children()

	view := &CallView{
		Version:           version,
		PrimaryCallID:     primary.ID,
		Number:            primary.Number(),
		Status:            state.String(),
		IsIncoming:        state == telecom.StateRinging,
		IsHolding:         state == telecom.StateHolding,
		IsConference:      primary.IsConferenceParent(),
		ConnectTimeMillis: primary.ConnectTimeMillis(),
		IsMuted:           audio.Muted,
		IsSpeakerOn:       audio.SpeakerOn,
		IsBluetoothOn:     audio.BluetoothOn,
		AvailableRoutes:   int(audio.AvailableRoutes),
	}

	for _, id := range children {
		if child, ok := byID[id]; ok {
			view.Participants = append(view.Participants, child.Number())
		}
	}

	// Capability bits, with a heuristic for platforms that underreport them
	anyRinging := false
	otherHolding := false
	for _, c := range calls {
		if c.State() == telecom.StateRinging {
			anyRinging = true
		}
		if c.ID != primary.ID && c.State() == telecom.StateHolding {
			otherHolding = true
		}
	}
	caps := primary.Capabilities()
	view.CanMerge = caps.Has(telecom.CapabilityMerge) || (len(calls) > 1 && !anyRinging)
	view.CanSwap = caps.Has(telecom.CapabilitySwap) || (len(calls) > 1 && otherHolding)

	result := computeResult{view: view}

	// Identity: carry the resolved fields over while the number is stable,
	// otherwise fall back to the raw number and ask for a fresh resolution.
	switch {
	case view.IsConference:
		view.Name = fmt.Sprintf("Conference (%d)", len(children))
	case prev != nil && !prev.IsConference && prev.Number == view.Number:
		view.Name = prev.Name
		view.FamilyHead = prev.FamilyHead
		view.RelationshipManager = prev.RelationshipManager
	default:
		view.Name = view.Number
		result.resolvePrimary = view.Number != ""
	}

	if secondary != nil {
		view.SecondaryCallID = secondary.ID
	}
	if waiting != nil {
		view.SecondaryCallID = waiting.ID
		view.SecondCallerNumber = waiting.Number()
		view.SecondIncomingCall = true
		if prev != nil && prev.SecondCallerNumber == view.SecondCallerNumber {
			view.SecondCallerName = prev.SecondCallerName
		} else {
			view.SecondCallerName = view.SecondCallerNumber
			result.resolveSecondary = view.SecondCallerNumber != ""
		}
	}

	return result
}
