package telecom

import "fmt"

// CallState represents the lifecycle state of a platform call
type CallState int

const (
	// StateConnecting is the initial state while the platform sets the call up
	StateConnecting CallState = iota
	// StateDialing is an outgoing call waiting for the far end
	StateDialing
	// StateRinging is an incoming call not yet answered
	StateRinging
	// StateActive is an established call with live audio
	StateActive
	// StateHolding is an established call placed on hold
	StateHolding
	// StateDisconnected is the final state after the call ends
	StateDisconnected
	// StateUnknown is reported by platforms with incomplete state mapping
	StateUnknown
)

// String returns the string representation of the state
func (s CallState) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateDialing:
		return "Dialing"
	case StateRinging:
		return "Ringing"
	case StateActive:
		return "Active"
	case StateHolding:
		return "Holding"
	case StateDisconnected:
		return "Disconnected"
	case StateUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// validTransitions defines which state transitions are allowed
var validTransitions = map[CallState][]CallState{
	StateConnecting:   {StateDialing, StateRinging, StateActive, StateDisconnected},
	StateDialing:      {StateActive, StateDisconnected},
	StateRinging:      {StateActive, StateDisconnected},
	StateActive:       {StateHolding, StateDisconnected},
	StateHolding:      {StateActive, StateDisconnected},
	StateDisconnected: {}, // Terminal state, no transitions allowed
	StateUnknown:      {StateConnecting, StateDialing, StateRinging, StateActive, StateHolding, StateDisconnected},
}

// CanTransitionTo checks if a transition from current state to next state is valid
func (s CallState) CanTransitionTo(next CallState) bool {
	allowed, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, state := range allowed {
		if state == next {
			return true
		}
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s CallState) IsTerminal() bool {
	return s == StateDisconnected
}

// IsEstablished returns true for states with a live media path
func (s CallState) IsEstablished() bool {
	return s == StateActive || s == StateHolding
}

// Direction indicates call direction
type Direction int

const (
	DirectionIncoming Direction = iota
	DirectionOutgoing
)

// String returns the string representation of the direction
func (d Direction) String() string {
	if d == DirectionOutgoing {
		return "outgoing"
	}
	return "incoming"
}

// AudioRoute is a bitmask of sound paths a call's audio can take
type AudioRoute int

const (
	RouteEarpiece AudioRoute = 1 << iota
	RouteSpeaker
	RouteBluetooth
	RouteWiredHeadset
)

// Has reports whether the mask contains the given route
func (r AudioRoute) Has(route AudioRoute) bool {
	return r&route != 0
}

// String returns the string representation of a single route
func (r AudioRoute) String() string {
	switch r {
	case RouteEarpiece:
		return "earpiece"
	case RouteSpeaker:
		return "speaker"
	case RouteBluetooth:
		return "bluetooth"
	case RouteWiredHeadset:
		return "wired_headset"
	default:
		return fmt.Sprintf("route(%d)", int(r))
	}
}

// Capability is a bitmask of per-call features the platform reports
type Capability int

const (
	CapabilityMerge Capability = 1 << iota
	CapabilitySwap
	CapabilityHold
	CapabilityMute
)

// Has reports whether the mask contains the given capability
func (c Capability) Has(cap Capability) bool {
	return c&cap != 0
}
