package telecom

// Platform is the command half of the telephony boundary. All commands are
// fire-and-forget from the orchestrator's point of view: effects come back
// through the Listener, and errors at the command site are treated as
// transient no-ops.
type Platform interface {
	// Answer accepts a ringing call
	Answer(callID string) error

	// Reject declines a ringing call
	Reject(callID string) error

	// Disconnect hangs up an established or outgoing call
	Disconnect(callID string) error

	// Hold places a call on hold
	Hold(callID string) error

	// Unhold resumes a held call
	Unhold(callID string) error

	// SetMuted mutes or unmutes the device microphone
	SetMuted(muted bool) error

	// SetAudioRoute selects the active audio route
	SetAudioRoute(route AudioRoute) error

	// MergeConference merges via the call's own merge capability
	MergeConference(callID string) error

	// Conference explicitly conferences two calls together
	Conference(callID, otherID string) error

	// Swap exchanges active and held calls when the platform supports it
	Swap(callID string) error

	// SplitChild detaches one leg from a conference
	SplitChild(parentID, childID string) error

	// PlayDTMF plays a DTMF tone on a call
	PlayDTMF(callID string, digit rune) error

	// AvailableRoutes returns the current audio route bitmask
	AvailableRoutes() AudioRoute
}

// AudioState is the platform's audio snapshot delivered on route changes
type AudioState struct {
	Muted           bool
	SpeakerOn       bool
	BluetoothOn     bool
	AvailableRoutes AudioRoute
}

// Listener receives platform call events. The platform serializes delivery:
// callbacks arrive on one logical event sequence, never concurrently.
type Listener interface {
	// OnCallAdded fires when the platform registers a new call handle
	OnCallAdded(call *Call)

	// OnCallRemoved fires when a handle leaves the platform's set
	OnCallRemoved(call *Call)

	// OnCallStateChanged fires on any per-call state transition
	OnCallStateChanged(call *Call, previous CallState)

	// OnCallDetailsChanged fires when number or capability bits change
	OnCallDetailsChanged(call *Call)

	// OnChildrenChanged fires when a conference parent's legs change
	OnChildrenChanged(call *Call)

	// OnAudioStateChanged fires when the audio route snapshot changes
	OnAudioStateChanged(state AudioState)
}
