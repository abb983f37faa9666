package session

// Slot identifies which side of the view an identity resolution targets
type Slot int

const (
	SlotPrimary Slot = iota
	SlotSecondary
)

// String returns the string representation of the slot
func (s Slot) String() string {
	if s == SlotSecondary {
		return "secondary"
	}
	return "primary"
}

// CallView is the single externally published snapshot of the current call
// session. It is an immutable value: every recompute replaces it wholesale,
// and the narrow audio-sync and identity-resolution paths replace it with a
// patched copy. It carries only opaque call ids, never live handles.
type CallView struct {
	// Version increases monotonically with every published replacement
	Version uint64 `json:"version"`

	// PrimaryCallID is the foregrounded call targeted by actions
	PrimaryCallID string `json:"primary_call_id"`

	Name   string `json:"name"`
	Number string `json:"number"`
	Status string `json:"status"`

	IsMuted       bool `json:"is_muted"`
	IsHolding     bool `json:"is_holding"`
	IsSpeakerOn   bool `json:"is_speaker_on"`
	IsBluetoothOn bool `json:"is_bluetooth_on"`
	IsIncoming    bool `json:"is_incoming"`
	IsConference  bool `json:"is_conference"`
	CanMerge      bool `json:"can_merge"`
	CanSwap       bool `json:"can_swap"`

	// Participants are the conference children's numbers, in leg order
	Participants []string `json:"participants,omitempty"`

	// Work metadata from the work directory, empty for personal calls
	FamilyHead          string `json:"family_head,omitempty"`
	RelationshipManager string `json:"relationship_manager,omitempty"`

	ConnectTimeMillis int64 `json:"connect_time_millis"`

	// SecondaryCallID is the other registered call, waiting or held in the
	// background; empty with exactly one call
	SecondaryCallID string `json:"secondary_call_id,omitempty"`

	// Waiting popup fields, populated only for a genuine call-waiting ring
	SecondCallerName   string `json:"second_caller_name,omitempty"`
	SecondCallerNumber string `json:"second_caller_number,omitempty"`
	SecondIncomingCall bool   `json:"second_incoming_call"`

	// AvailableRoutes is the platform's audio route bitmask
	AvailableRoutes int `json:"available_routes"`
}

// SlotNumber returns the number currently occupying the given slot
func (v *CallView) SlotNumber(slot Slot) string {
	if slot == SlotSecondary {
		return v.SecondCallerNumber
	}
	return v.Number
}

// clone returns a copy safe to mutate before the next publish
func (v *CallView) clone() *CallView {
	out := *v
	if v.Participants != nil {
		out.Participants = make([]string, len(v.Participants))
		copy(out.Participants, v.Participants)
	}
	return &out
}
