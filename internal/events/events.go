// Package events defines call-view lifecycle events and their publishing
// infrastructure. Transport-agnostic; a broker integration can sit behind
// the Publisher interface without touching producers.
package events

import (
	"time"
)

// EventType identifies the type of event
type EventType string

const (
	// CallAdded fires when a call handle enters the registered set
	CallAdded EventType = "call.added"
	// CallEnded fires when a call handle leaves the registered set
	CallEnded EventType = "call.ended"
	// ViewUpdated fires whenever a new CallView snapshot is published
	ViewUpdated EventType = "view.updated"
	// ViewCleared fires when the registered set empties and the view drops
	ViewCleared EventType = "view.cleared"
)

// Event is the base interface for all published events
type Event interface {
	// Type returns the event type for routing/filtering
	Type() EventType
	// Subject returns the routing subject for this event
	Subject() string
	// Timestamp returns when the event occurred
	Timestamp() time.Time
}

// BaseEvent contains fields common to all events
type BaseEvent struct {
	EventType EventType `json:"event_type"`
	EventTime time.Time `json:"event_time"`
	// CallID correlates call-scoped events; empty for view-scoped ones
	CallID string `json:"call_id,omitempty"`
}

func (e *BaseEvent) Type() EventType      { return e.EventType }
func (e *BaseEvent) Timestamp() time.Time { return e.EventTime }

// Subject returns the routing subject.
// Call-scoped: callview.calls.<call_id>.<suffix>; view-scoped: callview.<type>.
func (e *BaseEvent) Subject() string {
	switch e.EventType {
	case CallAdded:
		return "callview.calls." + e.CallID + ".added"
	case CallEnded:
		return "callview.calls." + e.CallID + ".ended"
	default:
		return "callview." + string(e.EventType)
	}
}

// CallAddedEvent fires when the platform registers a new call
type CallAddedEvent struct {
	BaseEvent
	Number    string `json:"number"`
	Direction string `json:"direction"`
	State     string `json:"state"`
}

// CallEndedEvent fires on the terminal transition
type CallEndedEvent struct {
	BaseEvent
	Number          string `json:"number"`
	Direction       string `json:"direction"`
	DurationSeconds int64  `json:"duration_seconds"`
	WorkCall        bool   `json:"work_call"`
}

// ViewUpdatedEvent fires on every published snapshot replacement
type ViewUpdatedEvent struct {
	BaseEvent
	Version       uint64 `json:"version"`
	PrimaryCallID string `json:"primary_call_id"`
	Status        string `json:"status"`
	Number        string `json:"number"`
	Waiting       bool   `json:"waiting"`
}

// ViewClearedEvent fires when no calls remain
type ViewClearedEvent struct {
	BaseEvent
	Version uint64 `json:"version"`
}

// NewCallAdded builds a CallAddedEvent stamped now
func NewCallAdded(callID, number, direction, state string) *CallAddedEvent {
	return &CallAddedEvent{
		BaseEvent: BaseEvent{EventType: CallAdded, EventTime: time.Now(), CallID: callID},
		Number:    number,
		Direction: direction,
		State:     state,
	}
}

// NewCallEnded builds a CallEndedEvent stamped now
func NewCallEnded(callID, number, direction string, durationSeconds int64, workCall bool) *CallEndedEvent {
	return &CallEndedEvent{
		BaseEvent:       BaseEvent{EventType: CallEnded, EventTime: time.Now(), CallID: callID},
		Number:          number,
		Direction:       direction,
		DurationSeconds: durationSeconds,
		WorkCall:        workCall,
	}
}

// NewViewUpdated builds a ViewUpdatedEvent stamped now
func NewViewUpdated(version uint64, primaryCallID, status, number string, waiting bool) *ViewUpdatedEvent {
	return &ViewUpdatedEvent{
		BaseEvent:     BaseEvent{EventType: ViewUpdated, EventTime: time.Now()},
		Version:       version,
		PrimaryCallID: primaryCallID,
		Status:        status,
		Number:        number,
		Waiting:       waiting,
	}
}

// NewViewCleared builds a ViewClearedEvent stamped now
func NewViewCleared(version uint64) *ViewClearedEvent {
	return &ViewClearedEvent{
		BaseEvent: BaseEvent{EventType: ViewCleared, EventTime: time.Now()},
		Version:   version,
	}
}
