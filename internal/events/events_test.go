package events

import (
	"encoding/json"
	"testing"
)

func TestSubjects(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		subject string
	}{
		{"call added", NewCallAdded("c1", "5550200999", "incoming", "Ringing"), "callview.calls.c1.added"},
		{"call ended", NewCallEnded("c1", "5550200999", "incoming", 42, true), "callview.calls.c1.ended"},
		{"view updated", NewViewUpdated(7, "c1", "Active", "5550200999", false), "callview.view.updated"},
		{"view cleared", NewViewCleared(8), "callview.view.cleared"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Subject(); got != tt.subject {
				t.Errorf("subject = %q, want %q", got, tt.subject)
			}
		})
	}
}

func TestCallEndedEventJSON(t *testing.T) {
	e := NewCallEnded("c1", "5550200999", "incoming", 42, true)
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["event_type"] != "call.ended" {
		t.Errorf("event_type = %v, want call.ended", decoded["event_type"])
	}
	if decoded["duration_seconds"] != float64(42) {
		t.Errorf("duration_seconds = %v, want 42", decoded["duration_seconds"])
	}
	if decoded["work_call"] != true {
		t.Errorf("work_call = %v, want true", decoded["work_call"])
	}
}

func TestViewScopedEventsOmitCallID(t *testing.T) {
	data, err := json.Marshal(NewViewCleared(3))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, present := decoded["call_id"]; present {
		t.Error("view-scoped events must omit call_id")
	}
}

func TestChannelPublisherDelivers(t *testing.T) {
	p := NewChannelPublisher(4)
	defer p.Close()

	p.Publish(NewViewUpdated(1, "c1", "Active", "5550200999", false))
	e := <-p.Events()
	if e.Type() != ViewUpdated {
		t.Errorf("type = %s, want %s", e.Type(), ViewUpdated)
	}
}

func TestChannelPublisherDropsWhenFull(t *testing.T) {
	p := NewChannelPublisher(1)
	defer p.Close()

	p.Publish(NewViewCleared(1))
	p.Publish(NewViewCleared(2))

	first := <-p.Events()
	if first.(*ViewClearedEvent).Version != 1 {
		t.Errorf("delivered version = %d, want 1", first.(*ViewClearedEvent).Version)
	}
	select {
	case extra := <-p.Events():
		t.Errorf("unexpected event %s, overflow must be dropped", extra.Type())
	default:
	}
}

func TestChannelPublisherPublishAfterClose(t *testing.T) {
	p := NewChannelPublisher(4)
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	// Must not panic on a closed channel.
	p.Publish(NewViewCleared(1))
	if err := p.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestMultiPublisherFansOut(t *testing.T) {
	a := NewChannelPublisher(4)
	b := NewChannelPublisher(4)
	m := NewMultiPublisher(a, b, NoopPublisher{})
	defer m.Close()

	m.Publish(NewViewCleared(1))
	if e := <-a.Events(); e.Type() != ViewCleared {
		t.Errorf("first publisher got %s, want %s", e.Type(), ViewCleared)
	}
	if e := <-b.Events(); e.Type() != ViewCleared {
		t.Errorf("second publisher got %s, want %s", e.Type(), ViewCleared)
	}
}
