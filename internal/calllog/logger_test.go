package calllog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sebas/callview/internal/directory"
	"github.com/sebas/callview/internal/telecom"
)

type recordingScheduler struct {
	entryIDs []string
}

func (r *recordingScheduler) ScheduleEntry(entryID string) {
	r.entryIDs = append(r.entryIDs, entryID)
}

// failingWork always errors, for the lookup-failure policy paths
type failingWork struct{}

func (failingWork) Lookup(ctx context.Context, suffix string) (directory.WorkContact, error) {
	return directory.WorkContact{}, errors.New("directory offline")
}

func newTestLogger(policy Policy) (*Logger, *MemoryStore, *recordingScheduler) {
	work := directory.NewMemoryWork()
	work.Add(directory.WorkContact{Name: "Morgan Reyes", Number: "555-020-0999", FamilyHead: "Reyes Household"})
	store := NewMemoryStore()
	sched := &recordingScheduler{}
	return NewLogger(work, store, sched, policy), store, sched
}

func TestLogIfWorkPersistsAndSchedules(t *testing.T) {
	l, store, sched := newTestLogger(DefaultPolicy())

	connected := time.Now().Add(-90 * time.Second).UnixMilli()
	work := l.LogIfWork(context.Background(), TerminatedCall{
		Number:            "+1 555 020 0999",
		Direction:         telecom.DirectionIncoming,
		ConnectTimeMillis: connected,
	})
	if !work {
		t.Fatal("expected the call to classify as work")
	}

	entries := store.All()
	if len(entries) != 1 {
		t.Fatalf("stored entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Name != "Morgan Reyes" {
		t.Errorf("name = %q, want the directory name", e.Name)
	}
	if e.Number != "+1 555 020 0999" {
		t.Errorf("number = %q, want the raw dialed number", e.Number)
	}
	if e.Direction != DirectionIncoming {
		t.Errorf("direction = %s, want incoming", e.Direction)
	}
	if e.DurationSeconds < 89 || e.DurationSeconds > 91 {
		t.Errorf("duration = %d, want about 90", e.DurationSeconds)
	}
	if e.Synced {
		t.Error("new entries must start unsynced")
	}

	if len(sched.entryIDs) != 1 || sched.entryIDs[0] != e.ID {
		t.Errorf("scheduled = %v, want the persisted entry id", sched.entryIDs)
	}
}

func TestLogIfWorkNonWorkNumber(t *testing.T) {
	l, store, sched := newTestLogger(DefaultPolicy())

	work := l.LogIfWork(context.Background(), TerminatedCall{
		Number:    "555-7777",
		Direction: telecom.DirectionOutgoing,
	})
	if work {
		t.Fatal("unknown number must classify as non-work")
	}
	if len(store.All()) != 0 || len(sched.entryIDs) != 0 {
		t.Error("non-work calls must leave no trace")
	}
}

func TestLogIfWorkEmptyNumber(t *testing.T) {
	l, store, _ := newTestLogger(DefaultPolicy())
	if l.LogIfWork(context.Background(), TerminatedCall{Number: ""}) {
		t.Error("empty number must classify as non-work")
	}
	if len(store.All()) != 0 {
		t.Error("no entry expected for an empty number")
	}
}

func TestDeriveDirection(t *testing.T) {
	tests := []struct {
		name string
		call TerminatedCall
		want CallDirection
	}{
		{"answered incoming", TerminatedCall{Direction: telecom.DirectionIncoming, ConnectTimeMillis: 123}, DirectionIncoming},
		{"unanswered incoming", TerminatedCall{Direction: telecom.DirectionIncoming}, DirectionMissed},
		{"connected outgoing", TerminatedCall{Direction: telecom.DirectionOutgoing, ConnectTimeMillis: 123}, DirectionOutgoing},
		{"unanswered outgoing", TerminatedCall{Direction: telecom.DirectionOutgoing}, DirectionOutgoing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := deriveDirection(tt.call); got != tt.want {
				t.Errorf("deriveDirection = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMissedCallHasZeroDuration(t *testing.T) {
	l, store, _ := newTestLogger(DefaultPolicy())

	l.LogIfWork(context.Background(), TerminatedCall{
		Number:    "5550200999",
		Direction: telecom.DirectionIncoming,
	})
	entries := store.All()
	if len(entries) != 1 {
		t.Fatalf("stored entries = %d, want 1", len(entries))
	}
	if entries[0].Direction != DirectionMissed {
		t.Errorf("direction = %s, want missed", entries[0].Direction)
	}
	if entries[0].DurationSeconds != 0 {
		t.Errorf("duration = %d, want 0 for a call that never connected", entries[0].DurationSeconds)
	}
}

func TestLookupFailureDefaultsToNonWork(t *testing.T) {
	store := NewMemoryStore()
	l := NewLogger(failingWork{}, store, nil, DefaultPolicy())

	if l.LogIfWork(context.Background(), TerminatedCall{Number: "5550200999"}) {
		t.Error("lookup failure must classify as non-work by default")
	}
	if len(store.All()) != 0 {
		t.Error("no entry expected when the lookup fails")
	}
}

func TestLookupFailurePolicyLogsRawNumber(t *testing.T) {
	store := NewMemoryStore()
	policy := DefaultPolicy()
	policy.LogOnLookupFailure = true
	l := NewLogger(failingWork{}, store, nil, policy)

	if !l.LogIfWork(context.Background(), TerminatedCall{Number: "5550200999"}) {
		t.Fatal("policy should treat the call as work despite the lookup failure")
	}
	entries := store.All()
	if len(entries) != 1 {
		t.Fatalf("stored entries = %d, want 1", len(entries))
	}
	if entries[0].Name != "5550200999" {
		t.Errorf("name = %q, want the raw number as fallback", entries[0].Name)
	}
}
