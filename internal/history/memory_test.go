package history

import (
	"context"
	"testing"
)

func TestMostRecentByNumberMatchesSuffix(t *testing.T) {
	m := NewMemory()
	m.Insert("555-7777", TypeIncoming)
	first := m.Insert("+1 555 020 0999", TypeOutgoing)
	second := m.Insert("5550200999", TypeMissed)

	row, ok, err := m.MostRecentByNumber(context.Background(), "(555) 020-0999")
	if err != nil {
		t.Fatalf("MostRecentByNumber: %v", err)
	}
	if !ok {
		t.Fatal("expected a match")
	}
	if row.ID != second.ID {
		t.Errorf("row = %d, want the newest match %d (not %d)", row.ID, second.ID, first.ID)
	}

	if _, ok, _ := m.MostRecentByNumber(context.Background(), "555-0000"); ok {
		t.Error("unexpected match for an unknown number")
	}
}

func TestUpdateAndDelete(t *testing.T) {
	m := NewMemory()
	row := m.Insert("5550200999", TypeMissed)

	row.Type = TypeIncoming
	row.Read = true
	if err := m.Update(context.Background(), row); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got := m.Rows()[0]
	if got.Type != TypeIncoming || !got.Read {
		t.Errorf("row after update = %+v, want read incoming", got)
	}

	if err := m.Delete(context.Background(), row.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(m.Rows()) != 0 {
		t.Error("row not deleted")
	}

	// Deleting a missing row is harmless.
	if err := m.Delete(context.Background(), 999); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
}

func TestSubscribeNotifiesOnInsert(t *testing.T) {
	m := NewMemory()
	ch := make(chan Row, 4)
	cancel := m.Subscribe(ch)

	inserted := m.Insert("5550200999", TypeIncoming)
	got := <-ch
	if got.ID != inserted.ID {
		t.Errorf("notified row = %d, want %d", got.ID, inserted.ID)
	}

	cancel()
	m.Insert("555-7777", TypeIncoming)
	select {
	case row := <-ch:
		t.Errorf("notification after cancel: %+v", row)
	default:
	}
}
