package calllog

import (
	"context"
	"sync"
)

// Store is the append-only log table contract. MarkSynced must be idempotent:
// re-marking an already-synced entry is a no-op so upload retries after a
// process restart are safe.
type Store interface {
	// Insert appends a new entry
	Insert(ctx context.Context, e Entry) error

	// Unsynced returns entries not yet uploaded, oldest first
	Unsynced(ctx context.Context) ([]Entry, error)

	// Get returns one entry by id
	Get(ctx context.Context, id string) (Entry, bool, error)

	// MarkSynced flips the synced flag for an entry
	MarkSynced(ctx context.Context, id string) error
}

// MemoryStore is a map-backed Store for tests
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) Insert(ctx context.Context, e Entry) error {
	m.mu.Lock()
	m.entries = append(m.entries, e)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Unsynced(ctx context.Context) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Entry
	for _, e := range m.entries {
		if !e.Synced {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryStore) Get(ctx context.Context, id string) (Entry, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.ID == id {
			return e, true, nil
		}
	}
	return Entry{}, false, nil
}

func (m *MemoryStore) MarkSynced(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.entries {
		if m.entries[i].ID == id {
			m.entries[i].Synced = true
		}
	}
	return nil
}

// All returns a copy of every entry (test helper)
func (m *MemoryStore) All() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Entry, len(m.entries))
	copy(out, m.entries)
	return out
}
