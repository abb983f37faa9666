package history

import (
	"context"
	"sync"
	"time"

	"github.com/sebas/callview/internal/directory"
)

// Memory is an in-process history store. The real system history lives in
// the OS; this implementation backs tests and the demo runtime, including
// the late-write behavior the redaction watch exists for.
type Memory struct {
	mu     sync.Mutex
	rows   []Row
	nextID int64

	subs map[int]chan<- Row
	seq  int
}

// NewMemory creates an empty in-memory history
func NewMemory() *Memory {
	return &Memory{nextID: 1, subs: make(map[int]chan<- Row)}
}

var _ Store = (*Memory)(nil)

// Insert appends a row and notifies subscribers, as the OS does when it
// writes a history record after call termination
func (m *Memory) Insert(number string, typ RowType) Row {
	m.mu.Lock()
	row := Row{
		ID:        m.nextID,
		Number:    number,
		Type:      typ,
		Timestamp: time.Now(),
	}
	m.nextID++
	m.rows = append(m.rows, row)
	subs := make([]chan<- Row, 0, len(m.subs))
	for _, ch := range m.subs {
		subs = append(subs, ch)
	}
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- row:
		default:
		}
	}
	return row
}

func (m *Memory) MostRecentByNumber(ctx context.Context, number string) (Row, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.rows) - 1; i >= 0; i-- {
		if directory.SuffixesEqual(m.rows[i].Number, number) {
			return m.rows[i], true, nil
		}
	}
	return Row{}, false, nil
}

func (m *Memory) Update(ctx context.Context, row Row) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == row.ID {
			m.rows[i] = row
			return nil
		}
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *Memory) Subscribe(ch chan<- Row) (cancel func()) {
	m.mu.Lock()
	id := m.seq
	m.seq++
	m.subs[id] = ch
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Rows returns a copy of all rows (test helper)
func (m *Memory) Rows() []Row {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Row, len(m.rows))
	copy(out, m.rows)
	return out
}
