// Package directory defines the contact lookup contracts the orchestrator
// resolves caller identity against: a personal directory keyed by raw number
// and a work directory keyed by the number's normalized last-10-digit suffix.
package directory

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrNotFound is returned when a number has no directory entry
var ErrNotFound = errors.New("directory: not found")

// Contact is a personal directory entry
type Contact struct {
	Name   string
	Number string
}

// WorkContact is a work directory entry with its org metadata
type WorkContact struct {
	Name                string
	Number              string
	FamilyHead          string
	RelationshipManager string
}

// Personal looks contacts up by raw number
type Personal interface {
	Lookup(ctx context.Context, number string) (Contact, error)
}

// Work looks contacts up by normalized last-10-digit suffix
type Work interface {
	Lookup(ctx context.Context, suffix string) (WorkContact, error)
}

// NormalizeSuffix strips non-digit characters and keeps the last 10 digits,
// tolerating country-code and formatting differences between the platform's
// number and the directory's stored number.
func NormalizeSuffix(number string) string {
	var b strings.Builder
	b.Grow(len(number))
	for _, r := range number {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) > 10 {
		return digits[len(digits)-10:]
	}
	return digits
}

// SuffixesEqual reports whether two numbers match by normalized suffix
func SuffixesEqual(a, b string) bool {
	na, nb := NormalizeSuffix(a), NormalizeSuffix(b)
	return na != "" && na == nb
}

// MemoryPersonal is a map-backed personal directory for tests and demo runs
type MemoryPersonal struct {
	mu       sync.RWMutex
	contacts map[string]Contact
}

// NewMemoryPersonal creates an empty in-memory personal directory
func NewMemoryPersonal() *MemoryPersonal {
	return &MemoryPersonal{contacts: make(map[string]Contact)}
}

var _ Personal = (*MemoryPersonal)(nil)

// Add stores a contact keyed by its number
func (m *MemoryPersonal) Add(c Contact) {
	m.mu.Lock()
	m.contacts[c.Number] = c
	m.mu.Unlock()
}

// Lookup finds a contact by exact number match
func (m *MemoryPersonal) Lookup(ctx context.Context, number string) (Contact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.contacts[number]; ok {
		return c, nil
	}
	return Contact{}, ErrNotFound
}

// MemoryWork is a map-backed work directory keyed by normalized suffix
type MemoryWork struct {
	mu       sync.RWMutex
	contacts map[string]WorkContact
}

// NewMemoryWork creates an empty in-memory work directory
func NewMemoryWork() *MemoryWork {
	return &MemoryWork{contacts: make(map[string]WorkContact)}
}

var _ Work = (*MemoryWork)(nil)

// Add stores a work contact keyed by its normalized suffix
func (m *MemoryWork) Add(c WorkContact) {
	m.mu.Lock()
	m.contacts[NormalizeSuffix(c.Number)] = c
	m.mu.Unlock()
}

// Lookup finds a work contact by normalized suffix
func (m *MemoryWork) Lookup(ctx context.Context, suffix string) (WorkContact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if c, ok := m.contacts[suffix]; ok {
		return c, nil
	}
	return WorkContact{}, ErrNotFound
}
