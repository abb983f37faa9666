package telecom

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Call is one live call handle as reported by the telephony platform.
// The orchestrator never hands Call pointers to observers; published
// snapshots carry only the ID.
type Call struct {
	// ID is our stable identifier for the handle, assigned on creation
	ID string

	mu sync.RWMutex

	state        CallState
	direction    Direction
	number       string
	connectTime  int64 // epoch millis, 0 until the call connects
	capabilities Capability
	isConference bool
	children     []string // ordered child call IDs for conference parents

	createdAt time.Time
}

// NewCall creates a call handle in the Connecting state
func NewCall(number string, direction Direction) *Call {
	return &Call{
		ID:        uuid.NewString(),
		state:     StateConnecting,
		direction: direction,
		number:    number,
		createdAt: time.Now(),
	}
}

// State returns the current call state
func (c *Call) State() CallState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// SetState transitions the call, returning false for an invalid transition
func (c *Call) SetState(next CallState) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == next {
		return true
	}
	if !c.state.CanTransitionTo(next) {
		return false
	}
	c.state = next
	if next == StateActive && c.connectTime == 0 {
		c.connectTime = time.Now().UnixMilli()
	}
	return true
}

// Direction returns the call direction
func (c *Call) Direction() Direction {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.direction
}

// Number returns the remote party number
func (c *Call) Number() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.number
}

// SetNumber updates the remote number (details-changed path)
func (c *Call) SetNumber(number string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.number = number
}

// ConnectTimeMillis returns the connect timestamp, 0 if never connected
func (c *Call) ConnectTimeMillis() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connectTime
}

// SetConnectTimeMillis overrides the connect timestamp (platform-reported)
func (c *Call) SetConnectTimeMillis(millis int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectTime = millis
}

// Capabilities returns the platform-reported capability bits
func (c *Call) Capabilities() Capability {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.capabilities
}

// SetCapabilities replaces the capability bits
func (c *Call) SetCapabilities(caps Capability) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.capabilities = caps
}

// IsConferenceParent reports whether this handle represents a merged session
func (c *Call) IsConferenceParent() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.isConference || len(c.children) > 0
}

// SetConferenceParent flags the handle as a conference parent
func (c *Call) SetConferenceParent(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isConference = v
}

// Children returns a copy of the ordered child call IDs
func (c *Call) Children() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.children))
	copy(out, c.children)
	return out
}

// SetChildren replaces the child list (children-changed path)
func (c *Call) SetChildren(ids []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.children = make([]string, len(ids))
	copy(c.children, ids)
}

// CreatedAt returns when the handle was registered locally
func (c *Call) CreatedAt() time.Time {
	return c.createdAt
}
