package events

import (
	"log/slog"
	"sync"
)

// Publisher is the interface for emitting events. Implementations may be
// no-op, logging, in-memory (testing and local consumers), or a broker
// integration.
type Publisher interface {
	// Publish sends an event. Never blocks the event-handling path.
	Publish(event Event)

	// Close releases resources
	Close() error
}

// NoopPublisher discards all events
type NoopPublisher struct{}

func (NoopPublisher) Publish(Event) {}
func (NoopPublisher) Close() error  { return nil }

// LoggingPublisher logs events at debug level
type LoggingPublisher struct{}

func (LoggingPublisher) Publish(event Event) {
	slog.Debug("event published",
		"subject", event.Subject(),
		"type", event.Type(),
	)
}

func (LoggingPublisher) Close() error { return nil }

// ChannelPublisher publishes to a buffered in-memory channel for local
// consumers. Events are dropped when the buffer is full rather than
// blocking the producer.
type ChannelPublisher struct {
	mu     sync.Mutex
	ch     chan Event
	closed bool
}

// NewChannelPublisher creates a channel-backed publisher
func NewChannelPublisher(bufferSize int) *ChannelPublisher {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &ChannelPublisher{ch: make(chan Event, bufferSize)}
}

func (p *ChannelPublisher) Publish(event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.ch <- event:
	default:
		slog.Warn("event dropped: buffer full", "type", event.Type())
	}
}

func (p *ChannelPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.ch)
	}
	return nil
}

// Events returns the consuming side of the channel
func (p *ChannelPublisher) Events() <-chan Event {
	return p.ch
}

// MultiPublisher fans out events to several publishers
type MultiPublisher struct {
	publishers []Publisher
}

// NewMultiPublisher creates a publisher that sends to all given publishers
func NewMultiPublisher(publishers ...Publisher) *MultiPublisher {
	return &MultiPublisher{publishers: publishers}
}

func (p *MultiPublisher) Publish(event Event) {
	for _, pub := range p.publishers {
		pub.Publish(event)
	}
}

func (p *MultiPublisher) Close() error {
	var lastErr error
	for _, pub := range p.publishers {
		if err := pub.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
