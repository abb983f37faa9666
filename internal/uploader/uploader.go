// Package uploader schedules network-constrained upload jobs for persisted
// work-call log entries. The subsystem never polls for status: it hands a
// job description over and the scheduler owns retries.
package uploader

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job describes one upload: which entry, and how it may run
type Job struct {
	ID      string
	EntryID string

	// RequiresNetwork constrains the job to run only with connectivity
	RequiresNetwork bool

	// MaxAttempts bounds scheduler-side retries
	MaxAttempts int

	Attempt    int
	EnqueuedAt time.Time
}

// Scheduler accepts retryable upload jobs
type Scheduler interface {
	Schedule(job Job)
}

// ChannelScheduler queues jobs on a buffered channel for an in-process
// worker. Jobs are dropped when the buffer is full rather than blocking the
// producer; the entry stays unsynced and is picked up by the next sweep.
type ChannelScheduler struct {
	mu     sync.Mutex
	ch     chan Job
	closed bool
}

// NewChannelScheduler creates a channel-backed scheduler
func NewChannelScheduler(bufferSize int) *ChannelScheduler {
	if bufferSize <= 0 {
		bufferSize = 128
	}
	return &ChannelScheduler{ch: make(chan Job, bufferSize)}
}

var _ Scheduler = (*ChannelScheduler)(nil)

// Schedule enqueues a job, dropping it if the buffer is full
func (s *ChannelScheduler) Schedule(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- job:
	default:
		slog.Warn("[Uploader] Job dropped: buffer full", "entry_id", job.EntryID)
	}
}

// ScheduleEntry builds and enqueues the default job for a log entry. This
// is the calllog-facing entry point.
func (s *ChannelScheduler) ScheduleEntry(entryID string) {
	s.Schedule(Job{
		ID:              uuid.NewString(),
		EntryID:         entryID,
		RequiresNetwork: true,
		MaxAttempts:     5,
		EnqueuedAt:      time.Now(),
	})
}

// Jobs returns the consuming side of the queue
func (s *ChannelScheduler) Jobs() <-chan Job {
	return s.ch
}

// Close stops accepting jobs
func (s *ChannelScheduler) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}
