// Package calllog classifies terminated calls and persists work-call log
// entries for upload.
package calllog

import "time"

// CallDirection is the logged direction of a terminated call
type CallDirection string

const (
	DirectionIncoming CallDirection = "incoming"
	DirectionOutgoing CallDirection = "outgoing"
	DirectionMissed   CallDirection = "missed"
)

// Entry is one persisted work-call log record. Created once per terminated
// work call; only the Synced flag ever changes afterwards.
type Entry struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Number          string        `json:"number"`
	DurationSeconds int64         `json:"duration_seconds"`
	Timestamp       time.Time     `json:"timestamp"`
	Direction       CallDirection `json:"direction"`
	Synced          bool          `json:"synced"`
}
