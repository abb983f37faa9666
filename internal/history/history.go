// Package history abstracts the shared, device-wide call history. The
// orchestrator only ever touches rows matching a just-ended call's number.
package history

import (
	"context"
	"time"
)

// RowType is the call type recorded in the system history
type RowType string

const (
	TypeIncoming RowType = "incoming"
	TypeOutgoing RowType = "outgoing"
	TypeMissed   RowType = "missed"
)

// Row is one system call-history record
type Row struct {
	ID        int64
	Number    string
	Type      RowType
	Read      bool
	Timestamp time.Time
}

// Store is the OS call-history collaborator: queryable, updatable,
// deletable, and observable for rows written after a call ends.
type Store interface {
	// MostRecentByNumber finds the newest row whose number matches by
	// normalized suffix
	MostRecentByNumber(ctx context.Context, number string) (Row, bool, error)

	// Update rewrites an existing row in place
	Update(ctx context.Context, row Row) error

	// Delete removes a row by id
	Delete(ctx context.Context, id int64) error

	// Subscribe registers ch for row-written notifications and returns the
	// deregister function
	Subscribe(ch chan<- Row) (cancel func())
}
