// Package eventstore records the decoded debug commands received per
// connection, so a debugging session can be inspected after the fact. The
// rendered diagrams themselves are never persisted.
package eventstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Command kinds recorded by the store.
const (
	KindSetMachine   = "setMachine"
	KindStateChanged = "stateChanged"
)

// ErrClosed is returned when a store is used after Close.
var ErrClosed = errors.New("eventstore: store is closed")

// Entry is one received command.
type Entry struct {
	ID           string    `json:"id"`
	ConnectionID string    `json:"connectionId"`
	Machine      string    `json:"machine"`
	Kind         string    `json:"kind"`
	Payload      []byte    `json:"payload"`
	ReceivedAt   time.Time `json:"receivedAt"`
}

// NewEntry builds an entry with a fresh id and timestamp.
func NewEntry(connectionID, machine, kind string, payload []byte) Entry {
	return Entry{
		ID:           uuid.New().String(),
		ConnectionID: connectionID,
		Machine:      machine,
		Kind:         kind,
		Payload:      payload,
		ReceivedAt:   time.Now().UTC(),
	}
}

// Store persists command entries.
type Store interface {
	// Append records one entry.
	Append(ctx context.Context, entry Entry) error

	// ByConnection returns the most recent entries of a connection,
	// newest first, at most limit (0 means no limit).
	ByConnection(ctx context.Context, connectionID string, limit int) ([]Entry, error)

	// Close releases the store's resources.
	Close() error
}
