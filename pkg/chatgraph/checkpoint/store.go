// Package checkpoint provides persistent, thread-keyed storage of
// conversation state for suspend/resume.
//
// Each thread has at most one record: the latest persisted state. The
// engine overwrites it on every suspension and completion and never
// deletes it; record deletion is an external lifecycle decision.
package checkpoint

import (
	"errors"
	"time"
)

// Store persists the latest state per conversation thread.
// Implementations must be safe for concurrent use across different
// thread ids; the engine guarantees at most one active turn per thread.
type Store interface {
	// Put stores data as the thread's latest record, overwriting any
	// previous record for the same thread.
	Put(threadID string, data []byte) error

	// Get retrieves the thread's latest record.
	// Returns ErrNotFound if the thread has no record.
	Get(threadID string) ([]byte, error)

	// List returns metadata for all stored threads, ordered by most
	// recently updated first.
	List() ([]Info, error)

	// Delete removes a thread's record.
	// Returns nil if the thread has no record.
	Delete(threadID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides record metadata without loading the full state.
type Info struct {
	ThreadID  string
	Revision  int
	UpdatedAt time.Time
	Size      int64
}

// Sentinel errors for checkpoint operations.
var (
	// ErrNotFound indicates a thread has no checkpoint record.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")
)
