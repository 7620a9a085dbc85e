package checkpoint

import (
	"encoding/json"
	"fmt"
	"time"
)

// Version is the current record format version.
// Increment when making breaking changes to the record structure.
const Version = 1

// Record is the persisted snapshot of a conversation thread.
// It contains everything needed to resume a suspended turn or to seed
// the next turn on the same thread.
type Record struct {
	// Metadata
	Version   int       `json:"version"`
	ThreadID  string    `json:"thread_id"`
	Revision  int       `json:"revision"`
	UpdatedAt time.Time `json:"updated_at"`

	// State is the serialized conversation state.
	State json.RawMessage `json:"state"`

	// Node is the node at which the turn suspended, or "" when the
	// record was written at completion.
	Node string `json:"node,omitempty"`
}

// NewRecord creates a record for a thread at the given revision.
// State must already be JSON-serialized.
func NewRecord(threadID string, revision int, state []byte) *Record {
	return &Record{
		Version:   Version,
		ThreadID:  threadID,
		Revision:  revision,
		UpdatedAt: time.Now().UTC(),
		State:     state,
	}
}

// WithNode records the node at which the turn suspended.
func (r *Record) WithNode(node string) *Record {
	r.Node = node
	return r
}

// Marshal serializes a record to JSON.
func (r *Record) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal deserializes a record from JSON and checks version
// compatibility.
func Unmarshal(data []byte) (*Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	if r.Version != Version {
		return nil, fmt.Errorf("record version mismatch: got %d, expected %d", r.Version, Version)
	}
	return &r, nil
}
