package chatgraph

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/calebreed/chatgraph/pkg/chatgraph/checkpoint"
)

// LoadState loads and deserializes the latest checkpointed state for a
// thread. Returns the hydrated state together with the raw record so the
// caller can inspect the revision and the node at which the thread
// suspended.
//
// Returns ErrNoCheckpoint (wrapping the store's not-found error) when
// the thread has no record.
func LoadState[S any](store checkpoint.Store, threadID string) (S, *checkpoint.Record, error) {
	var zero S

	data, err := store.Get(threadID)
	if err != nil {
		if errors.Is(err, checkpoint.ErrNotFound) {
			return zero, nil, fmt.Errorf("%w: %s", ErrNoCheckpoint, threadID)
		}
		return zero, nil, fmt.Errorf("get checkpoint: %w", err)
	}

	rec, err := checkpoint.Unmarshal(data)
	if err != nil {
		return zero, nil, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}

	var state S
	if err := json.Unmarshal(rec.State, &state); err != nil {
		return zero, nil, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}

	return state, rec, nil
}

// Resume reloads a thread's checkpointed state and re-enters the loop at
// the node recorded at suspension time (or the entry point when the
// record was written at completion). Most callers want to modify the
// hydrated state first - fold in a human response, append a new user
// message - and should use LoadState + RunFrom directly; Resume is the
// convenience path when the state can continue untouched.
func (cg *CompiledGraph[S]) Resume(ctx Context, store checkpoint.Store, threadID string, opts ...RunOption) (*Outcome[S], error) {
	state, rec, err := LoadState[S](store, threadID)
	if err != nil {
		var zero S
		return &Outcome[S]{Status: StatusCompleted, State: zero}, err
	}

	startNode := rec.Node
	if startNode == "" {
		startNode = cg.entryPoint
	}

	opts = append(opts, WithCheckpointStore(store), WithThreadID(threadID))
	return cg.RunFrom(ctx, state, startNode, opts...)
}
