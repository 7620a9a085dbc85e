package chatgraph

// END is the terminal node identifier.
// Use this as an edge target to indicate the workflow should terminate.
const END = "__end__"

// NodeFunc is the signature for all node functions.
// Nodes receive the execution context and current state,
// and return the updated state (or the same state) and any error.
//
// The state parameter is passed by value. Nodes should derive and return
// a new state value, not rely on pointer mutation. Domain packages that
// model nodes as partial state updates apply the update before returning.
//
// Example:
//
//	func finalize(ctx chatgraph.Context, s State) (State, error) {
//	    s.IsComplete = true
//	    return s, nil
//	}
type NodeFunc[S any] func(ctx Context, state S) (S, error)

// RouterFunc determines the next node based on state.
// It is used for conditional edges where the next node depends on runtime
// state, such as a continuation policy deciding between another model
// round and finalization.
//
// The router should return a valid node ID or chatgraph.END.
// Returning an empty string or an unknown node ID causes a runtime error.
type RouterFunc[S any] func(ctx Context, state S) string

// Suspender is implemented by state types that can carry a pending
// interrupt. After every node execution the executor asks the state
// whether an interrupt is pending; a non-nil result halts the run,
// persists a checkpoint, and surfaces a suspended Outcome instead of
// continuing to the next node.
type Suspender interface {
	// Suspended returns the pending interrupt, or nil when execution
	// should proceed normally.
	Suspended() *Interrupt
}
