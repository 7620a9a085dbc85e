package chatgraph

// Status describes how a run ended.
type Status string

// Run terminal statuses.
const (
	// StatusCompleted means the run reached END normally.
	StatusCompleted Status = "completed"

	// StatusSuspended means a node raised an interrupt and execution
	// paused before reaching END. The state was checkpointed if a
	// store and thread id were configured.
	StatusSuspended Status = "suspended"
)

// Outcome is the result of a Run or RunFrom call.
//
// A run either completes or suspends; failures are reported through the
// error return instead. Suspension is an ordinary value so callers can
// branch on it without unwrapping sentinel errors:
//
//	outcome, err := compiled.Run(ctx, state, opts...)
//	if err != nil { ... }
//	if outcome.IsSuspended() {
//	    prompt := outcome.Interrupt.Message
//	    ...
//	}
type Outcome[S any] struct {
	// Status is StatusCompleted or StatusSuspended.
	Status Status

	// State is the state when the run ended. For suspended runs this
	// includes the pending interrupt.
	State S

	// Interrupt is non-nil iff Status is StatusSuspended.
	Interrupt *Interrupt

	// Node is the node at which the run suspended. Empty for
	// completed runs.
	Node string
}

// IsSuspended reports whether the run paused awaiting external input.
func (o *Outcome[S]) IsSuspended() bool {
	return o.Status == StatusSuspended
}
