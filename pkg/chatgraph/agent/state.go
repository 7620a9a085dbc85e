package agent

import (
	"time"

	"github.com/calebreed/chatgraph/pkg/chatgraph"
)

// Input is the user request a turn starts from. Immutable once set.
type Input struct {
	// Text is the user's message.
	Text string `json:"input_text"`

	// ExtraContext is optional free-form context folded into the
	// system message.
	ExtraContext string `json:"extra_context,omitempty"`
}

// State is the conversation state one invocation operates on. Nodes
// never mutate it directly: they return an Update the engine applies
// through Apply, so the history stays append-only and replays are
// deterministic.
type State struct {
	Input          Input     `json:"input"`
	Messages       []Message `json:"messages"`
	IterationCount int       `json:"iteration_count"`
	IsComplete     bool      `json:"is_complete"`
	NodeHistory    []string  `json:"node_history,omitempty"`
	StartTime      time.Time `json:"start_time"`
	ThreadID       string    `json:"thread_id,omitempty"`

	// Pending is set while execution is paused awaiting a human
	// response, and cleared on resume.
	Pending *chatgraph.Interrupt `json:"pending_interrupt,omitempty"`
}

// NewState creates a fresh state for one invocation.
func NewState(input Input) State {
	return State{
		Input:     input,
		StartTime: time.Now().UTC(),
	}
}

// Suspended reports the pending interrupt, if any. The workflow engine
// checks this after every node to detect a suspend request.
func (s State) Suspended() *chatgraph.Interrupt {
	return s.Pending
}

// ExecutionTime returns wall-clock time since the turn started.
func (s State) ExecutionTime() time.Duration {
	return time.Since(s.StartTime)
}

// LastAIContent returns the content of the most recent ai message, or
// empty when none exists yet.
func (s State) LastAIContent() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAI {
			return s.Messages[i].Content
		}
	}
	return ""
}

// needsMoreWork reports whether the newest ai message still requests
// tool calls, meaning the model has not produced a user-facing answer
// for this turn yet.
func (s State) needsMoreWork() bool {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAI {
			return len(s.Messages[i].ToolCalls) > 0
		}
	}
	return true
}

// hasSystemMessage reports whether the history already carries the
// system instruction. It holds for the whole thread lifetime, so the
// system message is added at most once regardless of how many turns or
// resumes the thread sees.
func (s State) hasSystemMessage() bool {
	for _, m := range s.Messages {
		if m.Role == RoleSystem {
			return true
		}
	}
	return false
}

// Update is a partial state change produced by one node. Messages are
// appended, never replaced, and the iteration counter only moves
// forward.
type Update struct {
	// Messages are appended to the history in order.
	Messages []Message

	// IterationDelta is added to the iteration counter. Nodes use 1
	// for a completed model execution, 0 otherwise.
	IterationDelta int

	// ResetIteration zeroes the counter before the delta applies.
	// Only the input node sets it, at the start of a new turn.
	ResetIteration bool

	// Complete marks the turn finished. Never unset by an update.
	Complete bool

	// Pending records a suspend request raised during the node.
	Pending *chatgraph.Interrupt
}

// Apply merges an update into a copy of the state, leaving the
// receiver untouched.
func (s State) Apply(u Update) State {
	next := s

	if len(u.Messages) > 0 {
		merged := make([]Message, 0, len(s.Messages)+len(u.Messages))
		merged = append(merged, s.Messages...)
		merged = append(merged, u.Messages...)
		next.Messages = merged
	}

	if u.ResetIteration {
		next.IterationCount = 0
	}
	next.IterationCount += u.IterationDelta

	if u.Complete {
		next.IsComplete = true
	}
	if u.Pending != nil {
		next.Pending = u.Pending
	}
	return next
}

// visited returns a copy of the state with the node name appended to
// the history trail.
func (s State) visited(node string) State {
	next := s
	trail := make([]string, 0, len(s.NodeHistory)+1)
	trail = append(trail, s.NodeHistory...)
	trail = append(trail, node)
	next.NodeHistory = trail
	return next
}
