package chatgraph

import (
	"time"

	"github.com/google/uuid"
)

// InterruptType identifies the category of a suspension request.
// Human assistance is currently the only interrupt the engine raises.
const InterruptTypeHumanAssistance = "human_assistance"

// Urgency is the priority level of an interrupt request.
type Urgency string

// Urgency levels, from least to most pressing.
const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

// Valid reports whether u is a known urgency level.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh:
		return true
	}
	return false
}

// Interrupt describes a suspended human-assistance request.
// It is carried on the state while execution is paused, persisted with
// the checkpoint, and surfaced to callers inside a suspended Outcome.
//
// Interrupts are values, not errors: a node that needs human input
// returns a state carrying one, and the executor converts it into a
// suspended Outcome. Control flow never uses panics or sentinel errors
// for suspension.
type Interrupt struct {
	// ID uniquely identifies this interrupt for correlation between
	// the suspend response and the later resume request.
	ID string `json:"interrupt_id"`

	// Type is the interrupt category (InterruptTypeHumanAssistance).
	Type string `json:"type"`

	// RequestType is the kind of assistance requested:
	// "approval", "guidance", "custom_input", or "quality_review".
	RequestType string `json:"request_type"`

	// Message is the question or request posed to the human.
	Message string `json:"message"`

	// Context optionally describes the situation around the request.
	Context string `json:"context,omitempty"`

	// Options optionally lists choices for the human to pick from.
	Options []string `json:"options,omitempty"`

	// Urgency is the priority of the request.
	Urgency Urgency `json:"urgency"`

	// ToolCallID is the model's tool-call id awaiting the human
	// response. The resume path folds the answer into the message
	// history as a tool result referencing this id.
	ToolCallID string `json:"tool_call_id,omitempty"`

	// RaisedAt is when the interrupt was created.
	RaisedAt time.Time `json:"raised_at"`
}

// NewInterrupt creates a human-assistance interrupt with a generated id.
func NewInterrupt(requestType, message string) *Interrupt {
	return &Interrupt{
		ID:          uuid.New().String(),
		Type:        InterruptTypeHumanAssistance,
		RequestType: requestType,
		Message:     message,
		Urgency:     UrgencyNormal,
		RaisedAt:    time.Now().UTC(),
	}
}
