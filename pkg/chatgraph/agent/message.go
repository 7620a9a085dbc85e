// Package agent implements the conversational chat agent: a workflow
// of input, call_model, and finalize nodes over an append-only message
// history, with tool round-trips and human-in-the-loop suspend/resume.
package agent

import (
	"fmt"

	"github.com/calebreed/chatgraph/pkg/chatgraph/llm"
)

// Role tags a message variant. The set is closed: every message in the
// history is exactly one of system, human, ai, or tool.
type Role string

const (
	RoleSystem Role = "system"
	RoleHuman  Role = "human"
	RoleAI     Role = "ai"
	RoleTool   Role = "tool"
)

// Message is one entry in the conversation history. AI messages may
// carry requested tool calls; tool messages reference the originating
// call id.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCalls is set only on ai messages that request tool use.
	ToolCalls []llm.ToolCall `json:"tool_calls,omitempty"`

	// CallID is set only on tool messages, referencing the ai
	// message's tool call this result answers.
	CallID string `json:"call_id,omitempty"`
}

// SystemMessage builds a system instruction message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// HumanMessage builds a user message.
func HumanMessage(content string) Message {
	return Message{Role: RoleHuman, Content: content}
}

// AIMessage builds a model response message, optionally carrying
// requested tool calls.
func AIMessage(content string, toolCalls ...llm.ToolCall) Message {
	return Message{Role: RoleAI, Content: content, ToolCalls: toolCalls}
}

// ToolMessage builds a tool result message answering callID.
func ToolMessage(callID, content string) Message {
	return Message{Role: RoleTool, Content: content, CallID: callID}
}

// Validate checks the variant's structural rules.
func (m Message) Validate() error {
	switch m.Role {
	case RoleSystem, RoleHuman:
		if len(m.ToolCalls) > 0 || m.CallID != "" {
			return fmt.Errorf("agent: %s message cannot carry tool call fields", m.Role)
		}
	case RoleAI:
		if m.CallID != "" {
			return fmt.Errorf("agent: ai message cannot carry a call id")
		}
	case RoleTool:
		if m.CallID == "" {
			return fmt.Errorf("agent: tool message requires a call id")
		}
		if len(m.ToolCalls) > 0 {
			return fmt.Errorf("agent: tool message cannot request tool calls")
		}
	default:
		return fmt.Errorf("agent: unknown message role %q", m.Role)
	}
	return nil
}

// toWire converts history messages to the provider wire format.
func toWire(messages []Message) []llm.Message {
	wire := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		wire = append(wire, llm.Message{
			Role:       wireRole(m.Role),
			Content:    m.Content,
			ToolCalls:  m.ToolCalls,
			ToolCallID: m.CallID,
		})
	}
	return wire
}

func wireRole(r Role) llm.Role {
	switch r {
	case RoleSystem:
		return llm.RoleSystem
	case RoleHuman:
		return llm.RoleUser
	case RoleAI:
		return llm.RoleAssistant
	case RoleTool:
		return llm.RoleTool
	}
	return llm.RoleUser
}
