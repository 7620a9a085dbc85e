// Package llm defines the model provider client consumed by the chat
// agent: a chat-completion call with tool binding, plus the wire types
// shared between the agent, the tool layer, and provider
// implementations.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Client is the model provider interface.
// Implementations must honor context cancellation and return a
// *ProviderError for provider-side failures so callers can distinguish
// credential problems from generic outages.
type Client interface {
	// Complete invokes the model with the full message history and the
	// bound tool set. The provider may answer with plain content,
	// with requested tool calls, or both.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompletionRequest configures a chat completion call.
type CompletionRequest struct {
	Messages []Message `json:"messages"`

	// Model configuration
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`

	// Tools the provider may request calls to, by name and arguments.
	Tools []Tool `json:"tools,omitempty"`
}

// Message is a conversation turn on the wire.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`

	// ToolCalls carries the model's requested invocations on
	// assistant messages.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID references the originating call on tool-result
	// messages.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// Role identifies the message sender.
type Role string

// Standard wire roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Tool describes an available tool for the model.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"` // JSON Schema
}

// ToolCall represents a tool invocation request from the model.
type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// CompletionResponse is the output of a completion call.
type CompletionResponse struct {
	Content      string        `json:"content"`
	ToolCalls    []ToolCall    `json:"tool_calls,omitempty"`
	Usage        TokenUsage    `json:"usage"`
	Model        string        `json:"model"`
	FinishReason string        `json:"finish_reason"`
	Duration     time.Duration `json:"duration"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add accumulates another usage into this one.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// ProviderError reports a provider-side failure: unreachable endpoint,
// rejected credentials, malformed response. The engine does not retry
// these; they abort the current turn.
type ProviderError struct {
	// Provider names the backend ("openai", "search").
	Provider string
	// StatusCode is the HTTP status, when the failure was an HTTP
	// error response. Zero otherwise.
	StatusCode int
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("provider %s: status %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Unauthorized reports whether the failure was a credential problem.
func (e *ProviderError) Unauthorized() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}
