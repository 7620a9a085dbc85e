package chatgraph

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Context provides execution context to nodes.
// It extends context.Context with engine-specific services and metadata.
//
// Context is immutable after creation. The executor creates derived
// contexts for each node with updated NodeID and enriched logger.
type Context interface {
	context.Context

	// Logger returns the configured logger, enriched with thread, turn,
	// and node context. Never returns nil - defaults to slog.Default()
	// if not configured.
	Logger() *slog.Logger

	// TurnID returns the unique identifier for this invocation.
	// Auto-generated if not configured.
	TurnID() string

	// ThreadID returns the stable conversation identifier, or an empty
	// string for one-shot turns without checkpointing.
	ThreadID() string

	// NodeID returns the current node being executed.
	// Empty string before execution starts.
	NodeID() string
}

// executionContext is the internal implementation of Context.
type executionContext struct {
	context.Context

	logger   *slog.Logger
	turnID   string
	threadID string
	nodeID   string
}

// Logger returns the configured logger.
func (c *executionContext) Logger() *slog.Logger {
	return c.logger
}

// TurnID returns the invocation identifier.
func (c *executionContext) TurnID() string {
	return c.turnID
}

// ThreadID returns the conversation thread identifier.
func (c *executionContext) ThreadID() string {
	return c.threadID
}

// NodeID returns the current node identifier.
func (c *executionContext) NodeID() string {
	return c.nodeID
}

// ContextOption configures a Context.
type ContextOption func(*executionContext)

// WithLogger sets the logger for the context.
// The logger is enriched with turn_id, thread_id, and node during execution.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *executionContext) {
		c.logger = logger
	}
}

// WithTurnID sets the invocation identifier for the context.
// If not set, a UUID is auto-generated.
func WithTurnID(id string) ContextOption {
	return func(c *executionContext) {
		c.turnID = id
	}
}

// WithContextThreadID sets the conversation thread identifier, used to
// enrich log records. For checkpointing, pass WithThreadID() as a
// RunOption to Run().
func WithContextThreadID(id string) ContextOption {
	return func(c *executionContext) {
		c.threadID = id
	}
}

// NewContext creates an execution context from a standard context.
// The returned Context wraps the provided context.Context and adds
// engine-specific services and metadata.
//
// Example:
//
//	ctx := chatgraph.NewContext(context.Background(),
//	    chatgraph.WithLogger(myLogger),
//	    chatgraph.WithContextThreadID("thread-123"))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &executionContext{
		Context: ctx,
		logger:  slog.Default(),
		turnID:  uuid.New().String(),
	}

	for _, opt := range opts {
		opt(ec)
	}

	return ec
}

// withNodeID returns a new context with the given node ID set.
// Used internally by the executor to enrich the context per-node.
func (c *executionContext) withNodeID(nodeID string) *executionContext {
	logger := c.logger.With("turn_id", c.turnID, "node", nodeID)
	if c.threadID != "" {
		logger = logger.With("thread_id", c.threadID)
	}
	return &executionContext{
		Context:  c.Context,
		logger:   logger,
		turnID:   c.turnID,
		threadID: c.threadID,
		nodeID:   nodeID,
	}
}
