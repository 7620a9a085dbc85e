// Package tools implements the tool invocation layer: a registry of
// named tools the model may call, and a runner that executes requested
// calls and folds their results back into the conversation in request
// order.
package tools

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/calebreed/chatgraph/pkg/chatgraph"
	"github.com/calebreed/chatgraph/pkg/chatgraph/llm"
)

// Tool is a named capability the model can invoke with JSON arguments.
type Tool interface {
	// Name returns the tool identifier the model calls it by.
	Name() string

	// Definition returns the descriptor bound to the model: name,
	// description, and a JSON-schema description of its arguments.
	Definition() llm.Tool

	// Invoke executes the tool. A returned error marks the call as
	// failed; the runner contains it and synthesizes a user-safe tool
	// result instead of aborting the turn.
	Invoke(ctx context.Context, args json.RawMessage) (*Outcome, error)
}

// Outcome is a single tool call's result.
//
// Ordinary tools set Content. The human-assistance tool instead sets
// Interrupt: the runner propagates it as a suspend condition rather
// than folding it into the message history.
type Outcome struct {
	// Content is the textual result folded into the conversation.
	Content string

	// Interrupt, when non-nil, requests suspension of the turn.
	Interrupt *chatgraph.Interrupt
}

// Registry is a thread-safe table of tools keyed by name.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register adds or replaces a tool. Panics on a nil tool or empty name,
// which indicate a wiring bug at process start.
func (r *Registry) Register(tool Tool) {
	if tool == nil {
		panic("tools: cannot register nil tool")
	}
	if tool.Name() == "" {
		panic("tools: cannot register tool with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Get returns the tool for a name and whether it exists.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Definitions returns descriptors for every registered tool, sorted by
// name so the set bound to the model is deterministic.
func (r *Registry) Definitions() []llm.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	defs := make([]llm.Tool, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, t.Definition())
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
