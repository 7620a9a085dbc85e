package chatgraph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/calebreed/chatgraph/pkg/chatgraph/checkpoint"
	"github.com/calebreed/chatgraph/pkg/chatgraph/observability"
)

// Run executes the graph with the given initial state, starting at the
// entry point. Returns the terminal Outcome and any error encountered.
//
// A run ends one of three ways:
//   - Completed: the graph reached END; the outcome carries the final state.
//   - Suspended: a node left a pending interrupt on the state; the outcome
//     carries the paused state and the interrupt descriptor. When a
//     checkpoint store and thread id are configured the paused state is
//     persisted first, so a later resume can pick it up.
//   - Error: a node failed, panicked, or the run was cancelled. No
//     checkpoint is written for a failed turn; the returned outcome holds
//     the state at the point of failure for debugging.
//
// Node execution is strictly sequential: each node's output is the next
// node's input, so no two nodes ever run concurrently on the same state.
func (cg *CompiledGraph[S]) Run(ctx Context, state S, opts ...RunOption) (outcome *Outcome[S], runErr error) {
	if ctx == nil {
		return &Outcome[S]{Status: StatusCompleted, State: state}, ErrNilContext
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.checkpointStore != nil && cfg.threadID == "" {
		return &Outcome[S]{Status: StatusCompleted, State: state}, ErrThreadIDRequired
	}

	turnID := ctx.TurnID()
	startTime := time.Now()

	observability.LogTurnStart(ctx.Logger(), turnID, cfg.threadID)

	var execCtx context.Context = ctx
	var turnSpan trace.Span
	if cfg.tracingEnabled {
		execCtx, turnSpan = cfg.spans.StartTurnSpan(ctx, cfg.threadID, turnID)
		defer func() {
			cfg.spans.EndSpanWithError(turnSpan, runErr)
		}()
	}

	var nodeCount int
	outcome, nodeCount, runErr = cg.runLoop(execCtx, ctx, state, cg.entryPoint, &cfg)

	duration := time.Since(startTime)
	durationMs := float64(duration.Milliseconds())

	cfg.metrics.RecordTurn(ctx, runErr == nil, outcome.IsSuspended(), duration)

	switch {
	case runErr != nil:
		lastNode := ""
		var nodeErr *NodeError
		var maxErr *MaxStepsError
		var cancelErr *CancellationError
		switch {
		case errors.As(runErr, &nodeErr):
			lastNode = nodeErr.NodeID
		case errors.As(runErr, &maxErr):
			lastNode = maxErr.LastNodeID
		case errors.As(runErr, &cancelErr):
			lastNode = cancelErr.NodeID
		}
		observability.LogTurnError(ctx.Logger(), turnID, runErr, durationMs, lastNode)
	case outcome.IsSuspended():
		observability.LogSuspend(ctx.Logger(), turnID, outcome.Node, outcome.Interrupt.ID)
	default:
		observability.LogTurnComplete(ctx.Logger(), turnID, durationMs, nodeCount)
	}

	return outcome, runErr
}

// RunFrom executes the graph starting at a specific node instead of the
// entry point. This is how a suspended turn resumes: the caller hydrates
// the checkpointed state, folds in the awaited input, and re-enters the
// loop at the node that raised the interrupt.
func (cg *CompiledGraph[S]) RunFrom(ctx Context, state S, startNode string, opts ...RunOption) (*Outcome[S], error) {
	if ctx == nil {
		return &Outcome[S]{Status: StatusCompleted, State: state}, ErrNilContext
	}
	if startNode != END && !cg.HasNode(startNode) {
		return &Outcome[S]{Status: StatusCompleted, State: state},
			fmt.Errorf("%w: %s", ErrInvalidResumeNode, startNode)
	}

	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.checkpointStore != nil && cfg.threadID == "" {
		return &Outcome[S]{Status: StatusCompleted, State: state}, ErrThreadIDRequired
	}

	outcome, _, err := cg.runLoop(ctx, ctx, state, startNode, &cfg)
	return outcome, err
}

// runLoop is the sequential executor: Init -> node -> (suspend check) ->
// route -> ... -> END. tracingCtx carries span context; engCtx is the
// engine Context. Returns the terminal outcome, executed node count, and
// any error.
func (cg *CompiledGraph[S]) runLoop(tracingCtx context.Context, engCtx Context, state S, startNode string, cfg *runConfig) (*Outcome[S], int, error) {
	current := startNode
	steps := 0
	nodeCount := 0

	for current != END {
		steps++
		if steps > cfg.maxSteps {
			return &Outcome[S]{Status: StatusCompleted, State: state}, nodeCount, &MaxStepsError{
				Max:        cfg.maxSteps,
				LastNodeID: current,
				State:      state,
			}
		}

		// Check for cancellation before executing the node
		select {
		case <-engCtx.Done():
			return &Outcome[S]{Status: StatusCompleted, State: state}, nodeCount, &CancellationError{
				NodeID: current,
				State:  state,
				Cause:  engCtx.Err(),
			}
		default:
		}

		observability.LogNodeStart(engCtx.Logger(), current)

		nodeTracingCtx := tracingCtx
		var nodeSpan trace.Span
		if cfg.tracingEnabled {
			nodeTracingCtx, nodeSpan = cfg.spans.StartNodeSpan(tracingCtx, current)
		}

		nodeStart := time.Now()

		var nodeErr error
		state, nodeErr = cg.executeNode(engCtx, current, state)

		nodeDuration := time.Since(nodeStart)
		nodeDurationMs := float64(nodeDuration.Milliseconds())

		cfg.metrics.RecordNodeExecution(nodeTracingCtx, current, nodeDuration, nodeErr)

		if cfg.tracingEnabled {
			cfg.spans.EndSpanWithError(nodeSpan, nodeErr)
		}

		if nodeErr != nil {
			observability.LogNodeError(engCtx.Logger(), current, nodeErr)
			return &Outcome[S]{Status: StatusCompleted, State: state}, nodeCount, nodeErr
		}
		observability.LogNodeComplete(engCtx.Logger(), current, nodeDurationMs)
		nodeCount++

		// A node that left a pending interrupt on the state suspends the
		// run: persist and hand control back to the caller. finalize is
		// never reached for a suspended turn.
		if interrupt := pendingInterrupt(state); interrupt != nil {
			if err := cg.saveCheckpoint(engCtx, cfg, current, state); err != nil {
				return &Outcome[S]{Status: StatusCompleted, State: state}, nodeCount, err
			}
			return &Outcome[S]{
				Status:    StatusSuspended,
				State:     state,
				Interrupt: interrupt,
				Node:      current,
			}, nodeCount, nil
		}

		next, err := cg.nextNode(engCtx, state, current)
		if err != nil {
			return &Outcome[S]{Status: StatusCompleted, State: state}, nodeCount, err
		}

		current = next
	}

	// Terminal checkpoint: the completed state becomes the thread's
	// latest record, seeding the next turn on the same thread.
	if err := cg.saveCheckpoint(engCtx, cfg, "", state); err != nil {
		return &Outcome[S]{Status: StatusCompleted, State: state}, nodeCount, err
	}

	return &Outcome[S]{Status: StatusCompleted, State: state}, nodeCount, nil
}

// pendingInterrupt asks the state for a pending interrupt, if the state
// type supports suspension at all.
func pendingInterrupt[S any](state S) *Interrupt {
	if s, ok := any(state).(Suspender); ok {
		return s.Suspended()
	}
	return nil
}

// saveCheckpoint persists the state as the thread's latest record.
// nodeID is the node at which the run suspended, or "" on completion.
// No-op when checkpointing is not configured.
func (cg *CompiledGraph[S]) saveCheckpoint(ctx Context, cfg *runConfig, nodeID string, state S) error {
	if cfg.checkpointStore == nil || cfg.threadID == "" {
		return nil
	}

	stateBytes, err := json.Marshal(state)
	if err != nil {
		if cfg.checkpointFatal {
			return &CheckpointError{ThreadID: cfg.threadID, Op: "serialize", Err: err}
		}
		observability.LogCheckpointError(ctx.Logger(), cfg.threadID, "serialize", err)
		return nil
	}

	revision := 1
	if data, err := cfg.checkpointStore.Get(cfg.threadID); err == nil {
		if prev, err := checkpoint.Unmarshal(data); err == nil {
			revision = prev.Revision + 1
		}
	}

	rec := checkpoint.NewRecord(cfg.threadID, revision, stateBytes).WithNode(nodeID)
	data, err := rec.Marshal()
	if err != nil {
		if cfg.checkpointFatal {
			return &CheckpointError{ThreadID: cfg.threadID, Op: "marshal", Err: err}
		}
		observability.LogCheckpointError(ctx.Logger(), cfg.threadID, "marshal", err)
		return nil
	}

	if err := cfg.checkpointStore.Put(cfg.threadID, data); err != nil {
		if cfg.checkpointFatal {
			return &CheckpointError{ThreadID: cfg.threadID, Op: "put", Err: err}
		}
		observability.LogCheckpointError(ctx.Logger(), cfg.threadID, "put", err)
		return nil
	}

	sizeBytes := len(data)
	observability.LogCheckpoint(ctx.Logger(), cfg.threadID, revision, sizeBytes)
	cfg.metrics.RecordCheckpoint(ctx, cfg.threadID, int64(sizeBytes))

	return nil
}

// executeNode executes a single node with panic recovery.
// Returns the new state and any error (including wrapped panics).
func (cg *CompiledGraph[S]) executeNode(ctx Context, nodeID string, state S) (result S, err error) {
	fn, exists := cg.getNode(nodeID)
	if !exists {
		// This shouldn't happen if compilation was successful
		return state, &NodeError{
			NodeID: nodeID,
			Op:     "lookup",
			Err:    fmt.Errorf("node not found: %s", nodeID),
		}
	}

	// Create node-specific context with enriched logger
	nodeCtx := ctx
	if ec, ok := ctx.(*executionContext); ok {
		nodeCtx = ec.withNodeID(nodeID)
	}

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			result = state
			err = &PanicError{
				NodeID: nodeID,
				Value:  r,
				Stack:  string(debug.Stack()),
			}
		}
	}()

	result, err = fn(nodeCtx, state)
	if err != nil {
		return result, &NodeError{
			NodeID: nodeID,
			Op:     "execute",
			Err:    err,
		}
	}

	return result, nil
}

// nextNode determines the next node to execute.
// Checks conditional edges first, then simple edges.
func (cg *CompiledGraph[S]) nextNode(ctx Context, state S, current string) (string, error) {
	if router, exists := cg.getRouter(current); exists {
		routerCtx := ctx
		if ec, ok := ctx.(*executionContext); ok {
			routerCtx = ec.withNodeID(current)
		}

		next := router(routerCtx, state)

		if next == "" {
			return "", &RouterError{
				FromNode: current,
				Returned: next,
				Err:      ErrInvalidRouterResult,
			}
		}

		if next != END {
			if _, exists := cg.getNode(next); !exists {
				return "", &RouterError{
					FromNode: current,
					Returned: next,
					Err:      ErrRouterTargetNotFound,
				}
			}
		}

		return next, nil
	}

	edges := cg.getEdges(current)
	if len(edges) == 0 {
		// No outgoing edges - this shouldn't happen if compilation was successful
		return "", &NodeError{
			NodeID: current,
			Op:     "routing",
			Err:    fmt.Errorf("no outgoing edge from node %s", current),
		}
	}

	// Simple edges are unconditional; take the first
	return edges[0], nil
}
