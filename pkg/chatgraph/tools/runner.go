package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/calebreed/chatgraph/pkg/chatgraph"
	"github.com/calebreed/chatgraph/pkg/chatgraph/llm"
	"github.com/calebreed/chatgraph/pkg/chatgraph/observability"
)

// Result is the outcome of one requested tool call, carrying the call
// id so the caller can fold it back into the conversation as a tool
// message.
type Result struct {
	CallID    string
	Name      string
	Content   string
	Interrupt *chatgraph.Interrupt
}

// Runner dispatches the tool calls requested by a model turn against a
// registry. Calls run concurrently, but results are always returned in
// request order so the resulting tool messages land in the history in
// the same order the model asked for them.
type Runner struct {
	registry *Registry
	logger   *slog.Logger
	metrics  observability.MetricsRecorder
	parallel int
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets the logger for per-call logging.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// WithRunnerMetrics sets the metrics recorder for per-call metrics.
func WithRunnerMetrics(m observability.MetricsRecorder) RunnerOption {
	return func(r *Runner) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithMaxParallel caps how many calls execute concurrently.
// Zero or negative means no cap.
func WithMaxParallel(n int) RunnerOption {
	return func(r *Runner) { r.parallel = n }
}

// NewRunner creates a runner over the given registry.
func NewRunner(registry *Registry, opts ...RunnerOption) *Runner {
	r := &Runner{
		registry: registry,
		metrics:  observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes every requested call and returns one Result per call,
// index-aligned with the input. Individual tool failures are contained:
// the failing call's result carries an apology string instead of
// aborting the batch. Run itself returns an error only when ctx is
// cancelled.
func (r *Runner) Run(ctx context.Context, calls []llm.ToolCall) ([]Result, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	results := make([]Result, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	if r.parallel > 0 {
		g.SetLimit(r.parallel)
	}

	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.runOne(gctx, call)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) runOne(ctx context.Context, call llm.ToolCall) Result {
	res := Result{CallID: call.ID, Name: call.Name}

	tool, ok := r.registry.Get(call.Name)
	if !ok {
		res.Content = fmt.Sprintf("Unknown tool: %s", call.Name)
		return res
	}

	args := call.Arguments
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	start := time.Now()
	out, err := tool.Invoke(ctx, args)
	duration := time.Since(start)

	observability.LogToolCall(r.logger, call.Name, call.ID, duration, err)
	r.metrics.RecordToolCall(ctx, call.Name, duration, err)

	if err != nil {
		res.Content = fmt.Sprintf("Sorry, the %s tool failed: %v", call.Name, err)
		return res
	}

	if out != nil {
		res.Content = out.Content
		res.Interrupt = out.Interrupt
		if res.Interrupt != nil && res.Interrupt.ToolCallID == "" {
			res.Interrupt.ToolCallID = call.ID
		}
	}
	return res
}

// FirstInterrupt returns the first result carrying a suspend request,
// in request order, or nil if none do.
func FirstInterrupt(results []Result) *Result {
	for i := range results {
		if results[i].Interrupt != nil {
			return &results[i]
		}
	}
	return nil
}
