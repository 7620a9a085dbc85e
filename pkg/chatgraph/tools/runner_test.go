package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebreed/chatgraph/pkg/chatgraph"
	"github.com/calebreed/chatgraph/pkg/chatgraph/llm"
)

func TestRunner_ResultsInRequestOrder(t *testing.T) {
	r := NewRegistry()
	// Later calls finish first so ordering cannot come from timing.
	for i, delay := range []time.Duration{30 * time.Millisecond, 15 * time.Millisecond, 0} {
		name := fmt.Sprintf("tool-%d", i)
		d := delay
		r.Register(stubTool{name: name, invoke: func(ctx context.Context, _ json.RawMessage) (*Outcome, error) {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return &Outcome{Content: name + " done"}, nil
		}})
	}

	runner := NewRunner(r)
	calls := []llm.ToolCall{
		{ID: "c-0", Name: "tool-0"},
		{ID: "c-1", Name: "tool-1"},
		{ID: "c-2", Name: "tool-2"},
	}

	results, err := runner.Run(context.Background(), calls)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, res := range results {
		assert.Equal(t, fmt.Sprintf("c-%d", i), res.CallID)
		assert.Equal(t, fmt.Sprintf("tool-%d", i), res.Name)
		assert.Equal(t, fmt.Sprintf("tool-%d done", i), res.Content)
	}
}

func TestRunner_EmptyCalls(t *testing.T) {
	runner := NewRunner(NewRegistry())
	results, err := runner.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, results)
}

func TestRunner_FailureContained(t *testing.T) {
	r := NewRegistry()
	r.Register(staticTool("good", "fine"))
	r.Register(stubTool{name: "bad", invoke: func(context.Context, json.RawMessage) (*Outcome, error) {
		return nil, errors.New("connection refused")
	}})

	runner := NewRunner(r)
	results, err := runner.Run(context.Background(), []llm.ToolCall{
		{ID: "c-1", Name: "bad"},
		{ID: "c-2", Name: "good"},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Sorry, the bad tool failed: connection refused", results[0].Content)
	assert.Equal(t, "fine", results[1].Content)
}

func TestRunner_UnknownTool(t *testing.T) {
	runner := NewRunner(NewRegistry())
	results, err := runner.Run(context.Background(), []llm.ToolCall{
		{ID: "c-1", Name: "nope"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Unknown tool: nope", results[0].Content)
}

func TestRunner_EmptyArgumentsDefaultToObject(t *testing.T) {
	var got string
	r := NewRegistry()
	r.Register(stubTool{name: "probe", invoke: func(_ context.Context, args json.RawMessage) (*Outcome, error) {
		got = string(args)
		return &Outcome{Content: "ok"}, nil
	}})

	runner := NewRunner(r)
	_, err := runner.Run(context.Background(), []llm.ToolCall{{ID: "c-1", Name: "probe"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, got)
}

func TestRunner_InterruptStampedWithCallID(t *testing.T) {
	r := NewRegistry()
	r.Register(stubTool{name: "escalate", invoke: func(context.Context, json.RawMessage) (*Outcome, error) {
		return &Outcome{Interrupt: chatgraph.NewInterrupt("approval", "need a human")}, nil
	}})

	runner := NewRunner(r)
	results, err := runner.Run(context.Background(), []llm.ToolCall{
		{ID: "call-77", Name: "escalate"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotNil(t, results[0].Interrupt)
	assert.Equal(t, "call-77", results[0].Interrupt.ToolCallID)
}

func TestRunner_MaxParallel(t *testing.T) {
	var inflight, peak atomic.Int32

	r := NewRegistry()
	r.Register(stubTool{name: "busy", invoke: func(ctx context.Context, _ json.RawMessage) (*Outcome, error) {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inflight.Add(-1)
		return &Outcome{Content: "ok"}, nil
	}})

	runner := NewRunner(r, WithMaxParallel(2))
	calls := make([]llm.ToolCall, 6)
	for i := range calls {
		calls[i] = llm.ToolCall{ID: fmt.Sprintf("c-%d", i), Name: "busy"}
	}

	results, err := runner.Run(context.Background(), calls)
	require.NoError(t, err)
	assert.Len(t, results, 6)
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestRunner_ContextCancelled(t *testing.T) {
	r := NewRegistry()
	r.Register(staticTool("noop", "ok"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(r)
	_, err := runner.Run(ctx, []llm.ToolCall{{ID: "c-1", Name: "noop"}})
	assert.ErrorIs(t, err, context.Canceled)
}
