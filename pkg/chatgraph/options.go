package chatgraph

import (
	"github.com/calebreed/chatgraph/pkg/chatgraph/checkpoint"
	"github.com/calebreed/chatgraph/pkg/chatgraph/observability"
)

// runConfig holds configuration for graph execution.
type runConfig struct {
	maxSteps int

	// Checkpointing
	checkpointStore checkpoint.Store
	threadID        string
	checkpointFatal bool

	// Observability
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
}

// defaultRunConfig returns the default execution configuration.
func defaultRunConfig() runConfig {
	return runConfig{
		maxSteps: 100,
		metrics:  observability.NoopMetrics{},
		spans:    observability.NoopSpanManager{},
	}
}

// RunOption configures execution behavior.
type RunOption func(*runConfig)

// WithMaxSteps sets the maximum number of node executions per turn.
// Default: 100.
//
// This is a backstop against runaway loops; the continuation policy is
// expected to terminate the loop long before the limit. If a run
// exceeds it, Run returns a MaxStepsError.
func WithMaxSteps(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxSteps = n
		}
	}
}

// WithCheckpointStore enables checkpointing to the given store.
// Requires WithThreadID; Run fails with ErrThreadIDRequired otherwise.
//
// The engine persists the full state only at terminal points - on
// suspension and on completion - overwriting the thread's previous
// record. Failed turns never write a checkpoint.
func WithCheckpointStore(store checkpoint.Store) RunOption {
	return func(c *runConfig) {
		c.checkpointStore = store
	}
}

// WithThreadID sets the conversation thread identifier keying the
// checkpoint record.
func WithThreadID(id string) RunOption {
	return func(c *runConfig) {
		c.threadID = id
	}
}

// WithCheckpointFailureFatal makes checkpoint write failures abort the
// run. By default a failed write is logged and the turn's result is
// still returned to the caller.
func WithCheckpointFailureFatal() RunOption {
	return func(c *runConfig) {
		c.checkpointFatal = true
	}
}

// WithMetrics sets the metrics recorder for the run.
// Default: no-op.
func WithMetrics(m observability.MetricsRecorder) RunOption {
	return func(c *runConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables span creation through the given span manager.
func WithTracing(sm observability.SpanManager) RunOption {
	return func(c *runConfig) {
		if sm != nil {
			c.spans = sm
			c.tracingEnabled = true
		}
	}
}
