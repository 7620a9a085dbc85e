package agent

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/calebreed/chatgraph/pkg/chatgraph"
	"github.com/calebreed/chatgraph/pkg/chatgraph/checkpoint"
	"github.com/calebreed/chatgraph/pkg/chatgraph/llm"
	"github.com/calebreed/chatgraph/pkg/chatgraph/observability"
	"github.com/calebreed/chatgraph/pkg/chatgraph/tools"
)

// Info describes an agent for API discovery.
type Info struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// Agent is the conversational agent: a compiled workflow over the
// chat state, a model client, a tool registry, and an optional
// checkpoint store for multi-turn and suspendable threads.
type Agent struct {
	info     Info
	graph    *chatgraph.CompiledGraph[State]
	client   llm.Client
	registry *tools.Registry
	runner   *tools.Runner
	store    checkpoint.Store
	logger   *slog.Logger
	metrics  observability.MetricsRecorder
	spans    observability.SpanManager
	tracing  bool

	model       string
	temperature float64
	maxTokens   int
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithInfo sets the agent's discovery metadata.
func WithInfo(info Info) AgentOption {
	return func(a *Agent) { a.info = info }
}

// WithTools sets the registry of tools bound to the model.
func WithTools(registry *tools.Registry) AgentOption {
	return func(a *Agent) { a.registry = registry }
}

// WithCheckpointStore enables thread persistence, multi-turn
// hydration, and suspend/resume.
func WithCheckpointStore(store checkpoint.Store) AgentOption {
	return func(a *Agent) { a.store = store }
}

// WithLogger sets the agent logger.
func WithLogger(logger *slog.Logger) AgentOption {
	return func(a *Agent) { a.logger = logger }
}

// WithMetrics sets the metrics recorder passed to the engine.
func WithMetrics(m observability.MetricsRecorder) AgentOption {
	return func(a *Agent) {
		if m != nil {
			a.metrics = m
		}
	}
}

// WithTracing enables span emission through the given manager.
func WithTracing(sm observability.SpanManager) AgentOption {
	return func(a *Agent) {
		if sm != nil {
			a.spans = sm
			a.tracing = true
		}
	}
}

// WithModel sets the model identifier sent to the provider.
func WithModel(model string) AgentOption {
	return func(a *Agent) { a.model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) AgentOption {
	return func(a *Agent) { a.temperature = t }
}

// WithMaxTokens caps the provider response length.
func WithMaxTokens(n int) AgentOption {
	return func(a *Agent) { a.maxTokens = n }
}

// New builds the chat agent and compiles its workflow:
// input -> call_model -> (loop per continuation policy) -> finalize.
func New(client llm.Client, opts ...AgentOption) (*Agent, error) {
	a := &Agent{
		info: Info{
			ID:          "chat",
			Name:        "Chat Agent",
			Description: "General-purpose conversational agent with tool use and human-in-the-loop support",
			Version:     "1.0.0",
		},
		client:      client,
		registry:    tools.NewRegistry(),
		metrics:     observability.NoopMetrics{},
		spans:       observability.NoopSpanManager{},
		model:       "gpt-4o-mini",
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.runner = tools.NewRunner(a.registry,
		tools.WithRunnerLogger(a.logger),
		tools.WithRunnerMetrics(a.metrics))

	graph, err := chatgraph.NewGraph[State]().
		AddNode(NodeInput, applied(NodeInput, a.inputNode)).
		AddNode(NodeCallModel, applied(NodeCallModel, a.callModelNode)).
		AddNode(NodeFinalize, applied(NodeFinalize, a.finalizeNode)).
		AddEdge(NodeInput, NodeCallModel).
		AddConditionalEdge(NodeCallModel, continueRouter).
		AddEdge(NodeFinalize, chatgraph.END).
		SetEntry(NodeInput).
		Compile()
	if err != nil {
		return nil, err
	}
	a.graph = graph

	return a, nil
}

// Info returns the agent's discovery metadata, with the registered
// tool names as capabilities.
func (a *Agent) Info() Info {
	info := a.info
	if a.registry != nil {
		info.Capabilities = a.registry.Names()
	}
	return info
}

// Request is one user turn.
type Request struct {
	// InputText is the user's message. Required.
	InputText string `json:"input_text"`

	// ExtraContext optionally augments the system instruction.
	ExtraContext string `json:"extra_context,omitempty"`

	// ThreadID continues an existing thread. When persistence is
	// configured and the id is empty, a fresh one is generated so the
	// turn is always resumable.
	ThreadID string `json:"thread_id,omitempty"`
}

// Result is the outcome of one turn, completed or suspended.
type Result struct {
	// OutputText is the assistant's reply, or the human-assistance
	// prompt when the turn suspended.
	OutputText string `json:"output_text"`

	ThreadID      string        `json:"thread_id,omitempty"`
	Iterations    int           `json:"iterations"`
	MessageCount  int           `json:"message_count"`
	NodeHistory   []string      `json:"node_history,omitempty"`
	ExecutionTime time.Duration `json:"execution_time"`

	// Suspended marks a turn paused awaiting a human response.
	Suspended bool `json:"is_interrupted,omitempty"`

	// Interrupt describes the pending request when Suspended.
	Interrupt *chatgraph.Interrupt `json:"interrupt_request,omitempty"`

	// NextSteps tells the caller how to continue a suspended turn.
	NextSteps []string `json:"next_steps,omitempty"`
}

// Invoke runs one turn. When the thread already has a checkpoint its
// history is hydrated first, so context carries across turns. A
// suspended thread cannot take new input until it is resumed.
func (a *Agent) Invoke(ctx context.Context, req Request) (*Result, error) {
	if req.InputText == "" {
		return nil, ErrEmptyInput
	}

	threadID := req.ThreadID
	if threadID == "" && a.store != nil {
		threadID = uuid.New().String()
	}

	state := NewState(Input{Text: req.InputText, ExtraContext: req.ExtraContext})
	state.ThreadID = threadID

	if a.store != nil && req.ThreadID != "" {
		prior, _, err := chatgraph.LoadState[State](a.store, req.ThreadID)
		switch {
		case err == nil:
			if prior.Pending != nil {
				return nil, ErrThreadSuspended
			}
			state.Messages = prior.Messages
		case errors.Is(err, chatgraph.ErrNoCheckpoint):
			// First turn on this thread.
		default:
			return nil, err
		}
	}

	ectx := chatgraph.NewContext(ctx,
		chatgraph.WithLogger(a.logger),
		chatgraph.WithContextThreadID(threadID))

	outcome, err := a.graph.Run(ectx, state, a.runOptions(threadID)...)
	if err != nil {
		return nil, err
	}
	return a.result(outcome), nil
}

// Resume answers a suspended thread's pending interrupt with a human
// response and continues execution at call_model. The iteration
// counter is not reset: the resumed round completes and counts then.
func (a *Agent) Resume(ctx context.Context, threadID, humanResponse string) (*Result, error) {
	if a.store == nil {
		return nil, ErrNoCheckpointStore
	}
	if threadID == "" {
		return nil, ErrThreadNotFound
	}

	state, rec, err := chatgraph.LoadState[State](a.store, threadID)
	if err != nil {
		if errors.Is(err, chatgraph.ErrNoCheckpoint) {
			return nil, ErrThreadNotFound
		}
		return nil, err
	}
	if state.Pending == nil {
		return nil, ErrThreadNotFound
	}

	interruptID := state.Pending.ID
	state = state.Apply(Update{
		Messages: []Message{ToolMessage(state.Pending.ToolCallID, humanResponse)},
	})
	state.Pending = nil
	state.StartTime = time.Now().UTC()

	startNode := rec.Node
	if startNode == "" {
		startNode = NodeCallModel
	}

	ectx := chatgraph.NewContext(ctx,
		chatgraph.WithLogger(a.logger),
		chatgraph.WithContextThreadID(threadID))

	observability.LogResume(a.logger, threadID, interruptID)

	outcome, err := a.graph.RunFrom(ectx, state, startNode, a.runOptions(threadID)...)
	if err != nil {
		return nil, err
	}
	return a.result(outcome), nil
}

func (a *Agent) runOptions(threadID string) []chatgraph.RunOption {
	opts := []chatgraph.RunOption{
		chatgraph.WithMetrics(a.metrics),
	}
	if a.store != nil && threadID != "" {
		opts = append(opts,
			chatgraph.WithCheckpointStore(a.store),
			chatgraph.WithThreadID(threadID))
	}
	if a.tracing {
		opts = append(opts, chatgraph.WithTracing(a.spans))
	}
	return opts
}

func (a *Agent) result(outcome *chatgraph.Outcome[State]) *Result {
	state := outcome.State
	res := &Result{
		ThreadID:      state.ThreadID,
		Iterations:    state.IterationCount,
		MessageCount:  len(state.Messages),
		NodeHistory:   state.NodeHistory,
		ExecutionTime: state.ExecutionTime(),
	}

	if outcome.IsSuspended() {
		res.Suspended = true
		res.Interrupt = outcome.Interrupt
		res.OutputText = outcome.Interrupt.Message
		res.NextSteps = []string{
			"Review the assistance request and gather the needed answer",
			"Resume the thread with the human response to continue the conversation",
		}
		return res
	}

	res.OutputText = state.LastAIContent()
	return res
}
