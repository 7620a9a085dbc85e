package agent

import (
	"fmt"

	"github.com/calebreed/chatgraph/pkg/chatgraph"
	"github.com/calebreed/chatgraph/pkg/chatgraph/llm"
)

// Workflow node names.
const (
	NodeInput     = "input"
	NodeCallModel = "call_model"
	NodeFinalize  = "finalize"
)

// updateFunc is a node body returning a partial state update. The
// applied wrapper turns it into an engine node that merges the update
// and records the visit.
type updateFunc func(ctx chatgraph.Context, s State) (Update, error)

func applied(name string, fn updateFunc) chatgraph.NodeFunc[State] {
	return func(ctx chatgraph.Context, s State) (State, error) {
		update, err := fn(ctx, s)
		if err != nil {
			return s, err
		}
		return s.Apply(update).visited(name), nil
	}
}

// inputNode seeds the history for a new turn: the system instruction
// when the thread does not have one yet, then the user message. The
// iteration counter resets here so each turn gets the full loop
// budget.
func (a *Agent) inputNode(_ chatgraph.Context, s State) (Update, error) {
	var messages []Message
	if !s.hasSystemMessage() {
		messages = append(messages, SystemMessage(formatSystemMessage(s.Input.ExtraContext)))
	}
	messages = append(messages, HumanMessage(s.Input.Text))

	return Update{Messages: messages, ResetIteration: true}, nil
}

// callModelNode invokes the model with the full history and the bound
// tool set. When the response requests tool calls, each is executed
// and its result appended as a tool message before a follow-up
// invocation produces the user-facing response.
//
// The iteration counter increments only when the execution completes.
// A human-assistance request suspends the node instead: results of the
// other requested calls are still folded in, the counter stays put,
// and the pending interrupt rides out on the state. The resumed
// execution finishes the round and counts it then.
func (a *Agent) callModelNode(ctx chatgraph.Context, s State) (Update, error) {
	resp, err := a.complete(ctx, s.Messages)
	if err != nil {
		return Update{}, err
	}

	if len(resp.ToolCalls) == 0 {
		return Update{
			Messages:       []Message{AIMessage(resp.Content)},
			IterationDelta: 1,
		}, nil
	}

	messages := []Message{AIMessage(resp.Content, resp.ToolCalls...)}

	results, err := a.runner.Run(ctx, resp.ToolCalls)
	if err != nil {
		return Update{}, fmt.Errorf("run tool calls: %w", err)
	}

	var pending *chatgraph.Interrupt
	for _, res := range results {
		if res.Interrupt != nil {
			if pending == nil {
				pending = res.Interrupt
				continue
			}
			// Only one suspend request per round is honored.
			messages = append(messages, ToolMessage(res.CallID,
				"Another human assistance request is already pending. Please raise this one again after it is answered."))
			continue
		}
		messages = append(messages, ToolMessage(res.CallID, res.Content))
	}

	if pending != nil {
		return Update{Messages: messages, Pending: pending}, nil
	}

	followUp, err := a.complete(ctx, append(s.Messages[:len(s.Messages):len(s.Messages)], messages...))
	if err != nil {
		return Update{}, err
	}
	messages = append(messages, AIMessage(followUp.Content, followUp.ToolCalls...))

	return Update{Messages: messages, IterationDelta: 1}, nil
}

func (a *Agent) complete(ctx chatgraph.Context, history []Message) (*llm.CompletionResponse, error) {
	req := llm.CompletionRequest{
		Messages:    toWire(history),
		Model:       a.model,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	}
	if a.registry != nil {
		req.Tools = a.registry.Definitions()
	}

	resp, err := a.client.Complete(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("model invocation: %w", err)
	}
	return resp, nil
}

// finalizeNode marks the turn complete. Idempotent.
func (a *Agent) finalizeNode(_ chatgraph.Context, _ State) (Update, error) {
	return Update{Complete: true}, nil
}

// continueRouter applies the continuation policy after call_model. The
// loop also ends once the model has produced a plain answer with no
// outstanding tool calls: there is no more work to iterate on.
func continueRouter(_ chatgraph.Context, s State) string {
	if Decide(s) == DecisionEnd || !s.needsMoreWork() {
		return NodeFinalize
	}
	return NodeCallModel
}
