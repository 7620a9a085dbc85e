package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/calebreed/chatgraph/pkg/chatgraph"
	"github.com/calebreed/chatgraph/pkg/chatgraph/llm"
)

// HumanAssistanceToolName is the name the model invokes to request
// input from a human operator.
const HumanAssistanceToolName = "human_assistance"

// HumanAssistanceTool lets the model escalate to a human. Invoking it
// does not produce a textual result: it produces a suspend request that
// halts the turn until a human responds and the thread is resumed.
type HumanAssistanceTool struct{}

// NewHumanAssistanceTool creates the human escalation tool.
func NewHumanAssistanceTool() *HumanAssistanceTool {
	return &HumanAssistanceTool{}
}

// Name implements Tool.
func (t *HumanAssistanceTool) Name() string { return HumanAssistanceToolName }

// Definition implements Tool.
func (t *HumanAssistanceTool) Definition() llm.Tool {
	return llm.Tool{
		Name:        HumanAssistanceToolName,
		Description: "Request assistance from a human operator. Use this when you need approval, clarification, or information only a human can provide. The conversation pauses until the human responds.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"request_type": {
					"type": "string",
					"description": "Category of the request, e.g. approval, clarification, information"
				},
				"message": {
					"type": "string",
					"description": "The question or request to show the human"
				},
				"context": {
					"type": "string",
					"description": "Optional background that helps the human answer"
				},
				"options": {
					"type": "array",
					"items": {"type": "string"},
					"description": "Optional set of choices to present"
				},
				"urgency": {
					"type": "string",
					"enum": ["low", "normal", "high"],
					"description": "How urgent the request is, defaults to normal"
				}
			},
			"required": ["request_type", "message"]
		}`),
	}
}

type humanAssistanceArgs struct {
	RequestType string   `json:"request_type"`
	Message     string   `json:"message"`
	Context     string   `json:"context"`
	Options     []string `json:"options"`
	Urgency     string   `json:"urgency"`
}

// Invoke implements Tool. It validates the request and returns an
// Outcome whose Interrupt carries the suspend request.
func (t *HumanAssistanceTool) Invoke(_ context.Context, args json.RawMessage) (*Outcome, error) {
	var parsed humanAssistanceArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return nil, fmt.Errorf("human_assistance: invalid arguments: %w", err)
	}
	if strings.TrimSpace(parsed.RequestType) == "" {
		return nil, fmt.Errorf("human_assistance: request_type is required")
	}
	if strings.TrimSpace(parsed.Message) == "" {
		return nil, fmt.Errorf("human_assistance: message is required")
	}

	intr := chatgraph.NewInterrupt(parsed.RequestType, parsed.Message)
	intr.Context = parsed.Context
	intr.Options = parsed.Options

	if parsed.Urgency != "" {
		urgency := chatgraph.Urgency(parsed.Urgency)
		if !urgency.Valid() {
			return nil, fmt.Errorf("human_assistance: invalid urgency %q", parsed.Urgency)
		}
		intr.Urgency = urgency
	}

	return &Outcome{Interrupt: intr}, nil
}
