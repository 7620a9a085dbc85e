package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calebreed/chatgraph/pkg/chatgraph"
)

func TestHumanAssistanceTool_Invoke(t *testing.T) {
	tool := NewHumanAssistanceTool()

	out, err := tool.Invoke(context.Background(), json.RawMessage(`{
		"request_type": "approval",
		"message": "May I delete the staging database?",
		"context": "User asked for a full reset",
		"options": ["yes", "no"],
		"urgency": "high"
	}`))
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Empty(t, out.Content)
	intr := out.Interrupt
	require.NotNil(t, intr)
	assert.NotEmpty(t, intr.ID)
	assert.Equal(t, chatgraph.InterruptTypeHumanAssistance, intr.Type)
	assert.Equal(t, "approval", intr.RequestType)
	assert.Equal(t, "May I delete the staging database?", intr.Message)
	assert.Equal(t, "User asked for a full reset", intr.Context)
	assert.Equal(t, []string{"yes", "no"}, intr.Options)
	assert.Equal(t, chatgraph.UrgencyHigh, intr.Urgency)
	assert.False(t, intr.RaisedAt.IsZero())
}

func TestHumanAssistanceTool_DefaultUrgency(t *testing.T) {
	tool := NewHumanAssistanceTool()

	out, err := tool.Invoke(context.Background(), json.RawMessage(`{
		"request_type": "clarification",
		"message": "Which region?"
	}`))
	require.NoError(t, err)
	assert.Equal(t, chatgraph.UrgencyNormal, out.Interrupt.Urgency)
}

func TestHumanAssistanceTool_Validation(t *testing.T) {
	tool := NewHumanAssistanceTool()

	tests := []struct {
		name    string
		args    string
		wantErr string
	}{
		{"missing request_type", `{"message":"hi"}`, "request_type is required"},
		{"blank request_type", `{"request_type":"  ","message":"hi"}`, "request_type is required"},
		{"missing message", `{"request_type":"approval"}`, "message is required"},
		{"invalid urgency", `{"request_type":"approval","message":"hi","urgency":"extreme"}`, `invalid urgency "extreme"`},
		{"invalid json", `{not json`, "invalid arguments"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tool.Invoke(context.Background(), json.RawMessage(tt.args))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHumanAssistanceTool_Definition(t *testing.T) {
	def := NewHumanAssistanceTool().Definition()
	assert.Equal(t, HumanAssistanceToolName, def.Name)
	assert.NotEmpty(t, def.Description)
	assert.True(t, json.Valid(def.Parameters))
}
