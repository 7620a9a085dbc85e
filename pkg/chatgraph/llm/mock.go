package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests. It replays a fixed sequence
// of responses and records every request it receives, so tests can
// assert on the exact message history the agent sent.
//
// MockClient lives in the package (not a _test file) because agent, API,
// and database sub-agent tests all script model behavior through it.
type MockClient struct {
	mu        sync.Mutex
	responses []*CompletionResponse
	err       error
	calls     []CompletionRequest
	index     int
}

// Compile-time interface check.
var _ Client = (*MockClient)(nil)

// NewMockClient creates a mock that answers every call with the given
// content and a "stop" finish reason.
func NewMockClient(content string) *MockClient {
	return &MockClient{
		responses: []*CompletionResponse{{
			Content:      content,
			FinishReason: "stop",
		}},
	}
}

// WithResponses replaces the scripted responses. Calls cycle through the
// sequence when exhausted.
func (m *MockClient) WithResponses(responses ...*CompletionResponse) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	m.index = 0
	return m
}

// WithContents is shorthand for plain-text responses in sequence.
func (m *MockClient) WithContents(contents ...string) *MockClient {
	responses := make([]*CompletionResponse, len(contents))
	for i, c := range contents {
		responses[i] = &CompletionResponse{Content: c, FinishReason: "stop"}
	}
	return m.WithResponses(responses...)
}

// WithError makes every call fail with err.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)

	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return &CompletionResponse{FinishReason: "stop"}, nil
	}

	resp := m.responses[m.index%len(m.responses)]
	m.index++

	// Shallow copy so callers can't mutate the script.
	out := *resp
	return &out, nil
}

// Calls returns the recorded requests in order.
func (m *MockClient) Calls() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CompletionRequest, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times Complete was invoked.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
