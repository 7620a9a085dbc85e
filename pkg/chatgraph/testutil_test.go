package chatgraph

import (
	"context"
)

// Test state types used across tests

// Counter is a simple state for testing sequential execution.
type Counter struct {
	Value int
}

// Convo is a chat-shaped state carrying a pending interrupt, used to
// test suspension.
type Convo struct {
	Step    int        `json:"step"`
	Trail   []string   `json:"trail"`
	Pending *Interrupt `json:"pending,omitempty"`
}

// Suspended implements Suspender.
func (c Convo) Suspended() *Interrupt {
	return c.Pending
}

// Helper node functions

// increment is a node that increments the counter.
func increment(ctx Context, s Counter) (Counter, error) {
	s.Value++
	return s, nil
}

// makeTrackingNode creates a node that records its execution.
func makeTrackingNode(name string, tracker *[]string) NodeFunc[Convo] {
	return func(ctx Context, s Convo) (Convo, error) {
		*tracker = append(*tracker, name)
		s.Step++
		s.Trail = append(s.Trail, name)
		return s, nil
	}
}

// makeFailingNode creates a node that returns the given error.
func makeFailingNode(err error) NodeFunc[Convo] {
	return func(ctx Context, s Convo) (Convo, error) {
		return s, err
	}
}

// makeSuspendingNode creates a node that raises an interrupt after
// visiting.
func makeSuspendingNode(name string) NodeFunc[Convo] {
	return func(ctx Context, s Convo) (Convo, error) {
		s.Trail = append(s.Trail, name)
		s.Pending = NewInterrupt("approval", "need a human")
		return s, nil
	}
}

// testCtx creates a simple test context.
func testCtx() Context {
	return NewContext(context.Background())
}
