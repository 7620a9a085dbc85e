package agent

import "errors"

var (
	// ErrEmptyInput is returned when a request carries no input text.
	ErrEmptyInput = errors.New("agent: input text is required")

	// ErrThreadNotFound is returned by Resume when the thread has no
	// checkpoint or is not suspended.
	ErrThreadNotFound = errors.New("agent: thread not found or not awaiting input")

	// ErrNoCheckpointStore is returned when a thread operation needs
	// persistence but the agent was built without a store.
	ErrNoCheckpointStore = errors.New("agent: no checkpoint store configured")

	// ErrThreadSuspended is returned when Invoke targets a thread that
	// is paused awaiting a human response. Resume it instead.
	ErrThreadSuspended = errors.New("agent: thread is suspended awaiting a human response")
)
