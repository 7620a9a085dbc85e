package agent

// MaxModelRounds caps completed call_model executions per invocation.
// The bound is independent of how many tool calls happen inside a
// single execution, so repeated tool round-trips cannot loop forever.
const MaxModelRounds = 3

// Decision is the continuation policy's verdict.
type Decision string

const (
	DecisionContinue Decision = "continue"
	DecisionEnd      Decision = "end"
)

// Decide is the continuation policy: end once the iteration cap is
// reached or the turn is marked complete, otherwise continue. It is a
// pure function of the state.
func Decide(s State) Decision {
	if s.IterationCount >= MaxModelRounds || s.IsComplete {
		return DecisionEnd
	}
	return DecisionContinue
}
