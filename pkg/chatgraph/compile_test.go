package chatgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompile_Valid tests compiling a well-formed graph.
func TestCompile_Valid(t *testing.T) {
	compiled, err := NewGraph[Counter]().
		AddNode("a", increment).
		AddNode("b", increment).
		AddEdge("a", "b").
		AddEdge("b", END).
		SetEntry("a").
		Compile()

	require.NoError(t, err)
	assert.Equal(t, "a", compiled.EntryPoint())
	assert.ElementsMatch(t, []string{"a", "b"}, compiled.NodeIDs())
	assert.True(t, compiled.HasNode("a"))
	assert.False(t, compiled.HasNode("missing"))
}

// TestCompile_NoEntryPoint tests that a missing entry point fails.
func TestCompile_NoEntryPoint(t *testing.T) {
	_, err := NewGraph[Counter]().
		AddNode("a", increment).
		AddEdge("a", END).
		Compile()

	assert.ErrorIs(t, err, ErrNoEntryPoint)
}

// TestCompile_EntryNotFound tests an entry point naming a missing node.
func TestCompile_EntryNotFound(t *testing.T) {
	_, err := NewGraph[Counter]().
		AddNode("a", increment).
		AddEdge("a", END).
		SetEntry("missing").
		Compile()

	assert.ErrorIs(t, err, ErrEntryNotFound)
}

// TestCompile_EdgeToUnknownNode tests that edges must reference nodes.
func TestCompile_EdgeToUnknownNode(t *testing.T) {
	_, err := NewGraph[Counter]().
		AddNode("a", increment).
		AddEdge("a", "ghost").
		SetEntry("a").
		Compile()

	assert.ErrorIs(t, err, ErrNodeNotFound)
}

// TestCompile_NoPathToEnd tests reachability validation.
func TestCompile_NoPathToEnd(t *testing.T) {
	// a -> b -> a forms a cycle with no END edge anywhere.
	_, err := NewGraph[Counter]().
		AddNode("a", increment).
		AddNode("b", increment).
		AddEdge("a", "b").
		AddEdge("b", "a").
		SetEntry("a").
		Compile()

	assert.ErrorIs(t, err, ErrNoPathToEnd)
}

// TestCompile_ConditionalEdgeCountsForTermination tests that a router
// satisfies the path-to-END requirement.
func TestCompile_ConditionalEdgeCountsForTermination(t *testing.T) {
	router := func(ctx Context, s Counter) string {
		if s.Value >= 2 {
			return END
		}
		return "a"
	}

	compiled, err := NewGraph[Counter]().
		AddNode("a", increment).
		AddConditionalEdge("a", router).
		SetEntry("a").
		Compile()

	require.NoError(t, err)
	assert.True(t, compiled.HasConditional("a"))
}

// TestCompiledGraph_Successors tests successor introspection.
func TestCompiledGraph_Successors(t *testing.T) {
	compiled, err := NewGraph[Counter]().
		AddNode("a", increment).
		AddNode("b", increment).
		AddEdge("a", "b").
		AddEdge("b", END).
		SetEntry("a").
		Compile()

	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, compiled.Successors("a"))
	assert.Equal(t, []string{END}, compiled.Successors("b"))
	assert.Empty(t, compiled.Successors("missing"))
}
