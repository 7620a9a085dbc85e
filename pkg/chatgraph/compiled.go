package chatgraph

// CompiledGraph is an immutable, executable workflow graph.
// It is created by calling Compile() on a Graph builder.
//
// CompiledGraph is safe for concurrent use: a single compiled graph
// serves every conversation turn, each with its own state. The graph
// structure cannot be modified after compilation.
//
// Use the introspection methods (NodeIDs, Successors, HasConditional)
// to examine the graph structure for debugging or visualization.
type CompiledGraph[S any] struct {
	nodes            map[string]NodeFunc[S]
	edges            map[string][]string
	conditionalEdges map[string]RouterFunc[S]
	entryPoint       string

	// Pre-computed for efficient lookup
	successors map[string][]string
}

// EntryPoint returns the entry node ID.
func (cg *CompiledGraph[S]) EntryPoint() string {
	return cg.entryPoint
}

// NodeIDs returns all node identifiers in the graph.
// The order is not guaranteed.
func (cg *CompiledGraph[S]) NodeIDs() []string {
	ids := make([]string, 0, len(cg.nodes))
	for id := range cg.nodes {
		ids = append(ids, id)
	}
	return ids
}

// HasNode checks if a node exists in the graph.
func (cg *CompiledGraph[S]) HasNode(id string) bool {
	_, exists := cg.nodes[id]
	return exists
}

// Successors returns the node IDs that can be reached from the given node
// via simple (non-conditional) edges. Returns nil for END or unknown
// nodes. Targets of conditional edges are runtime-determined and not
// included.
func (cg *CompiledGraph[S]) Successors(id string) []string {
	if id == END {
		return nil
	}
	targets := cg.successors[id]
	if targets == nil {
		return nil
	}
	out := make([]string, len(targets))
	copy(out, targets)
	return out
}

// HasConditional reports whether the node routes through a RouterFunc.
func (cg *CompiledGraph[S]) HasConditional(id string) bool {
	_, exists := cg.conditionalEdges[id]
	return exists
}

// getNode returns the node function for an id.
func (cg *CompiledGraph[S]) getNode(id string) (NodeFunc[S], bool) {
	fn, ok := cg.nodes[id]
	return fn, ok
}

// getRouter returns the router for a node with a conditional edge.
func (cg *CompiledGraph[S]) getRouter(id string) (RouterFunc[S], bool) {
	router, ok := cg.conditionalEdges[id]
	return router, ok
}

// getEdges returns the simple edge targets for a node.
func (cg *CompiledGraph[S]) getEdges(id string) []string {
	return cg.edges[id]
}
