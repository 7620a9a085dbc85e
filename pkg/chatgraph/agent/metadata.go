package agent

import "github.com/calebreed/chatgraph/pkg/chatgraph"

// GraphNode describes one workflow node for visualization.
type GraphNode struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// GraphEdge describes one transition for visualization.
type GraphEdge struct {
	From      string `json:"from"`
	To        string `json:"to"`
	Type      string `json:"type"`
	Condition string `json:"condition,omitempty"`
}

// GraphMetadata is the workflow's shape as exposed by the API.
type GraphMetadata struct {
	Nodes      []GraphNode `json:"nodes"`
	Edges      []GraphEdge `json:"edges"`
	EntryPoint string      `json:"entry_point"`
}

var nodeLabels = map[string][2]string{
	NodeInput:     {"Input Processing", "Process user input and seed the message history"},
	NodeCallModel: {"Model Call", "Invoke the model with bound tools, running requested tool calls"},
	NodeFinalize:  {"Finalize", "Mark the turn complete"},
	chatgraph.END: {"End", "Workflow completion"},
}

// Graph returns the compiled workflow's structure: nodes with labels,
// direct and conditional edges, and the entry point.
func (a *Agent) Graph() GraphMetadata {
	md := GraphMetadata{EntryPoint: a.graph.EntryPoint()}

	ids := append(a.graph.NodeIDs(), chatgraph.END)
	for _, id := range ids {
		node := GraphNode{ID: id, Type: "node"}
		if id == chatgraph.END {
			node.Type = "end"
		}
		if labels, ok := nodeLabels[id]; ok {
			node.Label = labels[0]
			node.Description = labels[1]
		}
		md.Nodes = append(md.Nodes, node)
	}

	for _, id := range a.graph.NodeIDs() {
		if a.graph.HasConditional(id) {
			// The policy routes call_model back to itself or on to
			// finalize.
			md.Edges = append(md.Edges,
				GraphEdge{From: id, To: NodeCallModel, Type: "conditional", Condition: string(DecisionContinue)},
				GraphEdge{From: id, To: NodeFinalize, Type: "conditional", Condition: string(DecisionEnd)},
			)
			continue
		}
		for _, to := range a.graph.Successors(id) {
			md.Edges = append(md.Edges, GraphEdge{From: id, To: to, Type: "direct"})
		}
	}

	return md
}
