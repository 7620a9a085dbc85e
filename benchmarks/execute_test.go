package benchmarks

import (
	"context"
	"testing"

	"github.com/calebreed/chatgraph/pkg/chatgraph"
)

// BenchmarkRun_Linear_5 runs a 5-node linear graph.
func BenchmarkRun_Linear_5(b *testing.B) {
	compiled := mustCompile(buildLinearGraph(5))
	ctx := chatgraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, Turn{})
	}
}

// BenchmarkRun_Linear_50 runs a 50-node linear graph.
func BenchmarkRun_Linear_50(b *testing.B) {
	compiled := mustCompile(buildLinearGraph(50))
	ctx := chatgraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, Turn{})
	}
}

// BenchmarkRun_Pipeline_3 runs the agent-shaped graph with 3 work
// rounds, the chat agent's default round cap.
func BenchmarkRun_Pipeline_3(b *testing.B) {
	compiled := mustCompile(buildPipelineGraph(3))
	ctx := chatgraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, Turn{})
	}
}

// BenchmarkRun_Pipeline_10 runs the agent-shaped graph with 10 rounds.
func BenchmarkRun_Pipeline_10(b *testing.B) {
	compiled := mustCompile(buildPipelineGraph(10))
	ctx := chatgraph.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, Turn{})
	}
}

// BenchmarkContextCreation measures context creation overhead.
func BenchmarkContextCreation(b *testing.B) {
	bg := context.Background()
	for i := 0; i < b.N; i++ {
		chatgraph.NewContext(bg)
	}
}

func mustCompile(g *chatgraph.Graph[Turn]) *chatgraph.CompiledGraph[Turn] {
	compiled, err := g.Compile()
	if err != nil {
		panic(err)
	}
	return compiled
}
