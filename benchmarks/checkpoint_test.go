package benchmarks

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/calebreed/chatgraph/pkg/chatgraph"
	"github.com/calebreed/chatgraph/pkg/chatgraph/checkpoint"
)

// Conversation approximates a realistic thread state for store
// benchmarks: a message history plus turn bookkeeping.
type Conversation struct {
	ThreadID   string
	Messages   []ConversationMessage
	Iterations int
	Complete   bool
}

type ConversationMessage struct {
	Role    string
	Content string
}

// BenchmarkMemoryStore_Put measures in-memory checkpoint writes.
func BenchmarkMemoryStore_Put(b *testing.B) {
	store := checkpoint.NewMemoryStore()
	defer store.Close()
	data := conversationRecord(b, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Put("thread-1", data)
	}
}

// BenchmarkMemoryStore_Get measures in-memory checkpoint reads.
func BenchmarkMemoryStore_Get(b *testing.B) {
	store := checkpoint.NewMemoryStore()
	defer store.Close()
	_ = store.Put("thread-1", conversationRecord(b, 1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Get("thread-1")
	}
}

// BenchmarkSQLiteStore_Put measures SQLite checkpoint writes.
func BenchmarkSQLiteStore_Put(b *testing.B) {
	store, cleanup := createSQLiteStore(b)
	defer cleanup()
	data := conversationRecord(b, 1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = store.Put("thread-"+nodeID(i%100), data)
	}
}

// BenchmarkSQLiteStore_Get measures SQLite checkpoint reads.
func BenchmarkSQLiteStore_Get(b *testing.B) {
	store, cleanup := createSQLiteStore(b)
	defer cleanup()
	_ = store.Put("thread-1", conversationRecord(b, 1))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = store.Get("thread-1")
	}
}

// BenchmarkRun_WithCheckpointing measures execution with the terminal
// checkpoint write enabled.
func BenchmarkRun_WithCheckpointing(b *testing.B) {
	store := checkpoint.NewMemoryStore()
	defer store.Close()
	compiled := mustCompile(buildLinearGraph(5))
	ctx := chatgraph.NewContext(context.Background())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, Turn{},
			chatgraph.WithCheckpointStore(store),
			chatgraph.WithThreadID("thread-"+nodeID(i%100)),
		)
	}
}

// BenchmarkRun_WithoutCheckpointing is the baseline without
// persistence.
func BenchmarkRun_WithoutCheckpointing(b *testing.B) {
	compiled := mustCompile(buildLinearGraph(5))
	ctx := chatgraph.NewContext(context.Background())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, Turn{})
	}
}

// BenchmarkRecordMarshal measures record serialization overhead.
func BenchmarkRecordMarshal(b *testing.B) {
	state, _ := json.Marshal(createConversation())
	rec := checkpoint.NewRecord("thread-1", 1, state)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = rec.Marshal()
	}
}

// BenchmarkRecordUnmarshal measures record deserialization overhead.
func BenchmarkRecordUnmarshal(b *testing.B) {
	data := conversationRecord(b, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = checkpoint.Unmarshal(data)
	}
}

// Helper functions

func createConversation() Conversation {
	msgs := []ConversationMessage{{Role: "system", Content: "You are a helpful assistant."}}
	for i := 0; i < 10; i++ {
		msgs = append(msgs,
			ConversationMessage{Role: "human", Content: "What about item " + nodeID(i) + "?"},
			ConversationMessage{Role: "ai", Content: "Item " + nodeID(i) + " looks fine to me."},
		)
	}
	return Conversation{
		ThreadID:   "thread-1",
		Messages:   msgs,
		Iterations: 3,
		Complete:   true,
	}
}

func conversationRecord(b *testing.B, revision int) []byte {
	b.Helper()
	state, err := json.Marshal(createConversation())
	if err != nil {
		b.Fatal(err)
	}
	data, err := checkpoint.NewRecord("thread-1", revision, state).Marshal()
	if err != nil {
		b.Fatal(err)
	}
	return data
}

func createSQLiteStore(b *testing.B) (*checkpoint.SQLiteStore, func()) {
	b.Helper()
	tmpFile, err := os.CreateTemp("", "bench-*.db")
	if err != nil {
		b.Fatal(err)
	}
	tmpFile.Close()

	store, err := checkpoint.NewSQLiteStore(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		b.Fatal(err)
	}

	return store, func() {
		store.Close()
		os.Remove(tmpFile.Name())
	}
}
