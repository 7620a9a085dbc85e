package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSearchServer returns a Tavily-shaped test server and the provider
// pointed at it.
func newSearchServer(t *testing.T, handler http.HandlerFunc) *HTTPSearchProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPSearchProvider("test-key",
		WithSearchBaseURL(srv.URL),
		WithSearchHTTPClient(srv.Client()))
}

func TestHTTPSearchProvider_Search(t *testing.T) {
	var gotReq searchAPIRequest
	provider := newSearchServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))

		json.NewEncoder(w).Encode(searchAPIResponse{Results: []SearchResult{
			{Title: "Go", URL: "https://go.dev", Content: "The Go programming language"},
			{Title: "Blog", URL: "https://go.dev/blog", Content: "News"},
		}})
	})

	results, err := provider.Search(context.Background(), "golang", 5)
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotReq.APIKey)
	assert.Equal(t, "golang", gotReq.Query)
	assert.Equal(t, 5, gotReq.MaxResults)

	require.Len(t, results, 2)
	assert.Equal(t, "Go", results[0].Title)
	assert.Equal(t, "https://go.dev/blog", results[1].URL)
}

func TestHTTPSearchProvider_Errors(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		provider := NewHTTPSearchProvider("")
		_, err := provider.Search(context.Background(), "anything", 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "missing API key")
	})

	t.Run("non-200 status", func(t *testing.T) {
		provider := newSearchServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		})
		_, err := provider.Search(context.Background(), "anything", 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 429")
	})

	t.Run("malformed body", func(t *testing.T) {
		provider := newSearchServer(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("not json"))
		})
		_, err := provider.Search(context.Background(), "anything", 3)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode response")
	})
}

// fakeProvider scripts SearchProvider behavior for SearchTool tests.
type fakeProvider struct {
	results []SearchResult
	err     error
	gotMax  int
}

func (f *fakeProvider) Search(_ context.Context, _ string, maxResults int) ([]SearchResult, error) {
	f.gotMax = maxResults
	return f.results, f.err
}

func TestSearchTool_Invoke(t *testing.T) {
	provider := &fakeProvider{results: []SearchResult{
		{Title: "First", URL: "https://a.example", Content: "alpha"},
		{Title: "Second", URL: "https://b.example", Content: "beta"},
	}}
	tool := NewSearchTool(provider, 2)

	out, err := tool.Invoke(context.Background(), json.RawMessage(`{"query":"test"}`))
	require.NoError(t, err)

	assert.Equal(t, 2, provider.gotMax)
	assert.Contains(t, out.Content, "1. First")
	assert.Contains(t, out.Content, "https://a.example")
	assert.Contains(t, out.Content, "2. Second")
	assert.Contains(t, out.Content, "beta")
}

func TestSearchTool_FailSoft(t *testing.T) {
	tool := NewSearchTool(&fakeProvider{err: context.DeadlineExceeded}, 3)

	out, err := tool.Invoke(context.Background(), json.RawMessage(`{"query":"test"}`))
	require.NoError(t, err)
	assert.Equal(t, "Sorry, I couldn't complete the web search right now. Please try again later.", out.Content)
}

func TestSearchTool_NoResults(t *testing.T) {
	tool := NewSearchTool(&fakeProvider{}, 3)

	out, err := tool.Invoke(context.Background(), json.RawMessage(`{"query":"obscure"}`))
	require.NoError(t, err)
	assert.Equal(t, `No results found for "obscure".`, out.Content)
}

func TestSearchTool_Validation(t *testing.T) {
	tool := NewSearchTool(&fakeProvider{}, 3)

	_, err := tool.Invoke(context.Background(), json.RawMessage(`{"query":"  "}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")

	_, err = tool.Invoke(context.Background(), json.RawMessage(`{broken`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid arguments")
}

func TestNewSearchTool_DefaultMaxResults(t *testing.T) {
	provider := &fakeProvider{results: []SearchResult{{Title: "x"}}}
	tool := NewSearchTool(provider, 0)

	_, err := tool.Invoke(context.Background(), json.RawMessage(`{"query":"q"}`))
	require.NoError(t, err)
	assert.Equal(t, 3, provider.gotMax)
}
