package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/calebreed/chatgraph/pkg/chatgraph/llm"
)

// SearchToolName is the name the model invokes the web search tool by.
const SearchToolName = "web_search"

// SearchResult is one hit returned by a search provider.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchProvider answers web search queries.
type SearchProvider interface {
	Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error)
}

// HTTPSearchProvider calls a Tavily-compatible search API.
type HTTPSearchProvider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// HTTPSearchOption configures an HTTPSearchProvider.
type HTTPSearchOption func(*HTTPSearchProvider)

// WithSearchBaseURL overrides the provider endpoint.
func WithSearchBaseURL(url string) HTTPSearchOption {
	return func(p *HTTPSearchProvider) { p.baseURL = strings.TrimRight(url, "/") }
}

// WithSearchHTTPClient overrides the HTTP client.
func WithSearchHTTPClient(c *http.Client) HTTPSearchOption {
	return func(p *HTTPSearchProvider) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// NewHTTPSearchProvider creates a search provider against the Tavily
// search API.
func NewHTTPSearchProvider(apiKey string, opts ...HTTPSearchOption) *HTTPSearchProvider {
	p := &HTTPSearchProvider{
		apiKey:     apiKey,
		baseURL:    "https://api.tavily.com",
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type searchAPIRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type searchAPIResponse struct {
	Results []SearchResult `json:"results"`
}

// Search runs a query against the provider API.
func (p *HTTPSearchProvider) Search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("search provider: missing API key")
	}

	body, err := json.Marshal(searchAPIRequest{
		APIKey:     p.apiKey,
		Query:      query,
		MaxResults: maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("search provider: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("search provider: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search provider: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("search provider: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search provider: status %d", resp.StatusCode)
	}

	var parsed searchAPIResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("search provider: decode response: %w", err)
	}
	return parsed.Results, nil
}

// SearchTool exposes a SearchProvider as a model-invocable tool.
//
// Provider failures are contained inside the tool: the model receives
// an apology string as the tool result instead of the turn failing.
type SearchTool struct {
	provider   SearchProvider
	maxResults int
}

// NewSearchTool creates the web search tool. maxResults <= 0 defaults
// to 3.
func NewSearchTool(provider SearchProvider, maxResults int) *SearchTool {
	if maxResults <= 0 {
		maxResults = 3
	}
	return &SearchTool{provider: provider, maxResults: maxResults}
}

// Name implements Tool.
func (t *SearchTool) Name() string { return SearchToolName }

// Definition implements Tool.
func (t *SearchTool) Definition() llm.Tool {
	return llm.Tool{
		Name:        SearchToolName,
		Description: "Search the web for current information. Use this for questions about recent events or facts you are unsure of.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {
					"type": "string",
					"description": "The search query"
				}
			},
			"required": ["query"]
		}`),
	}
}

type searchArgs struct {
	Query string `json:"query"`
}

// Invoke implements Tool. It never returns a provider error: failures
// produce an apology so the conversation can continue.
func (t *SearchTool) Invoke(ctx context.Context, args json.RawMessage) (*Outcome, error) {
	var parsed searchArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return nil, fmt.Errorf("web_search: invalid arguments: %w", err)
	}
	if strings.TrimSpace(parsed.Query) == "" {
		return nil, fmt.Errorf("web_search: query is required")
	}

	results, err := t.provider.Search(ctx, parsed.Query, t.maxResults)
	if err != nil {
		return &Outcome{Content: "Sorry, I couldn't complete the web search right now. Please try again later."}, nil
	}
	if len(results) == 0 {
		return &Outcome{Content: fmt.Sprintf("No results found for %q.", parsed.Query)}, nil
	}

	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "%d. %s\n%s\n%s", i+1, res.Title, res.URL, res.Content)
	}
	return &Outcome{Content: b.String()}, nil
}
