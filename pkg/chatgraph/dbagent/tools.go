package dbagent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/calebreed/chatgraph/pkg/chatgraph/llm"
	"github.com/calebreed/chatgraph/pkg/chatgraph/tools"
)

// Tool names the chat agent binds the sub-agent under.
const (
	QueryToolName  = "database_query"
	SchemaToolName = "database_schema"
)

// QueryTool exposes the full pipeline as a model-invocable tool.
type QueryTool struct {
	agent *Agent
}

// NewQueryTool wraps a sub-agent in the database_query tool.
func NewQueryTool(agent *Agent) *QueryTool {
	return &QueryTool{agent: agent}
}

// Name implements tools.Tool.
func (t *QueryTool) Name() string { return QueryToolName }

// Definition implements tools.Tool.
func (t *QueryTool) Definition() llm.Tool {
	return llm.Tool{
		Name:        QueryToolName,
		Description: "Query a database using natural language. Converts the request into SQL, executes it safely, and explains the results. Use this to retrieve information, perform analysis, or answer questions about stored data.",
		Parameters: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {
					"type": "string",
					"description": "The natural language query to run against the database. Be specific about what data you are looking for."
				},
				"table_context": {
					"type": "string",
					"description": "Optional context about specific tables to focus on, if known"
				},
				"max_results": {
					"type": "integer",
					"description": "Maximum number of rows to return (default: 50)"
				}
			},
			"required": ["query"]
		}`),
	}
}

type queryToolArgs struct {
	Query        string `json:"query"`
	TableContext string `json:"table_context"`
	MaxResults   int    `json:"max_results"`
}

// Invoke implements tools.Tool. Pipeline failures are contained as an
// apology string so the conversation can continue.
func (t *QueryTool) Invoke(ctx context.Context, args json.RawMessage) (*tools.Outcome, error) {
	var parsed queryToolArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return nil, fmt.Errorf("database_query: invalid arguments: %w", err)
	}
	if strings.TrimSpace(parsed.Query) == "" {
		return nil, fmt.Errorf("database_query: query is required")
	}

	resp, err := t.agent.Ask(ctx, Request{
		Query:        parsed.Query,
		TableContext: parsed.TableContext,
		MaxResults:   parsed.MaxResults,
	})
	if err != nil {
		return &tools.Outcome{
			Content: fmt.Sprintf("I apologize, but I encountered an error while querying the database: %v. Please try rephrasing your query or check if the requested data exists.", err),
		}, nil
	}

	var b strings.Builder
	b.WriteString("Database Query Results:\n\n")
	b.WriteString(resp.Explanation)
	fmt.Fprintf(&b, "\n\nSQL Query: %s\nRows Returned: %d\nExecution Time: %dms\n\n",
		resp.SQL, resp.RowCount, resp.ExecutionTime.Milliseconds())

	if resp.RowCount > 0 {
		sample := resp.Rows
		if len(sample) > 3 {
			sample = sample[:3]
		}
		if data, err := json.MarshalIndent(sample, "", "  "); err == nil {
			fmt.Fprintf(&b, "Sample Data:\n%s", data)
		}
	} else {
		b.WriteString("No data found.")
	}

	return &tools.Outcome{Content: b.String()}, nil
}

// SchemaTool lets the model explore the database structure.
type SchemaTool struct {
	agent *Agent
}

// NewSchemaTool wraps a sub-agent in the database_schema tool.
func NewSchemaTool(agent *Agent) *SchemaTool {
	return &SchemaTool{agent: agent}
}

// Name implements tools.Tool.
func (t *SchemaTool) Name() string { return SchemaToolName }

// Definition implements tools.Tool.
func (t *SchemaTool) Definition() llm.Tool {
	return llm.Tool{
		Name:        SchemaToolName,
		Description: "Get information about the database schema, including tables, columns, and data types. This helps understand what data is available for querying.",
		Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
	}
}

// Invoke implements tools.Tool.
func (t *SchemaTool) Invoke(ctx context.Context, _ json.RawMessage) (*tools.Outcome, error) {
	schema, err := t.agent.Schema(ctx)
	if err != nil {
		return &tools.Outcome{
			Content: fmt.Sprintf("I apologize, but I encountered an error while retrieving the database schema: %v.", err),
		}, nil
	}

	return &tools.Outcome{
		Content: fmt.Sprintf("Database Schema Information:\n\n%s\nYou can now query this database using natural language with the database_query tool.", schema),
	}, nil
}
