package dbagent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/calebreed/chatgraph/pkg/chatgraph/llm"
)

// Request is a natural language question for the sub-agent.
type Request struct {
	// Query is the natural language question.
	Query string

	// TableContext optionally names tables to focus on.
	TableContext string

	// MaxResults caps returned rows. Zero uses the agent default.
	MaxResults int
}

// Response is the completed pipeline output.
type Response struct {
	Explanation   string           `json:"explanation"`
	SQL           string           `json:"sql_query"`
	Rows          []map[string]any `json:"results"`
	RowCount      int              `json:"row_count"`
	ExecutionTime time.Duration    `json:"execution_time"`
}

// Agent runs the database pipeline: schema introspection, SQL
// generation, guarded execution, and result explanation, each step
// feeding the next.
type Agent struct {
	db          *DB
	client      llm.Client
	model       string
	temperature float64
	allowWrites bool
	execTimeout time.Duration
	maxRows     int
	logger      *slog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithModel sets the model used for SQL generation and explanation.
func WithModel(model string) Option {
	return func(a *Agent) { a.model = model }
}

// WithTemperature sets the sampling temperature. SQL generation wants
// a low value for consistency.
func WithTemperature(t float64) Option {
	return func(a *Agent) { a.temperature = t }
}

// WithWriteOperations allows generated statements beyond SELECT.
// Off by default.
func WithWriteOperations(allow bool) Option {
	return func(a *Agent) { a.allowWrites = allow }
}

// WithExecutionTimeout bounds how long a generated query may run.
func WithExecutionTimeout(d time.Duration) Option {
	return func(a *Agent) {
		if d > 0 {
			a.execTimeout = d
		}
	}
}

// WithMaxRows caps the default number of rows returned per query.
func WithMaxRows(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxRows = n
		}
	}
}

// WithLogger sets the agent logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) { a.logger = logger }
}

// New creates a database sub-agent over db, using client for SQL
// generation and result explanation.
func New(db *DB, client llm.Client, opts ...Option) *Agent {
	a := &Agent{
		db:          db,
		client:      client,
		model:       "gpt-4o-mini",
		temperature: 0.1,
		execTimeout: 15 * time.Second,
		maxRows:     50,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask runs the full pipeline for a natural language question.
func (a *Agent) Ask(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("dbagent: query is required")
	}
	maxRows := req.MaxResults
	if maxRows <= 0 {
		maxRows = a.maxRows
	}

	schema, err := a.db.Schema(ctx)
	if err != nil {
		return nil, err
	}

	sqlQuery, err := a.generateSQL(ctx, schema, req, maxRows)
	if err != nil {
		return nil, err
	}

	if !a.allowWrites {
		if err := CheckReadOnly(sqlQuery); err != nil {
			return nil, err
		}
	}

	execCtx, cancel := context.WithTimeout(ctx, a.execTimeout)
	defer cancel()

	start := time.Now()
	rows, err := a.db.Query(execCtx, sqlQuery, maxRows)
	execTime := time.Since(start)
	if err != nil {
		if execCtx.Err() == context.DeadlineExceeded {
			return nil, fmt.Errorf("dbagent: query execution timed out after %s", a.execTimeout)
		}
		return nil, err
	}

	if a.logger != nil {
		a.logger.Info("database query executed",
			slog.String("sql", truncate(sqlQuery, 100)),
			slog.Int("row_count", len(rows)),
			slog.Duration("execution_time", execTime))
	}

	explanation := a.explain(ctx, req.Query, sqlQuery, rows, execTime)

	return &Response{
		Explanation:   explanation,
		SQL:           sqlQuery,
		Rows:          rows,
		RowCount:      len(rows),
		ExecutionTime: execTime,
	}, nil
}

// Schema returns the textual schema description.
func (a *Agent) Schema(ctx context.Context) (string, error) {
	return a.db.Schema(ctx)
}

func (a *Agent) generateSQL(ctx context.Context, schema string, req Request, maxRows int) (string, error) {
	resp, err := a.client.Complete(ctx, llm.CompletionRequest{
		Model:       a.model,
		Temperature: a.temperature,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: formatSQLGeneration(schema, req.Query, req.TableContext, maxRows)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("dbagent: generate sql: %w", err)
	}

	sqlQuery := stripSQLFences(resp.Content)
	if sqlQuery == "" {
		return "", fmt.Errorf("dbagent: model returned empty sql")
	}
	return sqlQuery, nil
}

// explain is fail-soft: when the explanation call errors, the query
// results still reach the caller with a fallback summary.
func (a *Agent) explain(ctx context.Context, userQuery, sqlQuery string, rows []map[string]any, execTime time.Duration) string {
	resultsData := ""
	if len(rows) > 0 {
		if data, err := json.MarshalIndent(rows, "", "  "); err == nil {
			resultsData = string(data)
		}
	}

	resp, err := a.client.Complete(ctx, llm.CompletionRequest{
		Model:       a.model,
		Temperature: a.temperature,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: formatExplanation(userQuery, sqlQuery, len(rows), execTime.Milliseconds(), resultsData)},
		},
	})
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("result explanation failed", slog.String("error", err.Error()))
		}
		return fmt.Sprintf("The query returned %d row(s) in %dms, but formatting the explanation failed.", len(rows), execTime.Milliseconds())
	}
	return resp.Content
}
