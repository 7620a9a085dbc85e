package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/calebreed/chatgraph/pkg/chatgraph/agent"
	"github.com/calebreed/chatgraph/pkg/chatgraph/api"
	"github.com/calebreed/chatgraph/pkg/chatgraph/checkpoint"
	"github.com/calebreed/chatgraph/pkg/chatgraph/config"
	"github.com/calebreed/chatgraph/pkg/chatgraph/dbagent"
	"github.com/calebreed/chatgraph/pkg/chatgraph/llm"
	"github.com/calebreed/chatgraph/pkg/chatgraph/observability"
	"github.com/calebreed/chatgraph/pkg/chatgraph/tools"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the agent HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := cmd.Context()

	store, err := newCheckpointStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	client := newLLMClient(cfg)

	registry, dbClose, err := buildRegistry(ctx, cfg, client, logger)
	if err != nil {
		return err
	}
	if dbClose != nil {
		defer dbClose()
	}

	agentOpts := []agent.AgentOption{
		agent.WithTools(registry),
		agent.WithCheckpointStore(store),
		agent.WithLogger(logger),
		agent.WithMetrics(observability.NewMetricsRecorder()),
		agent.WithModel(cfg.Model),
		agent.WithTemperature(cfg.Temperature),
	}
	if cfg.TracingEnabled {
		agentOpts = append(agentOpts, agent.WithTracing(observability.NewSpanManager()))
	}

	chatAgent, err := agent.New(client, agentOpts...)
	if err != nil {
		return err
	}

	serverCfg := api.DefaultConfig()
	serverCfg.Addr = cfg.Addr()
	serverCfg.CORSOrigins = cfg.CORSOrigins

	server := api.New(serverCfg, logger)
	server.RegisterAgent(chatAgent)
	server.Start()

	logger.Info("chatgraph ready",
		slog.String("addr", serverCfg.Addr),
		slog.String("environment", cfg.Environment),
		slog.String("model", cfg.Model))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	return server.Shutdown(context.Background())
}

// newCheckpointStore selects sqlite persistence when a path is
// configured, memory otherwise.
func newCheckpointStore(cfg config.AppConfig) (checkpoint.Store, error) {
	if cfg.CheckpointPath == "" {
		return checkpoint.NewMemoryStore(), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.CheckpointPath), 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint directory: %w", err)
	}
	return checkpoint.NewSQLiteStore(cfg.CheckpointPath)
}

// newLLMClient builds the provider client. The OpenAI key wins when
// both are set; the Anthropic key targets Anthropic's OpenAI-compatible
// endpoint.
func newLLMClient(cfg config.AppConfig) llm.Client {
	if cfg.OpenAIAPIKey != "" {
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey, llm.WithDefaultModel(cfg.Model))
	}
	return llm.NewOpenAIClient(cfg.AnthropicAPIKey,
		llm.WithBaseURL("https://api.anthropic.com/v1"),
		llm.WithDefaultModel(cfg.Model))
}

// buildRegistry wires the tool set: human assistance always, web
// search when a Tavily key is configured, and the database sub-agent
// tools over the configured sqlite file.
func buildRegistry(ctx context.Context, cfg config.AppConfig, client llm.Client, logger *slog.Logger) (*tools.Registry, func() error, error) {
	registry := tools.NewRegistry()
	registry.Register(tools.NewHumanAssistanceTool())

	if cfg.TavilyAPIKey != "" {
		provider := tools.NewHTTPSearchProvider(cfg.TavilyAPIKey)
		registry.Register(tools.NewSearchTool(provider, 3))
	} else {
		logger.Warn("TAVILY_API_KEY not set, web search tool disabled")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := dbagent.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	if err := db.EnsureSampleData(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("seed sample data: %w", err)
	}

	dbAgent := dbagent.New(db, client,
		dbagent.WithModel(cfg.Model),
		dbagent.WithLogger(logger))
	registry.Register(dbagent.NewQueryTool(dbAgent))
	registry.Register(dbagent.NewSchemaTool(dbAgent))

	return registry, db.Close, nil
}
