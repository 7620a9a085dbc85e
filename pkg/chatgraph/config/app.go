package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// AppConfig is the process configuration: server address, provider
// credentials, model defaults, and storage paths. Values come from an
// optional config file, overridden by environment variables.
type AppConfig struct {
	// Port the HTTP server listens on.
	Port int

	// Environment is development, production, or test.
	Environment string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// Provider credentials. At least one of OpenAIAPIKey or
	// AnthropicAPIKey must be set.
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// TavilyAPIKey enables the web search tool when set.
	TavilyAPIKey string

	// Model is the default model identifier.
	Model string

	// Temperature is the default sampling temperature.
	Temperature float64

	// DatabasePath is the sqlite file the database sub-agent queries.
	DatabasePath string

	// CheckpointPath is the sqlite file backing thread checkpoints.
	// Empty selects the in-memory store.
	CheckpointPath string

	// CORSOrigins lists allowed browser origins.
	CORSOrigins []string

	// TracingEnabled turns on span emission.
	TracingEnabled bool
}

// Default returns the built-in configuration.
func Default() AppConfig {
	return AppConfig{
		Port:         3000,
		Environment:  "development",
		LogLevel:     "info",
		Model:        "gpt-4o-mini",
		Temperature:  0.7,
		DatabasePath: "./data/app.db",
		CORSOrigins:  []string{"*"},
	}
}

// Load builds the configuration: defaults, then the config file at
// path when non-empty, then environment variable overrides.
func Load(path string) (AppConfig, error) {
	cfg := Default()

	if path != "" {
		file, err := FromFile(path)
		if err != nil {
			return cfg, err
		}
		cfg.applyFile(file)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *AppConfig) applyFile(file Config) {
	server := file.Sub("server")
	c.Port = server.Int("port", c.Port)
	c.CORSOrigins = server.StringSlice("cors_origins", c.CORSOrigins)

	llm := file.Sub("llm")
	c.Model = llm.String("model", c.Model)
	c.Temperature = llm.Float("temperature", c.Temperature)

	c.DatabasePath = file.Sub("database").String("path", c.DatabasePath)
	c.CheckpointPath = file.Sub("checkpoint").String("path", c.CheckpointPath)

	c.Environment = file.String("environment", c.Environment)
	c.LogLevel = file.String("log_level", c.LogLevel)
	c.TracingEnabled = file.Bool("tracing", c.TracingEnabled)
}

func (c *AppConfig) applyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("NODE_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIAPIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.AnthropicAPIKey = v
	}
	if v := os.Getenv("TAVILY_API_KEY"); v != "" {
		c.TavilyAPIKey = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("CHECKPOINT_PATH"); v != "" {
		c.CheckpointPath = v
	}
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		c.TracingEnabled = v == "true" || v == "1"
	}
}

// ErrNoProviderKey is returned by Validate when no model provider
// credential is configured.
var ErrNoProviderKey = errors.New("config: at least one provider API key must be configured (OPENAI_API_KEY or ANTHROPIC_API_KEY)")

// Validate checks the configuration before the process starts serving.
func (c AppConfig) Validate() error {
	if c.OpenAIAPIKey == "" && c.AnthropicAPIKey == "" {
		return ErrNoProviderKey
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid port %d", c.Port)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log level %q", c.LogLevel)
	}
	return nil
}

// Addr returns the listen address for the HTTP server.
func (c AppConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
