/*
Package config loads and validates the process configuration.

# Overview

Configuration is layered: built-in defaults, then an optional YAML or
JSON config file, then environment variable overrides. The file layer
is read through Config, a map[string]any wrapper with typed accessors
that fall back to defaults on missing keys or type mismatches.

# Typed configuration

The process works with AppConfig:

	cfg, err := config.Load("config.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
	    log.Fatal(err)
	}

Validate enforces that at least one model provider credential is set
before the server starts, so a misconfigured deployment fails at boot
instead of on the first request.

# Raw accessors

Config can also be used directly for ad hoc extraction:

	file, _ := config.FromFile("config.yaml")
	port := file.Sub("server").Int("port", 3000)
	model := file.Sub("llm").String("model", "gpt-4o-mini")

All accessors return the given default if the key is missing or the
value cannot be converted to the requested type.

# Environment variables

PORT, NODE_ENV, LOG_LEVEL, OPENAI_API_KEY, ANTHROPIC_API_KEY,
TAVILY_API_KEY, DATABASE_PATH, CHECKPOINT_PATH, and TRACING_ENABLED
override the corresponding file values.
*/
package config
