package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	// GraphPath is the graph definition document to load.
	GraphPath string
	// Params are run-level parameter overrides, keyed by parameter name.
	Params map[string]any
	// ValidateOnly stops after static validation without executing.
	ValidateOnly bool

	LogFormat string
	LogLevel  string
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}
	return &cfg, nil
}
