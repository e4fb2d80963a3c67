// Package config loads process settings from the environment and the agent
// definition from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// DefaultPrefix is the environment prefix for Settings.
const DefaultPrefix = "CASEMESH"

// Settings are the process level knobs shared by every command.
type Settings struct {
	Host        string `envconfig:"HOST" default:"0.0.0.0"`
	Port        int    `envconfig:"PORT" default:"8080"`
	MCPPath     string `envconfig:"MCP_PATH" default:"/mcp"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"LOG_FORMAT" default:"json"`
	LogBackend  string `envconfig:"LOG_BACKEND" default:"zerolog"`
	LogPretty   bool   `envconfig:"LOG_PRETTY" default:"false"`
	AgentConfig string `envconfig:"AGENT_CONFIG" default:"configs/agent_config.yaml"`
}

// Options configures New.
type Options struct {
	// EnvFiles are loaded before processing. Missing files are skipped.
	EnvFiles []string
}

// New populates a T from the environment using prefix. Variables from the
// env files never override values already set in the process.
func New[T any](prefix string, optFns ...func(o *Options)) (*T, error) {
	opts := Options{EnvFiles: []string{".env"}}

	for _, fn := range optFns {
		fn(&opts)
	}

	for _, f := range opts.EnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading env file %s: %w", f, err)
		}
	}

	var cfg T
	if err := envconfig.Process(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("processing env config: %w", err)
	}

	return &cfg, nil
}

// LoadSettings reads Settings with DefaultPrefix.
func LoadSettings(optFns ...func(o *Options)) (*Settings, error) {
	return New[Settings](DefaultPrefix, optFns...)
}
