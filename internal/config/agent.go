package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Model providers understood by the agent command.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Local toolsets that can be registered in-process.
const (
	LocalCase      = "case"
	LocalInformant = "informant"
)

// AgentConfig is the agent_config.yaml document.
type AgentConfig struct {
	Metadata     Metadata     `yaml:"metadata"`
	Service      Service      `yaml:"service"`
	Capabilities Capabilities `yaml:"capabilities"`
	Interface    Interface    `yaml:"interface"`
	Skills       []Skill      `yaml:"skills"`
	Model        ModelConfig  `yaml:"model"`
	Agent        AgentSection `yaml:"agent"`
	Tools        ToolsConfig  `yaml:"tools"`
}

// Metadata names the agent.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
}

// Service is where the agent is reachable. URL is advertised on the card;
// Host and Port are bound.
type Service struct {
	URL  string `yaml:"url"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// Capabilities advertised on the card.
type Capabilities struct {
	Streaming bool `yaml:"streaming"`
}

// Interface lists the accepted and produced media types.
type Interface struct {
	DefaultInputModes  []string `yaml:"default_input_modes"`
	DefaultOutputModes []string `yaml:"default_output_modes"`
}

// Skill is one entry of the card's skill list.
type Skill struct {
	ID          string   `yaml:"id"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Examples    []string `yaml:"examples"`
}

// ModelConfig selects the language model.
type ModelConfig struct {
	Provider    string   `yaml:"provider"`
	Name        string   `yaml:"name"`
	Temperature *float64 `yaml:"temperature"`
	MaxTokens   int      `yaml:"max_tokens"`
	APIKey      string   `yaml:"api_key"`
	BaseURL     string   `yaml:"base_url"`
}

// AgentSection tunes the model agent.
type AgentSection struct {
	Instruction        string `yaml:"instruction"`
	MaxHistoryMessages int    `yaml:"max_history_messages"`
	MaxModelCalls      int    `yaml:"max_model_calls"`
	ToolTimeout        string `yaml:"tool_timeout"`

	toolTimeout time.Duration
}

// ToolTimeoutDuration returns the parsed tool_timeout (zero when unset).
func (a AgentSection) ToolTimeoutDuration() time.Duration { return a.toolTimeout }

// ToolsConfig lists where tools come from.
type ToolsConfig struct {
	MCPServers []MCPServer `yaml:"mcp_servers"`
	Local      []string    `yaml:"local"`
}

// MCPServer is a remote tool server.
type MCPServer struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR} with the variable's value and ${VAR:-def}
// with def when VAR is unset or empty. Other unset variables become empty.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name, def, _ := strings.Cut(envVarPattern.FindStringSubmatch(match)[1], ":-")
		if v := os.Getenv(name); v != "" {
			return v
		}

		return def
	})
}

// LoadAgentConfig reads, expands and validates the agent config at path.
func LoadAgentConfig(path string) (*AgentConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	return ParseAgentConfig(data)
}

// ParseAgentConfig is LoadAgentConfig for in-memory YAML.
func ParseAgentConfig(data []byte) (*AgentConfig, error) {
	var cfg AgentConfig
	if err := yaml.Unmarshal([]byte(expandEnvVars(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if cfg.Agent.ToolTimeout != "" {
		d, err := time.ParseDuration(cfg.Agent.ToolTimeout)
		if err != nil {
			return nil, fmt.Errorf("parsing agent.tool_timeout: %w", err)
		}

		cfg.Agent.toolTimeout = d
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *AgentConfig) applyDefaults() {
	if c.Metadata.Version == "" {
		c.Metadata.Version = "1.0.0"
	}

	if c.Service.Host == "" {
		c.Service.Host = "0.0.0.0"
	}

	if c.Service.Port == 0 {
		c.Service.Port = 8080
	}

	if len(c.Interface.DefaultInputModes) == 0 {
		c.Interface.DefaultInputModes = []string{"text/plain"}
	}

	if len(c.Interface.DefaultOutputModes) == 0 {
		c.Interface.DefaultOutputModes = []string{"text/plain"}
	}

	c.Model.Provider = strings.ToLower(strings.TrimSpace(c.Model.Provider))
	if c.Model.Provider == "" {
		c.Model.Provider = ProviderOpenAI
	}

	if c.Agent.MaxHistoryMessages == 0 {
		c.Agent.MaxHistoryMessages = 20
	}

	if c.Agent.MaxModelCalls == 0 {
		c.Agent.MaxModelCalls = 25
	}
}

// Validate checks required fields and value ranges.
func (c *AgentConfig) Validate() error {
	if c.Metadata.Name == "" {
		return fmt.Errorf("metadata.name is required")
	}

	if c.Service.URL == "" {
		return fmt.Errorf("service.url is required")
	}

	if c.Service.Port < 1 || c.Service.Port > 65535 {
		return fmt.Errorf("service.port must be between 1 and 65535, got %d", c.Service.Port)
	}

	switch c.Model.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderMock:
	default:
		return fmt.Errorf("model.provider %q is not supported", c.Model.Provider)
	}

	if c.Model.Provider != ProviderMock && c.Model.Name == "" {
		return fmt.Errorf("model.name is required for provider %s", c.Model.Provider)
	}

	for i, s := range c.Tools.MCPServers {
		if s.Name == "" {
			return fmt.Errorf("tools.mcp_servers[%d].name is required", i)
		}

		if s.URL == "" {
			return fmt.Errorf("tools.mcp_servers[%d].url is required", i)
		}
	}

	for _, l := range c.Tools.Local {
		if l != LocalCase && l != LocalInformant {
			return fmt.Errorf("tools.local entry %q must be %s or %s", l, LocalCase, LocalInformant)
		}
	}

	for i, s := range c.Skills {
		if s.ID == "" || s.Name == "" {
			return fmt.Errorf("skills[%d] needs id and name", i)
		}
	}

	return nil
}
