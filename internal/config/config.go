package config

import (
	"fmt"
)

// Config represents the main Orin configuration
type Config struct {
	// Agent loop settings
	Agent AgentConfig `json:"agent" mapstructure:"agent"`

	// Completion providers
	Providers ProvidersConfig `json:"providers" mapstructure:"providers"`

	// External MCP tool servers
	MCPServers []MCPServerConfig `json:"mcp_servers" mapstructure:"mcp_servers"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Metrics exposition
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`

	// Data directory
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// AgentConfig holds default agent loop settings
type AgentConfig struct {
	Provider          string  `json:"provider" mapstructure:"provider"`
	Model             string  `json:"model" mapstructure:"model"`
	SystemPrompt      string  `json:"system_prompt" mapstructure:"system_prompt"`
	Temperature       float64 `json:"temperature" mapstructure:"temperature"`
	MaxTokens         int     `json:"max_tokens" mapstructure:"max_tokens"`
	MaxToolIterations int     `json:"max_tool_iterations" mapstructure:"max_tool_iterations"`
	PromptCaching     bool    `json:"prompt_caching" mapstructure:"prompt_caching"`
}

// ProvidersConfig holds completion provider credentials
type ProvidersConfig struct {
	AnthropicAPIKey string `json:"anthropic_api_key" mapstructure:"anthropic_api_key"`
	OpenAIAPIKey    string `json:"openai_api_key" mapstructure:"openai_api_key"`
}

// MCPServerConfig describes one external MCP tool server
type MCPServerConfig struct {
	Name        string   `json:"name" mapstructure:"name"`
	Description string   `json:"description" mapstructure:"description"`
	Command     string   `json:"command" mapstructure:"command"`
	Args        []string `json:"args" mapstructure:"args"`
	Env         []string `json:"env" mapstructure:"env"`
	Enabled     bool     `json:"enabled" mapstructure:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Console   bool   `json:"console" mapstructure:"console"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// MetricsConfig holds metrics exposition settings
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Addr    string `json:"addr" mapstructure:"addr"`
}

// DefaultConfig returns a config with sane defaults
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Provider:          "anthropic",
			Model:             "claude-sonnet-4-5",
			Temperature:       0.7,
			MaxTokens:         4096,
			MaxToolIterations: 10,
			PromptCaching:     true,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Console:   true,
			Pretty:    true,
			Redaction: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
	}
}

// Validate checks the configuration for startup-fatal problems
func (c *Config) Validate() error {
	if c.Agent.Model == "" {
		return fmt.Errorf("agent model cannot be empty")
	}
	if c.Agent.Temperature < 0 || c.Agent.Temperature > 2 {
		return fmt.Errorf("agent temperature must be between 0 and 2")
	}
	if c.Agent.MaxTokens <= 0 {
		return fmt.Errorf("agent max tokens must be positive")
	}
	if c.Agent.MaxToolIterations <= 0 {
		return fmt.Errorf("agent max tool iterations must be positive")
	}

	switch c.Agent.Provider {
	case "anthropic":
		if c.Providers.AnthropicAPIKey == "" {
			return fmt.Errorf("anthropic api key is required for provider %q", c.Agent.Provider)
		}
	case "openai":
		if c.Providers.OpenAIAPIKey == "" {
			return fmt.Errorf("openai api key is required for provider %q", c.Agent.Provider)
		}
	default:
		return fmt.Errorf("unsupported provider %q", c.Agent.Provider)
	}

	seen := make(map[string]bool, len(c.MCPServers))
	for _, srv := range c.MCPServers {
		if srv.Name == "" {
			return fmt.Errorf("mcp server name cannot be empty")
		}
		if seen[srv.Name] {
			return fmt.Errorf("duplicate mcp server name %q", srv.Name)
		}
		seen[srv.Name] = true
		if srv.Command == "" {
			return fmt.Errorf("mcp server %q command cannot be empty", srv.Name)
		}
	}

	return nil
}
