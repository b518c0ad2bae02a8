package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const defaultSystemPrompt = "You are a helpful assistant. Use the available tools when they help answer the user."

type Config struct {
	DefaultLLM string                `toml:"default_llm"`
	LLMs       map[string]*LLMConfig `toml:"llm"`
	Agent      AgentConfig           `toml:"agent"`
	Gateway    GatewayConfig         `toml:"gateway"`
	DB         DBConfig              `toml:"db"`
	Trace      TraceConfig           `toml:"trace"`
	Services   ServicesConfig        `toml:"services"`
}

type LLMConfig struct {
	Model     string `toml:"model"`
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	APIKeyEnv string `toml:"api_key_env"`
	// MaxToolRounds bounds tool-call round trips per completion. Zero keeps the default.
	MaxToolRounds int `toml:"max_tool_rounds"`
}

// Key returns the configured API key, falling back to the APIKeyEnv variable.
func (c *LLMConfig) Key() string {
	if c.APIKey != "" || c.APIKeyEnv == "" {
		return c.APIKey
	}
	return os.Getenv(c.APIKeyEnv)
}

type AgentConfig struct {
	ID           string   `toml:"id"`
	Name         string   `toml:"name"`
	SystemPrompt string   `toml:"system_prompt"`
	MemorySize   int      `toml:"memory_size"`
	SessionID    string   `toml:"session_id"`
	City         string   `toml:"city"`
	Tools        []string `toml:"tools"` // dynamic tools to offer; fixed tools are always offered
}

type GatewayConfig struct {
	Addr  string `toml:"addr"`
	Token string `toml:"token"`
}

type DBConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type TraceConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"`
	URLPath  string `toml:"url_path"`
	APIKey   string `toml:"api_key"`
	Insecure bool   `toml:"insecure"`
	Sync     bool   `toml:"sync"`
}

type ServicesConfig struct {
	Brave BraveConfig `toml:"brave"`
}

type BraveConfig struct {
	APIKey string `toml:"api_key"`
}

func Default() *Config {
	return &Config{
		DefaultLLM: "openai",
		LLMs: map[string]*LLMConfig{
			"openai": {
				Model:     "gpt-4o-mini",
				APIKeyEnv: "OPENAI_API_KEY",
			},
		},
		Agent: AgentConfig{
			Name:         "chatmind",
			SystemPrompt: defaultSystemPrompt,
			MemorySize:   20,
		},
		Gateway: GatewayConfig{
			Addr: ":8484",
		},
		DB: DBConfig{
			Enabled: true,
			Path:    defaultDBPath(),
		},
	}
}

// Load reads .env from the working directory, then decodes the TOML file at
// path over the defaults. An empty path means the user config location; a
// missing file there is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = Path()
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	} else if explicit {
		return nil, err
	}

	if key := os.Getenv("BRAVE_API_KEY"); cfg.Services.Brave.APIKey == "" && key != "" {
		cfg.Services.Brave.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Agent.MemorySize <= 0 {
		return fmt.Errorf("agent.memory_size must be positive, got %d", c.Agent.MemorySize)
	}
	if c.Agent.SystemPrompt == "" {
		return errors.New("agent.system_prompt is empty")
	}
	if _, ok := c.LLMs[c.DefaultLLM]; !ok {
		return fmt.Errorf("default LLM %q not found in config", c.DefaultLLM)
	}
	return nil
}

// LLM returns the default LLM section.
func (c *Config) LLM() *LLMConfig {
	return c.LLMs[c.DefaultLLM]
}

// Path is the default config file location.
func Path() string {
	dir, _ := os.UserConfigDir()
	return filepath.Join(dir, "chatmind", "config.toml")
}

func defaultDBPath() string {
	dir, _ := os.UserHomeDir()
	return filepath.Join(dir, ".local", "share", "chatmind", "chatmind.db")
}
