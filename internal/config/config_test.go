package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
default_llm = "local"

[llm.local]
model = "qwen"
base_url = "http://localhost:11434/v1"
api_key = "k"

[agent]
name = "jchat"
memory_size = 4
tools = ["webSearch"]

[db]
enabled = false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.LLM().Model != "qwen" || cfg.LLM().Key() != "k" {
		t.Errorf("LLM() = %+v", cfg.LLM())
	}
	if cfg.Agent.Name != "jchat" || cfg.Agent.MemorySize != 4 {
		t.Errorf("Agent = %+v", cfg.Agent)
	}
	if cfg.Agent.SystemPrompt != defaultSystemPrompt {
		t.Errorf("SystemPrompt = %q, want default", cfg.Agent.SystemPrompt)
	}
	if len(cfg.Agent.Tools) != 1 || cfg.Agent.Tools[0] != "webSearch" {
		t.Errorf("Tools = %v", cfg.Agent.Tools)
	}
	if cfg.DB.Enabled {
		t.Error("DB.Enabled = true, want false")
	}
	if cfg.Gateway.Addr != ":8484" {
		t.Errorf("Gateway.Addr = %q, want default", cfg.Gateway.Addr)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "zero memory", body: "[agent]\nmemory_size = 0\n", want: "memory_size"},
		{name: "negative memory", body: "[agent]\nmemory_size = -1\n", want: "memory_size"},
		{name: "missing llm", body: "default_llm = \"nope\"\n", want: "not found"},
		{name: "bad toml", body: "default_llm = \n", want: "decoding"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("Load() expected error for missing explicit path")
	}
}

func TestKeyFallsBackToEnv(t *testing.T) {
	t.Setenv("CHATMIND_TEST_KEY", "from-env")

	c := &LLMConfig{APIKeyEnv: "CHATMIND_TEST_KEY"}
	if got := c.Key(); got != "from-env" {
		t.Errorf("Key() = %q, want from-env", got)
	}
	c.APIKey = "explicit"
	if got := c.Key(); got != "explicit" {
		t.Errorf("Key() = %q, want explicit", got)
	}
}
