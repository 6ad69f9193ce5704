package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("STORYMASTER_CONFIG", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Model.MaxTokens != 1000 {
		t.Fatalf("expected default max tokens 1000, got %d", cfg.Model.MaxTokens)
	}
	if cfg.Model.Temperature != 0.7 {
		t.Fatalf("expected default temperature 0.7, got %v", cfg.Model.Temperature)
	}
	if cfg.Model.CallTimeout != 30*time.Second {
		t.Fatalf("expected default call timeout 30s, got %v", cfg.Model.CallTimeout)
	}
	want := []string{"openai", "anthropic", "gemini"}
	if len(cfg.Model.FallbackOrder) != len(want) {
		t.Fatalf("unexpected fallback order: %v", cfg.Model.FallbackOrder)
	}
	for i, name := range want {
		if cfg.Model.FallbackOrder[i] != name {
			t.Fatalf("expected fallback[%d]=%s, got %s", i, name, cfg.Model.FallbackOrder[i])
		}
	}
	if strings.HasPrefix(cfg.Paths.AgentsDir, "~") {
		t.Fatalf("agents dir not expanded: %s", cfg.Paths.AgentsDir)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Setenv("STORYMASTER_CONFIG", "")

	cfgDir := filepath.Join(tmpDir, ConfigDir)
	if err := os.MkdirAll(cfgDir, 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	raw := `{"model":{"maxTokens":500,"fallbackOrder":["gemini"]},"providers":{"openai":{"apiKey":"sk-test"}}}`
	if err := os.WriteFile(filepath.Join(cfgDir, ConfigFile), []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Model.MaxTokens != 500 {
		t.Fatalf("expected max tokens 500, got %d", cfg.Model.MaxTokens)
	}
	if len(cfg.Model.FallbackOrder) != 1 || cfg.Model.FallbackOrder[0] != "gemini" {
		t.Fatalf("unexpected fallback order: %v", cfg.Model.FallbackOrder)
	}
	if cfg.Providers.OpenAI.APIKey != "sk-test" {
		t.Fatalf("expected api key from file, got %q", cfg.Providers.OpenAI.APIKey)
	}
	// Sections absent from the file keep their defaults.
	if cfg.Model.Temperature != 0.7 {
		t.Fatalf("expected default temperature, got %v", cfg.Model.Temperature)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("STORYMASTER_CONFIG", "")
	t.Setenv("STORYMASTER_MODEL_MAX_TOKENS", "250")
	t.Setenv("STORYMASTER_PROVIDERS_ANTHROPIC_API_KEY", "sk-env")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Model.MaxTokens != 250 {
		t.Fatalf("expected env max tokens 250, got %d", cfg.Model.MaxTokens)
	}
	if cfg.Providers.Anthropic.APIKey != "sk-env" {
		t.Fatalf("expected env api key, got %q", cfg.Providers.Anthropic.APIKey)
	}
}

func TestConfigPathExplicitOverride(t *testing.T) {
	t.Setenv("STORYMASTER_CONFIG", "/tmp/custom.json")
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("config path failed: %v", err)
	}
	if path != "/tmp/custom.json" {
		t.Fatalf("expected explicit path, got %s", path)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("STORYMASTER_CONFIG", "")

	cfg := DefaultConfig()
	cfg.Model.MaxTokens = 1234
	if err := Save(cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Model.MaxTokens != 1234 {
		t.Fatalf("expected saved max tokens, got %d", loaded.Model.MaxTokens)
	}
}
