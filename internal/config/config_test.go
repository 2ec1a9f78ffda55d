package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProviderEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("OPENAI_MODEL", "gpt-4o-mini")
	t.Setenv("ANTHROPIC_API_KEY", "ak-env")
	t.Setenv("ANTHROPIC_BASE_URL", "http://localhost:9999")
	t.Setenv("DATA_DIR", "/tmp/artifacts")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: "8080"
logLevel: "info"
dataDir: "data"
openaiModel: "gpt-3.5-turbo"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.OpenAIAPIKey != "sk-env" {
		t.Fatalf("openaiApiKey = %q, want %q", cfg.OpenAIAPIKey, "sk-env")
	}
	if cfg.OpenAIModel != "gpt-4o-mini" {
		t.Fatalf("openaiModel = %q, want %q", cfg.OpenAIModel, "gpt-4o-mini")
	}
	if cfg.AnthropicAPIKey != "ak-env" {
		t.Fatalf("anthropicApiKey = %q, want %q", cfg.AnthropicAPIKey, "ak-env")
	}
	if cfg.AnthropicBaseURL != "http://localhost:9999" {
		t.Fatalf("anthropicBaseUrl = %q, want %q", cfg.AnthropicBaseURL, "http://localhost:9999")
	}
	if cfg.DataDir != "/tmp/artifacts" {
		t.Fatalf("dataDir = %q, want %q", cfg.DataDir, "/tmp/artifacts")
	}
	if cfg.MaxUploadBytes != 2048 {
		t.Fatalf("maxUploadBytes = %d, want 2048", cfg.MaxUploadBytes)
	}
}

func TestLoadAllowsMissingAPIKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
port: "8080"
`
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.OpenAIAPIKey != "" || cfg.AnthropicAPIKey != "" {
		t.Fatalf("expected empty api keys, got %q and %q", cfg.OpenAIAPIKey, cfg.AnthropicAPIKey)
	}
}

func TestValidateConfigRejectsMissingPort(t *testing.T) {
	if err := validateConfig(FileConfig{}); err == nil {
		t.Fatalf("validateConfig() expected error for missing port")
	}
}

func TestValidateConfigRejectsNegativeUploadLimit(t *testing.T) {
	cfg := FileConfig{Port: "8080", MaxUploadBytes: -1}
	if err := validateConfig(cfg); err == nil {
		t.Fatalf("validateConfig() expected error for negative maxUploadBytes")
	}
}
