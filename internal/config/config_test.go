package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis-override:6379")
	t.Setenv("LLM_API_KEY", "sk-env")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("CHAT_RATE_LIMIT_PER_MINUTE", "30")

	cfgPath := writeConfig(t, `
port: "8080"
logLevel: "info"
redisAddr: "localhost:6379"
llmBaseURL: "https://api.openai.com/v1"
llmAPIKey: "sk-file"
llmModel: "gpt-4o-mini"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.RedisAddr != "redis-override:6379" {
		t.Fatalf("redisAddr = %q, want env override", cfg.RedisAddr)
	}
	if cfg.LLMAPIKey != "sk-env" {
		t.Fatalf("llmAPIKey = %q, want env override", cfg.LLMAPIKey)
	}
	if cfg.MaxUploadBytes != 2048 {
		t.Fatalf("maxUploadBytes = %d, want 2048", cfg.MaxUploadBytes)
	}
	if cfg.ChatRateLimitPerMinute != 30 {
		t.Fatalf("chatRateLimitPerMinute = %d, want 30", cfg.ChatRateLimitPerMinute)
	}
}

func TestLoadDefaultsMaxUploadBytes(t *testing.T) {
	cfgPath := writeConfig(t, `
port: "8080"
redisAddr: "localhost:6379"
llmBaseURL: "https://api.openai.com/v1"
llmModel: "gpt-4o-mini"
`)
	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Fatalf("maxUploadBytes = %d, want default 10MiB", cfg.MaxUploadBytes)
	}
}

func TestValidateConfigRequiredFields(t *testing.T) {
	cfgPath := writeConfig(t, `
port: "8080"
llmBaseURL: "https://api.openai.com/v1"
llmModel: "gpt-4o-mini"
`)
	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("expected error for missing redisAddr")
	}

	cfgPath = writeConfig(t, `
port: "8080"
redisAddr: "localhost:6379"
llmBaseURL: "https://api.openai.com/v1"
llmModel: "gpt-4o-mini"
stripeSecretKey: "sk_test_x"
`)
	if _, err := Load(cfgPath); err == nil {
		t.Fatalf("expected error for stripe key without redirect urls")
	}
}
