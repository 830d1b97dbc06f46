package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config must validate, got %v", err)
	}
	if cfg.Approval.TimeoutHours != 24 {
		t.Errorf("Expected default timeout 24h, got %d", cfg.Approval.TimeoutHours)
	}
	if len(cfg.Approval.Channels) != 1 || cfg.Approval.Channels[0] != "email" {
		t.Errorf("Expected default channel email, got %v", cfg.Approval.Channels)
	}
}

func TestLoadFromFileMissingUsesDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("Missing file must not error, got %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level, got %s", cfg.LogLevel)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mend.yaml")
	content := `
approval:
  recipients: ["lead@example.com", "oncall@example.com"]
  channels: ["email", "webhook"]
  timeout_hours: 4
notify:
  per_channel_timeout: 5s
  webhook_url: https://hooks.example.com/T000/B000
ai:
  model: claude-opus-4-20250514
monitor:
  max_goroutines: 100
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.Approval.Recipients) != 2 {
		t.Errorf("Expected 2 recipients, got %v", cfg.Approval.Recipients)
	}
	if cfg.Approval.TimeoutHours != 4 {
		t.Errorf("Expected timeout 4h, got %d", cfg.Approval.TimeoutHours)
	}
	if cfg.Notify.PerChannelTimeout != 5*time.Second {
		t.Errorf("Expected 5s channel timeout, got %v", cfg.Notify.PerChannelTimeout)
	}
	if cfg.Notify.WebhookURL == "" {
		t.Error("Expected webhook url to be set")
	}
	if cfg.AI.Model != "claude-opus-4-20250514" {
		t.Errorf("Unexpected model: %s", cfg.AI.Model)
	}
	// Fields absent from the file keep their defaults
	if cfg.AI.MaxConcurrent != 2 {
		t.Errorf("Expected default max_concurrent, got %d", cfg.AI.MaxConcurrent)
	}
	if cfg.Monitor.MaxGoroutines != 100 {
		t.Errorf("Expected max_goroutines 100, got %d", cfg.Monitor.MaxGoroutines)
	}
	if cfg.Monitor.MaxHeapMB != 1024 {
		t.Errorf("Expected default max_heap_mb, got %d", cfg.Monitor.MaxHeapMB)
	}
}

func TestLoadFromFileInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mend.yaml")
	if err := os.WriteFile(path, []byte("approval: [not a map"), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	if _, err := LoadFromFile(path); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("MEND_APPROVAL_RECIPIENTS", "a@example.com, b@example.com")
	t.Setenv("MEND_APPROVAL_CHANNELS", "webhook")
	t.Setenv("MEND_APPROVAL_TIMEOUT_HOURS", "2")
	t.Setenv("MEND_SMTP_HOST", "smtp.example.com")
	t.Setenv("MEND_WEBHOOK_URL", "https://hooks.example.com/x")
	t.Setenv("MEND_MONITOR_INTERVAL", "10s")
	t.Setenv("MEND_LOG_LEVEL", "WARN")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if len(cfg.Approval.Recipients) != 2 || cfg.Approval.Recipients[1] != "b@example.com" {
		t.Errorf("Unexpected recipients: %v", cfg.Approval.Recipients)
	}
	if len(cfg.Approval.Channels) != 1 || cfg.Approval.Channels[0] != "webhook" {
		t.Errorf("Unexpected channels: %v", cfg.Approval.Channels)
	}
	if cfg.Approval.TimeoutHours != 2 {
		t.Errorf("Expected timeout 2h, got %d", cfg.Approval.TimeoutHours)
	}
	if cfg.Notify.Email.Host != "smtp.example.com" {
		t.Errorf("Expected smtp host override, got %s", cfg.Notify.Email.Host)
	}
	if cfg.Monitor.CheckInterval != 10*time.Second {
		t.Errorf("Expected 10s interval, got %v", cfg.Monitor.CheckInterval)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("Expected lowercased log level, got %s", cfg.LogLevel)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Overridden config must validate, got %v", err)
	}
}

func TestApplyEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("MEND_APPROVAL_TIMEOUT_HOURS", "-3")
	t.Setenv("MEND_MONITOR_INTERVAL", "soon")
	t.Setenv("MEND_AI_MAX_CONCURRENT", "zero")

	cfg := DefaultConfig()
	cfg.ApplyEnv()

	if cfg.Approval.TimeoutHours != 24 {
		t.Errorf("Negative timeout must be ignored, got %d", cfg.Approval.TimeoutHours)
	}
	if cfg.Monitor.CheckInterval != 30*time.Second {
		t.Errorf("Unparseable interval must be ignored, got %v", cfg.Monitor.CheckInterval)
	}
	if cfg.AI.MaxConcurrent != 2 {
		t.Errorf("Unparseable concurrency must be ignored, got %d", cfg.AI.MaxConcurrent)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.Approval.TimeoutHours = 0 }},
		{"no channels", func(c *Config) { c.Approval.Channels = nil }},
		{"empty model", func(c *Config) { c.AI.Model = "" }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"empty db path", func(c *Config) { c.EventDBPath = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Errorf("Expected validation error for %s", tc.name)
			}
		})
	}
}
