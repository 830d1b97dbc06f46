// Package config loads mend configuration from YAML files and MEND_*
// environment variables. Precedence: defaults < file < environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mendhq/mend/internal/notify"
)

// Config holds the complete mend configuration
type Config struct {
	// Approval settings
	Approval ApprovalConfig `yaml:"approval" json:"approval"`

	// Notification channel settings
	Notify NotifyConfig `yaml:"notify" json:"notify"`

	// AI analysis settings
	AI AIConfig `yaml:"ai" json:"ai"`

	// Monitor agent settings
	Monitor MonitorConfig `yaml:"monitor" json:"monitor"`

	// EventDBPath is where the SQLite audit trail lives
	// Default: mend-events.db
	EventDBPath string `yaml:"event_db_path" json:"event_db_path"`

	// LogLevel controls slog verbosity: debug, info, warn, error
	// Default: info
	LogLevel string `yaml:"log_level" json:"log_level"`
}

// ApprovalConfig holds approval workflow settings
type ApprovalConfig struct {
	// Recipients receive every approval request
	Recipients []string `yaml:"recipients" json:"recipients"`

	// Channels to dispatch approval requests on
	// Default: ["email"]
	Channels []string `yaml:"channels" json:"channels"`

	// TimeoutHours before a pending request expires
	// Default: 24
	TimeoutHours int `yaml:"timeout_hours" json:"timeout_hours"`
}

// NotifyConfig holds per-channel delivery settings
type NotifyConfig struct {
	// PerChannelTimeout bounds each delivery attempt
	// Default: 10s
	PerChannelTimeout time.Duration `yaml:"per_channel_timeout" json:"per_channel_timeout"`

	// Email holds SMTP settings; the email channel registers only when Host is set
	Email notify.EmailConfig `yaml:"email" json:"email"`

	// WebhookURL enables the webhook channel when set
	WebhookURL string `yaml:"webhook_url" json:"webhook_url"`
}

// AIConfig holds code analysis settings
type AIConfig struct {
	// Model is the Anthropic model id used for analysis
	// Default: claude-sonnet-4-20250514
	Model string `yaml:"model" json:"model"`

	// MaxConcurrent bounds in-flight analysis calls
	// Default: 2
	MaxConcurrent int `yaml:"max_concurrent" json:"max_concurrent"`
}

// MonitorConfig holds monitor agent thresholds
type MonitorConfig struct {
	// CheckInterval is how often the agent samples process health
	// Default: 30s
	CheckInterval time.Duration `yaml:"check_interval" json:"check_interval"`

	// MaxHeapMB triggers an alert when heap usage exceeds it
	// Default: 1024
	MaxHeapMB uint64 `yaml:"max_heap_mb" json:"max_heap_mb"`

	// MaxGoroutines triggers an alert when the goroutine count exceeds it
	// Default: 5000
	MaxGoroutines int `yaml:"max_goroutines" json:"max_goroutines"`
}

// DefaultConfig returns a configuration with conservative defaults
func DefaultConfig() *Config {
	return &Config{
		Approval: ApprovalConfig{
			Channels:     []string{"email"},
			TimeoutHours: 24,
		},
		Notify: NotifyConfig{
			PerChannelTimeout: 10 * time.Second,
		},
		AI: AIConfig{
			Model:         "claude-sonnet-4-20250514",
			MaxConcurrent: 2,
		},
		Monitor: MonitorConfig{
			CheckInterval: 30 * time.Second,
			MaxHeapMB:     1024,
			MaxGoroutines: 5000,
		},
		EventDBPath: "mend-events.db",
		LogLevel:    "info",
	}
}

// LoadFromFile loads configuration from a YAML file, layered over defaults.
// A missing file is not an error; defaults are returned.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays MEND_* environment variables onto the configuration
func (c *Config) ApplyEnv() {
	if val := os.Getenv("MEND_APPROVAL_RECIPIENTS"); val != "" {
		c.Approval.Recipients = splitList(val)
	}
	if val := os.Getenv("MEND_APPROVAL_CHANNELS"); val != "" {
		c.Approval.Channels = splitList(val)
	}
	if val := os.Getenv("MEND_APPROVAL_TIMEOUT_HOURS"); val != "" {
		if hours, err := strconv.Atoi(val); err == nil && hours > 0 {
			c.Approval.TimeoutHours = hours
		}
	}

	if val := os.Getenv("MEND_NOTIFY_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			c.Notify.PerChannelTimeout = d
		}
	}
	if val := os.Getenv("MEND_SMTP_HOST"); val != "" {
		c.Notify.Email.Host = val
	}
	if val := os.Getenv("MEND_SMTP_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil && port > 0 {
			c.Notify.Email.Port = port
		}
	}
	if val := os.Getenv("MEND_SMTP_FROM"); val != "" {
		c.Notify.Email.From = val
	}
	if val := os.Getenv("MEND_SMTP_USERNAME"); val != "" {
		c.Notify.Email.Username = val
	}
	if val := os.Getenv("MEND_SMTP_PASSWORD"); val != "" {
		c.Notify.Email.Password = val
	}
	if val := os.Getenv("MEND_BASE_URL"); val != "" {
		c.Notify.Email.BaseURL = val
	}
	if val := os.Getenv("MEND_WEBHOOK_URL"); val != "" {
		c.Notify.WebhookURL = val
	}

	if val := os.Getenv("MEND_AI_MODEL"); val != "" {
		c.AI.Model = val
	}
	if val := os.Getenv("MEND_AI_MAX_CONCURRENT"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			c.AI.MaxConcurrent = n
		}
	}

	if val := os.Getenv("MEND_MONITOR_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			c.Monitor.CheckInterval = d
		}
	}
	if val := os.Getenv("MEND_MONITOR_MAX_HEAP_MB"); val != "" {
		if n, err := strconv.ParseUint(val, 10, 64); err == nil && n > 0 {
			c.Monitor.MaxHeapMB = n
		}
	}
	if val := os.Getenv("MEND_MONITOR_MAX_GOROUTINES"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			c.Monitor.MaxGoroutines = n
		}
	}

	if val := os.Getenv("MEND_EVENT_DB"); val != "" {
		c.EventDBPath = val
	}
	if val := os.Getenv("MEND_LOG_LEVEL"); val != "" {
		c.LogLevel = strings.ToLower(val)
	}
}

// Load reads the file at path (if any), applies environment overrides,
// and validates the result.
func Load(path string) (*Config, error) {
	cfg, err := LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Approval.TimeoutHours <= 0 {
		return fmt.Errorf("approval timeout_hours must be positive, got %d", c.Approval.TimeoutHours)
	}
	if len(c.Approval.Channels) == 0 {
		return fmt.Errorf("at least one approval channel is required")
	}
	if c.Notify.PerChannelTimeout <= 0 {
		return fmt.Errorf("notify per_channel_timeout must be positive, got %v", c.Notify.PerChannelTimeout)
	}
	if c.AI.Model == "" {
		return fmt.Errorf("ai model is required")
	}
	if c.AI.MaxConcurrent <= 0 {
		return fmt.Errorf("ai max_concurrent must be positive, got %d", c.AI.MaxConcurrent)
	}
	if c.Monitor.CheckInterval <= 0 {
		return fmt.Errorf("monitor check_interval must be positive, got %v", c.Monitor.CheckInterval)
	}
	if c.EventDBPath == "" {
		return fmt.Errorf("event_db_path is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}
	return nil
}

// splitList parses a comma-separated environment value
func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
