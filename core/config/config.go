package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
	// Synchronous makes telebot handle one update at a time. nil -> true.
	Synchronous *bool `yaml:"synchronous" envconfig:"TELEGRAM_SYNCHRONOUS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order" envconfig:"LOG_KEYS_ORDER"`
	DebugSample string `yaml:"debug_sample" envconfig:"LOG_DEBUG_SAMPLE"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	BotFile     string `yaml:"bot_file" envconfig:"LOG_BOT_FILE"`
	MaxSizeMB   int    `yaml:"max_size_mb" envconfig:"LOG_MAX_SIZE_MB"`
	MaxBackups  int    `yaml:"max_backups" envconfig:"LOG_MAX_BACKUPS"`
	MaxAgeDays  int    `yaml:"max_age_days" envconfig:"LOG_MAX_AGE_DAYS"`
	Compress    bool   `yaml:"compress" envconfig:"LOG_COMPRESS"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// DialogConfig bounds the in-memory dialog sessions.
type DialogConfig struct {
	// TTLSeconds evicts idle dialogs; nil -> default, 0 disables expiry.
	TTLSeconds  *int `yaml:"ttl_seconds" envconfig:"DIALOG_TTL_SECONDS"`
	MaxSessions int  `yaml:"max_sessions" envconfig:"DIALOG_MAX_SESSIONS"`
}

// MetricsConfig enables the side HTTP listener for /metrics and /healthz.
type MetricsConfig struct {
	Listen string `yaml:"listen" envconfig:"METRICS_LISTEN"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
	// UpdateInlineQuery identifies inline query updates for rate limit exclusions.
	UpdateInlineQuery = "inline_query"
)

const (
	defaultDialogTTLSeconds  = 1800
	defaultDialogMaxSessions = 10000
	defaultLogMaxSizeMB      = 20
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
// - "inline_query": inline query updates
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates the configuration that belongs to the reusable core.
type Config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Logging   LoggingConfig   `yaml:"logging"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Dialog    DialogConfig    `yaml:"dialog"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ReadFile decodes the YAML file at path into out. A missing file leaves out untouched
// so deployments may rely on environment variables alone.
func ReadFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

// ApplyEnv overrides each section from environment variables.
// Sections are processed one by one so the env keys are exactly the ones in the tags.
func ApplyEnv(cfg *Config) error {
	sections := []any{
		&cfg.Telegram,
		&cfg.Webhook,
		&cfg.Logging,
		&cfg.RateLimit,
		&cfg.Dialog,
		&cfg.Metrics,
	}
	for _, s := range sections {
		if err := envconfig.Process("", s); err != nil {
			return fmt.Errorf("failed to process env: %w", err)
		}
	}
	return nil
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := ReadFile(path, &cfg); err != nil {
		return nil, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize performs basic validation of required configuration fields and adjusts defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return fmt.Errorf("telegram token is required")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	if cfg.Telegram.Synchronous == nil {
		sync := true
		cfg.Telegram.Synchronous = &sync
	}

	allowed := map[string]struct{}{
		UpdateCallback:    {},
		UpdateMessage:     {},
		UpdateInlineQuery: {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message, inline_query", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}
	if cfg.RateLimit.IntervalMS < 0 {
		return fmt.Errorf("rate_limit.interval_ms must be >= 0")
	}

	if cfg.Dialog.TTLSeconds == nil {
		ttl := defaultDialogTTLSeconds
		cfg.Dialog.TTLSeconds = &ttl
	}
	if *cfg.Dialog.TTLSeconds < 0 {
		return fmt.Errorf("dialog.ttl_seconds must be >= 0")
	}
	if cfg.Dialog.MaxSessions <= 0 {
		cfg.Dialog.MaxSessions = defaultDialogMaxSessions
	}

	if cfg.Logging.MaxSizeMB <= 0 {
		cfg.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	return nil
}

// IsSynchronous reports whether updates are handled one at a time.
func (t TelegramConfig) IsSynchronous() bool {
	return t.Synchronous == nil || *t.Synchronous
}

// TTL returns the idle expiry for dialog sessions; 0 means sessions never expire.
func (d DialogConfig) TTL() time.Duration {
	if d.TTLSeconds == nil {
		return defaultDialogTTLSeconds * time.Second
	}
	return time.Duration(*d.TTLSeconds) * time.Second
}
