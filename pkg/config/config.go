package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
)

const (
	envHFAPIKey          = "HF_API_KEY"
	envSlackBotToken     = "SLACK_BOT_TOKEN"
	envPort              = "PORT"
	envTelegramBotToken  = "TELEGRAM_BOT_TOKEN"
	envTelegramAllowFrom = "TELEGRAM_ALLOW_FROM"
)

const (
	DefaultWebhookPath = "/incoming"
	DefaultServerPort  = 3000
	defaultBackend     = "hf"
	defaultModel       = "google/flan-t5-small"
)

// Config is the root runtime configuration loaded from config.json.
//
// The file is optional: when none is found the service starts on defaults
// plus environment overrides. Missing API tokens are deliberately not
// validated here; the first outbound call fails with an auth error and is
// contained like any other backend failure.
type Config struct {
	Server     ServerConfig     `json:"server"`
	Gateway    GatewayConfig    `json:"gateway"`
	Slack      SlackConfig      `json:"slack"`
	Channels   ChannelsConfig   `json:"channels"`
	Generation GenerationConfig `json:"generation"`
	Providers  ProvidersConfig  `json:"providers"`
	Logging    LoggingConfig    `json:"logging,omitempty"`
}

// ServerConfig configures the inbound webhook listener.
type ServerConfig struct {
	Host        string `json:"host"`
	Port        int    `json:"port"`
	WebhookPath string `json:"webhook_path"`
}

// GatewayConfig configures the status/readiness HTTP endpoint bind settings.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// SlackConfig holds Slack Web API credentials and overrides.
type SlackConfig struct {
	BotToken   string `json:"bot_token"`
	APIBaseURL string `json:"api_base_url"`
}

// ChannelsConfig stores transport adapter settings.
type ChannelsConfig struct {
	Slack    SlackChannelConfig `json:"slack"`
	Telegram TelegramConfig     `json:"telegram"`
}

// SlackChannelConfig toggles the Slack events webhook channel.
type SlackChannelConfig struct {
	Enabled bool `json:"enabled"`
}

// TelegramConfig configures the optional Telegram channel.
type TelegramConfig struct {
	Enabled   bool     `json:"enabled"`
	Token     string   `json:"token"`
	AllowFrom []string `json:"allow_from"`
}

// GenerationConfig selects the text-generation backend and its parameters.
type GenerationConfig struct {
	Backend      string `json:"backend"`
	Model        string `json:"model"`
	MaxNewTokens int    `json:"max_new_tokens"`
}

// ProvidersConfig stores per-backend connection settings.
type ProvidersConfig struct {
	HF     HFProviderConfig     `json:"hf"`
	OpenAI OpenAIProviderConfig `json:"openai"`
}

// HFProviderConfig configures the Hugging Face Inference API client.
type HFProviderConfig struct {
	BaseURL               string `json:"base_url"`
	APIKeyEnv             string `json:"api_key_env"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
}

// OpenAIProviderConfig configures OpenAI-compatible backends.
type OpenAIProviderConfig struct {
	BaseURL               string `json:"base_url"`
	APIKeyEnv             string `json:"api_key_env"`
	Organization          string `json:"organization"`
	Project               string `json:"project"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds"`
}

// LoggingConfig controls structured log output format and verbosity.
type LoggingConfig struct {
	Format    string `json:"format,omitempty"`
	Level     string `json:"level,omitempty"`
	AddSource bool   `json:"add_source,omitempty"`
}

// LoadConfig resolves config.json if present, unmarshals it, and applies
// defaults plus environment overrides.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	configPath, err := findConfigPath()
	if err != nil {
		return nil, err
	}

	if configPath != "" {
		content, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := json.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Channels: ChannelsConfig{
			Slack: SlackChannelConfig{Enabled: true},
		},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if strings.TrimSpace(cfg.Server.WebhookPath) == "" {
		cfg.Server.WebhookPath = DefaultWebhookPath
	}
	if strings.TrimSpace(cfg.Generation.Backend) == "" {
		cfg.Generation.Backend = defaultBackend
	}
	if strings.TrimSpace(cfg.Generation.Model) == "" {
		cfg.Generation.Model = defaultModel
	}
}

// applyEnvOverrides injects env-driven settings on top of file config.
func applyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if token := strings.TrimSpace(os.Getenv(envSlackBotToken)); token != "" {
		cfg.Slack.BotToken = token
	}

	if port := strings.TrimSpace(os.Getenv(envPort)); port != "" {
		if value, err := strconv.Atoi(port); err == nil && value > 0 {
			cfg.Server.Port = value
		}
	}

	if token := strings.TrimSpace(os.Getenv(envTelegramBotToken)); token != "" {
		cfg.Channels.Telegram.Token = token
	}

	if rawAllowFrom := strings.TrimSpace(os.Getenv(envTelegramAllowFrom)); rawAllowFrom != "" {
		cfg.Channels.Telegram.AllowFrom = parseCSV(rawAllowFrom)
	}
}

// HFAPIKey resolves the Hugging Face token: the configured env var name
// first, then the conventional HF_API_KEY.
func (c *Config) HFAPIKey() string {
	if name := strings.TrimSpace(c.Providers.HF.APIKeyEnv); name != "" {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			return key
		}
	}

	return strings.TrimSpace(os.Getenv(envHFAPIKey))
}

// parseCSV splits comma-separated values and returns a trimmed compact slice.
func parseCSV(input string) []string {
	parts := strings.Split(input, ",")
	clean := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		clean = append(clean, trimmed)
	}

	return slices.Clip(clean)
}

// findConfigPath resolves the active config file location.
//
// Precedence is TONEFIX_CONFIG first, then cwd-local fallback paths.
// An empty path with a nil error means no config file exists.
func findConfigPath() (string, error) {
	if value := strings.TrimSpace(os.Getenv("TONEFIX_CONFIG")); value != "" {
		if info, err := os.Stat(value); err == nil && !info.IsDir() {
			return value, nil
		}
		return "", fmt.Errorf("TONEFIX_CONFIG does not point to a file: %s", value)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get current working directory: %w", err)
	}

	candidates := []string{
		filepath.Join(cwd, "config.json"),
		filepath.Join(cwd, "config", "config.json"),
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	return "", nil
}
