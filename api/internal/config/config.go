package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrMissingAPIKey   = errors.New("missing required env GEMINI_API_KEY (or API_KEY)")
	ErrMissingBotToken = errors.New("missing required env TELEGRAM_BOT_TOKEN")
)

type Config struct {
	Port string

	APIKey     string
	TextModel  string
	AudioModel string
	PromptDir  string

	TelegramToken string
	WebhookURL    string
	MaxVoiceBytes int64

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LogMode        string
	AllowedOrigins []string
	RequestTimeout time.Duration
	SessionTTL     time.Duration
}

// fileConfig mirrors Config in the optional YAML file. Durations are strings
// like "70s".
type fileConfig struct {
	Port           string   `yaml:"port"`
	TextModel      string   `yaml:"text_model"`
	AudioModel     string   `yaml:"audio_model"`
	PromptDir      string   `yaml:"prompt_dir"`
	WebhookURL     string   `yaml:"webhook_url"`
	MaxVoiceBytes  int64    `yaml:"max_voice_bytes"`
	DatabaseURL    string   `yaml:"database_url"`
	LogMode        string   `yaml:"log_mode"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RequestTimeout string   `yaml:"request_timeout"`
	SessionTTL     string   `yaml:"session_ttl"`
	Redis          struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
}

func Default() *Config {
	return &Config{
		Port:           "8000",
		TextModel:      "gemini-2.5-pro",
		AudioModel:     "gemini-2.5-flash-native-audio-preview-09-2025",
		MaxVoiceBytes:  10 << 20,
		LogMode:        "production",
		AllowedOrigins: []string{"*"},
		RequestTimeout: 70 * time.Second,
		SessionTTL:     24 * time.Hour,
	}
}

// Load builds the config from defaults, then CONFIG_FILE, then the environment.
// A missing API key is an error.
func Load() (*Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	return cfg, nil
}

// RequireBot checks the settings only the Telegram bot needs.
func (c *Config) RequireBot() error {
	if c.TelegramToken == "" {
		return ErrMissingBotToken
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var f fileConfig
	if err := yaml.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setStr(&c.Port, f.Port)
	setStr(&c.TextModel, f.TextModel)
	setStr(&c.AudioModel, f.AudioModel)
	setStr(&c.PromptDir, f.PromptDir)
	setStr(&c.WebhookURL, f.WebhookURL)
	setStr(&c.DatabaseURL, f.DatabaseURL)
	setStr(&c.LogMode, f.LogMode)
	setStr(&c.RedisAddr, f.Redis.Addr)
	setStr(&c.RedisPassword, f.Redis.Password)
	if f.Redis.DB != 0 {
		c.RedisDB = f.Redis.DB
	}
	if f.MaxVoiceBytes > 0 {
		c.MaxVoiceBytes = f.MaxVoiceBytes
	}
	if len(f.AllowedOrigins) > 0 {
		c.AllowedOrigins = f.AllowedOrigins
	}
	if err := setDuration(&c.RequestTimeout, f.RequestTimeout); err != nil {
		return fmt.Errorf("config request_timeout: %w", err)
	}
	if err := setDuration(&c.SessionTTL, f.SessionTTL); err != nil {
		return fmt.Errorf("config session_ttl: %w", err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	c.APIKey = getEnv("GEMINI_API_KEY", getEnv("API_KEY", c.APIKey))
	c.Port = getEnv("PORT", c.Port)
	c.TextModel = getEnv("TEXT_MODEL", c.TextModel)
	c.AudioModel = getEnv("AUDIO_MODEL", c.AudioModel)
	c.PromptDir = getEnv("PROMPT_DIR", c.PromptDir)
	c.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", c.TelegramToken)
	c.WebhookURL = getEnv("WEBHOOK_URL", c.WebhookURL)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.LogMode = getEnv("LOG_MODE", c.LogMode)

	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.RedisDB = n
	}
	if v := os.Getenv("MAX_VOICE_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MAX_VOICE_BYTES: %w", err)
		}
		c.MaxVoiceBytes = n
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = splitList(v)
	}
	if err := setDuration(&c.RequestTimeout, os.Getenv("REQUEST_TIMEOUT")); err != nil {
		return fmt.Errorf("REQUEST_TIMEOUT: %w", err)
	}
	if err := setDuration(&c.SessionTTL, os.Getenv("SESSION_TTL")); err != nil {
		return fmt.Errorf("SESSION_TTL: %w", err)
	}
	return nil
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func setStr(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) error {
	if v = strings.TrimSpace(v); v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return err
	}
	if d <= 0 {
		return fmt.Errorf("duration must be positive, got %s", v)
	}
	*dst = d
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
