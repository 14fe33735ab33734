package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"CONFIG_FILE", "GEMINI_API_KEY", "API_KEY", "PORT", "TEXT_MODEL", "AUDIO_MODEL",
	"PROMPT_DIR", "TELEGRAM_BOT_TOKEN", "WEBHOOK_URL", "DATABASE_URL", "REDIS_ADDR",
	"REDIS_PASSWORD", "REDIS_DB", "LOG_MODE", "MAX_VOICE_BYTES", "ALLOWED_ORIGINS",
	"REQUEST_TIMEOUT", "SESSION_TTL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_MissingAPIKey(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "legacy-key")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "legacy-key", cfg.APIKey)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "gemini-2.5-pro", cfg.TextModel)
	assert.Equal(t, "gemini-2.5-flash-native-audio-preview-09-2025", cfg.AudioModel)
	assert.Equal(t, 70*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.ErrorIs(t, cfg.RequireBot(), ErrMissingBotToken)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "toolkit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
text_model: gemini-file
request_timeout: 30s
allowed_origins: [https://school.example]
redis:
  addr: localhost:6379
  db: 2
`), 0o644))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("GEMINI_API_KEY", "primary")
	t.Setenv("API_KEY", "ignored")
	t.Setenv("TEXT_MODEL", "gemini-env")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "primary", cfg.APIKey)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "gemini-env", cfg.TextModel)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"https://school.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.NoError(t, cfg.RequireBot())
}

func TestLoad_BadValues(t *testing.T) {
	tests := map[string]string{
		"REDIS_DB":        "two",
		"REQUEST_TIMEOUT": "soon",
		"SESSION_TTL":     "-1h",
	}
	for k, v := range tests {
		t.Run(k, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("GEMINI_API_KEY", "k")
			t.Setenv(k, v)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "k")
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}
