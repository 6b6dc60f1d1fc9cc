package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otherjamesbrown/moodsense/pkg/logging"
)

var envVars = []string{
	"PORT", "MOODSENSE_SERVER_ADDR", "MOODSENSE_KEY_SOURCE", "MOODSENSE_OUTPUT_FORMAT",
	"MOODSENSE_LOG_LEVEL", "MOODSENSE_LOG_FORMAT", "MOODSENSE_REDIS_ADDR", "MOODSENSE_REDIS_PASSWORD",
	"MOODSENSE_REQUEST_TIMEOUT", "MOODSENSE_REDIS_TTL", "MOODSENSE_CONCURRENCY", "MOODSENSE_TOP_EMOJIS",
	"MOODSENSE_TOP_WORDS", "MOODSENSE_REDIS_DB", "MOODSENSE_MAX_UPLOAD_BYTES",
	"MOODSENSE_SKIP_SYSTEM_MESSAGES", "MOODSENSE_PRESERVE_MEDIA_MESSAGES", "MOODSENSE_INCLUDE_MESSAGES",
	"MOODSENSE_BILLING_CPUS", "MOODSENSE_BILLING_MEMORY_GIB",
}

// isolate clears every variable the loader reads and points the config
// directory at a temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
	}
	dir := t.TempDir()
	t.Setenv("MOODSENSE_CONFIG_DIR", dir)
	return dir
}

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(body), 0600))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultServerAddr, cfg.Server.Addr)
	assert.Equal(t, DefaultRequestTimeout, cfg.Server.RequestTimeout)
	assert.Equal(t, "auto", cfg.Server.KeySource)
	assert.Equal(t, OutputFormatText, cfg.Output)
	assert.Equal(t, logging.FormatAuto, cfg.Log.Format)
	assert.True(t, cfg.Analysis.SkipSystemMessages)
	assert.True(t, cfg.Analysis.PreserveMediaMessages)
	assert.False(t, cfg.Analysis.IncludeMessages)
	assert.False(t, cfg.RedisEnabled())
	assert.Equal(t, 2.0, cfg.Deployment().MemoryGiB)
}

func TestConfigDir(t *testing.T) {
	t.Setenv("MOODSENSE_CONFIG_DIR", "/tmp/custom")
	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom", dir)

	path, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom/config.yaml", path)
}

func TestLoadConfig_NoFile(t *testing.T) {
	isolate(t)
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_File(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `
server:
  addr: "127.0.0.1:9000"
  request_timeout: 90s
  key_source: keyring
output_format: json
log:
  level: debug
  format: console
analysis:
  concurrency: 8
  top_words: 5
  preserve_media_messages: false
redis:
  addr: "localhost:6379"
  db: 2
  ttl: 1h
billing:
  cpus: 1
`)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 90*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, "keyring", cfg.Server.KeySource)
	assert.Equal(t, OutputFormatJSON, cfg.Output)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, logging.FormatConsole, cfg.Log.Format)
	assert.Equal(t, 8, cfg.Analysis.Concurrency)
	assert.Equal(t, DefaultTopEmojis, cfg.Analysis.TopEmojis)
	assert.Equal(t, 5, cfg.Analysis.TopWords)
	assert.True(t, cfg.Analysis.SkipSystemMessages, "absent flag keeps default")
	assert.False(t, cfg.Analysis.PreserveMediaMessages, "explicit false wins")
	assert.True(t, cfg.RedisEnabled())
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, 1.0, cfg.Deployment().CPUs)

	opts := cfg.ParseOptions()
	assert.True(t, opts.SkipSystemMessages)
	assert.False(t, opts.PreserveMediaMessages)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "server:\n  addr: \"127.0.0.1:9000\"\nanalysis:\n  concurrency: 8\n")

	t.Setenv("MOODSENSE_CONCURRENCY", "2")
	t.Setenv("MOODSENSE_INCLUDE_MESSAGES", "true")
	t.Setenv("MOODSENSE_REDIS_TTL", "10m")
	t.Setenv("MOODSENSE_OUTPUT_FORMAT", "yaml")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 2, cfg.Analysis.Concurrency)
	assert.True(t, cfg.Analysis.IncludeMessages)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, OutputFormatYAML, cfg.Output)
}

func TestLoadConfig_Port(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "3000")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":3000", cfg.Server.Addr)

	t.Setenv("MOODSENSE_SERVER_ADDR", "0.0.0.0:4000")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:4000", cfg.Server.Addr)
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		file string
		env  map[string]string
	}{
		{name: "bad yaml", file: "server: [unclosed"},
		{name: "bad duration", file: "server:\n  request_timeout: soon\n"},
		{name: "bad redis ttl", file: "redis:\n  ttl: forever\n"},
		{name: "bad env int", env: map[string]string{"MOODSENSE_CONCURRENCY": "many"}},
		{name: "bad env bool", env: map[string]string{"MOODSENSE_INCLUDE_MESSAGES": "perhaps"}},
		{name: "bad env duration", env: map[string]string{"MOODSENSE_REQUEST_TIMEOUT": "5"}},
		{name: "invalid output", env: map[string]string{"MOODSENSE_OUTPUT_FORMAT": "xml"}},
		{name: "invalid level", env: map[string]string{"MOODSENSE_LOG_LEVEL": "loud"}},
		{name: "invalid key source", env: map[string]string{"MOODSENSE_KEY_SOURCE": "vault"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			if tt.file != "" {
				writeConfig(t, dir, tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
		{"zero timeout", func(c *Config) { c.Server.RequestTimeout = 0 }},
		{"zero upload limit", func(c *Config) { c.Server.MaxUploadBytes = 0 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
		{"zero concurrency", func(c *Config) { c.Analysis.Concurrency = 0 }},
		{"zero top words", func(c *Config) { c.Analysis.TopWords = 0 }},
		{"negative redis db", func(c *Config) { c.Redis.DB = -1 }},
		{"negative ttl", func(c *Config) { c.Redis.TTL = -time.Second }},
		{"negative cpus", func(c *Config) { c.Billing.CPUs = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestOutputFormat_IsValid(t *testing.T) {
	for _, f := range []OutputFormat{OutputFormatText, OutputFormatJSON, OutputFormatYAML} {
		assert.True(t, f.IsValid(), f.String())
	}
	assert.False(t, OutputFormat("xml").IsValid())
	assert.False(t, OutputFormat("").IsValid())
}
