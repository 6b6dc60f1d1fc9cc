// Package config provides configuration management for the moodsense CLI
// and server. It supports loading configuration from YAML files,
// environment variables, and command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/moodsense/pkg/billing"
	"github.com/otherjamesbrown/moodsense/pkg/chat"
	"github.com/otherjamesbrown/moodsense/pkg/envelope"
	"github.com/otherjamesbrown/moodsense/pkg/logging"
)

// OutputFormat defines the supported output formats for CLI results.
type OutputFormat string

const (
	// OutputFormatText is human-readable plain text output.
	OutputFormatText OutputFormat = "text"
	// OutputFormatJSON is JSON-formatted output for machine processing.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML is YAML-formatted output for machine processing.
	OutputFormatYAML OutputFormat = "yaml"
)

// Default configuration values.
const (
	DefaultServerAddr     = ":8080"
	DefaultRequestTimeout = 5 * time.Minute
	DefaultMaxUploadBytes = 32 << 20
	DefaultOutputFormat   = OutputFormatText
	DefaultConcurrency    = 4
	DefaultTopEmojis      = 10
	DefaultTopWords       = 20
	DefaultRedisTTL       = 24 * time.Hour
	DefaultConfigDir      = ".moodsense"
	DefaultConfigFile     = "config.yaml"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Addr is the listen address (host:port). Cloud Run's PORT sets ":<port>".
	Addr string `yaml:"addr"`

	// RequestTimeout bounds one analysis request.
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxUploadBytes caps upload and encrypted payload size.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// KeySource selects where the server private key comes from (auto, env, keyring).
	KeySource string `yaml:"key_source"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string         `yaml:"level"`
	Format logging.Format `yaml:"format"`
}

// AnalysisConfig tunes the analysis pipeline.
type AnalysisConfig struct {
	Concurrency           int  `yaml:"concurrency"`
	TopEmojis             int  `yaml:"top_emojis"`
	TopWords              int  `yaml:"top_words"`
	SkipSystemMessages    bool `yaml:"skip_system_messages"`
	PreserveMediaMessages bool `yaml:"preserve_media_messages"`
	IncludeMessages       bool `yaml:"include_messages"`
}

// RedisConfig holds the report cache connection. An empty Addr disables caching.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// BillingConfig describes the deployment used for per-request cost headers.
type BillingConfig struct {
	// CPUs is the vCPU allocation; 0 means the host CPU count.
	CPUs float64 `yaml:"cpus"`

	// MemoryGiB is the memory allocation.
	MemoryGiB float64 `yaml:"memory_gib"`
}

// Config holds all moodsense settings.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Output   OutputFormat   `yaml:"output_format"`
	Log      LogConfig      `yaml:"log"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Redis    RedisConfig    `yaml:"redis"`
	Billing  BillingConfig  `yaml:"billing"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	parse := chat.DefaultOptions()
	return &Config{
		Server: ServerConfig{
			Addr:           DefaultServerAddr,
			RequestTimeout: DefaultRequestTimeout,
			MaxUploadBytes: DefaultMaxUploadBytes,
			KeySource:      envelope.SourceAuto,
		},
		Output: DefaultOutputFormat,
		Log: LogConfig{
			Level:  string(logging.LevelInfo),
			Format: logging.FormatAuto,
		},
		Analysis: AnalysisConfig{
			Concurrency:           DefaultConcurrency,
			TopEmojis:             DefaultTopEmojis,
			TopWords:              DefaultTopWords,
			SkipSystemMessages:    parse.SkipSystemMessages,
			PreserveMediaMessages: parse.PreserveMediaMessages,
		},
		Redis: RedisConfig{TTL: DefaultRedisTTL},
		Billing: BillingConfig{
			MemoryGiB: billing.DefaultDeployment().MemoryGiB,
		},
	}
}

// ConfigDir returns the configuration directory path.
// Uses $MOODSENSE_CONFIG_DIR if set, otherwise ~/.moodsense
func ConfigDir() (string, error) {
	if dir := os.Getenv("MOODSENSE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return filepath.Join(home, DefaultConfigDir), nil
}

// ConfigPath returns the full path to the configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultConfigFile), nil
}

// LoadConfig loads the configuration from file and environment variables.
// Configuration is loaded in this order (later sources override earlier):
// 1. Default values
// 2. Config file (~/.moodsense/config.yaml or $MOODSENSE_CONFIG_DIR/config.yaml)
// 3. Environment variables (PORT, MOODSENSE_*)
//
// Command-line flags are applied by the caller, which must call Validate again.
func LoadConfig() (*Config, error) {
	configPath, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("getting config path: %w", err)
	}
	return Load(configPath)
}

// Load is LoadConfig with an explicit file path. A missing file is not an error.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		if err := loadFromFile(cfg, configPath); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// We need a temp struct for unmarshaling durations as strings and for
	// telling an explicit false apart from an absent flag.
	type serverFile struct {
		Addr           string `yaml:"addr"`
		RequestTimeout string `yaml:"request_timeout"`
		MaxUploadBytes int64  `yaml:"max_upload_bytes"`
		KeySource      string `yaml:"key_source"`
	}
	type analysisFile struct {
		Concurrency           int   `yaml:"concurrency"`
		TopEmojis             int   `yaml:"top_emojis"`
		TopWords              int   `yaml:"top_words"`
		SkipSystemMessages    *bool `yaml:"skip_system_messages"`
		PreserveMediaMessages *bool `yaml:"preserve_media_messages"`
		IncludeMessages       *bool `yaml:"include_messages"`
	}
	type redisFile struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	}
	type configFile struct {
		Server   serverFile    `yaml:"server"`
		Output   OutputFormat  `yaml:"output_format"`
		Log      LogConfig     `yaml:"log"`
		Analysis analysisFile  `yaml:"analysis"`
		Redis    redisFile     `yaml:"redis"`
		Billing  BillingConfig `yaml:"billing"`
	}

	var fileCfg configFile
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	if fileCfg.Server.Addr != "" {
		cfg.Server.Addr = fileCfg.Server.Addr
	}
	if fileCfg.Server.RequestTimeout != "" {
		timeout, err := time.ParseDuration(fileCfg.Server.RequestTimeout)
		if err != nil {
			return fmt.Errorf("parsing server.request_timeout: %w", err)
		}
		cfg.Server.RequestTimeout = timeout
	}
	if fileCfg.Server.MaxUploadBytes != 0 {
		cfg.Server.MaxUploadBytes = fileCfg.Server.MaxUploadBytes
	}
	if fileCfg.Server.KeySource != "" {
		cfg.Server.KeySource = fileCfg.Server.KeySource
	}
	if fileCfg.Output != "" {
		cfg.Output = fileCfg.Output
	}
	if fileCfg.Log.Level != "" {
		cfg.Log.Level = fileCfg.Log.Level
	}
	if fileCfg.Log.Format != "" {
		cfg.Log.Format = fileCfg.Log.Format
	}

	a := fileCfg.Analysis
	if a.Concurrency != 0 {
		cfg.Analysis.Concurrency = a.Concurrency
	}
	if a.TopEmojis != 0 {
		cfg.Analysis.TopEmojis = a.TopEmojis
	}
	if a.TopWords != 0 {
		cfg.Analysis.TopWords = a.TopWords
	}
	if a.SkipSystemMessages != nil {
		cfg.Analysis.SkipSystemMessages = *a.SkipSystemMessages
	}
	if a.PreserveMediaMessages != nil {
		cfg.Analysis.PreserveMediaMessages = *a.PreserveMediaMessages
	}
	if a.IncludeMessages != nil {
		cfg.Analysis.IncludeMessages = *a.IncludeMessages
	}

	cfg.Redis.Addr = fileCfg.Redis.Addr
	cfg.Redis.Password = fileCfg.Redis.Password
	cfg.Redis.DB = fileCfg.Redis.DB
	if fileCfg.Redis.TTL != "" {
		ttl, err := time.ParseDuration(fileCfg.Redis.TTL)
		if err != nil {
			return fmt.Errorf("parsing redis.ttl: %w", err)
		}
		cfg.Redis.TTL = ttl
	}

	if fileCfg.Billing.CPUs != 0 {
		cfg.Billing.CPUs = fileCfg.Billing.CPUs
	}
	if fileCfg.Billing.MemoryGiB != 0 {
		cfg.Billing.MemoryGiB = fileCfg.Billing.MemoryGiB
	}

	return nil
}

// loadFromEnv overlays environment variables onto the configuration.
// Malformed numbers and durations are reported rather than ignored.
func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}
	if v := os.Getenv("MOODSENSE_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("MOODSENSE_KEY_SOURCE"); v != "" {
		cfg.Server.KeySource = v
	}
	if v := os.Getenv("MOODSENSE_OUTPUT_FORMAT"); v != "" {
		cfg.Output = OutputFormat(v)
	}
	if v := os.Getenv("MOODSENSE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MOODSENSE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = logging.Format(v)
	}
	if v := os.Getenv("MOODSENSE_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("MOODSENSE_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"MOODSENSE_REQUEST_TIMEOUT", &cfg.Server.RequestTimeout},
		{"MOODSENSE_REDIS_TTL", &cfg.Redis.TTL},
	}
	for _, d := range durations {
		if v := os.Getenv(d.name); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s: %w", d.name, err)
			}
			*d.dst = parsed
		}
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"MOODSENSE_CONCURRENCY", &cfg.Analysis.Concurrency},
		{"MOODSENSE_TOP_EMOJIS", &cfg.Analysis.TopEmojis},
		{"MOODSENSE_TOP_WORDS", &cfg.Analysis.TopWords},
		{"MOODSENSE_REDIS_DB", &cfg.Redis.DB},
	}
	for _, i := range ints {
		if v := os.Getenv(i.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", i.name, err)
			}
			*i.dst = n
		}
	}

	if v := os.Getenv("MOODSENSE_MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("MOODSENSE_MAX_UPLOAD_BYTES: %w", err)
		}
		cfg.Server.MaxUploadBytes = n
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"MOODSENSE_SKIP_SYSTEM_MESSAGES", &cfg.Analysis.SkipSystemMessages},
		{"MOODSENSE_PRESERVE_MEDIA_MESSAGES", &cfg.Analysis.PreserveMediaMessages},
		{"MOODSENSE_INCLUDE_MESSAGES", &cfg.Analysis.IncludeMessages},
	}
	for _, b := range bools {
		if v := os.Getenv(b.name); v != "" {
			parsed, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s: %w", b.name, err)
			}
			*b.dst = parsed
		}
	}

	floats := []struct {
		name string
		dst  *float64
	}{
		{"MOODSENSE_BILLING_CPUS", &cfg.Billing.CPUs},
		{"MOODSENSE_BILLING_MEMORY_GIB", &cfg.Billing.MemoryGiB},
	}
	for _, f := range floats {
		if v := os.Getenv(f.name); v != "" {
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", f.name, err)
			}
			*f.dst = parsed
		}
	}

	return nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be positive")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}
	switch c.Server.KeySource {
	case envelope.SourceAuto, envelope.SourceEnv, envelope.SourceKeyring:
	default:
		return fmt.Errorf("invalid server.key_source: %q (must be auto, env, or keyring)", c.Server.KeySource)
	}

	if !c.Output.IsValid() {
		return fmt.Errorf("invalid output_format: %q (must be text, json, or yaml)", c.Output)
	}

	if !logging.IsValidLevel(c.Log.Level) {
		return fmt.Errorf("invalid log.level: %q (must be debug, info, warn, or error)", c.Log.Level)
	}
	switch c.Log.Format {
	case logging.FormatAuto, logging.FormatJSON, logging.FormatConsole:
	default:
		return fmt.Errorf("invalid log.format: %q (must be auto, json, or console)", c.Log.Format)
	}

	if c.Analysis.Concurrency < 1 {
		return fmt.Errorf("analysis.concurrency must be at least 1")
	}
	if c.Analysis.TopEmojis < 1 || c.Analysis.TopWords < 1 {
		return fmt.Errorf("analysis.top_emojis and analysis.top_words must be at least 1")
	}

	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must not be negative")
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must not be negative")
	}

	if c.Billing.CPUs < 0 || c.Billing.MemoryGiB < 0 {
		return fmt.Errorf("billing.cpus and billing.memory_gib must not be negative")
	}

	return nil
}

// IsValid checks if the output format is valid.
func (f OutputFormat) IsValid() bool {
	switch f {
	case OutputFormatText, OutputFormatJSON, OutputFormatYAML:
		return true
	default:
		return false
	}
}

// String returns the string representation of the output format.
func (f OutputFormat) String() string {
	return string(f)
}

// ParseOptions returns the parser filters.
func (c *Config) ParseOptions() chat.Options {
	return chat.Options{
		SkipSystemMessages:    c.Analysis.SkipSystemMessages,
		PreserveMediaMessages: c.Analysis.PreserveMediaMessages,
	}
}

// RedisEnabled reports whether a report cache is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

// Deployment returns the billing deployment for cost headers.
func (c *Config) Deployment() billing.Deployment {
	dep := billing.DefaultDeployment()
	dep.CPUs = c.Billing.CPUs
	if c.Billing.MemoryGiB > 0 {
		dep.MemoryGiB = c.Billing.MemoryGiB
	}
	return dep
}
