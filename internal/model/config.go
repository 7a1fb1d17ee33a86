package model

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultUserAgent identifies as a desktop browser; several agency sites reject bare HTTP clients
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Config holds all runtime settings
type Config struct {
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Extract      ExtractConfig      `yaml:"extract" mapstructure:"extract"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// HTTPConfig controls document fetching
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"`
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent" validate:"required"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes" validate:"gt=0"`
	MaxAttempts   int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=1,lte=10"`
	InsecureTLS   bool          `yaml:"insecure_tls" mapstructure:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy" validate:"omitempty,url"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy" validate:"omitempty,url"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// CacheConfig controls the content-addressed page cache. Entries never expire.
type CacheConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Dir     string `yaml:"dir" mapstructure:"dir"`
}

// ConcurrencyConfig bounds parallel fetching
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers" validate:"gte=1,lte=64"`
}

// RateLimitingConfig is applied per host
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gt=0"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size" validate:"gte=1"`
}

// ExtractConfig holds text cleaning and extraction limits
type ExtractConfig struct {
	MinTextLength  int    `yaml:"min_text_length" mapstructure:"min_text_length" validate:"gte=0"`
	MaxTextLength  int    `yaml:"max_text_length" mapstructure:"max_text_length" validate:"gt=0"`
	TruncateWindow int    `yaml:"truncate_window" mapstructure:"truncate_window" validate:"gte=0,ltefield=MaxTextLength"`
	Strategy       string `yaml:"strategy" mapstructure:"strategy" validate:"oneof=rules llm"`
}

// OutputConfig controls where records go
type OutputConfig struct {
	RecordsPath string `yaml:"records_path" mapstructure:"records_path" validate:"required"`
	Status      string `yaml:"status" mapstructure:"status" validate:"required"`
	Verbose     bool   `yaml:"verbose" mapstructure:"verbose"`
}

// LLMConfig configures the optional question-answering extraction strategy
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider" validate:"omitempty,oneof=openai ollama"`
	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"-" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url" validate:"omitempty,url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens" validate:"gte=0"`
}

// ServerConfig is the read-only records API
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port" validate:"gte=1,lte=65535"`
}

// LogConfig selects zap level and encoder
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=console json"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	cacheDir := ".regscout-cache"
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".regscout", "cache")
	}

	return &Config{
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    DefaultUserAgent,
			MaxBodyBytes: 5_000_000,
			MaxAttempts:  3,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     cacheDir,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 5,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         4,
		},
		Extract: ExtractConfig{
			MinTextLength:  100,
			MaxTextLength:  50_000,
			TruncateWindow: 5_000,
			Strategy:       "rules",
		},
		Output: OutputConfig{
			RecordsPath: "regulations.json",
			Status:      "final",
		},
		LLM: LLMConfig{
			Model:     "gpt-4o-mini",
			Timeout:   30,
			MaxTokens: 300,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 5000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks struct constraints and cross-field rules
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Extract.Strategy == "llm" && c.LLM.Provider == "" {
		return fmt.Errorf("invalid config: extract.strategy=llm requires llm.provider")
	}
	return nil
}
