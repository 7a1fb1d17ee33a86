package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 3, cfg.HTTP.MaxAttempts)
	assert.Equal(t, 5, cfg.Concurrency.Workers)
	assert.Equal(t, 100, cfg.Extract.MinTextLength)
	assert.Equal(t, 50_000, cfg.Extract.MaxTextLength)
	assert.Equal(t, "rules", cfg.Extract.Strategy)
	assert.True(t, cfg.Cache.Enabled)
}

func TestConfig_Validate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero workers", func(c *Config) { c.Concurrency.Workers = 0 }},
		{"zero timeout", func(c *Config) { c.HTTP.Timeout = 0 }},
		{"unknown strategy", func(c *Config) { c.Extract.Strategy = "magic" }},
		{"window larger than max", func(c *Config) { c.Extract.TruncateWindow = c.Extract.MaxTextLength + 1 }},
		{"bad proxy url", func(c *Config) { c.HTTP.HTTPProxy = "not a url" }},
		{"llm strategy without provider", func(c *Config) { c.Extract.Strategy = "llm" }},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_Validate_LLMStrategy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extract.Strategy = "llm"
	cfg.LLM.Provider = "openai"
	assert.NoError(t, cfg.Validate())
}
