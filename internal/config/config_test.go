package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomtoy/oracle-go/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "mock")

	c, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 30*time.Second, c.LLMTimeout)
	assert.InDelta(t, 0.7, c.Temperature, 1e-9)
	assert.Equal(t, 1200, c.MaxTokens)
	assert.Equal(t, "traditional", c.DefaultMode)
	assert.Empty(t, c.LLMFallbackModels)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openrouter")
	t.Setenv("OPENROUTER_API_KEY", "key")
	t.Setenv("LLM_FALLBACK_MODELS", "a, b,,c ")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "DEBUG")

	c, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, c.LLMFallbackModels)
	assert.Equal(t, 5*time.Second, c.LLMTimeout)

	level, err := config.ParseLogLevel(c.LogLevel)
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoad_MissingCredentials(t *testing.T) {
	for provider, keys := range map[string][]string{
		"openrouter": {"OPENROUTER_API_KEY"},
		"openai":     {"OPENAI_API_KEY"},
		"yandex":     {"YANDEX_OAUTH_TOKEN", "YANDEX_FOLDER_ID"},
	} {
		t.Run(provider, func(t *testing.T) {
			t.Setenv("LLM_PROVIDER", provider)
			for _, k := range keys {
				t.Setenv(k, "")
			}
			_, err := config.Load()
			require.Error(t, err)
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"unknown provider": {"LLM_PROVIDER": "gemini"},
		"bad level":        {"LLM_PROVIDER": "mock", "LOG_LEVEL": "loud"},
		"bad timeout":      {"LLM_PROVIDER": "mock", "LLM_TIMEOUT": "soon"},
		"bad temperature":  {"LLM_PROVIDER": "mock", "LLM_TEMPERATURE": "3"},
	}
	for name, vars := range cases {
		t.Run(name, func(t *testing.T) {
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			require.Error(t, err)
		})
	}
}
