package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderOpenAI     = "openai"
	ProviderYandex     = "yandex"
	ProviderMock       = "mock"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Generation
	LLMProvider       string        `env:"LLM_PROVIDER" envDefault:"openrouter"`
	LLMModel          string        `env:"LLM_MODEL" envDefault:"google/gemini-2.0-flash-001"`
	LLMFallbackModels []string      `env:"LLM_FALLBACK_MODELS" envSeparator:","`
	LLMTimeout        time.Duration `env:"LLM_TIMEOUT" envDefault:"30s"`
	Temperature       float64       `env:"LLM_TEMPERATURE" envDefault:"0.7"`
	MaxTokens         int           `env:"LLM_MAX_TOKENS" envDefault:"1200"`
	FollowUpMaxTokens int           `env:"FOLLOWUP_MAX_TOKENS" envDefault:"600"`
	MaxPromptChars    int           `env:"LLM_MAX_PROMPT_CHARS" envDefault:"24000"`

	// OpenRouter
	OpenRouterAPIKey   string `env:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL  string `env:"OPENROUTER_BASE_URL" envDefault:"https://openrouter.ai/api/v1"`
	OpenRouterReferrer string `env:"OPENROUTER_REFERRER"`
	OpenRouterTitle    string `env:"OPENROUTER_TITLE"`

	// OpenAI-compatible
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
	OpenAIBaseURL string `env:"OPENAI_BASE_URL"`
	OpenAIModel   string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	// YandexGPT
	YandexOAuthToken string `env:"YANDEX_OAUTH_TOKEN"`
	YandexFolderID   string `env:"YANDEX_FOLDER_ID"`

	// Readings
	DefaultLang string `env:"DEFAULT_LANG" envDefault:"en"`
	DefaultMode string `env:"DEFAULT_MODE" envDefault:"traditional"`
}

// Load reads the environment and validates the selected provider's credentials.
func Load() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	c.LLMFallbackModels = compact(c.LLMFallbackModels)

	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks that the active provider can be constructed.
func (c Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenRouter:
		if c.OpenRouterAPIKey == "" {
			return fmt.Errorf("OPENROUTER_API_KEY is required when LLM_PROVIDER=%s", c.LLMProvider)
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when LLM_PROVIDER=%s", c.LLMProvider)
		}
	case ProviderYandex:
		if c.YandexOAuthToken == "" || c.YandexFolderID == "" {
			return fmt.Errorf("YANDEX_OAUTH_TOKEN and YANDEX_FOLDER_ID are required when LLM_PROVIDER=%s", c.LLMProvider)
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be within [0, 2], got %v", c.Temperature)
	}
	if c.MaxTokens < 0 || c.FollowUpMaxTokens < 0 {
		return fmt.Errorf("token limits must not be negative")
	}
	return nil
}

func compact(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid LOG_LEVEL %q", s)
	}
}
