package provider

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/hashicorp/go-multierror"

	"github.com/randomtoy/oracle-go/internal/adapters/llm/mock"
	"github.com/randomtoy/oracle-go/internal/adapters/llm/openai"
	"github.com/randomtoy/oracle-go/internal/adapters/llm/openrouter"
	"github.com/randomtoy/oracle-go/internal/adapters/llm/yandex"
	"github.com/randomtoy/oracle-go/internal/config"
	"github.com/randomtoy/oracle-go/internal/ports"
)

// Builder constructs one named backend from configuration.
type Builder func(cfg config.Config, logger *slog.Logger) (ports.Provider, error)

// Builders holds a constructor for every backend the daemon knows about.
var Builders = map[string]Builder{
	config.ProviderOpenRouter: buildOpenRouter,
	config.ProviderOpenAI:     buildOpenAI,
	config.ProviderYandex:     buildYandex,
	config.ProviderMock:       func(config.Config, *slog.Logger) (ports.Provider, error) { return mock.New(), nil },
}

// Bootstrap registers every backend that has credentials configured and
// selects cfg.LLMProvider. Backends that fail to build are skipped and their
// errors returned together; the registry is still usable when the active
// provider was built.
func Bootstrap(cfg config.Config, builders map[string]Builder, logger *slog.Logger) (*Registry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	reg := NewRegistry(logger)

	var result *multierror.Error
	for name, build := range builders {
		if name != cfg.LLMProvider && !configured(cfg, name) {
			continue
		}
		p, err := build(cfg, logger)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("build provider %s: %w", name, err))
			continue
		}
		reg.Register(name, p)
		logger.Info("provider registered", "provider", name)
	}

	if err := reg.SetProvider(cfg.LLMProvider); err != nil {
		result = multierror.Append(result, err)
	}
	return reg, result.ErrorOrNil()
}

func configured(cfg config.Config, name string) bool {
	switch name {
	case config.ProviderOpenRouter:
		return cfg.OpenRouterAPIKey != ""
	case config.ProviderOpenAI:
		return cfg.OpenAIAPIKey != ""
	case config.ProviderYandex:
		return cfg.YandexOAuthToken != "" && cfg.YandexFolderID != ""
	case config.ProviderMock:
		return true
	default:
		return false
	}
}

func buildOpenRouter(cfg config.Config, logger *slog.Logger) (ports.Provider, error) {
	return openrouter.NewClient(
		&http.Client{Timeout: cfg.LLMTimeout},
		cfg.OpenRouterAPIKey,
		cfg.OpenRouterBaseURL,
		cfg.LLMModel,
		cfg.LLMFallbackModels,
		logger,
		openrouter.WithMaxPromptChars(cfg.MaxPromptChars),
		openrouter.WithAttribution(cfg.OpenRouterReferrer, cfg.OpenRouterTitle),
	), nil
}

func buildOpenAI(cfg config.Config, _ *slog.Logger) (ports.Provider, error) {
	return openai.NewClient(
		&http.Client{Timeout: cfg.LLMTimeout},
		cfg.OpenAIAPIKey,
		cfg.OpenAIBaseURL,
		cfg.OpenAIModel,
		cfg.OpenRouterReferrer,
		cfg.OpenRouterTitle,
	), nil
}

func buildYandex(cfg config.Config, _ *slog.Logger) (ports.Provider, error) {
	return yandex.NewClient(cfg.YandexOAuthToken, cfg.YandexFolderID)
}
