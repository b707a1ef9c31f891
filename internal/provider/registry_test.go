package provider_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomtoy/oracle-go/internal/adapters/llm/mock"
	"github.com/randomtoy/oracle-go/internal/config"
	"github.com/randomtoy/oracle-go/internal/domain"
	"github.com/randomtoy/oracle-go/internal/ports"
	"github.com/randomtoy/oracle-go/internal/provider"
)

func req(prompt string) ports.GenerationRequest {
	return ports.GenerationRequest{Prompt: prompt, SystemPrompt: "sys", Temperature: 0.7, MaxTokens: 100, Language: "en"}
}

func TestRegistry_OverwriteInvokesLatest(t *testing.T) {
	reg := provider.NewRegistry(slog.Default())
	a := mock.Echo("from A")
	b := mock.Echo("from B")

	reg.Register("x", a)
	reg.Register("x", b)
	require.NoError(t, reg.SetProvider("x"))

	res, err := reg.Generate(context.Background(), req("hello"))
	require.NoError(t, err)

	assert.Equal(t, "from B", res.Text)
	assert.Equal(t, "x", res.Provider)
	assert.Zero(t, a.CallCount())
	assert.Equal(t, 1, b.CallCount())
}

func TestRegistry_SetUnknownProvider(t *testing.T) {
	reg := provider.NewRegistry(nil)
	err := reg.SetProvider("gemini")
	require.ErrorIs(t, err, domain.ErrProviderNotFound)
	assert.Empty(t, reg.Active())
}

func TestRegistry_NoActiveProvider(t *testing.T) {
	reg := provider.NewRegistry(nil)
	reg.Register("mock", mock.New())

	_, err := reg.Generate(context.Background(), req("hello"))
	require.ErrorIs(t, err, domain.ErrNoActiveProvider)
}

func TestRegistry_InvalidRequest(t *testing.T) {
	p := mock.New()
	reg := provider.NewRegistry(nil)
	reg.Register("mock", p)
	require.NoError(t, reg.SetProvider("mock"))

	bad := []ports.GenerationRequest{
		{Prompt: ""},
		{Prompt: "   \n"},
		{Prompt: "x", Temperature: -0.1},
		{Prompt: "x", Temperature: 2.5},
		{Prompt: "x", MaxTokens: -1},
	}
	for _, r := range bad {
		_, err := reg.Generate(context.Background(), r)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	}
	assert.Zero(t, p.CallCount(), "invalid requests never reach the provider")
}

func TestRegistry_ProviderErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	reg := provider.NewRegistry(nil)
	reg.Register("flaky", &mock.Provider{Err: cause})
	require.NoError(t, reg.SetProvider("flaky"))

	_, err := reg.Generate(context.Background(), req("hello"))
	require.ErrorIs(t, err, domain.ErrProvider)
	require.ErrorIs(t, err, cause)

	var pe *domain.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "flaky", pe.Provider)
}

func TestRegistry_PromptTooLongSurfaces(t *testing.T) {
	reg := provider.NewRegistry(nil)
	reg.Register("small", &mock.Provider{MaxPromptLen: 8})
	require.NoError(t, reg.SetProvider("small"))

	_, err := reg.Generate(context.Background(), req("a prompt that is too long"))
	require.ErrorIs(t, err, domain.ErrPromptTooLong)
	require.ErrorIs(t, err, domain.ErrProvider)
}

func TestRegistry_GenerateWith(t *testing.T) {
	reg := provider.NewRegistry(nil)
	reg.Register("a", mock.Echo("A"))
	reg.Register("b", mock.Echo("B"))
	require.NoError(t, reg.SetProvider("a"))

	res, err := reg.GenerateWith(context.Background(), "b", req("hi"))
	require.NoError(t, err)
	assert.Equal(t, "B", res.Text)
	assert.Equal(t, "a", reg.Active())

	_, err = reg.GenerateWith(context.Background(), "c", req("hi"))
	require.ErrorIs(t, err, domain.ErrProviderNotFound)

	assert.Equal(t, []string{"a", "b"}, reg.Names())
}

func TestRegistry_ConcurrentGenerateAndSwitch(t *testing.T) {
	reg := provider.NewRegistry(nil)
	reg.Register("a", mock.Echo("A"))
	reg.Register("b", mock.Echo("B"))
	require.NoError(t, reg.SetProvider("a"))

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%10 == 0 {
				_ = reg.SetProvider("b")
			}
			res, err := reg.Generate(context.Background(), req("hi"))
			assert.NoError(t, err)
			assert.Contains(t, []string{"A", "B"}, res.Text)
		}()
	}
	wg.Wait()
}

func TestBootstrap(t *testing.T) {
	cfg := config.Config{LLMProvider: config.ProviderMock, OpenAIAPIKey: "sk"}

	builders := map[string]provider.Builder{
		config.ProviderMock: provider.Builders[config.ProviderMock],
		config.ProviderOpenAI: func(config.Config, *slog.Logger) (ports.Provider, error) {
			return nil, errors.New("openai down")
		},
		config.ProviderYandex: func(config.Config, *slog.Logger) (ports.Provider, error) {
			t.Fatal("unconfigured provider must not be built")
			return nil, nil
		},
	}

	reg, err := provider.Bootstrap(cfg, builders, slog.Default())
	require.Error(t, err)

	var merr *multierror.Error
	require.ErrorAs(t, err, &merr)
	assert.Len(t, merr.Errors, 1)
	assert.Contains(t, err.Error(), "openai down")

	assert.Equal(t, config.ProviderMock, reg.Active())
	assert.Equal(t, []string{config.ProviderMock}, reg.Names())
}

func TestBootstrap_ActiveFails(t *testing.T) {
	cfg := config.Config{LLMProvider: config.ProviderOpenRouter, OpenRouterAPIKey: "key"}

	builders := map[string]provider.Builder{
		config.ProviderOpenRouter: func(config.Config, *slog.Logger) (ports.Provider, error) {
			return nil, errors.New("bad base url")
		},
	}

	reg, err := provider.Bootstrap(cfg, builders, nil)
	require.ErrorIs(t, err, domain.ErrProviderNotFound)
	assert.Empty(t, reg.Active())
}

func TestBootstrap_DefaultBuilders(t *testing.T) {
	cfg := config.Config{
		LLMProvider:       config.ProviderOpenRouter,
		OpenRouterAPIKey:  "key",
		OpenRouterBaseURL: "http://127.0.0.1:0",
		LLMModel:          "m",
	}

	reg, err := provider.Bootstrap(cfg, provider.Builders, nil)
	require.NoError(t, err)
	assert.Equal(t, config.ProviderOpenRouter, reg.Active())
	assert.Equal(t, []string{config.ProviderMock, config.ProviderOpenRouter}, reg.Names())
}
