package provider

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/randomtoy/oracle-go/internal/domain"
	"github.com/randomtoy/oracle-go/internal/ports"
)

// Registry maps provider names to backends and dispatches to the active one.
// Registration and selection take a write lock; Generate only reads.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ports.Provider
	active    string
	logger    *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		providers: make(map[string]ports.Provider),
		logger:    logger,
	}
}

// Register adds p under name. An existing registration is replaced.
func (r *Registry) Register(name string, p ports.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; ok {
		r.logger.Info("replacing provider", "provider", name)
	}
	r.providers[name] = p
}

// SetProvider selects the provider Generate dispatches to.
func (r *Registry) SetProvider(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.providers[name]; !ok {
		return fmt.Errorf("%w: %q", domain.ErrProviderNotFound, name)
	}
	r.active = name
	return nil
}

// Active returns the selected provider name, or "" when none is selected.
func (r *Registry) Active() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// Names lists registered providers in lexical order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Generate delegates to the active provider.
func (r *Registry) Generate(ctx context.Context, req ports.GenerationRequest) (ports.GenerationResult, error) {
	if err := Validate(req); err != nil {
		return ports.GenerationResult{}, err
	}

	r.mu.RLock()
	name := r.active
	p := r.providers[name]
	r.mu.RUnlock()

	if name == "" || p == nil {
		return ports.GenerationResult{}, domain.ErrNoActiveProvider
	}
	return r.dispatch(ctx, name, p, req)
}

// GenerateWith delegates to the named provider regardless of the active one.
func (r *Registry) GenerateWith(ctx context.Context, name string, req ports.GenerationRequest) (ports.GenerationResult, error) {
	if err := Validate(req); err != nil {
		return ports.GenerationResult{}, err
	}

	r.mu.RLock()
	p, ok := r.providers[name]
	r.mu.RUnlock()

	if !ok {
		return ports.GenerationResult{}, fmt.Errorf("%w: %q", domain.ErrProviderNotFound, name)
	}
	return r.dispatch(ctx, name, p, req)
}

func (r *Registry) dispatch(ctx context.Context, name string, p ports.Provider, req ports.GenerationRequest) (ports.GenerationResult, error) {
	start := time.Now()
	res, err := p.Generate(ctx, req)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		r.logger.WarnContext(ctx, "generation failed", "provider", name, "latency_ms", latency, "error", err)
		return ports.GenerationResult{}, &domain.ProviderError{Provider: name, Err: err}
	}

	if res.Provider == "" {
		res.Provider = name
	}
	r.logger.DebugContext(ctx, "generation finished",
		"provider", name,
		"model", res.Model,
		"latency_ms", latency,
		"prompt_tokens", res.PromptTokens,
		"completion_tokens", res.CompletionTokens,
	)
	return res, nil
}

// Validate checks the fields every provider relies on.
func Validate(req ports.GenerationRequest) error {
	switch {
	case strings.TrimSpace(req.Prompt) == "":
		return fmt.Errorf("%w: prompt is required", domain.ErrInvalidRequest)
	case req.Temperature < 0 || req.Temperature > 2:
		return fmt.Errorf("%w: temperature %.2f outside [0, 2]", domain.ErrInvalidRequest, req.Temperature)
	case req.MaxTokens < 0:
		return fmt.Errorf("%w: max tokens must not be negative", domain.ErrInvalidRequest)
	}
	return nil
}
