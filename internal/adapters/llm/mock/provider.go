package mock

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/randomtoy/oracle-go/internal/domain"
	"github.com/randomtoy/oracle-go/internal/ports"
)

// Provider is an in-process backend for tests and offline runs.
// With no Reply set it answers with the prompt length.
type Provider struct {
	Reply func(req ports.GenerationRequest) string
	Err   error

	// MaxPromptLen, when positive, caps the character count of SystemPrompt+Prompt.
	MaxPromptLen int

	mu    sync.Mutex
	calls []ports.GenerationRequest
}

func New() *Provider { return &Provider{} }

// Echo returns a provider that answers with the text given.
func Echo(text string) *Provider {
	return &Provider{Reply: func(ports.GenerationRequest) string { return text }}
}

func (p *Provider) Generate(ctx context.Context, req ports.GenerationRequest) (ports.GenerationResult, error) {
	p.mu.Lock()
	p.calls = append(p.calls, req)
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ports.GenerationResult{}, err
	}
	if p.Err != nil {
		return ports.GenerationResult{}, p.Err
	}
	if n := utf8.RuneCountInString(req.SystemPrompt) + utf8.RuneCountInString(req.Prompt); p.MaxPromptLen > 0 && n > p.MaxPromptLen {
		return ports.GenerationResult{}, fmt.Errorf("%w: %d chars, limit %d", domain.ErrPromptTooLong, n, p.MaxPromptLen)
	}

	text := strconv.Itoa(len(req.Prompt))
	if p.Reply != nil {
		text = p.Reply(req)
	}
	return ports.GenerationResult{
		Text:         text,
		Model:        "mock",
		FinishReason: "stop",
	}, nil
}

// Calls returns a copy of every request received so far.
func (p *Provider) Calls() []ports.GenerationRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]ports.GenerationRequest(nil), p.calls...)
}

// CallCount is len(Calls()).
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
