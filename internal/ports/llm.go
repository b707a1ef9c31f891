package ports

import "context"

// GenerationRequest is the uniform input every text-generation backend accepts.
type GenerationRequest struct {
	Prompt       string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	Language     string
}

// GenerationResult is the generated text plus optional backend metadata.
type GenerationResult struct {
	Text string

	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	FinishReason     string
}

// Provider generates text from a prompt pair.
type Provider interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

// ProviderFunc adapts a plain function to Provider.
type ProviderFunc func(ctx context.Context, req GenerationRequest) (GenerationResult, error)

func (f ProviderFunc) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	return f(ctx, req)
}
