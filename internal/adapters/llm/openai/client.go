package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/randomtoy/oracle-go/internal/domain"
	"github.com/randomtoy/oracle-go/internal/ports"
)

// Client implements ports.Provider on top of go-openai chat completions.
type Client struct {
	client *goopenai.Client
	model  string
}

type headerTransport struct {
	rt      http.RoundTripper
	headers http.Header
}

func (t headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	cl := req.Clone(req.Context())
	for k, vs := range t.headers {
		for _, v := range vs {
			cl.Header.Add(k, v)
		}
	}
	return t.rt.RoundTrip(cl)
}

// NewClient builds a client. baseURL may point at any OpenAI-compatible API;
// referrer and title are sent as OpenRouter attribution headers when set.
func NewClient(httpClient *http.Client, apiKey, baseURL, model, referrer, title string) *Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	if referrer != "" || title != "" {
		h := http.Header{}
		if referrer != "" {
			h.Set("HTTP-Referer", referrer)
		}
		if title != "" {
			h.Set("X-Title", title)
		}
		base := httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		httpClient = &http.Client{
			Transport: headerTransport{rt: base, headers: h},
			Timeout:   httpClient.Timeout,
		}
	}
	cfg.HTTPClient = httpClient

	return &Client{
		client: goopenai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *Client) Generate(ctx context.Context, req ports.GenerationRequest) (ports.GenerationResult, error) {
	var msgs []goopenai.ChatCompletionMessage
	if req.SystemPrompt != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleSystem, Content: req.SystemPrompt})
	}
	msgs = append(msgs, goopenai.ChatCompletionMessage{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt})

	temperature := float32(req.Temperature)
	if temperature == 0 {
		// A zero temperature is dropped by omitempty upstream.
		temperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		Temperature: temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		var apiErr *goopenai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "context_length_exceeded" {
			return ports.GenerationResult{}, fmt.Errorf("%w: %s", domain.ErrPromptTooLong, apiErr.Message)
		}
		return ports.GenerationResult{}, fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return ports.GenerationResult{}, errors.New("no choices in response")
	}

	choice := resp.Choices[0]
	model := resp.Model
	if model == "" {
		model = c.model
	}
	return ports.GenerationResult{
		Text:             strings.TrimSpace(choice.Message.Content),
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		FinishReason:     string(choice.FinishReason),
	}, nil
}
