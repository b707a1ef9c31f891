package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/randomtoy/oracle-go/internal/domain"
	"github.com/randomtoy/oracle-go/internal/ports"
)

// Client implements ports.Provider via the OpenRouter API.
type Client struct {
	httpClient     *http.Client
	apiKey         string
	baseURL        string
	model          string
	fallbackModels []string
	referrer       string
	title          string
	maxPromptChars int
	logger         *slog.Logger
}

type Option func(*Client)

// WithMaxPromptChars rejects prompts longer than n characters before calling upstream.
func WithMaxPromptChars(n int) Option {
	return func(c *Client) { c.maxPromptChars = n }
}

// WithAttribution sets the optional OpenRouter ranking headers.
func WithAttribution(referrer, title string) Option {
	return func(c *Client) {
		c.referrer = referrer
		c.title = title
	}
}

func NewClient(httpClient *http.Client, apiKey, baseURL, model string, fallbackModels []string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		httpClient:     httpClient,
		apiKey:         apiKey,
		baseURL:        strings.TrimRight(baseURL, "/"),
		model:          model,
		fallbackModels: fallbackModels,
		logger:         logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// chatRequest / chatResponse mirror the OpenAI-compatible API shapes.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *Client) Generate(ctx context.Context, req ports.GenerationRequest) (ports.GenerationResult, error) {
	if n := utf8.RuneCountInString(req.SystemPrompt) + utf8.RuneCountInString(req.Prompt); c.maxPromptChars > 0 && n > c.maxPromptChars {
		return ports.GenerationResult{}, fmt.Errorf("%w: %d chars, limit %d", domain.ErrPromptTooLong, n, c.maxPromptChars)
	}

	models := make([]string, 0, 1+len(c.fallbackModels))
	models = append(models, c.model)
	models = append(models, c.fallbackModels...)

	var lastErr error
	for _, model := range models {
		out, err := c.generateWithModel(ctx, req, model)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
		if len(models) > 1 {
			c.logger.WarnContext(ctx, "model failed, trying next", "model", model, "error", err)
		}
	}

	return ports.GenerationResult{}, lastErr
}

func (c *Client) generateWithModel(ctx context.Context, req ports.GenerationRequest, model string) (ports.GenerationResult, error) {
	var msgs []chatMessage
	if req.SystemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	msgs = append(msgs, chatMessage{Role: "user", Content: req.Prompt})

	resp, err := c.callLLM(ctx, chatRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return ports.GenerationResult{}, err
	}

	choice := resp.Choices[0]
	text := strings.TrimSpace(choice.Message.Content)
	if text == "" {
		return ports.GenerationResult{}, errors.New("empty completion")
	}

	usedModel := resp.Model
	if usedModel == "" {
		usedModel = model
	}

	return ports.GenerationResult{
		Text:             text,
		Model:            usedModel,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		FinishReason:     choice.FinishReason,
	}, nil
}

func (c *Client) callLLM(ctx context.Context, reqBody chatRequest) (chatResponse, error) {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return chatResponse{}, fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return chatResponse{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referrer != "" {
		req.Header.Set("HTTP-Referer", c.referrer)
	}
	if c.title != "" {
		req.Header.Set("X-Title", c.title)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return chatResponse{}, fmt.Errorf("http call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return chatResponse{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if isContextLengthError(respBody) {
			return chatResponse{}, fmt.Errorf("%w: upstream status %d", domain.ErrPromptTooLong, resp.StatusCode)
		}
		return chatResponse{}, fmt.Errorf("upstream status %d: %s", resp.StatusCode, string(respBody))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return chatResponse{}, fmt.Errorf("decode response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return chatResponse{}, errors.New("no choices in response")
	}

	return chatResp, nil
}

func isContextLengthError(body []byte) bool {
	s := strings.ToLower(string(body))
	return strings.Contains(s, "context_length_exceeded") || strings.Contains(s, "maximum context length")
}
