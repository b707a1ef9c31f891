package yandex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Morwran/yagpt"

	"github.com/randomtoy/oracle-go/internal/ports"
)

// Client implements ports.Provider on YandexGPT.
// The yagpt completion call takes no sampling parameters, so Temperature and
// MaxTokens are left to the folder's model defaults.
type Client struct {
	ya       yagpt.YaGPTFace
	iamToken string
}

// NewClient exchanges the OAuth token for an IAM token and binds to folderID.
func NewClient(oauthToken, folderID string) (*Client, error) {
	if oauthToken == "" || folderID == "" {
		return nil, errors.New("yandex: oauth token and folder id are required")
	}

	iam, err := yagpt.NewYaIam(oauthToken)
	if err != nil {
		return nil, fmt.Errorf("init yandex iam: %w", err)
	}
	resp, err := iam.Create()
	if err != nil {
		return nil, fmt.Errorf("create iam token: %w", err)
	}

	ya, err := yagpt.NewYagpt(folderID)
	if err != nil {
		return nil, fmt.Errorf("init yagpt: %w", err)
	}

	return &Client{ya: ya, iamToken: resp.IamToken}, nil
}

func (c *Client) Generate(ctx context.Context, req ports.GenerationRequest) (ports.GenerationResult, error) {
	var messages []yagpt.Message
	if req.SystemPrompt != "" {
		messages = append(messages, yagpt.Message{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, yagpt.Message{Role: "user", Content: req.Prompt})

	resp, err := c.ya.CompletionWithCtx(ctx, c.iamToken, messages)
	if err != nil {
		return ports.GenerationResult{}, fmt.Errorf("yagpt completion: %w", err)
	}
	if resp == nil || len(resp.Alternatives) == 0 {
		return ports.GenerationResult{}, errors.New("yagpt returned empty response")
	}

	return ports.GenerationResult{
		Text:             strings.TrimSpace(resp.Alternatives[0].Message.Content),
		Model:            yagpt.YaModelLite,
		PromptTokens:     int(resp.Usage.InputTextTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
	}, nil
}
