package mock_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomtoy/oracle-go/internal/adapters/llm/mock"
	"github.com/randomtoy/oracle-go/internal/domain"
	"github.com/randomtoy/oracle-go/internal/ports"
)

func TestProvider_DefaultReplyIsPromptLength(t *testing.T) {
	p := mock.New()
	out, err := p.Generate(context.Background(), ports.GenerationRequest{Prompt: "12345"})
	require.NoError(t, err)
	assert.Equal(t, "5", out.Text)
	assert.Equal(t, 1, p.CallCount())
}

func TestProvider_MaxPromptLenCountsCharacters(t *testing.T) {
	p := &mock.Provider{MaxPromptLen: 10}
	req := ports.GenerationRequest{SystemPrompt: "Таро", Prompt: "Карта!"}

	_, err := p.Generate(context.Background(), req)
	require.NoError(t, err)

	req.Prompt = strings.Repeat("ж", 7)
	_, err = p.Generate(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrPromptTooLong)
}
