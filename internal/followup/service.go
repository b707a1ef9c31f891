package followup

import (
	"context"
	"log/slog"

	"github.com/randomtoy/oracle-go/internal/domain"
	"github.com/randomtoy/oracle-go/internal/ports"
	"github.com/randomtoy/oracle-go/internal/prompt"
)

// Generator is the dispatch capability a follow-up needs.
type Generator interface {
	Generate(ctx context.Context, req ports.GenerationRequest) (ports.GenerationResult, error)
}

// Request carries one follow-up question and the reading it refers to.
type Request struct {
	Mode     prompt.Mode
	Reading  prompt.ReadingContext
	Tier     domain.Tier
	Question string
	Lang     string
}

// Service answers follow-up questions within a tier's quota.
type Service struct {
	gen         Generator
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

func NewService(gen Generator, temperature float64, maxTokens int, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		gen:         gen,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// Ask checks the quota, records the question, dispatches it with the whole
// conversation as context and records the answer.
//
// A quota rejection makes no call and leaves sess unchanged. A dispatch
// failure keeps the user message, appends nothing else and returns the error;
// retrying is up to the caller.
func (s *Service) Ask(ctx context.Context, sess *Session, r Request) (Message, error) {
	attempt, err := sess.RecordChecked(r.Question, func(msgs []Message) error {
		return CheckQuota(r.Tier, msgs)
	})
	if err != nil {
		return Message{}, err
	}

	p := prompt.BuildFollowUp(r.Mode, r.Reading, turns(sess.Messages(), attempt.Message.ID), attempt.Message.Content, r.Lang)

	res, err := s.gen.Generate(ctx, ports.GenerationRequest{
		Prompt:       p.User,
		SystemPrompt: p.System,
		Temperature:  s.temperature,
		MaxTokens:    s.maxTokens,
		Language:     r.Lang,
	})
	if err != nil {
		sess.Fail(attempt)
		s.logger.WarnContext(ctx, "follow-up failed", "attempt", attempt.Message.ID, "error", err)
		return Message{}, err
	}

	return sess.Resolve(attempt, res.Text)
}

func turns(msgs []Message, skipID string) []prompt.Turn {
	out := make([]prompt.Turn, 0, len(msgs))
	for _, m := range msgs {
		if m.ID == skipID {
			continue
		}
		out = append(out, prompt.Turn{Role: string(m.Role), Content: m.Content})
	}
	return out
}
