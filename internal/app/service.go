package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/randomtoy/oracle-go/internal/domain"
	"github.com/randomtoy/oracle-go/internal/followup"
	"github.com/randomtoy/oracle-go/internal/ports"
	"github.com/randomtoy/oracle-go/internal/prompt"
)

// Generator dispatches a generation request to the active provider.
type Generator interface {
	Generate(ctx context.Context, req ports.GenerationRequest) (ports.GenerationResult, error)
}

// Options holds generation defaults for readings and follow-ups.
type Options struct {
	DefaultMode       prompt.Mode
	DefaultLang       string
	Temperature       float64
	MaxTokens         int
	FollowUpMaxTokens int
}

// ReadRequest is the application-level input (no HTTP types).
type ReadRequest struct {
	Question string
	DeckID   string
	Spread   string
	Mode     prompt.Mode
	Lang     string
}

// ReadingService orchestrates draws, interpretation and follow-ups.
type ReadingService struct {
	store     ports.ReferenceStore
	gen       Generator
	followups *followup.Service
	rng       domain.RNG
	opts      Options
	now       func() time.Time
	logger    *slog.Logger
}

func NewReadingService(store ports.ReferenceStore, gen Generator, rng domain.RNG, opts Options, logger *slog.Logger) *ReadingService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.DefaultMode == "" {
		opts.DefaultMode = prompt.ModeTraditional
	}
	if opts.DefaultLang == "" {
		opts.DefaultLang = domain.DefaultLang
	}
	return &ReadingService{
		store:     store,
		gen:       gen,
		followups: followup.NewService(gen, opts.Temperature, opts.FollowUpMaxTokens, logger),
		rng:       rng,
		opts:      opts,
		now:       time.Now,
		logger:    logger,
	}
}

// Draw selects cards for the requested spread without interpreting them.
func (s *ReadingService) Draw(ctx context.Context, req ReadRequest) (*Reading, error) {
	spread, err := s.store.GetSpread(ctx, req.Spread)
	if err != nil {
		return nil, fmt.Errorf("get spread: %w", err)
	}

	deckID := req.DeckID
	if deckID == "" {
		deckID = spread.Deck
	}
	if spread.Method == domain.MethodCast && deckID != spread.Deck {
		return nil, fmt.Errorf("%w: spread %s is cast from deck %q, not %q", domain.ErrInvalidRequest, spread.Name, spread.Deck, deckID)
	}
	lang := req.Lang
	if lang == "" {
		lang = s.opts.DefaultLang
	}

	r := &Reading{
		ID:        uuid.Must(uuid.NewV4()).String(),
		DeckID:    deckID,
		Spread:    spread,
		Question:  strings.TrimSpace(req.Question),
		Lang:      lang,
		CreatedAt: s.now(),
		FollowUp:  followup.NewSessionWithClock(s.now),
	}

	switch spread.Method {
	case domain.MethodCast:
		if err := s.cast(ctx, r); err != nil {
			return nil, err
		}
	default:
		deck, err := s.store.GetDeck(ctx, deckID)
		if err != nil {
			return nil, fmt.Errorf("get deck: %w", err)
		}
		cards, err := domain.Draw(deck, spread, lang, s.rng)
		if err != nil {
			return nil, fmt.Errorf("draw: %w", err)
		}
		r.Cards = cards
	}

	return r, nil
}

func (s *ReadingService) cast(ctx context.Context, r *Reading) error {
	c := domain.CastHexagram(s.rng)

	lower, upper := c.Primary()
	primary, err := s.store.GetHexagram(ctx, lower, upper)
	if err != nil {
		return fmt.Errorf("primary hexagram: %w", err)
	}
	r.Cards = []domain.DrawnCard{{Card: primary, Position: positionLabel(r.Spread, 0, r.Lang)}}
	r.ChangingLines = c.ChangingLines()

	if lower, upper, ok := c.Relating(); ok {
		relating, err := s.store.GetHexagram(ctx, lower, upper)
		if err != nil {
			return fmt.Errorf("relating hexagram: %w", err)
		}
		r.Cards = append(r.Cards, domain.DrawnCard{Card: relating, Position: positionLabel(r.Spread, 1, r.Lang)})
	}
	return nil
}

func positionLabel(sp domain.SpreadDefinition, i int, lang string) string {
	if i < len(sp.Positions) {
		return sp.Positions[i].Label.In(lang)
	}
	return fmt.Sprintf("Position %d", i+1)
}

// Read draws and interprets in one step.
func (s *ReadingService) Read(ctx context.Context, req ReadRequest) (*Reading, error) {
	r, err := s.Draw(ctx, req)
	if err != nil {
		return nil, err
	}
	if _, err := s.Interpret(ctx, r, s.resolveMode(req.Mode, r.DeckID)); err != nil {
		return nil, err
	}
	return r, nil
}

// Interpret generates (or regenerates) the interpretation of r under mode,
// reusing the cards already drawn.
func (s *ReadingService) Interpret(ctx context.Context, r *Reading, mode prompt.Mode) (Interpretation, error) {
	mode = s.resolveMode(mode, r.DeckID)
	p := prompt.Build(mode, r.Spread, r.Cards, r.Question, r.Lang, prompt.WithChangingLines(r.ChangingLines))

	start := time.Now()
	res, err := s.gen.Generate(ctx, ports.GenerationRequest{
		Prompt:       p.User,
		SystemPrompt: p.System,
		Temperature:  s.opts.Temperature,
		MaxTokens:    s.opts.MaxTokens,
		Language:     r.Lang,
	})
	latency := time.Since(start).Milliseconds()
	if err != nil {
		return Interpretation{}, fmt.Errorf("interpret: %w", err)
	}

	in := Interpretation{
		Mode:      mode,
		Content:   res.Text,
		Provider:  res.Provider,
		Model:     res.Model,
		LatencyMS: latency,
		CreatedAt: s.now(),
	}
	r.setInterpretation(in)

	s.logger.InfoContext(ctx, "reading interpreted",
		"reading_id", r.ID,
		"spread", r.Spread.Name,
		"mode", mode,
		"provider", res.Provider,
		"latency_ms", latency,
	)
	return in, nil
}

// AskRequest is one follow-up question on an interpreted reading.
type AskRequest struct {
	Question string
	Tier     domain.Tier
	Mode     prompt.Mode
}

// Ask extends r with a follow-up question. The mode defaults to the reading's
// first interpretation.
func (s *ReadingService) Ask(ctx context.Context, r *Reading, req AskRequest) (followup.Message, error) {
	mode := req.Mode
	if mode == "" {
		mode = r.PrimaryMode()
	}
	rc, ok := r.readingContext(mode)
	if !ok {
		return followup.Message{}, fmt.Errorf("%w: reading has no %q interpretation", domain.ErrInvalidRequest, mode)
	}

	return s.followups.Ask(ctx, r.FollowUp, followup.Request{
		Mode:     mode,
		Reading:  rc,
		Tier:     req.Tier,
		Question: req.Question,
		Lang:     r.Lang,
	})
}

// Spreads lists the available spread definitions.
func (s *ReadingService) Spreads(ctx context.Context) ([]domain.SpreadDefinition, error) {
	return s.store.ListSpreads(ctx)
}

func (s *ReadingService) resolveMode(mode prompt.Mode, deckID string) prompt.Mode {
	if mode != "" {
		return mode
	}
	if deckID == "i_ching" {
		return prompt.ModeIChing
	}
	return s.opts.DefaultMode
}
