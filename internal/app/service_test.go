package app_test

import (
	"context"
	"errors"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randomtoy/oracle-go/internal/adapters/decks"
	"github.com/randomtoy/oracle-go/internal/adapters/llm/mock"
	"github.com/randomtoy/oracle-go/internal/app"
	"github.com/randomtoy/oracle-go/internal/domain"
	"github.com/randomtoy/oracle-go/internal/followup"
	"github.com/randomtoy/oracle-go/internal/prompt"
	"github.com/randomtoy/oracle-go/internal/provider"
)

type pcgRNG struct{ r *rand.Rand }

func (p pcgRNG) Intn(n int) int    { return p.r.IntN(n) }
func (p pcgRNG) Float64() float64 { return p.r.Float64() }

func newRNG(seed uint64) domain.RNG { return pcgRNG{rand.New(rand.NewPCG(seed, seed^0x9e37))} }

// constRNG always returns the same values, which makes every coin land heads.
type constRNG struct{}

func (constRNG) Intn(n int) int   { return n - 1 }
func (constRNG) Float64() float64 { return 0.99 }

func newService(t *testing.T, p *mock.Provider, rng domain.RNG) *app.ReadingService {
	t.Helper()
	reg := provider.NewRegistry(nil)
	reg.Register("mock", p)
	require.NoError(t, reg.SetProvider("mock"))
	return app.NewReadingService(decks.NewEmbeddedStore(), reg, rng, app.Options{
		DefaultMode:       prompt.ModeTraditional,
		Temperature:       0.7,
		MaxTokens:         1200,
		FollowUpMaxTokens: 600,
	}, nil)
}

func TestRead_ThreeCardEndToEnd(t *testing.T) {
	p := mock.New()
	svc := newService(t, p, newRNG(7))

	r, err := svc.Read(context.Background(), app.ReadRequest{
		Question: "Will I get the job?",
		Spread:   "three-card",
		Mode:     prompt.ModeTraditional,
	})
	require.NoError(t, err)

	require.Len(t, r.Cards, 3)
	seen := map[string]bool{}
	for _, c := range r.Cards {
		assert.False(t, seen[c.Code], "duplicate card %s", c.Code)
		seen[c.Code] = true
	}
	assert.Equal(t, "Past", r.Cards[0].Position)
	assert.Equal(t, "Present", r.Cards[1].Position)
	assert.Equal(t, "Future", r.Cards[2].Position)
	assert.Equal(t, "tarot", r.DeckID)
	assert.NotEmpty(t, r.ID)

	calls := p.Calls()
	require.Len(t, calls, 1)
	user := calls[0].Prompt
	assert.True(t, strings.HasPrefix(user, `The querent asks: "Will I get the job?"`))
	assert.Equal(t, 3, strings.Count(user, "\nCard "))
	assert.InDelta(t, 0.7, calls[0].Temperature, 1e-9)
	assert.Equal(t, 1200, calls[0].MaxTokens)

	in, ok := r.Interpretation(prompt.ModeTraditional)
	require.True(t, ok)
	assert.Equal(t, strconv.Itoa(len(user)), in.Content)
	assert.Equal(t, "mock", in.Provider)
	assert.Equal(t, "mock", in.Model)
	assert.Equal(t, prompt.ModeTraditional, r.PrimaryMode())

	msg, err := svc.Ask(context.Background(), r, app.AskRequest{Question: "When?", Tier: domain.TierPro})
	require.NoError(t, err)
	msgs := r.FollowUp.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, followup.RoleUser, msgs[0].Role)
	assert.Equal(t, msg, msgs[1])

	calls = p.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1].Prompt, in.Content)
	assert.Equal(t, 600, calls[1].MaxTokens)
}

func TestInterpret_OtherModeKeepsCards(t *testing.T) {
	p := mock.Echo("text")
	svc := newService(t, p, newRNG(11))

	r, err := svc.Read(context.Background(), app.ReadRequest{Spread: "celtic-cross"})
	require.NoError(t, err)
	before := append([]domain.DrawnCard(nil), r.Cards...)

	_, err = svc.Interpret(context.Background(), r, prompt.ModeJungian)
	require.NoError(t, err)

	assert.Equal(t, before, r.Cards)
	assert.Len(t, r.Interpretations(), 2)
	assert.Equal(t, prompt.ModeTraditional, r.PrimaryMode())
	calls := p.Calls()
	require.Len(t, calls, 2)
	assert.True(t, strings.HasPrefix(calls[1].SystemPrompt, prompt.Persona(prompt.ModeJungian)))
	assert.Equal(t, calls[0].Prompt, calls[1].Prompt, "same cards, same user prompt")
}

func TestRead_HexagramCast(t *testing.T) {
	p := mock.New()
	svc := newService(t, p, constRNG{})

	r, err := svc.Read(context.Background(), app.ReadRequest{Spread: "hexagram-cast", Question: "Which way?"})
	require.NoError(t, err)

	require.Len(t, r.Cards, 2)
	assert.Equal(t, 1, r.Cards[0].Number)
	assert.Equal(t, 2, r.Cards[1].Number)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, r.ChangingLines)
	assert.Equal(t, decks.IChingDeck, r.DeckID)

	in, ok := r.Interpretation(prompt.ModeIChing)
	require.True(t, ok, "i ching readings default to the iching mode")
	assert.NotEmpty(t, in.Content)
}

func TestRead_SingleHexagramNeverReversed(t *testing.T) {
	svc := newService(t, mock.New(), newRNG(3))
	for range 50 {
		r, err := svc.Draw(context.Background(), app.ReadRequest{Spread: "single-hexagram"})
		require.NoError(t, err)
		require.Len(t, r.Cards, 1)
		assert.False(t, r.Cards[0].Reversed)
	}
}

func TestRead_Errors(t *testing.T) {
	svc := newService(t, mock.New(), newRNG(1))

	_, err := svc.Read(context.Background(), app.ReadRequest{Spread: "pyramid"})
	require.ErrorIs(t, err, domain.ErrSpreadNotFound)

	_, err = svc.Read(context.Background(), app.ReadRequest{Spread: "three-card", DeckID: "lenormand"})
	require.ErrorIs(t, err, domain.ErrDeckNotFound)
}

func TestRead_ProviderFailure(t *testing.T) {
	boom := errors.New("upstream down")
	svc := newService(t, &mock.Provider{Err: boom}, newRNG(1))

	_, err := svc.Read(context.Background(), app.ReadRequest{Spread: "single-card"})
	require.ErrorIs(t, err, domain.ErrProvider)
	require.ErrorIs(t, err, boom)
}

func TestAsk_RequiresInterpretation(t *testing.T) {
	p := mock.New()
	svc := newService(t, p, newRNG(5))

	r, err := svc.Draw(context.Background(), app.ReadRequest{Spread: "single-card"})
	require.NoError(t, err)

	_, err = svc.Ask(context.Background(), r, app.AskRequest{Question: "why?", Tier: domain.TierFree})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Zero(t, p.CallCount())
	assert.Empty(t, r.FollowUp.Messages())
}

func TestAsk_FreeTierQuota(t *testing.T) {
	svc := newService(t, mock.Echo("ok"), newRNG(5))
	r, err := svc.Read(context.Background(), app.ReadRequest{Spread: "single-card"})
	require.NoError(t, err)

	for i := range 3 {
		_, err := svc.Ask(context.Background(), r, app.AskRequest{Question: "q" + strconv.Itoa(i), Tier: domain.TierFree})
		require.NoError(t, err)
	}
	_, err = svc.Ask(context.Background(), r, app.AskRequest{Question: "q4", Tier: domain.TierFree})
	require.ErrorIs(t, err, domain.ErrQuotaExceeded)
	assert.Len(t, r.FollowUp.Messages(), 6)
}

func TestReading_Record(t *testing.T) {
	svc := newService(t, mock.Echo("reading text"), newRNG(9))
	r, err := svc.Read(context.Background(), app.ReadRequest{Spread: "three-card", Question: "Q?"})
	require.NoError(t, err)
	_, err = svc.Ask(context.Background(), r, app.AskRequest{Question: "more", Tier: domain.TierPro})
	require.NoError(t, err)

	rec := r.Record()
	assert.Equal(t, "Q?", rec.Question)
	assert.Equal(t, r.Cards, rec.ElementsDrawn)
	assert.Equal(t, map[string]app.HistoryContent{"traditional": {Content: "reading text"}}, rec.Interpretations)
	assert.Equal(t, r.CreatedAt, rec.CreatedAt)
}

func TestReadingStore(t *testing.T) {
	s := app.NewReadingStore()
	a := &app.Reading{ID: "a"}
	b := &app.Reading{ID: "b"}

	s.Put(a)
	got, err := s.Get("a")
	require.NoError(t, err)
	assert.Same(t, a, got)

	s.Replace("a", b)
	_, err = s.Get("a")
	require.ErrorIs(t, err, domain.ErrReadingNotFound)
	assert.Equal(t, 1, s.Len())

	require.NoError(t, s.Delete("b"))
	require.ErrorIs(t, s.Delete("b"), domain.ErrReadingNotFound)
}

func TestRead_CastRejectsForeignDeck(t *testing.T) {
	p := mock.New()
	svc := newService(t, p, constRNG{})

	_, err := svc.Read(context.Background(), app.ReadRequest{Spread: "hexagram-cast", DeckID: "tarot"})
	require.ErrorIs(t, err, domain.ErrInvalidRequest)
	assert.Zero(t, p.CallCount())

	r, err := svc.Draw(context.Background(), app.ReadRequest{Spread: "hexagram-cast", DeckID: decks.IChingDeck})
	require.NoError(t, err)
	assert.Equal(t, decks.IChingDeck, r.DeckID)
}

func TestRead_CastPromptCarriesChangingLines(t *testing.T) {
	p := mock.Echo("the lines move")
	svc := newService(t, p, constRNG{})

	r, err := svc.Read(context.Background(), app.ReadRequest{Spread: "hexagram-cast"})
	require.NoError(t, err)
	_, err = svc.Ask(context.Background(), r, app.AskRequest{Question: "and the third line?", Tier: domain.TierPro})
	require.NoError(t, err)

	calls := p.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0].Prompt, "Changing lines (counted from the bottom): 1, 2, 3, 4, 5, 6")
	assert.Contains(t, calls[0].Prompt, "Position meaning: The hexagram as cast.")
	assert.Contains(t, calls[1].Prompt, "Changing lines: 1, 2, 3, 4, 5, 6")
}
