package app

import (
	"sync"
	"time"

	"github.com/randomtoy/oracle-go/internal/domain"
	"github.com/randomtoy/oracle-go/internal/followup"
	"github.com/randomtoy/oracle-go/internal/prompt"
)

// Interpretation is one generated reading text under a given mode.
type Interpretation struct {
	Mode      prompt.Mode
	Content   string
	Provider  string
	Model     string
	LatencyMS int64
	CreatedAt time.Time
}

// Reading is one draw together with its interpretations and follow-up session.
// Cards are fixed at draw time; interpretations may be added for other modes.
type Reading struct {
	ID            string
	DeckID        string
	Spread        domain.SpreadDefinition
	Question      string
	Lang          string
	Cards         []domain.DrawnCard
	ChangingLines []int
	CreatedAt     time.Time
	FollowUp      *followup.Session

	mu              sync.RWMutex
	primary         prompt.Mode
	interpretations map[prompt.Mode]Interpretation
}

func (r *Reading) setInterpretation(in Interpretation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.interpretations == nil {
		r.interpretations = make(map[prompt.Mode]Interpretation)
	}
	if r.primary == "" {
		r.primary = in.Mode
	}
	r.interpretations[in.Mode] = in
}

// Interpretation returns the text generated for mode.
func (r *Reading) Interpretation(mode prompt.Mode) (Interpretation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	in, ok := r.interpretations[mode]
	return in, ok
}

// PrimaryMode is the mode of the first interpretation, or "" before one exists.
func (r *Reading) PrimaryMode() prompt.Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.primary
}

// Interpretations returns a copy of every interpretation keyed by mode.
func (r *Reading) Interpretations() map[prompt.Mode]Interpretation {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[prompt.Mode]Interpretation, len(r.interpretations))
	for k, v := range r.interpretations {
		out[k] = v
	}
	return out
}

// HistoryRecord is the value a caller persists to its reading history.
type HistoryRecord struct {
	Question        string                    `json:"question"`
	ElementsDrawn   []domain.DrawnCard        `json:"elements_drawn"`
	Interpretations map[string]HistoryContent `json:"interpretations"`
	CreatedAt       time.Time                 `json:"created_at"`
}

type HistoryContent struct {
	Content string `json:"content"`
}

// Record builds the history value. Follow-up messages are not part of it.
func (r *Reading) Record() HistoryRecord {
	ints := r.Interpretations()
	rec := HistoryRecord{
		Question:        r.Question,
		ElementsDrawn:   append([]domain.DrawnCard(nil), r.Cards...),
		Interpretations: make(map[string]HistoryContent, len(ints)),
		CreatedAt:       r.CreatedAt,
	}
	for mode, in := range ints {
		rec.Interpretations[string(mode)] = HistoryContent{Content: in.Content}
	}
	return rec
}

func (r *Reading) readingContext(mode prompt.Mode) (prompt.ReadingContext, bool) {
	in, ok := r.Interpretation(mode)
	if !ok {
		return prompt.ReadingContext{}, false
	}
	return prompt.ReadingContext{
		Question:       r.Question,
		Spread:         r.Spread.DisplayName(r.Lang),
		Cards:          r.Cards,
		ChangingLines:  r.ChangingLines,
		Interpretation: in.Content,
	}, true
}
