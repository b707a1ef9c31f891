package http

import (
	"sort"
	"time"

	"github.com/randomtoy/oracle-go/internal/app"
	"github.com/randomtoy/oracle-go/internal/domain"
	"github.com/randomtoy/oracle-go/internal/followup"
	"github.com/randomtoy/oracle-go/internal/prompt"
)

// CreateReadingRequest is the body of POST /v1/readings.
type CreateReadingRequest struct {
	Question string `json:"question"`
	Deck     string `json:"deck"`
	Spread   string `json:"spread"`
	Mode     string `json:"mode"`
	Lang     string `json:"lang"`
	// Replaces names a previous reading whose conversation is discarded.
	Replaces string `json:"replaces"`
}

type InterpretRequest struct {
	Mode string `json:"mode"`
}

type FollowUpRequest struct {
	Question string `json:"question"`
	Tier     string `json:"tier"`
	Mode     string `json:"mode"`
}

// ReadingResponse is the JSON shape of a reading.
type ReadingResponse struct {
	ID              string                   `json:"id"`
	Deck            string                   `json:"deck"`
	Spread          string                   `json:"spread"`
	Question        string                   `json:"question,omitempty"`
	Lang            string                   `json:"lang"`
	Cards           []CardResponse           `json:"cards"`
	ChangingLines   []int                    `json:"changing_lines,omitempty"`
	Interpretations []InterpretationResponse `json:"interpretations"`
	FollowUps       []MessageResponse        `json:"follow_ups"`
	CreatedAt       time.Time                `json:"created_at"`
	Meta            MetaResp                 `json:"meta"`
}

type CardResponse struct {
	Code        string   `json:"code"`
	Title       string   `json:"title"`
	Position    string   `json:"position"`
	Orientation string   `json:"orientation"`
	Keywords    []string `json:"keywords,omitempty"`
	Number      int      `json:"number,omitempty"`
}

type InterpretationResponse struct {
	Mode      string    `json:"mode"`
	Content   string    `json:"content"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	LatencyMS int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

type MessageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type FollowUpResponse struct {
	Message   MessageResponse `json:"message"`
	Remaining int             `json:"remaining"`
}

type SpreadResponse struct {
	Name      string   `json:"name"`
	Title     string   `json:"title"`
	Deck      string   `json:"deck"`
	Method    string   `json:"method"`
	Positions []string `json:"positions"`
}

type MetaResp struct {
	RequestID string `json:"request_id"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func toReadingResponse(r *app.Reading, requestID string) ReadingResponse {
	cards := make([]CardResponse, len(r.Cards))
	for i, dc := range r.Cards {
		cards[i] = CardResponse{
			Code:        dc.Code,
			Title:       dc.Title.In(r.Lang),
			Position:    dc.Position,
			Orientation: dc.Orientation(),
			Keywords:    dc.Keywords,
			Number:      dc.Number,
		}
	}

	ints := r.Interpretations()
	primary := r.PrimaryMode()
	order := make([]prompt.Mode, 0, len(ints))
	for mode := range ints {
		if mode != primary {
			order = append(order, mode)
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })
	if _, ok := ints[primary]; ok {
		order = append([]prompt.Mode{primary}, order...)
	}

	interpretations := make([]InterpretationResponse, len(order))
	for i, mode := range order {
		in := ints[mode]
		interpretations[i] = InterpretationResponse{
			Mode:      string(in.Mode),
			Content:   in.Content,
			Provider:  in.Provider,
			Model:     in.Model,
			LatencyMS: in.LatencyMS,
			CreatedAt: in.CreatedAt,
		}
	}

	var msgs []followup.Message
	if r.FollowUp != nil {
		msgs = r.FollowUp.Messages()
	}

	return ReadingResponse{
		ID:              r.ID,
		Deck:            r.DeckID,
		Spread:          r.Spread.Name,
		Question:        r.Question,
		Lang:            r.Lang,
		Cards:           cards,
		ChangingLines:   r.ChangingLines,
		Interpretations: interpretations,
		FollowUps:       toMessages(msgs),
		CreatedAt:       r.CreatedAt,
		Meta:            MetaResp{RequestID: requestID},
	}
}

func toMessage(m followup.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Role:      string(m.Role),
		Content:   m.Content,
		Timestamp: m.Timestamp,
	}
}

func toMessages(msgs []followup.Message) []MessageResponse {
	out := make([]MessageResponse, len(msgs))
	for i, m := range msgs {
		out[i] = toMessage(m)
	}
	return out
}

func toSpreadResponse(sp domain.SpreadDefinition, lang string) SpreadResponse {
	positions := make([]string, len(sp.Positions))
	for i, p := range sp.Positions {
		positions[i] = p.Label.In(lang)
	}
	return SpreadResponse{
		Name:      sp.Name,
		Title:     sp.DisplayName(lang),
		Deck:      sp.Deck,
		Method:    string(sp.Method),
		Positions: positions,
	}
}
