package ports

import (
	"context"

	"github.com/randomtoy/oracle-go/internal/domain"
)

// ReferenceStore provides read-only access to decks, hexagrams and spreads.
type ReferenceStore interface {
	GetDeck(ctx context.Context, deckID string) (domain.Deck, error)
	GetSpread(ctx context.Context, name string) (domain.SpreadDefinition, error)
	ListSpreads(ctx context.Context) ([]domain.SpreadDefinition, error)
	GetHexagram(ctx context.Context, lower, upper domain.Trigram) (domain.Card, error)
}
