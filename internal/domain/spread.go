package domain

import "fmt"

// ReversalProbability is the chance that any drawn card lands reversed.
const ReversalProbability = 0.3

// Draw picks spread.CardCount() unique cards from deck using the provided RNG.
// Position labels are resolved in lang. Each card's orientation is an
// independent trial on rng.Float64, separate from the shuffle stream.
func Draw(deck Deck, spread SpreadDefinition, lang string, rng RNG) ([]DrawnCard, error) {
	n := spread.CardCount()
	if n == 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, ErrEmptySpread)
	}
	if n > len(deck.Cards) {
		return nil, fmt.Errorf("%w: %w: spread %q wants %d, deck %q has %d",
			ErrInvalidRequest, ErrSpreadExceedsDeck, spread.Name, n, deck.ID, len(deck.Cards))
	}

	// Fisher-Yates over indices so the caller's deck is left untouched.
	indices := make([]int, len(deck.Cards))
	for i := range indices {
		indices[i] = i
	}
	for i := len(indices) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		indices[i], indices[j] = indices[j], indices[i]
	}

	cards := make([]DrawnCard, n)
	for i := range n {
		reversed := false
		if !deck.NoReversals && rng.Float64() < ReversalProbability {
			reversed = true
		}
		cards[i] = DrawnCard{
			Card:     deck.Cards[indices[i]],
			Reversed: reversed,
			Position: spread.Positions[i].Label.In(lang),
		}
	}

	return cards, nil
}
