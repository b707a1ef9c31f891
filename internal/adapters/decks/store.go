package decks

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/randomtoy/oracle-go/internal/domain"
)

//go:embed data/*.json data/*.yaml
var dataFS embed.FS

// registry maps deck IDs to their JSON filenames inside data/.
var registry = map[string]string{
	"tarot":   "data/tarot.json",
	"i_ching": "data/i_ching.json",
}

const spreadsFile = "data/spreads.yaml"

// IChingDeck is the deck hexagram lookups resolve against.
const IChingDeck = "i_ching"

type hexKey struct{ lower, upper domain.Trigram }

// EmbeddedStore loads decks and spreads from embedded files.
type EmbeddedStore struct {
	once     sync.Once
	decks    map[string]domain.Deck
	spreads  map[string]domain.SpreadDefinition
	hexagram map[hexKey]domain.Card
	err      error
}

func NewEmbeddedStore() *EmbeddedStore {
	return &EmbeddedStore{}
}

func (s *EmbeddedStore) init() {
	s.decks = make(map[string]domain.Deck, len(registry))
	for id, filename := range registry {
		raw, err := dataFS.ReadFile(filename)
		if err != nil {
			s.err = fmt.Errorf("read embedded deck %s: %w", id, err)
			return
		}
		var deck domain.Deck
		if err := json.Unmarshal(raw, &deck); err != nil {
			s.err = fmt.Errorf("parse embedded deck %s: %w", id, err)
			return
		}
		if err := validateDeck(deck); err != nil {
			s.err = fmt.Errorf("embedded deck %s: %w", id, err)
			return
		}
		deck.ID = id
		s.decks[id] = deck
	}

	s.hexagram = make(map[hexKey]domain.Card, 64)
	for _, c := range s.decks[IChingDeck].Cards {
		s.hexagram[hexKey{c.Lower, c.Upper}] = c
	}

	raw, err := dataFS.ReadFile(spreadsFile)
	if err != nil {
		s.err = fmt.Errorf("read embedded spreads: %w", err)
		return
	}
	spreads, err := ParseSpreads(raw)
	if err != nil {
		s.err = err
		return
	}
	s.spreads = make(map[string]domain.SpreadDefinition, len(spreads))
	for _, sp := range spreads {
		if _, ok := s.decks[sp.Deck]; !ok {
			s.err = fmt.Errorf("spread %s references unknown deck %q", sp.Name, sp.Deck)
			return
		}
		s.spreads[sp.Name] = sp
	}
}

// ParseSpreads decodes a YAML spread list.
func ParseSpreads(raw []byte) ([]domain.SpreadDefinition, error) {
	var doc struct {
		Spreads []domain.SpreadDefinition `yaml:"spreads"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse spreads: %w", err)
	}
	for i, sp := range doc.Spreads {
		if sp.Name == "" || len(sp.Positions) == 0 {
			return nil, fmt.Errorf("spread #%d: name and positions are required", i)
		}
		if sp.Method == "" {
			doc.Spreads[i].Method = domain.MethodDraw
		}
	}
	return doc.Spreads, nil
}

func validateDeck(d domain.Deck) error {
	seen := make(map[string]bool, len(d.Cards))
	for _, c := range d.Cards {
		if c.Code == "" {
			return fmt.Errorf("card without code")
		}
		if seen[c.Code] {
			return fmt.Errorf("duplicate card code %s", c.Code)
		}
		seen[c.Code] = true
	}
	return nil
}

func (s *EmbeddedStore) GetDeck(_ context.Context, deckID string) (domain.Deck, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return domain.Deck{}, s.err
	}
	deck, ok := s.decks[deckID]
	if !ok {
		return domain.Deck{}, fmt.Errorf("%w: %q", domain.ErrDeckNotFound, deckID)
	}
	return deck, nil
}

func (s *EmbeddedStore) GetSpread(_ context.Context, name string) (domain.SpreadDefinition, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return domain.SpreadDefinition{}, s.err
	}
	sp, ok := s.spreads[name]
	if !ok {
		return domain.SpreadDefinition{}, fmt.Errorf("%w: %q", domain.ErrSpreadNotFound, name)
	}
	return sp, nil
}

func (s *EmbeddedStore) ListSpreads(_ context.Context) ([]domain.SpreadDefinition, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return nil, s.err
	}
	out := make([]domain.SpreadDefinition, 0, len(s.spreads))
	for _, sp := range s.spreads {
		out = append(out, sp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *EmbeddedStore) GetHexagram(_ context.Context, lower, upper domain.Trigram) (domain.Card, error) {
	s.once.Do(s.init)
	if s.err != nil {
		return domain.Card{}, s.err
	}
	c, ok := s.hexagram[hexKey{lower, upper}]
	if !ok {
		return domain.Card{}, fmt.Errorf("%w: %s over %s", domain.ErrHexagramNotFound, upper, lower)
	}
	return c, nil
}
