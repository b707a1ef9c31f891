package domain

import "slices"

// RNG abstracts random number generation for deterministic testing.
type RNG interface {
	// Intn returns a non-negative random int in [0, n).
	Intn(n int) int
	// Float64 returns a random float in [0.0, 1.0).
	Float64() float64
}

// DefaultLang is the locale every LocalizedText is expected to carry.
const DefaultLang = "en"

// LocalizedText holds one string per BCP 47 language code.
type LocalizedText map[string]string

// In returns the text for lang, falling back to English and then to the
// translation with the smallest language code.
func (t LocalizedText) In(lang string) string {
	if s, ok := t[lang]; ok && s != "" {
		return s
	}
	if s, ok := t[DefaultLang]; ok && s != "" {
		return s
	}
	langs := make([]string, 0, len(t))
	for l, s := range t {
		if s != "" {
			langs = append(langs, l)
		}
	}
	if len(langs) == 0 {
		return ""
	}
	slices.Sort(langs)
	return t[langs[0]]
}

// Card is a single tarot card or I Ching hexagram in a deck.
type Card struct {
	Code            string        `json:"code" yaml:"code"`
	Title           LocalizedText `json:"title" yaml:"title"`
	Keywords        []string      `json:"keywords" yaml:"keywords"`
	Element         string        `json:"element,omitempty" yaml:"element"`
	Astrology       string        `json:"astrology,omitempty" yaml:"astrology"`
	Upright         LocalizedText `json:"upright" yaml:"upright"`
	ReversedMeaning LocalizedText `json:"reversed_meaning,omitempty" yaml:"reversed_meaning"`

	// Hexagram-only fields.
	Number int     `json:"number,omitempty" yaml:"number"`
	Upper  Trigram `json:"upper,omitempty" yaml:"upper"`
	Lower  Trigram `json:"lower,omitempty" yaml:"lower"`
}

// Meaning returns the orientation-appropriate base meaning.
func (c Card) Meaning(reversed bool, lang string) string {
	if reversed {
		if s := c.ReversedMeaning.In(lang); s != "" {
			return s
		}
	}
	return c.Upright.In(lang)
}

// DrawnCard is a card bound to an orientation and a spread position.
type DrawnCard struct {
	Card
	Reversed bool   `json:"reversed"`
	Position string `json:"position"`
}

// Orientation renders the reversed flag for prompts and responses.
func (d DrawnCard) Orientation() string {
	if d.Reversed {
		return "reversed"
	}
	return "upright"
}

// Deck is a collection of cards.
type Deck struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Cards       []Card `json:"cards"`
	NoReversals bool   `json:"no_reversals,omitempty"`
}

// SpreadMethod selects how a spread obtains its cards.
type SpreadMethod string

const (
	MethodDraw SpreadMethod = "draw"
	MethodCast SpreadMethod = "cast"
)

// Position is a named slot in a spread.
type Position struct {
	Label   LocalizedText `yaml:"label" json:"label"`
	Meaning string        `yaml:"meaning,omitempty" json:"meaning,omitempty"`
}

// SpreadDefinition describes how many cards a reading uses and what each slot means.
type SpreadDefinition struct {
	Name      string        `yaml:"name" json:"name"`
	Title     LocalizedText `yaml:"title" json:"title"`
	Deck      string        `yaml:"deck" json:"deck"`
	Method    SpreadMethod  `yaml:"method,omitempty" json:"method,omitempty"`
	Positions []Position    `yaml:"positions" json:"positions"`
}

// CardCount is the number of cards the spread draws.
func (s SpreadDefinition) CardCount() int { return len(s.Positions) }

// DisplayName returns the localized title, or the spread name when untitled.
func (s SpreadDefinition) DisplayName(lang string) string {
	if t := s.Title.In(lang); t != "" {
		return t
	}
	return s.Name
}
