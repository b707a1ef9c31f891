package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/randomtoy/oracle-go/internal/domain"
)

// Prompt is a system/user prompt pair ready for dispatch.
type Prompt struct {
	System string
	User   string
}

// langNames maps common BCP 47 codes to human-readable language names.
var langNames = map[string]string{
	"en": "English",
	"ru": "Russian",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"ja": "Japanese",
	"ko": "Korean",
	"zh": "Chinese",
	"ar": "Arabic",
	"hi": "Hindi",
	"tr": "Turkish",
	"uk": "Ukrainian",
	"pl": "Polish",
}

const rules = `Rules:
- Never provide medical, legal, or financial advice.
- Never predict specific outcomes or disasters as certain.
- Never command actions or diagnose conditions.
- Offer balanced possibilities and reflective questions.
- If a question is provided, address it directly but never guarantee outcomes.`

type buildOptions struct {
	changingLines []int
}

// Option adjusts what Build renders.
type Option func(*buildOptions)

// WithChangingLines lists the 1-based changing lines of a cast hexagram.
func WithChangingLines(lines []int) Option {
	return func(o *buildOptions) { o.changingLines = lines }
}

// Build composes the prompt pair for an initial interpretation.
// cards are serialised in draw order and are not modified.
func Build(mode Mode, spread domain.SpreadDefinition, cards []domain.DrawnCard, question, lang string, opts ...Option) Prompt {
	var o buildOptions
	for _, opt := range opts {
		opt(&o)
	}
	return Prompt{
		System: systemPrompt(mode, "", lang),
		User:   userPrompt(spread, cards, question, lang, o),
	}
}

func systemPrompt(mode Mode, extra, lang string) string {
	var b strings.Builder
	b.WriteString(Persona(mode))
	if extra != "" {
		b.WriteString("\n\n")
		b.WriteString(extra)
	}
	b.WriteString("\n\n")
	b.WriteString(rules)
	if li := languageInstruction(lang); li != "" {
		b.WriteString("\n")
		b.WriteString(li)
	}
	return b.String()
}

func languageInstruction(lang string) string {
	if lang == "" || lang == domain.DefaultLang {
		return ""
	}
	name, ok := langNames[lang]
	if !ok {
		name = lang
	}
	return fmt.Sprintf("- Respond entirely in %s.", name)
}

func userPrompt(spread domain.SpreadDefinition, cards []domain.DrawnCard, question, lang string, o buildOptions) string {
	var b strings.Builder
	if question != "" {
		fmt.Fprintf(&b, "The querent asks: %q\n\n", question)
	}
	fmt.Fprintf(&b, "Spread: %s\n", spread.DisplayName(lang))
	if len(o.changingLines) > 0 {
		fmt.Fprintf(&b, "Changing lines (counted from the bottom): %s\n", joinInts(o.changingLines))
	}
	b.WriteString("\nCards drawn:\n")

	for i, c := range cards {
		var slot string
		if i < len(spread.Positions) {
			slot = spread.Positions[i].Meaning
		}
		writeCard(&b, i+1, c, slot, lang)
	}

	b.WriteString("\nProvide a cohesive interpretation of the whole spread.")
	return b.String()
}

func writeCard(b *strings.Builder, n int, c domain.DrawnCard, slot, lang string) {
	fmt.Fprintf(b, "\nCard %d. Position: %s\n", n, c.Position)
	if slot != "" {
		fmt.Fprintf(b, "  Position meaning: %s\n", slot)
	}
	fmt.Fprintf(b, "  Title: %s\n", c.Title.In(lang))
	fmt.Fprintf(b, "  Orientation: %s\n", c.Orientation())
	if len(c.Keywords) > 0 {
		fmt.Fprintf(b, "  Keywords: %s\n", strings.Join(c.Keywords, ", "))
	}
	if c.Element != "" {
		fmt.Fprintf(b, "  Element: %s\n", c.Element)
	}
	if c.Astrology != "" {
		fmt.Fprintf(b, "  Astrology: %s\n", c.Astrology)
	}
	fmt.Fprintf(b, "  Meaning: %s\n", c.Meaning(c.Reversed, lang))
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ", ")
}
