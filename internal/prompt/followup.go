package prompt

import (
	"fmt"
	"strings"

	"github.com/randomtoy/oracle-go/internal/domain"
)

// ReadingContext is what a follow-up question needs to know about the reading.
// Cards are rendered by position, title and orientation only.
type ReadingContext struct {
	Question       string
	Spread         string
	Cards          []domain.DrawnCard
	ChangingLines  []int
	Interpretation string
}

// Turn is one prior exchange line in a follow-up conversation.
type Turn struct {
	Role    string
	Content string
}

const followUpInstructions = `You already gave the interpretation below. The querent now asks a follow-up question.
Answer it in the context of the same cards and the earlier conversation.
Keep the answer focused and shorter than the original interpretation.`

// BuildFollowUp composes the prompt pair for one follow-up turn.
func BuildFollowUp(mode Mode, rc ReadingContext, history []Turn, question, lang string) Prompt {
	var b strings.Builder

	if rc.Question != "" {
		fmt.Fprintf(&b, "Original question: %q\n", rc.Question)
	}
	if rc.Spread != "" {
		fmt.Fprintf(&b, "Spread: %s\n", rc.Spread)
	}
	b.WriteString("Cards:\n")
	for _, c := range rc.Cards {
		fmt.Fprintf(&b, "  - %s: %s (%s)\n", c.Position, c.Title.In(lang), c.Orientation())
	}
	if len(rc.ChangingLines) > 0 {
		fmt.Fprintf(&b, "Changing lines: %s\n", joinInts(rc.ChangingLines))
	}

	fmt.Fprintf(&b, "\nInterpretation:\n%s\n", strings.TrimSpace(rc.Interpretation))

	if len(history) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "%s: %s\n", speaker(t.Role), t.Content)
		}
	}

	fmt.Fprintf(&b, "\nFollow-up question: %q", question)

	return Prompt{
		System: systemPrompt(mode, followUpInstructions, lang),
		User:   b.String(),
	}
}

func speaker(role string) string {
	switch role {
	case "user":
		return "Querent"
	case "assistant":
		return "Reader"
	default:
		return role
	}
}
