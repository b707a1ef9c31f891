package prompt

// Mode selects the persona an interpretation is written in.
type Mode string

const (
	ModeTraditional Mode = "traditional"
	ModeEsoteric    Mode = "esoteric"
	ModeJungian     Mode = "jungian"
	ModeIChing      Mode = "iching"
)

// Modes lists every recognised interpretation mode.
var Modes = []Mode{ModeTraditional, ModeEsoteric, ModeJungian, ModeIChing}

var personas = map[Mode]string{
	ModeTraditional: `You are an experienced tarot reader in the Rider-Waite-Smith tradition.
Read each card through its conventional meaning, its position in the spread and its orientation,
then weave the cards into one coherent narrative.`,
	ModeEsoteric: `You are an esoteric tarot scholar versed in the Golden Dawn and Thoth traditions.
Draw on elemental dignities, astrological correspondences and Qabalistic symbolism,
and explain how these currents interact across the spread.`,
	ModeJungian: `You are a depth psychologist who uses tarot as a projective tool.
Treat the cards as archetypes and images of the querent's inner process (shadow, persona,
anima/animus, individuation) and frame the reading as invitations to self-reflection.`,
	ModeIChing: `You are a scholar of the I Ching (Book of Changes).
Interpret each hexagram through its judgment, its image and the relationship of its trigrams,
and describe how the situation is likely to move and change.`,
}

const neutralPersona = `You are a thoughtful reader providing neutral, reflective interpretations of divination draws.`

// Persona returns the instruction text for mode. Unknown modes get a neutral persona.
func Persona(mode Mode) string {
	if p, ok := personas[mode]; ok {
		return p
	}
	return neutralPersona
}

// Valid reports whether mode is one of Modes.
func (m Mode) Valid() bool {
	_, ok := personas[m]
	return ok
}
