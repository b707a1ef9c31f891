package domain

// Trigram is one of the eight three-line figures a hexagram is built from.
type Trigram string

const (
	Heaven   Trigram = "heaven"
	Lake     Trigram = "lake"
	Fire     Trigram = "fire"
	Thunder  Trigram = "thunder"
	Wind     Trigram = "wind"
	Water    Trigram = "water"
	Mountain Trigram = "mountain"
	Earth    Trigram = "earth"
)

// trigramByBits is indexed by yang lines, bit 0 being the bottom line.
var trigramByBits = [8]Trigram{
	0b000: Earth,
	0b001: Thunder,
	0b010: Water,
	0b011: Lake,
	0b100: Mountain,
	0b101: Fire,
	0b110: Wind,
	0b111: Heaven,
}

// Line is the value of a single cast line under the three-coin method.
type Line int

const (
	OldYin    Line = 6
	YoungYang Line = 7
	YoungYin  Line = 8
	OldYang   Line = 9
)

func (l Line) Yang() bool     { return l == YoungYang || l == OldYang }
func (l Line) Changing() bool { return l == OldYin || l == OldYang }

// Cast holds six lines, bottom first.
type Cast struct {
	Lines [6]Line
}

// CastHexagram tosses three coins per line (heads 3, tails 2).
func CastHexagram(rng RNG) Cast {
	var c Cast
	for i := range c.Lines {
		sum := 0
		for range 3 {
			sum += 2 + rng.Intn(2)
		}
		c.Lines[i] = Line(sum)
	}
	return c
}

// Primary returns the trigrams of the hexagram as cast.
func (c Cast) Primary() (lower, upper Trigram) {
	var yang [6]bool
	for i, l := range c.Lines {
		yang[i] = l.Yang()
	}
	return trigrams(yang)
}

// Relating returns the hexagram after every changing line flips.
// ok is false when no line is changing.
func (c Cast) Relating() (lower, upper Trigram, ok bool) {
	var yang [6]bool
	for i, l := range c.Lines {
		yang[i] = l.Yang()
		if l.Changing() {
			yang[i] = !yang[i]
			ok = true
		}
	}
	if !ok {
		return "", "", false
	}
	lower, upper = trigrams(yang)
	return lower, upper, true
}

// ChangingLines lists the 1-based positions of changing lines.
func (c Cast) ChangingLines() []int {
	var out []int
	for i, l := range c.Lines {
		if l.Changing() {
			out = append(out, i+1)
		}
	}
	return out
}

func trigrams(yang [6]bool) (lower, upper Trigram) {
	bits := func(a, b, c bool) int {
		n := 0
		if a {
			n |= 1
		}
		if b {
			n |= 2
		}
		if c {
			n |= 4
		}
		return n
	}
	return trigramByBits[bits(yang[0], yang[1], yang[2])], trigramByBits[bits(yang[3], yang[4], yang[5])]
}
