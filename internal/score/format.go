package score

import (
	"fmt"
	"strings"

	"github.com/divVerent/rmakers/internal/duration"
)

// Format renders components in a compact LilyPond-like notation, e.g.
// `\tuplet 3/2 { c'8[ c'8 c'8] }`. Pitches are not modelled, so every note is c'.
func Format(cs []Component) string {
	var parts []string
	for _, c := range cs {
		parts = append(parts, formatComponent(c))
	}
	return strings.Join(parts, " ")
}

// FormatSelections renders each selection on its own line, separated by bar checks.
func FormatSelections(sels []Selection) string {
	var lines []string
	for _, s := range sels {
		lines = append(lines, Format(s)+" |")
	}
	return strings.Join(lines, "\n")
}

func formatComponent(c Component) string {
	switch c := c.(type) {
	case *Leaf:
		return formatLeaf(c)
	case *Tuplet:
		var prefix string
		if c.ForceFraction {
			prefix += `\tweak text #tuplet-number::calc-fraction-text `
		}
		if c.DurationBracket {
			prefix += fmt.Sprintf(`\tweak TupletNumber.text "%v" `, Duration(c))
		}
		n, d := c.Ratio()
		return fmt.Sprintf(`%s\tuplet %d/%d { %s }`, prefix, n, d, Format(c.Children))
	}
	return "?"
}

func formatLeaf(l *Leaf) string {
	var b strings.Builder
	if l.Grow != NoGrowth {
		dir := "left"
		if l.Grow == GrowRight {
			dir = "right"
		}
		fmt.Fprintf(&b, `\override Beam.grow-direction = #%s `, dir)
	}
	if l.BeamCount != nil {
		fmt.Fprintf(&b, `\set stemLeftBeamCount = %d \set stemRightBeamCount = %d `, l.BeamCount.Left, l.BeamCount.Right)
	}
	switch l.Kind {
	case NoteKind:
		b.WriteString("c'")
	case RestKind:
		b.WriteString("r")
	case MultimeasureRestKind:
		b.WriteString("R")
	case SkipKind:
		b.WriteString("s")
	}
	b.WriteString(WrittenString(l.Written))
	if !l.Multiplier.IsZero() {
		fmt.Fprintf(&b, " * %v", l.Multiplier)
	}
	if l.RepeatTie {
		b.WriteString(`\repeatTie`)
	}
	if l.Tie {
		b.WriteString("~")
	}
	if l.StartBeam {
		b.WriteString("[")
	}
	if l.StopBeam {
		b.WriteString("]")
	}
	return b.String()
}

// WrittenString returns the LilyPond duration of an assignable written duration.
func WrittenString(d duration.Duration) string {
	if !d.IsAssignable() {
		return fmt.Sprintf("(%v)", d)
	}
	base := d.Base()
	var s string
	switch {
	case base.Num() == 1:
		s = fmt.Sprint(base.Den())
	case base.Equal(duration.Int(2)):
		s = `\breve`
	case base.Equal(duration.Int(4)):
		s = `\longa`
	default:
		s = `\maxima`
	}
	return s + strings.Repeat(".", d.DotCount())
}
