package score

import (
	"fmt"
	"slices"

	"github.com/divVerent/rmakers/internal/duration"
)

// LeafMaker spells durations as leaves.
type LeafMaker struct {
	// ForbiddenNote, if set, is the shortest note duration that must not be written;
	// longer notes are broken into tied halves of it.
	ForbiddenNote duration.Duration
	// ForbiddenRest is the same for rests.
	ForbiddenRest duration.Duration
	// IncreaseMonotonic writes the shorter parts of a tied note first.
	IncreaseMonotonic bool
	// RepeatTies joins the parts with repeat ties instead of ties.
	RepeatTies bool
	// MultimeasureRests makes each rest a single multimeasure rest.
	MultimeasureRests bool
	Tag               string
}

// Make spells each duration as leaves of the given kind. Durations with a
// denominator that is not a power of two are wrapped in a tuplet.
func (m LeafMaker) Make(kind Kind, durations ...duration.Duration) []Component {
	var out []Component
	for _, d := range durations {
		if d.Sign() <= 0 {
			panic(fmt.Sprintf("score.LeafMaker.Make: non-positive duration %v", d))
		}
		if kind.Silent() && m.MultimeasureRests {
			r := NewLeaf(MultimeasureRestKind, duration.Int(1))
			r.Multiplier = d
			r.Tag = m.Tag
			out = append(out, r)
			continue
		}
		if d.IsDyadic() {
			for _, l := range m.TiedLeaves(kind, d) {
				out = append(out, l)
			}
			continue
		}
		den := d.Den()
		multiplier := duration.New(duration.GreatestPowerOfTwoLE(den), den)
		var children []Component
		for _, l := range m.TiedLeaves(kind, d.Div(multiplier)) {
			children = append(children, l)
		}
		t := NewTuplet(multiplier, children...)
		t.Tag = m.Tag
		out = append(out, t)
	}
	return out
}

// TiedLeaves spells a dyadic duration as tied leaves without tuplets.
func (m LeafMaker) TiedLeaves(kind Kind, d duration.Duration) []*Leaf {
	forbidden := m.ForbiddenNote
	if kind.Silent() {
		forbidden = m.ForbiddenRest
	}
	num, den := d.Num(), d.Den()
	var numerators []int64
	if !forbidden.IsZero() && !d.Less(forbidden) {
		l := duration.LCM(2*forbidden.Den(), den)
		forbiddenNum := forbidden.Num() * (l / forbidden.Den())
		num *= l / den
		den = l
		preferred := forbiddenNum / 2
		for _, part := range duration.CanonicParts(num) {
			if part >= forbiddenNum {
				numerators = append(numerators, partitionLessThanDouble(part, preferred)...)
			} else {
				numerators = append(numerators, part)
			}
		}
	} else {
		numerators = duration.CanonicParts(num)
	}
	if m.IncreaseMonotonic {
		slices.Reverse(numerators)
	}
	out := make([]*Leaf, 0, len(numerators))
	for _, n := range numerators {
		for _, part := range duration.CanonicParts(n) {
			l := NewLeaf(kind, duration.New(part, den))
			l.Tag = m.Tag
			out = append(out, l)
		}
	}
	if kind == NoteKind {
		Tie(out, m.RepeatTies)
	}
	return out
}

// Tie joins the leaves into one logical tie.
func Tie(ls []*Leaf, repeat bool) {
	for i := 1; i < len(ls); i++ {
		if repeat {
			ls[i].RepeatTie = true
		} else {
			ls[i-1].Tie = true
		}
	}
}

// partitionLessThanDouble splits n into parts of m, with a final part in [m, 2m).
func partitionLessThanDouble(n, m int64) []int64 {
	var out []int64
	for 2*m <= n {
		out = append(out, m)
		n -= m
	}
	return append(out, n)
}
