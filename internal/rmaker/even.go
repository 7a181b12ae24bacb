package rmaker

import (
	"fmt"

	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/score"
)

// EvenDivision fills each division with notes of 1/denominator, adding extra
// notes to make tuplets. Denominators and extra counts continue across calls.
type EvenDivision struct {
	Denominators []int64
	ExtraCounts  []int64
}

func (g EvenDivision) Generate(divisions []duration.Division, ctx *Context) ([][]score.Component, error) {
	if len(g.Denominators) == 0 {
		return nil, fmt.Errorf("even division: no denominators")
	}
	for _, den := range g.Denominators {
		if !duration.IsPowerOfTwo(den) {
			return nil, fmt.Errorf("even division: denominator %d is not a power of two", den)
		}
	}
	extraCounts := g.ExtraCounts
	if len(extraCounts) == 0 {
		extraCounts = []int64{0}
	}
	consumed := ctx.Previous.DivisionsConsumed
	lm := ctx.Spelling.LeafMaker(ctx.Tag)
	lists := make([][]score.Component, 0, len(divisions))
	for i, div := range divisions {
		total := div.Duration()
		if !total.IsDyadic() {
			return nil, fmt.Errorf("even division: division %d (%v) is not dyadic", i, div)
		}
		unit := duration.New(1, cyclic(g.Denominators, i+consumed))
		var cs []score.Component
		var count int64
		if total.Less(unit.Scale(2)) {
			cs = lm.Make(score.NoteKind, total)
		} else {
			unprolated := max(total.Div(unit).Num()/total.Div(unit).Den(), 1)
			extra := cyclic(extraCounts, i+consumed)
			switch {
			case extra > 0:
				extra %= unprolated
			case extra < 0:
				extra = -((-extra) % ((unprolated + 1) / 2))
			}
			count = unprolated + extra
			for j := int64(0); j < count; j++ {
				n := score.NewLeaf(score.NoteKind, unit)
				n.Tag = ctx.Tag
				cs = append(cs, n)
			}
		}
		t := score.NewTuplet(total.Div(score.Selection(cs).Duration()), cs...)
		t.Tag = ctx.Tag
		// Show the tuplet as count notes in the time of some others.
		if count > 0 {
			if den := t.Multiplier.Den(); den < count && count%den == 0 {
				t.Denominator = t.Multiplier.Num() * (count / den)
			}
		}
		lists = append(lists, []score.Component{t})
	}
	return lists, nil
}
