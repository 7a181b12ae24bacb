package rmaker

import (
	"fmt"

	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/score"
)

// Tuplets divides each division by a proportion, e.g. [3 -1 2]. Negative parts
// are rests; zero parts are skipped.
type Tuplets struct {
	Proportions [][]int64
}

// powerOfTwoAtLeast returns the shortest power of two not less than d.
func powerOfTwoAtLeast(d duration.Duration) duration.Duration {
	p := duration.Int(1)
	for p.Less(d) {
		p = p.Scale(2)
	}
	half := duration.New(1, 2)
	for !p.Mul(half).Less(d) {
		p = p.Mul(half)
	}
	return p
}

func (g Tuplets) Generate(divisions []duration.Division, ctx *Context) ([][]score.Component, error) {
	if len(g.Proportions) == 0 {
		return nil, fmt.Errorf("tuplet: no proportions")
	}
	for _, p := range g.Proportions {
		if weight(p) == 0 {
			return nil, fmt.Errorf("tuplet: proportion %v has no weight", p)
		}
	}
	lm := ctx.Spelling.LeafMaker(ctx.Tag)
	lists := make([][]score.Component, 0, len(divisions))
	for i, div := range divisions {
		total := div.Duration()
		proportion := cyclic(g.Proportions, i)
		unit := powerOfTwoAtLeast(total.Div(duration.Int(weight(proportion))))
		var cs []score.Component
		for _, n := range proportion {
			switch {
			case n > 0:
				cs = append(cs, lm.Make(score.NoteKind, unit.Scale(n))...)
			case n < 0:
				cs = append(cs, lm.Make(score.RestKind, unit.Scale(-n))...)
			}
		}
		t := score.NewTuplet(total.Div(score.Selection(cs).Duration()), cs...)
		t.Tag = ctx.Tag
		t.NormalizeMultiplier()
		lists = append(lists, []score.Component{t})
	}
	return lists, nil
}
