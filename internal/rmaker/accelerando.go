package rmaker

import (
	"errors"
	"fmt"

	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/interpolate"
	"github.com/divVerent/rmakers/internal/score"
)

// accelerandoDenominator is the grid interpolated durations are rounded to.
const accelerandoDenominator = 1024

// Accelerando writes each division as a 1:1 tuplet of equally written notes
// whose multipliers follow an interpolation.
type Accelerando struct {
	// Interpolations are used in turn, continuing across calls.
	Interpolations []Interpolation
	// Curve defaults to cosine.
	Curve interpolate.Curve
}

func (g Accelerando) Generate(divisions []duration.Division, ctx *Context) ([][]score.Component, error) {
	interpolations := g.Interpolations
	if len(interpolations) == 0 {
		interpolations = []Interpolation{DefaultInterpolation()}
	}
	for _, in := range interpolations {
		if err := in.Validate(); err != nil {
			return nil, err
		}
	}
	curve := g.Curve
	if curve == nil {
		curve = interpolate.CosineCurve{}
	}
	lists := make([][]score.Component, 0, len(divisions))
	for i, div := range divisions {
		in := cyclic(interpolations, i+ctx.Previous.DivisionsConsumed)
		t, err := accelerando(div.Duration(), in, curve, ctx)
		if err != nil {
			return nil, fmt.Errorf("division %d: %w", i, err)
		}
		lists = append(lists, []score.Component{t})
	}
	return lists, nil
}

func accelerando(total duration.Duration, in Interpolation, curve interpolate.Curve, ctx *Context) (*score.Tuplet, error) {
	values, err := interpolate.Divide(total.Float64(), in.Start.Float64(), in.Stop.Float64(), curve)
	var durations []duration.Duration
	if err == nil {
		durations, err = interpolate.Exact(values, total, accelerandoDenominator)
	}
	if errors.Is(err, interpolate.ErrTooSmall) {
		t := score.NewTuplet(duration.Int(1), ctx.Spelling.LeafMaker(ctx.Tag).Make(score.NoteKind, total)...)
		t.Tag = ctx.Tag
		return t, nil
	}
	if err != nil {
		return nil, err
	}
	var notes []score.Component
	for _, d := range durations {
		n := score.NewLeaf(score.NoteKind, in.Written)
		if m := d.Div(in.Written); !m.Equal(duration.Int(1)) {
			n.Multiplier = m
		}
		n.Tag = ctx.Tag
		notes = append(notes, n)
	}
	t := score.NewTuplet(duration.Int(1), notes...)
	t.Tag = ctx.Tag
	return t, nil
}
