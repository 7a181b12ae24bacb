package rmaker

import (
	"fmt"
	"slices"

	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/score"
)

// Incised cuts a prefix and a suffix out of each division and fills the
// body between them. Talea counts are in units of 1/TaleaDenominator;
// negative counts are rests.
type Incised struct {
	PrefixTalea  []int64
	PrefixCounts []int
	SuffixTalea  []int64
	SuffixCounts []int
	// BodyProportion divides the body; it defaults to one note.
	BodyProportion   []int64
	FillWithRests    bool
	OuterTupletsOnly bool
	ExtraCounts      []int64
	TaleaDenominator int64
}

func (g Incised) Validate() error {
	if !duration.IsPowerOfTwo(g.TaleaDenominator) {
		return fmt.Errorf("incised: talea denominator %d is not a power of two", g.TaleaDenominator)
	}
	if len(g.PrefixTalea) > 0 && len(g.PrefixCounts) == 0 {
		return fmt.Errorf("incised: prefix talea without prefix counts")
	}
	if len(g.SuffixTalea) > 0 && len(g.SuffixCounts) == 0 {
		return fmt.Errorf("incised: suffix talea without suffix counts")
	}
	for _, c := range append(append([]int{}, g.PrefixCounts...), g.SuffixCounts...) {
		if c < 0 {
			return fmt.Errorf("incised: negative count %d", c)
		}
	}
	for _, talea := range [][]int64{g.PrefixTalea, g.SuffixTalea} {
		if slices.Contains(talea, 0) {
			return fmt.Errorf("incised: talea %v contains a zero count", talea)
		}
	}
	if len(g.BodyProportion) > 0 && weight(g.BodyProportion) == 0 {
		return fmt.Errorf("incised: body proportion %v has no weight", g.BodyProportion)
	}
	return nil
}

// cyclicSlice reads n items of s from start on, wrapping around.
func cyclicSlice(s []int64, start, n int) []int64 {
	if len(s) == 0 {
		return nil
	}
	out := make([]int64, n)
	for i := range out {
		out[i] = cyclic(s, start+i)
	}
	return out
}

// truncate keeps the first w of weight of counts.
func truncate(counts []int64, w int64) []int64 {
	var out []int64
	for _, c := range counts {
		if w <= 0 {
			break
		}
		if abs(c) > w {
			c = c / abs(c) * w
		}
		out = append(out, c)
		w -= abs(c)
	}
	return out
}

// body returns the middle of a division as rationals in units of the lcd.
func (g Incised) body(middle int64) []duration.Duration {
	if middle <= 0 {
		return nil
	}
	if g.FillWithRests {
		return []duration.Duration{duration.Int(-middle)}
	}
	if g.OuterTupletsOnly || len(g.BodyProportion) == 0 {
		return []duration.Duration{duration.Int(middle)}
	}
	total := weight(g.BodyProportion)
	var out []duration.Duration
	for _, p := range g.BodyProportion {
		out = append(out, duration.New(middle*p, total))
	}
	return out
}

func (g Incised) durationList(numerator int64, prefix, suffix []int64) []duration.Duration {
	pw, sw := weight(prefix), weight(suffix)
	if numerator < pw {
		prefix = truncate(prefix, numerator)
	}
	switch space := numerator - pw; {
	case space <= 0:
		suffix = nil
	case space < sw:
		suffix = truncate(suffix, space)
	}
	var out []duration.Duration
	for _, c := range prefix {
		out = append(out, duration.Int(c))
	}
	out = append(out, g.body(numerator-pw-sw)...)
	for _, c := range suffix {
		out = append(out, duration.Int(c))
	}
	return out
}

func (g Incised) Generate(divisions []duration.Division, ctx *Context) ([][]score.Component, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	lcd := g.TaleaDenominator
	for _, d := range divisions {
		lcd = duration.LCM(lcd, d.Duration().Den())
	}
	k := lcd / g.TaleaDenominator
	prefixTalea, suffixTalea := scaled(g.PrefixTalea, k), scaled(g.SuffixTalea, k)
	extraCounts := scaled(g.ExtraCounts, k)
	if len(extraCounts) == 0 {
		extraCounts = []int64{0}
	}
	prefixCounts, suffixCounts := g.PrefixCounts, g.SuffixCounts
	if len(prefixCounts) == 0 {
		prefixCounts = []int{0}
	}
	if len(suffixCounts) == 0 {
		suffixCounts = []int{0}
	}

	n := len(divisions)
	numerators := make([]int64, n)
	for i, d := range divisions {
		dur := d.Duration()
		num := dur.Num() * (lcd / dur.Den())
		numerators[i] = prolate(num, cyclic(extraCounts, i))
	}
	lists := make([][]duration.Duration, n)
	if g.OuterTupletsOnly {
		prefix := cyclicSlice(prefixTalea, 0, prefixCounts[0])
		suffix := cyclicSlice(suffixTalea, 0, suffixCounts[0])
		for i := range divisions {
			var p, s []int64
			if i == 0 {
				p = prefix
			}
			if i == n-1 {
				s = suffix
			}
			lists[i] = g.durationList(numerators[i], p, s)
		}
	} else {
		var pi, si int
		for i := range divisions {
			pc, sc := cyclic(prefixCounts, i), cyclic(suffixCounts, i)
			lists[i] = g.durationList(numerators[i], cyclicSlice(prefixTalea, pi, pc), cyclicSlice(suffixTalea, si, sc))
			pi += pc
			si += sc
		}
	}

	lm := ctx.Spelling.LeafMaker(ctx.Tag)
	unit := duration.New(1, lcd)
	out := make([][]score.Component, 0, n)
	for i, list := range lists {
		var cs []score.Component
		for _, d := range list {
			switch d.Sign() {
			case 1:
				cs = append(cs, lm.Make(score.NoteKind, d.Mul(unit))...)
			case -1:
				cs = append(cs, lm.Make(score.RestKind, d.Neg().Mul(unit))...)
			}
		}
		total := divisions[i].Duration()
		t := score.NewTuplet(total.Div(score.Selection(cs).Duration()), cs...)
		t.Tag = ctx.Tag
		t.NormalizeMultiplier()
		out = append(out, []score.Component{t})
	}
	return out, nil
}
