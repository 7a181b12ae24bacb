package rmaker

import (
	"fmt"
	"slices"

	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/score"
)

// Talea reads a cycle of counts and cuts it into the divisions. Positive counts
// are notes and negative counts rests, in units of 1/Denominator.
type Talea struct {
	Counts      []int64
	Denominator int64
	// Preamble is read once before the counts.
	Preamble []int64
	// EndCounts replace the end of the last division.
	EndCounts []int64
	// ExtraCounts are added to each division's length, making tuplets.
	ExtraCounts []int64
	// Advance skips this much weight of the talea.
	Advance int64
	// ReadOnce fails instead of reading the counts more than once.
	ReadOnce bool
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func weight(counts []int64) int64 {
	var w int64
	for _, c := range counts {
		w += abs(c)
	}
	return w
}

func scaled(counts []int64, k int64) []int64 {
	out := make([]int64, len(counts))
	for i, c := range counts {
		out[i] = c * k
	}
	return out
}

func (t Talea) Validate() error {
	if !duration.IsPowerOfTwo(t.Denominator) {
		return fmt.Errorf("talea denominator %d is not a power of two", t.Denominator)
	}
	if weight(t.Counts) == 0 {
		return fmt.Errorf("talea %v has no weight", t.Counts)
	}
	for _, counts := range [][]int64{t.Counts, t.Preamble, t.EndCounts} {
		if slices.Contains(counts, 0) {
			return fmt.Errorf("talea %v contains a zero count", counts)
		}
	}
	if t.Advance < 0 {
		return fmt.Errorf("negative talea advance %d", t.Advance)
	}
	return nil
}

// splitOff cuts the first w of weight off seq, splitting a count if needed.
func splitOff(seq []piece, w int64) (head, tail []piece) {
	var acc int64
	for i, p := range seq {
		if acc == w {
			return head, append(tail, seq[i:]...)
		}
		if acc+abs(p.n) <= w {
			head = append(head, p)
			acc += abs(p.n)
			continue
		}
		sign := p.n / abs(p.n)
		first := w - acc
		head = append(head, piece{sign * first, p.src})
		tail = append(tail, piece{sign * (abs(p.n) - first), p.src})
		return head, append(tail, seq[i+1:]...)
	}
	return head, tail
}

// advanced returns the talea as it continues after weight w has been read.
func (t Talea) advanced(w int64) Talea {
	if w <= 0 {
		return t
	}
	pw := weight(t.Preamble)
	out := t
	var seq []int64
	switch {
	case w < pw:
		seq = t.Preamble
	case w == pw:
		out.Preamble = nil
		return out
	default:
		w -= pw
		seq = slices.Clone(t.Counts)
		for weight(seq) < w {
			seq = append(seq, t.Counts...)
		}
	}
	_, tail := splitOff(pieces(seq, new(int)), w)
	out.Preamble = nil
	for _, p := range tail {
		out.Preamble = append(out.Preamble, p.n)
	}
	return out
}

// contains reports whether reading weight w of the talea ends on a count boundary.
func (t Talea) contains(w int64) bool {
	var acc int64
	for _, c := range t.Preamble {
		acc += abs(c)
		if acc == w {
			return true
		}
	}
	if w < acc {
		return false
	}
	period := weight(t.Counts)
	w = ((w-acc)%period + period) % period
	acc = 0
	for _, c := range t.Counts {
		if acc == w {
			return true
		}
		acc += abs(c)
	}
	return false
}

// piece is a count or a part of one. Parts of the same count share src.
type piece struct {
	n   int64
	src int
}

func pieces(counts []int64, next *int) []piece {
	out := make([]piece, len(counts))
	for i, c := range counts {
		out[i] = piece{c, *next}
		*next++
	}
	return out
}

// splitByWeights cuts seq into consecutive runs of the given weights.
func splitByWeights(seq []piece, weights []int64) [][]piece {
	out := make([][]piece, len(weights))
	for i, w := range weights {
		out[i], seq = splitOff(seq, w)
	}
	return out
}

// prolate adds extra to a division of num units, keeping the result positive.
func prolate(num, extra int64) int64 {
	if extra >= 0 {
		return num + extra%num
	}
	return num - (-extra)%num
}

func (g Talea) Generate(divisions []duration.Division, ctx *Context) ([][]score.Component, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	consumed := ctx.Previous.DivisionsConsumed
	prevWeight, prevDen := int64(ctx.Previous.TaleaWeightConsumed), int64(ctx.Previous.TaleaWeightDenominator)
	if prevDen <= 0 {
		prevDen = g.Denominator
	}

	// Work in units of the finest denominator involved, so that the weight
	// read by earlier calls is exact.
	lcd := duration.LCM(g.Denominator, prevDen)
	for _, d := range divisions {
		lcd = duration.LCM(lcd, d.Duration().Den())
	}
	k := lcd / g.Denominator
	talea := Talea{Counts: scaled(g.Counts, k), Preamble: scaled(g.Preamble, k)}.
		advanced(g.Advance * k).
		advanced(prevWeight * (lcd / prevDen))
	durations := make([]duration.Duration, len(divisions))
	weights := make([]int64, len(divisions))
	var total int64
	for i, d := range divisions {
		durations[i] = d.Duration()
		num := durations[i].Num() * (lcd / durations[i].Den())
		if len(g.ExtraCounts) > 0 {
			num = prolate(num, cyclic(g.ExtraCounts, i+consumed)*k)
		}
		weights[i] = num
		total += num
	}

	preamble, counts := talea.Preamble, talea.Counts
	pw := weight(preamble)
	if g.ReadOnce && pw+weight(counts) < total {
		return nil, fmt.Errorf("talea %v with preamble %v is too short to read %d/%d once", g.Counts, g.Preamble, total, lcd)
	}
	src := 0
	var seq []piece
	if total <= pw {
		seq, _ = splitOff(pieces(preamble, &src), total)
	} else {
		seq = pieces(preamble, &src)
		var rest []piece
		for w := int64(0); w < total-pw; {
			for _, p := range pieces(counts, &src) {
				rest = append(rest, p)
				w += abs(p.n)
			}
		}
		rest, _ = splitOff(rest, total-pw)
		seq = append(seq, rest...)
	}
	if len(g.EndCounts) > 0 {
		end := scaled(g.EndCounts, k)
		if weight(end) > total {
			return nil, fmt.Errorf("end counts %v are longer than the divisions", g.EndCounts)
		}
		seq, _ = splitOff(seq, total-weight(end))
		seq = append(seq, pieces(end, &src)...)
	}

	lm := ctx.Spelling.LeafMaker(ctx.Tag)
	lists := make([][]score.Component, 0, len(divisions))
	var tuplets []*score.Tuplet
	var prev *piece
	var prevLast *score.Leaf
	for i, run := range splitByWeights(seq, weights) {
		var cs []score.Component
		for j := range run {
			p := &run[j]
			kind := score.NoteKind
			if p.n < 0 {
				kind = score.RestKind
			}
			made := lm.Make(kind, duration.New(abs(p.n), lcd))
			ls := score.Selection(made).Leaves()
			if prev != nil && prev.src == p.src && kind == score.NoteKind && prevLast.IsNote() {
				if ctx.Spelling.RepeatTies {
					ls[0].RepeatTie = true
				} else {
					prevLast.Tie = true
				}
			}
			prev, prevLast = p, ls[len(ls)-1]
			cs = append(cs, made...)
		}
		multiplier := duration.Int(1)
		if len(g.ExtraCounts) > 0 {
			multiplier = durations[i].Div(score.Selection(cs).Duration())
		}
		t := score.NewTuplet(multiplier, cs...)
		t.Tag = ctx.Tag
		tuplets = append(tuplets, t)
		lists = append(lists, []score.Component{t})
	}
	for _, t := range tuplets {
		t.NormalizeMultiplier()
	}

	read := prevWeight*(lcd/prevDen) + total
	// Reduce while staying in multiples of the talea's own unit.
	r := duration.GCD(read, k)
	ctx.State.TaleaWeightConsumed = int(read / r)
	ctx.State.TaleaWeightDenominator = int(lcd / r)
	full := Talea{Counts: counts, Preamble: preamble}
	if !full.contains(total) && prevLast != nil && prevLast.IsNote() {
		ctx.State.IncompleteLastNote = true
		if !ctx.Spelling.RepeatTies {
			prevLast.Tie = true
		}
	}
	if ctx.Previous.IncompleteLastNote && ctx.Spelling.RepeatTies {
		if ls := score.Selection(lists[0]).Leaves(); len(ls) > 0 && ls[0].IsNote() {
			ls[0].RepeatTie = true
		}
	}
	return lists, nil
}
