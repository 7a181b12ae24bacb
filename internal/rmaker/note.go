package rmaker

import (
	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/score"
)

// cyclic returns s[i] reading s as an endless cycle.
func cyclic[T any](s []T, i int) T {
	n := len(s)
	return s[((i%n)+n)%n]
}

// Burnish recasts the leaves of the first and last divisions.
type Burnish struct {
	LeftKinds  []score.Kind
	LeftCount  int
	RightKinds []score.Kind
	RightCount int
}

func (b *Burnish) apply(lists [][]score.Component, tag string) {
	left, right := b.LeftCount, b.RightCount
	n := len(lists)
	switch {
	case left+right <= n:
	case left <= n:
		right = n - left
	default:
		left, right = n, 0
	}
	for i := 0; i < left && len(b.LeftKinds) > 0; i++ {
		cast(lists[i], cyclic(b.LeftKinds, i), tag)
	}
	for i := 0; i < right && len(b.RightKinds) > 0; i++ {
		cast(lists[n-right+i], cyclic(b.RightKinds, i), tag)
	}
	var all []score.Component
	for _, l := range lists {
		all = append(all, l...)
	}
	fixTies(score.Selection(all).Leaves())
}

func cast(cs []score.Component, kind score.Kind, tag string) {
	for _, l := range score.Selection(cs).Leaves() {
		l.Kind = kind
		l.Tag = tag
		if kind != score.NoteKind {
			l.Untie()
		}
	}
}

// fixTies drops ties and repeat ties that do not join two notes.
func fixTies(ls []*score.Leaf) {
	for i, l := range ls {
		if l.Tie && (!l.IsNote() || i+1 >= len(ls) || !ls[i+1].IsNote()) {
			l.Tie = false
		}
		if l.RepeatTie && (!l.IsNote() || i == 0 || !ls[i-1].IsNote()) {
			l.RepeatTie = false
		}
	}
}

// Note writes each division as one note, tied as needed.
type Note struct {
	Burnish *Burnish
}

func (g Note) Generate(divisions []duration.Division, ctx *Context) ([][]score.Component, error) {
	lm := ctx.Spelling.LeafMaker(ctx.Tag)
	lists := make([][]score.Component, 0, len(divisions))
	for _, div := range divisions {
		durations := ctx.Spelling.Durations(div)
		cs := lm.Make(score.NoteKind, durations...)
		if len(durations) > 1 {
			score.Tie(score.Selection(cs).Leaves(), ctx.Spelling.RepeatTies)
		}
		lists = append(lists, cs)
	}
	if g.Burnish != nil {
		g.Burnish.apply(lists, ctx.Tag)
	}
	return lists, nil
}
