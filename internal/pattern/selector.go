package pattern

import (
	"slices"

	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/score"
)

// Target is the music a selector runs on.
type Target struct {
	Voice     *score.Voice
	Divisions []duration.Duration
	// Previous is the number of logical ties earlier calls produced.
	Previous int
}

// Group is a run of leaves picked as one item.
type Group = []*score.Leaf

// Selector picks items from a voice. Filters apply in the order they were added.
type Selector[T any] struct {
	source func(Target) []T
	// continued items keep counting across calls, so patterns see index+Previous.
	continued bool
	filters   []func([]T, Target) []T
}

// IsZero reports whether the selector was never set up.
func (s Selector[T]) IsZero() bool {
	return s.source == nil
}

// Select evaluates the selector.
func (s Selector[T]) Select(t Target) []T {
	if s.source == nil {
		return nil
	}
	items := s.source(t)
	for _, f := range s.filters {
		items = f(items, t)
	}
	return items
}

func (s Selector[T]) with(f func([]T, Target) []T) Selector[T] {
	s.filters = append(slices.Clone(s.filters), f)
	return s
}

// Get keeps the items matched by p.
func (s Selector[T]) Get(p Pattern) Selector[T] {
	continued := s.continued && len(s.filters) == 0
	return s.with(func(items []T, t Target) []T {
		offset := 0
		if continued {
			offset = t.Previous
		}
		var out []T
		for i, item := range items {
			if p.Matches(i+offset, len(items)+offset, 0) {
				out = append(out, item)
			}
		}
		return out
	})
}

// Exclude drops the items matched by p.
func (s Selector[T]) Exclude(p Pattern) Selector[T] {
	return s.Get(p.Inverse())
}

// Slice keeps items[start:stop]; negative values count from the end.
// Use End as stop to keep everything from start on.
func (s Selector[T]) Slice(start, stop int) Selector[T] {
	return s.with(func(items []T, _ Target) []T {
		n := len(items)
		a, b := start, stop
		if a < 0 {
			a += n
		}
		if b < 0 {
			b += n
		}
		a = min(max(a, 0), n)
		b = min(max(b, 0), n)
		if a >= b {
			return nil
		}
		return items[a:b]
	})
}

// End as the stop of Slice means the end of the items.
const End = int(^uint(0) >> 1)

// Index keeps the single item i; negative values count from the end.
func (s Selector[T]) Index(i int) Selector[T] {
	if i == -1 {
		return s.Slice(-1, End)
	}
	return s.Slice(i, i+1)
}

// Filter keeps the items for which keep returns true.
func (s Selector[T]) Filter(keep func(T) bool) Selector[T] {
	return s.with(func(items []T, _ Target) []T {
		var out []T
		for _, item := range items {
			if keep(item) {
				out = append(out, item)
			}
		}
		return out
	})
}

// Nontrivial keeps groups of more than one leaf.
func Nontrivial(s Selector[Group]) Selector[Group] {
	return s.Filter(func(g Group) bool { return len(g) > 1 })
}

// Flatten concatenates the groups.
func Flatten(groups []Group) []*score.Leaf {
	var out []*score.Leaf
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func singles(ls []*score.Leaf, keep func(*score.Leaf) bool) []Group {
	var out []Group
	for _, l := range ls {
		if keep(l) {
			out = append(out, Group{l})
		}
	}
	return out
}

// LogicalTies selects each logical tie. Patterns on it continue across calls.
func LogicalTies() Selector[Group] {
	return Selector[Group]{
		source: func(t Target) []Group {
			return t.Voice.LogicalTies()
		},
		continued: true,
	}
}

// Leaves selects each leaf on its own.
func Leaves() Selector[Group] {
	return Selector[Group]{source: func(t Target) []Group {
		return singles(t.Voice.Leaves(), func(*score.Leaf) bool { return true })
	}}
}

// Notes selects each note on its own.
func Notes() Selector[Group] {
	return Selector[Group]{source: func(t Target) []Group {
		return singles(t.Voice.Leaves(), (*score.Leaf).IsNote)
	}}
}

// Rests selects each silent leaf on its own.
func Rests() Selector[Group] {
	return Selector[Group]{source: func(t Target) []Group {
		return singles(t.Voice.Leaves(), func(l *score.Leaf) bool { return l.Kind.Silent() })
	}}
}

// Divisions selects the leaves of each division.
func Divisions() Selector[Group] {
	return Selector[Group]{source: func(t Target) []Group {
		out := make([]Group, len(t.Divisions))
		spans := score.Spans(t.Voice.Components, duration.Duration{})
		var start duration.Duration
		j := 0
		for i, d := range t.Divisions {
			stop := start.Add(d)
			for j < len(spans) && spans[j].Start.Less(stop) {
				out[i] = append(out[i], spans[j].Leaf)
				j++
			}
			start = stop
		}
		return slices.DeleteFunc(out, func(g Group) bool { return len(g) == 0 })
	}}
}

// TupletLeaves selects the leaves of each top-level tuplet.
func TupletLeaves() Selector[Group] {
	return Selector[Group]{source: func(t Target) []Group {
		var out []Group
		for _, c := range t.Voice.Components {
			if tup, ok := c.(*score.Tuplet); ok {
				out = append(out, tup.Leaves())
			}
		}
		return out
	}}
}

// Tuplets selects every tuplet, outer before inner.
func Tuplets() Selector[*score.Tuplet] {
	return Selector[*score.Tuplet]{source: func(t Target) []*score.Tuplet {
		return t.Voice.Tuplets()
	}}
}

// TopLevelTuplets selects the tuplets directly in the voice.
func TopLevelTuplets() Selector[*score.Tuplet] {
	return Selector[*score.Tuplet]{source: func(t Target) []*score.Tuplet {
		var out []*score.Tuplet
		for _, c := range t.Voice.Components {
			if tup, ok := c.(*score.Tuplet); ok {
				out = append(out, tup)
			}
		}
		return out
	}}
}
