package meter

import (
	"fmt"
	"slices"

	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/score"
)

// maxDepth bounds the subdivision of offsets for durations that never become assignable.
const maxDepth = 16

type RewriteOptions struct {
	// ReferenceMeters replace any meter with the same time signature.
	ReferenceMeters []Meter
	// BoundaryDepth, if set, keeps logical ties from crossing offsets of that depth
	// unless they start and stop on such offsets.
	BoundaryDepth *int
	// RepeatTies joins respelled notes with repeat ties.
	RepeatTies bool
}

// Boundaries returns the interior measure boundaries of the meters.
func Boundaries(durations []duration.Duration) []duration.Duration {
	var out []duration.Duration
	var off duration.Duration
	for _, d := range durations[:max(len(durations)-1, 0)] {
		off = off.Add(d)
		out = append(out, off)
	}
	return out
}

// Rewrite splits the voice into the measures of meters and respells each measure so
// that its logical ties follow the beat hierarchy. Tuplets are left alone. Afterwards
// each beat whose leaves fill it exactly is beamed.
func Rewrite(v *score.Voice, meters []Meter, opts RewriteOptions) error {
	var total duration.Duration
	meters = slices.Clone(meters)
	durations := make([]duration.Duration, len(meters))
	for i, m := range meters {
		for _, ref := range opts.ReferenceMeters {
			if ref.Pair == m.Pair {
				meters[i] = ref
				break
			}
		}
		durations[i] = m.Duration()
		total = total.Add(durations[i])
	}
	if music := v.Duration(); !music.Equal(total) {
		return fmt.Errorf("meter duration %v does not match music duration %v", total, music)
	}
	v.SplitAt(Boundaries(durations), true)
	measures, err := v.Partition(durations)
	if err != nil {
		return fmt.Errorf("could not group music by measure: %v", err)
	}
	var out []score.Component
	for i, measure := range measures {
		for _, c := range measure {
			if l, ok := c.(*score.Leaf); ok {
				l.Unbeam()
			}
		}
		r := rewriter{inventory: meters[i].DepthwiseOffsets(), opts: opts}
		measures[i] = r.measure(measure)
		out = append(out, measures[i]...)
	}
	v.SetComponents(out)
	for i, measure := range measures {
		beats := meters[i].DepthwiseOffsets()[1]
		for _, group := range score.BeatGroups(score.Spans(measure, duration.Duration{}), beats) {
			if len(group) > 0 {
				score.Beam(group, false, false)
			}
		}
	}
	return nil
}

type rewriter struct {
	inventory [][]duration.Duration
	opts      RewriteOptions
}

// offsetsAt returns the offsets of a depth, halving the deepest known level as needed.
func (r *rewriter) offsetsAt(depth int) []duration.Duration {
	for len(r.inventory) <= depth {
		last := r.inventory[len(r.inventory)-1]
		var next []duration.Duration
		for i := 0; i+1 < len(last); i++ {
			half := last[i+1].Sub(last[i]).Div(duration.Int(2))
			next = append(next, last[i], last[i].Add(half))
		}
		next = append(next, last[len(last)-1])
		r.inventory = append(r.inventory, next)
	}
	return r.inventory[depth]
}

func contains(offsets []duration.Duration, d duration.Duration) bool {
	return slices.ContainsFunc(offsets, d.Equal)
}

// splitOffset finds an offset strictly between start and stop; the latest one if
// fromEnd is set.
func splitOffset(offsets []duration.Duration, start, stop duration.Duration, fromEnd bool) (duration.Duration, bool) {
	n := len(offsets)
	for i := range offsets {
		o := offsets[i]
		if fromEnd {
			o = offsets[n-1-i]
		}
		if start.Less(o) && o.Less(stop) {
			return o, true
		}
	}
	return duration.Duration{}, false
}

// segments returns the durations a logical tie from start to stop is respelled as.
func (r *rewriter) segments(start, stop duration.Duration, depth int) []duration.Duration {
	dur := stop.Sub(start)
	offsets := r.offsetsAt(depth)
	startsIn, stopsIn := contains(offsets, start), contains(offsets, stop)
	if !dur.IsAssignable() || !(startsIn || stopsIn) {
		if depth >= maxDepth {
			return []duration.Duration{dur}
		}
		if split, ok := splitOffset(offsets, start, stop, startsIn); ok {
			return append(r.segments(start, split, depth), r.segments(split, stop, depth)...)
		}
		return r.segments(start, stop, depth+1)
	}
	if r.opts.BoundaryDepth != nil {
		boundaries := r.offsetsAt(*r.opts.BoundaryDepth)
		if !(contains(boundaries, start) && contains(boundaries, stop)) {
			if split, ok := splitOffset(boundaries, start, stop, contains(boundaries, start)); ok {
				return append(r.segments(start, split, depth), r.segments(split, stop, depth)...)
			}
		}
	}
	return []duration.Duration{dur}
}

// sameGroup reports whether next continues the rewrite group ending in prev.
func sameGroup(prev, next *score.Leaf) bool {
	if prev.IsNote() || next.IsNote() {
		return score.TiedTogether(prev, next)
	}
	return prev.Kind == next.Kind
}

// measure respells the top-level components of one measure.
func (r *rewriter) measure(cs []score.Component) []score.Component {
	var out []score.Component
	var group []*score.Leaf
	var offset, groupStart duration.Duration
	flush := func() {
		if len(group) > 0 {
			out = append(out, r.group(group, groupStart)...)
			group = nil
		}
	}
	for _, c := range cs {
		switch c := c.(type) {
		case *score.Leaf:
			switch {
			case !c.Multiplier.IsZero() || c.Kind == score.MultimeasureRestKind:
				flush()
				out = append(out, c)
			case len(group) > 0 && sameGroup(group[len(group)-1], c):
				group = append(group, c)
			default:
				flush()
				groupStart = offset
				group = []*score.Leaf{c}
			}
		default:
			flush()
			out = append(out, c)
		}
		offset = offset.Add(c.Preprolated())
	}
	flush()
	return out
}

// group respells one logical tie, or one run of rests, starting at start.
func (r *rewriter) group(group []*score.Leaf, start duration.Duration) []score.Component {
	var total duration.Duration
	for _, l := range group {
		total = total.Add(l.Written)
	}
	segs := r.segments(start, start.Add(total), 0)
	out := make([]score.Component, 0, len(segs))
	if len(segs) == len(group) {
		same := true
		for i, s := range segs {
			same = same && s.Equal(group[i].Written)
		}
		if same {
			for _, l := range group {
				out = append(out, l)
			}
			return out
		}
	}
	first, last := group[0], group[len(group)-1]
	var leaves []*score.Leaf
	for _, s := range segs {
		if s.IsDyadic() && !s.IsAssignable() {
			leaves = append(leaves, score.LeafMaker{}.TiedLeaves(first.Kind, s)...)
			continue
		}
		l := first.Clone()
		l.Untie()
		l.Unbeam()
		l.Written = s
		leaves = append(leaves, l)
	}
	for _, l := range leaves {
		l.Untie()
		l.Tag = first.Tag
	}
	if first.IsNote() {
		score.Tie(leaves, r.opts.RepeatTies)
		leaves[0].RepeatTie = leaves[0].RepeatTie || first.RepeatTie
		leaves[len(leaves)-1].Tie = last.Tie
	}
	for _, l := range leaves {
		out = append(out, l)
	}
	return out
}
