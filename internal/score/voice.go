package score

import (
	"fmt"
	"slices"

	"github.com/divVerent/rmakers/internal/duration"
)

// Voice is the scratch container one call of a rhythm maker builds and rewrites.
type Voice struct {
	Components []Component
}

func NewVoice(cs ...Component) *Voice {
	v := &Voice{}
	v.SetComponents(cs)
	return v
}

// SetComponents replaces the top-level contents.
func (v *Voice) SetComponents(cs []Component) {
	v.Components = cs
	for _, c := range cs {
		c.setParent(nil)
	}
}

func (v *Voice) Leaves() []*Leaf {
	return leaves(v.Components, nil)
}

func (v *Voice) Tuplets() []*Tuplet {
	return tuplets(v.Components, nil)
}

func (v *Voice) Duration() duration.Duration {
	return Selection(v.Components).Duration()
}

// LogicalTies groups the leaves of the voice into logical ties.
func (v *Voice) LogicalTies() [][]*Leaf {
	return LogicalTies(v.Leaves())
}

// LogicalTies groups consecutive leaves joined by ties or repeat ties.
// Silent leaves always form their own group.
func LogicalTies(ls []*Leaf) [][]*Leaf {
	var out [][]*Leaf
	for i, l := range ls {
		if i > 0 && TiedTogether(ls[i-1], l) {
			out[len(out)-1] = append(out[len(out)-1], l)
			continue
		}
		out = append(out, []*Leaf{l})
	}
	return out
}

// TiedTogether reports whether next continues the logical tie of prev.
func TiedTogether(prev, next *Leaf) bool {
	return prev.IsNote() && next.IsNote() && (prev.Tie || next.RepeatTie)
}

// siblings returns the slice holding c.
func (v *Voice) siblings(c Component) *[]Component {
	if p := c.Parent(); p != nil {
		return &p.Children
	}
	return &v.Components
}

// Replace puts repl in place of the contiguous siblings old.
func (v *Voice) Replace(old []Component, repl []Component) {
	if len(old) == 0 {
		return
	}
	parent := old[0].Parent()
	list := v.siblings(old[0])
	i := slices.Index(*list, old[0])
	if i < 0 {
		panic(fmt.Sprintf("score.Voice.Replace: component %v not found", old[0]))
	}
	out := make([]Component, 0, len(*list)-len(old)+len(repl))
	out = append(out, (*list)[:i]...)
	out = append(out, repl...)
	out = append(out, (*list)[i+len(old):]...)
	*list = out
	for _, c := range repl {
		c.setParent(parent)
	}
}

// ReplaceLeaf swaps one leaf for another.
func (v *Voice) ReplaceLeaf(old *Leaf, repl ...Component) {
	v.Replace([]Component{old}, repl)
}

// Extract replaces a tuplet by its children. Only meaningful when the tuplet is trivial.
func (v *Voice) Extract(t *Tuplet) {
	v.Replace([]Component{t}, t.Children)
}

// Neighbors returns the leaves before and after l in the voice, or nil.
func (v *Voice) Neighbors(l *Leaf) (prev, next *Leaf) {
	ls := v.Leaves()
	i := slices.Index(ls, l)
	if i < 0 {
		return nil, nil
	}
	if i > 0 {
		prev = ls[i-1]
	}
	if i+1 < len(ls) {
		next = ls[i+1]
	}
	return prev, next
}

// Partition groups the top-level components into runs matching the given durations exactly.
func (v *Voice) Partition(durations []duration.Duration) ([]Selection, error) {
	out := make([]Selection, 0, len(durations))
	i := 0
	for j, target := range durations {
		var group Selection
		var sum duration.Duration
		for sum.Less(target) && i < len(v.Components) {
			c := v.Components[i]
			group = append(group, c)
			sum = sum.Add(c.Preprolated())
			i++
		}
		if !sum.Equal(target) {
			return nil, fmt.Errorf("music does not fit division %d: got %v, want %v", j, sum, target)
		}
		out = append(out, group)
	}
	if i != len(v.Components) {
		var rest duration.Duration
		for _, c := range v.Components[i:] {
			rest = rest.Add(c.Preprolated())
		}
		return nil, fmt.Errorf("music exceeds divisions by %v", rest)
	}
	return out, nil
}

// SplitAt splits the music at the given offsets from the start of the voice.
// Notes that straddle an offset become two tied parts if tie is set.
func (v *Voice) SplitAt(offsets []duration.Duration, tie bool) {
	for _, off := range offsets {
		left, right := splitComponents(v.Components, off, tie)
		v.SetComponents(append(left, right...))
	}
}

func splitComponents(cs []Component, at duration.Duration, tie bool) (left, right []Component) {
	var offset duration.Duration
	for i, c := range cs {
		stop := offset.Add(c.Preprolated())
		if !at.Less(stop) {
			left = append(left, c)
			offset = stop
			continue
		}
		if !offset.Less(at) {
			right = append(right, cs[i:]...)
			return left, right
		}
		local := at.Sub(offset)
		switch c := c.(type) {
		case *Leaf:
			l, r := c.split(local, tie)
			left = append(left, l...)
			right = append(right, r...)
		case *Tuplet:
			l, r := splitComponents(c.Children, local.Div(c.Multiplier), tie)
			lt := c.copyAttributes()
			lt.SetChildren(l)
			rt := c.copyAttributes()
			rt.SetChildren(r)
			left = append(left, lt)
			right = append(right, rt)
		}
		right = append(right, cs[i+1:]...)
		return left, right
	}
	return left, right
}

// split cuts a leaf at a preprolated offset.
func (l *Leaf) split(at duration.Duration, tie bool) (left, right []Component) {
	lw := at.Div(l.EffectiveMultiplier())
	rw := l.Written.Sub(lw)
	ls := l.respell(lw)
	rs := l.respell(rw)
	ls[0].RepeatTie = l.RepeatTie
	ls[0].StartBeam = l.StartBeam
	ls[len(ls)-1].Tie = tie && l.IsNote()
	rs[len(rs)-1].Tie = l.Tie
	rs[len(rs)-1].StopBeam = l.StopBeam
	for _, x := range ls {
		left = append(left, x)
	}
	for _, x := range rs {
		right = append(right, x)
	}
	return left, right
}

// respell returns leaves like l with the given total written duration.
func (l *Leaf) respell(written duration.Duration) []*Leaf {
	proto := l.Clone()
	proto.Untie()
	proto.Unbeam()
	if written.IsAssignable() {
		proto.Written = written
		return []*Leaf{proto}
	}
	if written.IsDyadic() {
		var out []*Leaf
		for _, n := range duration.CanonicParts(written.Num()) {
			x := proto.Clone()
			x.Written = duration.New(n, written.Den())
			out = append(out, x)
		}
		if l.IsNote() {
			for _, x := range out[:len(out)-1] {
				x.Tie = true
			}
		}
		return out
	}
	proto.Multiplier = l.EffectiveMultiplier().Mul(written).Div(l.Written)
	return []*Leaf{proto}
}

// Span is a leaf with its sounding start and stop offsets.
type Span struct {
	Leaf        *Leaf
	Start, Stop duration.Duration
}

// Spans lists the leaves below cs with offsets starting at start.
// cs must be siblings; their enclosing tuplets are taken into account.
func Spans(cs []Component, start duration.Duration) []Span {
	if len(cs) == 0 {
		return nil
	}
	prolation := duration.Int(1)
	for p := cs[0].Parent(); p != nil; p = p.Parent() {
		prolation = prolation.Mul(p.Multiplier)
	}
	return spans(cs, start, prolation, nil)
}

func spans(cs []Component, offset, prolation duration.Duration, out []Span) []Span {
	for _, c := range cs {
		d := c.Preprolated().Mul(prolation)
		switch c := c.(type) {
		case *Leaf:
			out = append(out, Span{Leaf: c, Start: offset, Stop: offset.Add(d)})
		case *Tuplet:
			out = spans(c.Children, offset, prolation.Mul(c.Multiplier), out)
		}
		offset = offset.Add(d)
	}
	return out
}
