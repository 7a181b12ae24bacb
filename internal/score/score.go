// Package score is the in-memory notation model the rhythm makers build and rewrite:
// leaves with written durations and optional multipliers, tuplets and a flat voice.
package score

import (
	"github.com/divVerent/rmakers/internal/duration"
)

type Kind int

const (
	NoteKind Kind = iota
	RestKind
	MultimeasureRestKind
	SkipKind
)

func (k Kind) String() string {
	switch k {
	case NoteKind:
		return "note"
	case RestKind:
		return "rest"
	case MultimeasureRestKind:
		return "multimeasure_rest"
	case SkipKind:
		return "skip"
	}
	return "unknown"
}

// Silent reports whether leaves of this kind sound no pitch.
func (k Kind) Silent() bool {
	return k != NoteKind
}

// GrowDirection is the feathering of a beam.
type GrowDirection int

const (
	NoGrowth GrowDirection = iota
	GrowLeft
	GrowRight
)

// BeamCount overrides the number of beams a leaf shows on each side.
type BeamCount struct {
	Left, Right int
}

// Component is a leaf or a tuplet.
type Component interface {
	// Preprolated returns the duration before enclosing tuplets scale it.
	Preprolated() duration.Duration
	Parent() *Tuplet
	setParent(p *Tuplet)
}

// Leaf is a note, rest, multimeasure rest or skip.
type Leaf struct {
	Kind    Kind
	Written duration.Duration
	// Multiplier scales the written duration; zero means none.
	Multiplier duration.Duration

	Tie       bool
	RepeatTie bool

	StartBeam bool
	StopBeam  bool
	BeamCount *BeamCount
	Grow      GrowDirection

	Tag string

	parent *Tuplet
}

func NewLeaf(kind Kind, written duration.Duration) *Leaf {
	return &Leaf{Kind: kind, Written: written}
}

func (l *Leaf) Parent() *Tuplet      { return l.parent }
func (l *Leaf) setParent(p *Tuplet) { l.parent = p }

func (l *Leaf) IsNote() bool {
	return l.Kind == NoteKind
}

// EffectiveMultiplier returns the multiplier, or 1 if there is none.
func (l *Leaf) EffectiveMultiplier() duration.Duration {
	if l.Multiplier.IsZero() {
		return duration.Int(1)
	}
	return l.Multiplier
}

func (l *Leaf) Preprolated() duration.Duration {
	return l.Written.Mul(l.EffectiveMultiplier())
}

// Clone returns a detached copy.
func (l *Leaf) Clone() *Leaf {
	c := *l
	if l.BeamCount != nil {
		bc := *l.BeamCount
		c.BeamCount = &bc
	}
	c.parent = nil
	return &c
}

// Untie detaches tie and repeat tie.
func (l *Leaf) Untie() {
	l.Tie = false
	l.RepeatTie = false
}

// Unbeam detaches all beam indicators.
func (l *Leaf) Unbeam() {
	l.StartBeam = false
	l.StopBeam = false
	l.BeamCount = nil
	l.Grow = NoGrowth
}

// Tuplet scales its children by Multiplier.
type Tuplet struct {
	Multiplier duration.Duration
	Children   []Component

	// Denominator, if set, is the preferred denominator of the printed ratio.
	Denominator int64
	// ForceFraction prints both numbers of the ratio.
	ForceFraction bool
	// DurationBracket prints the sounding duration above the tuplet.
	DurationBracket bool

	Tag string

	parent *Tuplet
}

func NewTuplet(multiplier duration.Duration, children ...Component) *Tuplet {
	t := &Tuplet{Multiplier: multiplier}
	t.SetChildren(children)
	return t
}

func (t *Tuplet) Parent() *Tuplet      { return t.parent }
func (t *Tuplet) setParent(p *Tuplet) { t.parent = p }

// SetChildren replaces the contents and adopts the new children.
func (t *Tuplet) SetChildren(children []Component) {
	t.Children = children
	for _, c := range children {
		c.setParent(t)
	}
}

// Contents returns the summed preprolated duration of the children.
func (t *Tuplet) Contents() duration.Duration {
	var d duration.Duration
	for _, c := range t.Children {
		d = d.Add(c.Preprolated())
	}
	return d
}

func (t *Tuplet) Preprolated() duration.Duration {
	return t.Contents().Mul(t.Multiplier)
}

func (t *Tuplet) IsTrivial() bool {
	return t.Multiplier.Equal(duration.Int(1))
}

func (t *Tuplet) IsAugmentation() bool {
	return duration.Int(1).Less(t.Multiplier)
}

func (t *Tuplet) IsDiminution() bool {
	return t.Multiplier.Less(duration.Int(1))
}

// IsNormalized reports whether 1/2 < multiplier < 2.
func (t *Tuplet) IsNormalized() bool {
	return duration.New(1, 2).Less(t.Multiplier) && t.Multiplier.Less(duration.Int(2))
}

// Leaves returns all leaves below t in order.
func (t *Tuplet) Leaves() []*Leaf {
	return leaves(t.Children, nil)
}

// copyAttributes returns an empty tuplet with the same settings.
func (t *Tuplet) copyAttributes() *Tuplet {
	return &Tuplet{
		Multiplier:      t.Multiplier,
		Denominator:     t.Denominator,
		ForceFraction:   t.ForceFraction,
		DurationBracket: t.DurationBracket,
		Tag:             t.Tag,
	}
}

// scaleWritten multiplies all written durations below t by f.
func (t *Tuplet) scaleWritten(f duration.Duration) {
	for _, l := range t.Leaves() {
		l.Written = l.Written.Mul(f)
	}
}

// NormalizeMultiplier rescales written durations by powers of two until 1/2 < multiplier < 2.
func (t *Tuplet) NormalizeMultiplier() {
	two, half := duration.Int(2), duration.New(1, 2)
	if t.Multiplier.Sign() <= 0 {
		return
	}
	for !t.Multiplier.Less(two) {
		t.Multiplier = t.Multiplier.Div(two)
		t.scaleWritten(two)
	}
	for !half.Less(t.Multiplier) {
		t.Multiplier = t.Multiplier.Mul(two)
		t.scaleWritten(half)
	}
}

// ToggleProlation turns a diminution into an augmentation and vice versa.
func (t *Tuplet) ToggleProlation() {
	two, half := duration.Int(2), duration.New(1, 2)
	switch {
	case t.IsDiminution():
		for t.IsDiminution() {
			t.Multiplier = t.Multiplier.Mul(two)
			t.scaleWritten(half)
		}
	case t.IsAugmentation():
		for !t.IsDiminution() {
			t.Multiplier = t.Multiplier.Div(two)
			t.scaleWritten(two)
		}
	}
}

// Trivializable reports whether every direct leaf, scaled by the multiplier, is still assignable.
func (t *Tuplet) Trivializable() bool {
	for _, c := range t.Children {
		if l, ok := c.(*Leaf); ok && !l.Written.Mul(t.Multiplier).IsAssignable() {
			return false
		}
	}
	return true
}

// Trivialize moves the multiplier into the children if possible.
func (t *Tuplet) Trivialize() {
	if !t.Trivializable() {
		return
	}
	for _, c := range t.Children {
		switch c := c.(type) {
		case *Leaf:
			c.Written = c.Written.Mul(t.Multiplier)
		case *Tuplet:
			c.Multiplier = c.Multiplier.Mul(t.Multiplier)
		}
	}
	t.Multiplier = duration.Int(1)
}

// Ratio returns the printed ratio n:d, meaning n notes in the time of d.
func (t *Tuplet) Ratio() (int64, int64) {
	n, d := t.Multiplier.Den(), t.Multiplier.Num()
	if t.Denominator > 0 && t.Denominator%d == 0 {
		k := t.Denominator / d
		n, d = n*k, d*k
	}
	return n, d
}

// Duration returns the sounding duration of c, including all enclosing tuplets.
func Duration(c Component) duration.Duration {
	d := c.Preprolated()
	for p := c.Parent(); p != nil; p = p.Parent() {
		d = d.Mul(p.Multiplier)
	}
	return d
}

// Selection is the output for one division.
type Selection []Component

func (s Selection) Duration() duration.Duration {
	var d duration.Duration
	for _, c := range s {
		d = d.Add(Duration(c))
	}
	return d
}

func (s Selection) Leaves() []*Leaf {
	return leaves(s, nil)
}

// Tuplets returns all tuplets in s, outer before inner.
func (s Selection) Tuplets() []*Tuplet {
	return tuplets(s, nil)
}

func leaves(cs []Component, out []*Leaf) []*Leaf {
	for _, c := range cs {
		switch c := c.(type) {
		case *Leaf:
			out = append(out, c)
		case *Tuplet:
			out = leaves(c.Children, out)
		}
	}
	return out
}

func tuplets(cs []Component, out []*Tuplet) []*Tuplet {
	for _, c := range cs {
		if t, ok := c.(*Tuplet); ok {
			out = append(out, t)
			out = tuplets(t.Children, out)
		}
	}
	return out
}
