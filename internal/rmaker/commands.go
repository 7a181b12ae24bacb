package rmaker

import (
	"log"

	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/interpolate"
	"github.com/divVerent/rmakers/internal/meter"
	"github.com/divVerent/rmakers/internal/pattern"
	"github.com/divVerent/rmakers/internal/score"
)

// LeafSelector picks groups of leaves for a command. A zero selector means the
// command's default.
type LeafSelector = pattern.Selector[pattern.Group]

// TupletSelector picks tuplets for a command. A zero selector means all tuplets.
type TupletSelector = pattern.Selector[*score.Tuplet]

func selectGroups(s, def LeafSelector, v *score.Voice, env *Env) []pattern.Group {
	if s.IsZero() {
		s = def
	}
	return s.Select(env.target(v))
}

func selectTuplets(s TupletSelector, v *score.Voice, env *Env) []*score.Tuplet {
	if s.IsZero() {
		s = pattern.Tuplets()
	}
	return s.Select(env.target(v))
}

// Beam beams each selected group on its own. Defaults to divisions.
type Beam struct {
	Selector      LeafSelector
	BeamRests     bool
	BeamLoneNotes bool
}

func (c Beam) Apply(v *score.Voice, env *Env) {
	for _, g := range selectGroups(c.Selector, pattern.Divisions(), v, env) {
		score.Beam(g, c.BeamRests, c.BeamLoneNotes)
	}
}

// BeamGroups beams all selected groups as one beam with a single beam between groups.
type BeamGroups struct {
	Selector      LeafSelector
	BeamRests     bool
	BeamLoneNotes bool
}

func (c BeamGroups) Apply(v *score.Voice, env *Env) {
	score.BeamGroups(selectGroups(c.Selector, pattern.Divisions(), v, env), 1, c.BeamRests, c.BeamLoneNotes)
}

// FeatherBeam beams each group and feathers it by comparing its first and
// last durations. Defaults to the leaves of each tuplet.
type FeatherBeam struct {
	Selector  LeafSelector
	BeamRests bool
}

func (c FeatherBeam) Apply(v *score.Voice, env *Env) {
	for _, g := range selectGroups(c.Selector, pattern.TupletLeaves(), v, env) {
		if len(g) == 0 {
			continue
		}
		score.Beam(g, c.BeamRests, true)
		first, last := g[0], g[len(g)-1]
		switch interpolate.Classify([]duration.Duration{score.Duration(first), score.Duration(last)}) {
		case interpolate.Accelerando:
			first.Grow = score.GrowRight
		case interpolate.Ritardando:
			first.Grow = score.GrowLeft
		}
	}
}

// Unbeam removes beams. Defaults to all leaves.
type Unbeam struct {
	Selector LeafSelector
}

func (c Unbeam) Apply(v *score.Voice, env *Env) {
	score.Unbeam(pattern.Flatten(selectGroups(c.Selector, pattern.Leaves(), v, env)))
}

// Tie attaches a tie to each selected note.
type Tie struct {
	Selector LeafSelector
}

func (c Tie) Apply(v *score.Voice, env *Env) {
	for _, l := range pattern.Flatten(selectGroups(c.Selector, LeafSelector{}, v, env)) {
		if l.IsNote() {
			l.Tie = true
		}
	}
}

// RepeatTie attaches a repeat tie to each selected note.
type RepeatTie struct {
	Selector LeafSelector
}

func (c RepeatTie) Apply(v *score.Voice, env *Env) {
	for _, l := range pattern.Flatten(selectGroups(c.Selector, LeafSelector{}, v, env)) {
		if l.IsNote() {
			l.RepeatTie = true
		}
	}
}

// Untie removes ties and repeat ties. Defaults to all leaves.
type Untie struct {
	Selector LeafSelector
}

func (c Untie) Apply(v *score.Voice, env *Env) {
	for _, l := range pattern.Flatten(selectGroups(c.Selector, pattern.Leaves(), v, env)) {
		l.Untie()
	}
}

// TieAcrossDivisions ties the last note of a division to the first note of the
// next one, for each division index the pattern matches (all if nil).
type TieAcrossDivisions struct {
	Pattern    *pattern.Pattern
	RepeatTies bool
}

func (c TieAcrossDivisions) Apply(v *score.Voice, env *Env) {
	divs := pattern.Divisions().Select(env.target(v))
	for i := 0; i+1 < len(divs); i++ {
		if c.Pattern != nil && !c.Pattern.Matches(i, len(divs), 0) {
			continue
		}
		a, b := divs[i][len(divs[i])-1], divs[i+1][0]
		if !a.IsNote() || !b.IsNote() {
			continue
		}
		a.Tie, b.RepeatTie = !c.RepeatTies, c.RepeatTies
	}
}

func forceRests(v *score.Voice, ls []*score.Leaf) {
	for _, l := range ls {
		if l.Kind.Silent() {
			continue
		}
		prev, next := v.Neighbors(l)
		l.Kind = score.RestKind
		l.Untie()
		if prev != nil {
			prev.Tie = false
		}
		if next != nil {
			next.RepeatTie = false
		}
	}
}

func forceNotes(v *score.Voice, ls []*score.Leaf) {
	for _, l := range ls {
		if !l.IsNote() {
			l.Kind = score.NoteKind
		}
	}
}

// ForceRest turns the selected leaves into rests of the same written duration
// and detaches the ties that led into or out of them.
type ForceRest struct {
	Selector LeafSelector
}

func (c ForceRest) Apply(v *score.Voice, env *Env) {
	forceRests(v, pattern.Flatten(selectGroups(c.Selector, LeafSelector{}, v, env)))
}

// ForceNote turns the selected leaves into notes of the same written duration.
type ForceNote struct {
	Selector LeafSelector
}

func (c ForceNote) Apply(v *score.Voice, env *Env) {
	forceNotes(v, pattern.Flatten(selectGroups(c.Selector, LeafSelector{}, v, env)))
}

// RewriteMeter respells the music against the meter of each division.
type RewriteMeter struct {
	// ReferenceMeters replace the default meter of a matching time signature.
	ReferenceMeters []meter.Meter
	BoundaryDepth   *int
	RepeatTies      bool
}

func (c RewriteMeter) Apply(v *score.Voice, env *Env) {
	meters := make([]meter.Meter, len(env.Divisions))
	for i, d := range env.Divisions {
		meters[i] = meter.New(d, false)
	}
	err := meter.Rewrite(v, meters, meter.RewriteOptions{
		ReferenceMeters: c.ReferenceMeters,
		BoundaryDepth:   c.BoundaryDepth,
		RepeatTies:      c.RepeatTies,
	})
	if err != nil {
		log.Panicf("rmaker: rewrite meter: %v", err)
	}
}

// SplitMeasures splits the music at the division boundaries, tying split notes.
type SplitMeasures struct{}

func (SplitMeasures) Apply(v *score.Voice, env *Env) {
	if total, music := duration.Sum(env.Durations...), v.Duration(); !total.Equal(music) {
		log.Panicf("rmaker: divisions total %v but music is %v", total, music)
	}
	v.SplitAt(meter.Boundaries(env.Durations), true)
}

// sustained reports whether at most the first leaf of t starts a logical tie.
func sustained(v *score.Voice, t *score.Tuplet) bool {
	all := v.Leaves()
	ls := t.Leaves()
	if len(ls) == 0 {
		return false
	}
	heads := 0
	firstIsHead := false
	for i, l := range all {
		if l.Parent() == nil || !inside(l, t) {
			continue
		}
		if i > 0 && score.TiedTogether(all[i-1], l) {
			continue
		}
		heads++
		firstIsHead = firstIsHead || l == ls[0]
	}
	return heads == 0 || (heads == 1 && firstIsHead)
}

func inside(c score.Component, t *score.Tuplet) bool {
	for p := c.Parent(); p != nil; p = p.Parent() {
		if p == t {
			return true
		}
	}
	return false
}

// RewriteSustained collapses each tuplet holding a single articulation into one
// leaf of the tuplet's duration and makes the tuplet 1:1.
type RewriteSustained struct {
	Selector TupletSelector
}

func (c RewriteSustained) Apply(v *score.Voice, env *Env) {
	lm := env.Spelling.LeafMaker(env.Tag)
	for _, t := range selectTuplets(c.Selector, v, env) {
		if !sustained(v, t) {
			continue
		}
		ls := t.Leaves()
		first, last := ls[0], ls[len(ls)-1]
		kind := first.Kind
		if kind == score.MultimeasureRestKind {
			kind = score.RestKind
		}
		repl := lm.Make(kind, t.Preprolated())
		made := score.Selection(repl).Leaves()
		made[0].RepeatTie = first.RepeatTie
		made[len(made)-1].Tie = last.Tie && kind == score.NoteKind
		t.SetChildren(repl)
		t.Multiplier = duration.Int(1)
	}
}

// RewriteRestFilled respells each tuplet of only rests as plain rests and makes it 1:1.
type RewriteRestFilled struct {
	Selector TupletSelector
}

func (c RewriteRestFilled) Apply(v *score.Voice, env *Env) {
	lm := env.Spelling.LeafMaker(env.Tag)
	for _, t := range selectTuplets(c.Selector, v, env) {
		restFilled := true
		for _, l := range t.Leaves() {
			restFilled = restFilled && (l.Kind == score.RestKind || l.Kind == score.MultimeasureRestKind)
		}
		if !restFilled {
			continue
		}
		t.SetChildren(lm.Make(score.RestKind, t.Preprolated()))
		t.Multiplier = duration.Int(1)
	}
}

// ExtractTrivial replaces each 1:1 tuplet by its contents.
type ExtractTrivial struct {
	Selector TupletSelector
}

func (c ExtractTrivial) Apply(v *score.Voice, env *Env) {
	for _, t := range selectTuplets(c.Selector, v, env) {
		if t.IsTrivial() {
			v.Extract(t)
		}
	}
}

// Trivialize moves each tuplet's multiplier into its leaves where they stay assignable.
type Trivialize struct {
	Selector TupletSelector
}

func (c Trivialize) Apply(v *score.Voice, env *Env) {
	for _, t := range selectTuplets(c.Selector, v, env) {
		t.Trivialize()
	}
}

// Denominator sets the printed denominator of each tuplet's ratio, either
// directly or as the number of Unit in the tuplet's duration.
type Denominator struct {
	Selector    TupletSelector
	Denominator int64
	Unit        duration.Duration
}

func (c Denominator) Apply(v *score.Voice, env *Env) {
	for _, t := range selectTuplets(c.Selector, v, env) {
		if !c.Unit.IsZero() {
			t.Denominator = score.Duration(t).WithDenominator(c.Unit.Den()).Num
			continue
		}
		t.Denominator = c.Denominator
	}
}

// ForceFraction prints both numbers of each tuplet's ratio.
type ForceFraction struct {
	Selector TupletSelector
}

func (c ForceFraction) Apply(v *score.Voice, env *Env) {
	for _, t := range selectTuplets(c.Selector, v, env) {
		t.ForceFraction = true
	}
}

// ForceAugmentation rewrites diminished tuplets as augmented ones.
type ForceAugmentation struct {
	Selector TupletSelector
}

func (c ForceAugmentation) Apply(v *score.Voice, env *Env) {
	for _, t := range selectTuplets(c.Selector, v, env) {
		if t.IsDiminution() {
			t.ToggleProlation()
		}
	}
}

// ForceDiminution rewrites augmented tuplets as diminished ones.
type ForceDiminution struct {
	Selector TupletSelector
}

func (c ForceDiminution) Apply(v *score.Voice, env *Env) {
	for _, t := range selectTuplets(c.Selector, v, env) {
		if t.IsAugmentation() {
			t.ToggleProlation()
		}
	}
}

// DurationBracket prints each tuplet's duration above it.
type DurationBracket struct {
	Selector TupletSelector
}

func (c DurationBracket) Apply(v *score.Voice, env *Env) {
	for _, t := range selectTuplets(c.Selector, v, env) {
		t.DurationBracket = true
	}
}

// CacheState stores the state at its position in the command list; the
// maker then does not store it again at the end.
type CacheState struct{}

func (CacheState) Apply(*score.Voice, *Env) {}
