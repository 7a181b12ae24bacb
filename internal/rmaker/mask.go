package rmaker

import (
	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/pattern"
	"github.com/divVerent/rmakers/internal/score"
)

type MaskKind int

const (
	// Silence replaces the matched music by rests.
	Silence MaskKind = iota
	// Sustain replaces the matched music by one tied note.
	Sustain
)

func (k MaskKind) String() string {
	if k == Sustain {
		return "sustain"
	}
	return "silence"
}

// Mask is a pattern over division or logical tie indices.
type Mask struct {
	Pattern  pattern.Pattern
	Kind     MaskKind
	Rotation int
	// UseMultimeasureRests writes a silenced division as one multimeasure rest.
	UseMultimeasureRests bool
}

func SilenceMask(p pattern.Pattern) Mask {
	return Mask{Pattern: p, Kind: Silence}
}

func SustainMask(p pattern.Pattern) Mask {
	return Mask{Pattern: p, Kind: Sustain}
}

// matchingMask returns the last mask matching index.
func matchingMask(masks []Mask, index, total int) (Mask, bool) {
	for i := len(masks) - 1; i >= 0; i-- {
		if masks[i].Pattern.Matches(index, total, masks[i].Rotation) {
			return masks[i], true
		}
	}
	return Mask{}, false
}

// applyDivisionMasks replaces the music of each masked division.
func applyDivisionMasks(v *score.Voice, durations []duration.Duration, masks []Mask, previous int, lm score.LeafMaker) {
	if len(masks) == 0 {
		return
	}
	sels := partition(v, durations)
	var out []score.Component
	for i, sel := range sels {
		mask, ok := matchingMask(masks, i+previous, len(sels)+previous)
		if !ok {
			out = append(out, sel...)
			continue
		}
		lm := lm
		var repl []score.Component
		switch mask.Kind {
		case Sustain:
			lm.MultimeasureRests = false
			repl = lm.Make(score.NoteKind, durations[i])
		default:
			lm.MultimeasureRests = mask.UseMultimeasureRests
			repl = lm.Make(score.RestKind, durations[i])
		}
		if len(out) > 0 {
			if ls := score.Selection(out).Leaves(); len(ls) > 0 {
				ls[len(ls)-1].Tie = false
			}
		}
		if i+1 < len(sels) {
			if ls := sels[i+1].Leaves(); len(ls) > 0 {
				ls[0].RepeatTie = false
			}
		}
		out = append(out, repl...)
	}
	v.SetComponents(out)
}

// applyLogicalTieMasks silences or sustains single logical ties.
func applyLogicalTieMasks(v *score.Voice, masks []Mask, previous int) {
	if len(masks) == 0 {
		return
	}
	ties := v.LogicalTies()
	for i, lt := range ties {
		mask, ok := matchingMask(masks, i+previous, len(ties)+previous)
		if !ok {
			continue
		}
		switch mask.Kind {
		case Sustain:
			forceNotes(v, lt)
		default:
			forceRests(v, lt)
		}
	}
}
