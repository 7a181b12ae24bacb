package rmaker

import (
	"fmt"

	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/meter"
	"github.com/divVerent/rmakers/internal/score"
)

// SpellMetrically selects when a division is first cut at its meter's beats.
type SpellMetrically int

const (
	SpellPlain SpellMetrically = iota
	SpellAlways
	// SpellUnassignable cuts only divisions whose numerator has no single notehead.
	SpellUnassignable
)

func (s SpellMetrically) String() string {
	switch s {
	case SpellAlways:
		return "true"
	case SpellUnassignable:
		return "unassignable"
	}
	return "false"
}

// ParseSpellMetrically accepts "", "false", "true" and "unassignable".
func ParseSpellMetrically(s string) (SpellMetrically, error) {
	switch s {
	case "", "false":
		return SpellPlain, nil
	case "true":
		return SpellAlways, nil
	case "unassignable":
		return SpellUnassignable, nil
	}
	return SpellPlain, fmt.Errorf("invalid spell_metrically value %q", s)
}

// Spelling is the policy for writing durations as tied leaves.
type Spelling struct {
	// ForbiddenNote and ForbiddenRest, if nonzero, are the shortest durations a
	// single note or rest may not have.
	ForbiddenNote     duration.Duration
	ForbiddenRest     duration.Duration
	IncreaseMonotonic bool
	SpellMetrically   SpellMetrically
	// RewriteMeter rewrites the music against the meters of the divisions before any command runs.
	RewriteMeter bool
	RepeatTies   bool
}

func (s Spelling) LeafMaker(tag string) score.LeafMaker {
	return score.LeafMaker{
		ForbiddenNote:     s.ForbiddenNote,
		ForbiddenRest:     s.ForbiddenRest,
		IncreaseMonotonic: s.IncreaseMonotonic,
		RepeatTies:        s.RepeatTies,
		Tag:               tag,
	}
}

func assignableInteger(n int64) bool {
	return n > 0 && len(duration.CanonicParts(n)) == 1
}

// Durations returns the parts a division is spelled as before tying.
func (s Spelling) Durations(div duration.Division) []duration.Duration {
	switch {
	case s.SpellMetrically == SpellAlways,
		s.SpellMetrically == SpellUnassignable && !assignableInteger(div.Num):
		m := meter.New(div, s.IncreaseMonotonic)
		var out []duration.Duration
		for _, c := range m.Root.Children {
			out = append(out, c.Duration)
		}
		return out
	}
	return []duration.Duration{div.Duration()}
}

// Validate rejects negative forbidden durations.
func (s Spelling) Validate() error {
	if s.ForbiddenNote.Sign() < 0 {
		return fmt.Errorf("negative forbidden note duration %v", s.ForbiddenNote)
	}
	if s.ForbiddenRest.Sign() < 0 {
		return fmt.Errorf("negative forbidden rest duration %v", s.ForbiddenRest)
	}
	return nil
}

// Interpolation describes one accelerando or ritardando: note durations move
// from Start to Stop, and every note is written as Written.
type Interpolation struct {
	Start, Stop, Written duration.Duration
}

func DefaultInterpolation() Interpolation {
	return Interpolation{
		Start:   duration.New(1, 8),
		Stop:    duration.New(1, 16),
		Written: duration.New(1, 16),
	}
}

// Reverse swaps start and stop.
func (i Interpolation) Reverse() Interpolation {
	return Interpolation{Start: i.Stop, Stop: i.Start, Written: i.Written}
}

func (i Interpolation) String() string {
	return fmt.Sprintf("%v -> %v (written %v)", i.Start, i.Stop, i.Written)
}

func (i Interpolation) Validate() error {
	if i.Start.Sign() <= 0 || i.Stop.Sign() <= 0 || i.Written.Sign() <= 0 {
		return fmt.Errorf("interpolation %v: durations must be positive", i)
	}
	return nil
}
