package processor

import (
	"fmt"

	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/interpolate"
	"github.com/divVerent/rmakers/internal/meter"
	"github.com/divVerent/rmakers/internal/pattern"
	"github.com/divVerent/rmakers/internal/rmaker"
	"github.com/divVerent/rmakers/internal/score"
)

// Config is the maker definition, usually shared by many runs.
type Config struct {
	Maker MakerConfig `yaml:"maker"`
	// ChunkSize splits the divisions into calls of this many divisions,
	// passing the state from call to call. Zero means one call.
	ChunkSize int `yaml:"chunk_size,omitempty"`
}

// Options are the per-run settings.
type Options struct {
	// Divisions to make rhythms for. If empty, they are read from the time
	// signatures of InputFile.
	Divisions       []duration.Division `yaml:"divisions,omitempty"`
	InputFile       string              `yaml:"input_file,omitempty"`
	InputFileSHA256 string              `yaml:"input_file_sha256,omitempty"`

	ChunkSize     int           `yaml:"chunk_size,omitempty"`
	PreviousState *rmaker.State `yaml:"previous_state,omitempty"`

	// Maker overrides fields of the config's maker.
	Maker *MakerConfig `yaml:"maker,omitempty"`
}

// Durations are written as "n/d" strings throughout.

type InterpolationConfig struct {
	Start   string `yaml:"start"`
	Stop    string `yaml:"stop"`
	Written string `yaml:"written"`
}

type TaleaConfig struct {
	Counts      []int64 `yaml:"counts"`
	Denominator int64   `yaml:"denominator"`
	Preamble    []int64 `yaml:"preamble,omitempty"`
	EndCounts   []int64 `yaml:"end_counts,omitempty"`
	Advance     int64   `yaml:"advance,omitempty"`
	ReadOnce    bool    `yaml:"read_once,omitempty"`
}

type InciseConfig struct {
	PrefixTalea      []int64 `yaml:"prefix_talea,omitempty"`
	PrefixCounts     []int   `yaml:"prefix_counts,omitempty"`
	SuffixTalea      []int64 `yaml:"suffix_talea,omitempty"`
	SuffixCounts     []int   `yaml:"suffix_counts,omitempty"`
	BodyProportion   []int64 `yaml:"body_proportion,omitempty"`
	FillWithRests    bool    `yaml:"fill_with_rests,omitempty"`
	OuterTupletsOnly bool    `yaml:"outer_tuplets_only,omitempty"`
	TaleaDenominator int64   `yaml:"talea_denominator"`
}

type BurnishConfig struct {
	LeftKinds  []string `yaml:"left_kinds,omitempty"`
	LeftCount  int      `yaml:"left_count,omitempty"`
	RightKinds []string `yaml:"right_kinds,omitempty"`
	RightCount int      `yaml:"right_count,omitempty"`
}

type SpellingConfig struct {
	ForbiddenNoteDuration string `yaml:"forbidden_note_duration,omitempty"`
	ForbiddenRestDuration string `yaml:"forbidden_rest_duration,omitempty"`
	IncreaseMonotonic     bool   `yaml:"increase_monotonic,omitempty"`
	// SpellMetrically is "false", "true" or "unassignable".
	SpellMetrically string `yaml:"spell_metrically,omitempty"`
	RewriteMeter    bool   `yaml:"rewrite_meter,omitempty"`
	RepeatTies      bool   `yaml:"repeat_ties,omitempty"`
}

type MaskConfig struct {
	// Kind is "silence" or "sustain".
	Kind                 string `yaml:"kind"`
	Indices              []int  `yaml:"indices,omitempty"`
	Period               int    `yaml:"period,omitempty"`
	Inverted             bool   `yaml:"inverted,omitempty"`
	Rotation             int    `yaml:"rotation,omitempty"`
	UseMultimeasureRests bool   `yaml:"use_multimeasure_rests,omitempty"`
}

// SelectorConfig describes a selector: a source, then the filters in this order:
// pattern, exclude, slice, nontrivial.
type SelectorConfig struct {
	Source     string           `yaml:"source"`
	Pattern    *pattern.Pattern `yaml:"pattern,omitempty"`
	Exclude    *pattern.Pattern `yaml:"exclude,omitempty"`
	Start      *int             `yaml:"start,omitempty"`
	Stop       *int             `yaml:"stop,omitempty"`
	Nontrivial bool             `yaml:"nontrivial,omitempty"`
}

type CommandConfig struct {
	Name          string          `yaml:"name"`
	Select        *SelectorConfig `yaml:"select,omitempty"`
	BeamRests     bool            `yaml:"beam_rests,omitempty"`
	BeamLoneNotes bool            `yaml:"beam_lone_notes,omitempty"`
	RepeatTies    bool            `yaml:"repeat_ties,omitempty"`
	// Pattern picks the division joins for tie_across_divisions.
	Pattern         *pattern.Pattern `yaml:"pattern,omitempty"`
	Denominator     int64            `yaml:"denominator,omitempty"`
	Unit            string           `yaml:"unit,omitempty"`
	ReferenceMeters []string         `yaml:"reference_meters,omitempty"`
	BoundaryDepth   *int             `yaml:"boundary_depth,omitempty"`
}

// MakerConfig selects a generator by Kind and configures the pipeline around it.
type MakerConfig struct {
	// Kind is one of note, accelerando, talea, even_division, tuplet, incised.
	Kind string `yaml:"kind"`
	Tag  string `yaml:"tag,omitempty"`

	Interpolations []InterpolationConfig `yaml:"interpolations,omitempty"`
	// Curve is "cosine" or an exponent.
	Curve        string        `yaml:"curve,omitempty"`
	Talea        *TaleaConfig  `yaml:"talea,omitempty"`
	ExtraCounts  []int64       `yaml:"extra_counts,omitempty"`
	Denominators []int64       `yaml:"denominators,omitempty"`
	Proportions  [][]int64     `yaml:"proportions,omitempty"`
	Incise       *InciseConfig `yaml:"incise,omitempty"`
	Burnish      *BurnishConfig `yaml:"burnish,omitempty"`

	Spelling        *SpellingConfig `yaml:"spelling,omitempty"`
	DivisionMasks   []MaskConfig    `yaml:"division_masks,omitempty"`
	LogicalTieMasks []MaskConfig    `yaml:"logical_tie_masks,omitempty"`
	Commands        []CommandConfig `yaml:"commands,omitempty"`
}

func parseDuration(field, s string) (duration.Duration, error) {
	if s == "" {
		return duration.Duration{}, nil
	}
	d, err := duration.Parse(s)
	if err != nil {
		return duration.Duration{}, fmt.Errorf("%s: %v", field, err)
	}
	return d, nil
}

func parseKind(s string) (score.Kind, error) {
	switch s {
	case "note":
		return score.NoteKind, nil
	case "rest":
		return score.RestKind, nil
	}
	return 0, fmt.Errorf("invalid leaf kind %q: want note or rest", s)
}

func parseKinds(ss []string) ([]score.Kind, error) {
	var out []score.Kind
	for _, s := range ss {
		k, err := parseKind(s)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

func (c *SpellingConfig) spelling() (rmaker.Spelling, error) {
	var s rmaker.Spelling
	if c == nil {
		return s, nil
	}
	var err error
	if s.ForbiddenNote, err = parseDuration("forbidden_note_duration", c.ForbiddenNoteDuration); err != nil {
		return s, err
	}
	if s.ForbiddenRest, err = parseDuration("forbidden_rest_duration", c.ForbiddenRestDuration); err != nil {
		return s, err
	}
	if s.SpellMetrically, err = rmaker.ParseSpellMetrically(c.SpellMetrically); err != nil {
		return s, err
	}
	s.IncreaseMonotonic = c.IncreaseMonotonic
	s.RewriteMeter = c.RewriteMeter
	s.RepeatTies = c.RepeatTies
	return s, s.Validate()
}

func (c MaskConfig) mask() (rmaker.Mask, error) {
	m := rmaker.Mask{
		Pattern:              pattern.Pattern{Indices: c.Indices, Period: c.Period, Inverted: c.Inverted},
		Rotation:             c.Rotation,
		UseMultimeasureRests: c.UseMultimeasureRests,
	}
	switch c.Kind {
	case "", "silence":
		m.Kind = rmaker.Silence
	case "sustain":
		m.Kind = rmaker.Sustain
	default:
		return m, fmt.Errorf("invalid mask kind %q: want silence or sustain", c.Kind)
	}
	return m, m.Pattern.Validate()
}

func masks(cs []MaskConfig) ([]rmaker.Mask, error) {
	var out []rmaker.Mask
	for i, c := range cs {
		m, err := c.mask()
		if err != nil {
			return nil, fmt.Errorf("mask %d: %v", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func leafSources() map[string]func() rmaker.LeafSelector {
	return map[string]func() rmaker.LeafSelector{
		"logical_ties":  pattern.LogicalTies,
		"leaves":        pattern.Leaves,
		"notes":         pattern.Notes,
		"rests":         pattern.Rests,
		"divisions":     pattern.Divisions,
		"tuplet_leaves": pattern.TupletLeaves,
	}
}

func tupletSources() map[string]func() rmaker.TupletSelector {
	return map[string]func() rmaker.TupletSelector{
		"tuplets":           pattern.Tuplets,
		"top_level_tuplets": pattern.TopLevelTuplets,
	}
}

func refine[T any](s pattern.Selector[T], c *SelectorConfig) (pattern.Selector[T], error) {
	if c.Pattern != nil {
		if err := c.Pattern.Validate(); err != nil {
			return s, err
		}
		s = s.Get(*c.Pattern)
	}
	if c.Exclude != nil {
		if err := c.Exclude.Validate(); err != nil {
			return s, err
		}
		s = s.Exclude(*c.Exclude)
	}
	if c.Start != nil || c.Stop != nil {
		start, stop := 0, pattern.End
		if c.Start != nil {
			start = *c.Start
		}
		if c.Stop != nil {
			stop = *c.Stop
		}
		s = s.Slice(start, stop)
	}
	return s, nil
}

// leafSelector returns the zero selector, meaning the command's default, for nil.
func (c *SelectorConfig) leafSelector() (rmaker.LeafSelector, error) {
	if c == nil {
		return rmaker.LeafSelector{}, nil
	}
	source, ok := leafSources()[c.Source]
	if !ok {
		return rmaker.LeafSelector{}, fmt.Errorf("invalid leaf selector source %q", c.Source)
	}
	s, err := refine(source(), c)
	if err != nil {
		return s, err
	}
	if c.Nontrivial {
		s = pattern.Nontrivial(s)
	}
	return s, nil
}

func (c *SelectorConfig) tupletSelector() (rmaker.TupletSelector, error) {
	if c == nil {
		return rmaker.TupletSelector{}, nil
	}
	source, ok := tupletSources()[c.Source]
	if !ok {
		return rmaker.TupletSelector{}, fmt.Errorf("invalid tuplet selector source %q", c.Source)
	}
	if c.Nontrivial {
		return rmaker.TupletSelector{}, fmt.Errorf("nontrivial only applies to leaf selectors")
	}
	return refine(source(), c)
}

func (c CommandConfig) command() (rmaker.Command, error) {
	switch c.Name {
	case "beam", "beam_groups", "feather_beam", "unbeam", "tie", "untie", "repeat_tie", "force_rest", "force_note":
		sel, err := c.Select.leafSelector()
		if err != nil {
			return nil, err
		}
		switch c.Name {
		case "beam":
			return rmaker.Beam{Selector: sel, BeamRests: c.BeamRests, BeamLoneNotes: c.BeamLoneNotes}, nil
		case "beam_groups":
			return rmaker.BeamGroups{Selector: sel, BeamRests: c.BeamRests, BeamLoneNotes: c.BeamLoneNotes}, nil
		case "feather_beam":
			return rmaker.FeatherBeam{Selector: sel, BeamRests: c.BeamRests}, nil
		case "unbeam":
			return rmaker.Unbeam{Selector: sel}, nil
		case "tie":
			return rmaker.Tie{Selector: sel}, nil
		case "untie":
			return rmaker.Untie{Selector: sel}, nil
		case "repeat_tie":
			return rmaker.RepeatTie{Selector: sel}, nil
		case "force_rest":
			return rmaker.ForceRest{Selector: sel}, nil
		default:
			return rmaker.ForceNote{Selector: sel}, nil
		}
	case "rewrite_sustained", "rewrite_rest_filled", "extract_trivial", "trivialize", "denominator",
		"force_fraction", "force_augmentation", "force_diminution", "duration_bracket":
		sel, err := c.Select.tupletSelector()
		if err != nil {
			return nil, err
		}
		switch c.Name {
		case "rewrite_sustained":
			return rmaker.RewriteSustained{Selector: sel}, nil
		case "rewrite_rest_filled":
			return rmaker.RewriteRestFilled{Selector: sel}, nil
		case "extract_trivial":
			return rmaker.ExtractTrivial{Selector: sel}, nil
		case "trivialize":
			return rmaker.Trivialize{Selector: sel}, nil
		case "denominator":
			unit, err := parseDuration("unit", c.Unit)
			if err != nil {
				return nil, err
			}
			if unit.IsZero() && c.Denominator <= 0 {
				return nil, fmt.Errorf("denominator needs a positive denominator or a unit")
			}
			return rmaker.Denominator{Selector: sel, Denominator: c.Denominator, Unit: unit}, nil
		case "force_fraction":
			return rmaker.ForceFraction{Selector: sel}, nil
		case "force_augmentation":
			return rmaker.ForceAugmentation{Selector: sel}, nil
		case "force_diminution":
			return rmaker.ForceDiminution{Selector: sel}, nil
		default:
			return rmaker.DurationBracket{Selector: sel}, nil
		}
	case "tie_across_divisions":
		if c.Pattern != nil {
			if err := c.Pattern.Validate(); err != nil {
				return nil, err
			}
		}
		return rmaker.TieAcrossDivisions{Pattern: c.Pattern, RepeatTies: c.RepeatTies}, nil
	case "rewrite_meter":
		var refs []meter.Meter
		for _, s := range c.ReferenceMeters {
			m, err := meter.Parse(s)
			if err != nil {
				return nil, err
			}
			refs = append(refs, m)
		}
		return rmaker.RewriteMeter{ReferenceMeters: refs, BoundaryDepth: c.BoundaryDepth, RepeatTies: c.RepeatTies}, nil
	case "split_measures":
		return rmaker.SplitMeasures{}, nil
	case "cache_state":
		return rmaker.CacheState{}, nil
	}
	return nil, fmt.Errorf("unknown command %q", c.Name)
}

func (c MakerConfig) interpolations() ([]rmaker.Interpolation, error) {
	var out []rmaker.Interpolation
	for i, ic := range c.Interpolations {
		var in rmaker.Interpolation
		var err error
		if in.Start, err = parseDuration("start", ic.Start); err != nil {
			return nil, fmt.Errorf("interpolation %d: %v", i, err)
		}
		if in.Stop, err = parseDuration("stop", ic.Stop); err != nil {
			return nil, fmt.Errorf("interpolation %d: %v", i, err)
		}
		if in.Written, err = parseDuration("written", ic.Written); err != nil {
			return nil, fmt.Errorf("interpolation %d: %v", i, err)
		}
		if err := in.Validate(); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

func (c MakerConfig) generator() (rmaker.Generator, error) {
	switch c.Kind {
	case "note":
		g := rmaker.Note{}
		if c.Burnish != nil {
			left, err := parseKinds(c.Burnish.LeftKinds)
			if err != nil {
				return nil, err
			}
			right, err := parseKinds(c.Burnish.RightKinds)
			if err != nil {
				return nil, err
			}
			g.Burnish = &rmaker.Burnish{LeftKinds: left, LeftCount: c.Burnish.LeftCount, RightKinds: right, RightCount: c.Burnish.RightCount}
		}
		return g, nil
	case "accelerando":
		ins, err := c.interpolations()
		if err != nil {
			return nil, err
		}
		curve, err := interpolate.ParseCurve(c.Curve)
		if err != nil {
			return nil, err
		}
		return rmaker.Accelerando{Interpolations: ins, Curve: curve}, nil
	case "talea":
		if c.Talea == nil {
			return nil, fmt.Errorf("talea maker without talea")
		}
		t := rmaker.Talea{
			Counts:      c.Talea.Counts,
			Denominator: c.Talea.Denominator,
			Preamble:    c.Talea.Preamble,
			EndCounts:   c.Talea.EndCounts,
			ExtraCounts: c.ExtraCounts,
			Advance:     c.Talea.Advance,
			ReadOnce:    c.Talea.ReadOnce,
		}
		return t, t.Validate()
	case "even_division":
		return rmaker.EvenDivision{Denominators: c.Denominators, ExtraCounts: c.ExtraCounts}, nil
	case "tuplet":
		return rmaker.Tuplets{Proportions: c.Proportions}, nil
	case "incised":
		if c.Incise == nil {
			return nil, fmt.Errorf("incised maker without incise")
		}
		g := rmaker.Incised{
			PrefixTalea:      c.Incise.PrefixTalea,
			PrefixCounts:     c.Incise.PrefixCounts,
			SuffixTalea:      c.Incise.SuffixTalea,
			SuffixCounts:     c.Incise.SuffixCounts,
			BodyProportion:   c.Incise.BodyProportion,
			FillWithRests:    c.Incise.FillWithRests,
			OuterTupletsOnly: c.Incise.OuterTupletsOnly,
			ExtraCounts:      c.ExtraCounts,
			TaleaDenominator: c.Incise.TaleaDenominator,
		}
		return g, g.Validate()
	}
	return nil, fmt.Errorf("unknown maker kind %q", c.Kind)
}

// Build turns the configuration into a maker.
func (c MakerConfig) Build() (*rmaker.Maker, error) {
	g, err := c.generator()
	if err != nil {
		return nil, fmt.Errorf("%s maker: %v", c.Kind, err)
	}
	m := &rmaker.Maker{Generator: g, Tag: c.Tag}
	if m.Spelling, err = c.Spelling.spelling(); err != nil {
		return nil, fmt.Errorf("spelling: %v", err)
	}
	if m.DivisionMasks, err = masks(c.DivisionMasks); err != nil {
		return nil, fmt.Errorf("division masks: %v", err)
	}
	if m.LogicalTieMasks, err = masks(c.LogicalTieMasks); err != nil {
		return nil, fmt.Errorf("logical tie masks: %v", err)
	}
	for i, cc := range c.Commands {
		cmd, err := cc.command()
		if err != nil {
			return nil, fmt.Errorf("command %d (%s): %v", i, cc.Name, err)
		}
		m.Commands = append(m.Commands, cmd)
	}
	return m, nil
}
