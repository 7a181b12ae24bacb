package rmaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/pattern"
	"github.com/divVerent/rmakers/internal/score"
)

func d(s string) duration.Duration {
	return duration.MustParse(s)
}

func divs(ss ...string) []duration.Division {
	var out []duration.Division
	for _, s := range ss {
		v, err := duration.ParseDivision(s)
		if err != nil {
			panic(err)
		}
		out = append(out, v)
	}
	return out
}

func format(sels []score.Selection) []string {
	var out []string
	for _, s := range sels {
		out = append(out, score.Format(s))
	}
	return out
}

func make1(t *testing.T, m *Maker, ss ...string) []string {
	t.Helper()
	sels, err := m.Make(divs(ss...), nil)
	require.NoError(t, err)
	return format(sels)
}

func TestNoteMaker(t *testing.T) {
	m := &Maker{Generator: Note{}}
	assert.Equal(t, []string{"c'2~ c'8", "c'4."}, make1(t, m, "5/8", "3/8"))
	assert.Equal(t, State{DivisionsConsumed: 2, LogicalTiesProduced: 2}, m.State())
}

func TestSilenceMask(t *testing.T) {
	m := &Maker{
		Generator:     Note{},
		DivisionMasks: []Mask{SilenceMask(pattern.Index([]int{0}, 2))},
	}
	assert.Equal(t, []string{"r2", "c'4.", "r2", "c'4."}, make1(t, m, "4/8", "3/8", "4/8", "3/8"))
}

func TestMultimeasureRestMask(t *testing.T) {
	m := &Maker{
		Generator:     Note{},
		DivisionMasks: []Mask{{Pattern: pattern.First(1), UseMultimeasureRests: true}},
	}
	assert.Equal(t, []string{"R1 * 3/8", "c'4"}, make1(t, m, "3/8", "1/4"))
}

func TestSustainMask(t *testing.T) {
	m := &Maker{
		Generator:     Tuplets{Proportions: [][]int64{{1, -1, 1}}},
		DivisionMasks: []Mask{SustainMask(pattern.Last(1))},
	}
	assert.Equal(t, []string{`\tuplet 3/2 { c'8 r8 c'8 }`, "c'4"}, make1(t, m, "1/4", "1/4"))
}

func TestLastMaskWins(t *testing.T) {
	m := &Maker{
		Generator: Note{},
		DivisionMasks: []Mask{
			SilenceMask(pattern.All()),
			SustainMask(pattern.Index([]int{1}, 0)),
		},
	}
	assert.Equal(t, []string{"r4", "c'4", "r4"}, make1(t, m, "1/4", "1/4", "1/4"))
}

func TestDivisionMaskDetachesTies(t *testing.T) {
	newMaker := func(masks ...Mask) *Maker {
		return &Maker{
			Generator:     Talea{Counts: []int64{3}, Denominator: 8},
			DivisionMasks: masks,
			Commands:      []Command{ExtractTrivial{}},
		}
	}
	assert.Equal(t, []string{"c'4~", "c'8 c'8~", "c'4"}, make1(t, newMaker(), "1/4", "1/4", "1/4"))
	assert.Equal(t, []string{"c'4", "r4", "c'4"}, make1(t, newMaker(SilenceMask(pattern.Index([]int{1}, 0))), "1/4", "1/4", "1/4"))
}

func TestLogicalTieMask(t *testing.T) {
	m := &Maker{
		Generator:       Note{},
		LogicalTieMasks: []Mask{SilenceMask(pattern.Index([]int{1}, 0))},
	}
	assert.Equal(t, []string{"c'4", "r4", "c'4"}, make1(t, m, "1/4", "1/4", "1/4"))

	m = &Maker{
		Generator:       Tuplets{Proportions: [][]int64{{1, -1}}},
		LogicalTieMasks: []Mask{SustainMask(pattern.All())},
	}
	assert.Equal(t, []string{`\tuplet 1/1 { c'8 c'8 }`}, make1(t, m, "1/4"))
}

func TestInvalidDivision(t *testing.T) {
	m := &Maker{Generator: Note{}}
	_, err := m.Make([]duration.Division{{Num: 0, Den: 4}}, nil)
	assert.Error(t, err)
	_, err = (&Maker{}).Make(divs("1/4"), nil)
	assert.Error(t, err)
}

func TestCacheState(t *testing.T) {
	tie := Tie{Selector: pattern.Leaves().Index(0)}

	m := &Maker{Generator: Note{}, Commands: []Command{tie}}
	assert.Equal(t, []string{"c'4~", "c'4"}, make1(t, m, "1/4", "1/4"))
	assert.Equal(t, 1, m.State().LogicalTiesProduced)

	m = &Maker{Generator: Note{}, Commands: []Command{CacheState{}, tie}}
	assert.Equal(t, []string{"c'4~", "c'4"}, make1(t, m, "1/4", "1/4"))
	assert.Equal(t, 2, m.State().LogicalTiesProduced)
}

func TestRewriteMeterSpelling(t *testing.T) {
	m := &Maker{
		Generator: Note{},
		Spelling:  Spelling{RewriteMeter: true},
	}
	assert.Equal(t, []string{"c'4.~ c'4"}, make1(t, m, "5/8"))

	m = &Maker{
		Generator: Talea{Counts: []int64{1, 4, 1}, Denominator: 8},
		Commands:  []Command{ExtractTrivial{}, RewriteMeter{}},
	}
	assert.Equal(t, []string{"c'8[ c'8~] c'4. c'8"}, make1(t, m, "3/4"))
}

// statefulness runs the maker once over all divisions and once split at split,
// passing the state between the calls, and checks both agree.
func statefulness(t *testing.T, newMaker func() *Maker, split int, ss ...string) []string {
	t.Helper()
	whole := newMaker()
	want := make1(t, whole, ss...)

	parts := newMaker()
	first, err := parts.Make(divs(ss[:split]...), nil)
	require.NoError(t, err)
	state := parts.State()
	second, err := parts.Make(divs(ss[split:]...), &state)
	require.NoError(t, err)

	assert.Equal(t, want, append(format(first), format(second)...))
	assert.Equal(t, whole.State(), parts.State())
	return want
}

func TestStatefulNoteMask(t *testing.T) {
	got := statefulness(t, func() *Maker {
		return &Maker{
			Generator:       Note{},
			DivisionMasks:   []Mask{SilenceMask(pattern.Index([]int{0}, 2))},
			LogicalTieMasks: []Mask{SustainMask(pattern.Index([]int{2}, 3))},
		}
	}, 2, "4/8", "3/8", "4/8", "3/8", "1/4")
	assert.Equal(t, []string{"r2", "c'4.", "c'2", "c'4.", "r4"}, got)
}

func TestStatefulTalea(t *testing.T) {
	got := statefulness(t, func() *Maker {
		return &Maker{Generator: Talea{Counts: []int64{1, 2, 3, 4}, Denominator: 16}}
	}, 2, "3/8", "3/8", "3/8")
	assert.Equal(t, []string{
		`\tuplet 1/1 { c'16 c'8 c'8. }`,
		`\tuplet 1/1 { c'4 c'16 c'16~ }`,
		`\tuplet 1/1 { c'16 c'8. c'8~ }`,
	}, got)
}

func TestStatefulTaleaState(t *testing.T) {
	m := &Maker{Generator: Talea{Counts: []int64{1, 2, 3, 4}, Denominator: 16}}
	_, err := m.Make(divs("3/8", "3/8"), nil)
	require.NoError(t, err)
	assert.Equal(t, State{
		DivisionsConsumed:      2,
		IncompleteLastNote:     true,
		LogicalTiesProduced:    6,
		TaleaWeightConsumed:    12,
		TaleaWeightDenominator: 16,
	}, m.State())
}

func TestStatefulTaleaFinerDivisions(t *testing.T) {
	got := statefulness(t, func() *Maker {
		return &Maker{Generator: Talea{Counts: []int64{1}, Denominator: 8}}
	}, 1, "3/16", "3/16")
	assert.Equal(t, []string{
		`\tuplet 1/1 { c'8 c'16~ }`,
		`\tuplet 1/1 { c'16 c'8 }`,
	}, got)

	m := &Maker{Generator: Talea{Counts: []int64{1}, Denominator: 8}}
	_, err := m.Make(divs("3/16"), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, m.State().TaleaWeightConsumed)
	assert.Equal(t, 16, m.State().TaleaWeightDenominator)

	// Three talea counts split over finer divisions and two calls.
	statefulness(t, func() *Maker {
		return &Maker{Generator: Talea{Counts: []int64{3, 1, 2}, Denominator: 8, Preamble: []int64{1}}}
	}, 2, "5/16", "1/4", "7/32", "3/8")
}

func TestStatefulEvenDivision(t *testing.T) {
	statefulness(t, func() *Maker {
		return &Maker{
			Generator: EvenDivision{Denominators: []int64{8, 16}, ExtraCounts: []int64{0, 1}},
			Commands:  []Command{Beam{}},
		}
	}, 1, "1/4", "1/4", "1/4")
}

func TestStateString(t *testing.T) {
	s := State{DivisionsConsumed: 3, LogicalTiesProduced: 5, IncompleteLastNote: true, TaleaWeightConsumed: 7}
	assert.Equal(t, "divisions_consumed=3 logical_ties_produced=5 incomplete_last_note talea_weight_consumed=7", s.String())
	assert.Equal(t, 4, s.previousLogicalTies())
	s.TaleaWeightDenominator = 32
	assert.Equal(t, "divisions_consumed=3 logical_ties_produced=5 incomplete_last_note talea_weight_consumed=7/32", s.String())
}
