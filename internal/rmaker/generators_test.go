package rmaker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/score"
)

func TestGenerators(t *testing.T) {
	for _, tc := range []struct {
		name      string
		generator Generator
		spelling  Spelling
		divisions []string
		want      []string
	}{
		{"note_metric", Note{}, Spelling{SpellMetrically: SpellAlways},
			[]string{"6/8"}, []string{"c'4.~ c'4."}},
		{"note_unassignable_only", Note{}, Spelling{SpellMetrically: SpellUnassignable},
			[]string{"6/8", "5/8"}, []string{"c'2.", "c'4.~ c'4"}},
		{"note_repeat_ties", Note{}, Spelling{RepeatTies: true},
			[]string{"5/8"}, []string{`c'2 c'8\repeatTie`}},
		{"note_forbidden", Note{}, Spelling{ForbiddenNote: duration.New(1, 2)},
			[]string{"3/4"}, []string{"c'4~ c'4~ c'4"}},
		{"note_tuplet", Note{}, Spelling{},
			[]string{"1/3"}, []string{`\tuplet 3/2 { c'2 }`}},
		{"burnish", Note{Burnish: &Burnish{LeftKinds: []score.Kind{score.RestKind}, LeftCount: 1, RightKinds: []score.Kind{score.RestKind}, RightCount: 1}}, Spelling{},
			[]string{"1/4", "1/4", "5/8"}, []string{"r4", "c'4", "r2 r8"}},
		{"even", EvenDivision{Denominators: []int64{16}, ExtraCounts: []int64{1}}, Spelling{},
			[]string{"1/4"}, []string{`\tuplet 5/4 { c'16 c'16 c'16 c'16 c'16 }`}},
		{"even_short", EvenDivision{Denominators: []int64{8}}, Spelling{},
			[]string{"1/16"}, []string{`\tuplet 1/1 { c'16 }`}},
		{"even_cycle", EvenDivision{Denominators: []int64{8, 16}}, Spelling{},
			[]string{"1/4", "1/8"}, []string{`\tuplet 2/2 { c'8 c'8 }`, `\tuplet 2/2 { c'16 c'16 }`}},
		{"tuplets", Tuplets{Proportions: [][]int64{{1, 2}, {1, 1, 1}}}, Spelling{},
			[]string{"3/8", "1/4"}, []string{`\tuplet 1/1 { c'8 c'4 }`, `\tuplet 3/2 { c'8 c'8 c'8 }`}},
		{"tuplets_zero_part", Tuplets{Proportions: [][]int64{{1, 0, -1}}}, Spelling{},
			[]string{"1/4"}, []string{`\tuplet 1/1 { c'8 r8 }`}},
		{"talea_extra_counts", Talea{Counts: []int64{1}, Denominator: 16, ExtraCounts: []int64{1}}, Spelling{},
			[]string{"1/8"}, []string{`\tuplet 3/2 { c'16 c'16 c'16 }`}},
		{"talea_end_counts", Talea{Counts: []int64{1}, Denominator: 8, EndCounts: []int64{-1}}, Spelling{},
			[]string{"3/8"}, []string{`\tuplet 1/1 { c'8 c'8 r8 }`}},
		{"talea_preamble", Talea{Counts: []int64{2}, Denominator: 8, Preamble: []int64{-1}}, Spelling{},
			[]string{"5/8"}, []string{`\tuplet 1/1 { r8 c'4 c'4 }`}},
		{"talea_advance", Talea{Counts: []int64{1, 2}, Denominator: 8, Advance: 1}, Spelling{},
			[]string{"3/8"}, []string{`\tuplet 1/1 { c'4 c'8 }`}},
		{"talea_repeat_ties", Talea{Counts: []int64{3}, Denominator: 8}, Spelling{RepeatTies: true},
			[]string{"1/4", "1/4", "1/4"}, []string{`\tuplet 1/1 { c'4 }`, `\tuplet 1/1 { c'8\repeatTie c'8 }`, `\tuplet 1/1 { c'4\repeatTie }`}},
		{"incised", Incised{PrefixTalea: []int64{-1}, PrefixCounts: []int{1}, SuffixTalea: []int64{-1}, SuffixCounts: []int{1}, TaleaDenominator: 16}, Spelling{},
			[]string{"1/4", "1/4"}, []string{`\tuplet 1/1 { r16 c'8 r16 }`, `\tuplet 1/1 { r16 c'8 r16 }`}},
		{"incised_outer", Incised{PrefixTalea: []int64{-1}, PrefixCounts: []int{1}, SuffixTalea: []int64{-1}, SuffixCounts: []int{1}, TaleaDenominator: 16, OuterTupletsOnly: true}, Spelling{},
			[]string{"1/4", "1/4"}, []string{`\tuplet 1/1 { r16 c'8. }`, `\tuplet 1/1 { c'8. r16 }`}},
		{"incised_fill_with_rests", Incised{PrefixTalea: []int64{1}, PrefixCounts: []int{1}, TaleaDenominator: 16, FillWithRests: true}, Spelling{},
			[]string{"1/4"}, []string{`\tuplet 1/1 { c'16 r8. }`}},
		{"incised_body_proportion", Incised{BodyProportion: []int64{1, -1}, TaleaDenominator: 8}, Spelling{},
			[]string{"1/4"}, []string{`\tuplet 1/1 { c'8 r8 }`}},
		{"incised_extra_counts", Incised{ExtraCounts: []int64{1}, BodyProportion: []int64{1, 1, 1}, TaleaDenominator: 8}, Spelling{},
			[]string{"1/4"}, []string{`\tuplet 3/2 { c'8 c'8 c'8 }`}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := &Maker{Generator: tc.generator, Spelling: tc.spelling}
			assert.Equal(t, tc.want, make1(t, m, tc.divisions...))
		})
	}
}

func TestGeneratorErrors(t *testing.T) {
	for _, tc := range []struct {
		name      string
		generator Generator
		divisions []string
	}{
		{"even_no_denominators", EvenDivision{}, []string{"1/4"}},
		{"even_not_dyadic", EvenDivision{Denominators: []int64{8}}, []string{"1/3"}},
		{"even_denominator", EvenDivision{Denominators: []int64{6}}, []string{"1/4"}},
		{"talea_denominator", Talea{Counts: []int64{1}, Denominator: 12}, []string{"1/4"}},
		{"talea_zero", Talea{Counts: []int64{1, 0}, Denominator: 8}, []string{"1/4"}},
		{"talea_read_once", Talea{Counts: []int64{1}, Denominator: 8, ReadOnce: true}, []string{"3/8"}},
		{"talea_end_counts", Talea{Counts: []int64{1}, Denominator: 8, EndCounts: []int64{4}}, []string{"3/8"}},
		{"tuplets_empty", Tuplets{}, []string{"1/4"}},
		{"tuplets_weightless", Tuplets{Proportions: [][]int64{{0}}}, []string{"1/4"}},
		{"incised_counts", Incised{PrefixTalea: []int64{1}, TaleaDenominator: 8}, []string{"1/4"}},
		{"incised_zero", Incised{PrefixTalea: []int64{0}, PrefixCounts: []int{1}, TaleaDenominator: 8}, []string{"1/4"}},
		{"accelerando_interpolation", Accelerando{Interpolations: []Interpolation{{}}}, []string{"1/4"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := (&Maker{Generator: tc.generator}).Make(divs(tc.divisions...), nil)
			assert.Error(t, err)
		})
	}
}

func TestTaleaAdvanced(t *testing.T) {
	talea := Talea{Counts: []int64{1, 2, 3}, Preamble: []int64{-2}}
	assert.Equal(t, []int64{-1}, talea.advanced(1).Preamble)
	assert.Empty(t, talea.advanced(2).Preamble)
	assert.Equal(t, []int64{1, 3}, talea.advanced(4).Preamble)
	assert.Equal(t, []int64{2, 3}, talea.advanced(9).Preamble)

	assert.True(t, talea.contains(2))
	assert.False(t, talea.contains(1))
	assert.True(t, talea.contains(5))
	assert.False(t, talea.contains(6))
	assert.True(t, talea.contains(8))
}

func TestSpellMetrically(t *testing.T) {
	for _, s := range []SpellMetrically{SpellPlain, SpellAlways, SpellUnassignable} {
		got, err := ParseSpellMetrically(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseSpellMetrically("sometimes")
	assert.Error(t, err)
}
