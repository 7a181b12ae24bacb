package meter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/score"
)

func d(s string) duration.Duration {
	return duration.MustParse(s)
}

func div(s string) duration.Division {
	v, err := duration.ParseDivision(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestNew(t *testing.T) {
	for _, tc := range []struct {
		pair, want string
		increase   bool
	}{
		{"4/4", "(4/4 (1/4 1/4 1/4 1/4))", false},
		{"3/4", "(3/4 (1/4 1/4 1/4))", false},
		{"6/8", "(6/8 ((3/8 (1/8 1/8 1/8)) (3/8 (1/8 1/8 1/8))))", false},
		{"5/8", "(5/8 ((3/8 (1/8 1/8 1/8)) (1/4 (1/8 1/8))))", false},
		{"5/8", "(5/8 ((1/4 (1/8 1/8)) (3/8 (1/8 1/8 1/8))))", true},
		{"7/8", "(7/8 ((3/8 (1/8 1/8 1/8)) (1/4 (1/8 1/8)) (1/4 (1/8 1/8))))", false},
		{"1/4", "(1/4 (1/4))", false},
	} {
		t.Run(tc.pair, func(t *testing.T) {
			m := New(div(tc.pair), tc.increase)
			assert.Equal(t, tc.want, m.String())
			parsed, err := Parse(tc.want)
			require.NoError(t, err)
			assert.Equal(t, tc.want, parsed.String())
			assert.Equal(t, m.Duration(), parsed.Duration())
		})
	}
}

func TestParseErrors(t *testing.T) {
	for _, s := range []string{
		"",
		"3/4",
		"(3/4 (1/4 1/4))",
		"(3/4 (1/4 1/4 1/4)",
		"(3/4 ())",
		"(3/4 (1/4 1/4 1/4))) ",
	} {
		_, err := Parse(s)
		assert.Error(t, err, s)
	}
}

func TestDepthwiseOffsets(t *testing.T) {
	m := New(div("5/8"), false)
	assert.Equal(t, [][]duration.Duration{
		{d("0"), d("5/8")},
		{d("0"), d("3/8"), d("5/8")},
		{d("0"), d("1/8"), d("1/4"), d("3/8"), d("1/2"), d("5/8")},
	}, m.DepthwiseOffsets())

	uneven := MustParse("(4/4 (1/4 (1/2 (1/4 1/4)) 1/4))")
	assert.Equal(t, []duration.Duration{d("0"), d("1/4"), d("1/2"), d("3/4"), d("1")}, uneven.DepthwiseOffsets()[2])
}

func voice(kind score.Kind, written ...string) *score.Voice {
	var cs []score.Component
	for _, w := range written {
		cs = append(cs, score.NewLeaf(kind, d(w)))
	}
	return score.NewVoice(cs...)
}

func rewrite(t *testing.T, v *score.Voice, opts RewriteOptions, pairs ...string) string {
	t.Helper()
	var meters []Meter
	for _, p := range pairs {
		meters = append(meters, New(div(p), false))
	}
	require.NoError(t, Rewrite(v, meters, opts))
	return score.Format(v.Components)
}

func TestRewrite(t *testing.T) {
	for _, tc := range []struct {
		name    string
		written []string
		pairs   []string
		want    string
	}{
		{"whole", []string{"1"}, []string{"4/4"}, "c'1"},
		{"syncopation", []string{"1/8", "3/4", "1/8"}, []string{"4/4"}, "c'8[ c'8~] c'2~ c'8[ c'8]"},
		{"barline", []string{"1", "1/2"}, []string{"3/4", "3/4"}, "c'2.~ c'4 c'2"},
		{"compound", []string{"1/8", "1/2", "1/8"}, []string{"3/4"}, "c'8[ c'8~] c'4. c'8"},
		{"default_5_8", []string{"1/8", "1/4", "1/4"}, []string{"5/8"}, "c'8 c'4 c'4"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			v := voice(score.NoteKind, tc.written...)
			got := rewrite(t, v, RewriteOptions{}, tc.pairs...)
			assert.Equal(t, tc.want, got)
			// Rewriting again changes nothing.
			assert.Equal(t, tc.want, rewrite(t, v, RewriteOptions{}, tc.pairs...))
		})
	}
}

func TestRewriteRests(t *testing.T) {
	v := voice(score.RestKind, "1/8", "3/4", "1/8")
	assert.Equal(t, "r1", rewrite(t, v, RewriteOptions{}, "4/4"))
}

func TestRewriteBoundaryDepth(t *testing.T) {
	depth := 1
	v := voice(score.NoteKind, "1/8", "1/2", "1/8")
	assert.Equal(t, "c'8[ c'8~] c'4~ c'8[ c'8]", rewrite(t, v, RewriteOptions{BoundaryDepth: &depth}, "3/4"))
}

func TestRewriteReferenceMeter(t *testing.T) {
	ref := MustParse("(5/8 ((2/8 (1/8 1/8)) (3/8 (1/8 1/8 1/8))))")
	v := voice(score.NoteKind, "1/8", "1/4", "1/4")
	got := rewrite(t, v, RewriteOptions{ReferenceMeters: []Meter{ref}}, "5/8")
	assert.Equal(t, "c'8[ c'8~] c'8 c'4", got)
}

func TestRewriteKeepsTuplets(t *testing.T) {
	tup := score.NewTuplet(d("2/3"),
		score.NewLeaf(score.NoteKind, d("1/8")),
		score.NewLeaf(score.NoteKind, d("1/8")),
		score.NewLeaf(score.NoteKind, d("1/8")))
	v := score.NewVoice(tup, score.NewLeaf(score.NoteKind, d("3/4")))
	assert.Equal(t, `\tuplet 3/2 { c'8[ c'8 c'8] } c'2.`, rewrite(t, v, RewriteOptions{}, "4/4"))
}

func TestRewriteMismatch(t *testing.T) {
	v := voice(score.NoteKind, "1/2")
	err := Rewrite(v, []Meter{New(div("4/4"), false)}, RewriteOptions{})
	assert.ErrorContains(t, err, "meter duration 1 does not match music duration 1/2")
}
