package duration

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestArithmetic(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(New(5, 8), New(1, 2).Add(New(1, 8)))
	assert.Equal(New(3, 8), New(1, 2).Sub(New(1, 8)))
	assert.Equal(New(3, 32), New(3, 8).Mul(New(1, 4)))
	assert.Equal(New(3, 2), New(3, 8).Div(New(1, 4)))
	assert.Equal(New(-1, 4), New(1, -4))
	assert.Equal(New(0, 1), New(0, 7))
	assert.True(Duration{}.IsZero())
	assert.Equal(New(1, 4), Duration{}.Add(New(1, 4)))
	assert.Equal(-1, New(1, 8).Cmp(New(1, 4)))
	assert.Equal("5/8", New(10, 16).String())
	assert.Equal("2", Int(2).String())
}

func TestAssignable(t *testing.T) {
	for _, tc := range []struct {
		d     Duration
		want  bool
		dots  int
		flags int
	}{
		{New(1, 4), true, 0, 0},
		{New(3, 8), true, 1, 0},
		{New(3, 16), true, 1, 1},
		{New(7, 16), true, 2, 0},
		{New(1, 16), true, 0, 2},
		{New(5, 8), false, 0, 0},
		{New(1, 12), false, 0, 0},
		{Int(2), true, 0, 0},
		{Int(16), false, 0, 0},
	} {
		t.Run(tc.d.String(), func(t *testing.T) {
			assert := assert.New(t)
			assert.Equal(tc.want, tc.d.IsAssignable())
			if tc.want {
				assert.Equal(tc.dots, tc.d.DotCount())
				assert.Equal(tc.flags, tc.d.FlagCount())
			}
		})
	}
}

func TestCanonicParts(t *testing.T) {
	for n, want := range map[int64][]int64{
		1:  {1},
		5:  {4, 1},
		7:  {7},
		11: {8, 3},
		13: {12, 1},
		-5: {-4, -1},
	} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			assert.Equal(t, want, CanonicParts(n))
		})
	}
}

func TestParse(t *testing.T) {
	d, err := Parse("6/16")
	require.NoError(t, err)
	assert.Equal(t, New(3, 8), d)
	_, err = Parse("1/0")
	assert.Error(t, err)
	div, err := ParseDivision("6/16")
	require.NoError(t, err)
	assert.Equal(t, Division{6, 16}, div)
	assert.Equal(t, New(3, 8), div.Duration())
}

func TestDivisionYAML(t *testing.T) {
	var divs []Division
	require.NoError(t, yaml.Unmarshal([]byte("[4/8, 3/8]"), &divs))
	assert.Equal(t, []Division{{4, 8}, {3, 8}}, divs)
	out, err := yaml.Marshal(divs)
	require.NoError(t, err)
	assert.Equal(t, "- 4/8\n- 3/8\n", string(out))
}

func TestWithDenominator(t *testing.T) {
	assert.Equal(t, Division{6, 16}, New(3, 8).WithDenominator(16))
	assert.Equal(t, Division{1, 3}, New(1, 3).WithDenominator(1))
	assert.Equal(t, New(61, 512), Round(0.1195995569650848, 1024))
}
