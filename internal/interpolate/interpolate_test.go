package interpolate

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/divVerent/rmakers/internal/duration"
)

func sum(values []float64) float64 {
	var s float64
	for _, v := range values {
		s += v
	}
	return s
}

func TestDivideLinear(t *testing.T) {
	values, err := Divide(10, 1, 1, ExponentialCurve{Exponent: 1})
	require.NoError(t, err)
	assert.Len(t, values, 10)
	for _, v := range values {
		assert.InDelta(t, 1.0, v, 1e-9)
	}
	assert.InDelta(t, 10.0, sum(values), 1e-9)
}

func TestDivideCosine(t *testing.T) {
	values, err := Divide(10, 5, 1, CosineCurve{})
	require.NoError(t, err)
	require.Len(t, values, 4)
	for i, want := range []float64{4.798, 2.879, 1.326, 0.995} {
		assert.InDelta(t, want, values[i], 1e-3)
	}
	assert.InDelta(t, 10.0, sum(values), 1e-9)
}

func TestDivideTooSmall(t *testing.T) {
	_, err := Divide(0.125, 0.125, 0.0625, CosineCurve{})
	assert.True(t, errors.Is(err, ErrTooSmall))
	_, err = Divide(1, 0, 1, CosineCurve{})
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrTooSmall))
}

func TestMonotonic(t *testing.T) {
	for _, tc := range []struct {
		start, stop float64
		curve       Curve
	}{
		{1, 3, CosineCurve{}},
		{3, 1, CosineCurve{}},
		{1, 3, ExponentialCurve{Exponent: 2}},
		{3, 1, ExponentialCurve{Exponent: 0.5}},
		{2, 2, CosineCurve{}},
	} {
		t.Run(fmt.Sprintf("%v-%v-%v", tc.start, tc.stop, tc.curve), func(t *testing.T) {
			values, err := Divide(40, tc.start, tc.stop, tc.curve)
			require.NoError(t, err)
			for i := 1; i < len(values); i++ {
				switch {
				case tc.start < tc.stop:
					assert.LessOrEqual(t, values[i-1], values[i])
				case tc.start > tc.stop:
					assert.GreaterOrEqual(t, values[i-1], values[i])
				default:
					assert.InDelta(t, values[0], values[i], 1e-9)
				}
			}
		})
	}
}

func TestDivideMultiple(t *testing.T) {
	values, err := DivideMultiple([]float64{10, 10}, []float64{1, 1, 1}, ExponentialCurve{Exponent: 1})
	require.NoError(t, err)
	assert.Len(t, values, 20)
	_, err = DivideMultiple([]float64{10}, []float64{1}, CosineCurve{})
	assert.Error(t, err)
}

func TestExact(t *testing.T) {
	total := duration.New(5, 8)
	values, err := Divide(total.Float64(), 1.0/8, 1.0/20, CosineCurve{})
	require.NoError(t, err)
	durations, err := Exact(values, total, 1024)
	require.NoError(t, err)
	require.Len(t, durations, 8)
	assert.Equal(t, total, duration.Sum(durations...))
	assert.Equal(t, duration.New(61, 512), durations[0])
	assert.Equal(t, duration.New(25, 512), durations[7])
	assert.Equal(t, Accelerando, Classify(durations))
}

func TestExactNoRoomForLast(t *testing.T) {
	total := duration.New(5, 8)
	values, err := Divide(total.Float64(), 1.0/8, 1.0/4096, CosineCurve{})
	require.NoError(t, err)
	_, err = Exact(values, total, 1024)
	assert.True(t, errors.Is(err, ErrTooSmall))

	// Values below 1/den are raised to it, leaving nothing for the last one.
	_, err = Exact([]float64{0.0001, 0.0001, 0.0001}, duration.New(2, 1024), 1024)
	assert.True(t, errors.Is(err, ErrTooSmall))
}

func TestClassify(t *testing.T) {
	assert := assert.New(t)
	q, e := duration.New(1, 4), duration.New(1, 8)
	assert.Equal(Ritardando, Classify([]duration.Duration{e, q}))
	assert.Equal(Accelerando, Classify([]duration.Duration{q, e}))
	assert.Equal(Steady, Classify([]duration.Duration{q, e, q}))
	assert.Equal(Steady, Classify(nil))
}

func TestParseCurve(t *testing.T) {
	c, err := ParseCurve("")
	require.NoError(t, err)
	assert.Equal(t, CosineCurve{}, c)
	c, err = ParseCurve("2")
	require.NoError(t, err)
	assert.Equal(t, ExponentialCurve{Exponent: 2}, c)
	_, err = ParseCurve("-1")
	assert.Error(t, err)
}
