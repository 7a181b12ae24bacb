// Package interpolate produces the note durations of accelerandi and ritardandi.
package interpolate

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/divVerent/rmakers/internal/duration"
)

// ErrTooSmall is returned when the total is shorter than start and stop together.
var ErrTooSmall = errors.New("interpolate: total duration too small")

// Cosine interpolates between y1 and y2 with zero slope at both ends; mu is in [0, 1].
func Cosine(y1, y2, mu float64) float64 {
	mu2 := (1 - math.Cos(mu*math.Pi)) / 2
	return y1*(1-mu2) + y2*mu2
}

// Exponential interpolates between y1 and y2; exponent 1 is linear.
func Exponential(y1, y2, mu, exponent float64) float64 {
	p := math.Pow(mu, exponent)
	return y1*(1-p) + y2*p
}

// Curve selects the interpolation shape.
type Curve interface {
	At(y1, y2, mu float64) float64
	String() string
}

type CosineCurve struct{}

func (CosineCurve) At(y1, y2, mu float64) float64 { return Cosine(y1, y2, mu) }
func (CosineCurve) String() string                { return "cosine" }

type ExponentialCurve struct {
	Exponent float64
}

func (c ExponentialCurve) At(y1, y2, mu float64) float64 { return Exponential(y1, y2, mu, c.Exponent) }
func (c ExponentialCurve) String() string {
	return strconv.FormatFloat(c.Exponent, 'g', -1, 64)
}

// ParseCurve accepts "cosine" (also the empty string) or an exponent.
func ParseCurve(s string) (Curve, error) {
	if s == "" || s == "cosine" {
		return CosineCurve{}, nil
	}
	e, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid curve %q: want \"cosine\" or an exponent", s)
	}
	if e <= 0 {
		return nil, fmt.Errorf("invalid curve %q: exponent must be positive", s)
	}
	return ExponentialCurve{Exponent: e}, nil
}

// Divide walks from 0 to total, emitting the curve value at each position and advancing by it.
// The result is rescaled to sum to total.
func Divide(total, start, stop float64, curve Curve) ([]float64, error) {
	if total <= 0 || start <= 0 || stop <= 0 {
		return nil, fmt.Errorf("interpolate: non-positive duration in Divide(%v, %v, %v)", total, start, stop)
	}
	if total < start+stop {
		return nil, ErrTooSmall
	}
	var values []float64
	var partial float64
	for partial < total {
		v := curve.At(start, stop, partial/total)
		values = append(values, v)
		partial += v
	}
	factor := total / partial
	for i := range values {
		values[i] *= factor
	}
	return values, nil
}

// DivideMultiple interpolates segment i of totals from refs[i] to refs[i+1] and concatenates the results.
func DivideMultiple(totals, refs []float64, curve Curve) ([]float64, error) {
	if len(totals) != len(refs)-1 {
		return nil, fmt.Errorf("interpolate: got %d totals for %d reference durations", len(totals), len(refs))
	}
	var out []float64
	for i, total := range totals {
		values, err := Divide(total, refs[i], refs[i+1], curve)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		out = append(out, values...)
	}
	return out, nil
}

// Exact rounds each value to a multiple of 1/den and then adjusts the last one
// so that the result sums to total exactly. If that leaves nothing positive for
// the last value, the error wraps ErrTooSmall.
func Exact(values []float64, total duration.Duration, den int64) ([]duration.Duration, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]duration.Duration, len(values))
	var sum duration.Duration
	minimum := duration.New(1, den)
	for i, v := range values[:len(values)-1] {
		d := duration.Round(v, den)
		if d.Less(minimum) {
			d = minimum
		}
		out[i] = d
		sum = sum.Add(d)
	}
	last := total.Sub(sum)
	if last.Sign() <= 0 {
		return nil, fmt.Errorf("rounded durations add up to %v of %v: %w", sum, total, ErrTooSmall)
	}
	out[len(out)-1] = last
	return out, nil
}

// Direction classifies a sequence of durations.
type Direction int

const (
	Steady Direction = iota
	Accelerando
	Ritardando
)

func (d Direction) String() string {
	switch d {
	case Accelerando:
		return "accelerando"
	case Ritardando:
		return "ritardando"
	}
	return "steady"
}

// Classify compares the first and the last duration.
func Classify(durations []duration.Duration) Direction {
	if len(durations) == 0 {
		return Steady
	}
	first, last := durations[0], durations[len(durations)-1]
	switch first.Cmp(last) {
	case +1:
		return Accelerando
	case -1:
		return Ritardando
	}
	return Steady
}
