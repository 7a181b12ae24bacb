package duration

import (
	"fmt"
	"math"
	"math/bits"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
)

// Duration is an exact rational number of whole notes, always kept in lowest terms.
//
// The zero value is a valid zero duration.
type Duration struct {
	num, den int64
}

func GCD[T constraints.Integer](a, b T) T {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func LCM[T constraints.Integer](a, b T) T {
	if a == 0 || b == 0 {
		return 0
	}
	l := a / GCD(a, b) * b
	if l < 0 {
		return -l
	}
	return l
}

// New returns num/den in lowest terms. It panics if den is zero.
func New(num, den int64) Duration {
	if den == 0 {
		panic(fmt.Sprintf("duration.New(%d, %d): zero denominator", num, den))
	}
	if den < 0 {
		num, den = -num, -den
	}
	if num == 0 {
		return Duration{0, 1}
	}
	g := GCD(num, den)
	return Duration{num / g, den / g}
}

// Int returns the duration n/1.
func Int(n int64) Duration {
	return Duration{n, 1}
}

func (d Duration) parts() (int64, int64) {
	if d.den == 0 {
		return 0, 1
	}
	return d.num, d.den
}

func (d Duration) Num() int64 {
	n, _ := d.parts()
	return n
}

func (d Duration) Den() int64 {
	_, m := d.parts()
	return m
}

func (d Duration) Add(o Duration) Duration {
	a, b := d.parts()
	c, e := o.parts()
	l := LCM(b, e)
	return New(a*(l/b)+c*(l/e), l)
}

func (d Duration) Sub(o Duration) Duration {
	return d.Add(o.Neg())
}

func (d Duration) Mul(o Duration) Duration {
	a, b := d.parts()
	c, e := o.parts()
	// Cross-reduce first to keep the products small.
	g1 := GCD(a, e)
	g2 := GCD(c, b)
	if g1 == 0 {
		g1 = 1
	}
	if g2 == 0 {
		g2 = 1
	}
	return New((a/g1)*(c/g2), (b/g2)*(e/g1))
}

func (d Duration) Div(o Duration) Duration {
	return d.Mul(o.Reciprocal())
}

// Scale multiplies by an integer.
func (d Duration) Scale(k int64) Duration {
	return d.Mul(Int(k))
}

// Reciprocal returns 1/d. It panics on zero.
func (d Duration) Reciprocal() Duration {
	a, b := d.parts()
	return New(b, a)
}

func (d Duration) Neg() Duration {
	a, b := d.parts()
	return Duration{-a, b}
}

func (d Duration) Abs() Duration {
	if d.Sign() < 0 {
		return d.Neg()
	}
	return d
}

// Cmp returns -1, 0 or +1.
func (d Duration) Cmp(o Duration) int {
	a, b := d.parts()
	c, e := o.parts()
	x, y := a*e, c*b
	switch {
	case x < y:
		return -1
	case x > y:
		return +1
	}
	return 0
}

func (d Duration) Less(o Duration) bool {
	return d.Cmp(o) < 0
}

func (d Duration) Equal(o Duration) bool {
	return d.Cmp(o) == 0
}

func (d Duration) Sign() int {
	switch n := d.Num(); {
	case n < 0:
		return -1
	case n > 0:
		return +1
	}
	return 0
}

func (d Duration) IsZero() bool {
	return d.Num() == 0
}

func (d Duration) Float64() float64 {
	a, b := d.parts()
	return float64(a) / float64(b)
}

func (d Duration) String() string {
	a, b := d.parts()
	if b == 1 {
		return strconv.FormatInt(a, 10)
	}
	return fmt.Sprintf("%d/%d", a, b)
}

// IsDyadic reports whether the denominator is a power of two.
func (d Duration) IsDyadic() bool {
	return IsPowerOfTwo(d.Den())
}

// IsAssignable reports whether the duration can be written as a single, possibly dotted, note head.
func (d Duration) IsAssignable() bool {
	a, b := d.parts()
	if a <= 0 || !IsPowerOfTwo(b) {
		return false
	}
	if !d.Less(Int(16)) {
		return false
	}
	return isCanonic(a)
}

// DotCount returns the number of dots needed to write an assignable duration.
func (d Duration) DotCount() int {
	return bits.OnesCount64(uint64(d.Num())) - 1
}

// Base returns the undotted part of an assignable duration.
func (d Duration) Base() Duration {
	a, b := d.parts()
	hi := bits.Len64(uint64(a)) - 1
	return New(int64(1)<<hi, b)
}

// FlagCount returns the number of flags (and thus beams) of an assignable written duration.
func (d Duration) FlagCount() int {
	a, b := d.parts()
	hi := bits.Len64(uint64(a)) - 1
	n := bits.Len64(uint64(b)) - 1 - hi - 2
	if n < 0 {
		return 0
	}
	return n
}

// WithDenominator returns d as a nonreduced pair over den, or over the smallest multiple of den that can represent d.
func (d Duration) WithDenominator(den int64) Division {
	a, b := d.parts()
	l := LCM(b, den)
	return Division{Num: a * (l / b), Den: l}
}

// Round returns the multiple of 1/den nearest to f.
func Round(f float64, den int64) Duration {
	return New(int64(math.Round(f*float64(den))), den)
}

// Sum adds up all given durations.
func Sum(ds ...Duration) Duration {
	var s Duration
	for _, d := range ds {
		s = s.Add(d)
	}
	return s
}

// Min returns the smaller of two durations.
func Min(a, b Duration) Duration {
	if b.Less(a) {
		return b
	}
	return a
}

// Parse reads "n/d" or "n".
func Parse(s string) (Duration, error) {
	numStr, denStr, found := strings.Cut(strings.TrimSpace(s), "/")
	num, err := strconv.ParseInt(strings.TrimSpace(numStr), 10, 64)
	if err != nil {
		return Duration{}, fmt.Errorf("invalid duration %q: %v", s, err)
	}
	den := int64(1)
	if found {
		den, err = strconv.ParseInt(strings.TrimSpace(denStr), 10, 64)
		if err != nil {
			return Duration{}, fmt.Errorf("invalid duration %q: %v", s, err)
		}
		if den == 0 {
			return Duration{}, fmt.Errorf("invalid duration %q: zero denominator", s)
		}
	}
	return New(num, den), nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Duration {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

func IsPowerOfTwo(n int64) bool {
	return n > 0 && n&(n-1) == 0
}

// GreatestPowerOfTwoLE returns the largest power of two not greater than n.
func GreatestPowerOfTwoLE(n int64) int64 {
	if n <= 0 {
		return 0
	}
	return int64(1) << (bits.Len64(uint64(n)) - 1)
}

func isCanonic(n int64) bool {
	if n <= 0 {
		return false
	}
	m := n >> bits.TrailingZeros64(uint64(n))
	return m&(m+1) == 0
}

// CanonicParts splits n into runs of consecutive one bits, largest first.
// Each part is the numerator of a notehead that can be written with dots.
// Negative n yields negative parts.
func CanonicParts(n int64) []int64 {
	sign := int64(1)
	if n < 0 {
		sign, n = -1, -n
	}
	var parts []int64
	for n > 0 {
		b := bits.Len64(uint64(n)) - 1
		var part int64
		for b >= 0 && n&(int64(1)<<b) != 0 {
			part |= int64(1) << b
			b--
		}
		parts = append(parts, sign*part)
		n &^= part
	}
	return parts
}
