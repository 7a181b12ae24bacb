// Package pattern holds cyclic index patterns and the selectors that use them
// to pick parts of a voice.
package pattern

import (
	"fmt"
	"slices"
)

// Pattern matches indices, optionally repeating every Period items.
// Negative indices count from the end (of the period, if set).
type Pattern struct {
	Indices  []int `yaml:"indices,omitempty"`
	Period   int   `yaml:"period,omitempty"`
	Inverted bool  `yaml:"inverted,omitempty"`
}

func Index(indices []int, period int) Pattern {
	return Pattern{Indices: indices, Period: period}
}

// First matches the first n items.
func First(n int) Pattern {
	p := Pattern{}
	for i := 0; i < n; i++ {
		p.Indices = append(p.Indices, i)
	}
	return p
}

// Last matches the last n items.
func Last(n int) Pattern {
	p := Pattern{}
	for i := -n; i < 0; i++ {
		p.Indices = append(p.Indices, i)
	}
	return p
}

// All matches everything.
func All() Pattern {
	return Pattern{Inverted: true}
}

// FromVector matches the true positions, cyclically.
func FromVector(v []bool) Pattern {
	p := Pattern{Period: len(v)}
	for i, b := range v {
		if b {
			p.Indices = append(p.Indices, i)
		}
	}
	return p
}

func (p Pattern) Inverse() Pattern {
	return Pattern{Indices: slices.Clone(p.Indices), Period: p.Period, Inverted: !p.Inverted}
}

func (p Pattern) String() string {
	s := fmt.Sprintf("indices=%v", p.Indices)
	if p.Period > 0 {
		s += fmt.Sprintf(" period=%d", p.Period)
	}
	if p.Inverted {
		s += " inverted"
	}
	return s
}

func mod(a, b int) int {
	return ((a % b) + b) % b
}

// Matches reports whether the pattern selects index out of total items, after
// shifting the pattern right by rotation.
func (p Pattern) Matches(index, total, rotation int) bool {
	if index < 0 {
		index += total
	}
	index -= rotation
	var result bool
	if p.Period > 0 {
		index = mod(index, p.Period)
		for _, i := range p.Indices {
			if i < 0 {
				i += p.Period
			}
			if i == index {
				result = true
				break
			}
		}
	} else {
		for _, i := range p.Indices {
			if i < 0 {
				i += total
			}
			if i == index {
				result = true
				break
			}
		}
	}
	return result != p.Inverted
}

// Validate rejects indices outside a set period.
func (p Pattern) Validate() error {
	if p.Period < 0 {
		return fmt.Errorf("negative period %d", p.Period)
	}
	if p.Period == 0 {
		return nil
	}
	for _, i := range p.Indices {
		if i >= p.Period || i < -p.Period {
			return fmt.Errorf("index %d outside period %d", i, p.Period)
		}
	}
	return nil
}
