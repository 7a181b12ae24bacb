package duration

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Division is a nonreduced num/den pair, like a time signature: 4/8 stays 4/8.
type Division struct {
	Num int64
	Den int64
}

func (d Division) Duration() Duration {
	return New(d.Num, d.Den)
}

func (d Division) String() string {
	return fmt.Sprintf("%d/%d", d.Num, d.Den)
}

// ParseDivision reads "n/d". Unlike Parse, the pair is not reduced.
func ParseDivision(s string) (Division, error) {
	var div Division
	_, err := fmt.Sscanf(s, "%d/%d", &div.Num, &div.Den)
	if err != nil {
		return Division{}, fmt.Errorf("invalid division %q: not in format n/d", s)
	}
	if div.Den <= 0 {
		return Division{}, fmt.Errorf("invalid division %q: non-positive denominator", s)
	}
	return div, nil
}

func (d Division) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d *Division) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	div, err := ParseDivision(s)
	if err != nil {
		return err
	}
	*d = div
	return nil
}

// Durations converts each division to its exact duration.
func Durations(divs []Division) []Duration {
	out := make([]Duration, len(divs))
	for i, d := range divs {
		out[i] = d.Duration()
	}
	return out
}
