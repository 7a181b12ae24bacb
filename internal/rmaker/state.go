package rmaker

import (
	"fmt"
)

// State is carried from one call of a maker to the next so that cyclic
// patterns continue where the previous call stopped.
type State struct {
	DivisionsConsumed int `yaml:"divisions_consumed"`
	// IncompleteLastNote is set when the last note of a talea call is cut
	// short and will be continued by the next call.
	IncompleteLastNote  bool `yaml:"incomplete_last_note,omitempty"`
	LogicalTiesProduced int  `yaml:"logical_ties_produced"`
	// TaleaWeightConsumed is the talea read so far, in units of
	// 1/TaleaWeightDenominator; a zero denominator means the talea's own.
	TaleaWeightConsumed    int `yaml:"talea_weight_consumed,omitempty"`
	TaleaWeightDenominator int `yaml:"talea_weight_denominator,omitempty"`
}

func (s State) String() string {
	str := fmt.Sprintf("divisions_consumed=%d logical_ties_produced=%d", s.DivisionsConsumed, s.LogicalTiesProduced)
	if s.IncompleteLastNote {
		str += " incomplete_last_note"
	}
	if s.TaleaWeightConsumed != 0 {
		str += fmt.Sprintf(" talea_weight_consumed=%d", s.TaleaWeightConsumed)
		if s.TaleaWeightDenominator != 0 {
			str += fmt.Sprintf("/%d", s.TaleaWeightDenominator)
		}
	}
	return str
}

// previousLogicalTies is the logical tie count patterns continue from. A note
// cut short by the previous call is continued in this one, so it is not counted twice.
func (s State) previousLogicalTies() int {
	n := s.LogicalTiesProduced
	if s.IncompleteLastNote {
		n--
	}
	return n
}
