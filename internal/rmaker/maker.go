// Package rmaker turns divisions into rhythms: a generator writes the raw
// music, masks silence or sustain parts of it and commands then tie, beam and
// respell the result.
package rmaker

import (
	"fmt"
	"log"

	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/pattern"
	"github.com/divVerent/rmakers/internal/score"
)

// Context is what a generator sees of the call it runs in.
type Context struct {
	Previous State
	// State receives the generator specific fields of the new state.
	State    *State
	Spelling Spelling
	Tag      string
}

// Generator writes the raw music, one component list per division.
type Generator interface {
	Generate(divisions []duration.Division, ctx *Context) ([][]score.Component, error)
}

// Env is what a command sees of the call it runs in.
type Env struct {
	Divisions []duration.Division
	Durations []duration.Duration
	// PreviousLogicalTies is the number of logical ties earlier calls produced.
	PreviousLogicalTies int
	Spelling            Spelling
	Tag                 string
}

func (e *Env) target(v *score.Voice) pattern.Target {
	return pattern.Target{Voice: v, Divisions: e.Durations, Previous: e.PreviousLogicalTies}
}

// Command transforms the music in place.
type Command interface {
	Apply(v *score.Voice, env *Env)
}

// Maker is a rhythm maker. It keeps the state of its last call; calls must not overlap.
type Maker struct {
	Generator       Generator
	Spelling        Spelling
	DivisionMasks   []Mask
	LogicalTieMasks []Mask
	Commands        []Command
	Tag             string

	previous State
	state    State
	cached   bool
}

// State returns the state after the last call.
func (m *Maker) State() State {
	return m.state
}

// Make returns one selection per division. previous is the state to continue
// from, usually what State returned after the last call; nil starts afresh.
func (m *Maker) Make(divisions []duration.Division, previous *State) ([]score.Selection, error) {
	if m.Generator == nil {
		return nil, fmt.Errorf("rmaker: no generator")
	}
	m.previous = State{}
	if previous != nil {
		m.previous = *previous
	}
	m.cached = false
	durations := make([]duration.Duration, len(divisions))
	var total duration.Duration
	for i, d := range divisions {
		if d.Den <= 0 || d.Num <= 0 {
			return nil, fmt.Errorf("rmaker: division %d is not positive: %v", i, d)
		}
		durations[i] = d.Duration()
		total = total.Add(durations[i])
	}

	newState := State{}
	ctx := &Context{Previous: m.previous, State: &newState, Spelling: m.Spelling, Tag: m.Tag}
	lists, err := m.Generator.Generate(divisions, ctx)
	if err != nil {
		return nil, err
	}
	var cs []score.Component
	for _, l := range lists {
		cs = append(cs, l...)
	}
	v := score.NewVoice(cs...)
	if got := v.Duration(); !got.Equal(total) {
		log.Panicf("rmaker: generator made %v of music for %v of divisions", got, total)
	}

	applyDivisionMasks(v, durations, m.DivisionMasks, m.previous.DivisionsConsumed, m.Spelling.LeafMaker(m.Tag))
	applyLogicalTieMasks(v, m.LogicalTieMasks, m.previous.previousLogicalTies())

	env := &Env{
		Divisions:           divisions,
		Durations:           durations,
		PreviousLogicalTies: m.previous.previousLogicalTies(),
		Spelling:            m.Spelling,
		Tag:                 m.Tag,
	}
	if m.Spelling.RewriteMeter {
		RewriteMeter{RepeatTies: m.Spelling.RepeatTies}.Apply(v, env)
	}
	for _, c := range m.Commands {
		if _, ok := c.(CacheState); ok {
			m.cacheState(v, len(divisions), newState)
			m.cached = true
			continue
		}
		c.Apply(v, env)
	}
	if !m.cached {
		m.cacheState(v, len(divisions), newState)
	}

	sels := partition(v, durations)
	validate(sels)
	return sels, nil
}

func (m *Maker) cacheState(v *score.Voice, n int, s State) {
	s.DivisionsConsumed = m.previous.DivisionsConsumed + n
	s.LogicalTiesProduced = m.previous.previousLogicalTies() + len(v.LogicalTies())
	m.state = s
}

// partition cuts the voice into one selection per duration.
func partition(v *score.Voice, durations []duration.Duration) []score.Selection {
	sels, err := v.Partition(durations)
	if err != nil {
		log.Panicf("rmaker: %v", err)
	}
	return sels
}

func validate(sels []score.Selection) {
	for i, sel := range sels {
		if len(sel) == 0 {
			log.Panicf("rmaker: empty selection for division %d", i)
		}
		for _, t := range sel.Tuplets() {
			if len(t.Children) == 0 {
				log.Panicf("rmaker: empty tuplet in division %d", i)
			}
			if !t.IsNormalized() {
				log.Panicf("rmaker: tuplet multiplier %v in division %d is not normalized", t.Multiplier, i)
			}
		}
	}
}
