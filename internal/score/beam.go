package score

import (
	"github.com/divVerent/rmakers/internal/duration"
)

// Beamable reports whether l can be part of a beam.
func (l *Leaf) Beamable(beamRests bool) bool {
	switch l.Kind {
	case NoteKind:
		return l.Written.IsAssignable() && l.Written.FlagCount() > 0
	case RestKind, SkipKind:
		return beamRests
	}
	return false
}

// Unbeam detaches beams from all leaves.
func Unbeam(ls []*Leaf) {
	for _, l := range ls {
		l.Unbeam()
	}
}

// Beam beams each run of beamable leaves. Runs of a single leaf are only
// beamed if beamLoneNotes is set.
func Beam(ls []*Leaf, beamRests, beamLoneNotes bool) {
	Unbeam(ls)
	for _, run := range beamableRuns(ls, beamRests) {
		if len(run) == 1 && !beamLoneNotes {
			continue
		}
		run[0].StartBeam = true
		run[len(run)-1].StopBeam = true
	}
}

func beamableRuns(ls []*Leaf, beamRests bool) [][]*Leaf {
	var runs [][]*Leaf
	var run []*Leaf
	for _, l := range ls {
		if l.Beamable(beamRests) {
			run = append(run, l)
			continue
		}
		if run != nil {
			runs = append(runs, run)
			run = nil
		}
	}
	if run != nil {
		runs = append(runs, run)
	}
	// Rests never start or end a beam.
	for i, r := range runs {
		for len(r) > 0 && r[0].Kind.Silent() {
			r = r[1:]
		}
		for len(r) > 0 && r[len(r)-1].Kind.Silent() {
			r = r[:len(r)-1]
		}
		runs[i] = r
	}
	out := runs[:0]
	for _, r := range runs {
		if len(r) > 0 {
			out = append(out, r)
		}
	}
	return out
}

// BeamGroups beams all groups together as one beam. At the joins between groups
// only spanBeamCount beams continue.
func BeamGroups(groups [][]*Leaf, spanBeamCount int, beamRests, beamLoneNotes bool) {
	var all []*Leaf
	var joinsAfter, joinsBefore = map[*Leaf]bool{}, map[*Leaf]bool{}
	for i, g := range groups {
		if len(g) == 0 {
			continue
		}
		if i > 0 && len(all) > 0 {
			joinsBefore[g[0]] = true
			joinsAfter[all[len(all)-1]] = true
		}
		all = append(all, g...)
	}
	Beam(all, beamRests, beamLoneNotes)
	if len(groups) < 2 {
		return
	}
	for i, l := range all {
		if !l.Beamable(beamRests) {
			continue
		}
		flags := l.Written.FlagCount()
		bc := BeamCount{Left: flags, Right: flags}
		if i == 0 {
			bc.Left = 0
		}
		if i == len(all)-1 {
			bc.Right = 0
		}
		if joinsBefore[l] {
			bc.Left = spanBeamCount
		}
		if joinsAfter[l] {
			bc.Right = spanBeamCount
		}
		l.BeamCount = &bc
	}
}

// BeatGroups collects for each beat the leaves lying entirely inside it. A beat
// whose leaves do not add up to the beat exactly gets an empty group.
func BeatGroups(spans []Span, beats []duration.Duration) [][]*Leaf {
	groups := make([][]*Leaf, 0, len(beats)-1)
	for i := 0; i+1 < len(beats); i++ {
		start, stop := beats[i], beats[i+1]
		var group []*Leaf
		var sum duration.Duration
		for _, s := range spans {
			if !s.Start.Less(start) && !stop.Less(s.Stop) {
				group = append(group, s.Leaf)
				sum = sum.Add(s.Stop.Sub(s.Start))
			}
		}
		if !sum.Equal(stop.Sub(start)) {
			group = nil
		}
		groups = append(groups, group)
	}
	return groups
}
