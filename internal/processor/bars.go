package processor

import (
	"fmt"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/divVerent/rmakers/internal/duration"
)

type bar struct {
	// Bar position in ticks.
	Begin  int64
	Length int64
	// Division is the bar's time signature, shortened for partial bars.
	Division duration.Division
}

func (b bar) End() int64 {
	return b.Begin + b.Length
}

// FromTick returns the position of tick within the bar in whole notes.
func (b bar) FromTick(tick int64, whole int64) duration.Duration {
	return duration.New(tick-b.Begin, whole)
}

type bars []bar

func (b bars) FromTick(tick int64, whole int64) (int, duration.Duration) {
	last := len(b) - 1
	for i, bar := range b {
		if i == last || tick < bar.End() {
			return i, bar.FromTick(tick, whole)
		}
	}
	return 0, duration.Duration{}
}

func (b bars) Divisions() []duration.Division {
	out := make([]duration.Division, len(b))
	for i, bar := range b {
		out[i] = bar.Division
	}
	return out
}

type timeSig struct {
	start    int64
	num, den int64
	// beatNum is the beat length in units of 1/den.
	beatNum int64
}

func wholeTicks(mid *smf.SMF) (int64, error) {
	ticks, ok := mid.TimeFormat.(smf.MetricTicks)
	if !ok || ticks == 0 {
		return 0, fmt.Errorf("unsupported MIDI time format %v", mid.TimeFormat)
	}
	return 4 * int64(ticks), nil
}

// findBars splits the song into bars by its time signatures, up to the last
// playable event. A bar cut short by a time signature change keeps the
// shortened length; the last bar is rounded up to whole beats.
func findBars(mid *smf.SMF) (bars, error) {
	whole, err := wholeTicks(mid)
	if err != nil {
		return nil, err
	}
	sigs := []timeSig{{start: 0, num: 4, den: 4, beatNum: 1}}
	var lastTime int64
	err = ForEachEventWithTime(mid, func(time int64, track int, msg smf.Message) error {
		if msg.IsPlayable() && time > lastTime {
			lastTime = time
		}
		var num, den, cpt, dsqpq uint8
		if !msg.GetMetaTimeSig(&num, &den, &cpt, &dsqpq) {
			return nil
		}
		if num == 0 || den == 0 {
			return fmt.Errorf("track %d @ %d: invalid time signature %d/%d", track, time, num, den)
		}
		beat := whole / 4 * int64(cpt) / 24
		beatNum := int64(1)
		if beat > 0 {
			if (beat*int64(den))%whole != 0 {
				return fmt.Errorf("track %d @ %d: unusual beat duration: got %d ticks per beat and %d ticks per whole in a %d/%d time signature",
					track, time, beat, whole, num, den)
			}
			beatNum = max(beat*int64(den)/whole, 1)
		}
		sig := timeSig{start: time, num: int64(num), den: int64(den), beatNum: beatNum}
		// Of several time signatures at the same time, the last one wins.
		if prev := &sigs[len(sigs)-1]; prev.start == time {
			*prev = sig
		} else {
			sigs = append(sigs, sig)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if lastTime == 0 {
		return nil, nil
	}
	var b bars
	for i, sig := range sigs {
		if sig.start >= lastTime {
			break
		}
		stop := lastTime
		final := true
		if i+1 < len(sigs) && sigs[i+1].start < lastTime {
			stop = sigs[i+1].start
			final = false
		}
		barLen := whole * sig.num / sig.den
		for time := sig.start; time < stop; time += barLen {
			newBar := bar{
				Begin:    time,
				Length:   barLen,
				Division: duration.Division{Num: sig.num, Den: sig.den},
			}
			if time+barLen > stop {
				remaining := stop - time
				if final {
					// Round the last bar up to whole beats.
					beatLen := whole * sig.beatNum / sig.den
					beats := (remaining + beatLen - 1) / beatLen
					newBar.Division.Num = min(beats*sig.beatNum, sig.num)
					newBar.Length = whole * newBar.Division.Num / sig.den
				} else {
					newBar.Division = duration.New(remaining, whole).WithDenominator(sig.den)
					newBar.Length = remaining
				}
			}
			b = append(b, newBar)
		}
	}
	return b, nil
}

// Divisions returns one division per bar of the song.
func Divisions(mid *smf.SMF) ([]duration.Division, error) {
	b, err := findBars(mid)
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("no playable events in MIDI file")
	}
	return b.Divisions(), nil
}
