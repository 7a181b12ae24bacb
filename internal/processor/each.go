package processor

import (
	"errors"

	"gitlab.com/gomidi/midi/v2/smf"
)

// StopIteration ends ForEachEventWithTime early without failure.
var StopIteration = errors.New("ForEachEventWithTime: StopIteration")

// ForEachEventWithTime calls yield for each event of all tracks in time order,
// with its absolute time in ticks. At equal times, note ends come first.
// End of track events are skipped.
func ForEachEventWithTime(mid *smf.SMF, yield func(time int64, track int, msg smf.Message) error) error {
	// next is the index of the next event of each track, and at the time of the
	// previous one.
	type cursor struct {
		next int
		at   int64
	}
	cursors := make([]cursor, len(mid.Tracks))
	for {
		best := -1
		var bestTime int64
		var bestEnd bool
		for i, t := range mid.Tracks {
			c := cursors[i]
			if c.next >= len(t) {
				continue
			}
			time := c.at + int64(t[c.next].Delta)
			end := t[c.next].Message.GetNoteEnd(nil, nil)
			if best < 0 || time < bestTime || (time == bestTime && end && !bestEnd) {
				best, bestTime, bestEnd = i, time, end
			}
		}
		if best < 0 {
			return nil
		}
		c := &cursors[best]
		msg := mid.Tracks[best][c.next].Message
		c.next++
		c.at = bestTime
		if msg.Is(smf.MetaEndOfTrackMsg) {
			continue
		}
		if err := yield(bestTime, best, msg); err != nil {
			if errors.Is(err, StopIteration) {
				return nil
			}
			return err
		}
	}
}
