package processor

import (
	"log"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/divVerent/rmakers/internal/duration"
)

// dumpTempo logs the tempo changes of the song with their bar positions.
func dumpTempo(prefix string, mid *smf.SMF, b bars) {
	whole, err := wholeTicks(mid)
	if err != nil || len(b) == 0 {
		return
	}
	ForEachEventWithTime(mid, func(time int64, track int, msg smf.Message) error {
		var bpm float64
		if !msg.GetMetaTempo(&bpm) {
			return nil
		}
		if time >= b[len(b)-1].End() {
			return StopIteration
		}
		bar, pos := b.FromTick(time, whole)
		log.Printf("%s: bar %d + %v @ %d: tempo is %f bpm.", prefix, bar+1, pos, time, bpm)
		return nil
	})
}

// dumpDivisions logs the divisions in concise form, as runs of equal ones.
func dumpDivisions(prefix string, divisions []duration.Division) {
	start := 0
	for i := 1; i <= len(divisions); i++ {
		if i < len(divisions) && divisions[i] == divisions[start] {
			continue
		}
		plural := "s"
		if i-start == 1 {
			plural = ""
		}
		log.Printf("%s: %d: %d division%s of %v.", prefix, start+1, i-start, plural, divisions[start])
		start = i
	}
	log.Printf("%s: %d: end.", prefix, len(divisions)+1)
}
