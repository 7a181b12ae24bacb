package processor

import (
	"fmt"
	"log"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/divVerent/rmakers/internal/duration"
	"github.com/divVerent/rmakers/internal/rmaker"
	"github.com/divVerent/rmakers/internal/score"
)

// Result is the output of one run.
type Result struct {
	Divisions  []duration.Division
	Selections []score.Selection
	// State is what the next run continues from.
	State rmaker.State
}

// Process runs the configured maker over the divisions of options, or over the
// bars of in if options lists none. in may be nil when options has divisions.
func Process(in *smf.SMF, config *Config, options *Options) (*Result, error) {
	divisions := options.Divisions
	if len(divisions) == 0 {
		if in == nil {
			return nil, fmt.Errorf("no divisions and no input file given")
		}
		b, err := findBars(in)
		if err != nil {
			return nil, fmt.Errorf("could not read bars: %v", err)
		}
		if len(b) == 0 {
			return nil, fmt.Errorf("no playable events in input file")
		}
		dumpTempo("input", in, b)
		divisions = b.Divisions()
	}
	dumpDivisions("divisions", divisions)

	makerConfig := config.Maker
	if options.Maker != nil {
		makerConfig = Merge(makerConfig, *options.Maker)
	}
	maker, err := makerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("invalid maker: %v", err)
	}

	chunk := config.ChunkSize
	if options.ChunkSize != 0 {
		chunk = options.ChunkSize
	}
	if chunk < 0 {
		return nil, fmt.Errorf("negative chunk size %d", chunk)
	}
	if chunk == 0 {
		chunk = len(divisions)
	}

	result := &Result{Divisions: divisions}
	previous := options.PreviousState
	if previous != nil {
		log.Printf("state: continuing from %v", *previous)
	}
	for start := 0; start < len(divisions); start += chunk {
		end := min(start+chunk, len(divisions))
		sels, err := maker.Make(divisions[start:end], previous)
		if err != nil {
			return nil, fmt.Errorf("divisions %d to %d: %v", start+1, end, err)
		}
		result.Selections = append(result.Selections, sels...)
		state := maker.State()
		previous = &state
	}
	if previous != nil {
		result.State = *previous
	}
	log.Printf("state: %v", result.State)
	return result, nil
}
