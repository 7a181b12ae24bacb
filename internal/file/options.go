package file

import (
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/divVerent/rmakers/internal/processor"
)

// ReadOptions reads the per-run settings. Divisions must be positive, and
// either divisions or an input file must be given.
func ReadOptions(fsys fs.FS, optionsFile string) (*processor.Options, error) {
	options, err := readYAML[processor.Options](fsys, optionsFile)
	if err != nil {
		return nil, err
	}
	for i, d := range options.Divisions {
		if d.Num <= 0 {
			return nil, fmt.Errorf("%v: division %d is not positive: %v", optionsFile, i+1, d)
		}
	}
	if len(options.Divisions) == 0 && options.InputFile == "" {
		return nil, fmt.Errorf("%v: neither divisions nor input_file given", optionsFile)
	}
	if options.ChunkSize < 0 {
		return nil, fmt.Errorf("%v: negative chunk_size %d", optionsFile, options.ChunkSize)
	}
	return options, nil
}

// WriteOptions replaces optionsFile with options, e.g. after recording a
// checksum or the state for the next run.
func WriteOptions(optionsFile string, options *processor.Options) (err error) {
	f, err := os.Create(optionsFile)
	if err != nil {
		return fmt.Errorf("could not recreate %v: %v", optionsFile, err)
	}
	defer func() {
		closeErr := f.Close()
		if closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2) // Match yq.
	if err := enc.Encode(options); err != nil {
		return fmt.Errorf("could not encode %v: %v", optionsFile, err)
	}
	return enc.Close()
}
