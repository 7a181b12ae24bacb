package file

import (
	"fmt"
	"io/fs"

	"gopkg.in/yaml.v3"

	"github.com/divVerent/rmakers/internal/processor"
)

// readYAML decodes one document from name, rejecting fields T does not have.
func readYAML[T any](fsys fs.FS, name string) (*T, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open %v: %v", name, err)
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var out T
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("could not decode %v: %v", name, err)
	}
	return &out, nil
}

// ReadConfig reads the maker definition. The maker itself is checked when it is built.
func ReadConfig(fsys fs.FS, configFile string) (*processor.Config, error) {
	config, err := readYAML[processor.Config](fsys, configFile)
	if err != nil {
		return nil, err
	}
	if config.ChunkSize < 0 {
		return nil, fmt.Errorf("%v: negative chunk_size %d", configFile, config.ChunkSize)
	}
	return config, nil
}
