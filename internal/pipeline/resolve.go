package pipeline

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/footprint/internal/model"
	"github.com/theirongolddev/footprint/internal/source"
)

// ErrNoPayloadFiles is returned when a data directory holds no payloads.
var ErrNoPayloadFiles = errors.New("no payload files")

// Resolve picks the payload to read: file when set, otherwise the most recently
// modified payload under dir.
func Resolve(file, dir string) (source.DiscoveredFile, error) {
	if file != "" {
		return source.Stat(file)
	}
	files, err := source.ScanDir(dir)
	if err != nil {
		return source.DiscoveredFile{}, fmt.Errorf("scanning %s: %w", dir, err)
	}
	newest, ok := source.Newest(files)
	if !ok {
		return source.DiscoveredFile{}, fmt.Errorf("%w in %s", ErrNoPayloadFiles, dir)
	}
	return newest, nil
}

// LoadFile parses one payload file and derives its state.
func LoadFile(df source.DiscoveredFile, opts Options) (model.DerivedState, error) {
	pr := source.ParseFile(df)
	if pr.Err != nil {
		return model.DerivedState{}, pr.Err
	}
	return opts.Derive(pr.Payload), nil
}
