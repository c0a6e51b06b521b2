// Package dataio loads datasets from files and exports them again.
package dataio

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/fairloom-cli/internal/dataset"
)

// Options controls how files are read into datasets.
type Options struct {
	// Delimiter for CSV. If 0, chosen from the file extension.
	Delimiter rune
	// MaxRows limits data rows read; 0 means unlimited.
	MaxRows int
	// SheetName selects an XLSX sheet by name.
	SheetName string
	// SheetIndex selects an XLSX sheet by 1-based index when SheetName is empty.
	SheetIndex int
	// Infer controls column typing.
	Infer dataset.InferOptions
}

// Loader reads one family of file formats.
type Loader interface {
	CanLoad(path string) bool
	Load(path string, opt Options) (*dataset.Dataset, error)
}

var registry []Loader

// Register adds a loader implementation to the registry.
func Register(l Loader) {
	registry = append(registry, l)
}

// ErrUnsupported indicates a file format no loader handles.
var ErrUnsupported = errors.New("unsupported dataset format")

// Load picks a loader by file name and reads the dataset.
func Load(path string, opt Options) (*dataset.Dataset, error) {
	for _, l := range registry {
		if l.CanLoad(path) {
			return l.Load(path, opt)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
}

func init() {
	Register(csvLoader{})
	Register(xlsxLoader{})
}
