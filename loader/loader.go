// Package loader produces configuration trees from external sources.
//
// Loaders sit at the I/O boundary: they parse files, environment
// variables, or in-memory data into value trees and hand them to the
// merge layer as ranked sources. The resolution core itself never touches
// a file or the process environment.
package loader

import (
	"fmt"
	"os"

	"github.com/strataconf/strata/layer"
	"github.com/strataconf/strata/value"
)

// Loader is the interface all configuration loaders implement.
type Loader interface {
	// Load reads and parses the source. A missing source returns
	// (nil, nil); that is expected, not an error.
	Load() (*value.Value, error)
}

// Source runs the loader and wraps its tree as a ranked merge source. A
// missing source yields a source with a nil tree, which Merge skips.
func Source(l Loader, name string, rank int) (layer.Source, error) {
	tree, err := l.Load()
	if err != nil {
		return layer.Source{}, err
	}
	return layer.NewSource(name, rank, tree), nil
}

// FileSystem abstracts file access so loaders can be tested against an
// in-memory file system.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// ParseError reports a failure to parse a configuration source.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
