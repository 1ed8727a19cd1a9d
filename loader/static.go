package loader

import (
	"github.com/strataconf/strata/value"
)

// StaticLoader serves a fixed in-memory tree, for built-in defaults and
// programmatic overrides.
type StaticLoader struct {
	tree *value.Value
}

// NewStaticLoader creates a loader around the given tree.
func NewStaticLoader(tree *value.Value) *StaticLoader {
	return &StaticLoader{tree: tree}
}

// Load returns a deep copy of the tree, so callers mutating the original
// afterwards do not reach into an already-built configuration.
func (l *StaticLoader) Load() (*value.Value, error) {
	if l.tree == nil {
		return nil, nil
	}
	return l.tree.Clone(), nil
}
