// Package layer provides precedence-ranked configuration sources and the
// deterministic merge that combines them into a single tree.
//
// Sources are merged in ascending rank order so the highest rank wins on
// conflict. Mappings merge structurally; sequences and scalars are atomic
// units that the higher-precedence source replaces wholesale.
package layer

import (
	"github.com/strataconf/strata/value"
)

// Source is one configuration source awaiting merge: a fully parsed tree
// plus the precedence rank that decides conflicts. Sources are built once
// per load cycle and consumed by Merge.
type Source struct {
	// Name identifies the source in diagnostics (e.g. "defaults",
	// "config.toml", "environment").
	Name string

	// Rank decides conflicts: higher wins. Equal ranks are resolved by
	// list order, later entries winning.
	Rank int

	// Tree is the parsed configuration.
	Tree *value.Value
}

// NewSource creates a merge source.
func NewSource(name string, rank int, tree *value.Value) Source {
	return Source{Name: name, Rank: rank, Tree: tree}
}

// Standard ranks for common source types. Loaders may use any integers;
// these spread out so callers can slot custom sources between them.
const (
	// RankDefaults is the lowest rank, for built-in defaults.
	RankDefaults = 0

	// RankFile is for configuration files.
	RankFile = 100

	// RankEnv is for environment variable overrides.
	RankEnv = 500

	// RankOverride is the highest standard rank, for in-memory overrides.
	RankOverride = 1000
)
