package layer

import (
	"sort"

	"github.com/strataconf/strata/value"
)

// Merge combines the sources into one tree. Sources are ordered by
// ascending rank (the sort is stable, so equal ranks keep list order and
// the later entry wins) and folded left to right.
//
// Per node pair, where high is the higher-precedence value:
//   - mapping over mapping: key union, merged recursively per shared key;
//     result key order follows the lower tree, with keys unique to the
//     higher tree appended in its order
//   - every other pairing, including sequence over sequence: high replaces
//     low wholesale
//
// An explicit null in the higher source overrides; only omitting a key
// inherits the lower value. The inputs are never mutated and the result
// shares no nodes with them.
func Merge(sources []Source) *value.Value {
	ordered := make([]Source, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Rank < ordered[j].Rank
	})

	result := value.NewMapping()
	for _, src := range ordered {
		if src.Tree == nil {
			continue
		}
		result = mergeValue(result, src.Tree)
	}
	return result
}

// mergeValue merges high over low, returning a fresh tree.
func mergeValue(low, high *value.Value) *value.Value {
	if low.Kind() != value.KindMapping || high.Kind() != value.KindMapping {
		return high.Clone()
	}

	result := value.NewMapping()
	for _, key := range low.Keys() {
		lowChild, _ := low.Get(key)
		if highChild, ok := high.Get(key); ok {
			result.Put(key, mergeValue(lowChild, highChild))
		} else {
			result.Put(key, lowChild.Clone())
		}
	}
	for _, key := range high.Keys() {
		if _, seen := result.Get(key); !seen {
			highChild, _ := high.Get(key)
			result.Put(key, highChild.Clone())
		}
	}
	return result
}
