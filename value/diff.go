package value

import (
	"fmt"
	"sort"
)

// Flatten flattens a tree into a single-level map keyed by path expression.
// Mapping children contribute dotted segments and sequence elements
// contribute bracketed indices (e.g. "db.replicas[1].host"). Only leaf
// nodes (scalars, empty containers) appear in the result.
func Flatten(root *Value) map[string]*Value {
	result := make(map[string]*Value)
	flattenInto(root, "", result)
	return result
}

func flattenInto(v *Value, prefix string, result map[string]*Value) {
	if v == nil {
		return
	}
	switch v.kind {
	case KindMapping:
		if len(v.keys) == 0 && prefix != "" {
			result[prefix] = v
			return
		}
		for _, key := range v.keys {
			child := v.fields[key]
			path := key
			if prefix != "" {
				path = prefix + "." + key
			}
			flattenInto(child, path, result)
		}
	case KindSequence:
		if len(v.seq) == 0 && prefix != "" {
			result[prefix] = v
			return
		}
		for i, elem := range v.seq {
			flattenInto(elem, fmt.Sprintf("%s[%d]", prefix, i), result)
		}
	default:
		if prefix != "" {
			result[prefix] = v
		}
	}
}

// Diff compares two trees and returns the leaf paths that were added,
// modified, and removed going from old to new.
func Diff(old, new *Value) (added, modified, removed []string) {
	oldFlat := Flatten(old)
	newFlat := Flatten(new)

	for path, newVal := range newFlat {
		if oldVal, exists := oldFlat[path]; exists {
			if !oldVal.Equal(newVal) {
				modified = append(modified, path)
			}
		} else {
			added = append(added, path)
		}
	}

	for path := range oldFlat {
		if _, exists := newFlat[path]; !exists {
			removed = append(removed, path)
		}
	}

	sort.Strings(added)
	sort.Strings(modified)
	sort.Strings(removed)
	return added, modified, removed
}
