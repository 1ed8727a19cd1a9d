// Package keypath parses dotted path expressions and navigates value trees.
//
// A path expression is a sequence of segments separated by dots, where each
// segment names a mapping key and may carry one or more bracketed indices
// into sequences, e.g. "db.replicas[1].host" or "matrix[0][2]". A segment
// consisting only of digits is still a key; only bracketed digits are
// indices, so mapping keys that look numeric stay unambiguous.
package keypath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/strataconf/strata/value"
)

// Step is a single navigation step: either a mapping key or a sequence
// index.
type Step struct {
	key     string
	index   int
	isIndex bool
}

// KeyStep returns a step that selects a mapping key.
func KeyStep(key string) Step {
	return Step{key: key}
}

// IndexStep returns a step that selects a sequence index.
func IndexStep(index int) Step {
	return Step{index: index, isIndex: true}
}

// IsIndex reports whether the step selects a sequence index.
func (s Step) IsIndex() bool {
	return s.isIndex
}

// Key returns the mapping key for a key step.
func (s Step) Key() string {
	return s.key
}

// Index returns the sequence index for an index step.
func (s Step) Index() int {
	return s.index
}

// String renders the step in path expression form.
func (s Step) String() string {
	if s.isIndex {
		return fmt.Sprintf("[%d]", s.index)
	}
	return s.key
}

// Path is a parsed, immutable sequence of steps. A valid path is never
// empty.
type Path []Step

// String renders the path back into expression form.
func (p Path) String() string {
	var b strings.Builder
	for i, step := range p {
		if !step.isIndex && i > 0 {
			b.WriteByte('.')
		}
		b.WriteString(step.String())
	}
	return b.String()
}

// Parse parses a path expression into a Path. Parsing is pure and the
// result is safe to share. The error is a *SyntaxError describing the
// first problem found.
func Parse(expr string) (Path, error) {
	if expr == "" {
		return nil, &SyntaxError{Expr: expr, Message: "empty path expression"}
	}

	var path Path
	pos := 0
	for _, segment := range strings.Split(expr, ".") {
		if segment == "" {
			return nil, &SyntaxError{Expr: expr, Pos: pos, Message: "empty segment"}
		}

		name := segment
		rest := ""
		if i := strings.IndexByte(segment, '['); i >= 0 {
			name, rest = segment[:i], segment[i:]
		}
		if strings.ContainsAny(name, "[]") || name == "" {
			return nil, &SyntaxError{Expr: expr, Pos: pos, Message: "segment must start with a key"}
		}
		path = append(path, KeyStep(name))

		for rest != "" {
			if rest[0] != '[' {
				return nil, &SyntaxError{Expr: expr, Pos: pos, Message: "unexpected text after index"}
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, &SyntaxError{Expr: expr, Pos: pos, Message: "unmatched bracket"}
			}
			digits := rest[1:end]
			index, err := strconv.Atoi(digits)
			if err != nil || digits == "" || index < 0 {
				return nil, &SyntaxError{Expr: expr, Pos: pos, Message: fmt.Sprintf("invalid index %q", digits)}
			}
			path = append(path, IndexStep(index))
			rest = rest[end+1:]
		}

		pos += len(segment) + 1
	}

	return path, nil
}

// Resolve walks the path through the tree. Absence of any step - a missing
// key, an out-of-range index, or a node of the wrong kind mid-walk - yields
// (nil, false); it is never an error.
func Resolve(root *value.Value, path Path) (*value.Value, bool) {
	cur := root
	for _, step := range path {
		if cur == nil {
			return nil, false
		}
		if step.isIndex {
			if cur.Kind() != value.KindSequence {
				return nil, false
			}
			cur = cur.At(step.index)
			if cur == nil {
				return nil, false
			}
			continue
		}
		child, ok := cur.Get(step.key)
		if !ok {
			return nil, false
		}
		cur = child
	}
	return cur, true
}

// Set stores val at the path, creating intermediate mappings and sequences
// as needed. Setting a sequence index beyond the current length pads the
// gap with null entries. Existing null nodes along the path are replaced by
// the container the next step requires.
//
// Set is atomic: if an existing node's kind conflicts with a step, it
// returns a *TypeConflictError and leaves the tree untouched. Conflicts are
// detected on a read-only walk before any mutation.
func Set(root *value.Value, path Path, val *value.Value) error {
	if len(path) == 0 {
		return &SyntaxError{Message: "empty path"}
	}
	if err := checkConflicts(root, path); err != nil {
		return err
	}

	cur := root
	for i, step := range path {
		last := i == len(path)-1
		if step.isIndex {
			if last {
				cur.SetAt(step.index, val)
				return nil
			}
			child := cur.At(step.index)
			if child == nil || child.IsNull() {
				child = containerFor(path[i+1])
				cur.SetAt(step.index, child)
			}
			cur = child
			continue
		}
		if last {
			cur.Put(step.key, val)
			return nil
		}
		child, ok := cur.Get(step.key)
		if !ok || child.IsNull() {
			child = containerFor(path[i+1])
			cur.Put(step.key, child)
		}
		cur = child
	}
	return nil
}

// checkConflicts walks existing nodes along the path without mutating
// anything. Creation never conflicts, so once the walk leaves existing
// nodes the rest of the path is clear.
func checkConflicts(root *value.Value, path Path) error {
	cur := root
	for i, step := range path {
		want := value.KindMapping
		if step.isIndex {
			want = value.KindSequence
		}
		if cur.Kind() != want {
			// A null node is absence, replaced during the write, except
			// for the root which the caller owns.
			if cur.IsNull() && i > 0 {
				return nil
			}
			return &TypeConflictError{
				Path: path[:i+1].String(),
				Want: want,
				Got:  cur.Kind(),
			}
		}
		if i == len(path)-1 {
			return nil
		}
		var child *value.Value
		if step.isIndex {
			child = cur.At(step.index)
		} else {
			child, _ = cur.Get(step.key)
		}
		if child == nil {
			return nil
		}
		cur = child
	}
	return nil
}

func containerFor(next Step) *value.Value {
	if next.IsIndex() {
		return value.NewSequence()
	}
	return value.NewMapping()
}
