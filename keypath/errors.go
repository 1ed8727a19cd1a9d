package keypath

import (
	"fmt"

	"github.com/strataconf/strata/value"
)

// SyntaxError reports a malformed path expression. It is always
// caller-fixable; retrying the same expression never succeeds.
type SyntaxError struct {
	// Expr is the offending expression.
	Expr string

	// Pos is the byte offset of the segment the error was found in.
	Pos int

	// Message describes the problem.
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Expr == "" {
		return fmt.Sprintf("invalid path: %s", e.Message)
	}
	return fmt.Sprintf("invalid path %q at offset %d: %s", e.Expr, e.Pos, e.Message)
}

// TypeConflictError reports that Set found an existing node whose kind
// cannot satisfy a step. The operation leaves the tree unchanged.
type TypeConflictError struct {
	// Path is the expression prefix up to and including the conflicting
	// step.
	Path string

	// Want is the kind the step requires.
	Want value.Kind

	// Got is the kind of the existing node.
	Got value.Kind
}

func (e *TypeConflictError) Error() string {
	return fmt.Sprintf("path %q requires %s, found %s", e.Path, e.Want, e.Got)
}
