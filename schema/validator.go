package schema

import (
	"fmt"

	"github.com/strataconf/strata/keypath"
	"github.com/strataconf/strata/value"
)

// CheckFunc is a post-validation predicate over the value at one path. A
// non-nil return is recorded as an ErrCheckFailed entry. Checks let
// callers layer constraints the base schema does not express, such as
// numeric ranges or pattern matches.
type CheckFunc func(v *value.Value) error

type check struct {
	path keypath.Path
	expr string
	fn   CheckFunc
}

// Validator validates trees against one schema. It holds the schema
// read-only and may be shared across goroutines once configured.
type Validator struct {
	root   *Node
	checks []check
}

// NewValidator creates a validator for the schema.
func NewValidator(root *Node) *Validator {
	return &Validator{root: root}
}

// AddCheck registers a post-validation check for the value at the given
// path expression. Checks run over the effective tree after the
// structural co-walk, so optional defaults are visible to them; a check
// at an absent path is skipped. Returns the validator for chaining. A
// malformed expression is reported immediately.
func (v *Validator) AddCheck(expr string, fn CheckFunc) error {
	path, err := keypath.Parse(expr)
	if err != nil {
		return err
	}
	v.checks = append(v.checks, check{path: path, expr: expr, fn: fn})
	return nil
}

// Validate walks the tree against the schema. It returns nil on success
// or a *ValidationErrors collecting every failure. The input tree is
// never mutated.
func (v *Validator) Validate(tree *value.Value) error {
	_, err := v.run(tree, false)
	return err
}

// Effective validates the tree and returns the effective tree: a copy
// with the defaults of absent optional fields substituted in. The copy is
// returned even when validation fails, with every default that could be
// applied present.
func (v *Validator) Effective(tree *value.Value) (*value.Value, error) {
	return v.run(tree, true)
}

func (v *Validator) run(tree *value.Value, wantEffective bool) (*value.Value, error) {
	errs := &ValidationErrors{}
	var subs []substitution
	validateNode("", nil, tree, v.root, errs, &subs)

	var effective *value.Value
	if wantEffective || len(v.checks) > 0 {
		effective = applySubstitutions(tree, subs)
	}

	for _, c := range v.checks {
		target, ok := keypath.Resolve(effective, c.path)
		if !ok {
			continue
		}
		if err := c.fn(target); err != nil {
			errs.Add(c.expr, ErrCheckFailed, err.Error())
		}
	}

	if !wantEffective {
		effective = nil
	}
	return effective, errs.AsError()
}

// substitution records one optional default to splice into the effective
// tree. Validation never mutates its input.
type substitution struct {
	path keypath.Path
	def  *value.Value
}

func applySubstitutions(tree *value.Value, subs []substitution) *value.Value {
	effective := tree.Clone()
	if effective == nil {
		effective = value.NewMapping()
	}
	for _, sub := range subs {
		// Conflicts only arise when the tree already failed type
		// validation at an ancestor; the structural errors cover that.
		_ = keypath.Set(effective, sub.path, sub.def.Clone())
	}
	return effective
}

// validateNode co-walks one tree node against one schema node. val is nil
// when the tree has nothing at this path.
func validateNode(pathExpr string, path keypath.Path, val *value.Value, node *Node, errs *ValidationErrors, subs *[]substitution) {
	switch node.kind {
	case KindRequired:
		if val == nil {
			missingField(errs, pathExpr)
			return
		}
		if !node.typ.Matches(val) {
			typeMismatch(errs, pathExpr, node.typ.String(), val.Kind().String())
		}

	case KindOptional:
		if val == nil {
			if len(path) > 0 {
				*subs = append(*subs, substitution{path: path, def: node.def})
			}
			return
		}
		if !node.typ.Matches(val) {
			typeMismatch(errs, pathExpr, node.typ.String(), val.Kind().String())
		}

	case KindObject:
		if val != nil && val.Kind() != value.KindMapping {
			typeMismatch(errs, pathExpr, "mapping", val.Kind().String())
			return
		}
		// Undeclared keys in the tree are ignored: unknown settings must
		// not break older services reading newer config.
		for _, name := range node.order {
			field := node.fields[name]
			var child *value.Value
			if val != nil {
				if c, ok := val.Get(name); ok {
					child = c
				}
			}
			childExpr := name
			if pathExpr != "" {
				childExpr = pathExpr + "." + name
			}
			validateNode(childExpr, append(path[:len(path):len(path)], keypath.KeyStep(name)), child, field, errs, subs)
		}

	case KindArrayOf:
		if val == nil {
			missingField(errs, pathExpr)
			return
		}
		if val.Kind() != value.KindSequence {
			typeMismatch(errs, pathExpr, "sequence", val.Kind().String())
			return
		}
		for i := 0; i < val.Len(); i++ {
			elemExpr := fmt.Sprintf("%s[%d]", pathExpr, i)
			validateNode(elemExpr, append(path[:len(path):len(path)], keypath.IndexStep(i)), val.At(i), node.elem, errs, subs)
		}
	}
}
