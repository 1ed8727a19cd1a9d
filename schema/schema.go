// Package schema declares expected configuration shapes and validates
// merged trees against them.
//
// A schema is a closed variant tree mirroring the value tree's shape:
// required and optional leaves, objects of named fields, and homogeneous
// arrays. Validation is a structural co-walk that collects every problem
// instead of stopping at the first, so a user fixing a config file sees
// all of it in one pass.
package schema

import (
	"sort"

	"github.com/strataconf/strata/value"
)

// Type is the expected type of a leaf node. Any matches every value,
// including null and containers.
type Type uint8

const (
	// TypeAny matches any value.
	TypeAny Type = iota
	// TypeBool matches boolean values.
	TypeBool
	// TypeNumber matches numeric values.
	TypeNumber
	// TypeString matches string values.
	TypeString
)

// String returns a human-readable name for the type.
func (t Type) String() string {
	switch t {
	case TypeAny:
		return "any"
	case TypeBool:
		return "bool"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	default:
		return "unknown"
	}
}

// Matches reports whether the value satisfies the type.
func (t Type) Matches(v *value.Value) bool {
	switch t {
	case TypeAny:
		return true
	case TypeBool:
		return v.Kind() == value.KindBool
	case TypeNumber:
		return v.Kind() == value.KindNumber
	case TypeString:
		return v.Kind() == value.KindString
	default:
		return false
	}
}

// NodeKind identifies the variant a schema node holds.
type NodeKind uint8

const (
	// KindRequired is a leaf that must be present with a matching type.
	KindRequired NodeKind = iota
	// KindOptional is a leaf that may be absent; validation substitutes
	// its default into the effective tree.
	KindOptional
	// KindObject is a mapping of declared fields. Undeclared keys in the
	// tree are ignored.
	KindObject
	// KindArrayOf is a sequence whose elements all share one schema.
	KindArrayOf
)

// Node is one node of a schema tree. Build it once with the constructors
// below; it is immutable afterwards and safe to share across any number of
// concurrent validations.
type Node struct {
	kind   NodeKind
	typ    Type
	def    *value.Value
	fields map[string]*Node
	order  []string
	elem   *Node
}

// Required declares a leaf that must be present with the given type.
func Required(t Type) *Node {
	return &Node{kind: KindRequired, typ: t}
}

// Optional declares a leaf that may be absent. When it is, def is
// substituted into the effective tree. A nil def means null.
func Optional(t Type, def *value.Value) *Node {
	if def == nil {
		def = value.Null()
	}
	return &Node{kind: KindOptional, typ: t, def: def}
}

// Object declares a set of named fields. Field names are visited in sorted
// order so error reporting is deterministic.
func Object(fields map[string]*Node) *Node {
	order := make([]string, 0, len(fields))
	for name := range fields {
		order = append(order, name)
	}
	sort.Strings(order)
	return &Node{kind: KindObject, fields: fields, order: order}
}

// ArrayOf declares a sequence whose elements all validate against elem.
func ArrayOf(elem *Node) *Node {
	return &Node{kind: KindArrayOf, elem: elem}
}

// Kind returns the variant this node holds.
func (n *Node) Kind() NodeKind {
	return n.kind
}

// Type returns the expected leaf type for Required and Optional nodes.
func (n *Node) Type() Type {
	return n.typ
}

// Default returns the substitution value of an Optional node, nil
// otherwise.
func (n *Node) Default() *value.Value {
	return n.def
}

// Field returns the declared schema for a field of an Object node.
func (n *Node) Field(name string) (*Node, bool) {
	child, ok := n.fields[name]
	return child, ok
}

// Fields returns the declared field names of an Object node in sorted
// order.
func (n *Node) Fields() []string {
	out := make([]string, len(n.order))
	copy(out, n.order)
	return out
}

// Elem returns the element schema of an ArrayOf node, nil otherwise.
func (n *Node) Elem() *Node {
	return n.elem
}
