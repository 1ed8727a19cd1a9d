// Package value defines the structured value tree that all configuration
// sources are parsed into.
//
// A Value is a closed tagged variant over null, bool, number, string,
// sequence, and mapping. Mappings preserve key insertion order, which the
// merge rules depend on. Values form trees, never graphs: every node
// exclusively owns its children.
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// Kind identifies the variant a Value holds.
type Kind uint8

const (
	// KindNull represents an explicit null value.
	KindNull Kind = iota
	// KindBool represents a boolean value.
	KindBool
	// KindNumber represents a numeric value with float64 precision.
	KindNumber
	// KindString represents a string value.
	KindString
	// KindSequence represents an ordered list of values.
	KindSequence
	// KindMapping represents a key-ordered map of string to value.
	KindMapping
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "unknown"
	}
}

// Value is a single node in a configuration tree.
type Value struct {
	kind Kind

	b   bool
	n   float64
	s   string
	seq []*Value

	keys   []string
	fields map[string]*Value
}

// Null returns a new null value.
func Null() *Value {
	return &Value{kind: KindNull}
}

// Bool returns a new boolean value.
func Bool(b bool) *Value {
	return &Value{kind: KindBool, b: b}
}

// Number returns a new numeric value.
func Number(n float64) *Value {
	return &Value{kind: KindNumber, n: n}
}

// String returns a new string value.
func String(s string) *Value {
	return &Value{kind: KindString, s: s}
}

// NewSequence returns a new sequence holding the given elements.
func NewSequence(elems ...*Value) *Value {
	return &Value{kind: KindSequence, seq: elems}
}

// NewMapping returns a new empty mapping.
func NewMapping() *Value {
	return &Value{kind: KindMapping, fields: make(map[string]*Value)}
}

// Kind returns the variant this value holds.
func (v *Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is null.
func (v *Value) IsNull() bool {
	return v.kind == KindNull
}

// AsBool returns the boolean payload. The second result is false when the
// value is not a bool.
func (v *Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsNumber returns the numeric payload. The second result is false when the
// value is not a number.
func (v *Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.n, true
}

// AsString returns the string payload. The second result is false when the
// value is not a string.
func (v *Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Len returns the number of elements in a sequence or keys in a mapping,
// and 0 for scalars.
func (v *Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.seq)
	case KindMapping:
		return len(v.keys)
	default:
		return 0
	}
}

// At returns the sequence element at index i, or nil if the value is not a
// sequence or i is out of range.
func (v *Value) At(i int) *Value {
	if v.kind != KindSequence || i < 0 || i >= len(v.seq) {
		return nil
	}
	return v.seq[i]
}

// Append appends elements to a sequence. It is a no-op on other kinds.
func (v *Value) Append(elems ...*Value) {
	if v.kind != KindSequence {
		return
	}
	v.seq = append(v.seq, elems...)
}

// SetAt stores elem at index i in a sequence, padding any gap with null
// entries. It is a no-op on other kinds.
func (v *Value) SetAt(i int, elem *Value) {
	if v.kind != KindSequence || i < 0 {
		return
	}
	for len(v.seq) <= i {
		v.seq = append(v.seq, Null())
	}
	v.seq[i] = elem
}

// Get returns the value stored under key in a mapping. The second result is
// false when the value is not a mapping or the key is absent.
func (v *Value) Get(key string) (*Value, bool) {
	if v.kind != KindMapping {
		return nil, false
	}
	child, ok := v.fields[key]
	return child, ok
}

// Put stores child under key in a mapping. An existing key keeps its
// position; a new key is appended. It is a no-op on other kinds.
func (v *Value) Put(key string, child *Value) {
	if v.kind != KindMapping {
		return
	}
	if _, exists := v.fields[key]; !exists {
		v.keys = append(v.keys, key)
	}
	v.fields[key] = child
}

// Delete removes key from a mapping. It reports whether the key was present.
func (v *Value) Delete(key string) bool {
	if v.kind != KindMapping {
		return false
	}
	if _, exists := v.fields[key]; !exists {
		return false
	}
	delete(v.fields, key)
	for i, k := range v.keys {
		if k == key {
			v.keys = append(v.keys[:i], v.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the mapping keys in insertion order. The returned slice is a
// copy and safe to retain.
func (v *Value) Keys() []string {
	if v.kind != KindMapping {
		return nil
	}
	keys := make([]string, len(v.keys))
	copy(keys, v.keys)
	return keys
}

// Clone returns a deep copy of the value.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindSequence:
		seq := make([]*Value, len(v.seq))
		for i, elem := range v.seq {
			seq[i] = elem.Clone()
		}
		return &Value{kind: KindSequence, seq: seq}
	case KindMapping:
		dst := NewMapping()
		for _, key := range v.keys {
			dst.Put(key, v.fields[key].Clone())
		}
		return dst
	default:
		clone := *v
		return &clone
	}
}

// Equal reports structural equality. Mapping key order is not significant
// for equality, only key sets and values.
func (v *Value) Equal(o *Value) bool {
	if v == nil || o == nil {
		return v == o
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.n == o.n
	case KindString:
		return v.s == o.s
	case KindSequence:
		if len(v.seq) != len(o.seq) {
			return false
		}
		for i := range v.seq {
			if !v.seq[i].Equal(o.seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if len(v.keys) != len(o.keys) {
			return false
		}
		for key, val := range v.fields {
			other, ok := o.fields[key]
			if !ok || !val.Equal(other) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Interface converts the tree to plain Go values: nil, bool, float64,
// string, []any, and map[string]any. Mapping key order is lost.
func (v *Value) Interface() any {
	if v == nil {
		return nil
	}
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindSequence:
		out := make([]any, len(v.seq))
		for i, elem := range v.seq {
			out[i] = elem.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, len(v.keys))
		for _, key := range v.keys {
			out[key] = v.fields[key].Interface()
		}
		return out
	default:
		return nil
	}
}

// FromAny converts plain Go values (as produced by format decoders) into a
// Value tree. Map keys are visited in sorted order so the result is
// deterministic for decoders that return unordered maps.
func FromAny(in any) (*Value, error) {
	switch x := in.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case int:
		return Number(float64(x)), nil
	case int8:
		return Number(float64(x)), nil
	case int16:
		return Number(float64(x)), nil
	case int32:
		return Number(float64(x)), nil
	case int64:
		return Number(float64(x)), nil
	case uint:
		return Number(float64(x)), nil
	case uint8:
		return Number(float64(x)), nil
	case uint16:
		return Number(float64(x)), nil
	case uint32:
		return Number(float64(x)), nil
	case uint64:
		return Number(float64(x)), nil
	case float32:
		return Number(float64(x)), nil
	case float64:
		return Number(x), nil
	case string:
		return String(x), nil
	case time.Time:
		return String(x.Format(time.RFC3339)), nil
	case []any:
		seq := NewSequence()
		for i, elem := range x {
			child, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			seq.Append(child)
		}
		return seq, nil
	case []string:
		seq := NewSequence()
		for _, elem := range x {
			seq.Append(String(elem))
		}
		return seq, nil
	case []map[string]any:
		// The TOML decoder shapes arrays of tables this way.
		seq := NewSequence()
		for i, elem := range x {
			child, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			seq.Append(child)
		}
		return seq, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for key := range x {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		m := NewMapping()
		for _, key := range keys {
			child, err := FromAny(x[key])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", key, err)
			}
			m.Put(key, child)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", in)
	}
}

// MarshalJSON encodes the value as JSON, preserving mapping key order.
func (v *Value) MarshalJSON() ([]byte, error) {
	var buf []byte
	return v.appendJSON(buf), nil
}

func (v *Value) appendJSON(buf []byte) []byte {
	if v == nil {
		return append(buf, "null"...)
	}
	switch v.kind {
	case KindNull:
		return append(buf, "null"...)
	case KindBool:
		return strconv.AppendBool(buf, v.b)
	case KindNumber:
		// NaN and infinities have no JSON encoding.
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return append(buf, "null"...)
		}
		if v.n == math.Trunc(v.n) && math.Abs(v.n) < 1e15 {
			return strconv.AppendInt(buf, int64(v.n), 10)
		}
		return strconv.AppendFloat(buf, v.n, 'g', -1, 64)
	case KindString:
		return strconv.AppendQuote(buf, v.s)
	case KindSequence:
		buf = append(buf, '[')
		for i, elem := range v.seq {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = elem.appendJSON(buf)
		}
		return append(buf, ']')
	case KindMapping:
		buf = append(buf, '{')
		for i, key := range v.keys {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = strconv.AppendQuote(buf, key)
			buf = append(buf, ':')
			buf = v.fields[key].appendJSON(buf)
		}
		return append(buf, '}')
	default:
		return append(buf, "null"...)
	}
}

// String renders the value as compact JSON for debugging.
func (v *Value) String() string {
	data, _ := v.MarshalJSON()
	return string(data)
}
