package value

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// FromJSON parses JSON into a Value tree. Object keys keep their document
// order, which an intermediate map[string]any would lose.
func FromJSON(data []byte) (*Value, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid JSON document")
	}
	return FromResult(gjson.ParseBytes(data)), nil
}

// FromResult converts a parsed gjson result into a Value tree.
func FromResult(res gjson.Result) *Value {
	switch res.Type {
	case gjson.Null:
		return Null()
	case gjson.False:
		return Bool(false)
	case gjson.True:
		return Bool(true)
	case gjson.Number:
		return Number(res.Num)
	case gjson.String:
		return String(res.Str)
	default:
		if res.IsArray() {
			seq := NewSequence()
			res.ForEach(func(_, elem gjson.Result) bool {
				seq.Append(FromResult(elem))
				return true
			})
			return seq
		}
		if res.IsObject() {
			m := NewMapping()
			res.ForEach(func(key, elem gjson.Result) bool {
				m.Put(key.String(), FromResult(elem))
				return true
			})
			return m
		}
		return Null()
	}
}
