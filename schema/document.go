package schema

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/strataconf/strata/value"
)

// ParseDocument builds a schema from a compact JSON description, so
// schemas can ship beside the config files they validate. The format:
//
//	{"type": "object",
//	 "properties": {
//	   "host": {"type": "string"},
//	   "port": {"type": "number", "optional": true, "default": 5432},
//	   "tags": {"type": "array", "items": {"type": "string"}}}}
//
// Leaf types are "bool", "number", "string", and "any". A leaf is
// required unless "optional" is true; an optional leaf may carry a
// "default". "object" nodes declare "properties"; "array" nodes declare
// "items".
func ParseDocument(data []byte) (*Node, error) {
	if !gjson.ValidBytes(data) {
		return nil, &DocumentError{Message: "invalid JSON document"}
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, &DocumentError{Message: "schema document must be a JSON object"}
	}
	return parseNode("", doc)
}

func parseNode(path string, doc gjson.Result) (*Node, error) {
	typeName := doc.Get("type").String()
	switch typeName {
	case "object":
		props := doc.Get("properties")
		if !props.IsObject() {
			return nil, &DocumentError{Path: path, Message: "object node needs a properties object"}
		}
		fields := make(map[string]*Node)
		var err error
		props.ForEach(func(key, prop gjson.Result) bool {
			name := key.String()
			childPath := name
			if path != "" {
				childPath = path + "." + name
			}
			var child *Node
			child, err = parseNode(childPath, prop)
			if err != nil {
				return false
			}
			fields[name] = child
			return true
		})
		if err != nil {
			return nil, err
		}
		return Object(fields), nil

	case "array":
		items := doc.Get("items")
		if !items.Exists() {
			return nil, &DocumentError{Path: path, Message: "array node needs an items schema"}
		}
		elem, err := parseNode(path+"[]", items)
		if err != nil {
			return nil, err
		}
		return ArrayOf(elem), nil

	case "bool", "boolean", "number", "string", "any":
		leaf := leafType(typeName)
		if !doc.Get("optional").Bool() {
			return Required(leaf), nil
		}
		var def *value.Value
		if d := doc.Get("default"); d.Exists() {
			def = value.FromResult(d)
		}
		return Optional(leaf, def), nil

	case "":
		return nil, &DocumentError{Path: path, Message: "missing type"}
	default:
		return nil, &DocumentError{Path: path, Message: fmt.Sprintf("unknown type %q", typeName)}
	}
}

func leafType(name string) Type {
	switch name {
	case "bool", "boolean":
		return TypeBool
	case "number":
		return TypeNumber
	case "string":
		return TypeString
	default:
		return TypeAny
	}
}

// DocumentError reports a malformed schema document.
type DocumentError struct {
	// Path locates the offending node inside the document, empty for the
	// root.
	Path string

	// Message describes the problem.
	Message string
}

func (e *DocumentError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid schema document: %s", e.Message)
	}
	return fmt.Sprintf("invalid schema document at %s: %s", e.Path, e.Message)
}
