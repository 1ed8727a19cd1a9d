package loader

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/strataconf/strata/value"
)

// YAMLLoader loads configuration from YAML files. It walks the yaml.Node
// tree directly rather than decoding into maps, so mapping keys keep
// their document order.
type YAMLLoader struct {
	fs   FileSystem
	path string
}

// NewYAMLLoader creates a YAML loader for the given path.
func NewYAMLLoader(path string) *YAMLLoader {
	return &YAMLLoader{fs: DefaultFS(), path: path}
}

// NewYAMLLoaderWithFS creates a YAML loader with a custom file system.
func NewYAMLLoaderWithFS(fs FileSystem, path string) *YAMLLoader {
	return &YAMLLoader{fs: fs, path: path}
}

// Load reads configuration from the configured path.
func (l *YAMLLoader) Load() (*value.Value, error) {
	data, err := l.fs.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", l.path, err)
	}
	return l.parse(l.path, data)
}

// LoadFromReader reads configuration from an io.Reader.
func (l *YAMLLoader) LoadFromReader(r io.Reader) (*value.Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return l.parse("<reader>", data)
}

func (l *YAMLLoader) parse(source string, data []byte) (*value.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}

	// An empty document has no content nodes.
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	tree, err := yamlToValue(doc.Content[0], make(map[*yaml.Node]bool))
	if err != nil {
		return nil, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	return tree, nil
}

// yamlToValue converts a yaml.Node tree. expanding tracks anchor nodes
// currently being expanded through an alias; an alias back into one of
// them is a cycle, not a tree.
func yamlToValue(n *yaml.Node, expanding map[*yaml.Node]bool) (*value.Value, error) {
	switch n.Kind {
	case yaml.MappingNode:
		m := value.NewMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i]
			child, err := yamlToValue(n.Content[i+1], expanding)
			if err != nil {
				return nil, err
			}
			m.Put(key.Value, child)
		}
		return m, nil

	case yaml.SequenceNode:
		seq := value.NewSequence()
		for _, elem := range n.Content {
			child, err := yamlToValue(elem, expanding)
			if err != nil {
				return nil, err
			}
			seq.Append(child)
		}
		return seq, nil

	case yaml.AliasNode:
		if expanding[n.Alias] {
			return nil, fmt.Errorf("recursive alias %q at line %d", n.Value, n.Line)
		}
		expanding[n.Alias] = true
		v, err := yamlToValue(n.Alias, expanding)
		delete(expanding, n.Alias)
		return v, err

	case yaml.ScalarNode:
		return yamlScalar(n), nil

	default:
		return nil, fmt.Errorf("unsupported YAML node kind %d at line %d", n.Kind, n.Line)
	}
}

func yamlScalar(n *yaml.Node) *value.Value {
	switch n.Tag {
	case "!!null":
		return value.Null()
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return value.String(n.Value)
		}
		return value.Bool(b)
	case "!!int", "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return value.String(n.Value)
		}
		return value.Number(f)
	default:
		return value.String(n.Value)
	}
}
