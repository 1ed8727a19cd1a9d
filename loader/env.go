package loader

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/strataconf/strata/keypath"
	"github.com/strataconf/strata/value"
)

// EnvLoader loads configuration from environment variables.
//
// Variables carrying the prefix map onto config paths: a single
// underscore separates nothing (the remainder is lowercased into one
// key), a double underscore descends a level. With prefix "APP_",
// APP_DB__HOST=a becomes {db: {host: "a"}}. Explicit mappings take
// priority over the derived path.
type EnvLoader struct {
	prefix  string
	mapping map[string]string

	// environ overrides os.Environ for tests.
	environ func() []string
}

// NewEnvLoader creates an environment variable loader. The prefix should
// include the trailing underscore (e.g. "APP_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: make(map[string]string),
		environ: os.Environ,
	}
}

// AddMapping maps one environment variable to an explicit config path,
// overriding the derived path.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	l.mapping[envVar] = configPath
}

// Load scans the environment and returns the derived tree. An
// environment with no matching variables yields (nil, nil). Empty string
// values are valid values, not absence.
func (l *EnvLoader) Load() (*value.Value, error) {
	tree := value.NewMapping()
	found := false

	for _, entry := range l.environ() {
		name, raw, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}

		pathExpr, mapped := l.mapping[name]
		if !mapped {
			if !strings.HasPrefix(name, l.prefix) {
				continue
			}
			pathExpr = envToPath(strings.TrimPrefix(name, l.prefix))
			if pathExpr == "" {
				continue
			}
		}

		path, err := keypath.Parse(pathExpr)
		if err != nil {
			return nil, fmt.Errorf("environment variable %s: %w", name, err)
		}
		if err := keypath.Set(tree, path, parseScalar(raw)); err != nil {
			return nil, fmt.Errorf("environment variable %s: %w", name, err)
		}
		found = true
	}

	if !found {
		return nil, nil
	}
	return tree, nil
}

// envToPath converts DB__POOL_SIZE to db.pool_size.
func envToPath(name string) string {
	levels := strings.Split(name, "__")
	parts := make([]string, 0, len(levels))
	for _, level := range levels {
		if level == "" {
			continue
		}
		parts = append(parts, strings.ToLower(level))
	}
	return strings.Join(parts, ".")
}

// parseScalar infers a value kind from the variable's text. Inference is
// narrow on purpose: exactly "true"/"false" become bools and valid
// numeric literals become numbers; everything else stays a string, since
// read-time coercion never guesses either.
func parseScalar(s string) *value.Value {
	switch s {
	case "true":
		return value.Bool(true)
	case "false":
		return value.Bool(false)
	}
	// ParseFloat also accepts "NaN" and "Inf", which are not numeric
	// literals and have no JSON form. They stay strings.
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return value.Number(f)
	}
	return value.String(s)
}
