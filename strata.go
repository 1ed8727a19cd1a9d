// Package strata resolves hierarchical configuration for services that
// load settings from several sources at once.
//
// Ranked source trees are merged into one immutable tree, read through
// dotted path expressions with narrow type coercion, and validated
// against a schema before the service starts:
//
//	cfg := strata.Build(
//		layer.NewSource("defaults", layer.RankDefaults, defaults),
//		layer.NewSource("config.toml", layer.RankFile, fileTree),
//		layer.NewSource("environment", layer.RankEnv, envTree),
//	)
//	host, err := cfg.GetString("db.host")
//	port := cfg.IntOr("db.port", 5432)
//	err = cfg.Validate(schemaRoot)
//
// A Config never changes after Build, so it is safe to share across any
// number of concurrent readers without locking. Reload by building a new
// Config and swapping the reference.
package strata

import (
	"fmt"
	"math"
	"strconv"

	"github.com/strataconf/strata/keypath"
	"github.com/strataconf/strata/layer"
	"github.com/strataconf/strata/schema"
	"github.com/strataconf/strata/value"
)

// Config owns one merged configuration tree, immutable for its lifetime.
type Config struct {
	tree *value.Value
}

// Build merges the sources by ascending rank and wraps the result.
func Build(sources ...layer.Source) *Config {
	return &Config{tree: layer.Merge(sources)}
}

// New wraps an already-merged tree. The tree is deep-copied so later
// mutations by the caller cannot reach concurrent readers.
func New(tree *value.Value) *Config {
	if tree == nil {
		tree = value.NewMapping()
	}
	return &Config{tree: tree.Clone()}
}

// Tree returns the underlying merged tree. Callers must treat it as
// read-only; mutate a Clone instead.
func (c *Config) Tree() *value.Value {
	return c.tree
}

// Get resolves a path expression to the value stored there. It returns
// (nil, false) when the path is absent or the expression is malformed;
// use the typed accessors to distinguish those.
func (c *Config) Get(expr string) (*value.Value, bool) {
	path, err := keypath.Parse(expr)
	if err != nil {
		return nil, false
	}
	return keypath.Resolve(c.tree, path)
}

// Validate walks the merged tree against the schema, returning nil or a
// *schema.ValidationErrors collecting every problem.
func (c *Config) Validate(root *schema.Node) error {
	return schema.NewValidator(root).Validate(c.tree)
}

// Effective validates against the schema and returns the effective tree:
// a copy of the merged tree with the defaults of absent optional fields
// filled in. The copy is returned alongside any validation error.
func (c *Config) Effective(root *schema.Node) (*value.Value, error) {
	return schema.NewValidator(root).Effective(c.tree)
}

// GetBool reads a boolean. Only the bool kind coerces to bool; in
// particular the strings "true" and "false" do not.
func (c *Config) GetBool(expr string) (bool, error) {
	v, err := c.lookup(expr)
	if err != nil {
		return false, err
	}
	b, ok := v.AsBool()
	if !ok {
		return false, coercionError(expr, v, "bool")
	}
	return b, nil
}

// GetString reads a string. Bools coerce to exactly "true" or "false";
// no other kind coerces.
func (c *Config) GetString(expr string) (string, error) {
	v, err := c.lookup(expr)
	if err != nil {
		return "", err
	}
	if s, ok := v.AsString(); ok {
		return s, nil
	}
	if b, ok := v.AsBool(); ok {
		return strconv.FormatBool(b), nil
	}
	return "", coercionError(expr, v, "string")
}

// GetFloat64 reads a number. Strings coerce only when they are valid
// numeric literals.
func (c *Config) GetFloat64(expr string) (float64, error) {
	v, err := c.lookup(expr)
	if err != nil {
		return 0, err
	}
	return floatFrom(expr, v)
}

// GetInt reads an integral number. Non-integral numbers do not truncate;
// they fail coercion.
func (c *Config) GetInt(expr string) (int, error) {
	n, err := c.GetInt64(expr)
	if err != nil {
		return 0, err
	}
	if n < math.MinInt || n > math.MaxInt {
		v, _ := c.lookup(expr)
		return 0, coercionError(expr, v, "integer")
	}
	return int(n), nil
}

// GetInt64 reads an integral number as int64.
func (c *Config) GetInt64(expr string) (int64, error) {
	v, err := c.lookup(expr)
	if err != nil {
		return 0, err
	}
	f, err := floatFrom(expr, v)
	if err != nil {
		return 0, err
	}
	// MaxInt64 is not representable as a float64; it rounds up to 2^63,
	// which is exactly one past the range. Compare against the power of
	// two with an exclusive bound instead.
	if f != math.Trunc(f) || f < math.MinInt64 || f >= 1<<63 {
		return 0, coercionError(expr, v, "integer")
	}
	return int64(f), nil
}

// BoolOr reads a boolean, returning def on absence, a malformed
// expression, or failed coercion. The best-effort accessors are the one
// place errors are swallowed on purpose.
func (c *Config) BoolOr(expr string, def bool) bool {
	b, err := c.GetBool(expr)
	if err != nil {
		return def
	}
	return b
}

// StringOr reads a string, returning def on absence or failed coercion.
func (c *Config) StringOr(expr string, def string) string {
	s, err := c.GetString(expr)
	if err != nil {
		return def
	}
	return s
}

// Float64Or reads a number, returning def on absence or failed coercion.
func (c *Config) Float64Or(expr string, def float64) float64 {
	f, err := c.GetFloat64(expr)
	if err != nil {
		return def
	}
	return f
}

// IntOr reads an integral number, returning def on absence or failed
// coercion.
func (c *Config) IntOr(expr string, def int) int {
	n, err := c.GetInt(expr)
	if err != nil {
		return def
	}
	return n
}

// Int64Or reads an integral number, returning def on absence or failed
// coercion.
func (c *Config) Int64Or(expr string, def int64) int64 {
	n, err := c.GetInt64(expr)
	if err != nil {
		return def
	}
	return n
}

// lookup parses and resolves, mapping absence to *NotFoundError.
func (c *Config) lookup(expr string) (*value.Value, error) {
	path, err := keypath.Parse(expr)
	if err != nil {
		return nil, err
	}
	v, ok := keypath.Resolve(c.tree, path)
	if !ok {
		return nil, &NotFoundError{Path: expr}
	}
	return v, nil
}

func floatFrom(expr string, v *value.Value) (float64, error) {
	if n, ok := v.AsNumber(); ok {
		return n, nil
	}
	if s, ok := v.AsString(); ok {
		// "NaN" and "Inf" parse but are not numeric literals.
		if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, nil
		}
	}
	return 0, coercionError(expr, v, "number")
}

func coercionError(expr string, v *value.Value, to string) error {
	return &CoercionError{Path: expr, From: v.Kind().String(), To: to}
}

// NotFoundError reports that a path resolved to nothing.
type NotFoundError struct {
	// Path is the expression that missed.
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("configuration value %q not found", e.Path)
}

// CoercionError reports a read-time type mismatch. Coercion is narrow on
// purpose: anything outside the documented conversions fails rather than
// silently defaulting.
type CoercionError struct {
	// Path is the expression that was read.
	Path string

	// From is the kind stored in the tree.
	From string

	// To is the requested type.
	To string
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("cannot coerce %q from %s to %s", e.Path, e.From, e.To)
}
