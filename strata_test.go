package strata

import (
	"errors"
	"math"
	"strconv"
	"sync"
	"testing"

	"github.com/strataconf/strata/keypath"
	"github.com/strataconf/strata/layer"
	"github.com/strataconf/strata/schema"
	"github.com/strataconf/strata/value"
)

func tree(t *testing.T, doc string) *value.Value {
	t.Helper()
	v, err := value.FromJSON([]byte(doc))
	if err != nil {
		t.Fatalf("FromJSON(%s) error = %v", doc, err)
	}
	return v
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	return Build(
		layer.NewSource("defaults", layer.RankDefaults, tree(t, `{
			"db": {"host": "localhost", "port": 5432},
			"debug": false,
			"timeout": "30",
			"ratio": 1.5,
			"flag": "true",
			"servers": [{"host": "s1"}]
		}`)),
		layer.NewSource("environment", layer.RankEnv, tree(t, `{
			"db": {"host": "prod.internal"}
		}`)),
	)
}

func TestBuildMergesByRank(t *testing.T) {
	cfg := testConfig(t)

	host, err := cfg.GetString("db.host")
	if err != nil {
		t.Fatalf("GetString() error = %v", err)
	}
	if host != "prod.internal" {
		t.Errorf("db.host = %q, want the higher-ranked value", host)
	}
	port, err := cfg.GetInt("db.port")
	if err != nil || port != 5432 {
		t.Errorf("db.port = %d, %v, want inherited 5432", port, err)
	}
}

func TestGet(t *testing.T) {
	cfg := testConfig(t)

	if v, ok := cfg.Get("servers[0].host"); !ok || v.String() != `"s1"` {
		t.Errorf("Get(servers[0].host) = %v, %v", v, ok)
	}
	if _, ok := cfg.Get("missing.path"); ok {
		t.Error("Get of absent path should report false")
	}
	if _, ok := cfg.Get("db..host"); ok {
		t.Error("Get of malformed expression should report false")
	}
}

func TestTypedAccessors(t *testing.T) {
	cfg := testConfig(t)

	if b, err := cfg.GetBool("debug"); err != nil || b {
		t.Errorf("GetBool(debug) = %v, %v", b, err)
	}
	if s, err := cfg.GetString("db.host"); err != nil || s != "prod.internal" {
		t.Errorf("GetString(db.host) = %q, %v", s, err)
	}
	if f, err := cfg.GetFloat64("ratio"); err != nil || f != 1.5 {
		t.Errorf("GetFloat64(ratio) = %v, %v", f, err)
	}
	// String holding a numeric literal coerces to number.
	if n, err := cfg.GetInt("timeout"); err != nil || n != 30 {
		t.Errorf("GetInt(timeout) = %d, %v", n, err)
	}
	// Bool coerces to its exact string form.
	if s, err := cfg.GetString("debug"); err != nil || s != "false" {
		t.Errorf("GetString(debug) = %q, %v", s, err)
	}
}

func TestCoercionIsNarrow(t *testing.T) {
	cfg := testConfig(t)

	tests := []struct {
		name string
		call func() error
	}{
		// The string "true" is NOT a bool.
		{"string to bool", func() error { _, err := cfg.GetBool("flag"); return err }},
		{"number to bool", func() error { _, err := cfg.GetBool("db.port"); return err }},
		{"number to string", func() error { _, err := cfg.GetString("db.port"); return err }},
		{"non-numeric string to number", func() error { _, err := cfg.GetFloat64("db.host"); return err }},
		{"non-integral number to int", func() error { _, err := cfg.GetInt("ratio"); return err }},
		{"mapping to string", func() error { _, err := cfg.GetString("db"); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if err == nil {
				t.Fatal("coercion should fail")
			}
			var cerr *CoercionError
			if !errors.As(err, &cerr) {
				t.Errorf("error = %T (%v), want *CoercionError", err, err)
			}
		})
	}
}

func TestIntegerRangeChecks(t *testing.T) {
	m := value.NewMapping()
	m.Put("min", value.Number(math.MinInt64))
	m.Put("big", value.Number(1<<62))
	// math.MaxInt64 rounds up to 2^63 as a float64, one past the range.
	m.Put("over", value.Number(math.MaxInt64))
	m.Put("nan", value.String("NaN"))
	cfg := New(m)

	if n, err := cfg.GetInt64("min"); err != nil || n != math.MinInt64 {
		t.Errorf("GetInt64(min) = %d, %v, want MinInt64", n, err)
	}
	if n, err := cfg.GetInt64("big"); err != nil || n != 1<<62 {
		t.Errorf("GetInt64(big) = %d, %v, want 1<<62", n, err)
	}

	var cerr *CoercionError
	if _, err := cfg.GetInt64("over"); !errors.As(err, &cerr) {
		t.Errorf("GetInt64(over) error = %v, want *CoercionError, not a wrapped negative", err)
	}
	if strconv.IntSize == 32 {
		if _, err := cfg.GetInt("big"); !errors.As(err, &cerr) {
			t.Errorf("GetInt(big) error = %v, want *CoercionError on 32-bit int", err)
		}
	} else if n, err := cfg.GetInt("big"); err != nil || n != 1<<62 {
		t.Errorf("GetInt(big) = %d, %v, want 1<<62", n, err)
	}

	// "NaN" parses as a float but is not a numeric literal.
	if _, err := cfg.GetFloat64("nan"); !errors.As(err, &cerr) {
		t.Errorf("GetFloat64(nan) error = %v, want *CoercionError", err)
	}
}

func TestAccessorErrorKinds(t *testing.T) {
	cfg := testConfig(t)

	_, err := cfg.GetString("missing")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("absent path error = %T, want *NotFoundError", err)
	}

	_, err = cfg.GetString("db..host")
	var syntaxErr *keypath.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Errorf("malformed expression error = %T, want *keypath.SyntaxError", err)
	}
}

func TestOrAccessorsSwallowFailures(t *testing.T) {
	cfg := testConfig(t)

	if got := cfg.StringOr("db.host", "fallback"); got != "prod.internal" {
		t.Errorf("StringOr hit = %q", got)
	}
	if got := cfg.StringOr("missing", "fallback"); got != "fallback" {
		t.Errorf("StringOr miss = %q", got)
	}
	// Both absence and coercion failure yield the default.
	if got := cfg.BoolOr("flag", true); got != true {
		t.Errorf("BoolOr on string value = %v, want default", got)
	}
	if got := cfg.IntOr("db.port", 1); got != 5432 {
		t.Errorf("IntOr hit = %d", got)
	}
	if got := cfg.Int64Or("ratio", 7); got != 7 {
		t.Errorf("Int64Or on non-integral = %d, want default", got)
	}
	if got := cfg.Float64Or("absent", 2.5); got != 2.5 {
		t.Errorf("Float64Or miss = %v", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := testConfig(t)

	ok := schema.Object(map[string]*schema.Node{
		"db": schema.Object(map[string]*schema.Node{
			"host": schema.Required(schema.TypeString),
			"port": schema.Required(schema.TypeNumber),
		}),
	})
	if err := cfg.Validate(ok); err != nil {
		t.Errorf("Validate() error = %v", err)
	}

	bad := schema.Object(map[string]*schema.Node{
		"db": schema.Object(map[string]*schema.Node{
			"password": schema.Required(schema.TypeString),
		}),
	})
	err := cfg.Validate(bad)
	var verrs *schema.ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("Validate() error = %T, want *schema.ValidationErrors", err)
	}
	if len(verrs.ByPath("db.password")) != 1 {
		t.Errorf("expected a missing-field error at db.password, got %v", verrs)
	}
}

func TestEffective(t *testing.T) {
	cfg := testConfig(t)

	root := schema.Object(map[string]*schema.Node{
		"db": schema.Object(map[string]*schema.Node{
			"host":     schema.Required(schema.TypeString),
			"replicas": schema.Optional(schema.TypeNumber, value.Number(0)),
		}),
	})

	effective, err := cfg.Effective(root)
	if err != nil {
		t.Fatalf("Effective() error = %v", err)
	}
	db, _ := effective.Get("db")
	replicas, ok := db.Get("replicas")
	if !ok {
		t.Fatal("default for db.replicas not applied")
	}
	if n, ok := replicas.AsNumber(); !ok || n != 0 {
		t.Errorf("db.replicas = %s, want default 0", replicas)
	}

	// The config's own tree stays untouched.
	if _, ok := cfg.Get("db.replicas"); ok {
		t.Error("default leaked into the merged tree")
	}
}

func TestNewClonesItsInput(t *testing.T) {
	src := tree(t, `{"a":1}`)
	cfg := New(src)

	// Mutating the caller's tree after New must not reach the config.
	src.Put("a", value.Number(2))
	if n, _ := cfg.GetFloat64("a"); n != 1 {
		t.Errorf("config saw caller mutation: a = %v", n)
	}
}

func TestConcurrentReaders(t *testing.T) {
	cfg := testConfig(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if got := cfg.StringOr("db.host", ""); got != "prod.internal" {
					t.Errorf("concurrent read = %q", got)
					return
				}
				cfg.IntOr("db.port", 0)
				cfg.Get("servers[0].host")
			}
		}()
	}
	wg.Wait()
}
