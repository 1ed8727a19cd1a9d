package value

import (
	"reflect"
	"testing"
)

func treeFromJSON(t *testing.T, doc string) *Value {
	t.Helper()
	v, err := FromJSON([]byte(doc))
	if err != nil {
		t.Fatalf("FromJSON(%s) error = %v", doc, err)
	}
	return v
}

func TestFlatten(t *testing.T) {
	tree := treeFromJSON(t, `{"db":{"host":"a","replicas":[{"host":"r1"},{"host":"r2"}]},"debug":true}`)

	flat := Flatten(tree)
	want := map[string]string{
		"db.host":             `"a"`,
		"db.replicas[0].host": `"r1"`,
		"db.replicas[1].host": `"r2"`,
		"debug":               "true",
	}

	if len(flat) != len(want) {
		t.Fatalf("Flatten() has %d entries, want %d: %v", len(flat), len(want), flat)
	}
	for path, wantVal := range want {
		got, ok := flat[path]
		if !ok {
			t.Errorf("Flatten() missing path %q", path)
			continue
		}
		if got.String() != wantVal {
			t.Errorf("Flatten()[%q] = %s, want %s", path, got, wantVal)
		}
	}
}

func TestFlattenEmptyContainersAreLeaves(t *testing.T) {
	tree := treeFromJSON(t, `{"empty":{},"none":[]}`)

	flat := Flatten(tree)
	if _, ok := flat["empty"]; !ok {
		t.Error("empty mapping should flatten to a leaf")
	}
	if _, ok := flat["none"]; !ok {
		t.Error("empty sequence should flatten to a leaf")
	}
}

func TestDiff(t *testing.T) {
	old := treeFromJSON(t, `{"db":{"host":"a","port":5432},"debug":true}`)
	new := treeFromJSON(t, `{"db":{"host":"b","port":5432},"log":{"level":"info"}}`)

	added, modified, removed := Diff(old, new)

	if want := []string{"log.level"}; !reflect.DeepEqual(added, want) {
		t.Errorf("added = %v, want %v", added, want)
	}
	if want := []string{"db.host"}; !reflect.DeepEqual(modified, want) {
		t.Errorf("modified = %v, want %v", modified, want)
	}
	if want := []string{"debug"}; !reflect.DeepEqual(removed, want) {
		t.Errorf("removed = %v, want %v", removed, want)
	}
}

func TestDiffIdentical(t *testing.T) {
	tree := treeFromJSON(t, `{"a":{"b":1}}`)

	added, modified, removed := Diff(tree, tree.Clone())
	if len(added)+len(modified)+len(removed) != 0 {
		t.Errorf("Diff of identical trees = %v %v %v", added, modified, removed)
	}
}
