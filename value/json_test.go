package value

import (
	"reflect"
	"testing"
)

func TestFromJSONPreservesKeyOrder(t *testing.T) {
	v, err := FromJSON([]byte(`{"zebra":1,"apple":{"beta":2,"alpha":3},"mango":[1,"two",false,null]}`))
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}

	if got := v.Keys(); !reflect.DeepEqual(got, []string{"zebra", "apple", "mango"}) {
		t.Errorf("Keys() = %v, want document order", got)
	}
	apple, _ := v.Get("apple")
	if got := apple.Keys(); !reflect.DeepEqual(got, []string{"beta", "alpha"}) {
		t.Errorf("nested Keys() = %v, want document order", got)
	}

	mango, _ := v.Get("mango")
	if mango.Len() != 4 {
		t.Fatalf("mango.Len() = %d, want 4", mango.Len())
	}
	if !mango.At(3).IsNull() {
		t.Errorf("mango[3] = %s, want null", mango.At(3))
	}
}

func TestFromJSONScalars(t *testing.T) {
	tests := []struct {
		doc  string
		kind Kind
	}{
		{`true`, KindBool},
		{`3.5`, KindNumber},
		{`"hi"`, KindString},
		{`null`, KindNull},
	}

	for _, tt := range tests {
		v, err := FromJSON([]byte(tt.doc))
		if err != nil {
			t.Errorf("FromJSON(%s) error = %v", tt.doc, err)
			continue
		}
		if v.Kind() != tt.kind {
			t.Errorf("FromJSON(%s).Kind() = %s, want %s", tt.doc, v.Kind(), tt.kind)
		}
	}
}

func TestFromJSONInvalid(t *testing.T) {
	if _, err := FromJSON([]byte(`{"a":`)); err == nil {
		t.Error("FromJSON should reject truncated JSON")
	}
}
