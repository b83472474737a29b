package jsonschema_test

import (
	"testing"

	"github.com/reoring/ledgerskema/jsonschema"
)

// TestResolvePointer_ArrayVersusNumericField checks that a numeric token is
// an index only where the instance holds an array.
func TestResolvePointer_ArrayVersusNumericField(t *testing.T) {
	data := map[string]any{
		"transactions": []any{map[string]any{"amount": 1}},
		"meta":         map[string]any{"0": "zero"},
	}

	got := jsonschema.ResolvePointer("/transactions/0/amount", data)
	want := jsonschema.Path{jsonschema.Field("transactions"), jsonschema.Index(0), jsonschema.Field("amount")}
	if !got.Equal(want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}

	got = jsonschema.ResolvePointer("/meta/0", data)
	want = jsonschema.Path{jsonschema.Field("meta"), jsonschema.Field("0")}
	if !got.Equal(want) {
		t.Fatalf("object key must stay a field: got %#v", got)
	}
}

func TestResolvePointer_RootAndEscapes(t *testing.T) {
	if p := jsonschema.ResolvePointer("", nil); len(p) != 0 {
		t.Fatalf("root pointer should be empty path, got %v", p)
	}
	data := map[string]any{"a/b": map[string]any{"c~d": true}}
	p := jsonschema.ResolvePointer("/a~1b/c~0d", data)
	if len(p) != 2 || p[0].Field != "a/b" || p[1].Field != "c~d" {
		t.Fatalf("unexpected unescaping: %#v", p)
	}
	if got := p.Pointer(); got != "/a~1b/c~0d" {
		t.Fatalf("pointer round trip: %s", got)
	}
	if v, ok := p.Lookup(data); !ok || v != true {
		t.Fatalf("lookup: %v %v", v, ok)
	}
}

func TestPath_String(t *testing.T) {
	cases := []struct {
		path jsonschema.Path
		want string
	}{
		{jsonschema.Path{}, ""},
		{jsonschema.Path{jsonschema.Field("transactions"), jsonschema.Index(3), jsonschema.Field("amount")}, ".transactions[3].amount"},
		{jsonschema.Path{jsonschema.Field("vendor field")}, "['vendor field']"},
		{jsonschema.Path{jsonschema.Field("0")}, "['0']"},
	}
	for _, c := range cases {
		if got := c.path.String(); got != c.want {
			t.Errorf("%#v: got %q, want %q", c.path, got, c.want)
		}
	}
}

func TestPath_LookupMisses(t *testing.T) {
	data := map[string]any{"list": []any{1}}
	for _, p := range []jsonschema.Path{
		{jsonschema.Field("missing")},
		{jsonschema.Field("list"), jsonschema.Index(5)},
		{jsonschema.Field("list"), jsonschema.Field("x")},
		{jsonschema.Index(0)},
	} {
		if _, ok := p.Lookup(data); ok {
			t.Errorf("%v: expected miss", p)
		}
	}
}
