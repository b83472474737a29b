package exceptions_test

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/reoring/ledgerskema/exceptions"
)

func TestParse_YAMLAndJSON(t *testing.T) {
	yamlDoc := []byte(`
blocks:
  - "b1"
transactions:
  - "t1"
  - "t2"
`)
	jsonDoc := []byte(`{"blocks": ["b1"], "transactions": ["t1", "t2"]}`)

	for name, doc := range map[string][]byte{"yaml": yamlDoc, "json": jsonDoc} {
		s, err := exceptions.Parse(doc)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got, want := s.IDs(), []string{"b1", "t1", "t2"}; !reflect.DeepEqual(got, want) {
			t.Fatalf("%s: got %v, want %v", name, got, want)
		}
		if !s.IsException("t2") || s.IsException("t3") {
			t.Fatalf("%s: unexpected membership", name)
		}
	}
}

func TestParse_RejectsUnknownYAMLFields(t *testing.T) {
	if _, err := exceptions.Parse([]byte("blockz:\n  - b1\n")); err == nil {
		t.Fatalf("expected an error for a misspelled key")
	}
}

func TestParse_RejectsUnknownJSONFields(t *testing.T) {
	if _, err := exceptions.Parse([]byte(`{"transaction": ["t1"]}`)); err == nil {
		t.Fatalf("expected an error for a misspelled key")
	}
	p := filepath.Join(t.TempDir(), "exceptions.json")
	if err := os.WriteFile(p, []byte(`{"blockz": ["b1"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := exceptions.Load(p); err == nil {
		t.Fatalf("expected an error for a misspelled key in %s", p)
	}
}

func TestParse_EmptyDocument(t *testing.T) {
	s, err := exceptions.Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty set, got %v", s.IDs())
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "exceptions.json")
	if err := os.WriteFile(jsonPath, []byte(`{"transactions": ["t9"]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	yamlPath := filepath.Join(dir, "exceptions.yaml")
	if err := os.WriteFile(yamlPath, []byte("blocks: [b9]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := exceptions.Load(jsonPath)
	if err != nil || !s.IsException("t9") {
		t.Fatalf("json load: %v %v", s, err)
	}
	s, err = exceptions.Load(yamlPath)
	if err != nil || !s.IsException("b9") {
		t.Fatalf("yaml load: %v %v", s, err)
	}
	if _, err := exceptions.Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}

func TestSet_NilAndEmptyIDs(t *testing.T) {
	var s *exceptions.Set
	if s.IsException("x") || s.Len() != 0 || s.IDs() != nil {
		t.Fatalf("nil set must be empty")
	}
	set := exceptions.New("", "a")
	if set.Len() != 1 || set.IsException("") {
		t.Fatalf("empty ids must be ignored: %v", set.IDs())
	}
}
