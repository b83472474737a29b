// Package exceptions provides a static exception list: block and transaction
// identifiers whose historical schema violations are tolerated.
//
// Lists are read from YAML or JSON documents of the form
//
//	blocks:
//	  - "1a2b..."
//	transactions:
//	  - "3c4d..."
package exceptions

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the on-disk layout of an exception list.
type File struct {
	Blocks       []string `yaml:"blocks" json:"blocks"`
	Transactions []string `yaml:"transactions" json:"transactions"`
}

// Set is a read-only-after-load set of exempted identifiers. The zero value
// and a nil *Set exempt nothing.
type Set struct {
	ids map[string]struct{}
}

// New returns a Set holding ids.
func New(ids ...string) *Set {
	s := &Set{}
	s.Add(ids...)
	return s
}

// FromFile returns a Set holding every block and transaction id in f.
func FromFile(f File) *Set {
	s := New(f.Blocks...)
	s.Add(f.Transactions...)
	return s
}

// Add inserts ids. Empty ids are ignored.
func (s *Set) Add(ids ...string) {
	if s.ids == nil {
		s.ids = make(map[string]struct{}, len(ids))
	}
	for _, id := range ids {
		if id == "" {
			continue
		}
		s.ids[id] = struct{}{}
	}
}

// IsException reports whether id is on the list.
func (s *Set) IsException(id string) bool {
	if s == nil {
		return false
	}
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of identifiers.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// IDs returns the identifiers in sorted order.
func (s *Set) IDs() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Parse reads an exception list. Documents starting with '{' are decoded as
// JSON, everything else as YAML. Unknown keys are an error in both formats.
func Parse(data []byte) (*Set, error) {
	var f File
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := decodeJSON(trimmed, &f); err != nil {
			return nil, errors.Wrap(err, "parsing JSON exception list")
		}
		return FromFile(f), nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "parsing YAML exception list")
	}
	return FromFile(f), nil
}

// Load reads the exception list at path.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading exception list %s", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		var f File
		if err := decodeJSON(data, &f); err != nil {
			return nil, errors.Wrapf(err, "parsing exception list %s", path)
		}
		return FromFile(f), nil
	}
	s, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "exception list %s", path)
	}
	return s, nil
}

func decodeJSON(data []byte, f *File) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(f)
}
