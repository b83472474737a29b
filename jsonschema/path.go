package jsonschema

import (
	"strconv"
	"strings"
)

// Segment is one step of a Path: either an object field or an array index.
type Segment struct {
	Field   string
	Index   int
	IsIndex bool
}

// Field returns a field segment.
func Field(name string) Segment { return Segment{Field: name} }

// Index returns an array index segment.
func Index(i int) Segment { return Segment{Index: i, IsIndex: true} }

// String renders the segment in data-path form: ".name", "['odd name']" or "[3]".
func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	if isIdentifier(s.Field) {
		return "." + s.Field
	}
	return "['" + strings.ReplaceAll(s.Field, "'", "\\'") + "']"
}

// Path locates a value inside a validated instance. The empty Path is the
// instance root.
type Path []Segment

// String renders the path as a data path such as ".transactions[0].amount".
func (p Path) String() string {
	b := &strings.Builder{}
	for _, s := range p {
		b.WriteString(s.String())
	}
	return b.String()
}

// Pointer renders p as an RFC 6901 JSON Pointer ("" for the root).
func (p Path) Pointer() string {
	b := &strings.Builder{}
	for _, s := range p {
		b.WriteByte('/')
		if s.IsIndex {
			b.WriteString(strconv.Itoa(s.Index))
			continue
		}
		b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s.Field, "~", "~0"), "/", "~1"))
	}
	return b.String()
}

// Equal reports whether p and q address the same location.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Lookup returns the value p addresses inside data.
func (p Path) Lookup(data any) (any, bool) {
	cur := data
	for _, s := range p {
		switch c := cur.(type) {
		case map[string]any:
			if s.IsIndex {
				return nil, false
			}
			v, ok := c[s.Field]
			if !ok {
				return nil, false
			}
			cur = v
		case []any:
			if !s.IsIndex || s.Index < 0 || s.Index >= len(c) {
				return nil, false
			}
			cur = c[s.Index]
		default:
			return nil, false
		}
	}
	return cur, true
}

// ResolvePointer turns a JSON Pointer into a Path by walking it against data,
// so that a token is an Index only where the instance actually holds an array.
// Tokens that run past the instance are kept as fields.
func ResolvePointer(pointer string, data any) Path {
	if pointer == "" || pointer == "/" {
		return Path{}
	}
	tokens := strings.Split(strings.TrimPrefix(pointer, "/"), "/")
	path := make(Path, 0, len(tokens))
	cur := data
	for _, tok := range tokens {
		tok = strings.ReplaceAll(strings.ReplaceAll(tok, "~1", "/"), "~0", "~")
		switch c := cur.(type) {
		case []any:
			if i, err := strconv.Atoi(tok); err == nil && i >= 0 {
				path = append(path, Index(i))
				if i < len(c) {
					cur = c[i]
				} else {
					cur = nil
				}
				continue
			}
			cur = nil
		case map[string]any:
			cur = c[tok]
		default:
			cur = nil
		}
		path = append(path, Field(tok))
	}
	return path
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
