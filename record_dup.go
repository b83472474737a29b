package ledgerskema

import (
	"bytes"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/reoring/ledgerskema/jsonschema"
)

// ErrDuplicateKey reports a record object that repeats a key. Decoders
// disagree on which value wins, so such a record is never accepted.
var ErrDuplicateKey = errors.New("duplicate object key")

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type dupFrame struct {
	kind         containerKind
	keys         map[string]struct{}
	expectingKey bool
	next         int // next array index
}

// checkDuplicateKeys walks data token by token and fails on the first object
// that repeats a key. Syntax errors are left to the decoder that follows.
func checkDuplicateKeys(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var (
		stack []dupFrame
		path  jsonschema.Path
	)
	// child computes the location of a value about to start in the current
	// container and marks the parent as expecting its next key.
	child := func() (jsonschema.Segment, bool) {
		if len(stack) == 0 {
			return jsonschema.Segment{}, false
		}
		top := &stack[len(stack)-1]
		if top.kind == kindArray {
			seg := jsonschema.Index(top.next)
			top.next++
			return seg, true
		}
		top.expectingKey = true
		return jsonschema.Segment{}, true
	}
	var pendingKey string

	for {
		tok, err := dec.Token()
		if err != nil {
			return nil
		}

		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{', '[':
				seg, nested := child()
				if nested && stack[len(stack)-1].kind == kindObject {
					seg = jsonschema.Field(pendingKey)
				}
				if nested {
					path = append(path, seg)
				}
				f := dupFrame{kind: kindArray}
				if v == '{' {
					f = dupFrame{kind: kindObject, keys: make(map[string]struct{}), expectingKey: true}
				}
				stack = append(stack, f)
			case '}', ']':
				if len(stack) == 0 {
					return nil
				}
				stack = stack[:len(stack)-1]
				if len(stack) > 0 && len(path) > 0 {
					path = path[:len(path)-1]
				}
			}
		case string:
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				if top.kind == kindObject && top.expectingKey {
					if _, dup := top.keys[v]; dup {
						return errors.Wrapf(ErrDuplicateKey, "key %s at data%s", strconv.Quote(v), path.String())
					}
					top.keys[v] = struct{}{}
					top.expectingKey = false
					pendingKey = v
					continue
				}
			}
			child()
		default:
			child()
		}
	}
}
