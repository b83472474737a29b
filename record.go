package ledgerskema

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
)

// DecodeRecord decodes a JSON block record into generic values, keeping
// numbers as json.Number so that large amounts survive untouched. Objects
// that repeat a key are rejected with ErrDuplicateKey. Trailing data after
// the first value is an error.
func DecodeRecord(data []byte) (any, error) {
	if err := checkDuplicateKeys(data); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "decoding record")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("decoding record: unexpected data after the first value")
	}
	return v, nil
}

// ReadRecord is DecodeRecord for a stream.
func ReadRecord(r io.Reader) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading record")
	}
	return DecodeRecord(data)
}

// heightOf returns the record's "height", or 0 when it has no usable one.
func heightOf(record any) int64 {
	m, ok := record.(map[string]any)
	if !ok {
		return 0
	}
	switch h := m["height"].(type) {
	case json.Number:
		if n, err := h.Int64(); err == nil {
			return n
		}
	case float64:
		if h == math.Trunc(h) && math.Abs(h) < math.MaxInt64 {
			return int64(h)
		}
	case int:
		return int64(h)
	case int64:
		return h
	case uint64:
		if h <= math.MaxInt64 {
			return int64(h)
		}
	case string:
		if n, err := strconv.ParseInt(h, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// serializeValue renders an offending value for error messages.
func serializeValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
