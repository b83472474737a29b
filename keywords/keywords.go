// Package keywords provides custom schema keywords for ledger amounts and
// payload sizes.
package keywords

import (
	"math/big"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/reoring/ledgerskema/jsonschema"
)

// Registrar is anything keywords can be added to.
type Registrar interface {
	AddKeyword(name string, kw jsonschema.Keyword) error
}

// Register adds "bignumber" and "maxBytes" to r.
func Register(r Registrar) error {
	if err := r.AddKeyword("bignumber", BigNumber); err != nil {
		return err
	}
	return r.AddKeyword("maxBytes", MaxBytes)
}

// BigNumber bounds an integer amount given as a number or a decimal string,
// without float rounding. The keyword value is {"minimum": n, "maximum": m},
// either bound optional.
//
//	"amount": {"bignumber": {"minimum": 1}}
var BigNumber = jsonschema.KeywordFunc(func(schemaValue, data any) error {
	bounds, ok := schemaValue.(map[string]any)
	if !ok {
		return errors.New("bignumber keyword value must be an object")
	}
	n, ok := toBigInt(data)
	if !ok {
		return errors.Errorf("must be an integer amount, got %v", data)
	}
	if raw, ok := bounds["minimum"]; ok {
		lo, ok := toBigInt(raw)
		if !ok {
			return errors.Errorf("bignumber minimum %v is not an integer", raw)
		}
		if n.Cmp(lo) < 0 {
			return errors.Errorf("must be >= %s", lo)
		}
	}
	if raw, ok := bounds["maximum"]; ok {
		hi, ok := toBigInt(raw)
		if !ok {
			return errors.Errorf("bignumber maximum %v is not an integer", raw)
		}
		if n.Cmp(hi) > 0 {
			return errors.Errorf("must be <= %s", hi)
		}
	}
	return nil
})

// MaxBytes limits the UTF-8 length of a string. Other types pass.
//
//	"vendorField": {"type": "string", "maxBytes": 255}
var MaxBytes = jsonschema.KeywordFunc(func(schemaValue, data any) error {
	s, ok := data.(string)
	if !ok {
		return nil
	}
	limit, ok := toBigInt(schemaValue)
	if !ok || !limit.IsInt64() {
		return errors.Errorf("maxBytes value %v is not an integer", schemaValue)
	}
	if int64(len(s)) > limit.Int64() {
		return errors.Errorf("must not be longer than %d bytes", limit.Int64())
	}
	return nil
})

func toBigInt(v any) (*big.Int, bool) {
	var s string
	switch t := v.(type) {
	case json.Number:
		s = t.String()
	case string:
		s = strings.TrimSpace(t)
	case float64:
		f := new(big.Float).SetFloat64(t)
		if !f.IsInt() {
			return nil, false
		}
		n, _ := f.Int(nil)
		return n, true
	case int:
		return big.NewInt(int64(t)), true
	case int64:
		return big.NewInt(t), true
	case uint64:
		return new(big.Int).SetUint64(t), true
	default:
		return nil, false
	}
	n, ok := new(big.Int).SetString(s, 10)
	return n, ok
}
