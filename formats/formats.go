// Package formats provides the string formats ledger schemas use for
// identifiers, keys and timestamps.
//
// Every format accepts values that are not strings, so that it composes with
// "type" instead of duplicating it.
package formats

import (
	"time"

	"github.com/reoring/ledgerskema/jsonschema"
)

// Registrar is anything formats can be added to, such as a
// *ledgerskema.Validator or a *jsonschema.Engine.
type Registrar interface {
	AddFormat(name string, f jsonschema.Format)
}

// Register adds every format in this package to r.
func Register(r Registrar) {
	for name, f := range All() {
		r.AddFormat(name, f)
	}
}

// All returns the formats by name.
func All() map[string]jsonschema.Format {
	return map[string]jsonschema.Format{
		"hex":       Hex,
		"id":        ID,
		"publicKey": PublicKey,
		"rfc3339":   RFC3339,
	}
}

// Hex accepts non-empty strings of hexadecimal digits in either case.
func Hex(v any) bool {
	s, ok := v.(string)
	if !ok {
		return true
	}
	return s != "" && isHex(s)
}

// ID accepts 64 lowercase hexadecimal digits: a block or transaction id.
func ID(v any) bool {
	s, ok := v.(string)
	if !ok {
		return true
	}
	return len(s) == 64 && isLowerHex(s)
}

// PublicKey accepts a compressed secp256k1 public key: 66 lowercase hex
// digits starting with 02 or 03.
func PublicKey(v any) bool {
	s, ok := v.(string)
	if !ok {
		return true
	}
	if len(s) != 66 || !isLowerHex(s) {
		return false
	}
	return s[:2] == "02" || s[:2] == "03"
}

// RFC3339 accepts RFC 3339 timestamps with optional fractional seconds.
func RFC3339(v any) bool {
	s, ok := v.(string)
	if !ok {
		return true
	}
	if _, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return false
		}
	}
	return true
}
