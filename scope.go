package ledgerskema

import (
	"strconv"

	"github.com/reoring/ledgerskema/internal/registry"
	"github.com/reoring/ledgerskema/jsonschema"
)

type (
	// Path locates a value inside a record.
	Path = jsonschema.Path
	// ValidationError is a single structured schema violation.
	ValidationError = jsonschema.Error
)

// Scope names what a violation concerns: the block itself or one of its
// transactions.
type Scope struct {
	Transaction bool
	Index       int // Transaction index, meaningful when Transaction is set.
}

// BlockScope is the scope of violations outside the transaction list entries.
var BlockScope = Scope{}

func (s Scope) String() string {
	if s.Transaction {
		return "transaction[" + strconv.Itoa(s.Index) + "]"
	}
	return "block"
}

// ScopeOf classifies a violation path. Only a path that starts with the
// block's "transactions" field followed by an array index belongs to a
// transaction; everything else, including the list as a whole, belongs to
// the block.
func ScopeOf(p Path) Scope {
	if len(p) >= 2 && !p[0].IsIndex && p[0].Field == registry.TransactionsKey && p[1].IsIndex {
		return Scope{Transaction: true, Index: p[1].Index}
	}
	return BlockScope
}

// identifier returns the id the exception oracle is asked about for s. A
// transaction without a string id has none and can never be exempted.
func (s Scope) identifier(record any) (string, bool) {
	var owner any = record
	if s.Transaction {
		owner, _ = jsonschema.Path{jsonschema.Field(registry.TransactionsKey), jsonschema.Index(s.Index)}.Lookup(record)
	}
	m, ok := owner.(map[string]any)
	if !ok {
		return "", false
	}
	id, ok := m["id"].(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
