package ledgerskema

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrSchemaViolation matches every *SchemaViolationError via errors.Is.
	ErrSchemaViolation = errors.New("ledgerskema: schema violation")
	// ErrEngineFailure marks a validation the schema engine could not
	// evaluate (unresolvable $ref, malformed schema, unsupported value).
	ErrEngineFailure = errors.New("ledgerskema: schema engine failure")
)

// SchemaViolationError is the fatal outcome of ApplySchema: a violation whose
// scope is not covered by the exception oracle.
type SchemaViolationError struct {
	Height  int64  // Block height, 0 when the record carries none.
	Scope   Scope  // Whole block or a single transaction.
	ID      string // Identifier of the scope, empty when it has none.
	Path    Path   // Location of the violation inside the block.
	Message string // Engine message.
	Value   string // Offending value serialized as JSON.
}

func (e *SchemaViolationError) Error() string {
	at := ""
	if len(e.Path) > 0 {
		at = " at " + e.Path.String()
	}
	return fmt.Sprintf("invalid block at height %d: data%s %s: %s", e.Height, at, e.Message, e.Value)
}

func (e *SchemaViolationError) Is(target error) bool { return target == ErrSchemaViolation }
