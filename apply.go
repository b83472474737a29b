package ledgerskema

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/reoring/ledgerskema/internal/registry"
)

// ApplySchema validates a block record and returns its canonical form.
//
// The record is accepted when it passes the strict pass, when it passes the
// tolerant pass, or when every violation the tolerant pass reports belongs to
// a block or transaction whose identifier the exception oracle exempts. The
// first violation that is not exempted is returned as a
// *SchemaViolationError. A record the engine cannot evaluate yields an error
// wrapping ErrEngineFailure and is never accepted.
func (v *Validator) ApplySchema(record any) (any, error) {
	strict, value := check(v.engine, registry.BlockKey, record)
	if strict.Valid() {
		v.metrics.observeRecord(OutcomeAccepted)
		return value, nil
	}
	if strict.Err != nil {
		v.logger.Warn("strict block validation failed inside the schema engine",
			zap.Int64("height", heightOf(record)), zap.Error(strict.Err))
	}

	tolerant, value := v.validateException(registry.BlockKey, record)
	if tolerant.Err != nil {
		v.metrics.observeRecord(OutcomeError)
		return nil, errors.Wrapf(ErrEngineFailure, "block at height %d: %s", heightOf(record), tolerant.Summary)
	}
	if len(tolerant.Errors) == 0 {
		v.metrics.observeRecord(OutcomeAccepted)
		return value, nil
	}

	height := heightOf(record)
	for _, verr := range tolerant.Errors {
		scope := ScopeOf(verr.Path)
		id, ok := scope.identifier(record)
		if ok && v.oracle.IsException(id) {
			v.logger.Debug("schema violation exempted",
				zap.Int64("height", height),
				zap.Stringer("scope", scope),
				zap.String("id", id),
				zap.String("path", verr.Path.String()),
				zap.String("message", verr.Message))
			v.metrics.observeExempted(scope)
			continue
		}
		v.metrics.observeRecord(OutcomeRejected)
		return nil, &SchemaViolationError{
			Height:  height,
			Scope:   scope,
			ID:      id,
			Path:    verr.Path,
			Message: verr.Message,
			Value:   serializeValue(verr.Value),
		}
	}
	v.metrics.observeRecord(OutcomeTolerated)
	return value, nil
}
