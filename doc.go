// Package ledgerskema validates ledger block records against a block schema
// and a dynamic set of transaction schemas.
//
// It provides:
//
// - A registry of transaction types, each published as base, signed and strict variants
// - A composite "transactions" schema rebuilt on every registration change
// - ApplySchema: strict validation with a tolerant fallback that exempts known blocks and transactions
// - Structured violations (path, message, offending value) and typed errors
//
// Design policy:
// - Keep only public APIs in the root package; put the registry under internal/.
// - The schema engine lives in jsonschema/, reusable formats and keywords in formats/ and keywords/.
// - The CLI lives under cmd/ledgerskema and reads its configuration through internal/config.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	v, err := ledgerskema.New(exceptions.New("legacy-tx"))
//	def, err := ledgerskema.NewTransactionSchema("transfer", transferSchema)
//	err = v.ExtendTransaction(def, false)
//
//	record, err := ledgerskema.DecodeRecord(data)
//	canonical, err := v.ApplySchema(record)
package ledgerskema
