package jsonschema

import "strings"

// Error is a single schema violation.
type Error struct {
	Path          Path   // Location inside the instance.
	Pointer       string // The same location as a JSON Pointer.
	SchemaPointer string // Keyword location inside the schema.
	Keyword       string // Failing keyword (for example: minimum, required).
	Message       string
	// Value is the offending instance value. It is only populated by engines
	// running with Options.Verbose.
	Value any
}

func (e Error) Error() string {
	return "data" + e.Path.String() + " " + e.Message
}

// ErrorsText joins errs into one line in the form
// "data.transactions[0].amount must be >= 0, data ...".
func ErrorsText(errs []Error) string {
	if len(errs) == 0 {
		return "no errors"
	}
	b := &strings.Builder{}
	for i, e := range errs {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(e.Error())
	}
	return b.String()
}
