package ledgerskema

// ExceptionOracle answers whether a block or transaction identifier is a
// pre-approved historical exception whose schema violations are tolerated.
type ExceptionOracle interface {
	IsException(id string) bool
}

// ExceptionFunc adapts a function to ExceptionOracle.
type ExceptionFunc func(id string) bool

func (f ExceptionFunc) IsException(id string) bool { return f(id) }

// NoExceptions is an oracle that exempts nothing.
var NoExceptions ExceptionOracle = ExceptionFunc(func(string) bool { return false })
