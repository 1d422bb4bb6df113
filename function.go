package sass

import (
	"github.com/wagiedev/sass-embedded-go/internal/function"
	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// HostFunction is a function implemented in Go and callable from stylesheets.
type HostFunction = function.HostFunction

// FunctionHandler implements a HostFunction.
type FunctionHandler = function.Handler

// NewFunction creates a HostFunction from a Sass signature such as
// "double($n)" and a handler.
//
//	double := sass.MustNewFunction("double($n)", func(ctx context.Context, args []sass.Value) (sass.Value, error) {
//	    n, err := sass.Arg[*sass.Number](args, 0)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return sass.Num(n.Value*2, n.Numerators...), nil
//	})
func NewFunction(signature string, handler FunctionHandler) (HostFunction, error) {
	return function.New(signature, handler)
}

// MustNewFunction is like NewFunction but panics on an invalid signature.
func MustNewFunction(signature string, handler FunctionHandler) HostFunction {
	return function.MustNew(signature, handler)
}

// Singleton values.
var (
	True  = function.True
	False = function.False
	Null  = function.Null
)

// Bool converts b to a Sass boolean.
func Bool(b bool) Value {
	return function.Bool(b)
}

// Quoted returns a quoted Sass string.
func Quoted(s string) *String {
	return function.Quoted(s)
}

// Unquoted returns an unquoted Sass string.
func Unquoted(s string) *String {
	return function.Unquoted(s)
}

// Num returns a Sass number with an optional unit.
func Num(v float64, unit ...string) *Number {
	return function.Num(v, unit...)
}

// Arg returns argument i converted to T.
func Arg[T message.Value](args []Value, i int) (T, error) {
	return function.Arg[T](args, i)
}
