package function

import (
	"fmt"

	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// Singleton values.
var (
	True  message.Value = message.SingletonTrue
	False message.Value = message.SingletonFalse
	Null  message.Value = message.SingletonNull
)

// Bool converts b to a Sass boolean.
func Bool(b bool) message.Value {
	if b {
		return True
	}

	return False
}

// Quoted returns a quoted Sass string.
func Quoted(s string) *message.String {
	return &message.String{Text: s, Quoted: true}
}

// Unquoted returns an unquoted Sass string.
func Unquoted(s string) *message.String {
	return &message.String{Text: s}
}

// Num returns a Sass number with an optional numerator unit.
func Num(v float64, unit ...string) *message.Number {
	return &message.Number{Value: v, Numerators: unit}
}

// Arg returns argument i converted to T, or an error naming the expected
// type when the argument is missing or of another kind.
func Arg[T message.Value](args []message.Value, i int) (T, error) {
	var zero T

	if i < 0 || i >= len(args) {
		return zero, fmt.Errorf("missing argument %d (got %d)", i+1, len(args))
	}

	v, ok := args[i].(T)
	if !ok {
		return zero, fmt.Errorf("argument %d: expected %T, got %T", i+1, zero, args[i])
	}

	return v, nil
}
