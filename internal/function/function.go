// Package function provides host functions: Go functions callable from
// stylesheets by name.
package function

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wagiedev/sass-embedded-go/internal/message"
)

// HostFunction is a function implemented by the host and exposed to the
// compiler under its signature.
type HostFunction interface {
	// Name is the function's name, the part of the signature before "(".
	Name() string

	// Signature is the Sass declaration, e.g. "double($n)".
	Signature() string

	// Call runs the function. A nil result is reported to the compiler as
	// an error.
	Call(ctx context.Context, args []message.Value) (message.Value, error)
}

// Handler is the body of a host function.
type Handler func(ctx context.Context, args []message.Value) (message.Value, error)

// Func is a HostFunction built from a signature and a Handler.
type Func struct {
	name      string
	signature string
	handler   Handler
}

// Compile-time verification that Func implements HostFunction.
var _ HostFunction = (*Func)(nil)

// New creates a host function. The name is taken from the signature.
func New(signature string, handler Handler) (*Func, error) {
	name, err := NameOf(signature)
	if err != nil {
		return nil, err
	}

	if handler == nil {
		return nil, errors.New("host function " + name + " has no handler")
	}

	return &Func{name: name, signature: strings.TrimSpace(signature), handler: handler}, nil
}

// MustNew is like New but panics on an invalid signature.
func MustNew(signature string, handler Handler) *Func {
	f, err := New(signature, handler)
	if err != nil {
		panic(err)
	}

	return f
}

// NameOf extracts the function name from a signature such as "foo($a, $b: 1)".
func NameOf(signature string) (string, error) {
	name, rest, ok := strings.Cut(strings.TrimSpace(signature), "(")
	name = strings.TrimSpace(name)

	if !ok || name == "" || !strings.HasSuffix(strings.TrimSpace(rest), ")") {
		return "", fmt.Errorf("invalid function signature %q", signature)
	}

	return name, nil
}

// Name implements HostFunction.
func (f *Func) Name() string { return f.name }

// Signature implements HostFunction.
func (f *Func) Signature() string { return f.signature }

// Call implements HostFunction.
func (f *Func) Call(ctx context.Context, args []message.Value) (message.Value, error) {
	return f.handler(ctx, args)
}
