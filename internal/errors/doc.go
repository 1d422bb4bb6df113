// Package errors defines error types for the Sass embedded host.
//
// The types cover each failure class of a compiler session: locating and
// starting the compiler, transport faults, protocol errors reported by the
// compiler, integrity faults detected by the host, and compilation failures.
// All error types support unwrapping and can be checked using errors.Is,
// errors.As, and errors.AsType.
package errors
