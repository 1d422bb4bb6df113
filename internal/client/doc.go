// Package client implements the Compiler that owns a compiler connection.
//
// A Compiler ties together the pieces a caller should not assemble by hand:
//   - locating and starting the compiler process (or an injected transport)
//   - the protocol session and its callback registries
//   - the metrics collector
//   - per-call importers for string and URL input
//
// The exchange itself, including callback dispatch, lives in the protocol
// package.
package client
