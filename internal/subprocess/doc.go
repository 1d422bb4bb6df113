// Package subprocess provides subprocess-based transport for the embedded
// Sass compiler.
//
// This package implements the Transport interface by spawning the compiler
// as a child process and exchanging length-prefixed protobuf messages over
// its stdin and stdout. It handles process lifecycle management, stderr
// buffering, and error handling.
package subprocess
