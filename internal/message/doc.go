// Package message defines the embedded Sass protocol messages exchanged with
// the compiler process and their protobuf wire encoding.
//
// Messages sent to the compiler implement InboundMessage; messages received
// from it implement OutboundMessage. Both are sealed sum types and callers
// dispatch with a type switch:
//
//	switch m := msg.(type) {
//	case *message.CompileResponse:
//	case *message.LogEvent:
//	case *message.FunctionCallRequest:
//	}
//
// The codec is written directly against protowire. Unknown fields are
// skipped, so newer compilers that add fields stay readable.
package message
