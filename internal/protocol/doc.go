// Package protocol implements the host side of the embedded Sass protocol.
//
// A Session owns a Transport to one compiler process and runs a blocking
// exchange for each compile or version request. While it waits for the
// terminal response, the compiler may send any number of log events and
// callback requests; log events go to a logging.Handler and callback
// requests are answered by the Dispatcher from the session's Registries.
//
// Only one exchange runs at a time per Session. A transport failure, a
// compiler protocol error, or a desynchronized response id faults the
// session permanently; compilation failures and callback handler errors do
// not.
//
// Example usage:
//
//	transport := subprocess.NewProcessTransport(log, options)
//	if err := transport.Start(ctx); err != nil {
//		return err
//	}
//
//	session := protocol.NewSession(log, transport, options, protocol.NewRegistries(), nil)
//	css, err := session.Compile(ctx, &message.StringInput{Source: "a { b: c }"}, nil)
package protocol
