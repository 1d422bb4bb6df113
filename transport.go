package sass

import "github.com/wagiedev/sass-embedded-go/internal/config"

// Transport defines the interface for compiler communication.
// Implement this to provide custom transports for testing, mocking,
// or alternative communication methods (e.g., a compiler behind a socket).
//
// The default implementation is ProcessTransport which spawns a subprocess.
// Custom transports can be injected with WithTransport.
type Transport = config.Transport
