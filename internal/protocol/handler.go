package protocol

import (
	"context"

	"github.com/wagiedev/agent-protocol-go/internal/capability"
	"github.com/wagiedev/agent-protocol-go/internal/message"
	"github.com/wagiedev/agent-protocol-go/internal/server"
)

// Handler serves requests for one local capability.
//
// The Controller does not inspect handler internals. A returned error (or a
// panic) is wrapped into an ERROR envelope naming the capability. A nil
// response with a nil error is treated as an empty response. The returned
// response is not modified; the Controller replies with a copy carrying the
// request id, so handlers may return shared or cached responses.
type Handler func(ctx context.Context, req *message.Request) (*message.Response, error)

// ServerTransport forwards requests to external servers.
//
// Implementations return the server's reply mapped into the message model.
// Errors are reported to the caller as server-level handler failures.
type ServerTransport interface {
	Forward(ctx context.Context, desc server.Descriptor, req *message.Request) (message.Envelope, error)
}

// ServerResolver looks up server descriptors by name.
// *server.Registry satisfies this interface.
type ServerResolver interface {
	Get(ctx context.Context, name string) (server.Descriptor, bool, error)
}

// Registrar accepts local handler registrations.
// *Controller satisfies this interface.
type Registrar interface {
	RegisterLocalHandler(key capability.Key, handler Handler)
}

// Compile-time verification that the controller and registry satisfy the interfaces.
var (
	_ Registrar      = (*Controller)(nil)
	_ ServerResolver = (*server.Registry)(nil)
)
