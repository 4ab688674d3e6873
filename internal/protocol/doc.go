// Package protocol implements request routing for the agent protocol runtime.
//
// The Controller turns a Request into exactly one terminal envelope by routing
// it to one of:
//   - a named external server, when Request.ServerName is set and resolves to
//     an active descriptor; or
//   - a local handler registered under the request's capability key.
//
// Routing never falls back from a server route to a local route and never
// retries. Routing failures become ERROR envelopes with a routing code;
// handler failures become ERROR envelopes with a handler code naming the
// failing capability.
//
// Example usage:
//
//	registry := server.NewRegistry(log, server.NewMemoryStore())
//	controller := protocol.NewController(log, registry, forwarder)
//
//	controller.RegisterLocalHandler(capability.Tool("echo"), echoHandler)
//
//	env := controller.Dispatch(ctx, req)
//
//	// Or observe progress deltas emitted by the handler
//	for env := range controller.Stream(ctx, req) {
//	    ...
//	}
package protocol
