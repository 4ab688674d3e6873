// Package remote forwards requests to external MCP servers.
//
// A Forwarder implements protocol.ServerTransport on top of the official MCP
// Go SDK. It keeps one client session per server, dialed lazily on first
// use, and maps a request's pending tool call to an MCP tools/call. Failed
// sessions are dropped so the next request redials; no request is retried.
//
// Example usage:
//
//	forwarder := remote.NewForwarder(log)
//	defer forwarder.Close()
//
//	controller := protocol.NewController(log, registry, forwarder)
package remote
