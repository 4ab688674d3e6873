// Package mcp adapts the runtime to the Model Context Protocol.
//
// It converts between the runtime's message model and the official MCP SDK
// types, parses server endpoints into transport configurations, and builds
// a Bridge: an MCP server whose tools dispatch back into the protocol
// Controller, so the local tool catalog can be served to any MCP client.
package mcp
