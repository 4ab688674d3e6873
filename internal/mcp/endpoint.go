package mcp

import (
	"fmt"
	"net/url"
	"strings"
)

// ServerType represents how an MCP server is reached.
type ServerType string

const (
	// ServerTypeStdio launches the server as a subprocess speaking over stdio.
	ServerTypeStdio ServerType = "stdio"
	// ServerTypeSSE uses the legacy HTTP+SSE transport.
	ServerTypeSSE ServerType = "sse"
	// ServerTypeHTTP uses the streamable HTTP transport.
	ServerTypeHTTP ServerType = "http"
)

// stdioPrefix marks endpoints that name a command rather than a URL.
const stdioPrefix = "stdio:"

// EndpointConfig is a parsed server endpoint.
type EndpointConfig struct {
	Type ServerType

	// Command and Args apply to ServerTypeStdio.
	Command string
	Args    []string

	// URL applies to ServerTypeSSE and ServerTypeHTTP.
	URL string
}

// ParseEndpoint converts a descriptor endpoint into a transport configuration.
//
// Supported forms:
//   - "stdio:<command> [args...]" launches a subprocess
//   - "http(s)://host/.../sse" connects over SSE
//   - any other "http(s)://" URL connects over streamable HTTP
func ParseEndpoint(endpoint string) (EndpointConfig, error) {
	if rest, ok := strings.CutPrefix(endpoint, stdioPrefix); ok {
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return EndpointConfig{}, fmt.Errorf("stdio endpoint %q has no command", endpoint)
		}

		return EndpointConfig{
			Type:    ServerTypeStdio,
			Command: fields[0],
			Args:    fields[1:],
		}, nil
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return EndpointConfig{}, fmt.Errorf("parse endpoint: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return EndpointConfig{}, fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}

	if u.Host == "" {
		return EndpointConfig{}, fmt.Errorf("endpoint %q has no host", endpoint)
	}

	typ := ServerTypeHTTP
	if strings.HasSuffix(strings.TrimSuffix(u.Path, "/"), "/sse") {
		typ = ServerTypeSSE
	}

	return EndpointConfig{Type: typ, URL: endpoint}, nil
}
