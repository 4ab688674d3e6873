package mcp

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     EndpointConfig
		wantErr  bool
	}{
		{
			name:     "streamable http",
			endpoint: "https://tools.example.com/mcp",
			want:     EndpointConfig{Type: ServerTypeHTTP, URL: "https://tools.example.com/mcp"},
		},
		{
			name:     "sse suffix",
			endpoint: "http://localhost:8080/sse",
			want:     EndpointConfig{Type: ServerTypeSSE, URL: "http://localhost:8080/sse"},
		},
		{
			name:     "sse suffix with trailing slash",
			endpoint: "http://localhost:8080/v1/sse/",
			want:     EndpointConfig{Type: ServerTypeSSE, URL: "http://localhost:8080/v1/sse/"},
		},
		{
			name:     "stdio with args",
			endpoint: "stdio:npx -y @modelcontextprotocol/server-everything",
			want: EndpointConfig{
				Type:    ServerTypeStdio,
				Command: "npx",
				Args:    []string{"-y", "@modelcontextprotocol/server-everything"},
			},
		},
		{
			name:     "stdio without args",
			endpoint: "stdio:my-server",
			want:     EndpointConfig{Type: ServerTypeStdio, Command: "my-server", Args: []string{}},
		},
		{name: "empty stdio", endpoint: "stdio:  ", wantErr: true},
		{name: "unsupported scheme", endpoint: "ftp://example.com", wantErr: true},
		{name: "missing host", endpoint: "http:///mcp", wantErr: true},
		{name: "bare word", endpoint: "localhost", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEndpoint(tt.endpoint)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
