//go:build integration

package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	agentproto "github.com/wagiedev/agent-protocol-go"
)

const testAPIKey = "integration-key"

type echoInput struct {
	Message string `json:"message" jsonschema:"message to echo"`
}

type echoOutput struct {
	Echo string `json:"echo"`
}

// newEchoServer starts a streamable HTTP MCP server that requires testAPIKey.
func newEchoServer(t *testing.T) *httptest.Server {
	t.Helper()

	srv := mcp.NewServer(&mcp.Implementation{Name: "echo-server", Version: "1.0.0"}, nil)
	mcp.AddTool(srv, &mcp.Tool{Name: "echo", Description: "Echoes the input message back"},
		func(_ context.Context, _ *mcp.CallToolRequest, in echoInput) (*mcp.CallToolResult, echoOutput, error) {
			return nil, echoOutput{Echo: in.Message}, nil
		},
	)

	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return srv }, nil)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != testAPIKey {
			http.Error(w, "unauthorized", http.StatusUnauthorized)

			return
		}

		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	return ts
}

func newRuntime(t *testing.T, servers ...agentproto.ServerDescriptor) *agentproto.Runtime {
	t.Helper()

	rt, err := agentproto.New(
		agentproto.WithWorkspaceRoot(t.TempDir()),
		agentproto.WithStore(agentproto.NewMemoryStore(servers...)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rt.Close() })

	return rt
}

func echoServer(endpoint, key string) agentproto.ServerDescriptor {
	return agentproto.ServerDescriptor{
		Name:         "echo",
		Endpoint:     endpoint,
		Capabilities: []string{"echo"},
		AuthType:     agentproto.AuthAPIKey,
		AuthDetails:  &agentproto.AuthDetails{APIKey: key},
		IsActive:     true,
	}
}
