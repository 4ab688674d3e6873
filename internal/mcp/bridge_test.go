package mcp

import (
	"context"
	"log/slog"
	"testing"

	mcpgo "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"

	"github.com/wagiedev/agent-protocol-go/internal/message"
)

func connectBridge(t *testing.T, srv *mcpgo.Server) *mcpgo.ClientSession {
	t.Helper()

	ctx := context.Background()
	clientTransport, serverTransport := mcpgo.NewInMemoryTransports()

	serverSession, err := srv.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcpgo.NewClient(&mcpgo.Implementation{Name: "test-client", Version: "0.0.1"}, nil)

	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })

	return session
}

func TestBridgeRoutesToolCalls(t *testing.T) {
	ctx := context.Background()

	var seen []*message.Request

	dispatch := func(_ context.Context, req *message.Request) message.Envelope {
		seen = append(seen, req)

		call, _ := req.PendingToolCall()
		args, _ := call.Arguments.Map()

		switch args["mode"] {
		case "fail":
			return message.NewResponse(req.ID, "Error: broken")
		case "route":
			return message.NewError(req.ID, "unroutable_request", "no handler")
		default:
			return message.NewResponse(req.ID, "echo "+call.Name)
		}
	}

	tools := []message.Tool{
		{Name: "echo", Description: "Echo", Parameters: simpleSchema(map[string]string{"mode": "string"})},
		{Name: "noop", Description: "No parameters"},
	}

	session := connectBridge(t, NewBridge(slog.Default(), "agentproto", "test", tools, dispatch))

	listed, err := session.ListTools(ctx, &mcpgo.ListToolsParams{})
	require.NoError(t, err)
	require.Len(t, listed.Tools, 2)

	result, err := session.CallTool(ctx, &mcpgo.CallToolParams{Name: "echo", Arguments: map[string]any{"mode": "ok"}})
	require.NoError(t, err)
	require.False(t, result.IsError)
	require.Equal(t, "echo echo", ResultText(result))

	require.Len(t, seen, 1)
	call, ok := seen[0].PendingToolCall()
	require.True(t, ok)
	require.Equal(t, "echo", call.Name)

	result, err = session.CallTool(ctx, &mcpgo.CallToolParams{Name: "echo", Arguments: map[string]any{"mode": "fail"}})
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Equal(t, "Error: broken", ResultText(result))

	result, err = session.CallTool(ctx, &mcpgo.CallToolParams{Name: "echo", Arguments: map[string]any{"mode": "route"}})
	require.NoError(t, err)
	require.True(t, result.IsError)
	require.Equal(t, "unroutable_request: no handler", ResultText(result))
}

func TestEnvelopeResult(t *testing.T) {
	stream := message.NewStreamComplete("id", "streamed")
	require.Equal(t, "streamed", ResultText(envelopeResult(stream)))

	require.True(t, envelopeResult(nil).IsError)
	require.True(t, envelopeResult(message.NewSystem("ping", nil)).IsError)
}
