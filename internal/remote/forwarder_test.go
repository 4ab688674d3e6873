package remote

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	protoerrors "github.com/wagiedev/agent-protocol-go/internal/errors"
	mcpadapter "github.com/wagiedev/agent-protocol-go/internal/mcp"
	"github.com/wagiedev/agent-protocol-go/internal/message"
	"github.com/wagiedev/agent-protocol-go/internal/server"
)

func newToolServer() *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "tool-server", Version: "1.0.0"}, nil)

	srv.AddTool(
		mcpadapter.NewTool("greet", "Greets someone", &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{"name": {Type: "string"}},
			Required:   []string{"name"},
		}),
		func(_ context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			args, err := mcpadapter.ParseArguments(req)
			if err != nil {
				return nil, err
			}

			name, _ := args["name"].(string)

			return mcpadapter.TextResult("hello " + name), nil
		},
	)

	srv.AddTool(
		mcpadapter.NewTool("explode", "Always fails", nil),
		func(_ context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return mcpadapter.ErrorResult("kaboom"), nil
		},
	)

	return srv
}

// inMemoryDialer connects every dial to a fresh session on srv.
type inMemoryDialer struct {
	srv   *mcp.Server
	dials atomic.Int32
	fail  atomic.Bool

	mu       sync.Mutex
	sessions []*mcp.ServerSession
}

func (d *inMemoryDialer) dial(ctx context.Context, _ server.Descriptor, _ *http.Client) (mcp.Transport, error) {
	d.dials.Add(1)

	if d.fail.Load() {
		return nil, errors.New("network unreachable")
	}

	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := d.srv.Connect(ctx, serverTransport, nil)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	d.sessions = append(d.sessions, ss)
	d.mu.Unlock()

	return clientTransport, nil
}

func (d *inMemoryDialer) closeServerSessions() {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, ss := range d.sessions {
		_ = ss.Close()
	}

	d.sessions = nil
}

func newTestForwarder(t *testing.T) (*Forwarder, *inMemoryDialer) {
	t.Helper()

	dialer := &inMemoryDialer{srv: newToolServer()}
	f := NewForwarder(slog.Default(), WithDialer(dialer.dial), WithClientInfo("test", "0.0.1"))

	t.Cleanup(func() {
		_ = f.Close()
		dialer.closeServerSessions()
	})

	return f, dialer
}

var testServer = server.Descriptor{
	Name:     "tools",
	Endpoint: "https://tools.example.com/mcp",
	AuthType: server.AuthNone,
	IsActive: true,
}

func toolCallRequest(name string, args map[string]any) *message.Request {
	return message.NewRequest("", message.ChatMessage{
		Role: message.RoleAssistant,
		ToolCalls: []message.ToolCall{{
			ID:        "call-1",
			Name:      name,
			Arguments: message.NewArguments(args),
		}},
	})
}

func TestForwarderCallsTool(t *testing.T) {
	f, dialer := newTestForwarder(t)
	req := toolCallRequest("greet", map[string]any{"name": "ada"})

	env, err := f.Forward(context.Background(), testServer, req)
	require.NoError(t, err)

	resp, ok := env.(*message.Response)
	require.True(t, ok, "expected *message.Response, got %T", env)
	require.Equal(t, req.ID, resp.ID)
	require.Equal(t, "hello ada", resp.Content)
	require.Len(t, resp.ToolCalls, 1)
	require.Equal(t, message.ToolCallSuccess, resp.ToolCalls[0].Status)

	_, err = f.Forward(context.Background(), testServer, toolCallRequest("greet", map[string]any{"name": "bob"}))
	require.NoError(t, err)
	require.Equal(t, int32(1), dialer.dials.Load(), "session should be reused")

	status := f.Status()
	require.Equal(t, []mcpadapter.ServerStatus{{Name: "tools", Status: mcpadapter.StatusConnected}}, status.MCPServers)
}

func TestForwarderToolErrorIsContent(t *testing.T) {
	f, _ := newTestForwarder(t)

	env, err := f.Forward(context.Background(), testServer, toolCallRequest("explode", nil))
	require.NoError(t, err)

	resp, ok := env.(*message.Response)
	require.True(t, ok)
	require.Equal(t, "Error: kaboom", resp.Content)
	require.Equal(t, message.ToolCallError, resp.ToolCalls[0].Status)
}

func TestForwarderRejectsNonToolRequests(t *testing.T) {
	f, dialer := newTestForwarder(t)

	env, err := f.Forward(context.Background(), testServer, message.NewRequest("", message.UserMessage("hi")))
	require.NoError(t, err)

	errMsg, ok := env.(*message.ErrorMessage)
	require.True(t, ok)
	require.Equal(t, protoerrors.CodeInvalidRequest, errMsg.Error.Code)
	require.Zero(t, dialer.dials.Load())
}

func TestForwarderDialFailureRedials(t *testing.T) {
	f, dialer := newTestForwarder(t)
	dialer.fail.Store(true)

	_, err := f.Forward(context.Background(), testServer, toolCallRequest("greet", nil))
	require.Error(t, err)
	require.Contains(t, err.Error(), "network unreachable")

	dialer.fail.Store(false)

	env, err := f.Forward(context.Background(), testServer, toolCallRequest("greet", map[string]any{"name": "x"}))
	require.NoError(t, err)
	require.Equal(t, "hello x", env.(*message.Response).Content)
	require.Equal(t, int32(2), dialer.dials.Load())
}

func TestForwarderConcurrentFirstDial(t *testing.T) {
	f, dialer := newTestForwarder(t)

	var wg sync.WaitGroup

	for range 10 {
		wg.Go(func() {
			_, err := f.Forward(context.Background(), testServer, toolCallRequest("greet", map[string]any{"name": "x"}))
			assert.NoError(t, err)
		})
	}

	wg.Wait()

	require.Equal(t, int32(1), dialer.dials.Load(), "concurrent first calls should share one dial")
	require.Len(t, f.Status().MCPServers, 1)
}

func TestForwarderEndpointChangeRedials(t *testing.T) {
	f, dialer := newTestForwarder(t)
	ctx := context.Background()

	_, err := f.Forward(ctx, testServer, toolCallRequest("greet", nil))
	require.NoError(t, err)

	moved := testServer
	moved.Endpoint = "https://moved.example.com/mcp"

	_, err = f.Forward(ctx, moved, toolCallRequest("greet", nil))
	require.NoError(t, err)
	require.Equal(t, int32(2), dialer.dials.Load())
}

func TestForwarderTools(t *testing.T) {
	f, _ := newTestForwarder(t)

	tools, err := f.Tools(context.Background(), testServer)
	require.NoError(t, err)

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}

	require.ElementsMatch(t, []string{"greet", "explode"}, names)
}

func TestForwarderClose(t *testing.T) {
	f, _ := newTestForwarder(t)

	_, err := f.Forward(context.Background(), testServer, toolCallRequest("greet", nil))
	require.NoError(t, err)

	require.NoError(t, f.Close())
	require.Empty(t, f.Status().MCPServers)

	_, err = f.Forward(context.Background(), testServer, toolCallRequest("greet", nil))
	require.ErrorIs(t, err, ErrClosed)
}

func TestDialEndpointSelectsTransport(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		endpoint string
		want     any
	}{
		{endpoint: "https://x.example.com/mcp", want: &mcp.StreamableClientTransport{}},
		{endpoint: "https://x.example.com/sse", want: &mcp.SSEClientTransport{}},
		{endpoint: "stdio:my-server --flag", want: &mcp.CommandTransport{}},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			desc := server.Descriptor{Name: "x", Endpoint: tt.endpoint, AuthType: server.AuthNone}

			transport, err := DialEndpoint(ctx, desc, http.DefaultClient)
			require.NoError(t, err)
			require.IsType(t, tt.want, transport)
		})
	}

	_, err := DialEndpoint(ctx, server.Descriptor{Name: "bad", Endpoint: "ftp://nope"}, nil)
	require.Error(t, err)
}
