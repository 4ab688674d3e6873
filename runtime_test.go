package agentproto

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wagiedev/agent-protocol-go/internal/message"
	"github.com/wagiedev/agent-protocol-go/internal/server"
)

// stubTransport answers every forwarded request with a fixed response.
type stubTransport struct {
	forwarded []string
}

func (s *stubTransport) Forward(_ context.Context, desc server.Descriptor, req *message.Request) (message.Envelope, error) {
	s.forwarded = append(s.forwarded, desc.Name)

	return message.NewResponse(req.ID, "remote:"+desc.Name), nil
}

// stubExecutor reports one progress line and finishes.
type stubExecutor struct{}

func (stubExecutor) Execute(_ context.Context, instruction string, opts ExecuteOptions) (ExecuteResult, error) {
	opts.OnProgress("working on " + instruction)

	return ExecuteResult{Message: "done"}, nil
}

func newTestRuntime(t *testing.T, opts ...Option) *Runtime {
	t.Helper()

	base := []Option{WithWorkspaceRoot(t.TempDir()), WithExecutor(stubExecutor{})}

	rt, err := New(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, rt.Close()) })

	return rt
}

func requireResponse(t *testing.T, env Envelope) *Response {
	t.Helper()

	resp, ok := env.(*Response)
	require.True(t, ok, "expected *Response, got %T", env)

	return resp
}

func TestRuntimeFileRoundTrip(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t)

	write := requireResponse(t, rt.Dispatch(ctx, NewToolCallRequest("file_write", map[string]any{
		"filePath": "a.txt",
		"content":  "hi",
		"append":   false,
	})))
	require.False(t, strings.HasPrefix(write.Content, "Error:"), write.Content)

	read := requireResponse(t, rt.Dispatch(ctx, NewToolCallRequest("file_read", map[string]any{"filePath": "a.txt"})))
	require.Equal(t, "hi", read.Content)
}

func TestRuntimeListDirectoryMissingArgument(t *testing.T) {
	rt := newTestRuntime(t)

	resp := requireResponse(t, rt.Dispatch(context.Background(), NewToolCallRequest("list_directory", map[string]any{})))
	require.True(t, strings.HasPrefix(resp.Content, "Error:"))
}

func TestRuntimeStreamExecute(t *testing.T) {
	rt := newTestRuntime(t)

	var events []Envelope
	for env := range rt.Stream(context.Background(), NewExecuteRequest("build")) {
		events = append(events, env)
	}

	require.Len(t, events, 3)
	require.IsType(t, &SystemMessage{}, events[0])
	require.Equal(t, "working on build", events[1].(*StreamMessage).Content)

	final := events[2].(*StreamMessage)
	require.True(t, final.IsComplete)
	require.Equal(t, "done", final.Content)
	require.Empty(t, rt.ActiveOperations())
}

func TestRuntimeStatusAndCancel(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t)

	status := requireResponse(t, rt.Dispatch(ctx, NewAgentRequest(ActionStatus, "")))

	var report StatusReport
	require.NoError(t, json.Unmarshal([]byte(status.Content), &report))
	require.Equal(t, 0, report.Count)

	cancel := requireResponse(t, rt.Dispatch(ctx, NewAgentRequest(ActionCancel, "nope")))
	require.Equal(t, "no active operation found with ID nope", cancel.Content)
}

func TestRuntimeServerRouting(t *testing.T) {
	ctx := context.Background()
	transport := &stubTransport{}
	rt := newTestRuntime(t, WithTransport(transport))

	require.NoError(t, rt.Registry().Upsert(ctx, ServerDescriptor{
		Name:     "search",
		Endpoint: "https://search.example.com/mcp",
		IsActive: true,
	}))

	req := NewToolCallRequest("file_read", map[string]any{"filePath": "a.txt"})
	req.ServerName = "search"

	resp := requireResponse(t, rt.Dispatch(ctx, req))
	require.Equal(t, "remote:search", resp.Content)

	require.NoError(t, rt.Registry().SetActive(ctx, "search", false))

	errMsg, ok := rt.Dispatch(ctx, req).(*ErrorMessage)
	require.True(t, ok)
	require.Equal(t, CodeRoutingError, errMsg.Error.Code)
	require.Equal(t, []string{"search"}, transport.forwarded)

	_, err := rt.RemoteTools(ctx, "search")
	require.ErrorIs(t, err, ErrNoTransport)
}

func TestRuntimeServerFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "servers.json")

	rt := newTestRuntime(t, WithServerFile(path))
	require.NoError(t, rt.Registry().Upsert(ctx, ServerDescriptor{Name: "a", Endpoint: "stdio:a-server", IsActive: true}))

	reopened := newTestRuntime(t, WithServerFile(path))

	desc, found, err := reopened.Registry().Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, AuthNone, desc.AuthType)
}

func TestRuntimeConflictingStores(t *testing.T) {
	_, err := New(WithStore(server.NewMemoryStore()), WithServerFile("servers.json"))
	require.Error(t, err)
}

func TestRuntimeWithoutAgentTools(t *testing.T) {
	rt := newTestRuntime(t, WithoutAgentTools())

	require.Empty(t, rt.Tools())
	require.Empty(t, rt.Controller().Capabilities())

	errMsg, ok := rt.Dispatch(context.Background(), NewToolCallRequest("file_read", nil)).(*ErrorMessage)
	require.True(t, ok)
	require.Equal(t, CodeUnroutable, errMsg.Error.Code)
}

func TestRuntimeCustomHandler(t *testing.T) {
	rt := newTestRuntime(t)

	require.NoError(t, rt.RegisterHandler("agent:summarize", func(_ context.Context, req *Request) (*Response, error) {
		return message.NewResponse(req.ID, "summary"), nil
	}))
	require.Error(t, rt.RegisterHandler("summarize", nil))

	resp := requireResponse(t, rt.Dispatch(context.Background(), NewAgentRequest("summarize", "")))
	require.Equal(t, "summary", resp.Content)
}

func TestRuntimeCustomTool(t *testing.T) {
	ctx := context.Background()
	rt := newTestRuntime(t)

	rt.RegisterTool(NewTool("add", "Adds numbers", map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}, func(_ context.Context, input map[string]any) (map[string]any, error) {
		a, _ := input["a"].(float64)
		b, _ := input["b"].(float64)

		return map[string]any{"sum": a + b}, nil
	}))

	rt.RegisterTool(NewTool("file_read", "Shadowed read", nil, func(_ context.Context, _ map[string]any) (map[string]any, error) {
		return nil, errors.New("read disabled")
	}))

	names := make([]string, 0)
	for _, tool := range rt.Tools() {
		names = append(names, tool.Name)
	}

	require.Equal(t, []string{"file_write", "run_command", "list_directory", "add", "file_read"}, names)

	sum := requireResponse(t, rt.Dispatch(ctx, NewToolCallRequest("add", map[string]any{"a": 2.0, "b": 3.0})))
	require.JSONEq(t, `{"sum":5}`, sum.Content)
	require.Equal(t, ToolCallSuccess, sum.ToolCalls[0].Status)

	read := requireResponse(t, rt.Dispatch(ctx, NewToolCallRequest("file_read", map[string]any{"filePath": "x"})))
	require.Equal(t, "Error: read disabled", read.Content)
	require.Equal(t, ToolCallError, read.ToolCalls[0].Status)
}

func TestRuntimeCloseIsIdempotent(t *testing.T) {
	rt, err := New(WithWorkspaceRoot(t.TempDir()))
	require.NoError(t, err)

	require.NoError(t, rt.Close())
	require.NoError(t, rt.Close())
}
