package remote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"slices"
	"strings"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/sync/singleflight"

	protoerrors "github.com/wagiedev/agent-protocol-go/internal/errors"
	mcpadapter "github.com/wagiedev/agent-protocol-go/internal/mcp"
	"github.com/wagiedev/agent-protocol-go/internal/message"
	"github.com/wagiedev/agent-protocol-go/internal/protocol"
	"github.com/wagiedev/agent-protocol-go/internal/server"
)

// Compile-time verification that Forwarder implements protocol.ServerTransport.
var _ protocol.ServerTransport = (*Forwarder)(nil)

// ErrClosed indicates the Forwarder was closed.
var ErrClosed = errors.New("forwarder closed")

// Dialer creates the MCP transport used to reach a server.
type Dialer func(ctx context.Context, desc server.Descriptor, httpClient *http.Client) (mcp.Transport, error)

// Option configures a Forwarder.
type Option func(*Forwarder)

// WithDialer replaces the endpoint-based transport selection.
func WithDialer(dial Dialer) Option {
	return func(f *Forwarder) {
		f.dial = dial
	}
}

// WithHTTPClient sets the base HTTP client for HTTP and SSE endpoints.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Forwarder) {
		f.httpClient = client
	}
}

// WithClientInfo sets the implementation name and version sent during initialization.
func WithClientInfo(name, version string) Option {
	return func(f *Forwarder) {
		f.clientName = name
		f.clientVersion = version
	}
}

type session struct {
	endpoint string
	cs       *mcp.ClientSession
}

// Forwarder sends requests to external MCP servers.
type Forwarder struct {
	log           *slog.Logger
	dial          Dialer
	httpClient    *http.Client
	clientName    string
	clientVersion string
	client        *mcp.Client

	group singleflight.Group

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

// NewForwarder creates a Forwarder.
func NewForwarder(log *slog.Logger, opts ...Option) *Forwarder {
	f := &Forwarder{
		log:           log.With("component", "remote"),
		dial:          DialEndpoint,
		httpClient:    http.DefaultClient,
		clientName:    "agentproto",
		clientVersion: "dev",
		sessions:      make(map[string]*session, 4),
	}

	for _, opt := range opts {
		opt(f)
	}

	f.client = mcp.NewClient(&mcp.Implementation{Name: f.clientName, Version: f.clientVersion}, nil)

	return f
}

// DialEndpoint selects a transport from the descriptor's endpoint.
func DialEndpoint(ctx context.Context, desc server.Descriptor, httpClient *http.Client) (mcp.Transport, error) {
	cfg, err := mcpadapter.ParseEndpoint(desc.Endpoint)
	if err != nil {
		return nil, err
	}

	switch cfg.Type {
	case mcpadapter.ServerTypeStdio:
		//nolint:gosec // G204: the command comes from the operator's server registry
		cmd := exec.Command(cfg.Command, cfg.Args...)

		return &mcp.CommandTransport{Command: cmd}, nil
	case mcpadapter.ServerTypeSSE, mcpadapter.ServerTypeHTTP:
		client, err := AuthenticatedClient(ctx, httpClient, desc)
		if err != nil {
			return nil, err
		}

		if cfg.Type == mcpadapter.ServerTypeSSE {
			return &mcp.SSEClientTransport{Endpoint: cfg.URL, HTTPClient: client}, nil
		}

		return &mcp.StreamableClientTransport{Endpoint: cfg.URL, HTTPClient: client}, nil
	default:
		return nil, fmt.Errorf("unsupported server type %q", cfg.Type)
	}
}

// Forward sends the request's pending tool call to the server described by desc.
//
// A request without a pending tool call is answered with an invalid_request
// ERROR envelope. Tool failures reported by the server become RESPONSE
// content prefixed with "Error: ". Transport failures are returned as errors.
func (f *Forwarder) Forward(ctx context.Context, desc server.Descriptor, req *message.Request) (message.Envelope, error) {
	call, ok := req.PendingToolCall()
	if !ok {
		return message.NewError(req.ID, protoerrors.CodeInvalidRequest,
			fmt.Sprintf("%s: server %q only accepts tool calls", protoerrors.ErrInvalidRequest, desc.Name)), nil
	}

	args, err := call.Arguments.Map()
	if err != nil {
		return message.NewError(req.ID, protoerrors.CodeInvalidRequest, err.Error()), nil
	}

	cs, err := f.session(ctx, desc)
	if err != nil {
		return nil, err
	}

	f.log.Debug("Calling remote tool", "server", desc.Name, "tool", call.Name, "request_id", req.ID)

	result, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: call.Name, Arguments: args})
	if err != nil {
		f.drop(desc.Name, cs)

		return nil, fmt.Errorf("call tool %s: %w", call.Name, err)
	}

	text := mcpadapter.ResultText(result)

	call.Status = message.ToolCallSuccess
	if result.IsError {
		call.Status = message.ToolCallError
		text = "Error: " + text
	}

	call.Result = text

	resp := message.NewResponse(req.ID, text)
	resp.ToolCalls = []message.ToolCall{call}

	return resp, nil
}

// Tools lists the tools a server advertises.
func (f *Forwarder) Tools(ctx context.Context, desc server.Descriptor) ([]message.Tool, error) {
	cs, err := f.session(ctx, desc)
	if err != nil {
		return nil, err
	}

	var tools []message.Tool

	for tool, err := range cs.Tools(ctx, nil) {
		if err != nil {
			f.drop(desc.Name, cs)

			return nil, fmt.Errorf("list tools: %w", err)
		}

		converted, err := mcpadapter.ToMessageTool(tool)
		if err != nil {
			return nil, err
		}

		tools = append(tools, converted)
	}

	return tools, nil
}

// Status reports the servers with an open session.
func (f *Forwarder) Status() mcpadapter.Status {
	f.mu.Lock()
	defer f.mu.Unlock()

	status := mcpadapter.Status{MCPServers: make([]mcpadapter.ServerStatus, 0, len(f.sessions))}
	for name := range f.sessions {
		status.MCPServers = append(status.MCPServers, mcpadapter.ServerStatus{Name: name, Status: mcpadapter.StatusConnected})
	}

	slices.SortFunc(status.MCPServers, func(a, b mcpadapter.ServerStatus) int {
		return strings.Compare(a.Name, b.Name)
	})

	return status
}

// Close closes every open session. Later calls fail with ErrClosed.
func (f *Forwarder) Close() error {
	f.mu.Lock()
	sessions := f.sessions
	f.sessions = make(map[string]*session)
	f.closed = true
	f.mu.Unlock()

	var errs []error

	for name, s := range sessions {
		if err := s.cs.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// session returns the open session for desc, dialing it if needed.
// Concurrent first dials for the same server share one connection attempt.
func (f *Forwarder) session(ctx context.Context, desc server.Descriptor) (*mcp.ClientSession, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()

		return nil, ErrClosed
	}

	existing, ok := f.sessions[desc.Name]
	f.mu.Unlock()

	if ok && existing.endpoint == desc.Endpoint {
		return existing.cs, nil
	}

	if ok {
		f.drop(desc.Name, existing.cs)
	}

	v, err, _ := f.group.Do(desc.Name, func() (any, error) {
		f.mu.Lock()
		if s, ok := f.sessions[desc.Name]; ok && s.endpoint == desc.Endpoint {
			f.mu.Unlock()

			return s.cs, nil
		}
		f.mu.Unlock()

		return f.connect(ctx, desc)
	})
	if err != nil {
		return nil, err
	}

	cs, ok := v.(*mcp.ClientSession)
	if !ok {
		return nil, fmt.Errorf("unexpected session type %T", v)
	}

	return cs, nil
}

func (f *Forwarder) connect(ctx context.Context, desc server.Descriptor) (*mcp.ClientSession, error) {
	f.log.Debug("Dialing server", "server", desc.Name, "endpoint", desc.Endpoint)

	transport, err := f.dial(ctx, desc, f.httpClient)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", desc.Name, err)
	}

	cs, err := f.client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", desc.Name, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		_ = cs.Close()

		return nil, ErrClosed
	}

	f.sessions[desc.Name] = &session{endpoint: desc.Endpoint, cs: cs}

	f.log.Info("Connected to server", "server", desc.Name)

	return cs, nil
}

// drop forgets and closes cs if it is still the session for name.
func (f *Forwarder) drop(name string, cs *mcp.ClientSession) {
	f.mu.Lock()

	s, ok := f.sessions[name]
	if ok && s.cs == cs {
		delete(f.sessions, name)
	}

	f.mu.Unlock()

	if ok && s.cs == cs {
		f.log.Debug("Dropping server session", "server", name)

		_ = cs.Close()
	}
}
