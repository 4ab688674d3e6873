package agentproto

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"os"
	"slices"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/agent-protocol-go/internal/agent"
	"github.com/wagiedev/agent-protocol-go/internal/capability"
	protoerrors "github.com/wagiedev/agent-protocol-go/internal/errors"
	internalmcp "github.com/wagiedev/agent-protocol-go/internal/mcp"
	"github.com/wagiedev/agent-protocol-go/internal/message"
	"github.com/wagiedev/agent-protocol-go/internal/protocol"
	"github.com/wagiedev/agent-protocol-go/internal/remote"
	"github.com/wagiedev/agent-protocol-go/internal/server"
	"github.com/wagiedev/agent-protocol-go/internal/workspace"
)

const (
	defaultClientName    = "agentproto"
	defaultClientVersion = "0.1.0"
)

// Runtime bundles a server registry, a protocol controller, the built-in
// agent service and the MCP forwarder.
//
// A Runtime is safe for concurrent use. Call Close to cancel running agent
// operations and release server sessions.
type Runtime struct {
	options    *Options
	registry   *server.Registry
	controller *protocol.Controller
	service    *agent.Service
	forwarder  *remote.Forwarder

	toolsMu sync.RWMutex
	custom  []message.Tool

	closeOnce sync.Once
	closeErr  error
}

// New creates a Runtime.
//
// Without options the runtime keeps servers in memory, forwards server
// routes over MCP, and serves the built-in tools from the current directory.
func New(opts ...Option) (*Runtime, error) {
	options := applyOptions(opts)

	if err := options.Validate(); err != nil {
		return nil, err
	}

	if options.Logger == nil {
		options.Logger = NopLogger()
	}

	if options.ClientName == "" {
		options.ClientName = defaultClientName
	}

	if options.ClientVersion == "" {
		options.ClientVersion = defaultClientVersion
	}

	log := options.Logger

	store := options.Store

	switch {
	case options.ServerFile != "":
		store = server.NewFileStore(options.ServerFile)
	case store == nil:
		store = server.NewMemoryStore()
	}

	var registryOpts []server.Option
	if options.PriorityOrder != nil {
		registryOpts = append(registryOpts, server.WithPriorityOrder(options.PriorityOrder))
	}

	rt := &Runtime{
		options:  options,
		registry: server.NewRegistry(log, store, registryOpts...),
	}

	transport := options.Transport
	if transport == nil {
		rt.forwarder = remote.NewForwarder(log, remote.WithClientInfo(options.ClientName, options.ClientVersion))
		transport = rt.forwarder
	}

	rt.controller = protocol.NewController(log, rt.registry, transport)

	if !options.DisableAgentTools {
		service, err := newAgentService(options)
		if err != nil {
			return nil, err
		}

		service.Register(rt.controller)
		rt.service = service
	}

	log.Info("Runtime ready", "capabilities", len(rt.controller.Capabilities()))

	return rt, nil
}

// newAgentService builds the agent service, filling in local collaborators.
func newAgentService(options *Options) (*agent.Service, error) {
	ws := options.Workspace
	exec := options.Executor

	if ws == nil || exec == nil {
		root := options.WorkspaceRoot
		if root == "" {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("get working directory: %w", err)
			}

			root = cwd
		}

		if ws == nil {
			fs, err := workspace.NewFS(options.Logger, root)
			if err != nil {
				return nil, err
			}

			ws = fs
		}

		if exec == nil {
			exec = workspace.NewShell(options.Logger, root)
		}
	}

	return agent.NewService(options.Logger, ws, exec), nil
}

// Dispatch routes a request and returns its terminal envelope.
func (r *Runtime) Dispatch(ctx context.Context, req *Request) Envelope {
	return r.controller.Dispatch(ctx, req)
}

// Stream routes a request and yields its progress followed by one terminal envelope.
func (r *Runtime) Stream(ctx context.Context, req *Request) iter.Seq[Envelope] {
	return r.controller.Stream(ctx, req)
}

// Registry returns the server registry.
func (r *Runtime) Registry() *server.Registry {
	return r.registry
}

// Controller returns the protocol controller for registering custom handlers.
func (r *Runtime) Controller() *protocol.Controller {
	return r.controller
}

// RegisterHandler registers a local handler for a capability key such as
// "tool:search" or "agent:summarize". The last registration wins.
func (r *Runtime) RegisterHandler(key string, handler Handler) error {
	parsed, err := capability.Parse(key)
	if err != nil {
		return err
	}

	r.controller.RegisterLocalHandler(parsed, handler)

	return nil
}

// RegisterTool registers a custom tool and adds it to the catalog.
// A tool with the same name as an existing one replaces it.
func (r *Runtime) RegisterTool(t Tool) {
	def := toolDefinition(t)

	r.toolsMu.Lock()
	defer r.toolsMu.Unlock()

	r.custom = slices.DeleteFunc(r.custom, func(existing message.Tool) bool {
		return existing.Name == def.Name
	})
	r.custom = append(r.custom, def)
	r.controller.RegisterLocalHandler(capability.Tool(def.Name), toolHandler(t))
}

// Tools returns the built-in catalog followed by custom tools.
// Custom tools shadow built-in tools of the same name.
func (r *Runtime) Tools() []ToolDefinition {
	r.toolsMu.RLock()
	defer r.toolsMu.RUnlock()

	var tools []message.Tool

	if r.service != nil {
		for _, builtin := range r.service.Catalog() {
			if !slices.ContainsFunc(r.custom, func(t message.Tool) bool { return t.Name == builtin.Name }) {
				tools = append(tools, builtin)
			}
		}
	}

	return append(tools, r.custom...)
}

// RemoteTools lists the tools advertised by a registered server.
func (r *Runtime) RemoteTools(ctx context.Context, name string) ([]ToolDefinition, error) {
	if r.forwarder == nil {
		return nil, protoerrors.ErrNoTransport
	}

	desc, found, err := r.registry.Get(ctx, name)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, &RoutingError{ServerName: name, Err: ErrServerNotFound}
	}

	return r.forwarder.Tools(ctx, desc)
}

// ServerStatus reports the servers with an open session.
// It is empty when a custom transport replaced the forwarder.
func (r *Runtime) ServerStatus() ServerStatus {
	if r.forwarder == nil {
		return ServerStatus{}
	}

	return r.forwarder.Status()
}

// ActiveOperations returns the ids of running agent operations.
func (r *Runtime) ActiveOperations() []string {
	if r.service == nil {
		return nil
	}

	return r.service.ActiveOperations()
}

// Serve exposes the runtime's tools as an MCP server over transport until
// ctx is cancelled or the client disconnects.
func (r *Runtime) Serve(ctx context.Context, transport mcp.Transport) error {
	bridge := internalmcp.NewBridge(r.options.Logger, r.options.ClientName, r.options.ClientVersion, r.Tools(), r.controller.Dispatch)

	return bridge.Run(ctx, transport)
}

// Close cancels running agent operations and closes server sessions.
// It's safe to call Close multiple times.
func (r *Runtime) Close() error {
	r.closeOnce.Do(func() {
		if r.service != nil {
			r.service.CancelAll()
		}

		if r.forwarder != nil {
			if err := r.forwarder.Close(); err != nil {
				r.closeErr = errors.Join(r.closeErr, err)
			}
		}

		r.options.Logger.Info("Runtime closed")
	})

	return r.closeErr
}
