package agentproto

import "log/slog"

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to an Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithStore sets the store that persists server descriptors.
func WithStore(store ServerStore) Option {
	return func(o *Options) {
		o.Store = store
	}
}

// WithServerFile persists server descriptors as JSON at path.
// Use config.ServersPath() for the conventional location.
func WithServerFile(path string) Option {
	return func(o *Options) {
		o.ServerFile = path
	}
}

// WithPriorityOrder sets how servers sharing a capability are ranked.
// The default is PriorityAscending: lower priority values are preferred.
func WithPriorityOrder(order PriorityOrder) Option {
	return func(o *Options) {
		o.PriorityOrder = order
	}
}

// WithTransport replaces the MCP forwarder used for server-routed requests.
func WithTransport(transport ServerTransport) Option {
	return func(o *Options) {
		o.Transport = transport
	}
}

// WithWorkspace sets the collaborator behind the file and command tools.
func WithWorkspace(workspace Workspace) Option {
	return func(o *Options) {
		o.Workspace = workspace
	}
}

// WithExecutor sets the collaborator that runs agent:execute instructions.
func WithExecutor(executor Executor) Option {
	return func(o *Options) {
		o.Executor = executor
	}
}

// WithWorkspaceRoot sets the directory for the default workspace and executor.
func WithWorkspaceRoot(dir string) Option {
	return func(o *Options) {
		o.WorkspaceRoot = dir
	}
}

// WithoutAgentTools skips registering the built-in tools and agent actions.
func WithoutAgentTools() Option {
	return func(o *Options) {
		o.DisableAgentTools = true
	}
}

// WithClientInfo sets the name and version reported to MCP servers and clients.
func WithClientInfo(name, version string) Option {
	return func(o *Options) {
		o.ClientName = name
		o.ClientVersion = version
	}
}
