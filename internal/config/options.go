// Package config provides configuration types for the agent protocol runtime.
package config

import (
	"errors"
	"log/slog"

	"github.com/wagiedev/agent-protocol-go/internal/agent"
	"github.com/wagiedev/agent-protocol-go/internal/protocol"
	"github.com/wagiedev/agent-protocol-go/internal/server"
)

// ErrConflictingStores indicates both a Store and a ServerFile were configured.
var ErrConflictingStores = errors.New("set either a server store or a server file, not both")

// Options configures a Runtime.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Store persists server descriptors. Defaults to an in-memory store.
	Store server.Store

	// ServerFile persists server descriptors as JSON at this path.
	// Mutually exclusive with Store.
	ServerFile string

	// PriorityOrder ranks servers sharing a capability.
	// Defaults to server.Ascending (lower priority value first).
	PriorityOrder server.Order

	// Transport forwards server-routed requests.
	// Defaults to an MCP forwarder owned by the Runtime.
	Transport protocol.ServerTransport

	// Workspace backs the file and command tools.
	// Defaults to a workspace rooted at WorkspaceRoot.
	Workspace agent.Workspace

	// Executor runs agent:execute instructions.
	// Defaults to a shell executor in WorkspaceRoot.
	Executor agent.Executor

	// WorkspaceRoot is the directory used by the default Workspace and
	// Executor. Defaults to the current directory.
	WorkspaceRoot string

	// DisableAgentTools skips registering the built-in tools and agent actions.
	DisableAgentTools bool

	// ClientName and ClientVersion identify the runtime to MCP servers.
	ClientName    string
	ClientVersion string
}

// Validate reports configuration combinations that cannot be honored.
func (o *Options) Validate() error {
	if o.Store != nil && o.ServerFile != "" {
		return ErrConflictingStores
	}

	return nil
}
