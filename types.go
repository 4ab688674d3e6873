package agentproto

import (
	"github.com/wagiedev/agent-protocol-go/internal/agent"
	"github.com/wagiedev/agent-protocol-go/internal/capability"
	"github.com/wagiedev/agent-protocol-go/internal/config"
	internalmcp "github.com/wagiedev/agent-protocol-go/internal/mcp"
	"github.com/wagiedev/agent-protocol-go/internal/message"
	"github.com/wagiedev/agent-protocol-go/internal/protocol"
	"github.com/wagiedev/agent-protocol-go/internal/server"
)

// Re-export types from internal packages

// ===== Options =====

// Options configures a Runtime.
type Options = config.Options

// ===== Envelopes =====

// Envelope is any message in the protocol.
type Envelope = message.Envelope

// EnvelopeType identifies an envelope variant.
type EnvelopeType = message.Type

const (
	// TypeRequest marks a Request envelope.
	TypeRequest = message.TypeRequest
	// TypeResponse marks a Response envelope.
	TypeResponse = message.TypeResponse
	// TypeError marks an ErrorMessage envelope.
	TypeError = message.TypeError
	// TypeStream marks a StreamMessage envelope.
	TypeStream = message.TypeStream
	// TypeSystem marks a SystemMessage envelope.
	TypeSystem = message.TypeSystem
)

// Request asks the runtime to serve a conversation turn, tool call or agent action.
type Request = message.Request

// Response is the final reply to a Request.
type Response = message.Response

// StreamMessage is one chunk of a streamed reply.
type StreamMessage = message.StreamMessage

// ErrorMessage reports that a request could not be served.
type ErrorMessage = message.ErrorMessage

// ErrorDetail is the structured error carried by an ErrorMessage.
type ErrorDetail = message.ErrorDetail

// SystemMessage carries out-of-band signals.
type SystemMessage = message.SystemMessage

// RequestContext is open-ended caller metadata attached to a Request.
type RequestContext = message.Context

// RequestOptions tunes generation for model-backed handlers.
type RequestOptions = message.RequestOptions

// ===== Chat =====

// Role identifies the author of a chat message.
type Role = message.Role

const (
	// RoleUser marks a message written by the user.
	RoleUser = message.RoleUser
	// RoleAssistant marks a message written by the assistant.
	RoleAssistant = message.RoleAssistant
	// RoleSystem marks a system prompt.
	RoleSystem = message.RoleSystem
	// RoleTool marks a tool result.
	RoleTool = message.RoleTool
)

// ChatMessage is one turn of the conversation.
type ChatMessage = message.ChatMessage

// ToolDefinition describes a tool advertised to a model.
type ToolDefinition = message.Tool

// ToolCall is a request to run a tool.
type ToolCall = message.ToolCall

// ToolCallStatus tracks a tool call through execution.
type ToolCallStatus = message.ToolCallStatus

const (
	// ToolCallPending marks a call that has not run yet.
	ToolCallPending = message.ToolCallPending
	// ToolCallSuccess marks a call that produced a result.
	ToolCallSuccess = message.ToolCallSuccess
	// ToolCallError marks a call that failed.
	ToolCallError = message.ToolCallError
)

// Arguments holds tool-call arguments as a map or a raw JSON string.
type Arguments = message.Arguments

// Usage reports token consumption.
type Usage = message.Usage

// ===== Routing =====

// CapabilityKey identifies one local capability.
type CapabilityKey = capability.Key

// Handler serves requests for one local capability.
type Handler = protocol.Handler

// ServerTransport forwards requests to external servers.
type ServerTransport = protocol.ServerTransport

// ===== Servers =====

// ServerDescriptor describes one external endpoint.
type ServerDescriptor = server.Descriptor

// AuthType selects how requests to a server are authenticated.
type AuthType = server.AuthType

const (
	// AuthNone sends no credentials.
	AuthNone = server.AuthNone
	// AuthAPIKey sends an API key header.
	AuthAPIKey = server.AuthAPIKey
	// AuthBearer sends a static bearer token.
	AuthBearer = server.AuthBearer
	// AuthOAuth2 obtains tokens with the client-credentials flow.
	AuthOAuth2 = server.AuthOAuth2
)

// AuthDetails holds the credentials matching an AuthType.
type AuthDetails = server.AuthDetails

// ServerStore persists server descriptors.
type ServerStore = server.Store

// NewMemoryStore returns a ServerStore that keeps servers in memory.
func NewMemoryStore(servers ...ServerDescriptor) ServerStore {
	return server.NewMemoryStore(servers...)
}

// NewFileStore returns a ServerStore backed by a JSON file at path.
func NewFileStore(path string) ServerStore {
	return server.NewFileStore(path)
}

// ServerStatus lists the servers with an open session.
type ServerStatus = internalmcp.Status

// PriorityOrder ranks servers that share a capability.
type PriorityOrder = server.Order

// Priority orders.
var (
	// PriorityAscending prefers lower priority values.
	PriorityAscending PriorityOrder = server.Ascending
	// PriorityDescending prefers higher priority values.
	PriorityDescending PriorityOrder = server.Descending
)

// ===== Agent collaborators =====

// Workspace performs the file and command operations behind the tool catalog.
type Workspace = agent.Workspace

// Executor runs long-lived agent instructions.
type Executor = agent.Executor

// ExecuteOptions are the callbacks handed to an Executor.
type ExecuteOptions = agent.ExecuteOptions

// ExecuteResult is the outcome of a finished execution.
type ExecuteResult = agent.ExecuteResult

// DirEntry is one item returned by Workspace.ListDirectory.
type DirEntry = agent.Entry

// StatusReport is the content returned by the agent:status action.
type StatusReport = agent.StatusReport
