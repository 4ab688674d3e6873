package agentproto

import "github.com/wagiedev/agent-protocol-go/internal/errors"

// Re-export error types from internal package

// ProtocolError is the base interface for all runtime errors.
type ProtocolError = errors.ProtocolError

// RoutingError indicates no server or handler could be resolved for a request.
type RoutingError = errors.RoutingError

// HandlerExecutionError indicates a local handler or remote server failed.
type HandlerExecutionError = errors.HandlerExecutionError

// ToolArgumentError indicates a required tool-call argument is missing.
type ToolArgumentError = errors.ToolArgumentError

// OperationNotFoundError indicates a cancel referenced an unknown operation.
type OperationNotFoundError = errors.OperationNotFoundError

// EnvelopeError indicates an envelope could not be decoded.
type EnvelopeError = errors.EnvelopeError

// Re-export sentinel errors from internal package.
var (
	// ErrUnknownEnvelopeType indicates the envelope type tag is not recognized.
	ErrUnknownEnvelopeType = errors.ErrUnknownEnvelopeType

	// ErrServerNotFound indicates the named server is not in the registry.
	ErrServerNotFound = errors.ErrServerNotFound

	// ErrServerInactive indicates the named server exists but is not active.
	ErrServerInactive = errors.ErrServerInactive

	// ErrUnroutable indicates no capability key could be resolved for a request.
	ErrUnroutable = errors.ErrUnroutable

	// ErrNoHandler indicates no local handler is registered for a capability.
	ErrNoHandler = errors.ErrNoHandler

	// ErrNoTransport indicates a server route was selected but no transport is configured.
	ErrNoTransport = errors.ErrNoTransport

	// ErrOperationNotFound indicates an agent operation id is not active.
	ErrOperationNotFound = errors.ErrOperationNotFound

	// ErrInvalidRequest indicates a request is malformed for its route.
	ErrInvalidRequest = errors.ErrInvalidRequest

	// ErrHandlerPanic indicates a handler panicked instead of returning.
	ErrHandlerPanic = errors.ErrHandlerPanic
)

// Error codes carried in ErrorMessage envelopes.
const (
	CodeRoutingError   = errors.CodeRoutingError
	CodeUnroutable     = errors.CodeUnroutable
	CodeHandlerError   = errors.CodeHandlerError
	CodeServerError    = errors.CodeServerError
	CodeInvalidRequest = errors.CodeInvalidRequest
)

// ErrorCode maps an error to the code reported in an ERROR envelope.
func ErrorCode(err error) string {
	return errors.Code(err)
}
