package errors

import (
	"errors"
	"fmt"
)

// ProtocolError is the base interface for all runtime errors.
type ProtocolError interface {
	error
	IsProtocolError() bool
}

// Compile-time verification that all error types implement ProtocolError.
var (
	_ ProtocolError = (*RoutingError)(nil)
	_ ProtocolError = (*HandlerExecutionError)(nil)
	_ ProtocolError = (*ToolArgumentError)(nil)
	_ ProtocolError = (*OperationNotFoundError)(nil)
	_ ProtocolError = (*EnvelopeError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrUnknownEnvelopeType indicates the envelope type tag is not recognized.
	ErrUnknownEnvelopeType = errors.New("unknown envelope type")

	// ErrServerNotFound indicates the named server is not in the registry.
	ErrServerNotFound = errors.New("server not found")

	// ErrServerInactive indicates the named server exists but is not active.
	ErrServerInactive = errors.New("server inactive")

	// ErrUnroutable indicates no capability key could be resolved for a request.
	ErrUnroutable = errors.New("unroutable request")

	// ErrNoHandler indicates no local handler is registered for a capability.
	ErrNoHandler = errors.New("no handler registered")

	// ErrNoTransport indicates a server route was selected but no transport is configured.
	ErrNoTransport = errors.New("no server transport configured")

	// ErrOperationNotFound indicates an agent operation id is not active.
	ErrOperationNotFound = errors.New("operation not found")

	// ErrInvalidRequest indicates a request is malformed for its route.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrHandlerPanic indicates a handler panicked instead of returning.
	ErrHandlerPanic = errors.New("handler panicked")
)

// Envelope error codes carried in ErrorMessage.Error.Code.
const (
	CodeRoutingError     = "routing_error"
	CodeUnroutable       = "unroutable_request"
	CodeHandlerError     = "handler_error"
	CodeServerError      = "server_error"
	CodeInvalidRequest   = "invalid_request"
	CodeInvalidEnvelope  = "invalid_envelope"
	CodeInternal         = "internal_error"
	CodeToolArgument     = "tool_argument_error"
	CodeOperationMissing = "operation_not_found"
)

// RoutingError indicates that no server or handler could be resolved for a request.
// It is always surfaced to the caller as an ERROR envelope and never retried.
type RoutingError struct {
	ServerName string
	Capability string
	Err        error
}

func (e *RoutingError) Error() string {
	switch {
	case e.ServerName != "":
		return fmt.Sprintf("route to server %q: %v", e.ServerName, e.Err)
	case e.Capability != "":
		return fmt.Sprintf("route to capability %q: %v", e.Capability, e.Err)
	default:
		return fmt.Sprintf("route request: %v", e.Err)
	}
}

func (e *RoutingError) Unwrap() error {
	return e.Err
}

// IsProtocolError implements ProtocolError.
func (e *RoutingError) IsProtocolError() bool { return true }

// HandlerExecutionError indicates a registered handler (local or remote) failed.
type HandlerExecutionError struct {
	Capability string
	ServerName string
	Err        error
}

func (e *HandlerExecutionError) Error() string {
	if e.ServerName != "" {
		return fmt.Sprintf("server %q failed: %v", e.ServerName, e.Err)
	}

	return fmt.Sprintf("handler %q failed: %v", e.Capability, e.Err)
}

func (e *HandlerExecutionError) Unwrap() error {
	return e.Err
}

// IsProtocolError implements ProtocolError.
func (e *HandlerExecutionError) IsProtocolError() bool { return true }

// ToolArgumentError indicates a required tool-call argument is missing or has the wrong type.
type ToolArgumentError struct {
	Tool     string
	Argument string
}

func (e *ToolArgumentError) Error() string {
	return fmt.Sprintf("missing required argument %q for tool %s", e.Argument, e.Tool)
}

// IsProtocolError implements ProtocolError.
func (e *ToolArgumentError) IsProtocolError() bool { return true }

// OperationNotFoundError indicates a cancel or status call referenced an unknown operation.
type OperationNotFoundError struct {
	OperationID string
}

func (e *OperationNotFoundError) Error() string {
	return fmt.Sprintf("no active operation found with ID %s", e.OperationID)
}

func (e *OperationNotFoundError) Unwrap() error {
	return ErrOperationNotFound
}

// IsProtocolError implements ProtocolError.
func (e *OperationNotFoundError) IsProtocolError() bool { return true }

// EnvelopeError indicates an envelope could not be decoded.
// The raw data is preserved for diagnostics.
type EnvelopeError struct {
	Data map[string]any
	Err  error
}

func (e *EnvelopeError) Error() string {
	return fmt.Sprintf("failed to decode envelope: %v", e.Err)
}

func (e *EnvelopeError) Unwrap() error {
	return e.Err
}

// IsProtocolError implements ProtocolError.
func (e *EnvelopeError) IsProtocolError() bool { return true }

// Code maps an error to the code reported in an ERROR envelope.
func Code(err error) string {
	if err == nil {
		return ""
	}

	if routeErr, ok := errors.AsType[*RoutingError](err); ok {
		if errors.Is(routeErr, ErrUnroutable) || errors.Is(routeErr, ErrNoHandler) {
			return CodeUnroutable
		}

		return CodeRoutingError
	}

	if execErr, ok := errors.AsType[*HandlerExecutionError](err); ok {
		if execErr.ServerName != "" {
			return CodeServerError
		}

		return CodeHandlerError
	}

	switch {
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrOperationNotFound):
		return CodeOperationMissing
	}

	if _, ok := errors.AsType[*ToolArgumentError](err); ok {
		return CodeToolArgument
	}

	if _, ok := errors.AsType[*EnvelopeError](err); ok {
		return CodeInvalidEnvelope
	}

	return CodeInternal
}
