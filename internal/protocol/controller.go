package protocol

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/wagiedev/agent-protocol-go/internal/capability"
	"github.com/wagiedev/agent-protocol-go/internal/errors"
	"github.com/wagiedev/agent-protocol-go/internal/message"
)

// Controller routes requests to local handlers or external servers.
//
// The Controller holds two mappings: capability key to handler, and (through
// its ServerResolver) server name to descriptor. It performs no queuing or
// buffering of its own. All methods are safe for concurrent use.
type Controller struct {
	log       *slog.Logger
	servers   ServerResolver
	transport ServerTransport

	handlersMu sync.RWMutex
	handlers   map[capability.Key]Handler
}

// NewController creates a new protocol controller.
//
// servers resolves ServerName routes; transport forwards them. Either may be
// nil, in which case every server route fails with a routing error.
func NewController(log *slog.Logger, servers ServerResolver, transport ServerTransport) *Controller {
	return &Controller{
		log:       log.With("component", "protocol"),
		servers:   servers,
		transport: transport,
		handlers:  make(map[capability.Key]Handler, 8),
	}
}

// RegisterLocalHandler registers a handler for a capability.
//
// Registering a handler for a key that already has one replaces it; the last
// registration wins. This lets a capability provider re-initialize without
// restarting the process.
func (c *Controller) RegisterLocalHandler(key capability.Key, handler Handler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	if _, exists := c.handlers[key]; exists {
		c.log.Debug("Replacing local handler", "capability", key.String())
	} else {
		c.log.Debug("Registering local handler", "capability", key.String())
	}

	c.handlers[key] = handler
}

// UnregisterLocalHandler removes the handler for a capability, if any.
func (c *Controller) UnregisterLocalHandler(key capability.Key) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	delete(c.handlers, key)
}

// Capabilities returns the registered capability keys sorted by their string form.
func (c *Controller) Capabilities() []capability.Key {
	c.handlersMu.RLock()
	defer c.handlersMu.RUnlock()

	keys := make([]capability.Key, 0, len(c.handlers))
	for key := range c.handlers {
		keys = append(keys, key)
	}

	slices.SortFunc(keys, func(a, b capability.Key) int {
		switch sa, sb := a.String(), b.String(); {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		default:
			return 0
		}
	})

	return keys
}

// Dispatch routes a request and returns its terminal envelope.
//
// The result is a *message.Response on success, or a *message.ErrorMessage
// for routing failures and handler failures. A server route may also return
// a terminal *message.StreamMessage if that is what the server replied with.
// The returned envelope's id always equals the request id.
func (c *Controller) Dispatch(ctx context.Context, req *message.Request) message.Envelope {
	if req == nil {
		c.log.Warn("Rejecting nil request")

		return message.NewError("", errors.CodeInvalidRequest, "nil request")
	}

	if req.ServerName != "" {
		return c.forward(ctx, req)
	}

	return c.dispatchLocal(ctx, req)
}

// dispatchLocal serves a request with the handler registered for its capability.
func (c *Controller) dispatchLocal(ctx context.Context, req *message.Request) message.Envelope {
	key, ok := capability.Resolve(req)
	if !ok {
		c.log.Warn("Unroutable request", "request_id", req.ID)

		return c.errorEnvelope(req.ID, &errors.RoutingError{Err: errors.ErrUnroutable})
	}

	c.handlersMu.RLock()
	handler, exists := c.handlers[key]
	c.handlersMu.RUnlock()

	if !exists {
		c.log.Warn("No local handler for capability", "request_id", req.ID, "capability", key.String())

		return c.errorEnvelope(req.ID, &errors.RoutingError{
			Capability: key.String(),
			Err:        errors.ErrNoHandler,
		})
	}

	c.log.Debug("Dispatching to local handler", "request_id", req.ID, "capability", key.String())

	resp, err := invoke(ctx, handler, req)
	if err != nil {
		c.log.Warn("Local handler failed", "request_id", req.ID, "capability", key.String(), "error", err)

		return c.errorEnvelope(req.ID, &errors.HandlerExecutionError{
			Capability: key.String(),
			Err:        err,
		})
	}

	if resp == nil {
		return message.NewResponse(req.ID, "")
	}

	// Handlers may hand back a shared response; stamp the id on a copy.
	out := *resp
	out.ID = req.ID

	return &out
}

// forward sends a request to the named server. There is no fallback to local routing.
func (c *Controller) forward(ctx context.Context, req *message.Request) message.Envelope {
	name := req.ServerName

	if c.servers == nil {
		return c.errorEnvelope(req.ID, &errors.RoutingError{ServerName: name, Err: errors.ErrServerNotFound})
	}

	desc, found, err := c.servers.Get(ctx, name)
	if err != nil {
		c.log.Warn("Server lookup failed", "request_id", req.ID, "server", name, "error", err)

		return c.errorEnvelope(req.ID, &errors.RoutingError{ServerName: name, Err: err})
	}

	if !found {
		c.log.Warn("Unknown server", "request_id", req.ID, "server", name)

		return c.errorEnvelope(req.ID, &errors.RoutingError{ServerName: name, Err: errors.ErrServerNotFound})
	}

	if !desc.IsActive {
		c.log.Warn("Inactive server", "request_id", req.ID, "server", name)

		return c.errorEnvelope(req.ID, &errors.RoutingError{ServerName: name, Err: errors.ErrServerInactive})
	}

	if c.transport == nil {
		return c.errorEnvelope(req.ID, &errors.RoutingError{ServerName: name, Err: errors.ErrNoTransport})
	}

	c.log.Debug("Forwarding to server", "request_id", req.ID, "server", name, "endpoint", desc.Endpoint)

	reply, err := c.transport.Forward(ctx, desc, req)
	if err != nil {
		c.log.Warn("Server forward failed", "request_id", req.ID, "server", name, "error", err)

		return c.errorEnvelope(req.ID, &errors.HandlerExecutionError{ServerName: name, Err: err})
	}

	switch r := reply.(type) {
	case *message.Response:
		out := *r
		out.ID = req.ID

		return &out
	case *message.ErrorMessage:
		out := *r
		out.ID = req.ID

		return &out
	case *message.StreamMessage:
		out := *r
		out.ID = req.ID
		out.IsComplete = true

		return &out
	case nil:
		return c.errorEnvelope(req.ID, &errors.HandlerExecutionError{
			ServerName: name,
			Err:        stderrors.New("empty reply"),
		})
	default:
		return c.errorEnvelope(req.ID, &errors.HandlerExecutionError{
			ServerName: name,
			Err:        fmt.Errorf("unexpected %s reply", reply.Type()),
		})
	}
}

// errorEnvelope converts a routing or handler error into an ERROR envelope.
func (c *Controller) errorEnvelope(requestID string, err error) *message.ErrorMessage {
	env := message.NewError(requestID, errors.Code(err), err.Error())

	if routeErr, ok := stderrors.AsType[*errors.RoutingError](err); ok {
		if routeErr.ServerName != "" {
			env.WithDetail("server", routeErr.ServerName)
		}

		if routeErr.Capability != "" {
			env.WithDetail("capability", routeErr.Capability)
		}
	}

	if execErr, ok := stderrors.AsType[*errors.HandlerExecutionError](err); ok {
		if execErr.ServerName != "" {
			env.WithDetail("server", execErr.ServerName)
		}

		if execErr.Capability != "" {
			env.WithDetail("capability", execErr.Capability)
		}
	}

	return env
}

// invoke runs a handler, converting a panic into an error.
func invoke(ctx context.Context, handler Handler, req *message.Request) (resp *message.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = nil
			err = fmt.Errorf("%w: %v", errors.ErrHandlerPanic, r)
		}
	}()

	return handler(ctx, req)
}
