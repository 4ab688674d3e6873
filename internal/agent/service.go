package agent

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/wagiedev/agent-protocol-go/internal/capability"
	"github.com/wagiedev/agent-protocol-go/internal/message"
	"github.com/wagiedev/agent-protocol-go/internal/protocol"
)

// Service is the built-in tool and agent-operation provider.
type Service struct {
	log       *slog.Logger
	workspace Workspace
	executor  Executor

	opsMu sync.Mutex
	ops   map[string]context.CancelFunc

	newID func() string
}

// NewService creates a Service backed by the given collaborators.
// Either collaborator may be nil; the handlers that need it then report an error.
func NewService(log *slog.Logger, workspace Workspace, executor Executor) *Service {
	return &Service{
		log:       log.With("component", "agent"),
		workspace: workspace,
		executor:  executor,
		ops:       make(map[string]context.CancelFunc, 4),
		newID:     uuid.NewString,
	}
}

// Register adds the tool catalog and the agent actions to registrar.
func (s *Service) Register(registrar protocol.Registrar) {
	for _, def := range s.tools() {
		registrar.RegisterLocalHandler(capability.Tool(def.tool.Name), s.guard(def.tool.Name, def.handler))
	}

	registrar.RegisterLocalHandler(capability.AgentExecute, s.guard("execute", s.execute))
	registrar.RegisterLocalHandler(capability.AgentCancel, s.guard("cancel", s.cancel))
	registrar.RegisterLocalHandler(capability.AgentStatus, s.guard("status", s.status))

	s.log.Debug("Registered agent capabilities", "tools", len(s.tools()))
}

// Catalog returns the tool definitions served by this Service.
func (s *Service) Catalog() []message.Tool {
	defs := s.tools()

	tools := make([]message.Tool, 0, len(defs))
	for _, def := range defs {
		tools = append(tools, def.tool)
	}

	return tools
}

// ActiveOperations returns the ids of operations still running, sorted.
func (s *Service) ActiveOperations() []string {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	ids := make([]string, 0, len(s.ops))
	for id := range s.ops {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

// CancelAll cancels and forgets every active operation.
func (s *Service) CancelAll() {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	for id, cancel := range s.ops {
		cancel()
		delete(s.ops, id)
	}
}

// guard converts errors and panics into "Error: " response content.
func (s *Service) guard(name string, h protocol.Handler) protocol.Handler {
	return func(ctx context.Context, req *message.Request) (resp *message.Response, err error) {
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("Agent handler panicked", "handler", name, "panic", r)

				resp, err = errorResponse(req, fmt.Errorf("%s panicked: %v", name, r)), nil
			}
		}()

		resp, err = h(ctx, req)
		if err != nil {
			s.log.Warn("Agent handler failed", "handler", name, "error", err)

			return errorResponse(req, err), nil
		}

		return resp, nil
	}
}

// errorResponse reports err as response content, marking the pending tool call failed.
func errorResponse(req *message.Request, err error) *message.Response {
	resp := message.NewResponse(req.ID, "Error: "+err.Error())

	if call, ok := req.PendingToolCall(); ok {
		call.Status = message.ToolCallError
		call.Result = resp.Content
		resp.ToolCalls = []message.ToolCall{call}
	}

	return resp
}
