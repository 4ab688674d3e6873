package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	protoerrors "github.com/wagiedev/agent-protocol-go/internal/errors"
	"github.com/wagiedev/agent-protocol-go/internal/message"
	"github.com/wagiedev/agent-protocol-go/internal/protocol"
)

// ActionOperationStarted is the system action emitted when execute accepts an instruction.
const ActionOperationStarted = "operation_started"

var (
	errNoWorkspace   = errors.New("no workspace configured")
	errNoExecutor    = errors.New("no executor configured")
	errNoInstruction = errors.New("no instruction provided")
)

// StatusReport is the content returned by the status action.
type StatusReport struct {
	Count      int      `json:"count"`
	Operations []string `json:"operations"`
}

func (s *Service) execute(ctx context.Context, req *message.Request) (*message.Response, error) {
	last, ok := req.LastMessage()
	if !ok || strings.TrimSpace(last.Content) == "" {
		return nil, errNoInstruction
	}

	if s.executor == nil {
		return nil, errNoExecutor
	}

	opCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	id := s.track(cancel)
	defer s.untrack(id)

	log := s.log.With("operation_id", id)
	log.Info("Agent operation started")

	protocol.Signal(ctx, ActionOperationStarted, map[string]any{"operationId": id})

	result, err := s.executor.Execute(opCtx, last.Content, ExecuteOptions{
		OnProgress: func(progress string) {
			protocol.Emit(ctx, progress)
		},
		CheckCancellation: func() bool {
			return opCtx.Err() != nil
		},
	})
	if err != nil {
		log.Warn("Agent operation failed", "error", err)

		return nil, err
	}

	log.Info("Agent operation finished", "cancelled", opCtx.Err() != nil)

	return message.NewResponse(req.ID, result.Message), nil
}

func (s *Service) cancel(_ context.Context, req *message.Request) (*message.Response, error) {
	id := req.OperationID()
	if id == "" {
		return message.NewResponse(req.ID, "No operation ID provided; nothing to cancel"), nil
	}

	if !s.cancelOperation(id) {
		return message.NewResponse(req.ID, (&protoerrors.OperationNotFoundError{OperationID: id}).Error()), nil
	}

	s.log.Info("Agent operation cancelled", "operation_id", id)

	return message.NewResponse(req.ID, fmt.Sprintf("Operation %s cancelled", id)), nil
}

func (s *Service) status(_ context.Context, req *message.Request) (*message.Response, error) {
	ids := s.ActiveOperations()

	data, err := json.Marshal(StatusReport{Count: len(ids), Operations: ids})
	if err != nil {
		return nil, fmt.Errorf("encode status: %w", err)
	}

	return message.NewResponse(req.ID, string(data)), nil
}

// track stores cancel under a fresh operation id.
func (s *Service) track(cancel context.CancelFunc) string {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	id := s.newID()
	for {
		if _, exists := s.ops[id]; !exists {
			break
		}

		id = s.newID()
	}

	s.ops[id] = cancel

	return id
}

func (s *Service) untrack(id string) {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	delete(s.ops, id)
}

// cancelOperation signals and forgets an operation in one step.
func (s *Service) cancelOperation(id string) bool {
	s.opsMu.Lock()
	defer s.opsMu.Unlock()

	cancel, ok := s.ops[id]
	if !ok {
		return false
	}

	cancel()
	delete(s.ops, id)

	return true
}
