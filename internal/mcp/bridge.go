package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/agent-protocol-go/internal/message"
)

// DispatchFunc routes a request and returns its terminal envelope.
// (*protocol.Controller).Dispatch satisfies it.
type DispatchFunc func(ctx context.Context, req *message.Request) message.Envelope

// NewBridge builds an MCP server exposing tools through dispatch.
//
// Each tool call becomes a Request carrying one pending tool call, so it is
// routed to the "tool:<name>" handler. Responses whose content starts with
// "Error:" and ERROR envelopes are returned as MCP error results.
func NewBridge(log *slog.Logger, name, version string, tools []message.Tool, dispatch DispatchFunc) *mcp.Server {
	log = log.With("component", "mcp_bridge")

	srv := mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil)

	for _, tool := range tools {
		srv.AddTool(FromMessageTool(tool), bridgeHandler(log, tool.Name, dispatch))
	}

	log.Debug("Bridge ready", "tools", len(tools))

	return srv
}

func bridgeHandler(log *slog.Logger, toolName string, dispatch DispatchFunc) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, err := ParseArguments(req)
		if err != nil {
			//nolint:nilerr // Intentionally return nil error - error is encoded in the result
			return ErrorResult(err.Error()), nil
		}

		call := message.ToolCall{
			ID:        message.NewID(),
			Name:      toolName,
			Arguments: message.NewArguments(args),
			Status:    message.ToolCallPending,
		}

		protoReq := message.NewRequest("", message.ChatMessage{
			Role:      message.RoleAssistant,
			ToolCalls: []message.ToolCall{call},
		})

		log.Debug("Bridging tool call", "tool", toolName, "request_id", protoReq.ID)

		return envelopeResult(dispatch(ctx, protoReq)), nil
	}
}

// envelopeResult maps a terminal envelope to an MCP tool result.
func envelopeResult(env message.Envelope) *mcp.CallToolResult {
	switch m := env.(type) {
	case *message.Response:
		if strings.HasPrefix(m.Content, "Error:") {
			return ErrorResult(m.Content)
		}

		return TextResult(m.Content)
	case *message.StreamMessage:
		return TextResult(m.Content)
	case *message.ErrorMessage:
		return ErrorResult(fmt.Sprintf("%s: %s", m.Error.Code, m.Error.Message))
	case nil:
		return ErrorResult("no reply")
	default:
		return ErrorResult(fmt.Sprintf("unexpected %s reply", env.Type()))
	}
}
