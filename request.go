package agentproto

import (
	"github.com/wagiedev/agent-protocol-go/internal/agent"
	"github.com/wagiedev/agent-protocol-go/internal/capability"
	"github.com/wagiedev/agent-protocol-go/internal/message"
	"github.com/wagiedev/agent-protocol-go/internal/protocol"
)

// Agent actions accepted by NewAgentRequest.
const (
	ActionExecute = "execute"
	ActionCancel  = "cancel"
	ActionStatus  = "status"
)

// ActionOperationStarted is the SystemMessage action streamed when an execute
// request is accepted. Its payload carries the id under "operationId".
const ActionOperationStarted = agent.ActionOperationStarted

// ActionUsage is the SystemMessage action Stream yields before the terminal
// chunk when the response reports token usage.
const ActionUsage = protocol.ActionUsage

// NewToolCallRequest creates a request carrying one pending call to tool.
func NewToolCallRequest(tool string, args map[string]any) *Request {
	return message.NewRequest("", message.ChatMessage{
		Role: message.RoleAssistant,
		ToolCalls: []message.ToolCall{{
			ID:        message.NewID(),
			Name:      tool,
			Arguments: message.NewArguments(args),
			Status:    message.ToolCallPending,
		}},
	})
}

// NewAgentRequest creates a request for an agent action.
// operationID is only used by cancel; messages carry the execute instruction.
func NewAgentRequest(action, operationID string, messages ...ChatMessage) *Request {
	req := message.NewRequest("", messages...)
	req.Capability = capability.Agent(action).String()
	req.Context = &message.Context{
		AgentAction: action,
		OperationID: operationID,
	}

	return req
}

// NewExecuteRequest creates an agent:execute request for instruction.
func NewExecuteRequest(instruction string) *Request {
	return NewAgentRequest(ActionExecute, "", message.UserMessage(instruction))
}

// UserMessage creates a user chat message.
func UserMessage(content string) ChatMessage {
	return message.UserMessage(content)
}
