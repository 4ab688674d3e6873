package message

import "encoding/json"

// Request asks the runtime to serve a conversation turn, a tool call, or an
// agent action.
type Request struct {
	Header
	Model    string          `json:"model"`
	Messages []ChatMessage   `json:"messages"`
	Tools    []Tool          `json:"tools,omitempty"`
	Context  *Context        `json:"context,omitempty"`
	Options  *RequestOptions `json:"options,omitempty"`

	// ServerName routes the request to a named external server.
	// Empty means local routing.
	ServerName string `json:"serverName,omitempty"`

	// Capability names the local capability explicitly, e.g. "tool:file_read".
	// When empty the capability is derived from the pending tool call or
	// Context.AgentAction.
	Capability string `json:"capability,omitempty"`
}

// NewRequest creates a Request with a fresh id.
func NewRequest(model string, messages ...ChatMessage) *Request {
	return &Request{
		Header:   newHeader(NewID()),
		Model:    model,
		Messages: messages,
	}
}

// Type implements the Envelope interface.
func (r *Request) Type() Type { return TypeRequest }

// MarshalJSON implements json.Marshaler.
func (r *Request) MarshalJSON() ([]byte, error) {
	type alias Request

	return json.Marshal(struct {
		Type Type `json:"type"`
		*alias
	}{Type: TypeRequest, alias: (*alias)(r)})
}

// LastMessage returns the final chat message, if any.
func (r *Request) LastMessage() (ChatMessage, bool) {
	if len(r.Messages) == 0 {
		return ChatMessage{}, false
	}

	return r.Messages[len(r.Messages)-1], true
}

// PendingToolCall returns the first tool call on the last message that has
// not yet produced a result.
func (r *Request) PendingToolCall() (ToolCall, bool) {
	last, ok := r.LastMessage()
	if !ok {
		return ToolCall{}, false
	}

	for _, call := range last.ToolCalls {
		if call.Status == "" || call.Status == ToolCallPending {
			return call, true
		}
	}

	return ToolCall{}, false
}

// OperationID returns the agent operation id carried in the request context.
func (r *Request) OperationID() string {
	if r.Context == nil {
		return ""
	}

	return r.Context.OperationID
}

// Context is open-ended metadata about the caller's project, session and
// editor. Extra is the extension point for keys the runtime does not know.
type Context struct {
	ProjectPath string         `json:"projectPath,omitempty"`
	Codebase    map[string]any `json:"codebase,omitempty"`
	SessionID   string         `json:"sessionId,omitempty"`
	Editor      map[string]any `json:"editor,omitempty"`
	AgentAction string         `json:"agentAction,omitempty"`
	OperationID string         `json:"operationId,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// RequestOptions tunes generation for model-backed handlers.
type RequestOptions struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
	Stream      bool     `json:"stream,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}
