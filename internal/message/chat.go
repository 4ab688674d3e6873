package message

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Role identifies the author of a chat message.
type Role string

const (
	// RoleUser marks a message written by the user.
	RoleUser Role = "user"
	// RoleAssistant marks a message written by the assistant.
	RoleAssistant Role = "assistant"
	// RoleSystem marks a system prompt.
	RoleSystem Role = "system"
	// RoleTool marks a tool result linked back through ToolCallID.
	RoleTool Role = "tool"
)

// ChatMessage is one turn of the conversation carried by a Request.
type ChatMessage struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	Name       string     `json:"name,omitempty"`
	ID         string     `json:"id,omitempty"`
	ToolCalls  []ToolCall `json:"toolCalls,omitempty"`
	ToolCallID string     `json:"toolCallId,omitempty"`
}

// UserMessage creates a user chat message.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// Tool describes a capability advertised to a model and, for local tools,
// the registration key of its handler.
type Tool struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

// ToolCallStatus tracks a tool call through execution.
type ToolCallStatus string

const (
	// ToolCallPending marks a call that has not run yet.
	ToolCallPending ToolCallStatus = "pending"
	// ToolCallSuccess marks a call that produced a result.
	ToolCallSuccess ToolCallStatus = "success"
	// ToolCallError marks a call that failed.
	ToolCallError ToolCallStatus = "error"
)

// ToolCall is a request by the callee to run a tool.
type ToolCall struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Arguments Arguments      `json:"arguments"`
	Status    ToolCallStatus `json:"status,omitempty"`
	Result    string         `json:"result,omitempty"`
}

// Arguments holds tool-call arguments as either a structured map or a raw
// JSON string, whichever the producer sent.
type Arguments struct {
	values map[string]any
	raw    *string
}

// NewArguments creates Arguments from a map.
func NewArguments(values map[string]any) Arguments {
	return Arguments{values: values}
}

// RawArguments creates Arguments from a raw JSON string.
func RawArguments(raw string) Arguments {
	return Arguments{raw: &raw}
}

// IsRaw returns true if the arguments arrived as a string.
func (a Arguments) IsRaw() bool {
	return a.raw != nil
}

// Raw returns the raw string form, or empty string for map arguments.
func (a Arguments) Raw() string {
	if a.raw != nil {
		return *a.raw
	}

	return ""
}

// Map returns the arguments as a map, decoding the raw string if needed.
// Empty raw strings decode to an empty map.
func (a Arguments) Map() (map[string]any, error) {
	if a.raw == nil {
		if a.values == nil {
			return map[string]any{}, nil
		}

		return a.values, nil
	}

	if *a.raw == "" {
		return map[string]any{}, nil
	}

	var values map[string]any
	if err := json.Unmarshal([]byte(*a.raw), &values); err != nil {
		return nil, fmt.Errorf("decode raw arguments: %w", err)
	}

	if values == nil {
		values = map[string]any{}
	}

	return values, nil
}

// MarshalJSON implements json.Marshaler.
// Outputs a string if the arguments were raw, otherwise an object.
func (a Arguments) MarshalJSON() ([]byte, error) {
	if a.raw != nil {
		return json.Marshal(*a.raw)
	}

	if a.values == nil {
		return []byte("{}"), nil
	}

	return json.Marshal(a.values)
}

// UnmarshalJSON implements json.Unmarshaler.
// Accepts both a JSON string and a JSON object.
func (a *Arguments) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = Arguments{}

		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		a.raw = &raw
		a.values = nil

		return nil
	}

	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("arguments must be an object or string: %w", err)
	}

	a.values = values
	a.raw = nil

	return nil
}

// Usage reports token accounting for a response.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// NewUsage creates Usage with TotalTokens computed from its parts.
func NewUsage(prompt, completion int) *Usage {
	return &Usage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		TotalTokens:      prompt + completion,
	}
}

// Validate checks that counts are non-negative and that the total adds up.
func (u *Usage) Validate() error {
	if u.PromptTokens < 0 || u.CompletionTokens < 0 || u.TotalTokens < 0 {
		return fmt.Errorf("usage: negative token count")
	}

	if u.TotalTokens != u.PromptTokens+u.CompletionTokens {
		return fmt.Errorf("usage: total %d != prompt %d + completion %d",
			u.TotalTokens, u.PromptTokens, u.CompletionTokens)
	}

	return nil
}
