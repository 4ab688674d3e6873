package message

import (
	"encoding/json"
	"time"
)

// ProtocolVersion is the version string stamped on every envelope.
const ProtocolVersion = "1.0"

// Type identifies which envelope variant a message is.
type Type string

const (
	// TypeRequest marks a Request envelope.
	TypeRequest Type = "request"
	// TypeResponse marks a Response envelope.
	TypeResponse Type = "response"
	// TypeError marks an ErrorMessage envelope.
	TypeError Type = "error"
	// TypeStream marks a StreamMessage envelope.
	TypeStream Type = "stream"
	// TypeSystem marks a SystemMessage envelope.
	TypeSystem Type = "system"
)

// Envelope is any message in the protocol.
// Use a type switch on the concrete type to access variant fields.
type Envelope interface {
	EnvelopeID() string
	Type() Type
	CreatedAt() time.Time
	ProtocolVersion() string
}

// Compile-time verification that all envelope variants implement Envelope.
var (
	_ Envelope = (*Request)(nil)
	_ Envelope = (*Response)(nil)
	_ Envelope = (*StreamMessage)(nil)
	_ Envelope = (*ErrorMessage)(nil)
	_ Envelope = (*SystemMessage)(nil)
)

// Header holds the fields shared by every envelope variant.
// The timestamp is advisory metadata; it implies no ordering across producers.
type Header struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

func newHeader(id string) Header {
	return Header{
		ID:        id,
		Timestamp: time.Now().UTC(),
		Version:   ProtocolVersion,
	}
}

// EnvelopeID returns the envelope id.
func (h Header) EnvelopeID() string { return h.ID }

// CreatedAt returns the creation instant.
func (h Header) CreatedAt() time.Time { return h.Timestamp }

// ProtocolVersion returns the protocol version string.
func (h Header) ProtocolVersion() string { return h.Version }

// Response is the final reply to a Request.
type Response struct {
	Header
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"toolCalls,omitempty"`
	Usage     *Usage     `json:"usage,omitempty"`
}

// NewResponse creates a Response correlated with the given request id.
func NewResponse(requestID, content string) *Response {
	return &Response{
		Header:  newHeader(requestID),
		Content: content,
	}
}

// Type implements the Envelope interface.
func (r *Response) Type() Type { return TypeResponse }

// MarshalJSON implements json.Marshaler.
func (r *Response) MarshalJSON() ([]byte, error) {
	type alias Response

	return json.Marshal(struct {
		Type Type `json:"type"`
		*alias
	}{Type: TypeResponse, alias: (*alias)(r)})
}

// StreamMessage is one chunk of a streamed reply.
//
// When IsDelta is true, Content is incremental and must be appended to what
// came before. IsComplete marks the terminal chunk for the request id.
type StreamMessage struct {
	Header
	Content    string    `json:"content"`
	IsDelta    bool      `json:"isDelta"`
	ToolCall   *ToolCall `json:"toolCall,omitempty"`
	IsComplete bool      `json:"isComplete"`
}

// NewStreamDelta creates an incremental stream chunk.
func NewStreamDelta(requestID, content string) *StreamMessage {
	return &StreamMessage{
		Header:  newHeader(requestID),
		Content: content,
		IsDelta: true,
	}
}

// NewStreamComplete creates the terminal stream chunk.
func NewStreamComplete(requestID, content string) *StreamMessage {
	return &StreamMessage{
		Header:     newHeader(requestID),
		Content:    content,
		IsComplete: true,
	}
}

// Type implements the Envelope interface.
func (s *StreamMessage) Type() Type { return TypeStream }

// MarshalJSON implements json.Marshaler.
func (s *StreamMessage) MarshalJSON() ([]byte, error) {
	type alias StreamMessage

	return json.Marshal(struct {
		Type Type `json:"type"`
		*alias
	}{Type: TypeStream, alias: (*alias)(s)})
}

// ErrorDetail is the structured error carried by an ErrorMessage.
type ErrorDetail struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorMessage reports that a request could not be served.
type ErrorMessage struct {
	Header
	Error ErrorDetail `json:"error"`
}

// NewError creates an ErrorMessage correlated with the given request id.
func NewError(requestID, code, msg string) *ErrorMessage {
	return &ErrorMessage{
		Header: newHeader(requestID),
		Error: ErrorDetail{
			Code:    code,
			Message: msg,
		},
	}
}

// WithDetail sets a detail entry and returns the message for chaining.
func (e *ErrorMessage) WithDetail(key string, value any) *ErrorMessage {
	if e.Error.Details == nil {
		e.Error.Details = make(map[string]any, 2)
	}

	e.Error.Details[key] = value

	return e
}

// Type implements the Envelope interface.
func (e *ErrorMessage) Type() Type { return TypeError }

// MarshalJSON implements json.Marshaler.
func (e *ErrorMessage) MarshalJSON() ([]byte, error) {
	type alias ErrorMessage

	return json.Marshal(struct {
		Type Type `json:"type"`
		*alias
	}{Type: TypeError, alias: (*alias)(e)})
}

// SystemMessage carries out-of-band signals such as heartbeats or config pushes.
type SystemMessage struct {
	Header
	Action  string         `json:"action"`
	Payload map[string]any `json:"payload,omitempty"`
}

// NewSystem creates a SystemMessage with a fresh id.
func NewSystem(action string, payload map[string]any) *SystemMessage {
	return &SystemMessage{
		Header:  newHeader(NewID()),
		Action:  action,
		Payload: payload,
	}
}

// Type implements the Envelope interface.
func (s *SystemMessage) Type() Type { return TypeSystem }

// MarshalJSON implements json.Marshaler.
func (s *SystemMessage) MarshalJSON() ([]byte, error) {
	type alias SystemMessage

	return json.Marshal(struct {
		Type Type `json:"type"`
		*alias
	}{Type: TypeSystem, alias: (*alias)(s)})
}

// IsTerminal reports whether env ends the exchange for its request id.
func IsTerminal(env Envelope) bool {
	switch m := env.(type) {
	case *Response, *ErrorMessage:
		return true
	case *StreamMessage:
		return m.IsComplete
	default:
		return false
	}
}
