package agentproto

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wagiedev/agent-protocol-go/internal/message"
)

// Tool is a custom capability served alongside the built-in catalog.
//
// Registered tools are routed like any other "tool:<name>" capability and
// are included in Runtime.Tools, so they are also served by Runtime.Serve.
//
// Example:
//
//	tool := agentproto.NewTool(
//	    "calculator",
//	    "Performs basic arithmetic operations",
//	    map[string]any{
//	        "type": "object",
//	        "properties": map[string]any{
//	            "a": map[string]any{"type": "number"},
//	            "b": map[string]any{"type": "number"},
//	        },
//	        "required": []string{"a", "b"},
//	    },
//	    func(ctx context.Context, input map[string]any) (map[string]any, error) {
//	        a, _ := input["a"].(float64)
//	        b, _ := input["b"].(float64)
//
//	        return map[string]any{"sum": a + b}, nil
//	    },
//	)
//
//	runtime.RegisterTool(tool)
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description.
	Description() string

	// InputSchema returns a JSON schema describing expected input.
	InputSchema() map[string]any

	// Execute runs the tool with the provided input.
	Execute(ctx context.Context, input map[string]any) (map[string]any, error)
}

// ToolFunc is a function-based tool implementation.
type ToolFunc func(ctx context.Context, input map[string]any) (map[string]any, error)

// NewTool creates a Tool from a function.
func NewTool(name, description string, schema map[string]any, fn ToolFunc) Tool {
	return &tool{
		name:        name,
		description: description,
		schema:      schema,
		fn:          fn,
	}
}

// tool is the internal tool implementation.
type tool struct {
	name        string
	description string
	schema      map[string]any
	fn          ToolFunc
}

// Compile-time verification that *tool implements the Tool interface.
var _ Tool = (*tool)(nil)

func (t *tool) Name() string                { return t.name }
func (t *tool) Description() string         { return t.description }
func (t *tool) InputSchema() map[string]any { return t.schema }
func (t *tool) Execute(ctx context.Context, input map[string]any) (map[string]any, error) {
	return t.fn(ctx, input)
}

// toolDefinition converts a Tool into its catalog entry.
func toolDefinition(t Tool) message.Tool {
	return message.Tool{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  mapToJSONSchema(t.InputSchema()),
	}
}

// toolHandler adapts Tool.Execute to a protocol handler.
//
// Failures follow the built-in tool convention and are reported as response
// content prefixed with "Error: ". Results are serialized as JSON.
func toolHandler(t Tool) Handler {
	return func(ctx context.Context, req *message.Request) (*message.Response, error) {
		call, _ := req.PendingToolCall()

		fail := func(err error) (*message.Response, error) {
			call.Status = message.ToolCallError
			call.Result = "Error: " + err.Error()

			resp := message.NewResponse(req.ID, call.Result)
			resp.ToolCalls = []message.ToolCall{call}

			return resp, nil
		}

		args, err := call.Arguments.Map()
		if err != nil {
			return fail(fmt.Errorf("failed to parse arguments: %w", err))
		}

		result, err := t.Execute(ctx, args)
		if err != nil {
			return fail(err)
		}

		data, err := json.Marshal(result)
		if err != nil {
			return fail(fmt.Errorf("failed to marshal result: %w", err))
		}

		call.Status = message.ToolCallSuccess
		call.Result = string(data)

		resp := message.NewResponse(req.ID, call.Result)
		resp.ToolCalls = []message.ToolCall{call}

		return resp, nil
	}
}

// mapToJSONSchema converts a map[string]any JSON schema to *jsonschema.Schema.
func mapToJSONSchema(m map[string]any) *jsonschema.Schema {
	if m == nil {
		return nil
	}

	data, err := json.Marshal(m)
	if err != nil {
		return nil
	}

	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil
	}

	return &schema
}
