package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/agent-protocol-go/internal/message"
)

// NewTool creates an mcp.Tool with the given parameters.
// A nil schema becomes an empty object schema, which MCP servers require.
func NewTool(name, description string, inputSchema *jsonschema.Schema) *mcp.Tool {
	if inputSchema == nil {
		inputSchema = &jsonschema.Schema{Type: "object"}
	}

	return &mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: inputSchema,
	}
}

// FromMessageTool converts a catalog tool into an MCP tool definition.
func FromMessageTool(tool message.Tool) *mcp.Tool {
	return NewTool(tool.Name, tool.Description, tool.Parameters)
}

// ToMessageTool converts an MCP tool definition into a catalog tool.
func ToMessageTool(tool *mcp.Tool) (message.Tool, error) {
	out := message.Tool{
		Name:        tool.Name,
		Description: tool.Description,
	}

	if tool.InputSchema == nil {
		return out, nil
	}

	if schema, ok := tool.InputSchema.(*jsonschema.Schema); ok {
		out.Parameters = schema

		return out, nil
	}

	data, err := json.Marshal(tool.InputSchema)
	if err != nil {
		return message.Tool{}, fmt.Errorf("encode input schema for %s: %w", tool.Name, err)
	}

	var schema jsonschema.Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return message.Tool{}, fmt.Errorf("decode input schema for %s: %w", tool.Name, err)
	}

	out.Parameters = &schema

	return out, nil
}
