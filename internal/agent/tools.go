package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/jsonschema-go/jsonschema"

	protoerrors "github.com/wagiedev/agent-protocol-go/internal/errors"
	"github.com/wagiedev/agent-protocol-go/internal/message"
	"github.com/wagiedev/agent-protocol-go/internal/protocol"
)

// Tool names in the built-in catalog.
const (
	ToolFileRead      = "file_read"
	ToolFileWrite     = "file_write"
	ToolRunCommand    = "run_command"
	ToolListDirectory = "list_directory"
)

type toolDef struct {
	tool    message.Tool
	handler protocol.Handler
}

func (s *Service) tools() []toolDef {
	return []toolDef{
		{
			tool: message.Tool{
				Name:        ToolFileRead,
				Description: "Read the contents of a file",
				Parameters: objectSchema(map[string]*jsonschema.Schema{
					"filePath": {Type: "string", Description: "Path of the file to read"},
				}, "filePath"),
			},
			handler: s.fileRead,
		},
		{
			tool: message.Tool{
				Name:        ToolFileWrite,
				Description: "Write content to a file, replacing it or appending to it",
				Parameters: objectSchema(map[string]*jsonschema.Schema{
					"filePath": {Type: "string", Description: "Path of the file to write"},
					"content":  {Type: "string", Description: "Content to write"},
					"append":   {Type: "boolean", Description: "Append instead of overwriting"},
				}, "filePath", "content"),
			},
			handler: s.fileWrite,
		},
		{
			tool: message.Tool{
				Name:        ToolRunCommand,
				Description: "Run a shell command and return its output",
				Parameters: objectSchema(map[string]*jsonschema.Schema{
					"command": {Type: "string", Description: "Command line to run"},
					"cwd":     {Type: "string", Description: "Working directory for the command"},
				}, "command"),
			},
			handler: s.runCommand,
		},
		{
			tool: message.Tool{
				Name:        ToolListDirectory,
				Description: "List the entries of a directory",
				Parameters: objectSchema(map[string]*jsonschema.Schema{
					"dirPath": {Type: "string", Description: "Path of the directory to list"},
				}, "dirPath"),
			},
			handler: s.listDirectory,
		},
	}
}

func objectSchema(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

func (s *Service) fileRead(ctx context.Context, req *message.Request) (*message.Response, error) {
	call, args, err := toolArguments(req, ToolFileRead)
	if err != nil {
		return nil, err
	}

	path, err := requiredString(args, ToolFileRead, "filePath")
	if err != nil {
		return nil, err
	}

	if s.workspace == nil {
		return nil, errNoWorkspace
	}

	content, err := s.workspace.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return toolResponse(req, call, content), nil
}

func (s *Service) fileWrite(ctx context.Context, req *message.Request) (*message.Response, error) {
	call, args, err := toolArguments(req, ToolFileWrite)
	if err != nil {
		return nil, err
	}

	path, err := requiredString(args, ToolFileWrite, "filePath")
	if err != nil {
		return nil, err
	}

	content, ok := args["content"].(string)
	if !ok {
		return nil, &protoerrors.ToolArgumentError{Tool: ToolFileWrite, Argument: "content"}
	}

	appendMode := optionalBool(args, "append")

	if s.workspace == nil {
		return nil, errNoWorkspace
	}

	if err := s.workspace.WriteFile(ctx, path, content, appendMode); err != nil {
		return nil, fmt.Errorf("write %s: %w", path, err)
	}

	verb := "wrote"
	if appendMode {
		verb = "appended"
	}

	return toolResponse(req, call, fmt.Sprintf("Successfully %s %d bytes to %s", verb, len(content), path)), nil
}

func (s *Service) runCommand(ctx context.Context, req *message.Request) (*message.Response, error) {
	call, args, err := toolArguments(req, ToolRunCommand)
	if err != nil {
		return nil, err
	}

	command, err := requiredString(args, ToolRunCommand, "command")
	if err != nil {
		return nil, err
	}

	cwd, _ := args["cwd"].(string)

	if s.workspace == nil {
		return nil, errNoWorkspace
	}

	output, err := s.workspace.RunCommand(ctx, command, cwd)
	if err != nil {
		return nil, fmt.Errorf("run command: %w", err)
	}

	return toolResponse(req, call, output), nil
}

func (s *Service) listDirectory(ctx context.Context, req *message.Request) (*message.Response, error) {
	call, args, err := toolArguments(req, ToolListDirectory)
	if err != nil {
		return nil, err
	}

	path, err := requiredString(args, ToolListDirectory, "dirPath")
	if err != nil {
		return nil, err
	}

	if s.workspace == nil {
		return nil, errNoWorkspace
	}

	entries, err := s.workspace.ListDirectory(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}

	if entries == nil {
		entries = []Entry{}
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("encode entries: %w", err)
	}

	return toolResponse(req, call, string(data)), nil
}

// toolArguments returns the pending tool call and its decoded arguments.
func toolArguments(req *message.Request, tool string) (message.ToolCall, map[string]any, error) {
	call, ok := req.PendingToolCall()
	if !ok {
		return message.ToolCall{}, nil, fmt.Errorf("%w: no pending %s tool call", protoerrors.ErrInvalidRequest, tool)
	}

	args, err := call.Arguments.Map()
	if err != nil {
		return call, nil, fmt.Errorf("%w: %s arguments: %v", protoerrors.ErrInvalidRequest, tool, err)
	}

	return call, args, nil
}

func requiredString(args map[string]any, tool, name string) (string, error) {
	value, ok := args[name].(string)
	if !ok || value == "" {
		return "", &protoerrors.ToolArgumentError{Tool: tool, Argument: name}
	}

	return value, nil
}

func optionalBool(args map[string]any, name string) bool {
	switch v := args[name].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)

		return b
	default:
		return false
	}
}

// toolResponse builds the response for a completed tool call.
func toolResponse(req *message.Request, call message.ToolCall, content string) *message.Response {
	call.Status = message.ToolCallSuccess
	call.Result = content

	resp := message.NewResponse(req.ID, content)
	resp.ToolCalls = []message.ToolCall{call}

	return resp
}
