package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wagiedev/agent-protocol-go"
)

var (
	callArgs   []string
	callJSON   string
	callServer string
)

var callCmd = &cobra.Command{
	Use:   "call <tool>",
	Short: "Call a tool locally or on a registered server",
	Example: `  agentproto call file_read --arg filePath=README.md
  agentproto call list_directory --json '{"dirPath": "."}'
  agentproto call web_search --server search --arg q=golang`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := toolInput(callJSON, callArgs)
		if err != nil {
			return err
		}

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		req := agentproto.NewToolCallRequest(args[0], input)
		req.ServerName = callServer

		return printEnvelope(cmd, rt.Dispatch(cmd.Context(), req))
	},
}

// toolInput merges a JSON object with key=value pairs. Values that parse as
// JSON (numbers, booleans, objects) keep their type; anything else is a string.
func toolInput(rawJSON string, pairs []string) (map[string]any, error) {
	input := make(map[string]any, len(pairs))

	if rawJSON != "" {
		if err := json.Unmarshal([]byte(rawJSON), &input); err != nil {
			return nil, fmt.Errorf("parse --json: %w", err)
		}
	}

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --arg %q: want key=value", pair)
		}

		var decoded any
		if err := json.Unmarshal([]byte(value), &decoded); err == nil {
			input[key] = decoded
		} else {
			input[key] = value
		}
	}

	return input, nil
}

// printEnvelope writes a terminal envelope and turns ERROR envelopes into a command error.
func printEnvelope(cmd *cobra.Command, env agentproto.Envelope) error {
	switch m := env.(type) {
	case *agentproto.Response:
		fmt.Fprintln(cmd.OutOrStdout(), m.Content)
	case *agentproto.StreamMessage:
		fmt.Fprintln(cmd.OutOrStdout(), m.Content)
	case *agentproto.ErrorMessage:
		return fmt.Errorf("%s: %s", m.Error.Code, m.Error.Message)
	default:
		return fmt.Errorf("unexpected %T reply", env)
	}

	return nil
}

func init() {
	callCmd.Flags().StringArrayVarP(&callArgs, "arg", "a", nil, "Tool argument as key=value (repeatable)")
	callCmd.Flags().StringVar(&callJSON, "json", "", "Tool arguments as a JSON object")
	callCmd.Flags().StringVarP(&callServer, "server", "s", "", "Forward to this registered server instead of running locally")
}
