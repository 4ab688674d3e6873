package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wagiedev/agent-protocol-go"
)

var runCmd = &cobra.Command{
	Use:   "run <instruction...>",
	Short: "Run an agent instruction and stream its progress",
	Long: `Run an agent instruction in the workspace and stream its output.

Press Ctrl-C to cancel the operation; the command stops at its next safe point.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		rt, err := newRuntime()
		if err != nil {
			return err
		}
		defer rt.Close()

		req := agentproto.NewExecuteRequest(strings.Join(args, " "))

		for env := range rt.Stream(ctx, req) {
			switch m := env.(type) {
			case *agentproto.SystemMessage:
				if verbose {
					fmt.Fprintf(cmd.ErrOrStderr(), "[%s] %v\n", m.Action, m.Payload)
				}
			case *agentproto.StreamMessage:
				if m.IsComplete {
					if strings.HasPrefix(m.Content, "Error:") {
						return fmt.Errorf("%s", strings.TrimSpace(strings.TrimPrefix(m.Content, "Error:")))
					}

					fmt.Fprintf(cmd.ErrOrStderr(), "-- %s\n", m.Content)

					continue
				}

				fmt.Fprintln(cmd.OutOrStdout(), m.Content)
			default:
				if err := printEnvelope(cmd, env); err != nil {
					return err
				}
			}
		}

		return nil
	},
}
