package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wagiedev/agent-protocol-go"
	"github.com/wagiedev/agent-protocol-go/internal/config"
)

var (
	serversFile   string
	workspaceRoot string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "agentproto",
	Short: "Agent protocol runtime - route tool calls locally or to MCP servers",
	Long: `agentproto runs the agent tool-use protocol from the command line.

It dispatches tool calls and agent instructions to the built-in workspace
tools, forwards them to registered MCP servers, and can serve the local
tool catalog to any MCP client over stdio.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serversFile, "servers", "", "Server registry file (default $AGENTPROTO_HOME/servers.json)")
	rootCmd.PersistentFlags().StringVarP(&workspaceRoot, "workspace", "w", "", "Workspace root for built-in tools (default current directory)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	rootCmd.AddCommand(serversCmd)
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(capabilitiesCmd)
}

// newLogger logs to stderr so stdout stays free for command output.
func newLogger() *slog.Logger {
	if !verbose {
		return agentproto.NopLogger()
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func registryPath() string {
	if serversFile != "" {
		return serversFile
	}

	return config.ServersPath()
}

// newRuntime builds a Runtime from the global flags.
func newRuntime(opts ...agentproto.Option) (*agentproto.Runtime, error) {
	base := []agentproto.Option{
		agentproto.WithLogger(newLogger()),
		agentproto.WithServerFile(registryPath()),
		agentproto.WithClientInfo("agentproto", version),
	}

	if workspaceRoot != "" {
		base = append(base, agentproto.WithWorkspaceRoot(workspaceRoot))
	}

	return agentproto.New(append(base, opts...)...)
}

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"
