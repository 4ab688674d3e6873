package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wagiedev/agent-protocol-go"
)

var serversCmd = &cobra.Command{
	Use:   "servers",
	Short: "Manage external MCP servers",
}

var serversListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered servers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		rt, err := newRuntime(agentproto.WithoutAgentTools())
		if err != nil {
			return err
		}
		defer rt.Close()

		servers, err := rt.Registry().List(cmd.Context())
		if err != nil {
			return err
		}

		if len(servers) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No servers registered.")
			fmt.Fprintln(cmd.OutOrStdout(), "Run 'agentproto servers add <name> <endpoint>' to add one.")

			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tENDPOINT\tACTIVE\tPRIORITY\tAUTH\tCAPABILITIES")

		for _, s := range servers {
			fmt.Fprintf(w, "%s\t%s\t%t\t%d\t%s\t%s\n",
				s.Name, s.Endpoint, s.IsActive, s.Priority, s.AuthType, strings.Join(s.Capabilities, ","))
		}

		return w.Flush()
	},
}

var addFlags struct {
	priority     int
	capabilities []string
	auth         string
	apiKey       string
	header       string
	token        string
	clientID     string
	clientSecret string
	tokenURL     string
	scopes       []string
	inactive     bool
	description  string
}

var serversAddCmd = &cobra.Command{
	Use:   "add <name> <endpoint>",
	Short: "Add or replace a server",
	Long: `Add a server, replacing any existing server with the same name.

Endpoints may be an http(s) URL (streamable HTTP, or SSE when the path ends
in /sse) or "stdio:<command> [args...]" to launch a local server.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc := agentproto.ServerDescriptor{
			Name:         args[0],
			Endpoint:     args[1],
			Capabilities: addFlags.capabilities,
			AuthType:     agentproto.AuthType(addFlags.auth),
			IsActive:     !addFlags.inactive,
			Priority:     addFlags.priority,
			Description:  addFlags.description,
		}

		if desc.AuthType != agentproto.AuthNone {
			desc.AuthDetails = &agentproto.AuthDetails{
				APIKey:       addFlags.apiKey,
				HeaderName:   addFlags.header,
				Token:        addFlags.token,
				ClientID:     addFlags.clientID,
				ClientSecret: addFlags.clientSecret,
				TokenURL:     addFlags.tokenURL,
				Scopes:       addFlags.scopes,
			}
		}

		rt, err := newRuntime(agentproto.WithoutAgentTools())
		if err != nil {
			return err
		}
		defer rt.Close()

		if err := rt.Registry().Upsert(cmd.Context(), desc); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Saved server %q\n", desc.Name)

		return nil
	},
}

var serversRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(agentproto.WithoutAgentTools())
		if err != nil {
			return err
		}
		defer rt.Close()

		return rt.Registry().Remove(cmd.Context(), args[0])
	},
}

func setActiveCmd(use, short string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(agentproto.WithoutAgentTools())
			if err != nil {
				return err
			}
			defer rt.Close()

			return rt.Registry().SetActive(cmd.Context(), args[0], active)
		},
	}
}

var serversToolsCmd = &cobra.Command{
	Use:   "tools <name>",
	Short: "List the tools a server advertises",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(agentproto.WithoutAgentTools())
		if err != nil {
			return err
		}
		defer rt.Close()

		tools, err := rt.RemoteTools(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		printTools(cmd, tools)

		return nil
	},
}

func printTools(cmd *cobra.Command, tools []agentproto.ToolDefinition) {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TOOL\tDESCRIPTION")

	for _, t := range tools {
		fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Description)
	}

	_ = w.Flush()
}

func init() {
	f := serversAddCmd.Flags()
	f.IntVarP(&addFlags.priority, "priority", "p", 0, "Priority among servers sharing a capability (lower is preferred)")
	f.StringSliceVarP(&addFlags.capabilities, "capability", "c", nil, "Capability tag (repeatable)")
	f.StringVar(&addFlags.auth, "auth", string(agentproto.AuthNone), "Auth type: none, api_key, bearer, oauth2")
	f.StringVar(&addFlags.apiKey, "api-key", "", "API key for api_key auth")
	f.StringVar(&addFlags.header, "header", "", "Header name for api_key auth (default X-API-Key)")
	f.StringVar(&addFlags.token, "token", "", "Token for bearer auth")
	f.StringVar(&addFlags.clientID, "client-id", "", "Client ID for oauth2 auth")
	f.StringVar(&addFlags.clientSecret, "client-secret", "", "Client secret for oauth2 auth")
	f.StringVar(&addFlags.tokenURL, "token-url", "", "Token URL for oauth2 auth")
	f.StringSliceVar(&addFlags.scopes, "scope", nil, "Scope for oauth2 auth (repeatable)")
	f.BoolVar(&addFlags.inactive, "inactive", false, "Register the server without activating it")
	f.StringVarP(&addFlags.description, "description", "d", "", "Human-readable description")

	serversCmd.AddCommand(serversListCmd)
	serversCmd.AddCommand(serversAddCmd)
	serversCmd.AddCommand(serversRemoveCmd)
	serversCmd.AddCommand(setActiveCmd("activate", "Activate a server", true))
	serversCmd.AddCommand(setActiveCmd("deactivate", "Deactivate a server", false))
	serversCmd.AddCommand(serversToolsCmd)
}
