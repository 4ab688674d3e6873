// Package agentproto provides an in-process runtime for an AI-assistant
// tool-use protocol.
//
// The runtime defines a message envelope model (requests, responses, stream
// deltas, errors and system signals) and a dispatcher that routes each
// request either to a local capability handler or to an externally
// configured MCP server. A built-in agent service registers file, command
// and directory tools plus long-running "agent" operations that can be
// cancelled out of band.
//
// # Basic Usage
//
// Create a Runtime and dispatch a tool call:
//
//	rt, err := agentproto.New(
//	    agentproto.WithLogger(slog.Default()),
//	    agentproto.WithWorkspaceRoot("."),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close()
//
//	env := rt.Dispatch(ctx, agentproto.NewToolCallRequest("file_read", map[string]any{
//	    "filePath": "README.md",
//	}))
//
//	switch m := env.(type) {
//	case *agentproto.Response:
//	    fmt.Println(m.Content)
//	case *agentproto.ErrorMessage:
//	    fmt.Println(m.Error.Code, m.Error.Message)
//	}
//
// # Streaming
//
// Long-running agent operations report progress as stream deltas. The first
// event is a SystemMessage announcing the operation id, which can be used
// to cancel the operation from another goroutine:
//
//	for env := range rt.Stream(ctx, agentproto.NewExecuteRequest("make test")) {
//	    switch m := env.(type) {
//	    case *agentproto.SystemMessage:
//	        opID := m.Payload["operationId"]
//	        ...
//	    case *agentproto.StreamMessage:
//	        fmt.Print(m.Content)
//	    }
//	}
//
// # Routing
//
// A request with ServerName set is forwarded to that server and never falls
// back to local handling. Otherwise the capability key is taken from the
// explicit Capability field, the pending tool call ("tool:<name>"), or the
// context's agent action ("agent:<action>"). Routing failures produce
// ErrorMessage envelopes; failures inside built-in tools and agent actions
// are reported as Response content beginning with "Error: ".
//
// # External Servers
//
// Servers are registered in the Registry and reached over MCP:
//
//	err := rt.Registry().Upsert(ctx, agentproto.ServerDescriptor{
//	    Name:     "search",
//	    Endpoint: "https://search.example.com/mcp",
//	    AuthType: agentproto.AuthBearer,
//	    AuthDetails: &agentproto.AuthDetails{Token: token},
//	    IsActive: true,
//	})
//
//	req := agentproto.NewToolCallRequest("web_search", map[string]any{"q": "golang"})
//	req.ServerName = "search"
//	env := rt.Dispatch(ctx, req)
package agentproto
