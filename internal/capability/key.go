// Package capability identifies which local handler serves a request.
//
// A Key is a closed variant: either a tool (Kind Tool) or an agent action
// (Kind Agent). Its String form ("tool:file_read", "agent:execute") is used in
// logs, error details and persisted configuration.
package capability

import (
	"fmt"
	"strings"

	"github.com/wagiedev/agent-protocol-go/internal/message"
)

// Kind is the category of a capability.
type Kind int

const (
	// KindTool is a tool from the tool catalog.
	KindTool Kind = iota + 1
	// KindAgent is an agent lifecycle action.
	KindAgent
)

// String returns the key prefix for the kind.
func (k Kind) String() string {
	switch k {
	case KindTool:
		return "tool"
	case KindAgent:
		return "agent"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Key identifies one local capability.
type Key struct {
	Kind Kind
	Name string
}

// Agent lifecycle actions.
var (
	AgentExecute = Agent("execute")
	AgentCancel  = Agent("cancel")
	AgentStatus  = Agent("status")
)

// Tool returns the key for a tool name.
func Tool(name string) Key {
	return Key{Kind: KindTool, Name: name}
}

// Agent returns the key for an agent action.
func Agent(action string) Key {
	return Key{Kind: KindAgent, Name: action}
}

// String returns the "kind:name" form.
func (k Key) String() string {
	return k.Kind.String() + ":" + k.Name
}

// Valid reports whether the key has a known kind and a name.
func (k Key) Valid() bool {
	return (k.Kind == KindTool || k.Kind == KindAgent) && k.Name != ""
}

// Parse converts a "kind:name" string into a Key.
func Parse(s string) (Key, error) {
	prefix, name, ok := strings.Cut(s, ":")
	if !ok || name == "" {
		return Key{}, fmt.Errorf("invalid capability key %q: want kind:name", s)
	}

	switch prefix {
	case "tool":
		return Tool(name), nil
	case "agent":
		return Agent(name), nil
	default:
		return Key{}, fmt.Errorf("invalid capability key %q: unknown kind %q", s, prefix)
	}
}

// Resolve derives the capability a request asks for. It checks in order:
//  1. The explicit Capability field
//  2. The pending tool call on the last message
//  3. Context.AgentAction
//
// Returns false if none applies or the explicit key is malformed.
func Resolve(req *message.Request) (Key, bool) {
	if req == nil {
		return Key{}, false
	}

	if req.Capability != "" {
		key, err := Parse(req.Capability)
		if err != nil {
			return Key{}, false
		}

		return key, true
	}

	if call, ok := req.PendingToolCall(); ok && call.Name != "" {
		return Tool(call.Name), true
	}

	if req.Context != nil && req.Context.AgentAction != "" {
		return Agent(req.Context.AgentAction), true
	}

	return Key{}, false
}
