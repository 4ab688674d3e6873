package agent

import "context"

// Entry is one item returned by Workspace.ListDirectory.
type Entry struct {
	Name        string `json:"name"`
	IsDirectory bool   `json:"isDirectory"`
}

// Workspace performs the file and command operations behind the tool catalog.
type Workspace interface {
	ReadFile(ctx context.Context, path string) (string, error)
	WriteFile(ctx context.Context, path, content string, appendMode bool) error
	RunCommand(ctx context.Context, command, cwd string) (string, error)
	ListDirectory(ctx context.Context, path string) ([]Entry, error)
}

// ExecuteOptions are the callbacks handed to an Executor.
type ExecuteOptions struct {
	// OnProgress reports progress text. Calls must be made in the order
	// the progress happened.
	OnProgress func(progress string)

	// CheckCancellation reports whether the operation was cancelled.
	// Executors poll it at their own safe points and stop when it returns
	// true; nothing interrupts them otherwise.
	CheckCancellation func() bool
}

// ExecuteResult is the outcome of a finished execution.
type ExecuteResult struct {
	Message string
}

// Executor runs long-lived agent instructions.
type Executor interface {
	Execute(ctx context.Context, instruction string, opts ExecuteOptions) (ExecuteResult, error)
}
