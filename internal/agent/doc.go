// Package agent provides the built-in capability provider for the runtime.
//
// A Service registers a fixed tool catalog (file_read, file_write,
// run_command, list_directory) and the agent lifecycle actions (execute,
// cancel, status) with a protocol Controller. Tools delegate to a Workspace;
// execute delegates to an Executor and is tracked in an operation table so
// that it can be cancelled out of band.
//
// Failures inside these handlers are reported as RESPONSE content beginning
// with "Error: " rather than ERROR envelopes, so a chat transcript stays a
// flat sequence of request/response pairs. ERROR envelopes are reserved for
// routing failures.
package agent
