// Package workspace provides local implementations of the agent collaborators.
//
// FS performs file and command operations confined to a root directory.
// Shell executes agent instructions as shell commands, streaming each output
// line as progress and stopping when the operation is cancelled.
package workspace
