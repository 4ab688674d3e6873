// Package errors defines error types for the agent protocol runtime.
//
// This package provides structured error types for the failure classes the
// runtime distinguishes: routing failures, handler failures, tool argument
// failures and unknown operations. All error types support unwrapping and
// can be checked using errors.Is, errors.As, and errors.AsType.
package errors
