// Package message provides the envelope family exchanged by the protocol
// runtime and the value types carried inside it.
//
// Every envelope is one of five variants (Request, Response, StreamMessage,
// ErrorMessage, SystemMessage). The variant's Type is fixed by its Go type, so
// a tag cannot be reassigned once constructed. Consumers switch on the
// concrete type or on Type(); Parse and Decode reject unknown tags instead of
// skipping them.
package message
