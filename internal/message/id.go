package message

import "github.com/oklog/ulid/v2"

// NewID creates a unique, lexically sortable envelope id.
func NewID() string {
	return ulid.Make().String()
}
