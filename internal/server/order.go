package server

import (
	"cmp"
	"strings"
)

// Order compares two descriptors for preference. It returns a negative number
// when a is preferred over b, as slices.SortStableFunc expects.
type Order func(a, b Descriptor) int

// Ascending prefers lower Priority values. It is the default order.
func Ascending(a, b Descriptor) int {
	if c := cmp.Compare(a.Priority, b.Priority); c != 0 {
		return c
	}

	return strings.Compare(a.Name, b.Name)
}

// Descending prefers higher Priority values.
func Descending(a, b Descriptor) int {
	if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
		return c
	}

	return strings.Compare(a.Name, b.Name)
}
