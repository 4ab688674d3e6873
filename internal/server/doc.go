// Package server holds the registry of external protocol servers.
//
// The registry is a convergent set of Descriptors keyed by name. Every
// operation loads the full list from a Store, mutates it in memory and writes
// the full list back. A registry-level mutex serializes that cycle within one
// process; callers sharing a Store across processes get no isolation.
package server
