package server

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
)

// Registry manages named server descriptors on top of a Store.
type Registry struct {
	log   *slog.Logger
	store Store
	order Order

	// mu serializes the load-mutate-save cycle.
	mu sync.Mutex
}

// Option configures a Registry.
type Option func(*Registry)

// WithPriorityOrder sets the comparator used by Preferred.
func WithPriorityOrder(order Order) Option {
	return func(r *Registry) {
		if order != nil {
			r.order = order
		}
	}
}

// NewRegistry creates a registry over the given store.
// A nil store falls back to an empty MemoryStore.
func NewRegistry(log *slog.Logger, store Store, opts ...Option) *Registry {
	if store == nil {
		store = NewMemoryStore()
	}

	r := &Registry{
		log:   log.With("component", "server_registry"),
		store: store,
		order: Ascending,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// List returns every descriptor in stored order.
func (r *Registry) List(ctx context.Context) ([]Descriptor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.load(ctx)
}

// Get looks up a descriptor by name.
func (r *Registry) Get(ctx context.Context, name string) (Descriptor, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	servers, err := r.load(ctx)
	if err != nil {
		return Descriptor{}, false, err
	}

	idx := indexOf(servers, name)
	if idx < 0 {
		return Descriptor{}, false, nil
	}

	return servers[idx], true, nil
}

// Upsert replaces the descriptor with the same name in place, or appends it.
func (r *Registry) Upsert(ctx context.Context, desc Descriptor) error {
	if err := desc.Validate(); err != nil {
		return err
	}

	if desc.AuthType == "" {
		desc.AuthType = AuthNone
	}

	return r.mutate(ctx, func(servers []Descriptor) ([]Descriptor, bool) {
		if idx := indexOf(servers, desc.Name); idx >= 0 {
			r.log.Debug("Replacing server descriptor", "server", desc.Name)
			servers[idx] = desc.clone()

			return servers, true
		}

		r.log.Debug("Adding server descriptor", "server", desc.Name)

		return append(servers, desc.clone()), true
	})
}

// Remove deletes the descriptor with the given name.
// Removing an unknown name is a no-op.
func (r *Registry) Remove(ctx context.Context, name string) error {
	return r.mutate(ctx, func(servers []Descriptor) ([]Descriptor, bool) {
		idx := indexOf(servers, name)
		if idx < 0 {
			r.log.Debug("Remove of unknown server ignored", "server", name)

			return servers, false
		}

		r.log.Debug("Removing server descriptor", "server", name)

		return slices.Delete(servers, idx, idx+1), true
	})
}

// SetActive toggles the active flag of a descriptor.
// Unknown names are a no-op.
func (r *Registry) SetActive(ctx context.Context, name string, active bool) error {
	return r.mutate(ctx, func(servers []Descriptor) ([]Descriptor, bool) {
		idx := indexOf(servers, name)
		if idx < 0 {
			r.log.Debug("SetActive of unknown server ignored", "server", name)

			return servers, false
		}

		servers[idx].IsActive = active

		r.log.Debug("Set server active flag", "server", name, "active", active)

		return servers, true
	})
}

// Preferred returns the active servers advertising the capability tag,
// ordered by the registry's priority comparator. An empty tag matches all
// active servers.
func (r *Registry) Preferred(ctx context.Context, tag string) ([]Descriptor, error) {
	servers, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Descriptor, 0, len(servers))
	for _, d := range servers {
		if !d.IsActive {
			continue
		}

		if tag != "" && !d.HasCapability(tag) {
			continue
		}

		out = append(out, d)
	}

	slices.SortStableFunc(out, r.order)

	return out, nil
}

// load reads the full collection. Caller must hold r.mu.
func (r *Registry) load(ctx context.Context) ([]Descriptor, error) {
	servers, err := r.store.Load(ctx)
	if err != nil {
		r.log.Error("Failed to load server registry", "error", err)

		return nil, fmt.Errorf("load servers: %w", err)
	}

	return servers, nil
}

// mutate runs one load-mutate-save cycle. fn reports whether anything changed.
func (r *Registry) mutate(ctx context.Context, fn func([]Descriptor) ([]Descriptor, bool)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	servers, err := r.load(ctx)
	if err != nil {
		return err
	}

	servers, changed := fn(servers)
	if !changed {
		return nil
	}

	if err := r.store.Save(ctx, servers); err != nil {
		r.log.Error("Failed to save server registry", "error", err)

		return fmt.Errorf("save servers: %w", err)
	}

	return nil
}

func indexOf(servers []Descriptor, name string) int {
	return slices.IndexFunc(servers, func(d Descriptor) bool {
		return d.Name == name
	})
}
