package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Store persists the full descriptor list under one logical key.
type Store interface {
	Load(ctx context.Context) ([]Descriptor, error)
	Save(ctx context.Context, servers []Descriptor) error
}

// Compile-time verification that stores implement Store.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
)

// MemoryStore keeps descriptors in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	servers []Descriptor
}

// NewMemoryStore creates a store seeded with the given descriptors.
func NewMemoryStore(servers ...Descriptor) *MemoryStore {
	return &MemoryStore{servers: cloneAll(servers)}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context) ([]Descriptor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return cloneAll(s.servers), nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, servers []Descriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.servers = cloneAll(servers)

	return nil
}

// FileStore persists descriptors as a JSON array in a single file.
// A missing file loads as an empty list.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context) ([]Descriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return []Descriptor{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read server file: %w", err)
	}

	var servers []Descriptor
	if err := json.Unmarshal(data, &servers); err != nil {
		return nil, fmt.Errorf("decode server file %s: %w", s.path, err)
	}

	return servers, nil
}

// Save implements Store. The file is replaced atomically via rename.
func (s *FileStore) Save(ctx context.Context, servers []Descriptor) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if servers == nil {
		servers = []Descriptor{}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create server file directory: %w", err)
	}

	data, err := json.MarshalIndent(servers, "", "  ")
	if err != nil {
		return fmt.Errorf("encode servers: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write server file: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace server file: %w", err)
	}

	return nil
}

func cloneAll(servers []Descriptor) []Descriptor {
	out := make([]Descriptor, 0, len(servers))
	for _, d := range servers {
		out = append(out, d.clone())
	}

	return out
}
