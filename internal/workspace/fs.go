package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"

	"github.com/wagiedev/agent-protocol-go/internal/agent"
)

// ErrOutsideRoot indicates a path resolves outside the workspace root.
var ErrOutsideRoot = errors.New("path escapes workspace root")

// Compile-time verification that FS implements agent.Workspace.
var _ agent.Workspace = (*FS)(nil)

// FS is a Workspace rooted at a directory.
// Relative paths are resolved against the root; absolute paths must lie inside it.
type FS struct {
	log  *slog.Logger
	root string
}

// NewFS creates an FS rooted at dir.
func NewFS(log *slog.Logger, dir string) (*FS, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace root: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat workspace root: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("workspace root %s is not a directory", abs)
	}

	return &FS{
		log:  log.With("component", "workspace"),
		root: abs,
	}, nil
}

// Root returns the absolute workspace root.
func (w *FS) Root() string {
	return w.root
}

// ReadFile returns the contents of a file.
func (w *FS) ReadFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel, err := w.resolve(path)
	if err != nil {
		return "", err
	}

	root, err := os.OpenRoot(w.root)
	if err != nil {
		return "", fmt.Errorf("open workspace root: %w", err)
	}
	defer root.Close()

	data, err := root.ReadFile(rel)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// WriteFile writes content to a file, creating parent directories as needed.
func (w *FS) WriteFile(ctx context.Context, path, content string, appendMode bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	rel, err := w.resolve(path)
	if err != nil {
		return err
	}

	root, err := os.OpenRoot(w.root)
	if err != nil {
		return fmt.Errorf("open workspace root: %w", err)
	}
	defer root.Close()

	if dir := filepath.Dir(rel); dir != "." {
		if err := root.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent directory: %w", err)
		}
	}

	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendMode {
		flags = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	f, err := root.OpenFile(rel, flags, 0o644)
	if err != nil {
		return err
	}

	if _, err := io.WriteString(f, content); err != nil {
		_ = f.Close()

		return err
	}

	w.log.Debug("Wrote file", "path", rel, "bytes", len(content), "append", appendMode)

	return f.Close()
}

// ListDirectory returns the entries of a directory sorted by name.
func (w *FS) ListDirectory(ctx context.Context, path string) ([]agent.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel, err := w.resolve(path)
	if err != nil {
		return nil, err
	}

	root, err := os.OpenRoot(w.root)
	if err != nil {
		return nil, fmt.Errorf("open workspace root: %w", err)
	}
	defer root.Close()

	dir, err := root.Open(rel)
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	dirEntries, err := dir.ReadDir(-1)
	if err != nil {
		return nil, err
	}

	entries := make([]agent.Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entries = append(entries, agent.Entry{Name: de.Name(), IsDirectory: de.IsDir()})
	}

	slices.SortFunc(entries, func(a, b agent.Entry) int {
		return strings.Compare(a.Name, b.Name)
	})

	return entries, nil
}

// RunCommand runs a command line with sh -c and returns its combined output.
// cwd is resolved like any other path; empty means the root.
func (w *FS) RunCommand(ctx context.Context, command, cwd string) (string, error) {
	dir := w.root

	if cwd != "" {
		rel, err := w.resolve(cwd)
		if err != nil {
			return "", err
		}

		dir = filepath.Join(w.root, rel)
	}

	w.log.Debug("Running command", "command", command, "cwd", dir)

	//nolint:gosec // G204: running caller-supplied commands is the purpose of this tool
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir

	out, err := cmd.CombinedOutput()
	if err != nil {
		if exitErr, ok := errors.AsType[*exec.ExitError](err); ok {
			return "", fmt.Errorf("exit status %d: %s", exitErr.ExitCode(), strings.TrimSpace(string(out)))
		}

		return "", err
	}

	return string(out), nil
}

// resolve maps path to a slash-free relative path inside the root.
func (w *FS) resolve(path string) (string, error) {
	if path == "" {
		return ".", nil
	}

	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(w.root, filepath.Clean(path))
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
		}

		path = rel
	}

	path = filepath.Clean(path)
	if !filepath.IsLocal(path) && path != "." {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}

	return path, nil
}
