package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrSnapshotNotFound indicates the named snapshot does not exist on the target.
var ErrSnapshotNotFound = errors.New("backup: snapshot not found")

// Target is a storage backend for snapshot archives. Archives stream through
// io.Reader/io.Writer so large datasets do not require double buffering at
// this layer.
type Target interface {
	// Put stores an archive under name.
	Put(ctx context.Context, name string, r io.Reader) error

	// Get writes the named archive to w.
	Get(ctx context.Context, name string, w io.Writer) error

	// List returns the stored archive names, sorted.
	List(ctx context.Context) ([]string, error)
}

// FSTarget stores archives as files in a directory.
type FSTarget struct {
	root string
}

var _ Target = (*FSTarget)(nil)

// NewFSTarget creates the directory if needed.
func NewFSTarget(root string) (*FSTarget, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return nil, fmt.Errorf("backup: creating target directory: %w", err)
	}
	return &FSTarget{root: root}, nil
}

// Put implements Target. The archive is written to a temp file and renamed so
// a crash never leaves a half-written snapshot under its final name.
func (t *FSTarget) Put(_ context.Context, name string, r io.Reader) error {
	tmp, err := os.CreateTemp(t.root, ".partial-*")
	if err != nil {
		return fmt.Errorf("backup: creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return fmt.Errorf("backup: writing archive: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(t.root, name))
}

// Get implements Target.
func (t *FSTarget) Get(_ context.Context, name string, w io.Writer) error {
	f, err := os.Open(filepath.Join(t.root, name))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}

// List implements Target.
func (t *FSTarget) List(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(t.root)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// MemoryTarget holds archives in memory. Use in tests.
type MemoryTarget struct {
	mu       sync.Mutex
	archives map[string][]byte
}

var _ Target = (*MemoryTarget)(nil)

// NewMemoryTarget creates an empty MemoryTarget.
func NewMemoryTarget() *MemoryTarget {
	return &MemoryTarget{archives: make(map[string][]byte)}
}

// Put implements Target.
func (t *MemoryTarget) Put(_ context.Context, name string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.archives[name] = data
	return nil
}

// Get implements Target.
func (t *MemoryTarget) Get(_ context.Context, name string, w io.Writer) error {
	t.mu.Lock()
	data, ok := t.archives[name]
	t.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	_, err := w.Write(data)
	return err
}

// List implements Target.
func (t *MemoryTarget) List(_ context.Context) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.archives))
	for name := range t.archives {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
