package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/familyguardian/guardian/internal/core"
)

// FileCollection stores a collection as a pretty-printed JSON array in
// <dir>/<name>.json. Writes go to a temp file that is renamed over the
// original, so readers never see a half-written collection.
type FileCollection[T any] struct {
	name string
	path string
	mu   sync.Mutex
}

// NewFileCollection opens the collection file, creating it with defaults
// if it does not exist yet
func NewFileCollection[T any](dir, name string, defaults []T) (*FileCollection[T], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: ensure dir: %w", core.ErrStorageUnavailable, err)
	}

	c := &FileCollection[T]{
		name: name,
		path: filepath.Join(dir, name+".json"),
	}

	_, err := os.Stat(c.path)
	if errors.Is(err, os.ErrNotExist) {
		if err := c.saveUnlocked(defaults); err != nil {
			return nil, err
		}
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: stat %s: %w", core.ErrStorageUnavailable, c.path, err)
	}

	return c, nil
}

// Name returns the collection name
func (c *FileCollection[T]) Name() string { return c.name }

// Path returns the file backing the collection
func (c *FileCollection[T]) Path() string { return c.path }

// LoadAll reads every record from disk
func (c *FileCollection[T]) LoadAll(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadUnlocked()
}

// SaveAll overwrites the collection on disk
func (c *FileCollection[T]) SaveAll(ctx context.Context, items []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveUnlocked(items)
}

// Mutate performs a locked read-modify-write of the whole file
func (c *FileCollection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.loadUnlocked()
	if err != nil {
		return err
	}
	updated, err := fn(items)
	if err != nil {
		return err
	}
	return c.saveUnlocked(updated)
}

func (c *FileCollection[T]) loadUnlocked() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", core.ErrStorageUnavailable, c.path, err)
	}
	items, err := decode[T](data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.path, err)
	}
	return items, nil
}

func (c *FileCollection[T]) saveUnlocked(items []T) error {
	data, err := encode(items)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", core.ErrStorageUnavailable, c.name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(c.path), "."+c.name+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp: %w", core.ErrStorageUnavailable, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: write %s: %w", core.ErrStorageUnavailable, c.name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: sync %s: %w", core.ErrStorageUnavailable, c.name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", core.ErrStorageUnavailable, c.name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("%w: chmod %s: %w", core.ErrStorageUnavailable, c.name, err)
	}
	if err := os.Rename(tmpName, c.path); err != nil {
		return fmt.Errorf("%w: replace %s: %w", core.ErrStorageUnavailable, c.path, err)
	}
	return nil
}
