// Package storage provides persistence for Family Guardian.
package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/familyguardian/guardian/internal/core"
)

// Collection is a durable list of records that is always read and written
// as a whole. Mutate runs a read-modify-write cycle under the collection's
// single writer lock; if fn returns an error nothing is written.
type Collection[T any] interface {
	Name() string
	LoadAll(ctx context.Context) ([]T, error)
	SaveAll(ctx context.Context, items []T) error
	Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error
}

// Collection names shared by every backend
const (
	AlertsCollection          = "alerts"
	SafeContactsCollection    = "safe-contacts"
	BlockedContactsCollection = "blocked-contacts"
)

// MemoryCollection keeps a collection in process memory.
// Used by tests and by callers that do not need durability.
type MemoryCollection[T any] struct {
	name  string
	data  []byte
	mu    sync.Mutex
	fault error
}

// NewMemoryCollection creates an in-memory collection seeded with defaults
func NewMemoryCollection[T any](name string, defaults []T) *MemoryCollection[T] {
	c := &MemoryCollection[T]{name: name}
	c.data, _ = encode(defaults)
	return c
}

// Name returns the collection name
func (c *MemoryCollection[T]) Name() string { return c.name }

// FailWith makes every subsequent operation fail with err; nil clears it
func (c *MemoryCollection[T]) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fault = err
}

// LoadAll returns a copy of every record
func (c *MemoryCollection[T]) LoadAll(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadUnlocked(ctx)
}

// SaveAll replaces the collection
func (c *MemoryCollection[T]) SaveAll(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveUnlocked(ctx, items)
}

// Mutate runs fn against the current records and stores the result
func (c *MemoryCollection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	items, err := c.loadUnlocked(ctx)
	if err != nil {
		return err
	}
	updated, err := fn(items)
	if err != nil {
		return err
	}
	return c.saveUnlocked(ctx, updated)
}

func (c *MemoryCollection[T]) loadUnlocked(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if c.fault != nil {
		return nil, fmt.Errorf("%w: load %s: %w", core.ErrStorageUnavailable, c.name, c.fault)
	}
	return decode[T](c.data)
}

func (c *MemoryCollection[T]) saveUnlocked(ctx context.Context, items []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.fault != nil {
		return fmt.Errorf("%w: save %s: %w", core.ErrStorageUnavailable, c.name, c.fault)
	}
	data, err := encode(items)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", core.ErrStorageUnavailable, c.name, err)
	}
	c.data = data
	return nil
}

// encode renders a collection as an indented JSON array; nil becomes []
func encode[T any](items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	return json.MarshalIndent(items, "", "  ")
}

func decode[T any](data []byte) ([]T, error) {
	items := []T{}
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: decode: %w", core.ErrStorageUnavailable, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
