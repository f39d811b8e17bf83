package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/familyguardian/guardian/internal/core"
)

// DB wraps the SQLite database connection
type DB struct {
	conn     *sql.DB
	path     string
	isMemory bool
}

// Config for database initialization
type Config struct {
	Path     string // Path to database file
	InMemory bool   // Use in-memory database (for testing)
}

// Open opens or creates a SQLite database and applies pending migrations
func Open(cfg Config) (*DB, error) {
	var dsn string

	if cfg.InMemory {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o700); err != nil {
			return nil, fmt.Errorf("%w: create directory: %w", core.ErrStorageUnavailable, err)
		}
		dsn = cfg.Path
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open database: %w", core.ErrStorageUnavailable, err)
	}

	// One connection serializes writers and keeps a :memory: database alive.
	conn.SetMaxOpenConns(1)

	if !cfg.InMemory {
		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%w: enable WAL: %w", core.ErrStorageUnavailable, err)
		}
	}

	db := &DB{conn: conn, path: cfg.Path, isMemory: cfg.InMemory}
	if err := db.Migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file, empty for in-memory databases
func (db *DB) Path() string {
	if db.isMemory {
		return ""
	}
	return db.path
}

// Transaction executes fn within a transaction, rolling back on error
func (db *DB) Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %w", core.ErrStorageUnavailable, err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %w", core.ErrStorageUnavailable, err)
	}
	return nil
}

// SQLiteCollection stores a collection as one JSON document row in the
// collections table
type SQLiteCollection[T any] struct {
	db   *DB
	name string
	mu   sync.Mutex
}

// NewSQLiteCollection binds a collection to db, seeding defaults when the
// row does not exist yet
func NewSQLiteCollection[T any](db *DB, name string, defaults []T) (*SQLiteCollection[T], error) {
	data, err := encode(defaults)
	if err != nil {
		return nil, fmt.Errorf("%w: encode defaults: %w", core.ErrStorageUnavailable, err)
	}

	_, err = db.conn.Exec(
		`INSERT OR IGNORE INTO collections (name, data, updated_at) VALUES (?, ?, ?)`,
		name, string(data), time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: seed %s: %w", core.ErrStorageUnavailable, name, err)
	}

	return &SQLiteCollection[T]{db: db, name: name}, nil
}

// Name returns the collection name
func (c *SQLiteCollection[T]) Name() string { return c.name }

// LoadAll reads the collection document
func (c *SQLiteCollection[T]) LoadAll(ctx context.Context) ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var items []T
	err := c.db.Transaction(ctx, func(tx *sql.Tx) error {
		var err error
		items, err = c.load(ctx, tx)
		return err
	})
	return items, err
}

// SaveAll replaces the collection document
func (c *SQLiteCollection[T]) SaveAll(ctx context.Context, items []T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.db.Transaction(ctx, func(tx *sql.Tx) error {
		return c.save(ctx, tx, items)
	})
}

// Mutate performs read-modify-write inside a single transaction
func (c *SQLiteCollection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.db.Transaction(ctx, func(tx *sql.Tx) error {
		items, err := c.load(ctx, tx)
		if err != nil {
			return err
		}
		updated, err := fn(items)
		if err != nil {
			return err
		}
		return c.save(ctx, tx, updated)
	})
}

func (c *SQLiteCollection[T]) load(ctx context.Context, tx *sql.Tx) ([]T, error) {
	var data string
	err := tx.QueryRowContext(ctx, `SELECT data FROM collections WHERE name = ?`, c.name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load %s: %w", core.ErrStorageUnavailable, c.name, err)
	}
	return decode[T]([]byte(data))
}

func (c *SQLiteCollection[T]) save(ctx context.Context, tx *sql.Tx, items []T) error {
	data, err := encode(items)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", core.ErrStorageUnavailable, c.name, err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO collections (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, c.name, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%w: save %s: %w", core.ErrStorageUnavailable, c.name, err)
	}
	return nil
}
