package storage

import (
	"fmt"
	"path/filepath"

	"github.com/familyguardian/guardian/internal/core"
)

// Backend selects where collections are persisted
type Backend string

const (
	BackendFile   Backend = "file"
	BackendSQLite Backend = "sqlite"
	BackendMemory Backend = "memory"
)

// DatabaseFile is the SQLite file name inside the data directory
const DatabaseFile = "guardian.db"

// Stores bundles the alert and contact stores over one backend
type Stores struct {
	Alerts   *AlertStore
	Contacts *ContactStore

	db *DB
}

// OpenStores opens all collections for the given backend under dataDir.
// Missing collections are created with their defaults.
func OpenStores(backend Backend, dataDir string) (*Stores, error) {
	switch backend {
	case BackendFile, "":
		return openFileStores(dataDir)
	case BackendSQLite:
		return openSQLiteStores(dataDir)
	case BackendMemory:
		return NewMemoryStores(), nil
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", core.ErrInvalidInput, backend)
	}
}

// NewMemoryStores creates stores backed by process memory
func NewMemoryStores() *Stores {
	return &Stores{
		Alerts: NewAlertStore(NewMemoryCollection[core.Alert](AlertsCollection, nil)),
		Contacts: NewContactStore(
			NewMemoryCollection(SafeContactsCollection, core.DefaultSafeContacts()),
			NewMemoryCollection[core.BlockedContact](BlockedContactsCollection, nil),
		),
	}
}

func openFileStores(dir string) (*Stores, error) {
	alerts, err := NewFileCollection[core.Alert](dir, AlertsCollection, nil)
	if err != nil {
		return nil, err
	}
	safe, err := NewFileCollection(dir, SafeContactsCollection, core.DefaultSafeContacts())
	if err != nil {
		return nil, err
	}
	blocked, err := NewFileCollection[core.BlockedContact](dir, BlockedContactsCollection, nil)
	if err != nil {
		return nil, err
	}

	return &Stores{
		Alerts:   NewAlertStore(alerts),
		Contacts: NewContactStore(safe, blocked),
	}, nil
}

func openSQLiteStores(dir string) (*Stores, error) {
	db, err := Open(Config{Path: filepath.Join(dir, DatabaseFile)})
	if err != nil {
		return nil, err
	}
	return newSQLiteStores(db)
}

func newSQLiteStores(db *DB) (*Stores, error) {
	alerts, err := NewSQLiteCollection[core.Alert](db, AlertsCollection, nil)
	if err != nil {
		db.Close()
		return nil, err
	}
	safe, err := NewSQLiteCollection(db, SafeContactsCollection, core.DefaultSafeContacts())
	if err != nil {
		db.Close()
		return nil, err
	}
	blocked, err := NewSQLiteCollection[core.BlockedContact](db, BlockedContactsCollection, nil)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Stores{
		Alerts:   NewAlertStore(alerts),
		Contacts: NewContactStore(safe, blocked),
		db:       db,
	}, nil
}

// Close releases the database connection, if any
func (s *Stores) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
