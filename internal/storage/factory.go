package storage

import (
	"errors"
	"fmt"
	"strings"
)

const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

var (
	ErrUnknownBackend    = errors.New("unknown store backend")
	ErrSQLiteUnavailable = errors.New("sqlite backend not compiled in; rebuild with -tags sqlite")
)

// NewStore opens the backend named by kind. The memory store only lives as
// long as the process, so cached death indexes and group statistics persist
// across invocations with sqlite alone.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		if strings.TrimSpace(sqlitePath) == "" {
			return nil, errors.New("sqlite store requires a database path")
		}
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownBackend, kind, BackendMemory, BackendSQLite)
	}
}

// CloseIfSupported releases backends holding resources such as a database
// handle.
func CloseIfSupported(store Store) error {
	if closer, ok := store.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
