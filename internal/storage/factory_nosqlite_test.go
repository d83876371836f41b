//go:build !sqlite

package storage

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestNewStoreSQLiteUnavailable(t *testing.T) {
	_, err := NewStore(BackendSQLite, filepath.Join(t.TempDir(), "pwviz.db"))
	if !errors.Is(err, ErrSQLiteUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
}
