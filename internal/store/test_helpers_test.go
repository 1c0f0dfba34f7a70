package store

import (
	"context"
	"path/filepath"
	"testing"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// mustCreate inserts a node and fails the test on error.
func mustCreate(t *testing.T, s *Store, scope, parent int64) int64 {
	t.Helper()
	id, err := s.Create(context.Background(), scope, parent)
	if err != nil {
		t.Fatalf("Create(%d, %d) failed: %v", scope, parent, err)
	}
	return id
}
