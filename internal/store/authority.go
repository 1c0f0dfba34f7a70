package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/roach88/treegrid/internal/tree"
)

// ScopedAuthority exposes one scope of a Store as a tree.Authority.
type ScopedAuthority struct {
	store *Store
	scope int64
}

var _ tree.Authority = (*ScopedAuthority)(nil)

// Authority returns a tree.Authority bound to scope.
func (s *Store) Authority(scope int64) *ScopedAuthority {
	return &ScopedAuthority{store: s, scope: scope}
}

// Scope returns the bound scope id.
func (a *ScopedAuthority) Scope() int64 {
	return a.scope
}

// Create implements tree.Authority.
func (a *ScopedAuthority) Create(ctx context.Context, parentShortID string) (string, error) {
	parent, err := ParseID(parentShortID)
	if err != nil {
		return "", err
	}
	id, err := a.store.Create(ctx, a.scope, parent)
	if err != nil {
		return "", err
	}
	return FormatID(id), nil
}

// Delete implements tree.Authority.
func (a *ScopedAuthority) Delete(ctx context.Context, shortID string) error {
	id, err := ParseID(shortID)
	if err != nil {
		return err
	}
	return a.store.Delete(ctx, a.scope, id)
}

// ListAll implements tree.Authority.
func (a *ScopedAuthority) ListAll(ctx context.Context) ([]tree.Edge, error) {
	edges, err := a.store.ListAll(ctx, a.scope)
	if err != nil {
		return nil, err
	}
	out := make([]tree.Edge, len(edges))
	for i, e := range edges {
		out[i] = tree.Edge{ID: FormatID(e.ID), ParentID: FormatID(e.Parent)}
	}
	return out, nil
}

// ParseID converts a short id to a node id. Blank ids mean RootID.
func ParseID(shortID string) (int64, error) {
	id, err := strconv.ParseInt(tree.NormalizeID(shortID), 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid node id %q", shortID)
	}
	return id, nil
}

// FormatID converts a node id to a short id.
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
