package tree

import "context"

// Edge is one (id, parent) pair from Authority.ListAll.
type Edge struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id"`
}

// Authority is the system of record for node existence and identity.
//
// A blank id passed to Create or Delete denotes the root and is normalized
// by implementations to RootToken. Delete of the root clears everything.
// ListAll returns pairs such that a parent is always listed before its
// children, or is RootToken.
type Authority interface {
	Create(ctx context.Context, parentShortID string) (string, error)
	Delete(ctx context.Context, shortID string) error
	ListAll(ctx context.Context) ([]Edge, error)
}
