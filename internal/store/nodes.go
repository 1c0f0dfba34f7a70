package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var (
	// ErrNodeNotFound is returned when a node id is not in the scope.
	ErrNodeNotFound = errors.New("node not found in scope")

	// ErrScopeNotFound is returned for operations on an unknown scope.
	ErrScopeNotFound = errors.New("scope not found")
)

// RootID is the parent id of top-level nodes. Deleting it clears the scope.
const RootID int64 = 0

// Edge is one stored node and its parent.
type Edge struct {
	ID     int64
	Parent int64
}

// CreateScope adds a new, empty scope and returns its id.
func (s *Store) CreateScope(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO scopes (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("create scope: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create scope: last insert id: %w", err)
	}
	return id, nil
}

// Create inserts a node under parent and returns its id. The parent must be
// RootID or an existing node of the same scope.
func (s *Store) Create(ctx context.Context, scope, parent int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("create node: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := checkScope(ctx, tx, scope); err != nil {
		return 0, fmt.Errorf("create node: %w", err)
	}

	if parent != RootID {
		var found int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM nodes WHERE id = ? AND scope = ?`, parent, scope,
		).Scan(&found)
		if err != nil {
			return 0, fmt.Errorf("create node: check parent: %w", err)
		}
		if found == 0 {
			return 0, fmt.Errorf("create node: parent %d: %w", parent, ErrNodeNotFound)
		}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO nodes (parent, scope) VALUES (?, ?)`, parent, scope,
	)
	if err != nil {
		return 0, fmt.Errorf("create node: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("create node: last insert id: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("create node: commit: %w", err)
	}
	return id, nil
}

// Delete removes a node and its whole subtree. Deleting RootID clears the
// scope and always succeeds for an existing scope; deleting an unknown id
// returns ErrNodeNotFound.
func (s *Store) Delete(ctx context.Context, scope, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete node: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := checkScope(ctx, tx, scope); err != nil {
		return fmt.Errorf("delete node: %w", err)
	}

	if id == RootID {
		if _, err := tx.ExecContext(ctx, `DELETE FROM nodes WHERE scope = ?`, scope); err != nil {
			return fmt.Errorf("delete node: clear scope: %w", err)
		}
	} else {
		res, err := tx.ExecContext(ctx, `
			WITH RECURSIVE subtree(id) AS (
				SELECT id FROM nodes WHERE id = ? AND scope = ?
				UNION
				SELECT n.id FROM nodes n JOIN subtree st ON n.parent = st.id
				WHERE n.scope = ?
			)
			DELETE FROM nodes WHERE id IN (SELECT id FROM subtree)
		`, id, scope, scope)
		if err != nil {
			return fmt.Errorf("delete node: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete node: rows affected: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("delete node %d: %w", id, ErrNodeNotFound)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete node: commit: %w", err)
	}
	return nil
}

// Import inserts edges with their ids as given. Parents are not checked, so
// a dump can be restored in any order; rows whose parent never arrives are
// kept and left for readers to drop. A node may not be its own parent.
func (s *Store) Import(ctx context.Context, scope int64, edges []Edge) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("import nodes: begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := checkScope(ctx, tx, scope); err != nil {
		return fmt.Errorf("import nodes: %w", err)
	}
	for _, e := range edges {
		if e.ID <= RootID || e.Parent < RootID || e.ID == e.Parent {
			return fmt.Errorf("import nodes: invalid edge (%d, %d)", e.ID, e.Parent)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO nodes (id, parent, scope) VALUES (?, ?, ?)`, e.ID, e.Parent, scope,
		); err != nil {
			return fmt.Errorf("import node %d: %w", e.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("import nodes: commit: %w", err)
	}
	return nil
}

// ListAll returns every node of the scope ordered by id, so each parent
// precedes its children.
func (s *Store) ListAll(ctx context.Context, scope int64) ([]Edge, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, parent FROM nodes WHERE scope = ? ORDER BY id ASC`, scope,
	)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	edges := []Edge{}
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.ID, &e.Parent); err != nil {
			return nil, fmt.Errorf("list nodes: scan: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	return edges, nil
}

// Count returns the number of nodes in the scope.
func (s *Store) Count(ctx context.Context, scope int64) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes WHERE scope = ?`, scope).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count nodes: %w", err)
	}
	return n, nil
}

func checkScope(ctx context.Context, tx *sql.Tx, scope int64) error {
	var found int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM scopes WHERE id = ?`, scope).Scan(&found); err != nil {
		return fmt.Errorf("check scope: %w", err)
	}
	if found == 0 {
		return fmt.Errorf("scope %d: %w", scope, ErrScopeNotFound)
	}
	return nil
}
