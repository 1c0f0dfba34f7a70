package tree

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Store owns the in-memory tree and keeps it in step with an Authority.
type Store struct {
	authority Authority
	logger    *slog.Logger

	// opMu serializes mutations, including the Authority round trip.
	opMu sync.Mutex
	// mu guards root and everything reachable from it.
	mu   sync.RWMutex
	root *Node
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for mutation diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Store with an empty root backed by authority.
func New(authority Authority, opts ...Option) *Store {
	s := &Store{
		authority: authority,
		logger:    slog.Default(),
		root:      newNode(""),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the current root node.
func (s *Store) Root() *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Len returns the number of nodes in the tree, root excluded.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root.size()
}

// Snapshot returns a deep copy of the tree. The copy shares nothing with
// the Store and can be laid out while mutations continue.
func (s *Store) Snapshot() *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root.clone()
}

// GetNode resolves ref. A NodeRef is returned unchanged. A PathRef is walked
// from the root one segment at a time; the first missing segment yields
// ErrNotFound.
func (s *Store) GetNode(ref Ref) (*Node, error) {
	if ref.node != nil {
		return ref.node, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(ref.path)
}

func (s *Store) lookupLocked(longID string) (*Node, error) {
	node := s.root
	for _, seg := range Segments(longID) {
		child, ok := node.children[seg]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, longID)
		}
		node = child
	}
	return node, nil
}

// FindByShortID searches below searchRoot (the root when nil) for a node
// whose short id is shortID. Direct children are checked first, then each
// child's subtree in child order; the first match wins. An empty shortID
// returns the root.
//
// This walks the whole tree in the worst case. Prefer GetNode when the long
// id is known.
func (s *Store) FindByShortID(shortID string, searchRoot *Node) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if shortID == "" {
		return s.root, nil
	}
	if searchRoot == nil {
		searchRoot = s.root
	}
	if n := findShort(searchRoot, shortID); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("%w: short id %q", ErrNotFound, shortID)
}

func findShort(n *Node, shortID string) *Node {
	if c, ok := n.children[shortID]; ok {
		return c
	}
	for child := range n.Children() {
		if found := findShort(child, shortID); found != nil {
			return found
		}
	}
	return nil
}

// AddNode asks the Authority for a new identity under parent and, once it
// is granted, appends the new node to the parent's children.
//
// Returns ErrNotFound if parent does not resolve and an error wrapping
// ErrAuthority if the Authority refuses. In both cases nothing changes.
func (s *Store) AddNode(ctx context.Context, parent Ref) (*Node, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	log := s.logger.With("op", uuid.Must(uuid.NewV7()).String(), "action", "add")

	parentNode, err := s.GetNode(parent)
	if err != nil {
		log.Debug("parent not found", "parent", parent.String())
		return nil, err
	}

	shortID, err := s.authority.Create(ctx, parentNode.ShortID())
	if err != nil {
		log.Warn("authority rejected create", "parent", parentNode.LongID(), "error", err)
		return nil, fmt.Errorf("%w: create under %q: %w", ErrAuthority, parentNode.LongID(), err)
	}

	s.mu.Lock()
	child := parentNode.addChild(shortID)
	s.mu.Unlock()

	log.Debug("node added", "id", child.LongID())
	return child, nil
}

// RemoveNode asks the Authority to delete the node ref resolves to and,
// once confirmed, detaches it from its parent. Removing the root is the
// "remove everything" request: the Authority wipes all nodes and the local
// tree is reset to an empty root.
func (s *Store) RemoveNode(ctx context.Context, ref Ref) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	node, err := s.GetNode(ref)
	if err != nil {
		return err
	}
	if node.IsRoot() {
		return s.wipe(ctx)
	}

	log := s.logger.With("op", uuid.Must(uuid.NewV7()).String(), "action", "remove")

	shortID := node.ShortID()
	if err := s.authority.Delete(ctx, shortID); err != nil {
		log.Warn("authority rejected delete", "id", node.LongID(), "error", err)
		return fmt.Errorf("%w: delete %q: %w", ErrAuthority, node.LongID(), err)
	}

	s.mu.Lock()
	if parentNode, err := s.lookupLocked(node.ParentID()); err == nil {
		parentNode.removeChild(shortID)
	}
	s.mu.Unlock()

	log.Debug("node removed", "id", node.LongID())
	return nil
}

// RemoveAll wipes every node at the Authority, then resets the local tree.
// On failure the local tree is left as it was.
func (s *Store) RemoveAll(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.wipe(ctx)
}

func (s *Store) wipe(ctx context.Context) error {
	log := s.logger.With("op", uuid.Must(uuid.NewV7()).String(), "action", "remove_all")

	if err := s.authority.Delete(ctx, ""); err != nil {
		log.Warn("authority rejected wipe", "error", err)
		return fmt.Errorf("%w: remove all: %w", ErrAuthority, err)
	}

	s.mu.Lock()
	s.root = newNode("")
	s.mu.Unlock()

	log.Debug("tree cleared")
	return nil
}

// LoadAll discards the local tree and rebuilds it from Authority.ListAll.
//
// Pairs are applied strictly in the order received. A pair whose parent has
// not been materialized yet is dropped and never retried, even if the
// parent shows up later in the list. Returns the number of nodes loaded.
func (s *Store) LoadAll(ctx context.Context) (int, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	log := s.logger.With("op", uuid.Must(uuid.NewV7()).String(), "action", "load_all")

	s.mu.Lock()
	s.root = newNode("")
	s.mu.Unlock()

	edges, err := s.authority.ListAll(ctx)
	if err != nil {
		log.Warn("authority rejected list", "error", err)
		return 0, fmt.Errorf("%w: list all: %w", ErrAuthority, err)
	}

	root := newNode("")
	known := map[string]*Node{RootToken: root}
	loaded, dropped := 0, 0
	for _, e := range edges {
		parent, ok := known[NormalizeID(e.ParentID)]
		if !ok {
			dropped++
			continue
		}
		known[e.ID] = parent.addChild(e.ID)
		loaded++
	}

	s.mu.Lock()
	s.root = root
	s.mu.Unlock()

	log.Debug("tree loaded", "nodes", loaded, "dropped", dropped)
	return loaded, nil
}
