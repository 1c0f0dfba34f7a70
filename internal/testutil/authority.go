package testutil

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/roach88/treegrid/internal/tree"
)

// ErrInjected is returned by FlakyAuthority for injected failures.
var ErrInjected = errors.New("injected authority failure")

// Call records one authority request and whether it succeeded.
type Call struct {
	Op     string `json:"op"`
	ID     string `json:"id,omitempty"`
	Result string `json:"result,omitempty"`
	OK     bool   `json:"ok"`
}

// MemoryAuthority is an in-memory tree.Authority for tests.
//
// Ids are issued from a DeterministicClock, so a fresh MemoryAuthority
// hands out "1", "2", "3", ... in call order. Deletes are recursive.
//
// Thread-safety: all methods are safe for concurrent use.
type MemoryAuthority struct {
	mu     sync.Mutex
	clock  *DeterministicClock
	edges  []tree.Edge
	parent map[string]string
	calls  []Call
}

// NewMemoryAuthority creates an empty authority.
func NewMemoryAuthority() *MemoryAuthority {
	return &MemoryAuthority{
		clock:  NewDeterministicClock(),
		parent: make(map[string]string),
	}
}

// SetEdges replaces the listing returned by ListAll verbatim, in the given
// order, without checking that parents precede children.
func (a *MemoryAuthority) SetEdges(edges ...tree.Edge) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.edges = append([]tree.Edge(nil), edges...)
	a.parent = make(map[string]string, len(edges))
	for _, e := range edges {
		a.parent[e.ID] = e.ParentID
		if n, err := strconv.ParseInt(e.ID, 10, 64); err == nil {
			for a.clock.Current() < n {
				a.clock.Next()
			}
		}
	}
}

// Calls returns the requests seen so far.
func (a *MemoryAuthority) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Call(nil), a.calls...)
}

// Create implements tree.Authority.
func (a *MemoryAuthority) Create(_ context.Context, parentShortID string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	parent := tree.NormalizeID(parentShortID)
	if _, ok := a.parent[parent]; parent != tree.RootToken && !ok {
		a.calls = append(a.calls, Call{Op: "create", ID: parent})
		return "", fmt.Errorf("parent %s does not exist", parent)
	}
	id := strconv.FormatInt(a.clock.Next(), 10)
	a.parent[id] = parent
	a.edges = append(a.edges, tree.Edge{ID: id, ParentID: parent})
	a.calls = append(a.calls, Call{Op: "create", ID: parent, Result: id, OK: true})
	return id, nil
}

// Delete implements tree.Authority.
func (a *MemoryAuthority) Delete(_ context.Context, shortID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := tree.NormalizeID(shortID)
	if id == tree.RootToken {
		a.edges = nil
		a.parent = make(map[string]string)
		a.calls = append(a.calls, Call{Op: "delete", ID: id, OK: true})
		return nil
	}
	if _, ok := a.parent[id]; !ok {
		a.calls = append(a.calls, Call{Op: "delete", ID: id})
		return fmt.Errorf("node %s does not exist", id)
	}

	doomed := map[string]bool{id: true}
	// edges are parent-first, so one pass collects the whole subtree
	for _, e := range a.edges {
		if doomed[e.ParentID] {
			doomed[e.ID] = true
		}
	}
	kept := a.edges[:0]
	for _, e := range a.edges {
		if doomed[e.ID] {
			delete(a.parent, e.ID)
			continue
		}
		kept = append(kept, e)
	}
	a.edges = kept
	a.calls = append(a.calls, Call{Op: "delete", ID: id, OK: true})
	return nil
}

// ListAll implements tree.Authority.
func (a *MemoryAuthority) ListAll(_ context.Context) ([]tree.Edge, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls = append(a.calls, Call{Op: "list", OK: true})
	return append([]tree.Edge(nil), a.edges...), nil
}

// FlakyAuthority wraps an Authority and fails requests on demand.
type FlakyAuthority struct {
	tree.Authority

	mu       sync.Mutex
	failNext int
	failAll  bool
	failed   int
}

// NewFlakyAuthority wraps inner.
func NewFlakyAuthority(inner tree.Authority) *FlakyAuthority {
	return &FlakyAuthority{Authority: inner}
}

// FailNext makes the next n requests fail without reaching the inner
// authority.
func (f *FlakyAuthority) FailNext(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = n
}

// SetDown makes every request fail until called again with false.
func (f *FlakyAuthority) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAll = down
}

// Failed returns the number of injected failures so far.
func (f *FlakyAuthority) Failed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failed
}

func (f *FlakyAuthority) shouldFail() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		f.failed++
		return true
	}
	if f.failNext > 0 {
		f.failNext--
		f.failed++
		return true
	}
	return false
}

// Create implements tree.Authority.
func (f *FlakyAuthority) Create(ctx context.Context, parentShortID string) (string, error) {
	if f.shouldFail() {
		return "", ErrInjected
	}
	return f.Authority.Create(ctx, parentShortID)
}

// Delete implements tree.Authority.
func (f *FlakyAuthority) Delete(ctx context.Context, shortID string) error {
	if f.shouldFail() {
		return ErrInjected
	}
	return f.Authority.Delete(ctx, shortID)
}

// ListAll implements tree.Authority.
func (f *FlakyAuthority) ListAll(ctx context.Context) ([]tree.Edge, error) {
	if f.shouldFail() {
		return nil, ErrInjected
	}
	return f.Authority.ListAll(ctx)
}
