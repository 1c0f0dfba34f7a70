package tree

import (
	"iter"
	"strings"
)

// Separator joins short ids into a long id.
const Separator = "/"

// RootToken is the short id the authority uses for the synthetic root.
const RootToken = "0"

// Node is one element of the tree. Children keep insertion order, which is
// also the render order.
type Node struct {
	longID   string
	children map[string]*Node
	order    []string
}

func newNode(longID string) *Node {
	return &Node{
		longID:   longID,
		children: make(map[string]*Node),
	}
}

// LongID returns the node's full path from the root.
func (n *Node) LongID() string {
	return n.longID
}

// ShortID returns the node's own path segment. Empty for the root.
func (n *Node) ShortID() string {
	return ShortID(n.longID)
}

// ParentID returns the long id of the node's parent. The parent is derived
// from the path; nodes hold no parent pointer.
func (n *Node) ParentID() string {
	return ParentID(n.longID)
}

// IsRoot reports whether n is the synthetic root.
func (n *Node) IsRoot() bool {
	return n.longID == ""
}

// Child returns the direct child with the given short id.
func (n *Node) Child(shortID string) (*Node, bool) {
	c, ok := n.children[shortID]
	return c, ok
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	return len(n.order)
}

// Children yields the direct children in insertion order. The sequence can
// be ranged over any number of times and never mutates the node.
func (n *Node) Children() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, id := range n.order {
			if !yield(n.children[id]) {
				return
			}
		}
	}
}

// addChild inserts a child under shortID. Re-adding an existing short id
// replaces the child in place, keeping its position.
func (n *Node) addChild(shortID string) *Node {
	child := newNode(JoinID(n.longID, shortID))
	if _, exists := n.children[shortID]; !exists {
		n.order = append(n.order, shortID)
	}
	n.children[shortID] = child
	return child
}

func (n *Node) removeChild(shortID string) bool {
	if _, ok := n.children[shortID]; !ok {
		return false
	}
	delete(n.children, shortID)
	for i, id := range n.order {
		if id == shortID {
			n.order = append(n.order[:i], n.order[i+1:]...)
			break
		}
	}
	return true
}

// clone returns a deep copy of the subtree rooted at n.
func (n *Node) clone() *Node {
	c := &Node{
		longID:   n.longID,
		children: make(map[string]*Node, len(n.children)),
		order:    make([]string, len(n.order)),
	}
	copy(c.order, n.order)
	for id, child := range n.children {
		c.children[id] = child.clone()
	}
	return c
}

// size counts the nodes below n, n excluded.
func (n *Node) size() int {
	total := 0
	for child := range n.Children() {
		total += 1 + child.size()
	}
	return total
}

// JoinID extends a parent long id by one short id.
func JoinID(parentID, shortID string) string {
	return parentID + Separator + shortID
}

// ShortID returns the last segment of a long id.
func ShortID(longID string) string {
	if i := strings.LastIndex(longID, Separator); i >= 0 {
		return longID[i+len(Separator):]
	}
	return longID
}

// ParentID strips the last segment of a long id.
func ParentID(longID string) string {
	if i := strings.LastIndex(longID, Separator); i >= 0 {
		return longID[:i]
	}
	return ""
}

// Segments splits a long id into its non-empty short ids.
func Segments(longID string) []string {
	parts := strings.Split(longID, Separator)
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// NormalizeID maps a blank short id to RootToken. Authorities use it on
// every incoming id.
func NormalizeID(shortID string) string {
	if strings.TrimSpace(shortID) == "" {
		return RootToken
	}
	return shortID
}
