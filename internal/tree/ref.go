package tree

// Ref names a node either directly or by long id. Public Store methods
// resolve a Ref exactly once on entry.
type Ref struct {
	node *Node
	path string
}

// NodeRef refers to n itself. Resolution returns n unchanged, even if n has
// since been detached from the tree.
func NodeRef(n *Node) Ref {
	return Ref{node: n}
}

// PathRef refers to the node at longID. The empty string is the root.
// A bare short id such as "7" resolves as a top-level path.
func PathRef(longID string) Ref {
	return Ref{path: longID}
}

// RootRef refers to the root.
func RootRef() Ref {
	return Ref{}
}

// Node returns the node a NodeRef was built from, or nil for a PathRef.
func (r Ref) Node() *Node {
	return r.node
}

// String returns the long id the Ref points at.
func (r Ref) String() string {
	if r.node != nil {
		return r.node.longID
	}
	return r.path
}
