// Package tree implements the path-addressed node store.
//
// Every node carries two identifiers:
//   - a short id, the single path segment the persistence authority knows
//   - a long id, the full lineage from the root, short ids joined by "/"
//
// The root is synthetic: its long id is empty, it always exists, and it is
// never deleted (only its children are cleared).
//
// # Authority First
//
// The Store is the sole writer of tree structure, but it never changes
// structure on its own. AddNode, RemoveNode, RemoveAll and LoadAll ask the
// Authority first and apply the result locally only once the Authority has
// confirmed it. A failed Authority call leaves the local tree untouched.
//
// # Concurrency
//
// Mutations are serialized per Store: a second AddNode issued while a first
// one is waiting on the Authority blocks until the first completes. Lookups
// take a read lock on structure only. Nodes returned by lookups are live
// views; use Snapshot for a copy that is safe to walk while mutations run.
package tree
