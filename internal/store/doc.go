// Package store provides SQLite-backed durable storage for tree nodes.
//
// The store is the persistence authority: it owns node identity (the
// autoincrement id) and node existence. The in-memory tree only mirrors it.
//
// # Data Model
//
//   - scopes: independent trees; scope 1 exists in every database
//   - nodes: (id, parent, scope) edges; parent 0 is the scope's root
//
// Ids are never reused (AUTOINCREMENT), so a short id seen by a client
// always names the same node or no node at all.
//
// # Ordering
//
// ListAll returns edges ORDER BY id ASC. A node is always inserted after its
// parent, so parents are listed before their children.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
