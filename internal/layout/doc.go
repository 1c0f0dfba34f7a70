// Package layout turns a tree into a rectangular, colspan-annotated grid.
//
// Row i holds the nodes at distance i+1 from the root. Each node's cell
// spans as many columns as its subtree has leaves (at least one), so a
// parent always sits exactly above the columns of its children. Gaps left
// by shallow branches are filled with padding cells, inserted lazily right
// before the next real cell of a row (or at the end of the row), which keeps
// every row exactly Grid.Width columns wide.
//
// Layout never mutates the tree; run it on tree.Store.Snapshot when
// mutations may be in flight.
package layout
