package layout

import (
	"fmt"

	"github.com/roach88/treegrid/internal/tree"
)

// HeaderLabel is the caption spanning the whole grid above the rows.
const HeaderLabel = "Tree Nodes"

// Cell is one table cell.
type Cell struct {
	Span    int    `json:"span"`
	Label   string `json:"label,omitempty"`
	LongID  string `json:"long_id,omitempty"`
	Padding bool   `json:"padding,omitempty"`
}

// Row is one depth level of the grid. Depth 0 holds the root's children.
type Row struct {
	Depth int    `json:"depth"`
	Cells []Cell `json:"cells"`
}

// Width returns the sum of the row's spans.
func (r Row) Width() int {
	w := 0
	for _, c := range r.Cells {
		w += c.Span
	}
	return w
}

// Grid is the layout of a whole tree.
type Grid struct {
	// Width is the number of columns the root's children span; it equals
	// the number of leaves in the tree.
	Width int   `json:"width"`
	Rows  []Row `json:"rows"`
}

// Label renders a node's caption from its parent's and its own short id.
func Label(n *tree.Node) string {
	parent := tree.ShortID(n.ParentID())
	if parent == "" {
		parent = "NONE"
	}
	return fmt.Sprintf("P:%s ID:%s", parent, n.ShortID())
}

// rowBuilder accumulates the cells of one depth plus the padding owed to
// the left of the next real cell.
type rowBuilder struct {
	cells   []Cell
	pending int
	real    int
}

func (r *rowBuilder) flush() {
	if r.pending > 0 {
		r.cells = append(r.cells, Cell{Span: r.pending, Padding: true})
	}
	r.pending = 0
}

func (r *rowBuilder) append(c Cell) {
	r.flush()
	r.cells = append(r.cells, c)
	r.real++
}

type builder struct {
	rows []*rowBuilder
}

// Compute lays out the tree below root.
func Compute(root *tree.Node) Grid {
	b := &builder{}
	width := b.layoutChildren(root, 0)

	g := Grid{Width: width, Rows: []Row{}}
	for depth, r := range b.rows {
		if r.real == 0 {
			continue
		}
		r.flush()
		g.Rows = append(g.Rows, Row{Depth: depth, Cells: r.cells})
	}
	return g
}

// layoutChildren places n's children in row depth and returns the number
// of columns they span together.
func (b *builder) layoutChildren(n *tree.Node, depth int) int {
	childDepth := depth + 1
	width := 0

	for child := range n.Children() {
		// A new row starts with the padding of the row above: a first
		// child is always placed right below its parent.
		for len(b.rows) <= childDepth {
			r := &rowBuilder{}
			if len(b.rows) > 0 {
				r.pending = b.rows[len(b.rows)-1].pending
			}
			b.rows = append(b.rows, r)
		}

		span := b.layoutChildren(child, childDepth)
		if span == 0 {
			// dead end: every deeper row owes one column here
			for i := childDepth; i < len(b.rows); i++ {
				b.rows[i].pending++
			}
			span = 1
		}
		width += span

		b.rows[depth].append(Cell{
			Span:   span,
			Label:  Label(child),
			LongID: child.LongID(),
		})
	}
	return width
}
