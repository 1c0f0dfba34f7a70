package layout_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/treegrid/internal/layout"
)

func TestRenderText_LeafBesideBranch(t *testing.T) {
	s := loadTree(t,
		[2]string{"1", "0"},
		[2]string{"2", "1"},
		[2]string{"3", "1"},
		[2]string{"4", "3"},
	)

	var buf bytes.Buffer
	require.NoError(t, layout.RenderText(&buf, layout.Compute(s.Snapshot())))

	want := "" +
		"+-------+----------+----------+\n" +
		"| Depth | Tree Nodes          |\n" +
		"+-------+----------+----------+\n" +
		"| 0     | P:NONE ID:1         |\n" +
		"| 1     | P:1 ID:2 | P:1 ID:3 |\n" +
		"| 2     |          | P:3 ID:4 |\n" +
		"+-------+----------+----------+\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderText_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, layout.RenderText(&buf, layout.Grid{}))

	want := "" +
		"+-------+\n" +
		"| Depth |\n" +
		"+-------+\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderText_WideLabelsWidenEveryColumn(t *testing.T) {
	g := layout.Grid{
		Width: 2,
		Rows: []layout.Row{
			{Depth: 0, Cells: []layout.Cell{{Span: 1, Label: "日本"}, {Span: 1, Label: "x"}}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, layout.RenderText(&buf, g))

	lines := bytes.Split(bytes.TrimRight(buf.Bytes(), "\n"), []byte("\n"))
	// "Tree Nodes" (10) across 2 columns needs unit 4; "日本" is 4 cells wide
	assert.Equal(t, "+-------+------+------+", string(lines[0]))
	assert.Equal(t, "| 0     | 日本 | x    |", string(lines[3]))
}
