package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/treegrid/internal/layout"
)

// gridView renders a grid as a table in text mode and as the grid itself
// in JSON mode.
type gridView struct {
	layout.Grid
}

func (g gridView) RenderText(w io.Writer) error {
	return layout.RenderText(w, g.Grid)
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the tree as a grid",
		Long: `Load the tree from the authority and print its grid layout: one row per
depth, each node spanning the columns of its leaves.

Example:
  treegrid show
  treegrid show --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			return s.out.Success(gridView{layout.Compute(s.nodes.Snapshot())})
		},
	}
}
