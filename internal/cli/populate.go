package cli

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/treegrid/internal/tree"
)

// PopulateOptions holds flags for the populate command.
type PopulateOptions struct {
	*RootOptions
	Count int
	Seed  uint64
}

// PopulateResult reports a populate run.
type PopulateResult struct {
	Created int    `json:"created"`
	Seed    uint64 `json:"seed"`
}

func (r PopulateResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "created %d nodes (seed %d)\n", r.Created, r.Seed)
	return err
}

// NewPopulateCommand creates the populate command.
func NewPopulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PopulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "populate",
		Short: "Replace the tree with a random one",
		Long: `Remove every node, then add one top-level node and --count more, each
under a node picked at random from those created so far.

Example:
  treegrid populate --count 30
  treegrid populate --count 30 --seed 7`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				opts.Seed = uint64(time.Now().UnixNano())
			}
			return runPopulate(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", 20, "number of nodes to add after the first")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "random seed (default: time based)")

	return cmd
}

func runPopulate(opts *PopulateOptions, cmd *cobra.Command) error {
	if opts.Count < 0 {
		return NewExitError(ExitCommandError, "--count must not be negative")
	}

	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx := commandContext(cmd)
	if err := s.nodes.RemoveAll(ctx); err != nil {
		return s.fail("populate", err)
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed))
	nodes, err := tree.Populate(ctx, s.nodes, opts.Count, rng)
	if err != nil {
		s.out.VerboseLog("populate stopped after %d nodes", len(nodes))
		return s.fail("populate", err)
	}
	return s.out.Success(PopulateResult{Created: len(nodes), Seed: opts.Seed})
}
