package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/treegrid/internal/tree"
)

// NodeResult describes a node touched by a command.
type NodeResult struct {
	Action string `json:"action"`
	ID     string `json:"id"`
	LongID string `json:"long_id"`
}

func (r NodeResult) RenderText(w io.Writer) error {
	_, err := fmt.Fprintf(w, "%s %s\n", r.Action, r.LongID)
	return err
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add [parent-id]",
		Short: "Add a node under a parent",
		Long: `Ask the authority for a new node under the given parent and print the
new node's long id. The parent is a long id (/1/3), a short id (3), or
0 / omitted for the root.

Example:
  treegrid add
  treegrid add /1/3
  treegrid --server http://localhost:8080 add 3`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID := ""
			if len(args) == 1 {
				parentID = args[0]
			}
			return runAdd(rootOpts, parentID, cmd)
		},
	}
}

func runAdd(opts *RootOptions, parentID string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ref, err := s.resolve(parentID)
	if err != nil {
		return s.fail("add", err)
	}
	n, err := s.nodes.AddNode(commandContext(cmd), ref)
	if err != nil {
		return s.fail("add", err)
	}
	return s.out.Success(NodeResult{Action: "added", ID: n.ShortID(), LongID: n.LongID()})
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a node and its subtree",
		Long: `Ask the authority to delete a node, then drop it and everything below it
from the tree. Removing 0 removes every node.

Example:
  treegrid remove /1/3
  treegrid remove 3`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(rootOpts, args[0], cmd)
		},
	}
}

func runRemove(opts *RootOptions, id string, cmd *cobra.Command) error {
	s, err := openSession(opts, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ref, err := s.resolve(id)
	if err != nil {
		return s.fail("remove", err)
	}
	n, err := s.nodes.GetNode(ref)
	if err != nil {
		return s.fail("remove", err)
	}
	if err := s.nodes.RemoveNode(commandContext(cmd), ref); err != nil {
		return s.fail("remove", err)
	}
	if n.IsRoot() {
		return s.out.Success(NodeResult{Action: "cleared", ID: tree.RootToken, LongID: tree.Separator})
	}
	return s.out.Success(NodeResult{Action: "removed", ID: n.ShortID(), LongID: n.LongID()})
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "clear",
		Short:         "Remove every node",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(rootOpts, cmd)
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.nodes.RemoveAll(commandContext(cmd)); err != nil {
				return s.fail("clear", err)
			}
			return s.out.Success(NodeResult{Action: "cleared", ID: tree.RootToken, LongID: tree.Separator})
		},
	}
}

// FindOptions holds flags for the find command.
type FindOptions struct {
	*RootOptions
	Under string
}

// NewFindCommand creates the find command.
func NewFindCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FindOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "find <short-id>",
		Short: "Find a node by short id",
		Long: `Print the long id of the first node with the given short id. Direct
children of the search root are checked first, then each child's subtree.

Example:
  treegrid find 4
  treegrid find 4 --under /1`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFind(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Under, "under", "", "long id of the node to search below")

	return cmd
}

func runFind(opts *FindOptions, shortID string, cmd *cobra.Command) error {
	s, err := openSession(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer s.close()

	var under *tree.Node
	if opts.Under != "" {
		under, err = s.nodes.GetNode(tree.PathRef(opts.Under))
		if err != nil {
			return s.fail("find", err)
		}
	}
	n, err := s.nodes.FindByShortID(shortID, under)
	if err != nil {
		return s.fail("find", err)
	}
	return s.out.Success(NodeResult{Action: "found", ID: n.ShortID(), LongID: n.LongID()})
}
