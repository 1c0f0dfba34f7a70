package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/treegrid/internal/authority"
	"github.com/roach88/treegrid/internal/store"
	"github.com/roach88/treegrid/internal/tree"
)

// session is a node store loaded from the configured authority.
type session struct {
	nodes *tree.Store
	out   *OutputFormatter
	close func()
}

// openAuthority returns the remote client when a server is configured and
// the local database otherwise.
func openAuthority(opts *RootOptions) (tree.Authority, func(), error) {
	cfg := opts.Config
	if cfg.Server != "" {
		opts.Logger.Debug("using remote authority", "server", cfg.Server)
		client := authority.New(cfg.Server,
			authority.WithTimeout(cfg.Timeout),
			authority.WithMaxRetries(cfg.Retries),
			authority.WithLogger(opts.Logger.With("subsystem", "authority")),
		)
		return client, func() {}, nil
	}

	opts.Logger.Debug("opening database", "path", cfg.Database, "scope", cfg.Scope)
	db, err := store.Open(cfg.Database)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	closer := func() {
		if err := db.Close(); err != nil {
			opts.Logger.Error("error closing database", "error", err)
		}
	}
	return db.Authority(cfg.Scope), closer, nil
}

// openSession builds a node store over the configured authority and loads
// the current tree into it.
func openSession(opts *RootOptions, cmd *cobra.Command) (*session, error) {
	auth, closer, err := openAuthority(opts)
	if err != nil {
		return nil, err
	}

	nodes := tree.New(auth, tree.WithLogger(opts.Logger))
	s := &session{
		nodes: nodes,
		out: &OutputFormatter{
			Format:    opts.Format,
			Writer:    cmd.OutOrStdout(),
			ErrWriter: cmd.ErrOrStderr(),
			Verbose:   opts.Verbose,
		},
		close: closer,
	}

	n, err := nodes.LoadAll(commandContext(cmd))
	if err != nil {
		closer()
		return nil, WrapExitError(ExitCommandError, "failed to load tree", err)
	}
	s.out.VerboseLog("loaded %d nodes", n)
	return s, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// resolve turns a command-line node id into a Ref. Long ids contain the
// separator; bare short ids are searched for; "0" and "" mean the root.
func (s *session) resolve(id string) (tree.Ref, error) {
	id = strings.TrimSpace(id)
	switch {
	case id == "" || id == tree.RootToken || id == tree.Separator:
		return tree.RootRef(), nil
	case strings.Contains(id, tree.Separator):
		return tree.PathRef(id), nil
	}
	n, err := s.nodes.FindByShortID(id, nil)
	if err != nil {
		return tree.Ref{}, err
	}
	return tree.NodeRef(n), nil
}

// fail reports err in the configured format and returns the exit error.
func (s *session) fail(action string, err error) error {
	code := "E_FAILED"
	switch {
	case tree.IsNotFound(err):
		code = "E_NOT_FOUND"
	case tree.IsAuthorityFailure(err):
		code = "E_AUTHORITY"
	}
	if outErr := s.out.Error(code, fmt.Sprintf("%s: %v", action, err), nil); outErr != nil {
		return outErr
	}
	return WrapExitError(ExitFailure, action, err)
}
