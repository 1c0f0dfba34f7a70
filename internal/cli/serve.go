package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/treegrid/internal/server"
	"github.com/roach88/treegrid/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Listen string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the node API over HTTP",
		Long: `Run the treegrid REST server on the SQLite database. Other treegrid
commands can then use it with --server.

Example:
  treegrid serve --db ./trees.db --listen :8080`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "address to listen on (default from config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg := opts.Config
	listen := cfg.Listen
	if opts.Listen != "" {
		listen = opts.Listen
	}

	if cfg.Database == "" {
		return NewExitError(ExitCommandError, "serve needs a database (--db)")
	}

	opts.Logger.Info("opening database", "path", cfg.Database)
	db, err := store.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			opts.Logger.Error("error closing database", "error", closeErr)
		}
	}()

	srv := server.New(server.Config{
		Logger:  opts.Logger,
		Store:   db,
		Scope:   cfg.Scope,
		Bind:    listen,
		Metrics: cfg.Metrics,
	})

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s. Press Ctrl-C to stop.\n", listen)
	if err := srv.Run(ctx); err != nil && err != context.Canceled {
		return WrapExitError(ExitFailure, "server error", err)
	}
	return nil
}
