package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/erpshell/internal/server"
	"github.com/GriffinCanCode/erpshell/internal/shell"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var host, port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the shell over HTTP and WebSocket",
		Long: `Starts the shell server. Clients drive tabs and the session through the
REST routes and receive state updates on /shell/ws.

SIGINT and SIGTERM shut the server down gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := flags.config()
			if err != nil {
				return err
			}
			if host != "" {
				cfg.Shell.Host = host
			}
			if port != "" {
				cfg.Shell.Port = port
			}

			rt, err := flags.runtime(ctx, cfg)
			if err != nil {
				return err
			}
			startSession(ctx, rt)

			srv := server.New(rt)
			defer srv.Close()
			return srv.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (overrides HOST)")
	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT)")
	return cmd
}

// startSession checks a restored session against the backend before it is
// served, then syncs the backend apps. A rejected token leaves the store
// logged out.
func startSession(ctx context.Context, rt *server.Runtime) {
	if rt.Session.IsAuthenticated() && !rt.Session.Validate(ctx) {
		rt.Logger.Info("Stored session is no longer valid")
	}
	syncApps(ctx, rt)
}

// syncApps pulls backend apps into the catalog when a session exists.
// Failures are logged; the builtin catalog still works.
func syncApps(ctx context.Context, rt *server.Runtime) {
	added, err := rt.SyncApps(ctx)
	switch {
	case errors.Is(err, shell.ErrNotAuthenticated):
	case err != nil:
		rt.Logger.Warn("Failed to sync backend apps", zap.Error(err))
	case added > 0:
		rt.Logger.Info("Synced backend apps", zap.Int("added", added))
	}
}
