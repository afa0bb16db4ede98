package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/erpshell/internal/shared/paths"
	"github.com/GriffinCanCode/erpshell/internal/shell/tui"
)

func newTUICmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal workspace",
		Long: `Opens the full-screen workspace: a tab strip, the module list and the
active module's component. stderr would draw over the screen, so logs go to
<storage>/logs/tui.log unless --log-output names another destination.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := flags.config()
			if err != nil {
				return err
			}
			if flags.logOutput == "stderr" {
				layout := paths.NewLayout(cfg.Storage.Path)
				if err := layout.EnsureLogs(); err != nil {
					return err
				}
				flags.logOutput = layout.LogFile("tui")
			}

			rt, err := flags.runtime(ctx, cfg)
			if err != nil {
				return err
			}
			defer rt.Close()
			startSession(ctx, rt)

			ctx, cancelWatch := context.WithCancel(ctx)
			defer cancelWatch()
			go rt.Session.Watch(ctx, cfg.Session.ValidateInterval)

			updates, cancel := rt.Tabs.Subscribe()
			defer cancel()
			return tui.Run(ctx, rt.Shell, updates)
		},
	}
}
