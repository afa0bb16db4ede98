package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/erpshell/internal/shared/types"
	"github.com/GriffinCanCode/erpshell/internal/shell"
)

// gated turns the shell's authentication error into a hint.
func gated(err error) error {
	if errors.Is(err, shell.ErrNotAuthenticated) {
		return errors.New("not logged in; run \"erpshell login\" first")
	}
	return err
}

func printTabs(out io.Writer, state types.TabsState) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tTITLE\tMODULE")
	for _, t := range state.Tabs {
		mark := ""
		if t.ID == state.ActiveTabID {
			mark = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", mark, t.ID, t.Title, t.ComponentKey)
	}
	return w.Flush()
}

func newTabsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "tabs",
		Short: "List the open tabs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := flags.open(cmd.Context())
			if err != nil {
				return err
			}
			defer rt.Close()
			return printTabs(cmd.OutOrStdout(), rt.Shell.State())
		},
	}
}

func newOpenCmd(flags *globalFlags) *cobra.Command {
	var params map[string]string

	cmd := &cobra.Command{
		Use:   "open <module>",
		Short: "Open a module tab, or focus it when already open",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			var p map[string]any
			if len(params) > 0 {
				p = make(map[string]any, len(params))
				for k, v := range params {
					p[k] = v
				}
			}
			tab, err := rt.Shell.OpenModule(ctx, args[0], p)
			if err != nil {
				return gated(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active: %s (%s)\n", tab.Title, tab.ID)
			return nil
		},
	}

	cmd.Flags().StringToStringVar(&params, "param", nil, "Tab parameter as key=value (repeatable)")
	return cmd
}

func newCloseCmd(flags *globalFlags) *cobra.Command {
	var others bool

	cmd := &cobra.Command{
		Use:   "close <tab-id>",
		Short: "Close a tab, or every other tab with --others",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if others {
				if err := rt.Shell.CloseOthers(ctx, args[0]); err != nil {
					return gated(err)
				}
			} else {
				closed, err := rt.Shell.CloseTab(ctx, args[0])
				if err != nil {
					return gated(err)
				}
				if !closed {
					return fmt.Errorf("tab %q is not open or cannot be closed", args[0])
				}
			}
			return printTabs(cmd.OutOrStdout(), rt.Shell.State())
		},
	}

	cmd.Flags().BoolVar(&others, "others", false, "Close every tab except this one and Home")
	return cmd
}

func newBackCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "back",
		Short: "Return to the previously active tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if _, err := rt.Shell.Back(ctx); err != nil {
				return gated(err)
			}
			return printTabs(cmd.OutOrStdout(), rt.Shell.State())
		},
	}
}
