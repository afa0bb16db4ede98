package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/erpshell/internal/shared/types"
)

func newModulesCmd(flags *globalFlags) *cobra.Command {
	var search string
	var sync bool

	cmd := &cobra.Command{
		Use:   "modules [key]",
		Short: "List the module catalog or load one module",
		Long: `Without arguments, lists the catalog. With a key, resolves the module's
component the same way opening a tab would and prints what was loaded.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := flags.open(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if sync {
				added, err := rt.SyncApps(ctx)
				if err != nil {
					return fmt.Errorf("sync apps: %w", err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Synced %d backend apps.\n", added)
			}

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				comp := rt.Modules.Load(ctx, args[0])
				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "Key:\t%s\n", comp.Key)
				fmt.Fprintf(w, "Title:\t%s\n", comp.Descriptor.Title)
				fmt.Fprintf(w, "Source:\t%s\n", comp.Source)
				if comp.Placeholder() {
					fmt.Fprintf(w, "Reason:\t%s\n", comp.Reason)
				}
				for _, r := range comp.Routes {
					fmt.Fprintf(w, "Route:\t%s -> %s\n", r.Path, r.Component)
				}
				return w.Flush()
			}

			var list []types.ModuleDescriptor
			if search != "" {
				list = rt.Shell.Search(search)
			} else {
				list = rt.Shell.Modules()
			}
			if len(list) == 0 {
				fmt.Fprintln(out, "No modules found.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "KEY\tTITLE\tCATEGORY\tENDPOINT")
			for _, m := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Key, m.Title, m.Category, orDash(m.Endpoint))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Filter by key, title, category or tag")
	cmd.Flags().BoolVar(&sync, "sync", false, "Pull active apps from the backend first")
	return cmd
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
