package main

import (
	"fmt"

	"github.com/spf13/cobra"

	apihttp "github.com/GriffinCanCode/erpshell/internal/api/http"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "erpshell %s\n", apihttp.Version)
		},
	}
}
