package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/shopsearch/internal/version"
)

func versionCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shopsearch %s (commit %s, built %s)\n",
				version.Version, version.Commit, version.Date)
		},
	}
}
