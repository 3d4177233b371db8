package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"svelab/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show svelab build information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		v := strings.TrimSpace(version.Version)
		if v == "" {
			v = "dev"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "svelab %s\n", v)
		if version.GitCommit != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", version.GitCommit)
		}
		if version.BuildDate != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "built:  %s\n", version.BuildDate)
		}
		return nil
	},
}
