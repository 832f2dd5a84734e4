package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/otcheck"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of otcheck",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "otcheck version %s\n", strings.TrimSpace(otcheck.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
