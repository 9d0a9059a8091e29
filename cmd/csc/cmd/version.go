package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print the csc version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("csc version %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}
