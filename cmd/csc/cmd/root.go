// Package cmd implements the csc command-line driver: a cobra command tree
// wrapping pkg/csc's Compile pipeline with the flag surface and exit codes
// spec §6 documents for bit-compat with the reference CLI.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build-time version metadata, set via -ldflags at release build time.
var (
	Version   = "dev"
	GitCommit = "none"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "csc",
	Short:   "csc compiles a managed, class-based language to bytecode",
	Long:    "csc is the reference compiler driver: it lexes, parses, resolves, and emits a source file through the RuntimeTypeFactory backend.",
	Version: Version,
}

// Execute runs the root command, returning the exit code the process should
// use. It never calls os.Exit itself so callers (and tests) can observe the
// code without killing the test binary.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return exitCodeFor(err)
	}
	return 0
}

// RootCmd exposes the root cobra.Command so main can set its args after
// response-file and DOS-flag translation.
func RootCmd() *cobra.Command { return rootCmd }

// PreprocessArgs is the exported entry point to this package's @response-
// file and /name:value flag translation, for main to call before SetArgs.
func PreprocessArgs(args []string) ([]string, error) { return preprocessArgs(args) }

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("csc version %s (commit %s, built %s)\n", Version, GitCommit, BuildDate))
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "load default flags from a YAML config file")
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(versionCmd)
}

// exitWithError prints err to stderr and returns the exit code matching the
// failure class, per spec §6's 0/1/2/8/19 contract.
func exitWithError(err error) int {
	fmt.Fprintln(os.Stderr, err)
	return exitCodeFor(err)
}
