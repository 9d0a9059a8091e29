// Command csc is the reference compiler driver.
package main

import (
	"fmt"
	"os"

	"github.com/csc-go/compiler/cmd/csc/cmd"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	translated, err := cmd.PreprocessArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cmd.RootCmd().SetArgs(translated)
	return cmd.Execute()
}
