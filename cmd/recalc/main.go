// Package main is the recalc command-line entry point.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/recalc/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "recalc:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
