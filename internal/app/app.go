// Package app wires the root command and owns exit-code policy.
package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dehvCurtis/RustDefend/internal/cli"
)

func BuildRoot() *cobra.Command {
	root := &cobra.Command{
		Use:           "rustdefend",
		Short:         "Static security analysis for Rust smart contracts",
		Long:          "RustDefend scans Solana, CosmWasm, NEAR and ink! contract source trees for common security defects.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cli.AddCommands(root)
	return root
}

// Run executes the CLI and returns the process exit code: 0 clean,
// 1 findings detected, 2 usage or scan failure.
func Run() int {
	if err := BuildRoot().Execute(); err != nil {
		if errors.Is(err, cli.ErrFindingsDetected) {
			return 1
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}
