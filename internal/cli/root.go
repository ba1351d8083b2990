// Package cli wires the cobra command tree to internal/driver: flag
// parsing, .cmut.yaml defaults, verbose logging, and the final
// TTY-aware summary report.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cmut",
	Short: "cmut instruments C/C++ translation units for mutation testing",
	Long: `cmut rewrites C/C++ source into an instrumented form where each
candidate mutation is dispatched through a small runtime library,
and emits a JSON manifest describing every mutation it planted.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command, exiting the process with status 1 on
// any reported error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
