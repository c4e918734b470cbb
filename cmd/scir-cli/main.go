// SPDX-License-Identifier: Apache-2.0
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "scir-cli",
	Short:         "Contract IR analysis toolchain",
	Long:          `scir-cli parses, validates, re-emits, and obfuscates contract IR files`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(obfuscateCmd)
	rootCmd.AddCommand(deobfuscateCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
