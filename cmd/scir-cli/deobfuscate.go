package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"scir/internal/obfuscate"
)

var deobfMapping string

var deobfuscateCmd = &cobra.Command{
	Use:   "deobfuscate [file]",
	Short: "Rewrite obfuscated identifiers in a report back to originals",
	Long: `Deobfuscate reads report text, from a file or stdin, and replaces every
obfuscated identifier recorded in the mapping with its original name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeobfuscate,
}

func init() {
	deobfuscateCmd.Flags().StringVar(&deobfMapping, "mapping", "", "mapping artifact written by obfuscate")
	deobfuscateCmd.MarkFlagRequired("mapping")
}

func runDeobfuscate(cmd *cobra.Command, args []string) error {
	mapping, err := obfuscate.Load(deobfMapping)
	if err != nil {
		return err
	}

	var text []byte
	if len(args) == 1 {
		text, err = os.ReadFile(args[0])
	} else {
		text, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("failed to read report: %w", err)
	}

	fmt.Print(mapping.Rewrite(string(text)))
	return nil
}
