package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scir/internal/errors"
	"scir/internal/textual"
	"scir/internal/validate"
)

var emitStrip bool

var emitCmd = &cobra.Command{
	Use:   "emit <file>",
	Short: "Re-emit a contract IR file in its canonical spelling",
	Args:  cobra.ExactArgs(1),
	RunE:  runEmit,
}

func init() {
	emitCmd.Flags().BoolVar(&emitStrip, "strip", false, "drop source locations and comments")
}

func runEmit(cmd *cobra.Command, args []string) error {
	path := args[0]
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	reporter := errors.NewReporter(path, string(source))

	module, err := textual.Parse(path, string(source))
	if err != nil {
		if syn, ok := err.(*textual.SyntaxError); ok {
			fmt.Print(reporter.FormatSyntax(syn))
			os.Exit(1)
		}
		return err
	}

	diags := validate.Validate(module)
	if validate.HasErrors(diags) {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, reporter.FormatDiagnostic(d))
		}
		fmt.Fprintln(os.Stderr, reporter.Summarize(diags))
		os.Exit(1)
	}

	fmt.Print(textual.Emit(module, textual.Options{StripMetadata: emitStrip}))
	return nil
}
