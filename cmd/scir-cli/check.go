package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scir/internal/errors"
	"scir/internal/textual"
	"scir/internal/validate"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Parse and validate a contract IR file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	diags, err := validate.ValidateConcurrent(cmd.Context(), module)
	if err != nil {
		return err
	}
	for _, d := range diags {
		fmt.Println(reporter.FormatDiagnostic(d))
	}
	fmt.Println(reporter.Summarize(diags))

	if validate.HasErrors(diags) {
		os.Exit(1)
	}
	return nil
}
