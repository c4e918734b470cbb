package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"scir/internal/errors"
	"scir/internal/obfuscate"
	"scir/internal/textual"
	"scir/internal/validate"
)

var (
	obfSalt    string
	obfLevel   string
	obfMapping string
	obfConfig  string
	obfOutput  string
)

var obfuscateCmd = &cobra.Command{
	Use:   "obfuscate <file>",
	Short: "Rename a contract's identifiers behind salted hashes",
	Long: `Obfuscate renames the contract's identifiers deterministically from a
salted hash and writes the renamed IR plus a mapping artifact. Only
validated input is accepted.`,
	Args: cobra.ExactArgs(1),
	RunE: runObfuscate,
}

func init() {
	obfuscateCmd.Flags().StringVar(&obfSalt, "salt", "", "secret salt keying the renaming")
	obfuscateCmd.Flags().StringVar(&obfLevel, "level", "", "obfuscation level (contracts|functions|full)")
	obfuscateCmd.Flags().StringVar(&obfMapping, "mapping", "", "path to write the mapping artifact")
	obfuscateCmd.Flags().StringVar(&obfConfig, "config", "", "TOML config file")
	obfuscateCmd.Flags().StringVarP(&obfOutput, "output", "o", "", "write renamed IR here instead of stdout")
}

func runObfuscate(cmd *cobra.Command, args []string) error {
	cfg := obfuscate.DefaultConfig()
	if obfConfig != "" {
		loaded, err := obfuscate.LoadConfig(obfConfig)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if obfSalt != "" {
		cfg.Salt = obfSalt
	}
	if obfLevel != "" {
		level, ok := obfuscate.LevelByName[obfLevel]
		if !ok {
			return fmt.Errorf("unknown obfuscation level %q", obfLevel)
		}
		cfg.Level = level
	}

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
		return fmt.Errorf("refusing to obfuscate a module that fails validation")
	}

	renamed, mapping, err := obfuscate.Run(module, cfg)
	if err != nil {
		return err
	}

	out := textual.Emit(renamed, textual.Options{StripMetadata: true})
	if obfOutput != "" {
		if err := os.WriteFile(obfOutput, []byte(out), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	} else {
		fmt.Print(out)
	}

	if obfMapping != "" {
		if err := mapping.Save(obfMapping); err != nil {
			return err
		}
	}
	return nil
}
