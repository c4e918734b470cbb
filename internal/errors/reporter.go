package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"scir/internal/textual"
	"scir/internal/validate"
)

// Reporter formats reader and validator findings for the terminal with
// Rust-like styling. Syntax errors point into the source with a caret;
// validator diagnostics locate by function, block, and instruction index.
type Reporter struct {
	filename string
	lines    []string
}

// NewReporter creates a reporter over one source file.
func NewReporter(filename, source string) *Reporter {
	return &Reporter{
		filename: filename,
		lines:    strings.Split(source, "\n"),
	}
}

// FormatSyntax renders a syntax error with the offending line and a caret.
func (r *Reporter) FormatSyntax(err *textual.SyntaxError) string {
	var result strings.Builder

	errColor := color.New(color.FgRed, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	result.WriteString(fmt.Sprintf("%s: %s\n", errColor("error"), err.Msg))
	result.WriteString(fmt.Sprintf("  %s %s:%d:%d\n", dim("-->"), r.filename, err.Line, err.Column))

	if err.Line > 0 && err.Line <= len(r.lines) {
		lineContent := r.lines[err.Line-1]
		result.WriteString(fmt.Sprintf("%s %s %s\n", bold(fmt.Sprintf("%4d", err.Line)), dim("│"), lineContent))
		caret := strings.Repeat(" ", max(err.Column-1, 0)) + errColor("^")
		result.WriteString(fmt.Sprintf("     %s %s\n", dim("│"), caret))
	}
	return result.String()
}

// FormatDiagnostic renders one validator finding.
func (r *Reporter) FormatDiagnostic(d validate.Diagnostic) string {
	levelColor := color.New(color.FgRed, color.Bold).SprintFunc()
	if d.Severity == validate.SeverityWarning {
		levelColor = color.New(color.FgYellow, color.Bold).SprintFunc()
	}
	dim := color.New(color.Faint).SprintFunc()

	loc := ""
	if d.Function != "" {
		loc = "%" + d.Function
		if d.Block >= 0 {
			loc += fmt.Sprintf("/block%d", d.Block)
			if d.Instr >= 0 {
				loc += fmt.Sprintf("/inst%d", d.Instr)
			}
		}
		loc += ": "
	}
	return fmt.Sprintf("%s[%s]: %s%s", levelColor(d.Severity.String()), dim(d.Kind.String()), loc, d.Message)
}

// Summarize renders a closing count line the way compilers do.
func (r *Reporter) Summarize(diags []validate.Diagnostic) string {
	var errs, warns int
	for _, d := range diags {
		if d.Severity == validate.SeverityError {
			errs++
		} else {
			warns++
		}
	}
	switch {
	case errs > 0:
		errColor := color.New(color.FgRed, color.Bold).SprintFunc()
		return fmt.Sprintf("%s: %d error(s), %d warning(s)", errColor("validation failed"), errs, warns)
	case warns > 0:
		warnColor := color.New(color.FgYellow, color.Bold).SprintFunc()
		return fmt.Sprintf("%s: %d warning(s)", warnColor("validation passed"), warns)
	default:
		okColor := color.New(color.FgGreen, color.Bold).SprintFunc()
		return okColor("validation passed")
	}
}
