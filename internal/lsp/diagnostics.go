package lsp

import (
	protocol "github.com/tliron/glsp/protocol_3_16"

	"scir/internal/textual"
	"scir/internal/validate"
)

// syntaxDiagnostic transforms a reader error into an LSP diagnostic. The
// reader stops at the first error, so there is always exactly one.
func syntaxDiagnostic(err *textual.SyntaxError) protocol.Diagnostic {
	line := uint32(max(err.Line-1, 0))
	char := uint32(max(err.Column-1, 0))

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: char},
			End:   protocol.Position{Line: line, Character: char + 4}, // Rough span for visibility
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("scir-parser"),
		Message:  err.Msg,
	}
}

// validationDiagnostics transforms validator findings into LSP diagnostics,
// locating each by its function, block, and instruction through the
// position index.
func validationDiagnostics(diags []validate.Diagnostic, index textual.PositionIndex) []protocol.Diagnostic {
	var out []protocol.Diagnostic
	for _, d := range diags {
		pos := locate(d, index)
		line := uint32(max(pos.Line-1, 0))
		char := uint32(max(pos.Column-1, 0))

		severity := protocol.DiagnosticSeverityError
		if d.Severity == validate.SeverityWarning {
			severity = protocol.DiagnosticSeverityWarning
		}

		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: line, Character: char},
				End:   protocol.Position{Line: line, Character: char + 4},
			},
			Severity: ptrSeverity(severity),
			Source:   ptrString("scir-" + d.Kind.String()),
			Message:  d.Message,
		})
	}
	return out
}

func locate(d validate.Diagnostic, index textual.PositionIndex) textual.Location {
	fi := index[d.Function]
	if fi == nil {
		return textual.Location{Line: 1, Column: 1}
	}
	if d.Block < 0 || d.Block >= len(fi.Blocks) {
		return fi.Header
	}
	bi := fi.Blocks[d.Block]
	switch {
	case d.Instr < 0:
		return bi.Header
	case d.Instr < len(bi.Instrs):
		return bi.Instrs[d.Instr]
	default:
		return bi.Term
	}
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func ptrString(s string) *string {
	return &s
}
