package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"scir/internal/textual"
	"scir/internal/validate"
)

const brokenSource = `contract %Counter {
    slot 0 count : u256

    function %bump() -> u256 public view {
    block0:
        v0 = storage_load slot0 : u256
        v1 = iconst 1 : u256
        v2 = iadd.trap v0, v1 : u256
        storage_store slot0, v2
        return v2
    }
}
`

func TestValidationDiagnosticsCarryPositions(t *testing.T) {
	m, index, err := textual.ParseIndexed("counter.scir", brokenSource)
	require.NoError(t, err)

	diags := validate.Validate(m)
	require.NotEmpty(t, diags, "view function writing storage must be flagged")

	out := validationDiagnostics(diags, index)
	require.Len(t, out, len(diags))

	// The effect violation points at the storage_store line.
	found := false
	for _, d := range out {
		if *d.Source == "scir-memory" {
			assert.Equal(t, uint32(8), d.Range.Start.Line)
			assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
			found = true
		}
	}
	assert.True(t, found)
}

func TestSyntaxDiagnosticPosition(t *testing.T) {
	_, err := textual.Parse("bad.scir", "contract %X {\n    slot one : u8\n}\n")
	require.Error(t, err)
	syn, ok := err.(*textual.SyntaxError)
	require.True(t, ok)

	d := syntaxDiagnostic(syn)
	assert.Equal(t, uint32(1), d.Range.Start.Line)
	assert.Equal(t, "scir-parser", *d.Source)
}

func TestLocateFallsBackToHeader(t *testing.T) {
	_, index, err := textual.ParseIndexed("counter.scir", brokenSource)
	require.NoError(t, err)

	// A declaration-level finding has no block or instruction.
	pos := locate(validate.Diagnostic{Function: "bump", Block: -1, Instr: -1}, index)
	assert.Equal(t, 4, pos.Line)

	pos = locate(validate.Diagnostic{Function: "missing"}, index)
	assert.Equal(t, textual.Location{Line: 1, Column: 1}, pos)
}
