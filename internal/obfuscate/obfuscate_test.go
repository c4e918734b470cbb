package obfuscate

import (
	"fmt"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scir/internal/ir"
	"scir/internal/textual"
	"scir/internal/validate"
)

const tokenSource = `contract %Token {
    slot 0 total_supply : u256
    slot 1 balances : mapping(u160 => u256)
    event %Transfer(u160, u160, u256)

    function %transfer(to: u160, amount: u256) -> bool public {
    block0(v0: u160, v1: u256):
        v2 = get_context msg.sender : u160
        v3 = mapping_load slot1, v2 : u256
        v4 = isub.trap v3, v1 : u256
        mapping_store slot1, v2, v4
        v5 = mapping_load slot1, v0 : u256
        v6 = iadd.trap v5, v1 : u256
        mapping_store slot1, v0, v6
        log %Transfer(v2, v0, v1)
        v7 = bconst true
        return v7
    }

    function %total_supply() -> u256 public view {
    block0:
        v0 = storage_load slot0 : u256
        return v0
    }
}
`

func tokenModule(t *testing.T) *ir.Module {
	t.Helper()
	m, err := textual.Parse("token.scir", tokenSource)
	require.NoError(t, err)
	require.Empty(t, validate.Validate(m))
	return m
}

func fullConfig(salt string) Config {
	cfg := DefaultConfig()
	cfg.Salt = salt
	return cfg
}

func TestRunIsDeterministic(t *testing.T) {
	m := tokenModule(t)

	a, ma, err := Run(m, fullConfig("hunter2"))
	require.NoError(t, err)
	b, mb, err := Run(m, fullConfig("hunter2"))
	require.NoError(t, err)

	assert.Equal(t, textual.Emit(a, textual.Options{}), textual.Emit(b, textual.Options{}))
	assert.Equal(t, ma.Pairs(), mb.Pairs())
}

func TestDifferentSaltsDiverge(t *testing.T) {
	m := tokenModule(t)

	a, _, err := Run(m, fullConfig("hunter2"))
	require.NoError(t, err)
	b, _, err := Run(m, fullConfig("hunter3"))
	require.NoError(t, err)

	assert.NotEqual(t, a.Name, b.Name)
	assert.NotEqual(t, a.Functions[0].Name, b.Functions[0].Name)
}

var obfNamePattern = regexp.MustCompile(`^[cfes]_[0-9a-f]{12}$`)

func TestNameShape(t *testing.T) {
	m := tokenModule(t)

	out, mapping, err := Run(m, fullConfig("hunter2"))
	require.NoError(t, err)

	assert.Regexp(t, `^c_[0-9a-f]{12}$`, out.Name)
	for _, f := range out.Functions {
		assert.Regexp(t, `^f_[0-9a-f]{12}$`, f.Name)
	}
	for _, e := range out.Events {
		assert.Regexp(t, `^e_[0-9a-f]{12}$`, e.Name)
	}
	for _, s := range out.Slots {
		assert.Regexp(t, `^s_[0-9a-f]{12}$`, s.Name)
	}

	seen := make(map[string]bool)
	for _, p := range mapping.Pairs() {
		assert.Regexp(t, obfNamePattern, p.Obfuscated)
		assert.False(t, seen[p.Obfuscated], "duplicate obfuscated name %s", p.Obfuscated)
		seen[p.Obfuscated] = true
	}
	// Contract, two functions, one event, two named slots.
	assert.Equal(t, 6, mapping.Len())
}

func TestParamsBecomePositional(t *testing.T) {
	m := tokenModule(t)

	out, mapping, err := Run(m, fullConfig("hunter2"))
	require.NoError(t, err)

	transfer := out.Functions[0]
	require.Len(t, transfer.Params, 2)
	assert.Equal(t, "p0", transfer.Params[0].Name)
	assert.Equal(t, "p1", transfer.Params[1].Name)
	_, ok := mapping.Obfuscated("to")
	assert.False(t, ok, "parameter names must not be recorded")
}

func TestStructureIsPreserved(t *testing.T) {
	m := tokenModule(t)

	out, _, err := Run(m, fullConfig("hunter2"))
	require.NoError(t, err)

	assert.Empty(t, validate.Validate(out))
	require.Len(t, out.Functions, len(m.Functions))
	for i, f := range m.Functions {
		require.Len(t, out.Functions[i].Blocks, len(f.Blocks))
		for bi, blk := range f.Blocks {
			got := out.Functions[i].Blocks[bi]
			require.Len(t, got.Instrs, len(blk.Instrs))
			for ii, in := range blk.Instrs {
				assert.Equal(t, in.Op, got.Instrs[ii].Op)
			}
		}
	}

	// Internal references follow the renaming.
	logInstr := out.Functions[0].Blocks[0].Instrs[7]
	require.Equal(t, ir.OpLog, logInstr.Op)
	assert.Equal(t, out.Events[0].Name, logInstr.Callee)
}

func TestInputModuleUntouched(t *testing.T) {
	m := tokenModule(t)
	before := textual.Emit(m, textual.Options{})

	_, _, err := Run(m, fullConfig("hunter2"))
	require.NoError(t, err)

	assert.Equal(t, before, textual.Emit(m, textual.Options{}))
}

func TestLevelContractsRenamesContractOnly(t *testing.T) {
	m := tokenModule(t)

	cfg := fullConfig("hunter2")
	cfg.Level = LevelContracts
	out, mapping, err := Run(m, cfg)
	require.NoError(t, err)

	assert.NotEqual(t, m.Name, out.Name)
	assert.Equal(t, "transfer", out.Functions[0].Name)
	assert.Equal(t, "Transfer", out.Events[0].Name)
	assert.Equal(t, "balances", out.Slots[1].Name)
	assert.Equal(t, "to", out.Functions[0].Params[0].Name)
	assert.Equal(t, 1, mapping.Len())
}

func TestEmptySaltIsRejected(t *testing.T) {
	m := tokenModule(t)

	_, _, err := Run(m, DefaultConfig())
	require.ErrorIs(t, err, ErrEmptySalt)
}

func TestMappingLookupAndRewrite(t *testing.T) {
	m := tokenModule(t)

	out, mapping, err := Run(m, fullConfig("hunter2"))
	require.NoError(t, err)

	orig, ok := mapping.Original(out.Functions[0].Name)
	require.True(t, ok)
	assert.Equal(t, "transfer", orig)
	obf, ok := mapping.Obfuscated("Transfer")
	require.True(t, ok)
	assert.Equal(t, out.Events[0].Name, obf)

	report := fmt.Sprintf("%s: array out of bounds in %%%s", out.Name, out.Functions[0].Name)
	assert.Equal(t, "Token: array out of bounds in %transfer", mapping.Rewrite(report))
}

func TestMappingRoundTrip(t *testing.T) {
	m := tokenModule(t)

	_, mapping, err := Run(m, fullConfig("hunter2"))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "token.map")
	require.NoError(t, mapping.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, mapping.Level(), loaded.Level())
	assert.Equal(t, mapping.Pairs(), loaded.Pairs())
}

func TestCollisionRetrySuffix(t *testing.T) {
	mapping := NewMapping(LevelFull)
	n := &namer{salt: []byte("s"), retries: 4, mapping: mapping}

	first, err := n.rename("function", "f_", "spend")
	require.NoError(t, err)

	// Occupy the derived name so a second rename of the same identifier is
	// forced onto the suffix path.
	second, err := n.rename("function", "f_", "spend")
	require.NoError(t, err)
	assert.Equal(t, first+"_1", second)

	n.retries = 0
	_, err = n.rename("function", "f_", "spend")
	require.Error(t, err)
}
