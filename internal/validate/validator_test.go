package validate

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scir/internal/ir"
)

// tokenModule builds a small ERC20-style contract: a transfer function
// moving balance between two accounts, guarded by trapping arithmetic.
func tokenModule(t *testing.T) *ir.Module {
	t.Helper()
	mb := ir.NewModuleBuilder("Token")
	mb.DeclareSlot(0, "total_supply", ir.Integer(256))
	mb.DeclareMapping(1, "balances", ir.Address(), ir.Integer(256))
	mb.DeclareEvent("Transfer", ir.Address(), ir.Address(), ir.Integer(256))

	fb := mb.NewFunction("transfer",
		[]ir.Param{{Name: "to", Type: ir.Address()}, {Name: "amount", Type: ir.Integer(256)}},
		[]ir.Type{ir.Boolean()},
		ir.VisPublic, ir.MutNonPayable)

	to, amount := fb.Param(0), fb.Param(1)
	sender, err := fb.Append(0, ir.Instruction{Op: ir.OpGetContext, Context: ir.CtxMsgSender, Type: ir.Address()})
	require.NoError(t, err)
	fromBal, err := fb.Append(0, ir.Instruction{Op: ir.OpMappingLoad, Slot: 1, Args: []ir.Value{sender}, Type: ir.Integer(256)})
	require.NoError(t, err)
	newFrom, err := fb.Append(0, ir.Instruction{
		Op: ir.OpISub, Overflow: ir.OverflowTrap,
		Args: []ir.Value{fromBal, amount}, Type: ir.Integer(256),
	})
	require.NoError(t, err)
	_, err = fb.Append(0, ir.Instruction{Op: ir.OpMappingStore, Slot: 1, Args: []ir.Value{sender, newFrom}})
	require.NoError(t, err)
	toBal, err := fb.Append(0, ir.Instruction{Op: ir.OpMappingLoad, Slot: 1, Args: []ir.Value{to}, Type: ir.Integer(256)})
	require.NoError(t, err)
	newTo, err := fb.Append(0, ir.Instruction{
		Op: ir.OpIAdd, Overflow: ir.OverflowTrap,
		Args: []ir.Value{toBal, amount}, Type: ir.Integer(256),
	})
	require.NoError(t, err)
	_, err = fb.Append(0, ir.Instruction{Op: ir.OpMappingStore, Slot: 1, Args: []ir.Value{to, newTo}})
	require.NoError(t, err)
	_, err = fb.Append(0, ir.Instruction{Op: ir.OpLog, Callee: "Transfer", Args: []ir.Value{sender, to, amount}})
	require.NoError(t, err)
	ok, err := fb.Append(0, ir.Instruction{Op: ir.OpBConst, Bool: true, Type: ir.Boolean()})
	require.NoError(t, err)
	require.NoError(t, fb.Return(0, ok))
	require.NoError(t, fb.Seal())
	return mb.Module()
}

func TestValidTransferHasNoDiagnostics(t *testing.T) {
	diags := Validate(tokenModule(t))
	assert.Empty(t, diags)
}

func TestMissingTerminator(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	mb.NewFunction("f", nil, nil, ir.VisInternal, ir.MutPure)

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Equal(t, KindControlFlow, diags[0].Kind)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Contains(t, diags[0].Message, "no terminator")
}

func TestBranchArityMismatch(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	fb := mb.NewFunction("f", []ir.Param{{Name: "x", Type: ir.Integer(64)}}, nil, ir.VisInternal, ir.MutPure)
	target, _ := fb.AppendBlock(ir.Integer(64), ir.Integer(64))
	require.NoError(t, fb.Jump(0, target, fb.Param(0)))
	require.NoError(t, fb.Return(target))

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Equal(t, KindControlFlow, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "passes 1 arguments, target declares 2")
}

func TestBranchToUndefinedBlock(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	fb := mb.NewFunction("f", nil, nil, ir.VisInternal, ir.MutPure)
	require.NoError(t, fb.Jump(0, 7))

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Equal(t, KindControlFlow, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "branch to undefined block7")
}

func TestUnreachableBlockIsWarning(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	fb := mb.NewFunction("f", nil, nil, ir.VisInternal, ir.MutPure)
	dead, _ := fb.AppendBlock()
	require.NoError(t, fb.Return(0))
	require.NoError(t, fb.Return(dead))

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, KindControlFlow, diags[0].Kind)
	assert.False(t, HasErrors(diags))
}

func TestArithWidthMismatch(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	fb := mb.NewFunction("f",
		[]ir.Param{{Name: "a", Type: ir.Integer(256)}},
		[]ir.Type{ir.Integer(256)},
		ir.VisInternal, ir.MutPure)
	narrow, err := fb.Append(0, ir.Instruction{Op: ir.OpIConst, Const: big.NewInt(5), Type: ir.Integer(128)})
	require.NoError(t, err)
	sum, err := fb.Append(0, ir.Instruction{
		Op: ir.OpIAdd, Overflow: ir.OverflowWrap,
		Args: []ir.Value{fb.Param(0), narrow}, Type: ir.Integer(256),
	})
	require.NoError(t, err)
	require.NoError(t, fb.Return(0, sum))

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Equal(t, KindType, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "expected u256, found u128")
}

func TestComparisonResultMustBeBool(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	fb := mb.NewFunction("f", []ir.Param{{Name: "a", Type: ir.Integer(64)}}, nil, ir.VisInternal, ir.MutPure)
	_, err := fb.Append(0, ir.Instruction{
		Op: ir.OpICmpLt, Args: []ir.Value{fb.Param(0), fb.Param(0)}, Type: ir.Integer(64),
	})
	require.NoError(t, err)
	require.NoError(t, fb.Return(0))

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "result must be bool")
}

func TestReturnArityAndTypes(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	fb := mb.NewFunction("f", nil, []ir.Type{ir.Integer(256), ir.Boolean()}, ir.VisInternal, ir.MutPure)
	v, err := fb.Append(0, ir.Instruction{Op: ir.OpIConst, Const: big.NewInt(1), Type: ir.Integer(256)})
	require.NoError(t, err)
	require.NoError(t, fb.Return(0, v))

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Equal(t, KindType, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "return passes 1 values, signature declares 2")
}

func TestDominanceViolationAcrossBranches(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	fb := mb.NewFunction("f",
		[]ir.Param{{Name: "c", Type: ir.Boolean()}},
		[]ir.Type{ir.Integer(64)},
		ir.VisInternal, ir.MutPure)
	then, _ := fb.AppendBlock()
	els, _ := fb.AppendBlock()
	join, _ := fb.AppendBlock()

	require.NoError(t, fb.Brif(0, fb.Param(0), then, nil, els, nil))
	v, err := fb.Append(then, ir.Instruction{Op: ir.OpIConst, Const: big.NewInt(7), Type: ir.Integer(64)})
	require.NoError(t, err)
	require.NoError(t, fb.Jump(then, join))
	require.NoError(t, fb.Jump(els, join))
	// v is defined only on the then path.
	require.NoError(t, fb.Return(join, v))

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Equal(t, KindDominance, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "does not dominate")
}

func TestUseOfUndefinedValue(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	fb := mb.NewFunction("f", nil, []ir.Type{ir.Integer(64)}, ir.VisInternal, ir.MutPure)
	ghost := fb.Unresolved()
	require.NoError(t, fb.Return(0, ghost))

	diags := Validate(mb.Module())
	require.NotEmpty(t, diags)
	found := false
	for _, d := range diags {
		if d.Kind == KindDominance {
			assert.Contains(t, d.Message, "undefined value")
			found = true
		}
	}
	assert.True(t, found, "expected a dominance diagnostic for the undefined value")
}

func TestViewFunctionCannotMutate(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	mb.DeclareSlot(0, "count", ir.Integer(256))
	fb := mb.NewFunction("peek", nil, nil, ir.VisPublic, ir.MutView)
	v, err := fb.Append(0, ir.Instruction{Op: ir.OpIConst, Const: big.NewInt(1), Type: ir.Integer(256)})
	require.NoError(t, err)
	_, err = fb.Append(0, ir.Instruction{Op: ir.OpStorageStore, Slot: 0, Args: []ir.Value{v}})
	require.NoError(t, err)
	require.NoError(t, fb.Return(0))

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Equal(t, KindMemory, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "view function performs state-mutating storage_store")
}

func TestPureFunctionCannotReadState(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	fb := mb.NewFunction("f", nil, []ir.Type{ir.Integer(256)}, ir.VisInternal, ir.MutPure)
	v, err := fb.Append(0, ir.Instruction{Op: ir.OpGetContext, Context: ir.CtxBlockNumber, Type: ir.Integer(256)})
	require.NoError(t, err)
	require.NoError(t, fb.Return(0, v))

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Equal(t, KindMemory, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "pure function reads state")
}

func TestCallToVoidFunctionCannotBindResult(t *testing.T) {
	mb := ir.NewModuleBuilder("Jobs")
	noop := mb.NewFunction("noop", nil, nil, ir.VisInternal, ir.MutNonPayable)
	require.NoError(t, noop.Return(0))

	fb := mb.NewFunction("run", nil, nil, ir.VisPublic, ir.MutNonPayable)
	_, err := fb.Append(0, ir.Instruction{Op: ir.OpCall, Callee: "noop", Type: ir.Integer(256)})
	require.NoError(t, err)
	require.NoError(t, fb.Return(0))

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Equal(t, KindType, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "returns nothing")
}

func TestUnboundVoidCallIsAccepted(t *testing.T) {
	mb := ir.NewModuleBuilder("Jobs")
	noop := mb.NewFunction("noop", nil, nil, ir.VisInternal, ir.MutNonPayable)
	require.NoError(t, noop.Return(0))

	fb := mb.NewFunction("run", nil, nil, ir.VisPublic, ir.MutNonPayable)
	require.NoError(t, fb.AppendBound(0, ir.Instruction{Op: ir.OpCall, Callee: "noop"}, ir.NoValue))
	require.NoError(t, fb.Return(0))

	assert.Empty(t, Validate(mb.Module()))
}

func TestViewFunctionCannotCallMutator(t *testing.T) {
	mb := ir.NewModuleBuilder("Box")
	mb.DeclareSlot(0, "value", ir.Integer(256))

	bump := mb.NewFunction("bump", nil, nil, ir.VisInternal, ir.MutNonPayable)
	one, err := bump.Append(0, ir.Instruction{Op: ir.OpIConst, Const: big.NewInt(1), Type: ir.Integer(256)})
	require.NoError(t, err)
	_, err = bump.Append(0, ir.Instruction{Op: ir.OpStorageStore, Slot: 0, Args: []ir.Value{one}})
	require.NoError(t, err)
	require.NoError(t, bump.Return(0))

	peek := mb.NewFunction("peek", nil, nil, ir.VisPublic, ir.MutView)
	require.NoError(t, peek.AppendBound(0, ir.Instruction{Op: ir.OpCall, Callee: "bump"}, ir.NoValue))
	require.NoError(t, peek.Return(0))

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Equal(t, KindMemory, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "calls non-view")
}

func TestPureFunctionCannotCallView(t *testing.T) {
	mb := ir.NewModuleBuilder("Box")
	mb.DeclareSlot(0, "value", ir.Integer(256))

	get := mb.NewFunction("get", nil, []ir.Type{ir.Integer(256)}, ir.VisInternal, ir.MutView)
	v, err := get.Append(0, ir.Instruction{Op: ir.OpStorageLoad, Slot: 0, Type: ir.Integer(256)})
	require.NoError(t, err)
	require.NoError(t, get.Return(0, v))

	calc := mb.NewFunction("calc", nil, []ir.Type{ir.Integer(256)}, ir.VisPublic, ir.MutPure)
	r, err := calc.Append(0, ir.Instruction{Op: ir.OpCall, Callee: "get", Type: ir.Integer(256)})
	require.NoError(t, err)
	require.NoError(t, calc.Return(0, r))

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Equal(t, KindMemory, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "calls impure")
}

func TestStaticCallIsReadOnly(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	fb := mb.NewFunction("probe", []ir.Param{{Name: "target", Type: ir.Address()}}, nil, ir.VisPublic, ir.MutView)
	_, err := fb.Append(0, ir.Instruction{
		Op: ir.OpExtCall, Kind: ir.CallKindStatic,
		Args: []ir.Value{fb.Param(0)}, Type: ir.Pointer(ir.SpaceTransient),
	})
	require.NoError(t, err)
	require.NoError(t, fb.Return(0))

	assert.Empty(t, Validate(mb.Module()))
}

func TestStoreIntoImmutableSpace(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	fb := mb.NewFunction("f", []ir.Param{{Name: "p", Type: ir.Pointer(ir.SpaceCalldata)}}, nil, ir.VisInternal, ir.MutPure)
	v, err := fb.Append(0, ir.Instruction{Op: ir.OpIConst, Const: big.NewInt(1), Type: ir.Integer(256)})
	require.NoError(t, err)
	_, err = fb.Append(0, ir.Instruction{
		Op: ir.OpStore, Space: ir.SpaceCalldata, Align: 32,
		Args: []ir.Value{fb.Param(0), v}, Type: ir.Integer(256),
	})
	require.NoError(t, err)
	require.NoError(t, fb.Return(0))

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Equal(t, KindMemory, diags[0].Kind)
	assert.Contains(t, diags[0].Message, "store into immutable calldata space")
}

func TestSpaceMismatchThroughPointer(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	fb := mb.NewFunction("f", []ir.Param{{Name: "p", Type: ir.Pointer(ir.SpaceCalldata)}}, []ir.Type{ir.Integer(256)}, ir.VisInternal, ir.MutPure)
	v, err := fb.Append(0, ir.Instruction{
		Op: ir.OpLoad, Space: ir.SpaceTransient, Align: 32,
		Args: []ir.Value{fb.Param(0)}, Type: ir.Integer(256),
	})
	require.NoError(t, err)
	require.NoError(t, fb.Return(0, v))

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "load.transient through a calldata pointer")
}

func TestAlignmentMustBePowerOfTwo(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	fb := mb.NewFunction("f", nil, nil, ir.VisInternal, ir.MutPure)
	_, err := fb.Append(0, ir.Instruction{
		Op: ir.OpAlloc, Space: ir.SpaceTransient, Align: 12,
		Const: big.NewInt(64), Type: ir.Pointer(ir.SpaceTransient),
	})
	require.NoError(t, err)
	require.NoError(t, fb.Return(0))

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "alignment 12 is not a power of two")
}

func TestDuplicateSlotDeclaration(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	mb.DeclareSlot(0, "a", ir.Integer(256))
	mb.DeclareSlot(0, "b", ir.Integer(256))

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "duplicate declaration of slot 0")
}

func TestEntryParamsCheckedAgainstSignature(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	fb := mb.NewFunction("f", []ir.Param{{Name: "a", Type: ir.Integer(256)}}, nil, ir.VisInternal, ir.MutPure)
	require.NoError(t, fb.Return(0))
	// Detach the signature from the entry block after construction.
	fb.Func().Params = append(fb.Func().Params, ir.Param{Name: "b", Type: ir.Boolean()})

	diags := Validate(mb.Module())
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Message, "entry block declares 1 parameters, signature declares 2")
}

func TestAllViolationsReported(t *testing.T) {
	mb := ir.NewModuleBuilder("T")
	fb := mb.NewFunction("f", nil, nil, ir.VisPublic, ir.MutView)
	v, err := fb.Append(0, ir.Instruction{Op: ir.OpIConst, Const: big.NewInt(1), Type: ir.Integer(256)})
	require.NoError(t, err)
	_, err = fb.Append(0, ir.Instruction{Op: ir.OpStorageStore, Slot: 9, Args: []ir.Value{v}})
	require.NoError(t, err)
	// Missing terminator on top of the undeclared slot and the view
	// violation: three findings, all reported in one run.

	diags := Validate(mb.Module())
	assert.GreaterOrEqual(t, len(diags), 3)
}
