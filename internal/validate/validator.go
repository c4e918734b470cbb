package validate

import (
	"fmt"

	"scir/internal/ir"
)

// Validate decides whether a module satisfies every IR invariant: SSA
// dominance, structural type agreement, control-flow well-formedness, and
// memory/effect discipline. It reports every violation found, never just
// the first, and never mutates its input. An empty result means the module
// is accepted for emission, obfuscation, and analysis.
func Validate(m *ir.Module) []Diagnostic {
	diags := checkDeclarations(m)
	for _, f := range m.Functions {
		diags = append(diags, validateFunction(m, f)...)
	}
	sortDiagnostics(diags, functionOrder(m))
	return diags
}

func functionOrder(m *ir.Module) map[string]int {
	order := make(map[string]int, len(m.Functions)+1)
	order[""] = -1
	for i, f := range m.Functions {
		if _, seen := order[f.Name]; !seen {
			order[f.Name] = i
		}
	}
	return order
}

// checkDeclarations validates the module-level namespace: slot indices,
// function names, and event names must be unique, and declared types valid.
func checkDeclarations(m *ir.Module) []Diagnostic {
	var diags []Diagnostic
	moduleErr := func(kind Kind, format string, args ...interface{}) {
		diags = append(diags, Diagnostic{
			Kind: kind, Severity: SeverityError,
			Block: -1, Instr: -1,
			Message: fmt.Sprintf(format, args...),
		})
	}

	slots := make(map[uint32]bool)
	for _, s := range m.Slots {
		if slots[s.Index] {
			moduleErr(KindType, "duplicate declaration of slot %d", s.Index)
		}
		slots[s.Index] = true
		if !s.Type.Valid() || s.Type.IsPtr() {
			moduleErr(KindType, "slot %d declares unstorable type %s", s.Index, s.Type)
		}
		if s.Kind == ir.SlotMapping && (!s.Key.Valid() || s.Key.IsPtr()) {
			moduleErr(KindType, "mapping slot %d declares invalid key type %s", s.Index, s.Key)
		}
	}

	funcs := make(map[string]bool)
	for _, f := range m.Functions {
		if funcs[f.Name] {
			moduleErr(KindType, "duplicate function %%%s", f.Name)
		}
		funcs[f.Name] = true
	}

	events := make(map[string]bool)
	for _, e := range m.Events {
		if events[e.Name] {
			moduleErr(KindType, "duplicate event %%%s", e.Name)
		}
		events[e.Name] = true
	}
	return diags
}

// funcValidator accumulates diagnostics for a single function. Each pass is
// total over the function and independent of the others.
type funcValidator struct {
	m     *ir.Module
	f     *ir.Function
	diags []Diagnostic
}

// validateFunction runs the four passes over one function. Functions share
// no mutable state, so callers may fan this out per function and merge.
func validateFunction(m *ir.Module, f *ir.Function) []Diagnostic {
	v := &funcValidator{m: m, f: f}
	v.controlFlowPass()
	v.typePass()
	v.dominancePass()
	v.memoryPass()
	return v.diags
}

func (v *funcValidator) report(kind Kind, sev Severity, block, instr int, format string, args ...interface{}) {
	v.diags = append(v.diags, Diagnostic{
		Kind: kind, Severity: sev,
		Function: v.f.Name,
		Block:    block, Instr: instr,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *funcValidator) errorf(kind Kind, block, instr int, format string, args ...interface{}) {
	v.report(kind, SeverityError, block, instr, format, args...)
}

// controlFlowPass checks terminator presence, branch-target sanity, and
/// branch/parameter arity. Unreachable blocks are advisory only: dead code
// is not a soundness violation.
func (v *funcValidator) controlFlowPass() {
	if len(v.f.Blocks) == 0 {
		v.errorf(KindControlFlow, -1, -1, "function has no blocks")
		return
	}
	for bi, blk := range v.f.Blocks {
		if blk.Term == nil {
			v.errorf(KindControlFlow, bi, len(blk.Instrs), "block%d has no terminator", bi)
			continue
		}
		term := blk.Term
		checkEdge := func(target ir.BlockID, args []ir.Value) {
			if target < 0 || int(target) >= len(v.f.Blocks) {
				v.errorf(KindControlFlow, bi, len(blk.Instrs), "branch to undefined %s", target)
				return
			}
			params := v.f.Blocks[target].Params
			if len(args) != len(params) {
				v.errorf(KindControlFlow, bi, len(blk.Instrs),
					"branch to %s passes %d arguments, target declares %d parameters",
					target, len(args), len(params))
			}
		}
		switch term.Kind {
		case ir.TermJump:
			checkEdge(term.Then, term.ThenArgs)
		case ir.TermBrif:
			checkEdge(term.Then, term.ThenArgs)
			checkEdge(term.Else, term.ElseArgs)
		case ir.TermReturn, ir.TermTrap:
		default:
			v.errorf(KindControlFlow, bi, len(blk.Instrs), "block%d has an invalid terminator", bi)
		}
	}

	dom := ir.BuildDomTree(v.f)
	for bi := range v.f.Blocks {
		if !dom.Reachable(ir.BlockID(bi)) {
			v.report(KindControlFlow, SeverityWarning, bi, -1, "block%d is unreachable", bi)
		}
	}
}

// typePass checks every instruction against its opcode's declared
// signature, branch arguments against target block parameters, returns
// against the function's result types, and the entry block against the
// signature.
func (v *funcValidator) typePass() {
	f := v.f

	if entry := f.Entry(); entry != nil {
		if len(entry.Params) != len(f.Params) {
			v.errorf(KindType, 0, -1,
				"entry block declares %d parameters, signature declares %d",
				len(entry.Params), len(f.Params))
		} else {
			for i, p := range entry.Params {
				if p.Type != f.Params[i].Type {
					v.errorf(KindType, 0, -1,
						"entry parameter %d: expected %s, found %s", i, f.Params[i].Type, p.Type)
				}
			}
		}
	}

	for bi, blk := range f.Blocks {
		for _, p := range blk.Params {
			if !p.Type.Valid() {
				v.errorf(KindType, bi, -1, "block parameter %s has invalid type", p.Value)
			}
		}
		for ii, in := range blk.Instrs {
			v.checkInstruction(bi, ii, in)
		}
		if blk.Term != nil {
			v.checkTerminator(bi, blk)
		}
	}
}

func (v *funcValidator) typeOf(val ir.Value) ir.Type {
	return v.f.ValueType(val)
}

// expectArgs reports and returns false when the operand count is off; the
// per-operand checks are skipped in that case to avoid cascading noise.
func (v *funcValidator) expectArgs(bi, ii int, in *ir.Instruction, n int) bool {
	if len(in.Args) != n {
		v.errorf(KindType, bi, ii, "%s expects %d operands, found %d", in.Op, n, len(in.Args))
		return false
	}
	return true
}

func (v *funcValidator) expectType(bi, ii int, in *ir.Instruction, what string, want, got ir.Type) {
	if want != got {
		v.errorf(KindType, bi, ii, "%s %s: expected %s, found %s", in.Op, what, want, got)
	}
}

func (v *funcValidator) checkInstruction(bi, ii int, in *ir.Instruction) {
	switch in.Op {
	case ir.OpIConst:
		if !v.expectArgs(bi, ii, in, 0) {
			return
		}
		if !in.Type.IsInt() || !in.Type.Valid() {
			v.errorf(KindType, bi, ii, "iconst result must be an integer type, found %s", in.Type)
			return
		}
		if in.Const == nil {
			v.errorf(KindType, bi, ii, "iconst has no immediate")
		} else if in.Const.BitLen() > int(in.Type.Bits) {
			v.errorf(KindType, bi, ii, "iconst immediate %s does not fit %s", in.Const, in.Type)
		}

	case ir.OpBConst:
		if v.expectArgs(bi, ii, in, 0) && !in.Type.IsBool() {
			v.errorf(KindType, bi, ii, "bconst result must be bool, found %s", in.Type)
		}

	case ir.OpIAdd, ir.OpISub, ir.OpIMul, ir.OpIDiv, ir.OpIMod,
		ir.OpBAnd, ir.OpBOr, ir.OpBXor, ir.OpIShl, ir.OpIShr:
		if !v.expectArgs(bi, ii, in, 2) {
			return
		}
		if !in.Type.IsInt() || !in.Type.Valid() {
			v.errorf(KindType, bi, ii, "%s result must be an integer type, found %s", in.Op, in.Type)
			return
		}
		v.expectType(bi, ii, in, "left operand", in.Type, v.typeOf(in.Args[0]))
		v.expectType(bi, ii, in, "right operand", in.Type, v.typeOf(in.Args[1]))

	case ir.OpBNot:
		if !v.expectArgs(bi, ii, in, 1) {
			return
		}
		if !in.Type.IsInt() || !in.Type.Valid() {
			v.errorf(KindType, bi, ii, "bnot result must be an integer type, found %s", in.Type)
			return
		}
		v.expectType(bi, ii, in, "operand", in.Type, v.typeOf(in.Args[0]))

	case ir.OpICmpEq, ir.OpICmpNe, ir.OpICmpLt, ir.OpICmpGt, ir.OpICmpLe, ir.OpICmpGe:
		if !v.expectArgs(bi, ii, in, 2) {
			return
		}
		if !in.Type.IsBool() {
			v.errorf(KindType, bi, ii, "%s result must be bool, found %s", in.Op, in.Type)
		}
		left, right := v.typeOf(in.Args[0]), v.typeOf(in.Args[1])
		if left != right {
			v.errorf(KindType, bi, ii, "%s operands disagree: expected %s, found %s", in.Op, left, right)
			return
		}
		ordered := in.Op != ir.OpICmpEq && in.Op != ir.OpICmpNe
		if ordered && !left.IsInt() {
			v.errorf(KindType, bi, ii, "%s requires integer operands, found %s", in.Op, left)
		}

	case ir.OpSelect:
		if !v.expectArgs(bi, ii, in, 3) {
			return
		}
		v.expectType(bi, ii, in, "condition", ir.Boolean(), v.typeOf(in.Args[0]))
		v.expectType(bi, ii, in, "then operand", in.Type, v.typeOf(in.Args[1]))
		v.expectType(bi, ii, in, "else operand", in.Type, v.typeOf(in.Args[2]))

	case ir.OpZext, ir.OpSext:
		if !v.expectArgs(bi, ii, in, 1) {
			return
		}
		from := v.typeOf(in.Args[0])
		if !from.IsInt() || !in.Type.IsInt() {
			v.errorf(KindType, bi, ii, "%s requires integer operand and result, found %s -> %s", in.Op, from, in.Type)
			return
		}
		if from.Bits >= in.Type.Bits {
			v.errorf(KindType, bi, ii, "%s must widen: %s -> %s", in.Op, from, in.Type)
		}

	case ir.OpTrunc:
		if !v.expectArgs(bi, ii, in, 1) {
			return
		}
		from := v.typeOf(in.Args[0])
		if !from.IsInt() || !in.Type.IsInt() {
			v.errorf(KindType, bi, ii, "trunc requires integer operand and result, found %s -> %s", from, in.Type)
			return
		}
		if from.Bits <= in.Type.Bits {
			v.errorf(KindType, bi, ii, "trunc must narrow: %s -> %s", from, in.Type)
		}

	case ir.OpAlloc:
		if !v.expectArgs(bi, ii, in, 0) {
			return
		}
		if !in.Type.IsPtr() {
			v.errorf(KindType, bi, ii, "alloc result must be a pointer, found %s", in.Type)
			return
		}
		v.expectType(bi, ii, in, "result space", ir.Pointer(in.Space), in.Type)
		if in.Const == nil || in.Const.Sign() <= 0 {
			v.errorf(KindType, bi, ii, "alloc requires a positive size immediate")
		}

	case ir.OpLoad:
		if !v.expectArgs(bi, ii, in, 1) {
			return
		}
		if ptr := v.typeOf(in.Args[0]); !ptr.IsPtr() {
			v.errorf(KindType, bi, ii, "load address: expected a pointer, found %s", ptr)
		}

	case ir.OpStore:
		if !v.expectArgs(bi, ii, in, 2) {
			return
		}
		if ptr := v.typeOf(in.Args[0]); !ptr.IsPtr() {
			v.errorf(KindType, bi, ii, "store address: expected a pointer, found %s", ptr)
		}
		v.expectType(bi, ii, in, "stored value", in.Type, v.typeOf(in.Args[1]))

	case ir.OpMemCopy:
		if !v.expectArgs(bi, ii, in, 3) {
			return
		}
		if dst := v.typeOf(in.Args[0]); !dst.IsPtr() {
			v.errorf(KindType, bi, ii, "memcopy destination: expected a pointer, found %s", dst)
		}
		if src := v.typeOf(in.Args[1]); !src.IsPtr() {
			v.errorf(KindType, bi, ii, "memcopy source: expected a pointer, found %s", src)
		}
		if length := v.typeOf(in.Args[2]); !length.IsInt() {
			v.errorf(KindType, bi, ii, "memcopy length: expected an integer, found %s", length)
		}

	case ir.OpStorageLoad:
		if !v.expectArgs(bi, ii, in, 0) {
			return
		}
		if slot := v.slot(bi, ii, in, ir.SlotValue); slot != nil {
			v.expectType(bi, ii, in, "result", slot.Type, in.Type)
		}

	case ir.OpStorageStore:
		if !v.expectArgs(bi, ii, in, 1) {
			return
		}
		if slot := v.slot(bi, ii, in, ir.SlotValue); slot != nil {
			v.expectType(bi, ii, in, "stored value", slot.Type, v.typeOf(in.Args[0]))
		}

	case ir.OpMappingLoad:
		if !v.expectArgs(bi, ii, in, 1) {
			return
		}
		if slot := v.slot(bi, ii, in, ir.SlotMapping); slot != nil {
			v.expectType(bi, ii, in, "key", slot.Key, v.typeOf(in.Args[0]))
			v.expectType(bi, ii, in, "result", slot.Type, in.Type)
		}

	case ir.OpMappingStore:
		if !v.expectArgs(bi, ii, in, 2) {
			return
		}
		if slot := v.slot(bi, ii, in, ir.SlotMapping); slot != nil {
			v.expectType(bi, ii, in, "key", slot.Key, v.typeOf(in.Args[0]))
			v.expectType(bi, ii, in, "stored value", slot.Type, v.typeOf(in.Args[1]))
		}

	case ir.OpCall:
		callee := v.m.Function(in.Callee)
		if callee == nil {
			v.errorf(KindType, bi, ii, "call to undefined function %%%s", in.Callee)
			return
		}
		if len(in.Args) != len(callee.Params) {
			v.errorf(KindType, bi, ii, "call to %%%s passes %d arguments, signature declares %d",
				in.Callee, len(in.Args), len(callee.Params))
			return
		}
		for i, arg := range in.Args {
			v.expectType(bi, ii, in, fmt.Sprintf("argument %d", i), callee.Params[i].Type, v.typeOf(arg))
		}
		switch len(callee.Results) {
		case 0:
			if in.Result != ir.NoValue {
				v.errorf(KindType, bi, ii, "call to %%%s returns nothing and cannot bind a result", in.Callee)
			}
		case 1:
			// A discarded result leaves the call unbound and untyped.
			if in.Result != ir.NoValue {
				v.expectType(bi, ii, in, "result", callee.Results[0], in.Type)
			}
		default:
			v.errorf(KindType, bi, ii, "call to %%%s: multi-result calls are not representable", in.Callee)
		}

	case ir.OpExtCall:
		minArgs := 1
		if in.HasValue {
			minArgs = 2
		}
		if len(in.Args) < minArgs {
			v.errorf(KindType, bi, ii, "extcall expects at least %d operands, found %d", minArgs, len(in.Args))
			return
		}
		v.expectType(bi, ii, in, "target", ir.Address(), v.typeOf(in.Args[0]))
		if in.HasValue {
			if in.Kind != ir.CallKindCall {
				v.errorf(KindType, bi, ii, "extcall.%s cannot transfer value", in.Kind)
			}
			v.expectType(bi, ii, in, "transferred value", ir.Integer(256), v.typeOf(in.Args[len(in.Args)-1]))
		}
		if !in.Type.Valid() {
			v.errorf(KindType, bi, ii, "extcall result has invalid type %s", in.Type)
		}

	case ir.OpGetContext:
		if v.expectArgs(bi, ii, in, 0) {
			v.expectType(bi, ii, in, "result", in.Context.ResultType(), in.Type)
		}

	case ir.OpKeccak256, ir.OpSha256:
		if !v.expectArgs(bi, ii, in, 2) {
			return
		}
		if data := v.typeOf(in.Args[0]); !data.IsPtr() {
			v.errorf(KindType, bi, ii, "%s data: expected a pointer, found %s", in.Op, data)
		}
		if length := v.typeOf(in.Args[1]); !length.IsInt() {
			v.errorf(KindType, bi, ii, "%s length: expected an integer, found %s", in.Op, length)
		}
		v.expectType(bi, ii, in, "result", ir.Integer(256), in.Type)

	case ir.OpLog:
		event := v.m.Event(in.Callee)
		if event == nil {
			v.errorf(KindType, bi, ii, "log references undeclared event %%%s", in.Callee)
			return
		}
		if len(in.Args) != len(event.Params) {
			v.errorf(KindType, bi, ii, "log %%%s passes %d arguments, event declares %d",
				in.Callee, len(in.Args), len(event.Params))
			return
		}
		for i, arg := range in.Args {
			v.expectType(bi, ii, in, fmt.Sprintf("argument %d", i), event.Params[i], v.typeOf(arg))
		}

	case ir.OpAbiEncode:
		if len(in.Args) == 0 {
			v.errorf(KindType, bi, ii, "abi_encode expects at least 1 operand")
			return
		}
		for i, arg := range in.Args {
			if !v.typeOf(arg).Sized() {
				v.errorf(KindType, bi, ii, "abi_encode argument %d has unsized type %s", i, v.typeOf(arg))
			}
		}
		v.expectType(bi, ii, in, "result", ir.Pointer(ir.SpaceTransient), in.Type)

	case ir.OpAbiDecode:
		if !v.expectArgs(bi, ii, in, 1) {
			return
		}
		if data := v.typeOf(in.Args[0]); !data.IsPtr() {
			v.errorf(KindType, bi, ii, "abi_decode data: expected a pointer, found %s", data)
		}
		if !in.Type.Valid() {
			v.errorf(KindType, bi, ii, "abi_decode result has invalid type %s", in.Type)
		}

	case ir.OpRequire:
		if v.expectArgs(bi, ii, in, 1) {
			v.expectType(bi, ii, in, "condition", ir.Boolean(), v.typeOf(in.Args[0]))
		}

	default:
		v.errorf(KindType, bi, ii, "invalid opcode")
	}
}

// slot resolves the slot declaration an instruction addresses, reporting
// when it is missing or of the wrong kind.
func (v *funcValidator) slot(bi, ii int, in *ir.Instruction, want ir.SlotKind) *ir.SlotDecl {
	slot := v.m.SlotByIndex(in.Slot)
	if slot == nil {
		v.errorf(KindType, bi, ii, "%s references undeclared slot %d", in.Op, in.Slot)
		return nil
	}
	if slot.Kind != want {
		kind := "a plain slot"
		if want == ir.SlotMapping {
			kind = "a mapping slot"
		}
		v.errorf(KindType, bi, ii, "%s requires %s, slot %d is not", in.Op, kind, in.Slot)
		return nil
	}
	return slot
}

func (v *funcValidator) checkTerminator(bi int, blk *ir.Block) {
	term := blk.Term
	ti := len(blk.Instrs)
	checkEdgeTypes := func(target ir.BlockID, args []ir.Value) {
		if target < 0 || int(target) >= len(v.f.Blocks) {
			return // reported by the control-flow pass
		}
		params := v.f.Blocks[target].Params
		if len(args) != len(params) {
			return // arity reported by the control-flow pass
		}
		for i, arg := range args {
			if got := v.typeOf(arg); got != params[i].Type {
				v.errorf(KindType, bi, ti, "branch argument %d to %s: expected %s, found %s",
					i, target, params[i].Type, got)
			}
		}
	}
	switch term.Kind {
	case ir.TermJump:
		checkEdgeTypes(term.Then, term.ThenArgs)
	case ir.TermBrif:
		if got := v.typeOf(term.Cond); !got.IsBool() {
			v.errorf(KindType, bi, ti, "brif condition: expected bool, found %s", got)
		}
		checkEdgeTypes(term.Then, term.ThenArgs)
		checkEdgeTypes(term.Else, term.ElseArgs)
	case ir.TermReturn:
		if len(term.Results) != len(v.f.Results) {
			v.errorf(KindType, bi, ti, "return passes %d values, signature declares %d",
				len(term.Results), len(v.f.Results))
			return
		}
		for i, val := range term.Results {
			if got := v.typeOf(val); got != v.f.Results[i] {
				v.errorf(KindType, bi, ti, "return value %d: expected %s, found %s",
					i, v.f.Results[i], got)
			}
		}
	case ir.TermTrap:
	}
}

// dominancePass confirms every use is dominated by its definition. An
// instruction's operands are uses at its own index; terminator operands are
// uses at the end of the block; block parameters define at block entry.
// Uses inside unreachable blocks are skipped: they are already covered by
// the control-flow pass's unreachability warning.
func (v *funcValidator) dominancePass() {
	if len(v.f.Blocks) == 0 {
		return
	}
	dom := ir.BuildDomTree(v.f)

	checkUse := func(bi, useIdx int, val ir.Value) {
		defBlock, defIdx, ok := v.f.DefSite(val)
		if !ok {
			v.errorf(KindDominance, bi, useIdx, "use of undefined value %s", val)
			return
		}
		useBlock := ir.BlockID(bi)
		if defBlock == useBlock {
			if defIdx >= useIdx {
				v.errorf(KindDominance, bi, useIdx, "%s used before its definition in block%d", val, bi)
			}
			return
		}
		if !dom.Dominates(defBlock, useBlock) {
			v.errorf(KindDominance, bi, useIdx, "%s defined in %s does not dominate its use in block%d",
				val, defBlock, bi)
		}
	}

	for bi, blk := range v.f.Blocks {
		if !dom.Reachable(ir.BlockID(bi)) {
			continue
		}
		for ii, in := range blk.Instrs {
			for _, arg := range in.Args {
				checkUse(bi, ii, arg)
			}
		}
		if blk.Term != nil {
			for _, use := range blk.Term.Uses() {
				checkUse(bi, len(blk.Instrs), use)
			}
		}
	}
}

// memoryPass enforces the memory-region discipline and the function's
// declared effect class. It tags call kinds only; reentrancy is an analysis
// concern, not a well-formedness one.
func (v *funcValidator) memoryPass() {
	for bi, blk := range v.f.Blocks {
		for ii, in := range blk.Instrs {
			v.checkMemory(bi, ii, in)
			v.checkEffects(bi, ii, in)
		}
	}
}

func powerOfTwo(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

func (v *funcValidator) checkMemory(bi, ii int, in *ir.Instruction) {
	spaceOf := func(arg ir.Value) (ir.AddressSpace, bool) {
		t := v.f.ValueType(arg)
		if !t.IsPtr() {
			return 0, false // non-pointer operands are the type pass's problem
		}
		return t.Space, true
	}

	switch in.Op {
	case ir.OpAlloc:
		if !powerOfTwo(in.Align) {
			v.errorf(KindMemory, bi, ii, "alloc alignment %d is not a power of two", in.Align)
		}
		if !in.Space.Mutable() {
			v.errorf(KindMemory, bi, ii, "alloc in immutable %s space", in.Space)
		}

	case ir.OpLoad:
		if !powerOfTwo(in.Align) {
			v.errorf(KindMemory, bi, ii, "load alignment %d is not a power of two", in.Align)
		}
		if !in.Type.Sized() {
			v.errorf(KindMemory, bi, ii, "load of unsized type %s", in.Type)
		}
		if len(in.Args) == 1 {
			if space, ok := spaceOf(in.Args[0]); ok && space != in.Space {
				v.errorf(KindMemory, bi, ii, "load.%s through a %s pointer", in.Space, space)
			}
		}

	case ir.OpStore:
		if !powerOfTwo(in.Align) {
			v.errorf(KindMemory, bi, ii, "store alignment %d is not a power of two", in.Align)
		}
		if !in.Type.Sized() {
			v.errorf(KindMemory, bi, ii, "store of unsized type %s", in.Type)
		}
		if !in.Space.Mutable() {
			v.errorf(KindMemory, bi, ii, "store into immutable %s space", in.Space)
		}
		if len(in.Args) == 2 {
			if space, ok := spaceOf(in.Args[0]); ok && space != in.Space {
				v.errorf(KindMemory, bi, ii, "store.%s through a %s pointer", in.Space, space)
			}
		}

	case ir.OpMemCopy:
		if len(in.Args) == 3 {
			if space, ok := spaceOf(in.Args[0]); ok {
				if space != in.Space {
					v.errorf(KindMemory, bi, ii, "memcopy.%s through a %s destination pointer", in.Space, space)
				}
				if !space.Mutable() {
					v.errorf(KindMemory, bi, ii, "memcopy into immutable %s space", space)
				}
			}
		}

	case ir.OpIConst, ir.OpBConst, ir.OpIAdd, ir.OpISub, ir.OpIMul, ir.OpIDiv, ir.OpIMod,
		ir.OpBAnd, ir.OpBOr, ir.OpBXor, ir.OpBNot, ir.OpIShl, ir.OpIShr,
		ir.OpICmpEq, ir.OpICmpNe, ir.OpICmpLt, ir.OpICmpGt, ir.OpICmpLe, ir.OpICmpGe,
		ir.OpSelect, ir.OpZext, ir.OpSext, ir.OpTrunc,
		ir.OpStorageLoad, ir.OpStorageStore, ir.OpMappingLoad, ir.OpMappingStore,
		ir.OpCall, ir.OpExtCall, ir.OpGetContext, ir.OpKeccak256, ir.OpSha256,
		ir.OpLog, ir.OpAbiEncode, ir.OpAbiDecode, ir.OpRequire:
		// No region constraints of their own.

	default:
	}
}

// checkEffects enforces the function's declared mutability class: a view
// function must not mutate persistent state, a pure function additionally
// must not read storage or the environment, and must not call out at all.
// Internal calls carry their callee's declared class, so a view function
// may only call view or pure functions, and a pure function only pure ones.
func (v *funcValidator) checkEffects(bi, ii int, in *ir.Instruction) {
	switch v.f.Mutability {
	case ir.MutView:
		if in.Mutates() {
			v.errorf(KindMemory, bi, ii, "view function performs state-mutating %s", in.Op)
		} else if callee := v.callee(in); callee != nil &&
			callee.Mutability != ir.MutView && callee.Mutability != ir.MutPure {
			v.errorf(KindMemory, bi, ii, "view function calls non-view %%%s", in.Callee)
		}
	case ir.MutPure:
		if in.Mutates() {
			v.errorf(KindMemory, bi, ii, "pure function performs state-mutating %s", in.Op)
		} else if in.ReadsState() {
			v.errorf(KindMemory, bi, ii, "pure function reads state via %s", in.Op)
		} else if in.Op == ir.OpExtCall {
			v.errorf(KindMemory, bi, ii, "pure function performs external call")
		} else if callee := v.callee(in); callee != nil && callee.Mutability != ir.MutPure {
			v.errorf(KindMemory, bi, ii, "pure function calls impure %%%s", in.Callee)
		}
	}
}

func (v *funcValidator) callee(in *ir.Instruction) *ir.Function {
	if in.Op != ir.OpCall {
		return nil
	}
	return v.m.Function(in.Callee)
}
