package textual

import (
	"fmt"
	"math/big"
	"os"
	"strconv"
	"strings"

	"fortio.org/safecast"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"scir/internal/ir"
)

// SyntaxError is the single error kind the reader produces: a position and
// a description. Parsing stops at the first one.
type SyntaxError struct {
	File   string
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Msg)
}

var fileParser = participle.MustBuild[File](
	participle.Lexer(scirLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(3),
)

// Location is a line/column pair into the parsed source.
type Location struct {
	Line   int
	Column int
}

// BlockIndex records where a block and each of its lines start. Instrs is
// indexed like the block's instruction list; Term points at the terminator.
type BlockIndex struct {
	Header Location
	Instrs []Location
	Term   Location
}

// FuncIndex records where a function and its blocks start.
type FuncIndex struct {
	Header Location
	Blocks []BlockIndex
}

// PositionIndex maps function names to their source locations. Tooling uses
// it to place validator findings, which locate by block and instruction
// index, back into the text.
type PositionIndex map[string]*FuncIndex

// Parse reads one contract from source and lowers it into a draft module.
// The result is structurally well-formed but otherwise unchecked; run the
// validator to decide whether it is sound. Operands naming values that are
// never defined lower into unresolved value slots for the validator to
// report.
func Parse(filename, source string) (*ir.Module, error) {
	m, _, err := ParseIndexed(filename, source)
	return m, err
}

// ParseIndexed parses like Parse and additionally returns the position
// index of the source.
func ParseIndexed(filename, source string) (*ir.Module, PositionIndex, error) {
	file, err := fileParser.ParseString(filename, source)
	if err != nil {
		if pe, ok := err.(participle.Error); ok {
			pos := pe.Position()
			return nil, nil, &SyntaxError{File: pos.Filename, Line: pos.Line, Column: pos.Column, Msg: pe.Message()}
		}
		return nil, nil, err
	}
	r := &reader{file: filename, index: make(PositionIndex)}
	m, err := r.module(file.Contract)
	if err != nil {
		return nil, nil, err
	}
	return m, r.index, nil
}

// ParseFile reads and parses one .scir file.
func ParseFile(path string) (*ir.Module, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return Parse(path, string(source))
}

type reader struct {
	file  string
	index PositionIndex
}

func loc(pos lexer.Position) Location {
	return Location{Line: pos.Line, Column: pos.Column}
}

func (r *reader) errf(pos lexer.Position, format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{File: r.file, Line: pos.Line, Column: pos.Column, Msg: fmt.Sprintf(format, args...)}
}

var spaceByName = map[string]ir.AddressSpace{
	"transient": ir.SpaceTransient,
	"calldata":  ir.SpaceCalldata,
	"code":      ir.SpaceCode,
}

func (r *reader) module(c *Contract) (*ir.Module, error) {
	mb := ir.NewModuleBuilder(strings.TrimPrefix(c.Name, "%"))
	var funcs []*FuncDecl
	for _, d := range c.Decls {
		switch {
		case d.Comment != nil:
		case d.Slot != nil:
			if err := r.slot(mb, d.Slot); err != nil {
				return nil, err
			}
		case d.Event != nil:
			params := make([]ir.Type, len(d.Event.Params))
			for i, p := range d.Event.Params {
				t, err := r.typeOf(p)
				if err != nil {
					return nil, err
				}
				params[i] = t
			}
			mb.DeclareEvent(strings.TrimPrefix(d.Event.Name, "%"), params...)
		case d.Function != nil:
			funcs = append(funcs, d.Function)
		}
	}
	for _, fd := range funcs {
		if err := r.function(mb, fd); err != nil {
			return nil, err
		}
	}
	return mb.Module(), nil
}

func (r *reader) slot(mb *ir.ModuleBuilder, s *SlotDecl) error {
	index, err := r.uint32At(s.Pos, s.Index)
	if err != nil {
		return err
	}
	if s.Type.Mapping != nil {
		key, err := r.typeOf(s.Type.Mapping.Key)
		if err != nil {
			return err
		}
		value, err := r.typeOf(s.Type.Mapping.Value)
		if err != nil {
			return err
		}
		mb.DeclareMapping(index, s.Name, key, value)
		return nil
	}
	t, err := r.typeOf(s.Type.Plain)
	if err != nil {
		return err
	}
	mb.DeclareSlot(index, s.Name, t)
	return nil
}

// typeOf lowers a textual type. Canonical spellings are u<N>, bool, and
// ptr<space>; address and bytes<N> are accepted as parse-time sugar for
// u160 and u<8N>.
func (r *reader) typeOf(t *TypeRef) (ir.Type, error) {
	if t == nil {
		return ir.Type{}, r.errf(lexer.Position{Filename: r.file}, "missing type")
	}
	if t.Space != nil {
		space, ok := spaceByName[*t.Space]
		if !ok {
			return ir.Type{}, r.errf(t.Pos, "unknown address space %q", *t.Space)
		}
		return ir.Pointer(space), nil
	}
	name := *t.Name
	switch {
	case name == "bool":
		return ir.Boolean(), nil
	case name == "address":
		return ir.Address(), nil
	case strings.HasPrefix(name, "bytes"):
		n, err := strconv.ParseUint(name[len("bytes"):], 10, 16)
		if err != nil {
			return ir.Type{}, r.errf(t.Pos, "unknown type %q", name)
		}
		bt := ir.Bytes(uint16(n))
		if !bt.Valid() {
			return ir.Type{}, r.errf(t.Pos, "unsupported byte width in %q", name)
		}
		return bt, nil
	case strings.HasPrefix(name, "u"):
		bits, err := strconv.ParseUint(name[1:], 10, 16)
		if err != nil {
			return ir.Type{}, r.errf(t.Pos, "unknown type %q", name)
		}
		it := ir.Integer(uint16(bits))
		if !it.Valid() {
			return ir.Type{}, r.errf(t.Pos, "unsupported integer width %d", bits)
		}
		return it, nil
	}
	return ir.Type{}, r.errf(t.Pos, "unknown type %q", name)
}

func (r *reader) uint32At(pos lexer.Position, lit string) (uint32, error) {
	n, err := strconv.ParseUint(lit, 0, 64)
	if err != nil {
		return 0, r.errf(pos, "invalid integer literal %q", lit)
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0, r.errf(pos, "integer literal %q out of range", lit)
	}
	return v, nil
}

// funcState tracks the textual-name to value binding of one function. Names
// are function-scoped; an operand naming an unseen value gets an unresolved
// slot so the dominance pass can report each use.
type funcState struct {
	fb    *ir.FunctionBuilder
	names map[string]ir.Value
}

func (s *funcState) value(name string) ir.Value {
	if v, ok := s.names[name]; ok {
		return v
	}
	v := s.fb.Unresolved()
	s.names[name] = v
	return v
}

func (r *reader) define(st *funcState, pos lexer.Position, name string, v ir.Value) error {
	if _, ok := st.names[name]; ok {
		return r.errf(pos, "%s is defined more than once", name)
	}
	st.names[name] = v
	return nil
}

func (r *reader) function(mb *ir.ModuleBuilder, fd *FuncDecl) error {
	params := make([]ir.Param, len(fd.Params))
	for i, p := range fd.Params {
		t, err := r.typeOf(p.Type)
		if err != nil {
			return err
		}
		params[i] = ir.Param{Name: p.Name, Type: t}
	}
	results := make([]ir.Type, len(fd.Results))
	for i, rt := range fd.Results {
		t, err := r.typeOf(rt)
		if err != nil {
			return err
		}
		results[i] = t
	}
	vis, ok := ir.VisibilityByName[fd.Visibility]
	if !ok {
		return r.errf(fd.Pos, "unknown visibility %q", fd.Visibility)
	}
	mut := ir.MutNonPayable
	if fd.Mutability != nil {
		mut, ok = ir.MutabilityByName[*fd.Mutability]
		if !ok {
			return r.errf(fd.Pos, "unknown mutability %q", *fd.Mutability)
		}
	}
	if len(fd.Blocks) == 0 {
		return r.errf(fd.Pos, "function %s has no blocks", fd.Name)
	}

	fb := mb.NewFunction(strings.TrimPrefix(fd.Name, "%"), params, results, vis, mut)
	st := &funcState{fb: fb, names: make(map[string]ir.Value)}

	fi := &FuncIndex{Header: loc(fd.Pos)}
	for _, blk := range fd.Blocks {
		bi := BlockIndex{Header: loc(blk.Pos), Term: loc(blk.Term.Pos)}
		for _, line := range blk.Lines {
			if line.Instr != nil {
				bi.Instrs = append(bi.Instrs, loc(line.Instr.Pos))
			}
		}
		fi.Blocks = append(fi.Blocks, bi)
	}
	r.index[fb.Func().Name] = fi

	// First pass: blocks, parameters, and every defined result name. Uses
	// resolve against the complete set in the second pass.
	for bi, blk := range fd.Blocks {
		if blk.Label != fmt.Sprintf("block%d", bi) {
			return r.errf(blk.Pos, "expected block%d, found %s", bi, blk.Label)
		}
		if bi == 0 {
			if len(blk.Params) != len(params) {
				return r.errf(blk.Pos, "entry block declares %d parameters, signature has %d",
					len(blk.Params), len(params))
			}
			for i, p := range blk.Params {
				t, err := r.typeOf(p.Type)
				if err != nil {
					return err
				}
				if t != params[i].Type {
					return r.errf(p.Pos, "entry parameter %s is %s, signature says %s", p.Name, t, params[i].Type)
				}
				if err := r.define(st, p.Pos, p.Name, fb.Param(i)); err != nil {
					return err
				}
			}
		} else {
			types := make([]ir.Type, len(blk.Params))
			for i, p := range blk.Params {
				t, err := r.typeOf(p.Type)
				if err != nil {
					return err
				}
				types[i] = t
			}
			_, values := fb.AppendBlock(types...)
			for i, p := range blk.Params {
				if err := r.define(st, p.Pos, p.Name, values[i]); err != nil {
					return err
				}
			}
		}
		for _, line := range blk.Lines {
			if line.Instr != nil && line.Instr.Result != nil {
				if err := r.define(st, line.Instr.Pos, *line.Instr.Result, fb.Unresolved()); err != nil {
					return err
				}
			}
		}
	}

	// Second pass: lower instructions and terminators.
	for bi, blk := range fd.Blocks {
		for _, line := range blk.Lines {
			if line.Instr == nil {
				continue
			}
			if err := r.instruction(st, ir.BlockID(bi), line.Instr); err != nil {
				return err
			}
		}
		term, err := r.terminator(st, blk.Term)
		if err != nil {
			return err
		}
		if err := fb.SetTerminator(ir.BlockID(bi), term); err != nil {
			return r.errf(blk.Pos, "%v", err)
		}
	}
	return nil
}

// splitMnemonic resolves a dotted spelling like isub.trap or load.calldata
// into its opcode and attribute suffix. The icmp family carries the
// predicate in the mnemonic itself and has no suffix.
func splitMnemonic(s string) (ir.Opcode, string, bool) {
	if op, ok := ir.OpcodeByName[s]; ok {
		return op, "", true
	}
	i := strings.LastIndexByte(s, '.')
	if i < 0 {
		return ir.OpInvalid, "", false
	}
	op, ok := ir.OpcodeByName[s[:i]]
	if !ok {
		return ir.OpInvalid, "", false
	}
	return op, s[i+1:], true
}

func (r *reader) instruction(st *funcState, block ir.BlockID, in *Instr) error {
	op, suffix, ok := splitMnemonic(in.Op)
	if !ok {
		return r.errf(in.Pos, "unknown instruction %q", in.Op)
	}
	// call binds a result only when its callee returns one, so the binding
	// stays optional here and the validator checks it against the callee.
	if op.HasResult() && op != ir.OpCall && in.Result == nil {
		return r.errf(in.Pos, "%s produces a result and must be bound to a value", op)
	}
	if !op.HasResult() && in.Result != nil {
		return r.errf(in.Pos, "%s produces no result", op)
	}

	instr := ir.Instruction{Op: op}
	if in.Type != nil {
		t, err := r.typeOf(in.Type)
		if err != nil {
			return err
		}
		instr.Type = t
	}

	noSuffix := func() error {
		if suffix != "" {
			return r.errf(in.Pos, "%s takes no suffix", op)
		}
		return nil
	}
	needType := func() error {
		if in.Type == nil {
			return r.errf(in.Pos, "%s requires a result type annotation", op)
		}
		return nil
	}
	spaceSuffix := func() error {
		if suffix == "" {
			instr.Space = ir.SpaceTransient
			return nil
		}
		space, ok := spaceByName[suffix]
		if !ok {
			return r.errf(in.Pos, "unknown address space %q", suffix)
		}
		instr.Space = space
		return nil
	}

	switch op {
	case ir.OpIConst:
		if err := firstErr(noSuffix(), needType(), r.want(in, 1)); err != nil {
			return err
		}
		c, err := r.intOperand(in, 0)
		if err != nil {
			return err
		}
		instr.Const = c

	case ir.OpBConst:
		if err := firstErr(noSuffix(), r.want(in, 1)); err != nil {
			return err
		}
		word, err := r.wordOperand(in, 0)
		if err != nil {
			return err
		}
		switch word {
		case "true":
			instr.Bool = true
		case "false":
			instr.Bool = false
		default:
			return r.errf(in.Pos, "bconst expects true or false, found %q", word)
		}
		instr.Type = ir.Boolean()

	case ir.OpIAdd, ir.OpISub, ir.OpIMul, ir.OpIDiv, ir.OpIMod:
		mode, ok := ir.OverflowModeByName[suffix]
		if suffix != "" && !ok {
			return r.errf(in.Pos, "unknown overflow mode %q", suffix)
		}
		instr.Overflow = mode
		if err := firstErr(needType(), r.values(st, in, &instr, 2)); err != nil {
			return err
		}

	case ir.OpBAnd, ir.OpBOr, ir.OpBXor, ir.OpIShl, ir.OpIShr:
		if err := firstErr(noSuffix(), needType(), r.values(st, in, &instr, 2)); err != nil {
			return err
		}

	case ir.OpBNot:
		if err := firstErr(noSuffix(), needType(), r.values(st, in, &instr, 1)); err != nil {
			return err
		}

	case ir.OpICmpEq, ir.OpICmpNe, ir.OpICmpLt, ir.OpICmpGt, ir.OpICmpLe, ir.OpICmpGe:
		if err := firstErr(noSuffix(), r.values(st, in, &instr, 2)); err != nil {
			return err
		}
		instr.Type = ir.Boolean()

	case ir.OpSelect:
		if err := firstErr(noSuffix(), needType(), r.values(st, in, &instr, 3)); err != nil {
			return err
		}

	case ir.OpZext, ir.OpSext, ir.OpTrunc:
		if err := firstErr(noSuffix(), needType(), r.values(st, in, &instr, 1)); err != nil {
			return err
		}

	case ir.OpAlloc:
		if err := firstErr(noSuffix(), needType(), r.want(in, 2)); err != nil {
			return err
		}
		size, err := r.intOperand(in, 0)
		if err != nil {
			return err
		}
		align, err := r.alignOperand(in, 1)
		if err != nil {
			return err
		}
		instr.Const = size
		instr.Align = align
		if instr.Type.IsPtr() {
			instr.Space = instr.Type.Space
		}

	case ir.OpLoad:
		if err := firstErr(spaceSuffix(), needType(), r.want(in, 2)); err != nil {
			return err
		}
		addr, err := r.valueOperand(st, in, 0)
		if err != nil {
			return err
		}
		align, err := r.alignOperand(in, 1)
		if err != nil {
			return err
		}
		instr.Args = []ir.Value{addr}
		instr.Align = align

	case ir.OpStore:
		if err := firstErr(spaceSuffix(), needType(), r.want(in, 3)); err != nil {
			return err
		}
		addr, err := r.valueOperand(st, in, 0)
		if err != nil {
			return err
		}
		val, err := r.valueOperand(st, in, 1)
		if err != nil {
			return err
		}
		align, err := r.alignOperand(in, 2)
		if err != nil {
			return err
		}
		instr.Args = []ir.Value{addr, val}
		instr.Align = align

	case ir.OpMemCopy:
		if err := firstErr(spaceSuffix(), r.values(st, in, &instr, 3)); err != nil {
			return err
		}

	case ir.OpStorageLoad:
		if err := firstErr(noSuffix(), needType(), r.want(in, 1)); err != nil {
			return err
		}
		slot, err := r.slotOperand(in, 0)
		if err != nil {
			return err
		}
		instr.Slot = slot

	case ir.OpStorageStore:
		if err := firstErr(noSuffix(), r.want(in, 2)); err != nil {
			return err
		}
		slot, err := r.slotOperand(in, 0)
		if err != nil {
			return err
		}
		val, err := r.valueOperand(st, in, 1)
		if err != nil {
			return err
		}
		instr.Slot = slot
		instr.Args = []ir.Value{val}

	case ir.OpMappingLoad:
		if err := firstErr(noSuffix(), needType(), r.want(in, 2)); err != nil {
			return err
		}
		slot, err := r.slotOperand(in, 0)
		if err != nil {
			return err
		}
		key, err := r.valueOperand(st, in, 1)
		if err != nil {
			return err
		}
		instr.Slot = slot
		instr.Args = []ir.Value{key}

	case ir.OpMappingStore:
		if err := firstErr(noSuffix(), r.want(in, 3)); err != nil {
			return err
		}
		slot, err := r.slotOperand(in, 0)
		if err != nil {
			return err
		}
		key, err := r.valueOperand(st, in, 1)
		if err != nil {
			return err
		}
		val, err := r.valueOperand(st, in, 2)
		if err != nil {
			return err
		}
		instr.Slot = slot
		instr.Args = []ir.Value{key, val}

	case ir.OpCall:
		if err := firstErr(noSuffix(), r.want(in, 1)); err != nil {
			return err
		}
		if in.Result != nil && in.Type == nil {
			return r.errf(in.Pos, "call with a bound result requires a type annotation")
		}
		if in.Result == nil && in.Type != nil {
			return r.errf(in.Pos, "call without a result takes no type annotation")
		}
		call, err := r.callOperand(in, 0)
		if err != nil {
			return err
		}
		if call.Func == nil {
			return r.errf(call.Pos, "call expects a %%function callee")
		}
		instr.Callee = strings.TrimPrefix(*call.Func, "%")
		args, err := r.callArgs(st, call)
		if err != nil {
			return err
		}
		instr.Args = args

	case ir.OpExtCall:
		kind, ok := ir.CallKindByName[suffix]
		if suffix != "" && !ok {
			return r.errf(in.Pos, "unknown call kind %q", suffix)
		}
		instr.Kind = kind
		if err := firstErr(needType(), r.want(in, 1)); err != nil {
			return err
		}
		call, err := r.callOperand(in, 0)
		if err != nil {
			return err
		}
		if call.Target == nil {
			return r.errf(call.Pos, "extcall expects a value target")
		}
		args, err := r.callArgs(st, call)
		if err != nil {
			return err
		}
		instr.Args = append([]ir.Value{st.value(*call.Target)}, args...)
		if in.Xfer != nil {
			instr.Args = append(instr.Args, st.value(*in.Xfer))
			instr.HasValue = true
		}

	case ir.OpGetContext:
		if err := firstErr(noSuffix(), r.want(in, 1)); err != nil {
			return err
		}
		word, err := r.wordOperand(in, 0)
		if err != nil {
			return err
		}
		ctx, ok := ir.ContextVarByName[word]
		if !ok {
			return r.errf(in.Pos, "unknown context variable %q", word)
		}
		instr.Context = ctx
		if in.Type == nil {
			instr.Type = ctx.ResultType()
		}

	case ir.OpKeccak256, ir.OpSha256:
		if err := firstErr(noSuffix(), needType(), r.values(st, in, &instr, 2)); err != nil {
			return err
		}

	case ir.OpLog:
		if err := firstErr(noSuffix(), r.want(in, 1)); err != nil {
			return err
		}
		call, err := r.callOperand(in, 0)
		if err != nil {
			return err
		}
		if call.Func == nil {
			return r.errf(call.Pos, "log expects a %%event name")
		}
		instr.Callee = strings.TrimPrefix(*call.Func, "%")
		args, err := r.callArgs(st, call)
		if err != nil {
			return err
		}
		instr.Args = args

	case ir.OpAbiEncode:
		if err := firstErr(noSuffix(), needType()); err != nil {
			return err
		}
		if len(in.Operands) == 0 {
			return r.errf(in.Pos, "abi_encode expects at least one operand")
		}
		if err := r.values(st, in, &instr, len(in.Operands)); err != nil {
			return err
		}

	case ir.OpAbiDecode:
		if err := firstErr(noSuffix(), needType(), r.values(st, in, &instr, 1)); err != nil {
			return err
		}

	case ir.OpRequire:
		if err := firstErr(noSuffix(), r.want(in, 2)); err != nil {
			return err
		}
		cond, err := r.valueOperand(st, in, 0)
		if err != nil {
			return err
		}
		msg, err := r.strOperand(in, 1)
		if err != nil {
			return err
		}
		instr.Args = []ir.Value{cond}
		instr.Message = msg

	default:
		return r.errf(in.Pos, "unknown instruction %q", in.Op)
	}

	if in.Xfer != nil && op != ir.OpExtCall {
		return r.errf(in.Pos, "%s cannot transfer value", op)
	}
	meta, err := r.meta(in.Src, in.Comment)
	if err != nil {
		return err
	}
	instr.Meta = meta

	result := ir.NoValue
	if in.Result != nil {
		result = st.names[*in.Result]
	}
	if err := st.fb.AppendBound(block, instr, result); err != nil {
		return r.errf(in.Pos, "%v", err)
	}
	return nil
}

func (r *reader) terminator(st *funcState, tl *TermLine) (ir.Terminator, error) {
	var t ir.Terminator
	switch {
	case tl.Jump != nil:
		target, args, err := r.target(st, tl.Jump)
		if err != nil {
			return t, err
		}
		t = ir.Terminator{Kind: ir.TermJump, Then: target, ThenArgs: args}
	case tl.Brif != nil:
		then, thenArgs, err := r.target(st, tl.Brif.Then)
		if err != nil {
			return t, err
		}
		els, elseArgs, err := r.target(st, tl.Brif.Else)
		if err != nil {
			return t, err
		}
		t = ir.Terminator{
			Kind: ir.TermBrif, Cond: st.value(tl.Brif.Cond),
			Then: then, ThenArgs: thenArgs,
			Else: els, ElseArgs: elseArgs,
		}
	case tl.Return != nil:
		results := make([]ir.Value, len(tl.Return.Values))
		for i, name := range tl.Return.Values {
			results[i] = st.value(name)
		}
		t = ir.Terminator{Kind: ir.TermReturn, Results: results}
	case tl.Trap != nil:
		reason, err := r.unquote(tl.Pos, *tl.Trap)
		if err != nil {
			return t, err
		}
		t = ir.Terminator{Kind: ir.TermTrap, Reason: reason}
	default:
		return t, r.errf(tl.Pos, "block has no terminator")
	}
	meta, err := r.meta(tl.Src, tl.Comment)
	if err != nil {
		return t, err
	}
	t.Meta = meta
	return t, nil
}

func (r *reader) target(st *funcState, ref *TargetRef) (ir.BlockID, []ir.Value, error) {
	n, err := strconv.Atoi(strings.TrimPrefix(ref.Block, "block"))
	if err != nil {
		return 0, nil, r.errf(ref.Pos, "invalid block label %q", ref.Block)
	}
	args := make([]ir.Value, len(ref.Args))
	for i, name := range ref.Args {
		args[i] = st.value(name)
	}
	return ir.BlockID(n), args, nil
}

func (r *reader) meta(src *SrcMeta, comment *string) (*ir.Metadata, error) {
	if src == nil && comment == nil {
		return nil, nil
	}
	meta := &ir.Metadata{}
	if src != nil {
		file, err := r.unquote(src.Pos, src.File)
		if err != nil {
			return nil, err
		}
		line, err := strconv.Atoi(src.Line)
		if err != nil {
			return nil, r.errf(src.Pos, "invalid line number %q", src.Line)
		}
		col, err := strconv.Atoi(src.Col)
		if err != nil {
			return nil, r.errf(src.Pos, "invalid column number %q", src.Col)
		}
		meta.File, meta.Line, meta.Column = file, line, col
	}
	if comment != nil {
		meta.Comment = strings.TrimSpace(strings.TrimPrefix(*comment, ";"))
	}
	return meta, nil
}

func (r *reader) unquote(pos lexer.Position, lit string) (string, error) {
	s, err := strconv.Unquote(lit)
	if err != nil {
		return "", r.errf(pos, "invalid string literal %s", lit)
	}
	return s, nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *reader) want(in *Instr, n int) error {
	if len(in.Operands) != n {
		return r.errf(in.Pos, "%s expects %d operands, found %d", in.Op, n, len(in.Operands))
	}
	return nil
}

// values resolves n plain value operands into instr.Args.
func (r *reader) values(st *funcState, in *Instr, instr *ir.Instruction, n int) error {
	if err := r.want(in, n); err != nil {
		return err
	}
	args := make([]ir.Value, n)
	for i := 0; i < n; i++ {
		v, err := r.valueOperand(st, in, i)
		if err != nil {
			return err
		}
		args[i] = v
	}
	instr.Args = args
	return nil
}

func (r *reader) valueOperand(st *funcState, in *Instr, i int) (ir.Value, error) {
	o := in.Operands[i]
	if o.Value == nil {
		return ir.NoValue, r.errf(o.Pos, "%s operand %d must be a value", in.Op, i)
	}
	return st.value(*o.Value), nil
}

func (r *reader) intOperand(in *Instr, i int) (*big.Int, error) {
	o := in.Operands[i]
	if o.Int == nil {
		return nil, r.errf(o.Pos, "%s operand %d must be an integer literal", in.Op, i)
	}
	c, ok := new(big.Int).SetString(*o.Int, 0)
	if !ok {
		return nil, r.errf(o.Pos, "invalid integer literal %q", *o.Int)
	}
	return c, nil
}

func (r *reader) slotOperand(in *Instr, i int) (uint32, error) {
	o := in.Operands[i]
	if o.Slot == nil {
		return 0, r.errf(o.Pos, "%s operand %d must be a slot reference", in.Op, i)
	}
	return r.uint32At(o.Pos, strings.TrimPrefix(*o.Slot, "slot"))
}

func (r *reader) strOperand(in *Instr, i int) (string, error) {
	o := in.Operands[i]
	if o.Str == nil {
		return "", r.errf(o.Pos, "%s operand %d must be a string literal", in.Op, i)
	}
	return r.unquote(o.Pos, *o.Str)
}

func (r *reader) wordOperand(in *Instr, i int) (string, error) {
	o := in.Operands[i]
	if o.Word == nil {
		return "", r.errf(o.Pos, "%s operand %d must be an identifier", in.Op, i)
	}
	return *o.Word, nil
}

func (r *reader) alignOperand(in *Instr, i int) (uint32, error) {
	o := in.Operands[i]
	if o.Align == nil {
		return 0, r.errf(o.Pos, "%s operand %d must be an align attribute", in.Op, i)
	}
	return r.uint32At(o.Pos, *o.Align)
}

func (r *reader) callOperand(in *Instr, i int) (*CallOperand, error) {
	o := in.Operands[i]
	if o.Call == nil {
		return nil, r.errf(o.Pos, "%s operand %d must be a call", in.Op, i)
	}
	return o.Call, nil
}

func (r *reader) callArgs(st *funcState, call *CallOperand) ([]ir.Value, error) {
	args := make([]ir.Value, len(call.Args))
	for i, a := range call.Args {
		if a.Value == nil {
			return nil, r.errf(a.Pos, "call argument %d must be a value", i)
		}
		args[i] = st.value(*a.Value)
	}
	return args, nil
}
