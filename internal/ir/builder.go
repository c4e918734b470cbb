package ir

import "fmt"

// ModuleBuilder constructs a draft module incrementally. Construction never
// type-checks; the validator decides later whether the result is sound.
type ModuleBuilder struct {
	m *Module
}

// NewModuleBuilder starts a draft module with the given contract name.
func NewModuleBuilder(name string) *ModuleBuilder {
	return &ModuleBuilder{m: &Module{Name: name}}
}

// DeclareSlot declares a plain storage slot.
func (b *ModuleBuilder) DeclareSlot(index uint32, name string, ty Type) {
	b.m.Slots = append(b.m.Slots, SlotDecl{Index: index, Name: name, Kind: SlotValue, Type: ty})
}

// DeclareMapping declares a mapping slot with its key and value types.
func (b *ModuleBuilder) DeclareMapping(index uint32, name string, key, value Type) {
	b.m.Slots = append(b.m.Slots, SlotDecl{Index: index, Name: name, Kind: SlotMapping, Type: value, Key: key})
}

// DeclareEvent declares an event signature.
func (b *ModuleBuilder) DeclareEvent(name string, params ...Type) {
	b.m.Events = append(b.m.Events, EventDecl{Name: name, Params: params})
}

// NewFunction appends a function and returns its builder. The entry block
// is created immediately with parameters mirroring the signature.
func (b *ModuleBuilder) NewFunction(name string, params []Param, results []Type, vis Visibility, mut Mutability) *FunctionBuilder {
	fn := &Function{
		Name:       name,
		Params:     append([]Param(nil), params...),
		Results:    append([]Type(nil), results...),
		Visibility: vis,
		Mutability: mut,
	}
	b.m.Functions = append(b.m.Functions, fn)
	fb := &FunctionBuilder{fn: fn}
	types := make([]Type, len(params))
	for i, p := range params {
		types[i] = p.Type
	}
	fb.AppendBlock(types...)
	return fb
}

// Module returns the module under construction. The result is a draft until
// the validator accepts it.
func (b *ModuleBuilder) Module() *Module {
	return b.m
}

// FunctionBuilder appends blocks and instructions to one function.
// Appending is strictly ordered: once a block's terminator is set, further
// appends to that block fail with a ControlFlowError.
type FunctionBuilder struct {
	fn *Function
}

// Func returns the function under construction.
func (fb *FunctionBuilder) Func() *Function {
	return fb.fn
}

// Param returns the entry-block value bound to signature parameter i.
func (fb *FunctionBuilder) Param(i int) Value {
	return fb.fn.Blocks[0].Params[i].Value
}

// AppendBlock adds a block with the given typed parameters and returns its
// id along with the freshly allocated parameter values.
func (fb *FunctionBuilder) AppendBlock(params ...Type) (BlockID, []Value) {
	id := BlockID(len(fb.fn.Blocks))
	blk := &Block{}
	values := make([]Value, len(params))
	for i, ty := range params {
		v := fb.fn.newValue(valueDef{Type: ty, Block: id, Instr: -1})
		blk.Params = append(blk.Params, BlockParam{Value: v, Type: ty})
		values[i] = v
	}
	fb.fn.Blocks = append(fb.fn.Blocks, blk)
	return id, values
}

// Append adds an instruction to a block and returns its result value
// (NoValue for opcodes without one). The instruction is copied; the result
// slot is filled in by the builder.
func (fb *FunctionBuilder) Append(block BlockID, in Instruction) (Value, error) {
	blk, err := fb.block(block)
	if err != nil {
		return NoValue, err
	}
	if blk.Terminated() {
		return NoValue, &ControlFlowError{
			Function: fb.fn.Name,
			Block:    block,
			Msg:      fmt.Sprintf("cannot append %s after terminator", in.Op),
		}
	}
	in.Result = NoValue
	if in.Op.HasResult() {
		in.Result = fb.fn.newValue(valueDef{Type: in.Type, Block: block, Instr: len(blk.Instrs)})
	}
	stored := in
	blk.Instrs = append(blk.Instrs, &stored)
	return stored.Result, nil
}

// SetTerminator seals a block with its single terminator.
func (fb *FunctionBuilder) SetTerminator(block BlockID, t Terminator) error {
	blk, err := fb.block(block)
	if err != nil {
		return err
	}
	if blk.Terminated() {
		return &ControlFlowError{Function: fb.fn.Name, Block: block, Msg: "terminator already set"}
	}
	stored := t
	blk.Term = &stored
	return nil
}

// Jump seals a block with an unconditional branch.
func (fb *FunctionBuilder) Jump(block, target BlockID, args ...Value) error {
	return fb.SetTerminator(block, Terminator{Kind: TermJump, Then: target, ThenArgs: args})
}

// Brif seals a block with a conditional branch.
func (fb *FunctionBuilder) Brif(block BlockID, cond Value, then BlockID, thenArgs []Value, els BlockID, elseArgs []Value) error {
	return fb.SetTerminator(block, Terminator{
		Kind: TermBrif, Cond: cond,
		Then: then, ThenArgs: thenArgs,
		Else: els, ElseArgs: elseArgs,
	})
}

// Return seals a block with a return.
func (fb *FunctionBuilder) Return(block BlockID, results ...Value) error {
	return fb.SetTerminator(block, Terminator{Kind: TermReturn, Results: results})
}

// Trap seals a block with an aborting trap.
func (fb *FunctionBuilder) Trap(block BlockID, reason string) error {
	return fb.SetTerminator(block, Terminator{Kind: TermTrap, Reason: reason})
}

// Seal verifies that every block of the function has been terminated.
// Sealing is a construction-order convenience; the validator re-checks the
// same property over the finished module.
func (fb *FunctionBuilder) Seal() error {
	for i, blk := range fb.fn.Blocks {
		if !blk.Terminated() {
			return &ControlFlowError{Function: fb.fn.Name, Block: BlockID(i), Msg: "block has no terminator"}
		}
	}
	return nil
}

// AppendBound adds an instruction whose result value was allocated ahead of
// time with Unresolved. The text reader sees uses before definitions, so it
// allocates every named result up front and binds the definition site here.
// Passing NoValue appends without a binding; a call whose callee returns
// nothing defines no value.
func (fb *FunctionBuilder) AppendBound(block BlockID, in Instruction, result Value) error {
	blk, err := fb.block(block)
	if err != nil {
		return err
	}
	if blk.Terminated() {
		return &ControlFlowError{
			Function: fb.fn.Name,
			Block:    block,
			Msg:      fmt.Sprintf("cannot append %s after terminator", in.Op),
		}
	}
	in.Result = NoValue
	if in.Op.HasResult() && result != NoValue {
		if int(result) >= len(fb.fn.defs) {
			return &ControlFlowError{Function: fb.fn.Name, Block: block, Msg: "result value was never allocated"}
		}
		fb.fn.defs[result] = valueDef{Type: in.Type, Block: block, Instr: len(blk.Instrs)}
		in.Result = result
	}
	stored := in
	blk.Instrs = append(blk.Instrs, &stored)
	return nil
}

// Unresolved allocates a value slot with no definition site. The parser
// uses it for operands that name a value never defined in the function; the
// validator's dominance pass reports every use of such a slot.
func (fb *FunctionBuilder) Unresolved() Value {
	return fb.fn.newValue(valueDef{Block: -1, Instr: 0})
}

func (fb *FunctionBuilder) block(id BlockID) (*Block, error) {
	if id < 0 || int(id) >= len(fb.fn.Blocks) {
		return nil, &ControlFlowError{Function: fb.fn.Name, Block: id, Msg: "no such block"}
	}
	return fb.fn.Blocks[int(id)], nil
}
