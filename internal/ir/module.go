package ir

import (
	"fmt"
	"math/big"
)

// Visibility of a function at the contract boundary.
type Visibility uint8

const (
	VisPublic Visibility = iota
	VisExternal
	VisInternal
	VisPrivate
)

func (v Visibility) String() string {
	switch v {
	case VisPublic:
		return "public"
	case VisExternal:
		return "external"
	case VisInternal:
		return "internal"
	case VisPrivate:
		return "private"
	default:
		return "public"
	}
}

// VisibilityByName maps the textual spelling back to its value.
var VisibilityByName = map[string]Visibility{
	"public":   VisPublic,
	"external": VisExternal,
	"internal": VisInternal,
	"private":  VisPrivate,
}

// Mutability declares what a function may do with persistent state. The
// validator's effect pass enforces view and pure.
type Mutability uint8

const (
	MutNonPayable Mutability = iota
	MutView
	MutPure
	MutPayable
)

func (m Mutability) String() string {
	switch m {
	case MutNonPayable:
		return "nonpayable"
	case MutView:
		return "view"
	case MutPure:
		return "pure"
	case MutPayable:
		return "payable"
	default:
		return "nonpayable"
	}
}

// MutabilityByName maps the textual spelling back to its value.
var MutabilityByName = map[string]Mutability{
	"nonpayable": MutNonPayable,
	"view":       MutView,
	"pure":       MutPure,
	"payable":    MutPayable,
}

// SlotKind distinguishes plain storage slots from mapping slots.
type SlotKind uint8

const (
	SlotValue SlotKind = iota
	SlotMapping
)

// SlotDecl declares one contract-level storage location: its slot index, an
// optional human name, and the declared type. Mapping slots additionally
// carry a key type.
type SlotDecl struct {
	Index uint32
	Name  string
	Kind  SlotKind
	Type  Type // stored value type
	Key   Type // mapping key type, meaningful for SlotMapping
}

// EventDecl declares an event signature referenced by log instructions.
type EventDecl struct {
	Name   string
	Params []Type
}

// Param is one function parameter: a declared type and an optional name.
// Parameter values are bound through the entry block's parameter list.
type Param struct {
	Name string
	Type Type
}

// BlockParam is an SSA value bound at block entry, supplied by every
// predecessor branch's argument list.
type BlockParam struct {
	Value Value
	Type  Type
}

// Block is an ordered parameter list, an ordered instruction list, and one
// terminator. A nil terminator marks a draft block.
type Block struct {
	Params []BlockParam
	Instrs []*Instruction
	Term   *Terminator
}

// Terminated reports whether the block already carries its terminator.
func (b *Block) Terminated() bool {
	return b.Term != nil
}

// valueDef records where a value is defined. Instr is the instruction index
// within the block, or -1 when the value is a block parameter. A def with
// Block < 0 is an unresolved forward reference produced by the parser; the
// validator reports it.
type valueDef struct {
	Type  Type
	Block BlockID
	Instr int
}

// Function holds a signature, a visibility and mutability class, and the
// body blocks. Block 0 is the entry; its parameters mirror the signature.
type Function struct {
	Name       string
	Params     []Param
	Results    []Type
	Visibility Visibility
	Mutability Mutability
	Blocks     []*Block

	defs []valueDef
}

// NumValues returns how many SSA values the function has allocated.
func (f *Function) NumValues() int {
	return len(f.defs)
}

// ValueType returns the recorded type of v, or the invalid type when v was
// never allocated in this function.
func (f *Function) ValueType(v Value) Type {
	if int(v) >= len(f.defs) {
		return Type{}
	}
	return f.defs[v].Type
}

// DefSite returns the defining block and instruction index of v. The
// instruction index is -1 for block parameters. ok is false for values with
// no recorded definition (unresolved references).
func (f *Function) DefSite(v Value) (block BlockID, instr int, ok bool) {
	if int(v) >= len(f.defs) || f.defs[v].Block < 0 {
		return 0, 0, false
	}
	d := f.defs[v]
	return d.Block, d.Instr, true
}

// newValue allocates the next value with the given definition record.
func (f *Function) newValue(d valueDef) Value {
	f.defs = append(f.defs, d)
	return Value(len(f.defs) - 1)
}

// Entry returns the entry block, or nil for a function with no blocks yet.
func (f *Function) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// Module is a named contract: storage and mapping slot declarations, event
// declarations, and an ordered list of functions.
type Module struct {
	Name      string
	Slots     []SlotDecl
	Events    []EventDecl
	Functions []*Function
}

// Function returns the named function, or nil.
func (m *Module) Function(name string) *Function {
	for _, f := range m.Functions {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// SlotByIndex returns the declaration for a slot index, or nil.
func (m *Module) SlotByIndex(index uint32) *SlotDecl {
	for i := range m.Slots {
		if m.Slots[i].Index == index {
			return &m.Slots[i]
		}
	}
	return nil
}

// Event returns the named event declaration, or nil.
func (m *Module) Event(name string) *EventDecl {
	for i := range m.Events {
		if m.Events[i].Name == name {
			return &m.Events[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the module. Transforms operate on the copy,
// never on their input.
func (m *Module) Clone() *Module {
	out := &Module{
		Name:   m.Name,
		Slots:  append([]SlotDecl(nil), m.Slots...),
		Events: make([]EventDecl, len(m.Events)),
	}
	for i, ev := range m.Events {
		out.Events[i] = EventDecl{Name: ev.Name, Params: append([]Type(nil), ev.Params...)}
	}
	out.Functions = make([]*Function, len(m.Functions))
	for i, f := range m.Functions {
		out.Functions[i] = f.clone()
	}
	return out
}

func (f *Function) clone() *Function {
	out := &Function{
		Name:       f.Name,
		Params:     append([]Param(nil), f.Params...),
		Results:    append([]Type(nil), f.Results...),
		Visibility: f.Visibility,
		Mutability: f.Mutability,
		defs:       append([]valueDef(nil), f.defs...),
	}
	out.Blocks = make([]*Block, len(f.Blocks))
	for i, b := range f.Blocks {
		nb := &Block{Params: append([]BlockParam(nil), b.Params...)}
		nb.Instrs = make([]*Instruction, len(b.Instrs))
		for j, in := range b.Instrs {
			nb.Instrs[j] = in.clone()
		}
		if b.Term != nil {
			nb.Term = b.Term.clone()
		}
		out.Blocks[i] = nb
	}
	return out
}

func (in *Instruction) clone() *Instruction {
	cp := *in
	cp.Args = append([]Value(nil), in.Args...)
	if in.Const != nil {
		cp.Const = new(big.Int).Set(in.Const)
	}
	if in.Meta != nil {
		meta := *in.Meta
		cp.Meta = &meta
	}
	return &cp
}

func (t *Terminator) clone() *Terminator {
	cp := *t
	cp.ThenArgs = append([]Value(nil), t.ThenArgs...)
	cp.ElseArgs = append([]Value(nil), t.ElseArgs...)
	cp.Results = append([]Value(nil), t.Results...)
	if t.Meta != nil {
		meta := *t.Meta
		cp.Meta = &meta
	}
	return &cp
}

// ControlFlowError reports a construction-order violation: appending to a
// terminated block, setting a second terminator, or referencing a block
// that does not exist.
type ControlFlowError struct {
	Function string
	Block    BlockID
	Msg      string
}

func (e *ControlFlowError) Error() string {
	return fmt.Sprintf("%s/%s: %s", e.Function, e.Block, e.Msg)
}
