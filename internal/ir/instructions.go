package ir

import (
	"fmt"
	"math/big"
)

// Value is an SSA identifier, scoped to its function. Values are allocated
// monotonically and never reused; the function's definition table records
// each value's type and defining site.
type Value uint32

// NoValue marks an absent value slot (instructions without a result).
const NoValue Value = ^Value(0)

func (v Value) String() string {
	if v == NoValue {
		return "v?"
	}
	return fmt.Sprintf("v%d", uint32(v))
}

// BlockID identifies a basic block by position within its function.
type BlockID int

func (b BlockID) String() string {
	return fmt.Sprintf("block%d", int(b))
}

// OverflowMode selects the defined behavior of an arithmetic instruction on
// overflow: silent wrap, abort, or poison on signed/unsigned overflow.
// Poison is a runtime and analysis concept; the validator applies no extra
// static rule to nsw/nuw results.
type OverflowMode uint8

const (
	OverflowWrap OverflowMode = iota
	OverflowTrap
	OverflowNsw
	OverflowNuw
)

func (m OverflowMode) String() string {
	switch m {
	case OverflowWrap:
		return "wrap"
	case OverflowTrap:
		return "trap"
	case OverflowNsw:
		return "nsw"
	case OverflowNuw:
		return "nuw"
	default:
		return "wrap"
	}
}

// OverflowModeByName maps the textual mode suffix back to its value.
var OverflowModeByName = map[string]OverflowMode{
	"wrap": OverflowWrap,
	"trap": OverflowTrap,
	"nsw":  OverflowNsw,
	"nuw":  OverflowNuw,
}

// CallKind distinguishes the external call flavors and their mutability
// class: Call and DelegateCall may mutate state, StaticCall is guaranteed
// read-only.
type CallKind uint8

const (
	CallKindCall CallKind = iota
	CallKindStatic
	CallKindDelegate
)

func (k CallKind) String() string {
	switch k {
	case CallKindCall:
		return "call"
	case CallKindStatic:
		return "static"
	case CallKindDelegate:
		return "delegate"
	default:
		return "call"
	}
}

// ReadOnly reports whether the call kind guarantees no state mutation.
func (k CallKind) ReadOnly() bool {
	return k == CallKindStatic
}

// CallKindByName maps the textual extcall suffix back to its value.
var CallKindByName = map[string]CallKind{
	"call":     CallKindCall,
	"static":   CallKindStatic,
	"delegate": CallKindDelegate,
}

// ContextVar enumerates the environment values readable via get_context.
type ContextVar uint8

const (
	CtxMsgSender ContextVar = iota
	CtxMsgValue
	CtxBlockNumber
	CtxBlockTimestamp
	CtxBlockCoinbase
	CtxBlockChainID
	CtxBlockBaseFee
	CtxTxOrigin
	CtxTxGasPrice
	CtxGasLeft
	CtxThisAddress
	CtxThisBalance
)

var contextNames = map[ContextVar]string{
	CtxMsgSender:      "msg.sender",
	CtxMsgValue:       "msg.value",
	CtxBlockNumber:    "block.number",
	CtxBlockTimestamp: "block.timestamp",
	CtxBlockCoinbase:  "block.coinbase",
	CtxBlockChainID:   "block.chainid",
	CtxBlockBaseFee:   "block.basefee",
	CtxTxOrigin:       "tx.origin",
	CtxTxGasPrice:     "tx.gasprice",
	CtxGasLeft:        "gasleft",
	CtxThisAddress:    "address.this",
	CtxThisBalance:    "balance.this",
}

// ContextVarByName maps the textual spelling back to its value.
var ContextVarByName = func() map[string]ContextVar {
	m := make(map[string]ContextVar, len(contextNames))
	for v, name := range contextNames {
		m[name] = v
	}
	return m
}()

func (c ContextVar) String() string {
	if name, ok := contextNames[c]; ok {
		return name
	}
	return fmt.Sprintf("context%d", uint8(c))
}

// ResultType returns the type a get_context read of this variable produces.
func (c ContextVar) ResultType() Type {
	switch c {
	case CtxMsgSender, CtxBlockCoinbase, CtxTxOrigin, CtxThisAddress:
		return Address()
	default:
		return Integer(256)
	}
}

// Opcode is the closed instruction set. Every consumer switches over it
// exhaustively, so adding an opcode is a compile-time-checked exercise.
type Opcode uint8

const (
	OpInvalid Opcode = iota

	// Constants
	OpIConst
	OpBConst

	// Arithmetic, carries an OverflowMode
	OpIAdd
	OpISub
	OpIMul
	OpIDiv
	OpIMod

	// Bitwise
	OpBAnd
	OpBOr
	OpBXor
	OpBNot
	OpIShl
	OpIShr

	// Comparison
	OpICmpEq
	OpICmpNe
	OpICmpLt
	OpICmpGt
	OpICmpLe
	OpICmpGe

	// Selection and casts
	OpSelect
	OpZext
	OpSext
	OpTrunc

	// Memory, carries an AddressSpace and alignment
	OpAlloc
	OpLoad
	OpStore
	OpMemCopy

	// Persistent storage and mappings
	OpStorageLoad
	OpStorageStore
	OpMappingLoad
	OpMappingStore

	// Calls
	OpCall
	OpExtCall

	// Environment introspection
	OpGetContext

	// Cryptographic hashes
	OpKeccak256
	OpSha256

	// Events and ABI plumbing
	OpLog
	OpAbiEncode
	OpAbiDecode

	// Guards
	OpRequire
)

var opcodeNames = map[Opcode]string{
	OpIConst:       "iconst",
	OpBConst:       "bconst",
	OpIAdd:         "iadd",
	OpISub:         "isub",
	OpIMul:         "imul",
	OpIDiv:         "idiv",
	OpIMod:         "imod",
	OpBAnd:         "band",
	OpBOr:          "bor",
	OpBXor:         "bxor",
	OpBNot:         "bnot",
	OpIShl:         "ishl",
	OpIShr:         "ishr",
	OpICmpEq:       "icmp.eq",
	OpICmpNe:       "icmp.ne",
	OpICmpLt:       "icmp.lt",
	OpICmpGt:       "icmp.gt",
	OpICmpLe:       "icmp.le",
	OpICmpGe:       "icmp.ge",
	OpSelect:       "select",
	OpZext:         "zext",
	OpSext:         "sext",
	OpTrunc:        "trunc",
	OpAlloc:        "alloc",
	OpLoad:         "load",
	OpStore:        "store",
	OpMemCopy:      "memcopy",
	OpStorageLoad:  "storage_load",
	OpStorageStore: "storage_store",
	OpMappingLoad:  "mapping_load",
	OpMappingStore: "mapping_store",
	OpCall:         "call",
	OpExtCall:      "extcall",
	OpGetContext:   "get_context",
	OpKeccak256:    "keccak256",
	OpSha256:       "sha256",
	OpLog:          "log",
	OpAbiEncode:    "abi_encode",
	OpAbiDecode:    "abi_decode",
	OpRequire:      "require",
}

func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("op%d", uint8(op))
}

// OpcodeByName maps mnemonics back to opcodes. Suffixed spellings such as
// "isub.trap" or "load.calldata" resolve through their base mnemonic; the
// icmp family keeps the predicate in the mnemonic itself.
var OpcodeByName = func() map[string]Opcode {
	m := make(map[string]Opcode, len(opcodeNames))
	for op, name := range opcodeNames {
		m[name] = op
	}
	return m
}()

// IsArith reports whether the opcode carries an overflow mode.
func (op Opcode) IsArith() bool {
	switch op {
	case OpIAdd, OpISub, OpIMul, OpIDiv, OpIMod:
		return true
	}
	return false
}

// IsCompare reports whether the opcode is an integer comparison.
func (op Opcode) IsCompare() bool {
	switch op {
	case OpICmpEq, OpICmpNe, OpICmpLt, OpICmpGt, OpICmpLe, OpICmpGe:
		return true
	}
	return false
}

// IsMemOp reports whether the opcode carries an address space and alignment.
func (op Opcode) IsMemOp() bool {
	switch op {
	case OpAlloc, OpLoad, OpStore, OpMemCopy:
		return true
	}
	return false
}

// HasResult reports whether the opcode defines an SSA value.
func (op Opcode) HasResult() bool {
	switch op {
	case OpStore, OpMemCopy, OpStorageStore, OpMappingStore, OpLog, OpRequire:
		return false
	default:
		return true
	}
}

// Metadata holds optional annotations carried by an instruction: a source
// location in the original contract and a free-form trailing comment. The
// emitter's strip option removes it without touching semantics.
type Metadata struct {
	File    string
	Line    int
	Column  int
	Comment string
}

// HasLocation reports whether a source location annotation is present.
func (m *Metadata) HasLocation() bool {
	return m != nil && m.File != ""
}

// Instruction is one non-terminator operation: an opcode, ordered operands,
// an optional result, and the attributes the opcode calls for. Unused
// attribute fields stay at their zero value.
type Instruction struct {
	Op     Opcode
	Result Value   // NoValue when Op.HasResult() is false
	Args   []Value // ordered operands
	Type   Type    // result or accessed type annotation

	Overflow OverflowMode // arithmetic
	Space    AddressSpace // memory ops
	Align    uint32       // memory ops
	Kind     CallKind     // extcall
	HasValue bool         // extcall carries a value-transfer operand (last arg)
	Callee   string       // internal call target or event name
	Context  ContextVar   // get_context
	Slot     uint32       // storage and mapping ops
	Const    *big.Int     // iconst immediate
	Bool     bool         // bconst immediate
	Message  string       // require message

	Meta *Metadata
}

// Mutates reports whether executing the instruction can change persistent
// state observable after the call: storage writes, logs, and external calls
// that are not read-only. Writes to transient memory do not count.
func (in *Instruction) Mutates() bool {
	switch in.Op {
	case OpStorageStore, OpMappingStore, OpLog:
		return true
	case OpExtCall:
		return !in.Kind.ReadOnly()
	default:
		return false
	}
}

// ReadsState reports whether the instruction reads persistent storage or
// the execution environment.
func (in *Instruction) ReadsState() bool {
	switch in.Op {
	case OpStorageLoad, OpMappingLoad, OpGetContext:
		return true
	default:
		return false
	}
}

// TermKind discriminates the terminator variants.
type TermKind uint8

const (
	TermInvalid TermKind = iota
	TermJump
	TermBrif
	TermReturn
	TermTrap
)

// Terminator is the single control-transfer operation ending a block.
type Terminator struct {
	Kind TermKind

	Cond     Value // brif
	Then     BlockID
	ThenArgs []Value
	Else     BlockID
	ElseArgs []Value

	Results []Value // return operands
	Reason  string  // trap

	Meta *Metadata
}

// Successors returns the branch targets, in canonical order.
func (t *Terminator) Successors() []BlockID {
	switch t.Kind {
	case TermJump:
		return []BlockID{t.Then}
	case TermBrif:
		return []BlockID{t.Then, t.Else}
	default:
		return nil
	}
}

// Uses returns every value the terminator reads.
func (t *Terminator) Uses() []Value {
	switch t.Kind {
	case TermJump:
		return t.ThenArgs
	case TermBrif:
		uses := make([]Value, 0, 1+len(t.ThenArgs)+len(t.ElseArgs))
		uses = append(uses, t.Cond)
		uses = append(uses, t.ThenArgs...)
		uses = append(uses, t.ElseArgs...)
		return uses
	case TermReturn:
		return t.Results
	default:
		return nil
	}
}
