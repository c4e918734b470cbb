package textual

import (
	"fmt"
	"strconv"
	"strings"

	"scir/internal/ir"
)

// Options controls emission. StripMetadata drops !src locations and
// trailing comments; everything else always round-trips.
type Options struct {
	StripMetadata bool
}

// Emit renders a module in its single canonical spelling: structural order,
// one instruction per line, four-space indent, dense value numbering in
// definition order. Parsing the result reproduces the module.
func Emit(m *ir.Module, opts Options) string {
	e := &emitter{strip: opts.StripMetadata}
	e.module(m)
	return e.b.String()
}

type emitter struct {
	b     strings.Builder
	strip bool
	names map[ir.Value]string
	next  int
}

func (e *emitter) module(m *ir.Module) {
	fmt.Fprintf(&e.b, "contract %%%s {\n", m.Name)
	for _, s := range m.Slots {
		e.slot(&s)
	}
	for _, ev := range m.Events {
		types := make([]string, len(ev.Params))
		for i, t := range ev.Params {
			types[i] = t.String()
		}
		fmt.Fprintf(&e.b, "    event %%%s(%s)\n", ev.Name, strings.Join(types, ", "))
	}
	for i, f := range m.Functions {
		if i > 0 || len(m.Slots)+len(m.Events) > 0 {
			e.b.WriteString("\n")
		}
		e.function(f)
	}
	e.b.WriteString("}\n")
}

func (e *emitter) slot(s *ir.SlotDecl) {
	name := ""
	if s.Name != "" {
		name = s.Name + " "
	}
	switch s.Kind {
	case ir.SlotMapping:
		fmt.Fprintf(&e.b, "    slot %d %s: mapping(%s => %s)\n", s.Index, name, s.Key, s.Type)
	default:
		fmt.Fprintf(&e.b, "    slot %d %s: %s\n", s.Index, name, s.Type)
	}
}

func (e *emitter) function(f *ir.Function) {
	// Values are renumbered densely in definition order: entry parameters
	// first, then per block its parameters followed by its results.
	e.names = make(map[ir.Value]string, f.NumValues())
	e.next = 0
	for _, blk := range f.Blocks {
		for _, p := range blk.Params {
			e.bind(p.Value)
		}
		for _, in := range blk.Instrs {
			if in.Result != ir.NoValue {
				e.bind(in.Result)
			}
		}
	}

	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		params[i] = fmt.Sprintf("%s: %s", name, p.Type)
	}
	header := fmt.Sprintf("    function %%%s(%s)", f.Name, strings.Join(params, ", "))
	switch len(f.Results) {
	case 0:
	case 1:
		header += " -> " + f.Results[0].String()
	default:
		types := make([]string, len(f.Results))
		for i, t := range f.Results {
			types[i] = t.String()
		}
		header += " -> (" + strings.Join(types, ", ") + ")"
	}
	header += " " + f.Visibility.String()
	if f.Mutability != ir.MutNonPayable {
		header += " " + f.Mutability.String()
	}
	e.b.WriteString(header + " {\n")

	for bi, blk := range f.Blocks {
		e.block(bi, blk)
	}
	e.b.WriteString("    }\n")
}

func (e *emitter) bind(v ir.Value) {
	if _, ok := e.names[v]; ok {
		return
	}
	e.names[v] = fmt.Sprintf("v%d", e.next)
	e.next++
}

// name renders a value reference. A value with no definition site gets a
// number on first use so that even a draft module renders deterministically.
func (e *emitter) name(v ir.Value) string {
	if n, ok := e.names[v]; ok {
		return n
	}
	e.bind(v)
	return e.names[v]
}

func (e *emitter) block(bi int, blk *ir.Block) {
	if len(blk.Params) == 0 {
		fmt.Fprintf(&e.b, "    block%d:\n", bi)
	} else {
		params := make([]string, len(blk.Params))
		for i, p := range blk.Params {
			params[i] = fmt.Sprintf("%s: %s", e.name(p.Value), p.Type)
		}
		fmt.Fprintf(&e.b, "    block%d(%s):\n", bi, strings.Join(params, ", "))
	}
	for _, in := range blk.Instrs {
		e.b.WriteString("        " + e.instruction(in) + e.meta(in.Meta) + "\n")
	}
	if blk.Term != nil {
		e.b.WriteString("        " + e.terminator(blk.Term) + e.meta(blk.Term.Meta) + "\n")
	}
}

func (e *emitter) meta(m *ir.Metadata) string {
	if m == nil || e.strip {
		return ""
	}
	var out string
	if m.HasLocation() {
		out += fmt.Sprintf(" !src(%s, %d, %d)", strconv.Quote(m.File), m.Line, m.Column)
	}
	if m.Comment != "" {
		out += " ; " + m.Comment
	}
	return out
}

func (e *emitter) args(vals []ir.Value) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = e.name(v)
	}
	return strings.Join(parts, ", ")
}

func (e *emitter) instruction(in *ir.Instruction) string {
	var body string
	switch in.Op {
	case ir.OpIConst:
		body = fmt.Sprintf("iconst %s : %s", in.Const, in.Type)
	case ir.OpBConst:
		body = fmt.Sprintf("bconst %t", in.Bool)
	case ir.OpIAdd, ir.OpISub, ir.OpIMul, ir.OpIDiv, ir.OpIMod:
		body = fmt.Sprintf("%s.%s %s : %s", in.Op, in.Overflow, e.args(in.Args), in.Type)
	case ir.OpBAnd, ir.OpBOr, ir.OpBXor, ir.OpBNot, ir.OpIShl, ir.OpIShr,
		ir.OpSelect, ir.OpZext, ir.OpSext, ir.OpTrunc,
		ir.OpKeccak256, ir.OpSha256, ir.OpAbiEncode, ir.OpAbiDecode:
		body = fmt.Sprintf("%s %s : %s", in.Op, e.args(in.Args), in.Type)
	case ir.OpICmpEq, ir.OpICmpNe, ir.OpICmpLt, ir.OpICmpGt, ir.OpICmpLe, ir.OpICmpGe:
		body = fmt.Sprintf("%s %s", in.Op, e.args(in.Args))
	case ir.OpAlloc:
		body = fmt.Sprintf("alloc %s, align %d : %s", in.Const, in.Align, in.Type)
	case ir.OpLoad:
		body = fmt.Sprintf("load.%s %s, align %d : %s", in.Space, e.args(in.Args), in.Align, in.Type)
	case ir.OpStore:
		body = fmt.Sprintf("store.%s %s, align %d : %s", in.Space, e.args(in.Args), in.Align, in.Type)
	case ir.OpMemCopy:
		body = fmt.Sprintf("memcopy.%s %s", in.Space, e.args(in.Args))
	case ir.OpStorageLoad:
		body = fmt.Sprintf("storage_load slot%d : %s", in.Slot, in.Type)
	case ir.OpStorageStore:
		body = fmt.Sprintf("storage_store slot%d, %s", in.Slot, e.args(in.Args))
	case ir.OpMappingLoad:
		body = fmt.Sprintf("mapping_load slot%d, %s : %s", in.Slot, e.args(in.Args), in.Type)
	case ir.OpMappingStore:
		body = fmt.Sprintf("mapping_store slot%d, %s", in.Slot, e.args(in.Args))
	case ir.OpCall:
		body = fmt.Sprintf("call %%%s(%s)", in.Callee, e.args(in.Args))
		if in.Result != ir.NoValue {
			body += fmt.Sprintf(" : %s", in.Type)
		}
	case ir.OpExtCall:
		callArgs := in.Args[1:]
		var xfer string
		if in.HasValue {
			xfer = " value " + e.name(callArgs[len(callArgs)-1])
			callArgs = callArgs[:len(callArgs)-1]
		}
		body = fmt.Sprintf("extcall.%s %s(%s)%s : %s", in.Kind, e.name(in.Args[0]), e.args(callArgs), xfer, in.Type)
	case ir.OpGetContext:
		body = fmt.Sprintf("get_context %s : %s", in.Context, in.Type)
	case ir.OpLog:
		body = fmt.Sprintf("log %%%s(%s)", in.Callee, e.args(in.Args))
	case ir.OpRequire:
		body = fmt.Sprintf("require %s, %s", e.args(in.Args), strconv.Quote(in.Message))
	default:
		body = in.Op.String()
	}
	if in.Result != ir.NoValue {
		return e.name(in.Result) + " = " + body
	}
	return body
}

func (e *emitter) target(id ir.BlockID, args []ir.Value) string {
	if len(args) == 0 {
		return id.String()
	}
	return fmt.Sprintf("%s(%s)", id, e.args(args))
}

func (e *emitter) terminator(t *ir.Terminator) string {
	switch t.Kind {
	case ir.TermJump:
		return "jump " + e.target(t.Then, t.ThenArgs)
	case ir.TermBrif:
		return fmt.Sprintf("brif %s, %s, %s", e.name(t.Cond),
			e.target(t.Then, t.ThenArgs), e.target(t.Else, t.ElseArgs))
	case ir.TermReturn:
		if len(t.Results) == 0 {
			return "return"
		}
		return "return " + e.args(t.Results)
	case ir.TermTrap:
		return "trap " + strconv.Quote(t.Reason)
	default:
		return "trap \"invalid terminator\""
	}
}
