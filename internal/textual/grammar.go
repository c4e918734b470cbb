package textual

import (
	"github.com/alecthomas/participle/v2/lexer"
)

type File struct {
	Pos      lexer.Position
	Comments []string  `( @Comment )*`
	Contract *Contract `@@`
}

type Contract struct {
	Pos   lexer.Position
	Name  string  `"contract" @Name "{"`
	Decls []*Decl `@@* "}"`
}

type Decl struct {
	Comment  *string    `  @Comment`
	Slot     *SlotDecl  `| @@`
	Event    *EventDecl `| @@`
	Function *FuncDecl  `| @@`
}

type SlotDecl struct {
	Pos   lexer.Position
	Index string    `"slot" @Integer`
	Name  string    `[ @Ident ] ":"`
	Type  *SlotType `@@`
}

type SlotType struct {
	Mapping *MappingType `  @@`
	Plain   *TypeRef     `| @@`
}

type MappingType struct {
	Key   *TypeRef `"mapping" "(" @@ "=>"`
	Value *TypeRef `@@ ")"`
}

type TypeRef struct {
	Pos   lexer.Position
	Space *string `  "ptr" "<" @Ident ">"`
	Name  *string `| @Ident`
}

type EventDecl struct {
	Pos    lexer.Position
	Name   string     `"event" @Name "("`
	Params []*TypeRef `[ @@ { "," @@ } ] ")"`
}

type FuncDecl struct {
	Pos        lexer.Position
	Name       string       `"function" @Name "("`
	Params     []*ParamDecl `[ @@ { "," @@ } ] ")"`
	Results    []*TypeRef   `[ "->" ( "(" @@ { "," @@ } ")" | @@ ) ]`
	Visibility string       `@("public" | "external" | "internal" | "private")`
	Mutability *string      `[ @("view" | "pure" | "payable" | "nonpayable") ] "{"`
	Blocks     []*BlockDecl `@@* "}"`
}

type ParamDecl struct {
	Pos  lexer.Position
	Name string   `@Ident ":"`
	Type *TypeRef `@@`
}

type BlockDecl struct {
	Pos    lexer.Position
	Label  string            `@Block`
	Params []*BlockParamDecl `[ "(" [ @@ { "," @@ } ] ")" ] ":"`
	Lines  []*InstrLine      `@@*`
	Term   *TermLine         `@@`
}

type BlockParamDecl struct {
	Pos  lexer.Position
	Name string   `@Value ":"`
	Type *TypeRef `@@`
}

type InstrLine struct {
	Comment *string `  @Comment`
	Instr   *Instr  `| @@`
}

// Instr is one non-terminator instruction line. The negative lookahead keeps
// the repetition inside BlockDecl from swallowing the terminator.
type Instr struct {
	Pos      lexer.Position
	Result   *string    `(?! "jump" | "brif" | "return" | "trap" ) [ @Value "=" ]`
	Op       string     `@Ident`
	Operands []*Operand `[ @@ { "," @@ } ]`
	Xfer     *string    `[ "value" @Value ]`
	Type     *TypeRef   `[ ":" @@ ]`
	Src      *SrcMeta   `@@?`
	Comment  *string    `[ @Comment ]`
}

type Operand struct {
	Pos   lexer.Position
	Call  *CallOperand `  @@`
	Align *string      `| "align" @Integer`
	Value *string      `| @Value`
	Slot  *string      `| @Slot`
	Int   *string      `| @Integer`
	Str   *string      `| @String`
	Word  *string      `| @Ident`
}

// CallOperand is a callee applied to arguments: %name(...) for internal
// calls, log, and events, vN(...) for external call targets.
type CallOperand struct {
	Pos    lexer.Position
	Func   *string    `( @Name`
	Target *string    `| @Value )`
	Args   []*Operand `"(" [ @@ { "," @@ } ] ")"`
}

type SrcMeta struct {
	Pos  lexer.Position
	File string `"!" "src" "(" @String ","`
	Line string `@Integer ","`
	Col  string `@Integer ")"`
}

type TermLine struct {
	Pos     lexer.Position
	Jump    *TargetRef  `( "jump" @@`
	Brif    *BrifTerm   `| "brif" @@`
	Return  *ReturnTerm `| @@`
	Trap    *string     `| "trap" @String )`
	Src     *SrcMeta    `@@?`
	Comment *string     `[ @Comment ]`
}

type BrifTerm struct {
	Cond string     `@Value ","`
	Then *TargetRef `@@ ","`
	Else *TargetRef `@@`
}

type ReturnTerm struct {
	Kw     bool     `@"return"`
	Values []string `[ @Value { "," @Value } ]`
}

type TargetRef struct {
	Pos   lexer.Position
	Block string   `@Block`
	Args  []string `[ "(" [ @Value { "," @Value } ] ")" ]`
}
