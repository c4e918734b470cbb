package textual

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var scirLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{"Comment", `;[^\n]*`, nil},

		// String literals
		{"String", `"(\\.|[^"\\])*"`, nil},

		// Dense references (must come before Ident)
		{"Value", `v[0-9]+\b`, nil},
		{"Block", `block[0-9]+\b`, nil},
		{"Slot", `slot[0-9]+\b`, nil},

		// Contract-level names
		{"Name", `%[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		// Keywords, mnemonics, and dotted spellings like isub.trap
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)*`, nil},

		// Integer literals
		{"Integer", `0x[0-9a-fA-F]+|[0-9]+`, nil},

		// Operators (order matters: before single-char punctuation)
		{"Operator", `=>|->|=`, nil},

		// Punctuation
		{"Punctuation", `[(){}<>:,!]`, nil},

		// Whitespace
		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
