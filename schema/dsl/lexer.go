package dsl

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// modelLexer tokenizes .butane model files.
var modelLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Block attribute prefix must come before the single @.
	{Name: "BlockAttr", Pattern: `@@`},
	{Name: "FieldAttr", Pattern: `@`},

	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Question", Pattern: `\?`},

	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[\p{L}_][\p{L}\p{N}_]*`},

	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Newline", Pattern: `[\r\n]+`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})
