// Package dsl parses .butane model files into schema snapshots.
//
// A model file is a sequence of model blocks:
//
//	model users {
//	    id    bigint @id
//	    name  text
//	    email text?  @default("none")
//	    group fk(groups)
//	    @@index([name])
//	    @@unique([email])
//	}
//
// Model names become table names verbatim; the parser imposes no case
// convention.
package dsl

import (
	"io"
	"strings"

	"github.com/alecthomas/participle/v2"

	"github.com/sssemil/butane/schema"
)

var parser = participle.MustBuild[File](
	participle.Lexer(modelLexer),
	participle.Elide("Whitespace", "Newline", "Comment"),
	participle.Unquote("String"),
	participle.UseLookahead(4),
)

// Parse reads a model file and converts it into a validated schema.
func Parse(filename string, r io.Reader) (*schema.Schema, error) {
	file, err := parser.Parse(filename, r)
	if err != nil {
		return nil, err
	}
	return Convert(file)
}

// ParseString parses a model file held in a string.
func ParseString(filename, input string) (*schema.Schema, error) {
	return Parse(filename, strings.NewReader(input))
}

// ParseFile parses the raw tree only, leaving conversion and validation
// to the caller. Used by tooling that wants positions for reporting.
func ParseFile(filename string, r io.Reader) (*File, error) {
	return parser.Parse(filename, r)
}
