package dsl

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// File is the raw parse tree of one model file.
type File struct {
	Pos    lexer.Position
	Models []*Model `parser:"@@*"`
}

// Model is one `model Name { ... }` block.
type Model struct {
	Pos        lexer.Position
	Name       string       `parser:"\"model\" @Ident \"{\""`
	Fields     []*Field     `parser:"@@*"`
	Attributes []*BlockAttr `parser:"@@* \"}\""`
}

// Field is one column declaration inside a model block.
type Field struct {
	Pos      lexer.Position
	Name     string       `parser:"@Ident"`
	Type     *FieldType   `parser:"@@"`
	Nullable bool         `parser:"@\"?\"?"`
	Attrs    []*FieldAttr `parser:"@@*"`
}

// FieldType is a type name with an optional argument, as in fk(group).
type FieldType struct {
	Pos  lexer.Position
	Name string `parser:"@Ident"`
	Arg  string `parser:"(\"(\" @Ident \")\")?"`
}

// FieldAttr is an @attribute on a field, as in @id or @default(0).
type FieldAttr struct {
	Pos  lexer.Position
	Name string   `parser:"FieldAttr @Ident"`
	Arg  *Literal `parser:"(\"(\" @@ \")\")?"`
}

// BlockAttr is an @@attribute on a model, as in @@index([name]).
type BlockAttr struct {
	Pos     lexer.Position
	Name    string   `parser:"BlockAttr @Ident"`
	Columns []string `parser:"\"(\" \"[\" @Ident (\",\" @Ident)* \"]\" \")\""`
}

// Literal is an attribute argument value.
type Literal struct {
	Pos  lexer.Position
	Str  *string `parser:"@String"`
	Num  *string `parser:"| @Number"`
	Bool *string `parser:"| @(\"true\" | \"false\")"`
}
