package dsl

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/fatih/color"
)

// ParseError is one validation or parse failure in a model file, tied
// to the position it came from.
type ParseError struct {
	Pos     lexer.Position
	Message string
}

func (e ParseError) Error() string {
	if e.Pos.Filename == "" && e.Pos.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename, e.Pos.Line, e.Pos.Column, e.Message)
}

// Diagnostics accumulates errors during validation so the whole file is
// checked before reporting, instead of stopping at the first problem.
type Diagnostics struct {
	errors []ParseError
}

func (d *Diagnostics) Push(pos lexer.Position, format string, args ...any) {
	d.errors = append(d.errors, ParseError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

func (d *Diagnostics) HasErrors() bool {
	return len(d.errors) > 0
}

func (d *Diagnostics) Errors() []ParseError {
	return d.errors
}

// ToResult collapses the collection into a single error, or nil.
func (d *Diagnostics) ToResult() error {
	if !d.HasErrors() {
		return nil
	}
	msgs := make([]string, len(d.errors))
	for i, e := range d.errors {
		msgs[i] = e.Error()
	}
	return fmt.Errorf("%s", strings.Join(msgs, "\n"))
}

// PrettyPrint writes each error with the offending source line
// underlined, colored for terminals.
func (d *Diagnostics) PrettyPrint(w io.Writer, source string) {
	lines := strings.Split(source, "\n")
	title := color.New(color.FgRed, color.Bold)
	ctx := color.New(color.FgHiBlack)
	for _, e := range d.errors {
		title.Fprintf(w, "error")
		fmt.Fprintf(w, ": %s\n", e.Message)
		if e.Pos.Line >= 1 && e.Pos.Line <= len(lines) {
			ctx.Fprintf(w, "  --> %s:%d:%d\n", e.Pos.Filename, e.Pos.Line, e.Pos.Column)
			fmt.Fprintf(w, "   | %s\n", lines[e.Pos.Line-1])
			if e.Pos.Column >= 1 {
				fmt.Fprintf(w, "   | %s^\n", strings.Repeat(" ", e.Pos.Column-1))
			}
		}
		fmt.Fprintln(w)
	}
}
