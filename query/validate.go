package query

import (
	"fmt"

	"github.com/sssemil/butane/schema"
	"github.com/sssemil/butane/sqlval"
)

// Validate checks the query against a schema snapshot. Every column
// reference must resolve, and operand types of every comparison must
// agree. Validation happens entirely before rendering and execution, so
// an invalid query never reaches a backend.
func (q *Query) Validate(s *schema.Schema) error {
	v := &validator{schema: s, query: q}
	if _, ok := s.Table(q.table); !ok {
		return &QueryError{Code: CodeUnknownTable, Table: q.table, Message: "unknown table"}
	}
	for _, j := range q.joins {
		if _, ok := s.Table(j.Table); !ok {
			return &QueryError{Code: CodeUnknownTable, Table: j.Table, Message: "unknown joined table"}
		}
	}
	for _, col := range q.columns {
		if _, _, err := v.resolve(Col{Name: col}); err != nil {
			return err
		}
	}
	for _, ord := range q.orderBy {
		if _, _, err := v.resolve(Col{Name: ord.Column}); err != nil {
			return err
		}
	}
	if q.filter != nil {
		if err := v.predicate(q.filter); err != nil {
			return err
		}
	}
	for _, j := range q.joins {
		if j.On == nil {
			return &QueryError{Code: CodeBadExpr, Table: j.Table, Message: "join without predicate"}
		}
		if err := v.predicate(j.On); err != nil {
			return err
		}
	}
	if q.limit != nil && *q.limit < 0 {
		return &QueryError{Code: CodeBadExpr, Message: "negative limit"}
	}
	if q.offset != nil && *q.offset < 0 {
		return &QueryError{Code: CodeBadExpr, Message: "negative offset"}
	}
	return nil
}

type validator struct {
	schema *schema.Schema
	query  *Query
}

// resolve returns the value kind and nullability of a column reference.
func (v *validator) resolve(c Col) (sqlval.Kind, bool, error) {
	table := c.Table
	if table == "" {
		table = v.query.table
	}
	inScope := table == v.query.table
	for _, j := range v.query.joins {
		if j.Table == table {
			inScope = true
		}
	}
	if !inScope {
		return sqlval.KindNull, false, &QueryError{Code: CodeUnknownTable, Table: table, Column: c.Name, Message: "table not part of query"}
	}
	t, ok := v.schema.Table(table)
	if !ok {
		return sqlval.KindNull, false, &QueryError{Code: CodeUnknownTable, Table: table, Message: "unknown table"}
	}
	col, ok := t.Column(c.Name)
	if !ok {
		return sqlval.KindNull, false, &QueryError{Code: CodeUnknownColumn, Table: table, Column: c.Name, Message: "unknown column"}
	}
	kind, err := v.schema.ValueKind(table, c.Name)
	if err != nil {
		return sqlval.KindNull, false, err
	}
	return kind, col.Nullable, nil
}

// predicate validates an expression used in a boolean position.
func (v *validator) predicate(e Expr) error {
	switch ex := e.(type) {
	case BinaryExpr:
		switch ex.Op {
		case OpAnd, OpOr:
			if err := v.predicate(ex.Left); err != nil {
				return err
			}
			return v.predicate(ex.Right)
		case OpLike:
			return v.comparison(ex, true)
		default:
			return v.comparison(ex, false)
		}
	case UnaryExpr:
		return v.predicate(ex.Expr)
	case InExpr:
		kind, nullable, err := v.valueKind(ex.Expr)
		if err != nil {
			return err
		}
		for _, val := range ex.Values {
			if err := v.matchValue(kind, nullable, val); err != nil {
				return err
			}
		}
		return nil
	case NullCheck:
		_, _, err := v.valueKind(ex.Expr)
		return err
	case Col:
		kind, _, err := v.resolve(ex)
		if err != nil {
			return err
		}
		if kind != sqlval.KindBool {
			return &QueryError{Code: CodeTypeMismatch, Table: ex.Table, Column: ex.Name, Message: "non-boolean column used as condition"}
		}
		return nil
	case Literal:
		if ex.Value.Kind() != sqlval.KindBool {
			return &QueryError{Code: CodeTypeMismatch, Message: "non-boolean literal used as condition"}
		}
		return nil
	default:
		return &QueryError{Code: CodeBadExpr, Message: fmt.Sprintf("unsupported expression %T", e)}
	}
}

func (v *validator) comparison(ex BinaryExpr, textOnly bool) error {
	lk, ln, err := v.valueKind(ex.Left)
	if err != nil {
		return err
	}
	rk, rn, err := v.valueKind(ex.Right)
	if err != nil {
		return err
	}
	if textOnly {
		if (lk != sqlval.KindText && lk != sqlval.KindNull) || (rk != sqlval.KindText && rk != sqlval.KindNull) {
			return &QueryError{Code: CodeTypeMismatch, Message: "LIKE requires text operands"}
		}
	}
	// a null literal is only comparable against a nullable column
	if lk == sqlval.KindNull {
		if !rn {
			return &QueryError{Code: CodeTypeMismatch, Message: "null compared with non-nullable operand"}
		}
		return nil
	}
	if rk == sqlval.KindNull {
		if !ln {
			return &QueryError{Code: CodeTypeMismatch, Message: "null compared with non-nullable operand"}
		}
		return nil
	}
	if lk != rk {
		return &QueryError{
			Code:    CodeTypeMismatch,
			Message: fmt.Sprintf("cannot compare %s with %s", lk, rk),
		}
	}
	return nil
}

// valueKind resolves the kind of an expression used in a value position.
func (v *validator) valueKind(e Expr) (sqlval.Kind, bool, error) {
	switch ex := e.(type) {
	case Literal:
		return ex.Value.Kind(), true, nil
	case Col:
		return v.resolve(ex)
	default:
		return sqlval.KindNull, false, &QueryError{Code: CodeBadExpr, Message: fmt.Sprintf("%T is not a value expression", e)}
	}
}

func (v *validator) matchValue(kind sqlval.Kind, nullable bool, val sqlval.Value) error {
	if val.Kind() == sqlval.KindNull {
		if !nullable {
			return &QueryError{Code: CodeTypeMismatch, Message: "null value for non-nullable operand"}
		}
		return nil
	}
	if val.Kind() != kind {
		return &QueryError{
			Code:    CodeTypeMismatch,
			Message: fmt.Sprintf("value kind %s does not match operand kind %s", val.Kind(), kind),
		}
	}
	return nil
}
