package sqlgen

import (
	"fmt"
	"strings"

	"github.com/sssemil/butane/query"
	"github.com/sssemil/butane/schema"
	"github.com/sssemil/butane/sqlval"
)

// Statement is rendered SQL text plus its ordered bound parameters.
// Caller-supplied values only ever appear in Args; the SQL text contains
// placeholders at their positions. This is the injection defense and is
// covered by property tests.
type Statement struct {
	SQL  string
	Args []sqlval.Value
}

// RenderQuery validates a query against the schema and renders it for
// the dialect.
func RenderQuery(q *query.Query, s *schema.Schema, d Dialect) (*Statement, error) {
	if err := q.Validate(s); err != nil {
		return nil, err
	}

	w := &writer{dialect: d, target: q.Table(), qualify: len(q.Joins()) > 0}

	cols := q.Columns()
	if len(cols) == 0 {
		t, _ := s.Table(q.Table())
		for _, c := range t.Columns {
			cols = append(cols, c.Name)
		}
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = w.column(query.Col{Name: c})
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(quoted, ", "))
	b.WriteString(" FROM ")
	b.WriteString(d.QuoteIdent(q.Table()))

	for _, j := range q.Joins() {
		b.WriteString(" JOIN ")
		b.WriteString(d.QuoteIdent(j.Table))
		b.WriteString(" ON ")
		on, err := w.expr(j.On)
		if err != nil {
			return nil, err
		}
		b.WriteString(on)
	}

	if q.FilterExpr() != nil {
		cond, err := w.expr(q.FilterExpr())
		if err != nil {
			return nil, err
		}
		b.WriteString(" WHERE ")
		b.WriteString(cond)
	}

	if ords := q.Ordering(); len(ords) > 0 {
		terms := make([]string, len(ords))
		for i, o := range ords {
			terms[i] = w.column(query.Col{Name: o.Column}) + " " + string(o.Dir)
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	if q.LimitValue() != nil {
		b.WriteString(" LIMIT ")
		b.WriteString(w.bind(sqlval.Int(int64(*q.LimitValue()))))
	}
	if q.OffsetValue() != nil {
		b.WriteString(" OFFSET ")
		b.WriteString(w.bind(sqlval.Int(int64(*q.OffsetValue()))))
	}

	return &Statement{SQL: b.String(), Args: w.args}, nil
}

// RenderInsert renders an insert of values into the named columns. Value
// kinds and nullability are checked against the schema before any SQL is
// produced, so a null for a non-nullable column fails here instead of at
// execution.
func RenderInsert(s *schema.Schema, table string, columns []string, values []sqlval.Value, d Dialect) (*Statement, error) {
	t, ok := s.Table(table)
	if !ok {
		return nil, &query.QueryError{Code: query.CodeUnknownTable, Table: table, Message: "unknown table"}
	}
	if len(columns) != len(values) {
		return nil, fmt.Errorf("sqlgen: %d columns but %d values", len(columns), len(values))
	}
	for i, name := range columns {
		col, ok := t.Column(name)
		if !ok {
			return nil, &query.QueryError{Code: query.CodeUnknownColumn, Table: table, Column: name, Message: "unknown column"}
		}
		if err := checkAssignable(s, table, col, values[i]); err != nil {
			return nil, err
		}
	}

	w := &writer{dialect: d}
	quoted := make([]string, len(columns))
	marks := make([]string, len(values))
	for i, c := range columns {
		quoted[i] = d.QuoteIdent(c)
	}
	for i, v := range values {
		marks[i] = w.bind(v)
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		d.QuoteIdent(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
	return &Statement{SQL: sql, Args: w.args}, nil
}

// RenderUpdate renders an update of the given columns filtered by cond.
func RenderUpdate(s *schema.Schema, table string, columns []string, values []sqlval.Value, cond query.Expr, d Dialect) (*Statement, error) {
	t, ok := s.Table(table)
	if !ok {
		return nil, &query.QueryError{Code: query.CodeUnknownTable, Table: table, Message: "unknown table"}
	}
	if len(columns) != len(values) {
		return nil, fmt.Errorf("sqlgen: %d columns but %d values", len(columns), len(values))
	}

	w := &writer{dialect: d, target: table}
	var sets []string
	for i, name := range columns {
		col, ok := t.Column(name)
		if !ok {
			return nil, &query.QueryError{Code: query.CodeUnknownColumn, Table: table, Column: name, Message: "unknown column"}
		}
		if err := checkAssignable(s, table, col, values[i]); err != nil {
			return nil, err
		}
		sets = append(sets, d.QuoteIdent(name)+" = "+w.bind(values[i]))
	}

	sql := fmt.Sprintf("UPDATE %s SET %s", d.QuoteIdent(table), strings.Join(sets, ", "))
	if cond != nil {
		if err := query.New(table).Filter(cond).Validate(s); err != nil {
			return nil, err
		}
		c, err := w.expr(cond)
		if err != nil {
			return nil, err
		}
		sql += " WHERE " + c
	}
	return &Statement{SQL: sql, Args: w.args}, nil
}

// RenderDelete renders a delete filtered by cond. A nil cond deletes
// every row; callers wanting that must say so explicitly through the all
// flag.
func RenderDelete(s *schema.Schema, table string, cond query.Expr, all bool, d Dialect) (*Statement, error) {
	if _, ok := s.Table(table); !ok {
		return nil, &query.QueryError{Code: query.CodeUnknownTable, Table: table, Message: "unknown table"}
	}
	if cond == nil && !all {
		return nil, &query.QueryError{Code: query.CodeBadExpr, Table: table, Message: "delete without condition"}
	}

	w := &writer{dialect: d, target: table}
	sql := "DELETE FROM " + d.QuoteIdent(table)
	if cond != nil {
		if err := query.New(table).Filter(cond).Validate(s); err != nil {
			return nil, err
		}
		c, err := w.expr(cond)
		if err != nil {
			return nil, err
		}
		sql += " WHERE " + c
	}
	return &Statement{SQL: sql, Args: w.args}, nil
}

func checkAssignable(s *schema.Schema, table string, col schema.Column, v sqlval.Value) error {
	if v.IsNull() {
		if !col.Nullable {
			return &query.QueryError{
				Code:    query.CodeTypeMismatch,
				Table:   table,
				Column:  col.Name,
				Message: "null value for non-nullable column",
			}
		}
		return nil
	}
	kind, err := s.ValueKind(table, col.Name)
	if err != nil {
		return err
	}
	if v.Kind() != kind {
		return &query.QueryError{
			Code:    query.CodeTypeMismatch,
			Table:   table,
			Column:  col.Name,
			Message: fmt.Sprintf("value kind %s does not match column kind %s", v.Kind(), kind),
		}
	}
	return nil
}

// writer accumulates bound parameters while walking an expression tree.
type writer struct {
	dialect Dialect
	target  string
	qualify bool
	args    []sqlval.Value
}

func (w *writer) bind(v sqlval.Value) string {
	w.args = append(w.args, v)
	return w.dialect.Placeholder(len(w.args))
}

func (w *writer) column(c query.Col) string {
	table := c.Table
	if table == "" {
		table = w.target
	}
	if w.qualify {
		return w.dialect.QuoteIdent(table) + "." + w.dialect.QuoteIdent(c.Name)
	}
	return w.dialect.QuoteIdent(c.Name)
}

func (w *writer) expr(e query.Expr) (string, error) {
	switch ex := e.(type) {
	case query.Literal:
		return w.bind(ex.Value), nil

	case query.Col:
		return w.column(ex), nil

	case query.BinaryExpr:
		left, err := w.expr(ex.Left)
		if err != nil {
			return "", err
		}
		right, err := w.expr(ex.Right)
		if err != nil {
			return "", err
		}
		if ex.Op == query.OpAnd || ex.Op == query.OpOr {
			return fmt.Sprintf("(%s %s %s)", left, ex.Op, right), nil
		}
		return fmt.Sprintf("%s %s %s", left, ex.Op, right), nil

	case query.UnaryExpr:
		inner, err := w.expr(ex.Expr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("NOT (%s)", inner), nil

	case query.InExpr:
		inner, err := w.expr(ex.Expr)
		if err != nil {
			return "", err
		}
		if len(ex.Values) == 0 {
			// empty set: always false, or always true when negated
			if ex.Negate {
				return "1 = 1", nil
			}
			return "1 = 0", nil
		}
		marks := make([]string, len(ex.Values))
		for i, v := range ex.Values {
			marks[i] = w.bind(v)
		}
		op := "IN"
		if ex.Negate {
			op = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", inner, op, strings.Join(marks, ", ")), nil

	case query.NullCheck:
		inner, err := w.expr(ex.Expr)
		if err != nil {
			return "", err
		}
		if ex.Negate {
			return inner + " IS NOT NULL", nil
		}
		return inner + " IS NULL", nil

	default:
		return "", &query.QueryError{Code: query.CodeBadExpr, Message: fmt.Sprintf("unsupported expression %T", e)}
	}
}
