// Package query provides a backend-agnostic expression tree and an
// immutable query builder. Queries are validated against the modeled
// schema before they are rendered; nothing in this package produces SQL
// text itself.
package query

import "github.com/sssemil/butane/sqlval"

// Expr is a node in the filter expression tree. The set of
// implementations is closed.
type Expr interface {
	isExpr()
}

// Literal wraps a value. Literals always render as bound parameters.
type Literal struct {
	Value sqlval.Value
}

// Col references a column, optionally qualified by table. An unqualified
// reference resolves against the query's target table.
type Col struct {
	Table string
	Name  string
}

// BinOp enumerates binary operators.
type BinOp string

const (
	OpEq   BinOp = "="
	OpNe   BinOp = "<>"
	OpLt   BinOp = "<"
	OpLe   BinOp = "<="
	OpGt   BinOp = ">"
	OpGe   BinOp = ">="
	OpAnd  BinOp = "AND"
	OpOr   BinOp = "OR"
	OpLike BinOp = "LIKE"
)

// BinaryExpr applies a binary operator to two subtrees.
type BinaryExpr struct {
	Op    BinOp
	Left  Expr
	Right Expr
}

// UnaryExpr negates a boolean subtree.
type UnaryExpr struct {
	Expr Expr
}

// InExpr tests membership of an expression in a literal set.
type InExpr struct {
	Expr   Expr
	Values []sqlval.Value
	Negate bool
}

// NullCheck tests an expression against NULL.
type NullCheck struct {
	Expr   Expr
	Negate bool
}

func (Literal) isExpr()    {}
func (Col) isExpr()        {}
func (BinaryExpr) isExpr() {}
func (UnaryExpr) isExpr()  {}
func (InExpr) isExpr()     {}
func (NullCheck) isExpr()  {}

// C references a column on the query's target table
func C(name string) Col {
	return Col{Name: name}
}

// TC references a column on a named (usually joined) table
func TC(table, name string) Col {
	return Col{Table: table, Name: name}
}

// V wraps a value literal
func V(v sqlval.Value) Literal {
	return Literal{Value: v}
}

// Eq compares a target-table column with a value
func Eq(column string, v sqlval.Value) Expr {
	return BinaryExpr{Op: OpEq, Left: C(column), Right: V(v)}
}

// Ne compares a target-table column with a value for inequality
func Ne(column string, v sqlval.Value) Expr {
	return BinaryExpr{Op: OpNe, Left: C(column), Right: V(v)}
}

// Lt tests column < value
func Lt(column string, v sqlval.Value) Expr {
	return BinaryExpr{Op: OpLt, Left: C(column), Right: V(v)}
}

// Le tests column <= value
func Le(column string, v sqlval.Value) Expr {
	return BinaryExpr{Op: OpLe, Left: C(column), Right: V(v)}
}

// Gt tests column > value
func Gt(column string, v sqlval.Value) Expr {
	return BinaryExpr{Op: OpGt, Left: C(column), Right: V(v)}
}

// Ge tests column >= value
func Ge(column string, v sqlval.Value) Expr {
	return BinaryExpr{Op: OpGe, Left: C(column), Right: V(v)}
}

// Like tests a text column against a pattern
func Like(column string, pattern string) Expr {
	return BinaryExpr{Op: OpLike, Left: C(column), Right: V(sqlval.Text(pattern))}
}

// And joins conditions conjunctively
func And(exprs ...Expr) Expr {
	return fold(OpAnd, exprs)
}

// Or joins conditions disjunctively
func Or(exprs ...Expr) Expr {
	return fold(OpOr, exprs)
}

// Not negates a condition
func Not(e Expr) Expr {
	return UnaryExpr{Expr: e}
}

// In tests a target-table column against a value set
func In(column string, values ...sqlval.Value) Expr {
	return InExpr{Expr: C(column), Values: values}
}

// NotIn tests a target-table column against the complement of a value set
func NotIn(column string, values ...sqlval.Value) Expr {
	return InExpr{Expr: C(column), Values: values, Negate: true}
}

// IsNull tests a target-table column for NULL
func IsNull(column string) Expr {
	return NullCheck{Expr: C(column)}
}

// IsNotNull tests a target-table column for NOT NULL
func IsNotNull(column string) Expr {
	return NullCheck{Expr: C(column), Negate: true}
}

func fold(op BinOp, exprs []Expr) Expr {
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	}
	acc := exprs[0]
	for _, e := range exprs[1:] {
		acc = BinaryExpr{Op: op, Left: acc, Right: e}
	}
	return acc
}
