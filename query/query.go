package query

// Direction controls ORDER BY sorting.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

// Order is one ORDER BY term.
type Order struct {
	Column string
	Dir    Direction
}

// Join is an inner join against another modeled table.
type Join struct {
	Table string
	On    Expr
}

// Query describes a select against one modeled table. Queries are
// immutable: every builder method returns a new value, so a partially
// built query can be shared and extended from multiple call sites. A
// query guarantees no row ordering unless OrderBy is set.
type Query struct {
	table   string
	columns []string
	filter  Expr
	orderBy []Order
	limit   *int
	offset  *int
	joins   []Join
}

// New starts a query against a table
func New(table string) *Query {
	return &Query{table: table}
}

func (q *Query) clone() *Query {
	cp := *q
	cp.columns = append([]string(nil), q.columns...)
	cp.orderBy = append([]Order(nil), q.orderBy...)
	cp.joins = append([]Join(nil), q.joins...)
	return &cp
}

// Select restricts the projection to the named target-table columns.
// Without it the query projects the table's declared columns in order.
func (q *Query) Select(columns ...string) *Query {
	cp := q.clone()
	cp.columns = append([]string(nil), columns...)
	return cp
}

// Filter ands a condition onto the query's filter
func (q *Query) Filter(e Expr) *Query {
	cp := q.clone()
	if cp.filter == nil {
		cp.filter = e
	} else {
		cp.filter = BinaryExpr{Op: OpAnd, Left: cp.filter, Right: e}
	}
	return cp
}

// OrderBy appends an ordering term
func (q *Query) OrderBy(column string, dir Direction) *Query {
	cp := q.clone()
	cp.orderBy = append(cp.orderBy, Order{Column: column, Dir: dir})
	return cp
}

// Limit caps the number of returned rows
func (q *Query) Limit(n int) *Query {
	cp := q.clone()
	cp.limit = &n
	return cp
}

// Offset skips the first n rows
func (q *Query) Offset(n int) *Query {
	cp := q.clone()
	cp.offset = &n
	return cp
}

// Join adds an inner join with a predicate
func (q *Query) Join(table string, on Expr) *Query {
	cp := q.clone()
	cp.joins = append(cp.joins, Join{Table: table, On: on})
	return cp
}

// Table returns the target table name
func (q *Query) Table() string { return q.table }

// Columns returns the explicit projection, if any
func (q *Query) Columns() []string { return q.columns }

// FilterExpr returns the filter tree, or nil
func (q *Query) FilterExpr() Expr { return q.filter }

// Ordering returns the ORDER BY terms
func (q *Query) Ordering() []Order { return q.orderBy }

// LimitValue returns the limit, or nil
func (q *Query) LimitValue() *int { return q.limit }

// OffsetValue returns the offset, or nil
func (q *Query) OffsetValue() *int { return q.offset }

// Joins returns the joined tables
func (q *Query) Joins() []Join { return q.joins }
