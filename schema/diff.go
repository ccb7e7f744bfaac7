package schema

import "sort"

// Diff computes the ordered operation sequence that transforms the `from`
// snapshot into the `to` snapshot. The output ordering is total, so
// repeated diffs of identical inputs are byte-identical once serialized:
//
//  1. removed indexes, then removed columns (lexicographic)
//  2. new tables in foreign-key dependency order (ties lexicographic)
//  3. added columns, then changed columns (lexicographic)
//  4. added indexes (lexicographic)
//  5. dropped tables in reverse dependency order
//
// A foreign-key cycle among the created or dropped tables fails with
// CodeCyclicForeignKeys rather than guessing an order.
func Diff(from, to *Schema) ([]Operation, error) {
	if err := from.Validate(); err != nil {
		return nil, err
	}
	if err := to.Validate(); err != nil {
		return nil, err
	}

	var created, dropped []Table
	var common []string
	for _, t := range to.Tables() {
		if _, ok := from.Table(t.Name); ok {
			common = append(common, t.Name)
		} else {
			created = append(created, t)
		}
	}
	for _, t := range from.Tables() {
		if _, ok := to.Table(t.Name); !ok {
			dropped = append(dropped, t)
		}
	}

	var removeIdx, removeCol, addCol, changeCol, addIdx []Operation
	for _, name := range common {
		prev, _ := from.Table(name)
		next, _ := to.Table(name)

		for _, c := range prev.Columns {
			if _, ok := next.Column(c.Name); !ok {
				removeCol = append(removeCol, Operation{Kind: OpRemoveColumn, TableName: name, ColumnName: c.Name})
			}
		}
		for _, c := range next.Columns {
			pc, ok := prev.Column(c.Name)
			if !ok {
				col := c
				addCol = append(addCol, Operation{Kind: OpAddColumn, TableName: name, Column: &col})
			} else if !pc.Equal(c) {
				col := c
				changeCol = append(changeCol, Operation{Kind: OpChangeColumnType, TableName: name, Column: &col})
			}
		}

		for _, idx := range prev.Indexes {
			if !hasIndex(next.Indexes, idx) {
				i := idx
				removeIdx = append(removeIdx, Operation{Kind: OpRemoveIndex, TableName: name, Index: &i})
			}
		}
		for _, idx := range next.Indexes {
			if !hasIndex(prev.Indexes, idx) {
				i := idx
				addIdx = append(addIdx, Operation{Kind: OpAddIndex, TableName: name, Index: &i})
			}
		}
	}

	createOrder, err := dependencyOrder(created)
	if err != nil {
		return nil, err
	}
	dropOrder, err := dependencyOrder(dropped)
	if err != nil {
		return nil, err
	}
	// referencing tables drop before their dependencies
	reverse(dropOrder)

	sortOps(removeIdx)
	sortOps(removeCol)
	sortOps(addCol)
	sortOps(changeCol)
	sortOps(addIdx)

	var ops []Operation
	ops = append(ops, removeIdx...)
	ops = append(ops, removeCol...)
	for _, t := range createOrder {
		tbl := copyTable(t)
		// indexes are separate statements; the create op carries columns only
		tbl.Indexes = nil
		ops = append(ops, Operation{Kind: OpCreateTable, TableName: t.Name, Table: &tbl})
		for _, idx := range t.Indexes {
			i := idx
			ops = append(ops, Operation{Kind: OpAddIndex, TableName: t.Name, Index: &i})
		}
	}
	ops = append(ops, addCol...)
	ops = append(ops, changeCol...)
	ops = append(ops, addIdx...)
	for _, t := range dropOrder {
		ops = append(ops, Operation{Kind: OpDropTable, TableName: t.Name})
	}
	return ops, nil
}

func hasIndex(set []Index, idx Index) bool {
	for _, i := range set {
		if i.Equal(idx) {
			return true
		}
	}
	return false
}

func sortOps(ops []Operation) {
	sort.Slice(ops, func(i, j int) bool {
		a, b := ops[i], ops[j]
		if a.TableName != b.TableName {
			return a.TableName < b.TableName
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return opColumnKey(a) < opColumnKey(b)
	})
}

func opColumnKey(op Operation) string {
	switch {
	case op.Column != nil:
		return op.Column.Name
	case op.ColumnName != "":
		return op.ColumnName
	case op.Index != nil:
		key := ""
		for _, c := range op.Index.Columns {
			key += c + "\x00"
		}
		if op.Index.Unique {
			key += "!"
		}
		return key
	}
	return ""
}

// dependencyOrder topologically sorts tables so that every table comes
// after the tables its foreign keys reference, considering only edges
// inside the given set. Kahn's algorithm with a sorted ready queue keeps
// the order deterministic. A self-reference or mutual reference inside
// the set is reported as a cycle.
func dependencyOrder(tables []Table) ([]Table, error) {
	inSet := make(map[string]Table, len(tables))
	for _, t := range tables {
		inSet[t.Name] = t
	}

	inDegree := make(map[string]int, len(tables))
	dependents := make(map[string][]string, len(tables))
	for _, t := range tables {
		inDegree[t.Name] += 0
		for _, c := range t.Columns {
			if c.Type.Kind != TypeForeignKey {
				continue
			}
			ref := c.Type.References
			if ref == t.Name {
				return nil, &SchemaError{
					Code:    CodeCyclicForeignKeys,
					Tables:  []string{t.Name},
					Message: "self-referencing foreign key requires deferred constraints",
				}
			}
			if _, ok := inSet[ref]; ok {
				dependents[ref] = append(dependents[ref], t.Name)
				inDegree[t.Name]++
			}
		}
	}

	var ready []string
	for name, deg := range inDegree {
		if deg == 0 {
			ready = append(ready, name)
		}
	}

	var order []Table
	for len(ready) > 0 {
		sort.Strings(ready)
		name := ready[0]
		ready = ready[1:]
		order = append(order, inSet[name])
		for _, dep := range dependents[name] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				ready = append(ready, dep)
			}
		}
	}

	if len(order) != len(tables) {
		var cycle []string
		for _, t := range tables {
			if inDegree[t.Name] > 0 {
				cycle = append(cycle, t.Name)
			}
		}
		sort.Strings(cycle)
		return nil, &SchemaError{
			Code:    CodeCyclicForeignKeys,
			Tables:  cycle,
			Message: "foreign keys form a cycle",
		}
	}
	return order, nil
}

func reverse(tables []Table) {
	for i, j := 0, len(tables)-1; i < j; i, j = i+1, j-1 {
		tables[i], tables[j] = tables[j], tables[i]
	}
}
