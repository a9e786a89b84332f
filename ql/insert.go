package ql

import "strings"

// InsertQuery builds an INSERT statement for bulk record creation.
type InsertQuery struct {
	table    string
	values   []any
	relation bool
}

// Insert starts an INSERT statement into the given table. Values are passed
// as a single bound parameter, so both single records and slices work.
func Insert(table string, values ...any) *InsertQuery {
	return &InsertQuery{table: table, values: values}
}

// InsertRelation starts an INSERT RELATION statement into an edge table.
func InsertRelation(table string, values ...any) *InsertQuery {
	return &InsertQuery{table: table, values: values, relation: true}
}

// Values appends records to insert.
func (q *InsertQuery) Values(values ...any) *InsertQuery {
	q.values = append(q.values, values...)
	return q
}

// Build returns the SurrealQL string and bound parameters.
func (q *InsertQuery) Build() (string, map[string]any) {
	c := newBuildContext()

	var b strings.Builder
	b.WriteString("INSERT ")
	if q.relation {
		b.WriteString("RELATION ")
	}
	b.WriteString("INTO ")
	b.WriteString(EscapeIdent(q.table))

	var payload any
	if len(q.values) == 1 {
		payload = q.values[0]
	} else {
		payload = q.values
	}
	name := c.param("values", payload)
	b.WriteString(" $" + name)

	return b.String(), c.vars
}

// String returns the SurrealQL string for the statement.
func (q *InsertQuery) String() string {
	sql, _ := q.Build()
	return sql
}
