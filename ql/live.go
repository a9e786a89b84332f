package ql

import "strings"

// LiveSelectQuery builds a LIVE SELECT statement for change subscriptions.
type LiveSelectQuery struct {
	table  string
	diff   bool
	where  Q
	fetchL []string
}

// LiveSelect creates a LIVE SELECT statement over a table.
func LiveSelect(table string) *LiveSelectQuery {
	return &LiveSelectQuery{table: table}
}

// Diff switches the subscription to DIFF mode, delivering JSON patches
// instead of full records.
func (q *LiveSelectQuery) Diff() *LiveSelectQuery {
	q.diff = true
	return q
}

// Where filters which changes produce notifications. Successive calls AND
// the conditions together.
func (q *LiveSelectQuery) Where(cond Q) *LiveSelectQuery {
	q.where = And(q.where, cond)
	return q
}

// Fetch adds FETCH fields resolved in delivered records.
func (q *LiveSelectQuery) Fetch(fields ...string) *LiveSelectQuery {
	q.fetchL = append(q.fetchL, fields...)
	return q
}

// Build returns the SurrealQL string and bound parameters.
func (q *LiveSelectQuery) Build() (string, map[string]any) {
	c := newBuildContext()

	var b strings.Builder
	b.WriteString("LIVE SELECT ")
	if q.diff {
		b.WriteString("DIFF")
	} else {
		b.WriteString("*")
	}
	b.WriteString(" FROM ")
	b.WriteString(EscapeIdent(q.table))

	if !q.where.IsZero() {
		var wb strings.Builder
		q.where.build(c, &wb)
		b.WriteString(" WHERE " + wb.String())
	}

	if len(q.fetchL) > 0 {
		b.WriteString(" FETCH " + joinEscaped(q.fetchL))
	}

	return b.String(), c.vars
}

// String returns the SurrealQL string for the statement.
func (q *LiveSelectQuery) String() string {
	sql, _ := q.Build()
	return sql
}
