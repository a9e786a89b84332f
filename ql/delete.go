package ql

import "strings"

// DeleteQuery builds a DELETE statement.
type DeleteQuery struct {
	target       string
	only         bool
	where        Q
	returnClause string
}

// Delete starts a DELETE statement against a table or record ID.
func Delete(target string) *DeleteQuery {
	return &DeleteQuery{target: target}
}

// Only prefixes the target with ONLY.
func (q *DeleteQuery) Only() *DeleteQuery {
	q.only = true
	return q
}

// Where sets the WHERE condition. Successive calls AND the conditions
// together.
func (q *DeleteQuery) Where(cond Q) *DeleteQuery {
	q.where = And(q.where, cond)
	return q
}

// Return sets the RETURN clause.
func (q *DeleteQuery) Return(clause string) *DeleteQuery {
	q.returnClause = clause
	return q
}

// ReturnBefore sets RETURN BEFORE, yielding the deleted records.
func (q *DeleteQuery) ReturnBefore() *DeleteQuery { return q.Return(ReturnBeforeClause) }

// Build returns the SurrealQL string and bound parameters.
func (q *DeleteQuery) Build() (string, map[string]any) {
	c := newBuildContext()

	var b strings.Builder
	b.WriteString("DELETE ")
	if q.only {
		b.WriteString("ONLY ")
	}
	b.WriteString(escapeTarget(q.target))

	if !q.where.IsZero() {
		var wb strings.Builder
		q.where.build(c, &wb)
		b.WriteString(" WHERE " + wb.String())
	}

	if q.returnClause != "" {
		b.WriteString(" RETURN " + q.returnClause)
	}

	return b.String(), c.vars
}

// String returns the SurrealQL string for the statement.
func (q *DeleteQuery) String() string {
	sql, _ := q.Build()
	return sql
}
