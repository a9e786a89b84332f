package ql

import (
	"maps"
	"strings"
)

// UpsertQuery builds an UPSERT statement, creating the record when it does
// not exist and updating it otherwise.
type UpsertQuery struct {
	target       string
	only         bool
	sets         map[string]any
	merge        any
	useMerge     bool
	content      any
	useContent   bool
	where        Q
	returnClause string
}

// Upsert starts an UPSERT statement against a table or record ID.
func Upsert(target string) *UpsertQuery {
	return &UpsertQuery{
		target: target,
		sets:   make(map[string]any),
	}
}

// Only prefixes the target with ONLY.
func (q *UpsertQuery) Only() *UpsertQuery {
	q.only = true
	return q
}

// Set adds a field assignment.
func (q *UpsertQuery) Set(field string, value any) *UpsertQuery {
	q.sets[field] = value
	return q
}

// SetMap adds field assignments from a map.
func (q *UpsertQuery) SetMap(fields map[string]any) *UpsertQuery {
	maps.Copy(q.sets, fields)
	return q
}

// Merge applies a MERGE clause instead of SET.
func (q *UpsertQuery) Merge(data any) *UpsertQuery {
	q.merge = data
	q.useMerge = true
	return q
}

// Content replaces the record content entirely.
func (q *UpsertQuery) Content(content any) *UpsertQuery {
	q.content = content
	q.useContent = true
	return q
}

// Where sets the WHERE condition.
func (q *UpsertQuery) Where(cond Q) *UpsertQuery {
	q.where = And(q.where, cond)
	return q
}

// Return sets the RETURN clause.
func (q *UpsertQuery) Return(clause string) *UpsertQuery {
	q.returnClause = clause
	return q
}

// Build returns the SurrealQL string and bound parameters.
func (q *UpsertQuery) Build() (string, map[string]any) {
	c := newBuildContext()

	var b strings.Builder
	b.WriteString("UPSERT ")
	if q.only {
		b.WriteString("ONLY ")
	}
	b.WriteString(escapeTarget(q.target))

	switch {
	case q.useContent:
		name := c.param("content", q.content)
		b.WriteString(" CONTENT $" + name)
	case q.useMerge:
		name := c.param("merge", q.merge)
		b.WriteString(" MERGE $" + name)
	case len(q.sets) > 0:
		b.WriteString(" SET ")
		b.WriteString(buildSetClause(c, q.sets))
	}

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
func (q *UpsertQuery) String() string {
	sql, _ := q.Build()
	return sql
}
