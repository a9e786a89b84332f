package ql

import (
	"maps"
	"strings"
)

// RelateQuery builds a RELATE statement connecting two records through an
// edge table.
type RelateQuery struct {
	from         string
	edge         string
	to           string
	only         bool
	sets         map[string]any
	content      any
	useContent   bool
	returnClause string
}

// Relate starts a RELATE statement: RELATE from->edge->to. The from and to
// arguments are record ID strings ("users:tobie").
func Relate(from, edge, to string) *RelateQuery {
	return &RelateQuery{
		from: from,
		edge: edge,
		to:   to,
		sets: make(map[string]any),
	}
}

// Only prefixes the relation with ONLY so a single edge object is returned.
func (q *RelateQuery) Only() *RelateQuery {
	q.only = true
	return q
}

// Set adds a field assignment on the edge record.
func (q *RelateQuery) Set(field string, value any) *RelateQuery {
	q.sets[field] = value
	return q
}

// SetMap adds edge field assignments from a map.
func (q *RelateQuery) SetMap(fields map[string]any) *RelateQuery {
	maps.Copy(q.sets, fields)
	return q
}

// Content sets the entire edge content.
func (q *RelateQuery) Content(content any) *RelateQuery {
	q.content = content
	q.useContent = true
	return q
}

// Return sets the RETURN clause.
func (q *RelateQuery) Return(clause string) *RelateQuery {
	q.returnClause = clause
	return q
}

// Build returns the SurrealQL string and bound parameters.
func (q *RelateQuery) Build() (string, map[string]any) {
	c := newBuildContext()

	var b strings.Builder
	b.WriteString("RELATE ")
	if q.only {
		b.WriteString("ONLY ")
	}
	b.WriteString(q.from)
	b.WriteString("->")
	b.WriteString(EscapeIdent(q.edge))
	b.WriteString("->")
	b.WriteString(q.to)

	if q.useContent {
		name := c.param("content", q.content)
		b.WriteString(" CONTENT $" + name)
	} else if len(q.sets) > 0 {
		b.WriteString(" SET ")
		b.WriteString(buildSetClause(c, q.sets))
	}

	if q.returnClause != "" {
		b.WriteString(" RETURN " + q.returnClause)
	}

	return b.String(), c.vars
}

// String returns the SurrealQL string for the statement.
func (q *RelateQuery) String() string {
	sql, _ := q.Build()
	return sql
}
