package ql

import (
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
)

// CreateQuery builds a CREATE statement.
type CreateQuery struct {
	thing        string
	sets         map[string]any
	content      any
	useContent   bool
	only         bool
	returnClause string
}

// Create starts a CREATE statement. The thing is either a table name
// ("users") or a record ID string ("users:tobie").
func Create(thing string) *CreateQuery {
	return &CreateQuery{
		thing: thing,
		sets:  make(map[string]any),
	}
}

// Only prefixes the target with ONLY so a single object is returned.
func (q *CreateQuery) Only() *CreateQuery {
	q.only = true
	return q
}

// Set adds a field assignment.
func (q *CreateQuery) Set(field string, value any) *CreateQuery {
	q.sets[field] = value
	return q
}

// SetMap adds field assignments from a map.
func (q *CreateQuery) SetMap(fields map[string]any) *CreateQuery {
	maps.Copy(q.sets, fields)
	return q
}

// Content sets the entire record content, taking precedence over Set.
func (q *CreateQuery) Content(content any) *CreateQuery {
	q.content = content
	q.useContent = true
	return q
}

// Return sets the RETURN clause.
func (q *CreateQuery) Return(clause string) *CreateQuery {
	q.returnClause = clause
	return q
}

// ReturnNone sets RETURN NONE.
func (q *CreateQuery) ReturnNone() *CreateQuery {
	return q.Return(ReturnNoneClause)
}

// Build returns the SurrealQL string and bound parameters.
func (q *CreateQuery) Build() (string, map[string]any) {
	c := newBuildContext()

	var b strings.Builder
	b.WriteString("CREATE ")
	if q.only {
		b.WriteString("ONLY ")
	}
	b.WriteString(escapeTarget(q.thing))

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
func (q *CreateQuery) String() string {
	sql, _ := q.Build()
	return sql
}

// buildSetClause renders field assignments in sorted order so identical
// inputs yield identical statements.
func buildSetClause(c *buildContext, sets map[string]any) string {
	keys := slices.Collect(maps.Keys(sets))
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, field := range keys {
		name := c.param(field, sets[field])
		parts = append(parts, fmt.Sprintf("%s = $%s", escapePath(field), name))
	}
	return strings.Join(parts, ", ")
}
