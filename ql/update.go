package ql

import (
	"maps"
	"strings"
)

// UpdateQuery builds an UPDATE statement.
type UpdateQuery struct {
	target       string
	only         bool
	sets         map[string]any
	setsRaw      []rawSet
	merge        any
	useMerge     bool
	content      any
	useContent   bool
	where        Q
	returnClause string
}

type rawSet struct {
	expr string
	args []any
}

// Update starts an UPDATE statement against a table or record ID.
func Update(target string) *UpdateQuery {
	return &UpdateQuery{
		target: target,
		sets:   make(map[string]any),
	}
}

// Only prefixes the target with ONLY so a single object is returned.
func (q *UpdateQuery) Only() *UpdateQuery {
	q.only = true
	return q
}

// Set adds a field assignment.
func (q *UpdateQuery) Set(field string, value any) *UpdateQuery {
	q.sets[field] = value
	return q
}

// SetMap adds field assignments from a map.
func (q *UpdateQuery) SetMap(fields map[string]any) *UpdateQuery {
	maps.Copy(q.sets, fields)
	return q
}

// SetRaw adds a compound assignment expression with ? placeholders, such as
// "count += ?".
func (q *UpdateQuery) SetRaw(expr string, args ...any) *UpdateQuery {
	q.setsRaw = append(q.setsRaw, rawSet{expr: expr, args: args})
	return q
}

// Merge applies a MERGE clause instead of SET.
func (q *UpdateQuery) Merge(data any) *UpdateQuery {
	q.merge = data
	q.useMerge = true
	return q
}

// Content replaces the record content entirely.
func (q *UpdateQuery) Content(content any) *UpdateQuery {
	q.content = content
	q.useContent = true
	return q
}

// Where sets the WHERE condition. Successive calls AND the conditions
// together.
func (q *UpdateQuery) Where(cond Q) *UpdateQuery {
	q.where = And(q.where, cond)
	return q
}

// Return sets the RETURN clause.
func (q *UpdateQuery) Return(clause string) *UpdateQuery {
	q.returnClause = clause
	return q
}

// ReturnNone sets RETURN NONE.
func (q *UpdateQuery) ReturnNone() *UpdateQuery { return q.Return(ReturnNoneClause) }

// ReturnAfter sets RETURN AFTER.
func (q *UpdateQuery) ReturnAfter() *UpdateQuery { return q.Return(ReturnAfterClause) }

// Build returns the SurrealQL string and bound parameters.
func (q *UpdateQuery) Build() (string, map[string]any) {
	c := newBuildContext()

	var b strings.Builder
	b.WriteString("UPDATE ")
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
	case len(q.sets) > 0 || len(q.setsRaw) > 0:
		b.WriteString(" SET ")
		var parts []string
		if len(q.sets) > 0 {
			parts = append(parts, buildSetClause(c, q.sets))
		}
		for _, rs := range q.setsRaw {
			expr := rs.expr
			for _, arg := range rs.args {
				i := strings.Index(expr, "?")
				if i < 0 {
					break
				}
				name := c.param("param", arg)
				expr = expr[:i] + "$" + name + expr[i+1:]
			}
			parts = append(parts, expr)
		}
		b.WriteString(strings.Join(parts, ", "))
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
func (q *UpdateQuery) String() string {
	sql, _ := q.Build()
	return sql
}
