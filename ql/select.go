package ql

import (
	"fmt"
	"strings"
)

// SelectQuery builds a SELECT statement.
type SelectQuery struct {
	fields      []string
	omits       []string
	from        string
	only        bool
	value       bool
	where       Q
	groupBy     []string
	groupAll    bool
	splitFields []string
	orderBy     []orderByClause
	limitVal    *int
	startVal    *int
	fetchFields []string
	parallel    bool
}

type orderByClause struct {
	field   string
	desc    bool
	collate bool
	numeric bool
}

// Select creates a SELECT query over the given target, which is either a
// table name ("users") or a record ID string ("users:tobie"). All fields are
// selected until Fields or Value narrows the projection.
func Select(from string) *SelectQuery {
	return &SelectQuery{from: from}
}

// Fields sets the projected fields, replacing the default "*".
func (q *SelectQuery) Fields(fields ...string) *SelectQuery {
	for _, f := range fields {
		q.fields = append(q.fields, escapeField(f))
	}
	return q
}

// FieldRaw adds a projection without escaping, for function calls and
// aliased expressions such as "count() AS total".
func (q *SelectQuery) FieldRaw(field string) *SelectQuery {
	q.fields = append(q.fields, field)
	return q
}

// Value turns the query into SELECT VALUE over a single field.
func (q *SelectQuery) Value(field string) *SelectQuery {
	q.value = true
	q.fields = []string{escapeField(field)}
	return q
}

// Only prefixes the target with ONLY, returning a single record instead of
// an array.
func (q *SelectQuery) Only() *SelectQuery {
	q.only = true
	return q
}

// Omit excludes fields from a SELECT * projection.
func (q *SelectQuery) Omit(fields ...string) *SelectQuery {
	for _, f := range fields {
		q.omits = append(q.omits, escapeField(f))
	}
	return q
}

// Where sets the WHERE condition. Successive calls AND the conditions
// together.
func (q *SelectQuery) Where(cond Q) *SelectQuery {
	q.where = And(q.where, cond)
	return q
}

// GroupBy adds GROUP BY fields.
func (q *SelectQuery) GroupBy(fields ...string) *SelectQuery {
	q.groupBy = append(q.groupBy, fields...)
	return q
}

// GroupAll sets GROUP ALL for table-wide aggregation.
func (q *SelectQuery) GroupAll() *SelectQuery {
	q.groupAll = true
	return q
}

// Split adds SPLIT AT fields.
func (q *SelectQuery) Split(fields ...string) *SelectQuery {
	q.splitFields = append(q.splitFields, fields...)
	return q
}

// OrderBy adds an ascending ORDER BY clause.
func (q *SelectQuery) OrderBy(field string) *SelectQuery {
	q.orderBy = append(q.orderBy, orderByClause{field: field})
	return q
}

// OrderByDesc adds a descending ORDER BY clause.
func (q *SelectQuery) OrderByDesc(field string) *SelectQuery {
	q.orderBy = append(q.orderBy, orderByClause{field: field, desc: true})
	return q
}

// OrderByCollate adds an ORDER BY COLLATE clause for unicode-aware ordering.
func (q *SelectQuery) OrderByCollate(field string, desc bool) *SelectQuery {
	q.orderBy = append(q.orderBy, orderByClause{field: field, desc: desc, collate: true})
	return q
}

// OrderByNumeric adds an ORDER BY NUMERIC clause for numeric string ordering.
func (q *SelectQuery) OrderByNumeric(field string, desc bool) *SelectQuery {
	q.orderBy = append(q.orderBy, orderByClause{field: field, desc: desc, numeric: true})
	return q
}

// Limit sets the LIMIT clause.
func (q *SelectQuery) Limit(limit int) *SelectQuery {
	q.limitVal = &limit
	return q
}

// Start sets the START clause.
func (q *SelectQuery) Start(start int) *SelectQuery {
	q.startVal = &start
	return q
}

// Fetch adds FETCH fields to resolve record links in the result.
func (q *SelectQuery) Fetch(fields ...string) *SelectQuery {
	q.fetchFields = append(q.fetchFields, fields...)
	return q
}

// Parallel enables PARALLEL execution.
func (q *SelectQuery) Parallel() *SelectQuery {
	q.parallel = true
	return q
}

// Build returns the SurrealQL string and bound parameters.
func (q *SelectQuery) Build() (string, map[string]any) {
	c := newBuildContext()
	return q.build(c), c.vars
}

// String returns the SurrealQL string for the query.
func (q *SelectQuery) String() string {
	sql, _ := q.Build()
	return sql
}

func (q *SelectQuery) build(c *buildContext) string {
	var parts []string

	parts = append(parts, q.buildSelectClause())

	from := "FROM "
	if q.only {
		from += "ONLY "
	}
	parts = append(parts, from+escapeTarget(q.from))

	if !q.where.IsZero() {
		var b strings.Builder
		q.where.build(c, &b)
		parts = append(parts, "WHERE "+b.String())
	}

	if len(q.splitFields) > 0 {
		parts = append(parts, "SPLIT AT "+joinEscaped(q.splitFields))
	}

	if q.groupAll {
		parts = append(parts, "GROUP ALL")
	} else if len(q.groupBy) > 0 {
		parts = append(parts, "GROUP BY "+joinEscaped(q.groupBy))
	}

	if len(q.orderBy) > 0 {
		parts = append(parts, q.buildOrderClause())
	}

	if q.limitVal != nil {
		parts = append(parts, fmt.Sprintf("LIMIT %d", *q.limitVal))
	}
	if q.startVal != nil {
		parts = append(parts, fmt.Sprintf("START %d", *q.startVal))
	}

	if len(q.fetchFields) > 0 {
		parts = append(parts, "FETCH "+joinEscaped(q.fetchFields))
	}

	if q.parallel {
		parts = append(parts, "PARALLEL")
	}

	return strings.Join(parts, " ")
}

func (q *SelectQuery) buildSelectClause() string {
	base := "SELECT "
	if q.value {
		base += "VALUE "
	}

	if len(q.fields) == 0 {
		base += "*"
	} else {
		base += strings.Join(q.fields, ", ")
	}

	if len(q.omits) > 0 {
		base += " OMIT " + strings.Join(q.omits, ", ")
	}
	return base
}

func (q *SelectQuery) buildOrderClause() string {
	clauses := make([]string, len(q.orderBy))
	for i, o := range q.orderBy {
		clause := escapePath(o.field)
		if o.collate {
			clause += " COLLATE"
		}
		if o.numeric {
			clause += " NUMERIC"
		}
		if o.desc {
			clause += " DESC"
		}
		clauses[i] = clause
	}
	return "ORDER BY " + strings.Join(clauses, ", ")
}

// escapeField escapes a field path unless it looks like a function call or
// an aliased expression which must pass through untouched.
func escapeField(field string) string {
	if field == "*" || strings.Contains(field, "(") || strings.Contains(field, " AS ") {
		return field
	}
	return escapePath(field)
}

func joinEscaped(fields []string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = escapePath(f)
	}
	return strings.Join(escaped, ", ")
}
