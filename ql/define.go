package ql

import (
	"fmt"
	"strings"
	"time"
)

// DefineTableQuery builds a DEFINE TABLE statement.
type DefineTableQuery struct {
	table           string
	schemafull      bool
	schemaless      bool
	overwrite       bool
	ifNotExists     bool
	changefeed      string
	includeOriginal bool
	permissions     []tablePermission
}

type tablePermission struct {
	perm  string
	value string
}

// DefineTable creates a DEFINE TABLE statement.
func DefineTable(table string) *DefineTableQuery {
	return &DefineTableQuery{table: table}
}

// Schemafull sets the table to SCHEMAFULL mode.
func (q *DefineTableQuery) Schemafull() *DefineTableQuery {
	q.schemafull = true
	q.schemaless = false
	return q
}

// Schemaless sets the table to SCHEMALESS mode.
func (q *DefineTableQuery) Schemaless() *DefineTableQuery {
	q.schemaless = true
	q.schemafull = false
	return q
}

// Overwrite adds the OVERWRITE clause so redefinition does not error.
func (q *DefineTableQuery) Overwrite() *DefineTableQuery {
	q.overwrite = true
	return q
}

// IfNotExists adds the IF NOT EXISTS clause.
func (q *DefineTableQuery) IfNotExists() *DefineTableQuery {
	q.ifNotExists = true
	return q
}

// Changefeed enables a changefeed with the given retention duration.
func (q *DefineTableQuery) Changefeed(d time.Duration, includeOriginal bool) *DefineTableQuery {
	q.changefeed = d.String()
	q.includeOriginal = includeOriginal
	return q
}

// Permissions adds a PERMISSIONS clause, e.g. Permissions("select", "FULL").
func (q *DefineTableQuery) Permissions(perm, value string) *DefineTableQuery {
	q.permissions = append(q.permissions, tablePermission{perm: perm, value: value})
	return q
}

// Build returns the SurrealQL string and bound parameters. DEFINE statements
// bind no parameters; the map is returned for Statement interface symmetry.
func (q *DefineTableQuery) Build() (string, map[string]any) {
	var b strings.Builder
	b.WriteString("DEFINE TABLE ")
	if q.overwrite {
		b.WriteString("OVERWRITE ")
	} else if q.ifNotExists {
		b.WriteString("IF NOT EXISTS ")
	}
	b.WriteString(EscapeIdent(q.table))

	if q.schemafull {
		b.WriteString(" SCHEMAFULL")
	} else if q.schemaless {
		b.WriteString(" SCHEMALESS")
	}

	if q.changefeed != "" {
		b.WriteString(" CHANGEFEED " + q.changefeed)
		if q.includeOriginal {
			b.WriteString(" INCLUDE ORIGINAL")
		}
	}

	if len(q.permissions) > 0 {
		b.WriteString(" PERMISSIONS")
		for _, p := range q.permissions {
			fmt.Fprintf(&b, " FOR %s %s", strings.ToUpper(p.perm), p.value)
		}
	}

	return b.String(), map[string]any{}
}

// String returns the SurrealQL string for the statement.
func (q *DefineTableQuery) String() string {
	sql, _ := q.Build()
	return sql
}

// DefineFieldQuery builds a DEFINE FIELD statement.
type DefineFieldQuery struct {
	field       string
	table       string
	overwrite   bool
	fieldType   string
	flexible    bool
	defaultExpr string
	valueExpr   string
	assertExpr  string
	readonly    bool
}

// DefineField creates a DEFINE FIELD statement for field on table.
func DefineField(field, table string) *DefineFieldQuery {
	return &DefineFieldQuery{field: field, table: table}
}

// Overwrite adds the OVERWRITE clause.
func (q *DefineFieldQuery) Overwrite() *DefineFieldQuery {
	q.overwrite = true
	return q
}

// Type sets the field type, e.g. "string" or "option<int>".
func (q *DefineFieldQuery) Type(t string) *DefineFieldQuery {
	q.fieldType = t
	return q
}

// Flexible marks the field type FLEXIBLE, allowing nested schemaless data.
func (q *DefineFieldQuery) Flexible() *DefineFieldQuery {
	q.flexible = true
	return q
}

// Default sets the DEFAULT expression.
func (q *DefineFieldQuery) Default(expr string) *DefineFieldQuery {
	q.defaultExpr = expr
	return q
}

// Value sets the VALUE expression applied on every write.
func (q *DefineFieldQuery) Value(expr string) *DefineFieldQuery {
	q.valueExpr = expr
	return q
}

// Assert sets the ASSERT expression validated on every write.
func (q *DefineFieldQuery) Assert(expr string) *DefineFieldQuery {
	q.assertExpr = expr
	return q
}

// Readonly marks the field READONLY.
func (q *DefineFieldQuery) Readonly() *DefineFieldQuery {
	q.readonly = true
	return q
}

// Build returns the SurrealQL string and bound parameters.
func (q *DefineFieldQuery) Build() (string, map[string]any) {
	var b strings.Builder
	b.WriteString("DEFINE FIELD ")
	if q.overwrite {
		b.WriteString("OVERWRITE ")
	}
	b.WriteString(escapePath(q.field))
	b.WriteString(" ON TABLE ")
	b.WriteString(EscapeIdent(q.table))

	if q.fieldType != "" {
		b.WriteString(" ")
		if q.flexible {
			b.WriteString("FLEXIBLE ")
		}
		b.WriteString("TYPE " + q.fieldType)
	}
	if q.defaultExpr != "" {
		b.WriteString(" DEFAULT " + q.defaultExpr)
	}
	if q.valueExpr != "" {
		b.WriteString(" VALUE " + q.valueExpr)
	}
	if q.assertExpr != "" {
		b.WriteString(" ASSERT " + q.assertExpr)
	}
	if q.readonly {
		b.WriteString(" READONLY")
	}

	return b.String(), map[string]any{}
}

// String returns the SurrealQL string for the statement.
func (q *DefineFieldQuery) String() string {
	sql, _ := q.Build()
	return sql
}

// DefineIndexQuery builds a DEFINE INDEX statement.
type DefineIndexQuery struct {
	name     string
	table    string
	fields   []string
	unique   bool
	analyzer string
}

// DefineIndex creates a DEFINE INDEX statement over the given fields.
func DefineIndex(name, table string, fields ...string) *DefineIndexQuery {
	return &DefineIndexQuery{name: name, table: table, fields: fields}
}

// Unique marks the index UNIQUE.
func (q *DefineIndexQuery) Unique() *DefineIndexQuery {
	q.unique = true
	return q
}

// SearchAnalyzer turns the index into a full-text search index using the
// named analyzer.
func (q *DefineIndexQuery) SearchAnalyzer(analyzer string) *DefineIndexQuery {
	q.analyzer = analyzer
	return q
}

// Build returns the SurrealQL string and bound parameters.
func (q *DefineIndexQuery) Build() (string, map[string]any) {
	var b strings.Builder
	b.WriteString("DEFINE INDEX ")
	b.WriteString(EscapeIdent(q.name))
	b.WriteString(" ON TABLE ")
	b.WriteString(EscapeIdent(q.table))
	b.WriteString(" FIELDS ")
	b.WriteString(joinEscaped(q.fields))

	if q.analyzer != "" {
		b.WriteString(" SEARCH ANALYZER " + EscapeIdent(q.analyzer))
	} else if q.unique {
		b.WriteString(" UNIQUE")
	}

	return b.String(), map[string]any{}
}

// String returns the SurrealQL string for the statement.
func (q *DefineIndexQuery) String() string {
	sql, _ := q.Build()
	return sql
}
