package surrealengine

import (
	"sort"

	"github.com/iristech-systems/surrealengine/ql"
)

// Statements renders the DEFINE statements for a model's table, fields and
// indexes. Table and field definitions use OVERWRITE so re-running them is
// safe.
func (m *Meta) Statements() []ql.Statement {
	table := ql.DefineTable(m.Table).Overwrite()
	if m.Schemafull {
		table.Schemafull()
	} else {
		table.Schemaless()
	}
	if m.Changefeed > 0 {
		table.Changefeed(m.Changefeed, false)
	}
	for _, perm := range sortedKeys(m.Permissions) {
		table.Permissions(perm, m.Permissions[perm])
	}

	stmts := []ql.Statement{table}

	for _, f := range m.Fields {
		field := ql.DefineField(f.Name, m.Table).Overwrite()
		if f.Flexible {
			field.Flexible()
		}
		if f.Type != "" {
			field.Type(f.Type)
		}
		if f.Default != "" {
			field.Default(f.Default)
		}
		if f.Value != "" {
			field.Value(f.Value)
		}
		if f.Assert != "" {
			field.Assert(f.Assert)
		}
		if f.Readonly {
			field.Readonly()
		}
		stmts = append(stmts, field)
	}

	for _, idx := range m.Indexes {
		index := ql.DefineIndex(idx.Name, m.Table, idx.Fields...)
		if idx.Analyzer != "" {
			index.SearchAnalyzer(idx.Analyzer)
		} else if idx.Unique {
			index.Unique()
		}
		stmts = append(stmts, index)
	}

	return stmts
}

func sortedKeys(m map[string]string) []string {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
