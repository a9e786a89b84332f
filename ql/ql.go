// Package ql builds SurrealQL statements programmatically.
//
// Statements are assembled from chainable builders and condition trees (Q).
// Every user-supplied value is bound to a generated query parameter, so no
// value ever appears in the statement text itself.
package ql

import (
	"fmt"
	"strings"
)

// Constants for common RETURN clauses.
const (
	ReturnNoneClause   = "NONE"
	ReturnDiffClause   = "DIFF"
	ReturnBeforeClause = "BEFORE"
	ReturnAfterClause  = "AFTER"
)

// Statement is a SurrealQL statement that can be built and executed.
type Statement interface {
	// Build returns the SurrealQL string and the parameters bound to it.
	Build() (string, map[string]any)

	// String returns the SurrealQL string for the statement.
	String() string
}

// buildContext accumulates the parameters bound while building a statement.
// It generates unique parameter names so that vars from subexpressions
// never collide.
type buildContext struct {
	vars map[string]any
}

func newBuildContext() *buildContext {
	return &buildContext{vars: make(map[string]any)}
}

// param binds value under a unique name derived from prefix and returns
// the generated name (without the $ sigil).
func (c *buildContext) param(prefix string, value any) string {
	prefix = paramPrefix(prefix)

	for i := 1; ; i++ {
		name := fmt.Sprintf("%s_%d", prefix, i)
		if _, exists := c.vars[name]; !exists {
			c.vars[name] = value
			return name
		}
	}
}

// paramPrefix sanitizes a field path into a valid parameter name prefix.
func paramPrefix(s string) string {
	if s == "" {
		return "p"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// EscapeIdent escapes an identifier for use in SurrealQL. Identifiers
// containing special characters or matching a reserved word are wrapped
// in backticks.
func EscapeIdent(ident string) string {
	if strings.ContainsAny(ident, " -:`") || isReservedWord(ident) {
		return "`" + strings.ReplaceAll(ident, "`", "\\`") + "`"
	}
	return ident
}

// escapeTarget escapes a statement target. A bare table name is escaped
// like any identifier; record ID strings ("users:tobie") pass through
// unchanged so the ID part keeps its meaning.
func escapeTarget(target string) string {
	if strings.Contains(target, ":") {
		return target
	}
	return EscapeIdent(target)
}

// escapePath escapes each segment of a dot-separated field path.
func escapePath(path string) string {
	if !strings.Contains(path, ".") {
		return EscapeIdent(path)
	}
	segments := strings.Split(path, ".")
	for i, seg := range segments {
		segments[i] = EscapeIdent(seg)
	}
	return strings.Join(segments, ".")
}

func isReservedWord(word string) bool {
	upper := strings.ToUpper(word)
	for _, r := range reservedWords {
		if upper == r {
			return true
		}
	}
	return false
}

var reservedWords = []string{
	"SELECT", "FROM", "WHERE", "ORDER", "BY", "LIMIT", "START",
	"FETCH", "GROUP", "SPLIT", "RETURN", "PARALLEL", "EXPLAIN",
	"CREATE", "UPDATE", "DELETE", "RELATE", "INSERT", "DEFINE",
	"REMOVE", "INFO", "USE", "BEGIN", "CANCEL", "COMMIT", "LIVE",
	"IF", "ELSE", "THEN", "END", "BREAK", "CONTINUE", "KILL",
	"FUNCTION", "PARAM", "FIELD", "TYPE", "DEFAULT", "VALUE",
	"ASSERT", "PERMISSIONS", "DURATION", "FLEXIBLE", "INDEX",
}
