package ql

import (
	"fmt"
	"strings"
)

// Q is a condition tree for WHERE clauses. A Q is either a leaf comparing a
// field path to a value, or a group combining child conditions with AND/OR,
// optionally negated. The zero Q is empty and emits no condition.
//
// Leaves are created with the comparison constructors (Eq, Gt, In, ...) or
// with Cond, which parses Django-style "field__op" keys. Groups are created
// with And, Or and Not, or with the corresponding methods.
type Q struct {
	field string
	op    string
	value any

	raw     string
	rawArgs []any

	conn     string // "AND" or "OR" for groups
	children []Q
	negated  bool
}

// Comparison operators keyed by the suffix accepted by Cond. An empty
// suffix means equality.
var condOperators = map[string]string{
	"":            "=",
	"eq":          "=",
	"ne":          "!=",
	"gt":          ">",
	"gte":         ">=",
	"lt":          "<",
	"lte":         "<=",
	"in":          "IN",
	"nin":         "NOT IN",
	"contains":    "CONTAINS",
	"containsany": "CONTAINSANY",
	"containsall": "CONTAINSALL",
	"inside":      "INSIDE",
	"outside":     "OUTSIDE",
	"intersects":  "INTERSECTS",
	"matches":     "@@",
}

// Function-style operators, rendered as string:: function calls.
const (
	opStartsWith = "string::starts_with"
	opEndsWith   = "string::ends_with"
)

// Null-test operators, rendered without a bound value.
const (
	opIsNull    = "IS NULL"
	opIsNotNull = "IS NOT NULL"
)

func leaf(field, op string, value any) Q {
	return Q{field: field, op: op, value: value}
}

// Eq matches records where field equals value.
func Eq(field string, value any) Q { return leaf(field, "=", value) }

// Ne matches records where field does not equal value.
func Ne(field string, value any) Q { return leaf(field, "!=", value) }

// Gt matches records where field is greater than value.
func Gt(field string, value any) Q { return leaf(field, ">", value) }

// Gte matches records where field is greater than or equal to value.
func Gte(field string, value any) Q { return leaf(field, ">=", value) }

// Lt matches records where field is less than value.
func Lt(field string, value any) Q { return leaf(field, "<", value) }

// Lte matches records where field is less than or equal to value.
func Lte(field string, value any) Q { return leaf(field, "<=", value) }

// In matches records where field is one of values.
func In(field string, values ...any) Q { return leaf(field, "IN", values) }

// NotIn matches records where field is none of values.
func NotIn(field string, values ...any) Q { return leaf(field, "NOT IN", values) }

// Contains matches records where the field array contains value.
func Contains(field string, value any) Q { return leaf(field, "CONTAINS", value) }

// ContainsAny matches records where the field array contains any of values.
func ContainsAny(field string, values ...any) Q { return leaf(field, "CONTAINSANY", values) }

// ContainsAll matches records where the field array contains all of values.
func ContainsAll(field string, values ...any) Q { return leaf(field, "CONTAINSALL", values) }

// Inside matches records where field is inside the given geometry or range.
func Inside(field string, value any) Q { return leaf(field, "INSIDE", value) }

// Outside matches records where field is outside the given geometry.
func Outside(field string, value any) Q { return leaf(field, "OUTSIDE", value) }

// Intersects matches records where the field geometry intersects value.
func Intersects(field string, value any) Q { return leaf(field, "INTERSECTS", value) }

// Matches performs a full-text search match (the @@ operator) on field.
func Matches(field string, value any) Q { return leaf(field, "@@", value) }

// StartsWith matches records where the string field starts with prefix.
func StartsWith(field, prefix string) Q { return leaf(field, opStartsWith, prefix) }

// EndsWith matches records where the string field ends with suffix.
func EndsWith(field, suffix string) Q { return leaf(field, opEndsWith, suffix) }

// IsNull matches records where field is null.
func IsNull(field string) Q { return leaf(field, opIsNull, nil) }

// IsNotNull matches records where field is not null.
func IsNotNull(field string) Q { return leaf(field, opIsNotNull, nil) }

// Raw embeds a raw condition with ? placeholders bound to args:
//
//	ql.Raw("age > ? AND status = ?", 18, "active")
//
// Placeholders are replaced with generated parameters, so args never appear
// in the statement text.
func Raw(condition string, args ...any) Q {
	return Q{raw: condition, rawArgs: args}
}

// Cond parses a Django-style "field__op" key into a condition:
//
//	ql.Cond("age__gte", 18)         // age >= $age_1
//	ql.Cond("address__city", "NYC") // address.city = $address_city_1
//
// The trailing "__op" segment is treated as an operator only when it names a
// known operator; any remaining "__" separators denote nested field paths.
func Cond(key string, value any) Q {
	field, op := parseCondKey(key)
	switch op {
	case "startswith":
		return leaf(field, opStartsWith, value)
	case "endswith":
		return leaf(field, opEndsWith, value)
	case "isnull":
		if b, ok := value.(bool); ok && !b {
			return leaf(field, opIsNotNull, nil)
		}
		return leaf(field, opIsNull, nil)
	}
	return leaf(field, condOperators[op], value)
}

func parseCondKey(key string) (field, op string) {
	if i := strings.LastIndex(key, "__"); i >= 0 {
		suffix := key[i+2:]
		if _, known := condOperators[suffix]; known || suffix == "startswith" || suffix == "endswith" || suffix == "isnull" {
			return strings.ReplaceAll(key[:i], "__", "."), suffix
		}
	}
	return strings.ReplaceAll(key, "__", "."), ""
}

// And combines conditions so that all must hold. Empty conditions are
// dropped; a single remaining condition is returned as-is.
func And(qs ...Q) Q { return group("AND", qs) }

// Or combines conditions so that at least one must hold.
func Or(qs ...Q) Q { return group("OR", qs) }

// Not negates a condition.
func Not(q Q) Q {
	if q.IsZero() {
		return Q{}
	}
	if q.isGroup() && q.negated && q.conn == "" {
		// Not(Not(x)) collapses back to x.
		return q.children[0]
	}
	return Q{children: []Q{q}, negated: true}
}

// And returns a condition requiring both q and other.
func (q Q) And(other Q) Q { return And(q, other) }

// Or returns a condition requiring q or other.
func (q Q) Or(other Q) Q { return Or(q, other) }

// Not returns the negation of q.
func (q Q) Not() Q { return Not(q) }

func group(conn string, qs []Q) Q {
	nonEmpty := make([]Q, 0, len(qs))
	for _, q := range qs {
		if !q.IsZero() {
			nonEmpty = append(nonEmpty, q)
		}
	}
	switch len(nonEmpty) {
	case 0:
		return Q{}
	case 1:
		return nonEmpty[0]
	}
	return Q{conn: conn, children: nonEmpty}
}

// IsZero reports whether q carries no condition at all.
func (q Q) IsZero() bool {
	return q.field == "" && q.raw == "" && len(q.children) == 0
}

func (q Q) isGroup() bool { return len(q.children) > 0 }

// Build renders the condition standalone, returning the SurrealQL text and
// bound parameters. Statements embed conditions through their own contexts.
func (q Q) Build() (string, map[string]any) {
	c := newBuildContext()
	var b strings.Builder
	q.build(c, &b)
	return b.String(), c.vars
}

func (q Q) build(c *buildContext, b *strings.Builder) {
	switch {
	case q.IsZero():
	case q.raw != "":
		q.buildRaw(c, b)
	case q.isGroup():
		q.buildGroup(c, b)
	default:
		q.buildLeaf(c, b)
	}
}

func (q Q) buildLeaf(c *buildContext, b *strings.Builder) {
	field := escapePath(q.field)

	switch q.op {
	case opIsNull, opIsNotNull:
		b.WriteString(field)
		b.WriteString(" ")
		b.WriteString(q.op)
	case opStartsWith, opEndsWith:
		name := c.param(q.field, q.value)
		fmt.Fprintf(b, "%s(%s, $%s)", q.op, field, name)
	default:
		name := c.param(q.field, q.value)
		fmt.Fprintf(b, "%s %s $%s", field, q.op, name)
	}
}

func (q Q) buildRaw(c *buildContext, b *strings.Builder) {
	cond := q.raw
	for _, arg := range q.rawArgs {
		i := strings.Index(cond, "?")
		if i < 0 {
			break
		}
		name := c.param("param", arg)
		cond = cond[:i] + "$" + name + cond[i+1:]
	}
	b.WriteString(cond)
}

func (q Q) buildGroup(c *buildContext, b *strings.Builder) {
	if q.negated {
		b.WriteString("!(")
		q.children[0].build(c, b)
		b.WriteString(")")
		return
	}

	for i, child := range q.children {
		if i > 0 {
			b.WriteString(" ")
			b.WriteString(q.conn)
			b.WriteString(" ")
		}
		// Parenthesize nested groups with a different connective so that
		// AND/OR precedence is explicit.
		if child.isGroup() && !child.negated && child.conn != q.conn {
			b.WriteString("(")
			child.build(c, b)
			b.WriteString(")")
		} else {
			child.build(c, b)
		}
	}
}
