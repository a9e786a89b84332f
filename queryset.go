package surrealengine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iristech-systems/surrealengine/ql"
)

// QuerySet is a chainable query builder bound to an Engine and a model
// type. Chainers return a derived copy, so a QuerySet can be held and
// branched without the branches affecting each other. Translation to
// SurrealQL happens only when an execution method runs.
type QuerySet[T Model] struct {
	engine   *Engine
	table    string
	where    ql.Q
	fields   []string
	omits    []string
	orders   []orderSpec
	group    []string
	groupAll bool
	split    []string
	fetch    []string
	limit    *int
	start    *int
	parallel bool
	allRows  bool
}

type orderSpec struct {
	field   string
	desc    bool
	collate bool
	numeric bool
}

// Objects starts a query over the model's table.
func Objects[T Model](e *Engine) *QuerySet[T] {
	return &QuerySet[T]{engine: e, table: tableName[T]()}
}

func (qs *QuerySet[T]) clone() *QuerySet[T] {
	dup := *qs
	dup.fields = append([]string(nil), qs.fields...)
	dup.omits = append([]string(nil), qs.omits...)
	dup.orders = append([]orderSpec(nil), qs.orders...)
	dup.group = append([]string(nil), qs.group...)
	dup.split = append([]string(nil), qs.split...)
	dup.fetch = append([]string(nil), qs.fetch...)
	return &dup
}

// Filter narrows the query with conditions, ANDed together.
func (qs *QuerySet[T]) Filter(conds ...ql.Q) *QuerySet[T] {
	dup := qs.clone()
	dup.where = ql.And(append([]ql.Q{dup.where}, conds...)...)
	return dup
}

// FilterKw narrows the query with Django-style "field__op" keys:
//
//	qs.FilterKw(map[string]any{"age__gte": 18, "active": true})
//
// Keys are applied in sorted order so identical maps translate to identical
// statements.
func (qs *QuerySet[T]) FilterKw(kw map[string]any) *QuerySet[T] {
	keys := make([]string, 0, len(kw))
	for k := range kw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conds := make([]ql.Q, 0, len(keys))
	for _, k := range keys {
		conds = append(conds, ql.Cond(k, kw[k]))
	}
	return qs.Filter(conds...)
}

// Exclude removes records matching the conditions.
func (qs *QuerySet[T]) Exclude(conds ...ql.Q) *QuerySet[T] {
	return qs.Filter(ql.Not(ql.And(conds...)))
}

// OrderBy adds ordering. A "-" prefix means descending:
//
//	qs.OrderBy("-created_at", "name")
func (qs *QuerySet[T]) OrderBy(fields ...string) *QuerySet[T] {
	dup := qs.clone()
	for _, f := range fields {
		spec := orderSpec{field: f}
		if strings.HasPrefix(f, "-") {
			spec.field = f[1:]
			spec.desc = true
		}
		dup.orders = append(dup.orders, spec)
	}
	return dup
}

// OrderByCollate adds unicode-aware ordering on a field.
func (qs *QuerySet[T]) OrderByCollate(field string, desc bool) *QuerySet[T] {
	dup := qs.clone()
	dup.orders = append(dup.orders, orderSpec{field: field, desc: desc, collate: true})
	return dup
}

// OrderByNumeric adds numeric-string ordering on a field.
func (qs *QuerySet[T]) OrderByNumeric(field string, desc bool) *QuerySet[T] {
	dup := qs.clone()
	dup.orders = append(dup.orders, orderSpec{field: field, desc: desc, numeric: true})
	return dup
}

// Only narrows the projection to the given fields.
func (qs *QuerySet[T]) Only(fields ...string) *QuerySet[T] {
	dup := qs.clone()
	dup.fields = append(dup.fields, fields...)
	return dup
}

// Omit excludes fields from the projection.
func (qs *QuerySet[T]) Omit(fields ...string) *QuerySet[T] {
	dup := qs.clone()
	dup.omits = append(dup.omits, fields...)
	return dup
}

// GroupBy groups results by fields, for use with aggregate projections
// added through Only.
func (qs *QuerySet[T]) GroupBy(fields ...string) *QuerySet[T] {
	dup := qs.clone()
	dup.group = append(dup.group, fields...)
	return dup
}

// GroupAll aggregates over the whole table, for use with aggregate
// projections added through Only.
func (qs *QuerySet[T]) GroupAll() *QuerySet[T] {
	dup := qs.clone()
	dup.groupAll = true
	return dup
}

// Split splits results at an array field.
func (qs *QuerySet[T]) Split(fields ...string) *QuerySet[T] {
	dup := qs.clone()
	dup.split = append(dup.split, fields...)
	return dup
}

// Fetch resolves record links in the results.
func (qs *QuerySet[T]) Fetch(fields ...string) *QuerySet[T] {
	dup := qs.clone()
	dup.fetch = append(dup.fetch, fields...)
	return dup
}

// Limit caps the number of results.
func (qs *QuerySet[T]) Limit(n int) *QuerySet[T] {
	dup := qs.clone()
	dup.limit = &n
	return dup
}

// Start skips the first n results.
func (qs *QuerySet[T]) Start(n int) *QuerySet[T] {
	dup := qs.clone()
	dup.start = &n
	return dup
}

// Parallel enables PARALLEL execution.
func (qs *QuerySet[T]) Parallel() *QuerySet[T] {
	dup := qs.clone()
	dup.parallel = true
	return dup
}

// AllRows acknowledges that a following Update or Delete may touch every
// row in the table.
func (qs *QuerySet[T]) AllRows() *QuerySet[T] {
	dup := qs.clone()
	dup.allRows = true
	return dup
}

// buildSelect translates the accumulated state into a SELECT statement.
func (qs *QuerySet[T]) buildSelect() *ql.SelectQuery {
	stmt := ql.Select(qs.table)
	if len(qs.fields) > 0 {
		stmt.Fields(qs.fields...)
	}
	if len(qs.omits) > 0 {
		stmt.Omit(qs.omits...)
	}
	if !qs.where.IsZero() {
		stmt.Where(qs.where)
	}
	if len(qs.split) > 0 {
		stmt.Split(qs.split...)
	}
	if qs.groupAll {
		stmt.GroupAll()
	} else if len(qs.group) > 0 {
		stmt.GroupBy(qs.group...)
	}
	for _, o := range qs.orders {
		switch {
		case o.collate:
			stmt.OrderByCollate(o.field, o.desc)
		case o.numeric:
			stmt.OrderByNumeric(o.field, o.desc)
		case o.desc:
			stmt.OrderByDesc(o.field)
		default:
			stmt.OrderBy(o.field)
		}
	}
	if qs.limit != nil {
		stmt.Limit(*qs.limit)
	}
	if qs.start != nil {
		stmt.Start(*qs.start)
	}
	if len(qs.fetch) > 0 {
		stmt.Fetch(qs.fetch...)
	}
	if qs.parallel {
		stmt.Parallel()
	}
	return stmt
}

// All executes the query and returns every matching document.
func (qs *QuerySet[T]) All(ctx context.Context) ([]T, error) {
	return Query[T](ctx, qs.engine, qs.buildSelect())
}

// First returns the first matching document, or ErrNoDocuments.
func (qs *QuerySet[T]) First(ctx context.Context) (*T, error) {
	docs, err := qs.Limit(1).All(ctx)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	return &docs[0], nil
}

// One returns the single matching document. It returns ErrNoDocuments when
// nothing matched and ErrMultipleDocuments when more than one did.
func (qs *QuerySet[T]) One(ctx context.Context) (*T, error) {
	docs, err := qs.Limit(2).All(ctx)
	if err != nil {
		return nil, err
	}
	switch len(docs) {
	case 0:
		return nil, ErrNoDocuments
	case 1:
		return &docs[0], nil
	default:
		return nil, ErrMultipleDocuments
	}
}

// Count returns the number of matching documents.
func (qs *QuerySet[T]) Count(ctx context.Context) (int, error) {
	stmt := ql.Select(qs.table).FieldRaw("count() AS count").GroupAll()
	if !qs.where.IsZero() {
		stmt.Where(qs.where)
	}

	type countRow struct {
		Count int `json:"count"`
	}
	rows, err := Query[countRow](ctx, qs.engine, stmt)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Count, nil
}

// Exists reports whether any document matches.
func (qs *QuerySet[T]) Exists(ctx context.Context) (bool, error) {
	n, err := qs.Count(ctx)
	return n > 0, err
}

// Update applies field assignments to every matching document and returns
// how many were updated. It refuses to run without a filter unless AllRows
// was chained.
func (qs *QuerySet[T]) Update(ctx context.Context, sets map[string]any) (int, error) {
	if qs.where.IsZero() && !qs.allRows {
		return 0, ErrNoWhereClause
	}

	stmt := ql.Update(qs.table).SetMap(sets).ReturnAfter()
	if !qs.where.IsZero() {
		stmt.Where(qs.where)
	}

	updated, err := Query[T](ctx, qs.engine, stmt)
	if err != nil {
		return 0, err
	}
	return len(updated), nil
}

// Delete removes every matching document and returns how many were
// deleted. It refuses to run without a filter unless AllRows was chained.
func (qs *QuerySet[T]) Delete(ctx context.Context) (int, error) {
	if qs.where.IsZero() && !qs.allRows {
		return 0, ErrNoWhereClause
	}

	stmt := ql.Delete(qs.table).ReturnBefore()
	if !qs.where.IsZero() {
		stmt.Where(qs.where)
	}

	deleted, err := Query[T](ctx, qs.engine, stmt)
	if err != nil {
		return 0, err
	}
	return len(deleted), nil
}

// Page is one page of results from Paginate.
type Page[T Model] struct {
	Items      []T
	Number     int
	PerPage    int
	Total      int
	TotalPages int
}

// HasNext reports whether a page follows this one.
func (p *Page[T]) HasNext() bool { return p.Number < p.TotalPages }

// HasPrev reports whether a page precedes this one.
func (p *Page[T]) HasPrev() bool { return p.Number > 1 }

// Paginate returns the given 1-based page of results along with totals.
// Page numbers below 1 are treated as 1.
func (qs *QuerySet[T]) Paginate(ctx context.Context, page, perPage int) (*Page[T], error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		return nil, fmt.Errorf("surrealengine: perPage must be positive, got %d", perPage)
	}

	total, err := qs.Count(ctx)
	if err != nil {
		return nil, err
	}

	items, err := qs.Limit(perPage).Start((page - 1) * perPage).All(ctx)
	if err != nil {
		return nil, err
	}

	return &Page[T]{
		Items:      items,
		Number:     page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}, nil
}

// Iterator pages through a query's results batch by batch.
type Iterator[T Model] struct {
	qs        *QuerySet[T]
	batchSize int
	offset    int
	done      bool
}

// Iter returns a batch iterator over the matching documents.
func (qs *QuerySet[T]) Iter(batchSize int) *Iterator[T] {
	if batchSize < 1 {
		batchSize = 100
	}
	return &Iterator[T]{qs: qs, batchSize: batchSize}
}

// Next fetches the next batch. It returns an empty slice once every
// document has been seen.
func (it *Iterator[T]) Next(ctx context.Context) ([]T, error) {
	if it.done {
		return nil, nil
	}

	batch, err := it.qs.Limit(it.batchSize).Start(it.offset).All(ctx)
	if err != nil {
		return nil, err
	}
	it.offset += it.batchSize
	if len(batch) < it.batchSize {
		it.done = true
	}
	return batch, nil
}

// Each streams matching documents in batches of batchSize, invoking fn for
// every document. Iteration stops at the first error.
func (qs *QuerySet[T]) Each(ctx context.Context, batchSize int, fn func(T) error) error {
	it := qs.Iter(batchSize)
	for {
		batch, err := it.Next(ctx)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		for _, doc := range batch {
			if err := fn(doc); err != nil {
				return err
			}
		}
	}
}

// Values executes the query as SELECT VALUE, returning one field from every
// matching document decoded into F.
func Values[F any, T Model](ctx context.Context, qs *QuerySet[T], field string) ([]F, error) {
	stmt := qs.buildSelect().Value(field)
	return Query[F](ctx, qs.engine, stmt)
}
