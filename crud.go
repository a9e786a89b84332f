package surrealengine

import (
	"context"
	"fmt"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// Create inserts a document. When the document's id field is set the record
// is created under that ID; otherwise the database assigns one, which is
// written back into the document.
func Create[T Model](ctx context.Context, e *Engine, doc *T) (*T, error) {
	if err := runBeforeSave(ctx, doc); err != nil {
		return nil, err
	}

	var created *T
	var err error
	if rid, ok := RecordIDOf(doc); ok {
		created, err = surrealdb.Create[T](ctx, e.db, *rid, doc)
	} else {
		created, err = surrealdb.Create[T](ctx, e.db, models.Table((*doc).TableName()), doc)
	}
	if err != nil {
		return nil, err
	}

	if rid, ok := RecordIDOf(created); ok {
		if err := SetRecordID(doc, *rid); err != nil {
			return nil, err
		}
	}
	if err := runAfterSave(ctx, doc); err != nil {
		return nil, err
	}
	return created, nil
}

// Save upserts a document: it creates the record when the id field is unset
// and replaces it otherwise.
func Save[T Model](ctx context.Context, e *Engine, doc *T) (*T, error) {
	rid, ok := RecordIDOf(doc)
	if !ok {
		return Create(ctx, e, doc)
	}

	if err := runBeforeSave(ctx, doc); err != nil {
		return nil, err
	}

	saved, err := surrealdb.Upsert[T](ctx, e.db, *rid, doc)
	if err != nil {
		return nil, err
	}

	if err := runAfterSave(ctx, doc); err != nil {
		return nil, err
	}
	return saved, nil
}

// Get fetches a document by ID. The id may be a models.RecordID or a bare
// record identifier within the model's table. Returns ErrNoDocuments when
// the record does not exist.
func Get[T Model](ctx context.Context, e *Engine, id any) (*T, error) {
	rid := recordIDFor[T](id)

	doc, err := surrealdb.Select[T](ctx, e.db, rid)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDocuments, rid.String())
	}
	return doc, nil
}

// Refresh re-reads the document from the database in place.
func Refresh[T Model](ctx context.Context, e *Engine, doc *T) error {
	rid, ok := RecordIDOf(doc)
	if !ok {
		return fmt.Errorf("surrealengine: refresh: %w", ErrNoDocuments)
	}

	fresh, err := Get[T](ctx, e, *rid)
	if err != nil {
		return err
	}
	*doc = *fresh
	return nil
}

// Delete removes a document by its id field.
func Delete[T Model](ctx context.Context, e *Engine, doc *T) error {
	rid, ok := RecordIDOf(doc)
	if !ok {
		return fmt.Errorf("surrealengine: delete: document has no record ID")
	}

	if err := runBeforeDelete(ctx, doc); err != nil {
		return err
	}

	if _, err := surrealdb.Delete[T](ctx, e.db, *rid); err != nil {
		return err
	}

	return runAfterDelete(ctx, doc)
}

func recordIDFor[T Model](id any) models.RecordID {
	switch v := id.(type) {
	case models.RecordID:
		return v
	case *models.RecordID:
		return *v
	default:
		return models.NewRecordID(tableName[T](), id)
	}
}
