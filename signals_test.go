package surrealengine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hookedDoc struct {
	Name string `json:"name"`

	beforeSaves   int
	afterSaves    int
	beforeDeletes int
	afterDeletes  int
	failBefore    bool
}

func (hookedDoc) TableName() string { return "hooked" }

func (d *hookedDoc) BeforeSave(ctx context.Context) error {
	d.beforeSaves++
	if d.failBefore {
		return errors.New("rejected")
	}
	return nil
}

func (d *hookedDoc) AfterSave(ctx context.Context) error {
	d.afterSaves++
	return nil
}

func (d *hookedDoc) BeforeDelete(ctx context.Context) error {
	d.beforeDeletes++
	return nil
}

func (d *hookedDoc) AfterDelete(ctx context.Context) error {
	d.afterDeletes++
	return nil
}

func TestLifecycleHooks(t *testing.T) {
	ctx := context.Background()
	doc := &hookedDoc{}

	require.NoError(t, runBeforeSave(ctx, doc))
	require.NoError(t, runAfterSave(ctx, doc))
	require.NoError(t, runBeforeDelete(ctx, doc))
	require.NoError(t, runAfterDelete(ctx, doc))

	assert.Equal(t, 1, doc.beforeSaves)
	assert.Equal(t, 1, doc.afterSaves)
	assert.Equal(t, 1, doc.beforeDeletes)
	assert.Equal(t, 1, doc.afterDeletes)

	doc.failBefore = true
	require.Error(t, runBeforeSave(ctx, doc))
}

func TestOnSignal(t *testing.T) {
	ctx := context.Background()

	var seen []Signal
	remove := OnSignal(SignalBeforeSave, func(ctx context.Context, doc any) {
		seen = append(seen, SignalBeforeSave)
	})
	removeAfter := OnSignal(SignalAfterSave, func(ctx context.Context, doc any) {
		seen = append(seen, SignalAfterSave)
	})
	defer removeAfter()

	doc := &hookedDoc{}
	require.NoError(t, runBeforeSave(ctx, doc))
	require.NoError(t, runAfterSave(ctx, doc))
	assert.Equal(t, []Signal{SignalBeforeSave, SignalAfterSave}, seen)

	// Removed receivers no longer fire.
	remove()
	seen = nil
	require.NoError(t, runBeforeSave(ctx, doc))
	assert.Empty(t, seen)
}

func TestOnSignalReceivesDocument(t *testing.T) {
	ctx := context.Background()

	var got any
	remove := OnSignal(SignalBeforeDelete, func(ctx context.Context, doc any) {
		got = doc
	})
	defer remove()

	doc := &hookedDoc{Name: "target"}
	require.NoError(t, runBeforeDelete(ctx, doc))
	require.Same(t, doc, got)
}
