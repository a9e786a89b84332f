package surrealengine

import (
	"context"
	"sync"
)

// Lifecycle hooks. A model implements any subset of these; the CRUD helpers
// invoke them on the document pointer, so Before hooks may mutate the
// document (set timestamps, normalize fields) before it is written.
type (
	// BeforeSaveHook runs before Create and Save write the document.
	BeforeSaveHook interface {
		BeforeSave(ctx context.Context) error
	}

	// AfterSaveHook runs after Create and Save, on the stored document.
	AfterSaveHook interface {
		AfterSave(ctx context.Context) error
	}

	// BeforeDeleteHook runs before Delete removes the document.
	BeforeDeleteHook interface {
		BeforeDelete(ctx context.Context) error
	}

	// AfterDeleteHook runs after Delete.
	AfterDeleteHook interface {
		AfterDelete(ctx context.Context) error
	}
)

// Signal identifies a document lifecycle event observable with OnSignal.
type Signal string

// Signals emitted by the CRUD helpers and the engine.
const (
	SignalBeforeSave   Signal = "before_save"
	SignalAfterSave    Signal = "after_save"
	SignalBeforeDelete Signal = "before_delete"
	SignalAfterDelete  Signal = "after_delete"

	// SignalConnect and SignalDisconnect fire with the *Engine as the doc
	// argument when a connection is established or closed.
	SignalConnect    Signal = "connect"
	SignalDisconnect Signal = "disconnect"
)

// Receiver observes a lifecycle signal. The doc argument is the document
// pointer the operation ran on.
type Receiver func(ctx context.Context, doc any)

type signalRegistry struct {
	mu        sync.RWMutex
	nextID    int
	receivers map[Signal]map[int]Receiver
}

var signals = &signalRegistry{receivers: make(map[Signal]map[int]Receiver)}

// OnSignal registers a receiver for a lifecycle signal and returns a
// function that removes it.
func OnSignal(s Signal, r Receiver) (remove func()) {
	signals.mu.Lock()
	defer signals.mu.Unlock()

	if signals.receivers[s] == nil {
		signals.receivers[s] = make(map[int]Receiver)
	}
	id := signals.nextID
	signals.nextID++
	signals.receivers[s][id] = r

	return func() {
		signals.mu.Lock()
		defer signals.mu.Unlock()
		delete(signals.receivers[s], id)
	}
}

func emit(ctx context.Context, s Signal, doc any) {
	signals.mu.RLock()
	receivers := make([]Receiver, 0, len(signals.receivers[s]))
	for _, r := range signals.receivers[s] {
		receivers = append(receivers, r)
	}
	signals.mu.RUnlock()

	for _, r := range receivers {
		r(ctx, doc)
	}
}

func runBeforeSave(ctx context.Context, doc any) error {
	emit(ctx, SignalBeforeSave, doc)
	if h, ok := doc.(BeforeSaveHook); ok {
		return h.BeforeSave(ctx)
	}
	return nil
}

func runAfterSave(ctx context.Context, doc any) error {
	if h, ok := doc.(AfterSaveHook); ok {
		if err := h.AfterSave(ctx); err != nil {
			return err
		}
	}
	emit(ctx, SignalAfterSave, doc)
	return nil
}

func runBeforeDelete(ctx context.Context, doc any) error {
	emit(ctx, SignalBeforeDelete, doc)
	if h, ok := doc.(BeforeDeleteHook); ok {
		return h.BeforeDelete(ctx)
	}
	return nil
}

func runAfterDelete(ctx context.Context, doc any) error {
	if h, ok := doc.(AfterDeleteHook); ok {
		if err := h.AfterDelete(ctx); err != nil {
			return err
		}
	}
	emit(ctx, SignalAfterDelete, doc)
	return nil
}
