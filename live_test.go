package surrealengine

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

func discardLogger() logger.Logger {
	return logger.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSubscription(retryer Retryer) (*Subscription, chan connection.Notification) {
	m := newLiveManager(nil, discardLogger())
	sub := &Subscription{
		id:      "test-sub",
		manager: m,
		sql:     "LIVE SELECT * FROM user",
		vars:    map[string]any{},
		retryer: retryer,
		events:  make(chan Event, 100),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	external := make(chan connection.Notification, 1)
	go sub.run(external)
	return sub, external
}

func waitEvent(t *testing.T, sub *Subscription) (Event, bool) {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		return ev, ok
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}, false
	}
}

func TestSubscriptionRoutesNotifications(t *testing.T) {
	sub, external := newTestSubscription(NewExponentialBackoff())

	external <- connection.Notification{
		Action: connection.CreateAction,
		Result: map[string]any{"name": "alice"},
	}

	ev, ok := waitEvent(t, sub)
	require.True(t, ok)
	assert.Equal(t, ActionCreate, ev.Action)
	assert.Equal(t, map[string]any{"name": "alice"}, ev.Data)

	external <- connection.Notification{Action: connection.DeleteAction}
	ev, ok = waitEvent(t, sub)
	require.True(t, ok)
	assert.Equal(t, ActionDelete, ev.Action)

	close(sub.stop)
	<-sub.stopped
	_, ok = waitEvent(t, sub)
	assert.False(t, ok, "events channel should be closed after stop")
}

func TestSubscriptionStopClosesEvents(t *testing.T) {
	sub, _ := newTestSubscription(NewExponentialBackoff())

	close(sub.stop)

	select {
	case <-sub.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("router did not stop")
	}

	_, ok := <-sub.Events()
	assert.False(t, ok)
}

func TestSubscriptionGivesUpWhenRetriesExhausted(t *testing.T) {
	// With no connection behind the manager, every resubscribe attempt
	// fails; the retryer bounds how long the router keeps trying.
	sub, external := newTestSubscription(&FixedDelay{Delay: time.Millisecond, MaxRetries: 2})

	close(external)

	select {
	case <-sub.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("router did not give up")
	}

	_, ok := <-sub.Events()
	assert.False(t, ok)
}

func TestLiveManagerKillWithoutConnection(t *testing.T) {
	m := newLiveManager(nil, discardLogger())
	assert.ErrorIs(t, m.kill(context.Background(), models.UUID{}), ErrNoConnection)
}

func TestSubscriptionKillIsTerminal(t *testing.T) {
	sub, _ := newTestSubscription(NewExponentialBackoff())

	// No connection behind the manager, so the server-side KILL cannot be
	// issued; the router is torn down regardless.
	err := sub.Kill(context.Background())
	require.ErrorIs(t, err, ErrNoConnection)

	select {
	case <-sub.stopped:
	default:
		t.Fatal("router still running after Kill returned")
	}

	_, ok := <-sub.Events()
	assert.False(t, ok, "events channel should be closed after Kill")

	err = sub.Kill(context.Background())
	assert.ErrorIs(t, err, ErrSubscriptionClosed)
}

func TestSubscriptionDeliversNothingAfterKill(t *testing.T) {
	sub, external := newTestSubscription(NewExponentialBackoff())

	err := sub.Kill(context.Background())
	require.ErrorIs(t, err, ErrNoConnection)

	external <- connection.Notification{
		Action: connection.UpdateAction,
		Result: map[string]any{"name": "bob"},
	}

	ev, ok := <-sub.Events()
	assert.False(t, ok, "expected closed events channel, got %v", ev)
}

func TestDecodeEvent(t *testing.T) {
	type user struct {
		Name string `json:"name"`
		Age  int    `json:"age"`
	}

	ev := Event{
		Action: ActionUpdate,
		Data:   map[string]any{"name": "alice", "age": 30},
	}

	decoded, err := DecodeEvent[user](ev)
	require.NoError(t, err)
	assert.Equal(t, user{Name: "alice", Age: 30}, decoded)
}

func TestExponentialBackoff(t *testing.T) {
	b := &ExponentialBackoff{
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		MaxRetries:   4,
	}

	d0, ok := b.NextDelay(0, nil)
	require.True(t, ok)
	assert.Equal(t, time.Second, d0)

	d2, ok := b.NextDelay(2, nil)
	require.True(t, ok)
	assert.Equal(t, 4*time.Second, d2)

	// Capped at MaxDelay.
	d5, ok := b.NextDelay(3, nil)
	require.True(t, ok)
	assert.Equal(t, 8*time.Second, d5)

	_, ok = b.NextDelay(4, nil)
	assert.False(t, ok)
}

func TestExponentialBackoffJitterStaysPositive(t *testing.T) {
	b := NewExponentialBackoff()
	for attempt := 0; attempt < 20; attempt++ {
		d, ok := b.NextDelay(attempt, nil)
		require.True(t, ok)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, time.Duration(float64(b.MaxDelay)*(1+b.JitterFactor))+time.Nanosecond)
	}
}

func TestFixedDelay(t *testing.T) {
	f := &FixedDelay{Delay: 100 * time.Millisecond, MaxRetries: 2}

	d, ok := f.NextDelay(0, nil)
	require.True(t, ok)
	assert.Equal(t, 100*time.Millisecond, d)

	_, ok = f.NextDelay(2, nil)
	assert.False(t, ok)
}
