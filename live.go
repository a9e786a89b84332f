package surrealengine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gofrs/uuid"
	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/iristech-systems/surrealengine/ql"
)

// Action identifies what happened to a record covered by a live query.
type Action string

const (
	ActionCreate Action = "CREATE"
	ActionUpdate Action = "UPDATE"
	ActionDelete Action = "DELETE"
)

// Event is one change delivered by a live query. Data holds the record as
// decoded by the SDK (a map for plain live queries, a patch list when the
// query was started in diff mode); use DecodeEvent to get a typed document.
type Event struct {
	Action Action
	Data   any
}

// DecodeEvent decodes an event's record into T.
func DecodeEvent[T any](ev Event) (T, error) {
	var doc T
	raw, err := cbor.Marshal(ev.Data)
	if err != nil {
		return doc, fmt.Errorf("surrealengine: encode event data: %w", err)
	}
	if err := cbor.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("surrealengine: decode event data: %w", err)
	}
	return doc, nil
}

// resubscribeTimeout bounds each attempt to restart a live query after its
// notification channel closed.
const resubscribeTimeout = 10 * time.Second

// liveManager tracks the live subscriptions opened through an Engine so
// they can be killed together when the engine closes.
type liveManager struct {
	engine *Engine
	log    logger.Logger

	mu   sync.Mutex
	subs map[string]*Subscription
}

func newLiveManager(e *Engine, log logger.Logger) *liveManager {
	return &liveManager{
		engine: e,
		log:    log,
		subs:   make(map[string]*Subscription),
	}
}

// subscribe starts the live query and begins routing its notifications.
func (m *liveManager) subscribe(ctx context.Context, stmt *ql.LiveSelectQuery) (*Subscription, error) {
	sql, vars := stmt.Build()

	liveID, err := m.start(ctx, sql, vars)
	if err != nil {
		return nil, err
	}

	external, err := m.engine.db.LiveNotifications(liveID.String())
	if err != nil {
		// The live query is running server-side but nothing can consume
		// it; kill it rather than leaking it.
		if killErr := m.kill(ctx, liveID); killErr != nil {
			m.log.Warn("failed to kill orphaned live query", "live_id", liveID.String(), "error", killErr)
		}
		return nil, fmt.Errorf("surrealengine: live notifications for %s: %w", liveID, err)
	}

	sub := &Subscription{
		id:      uuid.Must(uuid.NewV4()).String(),
		manager: m,
		sql:     sql,
		vars:    vars,
		liveID:  liveID,
		retryer: NewExponentialBackoff(),
		events:  make(chan Event, 100), // buffered to avoid blocking the router
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	m.mu.Lock()
	m.subs[sub.id] = sub
	m.mu.Unlock()

	go sub.run(external)

	m.log.Debug("live subscription started", "subscription_id", sub.id, "live_id", liveID.String(), "sql", sql)
	return sub, nil
}

// start runs the LIVE SELECT statement and returns the server-side query
// UUID.
func (m *liveManager) start(ctx context.Context, sql string, vars map[string]any) (models.UUID, error) {
	if m.engine == nil || m.engine.db == nil {
		return models.UUID{}, ErrNoConnection
	}
	results, err := surrealdb.Query[models.UUID](ctx, m.engine.db, sql, vars)
	if err != nil {
		return models.UUID{}, fmt.Errorf("surrealengine: start live query: %w", err)
	}
	if results == nil || len(*results) == 0 {
		return models.UUID{}, fmt.Errorf("surrealengine: start live query: %w: empty response", ErrQueryFailed)
	}
	first := (*results)[0]
	if first.Status != "OK" {
		return models.UUID{}, fmt.Errorf("surrealengine: start live query: %w: status %s", ErrQueryFailed, first.Status)
	}
	return first.Result, nil
}

// kill terminates a server-side live query.
func (m *liveManager) kill(ctx context.Context, liveID models.UUID) error {
	if m.engine == nil || m.engine.db == nil {
		return ErrNoConnection
	}
	return surrealdb.Kill(ctx, m.engine.db, liveID.String())
}

func (m *liveManager) remove(id string) {
	m.mu.Lock()
	delete(m.subs, id)
	m.mu.Unlock()
}

// close kills every open subscription.
func (m *liveManager) close(ctx context.Context) {
	m.mu.Lock()
	subs := make([]*Subscription, 0, len(m.subs))
	for _, s := range m.subs {
		subs = append(subs, s)
	}
	m.mu.Unlock()

	for _, s := range subs {
		if err := s.Kill(ctx); err != nil {
			m.log.Warn("failed to kill live subscription", "subscription_id", s.id, "error", err)
		}
	}
}

// Subscription is a running live query. Its identity is stable across
// reconnects: when the server-side notification channel closes, the
// subscription re-issues the live query with backoff and keeps delivering
// on the same Events channel under a new server UUID.
type Subscription struct {
	id      string
	manager *liveManager
	sql     string
	vars    map[string]any
	retryer Retryer

	mu     sync.Mutex
	liveID models.UUID
	killed bool

	events  chan Event
	stop    chan struct{}
	stopped chan struct{}
}

// ID returns the subscription's stable identifier. It does not change when
// the underlying live query is re-established.
func (s *Subscription) ID() string { return s.id }

// LiveID returns the current server-side live query UUID.
func (s *Subscription) LiveID() models.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.liveID
}

// Events returns the channel change events are delivered on. It is closed
// after Kill, or when the live query could not be re-established.
func (s *Subscription) Events() <-chan Event { return s.events }

// Kill terminates the live query on the server and closes the Events
// channel. Calling Kill on an already-killed subscription returns
// ErrSubscriptionClosed.
func (s *Subscription) Kill(ctx context.Context) error {
	s.mu.Lock()
	if s.killed {
		s.mu.Unlock()
		return ErrSubscriptionClosed
	}
	s.killed = true
	liveID := s.liveID
	s.mu.Unlock()

	close(s.stop)
	<-s.stopped
	s.manager.remove(s.id)

	if err := s.manager.kill(ctx, liveID); err != nil {
		return fmt.Errorf("surrealengine: kill live query %s: %w", liveID, err)
	}
	return nil
}

// run routes notifications from the server channel to the Events channel
// until stopped. A closed server channel triggers resubscription.
func (s *Subscription) run(external chan connection.Notification) {
	defer close(s.stopped)
	defer close(s.events)

	for {
		select {
		case n, ok := <-external:
			if !ok {
				next, ok := s.resubscribe()
				if !ok {
					return
				}
				external = next
				continue
			}

			select {
			case s.events <- Event{Action: Action(n.Action), Data: n.Result}:
			default:
				// Subscriber is not draining; dropping beats deadlocking the router.
				s.manager.log.Warn("dropping live event, events channel is full", "subscription_id", s.id)
			}

		case <-s.stop:
			return
		}
	}
}

// resubscribe re-issues the live query with backoff until it succeeds, the
// retryer gives up, or the subscription is killed.
func (s *Subscription) resubscribe() (chan connection.Notification, bool) {
	for attempt := 0; ; attempt++ {
		select {
		case <-s.stop:
			return nil, false
		default:
		}

		ch, err := s.restart()
		if err == nil {
			s.retryer.Reset()
			return ch, true
		}

		delay, retry := s.retryer.NextDelay(attempt, err)
		if !retry {
			s.manager.log.Error("giving up on live subscription", "subscription_id", s.id, "error", err)
			return nil, false
		}

		s.manager.log.Warn("live subscription lost, retrying",
			"subscription_id", s.id,
			"attempt", attempt,
			"delay", delay,
			"error", err)

		select {
		case <-time.After(delay):
		case <-s.stop:
			return nil, false
		}
	}
}

func (s *Subscription) restart() (chan connection.Notification, error) {
	ctx, cancel := context.WithTimeout(context.Background(), resubscribeTimeout)
	defer cancel()

	liveID, err := s.manager.start(ctx, s.sql, s.vars)
	if err != nil {
		return nil, err
	}

	ch, err := s.manager.engine.db.LiveNotifications(liveID.String())
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.liveID = liveID
	s.mu.Unlock()

	s.manager.log.Debug("live subscription re-established", "subscription_id", s.id, "live_id", liveID.String())
	return ch, nil
}

// Live starts a live query over the documents matched by the query set.
// Only the filter and fetch clauses carry over; ordering and limits do not
// apply to live queries.
func (qs *QuerySet[T]) Live(ctx context.Context) (*Subscription, error) {
	return qs.live(ctx, false)
}

// LiveDiff is Live with JSON-patch diffs in Event.Data instead of whole
// records.
func (qs *QuerySet[T]) LiveDiff(ctx context.Context) (*Subscription, error) {
	return qs.live(ctx, true)
}

func (qs *QuerySet[T]) live(ctx context.Context, diff bool) (*Subscription, error) {
	stmt := ql.LiveSelect(qs.table)
	if diff {
		stmt.Diff()
	}
	if !qs.where.IsZero() {
		stmt.Where(qs.where)
	}
	if len(qs.fetch) > 0 {
		stmt.Fetch(qs.fetch...)
	}
	return qs.engine.live.subscribe(ctx, stmt)
}
