package surrealengine

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/iristech-systems/surrealengine/ql"
	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/contrib/rews"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gws"
	httpconn "github.com/surrealdb/surrealdb.go/pkg/connection/http"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
	"github.com/surrealdb/surrealdb.go/surrealcbor"
)

// Engine is a connected SurrealDB handle bound to a namespace and database.
// It owns the underlying SDK connection and the live-subscription manager.
// An Engine is safe for concurrent use.
type Engine struct {
	db     *surrealdb.DB
	config *Config
	log    logger.Logger
	live   *liveManager
}

// Connect dials SurrealDB as described by cfg, selects the namespace and
// database, and authenticates. The connection engine is chosen from the
// endpoint URL scheme; a positive ReconnectInterval wraps WebSocket
// connections in the SDK's auto-reconnecting connection.
func Connect(ctx context.Context, cfg *Config) (*Engine, error) {
	log := cfg.logger()

	db, err := dial(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("surrealengine: dial %s: %w", cfg.Endpoint, err)
	}

	e := &Engine{db: db, config: cfg, log: log}
	e.live = newLiveManager(e, log)

	if cfg.Namespace != "" || cfg.Database != "" {
		if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
			return nil, fmt.Errorf("surrealengine: use %s/%s: %w", cfg.Namespace, cfg.Database, err)
		}
	}

	if err := e.authenticate(ctx); err != nil {
		return nil, err
	}

	emit(ctx, SignalConnect, e)
	return e, nil
}

func dial(ctx context.Context, cfg *Config, log logger.Logger) (*surrealdb.DB, error) {
	u, err := url.ParseRequestURI(cfg.Endpoint)
	if err != nil {
		return nil, err
	}

	switch u.Scheme {
	case "ws", "wss":
		conf := newConnectionConfig(u, log)

		if cfg.ReconnectInterval > 0 {
			return dialReconnecting(ctx, cfg, conf, log)
		}

		if cfg.UseGWS {
			return surrealdb.FromConnection(ctx, gws.New(conf))
		}
		return surrealdb.FromConnection(ctx, gorillaws.New(conf))
	case "http", "https":
		return surrealdb.FromConnection(ctx, httpconn.New(newConnectionConfig(u, log)))
	default:
		return nil, fmt.Errorf("unsupported endpoint scheme %q", u.Scheme)
	}
}

// newConnectionConfig builds the SDK connection config shared by every
// transport. The surrealcbor codec is set explicitly: the default
// fxamacker-based codec decodes a missing record into a non-nil
// zero-valued struct, while surrealcbor decodes it to nil, which the
// CRUD helpers rely on to report ErrNoDocuments.
func newConnectionConfig(u *url.URL, log logger.Logger) *connection.Config {
	conf := connection.NewConfig(u)
	conf.Logger = log

	codec := surrealcbor.New()
	conf.Marshaler = codec
	conf.Unmarshaler = codec

	return conf
}

// dialReconnecting wraps the WebSocket connection in the SDK's rews
// connection, which restores session state and live queries after a
// reconnect.
func dialReconnecting(ctx context.Context, cfg *Config, conf *connection.Config, log logger.Logger) (*surrealdb.DB, error) {
	var conn connection.WebSocketConnection
	if cfg.UseGWS {
		conn = rews.New(
			func(ctx context.Context) (*gws.Connection, error) { return gws.New(conf), nil },
			cfg.ReconnectInterval,
			conf.Unmarshaler,
			log,
		)
	} else {
		conn = rews.New(
			func(ctx context.Context) (*gorillaws.Connection, error) { return gorillaws.New(conf), nil },
			cfg.ReconnectInterval,
			conf.Unmarshaler,
			log,
		)
	}

	return surrealdb.FromConnection(ctx, conn)
}

func (e *Engine) authenticate(ctx context.Context) error {
	cfg := e.config

	if cfg.Token != "" {
		if err := e.db.Authenticate(ctx, cfg.Token); err != nil {
			return fmt.Errorf("surrealengine: authenticate: %w", err)
		}
		return nil
	}

	if cfg.Username == "" {
		return nil
	}

	token, err := e.db.SignIn(ctx, surrealdb.Auth{
		Namespace: cfg.AuthNamespace,
		Database:  cfg.AuthDatabase,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return fmt.Errorf("surrealengine: sign in: %w", err)
	}
	if err := e.db.Authenticate(ctx, token); err != nil {
		return fmt.Errorf("surrealengine: authenticate: %w", err)
	}
	return nil
}

// DB exposes the underlying SDK handle for operations the ODM does not
// cover.
func (e *Engine) DB() *surrealdb.DB { return e.db }

// Logger returns the engine's logger.
func (e *Engine) Logger() logger.Logger { return e.log }

// Close kills active live subscriptions and closes the underlying
// connection.
func (e *Engine) Close(ctx context.Context) error {
	if e.live != nil {
		e.live.close(ctx)
	}
	if e.db == nil {
		return nil
	}
	emit(ctx, SignalDisconnect, e)
	return e.db.Close(ctx)
}

// Migrate applies the DEFINE TABLE / FIELD / INDEX statements derived from
// each model's metadata. Statements use OVERWRITE, so migrations are
// idempotent.
func (e *Engine) Migrate(ctx context.Context, ms ...Model) error {
	for _, m := range ms {
		meta, err := MetaOf(m)
		if err != nil {
			return err
		}
		for _, stmt := range meta.Statements() {
			sql, vars := stmt.Build()
			if _, err := surrealdb.Query[any](ctx, e.db, sql, vars); err != nil {
				return fmt.Errorf("surrealengine: migrate %s: %w", meta.Table, err)
			}
			e.log.Debug("applied schema statement", "table", meta.Table, "statement", sql)
		}
	}
	return nil
}

// Query executes a statement and decodes the rows of its first result into
// a slice of T.
func Query[T any](ctx context.Context, e *Engine, stmt ql.Statement) ([]T, error) {
	sql, vars := stmt.Build()
	return RawQuery[T](ctx, e, sql, vars)
}

// RawQuery executes a SurrealQL string with bound vars and decodes the rows
// of its first result into a slice of T.
func RawQuery[T any](ctx context.Context, e *Engine, sql string, vars map[string]any) ([]T, error) {
	started := time.Now()

	results, err := surrealdb.Query[[]T](ctx, e.db, sql, vars)
	if err != nil {
		return nil, err
	}

	e.log.Debug("executed query", "sql", sql, "duration", time.Since(started))

	if results == nil || len(*results) == 0 {
		return nil, nil
	}

	first := (*results)[0]
	if first.Status != "OK" {
		return nil, fmt.Errorf("%w: status %s", ErrQueryFailed, first.Status)
	}
	return first.Result, nil
}
