package surrealengine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/surrealdb/surrealdb.go/pkg/logger"
)

// PoolConfig configures a connection pool.
type PoolConfig struct {
	// Dial opens one connection. Required.
	Dial func(ctx context.Context) (*Engine, error)

	// Size is the maximum number of open connections. Defaults to 4.
	Size int

	// HealthCheck, when set, runs against an idle connection before it is
	// handed out. A failing connection is closed and replaced.
	HealthCheck func(ctx context.Context, e *Engine) error

	// Logger defaults to the SDK's slog-backed logger.
	Logger logger.Logger

	// Registerer receives the pool's Prometheus collectors. Nil leaves
	// them unregistered.
	Registerer prometheus.Registerer
}

// Pool is a fixed-capacity pool of Engines. Connections are dialed lazily
// up to Size; Acquire blocks when all are checked out.
type Pool struct {
	dial        func(ctx context.Context) (*Engine, error)
	size        int
	healthCheck func(ctx context.Context, e *Engine) error
	log         logger.Logger
	metrics     *poolMetrics

	slots chan struct{} // capacity = size; a held token = one checked-out or dialing slot

	mu     sync.Mutex
	idle   []*Engine
	inUse  int
	closed bool
}

// NewPool creates a pool. No connections are dialed until the first
// Acquire.
func NewPool(cfg PoolConfig) (*Pool, error) {
	if cfg.Dial == nil {
		return nil, fmt.Errorf("surrealengine: pool requires a Dial function")
	}

	size := cfg.Size
	if size <= 0 {
		size = 4
	}

	log := cfg.Logger
	if log == nil {
		log = (&Config{}).logger()
	}

	return &Pool{
		dial:        cfg.Dial,
		size:        size,
		healthCheck: cfg.HealthCheck,
		log:         log,
		metrics:     newPoolMetrics(cfg.Registerer),
		slots:       make(chan struct{}, size),
	}, nil
}

// Acquire returns a connection, dialing one if the pool is below capacity
// and blocking otherwise until a connection is released or ctx is done.
// The caller must return it with Release or retire it with Discard.
func (p *Pool) Acquire(ctx context.Context) (*Engine, error) {
	started := time.Now()

	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		p.metrics.recordAcquire("timeout", 0)
		return nil, fmt.Errorf("surrealengine: acquire: %w: %w", ErrPoolTimeout, ctx.Err())
	}

	e, err := p.checkout(ctx)
	if err != nil {
		<-p.slots
		p.metrics.recordAcquire("error", 0)
		return nil, err
	}

	p.metrics.recordAcquire("ok", time.Since(started).Seconds())
	p.updateGauges()
	return e, nil
}

// checkout hands out an idle connection or dials a new one. The caller
// holds a slot token.
func (p *Pool) checkout(ctx context.Context) (*Engine, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}

		var e *Engine
		if n := len(p.idle); n > 0 {
			e = p.idle[n-1]
			p.idle = p.idle[:n-1]
		}
		p.mu.Unlock()

		if e == nil {
			dialed, err := p.dial(ctx)
			p.metrics.recordDial(err)
			if err != nil {
				return nil, fmt.Errorf("surrealengine: pool dial: %w", err)
			}
			e = dialed
		} else if p.healthCheck != nil {
			if err := p.healthCheck(ctx, e); err != nil {
				p.log.Warn("pooled connection failed health check, replacing", "error", err)
				if cerr := e.Close(ctx); cerr != nil {
					p.log.Warn("failed to close unhealthy connection", "error", cerr)
				}
				continue
			}
		}

		p.mu.Lock()
		p.inUse++
		p.mu.Unlock()
		return e, nil
	}
}

// Release returns a connection to the pool. If the pool has been closed in
// the meantime, the connection is closed instead.
func (p *Pool) Release(e *Engine) {
	p.mu.Lock()
	p.inUse--
	closed := p.closed
	if !closed {
		p.idle = append(p.idle, e)
	}
	p.mu.Unlock()

	if closed {
		if err := e.Close(context.Background()); err != nil {
			p.log.Warn("failed to close released connection", "error", err)
		}
	}

	<-p.slots
	p.updateGauges()
}

// Discard closes a checked-out connection instead of returning it, freeing
// its slot so a fresh one can be dialed. Use it after a connection error.
func (p *Pool) Discard(ctx context.Context, e *Engine) {
	p.mu.Lock()
	p.inUse--
	p.mu.Unlock()

	if err := e.Close(ctx); err != nil {
		p.log.Warn("failed to close discarded connection", "error", err)
	}

	<-p.slots
	p.updateGauges()
}

// WithConnection acquires a connection, runs fn, and releases it. A
// connection fn failed on is still returned to the pool; use Discard
// directly when a connection is known bad.
func (p *Pool) WithConnection(ctx context.Context, fn func(e *Engine) error) error {
	e, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(e)
	return fn(e)
}

// PoolStats is a point-in-time snapshot of pool occupancy.
type PoolStats struct {
	Size  int
	InUse int
	Idle  int
}

// Stats returns current pool occupancy.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{Size: p.size, InUse: p.inUse, Idle: len(p.idle)}
}

// Close closes all idle connections and marks the pool closed. Checked-out
// connections are closed as they are released. Acquire returns
// ErrPoolClosed afterwards.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	var firstErr error
	for _, e := range idle {
		if err := e.Close(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	p.updateGauges()
	return firstErr
}

func (p *Pool) updateGauges() {
	p.mu.Lock()
	inUse, idle := p.inUse, len(p.idle)
	p.mu.Unlock()
	p.metrics.setGauges(inUse, idle)
}
