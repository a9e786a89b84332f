package surrealengine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, size int, opts ...func(*PoolConfig)) (*Pool, *atomic.Int32) {
	t.Helper()

	var dials atomic.Int32
	cfg := PoolConfig{
		Dial: func(ctx context.Context) (*Engine, error) {
			dials.Add(1)
			return &Engine{}, nil
		},
		Size:       size,
		Registerer: prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	p, err := NewPool(cfg)
	require.NoError(t, err)
	return p, &dials
}

func TestNewPoolRequiresDial(t *testing.T) {
	_, err := NewPool(PoolConfig{})
	require.Error(t, err)
}

func TestPoolReusesReleasedConnections(t *testing.T) {
	ctx := context.Background()
	p, dials := newTestPool(t, 2)

	e1, err := p.Acquire(ctx)
	require.NoError(t, err)
	p.Release(e1)

	e2, err := p.Acquire(ctx)
	require.NoError(t, err)
	assert.Same(t, e1, e2)
	assert.Equal(t, int32(1), dials.Load())
	p.Release(e2)
}

func TestPoolAcquireBlocksAtCapacity(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPool(t, 1)

	e, err := p.Acquire(ctx)
	require.NoError(t, err)

	timeoutCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = p.Acquire(timeoutCtx)
	require.ErrorIs(t, err, ErrPoolTimeout)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	p.Release(e)

	e2, err := p.Acquire(ctx)
	require.NoError(t, err)
	p.Release(e2)
}

func TestPoolDialError(t *testing.T) {
	dialErr := errors.New("refused")
	p, err := NewPool(PoolConfig{
		Dial: func(ctx context.Context) (*Engine, error) { return nil, dialErr },
	})
	require.NoError(t, err)

	_, err = p.Acquire(context.Background())
	require.ErrorIs(t, err, dialErr)

	// The failed dial must not leak its slot.
	assert.Equal(t, PoolStats{Size: 4, InUse: 0, Idle: 0}, p.Stats())
}

func TestPoolHealthCheckReplacesConnection(t *testing.T) {
	ctx := context.Background()
	unhealthy := errors.New("stale")

	var checks atomic.Int32
	p, dials := newTestPool(t, 1, func(cfg *PoolConfig) {
		cfg.HealthCheck = func(ctx context.Context, e *Engine) error {
			if checks.Add(1) == 1 {
				return unhealthy
			}
			return nil
		}
	})

	e, err := p.Acquire(ctx)
	require.NoError(t, err)
	p.Release(e)

	// The idle connection fails its check and is replaced by a fresh dial.
	e2, err := p.Acquire(ctx)
	require.NoError(t, err)
	assert.NotSame(t, e, e2)
	assert.Equal(t, int32(2), dials.Load())
	p.Release(e2)
}

func TestPoolDiscardFreesSlot(t *testing.T) {
	ctx := context.Background()
	p, dials := newTestPool(t, 1)

	e, err := p.Acquire(ctx)
	require.NoError(t, err)
	p.Discard(ctx, e)

	e2, err := p.Acquire(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), dials.Load())
	p.Release(e2)
}

func TestPoolClose(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPool(t, 2)

	e, err := p.Acquire(ctx)
	require.NoError(t, err)
	p.Release(e)

	require.NoError(t, p.Close(ctx))

	_, err = p.Acquire(ctx)
	require.ErrorIs(t, err, ErrPoolClosed)

	require.ErrorIs(t, p.Close(ctx), ErrPoolClosed)
}

func TestPoolStats(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPool(t, 3)

	e1, err := p.Acquire(ctx)
	require.NoError(t, err)
	e2, err := p.Acquire(ctx)
	require.NoError(t, err)

	assert.Equal(t, PoolStats{Size: 3, InUse: 2, Idle: 0}, p.Stats())

	p.Release(e1)
	assert.Equal(t, PoolStats{Size: 3, InUse: 1, Idle: 1}, p.Stats())

	p.Release(e2)
	assert.Equal(t, PoolStats{Size: 3, InUse: 0, Idle: 2}, p.Stats())
}

func TestPoolWithConnection(t *testing.T) {
	ctx := context.Background()
	p, _ := newTestPool(t, 1)

	var used *Engine
	err := p.WithConnection(ctx, func(e *Engine) error {
		used = e
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, used)

	assert.Equal(t, PoolStats{Size: 1, InUse: 0, Idle: 1}, p.Stats())

	fnErr := errors.New("query failed")
	err = p.WithConnection(ctx, func(e *Engine) error { return fnErr })
	require.ErrorIs(t, err, fnErr)
	assert.Equal(t, PoolStats{Size: 1, InUse: 0, Idle: 1}, p.Stats())
}
