// Package worker provides a bounded goroutine pool for read-only fan-out work
// such as scanning source files.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// ErrPoolClosed is returned when submitting to a released pool.
var ErrPoolClosed = errors.New("worker pool is closed")

// Task is a context-aware task function.
type Task func(ctx context.Context)

// Pool wraps ants.Pool with context-aware submission.
type Pool struct {
	pool   *ants.Pool
	name   string
	logger *zap.Logger
}

// New creates a pool of size workers; size <= 0 uses GOMAXPROCS.
func New(name string, size int, logger *zap.Logger) (*Pool, error) {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	panicHandler := func(p interface{}) {
		logger.Error("Worker panic recovered",
			zap.String("pool", name),
			zap.Any("panic", p),
			zap.Stack("stack"),
		)
	}

	p, err := ants.NewPool(size,
		ants.WithPanicHandler(panicHandler),
		ants.WithNonblocking(false),
		ants.WithExpiryDuration(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s pool: %w", name, err)
	}

	return &Pool{pool: p, name: name, logger: logger}, nil
}

// Submit submits a context-aware task.
// If ctx is already cancelled, returns ctx.Err() without submitting.
// A task still queued when ctx is cancelled is skipped.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	err := p.pool.Submit(func() {
		select {
		case <-ctx.Done():
			p.logger.Debug("Task skipped: context cancelled",
				zap.String("pool", p.name),
				zap.Error(ctx.Err()),
			)
			return
		default:
		}
		task(ctx)
	})
	if errors.Is(err, ants.ErrPoolClosed) {
		return ErrPoolClosed
	}

	return err
}

// Cap returns the pool capacity.
func (p *Pool) Cap() int {
	return p.pool.Cap()
}

// Release closes the pool. Queued tasks are dropped.
func (p *Pool) Release() {
	p.pool.Release()
}
