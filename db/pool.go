package db

import (
	"context"
	"errors"
	"sync"
)

// Pool hands out backends with explicit checkout and return semantics.
// It is owned by the application, never by the engine; every Acquire
// must be paired with a Release on all exit paths.
type Pool struct {
	factory func() (Backend, error)

	mu     sync.Mutex
	idle   []Backend
	open   int
	max    int
	closed bool
	ready  chan struct{}
}

// NewPool builds a pool that opens at most max backends through factory.
func NewPool(max int, factory func() (Backend, error)) *Pool {
	if max < 1 {
		max = 1
	}
	return &Pool{
		factory: factory,
		max:     max,
		ready:   make(chan struct{}, max),
	}
}

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("db: pool is closed")

// Acquire checks out a backend, waiting for one to be released when the
// pool is at capacity and honoring context cancellation while waiting.
func (p *Pool) Acquire(ctx context.Context) (Backend, error) {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return nil, ErrPoolClosed
		}
		if n := len(p.idle); n > 0 {
			b := p.idle[n-1]
			p.idle = p.idle[:n-1]
			p.mu.Unlock()
			return b, nil
		}
		if p.open < p.max {
			p.open++
			p.mu.Unlock()
			b, err := p.factory()
			if err != nil {
				p.mu.Lock()
				p.open--
				p.mu.Unlock()
				return nil, err
			}
			return b, nil
		}
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-p.ready:
		}
	}
}

// Release returns a backend to the pool. A backend that failed should be
// discarded with Discard instead.
func (p *Pool) Release(b Backend) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		b.Close()
		return
	}
	p.idle = append(p.idle, b)
	p.mu.Unlock()

	select {
	case p.ready <- struct{}{}:
	default:
	}
}

// Discard closes a checked-out backend and frees its pool slot.
func (p *Pool) Discard(b Backend) {
	p.mu.Lock()
	p.open--
	p.mu.Unlock()
	b.Close()

	select {
	case p.ready <- struct{}{}:
	default:
	}
}

// With runs fn with an acquired backend, guaranteeing return to the pool
// on every exit path.
func (p *Pool) With(ctx context.Context, fn func(Backend) error) error {
	b, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer p.Release(b)
	return fn(b)
}

// Close shuts the pool and closes idle backends. Checked-out backends
// are closed as they are released.
func (p *Pool) Close() error {
	p.mu.Lock()
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	var first error
	for _, b := range idle {
		if err := b.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
