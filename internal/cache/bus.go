package cache

import (
	"context"
	"errors"
	"sync"
)

// Invalidation is the payload peers exchange; Origin identifies the
// publishing store so it can ignore its own echo.
type Invalidation struct {
	Origin string   `json:"origin"`
	Keys   []string `json:"keys"`
}

// Bus fans invalidations out to every store sharing the same backend.
type Bus interface {
	Publish(ctx context.Context, inv Invalidation) error
	Subscribe(ctx context.Context, onInvalidation func(Invalidation)) error
	Close() error
}

// MemoryBus connects stores inside one process.
type MemoryBus struct {
	mu     sync.RWMutex
	subs   map[int]func(Invalidation)
	next   int
	closed bool
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[int]func(Invalidation))}
}

func (b *MemoryBus) Publish(ctx context.Context, inv Invalidation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return errors.New("memory bus closed")
	}
	handlers := make([]func(Invalidation), 0, len(b.subs))
	for _, h := range b.subs {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(inv)
	}
	return nil
}

// Subscribe registers the handler until ctx is done.
func (b *MemoryBus) Subscribe(ctx context.Context, onInvalidation func(Invalidation)) error {
	if onInvalidation == nil {
		return errors.New("onInvalidation callback required")
	}
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return errors.New("memory bus closed")
	}
	id := b.next
	b.next++
	b.subs[id] = onInvalidation
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}()
	return nil
}

func (b *MemoryBus) Close() error {
	b.mu.Lock()
	b.closed = true
	b.subs = make(map[int]func(Invalidation))
	b.mu.Unlock()
	return nil
}
