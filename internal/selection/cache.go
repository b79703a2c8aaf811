// Package selection keeps a dependent list (departments of a company, staff of
// a department) in step with the operator's current choice. Fetches run in the
// background and a completed fetch is applied only if it still answers the
// live selection, so the last selection always wins.
package selection

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// State of a cache.
type State string

const (
	StateEmpty   State = "empty"
	StateLoading State = "loading"
	StateReady   State = "ready"
)

const defaultTimeout = 20 * time.Second

// Fetcher loads the items for a selection.
type Fetcher[T any] func(ctx context.Context, selection string) ([]T, error)

// Options configures a Cache.
type Options struct {
	Name    string
	Timeout time.Duration
	Logger  *zap.Logger
}

// Snapshot is a consistent copy of the cache.
type Snapshot[T any] struct {
	Selection string
	State     State
	Items     []T
	Err       error
	Version   uint64
}

// Cache holds the items derived from one selection.
type Cache[T any] struct {
	mu        sync.Mutex
	fetch     Fetcher[T]
	name      string
	timeout   time.Duration
	logger    *zap.Logger
	selection string
	state     State
	items     []T
	err       error
	latest    uint64
	version   uint64
	inflight  chan struct{}
}

// New creates an empty cache.
func New[T any](fetch Fetcher[T], opts Options) *Cache[T] {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache[T]{
		fetch:   fetch,
		name:    opts.Name,
		timeout: timeout,
		logger:  logger,
		state:   StateEmpty,
	}
}

// Select switches to sel and starts loading its items. Selecting the current
// value again is a no-op unless its last fetch failed, in which case it is
// retried. An empty sel clears the cache. The returned channel
// closes once the fetch for sel has been applied or discarded.
func (c *Cache[T]) Select(ctx context.Context, sel string) <-chan struct{} {
	if sel == "" {
		c.Clear()
		return closed()
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if sel == c.selection && c.state != StateEmpty {
		if c.state == StateLoading && c.inflight != nil {
			return c.inflight
		}
		if c.err != nil {
			return c.startLocked(ctx)
		}
		return closed()
	}
	c.selection = sel
	c.items = nil
	return c.startLocked(ctx)
}

// Refresh refetches the current selection, keeping the current items visible until it lands.
func (c *Cache[T]) Refresh(ctx context.Context) <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selection == "" {
		return closed()
	}
	return c.startLocked(ctx)
}

// Clear drops the selection and its items. Fetches still in flight are discarded.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.latest++
	c.selection = ""
	c.state = StateEmpty
	c.items = nil
	c.err = nil
	c.version++
	if c.inflight != nil {
		close(c.inflight)
		c.inflight = nil
	}
}

// Snapshot returns a copy of the current state.
func (c *Cache[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return Snapshot[T]{
		Selection: c.selection,
		State:     c.state,
		Items:     items,
		Err:       c.err,
		Version:   c.version,
	}
}

// Selection returns the live selection.
func (c *Cache[T]) Selection() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection
}

func (c *Cache[T]) startLocked(ctx context.Context) <-chan struct{} {
	c.latest++
	gen := c.latest
	sel := c.selection
	c.state = StateLoading
	c.err = nil
	c.version++

	if c.inflight != nil {
		close(c.inflight)
	}
	done := make(chan struct{})
	c.inflight = done

	fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
	go func() {
		defer cancel()
		items, err := c.fetch(fetchCtx, sel)
		c.complete(gen, sel, items, err, done)
	}()
	return done
}

func (c *Cache[T]) complete(gen uint64, sel string, items []T, err error, done chan struct{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.latest || sel != c.selection {
		c.logger.Debug("discarding stale selection result",
			zap.String("cache", c.name), zap.String("selection", sel), zap.String("live", c.selection))
		return
	}

	c.state = StateReady
	c.version++
	if err != nil {
		c.items = nil
		c.err = err
		c.logger.Warn("selection fetch failed",
			zap.String("cache", c.name), zap.String("selection", sel), zap.Error(err))
	} else {
		c.items = items
		c.err = nil
	}
	if c.inflight == done {
		close(done)
		c.inflight = nil
	}
}

// Wait blocks until ch closes or ctx ends.
func Wait(ctx context.Context, ch <-chan struct{}) error {
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func closed() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
