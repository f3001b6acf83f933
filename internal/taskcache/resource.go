// Package taskcache keeps the last-known-good task and category
// collections and refreshes them on demand.
package taskcache

import (
	"context"
	"fmt"
	"sync"

	"github.com/mark3labs/taskdeck/internal/logger"
)

// CacheFetchError is returned to the caller whose invalidation failed. The
// previous snapshot stays in place.
type CacheFetchError struct {
	Key string
	Err error
}

func (e *CacheFetchError) Error() string {
	return fmt.Sprintf("refreshing %s: %v", e.Key, e.Err)
}

func (e *CacheFetchError) Unwrap() error { return e.Err }

// Fetcher loads a full collection.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

type call struct {
	done       chan struct{}
	err        error
	superseded bool
}

// Resource caches one keyed collection. Fetches carry a generation and only
// the most recently issued one may replace the snapshot.
type Resource[T any] struct {
	key   string
	fetch Fetcher[T]

	mu       sync.Mutex
	data     []T
	loaded   bool
	stale    bool
	gen      uint64
	inflight int
	pending  *call

	listeners map[int]func()
	nextID    int
}

// NewResource creates an empty resource.
func NewResource[T any](key string, fetch Fetcher[T]) *Resource[T] {
	return &Resource[T]{key: key, fetch: fetch, listeners: make(map[int]func())}
}

// Key returns the resource name.
func (r *Resource[T]) Key() string { return r.key }

// Snapshot returns a copy of the current data without fetching.
func (r *Resource[T]) Snapshot() ([]T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.loaded {
		return nil, false
	}
	return clone(r.data), true
}

// Stale reports whether an invalidation has been issued and not yet applied.
func (r *Resource[T]) Stale() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stale
}

// Fetching reports whether any fetch is in flight.
func (r *Resource[T]) Fetching() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inflight > 0
}

// Get returns the snapshot, fetching and waiting for the first load when
// nothing has been loaded yet.
func (r *Resource[T]) Get(ctx context.Context) ([]T, error) {
	for {
		r.mu.Lock()
		if r.loaded {
			out := clone(r.data)
			r.mu.Unlock()
			return out, nil
		}
		c := r.pending
		if c == nil {
			c = r.issueLocked(ctx)
		}
		r.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-c.done:
		}
		if c.err != nil {
			return nil, c.err
		}
		// Superseded or applied; loop to read or follow the newer fetch.
	}
}

// Invalidate marks the resource stale, refetches it and waits for the
// result. A refetch overtaken by a newer one returns nil without applying.
func (r *Resource[T]) Invalidate(ctx context.Context) error {
	r.mu.Lock()
	r.stale = true
	c := r.issueLocked(ctx)
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.done:
		return c.err
	}
}

// Clear drops the snapshot and discards in-flight fetches.
func (r *Resource[T]) Clear() {
	r.mu.Lock()
	r.gen++
	r.data = nil
	r.loaded = false
	r.stale = false
	r.pending = nil
	r.mu.Unlock()
	r.notify()
}

// Subscribe registers fn to run after every applied swap or clear. The
// returned func detaches it.
func (r *Resource[T]) Subscribe(fn func()) func() {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
}

func (r *Resource[T]) issueLocked(ctx context.Context) *call {
	r.gen++
	gen := r.gen
	c := &call{done: make(chan struct{})}
	r.pending = c
	r.inflight++

	// The fetch outlives the caller's wait so other waiters still get it.
	fetchCtx := context.WithoutCancel(ctx)
	go func() {
		data, err := r.fetch(fetchCtx)

		r.mu.Lock()
		r.inflight--
		applied := false
		switch {
		case gen != r.gen:
			c.superseded = true
			logger.Debug("cache %s: discarding superseded fetch gen=%d latest=%d", r.key, gen, r.gen)
		case err != nil:
			c.err = &CacheFetchError{Key: r.key, Err: err}
			logger.Warn("cache %s: refresh failed: %v", r.key, err)
		default:
			r.data = data
			r.loaded = true
			r.stale = false
			applied = true
		}
		if r.pending == c {
			r.pending = nil
		}
		r.mu.Unlock()

		close(c.done)
		if applied {
			r.notify()
		}
	}()
	return c
}

func (r *Resource[T]) notify() {
	r.mu.Lock()
	fns := make([]func(), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func clone[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
