package registry

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Lazy is a deferred module reference. Nothing is fetched until Load is
// called; after that the result (real or placeholder) is memoized.
type Lazy struct {
	key   string
	fetch func(ctx context.Context, key string) (Component, error)
	done  func(key string, comp Component, err error)

	group singleflight.Group

	mu       sync.RWMutex
	loaded   bool
	resolved Component
}

func newLazy(key string, fetch func(context.Context, string) (Component, error), done func(string, Component, error)) *Lazy {
	return &Lazy{key: key, fetch: fetch, done: done}
}

// Key returns the component key this reference resolves.
func (l *Lazy) Key() string { return l.key }

// Loaded reports whether Load has completed.
func (l *Lazy) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Peek returns the memoized component without fetching.
func (l *Lazy) Peek() (Component, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.resolved, l.loaded
}

// Load fetches the component once. Concurrent callers share one fetch. A
// failed fetch yields the NotFound placeholder, which is memoized like a
// success. Load never returns an error.
//
// The shared fetch ignores caller cancellation and is bounded by the
// registry's load timeout instead. A caller whose own ctx ends first gets a
// placeholder that is not memoized; the others still receive the result.
func (l *Lazy) Load(ctx context.Context) Component {
	if comp, ok := l.Peek(); ok {
		return comp
	}
	if err := ctx.Err(); err != nil {
		return NotFound(l.key, err.Error())
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := l.group.DoChan(l.key, func() (any, error) {
		if comp, ok := l.Peek(); ok {
			return comp, nil
		}

		comp, err := l.fetch(fetchCtx, l.key)
		if err != nil {
			comp = NotFound(l.key, err.Error())
		}

		l.mu.Lock()
		l.resolved = comp
		l.loaded = true
		l.mu.Unlock()

		if l.done != nil {
			l.done(l.key, comp, err)
		}
		return comp, nil
	})

	select {
	case res := <-ch:
		return res.Val.(Component)
	case <-ctx.Done():
		return NotFound(l.key, ctx.Err().Error())
	}
}
