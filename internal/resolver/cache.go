package resolver

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/steveyegge/linear-cli/internal/linear"
)

// Kind names a family of cached lookups.
type Kind string

const (
	KindViewer          Kind = "viewer"
	KindTeams           Kind = "teams"
	KindTeam            Kind = "team"
	KindStates          Kind = "states"
	KindStatus          Kind = "status"
	KindLabels          Kind = "labels"
	KindWorkspaceLabels Kind = "workspace-labels"
	KindLabel           Kind = "label"
	KindCycles          Kind = "cycles"
	KindCycle           Kind = "cycle"
	KindUsers           Kind = "users"
	KindUser            Kind = "user"
	KindProjects        Kind = "projects"
	KindProject         Kind = "project"
)

// Key identifies one lookup. Team is empty for workspace-wide lookups.
type Key struct {
	Kind Kind
	Team string
	Raw  string
}

func (k Key) String() string {
	return string(k.Kind) + "\x00" + k.Team + "\x00" + k.Raw
}

type entry struct {
	value any
	err   error
}

// Cache memoizes lookups for one invocation. Concurrent lookups of the same
// key share a single fetch; unrelated keys proceed in parallel. Successes
// and NotFound outcomes are kept for the life of the cache. Other failures
// (cancellation, exhausted retries) are not, so a later lookup fetches again.
type Cache struct {
	mu      sync.RWMutex
	entries map[Key]entry
	group   singleflight.Group
	fetches map[Kind]int
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{
		entries: make(map[Key]entry),
		fetches: make(map[Kind]int),
	}
}

func (c *Cache) get(key Key) (entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

func (c *Cache) put(key Key, e entry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = e
}

func (c *Cache) countFetch(kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches[kind]++
}

// Fetches reports how many times a fetch of the given kind actually ran.
func (c *Cache) Fetches(kind Kind) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fetches[kind]
}

// Len returns the number of memoized outcomes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func cacheable(err error) bool {
	return err == nil || linear.KindOf(err) == linear.KindNotFound
}

// Lookup returns the memoized outcome for key, running fetch at most once
// per key however many goroutines ask concurrently. The shared fetch keeps
// the starting caller's context values but not its cancellation, so one
// caller giving up never fails the others; a caller whose own context ends
// stops waiting with a Cancelled error.
func Lookup[T any](ctx context.Context, c *Cache, key Key, fetch func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if e, ok := c.get(key); ok {
		return typed[T](e)
	}

	ch := c.group.DoChan(key.String(), func() (any, error) {
		// A fetch that finished between get and DoChan already stored its
		// outcome.
		if e, ok := c.get(key); ok {
			return e.value, e.err
		}
		c.countFetch(key.Kind)
		v, err := fetch(context.WithoutCancel(ctx))
		if cacheable(err) {
			c.put(key, entry{value: v, err: err})
		}
		return v, err
	})

	select {
	case <-ctx.Done():
		return zero, linear.NewCancelled(ctx.Err())
	case res := <-ch:
		return typed[T](entry{value: res.Val, err: res.Err})
	}
}

func typed[T any](e entry) (T, error) {
	var zero T
	if e.err != nil {
		return zero, e.err
	}
	v, _ := e.value.(T)
	return v, nil
}
