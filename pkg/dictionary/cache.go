package dictionary

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Dictionary is one parsed source as held by the Cache. It is never mutated
// after being stored; a reload stores a new Dictionary.
type Dictionary struct {
	Source   Source
	Marker   Marker
	Entries  []Entry
	LoadedAt time.Time
}

// Cache maps source identifiers to their last parsed Dictionary.
//
// Local sources are stat'ed on every lookup and reloaded when the
// modification time moved. Remote sources are loaded once per Cache.
// Nothing is ever evicted. Concurrent loads of one source are not merged;
// the last one to finish wins.
type Cache struct {
	fetcher  *Fetcher
	entries  map[string]*Dictionary
	loads    int
	hits     int
	failures int
	mu       sync.RWMutex
}

// Option configures a Cache.
type Option func(*Cache)

// WithFetcher sets the Fetcher used for remote sources.
func WithFetcher(f *Fetcher) Option {
	return func(c *Cache) {
		c.fetcher = f
	}
}

// NewCache creates an empty cache.
func NewCache(opts ...Option) *Cache {
	c := &Cache{
		fetcher: defaultFetcher,
		entries: make(map[string]*Dictionary),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Pending is a dictionary lookup in flight.
type Pending struct {
	done chan struct{}
	dict *Dictionary
	err  error
}

// Done is closed once the lookup finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the lookup finished or ctx is done. Giving up on the
// wait does not stop the lookup; its result still lands in the cache.
func (p *Pending) Wait(ctx context.Context) (*Dictionary, error) {
	select {
	case <-p.done:
		return p.dict, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Load starts a lookup of src and returns immediately.
// Values from ctx are kept but its cancellation is not passed on.
func (c *Cache) Load(ctx context.Context, src Source) *Pending {
	p := &Pending{done: make(chan struct{})}
	ctx = context.WithoutCancel(ctx)
	go func() {
		defer close(p.done)
		p.dict, p.err = c.resolve(ctx, src)
	}()
	return p
}

// GetOrLoad returns the current dictionary for src, loading it when there
// is no cached copy or the cached copy is stale. Errors from stat or fetch
// are returned as is; a stale copy is never served in their place.
func (c *Cache) GetOrLoad(ctx context.Context, src Source) (*Dictionary, error) {
	return c.Load(ctx, src).Wait(ctx)
}

func (c *Cache) resolve(ctx context.Context, src Source) (*Dictionary, error) {
	id := src.ID()

	marker, err := src.Marker(ctx)
	if err != nil {
		c.recordFailure()
		return nil, err
	}

	c.mu.RLock()
	cached, ok := c.entries[id]
	c.mu.RUnlock()
	if ok && cached.Marker == marker {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return cached, nil
	}

	start := time.Now()
	raw, err := src.Fetch(ctx, c.fetcher)
	if err != nil {
		c.recordFailure()
		return nil, err
	}

	dict := &Dictionary{
		Source:   src,
		Marker:   marker,
		Entries:  Parse(decodeText(raw)),
		LoadedAt: time.Now(),
	}

	c.mu.Lock()
	c.entries[id] = dict
	c.loads++
	c.mu.Unlock()

	log.Debugf("Loaded dictionary %s: %d entries in %v", id, len(dict.Entries), time.Since(start))
	return dict, nil
}

func (c *Cache) recordFailure() {
	c.mu.Lock()
	c.failures++
	c.mu.Unlock()
}

// Peek returns the cached dictionary for id without checking freshness.
func (c *Cache) Peek(id string) (*Dictionary, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	dict, ok := c.entries[id]
	return dict, ok
}

// Forget drops the cached dictionary for id so the next lookup reloads it.
// It reports whether anything was cached.
func (c *Cache) Forget(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[id]
	delete(c.entries, id)
	return ok
}

// Len returns the number of cached sources.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns load counters.
func (c *Cache) Stats() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := 0
	for _, dict := range c.entries {
		entries += len(dict.Entries)
	}
	return map[string]int{
		"sources":  len(c.entries),
		"entries":  entries,
		"loads":    c.loads,
		"hits":     c.hits,
		"failures": c.failures,
	}
}
