// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package article caches the expensive, lazily generated long-form
// article attached to each recommendation tile, and renders article
// HTML for terminal display.
package article

import (
	"context"
	"sync"
)

// Fetcher retrieves one article from the backend. *api.Client satisfies it.
type Fetcher interface {
	Article(ctx context.Context, tileID string, regenerate bool) (string, error)
}

// call is the holder for one outstanding fetch. Late arrivals for the
// same key wait on done instead of issuing a duplicate request.
type call struct {
	done chan struct{}
	html string
	err  error
}

// Cache is a per-tile article cache with in-flight de-duplication. The
// artifact a caller receives is shared; callers must treat it as
// read-only.
type Cache struct {
	fetcher Fetcher

	mu       sync.Mutex
	entries  map[string]string
	inflight map[string]*call
}

// NewCache builds an empty cache around fetcher.
func NewCache(fetcher Fetcher) *Cache {
	return &Cache{
		fetcher:  fetcher,
		entries:  make(map[string]string),
		inflight: make(map[string]*call),
	}
}

// Get returns the article for id. A cached entry is returned without any
// remote call unless forceRefresh is set. On a miss or a forced refresh,
// exactly one fetch is issued per id at a time: concurrent callers join
// the outstanding fetch and all receive its result. A failed fetch
// leaves any previously cached entry untouched and surfaces the error
// to every joined caller.
func (c *Cache) Get(ctx context.Context, id string, forceRefresh bool) (string, error) {
	c.mu.Lock()

	if !forceRefresh {
		if html, ok := c.entries[id]; ok {
			c.mu.Unlock()
			return html, nil
		}
	}

	if existing, ok := c.inflight[id]; ok {
		c.mu.Unlock()
		select {
		case <-existing.done:
			return existing.html, existing.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	cl := &call{done: make(chan struct{})}
	c.inflight[id] = cl
	c.mu.Unlock()

	html, err := c.fetcher.Article(ctx, id, forceRefresh)

	c.mu.Lock()
	delete(c.inflight, id)
	if err == nil {
		c.entries[id] = html
	}
	c.mu.Unlock()

	cl.html, cl.err = html, err
	close(cl.done)
	return html, err
}

// Peek returns the cached article without triggering a fetch.
func (c *Cache) Peek(id string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	html, ok := c.entries[id]
	return html, ok
}

// Seed stores an article that arrived through another channel, e.g. a
// tile listing that already embedded its article body.
func (c *Cache) Seed(id, html string) {
	if html == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[id]; !ok {
		c.entries[id] = html
	}
}
