package router

import (
	"maps"
	"sync"
)

// docCache lazily caches command documentation per router, keyed by
// rendered route path. It is populated on first query and invalidated
// whenever the router's table changes, so it can never serve docs for
// routes that were unloaded.
//
// The fill in Docs holds mu across the snapshot load and the store.
// Writers invalidate after publishing their snapshot, so an invalidate
// racing a fill either runs first (the fill computes from the new
// snapshot) or blocks until the fill finishes and then clears whatever
// it cached. A fill from a superseded snapshot therefore never outlives
// the write that superseded it.
type docCache struct {
	mu      sync.Mutex
	entries map[string]map[string]string
}

func (c *docCache) invalidate(id string) {
	c.mu.Lock()
	delete(c.entries, id)
	c.mu.Unlock()
}

// Doc returns the documentation string attached to the route at path, if
// the router is loaded and the route carries one.
func (s *Store) Doc(id, path string) (string, bool) {
	docs, err := s.Docs(id)
	if err != nil {
		return "", false
	}
	doc, ok := docs[path]
	return doc, ok
}

// Docs returns the documentation of every enabled route of the router,
// keyed by rendered path. The result is cached until the router changes.
func (s *Store) Docs(id string) (map[string]string, error) {
	s.docs.mu.Lock()
	defer s.docs.mu.Unlock()

	if m, ok := s.docs.entries[id]; ok {
		return maps.Clone(m), nil
	}

	root, ok := (*s.routers.Load())[id]
	if !ok {
		return nil, ErrRouterNotFound
	}
	m := make(map[string]string)
	for _, c := range root.Values() {
		if c.Doc() != "" {
			m[c.PathString()] = c.Doc()
		}
	}
	if s.docs.entries == nil {
		s.docs.entries = make(map[string]map[string]string)
	}
	s.docs.entries[id] = m
	return maps.Clone(m), nil
}
