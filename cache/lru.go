// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package cache

// This file provides a simple LRU cache of sites, keyed by name, whose
// entries also expire after a fixed lifetime.

import (
	"container/list"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-webapi/model"
)

// entry is a single cached site.
type entry struct {
	site    *model.Site
	expires time.Time
}

// lru is a least-recently-used cache with a fixed capacity.  The cache
// can be safely accessed from multiple goroutines.
type lru struct {
	size      int
	ttl       time.Duration
	clock     clock.Clock
	lock      sync.Mutex
	evictList *list.List
	index     map[string]*list.Element
}

func newLRU(size int, ttl time.Duration, clk clock.Clock) *lru {
	return &lru{
		size:      size,
		ttl:       ttl,
		clock:     clk,
		evictList: list.New(),
		index:     make(map[string]*list.Element),
	}
}

// Get retrieves a site from the cache.  If it is not present or has
// expired, calls the fetch function, and if that succeeds, saves the
// site and returns it.  This returns an error only if the fetch
// function does.  Not-found errors are not cached.
func (lru *lru) Get(name string, fetch func(string) (*model.Site, error)) (*model.Site, error) {
	if site := lru.Peek(name); site != nil {
		return site, nil
	}

	// Fetch outside the lock; two concurrent misses may both
	// fetch, and the later Put wins
	site, err := fetch(name)
	if err != nil {
		return nil, err
	}
	lru.Put(site)
	return site, nil
}

// Peek looks for a live site in the cache and returns it if present,
// or returns nil if absent or expired.  A hit makes the site the most
// recently used.
func (lru *lru) Peek(name string) *model.Site {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	element, present := lru.index[name]
	if !present {
		return nil
	}
	e := element.Value.(*entry)
	if lru.ttl > 0 && !lru.clock.Now().Before(e.expires) {
		delete(lru.index, name)
		lru.evictList.Remove(element)
		return nil
	}
	lru.evictList.MoveToBack(element)
	return e.site
}

// Put adds a site to the LRU cache, possibly evicting something.
func (lru *lru) Put(site *model.Site) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	e := &entry{site: site, expires: lru.clock.Now().Add(lru.ttl)}

	// Are we just updating an existing item?
	if element, present := lru.index[site.Name]; present {
		element.Value = e
		lru.evictList.MoveToBack(element)
		return
	}

	element := lru.evictList.PushBack(e)
	lru.index[site.Name] = element

	// If this caused the cache to go over size, start evicting items
	for len(lru.index) > lru.size {
		head := lru.evictList.Front()
		delete(lru.index, head.Value.(*entry).site.Name)
		lru.evictList.Remove(head)
	}
}

// Remove takes a site out of the cache.  It does nothing if that
// name does not exist.
func (lru *lru) Remove(name string) {
	lru.lock.Lock()
	defer lru.lock.Unlock()

	if element, present := lru.index[name]; present {
		delete(lru.index, name)
		lru.evictList.Remove(element)
	}
}
