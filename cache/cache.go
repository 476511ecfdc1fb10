// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package cache provides name-based caching of site lookups.  The
// cache wraps some other model.Backend.  Every request inside a site
// looks the site up by name, so the cache keeps recently used sites
// in memory for a short time.  All other methods pass through to the
// underlying backend.
//
// Cached sites may be stale by up to the cache lifetime: a user added
// to a site by another process may not be able to see it until the
// entry expires.  Sites created through this object are never stale.
package cache

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-webapi/model"
)

// DefaultSize is the number of sites New keeps.
const DefaultSize = 32

// DefaultTTL is the lifetime of a cached site in New.
const DefaultTTL = time.Minute

type cache struct {
	model.Backend
	sites *lru
}

// New creates a new caching backend, wrapping some other backend.
func New(backend model.Backend) model.Backend {
	return NewWithClock(backend, DefaultSize, DefaultTTL, clock.New())
}

// NewWithSize creates a new caching backend holding up to size sites.
func NewWithSize(backend model.Backend, size int) model.Backend {
	return NewWithClock(backend, size, DefaultTTL, clock.New())
}

// NewWithClock creates a new caching backend with an explicit size,
// lifetime, and time source.  A size of zero or less disables caching
// and returns backend itself.  A zero ttl keeps entries until they
// are evicted.
func NewWithClock(backend model.Backend, size int, ttl time.Duration, clk clock.Clock) model.Backend {
	if size <= 0 {
		return backend
	}
	return &cache{
		Backend: backend,
		sites:   newLRU(size, ttl, clk),
	}
}

func (c *cache) Site(name string) (*model.Site, error) {
	site, err := c.sites.Get(name, c.Backend.Site)
	if err != nil {
		return nil, err
	}
	return copySite(site), nil
}

func (c *cache) CreateSite(site *model.Site) error {
	err := c.Backend.CreateSite(site)
	if err == nil {
		c.sites.Remove(site.Name)
	}
	return err
}

// copySite returns a copy of site so callers cannot change the cached
// value.
func copySite(site *model.Site) *model.Site {
	result := *site
	result.Users = append([]string(nil), site.Users...)
	result.Admins = append([]string(nil), site.Admins...)
	return &result
}
