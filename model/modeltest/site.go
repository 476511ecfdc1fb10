// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package modeltest

import (
	"github.com/diffeo/go-webapi/model"
)

// TestSiteCreateLookup checks the basic site lifecycle.
func (s *Suite) TestSiteCreateLookup() {
	_, err := s.Backend.Site("corp")
	s.Equal(model.ErrNoSuchSite{Name: "corp"}, err)

	s.makeUser("alice")
	s.makeUser("bob")
	created := s.makeSite("corp", false, []string{"alice"}, []string{"bob"})

	site, err := s.Backend.Site("corp")
	if s.NoError(err) {
		s.Equal(created.ID, site.ID)
		s.Equal("corp", site.Name)
		s.False(site.Public)
		s.Equal([]string{"alice"}, site.Users)
		s.Equal([]string{"bob"}, site.Admins)
	}

	err = s.Backend.CreateSite(&model.Site{Name: "corp"})
	s.Equal(model.ErrDuplicateSite, err)
}

// TestSiteQueries checks membership filtering and paging of sites.
func (s *Suite) TestSiteQueries() {
	s.makeUser("alice")
	s.makeUser("bob")
	s.makeSite("a", false, []string{"alice"}, nil)
	s.makeSite("b", true, nil, nil)
	s.makeSite("c", false, nil, []string{"alice"})
	s.makeSite("d", false, []string{"bob"}, nil)

	sites, err := s.Backend.Sites(model.SiteQuery{})
	if s.NoError(err) {
		s.Equal([]string{"a", "b", "c", "d"}, siteNames(sites))
	}
	count, err := s.Backend.CountSites(model.SiteQuery{})
	if s.NoError(err) {
		s.Equal(4, count)
	}

	q := model.SiteQuery{Member: "alice"}
	sites, err = s.Backend.Sites(q)
	if s.NoError(err) {
		s.Equal([]string{"a", "c"}, siteNames(sites))
	}

	q.IncludePublic = true
	sites, err = s.Backend.Sites(q)
	if s.NoError(err) {
		s.Equal([]string{"a", "b", "c"}, siteNames(sites))
	}
	count, err = s.Backend.CountSites(q)
	if s.NoError(err) {
		s.Equal(3, count)
	}

	q.Offset = 1
	q.Limit = 1
	sites, err = s.Backend.Sites(q)
	if s.NoError(err) {
		s.Equal([]string{"b"}, siteNames(sites))
	}
	count, err = s.Backend.CountSites(q)
	if s.NoError(err) {
		s.Equal(3, count, "count ignores paging")
	}

	sites, err = s.Backend.Sites(model.SiteQuery{Member: "alice", PublicOnly: true})
	if s.NoError(err) {
		s.Equal([]string{"b"}, siteNames(sites))
	}
	count, err = s.Backend.CountSites(model.SiteQuery{PublicOnly: true})
	if s.NoError(err) {
		s.Equal(1, count)
	}
}
