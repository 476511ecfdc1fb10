// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package modeltest

import (
	"time"

	"github.com/diffeo/go-webapi/model"
)

// TestGroupLifecycle creates, updates, and deletes a group.
func (s *Suite) TestGroupLifecycle() {
	_, err := s.Backend.Group(0, "devs")
	s.Equal(model.ErrNoSuchGroup{Name: "devs"}, err)

	group := &model.Group{
		Name:        "devs",
		DisplayName: "Developers",
		MailingList: "devs@example.com",
		Visible:     true,
		ExtraData:   map[string]interface{}{"color": "blue"},
	}
	s.Require().NoError(s.Backend.CreateGroup(group))
	s.NotZero(group.ID)
	s.True(group.LastUpdated.Equal(s.Clock.Now()))

	err = s.Backend.CreateGroup(&model.Group{Name: "devs"})
	s.Equal(model.ErrDuplicateGroup, err)

	found, err := s.Backend.Group(0, "devs")
	if s.NoError(err) {
		s.Equal(group.ID, found.ID)
		s.Equal("Developers", found.DisplayName)
		s.Equal("devs@example.com", found.MailingList)
		s.True(found.Visible)
		s.False(found.InviteOnly)
		s.Equal(map[string]interface{}{"color": "blue"}, found.ExtraData)
	}

	s.Clock.Add(time.Minute)
	found.DisplayName = "Developers!"
	found.InviteOnly = true
	found.ExtraData = map[string]interface{}{"size": "large"}
	s.Require().NoError(s.Backend.UpdateGroup(found))
	s.True(found.LastUpdated.Equal(s.Clock.Now()))

	again, err := s.Backend.Group(0, "devs")
	if s.NoError(err) {
		s.Equal("Developers!", again.DisplayName)
		s.True(again.InviteOnly)
		s.Equal(map[string]interface{}{"size": "large"}, again.ExtraData)
		s.True(again.LastUpdated.Equal(s.Clock.Now()))
	}

	s.Require().NoError(s.Backend.DeleteGroup(again))
	_, err = s.Backend.Group(0, "devs")
	s.Equal(model.ErrNoSuchGroup{Name: "devs"}, err)
}

// TestGroupSiteScoping checks that groups with the same name in
// different sites are distinct.
func (s *Suite) TestGroupSiteScoping() {
	site := s.makeSite("corp", false, nil, nil)
	global := s.makeGroup(0, "devs", true)
	local := s.makeGroup(site.ID, "devs", true)
	s.NotEqual(global.ID, local.ID)

	found, err := s.Backend.Group(site.ID, "devs")
	if s.NoError(err) {
		s.Equal(local.ID, found.ID)
		s.Equal(site.ID, found.SiteID)
	}

	count, err := s.Backend.CountGroups(model.GroupQuery{SiteID: site.ID})
	if s.NoError(err) {
		s.Equal(1, count)
	}
}

// TestGroupQueries checks visibility, prefix, and paging of groups.
func (s *Suite) TestGroupQueries() {
	s.makeGroup(0, "alpha", true)
	s.makeGroup(0, "beta", false)
	s.makeGroup(0, "alpine", true)
	s.makeGroup(0, "gamma", true)

	groups, err := s.Backend.Groups(model.GroupQuery{})
	if s.NoError(err) {
		s.Equal([]string{"alpha", "alpine", "gamma"}, groupNames(groups))
	}

	q := model.GroupQuery{ShowInvisible: true}
	groups, err = s.Backend.Groups(q)
	if s.NoError(err) {
		s.Equal([]string{"alpha", "alpine", "beta", "gamma"}, groupNames(groups))
	}
	count, err := s.Backend.CountGroups(q)
	if s.NoError(err) {
		s.Equal(4, count)
	}

	q = model.GroupQuery{Prefix: "alp", Offset: 1, Limit: 5}
	groups, err = s.Backend.Groups(q)
	if s.NoError(err) {
		s.Equal([]string{"alpine"}, groupNames(groups))
	}
	count, err = s.Backend.CountGroups(q)
	if s.NoError(err) {
		s.Equal(2, count)
	}

	count, err = s.Backend.CountGroups(model.GroupQuery{Prefix: "zzz"})
	if s.NoError(err) {
		s.Equal(0, count)
	}
}
