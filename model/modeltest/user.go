// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package modeltest

import (
	"github.com/diffeo/go-webapi/model"
)

// TestUserCreateLookup checks the basic user lifecycle.
func (s *Suite) TestUserCreateLookup() {
	_, err := s.Backend.User("alice")
	s.Equal(model.ErrNoSuchUser{Username: "alice"}, err)

	user := &model.User{
		Username:  "alice",
		FirstName: "Alice",
		LastName:  "Liddell",
		Email:     "alice@example.com",
		Superuser: true,
	}
	s.Require().NoError(user.SetPassword("rabbit"))
	s.Require().NoError(s.Backend.CreateUser(user))
	s.NotZero(user.ID)

	found, err := s.Backend.User("alice")
	if s.NoError(err) {
		s.Equal(user.ID, found.ID)
		s.Equal("Alice", found.FirstName)
		s.Equal("Liddell", found.LastName)
		s.Equal("alice@example.com", found.Email)
		s.True(found.Superuser)
		s.NoError(found.CheckPassword("rabbit"))
	}

	err = s.Backend.CreateUser(&model.User{Username: "alice"})
	s.Equal(model.ErrDuplicateUser, err)
}

// TestUserQueries checks site, group, and prefix filtering of users.
func (s *Suite) TestUserQueries() {
	alice := s.makeUser("alice")
	s.makeUser("albert")
	bob := s.makeUser("bob")
	s.makeUser("carol")
	site := s.makeSite("corp", false, []string{"alice", "bob"}, []string{"carol"})
	group := s.makeGroup(site.ID, "devs", true)
	s.Require().NoError(s.Backend.AddGroupMember(group, alice))
	s.Require().NoError(s.Backend.AddGroupMember(group, bob))

	users, err := s.Backend.Users(model.UserQuery{})
	if s.NoError(err) {
		s.Equal([]string{"albert", "alice", "bob", "carol"}, userNames(users))
	}

	users, err = s.Backend.Users(model.UserQuery{Prefix: "al"})
	if s.NoError(err) {
		s.Equal([]string{"albert", "alice"}, userNames(users))
	}

	q := model.UserQuery{SiteID: site.ID}
	users, err = s.Backend.Users(q)
	if s.NoError(err) {
		s.Equal([]string{"alice", "bob", "carol"}, userNames(users))
	}
	count, err := s.Backend.CountUsers(q)
	if s.NoError(err) {
		s.Equal(3, count)
	}

	q = model.UserQuery{GroupID: group.ID, Limit: 1}
	users, err = s.Backend.Users(q)
	if s.NoError(err) {
		s.Equal([]string{"alice"}, userNames(users))
	}
	count, err = s.Backend.CountUsers(q)
	if s.NoError(err) {
		s.Equal(2, count)
	}

	s.NoError(s.Backend.RemoveGroupMember(group, alice))
	s.NoError(s.Backend.RemoveGroupMember(group, alice))
	count, err = s.Backend.CountUsers(model.UserQuery{GroupID: group.ID})
	if s.NoError(err) {
		s.Equal(1, count)
	}
}
