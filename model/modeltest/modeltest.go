// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package modeltest provides generic functional tests for the
// model.Backend interface.  A typical backend test module needs to
// wrap Suite to create its backend:
//
//     package mybackend
//
//     import (
//             "testing"
//             "github.com/diffeo/go-webapi/model/modeltest"
//             "github.com/stretchr/testify/suite"
//     )
//
//     // Suite is the per-backend generic test suite.
//     type Suite struct{
//             modeltest.Suite
//     }
//
//     // SetupTest creates an empty backend for every test.
//     func (s *Suite) SetupTest() {
//             s.Backend = NewWithClock(s.Clock)
//     }
//
//     // TestBackend runs the generic backend tests.
//     func TestBackend(t *testing.T) {
//             suite.Run(t, &Suite{})
//     }
package modeltest

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-webapi/model"
	"github.com/stretchr/testify/suite"
)

// Suite is the generic backend test suite.
type Suite struct {
	suite.Suite

	// Clock contains the alternate time source to be used in tests.  It
	// is pre-initialized to a mock clock.
	Clock *clock.Mock

	// Backend contains the interface to the backend under test.
	// Importing packages must set it to an empty backend before
	// each test.
	Backend model.Backend
}

// SetupSuite does one-time initialization for the test suite.
func (s *Suite) SetupSuite() {
	s.Clock = clock.NewMock()
	s.Clock.Set(time.Date(2017, 3, 14, 15, 9, 26, 0, time.UTC))
}

// makeUser creates a user or fails the test.
func (s *Suite) makeUser(username string) *model.User {
	user := &model.User{Username: username, Email: username + "@example.com"}
	err := s.Backend.CreateUser(user)
	s.Require().NoError(err)
	s.Require().NotZero(user.ID)
	return user
}

// makeSite creates a site or fails the test.
func (s *Suite) makeSite(name string, public bool, users, admins []string) *model.Site {
	site := &model.Site{Name: name, Public: public, Users: users, Admins: admins}
	err := s.Backend.CreateSite(site)
	s.Require().NoError(err)
	s.Require().NotZero(site.ID)
	return site
}

// makeGroup creates a group or fails the test.
func (s *Suite) makeGroup(siteID int, name string, visible bool) *model.Group {
	group := &model.Group{
		SiteID:      siteID,
		Name:        name,
		DisplayName: "Group " + name,
		Visible:     visible,
	}
	err := s.Backend.CreateGroup(group)
	s.Require().NoError(err)
	s.Require().NotZero(group.ID)
	return group
}

func userNames(users []*model.User) []string {
	names := make([]string, len(users))
	for i, user := range users {
		names[i] = user.Username
	}
	return names
}

func groupNames(groups []*model.Group) []string {
	names := make([]string, len(groups))
	for i, group := range groups {
		names[i] = group.Name
	}
	return names
}

func siteNames(sites []*model.Site) []string {
	names := make([]string, len(sites))
	for i, site := range sites {
		names[i] = site.Name
	}
	return names
}
