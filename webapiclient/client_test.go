// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package webapiclient_test

import (
	"errors"
	"io/ioutil"
	"net/http/httptest"
	"testing"

	"github.com/diffeo/go-webapi/apidata"
	"github.com/diffeo/go-webapi/memory"
	"github.com/diffeo/go-webapi/model"
	"github.com/diffeo/go-webapi/webapi"
	"github.com/diffeo/go-webapi/webapiclient"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"
)

// ClientSuite runs the client against a real server over an
// in-memory backend.
type ClientSuite struct {
	suite.Suite
	Backend model.Backend
	Server  *httptest.Server
}

func (s *ClientSuite) SetupSuite() {
	model.PasswordCost = bcrypt.MinCost
}

func (s *ClientSuite) SetupTest() {
	s.Backend = memory.New()
	for _, name := range []string{"alice", "root"} {
		user := &model.User{Username: name, Superuser: name == "root"}
		s.Require().NoError(user.SetPassword(name + "-pw"))
		s.Require().NoError(s.Backend.CreateUser(user))
	}
	s.Require().NoError(s.Backend.CreateSite(&model.Site{Name: "corp", Users: []string{"alice"}}))
	for _, name := range []string{"devs", "docs", "ops"} {
		s.Require().NoError(s.Backend.CreateGroup(&model.Group{Name: name, Visible: true}))
	}
	s.Require().NoError(s.Backend.CreateGroup(&model.Group{Name: "secret"}))

	logger := logrus.New()
	logger.Out = ioutil.Discard
	router := webapi.NewRouter(s.Backend, webapi.Settings{DefaultMaxResults: 2}, logger)
	s.Server = httptest.NewServer(router)
}

func (s *ClientSuite) TearDownTest() {
	s.Server.Close()
}

func (s *ClientSuite) client(user string) *webapiclient.Client {
	var (
		c   *webapiclient.Client
		err error
	)
	if user == "" {
		c, err = webapiclient.New(s.Server.URL + "/api/")
	} else {
		c, err = webapiclient.NewWithCredentials(s.Server.URL+"/api/", user, user+"-pw")
	}
	s.Require().NoError(err)
	return c
}

func (s *ClientSuite) TestRoot() {
	c := s.client("")
	s.Equal("", c.SiteName())
	s.Equal(s.Server.URL+"/api/groups/{group_name}/", c.Representation.URITemplates["group"])
}

func (s *ClientSuite) TestBadURL() {
	_, err := webapiclient.New(s.Server.URL + "/nothing/")
	s.Error(err)
}

func (s *ClientSuite) TestCount() {
	c := s.client("")
	count, err := c.Count("groups")
	if s.NoError(err) {
		s.Equal(3, count)
	}

	count, err = c.CountGroups(webapiclient.GroupQuery{ShowInvisible: true})
	if s.NoError(err) {
		s.Equal(4, count)
	}

	count, err = c.CountGroups(webapiclient.GroupQuery{Prefix: "d"})
	if s.NoError(err) {
		s.Equal(2, count)
	}

	_, err = c.Count("widgets")
	s.Equal(webapiclient.ErrNoSuchList{Name: "widgets"}, err)
}

func (s *ClientSuite) TestGroupsPaging() {
	c := s.client("")
	groups, err := c.Groups(webapiclient.GroupQuery{ShowInvisible: true})
	if s.NoError(err) {
		names := make([]string, len(groups))
		for i, group := range groups {
			names[i] = group.Name
		}
		s.Equal([]string{"devs", "docs", "ops", "secret"}, names)
	}
}

func (s *ClientSuite) TestGroup() {
	c := s.client("")
	group, err := c.Group("devs")
	if s.NoError(err) {
		s.Equal("devs", group.Name)
		s.Equal(s.Server.URL+"/api/groups/devs/", group.Links["self"].Href)
	}

	_, err = c.Group("nope")
	s.True(errors.Is(err, apidata.ErrDoesNotExist), "%v", err)
}

func (s *ClientSuite) TestGroupLifecycle() {
	c := s.client("root")
	group, err := c.CreateGroup(map[string]interface{}{
		"name":           "qa",
		"display_name":   "Quality",
		"extra_data.foo": "bar",
	})
	if s.NoError(err) {
		s.Equal("qa", group.Name)
		s.Equal(map[string]interface{}{"foo": "bar"}, group.ExtraData)
	}

	group, err = c.UpdateGroup("qa", map[string]interface{}{
		"invite_only":    true,
		"extra_data.foo": "",
	})
	if s.NoError(err) {
		s.True(group.InviteOnly)
		s.Empty(group.ExtraData)
	}

	_, err = c.AddGroupMember("qa", "alice")
	s.NoError(err)
	members, err := c.GroupMembers("qa")
	if s.NoError(err) && s.Len(members, 1) {
		s.Equal("alice", members[0].Username)
	}
	s.NoError(c.RemoveGroupMember("qa", "alice"))
	members, err = c.GroupMembers("qa")
	if s.NoError(err) {
		s.Empty(members)
	}

	s.NoError(c.DeleteGroup("qa"))
	_, err = c.Group("qa")
	s.True(errors.Is(err, apidata.ErrDoesNotExist), "%v", err)
}

func (s *ClientSuite) TestFormErrors() {
	c := s.client("root")
	_, err := c.CreateGroup(map[string]interface{}{"name": "devs"})
	if s.IsType(apidata.ErrInvalidForm{}, err) {
		fields := err.(apidata.ErrInvalidForm).Fields
		s.Equal([]string{"This field is required."}, fields["display_name"])
	}
}

func (s *ClientSuite) TestPermissions() {
	_, err := s.client("").CreateGroup(map[string]interface{}{"name": "qa", "display_name": "QA"})
	s.True(errors.Is(err, apidata.ErrNotLoggedIn), "%v", err)
	if apiErr, ok := err.(apidata.APIError); ok {
		s.Equal(401, apiErr.HTTPStatus())
		s.Equal(apidata.BasicChallenge, apiErr.Challenge)
	}

	_, err = s.client("alice").CreateGroup(map[string]interface{}{"name": "qa", "display_name": "QA"})
	s.True(errors.Is(err, apidata.ErrPermissionDenied), "%v", err)
}

func (s *ClientSuite) TestLoginFailed() {
	_, err := webapiclient.NewWithCredentials(s.Server.URL+"/api/", "alice", "wrong")
	s.True(errors.Is(err, apidata.ErrLoginFailed), "%v", err)
}

func (s *ClientSuite) TestSite() {
	_, err := s.client("").Site("corp")
	s.True(errors.Is(err, apidata.ErrNotLoggedIn), "%v", err)

	c := s.client("alice")
	site, err := c.Site("corp")
	if s.NoError(err) {
		s.Equal("corp", site.SiteName())
		count, err := site.Count("groups")
		if s.NoError(err) {
			s.Equal(0, count)
		}
		users, err := site.Users("")
		if s.NoError(err) && s.Len(users, 1) {
			s.Equal("alice", users[0].Username)
		}
	}

	_, err = c.Site("nowhere")
	s.True(errors.Is(err, apidata.ErrDoesNotExist), "%v", err)
}

func (s *ClientSuite) TestUsersAndSites() {
	c := s.client("root")
	users, err := c.Users("")
	if s.NoError(err) {
		s.Len(users, 2)
	}
	user, err := c.User("alice")
	if s.NoError(err) {
		s.Equal("alice", user.Username)
	}
	sites, err := c.Sites()
	if s.NoError(err) && s.Len(sites, 1) {
		s.Equal("corp", sites[0].Name)
	}

	sites, err = s.client("").Sites()
	if s.NoError(err) {
		s.Empty(sites)
	}
}

func TestClient(t *testing.T) {
	suite.Run(t, &ClientSuite{})
}
