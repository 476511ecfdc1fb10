// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package webapi

import (
	"fmt"

	"github.com/diffeo/go-webapi/apidata"
	"github.com/diffeo/go-webapi/model"
)

// userModel provides the users of the request's site, or all users
// outside a site.
type userModel struct {
	backend model.Backend
}

func (m userModel) Query(ctx *Context, isList bool) (Query, error) {
	q := model.UserQuery{SiteID: ctx.Site.SiteID()}
	if isList {
		q.Prefix = ctx.QueryParams.Get("q")
	}
	return userQuery{backend: m.backend, q: q}, nil
}

type userQuery struct {
	backend model.Backend
	q       model.UserQuery
}

func (q userQuery) Count() (int, error) {
	return q.backend.CountUsers(q.q)
}

func (q userQuery) users(offset, limit int) ([]*model.User, error) {
	uq := q.q
	uq.Offset = offset
	uq.Limit = limit
	return q.backend.Users(uq)
}

func (q userQuery) Fetch(offset, limit int) ([]interface{}, error) {
	users, err := q.users(offset, limit)
	if err != nil {
		return nil, err
	}
	result := make([]interface{}, len(users))
	for i, user := range users {
		result[i] = user
	}
	return result, nil
}

// Get finds a user by name, if the user is in the query's site and
// group.
func (q userQuery) Get(key string) (interface{}, error) {
	user, err := q.get(key)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (q userQuery) get(username string) (*model.User, error) {
	if q.q.SiteID == 0 && q.q.GroupID == 0 {
		return q.backend.User(username)
	}
	uq := model.UserQuery{SiteID: q.q.SiteID, GroupID: q.q.GroupID, Prefix: username}
	candidates, err := q.backend.Users(uq)
	if err != nil {
		return nil, err
	}
	for _, user := range candidates {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, model.ErrNoSuchUser{Username: username}
}

func (api *webAPI) userResource() *SiteResource {
	generic := api.generic(&GenericResource{
		Name:         "user",
		ListKey:      "users",
		URIObjectKey: "username",
		ObjectKey: func(obj interface{}) string {
			return obj.(*model.User).Username
		},
		Model:     userModel{backend: api.Backend},
		Serialize: serializeUser,
	})
	return NewSiteResource(generic, api.Policy)
}

func serializeUser(ctx *Context, obj interface{}, href string) (interface{}, error) {
	var user *model.User
	switch o := obj.(type) {
	case *model.User:
		user = o
	case member:
		user = o.user
	default:
		return nil, fmt.Errorf("cannot serialize %T as a user", obj)
	}
	result := apidata.User{
		Links:     apidata.Links{"self": link("GET", href)},
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		FullName:  user.FullName(),
	}
	if ctx.User.IsAuthenticated() {
		result.Email = user.Email
	}
	return result, nil
}

// member is a user seen as a member of a group.
type member struct {
	group *model.Group
	user  *model.User
}

// groupUserModel provides the members of the group named in the
// request.
type groupUserModel struct {
	backend model.Backend
}

func (m groupUserModel) Query(ctx *Context, isList bool) (Query, error) {
	group, err := m.backend.Group(ctx.Site.SiteID(), ctx.Vars["group_name"])
	if err != nil {
		return nil, err
	}
	q := model.UserQuery{GroupID: group.ID}
	if isList {
		q.Prefix = ctx.QueryParams.Get("q")
	}
	return memberQuery{userQuery: userQuery{backend: m.backend, q: q}, group: group}, nil
}

type memberQuery struct {
	userQuery
	group *model.Group
}

func (q memberQuery) Fetch(offset, limit int) ([]interface{}, error) {
	users, err := q.users(offset, limit)
	if err != nil {
		return nil, err
	}
	result := make([]interface{}, len(users))
	for i, user := range users {
		result[i] = member{group: q.group, user: user}
	}
	return result, nil
}

func (q memberQuery) Get(key string) (interface{}, error) {
	user, err := q.get(key)
	if err != nil {
		return nil, err
	}
	return member{group: q.group, user: user}, nil
}

func (api *webAPI) groupUserResource() *SiteResource {
	generic := api.generic(&GenericResource{
		Name:         "group-user",
		ListKey:      "users",
		URIObjectKey: "username",
		ObjectKey: func(obj interface{}) string {
			return obj.(member).user.Username
		},
		Model:     groupUserModel{backend: api.Backend},
		Serialize: serializeUser,
	})
	sr := NewSiteResource(generic, api.Policy)
	sr.ParentIDs = func(obj interface{}) map[string]string {
		return map[string]string{"group_name": obj.(member).group.Name}
	}
	return sr
}

// requireMembershipChange returns an error unless the request's user
// may add or remove user from group.  Site administrators may change
// anyone; users may remove themselves, and add themselves to groups
// that are not invite-only.
func requireMembershipChange(ctx *Context, group *model.Group, user *model.User, adding bool) error {
	if requireMutable(ctx) == nil {
		return nil
	}
	if ctx.User.IsAuthenticated() && ctx.User.ID == user.ID && !(adding && group.InviteOnly) {
		return nil
	}
	return NoAccessError(ctx.User)
}

// mayChangeMembership is the check made before looking at the target
// user at all, so that callers without rights learn nothing about
// which users exist.
func mayChangeMembership(ctx *Context, username string) error {
	if !ctx.User.IsAuthenticated() {
		return NoAccessError(ctx.User)
	}
	if requireMutable(ctx) != nil && username != ctx.User.Username {
		return NoAccessError(ctx.User)
	}
	return nil
}

func (api *webAPI) addGroupMember(ctx *Context) (interface{}, error) {
	group, err := api.Backend.Group(ctx.Site.SiteID(), ctx.Vars["group_name"])
	if err != nil {
		return nil, err
	}
	if err := mayChangeMembership(ctx, ctx.Fields["username"]); err != nil {
		return nil, err
	}

	form := NewForm(ctx.Fields)
	form.Require("username")
	if err := form.Err(); err != nil {
		return nil, err
	}
	username := ctx.Fields["username"]
	user, err := api.Backend.User(username)
	if model.IsNotFound(err) {
		form.AddError("username", fmt.Errorf("User %q does not exist.", username))
	} else if err != nil {
		return nil, err
	} else if ctx.Site != nil && !ctx.Site.IsAccessibleBy(user) {
		form.AddError("username", fmt.Errorf("User %q is not a member of this site.", username))
	}
	if err := form.Err(); err != nil {
		return nil, err
	}

	if err := requireMembershipChange(ctx, group, user, true); err != nil {
		return nil, err
	}
	if err := api.Backend.AddGroupMember(group, user); err != nil {
		return nil, err
	}

	obj := member{group: group, user: user}
	href, err := api.groupUsers.Href(ctx, obj)
	if err != nil {
		return nil, err
	}
	body, err := serializeUser(ctx, obj, href)
	if err != nil {
		return nil, err
	}
	return responseCreated{Location: href, Body: body}, nil
}

func (api *webAPI) removeGroupMember(ctx *Context) (interface{}, error) {
	if err := mayChangeMembership(ctx, ctx.Vars["username"]); err != nil {
		return nil, err
	}
	q, err := groupUserModel{backend: api.Backend}.Query(ctx, false)
	if err != nil {
		return nil, err
	}
	obj, err := q.Get(ctx.Vars["username"])
	if err != nil {
		return nil, err
	}
	m := obj.(member)
	if err := requireMembershipChange(ctx, m.group, m.user, false); err != nil {
		return nil, err
	}
	if err := api.Backend.RemoveGroupMember(m.group, m.user); err != nil {
		return nil, err
	}
	return nil, nil
}
