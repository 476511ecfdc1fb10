// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package webapi

import (
	"github.com/diffeo/go-webapi/apidata"
	"github.com/diffeo/go-webapi/model"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Settings holds the server-wide API options.
type Settings struct {
	// RequireSitewideLogin refuses all anonymous requests.
	RequireSitewideLogin bool

	// DefaultMaxResults is the list page size if the request
	// does not give one.
	DefaultMaxResults int

	// MaxResults is the largest page size a request may ask for.
	MaxResults int
}

// NewRouter creates a new HTTP handler that processes all API
// requests.  The API is rooted at /api/, and repeated for each site
// at /s/{site_name}/api/.  For more control over this setup, create
// a mux.Router and call PopulateRouter instead.
func NewRouter(backend model.Backend, settings Settings, logger logrus.FieldLogger) *mux.Router {
	r := mux.NewRouter()
	PopulateRouter(r, backend, settings, logger)
	return r
}

// PopulateRouter adds the API routes to an existing
// github.com/gorilla/mux router object.  Routes are named, and the
// router must not already have routes with the same names.
func PopulateRouter(r *mux.Router, backend model.Backend, settings Settings, logger logrus.FieldLogger) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	api := &webAPI{
		Backend:       backend,
		Settings:      settings,
		Logger:        logger,
		Authenticator: BasicAuthenticator{Backend: backend},
		Router:        r,
		Policy:        LoginPolicy{RequireSitewideLogin: settings.RequireSitewideLogin},
	}
	api.PopulateRouter(r)
}

// webAPI holds the persistent state for the REST API.
type webAPI struct {
	Backend       model.Backend
	Settings      Settings
	Logger        logrus.FieldLogger
	Authenticator Authenticator
	Router        *mux.Router
	Policy        LoginPolicy

	groups     *SiteResource
	groupUsers *SiteResource
	users      *SiteResource
	sites      *SiteResource
}

// generic fills in the fields every GenericResource shares.
func (api *webAPI) generic(r *GenericResource) *GenericResource {
	r.Router = api.Router
	r.DefaultMaxResults = api.Settings.DefaultMaxResults
	r.MaxResults = api.Settings.MaxResults
	return r
}

// handler creates a resource handler with no methods.
func (api *webAPI) handler(name string) *resourceHandler {
	return &resourceHandler{
		Name:    name,
		Context: api.Context,
		Logger:  api.Logger,
	}
}

// PopulateRouter adds all URL paths to a router, once at the top
// level and once inside a site.
func (api *webAPI) PopulateRouter(r *mux.Router) {
	api.groups = api.groupResource()
	api.groupUsers = api.groupUserResource()
	api.users = api.userResource()
	api.sites = api.siteResource()

	api.populate(r.PathPrefix("/api").Subrouter(), "")
	api.populate(r.PathPrefix("/s/{"+siteVar+":[A-Za-z0-9_.-]+}/api").Subrouter(), sitePrefix)
}

func (api *webAPI) populate(r *mux.Router, prefix string) {
	required := api.Policy.Required

	root := api.handler("root")
	root.Get = required(api.RootDocument)
	r.Path("/").Name(prefix + "root").Handler(root)

	groups := api.handler("review-groups")
	groups.Get = api.groups.GetList
	groups.Post = required(api.createGroup)
	r.Path("/groups/").Name(prefix + "groups").Handler(groups)

	group := api.handler("review-group")
	group.Get = api.groups.Get
	group.Put = required(api.updateGroup)
	group.Delete = required(api.deleteGroup)
	r.Path("/groups/{group_name:[A-Za-z0-9_.-]+}/").Name(prefix + "group").Handler(group)

	groupUsers := api.handler("review-group-users")
	groupUsers.Get = api.groupUsers.GetList
	groupUsers.Post = required(api.addGroupMember)
	r.Path("/groups/{group_name:[A-Za-z0-9_.-]+}/users/").Name(prefix + "group-users").Handler(groupUsers)

	groupUser := api.handler("review-group-user")
	groupUser.Get = api.groupUsers.Get
	groupUser.Delete = required(api.removeGroupMember)
	r.Path("/groups/{group_name:[A-Za-z0-9_.-]+}/users/{username}/").Name(prefix + "group-user").Handler(groupUser)

	users := api.handler("users")
	users.Get = api.users.GetList
	r.Path("/users/").Name(prefix + "users").Handler(users)

	user := api.handler("user")
	user.Get = api.users.Get
	r.Path("/users/{username}/").Name(prefix + "user").Handler(user)

	if prefix == "" {
		sites := api.handler("sites")
		sites.Get = api.sites.GetList
		r.Path("/sites/").Name("sites").Handler(sites)
	}
}

// RootDocument returns links to the lists and templates for the
// objects visible from the request's site.
func (api *webAPI) RootDocument(ctx *Context) (interface{}, error) {
	root := apidata.Root{
		Links:        apidata.Links{},
		URITemplates: map[string]string{},
	}
	if ctx.Site != nil {
		root.SiteName = ctx.Site.Name
	}
	var group, groupUsers, groupUser, user string
	b := buildURLs(api.Router, ctx).
		Link(root.Links, "self", "root").
		Link(root.Links, "groups", "groups").
		Link(root.Links, "users", "users").
		Template(&group, "group", "group_name").
		Template(&groupUsers, "group-users", "group_name").
		Template(&groupUser, "group-user", "group_name", "username").
		Template(&user, "user", "username")
	if ctx.Site == nil {
		b.Link(root.Links, "sites", "sites")
	}
	if b.Error != nil {
		return nil, b.Error
	}
	root.URITemplates["group"] = group
	root.URITemplates["group_users"] = groupUsers
	root.URITemplates["group_user"] = groupUser
	root.URITemplates["user"] = user
	return root, nil
}
