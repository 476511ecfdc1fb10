// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package webapi

import (
	"github.com/diffeo/go-webapi/apidata"
	"github.com/diffeo/go-webapi/model"
	"github.com/gorilla/mux"
)

// SiteResource wraps a Resource with the site conventions: login
// checks on reads, counts-only lists, and site-aware object URLs.
type SiteResource struct {
	// Resource is the wrapped resource.
	Resource Resource

	// Name is the route name of a single object.
	Name string

	// URIObjectKey is the URL path parameter naming a single
	// object.  If empty, objects have no URL.
	URIObjectKey string

	// ObjectKey returns the value of URIObjectKey for an object.
	ObjectKey func(obj interface{}) string

	// ParentIDs returns the URL path parameters identifying an
	// object's parents, if any.
	ParentIDs func(obj interface{}) map[string]string

	// Model, if set, enables counts-only lists.
	Model Model

	// ListImpl produces list responses.  If nil, the wrapped
	// resource's GetList is used.  Counts-only requests never
	// reach it.
	ListImpl HandlerFunc

	// Router holds the named routes.
	Router *mux.Router

	// Policy decides which requests must be logged in.
	Policy LoginPolicy
}

// NewSiteResource wraps a GenericResource, copying its naming and
// model, and makes the generic resource build its embedded URLs
// through the wrapper.
func NewSiteResource(generic *GenericResource, policy LoginPolicy) *SiteResource {
	sr := &SiteResource{
		Resource:     generic,
		Name:         generic.Name,
		URIObjectKey: generic.URIObjectKey,
		ObjectKey:    generic.ObjectKey,
		Model:        generic.Model,
		Router:       generic.Router,
		Policy:       policy,
	}
	generic.Linker = sr
	return sr
}

// Get returns the serialized object, after checking login.
func (sr *SiteResource) Get(ctx *Context) (interface{}, error) {
	return sr.Policy.Required(sr.Resource.Get)(ctx)
}

// GetList returns a list of objects, after checking login.  If a
// model is configured and the request has a true "counts-only" query
// parameter, returns only the number of objects the list would
// contain.
func (sr *SiteResource) GetList(ctx *Context) (interface{}, error) {
	return sr.Policy.Required(sr.getList)(ctx)
}

func (sr *SiteResource) getList(ctx *Context) (interface{}, error) {
	if sr.Model != nil && ctx.BoolParam("counts-only", false) {
		q, err := sr.Model.Query(ctx, true)
		if err != nil {
			return nil, err
		}
		count, err := q.Count()
		if err != nil {
			return nil, err
		}
		return apidata.Count{Count: count}, nil
	}
	if sr.ListImpl != nil {
		return sr.ListImpl(ctx)
	}
	return sr.Resource.GetList(ctx)
}

// Href returns the absolute URL of obj, inside the request's site if
// there is one.  Returns an empty string if the resource has no
// URIObjectKey.
func (sr *SiteResource) Href(ctx *Context, obj interface{}) (string, error) {
	if sr.URIObjectKey == "" {
		return "", nil
	}
	params := map[string]string{
		sr.URIObjectKey: sr.ObjectKey(obj),
	}
	if sr.ParentIDs != nil {
		for key, value := range sr.ParentIDs(obj) {
			params[key] = value
		}
	}
	var href string
	err := buildURLsFrom(sr.Router, ctx, params).URL(&href, sr.Name).Error
	return href, err
}

// LoginPolicy decides whether requests must be logged in.
type LoginPolicy struct {
	// RequireSitewideLogin requires every request to be logged in.
	RequireSitewideLogin bool
}

// Check returns an error if the request may not proceed.  Inside a
// site, the user must be able to access the site.  Anonymous users
// are refused if the policy requires login everywhere, or if they
// sent an Authorization: header that did not identify anyone.
func (p LoginPolicy) Check(ctx *Context) error {
	if ctx.Site != nil && !ctx.Site.IsAccessibleBy(ctx.User) {
		return NoAccessError(ctx.User)
	}
	if ctx.User.IsAuthenticated() {
		return nil
	}
	if p.RequireSitewideLogin || ctx.Request.Header.Get("Authorization") != "" {
		return apidata.ErrNotLoggedIn
	}
	return nil
}

// Required wraps a handler so it only runs if Check passes.
func (p LoginPolicy) Required(h HandlerFunc) HandlerFunc {
	return func(ctx *Context) (interface{}, error) {
		if err := p.Check(ctx); err != nil {
			return nil, err
		}
		return h(ctx)
	}
}

// NoAccessError returns the error for a user who may not do
// something: ErrNotLoggedIn for anonymous users, who might be allowed
// after logging in, and ErrPermissionDenied for everyone else.
func NoAccessError(user *model.User) error {
	if user.IsAuthenticated() {
		return apidata.ErrPermissionDenied
	}
	return apidata.ErrNotLoggedIn
}

// SiteFor finds a site by name.  An empty name means no site, and
// returns nil with no error.  An unknown name returns
// model.ErrNoSuchSite.
func SiteFor(backend model.Backend, name string) (*model.Site, error) {
	if name == "" {
		return nil, nil
	}
	return backend.Site(name)
}

// requireMutable returns an error unless the request's user may
// change objects in the request's site, or global objects outside
// any site.
func requireMutable(ctx *Context) error {
	if !ctx.User.IsAuthenticated() {
		return NoAccessError(ctx.User)
	}
	if ctx.Site != nil {
		if !ctx.Site.IsMutableBy(ctx.User) {
			return NoAccessError(ctx.User)
		}
		return nil
	}
	if !ctx.User.Superuser {
		return NoAccessError(ctx.User)
	}
	return nil
}
