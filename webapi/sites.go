// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package webapi

import (
	"github.com/diffeo/go-webapi/apidata"
	"github.com/diffeo/go-webapi/model"
)

// siteModel provides the sites the requesting user can see:
// everything for superusers, public sites and the user's own sites
// for other users, and only public sites for anonymous users.
type siteModel struct {
	backend model.Backend
}

func (m siteModel) Query(ctx *Context, isList bool) (Query, error) {
	var q model.SiteQuery
	switch {
	case ctx.User.Superuser:
	case ctx.User.IsAuthenticated():
		q.Member = ctx.User.Username
		q.IncludePublic = true
	default:
		q.PublicOnly = true
	}
	return siteQuery{backend: m.backend, user: ctx.User, q: q}, nil
}

type siteQuery struct {
	backend model.Backend
	user    *model.User
	q       model.SiteQuery
}

func (q siteQuery) Count() (int, error) {
	return q.backend.CountSites(q.q)
}

func (q siteQuery) Fetch(offset, limit int) ([]interface{}, error) {
	sq := q.q
	sq.Offset = offset
	sq.Limit = limit
	sites, err := q.backend.Sites(sq)
	if err != nil {
		return nil, err
	}
	result := make([]interface{}, len(sites))
	for i, site := range sites {
		result[i] = site
	}
	return result, nil
}

// Get finds a site by name.  Sites the user cannot access do not
// exist.
func (q siteQuery) Get(key string) (interface{}, error) {
	site, err := q.backend.Site(key)
	if err != nil {
		return nil, err
	}
	if !site.IsAccessibleBy(q.user) {
		return nil, model.ErrNoSuchSite{Name: key}
	}
	return site, nil
}

// siteResource lists sites.  Sites have no URL of their own.
func (api *webAPI) siteResource() *SiteResource {
	generic := api.generic(&GenericResource{
		Name:      "site",
		ListKey:   "sites",
		Model:     siteModel{backend: api.Backend},
		Serialize: serializeSite,
	})
	return NewSiteResource(generic, api.Policy)
}

func serializeSite(ctx *Context, obj interface{}, href string) (interface{}, error) {
	site := obj.(*model.Site)
	return apidata.Site{
		ID:     site.ID,
		Name:   site.Name,
		Public: site.Public,
	}, nil
}
