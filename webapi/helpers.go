// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package webapi

// This file contains the site-aware URL reverser.  Every route is
// registered twice, once at the top level and once under the site
// prefix with sitePrefix on its name; the reverser picks whichever
// matches the request.

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/diffeo/go-webapi/apidata"
	"github.com/gorilla/mux"
)

// sitePrefix is prepended to the names of site-scoped routes.
const sitePrefix = "site:"

// siteVar is the URL path parameter holding the site name.
const siteVar = "site_name"

type urlBuilder struct {
	Router *mux.Router
	Ctx    *Context
	Params []string
	Error  error
}

// buildURLs starts building URLs for a request.  params are
// alternating names and values of URL path parameters.  If the
// request is inside a site, the site name is added to them.
func buildURLs(router *mux.Router, ctx *Context, params ...string) *urlBuilder {
	if ctx.Site != nil {
		params = append(params, siteVar, ctx.Site.Name)
	}
	return &urlBuilder{Router: router, Ctx: ctx, Params: params}
}

// buildURLsFrom is buildURLs with the path parameters in a map.
func buildURLsFrom(router *mux.Router, ctx *Context, params map[string]string) *urlBuilder {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, key := range keys {
		pairs = append(pairs, key, params[key])
	}
	return buildURLs(router, ctx, pairs...)
}

// Route finds the named route, or its site-scoped version if the
// request is inside a site.
func (u *urlBuilder) Route(route string) *mux.Route {
	if u.Error != nil {
		return nil
	}
	if u.Ctx.Site != nil {
		route = sitePrefix + route
	}
	r := u.Router.Get(route)
	if r == nil {
		u.Error = fmt.Errorf("No such route %q", route)
	}
	return r
}

// reverse produces the server-relative URL of a route.
func (u *urlBuilder) reverse(route string, params []string) *url.URL {
	r := u.Route(route)
	if u.Error != nil {
		return nil
	}
	var result *url.URL
	result, u.Error = r.URL(params...)
	return result
}

// URL stores the absolute URL of a route in out.
func (u *urlBuilder) URL(out *string, route string) *urlBuilder {
	if url := u.reverse(route, u.Params); u.Error == nil {
		*out = u.Ctx.absoluteURL(url)
	}
	return u
}

// Link stores a GET link to a route in links.
func (u *urlBuilder) Link(links apidata.Links, name, route string) *urlBuilder {
	var href string
	u.URL(&href, route)
	if u.Error == nil {
		links[name] = link("GET", href)
	}
	return u
}

// Template stores an RFC 6570 URI template for a route in out.
// Each of params is left as a {param} template variable; all other
// path parameters come from the builder.
func (u *urlBuilder) Template(out *string, route string, params ...string) *urlBuilder {
	pairs := make([]string, 0, 2*len(params)+len(u.Params))
	for i, param := range params {
		pairs = append(pairs, param, placeholder(i))
	}
	pairs = append(pairs, u.Params...)
	url := u.reverse(route, pairs)
	if u.Error == nil {
		s := u.Ctx.absoluteURL(url)
		for i, param := range params {
			s = strings.Replace(s, placeholder(i), "{"+param+"}", 1)
		}
		*out = s
	}
	return u
}

// placeholder is a stand-in path parameter value that will be
// replaced by a template variable.
func placeholder(i int) string {
	return "---" + strconv.Itoa(i)
}
