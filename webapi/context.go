// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package webapi

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/diffeo/go-webapi/apidata"
	"github.com/diffeo/go-webapi/model"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// RequestIDHeader is the HTTP header carrying a request's ID.
const RequestIDHeader = "X-Request-Id"

// Context holds all of the information and objects that can be
// extracted from a single request.
type Context struct {
	// Request is the underlying HTTP request.
	Request *http.Request

	// Vars holds the URL path parameters.
	Vars map[string]string

	// QueryParams holds the parsed URL query string.
	QueryParams url.Values

	// Fields holds submitted form fields for PUT and POST
	// requests.
	Fields map[string]string

	// Site is the site named in the URL, or nil outside any site.
	Site *model.Site

	// User is the requesting user, an anonymous user if the
	// request carried no credentials.
	User *model.User

	// Log is the request-scoped logger.
	Log *logrus.Entry
}

// Context builds the context for a request: it finds the site named
// in the URL and authenticates the user.  It fails if the site does
// not exist or the request carried bad credentials.
func (api *webAPI) Context(req *http.Request) (*Context, error) {
	ctx := &Context{
		Request:     req,
		Vars:        mux.Vars(req),
		QueryParams: req.URL.Query(),
		User:        model.Anonymous(),
	}
	if ctx.Vars == nil {
		ctx.Vars = map[string]string{}
	}
	fields := logrus.Fields{
		"method": req.Method,
		"path":   req.URL.Path,
	}
	if id := req.Header.Get(RequestIDHeader); id != "" {
		fields["request_id"] = id
	}
	ctx.Log = api.Logger.WithFields(fields)

	var err error
	ctx.Site, err = SiteFor(api.Backend, ctx.Vars["site_name"])
	if err != nil {
		return nil, err
	}
	if ctx.Site != nil {
		ctx.Log = ctx.Log.WithField("site", ctx.Site.Name)
	}

	user, err := api.Authenticator.Authenticate(req)
	if err != nil {
		return nil, err
	}
	if user.IsAuthenticated() {
		ctx.User = user
		ctx.Log = ctx.Log.WithField("user", user.Username)
	}
	return ctx, nil
}

// BoolParam looks at ctx.QueryParams for a parameter named name.  If
// it has a normally-truthy value (1, on, false, no, ...) then return
// that value.  Otherwise (empty string, foo, ...) return def.
func (ctx *Context) BoolParam(name string, def bool) bool {
	switch strings.ToLower(ctx.QueryParams.Get(name)) {
	case "0", "f", "n", "false", "off", "no":
		return false
	case "1", "t", "y", "true", "on", "yes":
		return true
	default:
		return def
	}
}

// IntParam looks at ctx.QueryParams for a parameter named name.  If
// it is a non-negative integer return it, otherwise return def.
func (ctx *Context) IntParam(name string, def int) int {
	value, err := strconv.Atoi(ctx.QueryParams.Get(name))
	if err != nil || value < 0 {
		return def
	}
	return value
}

// absoluteURL makes a server-relative URL absolute, using the scheme
// and host the request arrived with.
func (ctx *Context) absoluteURL(u *url.URL) string {
	scheme := "http"
	if ctx.Request.TLS != nil {
		scheme = "https"
	}
	if proto := ctx.Request.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	abs := *u
	abs.Scheme = scheme
	abs.Host = ctx.Request.Host
	return abs.String()
}

// link builds an apidata.Link to an absolute URL.
func link(method, href string) apidata.Link {
	return apidata.Link{Method: method, Href: href}
}
