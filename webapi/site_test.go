// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package webapi

import (
	"net/http/httptest"
	"testing"

	"github.com/diffeo/go-webapi/apidata"
	"github.com/diffeo/go-webapi/memory"
	"github.com/diffeo/go-webapi/model"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

// fakeModel serves a fixed list of names and counts how it is used.
type fakeModel struct {
	Names   []string
	Lists   []bool
	Counted int
	Fetched int
}

func (m *fakeModel) Query(ctx *Context, isList bool) (Query, error) {
	m.Lists = append(m.Lists, isList)
	return fakeQuery{m}, nil
}

type fakeQuery struct {
	m *fakeModel
}

func (q fakeQuery) Count() (int, error) {
	q.m.Counted++
	return len(q.m.Names), nil
}

func (q fakeQuery) Fetch(offset, limit int) ([]interface{}, error) {
	q.m.Fetched++
	start, end := model.Window(len(q.m.Names), offset, limit)
	result := []interface{}{}
	for _, name := range q.m.Names[start:end] {
		result = append(result, name)
	}
	return result, nil
}

func (q fakeQuery) Get(key string) (interface{}, error) {
	for _, name := range q.m.Names {
		if name == key {
			return name, nil
		}
	}
	return nil, model.ErrNoSuchGroup{Name: key}
}

// fakeResource records which of its methods were called.
type fakeResource struct {
	Calls []string
}

func (r *fakeResource) Get(ctx *Context) (interface{}, error) {
	r.Calls = append(r.Calls, "Get")
	return "item", nil
}

func (r *fakeResource) GetList(ctx *Context) (interface{}, error) {
	r.Calls = append(r.Calls, "GetList")
	return "list", nil
}

func (r *fakeResource) Href(ctx *Context, obj interface{}) (string, error) {
	r.Calls = append(r.Calls, "Href")
	return "", nil
}

// newTestContext creates a context for an anonymous request.
func newTestContext(method, target string) *Context {
	req := httptest.NewRequest(method, target, nil)
	return &Context{
		Request:     req,
		Vars:        map[string]string{},
		QueryParams: req.URL.Query(),
		User:        model.Anonymous(),
		Log:         logrus.NewEntry(logrus.New()),
	}
}

func TestCountsOnly(t *testing.T) {
	for _, names := range [][]string{{"a", "b", "c"}, {}} {
		m := &fakeModel{Names: names}
		inner := &fakeResource{}
		sr := &SiteResource{Resource: inner, Model: m}

		out, err := sr.GetList(newTestContext("GET", "/api/groups/?counts-only=1"))
		if assert.NoError(t, err) {
			assert.Equal(t, apidata.Count{Count: len(names)}, out)
		}
		assert.Empty(t, inner.Calls)
		assert.Equal(t, []bool{true}, m.Lists)
		assert.Equal(t, 1, m.Counted)
		assert.Equal(t, 0, m.Fetched)
	}
}

func TestCountsOnlyFalse(t *testing.T) {
	for _, query := range []string{"", "?counts-only=0", "?counts-only=no", "?counts-only="} {
		m := &fakeModel{Names: []string{"a"}}
		inner := &fakeResource{}
		sr := &SiteResource{Resource: inner, Model: m}

		out, err := sr.GetList(newTestContext("GET", "/api/groups/"+query))
		if assert.NoError(t, err) {
			assert.Equal(t, "list", out, "query %q", query)
		}
		assert.Equal(t, []string{"GetList"}, inner.Calls)
		assert.Equal(t, 0, m.Counted)
	}
}

func TestCountsOnlyNoModel(t *testing.T) {
	inner := &fakeResource{}
	sr := &SiteResource{Resource: inner}

	out, err := sr.GetList(newTestContext("GET", "/api/groups/?counts-only=1"))
	if assert.NoError(t, err) {
		assert.Equal(t, "list", out)
	}
	assert.Equal(t, []string{"GetList"}, inner.Calls)
}

func TestListImpl(t *testing.T) {
	m := &fakeModel{Names: []string{"a", "b"}}
	inner := &fakeResource{}
	sr := &SiteResource{
		Resource: inner,
		Model:    m,
		ListImpl: func(ctx *Context) (interface{}, error) {
			return "custom", nil
		},
	}

	out, err := sr.GetList(newTestContext("GET", "/api/groups/"))
	if assert.NoError(t, err) {
		assert.Equal(t, "custom", out)
	}

	out, err = sr.GetList(newTestContext("GET", "/api/groups/?counts-only=true"))
	if assert.NoError(t, err) {
		assert.Equal(t, apidata.Count{Count: 2}, out)
	}
	assert.Empty(t, inner.Calls)
}

// hrefRouter has the group member routes, at the top level and in
// a site.
func hrefRouter() *mux.Router {
	r := mux.NewRouter()
	r.PathPrefix("/api").Subrouter().
		Path("/groups/{group_name}/users/{username}/").Name("group-user")
	r.PathPrefix("/s/{site_name}/api").Subrouter().
		Path("/groups/{group_name}/users/{username}/").Name("site:group-user")
	return r
}

func TestHrefNoKey(t *testing.T) {
	sr := &SiteResource{Resource: &fakeResource{}, Name: "group-user", Router: hrefRouter()}
	href, err := sr.Href(newTestContext("GET", "/api/"), "alice")
	if assert.NoError(t, err) {
		assert.Equal(t, "", href)
	}
}

func TestHref(t *testing.T) {
	sr := &SiteResource{
		Resource:     &fakeResource{},
		Name:         "group-user",
		URIObjectKey: "username",
		ObjectKey: func(obj interface{}) string {
			return obj.(string)
		},
		ParentIDs: func(obj interface{}) map[string]string {
			return map[string]string{"group_name": "devs"}
		},
		Router: hrefRouter(),
	}

	ctx := newTestContext("GET", "/api/")
	href, err := sr.Href(ctx, "alice")
	if assert.NoError(t, err) {
		assert.Equal(t, "http://example.com/api/groups/devs/users/alice/", href)
	}

	ctx.Site = &model.Site{Name: "corp"}
	href, err = sr.Href(ctx, "alice")
	if assert.NoError(t, err) {
		assert.Equal(t, "http://example.com/s/corp/api/groups/devs/users/alice/", href)
	}

	ctx.Request.Header.Set("X-Forwarded-Proto", "https")
	href, err = sr.Href(ctx, "bob")
	if assert.NoError(t, err) {
		assert.Equal(t, "https://example.com/s/corp/api/groups/devs/users/bob/", href)
	}
}

func TestHrefNoRoute(t *testing.T) {
	sr := &SiteResource{
		Resource:     &fakeResource{},
		Name:         "missing",
		URIObjectKey: "username",
		ObjectKey: func(obj interface{}) string {
			return obj.(string)
		},
		Router: hrefRouter(),
	}
	_, err := sr.Href(newTestContext("GET", "/api/"), "alice")
	assert.Error(t, err)
}

func TestNoAccessError(t *testing.T) {
	assert.Equal(t, apidata.ErrNotLoggedIn, NoAccessError(model.Anonymous()))
	assert.Equal(t, apidata.ErrNotLoggedIn, NoAccessError(nil))
	assert.Equal(t, apidata.ErrPermissionDenied,
		NoAccessError(&model.User{ID: 1, Username: "alice"}))
}

func TestLoginPolicy(t *testing.T) {
	alice := &model.User{ID: 1, Username: "alice"}
	carol := &model.User{ID: 3, Username: "carol"}
	corp := &model.Site{Name: "corp", Users: []string{"alice"}}
	open := &model.Site{Name: "open", Public: true}

	tests := []struct {
		Name    string
		Policy  LoginPolicy
		Site    *model.Site
		User    *model.User
		Header  string
		Allowed bool
		Err     error
	}{
		{"anonymous", LoginPolicy{}, nil, model.Anonymous(), "", true, nil},
		{"sitewide anonymous", LoginPolicy{RequireSitewideLogin: true}, nil, model.Anonymous(), "", false, apidata.ErrNotLoggedIn},
		{"sitewide user", LoginPolicy{RequireSitewideLogin: true}, nil, alice, "", true, nil},
		{"bad credentials", LoginPolicy{}, nil, model.Anonymous(), "Bearer xyzzy", false, apidata.ErrNotLoggedIn},
		{"private anonymous", LoginPolicy{}, corp, model.Anonymous(), "", false, apidata.ErrNotLoggedIn},
		{"private outsider", LoginPolicy{}, corp, carol, "", false, apidata.ErrPermissionDenied},
		{"private member", LoginPolicy{}, corp, alice, "", true, nil},
		{"public anonymous", LoginPolicy{}, open, model.Anonymous(), "", true, nil},
		{"public sitewide", LoginPolicy{RequireSitewideLogin: true}, open, model.Anonymous(), "", false, apidata.ErrNotLoggedIn},
	}
	for _, test := range tests {
		inner := &fakeResource{}
		sr := &SiteResource{Resource: inner, Policy: test.Policy}

		for _, op := range []func(*Context) (interface{}, error){sr.Get, sr.GetList} {
			ctx := newTestContext("GET", "/api/")
			ctx.Site = test.Site
			ctx.User = test.User
			if test.Header != "" {
				ctx.Request.Header.Set("Authorization", test.Header)
			}
			_, err := op(ctx)
			assert.Equal(t, test.Err, err, test.Name)
		}
		if test.Allowed {
			assert.Equal(t, []string{"Get", "GetList"}, inner.Calls, test.Name)
		} else {
			assert.Empty(t, inner.Calls, test.Name)
		}
	}
}

func TestCountsOnlyRequiresLogin(t *testing.T) {
	m := &fakeModel{Names: []string{"a"}}
	sr := &SiteResource{
		Resource: &fakeResource{},
		Model:    m,
		Policy:   LoginPolicy{RequireSitewideLogin: true},
	}
	_, err := sr.GetList(newTestContext("GET", "/api/groups/?counts-only=1"))
	assert.Equal(t, apidata.ErrNotLoggedIn, err)
	assert.Empty(t, m.Lists)
}

func TestSiteFor(t *testing.T) {
	backend := memory.New()
	if !assert.NoError(t, backend.CreateSite(&model.Site{Name: "corp"})) {
		return
	}

	site, err := SiteFor(backend, "")
	assert.NoError(t, err)
	assert.Nil(t, site)

	_, err = SiteFor(backend, "nope")
	assert.Equal(t, model.ErrNoSuchSite{Name: "nope"}, err)

	site, err = SiteFor(backend, "corp")
	if assert.NoError(t, err) && assert.NotNil(t, site) {
		assert.Equal(t, "corp", site.Name)
	}
}

func TestGenericResource(t *testing.T) {
	r := mux.NewRouter()
	r.Path("/api/things/{thing}/").Name("thing")
	m := &fakeModel{Names: []string{"a", "b", "c"}}
	generic := &GenericResource{
		Name:         "thing",
		ListKey:      "things",
		URIObjectKey: "thing",
		ObjectKey: func(obj interface{}) string {
			return obj.(string)
		},
		Model: m,
		Serialize: func(ctx *Context, obj interface{}, href string) (interface{}, error) {
			return href, nil
		},
		Router:            r,
		DefaultMaxResults: 2,
	}

	ctx := newTestContext("GET", "/api/things/b/")
	ctx.Vars["thing"] = "b"
	out, err := generic.Get(ctx)
	if assert.NoError(t, err) {
		assert.Equal(t, "http://example.com/api/things/b/", out)
	}
	assert.Equal(t, []bool{false}, m.Lists)

	ctx.Vars["thing"] = "z"
	_, err = generic.Get(ctx)
	assert.Equal(t, model.ErrNoSuchGroup{Name: "z"}, err)

	out, err = generic.GetList(newTestContext("GET", "/api/things/"))
	if assert.NoError(t, err) && assert.IsType(t, map[string]interface{}{}, out) {
		list := out.(map[string]interface{})
		assert.Equal(t, []interface{}{
			"http://example.com/api/things/a/",
			"http://example.com/api/things/b/",
		}, list["things"])
		assert.Equal(t, 3, list["total_results"])
		links := list["links"].(apidata.Links)
		assert.Equal(t, "http://example.com/api/things/", links["self"].Href)
		assert.Equal(t, "http://example.com/api/things/?max-results=2&start=2", links["next"].Href)
		assert.NotContains(t, links, "prev")
	}

	out, err = generic.GetList(newTestContext("GET", "/api/things/?start=2&max-results=1"))
	if assert.NoError(t, err) {
		list := out.(map[string]interface{})
		assert.Equal(t, []interface{}{"http://example.com/api/things/c/"}, list["things"])
		links := list["links"].(apidata.Links)
		assert.NotContains(t, links, "next")
		assert.Equal(t, "http://example.com/api/things/?max-results=1&start=1", links["prev"].Href)
	}
}

func TestGenericResourceHugeStart(t *testing.T) {
	r := mux.NewRouter()
	r.Path("/api/things/{thing}/").Name("thing")
	generic := &GenericResource{
		Name:         "thing",
		ListKey:      "things",
		URIObjectKey: "thing",
		ObjectKey: func(obj interface{}) string {
			return obj.(string)
		},
		Model: &fakeModel{Names: []string{"a", "b", "c"}},
		Serialize: func(ctx *Context, obj interface{}, href string) (interface{}, error) {
			return href, nil
		},
		Router:            r,
		DefaultMaxResults: 2,
	}
	out, err := generic.GetList(newTestContext("GET", "/api/things/?start=9223372036854775807"))
	if assert.NoError(t, err) {
		list := out.(map[string]interface{})
		assert.Empty(t, list["things"])
		assert.Equal(t, 3, list["total_results"])
		links := list["links"].(apidata.Links)
		assert.NotContains(t, links, "next")
		assert.Equal(t, "http://example.com/api/things/?max-results=2&start=1", links["prev"].Href)
	}
}

func TestGenericResourceLinker(t *testing.T) {
	m := &fakeModel{Names: []string{"a"}}
	generic := &GenericResource{
		Name:         "thing",
		URIObjectKey: "thing",
		ObjectKey: func(obj interface{}) string {
			return obj.(string)
		},
		Model: m,
		Serialize: func(ctx *Context, obj interface{}, href string) (interface{}, error) {
			return href, nil
		},
		Router: hrefRouter(),
	}
	sr := NewSiteResource(generic, LoginPolicy{})
	assert.Equal(t, sr, generic.Linker)
	assert.Equal(t, "thing", sr.Name)
	assert.Equal(t, Model(m), sr.Model)

	// Serialization goes through the wrapper's Href
	sr.Name = "group-user"
	sr.ParentIDs = func(obj interface{}) map[string]string {
		return map[string]string{"group_name": "devs"}
	}
	sr.URIObjectKey = "username"
	ctx := newTestContext("GET", "/s/corp/api/")
	ctx.Site = &model.Site{Name: "corp", Public: true}
	ctx.Vars["thing"] = "a"
	out, err := sr.Get(ctx)
	if assert.NoError(t, err) {
		assert.Equal(t, "http://example.com/s/corp/api/groups/devs/users/a/", out)
	}
}
