// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package webapi

import (
	"fmt"
	"strconv"

	"github.com/diffeo/go-webapi/apidata"
	"github.com/gorilla/mux"
)

// Resource is a REST resource that can retrieve one object, retrieve
// a list of objects, and build the URL of an object.
type Resource interface {
	// Get returns the representation of the object named by the
	// request.
	Get(ctx *Context) (interface{}, error)

	// GetList returns the representation of a list of objects.
	GetList(ctx *Context) (interface{}, error)

	// Href returns the absolute URL of obj, or an empty string if
	// obj has no URL of its own.
	Href(ctx *Context, obj interface{}) (string, error)
}

// Model provides the objects behind a resource.
type Model interface {
	// Query returns the objects visible to a request.  isList is
	// true for list requests, and false for single-object
	// requests, which may see objects lists hide.
	Query(ctx *Context, isList bool) (Query, error)
}

// Query is a filtered set of objects.
type Query interface {
	// Count returns the number of objects in the set, without
	// retrieving them.
	Count() (int, error)

	// Fetch retrieves up to limit objects, skipping the first
	// offset.
	Fetch(offset, limit int) ([]interface{}, error)

	// Get retrieves the single object with some key.  If it is
	// not in the set, returns a not-found error.
	Get(key string) (interface{}, error)
}

// Linker builds object URLs.  Resource implements it.
type Linker interface {
	Href(ctx *Context, obj interface{}) (string, error)
}

// Default paging limits for list resources.
const (
	DefaultMaxResults = 25
	MaxResults        = 200
)

// GenericResource is a Resource built from a Model and a serializer.
// It knows nothing about sites or permissions.
type GenericResource struct {
	// Name is the route name of a single object, such as
	// "group".
	Name string

	// ListKey is the key lists put their objects under, such as
	// "groups".
	ListKey string

	// URIObjectKey is the URL path parameter naming a single
	// object.  If empty, objects have no URL of their own.
	URIObjectKey string

	// ObjectKey returns the value of URIObjectKey for an object.
	ObjectKey func(obj interface{}) string

	// Model provides the objects.
	Model Model

	// Serialize converts an object to its representation.  href
	// is the object's URL, possibly empty.
	Serialize func(ctx *Context, obj interface{}, href string) (interface{}, error)

	// Router holds the named routes for this resource.
	Router *mux.Router

	// Linker builds the URLs embedded in representations.  If
	// nil, the resource's own Href is used.
	Linker Linker

	// DefaultMaxResults and MaxResults bound list pages.  Zero
	// means the package defaults.
	DefaultMaxResults int
	MaxResults        int
}

// Get returns the object named by URIObjectKey in the request.
func (r *GenericResource) Get(ctx *Context) (interface{}, error) {
	if r.Model == nil || r.URIObjectKey == "" {
		return nil, errMethodNotAllowed{Method: ctx.Request.Method}
	}
	q, err := r.Model.Query(ctx, false)
	if err != nil {
		return nil, err
	}
	obj, err := q.Get(ctx.Vars[r.URIObjectKey])
	if err != nil {
		return nil, err
	}
	return r.serialize(ctx, obj)
}

// GetList returns a page of objects along with the total count and
// paging links.  The page is chosen by the "start" and "max-results"
// query parameters.
func (r *GenericResource) GetList(ctx *Context) (interface{}, error) {
	if r.Model == nil {
		return nil, errMethodNotAllowed{Method: ctx.Request.Method}
	}
	start, maxResults := r.page(ctx)
	q, err := r.Model.Query(ctx, true)
	if err != nil {
		return nil, err
	}
	total, err := q.Count()
	if err != nil {
		return nil, err
	}
	if start > total {
		start = total
	}
	objs, err := q.Fetch(start, maxResults)
	if err != nil {
		return nil, err
	}
	items := make([]interface{}, 0, len(objs))
	for _, obj := range objs {
		item, err := r.serialize(ctx, obj)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	links := apidata.Links{
		"self": link("GET", ctx.absoluteURL(ctx.Request.URL)),
	}
	if start < total-maxResults {
		links["next"] = link("GET", pageURL(ctx, start+maxResults, maxResults))
	}
	if start > 0 {
		prev := start - maxResults
		if prev < 0 {
			prev = 0
		}
		links["prev"] = link("GET", pageURL(ctx, prev, maxResults))
	}
	return map[string]interface{}{
		r.ListKey:       items,
		"total_results": total,
		"links":         links,
	}, nil
}

// Href returns the top-level URL of an object, without regard to
// sites or parent objects.
func (r *GenericResource) Href(ctx *Context, obj interface{}) (string, error) {
	if r.URIObjectKey == "" {
		return "", nil
	}
	route := r.Router.Get(r.Name)
	if route == nil {
		return "", fmt.Errorf("No such route %q", r.Name)
	}
	url, err := route.URL(r.URIObjectKey, r.ObjectKey(obj))
	if err != nil {
		return "", err
	}
	return ctx.absoluteURL(url), nil
}

func (r *GenericResource) serialize(ctx *Context, obj interface{}) (interface{}, error) {
	linker := r.Linker
	if linker == nil {
		linker = r
	}
	href, err := linker.Href(ctx, obj)
	if err != nil {
		return nil, err
	}
	return r.Serialize(ctx, obj, href)
}

// page reads the paging query parameters.
func (r *GenericResource) page(ctx *Context) (start, maxResults int) {
	def, limit := r.DefaultMaxResults, r.MaxResults
	if def <= 0 {
		def = DefaultMaxResults
	}
	if limit <= 0 {
		limit = MaxResults
	}
	start = ctx.IntParam("start", 0)
	maxResults = ctx.IntParam("max-results", def)
	if maxResults == 0 {
		maxResults = def
	}
	if maxResults > limit {
		maxResults = limit
	}
	return
}

// pageURL returns the absolute URL of the request with different
// paging parameters.
func pageURL(ctx *Context, start, maxResults int) string {
	u := *ctx.Request.URL
	query := u.Query()
	query.Set("start", strconv.Itoa(start))
	query.Set("max-results", strconv.Itoa(maxResults))
	u.RawQuery = query.Encode()
	return ctx.absoluteURL(&u)
}
