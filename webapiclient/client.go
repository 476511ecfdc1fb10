// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package webapiclient provides an HTTP client for the REST API
// served by the webapi package.
//
// The server in github.com/diffeo/go-webapi/cmd/webapid can run a
// compatible REST server.  Call New() with the base URL of its API;
// for instance,
//
//     c, err := webapiclient.New("http://localhost:8080/api/")
//
// Every other URL is discovered from the root document.
package webapiclient

import (
	"net/http"
	"net/url"

	"github.com/diffeo/go-webapi/apidata"
)

// Client talks to one API root, either the top-level one or a
// site's.
type Client struct {
	resource
	Representation apidata.Root
}

// New creates a client for the API rooted at baseURL, making
// anonymous requests.
func New(baseURL string) (*Client, error) {
	return newClient(baseURL, nil, nil)
}

// NewWithCredentials creates a client that sends HTTP basic
// credentials with every request.
func NewWithCredentials(baseURL, username, password string) (*Client, error) {
	return newClient(baseURL, &credentials{Username: username, Password: password}, nil)
}

func newClient(baseURL string, auth *credentials, client *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	c := &Client{resource: resource{URL: u, Auth: auth, Client: client}}
	if err := c.Refresh(); err != nil {
		return nil, err
	}
	return c, nil
}

// Refresh fetches the root document again.
func (c *Client) Refresh() error {
	c.Representation = apidata.Root{}
	return c.Get(&c.Representation)
}

// SiteName returns the name of the client's site, or an empty string
// for the top-level API.
func (c *Client) SiteName() string {
	return c.Representation.SiteName
}

// Site returns a client for the API inside a site.  The site's API is
// found at /s/{site_name}/api/ on the same server.
func (c *Client) Site(name string) (*Client, error) {
	u, err := c.Template("/s/{site_name}/api/", map[string]interface{}{"site_name": name})
	if err != nil {
		return nil, err
	}
	site := &Client{resource: c.at(u)}
	if err := site.Refresh(); err != nil {
		return nil, err
	}
	return site, nil
}

// list returns the URL of a named list from the root document.
func (c *Client) list(name string) (string, error) {
	link, ok := c.Representation.Links[name]
	if !ok {
		return "", ErrNoSuchList{Name: name}
	}
	return link.Href, nil
}

// Count returns the number of objects in a named list, such as
// "groups", without retrieving them.
func (c *Client) Count(list string) (int, error) {
	href, err := c.list(list)
	if err != nil {
		return 0, err
	}
	return c.count(href, nil)
}

// count gets the counts-only form of a list URL.  query holds any
// other list parameters.
func (c *Client) count(href string, query url.Values) (int, error) {
	params := url.Values{"counts-only": {"1"}}
	for key, values := range query {
		params[key] = values
	}
	href, err := withQuery(href, params)
	if err != nil {
		return 0, err
	}
	u, err := c.URL.Parse(href)
	if err != nil {
		return 0, err
	}

	var count apidata.Count
	err = c.Do("GET", u, nil, &count)
	return count.Count, err
}

// eachPage fetches a list page by page, following "next" links.
// fetch gets one page and returns its links.
func (c *Client) eachPage(href string, fetch func(u *url.URL) (apidata.Links, error)) error {
	for href != "" {
		u, err := c.URL.Parse(href)
		if err != nil {
			return err
		}
		links, err := fetch(u)
		if err != nil {
			return err
		}
		href = links["next"].Href
	}
	return nil
}

// withQuery adds query parameters to a URL.
func withQuery(href string, query url.Values) (string, error) {
	if len(query) == 0 {
		return href, nil
	}
	u, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	params := u.Query()
	for key, values := range query {
		params[key] = values
	}
	u.RawQuery = params.Encode()
	return u.String(), nil
}

// ErrNoSuchList is returned if the root document has no link to a
// requested list.
type ErrNoSuchList struct {
	Name string
}

func (e ErrNoSuchList) Error() string {
	return "No list named " + e.Name
}
