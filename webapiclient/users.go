// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package webapiclient

import (
	"net/url"

	"github.com/diffeo/go-webapi/apidata"
)

// Users retrieves every user visible from the client's site whose
// username starts with prefix.
func (c *Client) Users(prefix string) ([]apidata.User, error) {
	href, err := c.list("users")
	if err == nil && prefix != "" {
		href, err = withQuery(href, url.Values{"q": {prefix}})
	}
	if err != nil {
		return nil, err
	}
	return c.users(href)
}

func (c *Client) users(href string) ([]apidata.User, error) {
	var result []apidata.User
	err := c.eachPage(href, func(u *url.URL) (apidata.Links, error) {
		var page apidata.UserList
		err := c.Do("GET", u, nil, &page)
		result = append(result, page.Users...)
		return page.Links, err
	})
	return result, err
}

// User retrieves a single user by username.
func (c *Client) User(username string) (apidata.User, error) {
	var user apidata.User
	err := c.GetFrom(c.Representation.URITemplates["user"],
		map[string]interface{}{"username": username}, &user)
	return user, err
}

// Sites retrieves every site the client's user can see.  Only the
// top-level API lists sites.
func (c *Client) Sites() ([]apidata.Site, error) {
	href, err := c.list("sites")
	if err != nil {
		return nil, err
	}
	var result []apidata.Site
	err = c.eachPage(href, func(u *url.URL) (apidata.Links, error) {
		var page apidata.SiteList
		err := c.Do("GET", u, nil, &page)
		result = append(result, page.Sites...)
		return page.Links, err
	})
	return result, err
}
