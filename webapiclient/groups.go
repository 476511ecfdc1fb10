// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package webapiclient

import (
	"net/url"

	"github.com/diffeo/go-webapi/apidata"
)

// GroupQuery selects review groups in list requests.
type GroupQuery struct {
	// Prefix limits results to group names starting with it.
	Prefix string

	// ShowInvisible includes groups that are not visible.
	ShowInvisible bool
}

func (q GroupQuery) values() url.Values {
	values := url.Values{}
	if q.Prefix != "" {
		values.Set("q", q.Prefix)
	}
	if q.ShowInvisible {
		values.Set("show-invisible", "1")
	}
	return values
}

// Groups retrieves every group matching a query.
func (c *Client) Groups(q GroupQuery) ([]apidata.Group, error) {
	href, err := c.list("groups")
	if err == nil {
		href, err = withQuery(href, q.values())
	}
	if err != nil {
		return nil, err
	}
	var result []apidata.Group
	err = c.eachPage(href, func(u *url.URL) (apidata.Links, error) {
		var page apidata.GroupList
		err := c.Do("GET", u, nil, &page)
		result = append(result, page.Groups...)
		return page.Links, err
	})
	return result, err
}

// CountGroups returns the number of groups matching a query.
func (c *Client) CountGroups(q GroupQuery) (int, error) {
	href, err := c.list("groups")
	if err != nil {
		return 0, err
	}
	return c.count(href, q.values())
}

func groupVars(name string) map[string]interface{} {
	return map[string]interface{}{"group_name": name}
}

// Group retrieves a single group by name.
func (c *Client) Group(name string) (apidata.Group, error) {
	var group apidata.Group
	err := c.GetFrom(c.Representation.URITemplates["group"], groupVars(name), &group)
	return group, err
}

// CreateGroup creates a group.  fields holds the form fields, such
// as "name", "display_name", and "extra_data.key".
func (c *Client) CreateGroup(fields map[string]interface{}) (apidata.Group, error) {
	var group apidata.Group
	href, err := c.list("groups")
	if err == nil {
		err = c.PostTo(href, nil, fields, &group)
	}
	return group, err
}

// UpdateGroup changes the submitted fields of a group.  An empty
// "extra_data.key" field removes key.
func (c *Client) UpdateGroup(name string, fields map[string]interface{}) (apidata.Group, error) {
	var group apidata.Group
	err := c.PutTo(c.Representation.URITemplates["group"], groupVars(name), fields, &group)
	return group, err
}

// DeleteGroup deletes a group.
func (c *Client) DeleteGroup(name string) error {
	return c.DeleteAt(c.Representation.URITemplates["group"], groupVars(name))
}

// GroupMembers retrieves every member of a group.
func (c *Client) GroupMembers(name string) ([]apidata.User, error) {
	u, err := c.Template(c.Representation.URITemplates["group_users"], groupVars(name))
	if err != nil {
		return nil, err
	}
	return c.users(u.String())
}

// AddGroupMember adds a user to a group.
func (c *Client) AddGroupMember(name, username string) (apidata.User, error) {
	var user apidata.User
	err := c.PostTo(c.Representation.URITemplates["group_users"], groupVars(name),
		map[string]interface{}{"username": username}, &user)
	return user, err
}

// RemoveGroupMember removes a user from a group.
func (c *Client) RemoveGroupMember(name, username string) error {
	return c.DeleteAt(c.Representation.URITemplates["group_user"], map[string]interface{}{
		"group_name": name,
		"username":   username,
	})
}
