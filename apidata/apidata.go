// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package apidata defines common data structures shared between the
// webapi server and webapiclient packages.  Generally JSON encodings
// of these are passed across the wire, labeled with either
// application/json or a vendor media type such as
// application/vnd.diffeo.webapi.group+json.
//
// API Usage
//
// HTTP GET the root document at /api/.  This will return a JSON
// serialization of the Root object.  That serialization has links to
// the list resources, and RFC 6570 URI templates for the individual
// item resources.  Follow these links, possibly filling in template
// values, to get to other resources.  For instance, a Root document
// might look like
//
//     {
//         "links": {
//             "groups": {"method": "GET", "href": "http://host/api/groups/"}
//         },
//         "uri_templates": {
//             "group": "http://host/api/groups/{group_name}/"
//         }
//     }
//
// The same API is available inside each site at /s/{site_name}/api/;
// links returned from inside a site always point inside that site.
//
// Lists
//
// List resources return an object with the list itself under a
// resource-specific key ("groups", "users", "sites"), the total
// number of matching objects in "total_results", and "links" with
// "self" and possibly "next" and "prev" pages.  Lists accept "start"
// and "max-results" query parameters.  Every list that is backed by
// storage also accepts "counts-only=1", in which case the response
// is exactly {"count": N}.
//
// Errors
//
// Failed requests return a failing HTTP status and an ErrorResponse
// body, with a numeric code identifying the failure:
//
//     {"stat": "fail", "err": {"code": 103, "msg": "You are not logged in"}}
//
// Timestamps, when they appear, are represented in JSON as RFC 3339
// strings, "2012-03-04T05:06:07.890Z".
package apidata

import (
	"time"
)

// VendorBase is the prefix of the vendor-specific media types.  An
// individual resource's type is VendorBase + "." + name + "+json".
const VendorBase = "application/vnd.diffeo.webapi"

// JSONMediaType is the generic JSON media type, returned when the
// client does not ask for something more specific.
const JSONMediaType = "application/json"

// ItemMediaType returns the vendor media type for a resource name,
// such as "group" or "groups".
func ItemMediaType(name string) string {
	return VendorBase + "." + name + "+json"
}

// Link is a single hyperlink to another resource.
type Link struct {
	Method string `json:"method"`
	Href   string `json:"href"`
}

// Links is a set of named hyperlinks.
type Links map[string]Link

// Root is returned by the root path.
type Root struct {
	Links Links `json:"links"`

	// URITemplates map resource names to URI templates for
	// individual objects.
	URITemplates map[string]string `json:"uri_templates"`

	// SiteName is the name of the site the root was fetched
	// from, if any.
	SiteName string `json:"site_name,omitempty"`
}

// Count is returned from list resources in counts-only mode.
type Count struct {
	Count int `json:"count"`
}

// Site is the representation of a single site.  Sites have no
// resource of their own and so no links.
type Site struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Public bool   `json:"public"`
}

// SiteList is a list of Site.
type SiteList struct {
	Sites        []Site `json:"sites"`
	TotalResults int    `json:"total_results"`
	Links        Links  `json:"links"`
}

// User is the representation of a single user.
type User struct {
	Links     Links  `json:"links"`
	ID        int    `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"fullname"`
	Email     string `json:"email,omitempty"`
}

// UserList is a list of User.
type UserList struct {
	Users        []User `json:"users"`
	TotalResults int    `json:"total_results"`
	Links        Links  `json:"links"`
}

// Group is the representation of a single review group.
type Group struct {
	Links       Links                  `json:"links"`
	ID          int                    `json:"id"`
	Name        string                 `json:"name"`
	DisplayName string                 `json:"display_name"`
	MailingList string                 `json:"mailing_list"`
	Visible     bool                   `json:"visible"`
	InviteOnly  bool                   `json:"invite_only"`
	ExtraData   map[string]interface{} `json:"extra_data"`
	LastUpdated time.Time              `json:"last_updated"`
}

// GroupList is a list of Group.
type GroupList struct {
	Groups       []Group `json:"groups"`
	TotalResults int     `json:"total_results"`
	Links        Links   `json:"links"`
}

// ErrorDetail identifies a single API failure.
type ErrorDetail struct {
	Code    int    `json:"code"`
	Message string `json:"msg"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	// Stat is always "fail".
	Stat string `json:"stat"`

	// Err holds the API error code and message.
	Err ErrorDetail `json:"err"`

	// Fields holds per-field error messages for invalid form
	// data.
	Fields map[string][]string `json:"fields,omitempty"`

	// Stack holds a formatted backtrace, if the request failed
	// due to a panic.
	Stack string `json:"stack,omitempty"`

	// Status is the HTTP status code to send with this response.
	Status int `json:"-"`

	// Challenge, if non-empty, is sent as a WWW-Authenticate
	// header.
	Challenge string `json:"-"`
}
