// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package webapi publishes a model.Backend as a REST service, and
// provides the resource conventions that service is built from.  The
// webapiclient package is a matching client.
//
// The wire format is defined in the apidata package.  The URLs
// described here are not actually part of the API; clients should
// follow the links in the root document.
//
// Resources
//
// A GenericResource serves objects from a Model, which produces a
// Query for each request.  A SiteResource wraps any Resource with
// the site conventions:
//
// Reads check login first.  Inside a site, the user must be able to
// access the site, getting "not logged in" if anonymous and
// "permission denied" otherwise.  Outside a site, anonymous requests
// fail only if the server requires login everywhere.
//
// Lists accept "counts-only=1", which returns only {"count": N} if
// the resource has a model.  The ListImpl hook can replace the list
// implementation without losing this.
//
// Object URLs are absolute, and include the /s/{site_name} prefix if
// the request came in through a site.
//
// Authentication
//
// Requests may carry HTTP basic credentials, which are checked
// against the password hashes in the backend.  Wrong credentials fail
// the request with "login failed" even if the resource allows
// anonymous access.
//
// MIME Types
//
// Each resource answers in its own vendor media type, such as
//
//     application/vnd.diffeo.webapi.review-group+json
//
// if the client asks for it with an Accept: header, or otherwise as
//
//     application/json
//
// The representation is the same either way.  PUT and POST requests
// take either an HTML form body or a flat JSON object.
//
// URL Scheme
//
//     /api/                                      root
//     /api/groups/                               review groups
//     /api/groups/{group_name}/                  one group
//     /api/groups/{group_name}/users/            its members
//     /api/groups/{group_name}/users/{username}/ one member
//     /api/users/                                users
//     /api/users/{username}/                     one user
//     /api/sites/                                sites (list only)
//
// Everything except the site list is repeated under
// /s/{site_name}/api/.
package webapi
