// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package model defines the objects published by the web API and an
// abstract storage interface for them.
//
// In most cases, applications will know of specific implementations of
// Backend (the memory and postgres packages) and will get one from
// the backend package based on command-line flags.
//
// Objects here are plain values.  A backend returns fresh copies on
// every call, so callers may modify them freely and then pass them
// back to an Update call to persist the change.
package model

import "time"

// User is a person who can log in to the system.  The zero User is
// the anonymous user.
type User struct {
	// ID is the backend-assigned identifier.  It is zero for the
	// anonymous user and for users that have not been created yet.
	ID int

	// Username is the unique login name.
	Username string

	FirstName string
	LastName  string
	Email     string

	// Superuser grants access to every site and every object.
	Superuser bool

	// PasswordHash holds a bcrypt hash of the user's password, or
	// is empty if the user cannot log in with a password.
	PasswordHash string
}

// Anonymous returns a new user to attach to a request without
// credentials.  Each request gets its own.
func Anonymous() *User {
	return &User{}
}

// IsAuthenticated returns true if u is a real, logged-in user.
func (u *User) IsAuthenticated() bool {
	return u != nil && u.ID != 0
}

// FullName returns the user's first and last names, or an empty string.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Site is a named partition of the system.  URLs, permissions, and
// data visibility are all scoped to a site.  Objects that belong to
// no site at all are "global".
type Site struct {
	ID   int
	Name string

	// Public sites are readable by anyone, including anonymous
	// users.
	Public bool

	// Users lists the usernames of the site's members.
	Users []string

	// Admins lists the usernames of the site's administrators.
	// Administrators need not also be listed in Users.
	Admins []string
}

// IsAccessibleBy returns true if user may read data inside the site.
func (s *Site) IsAccessibleBy(user *User) bool {
	if s.Public {
		return true
	}
	if !user.IsAuthenticated() {
		return false
	}
	return user.Superuser ||
		contains(s.Users, user.Username) ||
		contains(s.Admins, user.Username)
}

// IsMutableBy returns true if user may change data inside the site.
func (s *Site) IsMutableBy(user *User) bool {
	if !user.IsAuthenticated() {
		return false
	}
	return user.Superuser || contains(s.Admins, user.Username)
}

// SiteID returns the identifier of s, or 0 if s is nil (the global
// site).
func (s *Site) SiteID() int {
	if s == nil {
		return 0
	}
	return s.ID
}

// Longest values the backends store for group fields, in characters.
const (
	MaxGroupNameLength        = 64
	MaxGroupDisplayNameLength = 64
	MaxMailingListLength      = 254
)

// Group is a named collection of users, such as a review group.
type Group struct {
	ID int

	// SiteID is the ID of the owning site, or 0 for a global group.
	SiteID int

	// Name is the short name of the group, unique within its site.
	Name string

	DisplayName string
	MailingList string

	// Visible groups appear in list results by default.
	Visible bool

	// InviteOnly groups can only be joined by an administrator.
	InviteOnly bool

	// ExtraData holds free-form extension fields.
	ExtraData map[string]interface{}

	// LastUpdated is set by the backend when the group is created
	// or changed.
	LastUpdated time.Time
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
