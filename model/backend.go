// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package model

// Backend is the principal storage interface.  Implementations of
// this interface provide a specific database backend.
//
// All list operations have a matching Count operation that takes the
// same query, ignores its Offset and Limit, and returns the number of
// objects the list would return without retrieving them.
type Backend interface {
	// Site retrieves a site by its name.  If no site exists with
	// that name, returns ErrNoSuchSite.
	Site(name string) (*Site, error)

	// Sites returns the sites matching a query, ordered by name.
	Sites(q SiteQuery) ([]*Site, error)

	// CountSites returns the number of sites matching a query.
	CountSites(q SiteQuery) (int, error)

	// CreateSite creates a new site, filling in site.ID.  Returns
	// ErrDuplicateSite if the name is in use.
	CreateSite(site *Site) error

	// User retrieves a user by username.  If no such user exists,
	// returns ErrNoSuchUser.
	User(username string) (*User, error)

	// Users returns the users matching a query, ordered by username.
	Users(q UserQuery) ([]*User, error)

	// CountUsers returns the number of users matching a query.
	CountUsers(q UserQuery) (int, error)

	// CreateUser creates a new user, filling in user.ID.  Returns
	// ErrDuplicateUser if the username is in use.
	CreateUser(user *User) error

	// Group retrieves a group by its site and name.  If no such
	// group exists, returns ErrNoSuchGroup.
	Group(siteID int, name string) (*Group, error)

	// Groups returns the groups matching a query, ordered by name.
	Groups(q GroupQuery) ([]*Group, error)

	// CountGroups returns the number of groups matching a query.
	CountGroups(q GroupQuery) (int, error)

	// CreateGroup creates a new group, filling in group.ID and
	// group.LastUpdated.  Returns ErrDuplicateGroup if the site
	// already has a group with that name.
	CreateGroup(group *Group) error

	// UpdateGroup writes all of the mutable fields of group back
	// to storage, updating group.LastUpdated.  The group is
	// identified by its ID.
	UpdateGroup(group *Group) error

	// DeleteGroup removes a group and its memberships.
	DeleteGroup(group *Group) error

	// AddGroupMember adds a user to a group.  Adding an existing
	// member is not an error.
	AddGroupMember(group *Group, user *User) error

	// RemoveGroupMember removes a user from a group.  Removing a
	// user who is not a member is not an error.
	RemoveGroupMember(group *Group, user *User) error
}

// SiteQuery selects sites.
type SiteQuery struct {
	// Member, if non-empty, limits results to sites this username
	// is a member or administrator of.
	Member string

	// IncludePublic, with Member, also includes public sites.
	IncludePublic bool

	// PublicOnly limits results to public sites.  Member is
	// ignored if this is set.
	PublicOnly bool

	Offset int
	Limit  int
}

// UserQuery selects users.
type UserQuery struct {
	// SiteID, if non-zero, limits results to members and
	// administrators of that site.
	SiteID int

	// GroupID, if non-zero, limits results to members of that group.
	GroupID int

	// Prefix, if non-empty, limits results to usernames starting
	// with it.
	Prefix string

	Offset int
	Limit  int
}

// GroupQuery selects groups.  Groups are always limited to a single
// site, with SiteID 0 meaning global groups.
type GroupQuery struct {
	SiteID int

	// Prefix, if non-empty, limits results to names starting with it.
	Prefix string

	// ShowInvisible includes groups that are not Visible.
	ShowInvisible bool

	Offset int
	Limit  int
}

// Window applies an offset and limit to a slice length, returning the
// bounds of the selected range.  A limit of zero or less means "no
// limit".  Backends that filter in memory use this to page results.
func Window(n, offset, limit int) (start, end int) {
	start = offset
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end = n
	if limit > 0 && limit < end-start {
		end = start + limit
	}
	return
}
