// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package model

import (
	"errors"
	"fmt"
)

// ErrNoSuchSite is returned by Backend.Site() and similar functions
// that want to look up a site, but cannot find it.
type ErrNoSuchSite struct {
	Name string
}

func (err ErrNoSuchSite) Error() string {
	return fmt.Sprintf("No such site %v", err.Name)
}

// ErrNoSuchUser is returned by Backend.User() if the username is
// unknown.
type ErrNoSuchUser struct {
	Username string
}

func (err ErrNoSuchUser) Error() string {
	return fmt.Sprintf("No such user %v", err.Username)
}

// ErrNoSuchGroup is returned by Backend.Group() if there is no group
// with the requested name in the requested site.
type ErrNoSuchGroup struct {
	Name string
}

func (err ErrNoSuchGroup) Error() string {
	return fmt.Sprintf("No such group %v", err.Name)
}

// ErrDuplicateSite is returned by Backend.CreateSite() if the name is
// already taken.
var ErrDuplicateSite = errors.New("A site with this name already exists")

// ErrDuplicateUser is returned by Backend.CreateUser() if the
// username is already taken.
var ErrDuplicateUser = errors.New("A user with this username already exists")

// ErrDuplicateGroup is returned by Backend.CreateGroup() if the site
// already has a group with the same name.
var ErrDuplicateGroup = errors.New("A group with this name already exists")

// ErrBadPassword is returned by CheckPassword() if the password does
// not match.
var ErrBadPassword = errors.New("Incorrect username or password")

// IsNotFound returns true if err is one of the "no such object" errors.
func IsNotFound(err error) bool {
	switch err.(type) {
	case ErrNoSuchSite, ErrNoSuchUser, ErrNoSuchGroup:
		return true
	}
	return false
}
