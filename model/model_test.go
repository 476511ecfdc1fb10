// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSiteAccess(t *testing.T) {
	site := &Site{
		ID:     1,
		Name:   "corp",
		Users:  []string{"member"},
		Admins: []string{"admin"},
	}
	member := &User{ID: 1, Username: "member"}
	admin := &User{ID: 2, Username: "admin"}
	outsider := &User{ID: 3, Username: "outsider"}
	root := &User{ID: 4, Username: "root", Superuser: true}

	assert.False(t, site.IsAccessibleBy(Anonymous()))
	assert.True(t, site.IsAccessibleBy(member))
	assert.True(t, site.IsAccessibleBy(admin))
	assert.False(t, site.IsAccessibleBy(outsider))
	assert.True(t, site.IsAccessibleBy(root))

	assert.False(t, site.IsMutableBy(member))
	assert.True(t, site.IsMutableBy(admin))
	assert.False(t, site.IsMutableBy(outsider))
	assert.True(t, site.IsMutableBy(root))

	site.Public = true
	assert.True(t, site.IsAccessibleBy(Anonymous()))
	assert.True(t, site.IsAccessibleBy(outsider))
	assert.False(t, site.IsMutableBy(Anonymous()))
}

func TestNilSiteID(t *testing.T) {
	var site *Site
	assert.Equal(t, 0, site.SiteID())
	assert.Equal(t, 7, (&Site{ID: 7}).SiteID())
}

func TestFullName(t *testing.T) {
	assert.Equal(t, "", (&User{}).FullName())
	assert.Equal(t, "Ada", (&User{FirstName: "Ada"}).FullName())
	assert.Equal(t, "Lovelace", (&User{LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: "Ada", LastName: "Lovelace"}).FullName())
}

func TestPassword(t *testing.T) {
	u := &User{Username: "u"}
	assert.Equal(t, ErrBadPassword, u.CheckPassword(""))

	if assert.NoError(t, u.SetPassword("hunter2")) {
		assert.NoError(t, u.CheckPassword("hunter2"))
		assert.Equal(t, ErrBadPassword, u.CheckPassword("hunter3"))
	}

	assert.NoError(t, u.SetPassword(""))
	assert.Equal(t, ErrBadPassword, u.CheckPassword(""))
}

func TestAnonymous(t *testing.T) {
	a, b := Anonymous(), Anonymous()
	assert.False(t, a.IsAuthenticated())
	a.Username = "mallory"
	assert.False(t, a == b)
	assert.Equal(t, "", b.Username)
	assert.False(t, Anonymous().IsAuthenticated())
}

func TestWindow(t *testing.T) {
	tests := []struct {
		n, offset, limit int
		start, end       int
	}{
		{10, 0, 0, 0, 10},
		{10, 0, 3, 0, 3},
		{10, 8, 3, 8, 10},
		{10, 12, 3, 10, 10},
		{10, -1, 0, 0, 10},
		{0, 0, 25, 0, 0},
		{10, 2, math.MaxInt, 2, 10},
	}
	for _, test := range tests {
		start, end := Window(test.n, test.offset, test.limit)
		assert.Equal(t, test.start, start, "%+v", test)
		assert.Equal(t, test.end, end, "%+v", test)
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNoSuchSite{Name: "x"}))
	assert.True(t, IsNotFound(ErrNoSuchUser{Username: "x"}))
	assert.True(t, IsNotFound(ErrNoSuchGroup{Name: "x"}))
	assert.False(t, IsNotFound(ErrDuplicateGroup))
	assert.False(t, IsNotFound(nil))
}
