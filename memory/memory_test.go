// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package memory

import (
	"testing"

	"github.com/diffeo/go-webapi/model"
	"github.com/diffeo/go-webapi/model/modeltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// Suite runs the generic backend tests against a fresh in-memory
// backend per test.
type Suite struct {
	modeltest.Suite
}

// SetupTest creates an empty backend for every test.
func (s *Suite) SetupTest() {
	s.Backend = NewWithClock(s.Clock)
}

// TestBackend runs the generic backend tests.
func TestBackend(t *testing.T) {
	suite.Run(t, &Suite{})
}

// TestCopies checks that callers cannot modify stored objects through
// returned values.
func TestCopies(t *testing.T) {
	backend := New()
	group := &model.Group{
		Name:      "devs",
		ExtraData: map[string]interface{}{"a": "1"},
	}
	if !assert.NoError(t, backend.CreateGroup(group)) {
		return
	}
	group.ExtraData["a"] = "2"

	found, err := backend.Group(0, "devs")
	if assert.NoError(t, err) {
		assert.Equal(t, "1", found.ExtraData["a"])
		found.ExtraData["b"] = "3"
	}

	again, err := backend.Group(0, "devs")
	if assert.NoError(t, err) {
		assert.Equal(t, map[string]interface{}{"a": "1"}, again.ExtraData)
	}
}

// TestSiteUnknownMember checks that a site cannot name unknown users.
func TestSiteUnknownMember(t *testing.T) {
	backend := New()
	err := backend.CreateSite(&model.Site{Name: "corp", Users: []string{"ghost"}})
	assert.Equal(t, model.ErrNoSuchUser{Username: "ghost"}, err)
}
