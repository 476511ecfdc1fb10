// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package memory provides an in-process, in-memory implementation of
// model.Backend.  There is no persistence in this backend, nor is
// there any automatic sharing.  The entire system is behind a single
// global lock to protect against concurrent updates.
//
// This is mostly intended as a simple reference implementation that
// can be used for testing, including in-process testing of the web
// API.  It is tuned for correctness, not performance or scalability.
package memory

import (
	"sort"
	"strings"
	"sync"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-webapi/model"
)

// New creates a new backend that operates purely in memory.
func New() model.Backend {
	return NewWithClock(clock.New())
}

// NewWithClock creates a new in-memory backend with an explicit time
// source.  This is intended for tests that need to control the
// timestamps the backend records.
func NewWithClock(clk clock.Clock) model.Backend {
	return &memBackend{
		clock:   clk,
		sites:   make(map[string]*model.Site),
		users:   make(map[string]*model.User),
		groups:  make(map[groupKey]*model.Group),
		members: make(map[int]map[int]bool),
	}
}

type groupKey struct {
	siteID int
	name   string
}

type memBackend struct {
	sem    sync.Mutex
	clock  clock.Clock
	nextID int

	sites  map[string]*model.Site
	users  map[string]*model.User
	groups map[groupKey]*model.Group

	// members maps group ID to a set of user IDs.
	members map[int]map[int]bool
}

func (m *memBackend) lock() func() {
	m.sem.Lock()
	return m.sem.Unlock
}

func (m *memBackend) newID() int {
	m.nextID++
	return m.nextID
}

// Sites:

func copySite(site *model.Site) *model.Site {
	result := *site
	result.Users = copyStrings(site.Users)
	result.Admins = copyStrings(site.Admins)
	return &result
}

func copyStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func (m *memBackend) Site(name string) (*model.Site, error) {
	defer m.lock()()

	site, present := m.sites[name]
	if !present {
		return nil, model.ErrNoSuchSite{Name: name}
	}
	return copySite(site), nil
}

func (m *memBackend) matchSites(q model.SiteQuery) []*model.Site {
	var result []*model.Site
	for _, site := range m.sites {
		if q.PublicOnly {
			if !site.Public {
				continue
			}
		} else if q.Member != "" && !isSiteMember(site, q.Member) &&
			!(q.IncludePublic && site.Public) {
			continue
		}
		result = append(result, site)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

func isSiteMember(site *model.Site, username string) bool {
	for _, name := range site.Users {
		if name == username {
			return true
		}
	}
	for _, name := range site.Admins {
		if name == username {
			return true
		}
	}
	return false
}

func (m *memBackend) Sites(q model.SiteQuery) ([]*model.Site, error) {
	defer m.lock()()

	matched := m.matchSites(q)
	start, end := model.Window(len(matched), q.Offset, q.Limit)
	result := make([]*model.Site, 0, end-start)
	for _, site := range matched[start:end] {
		result = append(result, copySite(site))
	}
	return result, nil
}

func (m *memBackend) CountSites(q model.SiteQuery) (int, error) {
	defer m.lock()()
	return len(m.matchSites(q)), nil
}

func (m *memBackend) CreateSite(site *model.Site) error {
	defer m.lock()()

	if _, present := m.sites[site.Name]; present {
		return model.ErrDuplicateSite
	}
	for _, names := range [][]string{site.Users, site.Admins} {
		for _, name := range names {
			if _, present := m.users[name]; !present {
				return model.ErrNoSuchUser{Username: name}
			}
		}
	}
	site.ID = m.newID()
	m.sites[site.Name] = copySite(site)
	return nil
}

// Users:

func (m *memBackend) User(username string) (*model.User, error) {
	defer m.lock()()

	user, present := m.users[username]
	if !present {
		return nil, model.ErrNoSuchUser{Username: username}
	}
	result := *user
	return &result, nil
}

func (m *memBackend) siteByID(id int) *model.Site {
	for _, site := range m.sites {
		if site.ID == id {
			return site
		}
	}
	return nil
}

func (m *memBackend) matchUsers(q model.UserQuery) []*model.User {
	var site *model.Site
	if q.SiteID != 0 {
		site = m.siteByID(q.SiteID)
		if site == nil {
			return nil
		}
	}
	var result []*model.User
	for _, user := range m.users {
		if !strings.HasPrefix(user.Username, q.Prefix) {
			continue
		}
		if site != nil && !isSiteMember(site, user.Username) {
			continue
		}
		if q.GroupID != 0 && !m.members[q.GroupID][user.ID] {
			continue
		}
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Username < result[j].Username
	})
	return result
}

func (m *memBackend) Users(q model.UserQuery) ([]*model.User, error) {
	defer m.lock()()

	matched := m.matchUsers(q)
	start, end := model.Window(len(matched), q.Offset, q.Limit)
	result := make([]*model.User, 0, end-start)
	for _, user := range matched[start:end] {
		u := *user
		result = append(result, &u)
	}
	return result, nil
}

func (m *memBackend) CountUsers(q model.UserQuery) (int, error) {
	defer m.lock()()
	return len(m.matchUsers(q)), nil
}

func (m *memBackend) CreateUser(user *model.User) error {
	defer m.lock()()

	if _, present := m.users[user.Username]; present {
		return model.ErrDuplicateUser
	}
	user.ID = m.newID()
	u := *user
	m.users[user.Username] = &u
	return nil
}

// Groups:

func copyGroup(group *model.Group) *model.Group {
	result := *group
	if group.ExtraData != nil {
		result.ExtraData = make(map[string]interface{}, len(group.ExtraData))
		for k, v := range group.ExtraData {
			result.ExtraData[k] = v
		}
	}
	return &result
}

func (m *memBackend) Group(siteID int, name string) (*model.Group, error) {
	defer m.lock()()

	group, present := m.groups[groupKey{siteID, name}]
	if !present {
		return nil, model.ErrNoSuchGroup{Name: name}
	}
	return copyGroup(group), nil
}

func (m *memBackend) matchGroups(q model.GroupQuery) []*model.Group {
	var result []*model.Group
	for key, group := range m.groups {
		if key.siteID != q.SiteID {
			continue
		}
		if !strings.HasPrefix(group.Name, q.Prefix) {
			continue
		}
		if !group.Visible && !q.ShowInvisible {
			continue
		}
		result = append(result, group)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result
}

func (m *memBackend) Groups(q model.GroupQuery) ([]*model.Group, error) {
	defer m.lock()()

	matched := m.matchGroups(q)
	start, end := model.Window(len(matched), q.Offset, q.Limit)
	result := make([]*model.Group, 0, end-start)
	for _, group := range matched[start:end] {
		result = append(result, copyGroup(group))
	}
	return result, nil
}

func (m *memBackend) CountGroups(q model.GroupQuery) (int, error) {
	defer m.lock()()
	return len(m.matchGroups(q)), nil
}

func (m *memBackend) CreateGroup(group *model.Group) error {
	defer m.lock()()

	key := groupKey{group.SiteID, group.Name}
	if _, present := m.groups[key]; present {
		return model.ErrDuplicateGroup
	}
	group.ID = m.newID()
	group.LastUpdated = m.clock.Now()
	m.groups[key] = copyGroup(group)
	return nil
}

func (m *memBackend) groupByID(id int) (groupKey, *model.Group) {
	for key, group := range m.groups {
		if group.ID == id {
			return key, group
		}
	}
	return groupKey{}, nil
}

func (m *memBackend) UpdateGroup(group *model.Group) error {
	defer m.lock()()

	key, existing := m.groupByID(group.ID)
	if existing == nil {
		return model.ErrNoSuchGroup{Name: group.Name}
	}
	if key.name != group.Name || key.siteID != group.SiteID {
		newKey := groupKey{group.SiteID, group.Name}
		if _, present := m.groups[newKey]; present {
			return model.ErrDuplicateGroup
		}
		delete(m.groups, key)
		key = newKey
	}
	group.LastUpdated = m.clock.Now()
	m.groups[key] = copyGroup(group)
	return nil
}

func (m *memBackend) DeleteGroup(group *model.Group) error {
	defer m.lock()()

	key, existing := m.groupByID(group.ID)
	if existing == nil {
		return model.ErrNoSuchGroup{Name: group.Name}
	}
	delete(m.groups, key)
	delete(m.members, group.ID)
	return nil
}

func (m *memBackend) AddGroupMember(group *model.Group, user *model.User) error {
	defer m.lock()()

	if _, existing := m.groupByID(group.ID); existing == nil {
		return model.ErrNoSuchGroup{Name: group.Name}
	}
	if m.members[group.ID] == nil {
		m.members[group.ID] = make(map[int]bool)
	}
	m.members[group.ID][user.ID] = true
	return nil
}

func (m *memBackend) RemoveGroupMember(group *model.Group, user *model.User) error {
	defer m.lock()()

	delete(m.members[group.ID], user.ID)
	return nil
}
