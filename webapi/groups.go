// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package webapi

import (
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/diffeo/go-webapi/apidata"
	"github.com/diffeo/go-webapi/model"
)

// groupNamePattern matches valid group names, which appear in URLs
// unescaped.
var groupNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

var (
	errBadGroupName   = errors.New("Only letters, numbers, and the characters _ . - are allowed.")
	errDuplicateGroup = errors.New("A group with this name already exists.")
)

// groupModel provides the review groups of the request's site.
type groupModel struct {
	backend model.Backend
}

func (m groupModel) Query(ctx *Context, isList bool) (Query, error) {
	q := model.GroupQuery{SiteID: ctx.Site.SiteID()}
	if isList {
		q.Prefix = ctx.QueryParams.Get("q")
		q.ShowInvisible = ctx.BoolParam("show-invisible", false)
	} else {
		// Invisible groups can be fetched by name
		q.ShowInvisible = true
	}
	return groupQuery{backend: m.backend, q: q}, nil
}

type groupQuery struct {
	backend model.Backend
	q       model.GroupQuery
}

func (q groupQuery) Count() (int, error) {
	return q.backend.CountGroups(q.q)
}

func (q groupQuery) Fetch(offset, limit int) ([]interface{}, error) {
	gq := q.q
	gq.Offset = offset
	gq.Limit = limit
	groups, err := q.backend.Groups(gq)
	if err != nil {
		return nil, err
	}
	result := make([]interface{}, len(groups))
	for i, group := range groups {
		result[i] = group
	}
	return result, nil
}

func (q groupQuery) Get(key string) (interface{}, error) {
	group, err := q.backend.Group(q.q.SiteID, key)
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (api *webAPI) groupResource() *SiteResource {
	generic := api.generic(&GenericResource{
		Name:         "group",
		ListKey:      "groups",
		URIObjectKey: "group_name",
		ObjectKey: func(obj interface{}) string {
			return obj.(*model.Group).Name
		},
		Model:     groupModel{backend: api.Backend},
		Serialize: api.serializeGroup,
	})
	return NewSiteResource(generic, api.Policy)
}

func (api *webAPI) serializeGroup(ctx *Context, obj interface{}, href string) (interface{}, error) {
	group := obj.(*model.Group)
	links := apidata.Links{"self": link("GET", href)}
	if requireMutable(ctx) == nil {
		links["update"] = link("PUT", href)
		links["delete"] = link("DELETE", href)
	}
	err := buildURLs(api.Router, ctx, "group_name", group.Name).
		Link(links, "users", "group-users").
		Error
	if err != nil {
		return nil, err
	}
	extraData := group.ExtraData
	if extraData == nil {
		extraData = map[string]interface{}{}
	}
	return apidata.Group{
		Links:       links,
		ID:          group.ID,
		Name:        group.Name,
		DisplayName: group.DisplayName,
		MailingList: group.MailingList,
		Visible:     group.Visible,
		InviteOnly:  group.InviteOnly,
		ExtraData:   extraData,
		LastUpdated: group.LastUpdated,
	}, nil
}

// groupForm holds the submitted group fields.  Absent fields are nil.
type groupForm struct {
	Name        *string `mapstructure:"name"`
	DisplayName *string `mapstructure:"display_name"`
	MailingList *string `mapstructure:"mailing_list"`
	Visible     *bool   `mapstructure:"visible"`
	InviteOnly  *bool   `mapstructure:"invite_only"`
}

// decodeGroupForm decodes and validates group fields.  If create is
// true, name and display_name are required.
func decodeGroupForm(fields map[string]string, create bool) (groupForm, error) {
	var values groupForm
	form := NewForm(fields)
	form.Decode(&values)
	if create {
		form.Require("name", "display_name")
	} else {
		for _, name := range []string{"name", "display_name"} {
			if _, present := fields[name]; present {
				form.Require(name)
			}
		}
	}
	if values.Name != nil && *values.Name != "" && !groupNamePattern.MatchString(*values.Name) {
		form.AddError("name", errBadGroupName)
	}
	checkLength(form, "name", values.Name, model.MaxGroupNameLength)
	checkLength(form, "display_name", values.DisplayName, model.MaxGroupDisplayNameLength)
	checkLength(form, "mailing_list", values.MailingList, model.MaxMailingListLength)
	return values, form.Err()
}

// checkLength records a form error if a submitted value has more than
// max characters.
func checkLength(form *Form, field string, value *string, max int) {
	if value == nil {
		return
	}
	if n := utf8.RuneCountInString(*value); n > max {
		form.AddError(field, fmt.Errorf("Ensure this value has at most %d characters (it has %d).", max, n))
	}
}

// apply copies the submitted fields into group.
func (f groupForm) apply(group *model.Group) {
	if f.Name != nil {
		group.Name = *f.Name
	}
	if f.DisplayName != nil {
		group.DisplayName = *f.DisplayName
	}
	if f.MailingList != nil {
		group.MailingList = *f.MailingList
	}
	if f.Visible != nil {
		group.Visible = *f.Visible
	}
	if f.InviteOnly != nil {
		group.InviteOnly = *f.InviteOnly
	}
}

// groupResponse serializes a group along with its URL.
func (api *webAPI) groupResponse(ctx *Context, group *model.Group) (string, interface{}, error) {
	href, err := api.groups.Href(ctx, group)
	if err != nil {
		return "", nil, err
	}
	body, err := api.serializeGroup(ctx, group, href)
	return href, body, err
}

func (api *webAPI) createGroup(ctx *Context) (interface{}, error) {
	if err := requireMutable(ctx); err != nil {
		return nil, err
	}
	values, err := decodeGroupForm(ctx.Fields, true)
	if err != nil {
		return nil, err
	}
	group := &model.Group{
		SiteID:    ctx.Site.SiteID(),
		Visible:   true,
		ExtraData: map[string]interface{}{},
	}
	values.apply(group)
	ImportExtraData(group.ExtraData, ctx.Fields)

	err = api.Backend.CreateGroup(group)
	if err == model.ErrDuplicateGroup {
		return nil, apidata.ErrInvalidForm{Fields: map[string][]string{
			"name": {errDuplicateGroup.Error()},
		}}
	} else if err != nil {
		return nil, err
	}
	ctx.Log.WithField("group", group.Name).Info("created group")

	href, body, err := api.groupResponse(ctx, group)
	if err != nil {
		return nil, err
	}
	return responseCreated{Location: href, Body: body}, nil
}

func (api *webAPI) updateGroup(ctx *Context) (interface{}, error) {
	if err := requireMutable(ctx); err != nil {
		return nil, err
	}
	group, err := api.Backend.Group(ctx.Site.SiteID(), ctx.Vars["group_name"])
	if err != nil {
		return nil, err
	}
	values, err := decodeGroupForm(ctx.Fields, false)
	if err != nil {
		return nil, err
	}
	values.apply(group)
	if group.ExtraData == nil {
		group.ExtraData = map[string]interface{}{}
	}
	ImportExtraData(group.ExtraData, ctx.Fields)

	err = api.Backend.UpdateGroup(group)
	if err == model.ErrDuplicateGroup {
		return nil, apidata.ErrInvalidForm{Fields: map[string][]string{
			"name": {errDuplicateGroup.Error()},
		}}
	} else if err != nil {
		return nil, err
	}
	_, body, err := api.groupResponse(ctx, group)
	return body, err
}

func (api *webAPI) deleteGroup(ctx *Context) (interface{}, error) {
	if err := requireMutable(ctx); err != nil {
		return nil, err
	}
	group, err := api.Backend.Group(ctx.Site.SiteID(), ctx.Vars["group_name"])
	if err != nil {
		return nil, err
	}
	if err := api.Backend.DeleteGroup(group); err != nil {
		return nil, err
	}
	ctx.Log.WithField("group", group.Name).Info("deleted group")
	return nil, nil
}
