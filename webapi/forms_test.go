// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package webapi

import (
	"errors"
	"strings"
	"testing"

	"github.com/diffeo/go-webapi/apidata"
	"github.com/diffeo/go-webapi/model"
	"github.com/stretchr/testify/assert"
)

func TestImportExtraData(t *testing.T) {
	extraData := map[string]interface{}{"a": "1"}
	ImportExtraData(extraData, map[string]string{
		"extra_data.a": "",
		"extra_data.b": "2",
	})
	assert.Equal(t, map[string]interface{}{"b": "2"}, extraData)
}

func TestImportExtraDataIgnoresOtherFields(t *testing.T) {
	extraData := map[string]interface{}{"name": "keep"}
	ImportExtraData(extraData, map[string]string{
		"name":           "",
		"display_name":   "Devs",
		"extra_data":     "x",
		"extra_data.c":   "3",
		"extra_data.x.y": "nested",
	})
	assert.Equal(t, map[string]interface{}{
		"name": "keep",
		"c":    "3",
		"x.y":  "nested",
	}, extraData)
}

func TestImportExtraDataDeleteMissing(t *testing.T) {
	extraData := map[string]interface{}{}
	ImportExtraData(extraData, map[string]string{"extra_data.gone": ""})
	assert.Empty(t, extraData)
}

type staticErrors map[string][]error

func (e staticErrors) FieldErrors() map[string][]error {
	return e
}

func TestFormErrors(t *testing.T) {
	assert.Equal(t, map[string][]string{}, FormErrors(staticErrors{}))
	assert.Equal(t, map[string][]string{
		"name":  {"bad", "worse"},
		"email": {"This field is required."},
	}, FormErrors(staticErrors{
		"name":  {errors.New("bad"), errors.New("worse")},
		"email": {errRequired},
	}))
}

func TestFormRequire(t *testing.T) {
	form := NewForm(map[string]string{"name": "devs", "display_name": ""})
	form.Require("name", "display_name", "mailing_list")
	err := form.Err()
	assert.Equal(t, apidata.ErrInvalidForm{Fields: map[string][]string{
		"display_name": {"This field is required."},
		"mailing_list": {"This field is required."},
	}}, err)
}

func TestFormNoErrors(t *testing.T) {
	form := NewForm(map[string]string{"name": "devs"})
	form.Require("name")
	assert.NoError(t, form.Err())
}

func TestDecodeGroupForm(t *testing.T) {
	values, err := decodeGroupForm(map[string]string{
		"name":           "devs",
		"display_name":   "Developers",
		"visible":        "false",
		"invite_only":    "1",
		"extra_data.foo": "bar",
		"unknown":        "ignored",
	}, true)
	if assert.NoError(t, err) {
		if assert.NotNil(t, values.Name) {
			assert.Equal(t, "devs", *values.Name)
		}
		if assert.NotNil(t, values.DisplayName) {
			assert.Equal(t, "Developers", *values.DisplayName)
		}
		assert.Nil(t, values.MailingList)
		if assert.NotNil(t, values.Visible) {
			assert.False(t, *values.Visible)
		}
		if assert.NotNil(t, values.InviteOnly) {
			assert.True(t, *values.InviteOnly)
		}
	}
}

func TestDecodeGroupFormCreateRequired(t *testing.T) {
	_, err := decodeGroupForm(map[string]string{}, true)
	assert.Equal(t, apidata.ErrInvalidForm{Fields: map[string][]string{
		"name":         {"This field is required."},
		"display_name": {"This field is required."},
	}}, err)
}

func TestDecodeGroupFormUpdate(t *testing.T) {
	values, err := decodeGroupForm(map[string]string{"mailing_list": "devs@example.com"}, false)
	if assert.NoError(t, err) {
		assert.Nil(t, values.Name)
		if assert.NotNil(t, values.MailingList) {
			assert.Equal(t, "devs@example.com", *values.MailingList)
		}
	}

	_, err = decodeGroupForm(map[string]string{"name": ""}, false)
	assert.Equal(t, apidata.ErrInvalidForm{Fields: map[string][]string{
		"name": {"This field is required."},
	}}, err)
}

func TestDecodeGroupFormTooLong(t *testing.T) {
	_, err := decodeGroupForm(map[string]string{
		"name":         strings.Repeat("n", model.MaxGroupNameLength+1),
		"display_name": strings.Repeat("é", model.MaxGroupDisplayNameLength+1),
		"mailing_list": strings.Repeat("m", model.MaxMailingListLength+1),
	}, true)
	assert.Equal(t, apidata.ErrInvalidForm{Fields: map[string][]string{
		"name":         {"Ensure this value has at most 64 characters (it has 65)."},
		"display_name": {"Ensure this value has at most 64 characters (it has 65)."},
		"mailing_list": {"Ensure this value has at most 254 characters (it has 255)."},
	}}, err)

	// Exactly at the limit is fine, counting characters rather than bytes
	_, err = decodeGroupForm(map[string]string{
		"name":         strings.Repeat("n", model.MaxGroupNameLength),
		"display_name": strings.Repeat("é", model.MaxGroupDisplayNameLength),
		"mailing_list": strings.Repeat("m", model.MaxMailingListLength),
	}, true)
	assert.NoError(t, err)

	_, err = decodeGroupForm(map[string]string{
		"mailing_list": strings.Repeat("m", model.MaxMailingListLength+1),
	}, false)
	assert.Equal(t, apidata.ErrInvalidForm{Fields: map[string][]string{
		"mailing_list": {"Ensure this value has at most 254 characters (it has 255)."},
	}}, err)
}

func TestDecodeGroupFormInvalid(t *testing.T) {
	_, err := decodeGroupForm(map[string]string{
		"name":         "no spaces",
		"display_name": "Developers",
		"visible":      "maybe",
	}, true)
	assert.Equal(t, apidata.ErrInvalidForm{Fields: map[string][]string{
		"name":    {errBadGroupName.Error()},
		"visible": {`"maybe" is not a valid value.`},
	}}, err)
}
