// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package apidata

import (
	"bytes"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/diffeo/go-webapi/model"
	"github.com/stretchr/testify/assert"
)

func TestItemMediaType(t *testing.T) {
	assert.Equal(t, "application/vnd.diffeo.webapi.group+json", ItemMediaType("group"))
	assert.True(t, isJSON(ItemMediaType("groups")))
	assert.True(t, isJSON("application/json"))
	assert.False(t, isJSON("application/vnd.diffeo.webapi.group+xml"))
	assert.False(t, isJSON("text/plain"))
}

func TestFromError(t *testing.T) {
	tests := []struct {
		Err       error
		Code      int
		Status    int
		Challenge string
	}{
		{ErrNotLoggedIn, 103, http.StatusUnauthorized, BasicChallenge},
		{ErrPermissionDenied, 101, http.StatusForbidden, ""},
		{ErrLoginFailed, 104, http.StatusUnauthorized, BasicChallenge},
		{model.ErrNoSuchSite{Name: "corp"}, 100, http.StatusNotFound, ""},
		{model.ErrNoSuchGroup{Name: "devs"}, 100, http.StatusNotFound, ""},
		{ErrBadRequest{Err: errors.New("bad")}, 105, http.StatusBadRequest, ""},
		{ErrUnsupportedMediaType{Type: "text/plain"}, 0, http.StatusUnsupportedMediaType, ""},
		{errors.New("boom"), 0, http.StatusInternalServerError, ""},
	}
	for _, test := range tests {
		var resp ErrorResponse
		resp.FromError(test.Err)
		assert.Equal(t, "fail", resp.Stat)
		assert.Equal(t, test.Code, resp.Err.Code, "%v", test.Err)
		assert.Equal(t, test.Err.Error(), resp.Err.Message)
		assert.Equal(t, test.Status, resp.Status, "%v", test.Err)
		assert.Equal(t, test.Challenge, resp.Challenge, "%v", test.Err)
	}
}

func TestFromErrorForm(t *testing.T) {
	var resp ErrorResponse
	fields := map[string][]string{"name": {"This field is required."}}
	resp.FromError(ErrInvalidForm{Fields: fields})
	assert.Equal(t, 105, resp.Err.Code)
	assert.Equal(t, fields, resp.Fields)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	assert.Equal(t, ErrInvalidForm{Fields: fields}, resp.ToError(http.StatusBadRequest))
}

func TestToError(t *testing.T) {
	var resp ErrorResponse
	resp.FromError(ErrNotLoggedIn)
	err := resp.ToError(http.StatusUnauthorized)
	assert.Equal(t, ErrNotLoggedIn, err)
	assert.True(t, errors.Is(err, ErrNotLoggedIn))
	assert.False(t, errors.Is(err, ErrPermissionDenied))

	resp = ErrorResponse{Stat: "fail", Err: ErrorDetail{Code: 100}}
	err = resp.ToError(http.StatusNotFound)
	assert.Equal(t, APIError{
		Code:    100,
		Message: ErrDoesNotExist.Message,
		Status:  http.StatusNotFound,
	}, err)
}

func TestFromPanic(t *testing.T) {
	var resp ErrorResponse
	resp.FromPanic("oops")
	assert.Equal(t, "fail", resp.Stat)
	assert.Equal(t, "oops", resp.Err.Message)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
	assert.NotEmpty(t, resp.Stack)
}

func TestEncodeErrorResponse(t *testing.T) {
	var resp ErrorResponse
	resp.FromError(ErrNotLoggedIn)
	var buf bytes.Buffer
	if assert.NoError(t, Encode(&buf, resp)) {
		assert.JSONEq(t,
			`{"stat":"fail","err":{"code":103,"msg":"You are not logged in"}}`,
			buf.String())
	}
}

func TestEncodeCount(t *testing.T) {
	var buf bytes.Buffer
	if assert.NoError(t, Encode(&buf, Count{Count: 0})) {
		assert.JSONEq(t, `{"count":0}`, buf.String())
	}
}

func TestDecode(t *testing.T) {
	var count Count
	err := Decode(ItemMediaType("groups"), strings.NewReader(`{"count":7}`), &count)
	if assert.NoError(t, err) {
		assert.Equal(t, 7, count.Count)
	}

	err = Decode("text/plain", strings.NewReader(`7`), &count)
	assert.Equal(t, ErrUnsupportedMediaType{Type: "text/plain"}, err)
}

func TestDecodeFieldsForm(t *testing.T) {
	fields, err := DecodeFields(FormMediaType,
		strings.NewReader("name=devs&visible=0&extra_data.color="))
	if assert.NoError(t, err) {
		assert.Equal(t, map[string]string{
			"name":             "devs",
			"visible":          "0",
			"extra_data.color": "",
		}, fields)
	}
}

func TestDecodeFieldsJSON(t *testing.T) {
	fields, err := DecodeFields("application/json; charset=utf-8",
		strings.NewReader(`{"name":"devs","visible":false,"extra_data.n":3,"mailing_list":null}`))
	if assert.NoError(t, err) {
		assert.Equal(t, map[string]string{
			"name":         "devs",
			"visible":      "false",
			"extra_data.n": "3",
			"mailing_list": "",
		}, fields)
	}

	_, err = DecodeFields(JSONMediaType, strings.NewReader(`{"name":["a"]}`))
	assert.IsType(t, ErrBadRequest{}, err)

	_, err = DecodeFields("", strings.NewReader(`name=devs`))
	assert.Equal(t, ErrUnsupportedMediaType{Type: "application/octet-stream"}, err)
}
