// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package webapi

import (
	"net/http"

	"github.com/diffeo/go-webapi/apidata"
	"github.com/diffeo/go-webapi/model"
)

// Authenticator identifies the user making a request.
type Authenticator interface {
	// Authenticate returns the requesting user, or a new
	// anonymous user if the request carries no usable
	// credentials.  It returns an error only if the request
	// carries credentials that are wrong.
	Authenticate(req *http.Request) (*model.User, error)
}

// BasicAuthenticator checks HTTP basic credentials against the
// passwords stored in a backend.
type BasicAuthenticator struct {
	Backend model.Backend
}

// Authenticate checks the request's basic credentials.  Requests
// with some other kind of Authorization: header are anonymous.
func (a BasicAuthenticator) Authenticate(req *http.Request) (*model.User, error) {
	username, password, ok := req.BasicAuth()
	if !ok {
		return model.Anonymous(), nil
	}
	user, err := a.Backend.User(username)
	if model.IsNotFound(err) {
		return nil, apidata.ErrLoginFailed
	} else if err != nil {
		return nil, err
	}
	if err := user.CheckPassword(password); err != nil {
		return nil, apidata.ErrLoginFailed
	}
	return user, nil
}
