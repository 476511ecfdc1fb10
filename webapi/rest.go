// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package webapi

// This file contains a REST skeleton framework.
//
// The bulk of this is dealing with HTTP content type negotiation, and
// providing a standard way to deal with input and output values.
// Every resource answers with either generic JSON or its own vendor
// media type, and both are the same JSON encoding.

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/diffeo/go-webapi/apidata"
	"github.com/sirupsen/logrus"
)

// HandlerFunc is a single operation on a resource.  It returns the
// object to serialize as the response body; nil means no content.
type HandlerFunc func(ctx *Context) (interface{}, error)

// errBadAccept is returned from negotiateResponse() if the Accept:
// header is malformed (and no more specific error applies).
var errBadAccept = errors.New("Invalid Accept: header")

// errNotAcceptable is returned from negotiateResponse() if the Accept:
// header does not mention any media types we can actually return.
type errNotAcceptable struct{}

func (e errNotAcceptable) Error() string {
	return "No acceptable representation for response"
}

func (e errNotAcceptable) HTTPStatus() int {
	return http.StatusNotAcceptable
}

// errMethodNotAllowed is used within the resourceHandler implementation
// to flag an error if a particular HTTP method is not allowed.  This
// corresponds exactly to the 405 Method Not Allowed HTTP status code.
type errMethodNotAllowed struct {
	Method string
}

func (e errMethodNotAllowed) Error() string {
	return fmt.Sprintf("Method %v not allowed", e.Method)
}

func (e errMethodNotAllowed) HTTPStatus() int {
	return http.StatusMethodNotAllowed
}

// responseCreated is returned as a value response from handler
// functions that want to indicate that a new resource was created.
type responseCreated struct {
	// Location holds the canonical URL to the newly created resource.
	Location string

	// Body contains the object sent in the body of the response.
	Body interface{}
}

type resourceHandler struct {
	// Name is the media type name of this resource, such as
	// "group" or "groups".
	Name string

	// Context reads an HTTP request and produces a context object.
	Context func(req *http.Request) (*Context, error)

	// Logger receives failures that happen before there is a
	// request context.
	Logger logrus.FieldLogger

	// Get, if non-nil, returns a representation of the object.
	Get HandlerFunc

	// Put, if non-nil, updates the object from ctx.Fields.
	Put HandlerFunc

	// Post, if non-nil, takes some arbitrary action with
	// ctx.Fields, possibly returning responseCreated.
	Post HandlerFunc

	// Delete, if non-nil, deletes the object.
	Delete HandlerFunc
}

func (h *resourceHandler) ServeHTTP(resp http.ResponseWriter, req *http.Request) {
	var (
		ctx          *Context
		out          interface{}
		err          error
		status       int
		responseType string
	)

	// Recover from panics by sending an HTTP error.
	defer func() {
		if recovered := recover(); recovered != nil {
			response := apidata.ErrorResponse{}
			response.FromPanic(recovered)
			h.log(ctx).WithField("stack", response.Stack).
				Errorf("panic: %s", response.Err.Message)
			resp.Header().Set("Content-Type", apidata.JSONMediaType)
			resp.WriteHeader(response.Status)
			_ = apidata.Encode(resp, response)
		}
	}()

	// Start by trying to come up with a response type, even before
	// trying to parse the input.  This determines what format an
	// error message could be sent back as.
	responseType, err = h.negotiateResponse(req)
	if err != nil {
		// Gotta pick something
		responseType = apidata.JSONMediaType
	}

	// Find the site and user
	if err == nil {
		ctx, err = h.Context(req)
	}

	// Read the form fields, if they're there
	if err == nil && (req.Method == http.MethodPut || req.Method == http.MethodPost) {
		contentType := req.Header.Get("Content-Type")
		ctx.Fields, err = apidata.DecodeFields(contentType, req.Body)
	}

	// Actually call the handler method
	if err == nil {
		// We will return this if the method is unexpected or
		// we don't have a handler for it
		err = errMethodNotAllowed{Method: req.Method}
		switch req.Method {
		case http.MethodGet, http.MethodHead:
			if h.Get != nil {
				out, err = h.Get(ctx)
			}
		case http.MethodPut:
			if h.Put != nil {
				out, err = h.Put(ctx)
			}
		case http.MethodPost:
			if h.Post != nil {
				out, err = h.Post(ctx)
			}
		case http.MethodDelete:
			if h.Delete != nil {
				out, err = h.Delete(ctx)
			}
		}
	}

	// Fix up the final result based on what we know.
	if err != nil {
		errResp := apidata.ErrorResponse{}
		errResp.FromError(err)
		status = errResp.Status
		if errResp.Challenge != "" {
			resp.Header().Set("WWW-Authenticate", errResp.Challenge)
		}
		if status >= http.StatusInternalServerError {
			h.log(ctx).WithError(err).Error("request failed")
		}
		out = errResp
	} else if out == nil {
		status = http.StatusNoContent
	} else if created, isCreated := out.(responseCreated); isCreated {
		status = http.StatusCreated
		if created.Location != "" {
			resp.Header().Set("Location", created.Location)
		}
		out = created.Body
	} else {
		status = http.StatusOK
	}
	if req.Method == http.MethodHead {
		out = nil
	}

	// Actually send the response.  If writing fails we have
	// already sent a status line, so the best we can do is log.
	if out != nil {
		resp.Header().Set("Content-Type", responseType)
	}
	resp.WriteHeader(status)
	if out != nil {
		if err := apidata.Encode(resp, out); err != nil {
			h.log(ctx).WithError(err).Warn("failed to write response")
		}
	}
}

// log returns the best available logger for a request.
func (h *resourceHandler) log(ctx *Context) logrus.FieldLogger {
	if ctx != nil && ctx.Log != nil {
		return ctx.Log
	}
	if h.Logger != nil {
		return h.Logger
	}
	return logrus.StandardLogger()
}

// knownType returns true if this resource can produce mediaType.
func (h *resourceHandler) knownType(mediaType string) bool {
	switch mediaType {
	case "text/json", apidata.JSONMediaType, apidata.ItemMediaType(h.Name):
		return true
	}
	return false
}

// negotiateResponse returns a supported MIME type for the response
// body, following the path laid out in RFC 7231 section 5.3.
func (h *resourceHandler) negotiateResponse(req *http.Request) (string, error) {
	accept := req.Header.Get("Accept")
	if accept == "" {
		accept = "*/*"
	}
	bestType := ""
	bestQ := 0.0
	mediaRanges := strings.Split(accept, ",")
	for _, mediaRange := range mediaRanges {
		mediaRange = strings.TrimSpace(mediaRange)
		mediaType, params, err := mime.ParseMediaType(mediaRange)
		if err != nil {
			return "", apidata.ErrBadRequest{Err: err}
		}

		// What is the "q" ("quality") parameter for this type?
		// If it is less than the best known so far, skip it
		q := 1.0
		if qStr, haveQ := params["q"]; haveQ {
			q, err = strconv.ParseFloat(qStr, 64)
			if err != nil {
				return "", apidata.ErrBadRequest{Err: err}
			}
			if q < 0.0 || q > 1.0 {
				return "", apidata.ErrBadRequest{Err: errBadAccept}
			}
		}
		if q < bestQ {
			continue
		}

		// This is acceptable if it's a type we know, or it's
		// one of a couple of specific wildcards.  Also need to
		// handle wildcard precedence.  So:
		if mediaType == "*/*" {
			// Doesn't override anything.
			if q > bestQ {
				bestType = mediaType
				bestQ = q
			}
		} else if mediaType == "text/*" || mediaType == "application/*" {
			// Only overrides "*/*".
			if q > bestQ || bestType == "*/*" {
				bestType = mediaType
				bestQ = q
			}
		} else if h.knownType(mediaType) {
			// Overrides any wildcard.  We want the first one
			// at a given q to win.
			if q > bestQ || bestType == "*/*" || bestType == "text/*" || bestType == "application/*" {
				bestType = mediaType
				bestQ = q
			}
		}
		// Otherwise we don't recognize this type at all, so
		// just drop it.
	}
	// If this failed to win, return an error
	if bestQ == 0.0 {
		return "", errNotAcceptable{}
	}
	switch bestType {
	case "*/*", "application/*":
		return apidata.JSONMediaType, nil
	case "text/*":
		return "text/json", nil
	default:
		return bestType, nil
	}
}
