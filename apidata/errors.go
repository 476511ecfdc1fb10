// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package apidata

import (
	"fmt"
	"net/http"
	"runtime"

	"github.com/diffeo/go-webapi/model"
)

// ErrorStatus describes errors that correspond to specific HTTP status
// codes.
type ErrorStatus interface {
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// APIError is a well-known API failure with a numeric code.
// Handlers return these as plain errors; the HTTP layer serializes
// them.
type APIError struct {
	// Code is the numeric API error code.
	Code int

	// Message is a human-readable description of the failure.
	Message string

	// Status is the HTTP status code sent with this error.
	Status int

	// Challenge, if non-empty, is sent as a WWW-Authenticate
	// header with this error.
	Challenge string
}

func (e APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the error's HTTP status, defaulting to 500
// Internal Server Error.
func (e APIError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// Is reports whether err is an APIError with the same code as e.
func (e APIError) Is(err error) bool {
	other, ok := err.(APIError)
	return ok && other.Code == e.Code
}

// BasicChallenge is the WWW-Authenticate challenge sent with
// authentication failures.
const BasicChallenge = `Basic realm="Web API"`

// The well-known API errors.
var (
	ErrDoesNotExist = APIError{
		Code:    100,
		Message: "Object does not exist",
		Status:  http.StatusNotFound,
	}
	ErrPermissionDenied = APIError{
		Code:    101,
		Message: "You don't have permission for this",
		Status:  http.StatusForbidden,
	}
	ErrNotLoggedIn = APIError{
		Code:      103,
		Message:   "You are not logged in",
		Status:    http.StatusUnauthorized,
		Challenge: BasicChallenge,
	}
	ErrLoginFailed = APIError{
		Code:      104,
		Message:   "The username or password was not correct",
		Status:    http.StatusUnauthorized,
		Challenge: BasicChallenge,
	}
	ErrInvalidFormData = APIError{
		Code:    105,
		Message: "One or more fields had errors",
		Status:  http.StatusBadRequest,
	}
	ErrMissingAttribute = APIError{
		Code:    106,
		Message: "Missing value for the attribute",
		Status:  http.StatusBadRequest,
	}
)

// wellKnown indexes the well-known errors by code.
var wellKnown = map[int]APIError{}

func init() {
	for _, e := range []APIError{
		ErrDoesNotExist,
		ErrPermissionDenied,
		ErrNotLoggedIn,
		ErrLoginFailed,
		ErrInvalidFormData,
		ErrMissingAttribute,
	} {
		wellKnown[e.Code] = e
	}
}

// ErrInvalidForm reports per-field validation failures.  It is sent
// as ErrInvalidFormData with the field messages attached.
type ErrInvalidForm struct {
	Fields map[string][]string
}

func (e ErrInvalidForm) Error() string {
	return ErrInvalidFormData.Message
}

// HTTPStatus returns a fixed 400 Bad Request error code.
func (e ErrInvalidForm) HTTPStatus() int {
	return http.StatusBadRequest
}

// ErrUnsupportedMediaType is returned from Decode() if the provided
// Content-Type: is unrecognized.  This translates directly into the
// equivalent HTTP 415 error.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("Unsupported media type %q", e.Type)
}

// HTTPStatus returns a fixed 415 Unsupported Media Type error code.
func (e ErrUnsupportedMediaType) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// ErrBadRequest is returned as an error when there is an error decoding
// HTTP headers or the request body.
type ErrBadRequest struct {
	Err error
}

func (e ErrBadRequest) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 400 Bad Request HTTP status code.
func (e ErrBadRequest) HTTPStatus() int {
	return http.StatusBadRequest
}

// FromError populates an ErrorResponse to fill in its fields based
// on an error value.  API errors are copied directly; the model
// package's not-found errors become ErrDoesNotExist; anything else
// gets code 0, with the HTTP status from ErrorStatus if the error
// implements it.
func (e *ErrorResponse) FromError(err error) {
	e.Stat = "fail"
	switch et := err.(type) {
	case APIError:
		e.Err = ErrorDetail{Code: et.Code, Message: et.Message}
		e.Status = et.HTTPStatus()
		e.Challenge = et.Challenge
		return
	case ErrInvalidForm:
		e.Err = ErrorDetail{Code: ErrInvalidFormData.Code, Message: ErrInvalidFormData.Message}
		e.Fields = et.Fields
		e.Status = et.HTTPStatus()
		return
	case ErrBadRequest:
		e.Err = ErrorDetail{Code: ErrInvalidFormData.Code, Message: et.Error()}
		e.Status = et.HTTPStatus()
		return
	}
	if model.IsNotFound(err) {
		e.Err = ErrorDetail{Code: ErrDoesNotExist.Code, Message: err.Error()}
		e.Status = ErrDoesNotExist.Status
		return
	}
	e.Err = ErrorDetail{Message: err.Error()}
	e.Status = http.StatusInternalServerError
	if errS, hasStatus := err.(ErrorStatus); hasStatus {
		e.Status = errS.HTTPStatus()
	}
}

// ToError converts e back to an error.  Failures with per-field
// messages become ErrInvalidForm.  Other failures become an APIError
// carrying the server's code and message; status is the HTTP status
// the response arrived with.
func (e *ErrorResponse) ToError(status int) error {
	if e.Err.Code == ErrInvalidFormData.Code && len(e.Fields) > 0 {
		return ErrInvalidForm{Fields: e.Fields}
	}
	result := APIError{
		Code:    e.Err.Code,
		Message: e.Err.Message,
		Status:  status,
	}
	if known, ok := wellKnown[e.Err.Code]; ok {
		result.Challenge = known.Challenge
		if result.Message == "" {
			result.Message = known.Message
		}
	}
	return result
}

// FromPanic populates an error response based on a panic.  Typical use
// is:
//
//     defer func() {
//         if obj := recover(); obj != nil {
//             resp := apidata.ErrorResponse{}
//             resp.FromPanic(obj)
//             // write resp out as makes sense
//         }
//     }()
func (e *ErrorResponse) FromPanic(obj interface{}) {
	e.Stat = "fail"
	e.Status = http.StatusInternalServerError
	if recoveredError, isError := obj.(error); isError {
		e.Err.Message = recoveredError.Error()
	} else {
		e.Err.Message = fmt.Sprintf("%+v", obj)
	}
	var stack [4096]byte
	len := runtime.Stack(stack[:], false)
	e.Stack = string(stack[:len])
}
