// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"
	"time"

	"github.com/diffeo/go-webapi/webapi"
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"
)

// requestID makes sure every request has an ID, generating one if
// the client did not send one, and echoes it in the response.
type requestID struct{}

func (requestID) ServeHTTP(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
	id := req.Header.Get(webapi.RequestIDHeader)
	if id == "" {
		id = uuid.NewV4().String()
		req.Header.Set(webapi.RequestIDHeader, id)
	}
	rw.Header().Set(webapi.RequestIDHeader, id)
	next(rw, req)
}

// accessLog writes one log entry per request.
type accessLog struct {
	Logger logrus.FieldLogger
}

func (l accessLog) ServeHTTP(rw http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
	start := time.Now()
	next(rw, req)
	res := rw.(negroni.ResponseWriter)
	l.Logger.WithFields(logrus.Fields{
		"request_id": req.Header.Get(webapi.RequestIDHeader),
		"method":     req.Method,
		"path":       req.URL.Path,
		"remote":     req.RemoteAddr,
		"status":     res.Status(),
		"size":       res.Size(),
		"duration":   time.Since(start),
	}).Info("request")
}

// newMiddleware wraps a handler in the daemon's middleware chain:
// panic recovery, request IDs, and optionally an access log.
func newMiddleware(handler http.Handler, logger *logrus.Logger, logRequests bool) *negroni.Negroni {
	recovery := negroni.NewRecovery()
	recovery.Logger = logger
	recovery.PrintStack = false

	n := negroni.New(recovery, requestID{})
	if logRequests {
		n.Use(accessLog{Logger: logger})
	}
	n.UseHandler(handler)
	return n
}
