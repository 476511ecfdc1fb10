// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/negroni"
)

var requestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "diffeo",
		Subsystem: "webapi",
		Name:      "request_duration_seconds",
		Help:      "Time to serve API requests",
	},
	[]string{
		"route",
		"method",
		"code",
	},
)

func init() {
	prometheus.MustRegister(requestDuration)
}

// observeRequests is a mux middleware recording the duration of each
// request, labeled by its route name.
func observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rw := negroni.NewResponseWriter(w)
		next.ServeHTTP(rw, req)

		route := "unknown"
		if current := mux.CurrentRoute(req); current != nil && current.GetName() != "" {
			route = current.GetName()
		}
		requestDuration.With(prometheus.Labels{
			"route":  route,
			"method": req.Method,
			"code":   strconv.Itoa(rw.Status()),
		}).Observe(time.Since(start).Seconds())
	})
}
