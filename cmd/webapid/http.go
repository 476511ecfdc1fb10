// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"

	"github.com/diffeo/go-webapi/model"
	"github.com/diffeo/go-webapi/webapi"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// newHandler builds the complete HTTP handler: the API, its metrics
// at /metrics, and the middleware chain around both.
func newHandler(store model.Backend, config Config, logger *logrus.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(observeRequests)
	webapi.PopulateRouter(r, store, config.Settings(), logger)
	r.Handle("/metrics", promhttp.Handler()).Name("metrics")
	return newMiddleware(r, logger, config.LogRequests)
}

// serve runs an HTTP server on the configured address until it
// fails.
func serve(store model.Backend, config Config, logger *logrus.Logger) error {
	logger.WithField("listen", config.Listen).Info("serving HTTP")
	return http.ListenAndServe(config.Listen, newHandler(store, config, logger))
}
