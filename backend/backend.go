// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package backend provides a standard way to construct a model.Backend
// based on command-line flags or a configuration file.
package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diffeo/go-webapi/cache"
	"github.com/diffeo/go-webapi/memory"
	"github.com/diffeo/go-webapi/model"
	"github.com/diffeo/go-webapi/postgres"
)

// Backend describes user-visible parameters to store site data.
// This implements the flag.Value interface, and so a typical use is
//
//     func main() {
//         backend := backend.Backend{Implementation: "memory"}
//         flag.Var(&backend, "backend", "impl:address of site storage")
//         flag.Parse()
//         store, err := backend.Backend()
//     }
//
// It also implements yaml.Unmarshaler, so a configuration file can
// contain a line like
//
//     backend: postgres:postgres://localhost/webapi?sslmode=disable
type Backend struct {
	// Implementation holds the name of the implementation; for
	// instance, "memory".
	Implementation string

	// Address holds some backend-specific address, such as a
	// database connect string.
	Address string

	// CacheSize is the number of sites to keep in a lookup
	// cache.  Zero disables the cache.
	CacheSize int
}

// implementations lists the known backend names.
var implementations = []string{"memory", "postgres"}

// Backend creates a new storage backend.  This generally should be
// only called once.  If the backend has in-process state, such as a
// database connection pool or an in-memory store, calling this
// multiple times will create multiple copies of that state.  In
// particular, if b.Implementation is "memory", multiple calls to this
// will create multiple independent "worlds".
func (b *Backend) Backend() (model.Backend, error) {
	var (
		store model.Backend
		err   error
	)
	switch b.Implementation {
	case "memory":
		store = memory.New()
	case "postgres":
		store, err = postgres.New(b.Address)
	default:
		err = fmt.Errorf("unknown backend %q", b.Implementation)
	}
	if err != nil {
		return nil, err
	}
	if b.CacheSize > 0 {
		store = cache.NewWithSize(store, b.CacheSize)
	}
	return store, nil
}

// String renders a backend description as a string.
func (b *Backend) String() string {
	if b.Address == "" {
		return b.Implementation
	}
	return b.Implementation + ":" + b.Address
}

// Set parses a string into an existing backend description.  The
// string should be of the form "implementation:address", where
// address can be any string.  Set checks to see if the provided
// implementation is any of the known implementations, and returns an
// appropriate error if not.
//
// This is part of the flag.Value interface.  Note that neither this
// nor Backend() validates the b.Address part of the string before
// actually making a connection.
func (b *Backend) Set(param string) error {
	parts := strings.SplitN(param, ":", 2)
	if parts[0] == "" {
		return errors.New("must specify a backend type")
	}
	known := false
	for _, impl := range implementations {
		if parts[0] == impl {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("unknown backend %q (known: %s)",
			parts[0], strings.Join(implementations, ", "))
	}
	b.Implementation = parts[0]
	b.Address = ""
	if len(parts) == 2 {
		b.Address = parts[1]
	}
	return nil
}

// UnmarshalYAML reads a backend description from a YAML string.
func (b *Backend) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var param string
	if err := unmarshal(&param); err != nil {
		return err
	}
	return b.Set(param)
}
