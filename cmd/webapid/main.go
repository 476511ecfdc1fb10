// Copyright 2015-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package webapid runs the web API as an HTTP daemon, and provides
// administrative commands for its storage.
//
//     webapid --backend postgres:dbname=webapi migrate
//     webapid --backend postgres:dbname=webapi adduser --superuser --password s3cret admin
//     webapid --backend postgres:dbname=webapi serve
//     webapid count --url http://localhost:8080/api/ groups
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/diffeo/go-webapi/model"
	"github.com/diffeo/go-webapi/postgres"
	"github.com/diffeo/go-webapi/webapiclient"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

// daemon holds the state shared by all commands, set up before any
// of them runs.
type daemon struct {
	Config Config
	Logger *logrus.Logger
}

var app daemon

var serveCommand = cli.Command{
	Name:  "serve",
	Usage: "run the HTTP API server",
	Action: func(c *cli.Context) error {
		store, err := app.Config.Backend.Backend()
		if err != nil {
			return err
		}
		return serve(store, app.Config, app.Logger)
	},
}

var migrateCommand = cli.Command{
	Name:  "migrate",
	Usage: "upgrade the PostgreSQL schema",
	Flags: []cli.Flag{
		cli.BoolFlag{
			Name:  "drop",
			Usage: "drop all tables instead",
		},
	},
	Action: func(c *cli.Context) error {
		if app.Config.Backend.Implementation != "postgres" {
			return errors.New("migrate requires a postgres backend")
		}
		db, err := postgres.Open(app.Config.Backend.Address)
		if err != nil {
			return err
		}
		defer db.Close()
		if c.Bool("drop") {
			err = postgres.Drop(db)
		} else {
			err = postgres.Upgrade(db)
		}
		if err == nil {
			app.Logger.WithField("drop", c.Bool("drop")).Info("migrated database")
		}
		return err
	},
}

// persistentBackend opens the configured backend for a command that
// changes it.  The memory backend is refused since anything written
// there is gone when the command exits.
func persistentBackend(command string) (model.Backend, error) {
	if app.Config.Backend.Implementation == "memory" {
		return nil, fmt.Errorf("%s requires a persistent backend", command)
	}
	return app.Config.Backend.Backend()
}

var addUserCommand = cli.Command{
	Name:      "adduser",
	Usage:     "create a user",
	ArgsUsage: "username",
	Flags: []cli.Flag{
		cli.StringFlag{Name: "password", Usage: "login password"},
		cli.StringFlag{Name: "first-name"},
		cli.StringFlag{Name: "last-name"},
		cli.StringFlag{Name: "email"},
		cli.BoolFlag{Name: "superuser", Usage: "grant access to everything"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return errors.New("adduser needs exactly one username")
		}
		store, err := persistentBackend("adduser")
		if err != nil {
			return err
		}
		user := &model.User{
			Username:  c.Args().First(),
			FirstName: c.String("first-name"),
			LastName:  c.String("last-name"),
			Email:     c.String("email"),
			Superuser: c.Bool("superuser"),
		}
		return addUser(store, user, c.String("password"), app.Logger)
	},
}

// addUser creates a user with a password.
func addUser(store model.Backend, user *model.User, password string, logger logrus.FieldLogger) error {
	if err := user.SetPassword(password); err != nil {
		return err
	}
	if err := store.CreateUser(user); err != nil {
		return err
	}
	logger.WithField("user", user.Username).Info("created user")
	return nil
}

var addSiteCommand = cli.Command{
	Name:      "addsite",
	Usage:     "create a site",
	ArgsUsage: "name",
	Flags: []cli.Flag{
		cli.BoolFlag{Name: "public", Usage: "allow anyone to read the site"},
		cli.StringSliceFlag{Name: "user", Usage: "username of a member"},
		cli.StringSliceFlag{Name: "admin", Usage: "username of an administrator"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return errors.New("addsite needs exactly one site name")
		}
		store, err := persistentBackend("addsite")
		if err != nil {
			return err
		}
		site := &model.Site{
			Name:   c.Args().First(),
			Public: c.Bool("public"),
			Users:  c.StringSlice("user"),
			Admins: c.StringSlice("admin"),
		}
		if err := store.CreateSite(site); err != nil {
			return err
		}
		app.Logger.WithField("site", site.Name).Info("created site")
		return nil
	},
}

var countCommand = cli.Command{
	Name:      "count",
	Usage:     "count the objects in a list on a running server",
	ArgsUsage: "groups|users|sites",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "url",
			Value: "http://localhost:8080/api/",
			Usage: "base URL of the API",
		},
		cli.StringFlag{Name: "site", Usage: "count inside this site"},
		cli.StringFlag{Name: "user", Usage: "log in as this user"},
		cli.StringFlag{Name: "password", Usage: "password for --user"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return errors.New("count needs exactly one list name")
		}
		var (
			client *webapiclient.Client
			err    error
		)
		if c.String("user") != "" {
			client, err = webapiclient.NewWithCredentials(c.String("url"), c.String("user"), c.String("password"))
		} else {
			client, err = webapiclient.New(c.String("url"))
		}
		if err == nil && c.String("site") != "" {
			client, err = client.Site(c.String("site"))
		}
		if err != nil {
			return err
		}
		count, err := client.Count(c.Args().First())
		if err != nil {
			return err
		}
		fmt.Fprintln(c.App.Writer, count)
		return nil
	},
}

func newApp() *cli.App {
	a := cli.NewApp()
	a.Name = "webapid"
	a.Usage = "serve and administer the web API"
	a.Flags = configFlags
	a.Commands = []cli.Command{
		serveCommand,
		migrateCommand,
		addUserCommand,
		addSiteCommand,
		countCommand,
	}
	a.Before = func(c *cli.Context) (err error) {
		app.Config, err = loadConfig(c)
		if err != nil {
			return
		}
		app.Logger, err = app.Config.Logger()
		return
	}
	return a
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("webapid failed")
	}
}
