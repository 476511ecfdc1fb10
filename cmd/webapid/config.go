// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"io/ioutil"

	"github.com/diffeo/go-webapi/backend"
	"github.com/diffeo/go-webapi/cache"
	"github.com/diffeo/go-webapi/webapi"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v2"
)

// Config holds the daemon settings, read from a YAML file and then
// overridden by command-line flags.
type Config struct {
	// Listen is the [ip]:port for the HTTP server.
	Listen string `yaml:"listen"`

	// Backend describes the storage backend.
	Backend backend.Backend `yaml:"backend"`

	// CacheSize is the number of sites to cache.  Zero disables
	// the cache.
	CacheSize int `yaml:"cache_size"`

	RequireSitewideLogin bool `yaml:"require_sitewide_login"`
	DefaultMaxResults    int  `yaml:"default_max_results"`
	MaxResults           int  `yaml:"max_results"`

	// LogLevel is a logrus level name, such as "info".
	LogLevel string `yaml:"log_level"`

	// LogRequests writes an access log entry for every request.
	LogRequests bool `yaml:"log_requests"`
}

// defaultConfig returns the settings used without a configuration
// file.
func defaultConfig() Config {
	return Config{
		Listen:    ":8080",
		Backend:   backend.Backend{Implementation: "memory"},
		CacheSize: cache.DefaultSize,
		LogLevel:  "info",
	}
}

func loadConfigYaml(filename string, config *Config) error {
	bytes, err := ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.Unmarshal(bytes, config)
	}
	return err
}

// configFlags are the global flags that override configuration
// file settings.
var configFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config",
		Usage: "global configuration YAML file",
	},
	cli.StringFlag{
		Name:  "listen",
		Usage: "[ip]:port for the HTTP server",
	},
	cli.GenericFlag{
		Name:  "backend",
		Value: &backend.Backend{Implementation: "memory"},
		Usage: "impl[:address] of the storage backend",
	},
	cli.IntFlag{
		Name:  "cache-size",
		Usage: "number of sites to cache (0 disables)",
	},
	cli.BoolFlag{
		Name:  "require-sitewide-login",
		Usage: "refuse all anonymous requests",
	},
	cli.StringFlag{
		Name:  "log-level",
		Usage: "minimum level of log messages",
	},
	cli.BoolFlag{
		Name:  "log-requests",
		Usage: "log all requests",
	},
}

// loadConfig builds the configuration from the default settings, the
// configuration file if one is named, and the flags that were set.
func loadConfig(c *cli.Context) (Config, error) {
	config := defaultConfig()
	if filename := c.GlobalString("config"); filename != "" {
		if err := loadConfigYaml(filename, &config); err != nil {
			return config, err
		}
	}
	if c.GlobalIsSet("listen") {
		config.Listen = c.GlobalString("listen")
	}
	if c.GlobalIsSet("backend") {
		config.Backend = *c.GlobalGeneric("backend").(*backend.Backend)
	}
	if c.GlobalIsSet("cache-size") {
		config.CacheSize = c.GlobalInt("cache-size")
	}
	if c.GlobalIsSet("require-sitewide-login") {
		config.RequireSitewideLogin = c.GlobalBool("require-sitewide-login")
	}
	if c.GlobalIsSet("log-level") {
		config.LogLevel = c.GlobalString("log-level")
	}
	if c.GlobalIsSet("log-requests") {
		config.LogRequests = c.GlobalBool("log-requests")
	}
	config.Backend.CacheSize = config.CacheSize
	return config, nil
}

// Settings returns the API settings.
func (config Config) Settings() webapi.Settings {
	return webapi.Settings{
		RequireSitewideLogin: config.RequireSitewideLogin,
		DefaultMaxResults:    config.DefaultMaxResults,
		MaxResults:           config.MaxResults,
	}
}

// Logger creates the daemon's logger.
func (config Config) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetLevel(level)
	return logger, nil
}
