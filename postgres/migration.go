// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"
	"strconv"

	"github.com/diffeo/go-webapi/model"
	"github.com/rubenv/sql-migrate"
)

// This file maintains the database migration code.  See
// https://github.com/rubenv/sql-migrate for details of what goes in
// here.  This runs "outside" the normal request flow, either at
// initial startup or from the "migrate" command.

var migrationSource = &migrate.MemoryMigrationSource{
	Migrations: []*migrate.Migration{
		{
			Id: "1-initial",
			Up: []string{
				`CREATE TABLE account(
					id SERIAL PRIMARY KEY,
					username VARCHAR(150) NOT NULL UNIQUE,
					first_name VARCHAR(150) NOT NULL DEFAULT '',
					last_name VARCHAR(150) NOT NULL DEFAULT '',
					email VARCHAR(254) NOT NULL DEFAULT '',
					superuser BOOLEAN NOT NULL DEFAULT FALSE,
					password_hash VARCHAR(128) NOT NULL DEFAULT ''
				)`,
				`CREATE TABLE site(
					id SERIAL PRIMARY KEY,
					name VARCHAR(32) NOT NULL UNIQUE,
					public BOOLEAN NOT NULL DEFAULT FALSE
				)`,
				`CREATE TABLE site_user(
					site_id INTEGER NOT NULL REFERENCES site(id) ON DELETE CASCADE,
					user_id INTEGER NOT NULL REFERENCES account(id) ON DELETE CASCADE,
					admin BOOLEAN NOT NULL DEFAULT FALSE,
					PRIMARY KEY(site_id, user_id, admin)
				)`,
				`CREATE TABLE review_group(
					id SERIAL PRIMARY KEY,
					site_id INTEGER NOT NULL DEFAULT 0,
					name VARCHAR(`+strconv.Itoa(model.MaxGroupNameLength)+`) NOT NULL,
					display_name VARCHAR(`+strconv.Itoa(model.MaxGroupDisplayNameLength)+`) NOT NULL DEFAULT '',
					mailing_list VARCHAR(`+strconv.Itoa(model.MaxMailingListLength)+`) NOT NULL DEFAULT '',
					visible BOOLEAN NOT NULL DEFAULT TRUE,
					invite_only BOOLEAN NOT NULL DEFAULT FALSE,
					extra_data BYTEA,
					last_updated TIMESTAMP WITH TIME ZONE NOT NULL,
					UNIQUE(site_id, name)
				)`,
				`CREATE TABLE group_member(
					group_id INTEGER NOT NULL REFERENCES review_group(id) ON DELETE CASCADE,
					user_id INTEGER NOT NULL REFERENCES account(id) ON DELETE CASCADE,
					PRIMARY KEY(group_id, user_id)
				)`,
				`CREATE INDEX site_user_user ON site_user(user_id)`,
			},
			Down: []string{
				`DROP TABLE group_member`,
				`DROP TABLE review_group`,
				`DROP TABLE site_user`,
				`DROP TABLE site`,
				`DROP TABLE account`,
			},
		},
	},
}

// Upgrade upgrades a database to the latest database schema version.
func Upgrade(db *sql.DB) error {
	_, err := migrate.Exec(db, "postgres", migrationSource, migrate.Up)
	return err
}

// Drop clears a database by running all of the migrations in reverse,
// ultimately resulting in dropping all of the tables.
func Drop(db *sql.DB) error {
	_, err := migrate.Exec(db, "postgres", migrationSource, migrate.Down)
	return err
}
