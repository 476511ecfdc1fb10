// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"

	"github.com/diffeo/go-webapi/model"
)

// loadSiteUsers fills in site.Users and site.Admins.
func loadSiteUsers(tx *sql.Tx, site *model.Site) error {
	params := queryParams{}
	query := buildSelect([]string{
		userUsername,
		siteUserAdmin,
	}, []string{
		siteUserTable,
		userTable,
	}, []string{
		siteUserIsUser,
		siteUserSite + "=" + params.Param(site.ID),
	}) + " ORDER BY " + userUsername
	site.Users = nil
	site.Admins = nil
	return queryAndScanTx(tx, query, params, func(rows *sql.Rows) error {
		var (
			username string
			admin    bool
		)
		err := rows.Scan(&username, &admin)
		if err != nil {
			return err
		}
		if admin {
			site.Admins = append(site.Admins, username)
		} else {
			site.Users = append(site.Users, username)
		}
		return nil
	})
}

func (b *pgBackend) Site(name string) (site *model.Site, err error) {
	err = withTx(b, true, func(tx *sql.Tx) error {
		params := queryParams{}
		query := buildSelect([]string{
			siteID,
			siteName,
			sitePublic,
		}, []string{
			siteTable,
		}, []string{
			siteName + "=" + params.Param(name),
		})
		site = &model.Site{}
		err := tx.QueryRow(query, params...).Scan(&site.ID, &site.Name, &site.Public)
		if err == sql.ErrNoRows {
			return model.ErrNoSuchSite{Name: name}
		}
		if err != nil {
			return err
		}
		return loadSiteUsers(tx, site)
	})
	if err != nil {
		return nil, err
	}
	return site, nil
}

// siteConditions converts a site query to WHERE clause fragments.
func siteConditions(q model.SiteQuery, params *queryParams) []string {
	var conditions []string
	if q.PublicOnly {
		conditions = append(conditions, sitePublic)
	} else if q.Member != "" {
		member := ("EXISTS(SELECT 1 FROM " + siteUserTable + ", " + userTable +
			" WHERE " + siteUserIsUser +
			" AND " + siteUserSite + "=" + siteID +
			" AND " + userUsername + "=" + params.Param(q.Member) + ")")
		if q.IncludePublic {
			member = "(" + sitePublic + " OR " + member + ")"
		}
		conditions = append(conditions, member)
	}
	return conditions
}

func (b *pgBackend) Sites(q model.SiteQuery) ([]*model.Site, error) {
	params := queryParams{}
	query := buildSelect([]string{
		siteID,
		siteName,
		sitePublic,
	}, []string{
		siteTable,
	}, siteConditions(q, &params)) + pageClause(siteName, q.Offset, q.Limit)
	result := []*model.Site{}
	err := withTx(b, true, func(tx *sql.Tx) error {
		err := queryAndScanTx(tx, query, params, func(rows *sql.Rows) error {
			site := &model.Site{}
			if err := rows.Scan(&site.ID, &site.Name, &site.Public); err != nil {
				return err
			}
			result = append(result, site)
			return nil
		})
		if err != nil {
			return err
		}
		for _, site := range result {
			if err := loadSiteUsers(tx, site); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (b *pgBackend) CountSites(q model.SiteQuery) (int, error) {
	params := queryParams{}
	return countRows(b, []string{siteTable}, siteConditions(q, &params), params)
}

func (b *pgBackend) CreateSite(site *model.Site) error {
	err := withTx(b, false, func(tx *sql.Tx) error {
		params := queryParams{}
		fields := fieldList{}
		fields.Add(&params, "name", site.Name)
		fields.Add(&params, "public", site.Public)
		query := fields.InsertStatement(siteTable) + " RETURNING id"
		err := tx.QueryRow(query, params...).Scan(&site.ID)
		if err != nil {
			return err
		}
		for _, username := range site.Users {
			if err := addSiteUser(tx, site.ID, username, false); err != nil {
				return err
			}
		}
		for _, username := range site.Admins {
			if err := addSiteUser(tx, site.ID, username, true); err != nil {
				return err
			}
		}
		return nil
	})
	if isUniqueViolation(err) {
		return model.ErrDuplicateSite
	}
	return err
}

func addSiteUser(tx *sql.Tx, id int, username string, admin bool) error {
	params := queryParams{}
	query := ("INSERT INTO " + siteUserTable + "(site_id, user_id, admin) " +
		buildSelect([]string{
			params.Param(id) + "::integer",
			userID,
			params.Param(admin) + "::boolean",
		}, []string{
			userTable,
		}, []string{
			userUsername + "=" + params.Param(username),
		}))
	result, err := tx.Exec(query, params...)
	if err != nil {
		return err
	}
	count, err := result.RowsAffected()
	if err == nil && count == 0 {
		err = model.ErrNoSuchUser{Username: username}
	}
	return err
}
