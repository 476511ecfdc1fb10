// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"

	"github.com/diffeo/go-webapi/model"
)

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanUser reads the userColumns out of a row.
func scanUser(row scanner) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Superuser,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (b *pgBackend) User(username string) (user *model.User, err error) {
	params := queryParams{}
	query := buildSelect(userColumns, []string{
		userTable,
	}, []string{
		userUsername + "=" + params.Param(username),
	})
	err = withTx(b, true, func(tx *sql.Tx) error {
		var err error
		user, err = scanUser(tx.QueryRow(query, params...))
		if err == sql.ErrNoRows {
			return model.ErrNoSuchUser{Username: username}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// userConditions converts a user query to WHERE clause fragments.
func userConditions(q model.UserQuery, params *queryParams) []string {
	var conditions []string
	if q.Prefix != "" {
		conditions = append(conditions,
			userUsername+" LIKE "+params.Param(likePrefix(q.Prefix)))
	}
	if q.SiteID != 0 {
		conditions = append(conditions,
			"EXISTS(SELECT 1 FROM "+siteUserTable+
				" WHERE "+siteUserIsUser+
				" AND "+siteUserSite+"="+params.Param(q.SiteID)+")")
	}
	if q.GroupID != 0 {
		conditions = append(conditions,
			"EXISTS(SELECT 1 FROM "+groupMemberTable+
				" WHERE "+groupMemberIsUser+
				" AND "+groupMemberGroup+"="+params.Param(q.GroupID)+")")
	}
	return conditions
}

func (b *pgBackend) Users(q model.UserQuery) ([]*model.User, error) {
	params := queryParams{}
	query := buildSelect(userColumns, []string{
		userTable,
	}, userConditions(q, &params)) + pageClause(userUsername, q.Offset, q.Limit)
	result := []*model.User{}
	err := queryAndScan(b, query, params, func(rows *sql.Rows) error {
		user, err := scanUser(rows)
		if err != nil {
			return err
		}
		result = append(result, user)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (b *pgBackend) CountUsers(q model.UserQuery) (int, error) {
	params := queryParams{}
	return countRows(b, []string{userTable}, userConditions(q, &params), params)
}

func (b *pgBackend) CreateUser(user *model.User) error {
	params := queryParams{}
	fields := fieldList{}
	fields.Add(&params, "username", user.Username)
	fields.Add(&params, "first_name", user.FirstName)
	fields.Add(&params, "last_name", user.LastName)
	fields.Add(&params, "email", user.Email)
	fields.Add(&params, "superuser", user.Superuser)
	fields.Add(&params, "password_hash", user.PasswordHash)
	query := fields.InsertStatement(userTable) + " RETURNING id"
	err := withTx(b, false, func(tx *sql.Tx) error {
		return tx.QueryRow(query, params...).Scan(&user.ID)
	})
	if isUniqueViolation(err) {
		return model.ErrDuplicateUser
	}
	return err
}

// likePrefix escapes a string for use as a LIKE prefix pattern.
func likePrefix(prefix string) string {
	escaped := make([]rune, 0, len(prefix)+1)
	for _, c := range prefix {
		switch c {
		case '%', '_', '\\':
			escaped = append(escaped, '\\')
		}
		escaped = append(escaped, c)
	}
	return string(escaped) + "%"
}
