// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

import (
	"database/sql"

	"github.com/diffeo/go-webapi/model"
)

// scanGroup reads the groupColumns out of a row.
func scanGroup(row scanner) (*model.Group, error) {
	var extraData []byte
	group := &model.Group{}
	err := row.Scan(
		&group.ID,
		&group.SiteID,
		&group.Name,
		&group.DisplayName,
		&group.MailingList,
		&group.Visible,
		&group.InviteOnly,
		&extraData,
		&group.LastUpdated,
	)
	if err == nil {
		group.ExtraData, err = bytesToMap(extraData)
	}
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (b *pgBackend) Group(siteID int, name string) (group *model.Group, err error) {
	params := queryParams{}
	query := buildSelect(groupColumns, []string{
		groupTable,
	}, []string{
		groupSite + "=" + params.Param(siteID),
		groupName + "=" + params.Param(name),
	})
	err = withTx(b, true, func(tx *sql.Tx) error {
		var err error
		group, err = scanGroup(tx.QueryRow(query, params...))
		if err == sql.ErrNoRows {
			return model.ErrNoSuchGroup{Name: name}
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// groupConditions converts a group query to WHERE clause fragments.
func groupConditions(q model.GroupQuery, params *queryParams) []string {
	conditions := []string{
		groupSite + "=" + params.Param(q.SiteID),
	}
	if q.Prefix != "" {
		conditions = append(conditions,
			groupName+" LIKE "+params.Param(likePrefix(q.Prefix)))
	}
	if !q.ShowInvisible {
		conditions = append(conditions, groupVisible)
	}
	return conditions
}

func (b *pgBackend) Groups(q model.GroupQuery) ([]*model.Group, error) {
	params := queryParams{}
	query := buildSelect(groupColumns, []string{
		groupTable,
	}, groupConditions(q, &params)) + pageClause(groupName, q.Offset, q.Limit)
	result := []*model.Group{}
	err := queryAndScan(b, query, params, func(rows *sql.Rows) error {
		group, err := scanGroup(rows)
		if err != nil {
			return err
		}
		result = append(result, group)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (b *pgBackend) CountGroups(q model.GroupQuery) (int, error) {
	params := queryParams{}
	return countRows(b, []string{groupTable}, groupConditions(q, &params), params)
}

// groupFields produces the mutable fields of a group.
func groupFields(group *model.Group, params *queryParams) (fieldList, error) {
	extraData, err := mapToBytes(group.ExtraData)
	if err != nil {
		return fieldList{}, err
	}
	fields := fieldList{}
	fields.Add(params, "site_id", group.SiteID)
	fields.Add(params, "name", group.Name)
	fields.Add(params, "display_name", group.DisplayName)
	fields.Add(params, "mailing_list", group.MailingList)
	fields.Add(params, "visible", group.Visible)
	fields.Add(params, "invite_only", group.InviteOnly)
	fields.Add(params, "extra_data", extraData)
	fields.Add(params, "last_updated", group.LastUpdated)
	return fields, nil
}

func (b *pgBackend) CreateGroup(group *model.Group) error {
	group.LastUpdated = b.clock.Now()
	params := queryParams{}
	fields, err := groupFields(group, &params)
	if err != nil {
		return err
	}
	query := fields.InsertStatement(groupTable) + " RETURNING id"
	err = withTx(b, false, func(tx *sql.Tx) error {
		return tx.QueryRow(query, params...).Scan(&group.ID)
	})
	if isUniqueViolation(err) {
		return model.ErrDuplicateGroup
	}
	return err
}

func (b *pgBackend) UpdateGroup(group *model.Group) error {
	group.LastUpdated = b.clock.Now()
	params := queryParams{}
	fields, err := groupFields(group, &params)
	if err != nil {
		return err
	}
	query := buildUpdate(groupTable, fields.UpdateChanges(), []string{
		"id=" + params.Param(group.ID),
	})
	err = withTx(b, false, func(tx *sql.Tx) error {
		result, err := tx.Exec(query, params...)
		if err != nil {
			return err
		}
		count, err := result.RowsAffected()
		if err == nil && count == 0 {
			err = model.ErrNoSuchGroup{Name: group.Name}
		}
		return err
	})
	if isUniqueViolation(err) {
		return model.ErrDuplicateGroup
	}
	return err
}

func (b *pgBackend) DeleteGroup(group *model.Group) error {
	params := queryParams{}
	query := "DELETE FROM " + groupTable + " WHERE id=" + params.Param(group.ID)
	return execInTx(b, query, params)
}

func (b *pgBackend) AddGroupMember(group *model.Group, user *model.User) error {
	params := queryParams{}
	query := ("INSERT INTO " + groupMemberTable + "(group_id, user_id) VALUES (" +
		params.Param(group.ID) + ", " + params.Param(user.ID) + ") ON CONFLICT DO NOTHING")
	return execInTx(b, query, params)
}

func (b *pgBackend) RemoveGroupMember(group *model.Group, user *model.User) error {
	params := queryParams{}
	query := ("DELETE FROM " + groupMemberTable + " WHERE " +
		"group_id=" + params.Param(group.ID) + " AND user_id=" + params.Param(user.ID))
	return execInTx(b, query, params)
}
