// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package postgres

const (
	// SQL table names:
	siteTable        = "site"
	siteUserTable    = "site_user"
	userTable        = "account"
	groupTable       = "review_group"
	groupMemberTable = "group_member"

	// SQL column names:
	siteID           = siteTable + ".id"
	siteName         = siteTable + ".name"
	sitePublic       = siteTable + ".public"
	siteUserSite     = siteUserTable + ".site_id"
	siteUserUser     = siteUserTable + ".user_id"
	siteUserAdmin    = siteUserTable + ".admin"
	userID           = userTable + ".id"
	userUsername     = userTable + ".username"
	userFirstName    = userTable + ".first_name"
	userLastName     = userTable + ".last_name"
	userEmail        = userTable + ".email"
	userSuperuser    = userTable + ".superuser"
	userPasswordHash = userTable + ".password_hash"
	groupID          = groupTable + ".id"
	groupSite        = groupTable + ".site_id"
	groupName        = groupTable + ".name"
	groupDisplayName = groupTable + ".display_name"
	groupMailingList = groupTable + ".mailing_list"
	groupVisible     = groupTable + ".visible"
	groupInviteOnly  = groupTable + ".invite_only"
	groupExtraData   = groupTable + ".extra_data"
	groupLastUpdated = groupTable + ".last_updated"
	groupMemberGroup = groupMemberTable + ".group_id"
	groupMemberUser  = groupMemberTable + ".user_id"

	// WHERE clause fragments:
	siteUserIsUser    = siteUserUser + "=" + userID
	groupMemberIsUser = groupMemberUser + "=" + userID

	// Unique constraint violation, from PostgreSQL Appendix A.
	uniqueViolation = "23505"
)

// userColumns lists the columns scanned by scanUser, in order.
var userColumns = []string{
	userID,
	userUsername,
	userFirstName,
	userLastName,
	userEmail,
	userSuperuser,
	userPasswordHash,
}

// groupColumns lists the columns scanned by scanGroup, in order.
var groupColumns = []string{
	groupID,
	groupSite,
	groupName,
	groupDisplayName,
	groupMailingList,
	groupVisible,
	groupInviteOnly,
	groupExtraData,
	groupLastUpdated,
}
