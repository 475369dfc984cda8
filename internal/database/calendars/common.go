package calendars

import "github.com/onecal/outlook-sync-backend/internal/database"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

var baseQuery = database.PSQL.
	Select(
		"id",
		"calendar_name",
		"change_key",
		"color",
		"group_class_id",
		"is_default_calendar",
		"owner_email",
		"owner_name",
		"microsoft_user",
		"enabled",
		"push_to_outlook",
		"pull_from_outlook",
	).
	From(database.OutlookCalendarsTable)

var groupsQuery = database.PSQL.
	Select(
		"id",
		"name",
		"change_key",
		"class_id",
		"microsoft_user",
	).
	From(database.OutlookCalendarGroupsTable)
