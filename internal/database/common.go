package database

import sq "github.com/Masterminds/squirrel"

// PSQL is the statement builder for postgres placeholders.
var PSQL = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const (
	EventsTable                = "events"
	EventParticipantsTable     = "event_participants"
	RescheduleHistoryTable     = "reschedule_history"
	EventSlotsTable            = "event_slots"
	SlotProposalsTable         = "slot_proposals"
	SlotUsersTable             = "slot_users"
	OutlookCalendarsTable      = "outlook_calendars"
	OutlookCalendarGroupsTable = "outlook_calendar_groups"
	DirectoryGroupsTable       = "directory_groups"
	GroupMembersTable          = "directory_group_members"
	MicrosoftUsersTable        = "microsoft_users"
)
