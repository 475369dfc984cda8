package events

import "github.com/onecal/outlook-sync-backend/internal/database"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

// Parent discriminators for the shared participant and history child tables.
const (
	ParentEvent = "Event"
	ParentSlot  = "Event Slot"
)

// Participant list discriminators.
const (
	ListParticipants = "participants"
	ListOutlook      = "outlook"
)

var baseQuery = database.PSQL.
	Select(
		"id",
		"subject",
		"description",
		"starts_on",
		"ends_on",
		"all_day",
		"status",
		"color",
		"location",
		"repeat_this_event",
		"repeat_on",
		"repeat_till",
		"monday",
		"tuesday",
		"wednesday",
		"thursday",
		"friday",
		"saturday",
		"sunday",
		"from_slot",
		"is_outlook_event",
		"sync_with_calendar",
		"add_online_meeting",
		"organiser",
		"organiser_name",
		"outlook_calendar",
		"outlook_event_id",
		"change_key",
		"event_uid",
		"event_link",
		"meeting_link",
		"created",
		"modified",
	).
	From(database.EventsTable)

var participantsQuery = database.PSQL.
	Select(
		"id",
		"idx",
		"reference_doctype",
		"reference_docname",
		"email",
		"participant_name",
		"required",
		"response",
		"response_time",
	).
	From(database.EventParticipantsTable)

var historyQuery = database.PSQL.
	Select(
		"id",
		"idx",
		"starts_on",
		"ends_on",
		"slot",
		"rescheduled_by",
		"rescheduled_on",
		"reason",
	).
	From(database.RescheduleHistoryTable)
