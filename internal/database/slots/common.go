package slots

import "github.com/onecal/outlook-sync-backend/internal/database"

type Repository struct{}

func NewRepository() *Repository {
	return &Repository{}
}

const parentType = "Event Slot"

const (
	listParticipants = "participants"
)

var baseQuery = database.PSQL.
	Select(
		"id",
		"subject",
		"description",
		"status",
		"docstatus",
		"color",
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
		"organiser",
		"organiser_name",
		"outlook_calendar",
		"add_online_meeting",
		"event_location",
		"selected_slot_start",
		"selected_slot_end",
		"selected_online",
		"email_template",
		"route",
		"published",
		"created",
		"modified",
	).
	From(database.EventSlotsTable)

var proposalsQuery = database.PSQL.
	Select(
		"id",
		"starts_on",
		"ends_on",
	).
	From(database.SlotProposalsTable)

var usersQuery = database.PSQL.
	Select(
		"user_id",
		"email",
		"full_name",
	).
	From(database.SlotUsersTable)
