package events

import (
	"context"
	"fmt"

	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
)

func (r *Repository) CreateEvent(ctx context.Context, q database.Queryable, event *model.Event) (int64, error) {
	var fromSlot *int64
	if event.FromSlot != 0 {
		fromSlot = &event.FromSlot
	}

	var repeatTill *string
	if event.RepeatTill != "" {
		repeatTill = &event.RepeatTill
	}

	qb := database.PSQL.
		Insert(database.EventsTable).
		Columns(
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
		).
		Values(
			event.Subject,
			event.Description,
			event.StartsOn,
			event.EndsOn,
			event.AllDay,
			event.Status,
			event.Color,
			event.Location,
			event.RepeatThisEvent,
			event.RepeatOn,
			repeatTill,
			event.Monday,
			event.Tuesday,
			event.Wednesday,
			event.Thursday,
			event.Friday,
			event.Saturday,
			event.Sunday,
			fromSlot,
			event.IsOutlookEvent,
			event.SyncWithCalendar,
			event.AddOnlineMeeting,
			event.Organiser,
			event.OrganiserName,
			event.OutlookCalendar,
			event.OutlookEventID,
			event.ChangeKey,
			event.EventUID,
			event.EventLink,
			event.MeetingLink,
		).
		Suffix("returning id")

	var id int64
	if err := q.Get(ctx, &id, qb); err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	for i, p := range event.Participants {
		p.Idx = i + 1
		if _, err := createParticipant(ctx, q, ParentEvent, id, ListParticipants, p); err != nil {
			return 0, fmt.Errorf("create participant: %w", err)
		}
	}

	for i, p := range event.OutlookParticipants {
		p.Idx = i + 1
		if _, err := createParticipant(ctx, q, ParentEvent, id, ListOutlook, p); err != nil {
			return 0, fmt.Errorf("create outlook participant: %w", err)
		}
	}

	for i, entry := range event.RescheduleHistory {
		entry.Idx = i + 1
		if err := createHistoryEntry(ctx, q, ParentEvent, id, entry); err != nil {
			return 0, fmt.Errorf("create reschedule entry: %w", err)
		}
	}

	return id, nil
}

// CreateParticipant appends a participant row to one of the event's lists.
func (r *Repository) CreateParticipant(ctx context.Context, q database.Queryable, eventID int64, list string, p *model.EventParticipant) (int64, error) {
	return createParticipant(ctx, q, ParentEvent, eventID, list, p)
}

// AddRescheduleEntry appends an audit entry to the event's history log.
func (r *Repository) AddRescheduleEntry(ctx context.Context, q database.Queryable, eventID int64, entry *model.RescheduleEntry) error {
	return createHistoryEntry(ctx, q, ParentEvent, eventID, entry)
}

func createParticipant(ctx context.Context, q database.Queryable, parentType string, parentID int64, list string, p *model.EventParticipant) (int64, error) {
	var responseTime *string
	if p.ResponseTime != "" {
		responseTime = &p.ResponseTime
	}

	qb := database.PSQL.
		Insert(database.EventParticipantsTable).
		Columns(
			"parent_type",
			"parent_id",
			"list",
			"idx",
			"reference_doctype",
			"reference_docname",
			"email",
			"participant_name",
			"required",
			"response",
			"response_time",
		).
		Values(
			parentType,
			parentID,
			list,
			p.Idx,
			p.ReferenceDoctype,
			p.ReferenceDocname,
			p.Email,
			p.ParticipantName,
			p.Required,
			p.Response,
			responseTime,
		).
		Suffix("returning id")

	var id int64
	if err := q.Get(ctx, &id, qb); err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	p.ID = id
	return id, nil
}

func createHistoryEntry(ctx context.Context, q database.Queryable, parentType string, parentID int64, entry *model.RescheduleEntry) error {
	var startsOn, endsOn *string
	if entry.StartsOn != "" {
		startsOn = &entry.StartsOn
	}
	if entry.EndsOn != "" {
		endsOn = &entry.EndsOn
	}

	var slot *int64
	if entry.Slot != 0 {
		slot = &entry.Slot
	}

	qb := database.PSQL.
		Insert(database.RescheduleHistoryTable).
		Columns(
			"parent_type",
			"parent_id",
			"idx",
			"starts_on",
			"ends_on",
			"slot",
			"rescheduled_by",
			"rescheduled_on",
			"reason",
		).
		Values(
			parentType,
			parentID,
			entry.Idx,
			startsOn,
			endsOn,
			slot,
			entry.RescheduledBy,
			entry.RescheduledOn,
			entry.Reason,
		)

	if _, err := q.Exec(ctx, qb); err != nil {
		return fmt.Errorf("SQL request: %w", err)
	}

	return nil
}
