package slots

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
)

func (r *Repository) CreateSlot(ctx context.Context, q database.Queryable, slot *model.EventSlot) (int64, error) {
	var repeatTill *string
	if slot.RepeatTill != "" {
		repeatTill = &slot.RepeatTill
	}

	qb := database.PSQL.
		Insert(database.EventSlotsTable).
		Columns(
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
			"email_template",
		).
		Values(
			slot.Subject,
			slot.Description,
			slot.Status,
			int(slot.DocStatus),
			slot.Color,
			slot.RepeatThisEvent,
			slot.RepeatOn,
			repeatTill,
			slot.Monday,
			slot.Tuesday,
			slot.Wednesday,
			slot.Thursday,
			slot.Friday,
			slot.Saturday,
			slot.Sunday,
			slot.Organiser,
			slot.OrganiserName,
			slot.OutlookCalendar,
			slot.AddOnlineMeeting,
			slot.EventLocation,
			slot.EmailTemplate,
		).
		Suffix("returning id")

	var id int64
	if err := q.Get(ctx, &id, qb); err != nil {
		return 0, fmt.Errorf("SQL request: %w", err)
	}

	if err := insertProposals(ctx, q, id, slot.Proposals); err != nil {
		return 0, err
	}

	for _, u := range slot.Users {
		uqb := database.PSQL.
			Insert(database.SlotUsersTable).
			Columns("slot_id", "user_id", "email", "full_name").
			Values(id, u.User, u.Email, u.FullName)

		if _, err := q.Exec(ctx, uqb); err != nil {
			return 0, fmt.Errorf("create slot user: %w", err)
		}
	}

	for i, p := range slot.Participants {
		p.Idx = i + 1
		if err := createParticipant(ctx, q, id, p); err != nil {
			return 0, fmt.Errorf("create participant: %w", err)
		}
	}

	for i, entry := range slot.RescheduleHistory {
		entry.Idx = i + 1
		if err := createHistoryEntry(ctx, q, id, entry); err != nil {
			return 0, fmt.Errorf("create reschedule entry: %w", err)
		}
	}

	return id, nil
}

// AddRescheduleEntry appends an audit entry to the slot's history log.
func (r *Repository) AddRescheduleEntry(ctx context.Context, q database.Queryable, slotID int64, entry *model.RescheduleEntry) error {
	return createHistoryEntry(ctx, q, slotID, entry)
}

func insertProposals(ctx context.Context, q database.Queryable, slotID int64, proposals []*model.SlotProposal) error {
	for _, p := range proposals {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}

		qb := database.PSQL.
			Insert(database.SlotProposalsTable).
			Columns("id", "slot_id", "starts_on", "ends_on").
			Values(p.ID, slotID, p.StartsOn, p.EndsOn)

		if _, err := q.Exec(ctx, qb); err != nil {
			return fmt.Errorf("create proposal: %w", err)
		}
	}

	return nil
}

func createParticipant(ctx context.Context, q database.Queryable, slotID int64, p *model.EventParticipant) error {
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
			slotID,
			listParticipants,
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
		return fmt.Errorf("SQL request: %w", err)
	}

	p.ID = id
	return nil
}

func createHistoryEntry(ctx context.Context, q database.Queryable, slotID int64, entry *model.RescheduleEntry) error {
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
			slotID,
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
