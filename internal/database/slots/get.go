package slots

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
)

func (r *Repository) GetSlotByID(ctx context.Context, q database.Queryable, id int64) (*model.EventSlot, error) {
	return r.getOne(ctx, q, sq.Eq{"id": id})
}

// GetSlotByProposal resolves the parent slot of a single proposed time range.
func (r *Repository) GetSlotByProposal(ctx context.Context, q database.Queryable, proposalID string) (*model.EventSlot, error) {
	qb := database.PSQL.
		Select("slot_id").
		From(database.SlotProposalsTable).
		Where(sq.Eq{"id": proposalID})

	var slotIDs []int64
	if err := q.Select(ctx, &slotIDs, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	if len(slotIDs) == 0 {
		return nil, model.ErrNoRecord
	}

	return r.GetSlotByID(ctx, q, slotIDs[0])
}

func (r *Repository) getOne(ctx context.Context, q database.Queryable, predicate interface{}) (*model.EventSlot, error) {
	qb := baseQuery.
		Where(predicate).
		Limit(1)

	var dtos []*slotDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	if len(dtos) == 0 {
		return nil, model.ErrNoRecord
	}

	slot := mapToSlot(dtos[0])
	if err := loadChildren(ctx, q, slot); err != nil {
		return nil, err
	}

	return slot, nil
}

func loadChildren(ctx context.Context, q database.Queryable, slot *model.EventSlot) error {
	qb := proposalsQuery.
		Where(sq.Eq{"slot_id": slot.ID}).
		OrderBy("starts_on")

	var proposalDTOs []*proposalDTO
	if err := q.Select(ctx, &proposalDTOs, qb); err != nil {
		return fmt.Errorf("load proposals: %w", err)
	}

	slot.Proposals = make([]*model.SlotProposal, len(proposalDTOs))
	for i, d := range proposalDTOs {
		slot.Proposals[i] = mapToProposal(d)
	}

	qb = usersQuery.
		Where(sq.Eq{"slot_id": slot.ID}).
		OrderBy("user_id")

	var userDTOs []*slotUserDTO
	if err := q.Select(ctx, &userDTOs, qb); err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	slot.Users = make([]*model.SlotUser, len(userDTOs))
	for i, d := range userDTOs {
		slot.Users[i] = mapToSlotUser(d)
	}

	var err error
	slot.Participants, err = getParticipants(ctx, q, slot.ID)
	if err != nil {
		return fmt.Errorf("load participants: %w", err)
	}

	slot.RescheduleHistory, err = getHistory(ctx, q, slot.ID)
	if err != nil {
		return fmt.Errorf("load reschedule history: %w", err)
	}

	return nil
}

type participantDTO struct {
	ID               int64
	Idx              int
	ReferenceDoctype string
	ReferenceDocname string
	Email            string
	ParticipantName  string
	Required         bool
	Response         string
	ResponseTime     *time.Time
}

type historyDTO struct {
	ID            int64
	Idx           int
	StartsOn      *time.Time
	EndsOn        *time.Time
	Slot          *int64
	RescheduledBy string
	RescheduledOn time.Time
	Reason        string
}

func getParticipants(ctx context.Context, q database.Queryable, slotID int64) ([]*model.EventParticipant, error) {
	qb := database.PSQL.
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
		From(database.EventParticipantsTable).
		Where(sq.Eq{"parent_type": parentType, "parent_id": slotID, "list": listParticipants}).
		OrderBy("idx")

	var dtos []*participantDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.EventParticipant, len(dtos))
	for i, d := range dtos {
		p := &model.EventParticipant{
			ID:               d.ID,
			Idx:              d.Idx,
			ReferenceDoctype: d.ReferenceDoctype,
			ReferenceDocname: d.ReferenceDocname,
			Email:            d.Email,
			ParticipantName:  d.ParticipantName,
			Required:         d.Required,
			Response:         d.Response,
		}
		if d.ResponseTime != nil {
			p.ResponseTime = formatWallClock(*d.ResponseTime)
		}
		res[i] = p
	}

	return res, nil
}

func getHistory(ctx context.Context, q database.Queryable, slotID int64) ([]*model.RescheduleEntry, error) {
	qb := database.PSQL.
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
		From(database.RescheduleHistoryTable).
		Where(sq.Eq{"parent_type": parentType, "parent_id": slotID}).
		OrderBy("idx")

	var dtos []*historyDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.RescheduleEntry, len(dtos))
	for i, d := range dtos {
		entry := &model.RescheduleEntry{
			ID:            d.ID,
			Idx:           d.Idx,
			RescheduledBy: d.RescheduledBy,
			RescheduledOn: formatWallClock(d.RescheduledOn),
			Reason:        d.Reason,
		}
		if d.StartsOn != nil {
			entry.StartsOn = formatWallClock(*d.StartsOn)
		}
		if d.EndsOn != nil {
			entry.EndsOn = formatWallClock(*d.EndsOn)
		}
		if d.Slot != nil {
			entry.Slot = *d.Slot
		}
		res[i] = entry
	}

	return res, nil
}
