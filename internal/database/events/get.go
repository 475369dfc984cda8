package events

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
)

func (r *Repository) GetEventByID(ctx context.Context, q database.Queryable, id int64) (*model.Event, error) {
	qb := baseQuery.
		Where(sq.Eq{"id": id})

	dto := &eventDTO{}
	if err := q.Get(ctx, dto, qb); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNoRecord
		}
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	event := mapToEvent(dto)
	if err := r.loadChildren(ctx, q, event); err != nil {
		return nil, err
	}

	return event, nil
}

// GetEventByOutlookID looks up the local record by the stable remote key.
func (r *Repository) GetEventByOutlookID(ctx context.Context, q database.Queryable, outlookID string) (*model.Event, error) {
	return r.getOne(ctx, q, sq.Eq{"outlook_event_id": outlookID})
}

// GetEventBySlot finds the event whose originating slot pointer equals the
// given slot; used to reuse the event on re-confirmation.
func (r *Repository) GetEventBySlot(ctx context.Context, q database.Queryable, slotID int64) (*model.Event, error) {
	return r.getOne(ctx, q, sq.Eq{"from_slot": slotID})
}

func (r *Repository) getOne(ctx context.Context, q database.Queryable, predicate interface{}) (*model.Event, error) {
	qb := baseQuery.
		Where(predicate).
		Limit(1)

	var dtos []*eventDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	if len(dtos) == 0 {
		return nil, model.ErrNoRecord
	}

	event := mapToEvent(dtos[0])
	if err := r.loadChildren(ctx, q, event); err != nil {
		return nil, err
	}

	return event, nil
}

func (r *Repository) loadChildren(ctx context.Context, q database.Queryable, event *model.Event) error {
	var err error

	event.Participants, err = getParticipants(ctx, q, ParentEvent, event.ID, ListParticipants)
	if err != nil {
		return fmt.Errorf("load participants: %w", err)
	}

	event.OutlookParticipants, err = getParticipants(ctx, q, ParentEvent, event.ID, ListOutlook)
	if err != nil {
		return fmt.Errorf("load outlook participants: %w", err)
	}

	event.RescheduleHistory, err = getHistory(ctx, q, ParentEvent, event.ID)
	if err != nil {
		return fmt.Errorf("load reschedule history: %w", err)
	}

	return nil
}

func getParticipants(ctx context.Context, q database.Queryable, parentType string, parentID int64, list string) ([]*model.EventParticipant, error) {
	qb := participantsQuery.
		Where(sq.Eq{"parent_type": parentType, "parent_id": parentID, "list": list}).
		OrderBy("idx")

	var dtos []*participantDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.EventParticipant, len(dtos))
	for i, d := range dtos {
		res[i] = mapToParticipant(d)
	}

	return res, nil
}

func getHistory(ctx context.Context, q database.Queryable, parentType string, parentID int64) ([]*model.RescheduleEntry, error) {
	qb := historyQuery.
		Where(sq.Eq{"parent_type": parentType, "parent_id": parentID}).
		OrderBy("idx")

	var dtos []*historyDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.RescheduleEntry, len(dtos))
	for i, d := range dtos {
		res[i] = mapToHistoryEntry(d)
	}

	return res, nil
}
