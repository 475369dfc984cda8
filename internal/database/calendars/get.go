package calendars

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
)

// GetCalendarByRemoteID looks up a calendar by the stable remote id.
func (r *Repository) GetCalendarByRemoteID(ctx context.Context, q database.Queryable, id string) (*model.Calendar, error) {
	qb := baseQuery.
		Where(sq.Eq{"id": id})

	var dtos []*calendarDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	if len(dtos) == 0 {
		return nil, model.ErrNoRecord
	}

	return mapToCalendar(dtos[0]), nil
}

func (r *Repository) GetCalendars(ctx context.Context, q database.Queryable) ([]*model.Calendar, error) {
	var dtos []*calendarDTO
	if err := q.Select(ctx, &dtos, baseQuery); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.Calendar, len(dtos))
	for i, d := range dtos {
		res[i] = mapToCalendar(d)
	}

	return res, nil
}

func (r *Repository) GetCalendarGroupByRemoteID(ctx context.Context, q database.Queryable, id string) (*model.CalendarGroup, error) {
	qb := groupsQuery.
		Where(sq.Eq{"id": id})

	var dtos []*calendarGroupDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	if len(dtos) == 0 {
		return nil, model.ErrNoRecord
	}

	return mapToCalendarGroup(dtos[0]), nil
}
