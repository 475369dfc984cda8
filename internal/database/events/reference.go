package events

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
)

type referenceDTO struct {
	ID          int64
	Subject     string
	StartsOn    time.Time
	EndsOn      time.Time
	Status      string
	MeetingLink string
	Description string
	Created     time.Time
}

// GetReferenceEvents returns the events a record participates in, joined by
// the participant reference, oldest first.
func (r *Repository) GetReferenceEvents(ctx context.Context, q database.Queryable, refDoctype, refDocname string) ([]*model.ReferenceItem, error) {
	qb := database.PSQL.
		Select(
			"e.id",
			"e.subject",
			"e.starts_on",
			"e.ends_on",
			"e.status",
			"e.meeting_link",
			"e.description",
			"e.created",
		).
		Distinct().
		From(database.EventsTable+" e").
		Join(database.EventParticipantsTable+" p on p.parent_id = e.id and p.parent_type = ?", ParentEvent).
		Where(sq.Eq{
			"p.reference_doctype": refDoctype,
			"p.reference_docname": refDocname,
		}).
		OrderBy("e.created")

	var dtos []*referenceDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.ReferenceItem, len(dtos))
	for i, d := range dtos {
		res[i] = &model.ReferenceItem{
			Type:        model.ReferenceItemEvent,
			Name:        d.ID,
			Subject:     d.Subject,
			StartsOn:    formatWallClock(d.StartsOn),
			EndsOn:      formatWallClock(d.EndsOn),
			Status:      d.Status,
			MeetingLink: d.MeetingLink,
			Description: d.Description,
			Created:     d.Created,
		}
	}

	return res, nil
}
