package slots

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
	StartsOn    *time.Time
	EndsOn      *time.Time
	Status      string
	Description string
	Created     time.Time
}

// GetReferenceSlots returns the slot proposals a record participates in,
// joined by the participant reference, oldest first.
func (r *Repository) GetReferenceSlots(ctx context.Context, q database.Queryable, refDoctype, refDocname string) ([]*model.ReferenceItem, error) {
	qb := database.PSQL.
		Select(
			"s.id",
			"s.subject",
			"s.selected_slot_start starts_on",
			"s.selected_slot_end ends_on",
			"s.status",
			"s.description",
			"s.created",
		).
		Distinct().
		From(database.EventSlotsTable+" s").
		Join(database.EventParticipantsTable+" p on p.parent_id = s.id and p.parent_type = ?", parentType).
		Where(sq.Eq{
			"p.reference_doctype": refDoctype,
			"p.reference_docname": refDocname,
		}).
		OrderBy("s.created")

	var dtos []*referenceDTO
	if err := q.Select(ctx, &dtos, qb); err != nil {
		return nil, fmt.Errorf("SQL request: %w", err)
	}

	res := make([]*model.ReferenceItem, len(dtos))
	for i, d := range dtos {
		item := &model.ReferenceItem{
			Type:        model.ReferenceItemSlot,
			Name:        d.ID,
			Subject:     d.Subject,
			Status:      d.Status,
			Description: d.Description,
			Created:     d.Created,
		}
		if d.StartsOn != nil {
			item.StartsOn = formatWallClock(*d.StartsOn)
		}
		if d.EndsOn != nil {
			item.EndsOn = formatWallClock(*d.EndsOn)
		}
		res[i] = item
	}

	return res, nil
}
