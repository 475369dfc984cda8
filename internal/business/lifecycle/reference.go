package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/onecal/outlook-sync-backend/internal/model"
)

// TimelineItem is one reference-timeline row with the action flags the
// frontend renders buttons from.
type TimelineItem struct {
	model.ReferenceItem
	CanReschedule bool
	CanCancel     bool
	IsCancelled   bool
}

// GetReferenceEvents joins events and slot proposals a record participates
// in into one timeline, newest first. A record can still be rescheduled or
// cancelled while it is not cancelled and has not started yet.
func (s *Service) GetReferenceEvents(ctx context.Context, refDoctype, refDocname string) ([]*TimelineItem, error) {
	events, err := s.events.GetReferenceEvents(ctx, s.db, refDoctype, refDocname)
	if err != nil {
		return nil, fmt.Errorf("get reference events: %w", err)
	}

	slots, err := s.slots.GetReferenceSlots(ctx, s.db, refDoctype, refDocname)
	if err != nil {
		return nil, fmt.Errorf("get reference slots: %w", err)
	}

	now := time.Now()
	items := make([]*TimelineItem, 0, len(events)+len(slots))
	for _, ref := range append(events, slots...) {
		cancelled := ref.Status == string(model.EventStatusCancelled)

		// An unconfirmed slot has no chosen start yet and stays actionable.
		upcoming := true
		if ref.StartsOn != "" {
			start, err := model.ParseDateTime(ref.StartsOn)
			if err != nil {
				return nil, fmt.Errorf("parse starts_on of %s %d: %w", ref.Type, ref.Name, err)
			}
			upcoming = now.Before(start)
		}

		items = append(items, &TimelineItem{
			ReferenceItem: *ref,
			CanReschedule: !cancelled && upcoming,
			CanCancel:     !cancelled && upcoming,
			IsCancelled:   cancelled,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Created.After(items[j].Created)
	})

	return items, nil
}
