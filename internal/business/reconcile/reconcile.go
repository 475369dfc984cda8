package reconcile

import (
	"context"
	"fmt"

	"github.com/onecal/outlook-sync-backend/internal/business/translate"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
)

// Engine merges incoming remote event state into local records, writing
// only what actually changed.
type Engine struct {
	events eventRepository
}

type eventRepository interface {
	CreateEvent(ctx context.Context, q database.Queryable, event *model.Event) (int64, error)
	SetFields(ctx context.Context, q database.Queryable, id int64, fields map[string]interface{}, refreshModified bool) error
	CreateParticipant(ctx context.Context, q database.Queryable, eventID int64, list string, p *model.EventParticipant) (int64, error)
	SetParticipantFields(ctx context.Context, q database.Queryable, participantID int64, fields map[string]interface{}) error
}

func NewEngine(events eventRepository) *Engine {
	return &Engine{events: events}
}

// Reconcile diffs incoming against the existing record and applies only the
// changed columns in one batched write. A nil existing record is created
// from the incoming fields with pull defaults. refreshModified must be true
// for direct local edits and false on the pull-sync path, where the write
// must not disturb the modified stamp. Running it again with the same input
// performs zero writes.
func (e *Engine) Reconcile(ctx context.Context, q database.Queryable, existing *model.Event, in translate.EventFields, refreshModified bool) (map[string]interface{}, error) {
	if existing == nil {
		if _, err := e.CreateFromRemote(ctx, q, in); err != nil {
			return nil, err
		}
		return nil, nil
	}

	fields, err := diffEvent(existing, in)
	if err != nil {
		return nil, err
	}

	if len(fields) > 0 {
		if err := e.events.SetFields(ctx, q, existing.ID, fields, refreshModified); err != nil {
			return nil, fmt.Errorf("set event fields: %w", err)
		}
	}

	if err := e.reconcileParticipants(ctx, q, existing, in.Attendees); err != nil {
		return nil, err
	}

	return fields, nil
}

// CreateFromRemote materializes a local shadow copy of a remote event. The
// record is marked remote-originated and sync-enabled; the online-meeting
// flag is derived from the presence of a join link.
func (e *Engine) CreateFromRemote(ctx context.Context, q database.Queryable, in translate.EventFields) (*model.Event, error) {
	event := &model.Event{
		Subject:          in.Subject,
		Description:      in.Description,
		StartsOn:         in.StartsOn,
		EndsOn:           in.EndsOn,
		AllDay:           in.AllDay,
		Status:           statusOf(in),
		Location:         in.Location,
		IsOutlookEvent:   true,
		SyncWithCalendar: true,
		AddOnlineMeeting: in.MeetingLink != "",
		Organiser:        in.Organiser,
		OutlookCalendar:  in.OutlookCalendar,
		OutlookEventID:   in.OutlookEventID,
		ChangeKey:        in.ChangeKey,
		EventUID:         in.EventUID,
		EventLink:        in.EventLink,
		MeetingLink:      in.MeetingLink,
	}

	seen := map[string]bool{}
	for _, att := range in.Attendees {
		if seen[att.Email] {
			continue
		}
		seen[att.Email] = true
		event.OutlookParticipants = append(event.OutlookParticipants, &model.EventParticipant{
			Email:           att.Email,
			ParticipantName: att.ParticipantName,
			Required:        att.Required,
			Response:        att.Response,
			ResponseTime:    att.ResponseTime,
		})
	}

	id, err := e.events.CreateEvent(ctx, q, event)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	event.ID = id

	return event, nil
}
