package reconcile

import (
	"context"
	"fmt"

	"github.com/onecal/outlook-sync-backend/internal/business/translate"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/database/events"
	"github.com/onecal/outlook-sync-backend/internal/model"
)

// reconcileParticipants merges incoming attendees into the event's two
// participant lists. Resolution order per attendee: participant by email,
// then shadow participant by email, then a new shadow row at the next
// 1-based index. The merge is additive; this path never removes rows.
func (e *Engine) reconcileParticipants(ctx context.Context, q database.Queryable, event *model.Event, attendees []translate.AttendeeFields) error {
	for _, att := range attendees {
		if p := findByEmail(event.Participants, att.Email); p != nil {
			if err := e.updateParticipant(ctx, q, p, att); err != nil {
				return err
			}
			continue
		}

		if p := findByEmail(event.OutlookParticipants, att.Email); p != nil {
			if err := e.updateParticipant(ctx, q, p, att); err != nil {
				return err
			}
			continue
		}

		p := &model.EventParticipant{
			Idx:             len(event.OutlookParticipants) + 1,
			Email:           att.Email,
			ParticipantName: att.ParticipantName,
			Required:        att.Required,
			Response:        att.Response,
			ResponseTime:    att.ResponseTime,
		}
		if _, err := e.events.CreateParticipant(ctx, q, event.ID, events.ListOutlook, p); err != nil {
			return fmt.Errorf("create shadow participant: %w", err)
		}
		event.OutlookParticipants = append(event.OutlookParticipants, p)
	}

	return nil
}

func (e *Engine) updateParticipant(ctx context.Context, q database.Queryable, p *model.EventParticipant, att translate.AttendeeFields) error {
	fields := diffParticipant(p, att)
	if len(fields) == 0 {
		return nil
	}

	if err := e.events.SetParticipantFields(ctx, q, p.ID, fields); err != nil {
		return fmt.Errorf("set participant fields: %w", err)
	}

	p.ParticipantName = att.ParticipantName
	p.Required = att.Required
	p.Response = att.Response
	p.ResponseTime = att.ResponseTime

	return nil
}

func diffParticipant(p *model.EventParticipant, att translate.AttendeeFields) map[string]interface{} {
	fields := map[string]interface{}{}

	if p.ParticipantName != att.ParticipantName {
		fields["participant_name"] = att.ParticipantName
	}
	if p.Required != att.Required {
		fields["required"] = att.Required
	}
	if p.Response != att.Response {
		fields["response"] = att.Response
	}
	if p.ResponseTime != att.ResponseTime {
		// A cleared stamp must land as NULL in the timestamp column.
		var responseTime *string
		if att.ResponseTime != "" {
			responseTime = &att.ResponseTime
		}
		fields["response_time"] = responseTime
	}

	return fields
}

func findByEmail(list []*model.EventParticipant, email string) *model.EventParticipant {
	for _, p := range list {
		if p.Email == email {
			return p
		}
	}
	return nil
}
