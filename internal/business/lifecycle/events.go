package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/onecal/outlook-sync-backend/internal/business/translate"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/database/events"
	"github.com/onecal/outlook-sync-backend/internal/model"
	"github.com/onecal/outlook-sync-backend/internal/pkg/graph"
)

// CancelEvent moves an open event to Cancelled, appends the audit entry and
// sends the remote cancellation carrying the reason.
func (s *Service) CancelEvent(ctx context.Context, id int64, actor, reason string) error {
	if reason == "" {
		return model.NewValidationError("cancellation reason is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	event, err := s.events.GetEventByID(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}

	if event.Status != model.EventStatusOpen {
		return model.NewValidationError("event is not open")
	}
	if !event.SyncWithCalendar {
		return model.NewValidationError("event is not synced with a calendar")
	}

	entry := &model.RescheduleEntry{
		Idx:           len(event.RescheduleHistory) + 1,
		StartsOn:      event.StartsOn,
		EndsOn:        event.EndsOn,
		Slot:          event.FromSlot,
		RescheduledBy: actor,
		RescheduledOn: model.FormatDateTime(time.Now()),
		Reason:        reason,
	}
	if err := s.events.AddRescheduleEntry(ctx, tx, id, entry); err != nil {
		return fmt.Errorf("add reschedule entry: %w", err)
	}

	fields := map[string]interface{}{"status": string(model.EventStatusCancelled)}
	if err := s.events.SetFields(ctx, tx, id, fields, true); err != nil {
		return fmt.Errorf("set event fields: %w", err)
	}

	if event.OutlookEventID != "" && event.Organiser != "" {
		opts := graph.ListEventsOptions{CalendarID: event.OutlookCalendar}
		if err := s.gateway.CancelEvent(ctx, event.Organiser, opts, event.OutlookEventID, reason); err != nil {
			return fmt.Errorf("cancel remote event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// RescheduleEvent cancels the event and creates a fresh unconfirmed slot
// carrying forward the subject, participants, recurrence and the whole
// reschedule-history chain, so the audit trail survives across records.
func (s *Service) RescheduleEvent(ctx context.Context, id int64, proposals []*model.SlotProposal, actor, reason string) (*model.EventSlot, error) {
	if reason == "" {
		return nil, model.NewValidationError("reschedule reason is required")
	}
	if err := validateProposals(proposals); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	event, err := s.events.GetEventByID(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	if event.Status != model.EventStatusOpen {
		return nil, model.NewValidationError("event is not open")
	}
	if err := validateRepeat(event.Repeat, proposals[0].StartsOn); err != nil {
		return nil, err
	}

	entry := &model.RescheduleEntry{
		Idx:           len(event.RescheduleHistory) + 1,
		StartsOn:      event.StartsOn,
		EndsOn:        event.EndsOn,
		Slot:          event.FromSlot,
		RescheduledBy: actor,
		RescheduledOn: model.FormatDateTime(time.Now()),
		Reason:        reason,
	}

	history := cloneHistory(event.RescheduleHistory)
	historyEntry := *entry
	history = append(history, &historyEntry)

	slot := &model.EventSlot{
		Subject:           event.Subject,
		Description:       event.Description,
		Status:            model.SlotStatusUnconfirmed,
		DocStatus:         model.DocStatusDraft,
		Color:             event.Color,
		Repeat:            event.Repeat,
		Organiser:         event.Organiser,
		OrganiserName:     event.OrganiserName,
		OutlookCalendar:   event.OutlookCalendar,
		Proposals:         proposals,
		Participants:      cloneParticipants(event.Participants),
		AddOnlineMeeting:  event.AddOnlineMeeting,
		EventLocation:     event.Location,
		RescheduleHistory: history,
	}

	slotID, err := s.slots.CreateSlot(ctx, tx, slot)
	if err != nil {
		return nil, fmt.Errorf("create slot: %w", err)
	}
	slot.ID = slotID

	route := fmt.Sprintf("slots/%d", slotID)
	slotFields := map[string]interface{}{"route": route, "published": true}
	if err := s.slots.SetFields(ctx, tx, slotID, slotFields, false); err != nil {
		return nil, fmt.Errorf("publish slot: %w", err)
	}
	slot.Route = route
	slot.Published = true

	if err := s.events.AddRescheduleEntry(ctx, tx, id, entry); err != nil {
		return nil, fmt.Errorf("add reschedule entry: %w", err)
	}

	eventFields := map[string]interface{}{
		"status":    string(model.EventStatusCancelled),
		"from_slot": slotID,
	}
	if err := s.events.SetFields(ctx, tx, id, eventFields, true); err != nil {
		return nil, fmt.Errorf("set event fields: %w", err)
	}

	if event.OutlookEventID != "" && event.Organiser != "" {
		opts := graph.ListEventsOptions{CalendarID: event.OutlookCalendar}
		if err := s.gateway.CancelEvent(ctx, event.Organiser, opts, event.OutlookEventID, reason); err != nil {
			return nil, fmt.Errorf("cancel remote event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notifyChanged(ctx, slot.Participants, slot.Users)

	return slot, nil
}

// EventUpdate is the edit-event input. Participants is the full desired
// set; rows absent from it are removed by the symmetric diff.
type EventUpdate struct {
	Subject          string
	Description      string
	AddOnlineMeeting bool
	Location         string
	Participants     []*model.EventParticipant
}

// EditEvent applies a direct local edit and pushes the updated state
// outward. Unlike pull reconciliation, the participant diff here is
// symmetric: local rows missing from the desired set are deleted.
func (s *Service) EditEvent(ctx context.Context, id int64, update *EventUpdate) ([]translate.MissingEmailParticipant, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	event, err := s.events.GetEventByID(ctx, tx, id)
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}

	if event.Status != model.EventStatusOpen {
		return nil, model.NewValidationError("event is not open")
	}

	fields := map[string]interface{}{}
	if update.Subject != event.Subject {
		fields["subject"] = update.Subject
		event.Subject = update.Subject
	}
	if update.Description != event.Description {
		fields["description"] = update.Description
		event.Description = update.Description
	}
	if update.Location != event.Location {
		fields["location"] = update.Location
		event.Location = update.Location
	}
	if update.AddOnlineMeeting != event.AddOnlineMeeting {
		fields["add_online_meeting"] = update.AddOnlineMeeting
		event.AddOnlineMeeting = update.AddOnlineMeeting
	}

	if err := s.events.SetFields(ctx, tx, id, fields, true); err != nil {
		return nil, fmt.Errorf("set event fields: %w", err)
	}

	if err := s.editParticipants(ctx, tx, event, update.Participants); err != nil {
		return nil, err
	}

	var missing []translate.MissingEmailParticipant
	if event.SyncWithCalendar && !event.IsOutlookEvent && event.OutlookEventID != "" && event.Organiser != "" {
		calendar, err := s.calendarFor(ctx, tx, event.OutlookCalendar)
		if err != nil {
			return nil, err
		}

		var remote *graph.Event
		remote, missing, err = translate.ToOutlook(event, calendar)
		if err != nil {
			return nil, fmt.Errorf("translate event: %w", err)
		}

		opts := graph.ListEventsOptions{CalendarID: event.OutlookCalendar}
		if _, err := s.gateway.UpdateEvent(ctx, event.Organiser, opts, event.OutlookEventID, remote); err != nil {
			return nil, fmt.Errorf("update remote event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return missing, nil
}

// editParticipants reconciles the stored participant list against the
// desired one by natural key (reference doctype, reference docname, email).
func (s *Service) editParticipants(ctx context.Context, q database.Queryable, event *model.Event, desired []*model.EventParticipant) error {
	desiredByKey := map[string]*model.EventParticipant{}
	for _, p := range desired {
		desiredByKey[p.ReferenceKey()] = p
	}

	var kept []*model.EventParticipant
	for _, p := range event.Participants {
		d, ok := desiredByKey[p.ReferenceKey()]
		if !ok {
			if err := s.events.DeleteParticipant(ctx, q, p.ID); err != nil {
				return fmt.Errorf("delete participant: %w", err)
			}
			continue
		}

		fields := map[string]interface{}{}
		if p.ParticipantName != d.ParticipantName {
			fields["participant_name"] = d.ParticipantName
			p.ParticipantName = d.ParticipantName
		}
		if p.Required != d.Required {
			fields["required"] = d.Required
			p.Required = d.Required
		}
		if len(fields) > 0 {
			if err := s.events.SetParticipantFields(ctx, q, p.ID, fields); err != nil {
				return fmt.Errorf("set participant fields: %w", err)
			}
		}

		delete(desiredByKey, p.ReferenceKey())
		kept = append(kept, p)
	}

	for _, d := range desired {
		if _, ok := desiredByKey[d.ReferenceKey()]; !ok {
			continue
		}
		p := &model.EventParticipant{
			Idx:              len(kept) + 1,
			ReferenceDoctype: d.ReferenceDoctype,
			ReferenceDocname: d.ReferenceDocname,
			Email:            d.Email,
			ParticipantName:  d.ParticipantName,
			Required:         d.Required,
		}
		if _, err := s.events.CreateParticipant(ctx, q, event.ID, events.ListParticipants, p); err != nil {
			return fmt.Errorf("create participant: %w", err)
		}
		kept = append(kept, p)
	}

	event.Participants = kept
	return nil
}
