package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/onecal/outlook-sync-backend/internal/business/translate"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/database/events"
	"github.com/onecal/outlook-sync-backend/internal/model"
	"github.com/onecal/outlook-sync-backend/internal/pkg/graph"
)

// CreateSlot stores a new unconfirmed scheduling request and publishes its
// booking route.
func (s *Service) CreateSlot(ctx context.Context, slot *model.EventSlot) (int64, error) {
	if slot.Subject == "" {
		return 0, model.NewValidationError("subject is required")
	}
	if err := validateProposals(slot.Proposals); err != nil {
		return 0, err
	}
	if len(slot.Proposals) > 0 {
		if err := validateRepeat(slot.Repeat, slot.Proposals[0].StartsOn); err != nil {
			return 0, err
		}
	}

	slot.Status = model.SlotStatusUnconfirmed
	slot.DocStatus = model.DocStatusDraft

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	id, err := s.slots.CreateSlot(ctx, tx, slot)
	if err != nil {
		return 0, fmt.Errorf("create slot: %w", err)
	}
	slot.ID = id

	route := fmt.Sprintf("slots/%d", id)
	fields := map[string]interface{}{"route": route, "published": true}
	if err := s.slots.SetFields(ctx, tx, id, fields, false); err != nil {
		return 0, fmt.Errorf("publish slot: %w", err)
	}
	slot.Route = route
	slot.Published = true

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	s.notifyChanged(ctx, slot.Participants, slot.Users)

	return id, nil
}

// ConfirmSlot turns a chosen proposal into a pushed calendar event. The
// linked event is reused when the slot was already confirmed once through a
// reschedule; otherwise a new one is created. Confirmation is terminal: the
// slot is stamped with the chosen range, marked Confirmed and submitted.
func (s *Service) ConfirmSlot(ctx context.Context, proposalID string, online bool) (*model.Event, []translate.MissingEmailParticipant, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	slot, err := s.slots.GetSlotByProposal(ctx, tx, proposalID)
	if err != nil {
		return nil, nil, fmt.Errorf("get slot: %w", err)
	}

	if slot.SelectedSlotStart != "" {
		return nil, nil, model.NewValidationError("slot is already confirmed")
	}
	if slot.Status == model.SlotStatusCancelled || slot.DocStatus != model.DocStatusDraft {
		return nil, nil, model.NewValidationError("slot is no longer open")
	}
	if online && !slot.AddOnlineMeeting {
		return nil, nil, model.NewValidationError("slot does not allow online meetings")
	}

	var proposal *model.SlotProposal
	for _, p := range slot.Proposals {
		if p.ID == proposalID {
			proposal = p
			break
		}
	}
	if proposal == nil {
		return nil, nil, model.NewValidationError("unknown slot proposal")
	}

	if err := validateRepeat(slot.Repeat, proposal.StartsOn); err != nil {
		return nil, nil, err
	}

	subject := translate.PrepareSubject(slot.Subject, online)

	event, err := s.events.GetEventBySlot(ctx, tx, slot.ID)
	switch {
	case err == nil:
		event, err = s.reuseEvent(ctx, tx, event, slot, proposal, subject, online)
		if err != nil {
			return nil, nil, err
		}
	case errors.Is(err, model.ErrNoRecord):
		event, err = s.buildEvent(ctx, tx, slot, proposal, subject, online)
		if err != nil {
			return nil, nil, err
		}
	default:
		return nil, nil, fmt.Errorf("get event by slot: %w", err)
	}

	missing, err := s.pushEvent(ctx, tx, event)
	if err != nil {
		return nil, nil, err
	}

	fields := map[string]interface{}{
		"status":              string(model.SlotStatusConfirmed),
		"docstatus":           int(model.DocStatusSubmitted),
		"selected_slot_start": proposal.StartsOn,
		"selected_slot_end":   proposal.EndsOn,
		"selected_online":     online,
	}
	if err := s.slots.SetFields(ctx, tx, slot.ID, fields, true); err != nil {
		return nil, nil, fmt.Errorf("set slot fields: %w", err)
	}
	slot.Status = model.SlotStatusConfirmed
	slot.DocStatus = model.DocStatusSubmitted
	slot.SelectedSlotStart = proposal.StartsOn
	slot.SelectedSlotEnd = proposal.EndsOn
	slot.SelectedOnline = online

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("commit tx: %w", err)
	}

	s.notifyChanged(ctx, slot.Participants, slot.Users)

	return event, missing, nil
}

func (s *Service) buildEvent(ctx context.Context, q database.Queryable, slot *model.EventSlot, proposal *model.SlotProposal, subject string, online bool) (*model.Event, error) {
	event := &model.Event{
		Subject:           subject,
		Description:       slot.Description,
		StartsOn:          proposal.StartsOn,
		EndsOn:            proposal.EndsOn,
		Status:            model.EventStatusOpen,
		Color:             slot.Color,
		Location:          slot.EventLocation,
		Repeat:            slot.Repeat,
		FromSlot:          slot.ID,
		SyncWithCalendar:  true,
		AddOnlineMeeting:  online,
		Organiser:         slot.Organiser,
		OrganiserName:     slot.OrganiserName,
		OutlookCalendar:   slot.OutlookCalendar,
		Participants:      mergeSlotParticipants(nil, slot),
		RescheduleHistory: cloneHistory(slot.RescheduleHistory),
	}

	id, err := s.events.CreateEvent(ctx, q, event)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	event.ID = id

	return event, nil
}

func (s *Service) reuseEvent(ctx context.Context, q database.Queryable, event *model.Event, slot *model.EventSlot, proposal *model.SlotProposal, subject string, online bool) (*model.Event, error) {
	fields := map[string]interface{}{
		"subject":            subject,
		"starts_on":          proposal.StartsOn,
		"ends_on":            proposal.EndsOn,
		"status":             string(model.EventStatusOpen),
		"add_online_meeting": online,
	}
	if err := s.events.SetFields(ctx, q, event.ID, fields, true); err != nil {
		return nil, fmt.Errorf("set event fields: %w", err)
	}
	event.Subject = subject
	event.StartsOn = proposal.StartsOn
	event.EndsOn = proposal.EndsOn
	event.Status = model.EventStatusOpen
	event.AddOnlineMeeting = online

	for _, p := range mergeSlotParticipants(event.Participants, slot) {
		if p.ID != 0 {
			continue
		}
		p.Idx = len(event.Participants) + 1
		if _, err := s.events.CreateParticipant(ctx, q, event.ID, events.ListParticipants, p); err != nil {
			return nil, fmt.Errorf("create participant: %w", err)
		}
		event.Participants = append(event.Participants, p)
	}

	return event, nil
}

// mergeSlotParticipants folds the slot's participant and linked-user lists
// into the event's participant list, resolving by email, or by reference
// key when the address is missing, so no participant is ever cloned twice.
func mergeSlotParticipants(existing []*model.EventParticipant, slot *model.EventSlot) []*model.EventParticipant {
	seen := map[string]bool{}
	for _, p := range existing {
		seen[participantKey(p)] = true
	}

	var merged []*model.EventParticipant
	merged = append(merged, existing...)

	for _, p := range slot.Participants {
		key := participantKey(p)
		if seen[key] {
			continue
		}
		seen[key] = true
		clone := *p
		clone.ID = 0
		clone.Idx = len(merged) + 1
		merged = append(merged, &clone)
	}

	for _, u := range slot.Users {
		if u.Email == "" || seen[u.Email] {
			continue
		}
		seen[u.Email] = true
		merged = append(merged, &model.EventParticipant{
			Idx:              len(merged) + 1,
			ReferenceDoctype: "User",
			ReferenceDocname: u.User,
			Email:            u.Email,
			ParticipantName:  u.FullName,
			Required:         true,
		})
	}

	return merged
}

func participantKey(p *model.EventParticipant) string {
	if p.Email != "" {
		return p.Email
	}
	return p.ReferenceKey()
}

// pushEvent sends the event outward, creating or updating the remote copy,
// and stores the returned remote identifiers.
func (s *Service) pushEvent(ctx context.Context, q database.Queryable, event *model.Event) ([]translate.MissingEmailParticipant, error) {
	if event.Organiser == "" {
		return nil, nil
	}

	calendar, err := s.calendarFor(ctx, q, event.OutlookCalendar)
	if err != nil {
		return nil, err
	}

	remote, missing, err := translate.ToOutlook(event, calendar)
	if err != nil {
		return nil, fmt.Errorf("translate event: %w", err)
	}

	opts := graph.ListEventsOptions{CalendarID: event.OutlookCalendar}

	var pushed *graph.Event
	if event.OutlookEventID == "" {
		pushed, err = s.gateway.CreateEvent(ctx, event.Organiser, opts, remote)
		if err != nil {
			return nil, fmt.Errorf("create remote event: %w", err)
		}
	} else {
		pushed, err = s.gateway.UpdateEvent(ctx, event.Organiser, opts, event.OutlookEventID, remote)
		if err != nil {
			return nil, fmt.Errorf("update remote event: %w", err)
		}
	}

	fields := map[string]interface{}{
		"outlook_event_id": pushed.ID,
		"change_key":       pushed.ChangeKey,
		"event_uid":        pushed.ICalUID,
		"event_link":       pushed.WebLink,
	}
	if pushed.OnlineMeeting != nil {
		fields["meeting_link"] = pushed.OnlineMeeting.JoinURL
		event.MeetingLink = pushed.OnlineMeeting.JoinURL
	}
	if err := s.events.SetFields(ctx, q, event.ID, fields, false); err != nil {
		return nil, fmt.Errorf("store remote identifiers: %w", err)
	}
	event.OutlookEventID = pushed.ID
	event.ChangeKey = pushed.ChangeKey
	event.EventUID = pushed.ICalUID
	event.EventLink = pushed.WebLink

	return missing, nil
}

// CancelSlot cancels an unconfirmed slot. Submission and cancellation are
// stamped together, the two-step terminal transition.
func (s *Service) CancelSlot(ctx context.Context, id int64, actor, reason string) error {
	if reason == "" {
		return model.NewValidationError("cancellation reason is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	slot, err := s.slots.GetSlotByID(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("get slot: %w", err)
	}

	if slot.DocStatus != model.DocStatusDraft || slot.Status == model.SlotStatusCancelled {
		return model.NewValidationError("slot is no longer open")
	}

	entry := &model.RescheduleEntry{
		Idx:           len(slot.RescheduleHistory) + 1,
		StartsOn:      slot.SelectedSlotStart,
		EndsOn:        slot.SelectedSlotEnd,
		Slot:          slot.ID,
		RescheduledBy: actor,
		RescheduledOn: model.FormatDateTime(time.Now()),
		Reason:        reason,
	}
	if err := s.slots.AddRescheduleEntry(ctx, tx, id, entry); err != nil {
		return fmt.Errorf("add reschedule entry: %w", err)
	}

	fields := map[string]interface{}{
		"status":    string(model.SlotStatusCancelled),
		"docstatus": int(model.DocStatusCancelled),
	}
	if err := s.slots.SetFields(ctx, tx, id, fields, true); err != nil {
		return fmt.Errorf("set slot fields: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	s.notifyChanged(ctx, slot.Participants, slot.Users)

	return nil
}

// RescheduleSlot swaps the proposal list wholesale; the slot stays
// unconfirmed and the reason lands in its history.
func (s *Service) RescheduleSlot(ctx context.Context, id int64, proposals []*model.SlotProposal, actor, reason string) error {
	if reason == "" {
		return model.NewValidationError("reschedule reason is required")
	}
	if err := validateProposals(proposals); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	slot, err := s.slots.GetSlotByID(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("get slot: %w", err)
	}

	if slot.DocStatus != model.DocStatusDraft || slot.Status == model.SlotStatusCancelled {
		return model.NewValidationError("slot is no longer open")
	}

	if err := s.slots.ReplaceProposals(ctx, tx, id, proposals); err != nil {
		return fmt.Errorf("replace proposals: %w", err)
	}

	entry := &model.RescheduleEntry{
		Idx:           len(slot.RescheduleHistory) + 1,
		RescheduledBy: actor,
		RescheduledOn: model.FormatDateTime(time.Now()),
		Reason:        reason,
	}
	if err := s.slots.AddRescheduleEntry(ctx, tx, id, entry); err != nil {
		return fmt.Errorf("add reschedule entry: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	s.notifyChanged(ctx, slot.Participants, slot.Users)

	return nil
}
