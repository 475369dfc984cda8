package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
	"github.com/onecal/outlook-sync-backend/internal/pkg/graph"
	"github.com/onecal/outlook-sync-backend/internal/redis"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
)

// Service enforces the event and slot state machines and keeps the
// reschedule-history audit trail consistent across both record types.
type Service struct {
	db        database.PGX
	logger    *zap.SugaredLogger
	events    eventRepository
	slots     slotRepository
	calendars calendarRepository
	gateway   remoteGateway
	publisher publisher

	changeChannel string
}

type eventRepository interface {
	GetEventByID(ctx context.Context, q database.Queryable, id int64) (*model.Event, error)
	GetEventBySlot(ctx context.Context, q database.Queryable, slotID int64) (*model.Event, error)
	CreateEvent(ctx context.Context, q database.Queryable, event *model.Event) (int64, error)
	SetFields(ctx context.Context, q database.Queryable, id int64, fields map[string]interface{}, refreshModified bool) error
	AddRescheduleEntry(ctx context.Context, q database.Queryable, eventID int64, entry *model.RescheduleEntry) error
	CreateParticipant(ctx context.Context, q database.Queryable, eventID int64, list string, p *model.EventParticipant) (int64, error)
	SetParticipantFields(ctx context.Context, q database.Queryable, participantID int64, fields map[string]interface{}) error
	DeleteParticipant(ctx context.Context, q database.Queryable, participantID int64) error
	GetReferenceEvents(ctx context.Context, q database.Queryable, refDoctype, refDocname string) ([]*model.ReferenceItem, error)
}

type slotRepository interface {
	GetSlotByID(ctx context.Context, q database.Queryable, id int64) (*model.EventSlot, error)
	GetSlotByProposal(ctx context.Context, q database.Queryable, proposalID string) (*model.EventSlot, error)
	CreateSlot(ctx context.Context, q database.Queryable, slot *model.EventSlot) (int64, error)
	SetFields(ctx context.Context, q database.Queryable, id int64, fields map[string]interface{}, refreshModified bool) error
	ReplaceProposals(ctx context.Context, q database.Queryable, slotID int64, proposals []*model.SlotProposal) error
	AddRescheduleEntry(ctx context.Context, q database.Queryable, slotID int64, entry *model.RescheduleEntry) error
	GetReferenceSlots(ctx context.Context, q database.Queryable, refDoctype, refDocname string) ([]*model.ReferenceItem, error)
}

type calendarRepository interface {
	GetCalendarByRemoteID(ctx context.Context, q database.Queryable, id string) (*model.Calendar, error)
}

type remoteGateway interface {
	CreateEvent(ctx context.Context, userID string, opts graph.ListEventsOptions, event *graph.Event) (*graph.Event, error)
	UpdateEvent(ctx context.Context, userID string, opts graph.ListEventsOptions, eventID string, event *graph.Event) (*graph.Event, error)
	CancelEvent(ctx context.Context, userID string, opts graph.ListEventsOptions, eventID, comment string) error
}

type publisher interface {
	Publish(ctx context.Context, channel string, payload interface{}) error
}

func NewService(
	db database.PGX,
	logger *zap.SugaredLogger,
	events eventRepository,
	slots slotRepository,
	calendars calendarRepository,
	gateway remoteGateway,
	publisher publisher,
	changeChannel string,
) *Service {
	return &Service{
		db:            db,
		logger:        logger,
		events:        events,
		slots:         slots,
		calendars:     calendars,
		gateway:       gateway,
		publisher:     publisher,
		changeChannel: changeChannel,
	}
}

// notifyChanged broadcasts one change notification per distinct participant
// reference pair and one per distinct email, deduplicated within this call.
// Delivery is best effort.
func (s *Service) notifyChanged(ctx context.Context, participants []*model.EventParticipant, users []*model.SlotUser) {
	seenRefs := map[string]bool{}
	seenEmails := map[string]bool{}

	publish := func(n redis.ChangeNotification) {
		if err := s.publisher.Publish(ctx, s.changeChannel, n); err != nil {
			s.logger.Errorw("failed publishing change notification", "err", err)
		}
	}

	for _, p := range participants {
		if p.ReferenceDoctype != "" && p.ReferenceDocname != "" {
			key := p.ReferenceDoctype + "\x00" + p.ReferenceDocname
			if !seenRefs[key] {
				seenRefs[key] = true
				publish(redis.ChangeNotification{
					ReferenceDoctype: p.ReferenceDoctype,
					ReferenceDocname: p.ReferenceDocname,
				})
			}
		}
		if p.Email != "" && !seenEmails[p.Email] {
			seenEmails[p.Email] = true
			publish(redis.ChangeNotification{Email: p.Email})
		}
	}

	for _, u := range users {
		if u.Email != "" && !seenEmails[u.Email] {
			seenEmails[u.Email] = true
			publish(redis.ChangeNotification{Email: u.Email})
		}
	}
}

// validateRepeat checks the recurrence descriptor compiles into a rule.
// Weekly recurrence needs at least one weekday picked.
func validateRepeat(repeat model.Repeat, startsOn string) error {
	if !repeat.RepeatThisEvent {
		return nil
	}

	if repeat.RepeatOn == model.RepeatOnWeekly && len(repeat.Weekdays()) == 0 {
		return model.NewValidationError("weekly recurrence requires at least one weekday")
	}

	start, err := model.ParseDateTime(startsOn)
	if err != nil {
		return model.NewValidationError("invalid start for recurring event: %v", err)
	}

	var freq rrule.Frequency
	switch repeat.RepeatOn {
	case model.RepeatOnDaily:
		freq = rrule.DAILY
	case model.RepeatOnWeekly:
		freq = rrule.WEEKLY
	case model.RepeatOnMonthly:
		freq = rrule.MONTHLY
	case model.RepeatOnYearly:
		freq = rrule.YEARLY
	default:
		return model.NewValidationError("unknown recurrence frequency %q", repeat.RepeatOn)
	}

	opt := rrule.ROption{
		Freq:    freq,
		Dtstart: start.UTC(),
	}

	weekdayRules := map[string]rrule.Weekday{
		"monday":    rrule.MO,
		"tuesday":   rrule.TU,
		"wednesday": rrule.WE,
		"thursday":  rrule.TH,
		"friday":    rrule.FR,
		"saturday":  rrule.SA,
		"sunday":    rrule.SU,
	}
	for _, day := range repeat.Weekdays() {
		opt.Byweekday = append(opt.Byweekday, weekdayRules[day])
	}

	if repeat.RepeatTill != "" {
		till, err := model.ParseDate(repeat.RepeatTill)
		if err != nil {
			return model.NewValidationError("invalid recurrence end date: %v", err)
		}
		if till.Before(start) {
			return model.NewValidationError("recurrence ends before the event starts")
		}
		opt.Until = till.UTC()
	}

	if _, err := rrule.NewRRule(opt); err != nil {
		return model.NewValidationError("invalid recurrence: %v", err)
	}

	return nil
}

func validateProposals(proposals []*model.SlotProposal) error {
	if len(proposals) == 0 {
		return model.NewValidationError("at least one slot proposal is required")
	}

	for _, p := range proposals {
		start, err := model.ParseDateTime(p.StartsOn)
		if err != nil {
			return model.NewValidationError("invalid proposal start %q", p.StartsOn)
		}
		end, err := model.ParseDateTime(p.EndsOn)
		if err != nil {
			return model.NewValidationError("invalid proposal end %q", p.EndsOn)
		}
		if !start.Before(end) {
			return model.NewValidationError("proposal must end after it starts")
		}
	}

	return nil
}

func cloneHistory(entries []*model.RescheduleEntry) []*model.RescheduleEntry {
	res := make([]*model.RescheduleEntry, len(entries))
	for i, e := range entries {
		clone := *e
		clone.ID = 0
		res[i] = &clone
	}
	return res
}

func cloneParticipants(participants []*model.EventParticipant) []*model.EventParticipant {
	res := make([]*model.EventParticipant, len(participants))
	for i, p := range participants {
		clone := *p
		clone.ID = 0
		res[i] = &clone
	}
	return res
}

func (s *Service) calendarFor(ctx context.Context, q database.Queryable, remoteID string) (*model.Calendar, error) {
	if remoteID == "" {
		return &model.Calendar{}, nil
	}

	calendar, err := s.calendars.GetCalendarByRemoteID(ctx, q, remoteID)
	if err != nil {
		if errors.Is(err, model.ErrNoRecord) {
			return &model.Calendar{}, nil
		}
		return nil, fmt.Errorf("get calendar: %w", err)
	}

	return calendar, nil
}
