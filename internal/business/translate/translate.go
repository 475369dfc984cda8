package translate

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/onecal/outlook-sync-backend/internal/config"
	"github.com/onecal/outlook-sync-backend/internal/model"
	"github.com/onecal/outlook-sync-backend/internal/pkg/graph"
)

// Graph sends naive datetimes with a separate timeZone field; the fraction
// is present on reads, absent on writes.
const (
	graphReadFormat  = "2006-01-02T15:04:05.9999999"
	graphWriteFormat = "2006-01-02T15:04:05"
)

const onlineMeetingProvider = "teamsForBusiness"

// ToOutlook builds the outbound payload for an event pushed to the given
// calendar. Participants without an email cannot become attendees and are
// returned as advisories; they never block the push.
func ToOutlook(event *model.Event, calendar *model.Calendar) (*graph.Event, []MissingEmailParticipant, error) {
	start, err := model.ParseDateTime(event.StartsOn)
	if err != nil {
		return nil, nil, fmt.Errorf("parse starts_on: %w", err)
	}
	end, err := model.ParseDateTime(event.EndsOn)
	if err != nil {
		return nil, nil, fmt.Errorf("parse ends_on: %w", err)
	}

	tz := config.SystemTimezone().String()

	var attendees []graph.Attendee
	var missing []MissingEmailParticipant
	seen := map[string]bool{}

	for _, list := range [][]*model.EventParticipant{event.Participants, event.OutlookParticipants} {
		for _, p := range list {
			if p.Email == "" {
				missing = append(missing, MissingEmailParticipant{
					ReferenceDoctype: p.ReferenceDoctype,
					ReferenceDocname: p.ReferenceDocname,
					ParticipantName:  p.ParticipantName,
				})
				continue
			}
			if seen[p.Email] {
				continue
			}
			seen[p.Email] = true

			attendeeType := "optional"
			if p.Required {
				attendeeType = "required"
			}
			attendees = append(attendees, graph.Attendee{
				Type: attendeeType,
				EmailAddress: graph.EmailAddress{
					Address: p.Email,
					Name:    p.ParticipantName,
				},
			})
		}
	}

	isOnline := event.AddOnlineMeeting
	provider := "unknown"
	if isOnline {
		provider = onlineMeetingProvider
	}

	remote := &graph.Event{
		Subject: event.Subject,
		Body: &graph.ItemBody{
			ContentType: "HTML",
			Content:     event.Description,
		},
		Start: &graph.DateTimeTimeZone{
			DateTime: start.Format(graphWriteFormat),
			TimeZone: tz,
		},
		End: &graph.DateTimeTimeZone{
			DateTime: end.Format(graphWriteFormat),
			TimeZone: tz,
		},
		IsAllDay:              event.AllDay,
		IsOrganizer:           event.Organiser == calendar.MicrosoftUser,
		Attendees:             attendees,
		IsOnlineMeeting:       &isOnline,
		OnlineMeetingProvider: provider,
	}

	if event.Location != "" {
		remote.Location = &graph.Location{DisplayName: event.Location}
	}

	if event.RepeatThisEvent {
		remote.Recurrence = buildRecurrence(event.Repeat, start)
	}

	return remote, missing, nil
}

func buildRecurrence(repeat model.Repeat, start time.Time) *graph.PatternedRecurrence {
	pattern := graph.RecurrencePattern{
		Type:     strings.ToLower(repeat.RepeatOn),
		Interval: 1,
	}
	if repeat.RepeatOn == model.RepeatOnWeekly {
		pattern.DaysOfWeek = repeat.Weekdays()
	}
	if repeat.RepeatOn == model.RepeatOnYearly {
		pattern.Type = "absoluteYearly"
	}
	if repeat.RepeatOn == model.RepeatOnMonthly {
		pattern.Type = "absoluteMonthly"
	}

	rng := graph.RecurrenceRange{
		Type:      "noEnd",
		StartDate: start.Format(model.DateFormat),
	}
	if repeat.RepeatTill != "" {
		rng.Type = "endDate"
		rng.EndDate = repeat.RepeatTill
	}

	return &graph.PatternedRecurrence{Pattern: pattern, Range: rng}
}

// FromOutlook translates a remote event into local field values. A missing
// dateTime or timeZone is a fatal parse error for this event.
func FromOutlook(remote *graph.Event) (EventFields, error) {
	start, err := parseRemoteTime(remote.Start)
	if err != nil {
		return EventFields{}, fmt.Errorf("event %s start: %w", remote.ID, err)
	}
	end, err := parseRemoteTime(remote.End)
	if err != nil {
		return EventFields{}, fmt.Errorf("event %s end: %w", remote.ID, err)
	}

	fields := EventFields{
		Subject:        remote.Subject,
		StartsOn:       model.FormatDateTime(start),
		EndsOn:         model.FormatDateTime(end),
		AllDay:         remote.IsAllDay,
		Cancelled:      remote.IsCancelled,
		OutlookEventID: remote.ID,
		ChangeKey:      remote.ChangeKey,
		EventUID:       remote.ICalUID,
		EventLink:      remote.WebLink,
	}

	if remote.Body != nil {
		fields.Description = remote.Body.Content
	}
	if remote.Location != nil {
		fields.Location = remote.Location.DisplayName
	}
	if remote.OnlineMeeting != nil {
		fields.MeetingLink = remote.OnlineMeeting.JoinURL
	}

	for _, att := range remote.Attendees {
		if att.EmailAddress.Address == "" {
			continue
		}
		fields.Attendees = append(fields.Attendees, AttendeeFields{
			Email:           att.EmailAddress.Address,
			ParticipantName: att.EmailAddress.Name,
			Required:        att.Type == "required",
			Response:        att.Status.Response,
			ResponseTime:    normalizeResponseTime(att.Status.Time),
		})
	}

	return fields, nil
}

func parseRemoteTime(dt *graph.DateTimeTimeZone) (time.Time, error) {
	if dt == nil || dt.DateTime == "" || dt.TimeZone == "" {
		return time.Time{}, errors.New("missing dateTime or timeZone")
	}

	loc, err := time.LoadLocation(dt.TimeZone)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown timezone %q", dt.TimeZone)
	}

	t, err := time.ParseInLocation(graphReadFormat, dt.DateTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse datetime: %w", err)
	}

	return t, nil
}

// normalizeResponseTime renders the RFC 3339 response stamp in local form.
// The zero stamp Graph sends for "no response yet" becomes empty.
func normalizeResponseTime(s string) string {
	if s == "" {
		return ""
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil || t.Year() <= 1 {
		return ""
	}

	return model.FormatDateTime(t)
}
