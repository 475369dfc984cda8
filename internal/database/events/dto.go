package events

import (
	"time"

	"github.com/onecal/outlook-sync-backend/internal/model"
)

type eventDTO struct {
	ID               int64
	Subject          string
	Description      string
	StartsOn         time.Time
	EndsOn           time.Time
	AllDay           bool
	Status           string
	Color            string
	Location         string
	RepeatThisEvent  bool
	RepeatOn         string
	RepeatTill       *time.Time
	Monday           bool
	Tuesday          bool
	Wednesday        bool
	Thursday         bool
	Friday           bool
	Saturday         bool
	Sunday           bool
	FromSlot         *int64
	IsOutlookEvent   bool
	SyncWithCalendar bool
	AddOnlineMeeting bool
	Organiser        string
	OrganiserName    string
	OutlookCalendar  string
	OutlookEventID   string
	ChangeKey        string
	EventUID         string `db:"event_uid"`
	EventLink        string
	MeetingLink      string
	Created          time.Time
	Modified         time.Time
}

type participantDTO struct {
	ID               int64
	Idx              int
	ReferenceDoctype string
	ReferenceDocname string
	Email            string
	ParticipantName  string
	Required         bool
	Response         string
	ResponseTime     *time.Time
}

type historyDTO struct {
	ID            int64
	Idx           int
	StartsOn      *time.Time
	EndsOn        *time.Time
	Slot          *int64
	RescheduledBy string
	RescheduledOn time.Time
	Reason        string
}

// Stored timestamps are naive wall-clock values in the system timezone, so
// they are formatted without location conversion.
func formatWallClock(t time.Time) string {
	return t.Format(model.DateTimeFormat)
}

func mapToEvent(d *eventDTO) *model.Event {
	e := &model.Event{
		ID:          d.ID,
		Subject:     d.Subject,
		Description: d.Description,
		StartsOn:    formatWallClock(d.StartsOn),
		EndsOn:      formatWallClock(d.EndsOn),
		AllDay:      d.AllDay,
		Status:      model.EventStatus(d.Status),
		Color:       d.Color,
		Location:    d.Location,
		Repeat: model.Repeat{
			RepeatThisEvent: d.RepeatThisEvent,
			RepeatOn:        d.RepeatOn,
			Monday:          d.Monday,
			Tuesday:         d.Tuesday,
			Wednesday:       d.Wednesday,
			Thursday:        d.Thursday,
			Friday:          d.Friday,
			Saturday:        d.Saturday,
			Sunday:          d.Sunday,
		},
		IsOutlookEvent:   d.IsOutlookEvent,
		SyncWithCalendar: d.SyncWithCalendar,
		AddOnlineMeeting: d.AddOnlineMeeting,
		Organiser:        d.Organiser,
		OrganiserName:    d.OrganiserName,
		OutlookCalendar:  d.OutlookCalendar,
		OutlookEventID:   d.OutlookEventID,
		ChangeKey:        d.ChangeKey,
		EventUID:         d.EventUID,
		EventLink:        d.EventLink,
		MeetingLink:      d.MeetingLink,
		Created:          d.Created,
		Modified:         d.Modified,
	}

	if d.RepeatTill != nil {
		e.RepeatTill = d.RepeatTill.Format(model.DateFormat)
	}
	if d.FromSlot != nil {
		e.FromSlot = *d.FromSlot
	}

	return e
}

func mapToParticipant(d *participantDTO) *model.EventParticipant {
	p := &model.EventParticipant{
		ID:               d.ID,
		Idx:              d.Idx,
		ReferenceDoctype: d.ReferenceDoctype,
		ReferenceDocname: d.ReferenceDocname,
		Email:            d.Email,
		ParticipantName:  d.ParticipantName,
		Required:         d.Required,
		Response:         d.Response,
	}

	if d.ResponseTime != nil {
		p.ResponseTime = formatWallClock(*d.ResponseTime)
	}

	return p
}

func mapToHistoryEntry(d *historyDTO) *model.RescheduleEntry {
	entry := &model.RescheduleEntry{
		ID:            d.ID,
		Idx:           d.Idx,
		RescheduledBy: d.RescheduledBy,
		RescheduledOn: formatWallClock(d.RescheduledOn),
		Reason:        d.Reason,
	}

	if d.StartsOn != nil {
		entry.StartsOn = formatWallClock(*d.StartsOn)
	}
	if d.EndsOn != nil {
		entry.EndsOn = formatWallClock(*d.EndsOn)
	}
	if d.Slot != nil {
		entry.Slot = *d.Slot
	}

	return entry
}
