package slots

import (
	"time"

	"github.com/onecal/outlook-sync-backend/internal/model"
)

type slotDTO struct {
	ID                int64
	Subject           string
	Description       string
	Status            string
	Docstatus         int
	Color             string
	RepeatThisEvent   bool
	RepeatOn          string
	RepeatTill        *time.Time
	Monday            bool
	Tuesday           bool
	Wednesday         bool
	Thursday          bool
	Friday            bool
	Saturday          bool
	Sunday            bool
	Organiser         string
	OrganiserName     string
	OutlookCalendar   string
	AddOnlineMeeting  bool
	EventLocation     string
	SelectedSlotStart *time.Time
	SelectedSlotEnd   *time.Time
	SelectedOnline    bool
	EmailTemplate     string
	Route             string
	Published         bool
	Created           time.Time
	Modified          time.Time
}

type proposalDTO struct {
	ID       string
	StartsOn time.Time
	EndsOn   time.Time
}

type slotUserDTO struct {
	UserID   string `db:"user_id"`
	Email    string
	FullName string
}

func formatWallClock(t time.Time) string {
	return t.Format(model.DateTimeFormat)
}

func mapToSlot(d *slotDTO) *model.EventSlot {
	s := &model.EventSlot{
		ID:          d.ID,
		Subject:     d.Subject,
		Description: d.Description,
		Status:      model.SlotStatus(d.Status),
		DocStatus:   model.DocStatus(d.Docstatus),
		Color:       d.Color,
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
		Organiser:        d.Organiser,
		OrganiserName:    d.OrganiserName,
		OutlookCalendar:  d.OutlookCalendar,
		AddOnlineMeeting: d.AddOnlineMeeting,
		EventLocation:    d.EventLocation,
		SelectedOnline:   d.SelectedOnline,
		EmailTemplate:    d.EmailTemplate,
		Route:            d.Route,
		Published:        d.Published,
		Created:          d.Created,
		Modified:         d.Modified,
	}

	if d.RepeatTill != nil {
		s.RepeatTill = d.RepeatTill.Format(model.DateFormat)
	}
	if d.SelectedSlotStart != nil {
		s.SelectedSlotStart = formatWallClock(*d.SelectedSlotStart)
	}
	if d.SelectedSlotEnd != nil {
		s.SelectedSlotEnd = formatWallClock(*d.SelectedSlotEnd)
	}

	return s
}

func mapToProposal(d *proposalDTO) *model.SlotProposal {
	return &model.SlotProposal{
		ID:       d.ID,
		StartsOn: formatWallClock(d.StartsOn),
		EndsOn:   formatWallClock(d.EndsOn),
	}
}

func mapToSlotUser(d *slotUserDTO) *model.SlotUser {
	return &model.SlotUser{
		User:     d.UserID,
		Email:    d.Email,
		FullName: d.FullName,
	}
}
