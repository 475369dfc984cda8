package model

import "time"

type EventStatus string

const (
	EventStatusOpen      EventStatus = "Open"
	EventStatusCancelled EventStatus = "Cancelled"
)

// Repeat is the recurrence descriptor shared by events and slot proposals.
type Repeat struct {
	RepeatThisEvent bool
	RepeatOn        string // Daily, Weekly, Monthly, Yearly
	RepeatTill      string // DateFormat, empty for no end
	Monday          bool
	Tuesday         bool
	Wednesday       bool
	Thursday        bool
	Friday          bool
	Saturday        bool
	Sunday          bool
}

const (
	RepeatOnDaily   = "Daily"
	RepeatOnWeekly  = "Weekly"
	RepeatOnMonthly = "Monthly"
	RepeatOnYearly  = "Yearly"
)

// Weekdays returns the chosen weekday names in week order.
func (r Repeat) Weekdays() []string {
	var res []string
	for _, d := range []struct {
		name string
		set  bool
	}{
		{"monday", r.Monday},
		{"tuesday", r.Tuesday},
		{"wednesday", r.Wednesday},
		{"thursday", r.Thursday},
		{"friday", r.Friday},
		{"saturday", r.Saturday},
		{"sunday", r.Sunday},
	} {
		if d.set {
			res = append(res, d.name)
		}
	}

	return res
}

type Event struct {
	ID          int64
	Subject     string
	Description string
	StartsOn    string // DateTimeFormat, system timezone
	EndsOn      string
	AllDay      bool
	Status      EventStatus
	Color       string
	Location    string
	Repeat

	// FromSlot links the event to the slot proposal it was confirmed from.
	FromSlot         int64
	IsOutlookEvent   bool // pulled from Outlook, never pushed back
	SyncWithCalendar bool
	AddOnlineMeeting bool

	Organiser       string // remote user id bound to the pushing calendar
	OrganiserName   string
	OutlookCalendar string // remote calendar id

	OutlookEventID string // stable remote key
	ChangeKey      string
	EventUID       string // iCalUId
	EventLink      string
	MeetingLink    string

	Participants []*EventParticipant
	// OutlookParticipants records attendees known only from Outlook,
	// without a local reference record.
	OutlookParticipants []*EventParticipant

	RescheduleHistory []*RescheduleEntry

	Created  time.Time
	Modified time.Time
}

// EventParticipant natural key is the email address; at most one row per
// email per list.
type EventParticipant struct {
	ID               int64
	Idx              int // 1-based position inside its list
	ReferenceDoctype string
	ReferenceDocname string
	Email            string
	ParticipantName  string
	Required         bool
	Response         string
	ResponseTime     string
}

// ReferenceKey identifies a participant row for the symmetric edit diff.
func (p *EventParticipant) ReferenceKey() string {
	return p.ReferenceDoctype + "\x00" + p.ReferenceDocname + "\x00" + p.Email
}

type RescheduleEntry struct {
	ID            int64
	Idx           int
	StartsOn      string
	EndsOn        string
	Slot          int64
	RescheduledBy string
	RescheduledOn string
	Reason        string
}
