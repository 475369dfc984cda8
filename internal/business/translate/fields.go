package translate

// EventFields is the inbound value object handed to reconciliation. It is
// passed by value between stages so no stage can mutate another's view.
type EventFields struct {
	Subject         string
	Description     string
	StartsOn        string
	EndsOn          string
	AllDay          bool
	Cancelled       bool
	Location        string
	Organiser       string
	OutlookCalendar string
	OutlookEventID  string
	ChangeKey       string
	EventUID        string
	EventLink       string
	MeetingLink     string

	Attendees []AttendeeFields
}

// AttendeeFields is one remote attendee, already translated to local
// participant field names.
type AttendeeFields struct {
	Email           string
	ParticipantName string
	Required        bool
	Response        string
	ResponseTime    string
}

// MissingEmailParticipant identifies a participant skipped from an outward
// push because it carries no email address. Advisory only; the push
// proceeds without it.
type MissingEmailParticipant struct {
	ReferenceDoctype string
	ReferenceDocname string
	ParticipantName  string
}
