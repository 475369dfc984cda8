package model

import "time"

type SlotStatus string

const (
	SlotStatusUnconfirmed SlotStatus = "Unconfirmed"
	SlotStatusConfirmed   SlotStatus = "Confirmed"
	SlotStatusCancelled   SlotStatus = "Cancelled"
)

// DocStatus is the submission ternary of a slot proposal record.
type DocStatus int

const (
	DocStatusDraft DocStatus = iota
	DocStatusSubmitted
	DocStatusCancelled
)

// EventSlot is a pre-confirmation scheduling request carrying one or more
// proposed time ranges. It is never hard-deleted; cancellation is a status
// transition.
type EventSlot struct {
	ID          int64
	Subject     string
	Description string
	Status      SlotStatus
	DocStatus   DocStatus
	Color       string
	Repeat

	Organiser       string
	OrganiserName   string
	OutlookCalendar string // remote calendar id

	Proposals    []*SlotProposal
	Participants []*EventParticipant
	Users        []*SlotUser

	AddOnlineMeeting bool
	EventLocation    string

	SelectedSlotStart string
	SelectedSlotEnd   string
	SelectedOnline    bool

	RescheduleHistory []*RescheduleEntry

	EmailTemplate string
	Route         string
	Published     bool

	Created  time.Time
	Modified time.Time
}

// SlotProposal is a single candidate time range with its own identity.
type SlotProposal struct {
	ID       string // uuid
	StartsOn string
	EndsOn   string
}

// SlotUser links a local system user invited through the slot.
type SlotUser struct {
	User     string
	Email    string
	FullName string
}
