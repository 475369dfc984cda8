package model

import "time"

const (
	ReferenceItemEvent = "event"
	ReferenceItemSlot  = "slot"
)

// ReferenceItem is one row of the unified timeline joining events and slot
// proposals by participant reference.
type ReferenceItem struct {
	Type        string
	Name        int64
	Subject     string
	StartsOn    string
	EndsOn      string
	Status      string
	MeetingLink string
	Description string
	Created     time.Time
}
