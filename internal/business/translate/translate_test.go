package translate

import (
	"testing"

	"github.com/onecal/outlook-sync-backend/internal/model"
	"github.com/onecal/outlook-sync-backend/internal/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareSubject(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		online  bool
		want    string
	}{
		{"plain online", "Meet", true, "Meet - Online"},
		{"plain in person", "Meet", false, "Meet - In Person"},
		{"flip online to in person", "Meet - Online", false, "Meet - In Person"},
		{"flip in person to online", "Meet - In Person", true, "Meet - Online"},
		{"stacked suffixes collapse", "Meet - Online - In Person", true, "Meet - Online"},
		{"same mode is stable", "Meet - Online", true, "Meet - Online"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, PrepareSubject(tc.subject, tc.online))
		})
	}
}

func TestToOutlookAttendees(t *testing.T) {
	event := &model.Event{
		Subject:  "Review",
		StartsOn: "2026-03-02 10:00:00",
		EndsOn:   "2026-03-02 11:00:00",
		Participants: []*model.EventParticipant{
			{Email: "a@example.com", ParticipantName: "A", Required: true},
			{ReferenceDoctype: "Contact", ReferenceDocname: "CRM-0042", ParticipantName: "No Mail"},
		},
		OutlookParticipants: []*model.EventParticipant{
			{Email: "a@example.com", ParticipantName: "Shadow A"},
			{Email: "b@example.com", ParticipantName: "B"},
		},
	}

	remote, missing, err := ToOutlook(event, &model.Calendar{})
	require.NoError(t, err)

	require.Len(t, remote.Attendees, 2)
	assert.Equal(t, "a@example.com", remote.Attendees[0].EmailAddress.Address)
	assert.Equal(t, "required", remote.Attendees[0].Type)
	assert.Equal(t, "b@example.com", remote.Attendees[1].EmailAddress.Address)
	assert.Equal(t, "optional", remote.Attendees[1].Type)

	require.Len(t, missing, 1)
	assert.Equal(t, "Contact", missing[0].ReferenceDoctype)
	assert.Equal(t, "CRM-0042", missing[0].ReferenceDocname)
	assert.Equal(t, "No Mail", missing[0].ParticipantName)
}

func TestToOutlookOrganizerFlag(t *testing.T) {
	event := &model.Event{
		StartsOn:  "2026-03-02 10:00:00",
		EndsOn:    "2026-03-02 11:00:00",
		Organiser: "user-1",
	}

	remote, _, err := ToOutlook(event, &model.Calendar{MicrosoftUser: "user-1"})
	require.NoError(t, err)
	assert.True(t, remote.IsOrganizer)

	remote, _, err = ToOutlook(event, &model.Calendar{MicrosoftUser: "user-2"})
	require.NoError(t, err)
	assert.False(t, remote.IsOrganizer)
}

func TestToOutlookOnlineMeeting(t *testing.T) {
	event := &model.Event{
		StartsOn:         "2026-03-02 10:00:00",
		EndsOn:           "2026-03-02 11:00:00",
		AddOnlineMeeting: true,
	}

	remote, _, err := ToOutlook(event, &model.Calendar{})
	require.NoError(t, err)
	require.NotNil(t, remote.IsOnlineMeeting)
	assert.True(t, *remote.IsOnlineMeeting)
	assert.Equal(t, "teamsForBusiness", remote.OnlineMeetingProvider)

	event.AddOnlineMeeting = false
	remote, _, err = ToOutlook(event, &model.Calendar{})
	require.NoError(t, err)
	require.NotNil(t, remote.IsOnlineMeeting)
	assert.False(t, *remote.IsOnlineMeeting)
	assert.Equal(t, "unknown", remote.OnlineMeetingProvider)
}

func TestToOutlookRecurrence(t *testing.T) {
	event := &model.Event{
		StartsOn: "2026-03-02 10:00:00",
		EndsOn:   "2026-03-02 11:00:00",
		Repeat: model.Repeat{
			RepeatThisEvent: true,
			RepeatOn:        model.RepeatOnWeekly,
			RepeatTill:      "2026-06-01",
			Monday:          true,
			Thursday:        true,
		},
	}

	remote, _, err := ToOutlook(event, &model.Calendar{})
	require.NoError(t, err)
	require.NotNil(t, remote.Recurrence)

	assert.Equal(t, "weekly", remote.Recurrence.Pattern.Type)
	assert.Equal(t, []string{"monday", "thursday"}, remote.Recurrence.Pattern.DaysOfWeek)
	assert.Equal(t, "endDate", remote.Recurrence.Range.Type)
	assert.Equal(t, "2026-06-01", remote.Recurrence.Range.EndDate)
	assert.Equal(t, "2026-03-02", remote.Recurrence.Range.StartDate)
}

func TestToOutlookInvalidDatetime(t *testing.T) {
	event := &model.Event{StartsOn: "not a datetime", EndsOn: "2026-03-02 11:00:00"}

	_, _, err := ToOutlook(event, &model.Calendar{})
	assert.Error(t, err)
}

func TestFromOutlook(t *testing.T) {
	remote := &graph.Event{
		ID:       "remote-1",
		Subject:  "Standup",
		ICalUID:  "uid-1",
		WebLink:  "https://outlook.example/e/1",
		Body:     &graph.ItemBody{ContentType: "HTML", Content: "notes"},
		Start:    &graph.DateTimeTimeZone{DateTime: "2026-03-02T10:00:00.0000000", TimeZone: "UTC"},
		End:      &graph.DateTimeTimeZone{DateTime: "2026-03-02T10:30:00.0000000", TimeZone: "UTC"},
		Location: &graph.Location{DisplayName: "Room 1"},
		Attendees: []graph.Attendee{
			{
				Type:         "required",
				Status:       graph.ResponseStatus{Response: "accepted", Time: "2026-03-01T08:00:00Z"},
				EmailAddress: graph.EmailAddress{Address: "a@example.com", Name: "A"},
			},
			{
				Type:         "optional",
				Status:       graph.ResponseStatus{Response: "none", Time: "0001-01-01T00:00:00Z"},
				EmailAddress: graph.EmailAddress{Address: "b@example.com", Name: "B"},
			},
			{
				Type:         "required",
				EmailAddress: graph.EmailAddress{Name: "mailless resource"},
			},
		},
	}

	fields, err := FromOutlook(remote)
	require.NoError(t, err)

	assert.Equal(t, "Standup", fields.Subject)
	assert.Equal(t, "2026-03-02 10:00:00", fields.StartsOn)
	assert.Equal(t, "2026-03-02 10:30:00", fields.EndsOn)
	assert.Equal(t, "remote-1", fields.OutlookEventID)
	assert.Equal(t, "uid-1", fields.EventUID)
	assert.Equal(t, "notes", fields.Description)
	assert.Equal(t, "Room 1", fields.Location)

	require.Len(t, fields.Attendees, 2)
	assert.Equal(t, "a@example.com", fields.Attendees[0].Email)
	assert.True(t, fields.Attendees[0].Required)
	assert.Equal(t, "2026-03-01 08:00:00", fields.Attendees[0].ResponseTime)
	assert.Equal(t, "b@example.com", fields.Attendees[1].Email)
	assert.False(t, fields.Attendees[1].Required)
	assert.Empty(t, fields.Attendees[1].ResponseTime)
}

func TestFromOutlookMissingTimezone(t *testing.T) {
	remote := &graph.Event{
		ID:    "remote-2",
		Start: &graph.DateTimeTimeZone{DateTime: "2026-03-02T10:00:00.0000000"},
		End:   &graph.DateTimeTimeZone{DateTime: "2026-03-02T11:00:00.0000000", TimeZone: "UTC"},
	}

	_, err := FromOutlook(remote)
	assert.Error(t, err)

	remote.Start = nil
	_, err = FromOutlook(remote)
	assert.Error(t, err)
}

func TestNormalizeResponseTime(t *testing.T) {
	assert.Empty(t, normalizeResponseTime(""))
	assert.Empty(t, normalizeResponseTime("0001-01-01T00:00:00Z"))
	assert.Empty(t, normalizeResponseTime("garbage"))
	assert.Equal(t, "2026-03-01 08:00:00", normalizeResponseTime("2026-03-01T08:00:00Z"))
}
