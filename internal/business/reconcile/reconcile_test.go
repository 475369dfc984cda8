package reconcile

import (
	"context"
	"testing"

	"github.com/onecal/outlook-sync-backend/internal/business/translate"
	"github.com/onecal/outlook-sync-backend/internal/database"
	"github.com/onecal/outlook-sync-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventRepository struct {
	created      []*model.Event
	fieldWrites  []map[string]interface{}
	participants []*model.EventParticipant
	participant  []map[string]interface{}
	nextID       int64
}

func (f *fakeEventRepository) CreateEvent(_ context.Context, _ database.Queryable, event *model.Event) (int64, error) {
	f.created = append(f.created, event)
	f.nextID++
	return f.nextID, nil
}

func (f *fakeEventRepository) SetFields(_ context.Context, _ database.Queryable, _ int64, fields map[string]interface{}, _ bool) error {
	f.fieldWrites = append(f.fieldWrites, fields)
	return nil
}

func (f *fakeEventRepository) CreateParticipant(_ context.Context, _ database.Queryable, _ int64, _ string, p *model.EventParticipant) (int64, error) {
	f.participants = append(f.participants, p)
	f.nextID++
	p.ID = f.nextID
	return f.nextID, nil
}

func (f *fakeEventRepository) SetParticipantFields(_ context.Context, _ database.Queryable, _ int64, fields map[string]interface{}) error {
	f.participant = append(f.participant, fields)
	return nil
}

func matchingEvent() (*model.Event, translate.EventFields) {
	event := &model.Event{
		ID:             1,
		Subject:        "Review",
		Description:    "agenda",
		StartsOn:       "2026-03-02 10:00:00",
		EndsOn:         "2026-03-02 11:00:00",
		Status:         model.EventStatusOpen,
		Location:       "Room 1",
		ChangeKey:      "ck-1",
		EventUID:       "uid-1",
		EventLink:      "https://outlook.example/e/1",
		OutlookEventID: "remote-1",
		OutlookParticipants: []*model.EventParticipant{
			{ID: 10, Idx: 1, Email: "a@example.com", ParticipantName: "A", Required: true, Response: "accepted"},
		},
	}

	in := translate.EventFields{
		Subject:        "Review",
		Description:    "agenda",
		StartsOn:       "2026-03-02 10:00:00",
		EndsOn:         "2026-03-02 11:00:00",
		Location:       "Room 1",
		ChangeKey:      "ck-1",
		EventUID:       "uid-1",
		EventLink:      "https://outlook.example/e/1",
		OutlookEventID: "remote-1",
		Attendees: []translate.AttendeeFields{
			{Email: "a@example.com", ParticipantName: "A", Required: true, Response: "accepted"},
		},
	}

	return event, in
}

func TestReconcileUnchangedWritesNothing(t *testing.T) {
	repo := &fakeEventRepository{}
	engine := NewEngine(repo)

	event, in := matchingEvent()
	fields, err := engine.Reconcile(context.Background(), nil, event, in, false)
	require.NoError(t, err)

	assert.Empty(t, fields)
	assert.Empty(t, repo.fieldWrites)
	assert.Empty(t, repo.participant)
	assert.Empty(t, repo.participants)
}

func TestReconcileAppliesOnlyChangedColumns(t *testing.T) {
	repo := &fakeEventRepository{}
	engine := NewEngine(repo)

	event, in := matchingEvent()
	in.Subject = "Review v2"
	in.ChangeKey = "ck-2"

	fields, err := engine.Reconcile(context.Background(), nil, event, in, false)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"subject":    "Review v2",
		"change_key": "ck-2",
	}, fields)
	require.Len(t, repo.fieldWrites, 1)
}

func TestReconcileCancelledStatus(t *testing.T) {
	repo := &fakeEventRepository{}
	engine := NewEngine(repo)

	event, in := matchingEvent()
	in.Cancelled = true

	fields, err := engine.Reconcile(context.Background(), nil, event, in, false)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"status": "Cancelled"}, fields)
}

func TestReconcileCreatesMissingEvent(t *testing.T) {
	repo := &fakeEventRepository{}
	engine := NewEngine(repo)

	_, in := matchingEvent()
	in.MeetingLink = "https://teams.example/j/1"
	in.Attendees = append(in.Attendees, translate.AttendeeFields{Email: "a@example.com", ParticipantName: "dup"})

	fields, err := engine.Reconcile(context.Background(), nil, nil, in, false)
	require.NoError(t, err)
	assert.Nil(t, fields)

	require.Len(t, repo.created, 1)
	created := repo.created[0]
	assert.True(t, created.IsOutlookEvent)
	assert.True(t, created.SyncWithCalendar)
	assert.True(t, created.AddOnlineMeeting)
	assert.Equal(t, "remote-1", created.OutlookEventID)

	// Duplicate attendee emails collapse into one shadow row.
	require.Len(t, created.OutlookParticipants, 1)
	assert.Equal(t, "a@example.com", created.OutlookParticipants[0].Email)
}

func TestReconcileParticipantResolution(t *testing.T) {
	repo := &fakeEventRepository{}
	engine := NewEngine(repo)

	event, in := matchingEvent()
	event.Participants = []*model.EventParticipant{
		{ID: 5, Idx: 1, Email: "ref@example.com", ParticipantName: "Ref", ReferenceDoctype: "Contact", ReferenceDocname: "CRM-0001"},
	}
	in.Attendees = []translate.AttendeeFields{
		{Email: "ref@example.com", ParticipantName: "Ref", Response: "accepted"},
		{Email: "a@example.com", ParticipantName: "A", Required: true, Response: "accepted"},
		{Email: "new@example.com", ParticipantName: "New"},
	}

	_, err := engine.Reconcile(context.Background(), nil, event, in, false)
	require.NoError(t, err)

	// The referenced participant got the response update, the existing
	// shadow stayed untouched and the unknown address became a new shadow
	// row at the next index.
	require.Len(t, repo.participant, 1)
	assert.Equal(t, map[string]interface{}{"response": "accepted"}, repo.participant[0])

	require.Len(t, repo.participants, 1)
	assert.Equal(t, "new@example.com", repo.participants[0].Email)
	assert.Equal(t, 2, repo.participants[0].Idx)
	require.Len(t, event.OutlookParticipants, 2)
}

func TestReconcileClearedResponseTimeWritesNull(t *testing.T) {
	repo := &fakeEventRepository{}
	engine := NewEngine(repo)

	event, in := matchingEvent()
	event.OutlookParticipants[0].ResponseTime = "2026-03-01 08:00:00"
	in.Attendees[0].ResponseTime = ""

	_, err := engine.Reconcile(context.Background(), nil, event, in, false)
	require.NoError(t, err)

	// The reset stamp must not reach the timestamp column as "".
	require.Len(t, repo.participant, 1)
	rt, ok := repo.participant[0]["response_time"].(*string)
	require.True(t, ok)
	assert.Nil(t, rt)
	assert.Empty(t, event.OutlookParticipants[0].ResponseTime)
}

func TestReconcileSetsResponseTime(t *testing.T) {
	repo := &fakeEventRepository{}
	engine := NewEngine(repo)

	event, in := matchingEvent()
	in.Attendees[0].ResponseTime = "2026-03-01 08:00:00"

	_, err := engine.Reconcile(context.Background(), nil, event, in, false)
	require.NoError(t, err)

	require.Len(t, repo.participant, 1)
	rt, ok := repo.participant[0]["response_time"].(*string)
	require.True(t, ok)
	require.NotNil(t, rt)
	assert.Equal(t, "2026-03-01 08:00:00", *rt)
}

func TestDatetimeChanged(t *testing.T) {
	changed, err := datetimeChanged("2026-03-02 10:00:00", "2026-03-02 10:00:00")
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = datetimeChanged("2026-03-02 10:00:00", "2026-03-02 10:01:00")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = datetimeChanged("", "2026-03-02 10:00:00")
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = datetimeChanged("garbage", "2026-03-02 10:00:00")
	assert.Error(t, err)
}
